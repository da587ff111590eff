package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/linkedin"
)

// ErrStoreDisabled is returned by storage endpoints when no database is configured
var ErrStoreDisabled = errors.New("candidate storage is not configured")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		inputErr      *ingestion.InputError
		profileErr    *linkedin.ProfileError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &inputErr), errors.As(err, &profileErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStoreDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
