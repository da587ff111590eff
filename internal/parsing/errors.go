package parsing

import "fmt"

// ValidationError represents a built record that fails post-processing validation
type ValidationError struct {
	Message string
	Field   string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("validation error: %s", msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
