// Package schemas provides JSON Schema validation of candidate records and other JSON artifacts.
package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/candidate-profiler/internal/types"
	schemafiles "github.com/jonathan/candidate-profiler/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

// Schema returns the compiled embedded schema with the given file name.
// The shared definitions are registered once so cross-file references resolve offline.
func Schema(name string) (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileEmbedded()
	})
	if compileErr != nil {
		return nil, compileErr
	}
	schema, ok := compiled[name]
	if !ok {
		return nil, &SchemaLoadError{Path: name, Message: "unknown schema"}
	}
	return schema, nil
}

func compileEmbedded() (map[string]*gojsonschema.Schema, error) {
	common, err := schemafiles.Files.ReadFile(schemafiles.Common)
	if err != nil {
		return nil, &SchemaLoadError{Path: schemafiles.Common, Message: "failed to read embedded schema", Cause: err}
	}

	out := map[string]*gojsonschema.Schema{}
	for _, name := range []string{schemafiles.CandidateRecord, schemafiles.PartialRecord} {
		content, err := schemafiles.Files.ReadFile(name)
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "failed to read embedded schema", Cause: err}
		}

		loader := gojsonschema.NewSchemaLoader()
		loader.Draft = gojsonschema.Draft7
		if err := loader.AddSchemas(gojsonschema.NewBytesLoader(common)); err != nil {
			return nil, &SchemaLoadError{Path: schemafiles.Common, Message: "failed to register shared definitions", Cause: err}
		}
		schema, err := loader.Compile(gojsonschema.NewBytesLoader(content))
		if err != nil {
			return nil, &SchemaLoadError{Path: name, Message: "failed to compile schema", Cause: err}
		}
		out[name] = schema
	}
	return out, nil
}

// ValidateCandidateRecord checks a merged record against the output contract
func ValidateCandidateRecord(record *types.CandidateRecord) error {
	return validateValue(schemafiles.CandidateRecord, record)
}

// ValidatePartialRecord checks a single-source record against its contract
func ValidatePartialRecord(record *types.PartialCandidateRecord) error {
	return validateValue(schemafiles.PartialRecord, record)
}

// ValidateDocument validates raw JSON against the named embedded schema
func ValidateDocument(name string, jsonContent []byte) error {
	schema, err := Schema(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonContent))
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	return toValidationError(result)
}

func validateValue(name string, v any) error {
	content, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return ValidateDocument(name, content)
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}

	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}

	if _, err := os.Stat(jsonAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbsPath)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbsPath)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    schemaAbsPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

// toValidationError returns nil for a valid result
func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
