package ingestion

import "fmt"

// InputError represents raw input that cannot be turned into text
type InputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	prefix := "input error"
	if e.Path != "" {
		prefix = fmt.Sprintf("input error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}
