package skills

import "fmt"

// VocabularyLoadError represents a malformed or unreadable controlled vocabulary
type VocabularyLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *VocabularyLoadError) Error() string {
	prefix := "vocabulary load error"
	if e.Path != "" {
		prefix = fmt.Sprintf("vocabulary load error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *VocabularyLoadError) Unwrap() error {
	return e.Cause
}
