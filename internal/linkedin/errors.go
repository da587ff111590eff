package linkedin

import "fmt"

// ProfileError represents structured profile data that could not be read or decoded
type ProfileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ProfileError) Error() string {
	prefix := "profile error"
	if e.Path != "" {
		prefix = fmt.Sprintf("profile error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProfileError) Unwrap() error {
	return e.Cause
}
