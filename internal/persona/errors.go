package persona

import "fmt"

// UnknownPersonaError is returned when a code is not one of the sixteen
// catalog entries.
type UnknownPersonaError struct {
	Code string
}

// NewUnknownPersonaError creates a new unknown persona error
func NewUnknownPersonaError(code string) *UnknownPersonaError {
	return &UnknownPersonaError{Code: code}
}

// Error implements the error interface
func (e *UnknownPersonaError) Error() string {
	return fmt.Sprintf("unknown persona code %q", e.Code)
}
