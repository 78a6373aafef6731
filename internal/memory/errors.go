package memory

import (
	"errors"
	"fmt"
)

// ErrIdentityNotFound reports that the backend does not know the given
// memory identity. The resolver treats this as a stale mapping.
var ErrIdentityNotFound = errors.New("memory identity not found")

// SaveError reports a failed attempt to persist a conversation turn.
// Unlike read-path failures this one is surfaced to the user, since a
// save is an explicit user-initiated action.
type SaveError struct {
	Op  string
	Err error
}

// NewSaveError creates a new save error
func NewSaveError(op string, err error) *SaveError {
	return &SaveError{Op: op, Err: err}
}

// Error implements the error interface
func (e *SaveError) Error() string {
	return fmt.Sprintf("memory save failed during %s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping
func (e *SaveError) Unwrap() error {
	return e.Err
}
