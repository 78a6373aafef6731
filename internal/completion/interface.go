package completion

import "context"

// Completer defines the interface for completion client operations
type Completer interface {
	// Complete sends a prompt to the completion backend and returns the
	// response text, or a *Error classifying the failure.
	Complete(ctx context.Context, prompt string) (string, error)
}
