package completion

import "fmt"

// Kind classifies a completion failure.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindConnectionFailure Kind = "connection_failure"
	KindAuthFailure       Kind = "auth_failure"
	KindRateLimited       Kind = "rate_limited"
	KindBackendError      Kind = "backend_error"
	KindMalformedResponse Kind = "malformed_response"
)

// Error is the typed failure returned by the completion client. It
// replaces the old scheme of signalling failure through a prefix on the
// response text: callers branch on Kind, and UserMessage supplies the
// stable short text shown in chat.
type Error struct {
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

// NewError creates a new completion error
func NewError(kind Kind, statusCode int, detail string, err error) *Error {
	return &Error{
		Kind:       kind,
		StatusCode: statusCode,
		Detail:     detail,
		Err:        err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion %s (status %d): %s: %v", e.Kind, e.StatusCode, e.Detail, e.Err)
	}
	return fmt.Sprintf("completion %s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
}

// Unwrap implements error unwrapping
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the short, stable, human-readable text for this
// failure kind, suitable for rendering as chat content.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindTimeout:
		return "Request timed out. Please try again."
	case KindConnectionFailure:
		return "Unable to connect to the completion service. Please check your internet connection."
	case KindAuthFailure:
		return "Invalid API key. Please check your credentials."
	case KindRateLimited:
		return "Rate limit exceeded. Please wait before trying again."
	case KindMalformedResponse:
		return "Invalid response format from the completion service."
	default:
		return fmt.Sprintf("The completion request failed with status %d.", e.StatusCode)
	}
}
