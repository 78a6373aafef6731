package session

import "errors"

// Guard failures for the submit and save actions. All recovery is
// user-initiated; the controller never retries on its own.
var (
	ErrEmptyQuestion     = errors.New("question must not be empty")
	ErrBusy              = errors.New("a completion request is already in progress")
	ErrMemoryUnavailable = errors.New("memory is not available for this session")
	ErrTurnNotFound      = errors.New("turn not found")
	ErrAlreadySaved      = errors.New("turn has already been saved")
	ErrFailedTurn        = errors.New("failed turns cannot be saved")
)
