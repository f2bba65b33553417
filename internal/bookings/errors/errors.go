package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrStateMismatch means the booking exists but is not in a status the
	// requested transition starts from. The sweeper and the settlement path
	// both rely on this to lose races safely.
	ErrStateMismatch = errors.New("booking not in expected status")
)
