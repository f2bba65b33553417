package errors

import "errors"

var (
	ErrNotFound = errors.New("payment record not found")

	// ErrStateMismatch means the record exists but is not in the expected
	// status, usually because a duplicate callback already settled it.
	ErrStateMismatch = errors.New("payment record not in expected status")
)
