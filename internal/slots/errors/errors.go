package errors

import "errors"

var (
	ErrNotFound = errors.New("slot hold not found")

	ErrLockHeld = errors.New("resource day is locked by another request")
)
