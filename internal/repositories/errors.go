package repositories

import "errors"

var (
	// ErrNotFound is returned when the targeted record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("record already exists")
)
