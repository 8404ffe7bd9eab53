package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects the write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned for writes that fail a schema check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
