package errors

import "errors"

var (
	ErrNotFound = errors.New("owner not found")

	ErrInvalidID = errors.New("invalid owner ID format")

	ErrDuplicateEmail = errors.New("owner email already exists")
)
