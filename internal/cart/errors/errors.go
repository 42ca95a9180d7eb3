package errors

import "errors"

var (
	ErrNotFound  = errors.New("cart not found")
	ErrInvalidID = errors.New("invalid cart ID format")
	ErrConflict  = errors.New("cart was changed by another request")
)
