package errors

import "errors"

var (
	ErrNotFound = errors.New("product not found")

	ErrInvalidID = errors.New("invalid product ID format")

	// ErrInsufficientStock is returned when a stock decrement would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)
