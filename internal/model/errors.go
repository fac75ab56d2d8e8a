package model

import "errors"

var (
	// ErrValidation marks malformed or out-of-domain input; nothing was changed.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a reference to an order id that does not exist.
	ErrNotFound = errors.New("order not found")
)
