package errors

import "errors"

var (
	ErrNotFound = errors.New("charging station not found")

	ErrInvalidID = errors.New("invalid charging station ID format")
)
