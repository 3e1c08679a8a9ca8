package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrSlotConflict = errors.New("charging slot overlaps an existing reservation")

	ErrNoStation = errors.New("no matching station within range")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrNotOwner = errors.New("booking belongs to another user")
)
