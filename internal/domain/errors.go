package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrInvalidInterval  = fmt.Errorf("%w: start must be before end", ErrValidation)
	ErrInvalidTimeInput = fmt.Errorf("%w: invalid time input", ErrValidation)

	ErrConflict            = errors.New("room is already booked for this time slot")
	ErrNotFound            = errors.New("booking not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrStore               = errors.New("store error")
)

// Invalidf returns a descriptive error that matches ErrValidation.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
