package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every domain validation error.
// Entity-specific errors wrap it, so errors.Is(err, ErrValidation) reports
// whether a failure came from domain rules rather than storage.
var ErrValidation = errors.New("validation failed")

// Common validation errors shared by several entities.
var (
	// ErrInvalidID is returned when a required ID is the nil UUID.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidOrderIndex is returned when an order index is negative.
	ErrInvalidOrderIndex = fmt.Errorf("%w: order index must be greater than or equal to 0", ErrValidation)

	// ErrInvalidDuration is returned when a duration in days is negative.
	ErrInvalidDuration = fmt.Errorf("%w: duration must be greater than or equal to 0", ErrValidation)

	// ErrInvalidAttributes is returned when structured metadata contains
	// values other than primitives or arrays of primitives.
	ErrInvalidAttributes = fmt.Errorf("%w: invalid structured attributes", ErrValidation)
)

// IsValidationError reports whether err is, or wraps, a domain validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
