package store

import (
	"errors"
	"fmt"
)

// ErrConstraintViolation is the single category for persistence constraint
// failures: duplicates, foreign key, not-null and check violations, and
// entities rejected by domain validation at the store boundary.
// Callers test for it with errors.Is or IsConstraintError.
var ErrConstraintViolation = errors.New("persistence constraint violated")

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a unique constraint.
	ErrDuplicate = fmt.Errorf("%w: entity already exists", ErrConstraintViolation)

	// ErrInvalidEntity is returned when an entity fails validation or violates a
	// foreign key, not-null or check constraint. Check the wrapped error for details.
	ErrInvalidEntity = fmt.Errorf("%w: invalid entity", ErrConstraintViolation)

	// ErrNotImplemented is returned when a store method is not implemented.
	ErrNotImplemented = errors.New("method not implemented")

	// Entity-specific "not found" errors

	// ErrLearningPathNotFound indicates that the requested learning path does not exist.
	ErrLearningPathNotFound = fmt.Errorf("%w: learning path", ErrNotFound)

	// ErrModuleNotFound indicates that the requested module does not exist.
	ErrModuleNotFound = fmt.Errorf("%w: module", ErrNotFound)

	// ErrLearningResourceNotFound indicates that the requested learning resource does not exist.
	ErrLearningResourceNotFound = fmt.Errorf("%w: learning resource", ErrNotFound)

	// ErrScheduleNotFound indicates that the requested schedule does not exist.
	ErrScheduleNotFound = fmt.Errorf("%w: schedule", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrDuplicateSchedule indicates that the learning resource already has a
	// schedule on the requested date.
	ErrDuplicateSchedule = fmt.Errorf("%w: schedule for this learning resource and date", ErrDuplicate)

	// ErrDuplicateOrderIndex indicates that a sibling already uses the order index.
	ErrDuplicateOrderIndex = fmt.Errorf("%w: order index already used by a sibling", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error,
// including ErrDuplicateSchedule and ErrDuplicateOrderIndex.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConstraintError checks if the error belongs to the persistence
// constraint category.
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "module", "schedule")
	Operation string // The operation that failed (e.g., "create", "reorder")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
