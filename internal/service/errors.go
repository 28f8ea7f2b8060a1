package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/store"
)

// ErrNilDependency is returned by NewLearningService when a required
// dependency is missing.
var ErrNilDependency = errors.New("required dependency is nil")

// LearningServiceError wraps errors from the learning service with context.
type LearningServiceError struct {
	// Operation is the operation that failed (e.g., "add_module", "reschedule")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for LearningServiceError.
func (e *LearningServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("learning service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("learning service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *LearningServiceError) Unwrap() error {
	return e.Err
}

// NewLearningServiceError creates a new LearningServiceError.
// Store sentinel errors are returned directly without wrapping.
func NewLearningServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if store.IsNotFoundError(err) || store.IsConstraintError(err) {
		return err
	}

	// Already wrapped inside the same transaction
	var svcErr *LearningServiceError
	if errors.As(err, &svcErr) {
		return err
	}

	return &LearningServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// rejectInvalid reports a domain validation failure as store.ErrInvalidEntity,
// the category the stores use for the same entity. Other errors are wrapped
// as a LearningServiceError.
func rejectInvalid(operation, message string, err error) error {
	if domain.IsValidationError(err) {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return NewLearningServiceError(operation, message, err)
}
