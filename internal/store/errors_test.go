package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrLearningPathNotFound", err: ErrLearningPathNotFound, expected: true},
		{name: "ErrModuleNotFound", err: ErrModuleNotFound, expected: true},
		{name: "ErrLearningResourceNotFound", err: ErrLearningResourceNotFound, expected: true},
		{
			name:     "wrapped ErrScheduleNotFound",
			err:      fmt.Errorf("failed to load schedule: %w", ErrScheduleNotFound),
			expected: true,
		},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrDuplicateSchedule", err: ErrDuplicateSchedule, expected: true},
		{
			name:     "wrapped ErrDuplicateOrderIndex",
			err:      fmt.Errorf("create module: %w", ErrDuplicateOrderIndex),
			expected: true,
		},
		{name: "ErrInvalidEntity", err: ErrInvalidEntity, expected: false},
		{name: "ErrModuleNotFound", err: ErrModuleNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestIsConstraintError(t *testing.T) {
	constraintErrs := []error{
		ErrConstraintViolation,
		ErrDuplicate,
		ErrDuplicateSchedule,
		ErrDuplicateOrderIndex,
		ErrInvalidEntity,
		fmt.Errorf("%w: foreign key", ErrInvalidEntity),
		NewStoreError("schedule", "create", "duplicate", ErrDuplicateSchedule),
	}
	for _, err := range constraintErrs {
		assert.True(t, IsConstraintError(err), "expected %v to be a constraint error", err)
	}

	for _, err := range []error{nil, ErrNotFound, ErrScheduleNotFound, ErrNotImplemented, errors.New("boom")} {
		assert.False(t, IsConstraintError(err), "expected %v not to be a constraint error", err)
	}
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("module", "reorder", "sibling collision", ErrDuplicateOrderIndex)

		assert.Equal(t,
			"reorder operation on module failed: sibling collision: "+ErrDuplicateOrderIndex.Error(),
			err.Error())
		assert.ErrorIs(t, err, ErrDuplicateOrderIndex)
		assert.ErrorIs(t, err, ErrDuplicate)

		var storeErr *StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
		assert.Equal(t, "module", storeErr.Entity)
		assert.Equal(t, "reorder", storeErr.Operation)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("learning_path", "list", "bad pagination", nil)
		assert.Equal(t, "list operation on learning_path failed: bad pagination", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
