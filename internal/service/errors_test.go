package service

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLearningServiceError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewLearningServiceError("op", "msg", nil))

	for _, sentinel := range []error{
		store.ErrModuleNotFound,
		store.ErrDuplicateSchedule,
		store.ErrDuplicateOrderIndex,
		store.ErrInvalidEntity,
	} {
		assert.Equal(t, sentinel, NewLearningServiceError("op", "msg", sentinel))
	}

	err := NewLearningServiceError("reschedule", "schedule cannot be changed", domain.ErrScheduleAlreadyDelivered)
	var svcErr *LearningServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "reschedule", svcErr.Operation)
	assert.ErrorIs(t, err, domain.ErrScheduleAlreadyDelivered)
	assert.Equal(t,
		"learning service reschedule failed: schedule cannot be changed: schedule already delivered",
		err.Error())

	// An already wrapped error keeps its original operation.
	assert.Same(t, err, NewLearningServiceError("outer", "other", err))
}

func TestRejectInvalid(t *testing.T) {
	t.Parallel()

	err := rejectInvalid("create_path", "invalid learning path", domain.ErrLearningPathNameEmpty)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrLearningPathNameEmpty)
	assert.True(t, store.IsConstraintError(err))
	assert.True(t, domain.IsValidationError(err))
	assert.Same(t, err, NewLearningServiceError("create_path", "failed to save", err))

	err = rejectInvalid("reschedule", "schedule cannot be changed", domain.ErrScheduleAlreadyDelivered)
	assert.False(t, store.IsConstraintError(err))
	var svcErr *LearningServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "reschedule", svcErr.Operation)
}

func TestLearningServiceErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := &LearningServiceError{Operation: "create_service", Message: "db cannot be nil"}
	assert.Equal(t, "learning service create_service failed: db cannot be nil", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestSystemClock(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, tokyo, NewSystemClock(tokyo).Now().Location())
	assert.Equal(t, time.UTC, NewSystemClock(nil).Now().Location())
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}
