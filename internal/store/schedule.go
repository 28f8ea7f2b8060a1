package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
)

// ScheduleStore defines the interface for schedule persistence.
type ScheduleStore interface {
	// Create saves a new schedule.
	// Returns ErrDuplicateSchedule if the resource already has a schedule on
	// the same date, and an error wrapping ErrInvalidEntity if the resource
	// does not exist.
	Create(ctx context.Context, schedule *domain.Schedule) error

	// GetByID retrieves a schedule.
	// Returns ErrScheduleNotFound if the schedule does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)

	// ListByLearningResource returns the schedules of a resource by date.
	ListByLearningResource(ctx context.Context, learningResourceID uuid.UUID) ([]*domain.Schedule, error)

	// ListDueOn returns every schedule, delivered or not, falling on date.
	ListDueOn(ctx context.Context, date time.Time) ([]*domain.Schedule, error)

	// ListOverdue returns undelivered schedules dated before today, oldest first.
	ListOverdue(ctx context.Context, today time.Time) ([]*domain.Schedule, error)

	// Update persists an existing schedule, including delivery, notification
	// and reschedule bookkeeping.
	// Returns ErrScheduleNotFound if the schedule does not exist and
	// ErrDuplicateSchedule if a reschedule collides with another schedule.
	Update(ctx context.Context, schedule *domain.Schedule) error

	// Delete removes a schedule.
	// Returns ErrScheduleNotFound if the schedule does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a ScheduleStore bound to the given transaction.
	WithTx(tx *sql.Tx) ScheduleStore
}
