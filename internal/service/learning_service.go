package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/redact"
	"github.com/phrazzld/learnpath/internal/store"
)

// Stores groups the repositories the learning service coordinates.
type Stores struct {
	Paths     store.LearningPathStore
	Modules   store.ModuleStore
	Resources store.LearningResourceStore
	Schedules store.ScheduleStore
}

// withTx returns the same stores bound to tx.
func (st Stores) withTx(tx *sql.Tx) Stores {
	return Stores{
		Paths:     st.Paths.WithTx(tx),
		Modules:   st.Modules.WithTx(tx),
		Resources: st.Resources.WithTx(tx),
		Schedules: st.Schedules.WithTx(tx),
	}
}

// LearningService provides the learning path use cases.
type LearningService interface {
	// CreatePath creates a new active learning path.
	CreatePath(ctx context.Context, name string, opts domain.LearningPathOptions) (*domain.LearningPath, error)
	// GetPath retrieves a path with its derived counts.
	GetPath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)
	// ListPaths lists paths, newest first.
	ListPaths(ctx context.Context, opts store.LearningPathListOptions) ([]*domain.LearningPath, error)
	// UpdatePath applies a partial update. An empty update returns the path unchanged.
	UpdatePath(ctx context.Context, id uuid.UUID, update domain.LearningPathUpdate) (*domain.LearningPath, error)
	// ArchivePath marks a path inactive. Archiving twice is harmless.
	ArchivePath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)
	// RestorePath marks an archived path active again.
	RestorePath(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)
	// DeletePath physically removes a path and, by cascade, everything below it.
	DeletePath(ctx context.Context, id uuid.UUID) error

	// AddModule appends a module to a path. A nil orderIndex means "after the last module".
	AddModule(
		ctx context.Context,
		learningPathID uuid.UUID,
		name string,
		orderIndex *int,
		opts domain.ModuleOptions,
	) (*domain.Module, error)
	// GetModule retrieves a module with its resource count.
	GetModule(ctx context.Context, id uuid.UUID) (*domain.Module, error)
	// UpdateModule applies a partial update.
	UpdateModule(ctx context.Context, id uuid.UUID, update domain.ModuleUpdate) (*domain.Module, error)
	// ListModules lists the modules of a path in order.
	ListModules(ctx context.Context, learningPathID uuid.UUID) ([]*domain.Module, error)
	// ReorderModules renumbers the modules of a path 0..n-1 following orderedIDs.
	ReorderModules(ctx context.Context, learningPathID uuid.UUID, orderedIDs []uuid.UUID) error
	// DeleteModule removes a module with its resources and schedules.
	DeleteModule(ctx context.Context, id uuid.UUID) error

	// AddResource appends a resource to a module. A nil orderIndex means "after the last resource".
	AddResource(
		ctx context.Context,
		moduleID uuid.UUID,
		title string,
		orderIndex *int,
		opts domain.LearningResourceOptions,
	) (*domain.LearningResource, error)
	// GetResource retrieves a learning resource.
	GetResource(ctx context.Context, id uuid.UUID) (*domain.LearningResource, error)
	// UpdateResource applies a partial update.
	UpdateResource(
		ctx context.Context,
		id uuid.UUID,
		update domain.LearningResourceUpdate,
	) (*domain.LearningResource, error)
	// ListResources lists the resources of a module in order.
	ListResources(ctx context.Context, moduleID uuid.UUID) ([]*domain.LearningResource, error)
	// ReorderResources renumbers the resources of a module 0..n-1 following orderedIDs.
	ReorderResources(ctx context.Context, moduleID uuid.UUID, orderedIDs []uuid.UUID) error
	// DeleteResource removes a resource with its schedules.
	DeleteResource(ctx context.Context, id uuid.UUID) error

	// ScheduleResource schedules a resource on the calendar date of date.
	ScheduleResource(ctx context.Context, resourceID uuid.UUID, date time.Time) (*domain.Schedule, error)
	// GetSchedule retrieves a schedule.
	GetSchedule(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	// ListSchedules lists the schedules of a resource by date.
	ListSchedules(ctx context.Context, resourceID uuid.UUID) ([]*domain.Schedule, error)
	// MarkDelivered records delivery at the current time.
	MarkDelivered(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	// MarkNotificationSent records that the reminder went out.
	MarkNotificationSent(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
	// Reschedule moves an undelivered schedule to the calendar date of newDate.
	Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time) (*domain.Schedule, error)
	// ListDueSchedules lists every schedule on the calendar date of date.
	ListDueSchedules(ctx context.Context, date time.Time) ([]*domain.Schedule, error)
	// ListOverdueSchedules lists undelivered schedules dated before today.
	ListOverdueSchedules(ctx context.Context) ([]*domain.Schedule, error)
	// DeleteSchedule removes a schedule.
	DeleteSchedule(ctx context.Context, id uuid.UUID) error

	// Today returns the calendar date the service treats as today, for use
	// with domain.Schedule.ToMapOn.
	Today() time.Time
}

// learningServiceImpl implements the LearningService interface
type learningServiceImpl struct {
	db     *sql.DB
	stores Stores
	clock  Clock
	logger *slog.Logger
}

// NewLearningService creates a new LearningService.
// It returns an error if db or any store is nil. A nil clock uses the system
// clock in UTC and a nil logger uses slog.Default().
func NewLearningService(db *sql.DB, stores Stores, clock Clock, logger *slog.Logger) (LearningService, error) {
	if db == nil {
		return nil, NewLearningServiceError("create_service", "db cannot be nil", ErrNilDependency)
	}
	if stores.Paths == nil || stores.Modules == nil || stores.Resources == nil || stores.Schedules == nil {
		return nil, NewLearningServiceError("create_service", "stores cannot be nil", ErrNilDependency)
	}

	if clock == nil {
		clock = NewSystemClock(time.UTC)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &learningServiceImpl{
		db:     db,
		stores: stores,
		clock:  clock,
		logger: logger.With(slog.String("component", "learning_service")),
	}, nil
}

// inTx runs fn in one transaction with transaction-bound stores.
func (s *learningServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context, st Stores) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.stores.withTx(tx))
	})
}

// Today implements LearningService.Today
func (s *learningServiceImpl) Today() time.Time {
	return s.today()
}

// today returns the current calendar date in the clock's location.
func (s *learningServiceImpl) today() time.Time {
	return domain.DateOf(s.clock.Now())
}

// fail logs err and converts it to the service error contract.
func (s *learningServiceImpl) fail(log *slog.Logger, operation, message string, err error, attrs ...any) error {
	attrs = append(attrs, slog.String("operation", operation), slog.String("error", redact.Error(err)))
	switch {
	case store.IsNotFoundError(err):
		log.Debug(message, attrs...)
	case store.IsConstraintError(err) || domain.IsValidationError(err),
		errors.Is(err, domain.ErrScheduleAlreadyDelivered):
		log.Warn(message, attrs...)
	default:
		log.Error(message, attrs...)
	}
	return NewLearningServiceError(operation, message, err)
}
