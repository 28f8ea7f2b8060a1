package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/redact"
	"github.com/phrazzld/learnpath/internal/store"
)

const scheduleColumns = `
	id, learning_resource_id, scheduled_date, delivered, delivered_at,
	notification_sent, notification_sent_at, reschedule_count,
	original_scheduled_date, created_at, updated_at
`

// PostgresScheduleStore implements the store.ScheduleStore interface
// using a PostgreSQL database as the storage backend.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScheduleStore creates a new PostgreSQL implementation of the
// ScheduleStore interface. If logger is nil, slog.Default() is used.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// Ensure PostgresScheduleStore implements store.ScheduleStore interface
var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

// WithTx implements store.ScheduleStore.WithTx
func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &PostgresScheduleStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ScheduleStore.Create
func (s *PostgresScheduleStore) Create(ctx context.Context, schedule *domain.Schedule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during create",
			slog.String("error", err.Error()),
			slog.String("schedule_id", schedule.ID.String()))
		return invalidEntity(err)
	}

	query := `INSERT INTO schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(
		ctx,
		query,
		schedule.ID,
		schedule.LearningResourceID,
		schedule.ScheduledDate,
		schedule.Delivered,
		nullTime(schedule.DeliveredAt),
		schedule.NotificationSent,
		nullTime(schedule.NotificationSentAt),
		schedule.RescheduleCount,
		nullTime(schedule.OriginalScheduledDate),
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDuplicateSchedule) {
			log.Warn("resource already scheduled on date",
				slog.String("learning_resource_id", schedule.LearningResourceID.String()),
				slog.String("scheduled_date", schedule.ScheduledDate.Format(domain.DateLayout)))
			return mapped
		}
		log.Error("failed to create schedule",
			slog.String("error", redact.Error(err)),
			slog.String("schedule_id", schedule.ID.String()),
			slog.String("learning_resource_id", schedule.LearningResourceID.String()))
		return mapped
	}

	schedule.CreatedAt, schedule.UpdatedAt = schedule.CreatedAt.UTC(), schedule.UpdatedAt.UTC()

	log.Info("schedule created successfully",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("learning_resource_id", schedule.LearningResourceID.String()),
		slog.String("scheduled_date", schedule.ScheduledDate.Format(domain.DateLayout)))
	return nil
}

// GetByID implements store.ScheduleStore.GetByID
func (s *PostgresScheduleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	schedule, err := scanSchedule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("schedule not found", slog.String("schedule_id", id.String()))
			return nil, store.ErrScheduleNotFound
		}
		log.Error("failed to get schedule by ID",
			slog.String("error", redact.Error(err)),
			slog.String("schedule_id", id.String()))
		return nil, MapError(err)
	}

	return schedule, nil
}

// ListByLearningResource implements store.ScheduleStore.ListByLearningResource
func (s *PostgresScheduleStore) ListByLearningResource(
	ctx context.Context,
	learningResourceID uuid.UUID,
) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules WHERE learning_resource_id = $1 ORDER BY scheduled_date`
	return s.list(ctx, "by_resource", query, learningResourceID)
}

// ListDueOn implements store.ScheduleStore.ListDueOn
func (s *PostgresScheduleStore) ListDueOn(ctx context.Context, date time.Time) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules WHERE scheduled_date = $1 ORDER BY created_at, id`
	return s.list(ctx, "due_on", query, domain.DateOf(date))
}

// ListOverdue implements store.ScheduleStore.ListOverdue
func (s *PostgresScheduleStore) ListOverdue(ctx context.Context, today time.Time) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules WHERE NOT delivered AND scheduled_date < $1
		ORDER BY scheduled_date, created_at, id`
	return s.list(ctx, "overdue", query, domain.DateOf(today))
}

func (s *PostgresScheduleStore) list(ctx context.Context, kind, query string, arg any) ([]*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("list", kind))

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		log.Error("failed to query schedules", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error("failed to close rows", slog.String("error", redact.Error(closeErr)))
		}
	}()

	schedules := []*domain.Schedule{}
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			log.Error("failed to scan schedule row", slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("schedules listed", slog.Int("count", len(schedules)))
	return schedules, nil
}

// Update implements store.ScheduleStore.Update
func (s *PostgresScheduleStore) Update(ctx context.Context, schedule *domain.Schedule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := schedule.Validate(); err != nil {
		log.Warn("schedule validation failed during update",
			slog.String("error", err.Error()),
			slog.String("schedule_id", schedule.ID.String()))
		return invalidEntity(err)
	}

	query := `
		UPDATE schedules
		SET scheduled_date = $1, delivered = $2, delivered_at = $3,
			notification_sent = $4, notification_sent_at = $5,
			reschedule_count = $6, original_scheduled_date = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	var updatedAt time.Time
	err := s.db.QueryRowContext(
		ctx,
		query,
		schedule.ScheduledDate,
		schedule.Delivered,
		nullTime(schedule.DeliveredAt),
		schedule.NotificationSent,
		nullTime(schedule.NotificationSentAt),
		schedule.RescheduleCount,
		nullTime(schedule.OriginalScheduledDate),
		schedule.ID,
	).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("schedule not found for update", slog.String("schedule_id", schedule.ID.String()))
		return store.ErrScheduleNotFound
	}
	if err != nil {
		log.Error("failed to update schedule",
			slog.String("error", redact.Error(err)),
			slog.String("schedule_id", schedule.ID.String()))
		return MapError(err)
	}
	schedule.UpdatedAt = updatedAt.UTC()

	log.Info("schedule updated successfully",
		slog.String("schedule_id", schedule.ID.String()),
		slog.Bool("delivered", schedule.Delivered),
		slog.Int("reschedule_count", schedule.RescheduleCount))
	return nil
}

// Delete implements store.ScheduleStore.Delete
func (s *PostgresScheduleStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete schedule",
			slog.String("error", redact.Error(err)),
			slog.String("schedule_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrScheduleNotFound); err != nil {
		log.Debug("schedule not found for delete", slog.String("schedule_id", id.String()))
		return err
	}

	log.Info("schedule deleted successfully", slog.String("schedule_id", id.String()))
	return nil
}

func scanSchedule(row rowScanner) (*domain.Schedule, error) {
	var (
		schedule           domain.Schedule
		scheduledDate      time.Time
		deliveredAt        sql.NullTime
		notificationSentAt sql.NullTime
		originalDate       sql.NullTime
	)

	err := row.Scan(
		&schedule.ID,
		&schedule.LearningResourceID,
		&scheduledDate,
		&schedule.Delivered,
		&deliveredAt,
		&schedule.NotificationSent,
		&notificationSentAt,
		&schedule.RescheduleCount,
		&originalDate,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	schedule.ScheduledDate = domain.DateOf(scheduledDate)
	schedule.DeliveredAt = timePtr(deliveredAt)
	schedule.NotificationSentAt = timePtr(notificationSentAt)
	schedule.OriginalScheduledDate = datePtr(originalDate)
	schedule.CreatedAt = schedule.CreatedAt.UTC()
	schedule.UpdatedAt = schedule.UpdatedAt.UTC()
	return &schedule, nil
}
