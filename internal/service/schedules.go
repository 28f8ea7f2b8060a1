package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/learnpath/internal/domain"
	"github.com/phrazzld/learnpath/internal/platform/logger"
)

// ScheduleResource implements LearningService.ScheduleResource
func (s *learningServiceImpl) ScheduleResource(
	ctx context.Context,
	resourceID uuid.UUID,
	date time.Time,
) (*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("learning_resource_id", resourceID.String()))

	var schedule *domain.Schedule
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		if _, err := st.Resources.GetByID(ctx, resourceID); err != nil {
			return err
		}

		var err error
		schedule, err = domain.NewSchedule(resourceID, date)
		if err != nil {
			return rejectInvalid("schedule_resource", "invalid schedule", err)
		}
		return st.Schedules.Create(ctx, schedule)
	})
	if err != nil {
		return nil, s.fail(log, "schedule_resource", "failed to schedule learning resource", err)
	}

	log.Info("learning resource scheduled",
		slog.String("schedule_id", schedule.ID.String()),
		slog.String("scheduled_date", schedule.ScheduledDate.Format(time.DateOnly)))
	return schedule, nil
}

// GetSchedule implements LearningService.GetSchedule
func (s *learningServiceImpl) GetSchedule(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	schedule, err := s.stores.Schedules.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(log, "get_schedule", "failed to retrieve schedule", err,
			slog.String("schedule_id", id.String()))
	}
	return schedule, nil
}

// ListSchedules implements LearningService.ListSchedules
func (s *learningServiceImpl) ListSchedules(ctx context.Context, resourceID uuid.UUID) ([]*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	schedules, err := s.stores.Schedules.ListByLearningResource(ctx, resourceID)
	if err != nil {
		return nil, s.fail(log, "list_schedules", "failed to list schedules", err,
			slog.String("learning_resource_id", resourceID.String()))
	}
	return schedules, nil
}

// MarkDelivered implements LearningService.MarkDelivered
func (s *learningServiceImpl) MarkDelivered(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return s.mutateSchedule(ctx, "mark_delivered", id, func(sch *domain.Schedule) error {
		sch.MarkDelivered(s.clock.Now())
		return nil
	})
}

// MarkNotificationSent implements LearningService.MarkNotificationSent
func (s *learningServiceImpl) MarkNotificationSent(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return s.mutateSchedule(ctx, "mark_notification_sent", id, func(sch *domain.Schedule) error {
		sch.MarkNotificationSent(s.clock.Now())
		return nil
	})
}

// Reschedule implements LearningService.Reschedule
func (s *learningServiceImpl) Reschedule(
	ctx context.Context,
	id uuid.UUID,
	newDate time.Time,
) (*domain.Schedule, error) {
	return s.mutateSchedule(ctx, "reschedule", id, func(sch *domain.Schedule) error {
		return sch.Reschedule(newDate)
	})
}

// ListDueSchedules implements LearningService.ListDueSchedules
func (s *learningServiceImpl) ListDueSchedules(ctx context.Context, date time.Time) ([]*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	day := domain.DateOf(date)
	schedules, err := s.stores.Schedules.ListDueOn(ctx, day)
	if err != nil {
		return nil, s.fail(log, "list_due_schedules", "failed to list due schedules", err,
			slog.String("date", day.Format(time.DateOnly)))
	}
	return schedules, nil
}

// ListOverdueSchedules implements LearningService.ListOverdueSchedules
func (s *learningServiceImpl) ListOverdueSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	today := s.today()
	schedules, err := s.stores.Schedules.ListOverdue(ctx, today)
	if err != nil {
		return nil, s.fail(log, "list_overdue_schedules", "failed to list overdue schedules", err,
			slog.String("today", today.Format(time.DateOnly)))
	}

	log.Debug("overdue schedules listed",
		slog.String("today", today.Format(time.DateOnly)),
		slog.Int("count", len(schedules)))
	return schedules, nil
}

// DeleteSchedule implements LearningService.DeleteSchedule
func (s *learningServiceImpl) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		return st.Schedules.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(log, "delete_schedule", "failed to delete schedule", err,
			slog.String("schedule_id", id.String()))
	}

	log.Info("schedule deleted", slog.String("schedule_id", id.String()))
	return nil
}

// mutateSchedule loads a schedule, applies change and saves it in one transaction.
func (s *learningServiceImpl) mutateSchedule(
	ctx context.Context,
	operation string,
	id uuid.UUID,
	change func(sch *domain.Schedule) error,
) (*domain.Schedule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("schedule_id", id.String()))

	var schedule *domain.Schedule
	err := s.inTx(ctx, func(ctx context.Context, st Stores) error {
		var err error
		schedule, err = st.Schedules.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := change(schedule); err != nil {
			return rejectInvalid(operation, "schedule cannot be changed", err)
		}
		return st.Schedules.Update(ctx, schedule)
	})
	if err != nil {
		return nil, s.fail(log, operation, "failed to save schedule", err)
	}

	log.Info("schedule saved", slog.String("operation", operation))
	return schedule, nil
}
