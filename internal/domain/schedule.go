package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates in ToMap output.
const DateLayout = "2006-01-02"

// Schedule-specific errors
var (
	ErrScheduleIDEmpty         = fmt.Errorf("%w: schedule ID cannot be empty", ErrValidation)
	ErrScheduleResourceIDEmpty = fmt.Errorf("%w: schedule learning resource ID cannot be empty", ErrValidation)
	ErrScheduleDateEmpty       = fmt.Errorf("%w: scheduled date cannot be empty", ErrValidation)
	ErrDeliveredAtMissing      = fmt.Errorf("%w: delivered schedule must have a delivery time", ErrValidation)
	ErrInvalidRescheduleCount  = fmt.Errorf("%w: reschedule count must be greater than or equal to 0", ErrValidation)

	// ErrScheduleAlreadyDelivered is returned when rescheduling a schedule
	// whose resource has already been delivered.
	ErrScheduleAlreadyDelivered = errors.New("schedule already delivered")
)

// Schedule is a planned delivery date for one learning resource.
// A resource has at most one schedule per calendar date.
type Schedule struct {
	ID                    uuid.UUID  `json:"id"`
	LearningResourceID    uuid.UUID  `json:"learning_resource_id"`
	ScheduledDate         time.Time  `json:"scheduled_date"`
	Delivered             bool       `json:"delivered"`
	DeliveredAt           *time.Time `json:"delivered_at,omitempty"`
	NotificationSent      bool       `json:"notification_sent"`
	NotificationSentAt    *time.Time `json:"notification_sent_at,omitempty"`
	RescheduleCount       int        `json:"reschedule_count"`
	OriginalScheduledDate *time.Time `json:"original_scheduled_date,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC.
// Schedules compare and store dates in this normalized form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc. A nil loc means UTC.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// NewSchedule creates an undelivered schedule for the resource on the calendar
// date of scheduledDate. Any time-of-day component is discarded.
func NewSchedule(learningResourceID uuid.UUID, scheduledDate time.Time) (*Schedule, error) {
	if scheduledDate.IsZero() {
		return nil, ErrScheduleDateEmpty
	}

	now := time.Now().UTC()
	schedule := &Schedule{
		ID:                 uuid.New(),
		LearningResourceID: learningResourceID,
		ScheduledDate:      DateOf(scheduledDate),
		Delivered:          false,
		NotificationSent:   false,
		RescheduleCount:    0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Validate checks if the Schedule has valid data.
func (s *Schedule) Validate() error {
	if s.ID == uuid.Nil {
		return ErrScheduleIDEmpty
	}

	if s.LearningResourceID == uuid.Nil {
		return ErrScheduleResourceIDEmpty
	}

	if s.ScheduledDate.IsZero() {
		return ErrScheduleDateEmpty
	}

	if s.Delivered && s.DeliveredAt == nil {
		return ErrDeliveredAtMissing
	}

	if s.RescheduleCount < 0 {
		return ErrInvalidRescheduleCount
	}

	return nil
}

// MarkDelivered records delivery at now. Calling it again overwrites
// DeliveredAt with the newer time.
func (s *Schedule) MarkDelivered(now time.Time) {
	at := now.UTC()
	s.Delivered = true
	s.DeliveredAt = &at
	s.UpdatedAt = at
}

// MarkNotificationSent records that the delivery notification went out at now.
func (s *Schedule) MarkNotificationSent(now time.Time) {
	at := now.UTC()
	s.NotificationSent = true
	s.NotificationSentAt = &at
	s.UpdatedAt = at
}

// Reschedule moves the schedule to the calendar date of newDate.
// The first move remembers the original date; every move increments
// RescheduleCount. Moving to the current date is a no-op.
// Returns ErrScheduleAlreadyDelivered for delivered schedules.
func (s *Schedule) Reschedule(newDate time.Time) error {
	if newDate.IsZero() {
		return ErrScheduleDateEmpty
	}
	if s.Delivered {
		return ErrScheduleAlreadyDelivered
	}

	date := DateOf(newDate)
	if date.Equal(s.ScheduledDate) {
		return nil
	}

	if s.OriginalScheduledDate == nil {
		original := s.ScheduledDate
		s.OriginalScheduledDate = &original
	}
	s.ScheduledDate = date
	s.RescheduleCount++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IsOverdueOn reports whether the schedule is undelivered and its date is
// before today.
func (s *Schedule) IsOverdueOn(today time.Time) bool {
	return !s.Delivered && s.ScheduledDate.Before(DateOf(today))
}

// IsDueOn reports whether the schedule falls on today's date.
func (s *Schedule) IsDueOn(today time.Time) bool {
	return s.ScheduledDate.Equal(DateOf(today))
}

// IsOverdue is IsOverdueOn for the current UTC date.
func (s *Schedule) IsOverdue() bool {
	return s.IsOverdueOn(Today(time.UTC))
}

// IsToday is IsDueOn for the current UTC date.
func (s *Schedule) IsToday() bool {
	return s.IsDueOn(Today(time.UTC))
}

// ToMap converts the schedule into a plain mapping for JSON serialization,
// judging is_overdue and is_today against the current UTC date.
func (s *Schedule) ToMap() map[string]any {
	return s.ToMapOn(Today(time.UTC))
}

// ToMapOn is ToMap with is_overdue and is_today judged against the calendar
// date of today. Dates render as YYYY-MM-DD, timestamps as ISO-8601.
func (s *Schedule) ToMapOn(today time.Time) map[string]any {
	var original any
	if s.OriginalScheduledDate != nil {
		original = s.OriginalScheduledDate.Format(DateLayout)
	}

	return map[string]any{
		"id":                      s.ID.String(),
		"learning_resource_id":    s.LearningResourceID.String(),
		"scheduled_date":          s.ScheduledDate.Format(DateLayout),
		"delivered":               s.Delivered,
		"delivered_at":            formatOptionalTimestamp(s.DeliveredAt),
		"notification_sent":       s.NotificationSent,
		"notification_sent_at":    formatOptionalTimestamp(s.NotificationSentAt),
		"reschedule_count":        s.RescheduleCount,
		"original_scheduled_date": original,
		"is_overdue":              s.IsOverdueOn(today),
		"is_today":                s.IsDueOn(today),
		"created_at":              formatTimestamp(s.CreatedAt),
		"updated_at":              formatTimestamp(s.UpdatedAt),
	}
}
