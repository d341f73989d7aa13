package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/booking"
	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/repo"
)

// ReminderPlan is the booking analysis of one activity and the reminders it
// produced. Reminders are always returned, even when storing them failed;
// PersistErr then holds the store error and Persisted is false.
type ReminderPlan struct {
	Requirement booking.Requirement `json:"requirement"`
	Urgency     booking.Urgency     `json:"urgency"`
	Reminders   []domain.Reminder   `json:"reminders"`
	Persisted   bool                `json:"persisted"`
	PersistErr  error               `json:"-"`
}

// ReminderService implements booking analysis and reminder scheduling.
type ReminderService struct {
	activities repo.ActivityRepo
	days       repo.DayRepo
	reminders  repo.ReminderRepo
	enabled    bool
	offsets    []int
	now        func() time.Time
	metrics    *metrics.Metrics
}

// NewReminderService constructs a ReminderService. When enabled is false
// reminders are computed but never stored. offsets are the default days
// before the event; m may be nil.
func NewReminderService(activities repo.ActivityRepo, days repo.DayRepo, reminders repo.ReminderRepo,
	enabled bool, offsets []int, m *metrics.Metrics,
) *ReminderService {
	if len(offsets) == 0 {
		offsets = booking.DefaultOffsets
	}
	return &ReminderService{
		activities: activities,
		days:       days,
		reminders:  reminders,
		enabled:    enabled,
		offsets:    offsets,
		now:        time.Now,
		metrics:    m,
	}
}

// WithClock replaces the service's time source. Used by tests.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// Schedule classifies an activity, scores its booking urgency and generates
// reminders at the given offsets (the configured defaults when empty).
// Reminders whose time has already passed are dropped.
//
// A store failure is reported in the plan and the returned error wraps
// domain.ErrPersistence; the computed plan is returned alongside it.
func (s *ReminderService) Schedule(ctx context.Context, tripID, activityID uuid.UUID, offsets []int) (ReminderPlan, error) {
	a, err := s.activities.GetByID(ctx, tripID, activityID)
	if err != nil {
		return ReminderPlan{}, fmt.Errorf("service.ReminderService.Schedule: %w", err)
	}
	day, err := s.days.GetByID(ctx, tripID, a.DayID)
	if err != nil {
		return ReminderPlan{}, fmt.Errorf("service.ReminderService.Schedule: %w", err)
	}
	if len(offsets) == 0 {
		offsets = s.offsets
	}

	now := s.now()
	u := booking.Analyze(a, day.Date, now)
	rs, err := booking.Reminders(a, day.Date, now, offsets, u.Priority)
	if err != nil {
		return ReminderPlan{}, fmt.Errorf("service.ReminderService.Schedule: %w", err)
	}
	plan := ReminderPlan{Requirement: booking.Classify(a), Urgency: u, Reminders: rs}
	if rs == nil {
		plan.Reminders = []domain.Reminder{}
	}
	if !s.enabled || len(rs) == 0 {
		return plan, nil
	}

	saved, err := s.reminders.CreateBatch(ctx, rs)
	s.metrics.Reminders(len(rs), err == nil)
	if err != nil {
		slog.WarnContext(ctx, "reminder batch not stored",
			"trip_id", tripID, "activity_id", activityID, "count", len(rs), "error", err)
		plan.PersistErr = err
		return plan, fmt.Errorf("service.ReminderService.Schedule: %w: %w", domain.ErrPersistence, err)
	}
	plan.Reminders, plan.Persisted = saved, true
	return plan, nil
}

// List returns a trip's reminders ordered by remind time.
func (s *ReminderService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error) {
	rs, err := s.reminders.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ReminderService.List: %w", err)
	}
	if rs == nil {
		rs = []domain.Reminder{}
	}
	return rs, nil
}

// UpdateStatus moves a pending reminder to sent or dismissed.
// Any other transition is domain.ErrValidation.
func (s *ReminderService) UpdateStatus(ctx context.Context, tripID, id uuid.UUID, to domain.ReminderStatus) (domain.Reminder, error) {
	current, err := s.reminders.GetByID(ctx, tripID, id)
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("service.ReminderService.UpdateStatus: %w", err)
	}
	if !current.Status.CanTransition(to) {
		return domain.Reminder{}, fmt.Errorf("service.ReminderService.UpdateStatus: %w: cannot move reminder from %s to %s",
			domain.ErrValidation, current.Status, to)
	}
	r, err := s.reminders.UpdateStatus(ctx, tripID, id, current.Status, to)
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("service.ReminderService.UpdateStatus: %w", err)
	}
	return r, nil
}
