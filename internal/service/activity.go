package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/geo"
	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/repo"
	"github.com/novatrek/planner/backend/internal/slot"
)

// Placement outcomes recorded in metrics.
const (
	outcomePlaced           = "placed"
	outcomeRelocated        = "relocated"
	outcomeConflictAccepted = "conflict_accepted"
	outcomeNoSlot           = "no_slot"
)

// PlacementOptions are the allocator flags a caller may set on a write.
type PlacementOptions struct {
	// Desired start. When nil the first free slot is used.
	Desired      *domain.Clock
	AutoOptimize bool
	EarlyBird    bool
	NightOwl     bool
}

// ActivityResult is a stored activity plus how the allocator placed it.
type ActivityResult struct {
	Activity  domain.Activity `json:"activity"`
	Placement slot.Placement  `json:"placement"`
}

// ActivityService implements activity writes. Every write that consults the
// allocator runs while the affected day rows are locked.
type ActivityService struct {
	days       repo.DayRepo
	activities repo.ActivityRepo
	allocator  *slot.Allocator
	metrics    *metrics.Metrics
}

// NewActivityService constructs an ActivityService. m may be nil.
func NewActivityService(days repo.DayRepo, activities repo.ActivityRepo, allocator *slot.Allocator, m *metrics.Metrics) *ActivityService {
	return &ActivityService{days: days, activities: activities, allocator: allocator, metrics: m}
}

// List returns the activities of one day ordered by start time.
func (s *ActivityService) List(ctx context.Context, tripID, dayID uuid.UUID) ([]domain.Activity, error) {
	if _, err := s.days.GetByID(ctx, tripID, dayID); err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	acts, err := s.activities.ListByDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	if acts == nil {
		acts = []domain.Activity{}
	}
	return acts, nil
}

// GetByID returns one activity of a trip.
func (s *ActivityService) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error) {
	a, err := s.activities.GetByID(ctx, tripID, id)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.GetByID: %w", err)
	}
	return a, nil
}

// Add places a new activity on a day and stores it.
//
// Returns domain.ErrValidation for invalid input or an out-of-range day and a
// *domain.NoFeasibleSlotError when no slot fits. Nothing is written on error.
func (s *ActivityService) Add(ctx context.Context, tripID, dayID uuid.UUID, a domain.Activity, opts PlacementOptions) (ActivityResult, error) {
	if err := validateActivity(&a); err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Add: %w", err)
	}
	a.TripID, a.DayID = tripID, dayID

	var res ActivityResult
	err := s.days.WithDayLock(ctx, tripID, []uuid.UUID{dayID}, func(ctx context.Context, l repo.Locked) error {
		if err := inRange(l.Days[0]); err != nil {
			return err
		}
		existing, err := l.Activities.ListByDay(ctx, dayID)
		if err != nil {
			return err
		}
		p, err := s.place(existing, uuid.Nil, a, opts)
		if err != nil {
			return err
		}
		a.Start = p.Start
		saved, err := l.Activities.Create(ctx, a)
		if err != nil {
			return err
		}
		res = ActivityResult{Activity: saved, Placement: p}
		return nil
	})
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Add: %w", err)
	}
	return res, nil
}

// AddOnDate is Add addressed by calendar date. A date with no in-range day
// yields a *domain.DayNotFoundError listing the valid dates.
func (s *ActivityService) AddOnDate(ctx context.Context, tripID uuid.UUID, date time.Time, a domain.Activity, opts PlacementOptions) (ActivityResult, error) {
	day, err := findDay(ctx, s.days, tripID, date)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.AddOnDate: %w", err)
	}
	return s.Add(ctx, tripID, day.ID, a, opts)
}

// Update overwrites an activity. a.Version must match the stored version.
// When the start time or duration changes the activity is re-placed on its
// day with itself excluded from the conflict check. Without opts.Desired the
// stored start is kept.
func (s *ActivityService) Update(ctx context.Context, tripID uuid.UUID, a domain.Activity, opts PlacementOptions) (ActivityResult, error) {
	if err := validateActivity(&a); err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	current, err := s.activities.GetByID(ctx, tripID, a.ID)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	if current.Version != a.Version {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Update: %w", domain.ErrVersionConflict)
	}
	a.TripID, a.DayID = tripID, current.DayID
	// Without a requested time the activity keeps its stored start.
	if opts.Desired == nil {
		a.Start = current.Start
		opts.Desired = &a.Start
	}
	retime := *opts.Desired != current.Start || a.Duration != current.Duration

	var res ActivityResult
	err = s.days.WithDayLock(ctx, tripID, []uuid.UUID{current.DayID}, func(ctx context.Context, l repo.Locked) error {
		p := slot.Placement{Start: current.Start, End: current.Start.Add(a.Duration)}
		if retime {
			existing, err := l.Activities.ListByDay(ctx, current.DayID)
			if err != nil {
				return err
			}
			if p, err = s.place(existing, a.ID, a, opts); err != nil {
				return err
			}
		}
		a.Start = p.Start
		saved, err := l.Activities.Update(ctx, a)
		if err != nil {
			return err
		}
		res = ActivityResult{Activity: saved, Placement: p}
		return nil
	})
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	return res, nil
}

// Move transfers an activity to another in-range day of the same trip and
// places it there. Without a desired time the current start is tried first.
func (s *ActivityService) Move(ctx context.Context, tripID, id, toDayID uuid.UUID, opts PlacementOptions) (ActivityResult, error) {
	a, err := s.activities.GetByID(ctx, tripID, id)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Move: %w", err)
	}
	if opts.Desired == nil {
		start := a.Start
		opts.Desired = &start
	}

	var res ActivityResult
	err = s.days.WithDayLock(ctx, tripID, []uuid.UUID{a.DayID, toDayID}, func(ctx context.Context, l repo.Locked) error {
		target := l.Days[len(l.Days)-1]
		if err := inRange(target); err != nil {
			return err
		}
		// Re-read under the lock so a concurrent edit is caught by version.
		a, err := l.Activities.GetByID(ctx, tripID, id)
		if err != nil {
			return err
		}
		existing, err := l.Activities.ListByDay(ctx, toDayID)
		if err != nil {
			return err
		}
		p, err := s.place(existing, a.ID, a, opts)
		if err != nil {
			return err
		}
		a.DayID, a.Start = toDayID, p.Start
		saved, err := l.Activities.Update(ctx, a)
		if err != nil {
			return err
		}
		res = ActivityResult{Activity: saved, Placement: p}
		return nil
	})
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Move: %w", err)
	}
	return res, nil
}

// Duplicate copies an activity onto toDayID, or onto its own day when toDayID
// is uuid.Nil. The copy asks for the original start and falls back to the
// first free slot.
func (s *ActivityService) Duplicate(ctx context.Context, tripID, id, toDayID uuid.UUID) (ActivityResult, error) {
	src, err := s.activities.GetByID(ctx, tripID, id)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Duplicate: %w", err)
	}
	if toDayID == uuid.Nil {
		toDayID = src.DayID
	}
	cp := src
	cp.ID, cp.Version = uuid.Nil, 0
	cp.CreatedAt, cp.UpdatedAt = time.Time{}, time.Time{}
	start := src.Start

	res, err := s.Add(ctx, tripID, toDayID, cp, PlacementOptions{Desired: &start, AutoOptimize: true})
	if err != nil {
		return ActivityResult{}, fmt.Errorf("service.ActivityService.Duplicate: %w", err)
	}
	return res, nil
}

// Remove deletes one activity. Other activities on the day are untouched.
func (s *ActivityService) Remove(ctx context.Context, tripID, id uuid.UUID) error {
	if err := s.activities.Delete(ctx, tripID, id); err != nil {
		return fmt.Errorf("service.ActivityService.Remove: %w", err)
	}
	return nil
}

// place runs the allocator and records the outcome.
func (s *ActivityService) place(existing []domain.Activity, exclude uuid.UUID, a domain.Activity, opts PlacementOptions) (slot.Placement, error) {
	p, err := s.allocator.Place(slot.Request{
		Existing:     existing,
		Exclude:      exclude,
		Duration:     a.Duration,
		Desired:      opts.Desired,
		AutoOptimize: opts.AutoOptimize,
		EarlyBird:    opts.EarlyBird,
		NightOwl:     opts.NightOwl,
		Location:     a.Location,
	})
	switch {
	case errors.Is(err, domain.ErrNoFeasibleSlot):
		s.metrics.Placement(outcomeNoSlot)
	case err != nil:
	case p.Relocated:
		s.metrics.Placement(outcomeRelocated)
	case p.ConflictAccepted:
		s.metrics.Placement(outcomeConflictAccepted)
	default:
		s.metrics.Placement(outcomePlaced)
	}
	return p, err
}

func inRange(d domain.Day) error {
	if d.OutOfRange {
		return fmt.Errorf("%w: day %s is outside the trip dates", domain.ErrValidation, d.Date.Format(domain.DateLayout))
	}
	return nil
}

// validateActivity checks and normalizes a.
func validateActivity(a *domain.Activity) error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if a.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}
	if !a.Start.Valid() {
		return fmt.Errorf("%w: start_time is out of range", domain.ErrValidation)
	}
	if !a.Setting.Valid() {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrValidation, a.Setting)
	}
	if a.Location != nil && !geo.Valid(a.Location.Coordinates) {
		return fmt.Errorf("%w: location needs valid coordinates", domain.ErrValidation)
	}
	if a.Cost != nil && a.Cost.Amount < 0 {
		return fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	if a.Rating < 0 || a.Rating > 5 || a.RatingCount < 0 {
		return fmt.Errorf("%w: rating must be between 0 and 5", domain.ErrValidation)
	}
	return nil
}
