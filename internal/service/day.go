package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/repo"
	"github.com/novatrek/planner/backend/internal/slot"
)

// ResolveResult reports what ResolveOrphan did.
type ResolveResult struct {
	Action domain.OrphanAction
	Day    domain.Day

	// Target and Moved are set for OrphanMove.
	Target *domain.Day
	Moved  []ActivityResult
}

// DayService implements day lookups and the resolution of orphaned days.
type DayService struct {
	trips      repo.TripRepo
	days       repo.DayRepo
	activities repo.ActivityRepo
	allocator  *slot.Allocator
}

// NewDayService constructs a DayService.
func NewDayService(trips repo.TripRepo, days repo.DayRepo, activities repo.ActivityRepo, allocator *slot.Allocator) *DayService {
	return &DayService{trips: trips, days: days, activities: activities, allocator: allocator}
}

// List returns every day of a trip, orphaned days last.
// Returns domain.ErrNotFound if the trip does not exist.
func (s *DayService) List(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.DayService.List: %w", err)
	}
	days, err := s.days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.DayService.List: %w", err)
	}
	return days, nil
}

// FindByDate returns the in-range day of a trip on date.
// When there is none, the error is a *domain.DayNotFoundError listing the
// dates that do exist.
func (s *DayService) FindByDate(ctx context.Context, tripID uuid.UUID, date time.Time) (domain.Day, error) {
	day, err := findDay(ctx, s.days, tripID, date)
	if err != nil {
		return domain.Day{}, fmt.Errorf("service.DayService.FindByDate: %w", err)
	}
	return day, nil
}

// ResolveOrphan applies the caller's decision to an out-of-range day:
//
//   - keep leaves the day and its activities untouched;
//   - delete removes the day with its activities;
//   - move re-places every activity onto the in-range day at target, keeping
//     each start time when free and otherwise taking the first free slot,
//     then removes the emptied day. Nothing moves if any activity cannot be
//     placed.
func (s *DayService) ResolveOrphan(ctx context.Context, tripID, dayID uuid.UUID, action domain.OrphanAction, target *time.Time) (ResolveResult, error) {
	if !action.Valid() {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w: unknown action %q", domain.ErrValidation, action)
	}
	day, err := s.days.GetByID(ctx, tripID, dayID)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w", err)
	}
	if !day.OutOfRange {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w: day %s is inside the trip range",
			domain.ErrValidation, day.Date.Format(domain.DateLayout))
	}

	res := ResolveResult{Action: action, Day: day}
	switch action {
	case domain.OrphanKeep:
		return res, nil
	case domain.OrphanDelete:
		if err := s.days.Delete(ctx, tripID, dayID); err != nil {
			return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w", err)
		}
		return res, nil
	}

	if target == nil {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w: target_date is required to move", domain.ErrValidation)
	}
	dest, err := findDay(ctx, s.days, tripID, *target)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w", err)
	}

	err = s.days.WithDayLock(ctx, tripID, []uuid.UUID{day.ID, dest.ID}, func(ctx context.Context, l repo.Locked) error {
		moving, err := l.Activities.ListByDay(ctx, day.ID)
		if err != nil {
			return err
		}
		onTarget, err := l.Activities.ListByDay(ctx, dest.ID)
		if err != nil {
			return err
		}
		sort.SliceStable(moving, func(i, j int) bool { return moving[i].Start < moving[j].Start })

		for _, a := range moving {
			start := a.Start
			p, err := s.allocator.Place(slot.Request{
				Existing:     onTarget,
				Duration:     a.Duration,
				Desired:      &start,
				AutoOptimize: true,
				Location:     a.Location,
			})
			if err != nil {
				return fmt.Errorf("move %q: %w", a.Name, err)
			}
			a.DayID = dest.ID
			a.Start = p.Start
			saved, err := l.Activities.Update(ctx, a)
			if err != nil {
				return err
			}
			onTarget = append(onTarget, saved)
			res.Moved = append(res.Moved, ActivityResult{Activity: saved, Placement: p})
		}
		return nil
	})
	if err != nil {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w", err)
	}

	// The orphan is empty now; a failed delete leaves it for the next
	// re-sequence to remove.
	if err := s.days.Delete(ctx, tripID, day.ID); err != nil {
		return ResolveResult{}, fmt.Errorf("service.DayService.ResolveOrphan: %w: %w", domain.ErrPersistence, err)
	}
	dest.ActivityCount += len(res.Moved)
	res.Target = &dest
	return res, nil
}

// findDay returns the in-range day on date or a *domain.DayNotFoundError.
func findDay(ctx context.Context, days repo.DayRepo, tripID uuid.UUID, date time.Time) (domain.Day, error) {
	date = domain.DateOf(date)
	day, err := days.FindByDate(ctx, tripID, date)
	if err == nil && !day.OutOfRange {
		return day, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Day{}, err
	}

	all, lerr := days.ListByTrip(ctx, tripID)
	if lerr != nil {
		return domain.Day{}, lerr
	}
	nf := &domain.DayNotFoundError{Date: date, ValidDates: []time.Time{}}
	for _, d := range all {
		if !d.OutOfRange {
			nf.ValidDates = append(nf.ValidDates, d.Date)
		}
	}
	return domain.Day{}, nf
}
