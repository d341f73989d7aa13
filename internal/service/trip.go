// Package service contains the orchestration logic of the trip planner.
// Services validate inputs, run the scheduling engine packages, and
// coordinate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/geo"
	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/repo"
	"github.com/novatrek/planner/backend/internal/sequencer"
)

// ScheduleResult is returned by every operation that (re)computes a trip's
// days. Orphaned lists out-of-range days that still hold activities; the
// caller must resolve each one with DayService.ResolveOrphan.
type ScheduleResult struct {
	Trip     domain.Trip
	Days     []domain.Day
	Orphaned []domain.Day
	Skipped  []sequencer.Skipped
}

// TripService implements business logic for Trip operations.
type TripService struct {
	trips   repo.TripRepo
	days    repo.DayRepo
	metrics *metrics.Metrics
}

// NewTripService constructs a TripService. m may be nil.
func NewTripService(trips repo.TripRepo, days repo.DayRepo, m *metrics.Metrics) *TripService {
	return &TripService{trips: trips, days: days, metrics: m}
}

// Create validates the trip, computes its day sequence, and persists both.
// Returns domain.ErrValidation before anything is written if the trip or its
// dates are invalid. If the trip row is written but its days are not, the
// error wraps domain.ErrPersistence and Resequence can retry the write.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (ScheduleResult, error) {
	seq, err := prepareTrip(&trip)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	saved, err := s.trips.Create(ctx, trip)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	res, err := s.sync(ctx, saved, seq)
	if err != nil {
		return ScheduleResult{Trip: saved}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return res, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns one page of trips.
func (s *TripService) List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	trips, total, err := s.trips.List(ctx, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return domain.Page[domain.Trip]{Items: trips, Total: total}, nil
}

// Update validates the new trip data, persists it, and re-sequences the days.
// Days that fall out of range but hold activities are kept and reported in
// ScheduleResult.Orphaned.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (ScheduleResult, error) {
	if _, err := s.trips.GetByID(ctx, trip.ID); err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	seq, err := prepareTrip(&trip)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	saved, err := s.trips.Update(ctx, trip)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	res, err := s.sync(ctx, saved, seq)
	if err != nil {
		return ScheduleResult{Trip: saved}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return res, nil
}

// Resequence recomputes and stores the days of a trip from its current
// destinations. It is idempotent and is the retry path after a failed day sync.
func (s *TripService) Resequence(ctx context.Context, id uuid.UUID) (ScheduleResult, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Resequence: %w", err)
	}
	seq, err := sequencer.Build(trip)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("service.TripService.Resequence: %w", err)
	}
	res, err := s.sync(ctx, trip, seq)
	if err != nil {
		return ScheduleResult{Trip: trip}, fmt.Errorf("service.TripService.Resequence: %w", err)
	}
	return res, nil
}

// Delete removes a trip and everything that belongs to it.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// sync reconciles seq with the stored days and writes the result.
func (s *TripService) sync(ctx context.Context, trip domain.Trip, seq sequencer.Sequence) (ScheduleResult, error) {
	existing, err := s.days.ListByTrip(ctx, trip.ID)
	if err != nil {
		return ScheduleResult{}, fmt.Errorf("%w: load days: %w", domain.ErrPersistence, err)
	}
	diff := sequencer.Reconcile(trip.ID, existing, seq)

	days, err := s.days.Sync(ctx, trip.ID, diff)
	if err != nil {
		slog.WarnContext(ctx, "day sync failed", "trip_id", trip.ID, "error", err)
		return ScheduleResult{}, fmt.Errorf("%w: sync days: %w", domain.ErrPersistence, err)
	}

	res := ScheduleResult{Trip: trip, Skipped: seq.Skipped, Days: []domain.Day{}, Orphaned: []domain.Day{}}
	for _, d := range days {
		if d.OutOfRange {
			res.Orphaned = append(res.Orphaned, d)
		} else {
			res.Days = append(res.Days, d)
		}
	}
	if n := len(diff.Orphaned); n > 0 {
		s.metrics.Orphaned(n)
		slog.InfoContext(ctx, "days left out of range still hold activities",
			"trip_id", trip.ID, "orphaned", n)
	}
	return res, nil
}

// prepareTrip validates and normalizes trip, then builds its sequence. For
// multi-destination trips StartDate and EndDate are derived from the sequence.
func prepareTrip(trip *domain.Trip) (sequencer.Sequence, error) {
	if err := validateTrip(*trip); err != nil {
		return sequencer.Sequence{}, err
	}
	trip.Name = strings.TrimSpace(trip.Name)
	if trip.TravelerCount == 0 {
		trip.TravelerCount = 1
	}
	for i := range trip.Destinations {
		trip.Destinations[i].Name = strings.TrimSpace(trip.Destinations[i].Name)
	}

	seq, err := sequencer.Build(*trip)
	if err != nil {
		return sequencer.Sequence{}, err
	}
	if trip.MultiDestination() {
		trip.StartDate, trip.EndDate = seq.Start(), seq.End()
	} else {
		trip.StartDate, trip.EndDate = domain.DateOf(trip.StartDate), domain.DateOf(trip.EndDate)
	}
	return seq, nil
}

func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.TravelerCount < 0 {
		return fmt.Errorf("%w: traveler_count must be positive", domain.ErrValidation)
	}
	if trip.Budget != nil && trip.Budget.Amount < 0 {
		return fmt.Errorf("%w: budget must not be negative", domain.ErrValidation)
	}
	for _, d := range trip.Destinations {
		if d.Coordinates != nil && !geo.Valid(*d.Coordinates) {
			return fmt.Errorf("%w: destination %q has invalid coordinates", domain.ErrValidation, d.Name)
		}
	}
	return nil
}
