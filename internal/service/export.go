package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/repo"
)

// ExportService assembles the flat itinerary export of a trip.
type ExportService struct {
	trips      repo.TripRepo
	days       repo.DayRepo
	activities repo.ActivityRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, days repo.DayRepo, activities repo.ActivityRepo) *ExportService {
	return &ExportService{trips: trips, days: days, activities: activities}
}

// Export returns one ItineraryRow per activity of the trip's in-range days,
// ordered by day number and start time. Days with no activities contribute
// one row with empty activity fields.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryRow, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	days, err := s.days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	acts, err := s.activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	byDay := make(map[uuid.UUID][]domain.Activity, len(days))
	for _, a := range acts {
		byDay[a.DayID] = append(byDay[a.DayID], a)
	}

	rows := []domain.ItineraryRow{}
	for _, d := range days {
		if d.OutOfRange {
			continue
		}
		base := domain.ItineraryRow{
			TripID:    trip.ID.String(),
			TripName:  trip.Name,
			DayNumber: d.DayNumber,
			Date:      d.Date.Format(domain.DateLayout),
			DayType:   d.Type,
			Place:     place(d),
		}
		if len(byDay[d.ID]) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, a := range byDay[d.ID] {
			row := base
			row.ActivityName = a.Name
			row.Category = a.Category
			row.StartTime = a.Start.String()
			row.EndTime = a.End().String()
			if a.Location != nil {
				row.Address = a.Location.Address
			}
			if a.Cost != nil {
				row.CostAmount = a.Cost.Amount
				row.Currency = a.Cost.Currency
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func place(d domain.Day) string {
	if d.Type == domain.DayTypeTravel {
		return d.FromDestination + " → " + d.ToDestination
	}
	return d.Destination
}
