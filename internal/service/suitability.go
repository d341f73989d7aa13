package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/novatrek/planner/backend/internal/classify"
	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/geo"
	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/repo"
	"github.com/novatrek/planner/backend/internal/suitability"
	"github.com/novatrek/planner/backend/internal/weather"
)

// scoreConcurrency bounds the per-day forecast lookups of ScoreTrip.
const scoreConcurrency = 4

// maxAlternatives caps the suggestions attached to one poor-tier activity.
const maxAlternatives = 3

// AlternativeFinder suggests replacements for an activity the weather rules out.
type AlternativeFinder interface {
	Alternatives(ctx context.Context, a domain.Activity, near domain.Coordinates) ([]domain.Activity, error)
}

// ScoredActivity is an assessment plus any suggested alternatives.
type ScoredActivity struct {
	suitability.Assessment
	Alternatives []domain.Activity `json:"alternatives,omitempty"`
}

// DayReport is the weather fit of every activity on one day, best first.
// When the forecast cannot be fetched WeatherUnavailable is set and
// Activities is empty.
type DayReport struct {
	Day                domain.Day       `json:"day"`
	Weather            *domain.Weather  `json:"weather,omitempty"`
	WeatherUnavailable bool             `json:"weather_unavailable"`
	Activities         []ScoredActivity `json:"activities"`
}

// SuitabilityService scores a trip's activities against the forecast.
type SuitabilityService struct {
	trips      repo.TripRepo
	days       repo.DayRepo
	activities repo.ActivityRepo
	forecasts  weather.Provider
	scorer     *suitability.Scorer
	finder     AlternativeFinder
	metrics    *metrics.Metrics
}

// NewSuitabilityService constructs a SuitabilityService. finder may be nil, in
// which case alternatives are taken from the trip's own indoor activities.
// m may be nil.
func NewSuitabilityService(trips repo.TripRepo, days repo.DayRepo, activities repo.ActivityRepo,
	forecasts weather.Provider, scorer *suitability.Scorer, finder AlternativeFinder, m *metrics.Metrics,
) *SuitabilityService {
	s := &SuitabilityService{
		trips:      trips,
		days:       days,
		activities: activities,
		forecasts:  forecasts,
		scorer:     scorer,
		finder:     finder,
		metrics:    m,
	}
	if s.finder == nil {
		s.finder = tripIndoorFinder{activities: activities}
	}
	return s
}

// ScoreDay fetches the forecast for one day and ranks its activities.
// Returns domain.ErrValidation when neither the day's destination nor any of
// its activities has coordinates, and an error wrapping
// weather.ErrUnavailable when the forecast cannot be fetched.
func (s *SuitabilityService) ScoreDay(ctx context.Context, tripID, dayID uuid.UUID) (DayReport, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return DayReport{}, fmt.Errorf("service.SuitabilityService.ScoreDay: %w", err)
	}
	day, err := s.days.GetByID(ctx, tripID, dayID)
	if err != nil {
		return DayReport{}, fmt.Errorf("service.SuitabilityService.ScoreDay: %w", err)
	}
	acts, err := s.activities.ListByDay(ctx, dayID)
	if err != nil {
		return DayReport{}, fmt.Errorf("service.SuitabilityService.ScoreDay: %w", err)
	}
	report, err := s.scoreDay(ctx, trip, day, acts)
	if err != nil {
		return DayReport{}, fmt.Errorf("service.SuitabilityService.ScoreDay: %w", err)
	}
	return report, nil
}

// ScoreTrip scores every in-range day of a trip. Days are processed
// concurrently; a day whose forecast is unavailable or that has no
// coordinates is reported with WeatherUnavailable instead of failing the trip.
func (s *SuitabilityService) ScoreTrip(ctx context.Context, tripID uuid.UUID) ([]DayReport, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.SuitabilityService.ScoreTrip: %w", err)
	}
	days, err := s.days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.SuitabilityService.ScoreTrip: %w", err)
	}
	acts, err := s.activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.SuitabilityService.ScoreTrip: %w", err)
	}
	byDay := make(map[uuid.UUID][]domain.Activity)
	for _, a := range acts {
		byDay[a.DayID] = append(byDay[a.DayID], a)
	}

	var inRange []domain.Day
	for _, d := range days {
		if !d.OutOfRange {
			inRange = append(inRange, d)
		}
	}
	reports := make([]DayReport, len(inRange))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreConcurrency)
	for i, d := range inRange {
		g.Go(func() error {
			r, err := s.scoreDay(gctx, trip, d, byDay[d.ID])
			switch {
			case errors.Is(err, weather.ErrUnavailable), errors.Is(err, domain.ErrValidation):
				slog.InfoContext(gctx, "day scored without weather", "trip_id", trip.ID, "day_id", d.ID, "error", err)
				r = DayReport{Day: d, WeatherUnavailable: true, Activities: []ScoredActivity{}}
			case err != nil:
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service.SuitabilityService.ScoreTrip: %w", err)
	}
	return reports, nil
}

func (s *SuitabilityService) scoreDay(ctx context.Context, trip domain.Trip, day domain.Day, acts []domain.Activity) (DayReport, error) {
	report := DayReport{Day: day, Activities: []ScoredActivity{}}
	if len(acts) == 0 {
		return report, nil
	}
	at, ok := coordinatesFor(trip, day, acts)
	if !ok {
		return DayReport{}, fmt.Errorf("%w: no coordinates for %s", domain.ErrValidation, day.Date.Format(domain.DateLayout))
	}

	w, err := s.forecasts.Forecast(ctx, at, day.Date)
	if err != nil {
		return DayReport{}, err
	}
	report.Weather = &w

	for _, as := range s.scorer.Rank(acts, w) {
		s.metrics.Assessed(string(as.Tier))
		scored := ScoredActivity{Assessment: as}
		if as.NeedsAlternative {
			scored.Alternatives = s.alternatives(ctx, find(acts, as.ActivityID), at)
		}
		report.Activities = append(report.Activities, scored)
	}
	return report, nil
}

// alternatives asks the finder for replacements. Failures only cost the
// suggestion.
func (s *SuitabilityService) alternatives(ctx context.Context, a domain.Activity, at domain.Coordinates) []domain.Activity {
	alts, err := s.finder.Alternatives(ctx, a, at)
	if err != nil {
		slog.WarnContext(ctx, "alternative lookup failed", "activity_id", a.ID, "error", err)
		return nil
	}
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}

// coordinatesFor resolves where a day takes place: the matching destination of
// the trip, or else the first activity with a location.
func coordinatesFor(trip domain.Trip, day domain.Day, acts []domain.Activity) (domain.Coordinates, bool) {
	place := day.Destination
	if day.Type == domain.DayTypeTravel {
		place = day.ToDestination
	}
	for _, d := range trip.Destinations {
		if d.Name == place && d.Coordinates != nil {
			return *d.Coordinates, true
		}
	}
	for _, a := range acts {
		if a.Location != nil {
			return a.Location.Coordinates, true
		}
	}
	return domain.Coordinates{}, false
}

func find(acts []domain.Activity, id uuid.UUID) domain.Activity {
	for _, a := range acts {
		if a.ID == id {
			return a
		}
	}
	return domain.Activity{}
}

// tripIndoorFinder suggests the trip's own indoor activities, nearest first.
type tripIndoorFinder struct {
	activities repo.ActivityRepo
}

func (f tripIndoorFinder) Alternatives(ctx context.Context, a domain.Activity, near domain.Coordinates) ([]domain.Activity, error) {
	acts, err := f.activities.ListByTrip(ctx, a.TripID)
	if err != nil {
		return nil, err
	}
	type candidate struct {
		act  domain.Activity
		dist float64
	}
	var cands []candidate
	for _, c := range acts {
		if c.ID == a.ID || c.Location == nil || classify.Setting(c) != domain.SettingIndoor {
			continue
		}
		cands = append(cands, candidate{act: c, dist: geo.DistanceKm(near, c.Location.Coordinates)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	out := make([]domain.Activity, len(cands))
	for i, c := range cands {
		out[i] = c.act
	}
	return out, nil
}
