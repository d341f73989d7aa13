// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, activity.go, etc.) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/preference"
	"github.com/novatrek/planner/backend/internal/service"
)

// TripServicer defines the business operations the trip handlers depend on.
// Interfaces live here, in the consumer package, so handler tests can inject
// mocks without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (service.ScheduleResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	Update(ctx context.Context, trip domain.Trip) (service.ScheduleResult, error)
	Resequence(ctx context.Context, id uuid.UUID) (service.ScheduleResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DayServicer defines the day operations.
type DayServicer interface {
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)
	FindByDate(ctx context.Context, tripID uuid.UUID, date time.Time) (domain.Day, error)
	ResolveOrphan(ctx context.Context, tripID, dayID uuid.UUID, action domain.OrphanAction, target *time.Time) (service.ResolveResult, error)
}

// ActivityServicer defines the activity operations.
type ActivityServicer interface {
	List(ctx context.Context, tripID, dayID uuid.UUID) ([]domain.Activity, error)
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error)
	Add(ctx context.Context, tripID, dayID uuid.UUID, a domain.Activity, opts service.PlacementOptions) (service.ActivityResult, error)
	AddOnDate(ctx context.Context, tripID uuid.UUID, date time.Time, a domain.Activity, opts service.PlacementOptions) (service.ActivityResult, error)
	Update(ctx context.Context, tripID uuid.UUID, a domain.Activity, opts service.PlacementOptions) (service.ActivityResult, error)
	Move(ctx context.Context, tripID, id, toDayID uuid.UUID, opts service.PlacementOptions) (service.ActivityResult, error)
	Duplicate(ctx context.Context, tripID, id, toDayID uuid.UUID) (service.ActivityResult, error)
	Remove(ctx context.Context, tripID, id uuid.UUID) error
}

// SuitabilityServicer defines the weather scoring operations.
type SuitabilityServicer interface {
	ScoreDay(ctx context.Context, tripID, dayID uuid.UUID) (service.DayReport, error)
	ScoreTrip(ctx context.Context, tripID uuid.UUID) ([]service.DayReport, error)
}

// ReminderServicer defines the booking reminder operations.
type ReminderServicer interface {
	Schedule(ctx context.Context, tripID, activityID uuid.UUID, offsets []int) (service.ReminderPlan, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error)
	UpdateStatus(ctx context.Context, tripID, id uuid.UUID, to domain.ReminderStatus) (domain.Reminder, error)
}

// GroupServicer defines group preference aggregation.
type GroupServicer interface {
	Aggregate(ctx context.Context, req preference.Request) (preference.Result, error)
}

// Exporter defines the itinerary export.
type Exporter interface {
	Export(ctx context.Context, tripID uuid.UUID) ([]domain.ItineraryRow, error)
}

// Pinger reports whether the database answers. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the Server's dependencies. Nil members are allowed in
// tests that do not hit the corresponding routes.
type Services struct {
	Trips       TripServicer
	Days        DayServicer
	Activities  ActivityServicer
	Suitability SuitabilityServicer
	Reminders   ReminderServicer
	Groups      GroupServicer
	Export      Exporter
	DB          Pinger
}

// Server serves every API endpoint.
type Server struct {
	trips       TripServicer
	days        DayServicer
	activities  ActivityServicer
	suitability SuitabilityServicer
	reminders   ReminderServicer
	groups      GroupServicer
	export      Exporter
	db          Pinger
	validate    *validator.Validate
}

// NewServer constructs the Server with all its dependencies.
func NewServer(s Services) *Server {
	return &Server{
		trips:       s.Trips,
		days:        s.Days,
		activities:  s.Activities,
		suitability: s.Suitability,
		reminders:   s.Reminders,
		groups:      s.Groups,
		export:      s.Export,
		db:          s.DB,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the API router. Cross-cutting middleware is applied by the
// caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)

		r.Route("/{tripId}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/sequence", s.ResequenceTrip)
			r.Get("/export", s.ExportTrip)
			r.Get("/suitability", s.ScoreTrip)

			r.Get("/days", s.ListDays)
			r.Get("/days/by-date/{date}", s.GetDayByDate)
			r.Post("/days/by-date/{date}/activities", s.AddActivityOnDate)
			r.Post("/days/{dayId}/resolve", s.ResolveOrphan)
			r.Get("/days/{dayId}/activities", s.ListActivities)
			r.Post("/days/{dayId}/activities", s.AddActivity)
			r.Get("/days/{dayId}/suitability", s.ScoreDay)

			r.Get("/activities/{activityId}", s.GetActivity)
			r.Put("/activities/{activityId}", s.UpdateActivity)
			r.Delete("/activities/{activityId}", s.DeleteActivity)
			r.Post("/activities/{activityId}/move", s.MoveActivity)
			r.Post("/activities/{activityId}/duplicate", s.DuplicateActivity)
			r.Post("/activities/{activityId}/reminders", s.ScheduleReminders)

			r.Get("/reminders", s.ListReminders)
			r.Patch("/reminders/{reminderId}", s.UpdateReminder)
		})
	})

	r.Post("/groups/aggregate", s.AggregatePreferences)
	return r
}
