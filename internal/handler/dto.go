package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/service"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// --- requests ----------------------------------------------------------------

type moneyRequest struct {
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
}

type coordinatesRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// destinationRequest fields are not required: incomplete stays are skipped
// and reported back instead of rejected. Dates stay strings so one bad date
// skips its stay rather than failing the whole body.
type destinationRequest struct {
	Name          string              `json:"name" validate:"max=200"`
	PlaceID       string              `json:"place_id" validate:"max=200"`
	Coordinates   *coordinatesRequest `json:"coordinates"`
	ArrivalDate   string              `json:"arrival_date"`
	DepartureDate string              `json:"departure_date"`
	Order         int                 `json:"order" validate:"gte=0"`
}

type tripRequest struct {
	Name          string               `json:"name" validate:"required,max=200"`
	Destination   string               `json:"destination" validate:"max=200"`
	StartDate     *openapi_types.Date  `json:"start_date"`
	EndDate       *openapi_types.Date  `json:"end_date"`
	Destinations  []destinationRequest `json:"destinations" validate:"max=50,dive"`
	TravelerCount int                  `json:"traveler_count" validate:"gte=0,lte=100"`
	Budget        *moneyRequest        `json:"budget"`
	Notes         string               `json:"notes" validate:"max=2000"`
}

type locationRequest struct {
	coordinatesRequest
	Address string `json:"address" validate:"max=500"`
}

type costRequest struct {
	moneyRequest
	PerPerson bool `json:"per_person"`
}

type activityRequest struct {
	Name              string           `json:"name" validate:"required,max=200"`
	Description       string           `json:"description" validate:"max=2000"`
	Category          string           `json:"category" validate:"max=50"`
	StartTime         *domain.Clock    `json:"start_time"`
	Duration          int              `json:"duration" validate:"gt=0,lte=1440"`
	Location          *locationRequest `json:"location"`
	Cost              *costRequest     `json:"cost"`
	BookingRequired   *bool            `json:"booking_required"`
	ExpertRecommended bool             `json:"expert_recommended"`
	NovatrekEnhanced  bool             `json:"novatrek_enhanced"`
	Setting           string           `json:"setting" validate:"omitempty,oneof=indoor outdoor mixed"`
	Rating            float64          `json:"rating" validate:"gte=0,lte=5"`
	RatingCount       int              `json:"rating_count" validate:"gte=0"`

	// Version is required on update.
	Version int `json:"version" validate:"gte=0"`

	AutoOptimize bool `json:"auto_optimize"`
	EarlyBird    bool `json:"early_bird"`
	NightOwl     bool `json:"night_owl"`
}

type moveRequest struct {
	DayID        openapi_types.UUID `json:"day_id" validate:"required"`
	StartTime    *domain.Clock      `json:"start_time"`
	AutoOptimize bool               `json:"auto_optimize"`
}

type duplicateRequest struct {
	DayID *openapi_types.UUID `json:"day_id"`
}

type resolveRequest struct {
	Action     string              `json:"action" validate:"required,oneof=keep move delete"`
	TargetDate *openapi_types.Date `json:"target_date" validate:"required_if=Action move"`
}

type reminderRequest struct {
	Offsets []int `json:"offsets" validate:"max=10,dive,gt=0,lte=365"`
}

type reminderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sent dismissed"`
}

type travelerRequest struct {
	TravelerID    openapi_types.UUID `json:"traveler_id"`
	Name          string             `json:"name" validate:"max=200"`
	Dietary       []string           `json:"dietary" validate:"max=20,dive,max=50"`
	Accessibility []string           `json:"accessibility" validate:"max=20,dive,max=50"`
	Interests     []string           `json:"interests" validate:"max=50,dive,max=50"`
	Activities    []string           `json:"activities" validate:"max=50,dive,max=50"`
	TravelStyle   []string           `json:"travel_style" validate:"max=20,dive,max=50"`
	Budget        string             `json:"budget" validate:"omitempty,oneof=budget moderate luxury"`
	ActivityLevel string             `json:"activity_level" validate:"omitempty,oneof=low moderate high"`
}

type aggregateRequest struct {
	Travelers []travelerRequest `json:"travelers" validate:"required,min=1,max=50,dive"`
	Mode      string            `json:"mode" validate:"omitempty,oneof=consensus inclusive democratic"`
	Policy    string            `json:"policy" validate:"omitempty,oneof=accommodate_all majority_wins find_middle_ground"`
}

// --- responses ---------------------------------------------------------------

type destinationResponse struct {
	ID            openapi_types.UUID  `json:"id"`
	Name          string              `json:"name"`
	PlaceID       string              `json:"place_id,omitempty"`
	Coordinates   *domain.Coordinates `json:"coordinates,omitempty"`
	ArrivalDate   *openapi_types.Date `json:"arrival_date,omitempty"`
	DepartureDate *openapi_types.Date `json:"departure_date,omitempty"`
	Order         int                 `json:"order"`
}

type tripResponse struct {
	ID            openapi_types.UUID    `json:"id"`
	Name          string                `json:"name"`
	Destination   string                `json:"destination,omitempty"`
	StartDate     *openapi_types.Date   `json:"start_date,omitempty"`
	EndDate       *openapi_types.Date   `json:"end_date,omitempty"`
	Destinations  []destinationResponse `json:"destinations"`
	TravelerCount int                   `json:"traveler_count"`
	Budget        *domain.Money         `json:"budget,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type tripListResponse struct {
	Data       []tripResponse `json:"data"`
	Pagination pagination     `json:"pagination"`
}

type dayResponse struct {
	ID              openapi_types.UUID `json:"id"`
	DayNumber       *int               `json:"day_number"`
	Date            openapi_types.Date `json:"date"`
	Type            domain.DayType     `json:"type"`
	Destination     string             `json:"destination,omitempty"`
	FromDestination string             `json:"from_destination,omitempty"`
	ToDestination   string             `json:"to_destination,omitempty"`
	OutOfRange      bool               `json:"out_of_range"`
	ActivityCount   int                `json:"activity_count"`
}

type skippedResponse struct {
	Order  int    `json:"order"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type scheduleResponse struct {
	Trip     tripResponse      `json:"trip"`
	Days     []dayResponse     `json:"days"`
	Orphaned []dayResponse     `json:"orphaned"`
	Skipped  []skippedResponse `json:"skipped"`
}

type activityResponse struct {
	ID                openapi_types.UUID `json:"id"`
	TripID            openapi_types.UUID `json:"trip_id"`
	DayID             openapi_types.UUID `json:"day_id"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	Category          string             `json:"category,omitempty"`
	StartTime         domain.Clock       `json:"start_time"`
	EndTime           domain.Clock       `json:"end_time"`
	Duration          int                `json:"duration"`
	Location          *domain.Location   `json:"location,omitempty"`
	Cost              *domain.Cost       `json:"cost,omitempty"`
	BookingRequired   *bool              `json:"booking_required,omitempty"`
	ExpertRecommended bool               `json:"expert_recommended"`
	NovatrekEnhanced  bool               `json:"novatrek_enhanced"`
	Setting           domain.Setting     `json:"setting,omitempty"`
	Rating            float64            `json:"rating,omitempty"`
	RatingCount       int                `json:"rating_count,omitempty"`
	Version           int                `json:"version"`
}

type conflictResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	StartTime domain.Clock       `json:"start_time"`
	EndTime   domain.Clock       `json:"end_time"`
}

type placementResponse struct {
	StartTime        domain.Clock        `json:"start_time"`
	EndTime          domain.Clock        `json:"end_time"`
	Relocated        bool                `json:"relocated"`
	ConflictAccepted bool                `json:"conflict_accepted"`
	Conflicts        []conflictResponse  `json:"conflicts"`
	TravelMinutes    int                 `json:"travel_minutes,omitempty"`
	TravelFrom       *openapi_types.UUID `json:"travel_from,omitempty"`
	Warnings         []string            `json:"warnings"`
}

type activityResultResponse struct {
	Activity  activityResponse  `json:"activity"`
	Placement placementResponse `json:"placement"`
}

type resolveResponse struct {
	Action domain.OrphanAction      `json:"action"`
	Day    dayResponse              `json:"day"`
	Target *dayResponse             `json:"target,omitempty"`
	Moved  []activityResultResponse `json:"moved,omitempty"`
}

type dayReportResponse struct {
	Day                dayResponse              `json:"day"`
	Weather            *domain.Weather          `json:"weather,omitempty"`
	WeatherUnavailable bool                     `json:"weather_unavailable"`
	Activities         []service.ScoredActivity `json:"activities"`
}

type reminderPlanResponse struct {
	service.ReminderPlan
	PersistError string `json:"persist_error,omitempty"`
}

type exportRow struct {
	TripID       string         `json:"trip_id"`
	TripName     string         `json:"trip_name"`
	DayNumber    int            `json:"day_number"`
	Date         string         `json:"date"`
	DayType      domain.DayType `json:"day_type"`
	Place        string         `json:"place"`
	ActivityName string         `json:"activity_name,omitempty"`
	Category     string         `json:"category,omitempty"`
	StartTime    string         `json:"start_time,omitempty"`
	EndTime      string         `json:"end_time,omitempty"`
	Address      string         `json:"address,omitempty"`
	CostAmount   float64        `json:"cost_amount,omitempty"`
	Currency     string         `json:"currency,omitempty"`
}

// --- mapping helpers ---------------------------------------------------------

func optionalDate(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func dateOrNil(t time.Time) *openapi_types.Date {
	if t.IsZero() {
		return nil
	}
	return &openapi_types.Date{Time: t}
}

func (c *coordinatesRequest) toDomain() *domain.Coordinates {
	if c == nil {
		return nil
	}
	return &domain.Coordinates{Lat: *c.Lat, Lng: *c.Lng}
}
