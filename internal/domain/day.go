package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayType distinguishes days spent at a destination from synthetic transit days.
type DayType string

const (
	DayTypeDestination DayType = "destination"
	DayTypeTravel      DayType = "travel"
)

// Day is one calendar date of a trip.
//
// In-range days carry DayNumber 1..N with no gaps and a Date unique within the
// trip. A day that fell outside the trip range after a date change but still
// owns activities is kept with OutOfRange set and DayNumber 0 until the caller
// resolves it.
type Day struct {
	ID              uuid.UUID `json:"id"`
	TripID          uuid.UUID `json:"trip_id"`
	DayNumber       int       `json:"day_number"`
	Date            time.Time `json:"date"`
	Type            DayType   `json:"type"`
	Destination     string    `json:"destination,omitempty"`
	FromDestination string    `json:"from_destination,omitempty"` // travel days only
	ToDestination   string    `json:"to_destination,omitempty"`   // travel days only
	OutOfRange      bool      `json:"out_of_range,omitempty"`
	ActivityCount   int       `json:"activity_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OrphanAction is the caller's decision for a day that fell outside the trip range.
type OrphanAction string

const (
	OrphanKeep   OrphanAction = "keep"
	OrphanMove   OrphanAction = "move"
	OrphanDelete OrphanAction = "delete"
)

// Valid reports whether a is a known action.
func (a OrphanAction) Valid() bool {
	switch a {
	case OrphanKeep, OrphanMove, OrphanDelete:
		return true
	}
	return false
}
