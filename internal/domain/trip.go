// Package domain contains the core data types for the trip planner.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (engine packages, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate. Days, activities and reminders all belong
// to a trip.
//
// A trip is described either by an ordered list of Destinations, each with its
// own arrival and departure date, or by the legacy single Destination name plus
// StartDate/EndDate. When Destinations is non-empty, StartDate and EndDate are
// derived from the first arrival and the last departure.
type Trip struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Destination   string        `json:"destination,omitempty"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Destinations  []Destination `json:"destinations,omitempty"`
	TravelerCount int           `json:"traveler_count"`
	Budget        *Money        `json:"budget,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MultiDestination reports whether the trip uses the destinations list rather
// than the legacy single destination form.
func (t Trip) MultiDestination() bool {
	return len(t.Destinations) > 0
}

// Money is an amount in a given ISO 4217 currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Destination is one stay of a multi-destination trip.
// Stays are ordered by Order and must not overlap; a departure date may equal
// the next stay's arrival date.
type Destination struct {
	ID            uuid.UUID    `json:"id"`
	TripID        uuid.UUID    `json:"trip_id"`
	Name          string       `json:"name"`
	PlaceID       string       `json:"place_id,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	ArrivalDate   time.Time    `json:"arrival_date"`
	DepartureDate time.Time    `json:"departure_date"`
	Order         int          `json:"order"`

	// InvalidDates names date fields that were sent but could not be parsed.
	// The dates themselves are left zero. Not stored.
	InvalidDates []string `json:"-"`
}
