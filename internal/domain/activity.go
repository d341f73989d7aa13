package domain

import (
	"time"

	"github.com/google/uuid"
)

// Setting classifies where an activity takes place. The zero value means the
// setting is not known and must be inferred.
type Setting string

const (
	SettingUnknown Setting = ""
	SettingIndoor  Setting = "indoor"
	SettingOutdoor Setting = "outdoor"
	SettingMixed   Setting = "mixed"
)

// Valid reports whether s is a known setting (including unknown).
func (s Setting) Valid() bool {
	switch s {
	case SettingUnknown, SettingIndoor, SettingOutdoor, SettingMixed:
		return true
	}
	return false
}

// Coordinates is a WGS84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is where an activity happens.
type Location struct {
	Coordinates
	Address string `json:"address,omitempty"`
}

// Cost is the price of an activity. PerPerson marks prices that scale with
// the traveler count.
type Cost struct {
	Money
	PerPerson bool `json:"per_person"`
}

// Activity is one scheduled item inside a Day.
//
// Start and Duration are the only stored time fields; the end time is always
// derived by End. Version is bumped on every successful write and is used for
// optimistic concurrency on edits.
type Activity struct {
	ID                uuid.UUID `json:"id"`
	TripID            uuid.UUID `json:"trip_id"`
	DayID             uuid.UUID `json:"day_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Category          string    `json:"category,omitempty"`
	Start             Clock     `json:"start_time"`
	Duration          int       `json:"duration"` // minutes, > 0
	Location          *Location `json:"location,omitempty"`
	Cost              *Cost     `json:"cost,omitempty"`
	BookingRequired   *bool     `json:"booking_required,omitempty"` // nil means infer
	ExpertRecommended bool      `json:"expert_recommended"`
	NovatrekEnhanced  bool      `json:"novatrek_enhanced"`
	Setting           Setting   `json:"setting,omitempty"`
	Rating            float64   `json:"rating,omitempty"`
	RatingCount       int       `json:"rating_count,omitempty"`
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// End returns Start + Duration.
func (a Activity) End() Clock {
	return a.Start.Add(a.Duration)
}
