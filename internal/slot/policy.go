package slot

import (
	"fmt"

	"github.com/novatrek/planner/backend/internal/domain"
)

// Policy holds the allocator's tunable constants.
type Policy struct {
	// DayStart and DayEnd bound the default search window.
	DayStart domain.Clock
	DayEnd   domain.Clock

	// EarlyStart replaces DayStart for early birds; LateEnd replaces DayEnd
	// for night owls.
	EarlyStart domain.Clock
	LateEnd    domain.Clock

	// Buffer is the minimum gap in minutes kept after an existing activity.
	Buffer int

	// TravelSpeedKmh converts straight-line distance into travel time.
	TravelSpeedKmh float64

	// TravelWarnMinutes is the travel time above which a warning is attached.
	TravelWarnMinutes int
}

// DefaultPolicy returns the 09:00-20:00 window (07:00-22:00 when extended),
// a 30 minute buffer and a 30 minute travel warning at 30 km/h.
func DefaultPolicy() Policy {
	return Policy{
		DayStart:          domain.NewClock(9, 0),
		DayEnd:            domain.NewClock(20, 0),
		EarlyStart:        domain.NewClock(7, 0),
		LateEnd:           domain.NewClock(22, 0),
		Buffer:            30,
		TravelSpeedKmh:    30,
		TravelWarnMinutes: 30,
	}
}

// Validate reports inconsistent window bounds or negative values.
func (p Policy) Validate() error {
	switch {
	case !p.DayStart.Valid() || !p.DayEnd.Valid() || !p.EarlyStart.Valid() || !p.LateEnd.Valid():
		return fmt.Errorf("%w: day window bounds must lie within 00:00-24:00", domain.ErrValidation)
	case p.DayEnd <= p.DayStart:
		return fmt.Errorf("%w: day end %s must be after day start %s", domain.ErrValidation, p.DayEnd, p.DayStart)
	case p.EarlyStart > p.DayStart || p.LateEnd < p.DayEnd:
		return fmt.Errorf("%w: extended window must contain the default window", domain.ErrValidation)
	case p.Buffer < 0 || p.TravelWarnMinutes < 0 || p.TravelSpeedKmh < 0:
		return fmt.Errorf("%w: buffer, travel speed and travel warning must not be negative", domain.ErrValidation)
	}
	return nil
}

// Window is a half-open [Start, End) range of the day.
type Window struct {
	Start domain.Clock
	End   domain.Clock
}

// Window returns the search window for the given preference flags.
func (p Policy) Window(earlyBird, nightOwl bool) Window {
	w := Window{Start: p.DayStart, End: p.DayEnd}
	if earlyBird {
		w.Start = p.EarlyStart
	}
	if nightOwl {
		w.End = p.LateEnd
	}
	return w
}
