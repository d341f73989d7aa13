// Package sequencer turns a trip's dates into an ordered list of calendar days.
//
// Multi-destination trips get one synthetic travel day between consecutive
// stays, dated at the later stay's arrival. Legacy single-destination trips
// get one destination day per date in [start, end].
package sequencer

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/novatrek/planner/backend/internal/domain"
)

// MaxDays bounds the length of a sequence.
const MaxDays = 366

// PlannedDay is one day of a computed sequence, before it is matched against
// stored days.
type PlannedDay struct {
	DayNumber   int
	Date        time.Time
	Type        domain.DayType
	Destination string
	From        string
	To          string
}

// Skipped records a destination that produced no days because its data was
// incomplete.
type Skipped struct {
	Order  int
	Name   string
	Reason string
}

// Sequence is the result of Build.
type Sequence struct {
	Days    []PlannedDay
	Skipped []Skipped
}

// Start returns the first date of the sequence, or the zero time when empty.
func (s Sequence) Start() time.Time {
	if len(s.Days) == 0 {
		return time.Time{}
	}
	return s.Days[0].Date
}

// End returns the last date of the sequence, or the zero time when empty.
func (s Sequence) End() time.Time {
	if len(s.Days) == 0 {
		return time.Time{}
	}
	return s.Days[len(s.Days)-1].Date
}

// Build computes the day sequence of a trip.
//
// Destinations with a blank name or a missing arrival/departure date are
// skipped and reported in Sequence.Skipped; the remaining destinations still
// produce their days. A departure before its arrival, or a stay that starts
// before the previous one ends, is a validation error.
func Build(trip domain.Trip) (Sequence, error) {
	if trip.MultiDestination() {
		return buildMulti(trip.Destinations)
	}
	return buildLegacy(trip)
}

func buildLegacy(trip domain.Trip) (Sequence, error) {
	if trip.StartDate.IsZero() || trip.EndDate.IsZero() {
		return Sequence{}, fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	start, end := domain.DateOf(trip.StartDate), domain.DateOf(trip.EndDate)
	if end.Before(start) {
		return Sequence{}, fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if n := domain.DaysBetween(start, end) + 1; n > MaxDays {
		return Sequence{}, fmt.Errorf("%w: trip spans %d days, maximum is %d", domain.ErrValidation, n, MaxDays)
	}

	var seq Sequence
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		seq.Days = append(seq.Days, PlannedDay{
			DayNumber:   len(seq.Days) + 1,
			Date:        d,
			Type:        domain.DayTypeDestination,
			Destination: trip.Destination,
		})
	}
	return seq, nil
}

func buildMulti(dests []domain.Destination) (Sequence, error) {
	ordered := make([]domain.Destination, len(dests))
	copy(ordered, dests)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	var (
		seq   Sequence
		valid []domain.Destination
	)
	for _, d := range ordered {
		if reason := incomplete(d); reason != "" {
			seq.Skipped = append(seq.Skipped, Skipped{Order: d.Order, Name: d.Name, Reason: reason})
			continue
		}
		d.ArrivalDate = domain.DateOf(d.ArrivalDate)
		d.DepartureDate = domain.DateOf(d.DepartureDate)
		if d.DepartureDate.Before(d.ArrivalDate) {
			return Sequence{}, fmt.Errorf("%w: %s: departure_date must not be before arrival_date", domain.ErrValidation, d.Name)
		}
		if n := len(valid); n > 0 && d.ArrivalDate.Before(valid[n-1].DepartureDate) {
			return Sequence{}, fmt.Errorf("%w: %s arrives before %s departs", domain.ErrValidation, d.Name, valid[n-1].Name)
		}
		valid = append(valid, d)
	}
	if len(valid) > 0 {
		if n := domain.DaysBetween(valid[0].ArrivalDate, valid[len(valid)-1].DepartureDate) + 1; n > MaxDays {
			return Sequence{}, fmt.Errorf("%w: trip spans %d days, maximum is %d", domain.ErrValidation, n, MaxDays)
		}
	}

	emit := func(p PlannedDay) {
		p.DayNumber = len(seq.Days) + 1
		seq.Days = append(seq.Days, p)
	}

	for i, d := range valid {
		first := d.ArrivalDate
		if i > 0 {
			prev := valid[i-1]
			emit(PlannedDay{
				Date: d.ArrivalDate,
				Type: domain.DayTypeTravel,
				From: prev.Name,
				To:   d.Name,
			})
			first = d.ArrivalDate.AddDate(0, 0, 1)
		}

		// The departure date belongs to the next stay's travel day when the
		// next stay arrives that same day.
		last := d.DepartureDate
		if i+1 < len(valid) && !valid[i+1].ArrivalDate.After(last) {
			last = valid[i+1].ArrivalDate.AddDate(0, 0, -1)
		}

		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			emit(PlannedDay{Date: day, Type: domain.DayTypeDestination, Destination: d.Name})
		}
	}
	return seq, nil
}

func incomplete(d domain.Destination) string {
	var problems []string
	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "missing name")
	}
	for _, f := range []struct {
		field string
		date  time.Time
	}{
		{"arrival_date", d.ArrivalDate},
		{"departure_date", d.DepartureDate},
	} {
		switch {
		case slices.Contains(d.InvalidDates, f.field):
			problems = append(problems, "invalid "+f.field)
		case f.date.IsZero():
			problems = append(problems, "missing "+f.field)
		}
	}
	return strings.Join(problems, ", ")
}
