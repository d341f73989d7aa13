package sequencer

import (
	"time"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
)

// Diff describes how stored days must change to match a new sequence.
type Diff struct {
	// Days is the full in-range list, numbered 1..N. Entries matched to a
	// stored day by date keep its ID; new entries have a zero ID.
	Days []domain.Day

	// Removed are stored days outside the new range that own no activities.
	Removed []domain.Day

	// Orphaned are stored days outside the new range that still own
	// activities. They are kept, flagged OutOfRange with DayNumber 0, and the
	// caller must decide to keep, move or delete them.
	Orphaned []domain.Day
}

// Reconcile matches a freshly built sequence against the days already stored
// for a trip. Days are matched by calendar date.
func Reconcile(tripID uuid.UUID, existing []domain.Day, seq Sequence) Diff {
	byDate := make(map[time.Time]domain.Day, len(existing))
	for _, d := range existing {
		byDate[domain.DateOf(d.Date)] = d
	}

	var diff Diff
	for _, p := range seq.Days {
		day, ok := byDate[p.Date]
		if ok {
			delete(byDate, p.Date)
		} else {
			day = domain.Day{TripID: tripID, Date: p.Date}
		}
		day.DayNumber = p.DayNumber
		day.Type = p.Type
		day.Destination = p.Destination
		day.FromDestination = p.From
		day.ToDestination = p.To
		day.OutOfRange = false
		diff.Days = append(diff.Days, day)
	}

	// Iterate the original slice so the output order is deterministic.
	for _, d := range existing {
		if _, left := byDate[domain.DateOf(d.Date)]; !left {
			continue
		}
		if d.ActivityCount > 0 {
			d.OutOfRange = true
			d.DayNumber = 0
			diff.Orphaned = append(diff.Orphaned, d)
			continue
		}
		diff.Removed = append(diff.Removed, d)
	}
	return diff
}
