package booking

import (
	"fmt"
	"sort"
	"time"

	"github.com/novatrek/planner/backend/internal/domain"
)

// DefaultOffsets are the reminder offsets in days before the activity.
var DefaultOffsets = []int{7, 3, 1}

// TypeFor derives the reminder type from its offset: 7+ days booking,
// 3-6 confirmation, under 3 preparation.
func TypeFor(daysBefore int) domain.ReminderType {
	switch {
	case daysBefore >= 7:
		return domain.ReminderBooking
	case daysBefore >= 3:
		return domain.ReminderConfirmation
	}
	return domain.ReminderPreparation
}

// ValidateOffsets rejects non-positive offsets.
func ValidateOffsets(offsets []int) error {
	for _, o := range offsets {
		if o <= 0 {
			return fmt.Errorf("%w: reminder offsets must be positive days, got %d", domain.ErrValidation, o)
		}
	}
	return nil
}

// Reminders builds the reminder batch for an activity on date.
//
// Each offset yields a reminder at the activity's start time minus that many
// days. Offsets landing before now are skipped, duplicates collapse, and the
// batch is sorted by RemindAt ascending. A nil or empty offsets list uses
// DefaultOffsets. The returned reminders are pending and have no ID yet.
func Reminders(a domain.Activity, date, now time.Time, offsets []int, priority domain.Priority) ([]domain.Reminder, error) {
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	if err := ValidateOffsets(offsets); err != nil {
		return nil, err
	}

	eventAt := a.Start.On(date)
	seen := make(map[int]bool, len(offsets))
	out := make([]domain.Reminder, 0, len(offsets))
	for _, off := range offsets {
		if seen[off] {
			continue
		}
		seen[off] = true

		at := eventAt.AddDate(0, 0, -off)
		if at.Before(now) {
			continue
		}
		typ := TypeFor(off)
		out = append(out, domain.Reminder{
			TripID:     a.TripID,
			ActivityID: a.ID,
			RemindAt:   at,
			DaysBefore: off,
			Type:       typ,
			Priority:   priority,
			Message:    message(typ, a, date, off),
			Status:     domain.ReminderPending,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func message(typ domain.ReminderType, a domain.Activity, date time.Time, days int) string {
	when := date.Format("Mon 2 Jan")
	switch typ {
	case domain.ReminderBooking:
		return fmt.Sprintf("Book %s now: it is %d days away (%s).", a.Name, days, when)
	case domain.ReminderConfirmation:
		return fmt.Sprintf("Confirm your reservation for %s on %s.", a.Name, when)
	}
	if days == 1 {
		return fmt.Sprintf("%s is tomorrow at %s. Check tickets and directions.", a.Name, a.Start)
	}
	return fmt.Sprintf("%s is in %d days at %s. Check tickets and directions.", a.Name, days, a.Start)
}
