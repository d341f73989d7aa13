package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. malformed date, departure before arrival, non-positive duration).
// Validation happens before any computation and nothing is partially applied.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNoFeasibleSlot is returned when the slot allocator exhausts the day window.
// Handlers should map this to HTTP 409 Conflict.
var ErrNoFeasibleSlot = errors.New("no available time slot found")

// ErrPersistence marks a store write failure that happened after the result
// was computed. Callers can retry the write without recomputing.
var ErrPersistence = errors.New("persistence error")

// ErrVersionConflict is returned when an activity was modified concurrently.
var ErrVersionConflict = errors.New("version conflict")

// DayNotFoundError reports that no day exists for a requested date.
// ValidDates lists the dates that do exist, as a remediation hint.
type DayNotFoundError struct {
	Date       time.Time
	ValidDates []time.Time
}

func (e *DayNotFoundError) Error() string {
	dates := make([]string, len(e.ValidDates))
	for i, d := range e.ValidDates {
		dates[i] = d.Format(DateLayout)
	}
	return fmt.Sprintf("no day for %s; valid dates: %s", e.Date.Format(DateLayout), strings.Join(dates, ", "))
}

// Is makes errors.Is(err, ErrNotFound) true for a *DayNotFoundError.
func (e *DayNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NoFeasibleSlotError is the structured failure of a slot search.
type NoFeasibleSlotError struct {
	Duration    int
	WindowStart Clock
	WindowEnd   Clock
	Conflicts   []Activity
}

func (e *NoFeasibleSlotError) Error() string {
	return fmt.Sprintf("%s: %d minutes between %s and %s (%d conflicting activities)",
		ErrNoFeasibleSlot, e.Duration, e.WindowStart, e.WindowEnd, len(e.Conflicts))
}

// Is makes errors.Is(err, ErrNoFeasibleSlot) true for a *NoFeasibleSlotError.
func (e *NoFeasibleSlotError) Is(target error) bool {
	return target == ErrNoFeasibleSlot
}
