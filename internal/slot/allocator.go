// Package slot places activities inside a day.
//
// It detects overlaps between half-open [start, end) intervals and, when
// asked, searches for the first free slot in chronological order that keeps
// the configured buffer after each existing activity. The search is greedy and
// deterministic: identical inputs always yield the same slot.
package slot

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/geo"
)

// Request describes one activity insertion or re-placement.
type Request struct {
	// Existing are the activities already on the day.
	Existing []domain.Activity

	// Exclude is ignored in Existing; set it when re-placing an activity that
	// is already stored on the day.
	Exclude uuid.UUID

	// Duration of the new activity in minutes.
	Duration int

	// Desired start time. When nil the first free slot is used.
	Desired *domain.Clock

	// AutoOptimize allows moving a conflicting request to the first free slot.
	AutoOptimize bool

	EarlyBird bool
	NightOwl  bool

	// Location of the new activity, used for the travel-time estimate.
	Location *domain.Location
}

// Placement is the allocator's answer.
type Placement struct {
	Start domain.Clock
	End   domain.Clock

	// Relocated is set when the activity was moved away from Desired.
	Relocated bool

	// Conflicts lists the activities overlapping the desired time.
	Conflicts []domain.Activity

	// ConflictAccepted is set when the desired time was kept despite
	// conflicts because auto-placement was off.
	ConflictAccepted bool

	// TravelMinutes is the estimated travel time from the previous located
	// activity, zero when unknown.
	TravelMinutes int
	TravelFrom    uuid.UUID

	Warnings []string
}

// Allocator places activities according to a Policy.
type Allocator struct {
	policy Policy
}

// New returns an Allocator using p.
func New(p Policy) *Allocator {
	return &Allocator{policy: p}
}

// Policy returns the allocator's policy.
func (a *Allocator) Policy() Policy {
	return a.policy
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. Touching intervals
// do not overlap.
func Overlaps(s1, e1, s2, e2 domain.Clock) bool {
	return s1 < e2 && s2 < e1
}

// Conflicts returns the activities overlapping [start, end), in input order.
func Conflicts(existing []domain.Activity, start, end domain.Clock) []domain.Activity {
	var out []domain.Activity
	for _, act := range existing {
		if Overlaps(start, end, act.Start, act.End()) {
			out = append(out, act)
		}
	}
	return out
}

// Place decides where the requested activity goes.
//
// Returns domain.ErrValidation for a non-positive duration or a desired time
// that would run past midnight, and a *domain.NoFeasibleSlotError when a slot
// search is needed and the window has no room. Travel time never blocks a
// placement; it only adds a warning.
func (a *Allocator) Place(req Request) (Placement, error) {
	if req.Duration <= 0 {
		return Placement{}, fmt.Errorf("%w: duration must be positive", domain.ErrValidation)
	}
	existing := without(req.Existing, req.Exclude)
	window := a.policy.Window(req.EarlyBird, req.NightOwl)

	var p Placement
	switch {
	case req.Desired != nil:
		start := *req.Desired
		if !start.Valid() || start.Add(req.Duration) > domain.MinutesPerDay {
			return Placement{}, fmt.Errorf("%w: activity must start and end on the same day", domain.ErrValidation)
		}
		p.Start = start
		p.Conflicts = Conflicts(existing, start, start.Add(req.Duration))
		if len(p.Conflicts) > 0 {
			if !req.AutoOptimize {
				p.ConflictAccepted = true
				p.Warnings = append(p.Warnings, fmt.Sprintf("time conflict detected with %d activities", len(p.Conflicts)))
				break
			}
			slot, ok := a.FindSlot(existing, req.Duration, window)
			if !ok {
				return Placement{}, noSlot(req.Duration, window, p.Conflicts)
			}
			p.Start = slot
			p.Relocated = true
		}
	default:
		slot, ok := a.FindSlot(existing, req.Duration, window)
		if !ok {
			return Placement{}, noSlot(req.Duration, window, Conflicts(existing, window.Start, window.End))
		}
		p.Start = slot
	}
	p.End = p.Start.Add(req.Duration)

	a.annotateTravel(&p, existing, req.Location)
	return p, nil
}

// FindSlot returns the first start time in chronological order at which an
// activity of the given duration fits inside w:
//
//  1. the window start, if the first activity begins at least duration later;
//  2. previousEnd+buffer inside each gap between consecutive activities;
//  3. lastEnd+buffer after the last activity.
func (a *Allocator) FindSlot(existing []domain.Activity, duration int, w Window) (domain.Clock, bool) {
	sorted := make([]domain.Activity, len(existing))
	copy(sorted, existing)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End() < sorted[j].End()
	})

	if len(sorted) == 0 {
		if w.Start.Add(duration) <= w.End {
			return w.Start, true
		}
		return 0, false
	}

	if w.Start.Add(duration) <= min(sorted[0].Start, w.End) {
		return w.Start, true
	}

	prevEnd := sorted[0].End()
	for _, next := range sorted[1:] {
		candidate := max(prevEnd.Add(a.policy.Buffer), w.Start)
		if end := candidate.Add(duration); end <= next.Start && end <= w.End {
			return candidate, true
		}
		prevEnd = max(prevEnd, next.End())
	}

	candidate := max(prevEnd.Add(a.policy.Buffer), w.Start)
	if candidate.Add(duration) <= w.End {
		return candidate, true
	}
	return 0, false
}

// annotateTravel estimates travel time from the activity that ends last
// before p.Start. Only that immediate predecessor is considered.
func (a *Allocator) annotateTravel(p *Placement, existing []domain.Activity, to *domain.Location) {
	if to == nil {
		return
	}
	var prev *domain.Activity
	for i := range existing {
		act := &existing[i]
		if act.End() > p.Start {
			continue
		}
		if prev == nil || act.End() > prev.End() || (act.End() == prev.End() && act.Start > prev.Start) {
			prev = act
		}
	}
	if prev == nil || prev.Location == nil {
		return
	}
	p.TravelMinutes = geo.TravelMinutes(prev.Location.Coordinates, to.Coordinates, a.policy.TravelSpeedKmh)
	p.TravelFrom = prev.ID
	if p.TravelMinutes > a.policy.TravelWarnMinutes {
		p.Warnings = append(p.Warnings,
			fmt.Sprintf("estimated travel time from %q is %d minutes", prev.Name, p.TravelMinutes))
	}
}

func without(acts []domain.Activity, id uuid.UUID) []domain.Activity {
	if id == uuid.Nil {
		return acts
	}
	out := make([]domain.Activity, 0, len(acts))
	for _, act := range acts {
		if act.ID != id {
			out = append(out, act)
		}
	}
	return out
}

func noSlot(duration int, w Window, conflicts []domain.Activity) error {
	return &domain.NoFeasibleSlotError{
		Duration:    duration,
		WindowStart: w.Start,
		WindowEnd:   w.End,
		Conflicts:   conflicts,
	}
}
