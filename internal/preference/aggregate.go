// Package preference merges several travelers' preferences into one group
// preference set and reports the conflicts it had to settle.
//
// Dietary requirements and accessibility needs are hard requirements: they are
// always the union over all travelers, whatever the mode or policy.
package preference

import (
	"fmt"
	"strings"

	"github.com/novatrek/planner/backend/internal/domain"
)

// Request is one group-planning aggregation.
type Request struct {
	Travelers []domain.PreferenceSet
	Mode      domain.AggregationMode
	Policy    domain.ResolutionPolicy
}

// Result is the outcome of Aggregate.
type Result struct {
	Preferences     domain.AggregatedPreferences `json:"preferences"`
	Conflicts       []domain.Conflict            `json:"conflicts"`
	Recommendations []string                     `json:"recommendations"`
	Confidence      float64                      `json:"confidence"`
	GroupSize       int                          `json:"group_size"`
	Mode            domain.AggregationMode       `json:"mode"`
	Policy          domain.ResolutionPolicy      `json:"policy"`
}

// Aggregate merges the travelers' preferences.
//
// Mode defaults to inclusive and Policy to accommodate_all when empty.
// Returns domain.ErrValidation for an empty group or unknown mode/policy.
func Aggregate(req Request) (Result, error) {
	if len(req.Travelers) == 0 {
		return Result{}, fmt.Errorf("%w: at least one traveler is required", domain.ErrValidation)
	}
	mode, policy := req.Mode, req.Policy
	if mode == "" {
		mode = domain.ModeInclusive
	}
	if policy == "" {
		policy = domain.PolicyAccommodateAll
	}
	if err := validate(mode, policy); err != nil {
		return Result{}, err
	}

	travelers := make([]domain.PreferenceSet, len(req.Travelers))
	for i, t := range req.Travelers {
		travelers[i] = normalize(t)
	}

	agg := merge(travelers, mode)
	conflicts := detect(travelers)
	for i := range conflicts {
		resolve(&conflicts[i], &agg, travelers, policy)
	}

	return Result{
		Preferences:     agg,
		Conflicts:       conflicts,
		Recommendations: recommendations(len(travelers), agg, conflicts),
		Confidence:      Confidence(conflicts),
		GroupSize:       len(travelers),
		Mode:            mode,
		Policy:          policy,
	}, nil
}

func validate(mode domain.AggregationMode, policy domain.ResolutionPolicy) error {
	switch mode {
	case domain.ModeConsensus, domain.ModeInclusive, domain.ModeDemocratic:
	default:
		return fmt.Errorf("%w: unknown aggregation mode %q", domain.ErrValidation, mode)
	}
	switch policy {
	case domain.PolicyAccommodateAll, domain.PolicyMajorityWins, domain.PolicyFindMiddleGround:
	default:
		return fmt.Errorf("%w: unknown resolution policy %q", domain.ErrValidation, policy)
	}
	return nil
}

// merge builds the aggregate before any conflict resolution.
func merge(ts []domain.PreferenceSet, mode domain.AggregationMode) domain.AggregatedPreferences {
	field := func(get func(domain.PreferenceSet) []string) [][]string {
		out := make([][]string, len(ts))
		for i, t := range ts {
			out[i] = get(t)
		}
		return out
	}
	dietary := field(func(t domain.PreferenceSet) []string { return t.Dietary })
	access := field(func(t domain.PreferenceSet) []string { return t.Accessibility })
	interests := field(func(t domain.PreferenceSet) []string { return t.Interests })
	activities := field(func(t domain.PreferenceSet) []string { return t.Activities })
	styles := field(func(t domain.PreferenceSet) []string { return t.TravelStyle })

	agg := domain.AggregatedPreferences{
		Dietary:       union(dietary),
		Accessibility: union(access),
		Budget:        plurality(ts, func(t domain.PreferenceSet) string { return t.Budget }),
		ActivityLevel: plurality(ts, func(t domain.PreferenceSet) string { return t.ActivityLevel }),
	}
	switch mode {
	case domain.ModeInclusive:
		agg.Interests = union(interests)
		agg.Activities = union(activities)
		agg.TravelStyle = intersect(styles)
	case domain.ModeConsensus:
		agg.Interests = intersect(interests)
		agg.Activities = intersect(activities)
		agg.TravelStyle = intersect(styles)
	case domain.ModeDemocratic:
		agg.Interests = majority(interests)
		agg.Activities = majority(activities)
		agg.TravelStyle = majority(styles)
	}
	return agg
}

func normalize(t domain.PreferenceSet) domain.PreferenceSet {
	t.Dietary = cleanList(t.Dietary)
	t.Accessibility = cleanList(t.Accessibility)
	t.Interests = cleanList(t.Interests)
	t.Activities = cleanList(t.Activities)
	t.TravelStyle = cleanList(t.TravelStyle)
	t.Budget = clean(t.Budget)
	t.ActivityLevel = clean(t.ActivityLevel)
	return t
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = clean(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// union keeps first-seen order.
func union(lists [][]string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// intersect keeps the first list's order.
func intersect(lists [][]string) []string {
	out := []string{}
	if len(lists) == 0 {
		return out
	}
	counts := votes(lists)
	for _, v := range lists[0] {
		if counts[v] == len(lists) {
			out = append(out, v)
		}
	}
	return out
}

// majority keeps values chosen by at least half of the travelers.
func majority(lists [][]string) []string {
	counts := votes(lists)
	out := []string{}
	for _, v := range union(lists) {
		if counts[v]*2 >= len(lists) {
			out = append(out, v)
		}
	}
	return out
}

func votes(lists [][]string) map[string]int {
	counts := map[string]int{}
	for _, l := range lists {
		for _, v := range l {
			counts[v]++
		}
	}
	return counts
}

// plurality returns the most frequent non-empty value; ties go to the value
// encountered first.
func plurality(ts []domain.PreferenceSet, get func(domain.PreferenceSet) string) string {
	counts := map[string]int{}
	var order []string
	for _, t := range ts {
		v := get(t)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
