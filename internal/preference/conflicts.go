package preference

import (
	"fmt"
	"strings"

	"github.com/novatrek/planner/backend/internal/domain"
)

// hardDiets are dietary requirements that always produce a high-severity
// conflict record, one per requirement.
var hardDiets = []string{"vegan", "vegetarian", "halal", "kosher"}

const (
	styleAdventure  = "adventure"
	styleRelaxation = "relaxation"
)

// detect finds conflicts among the normalized travelers, in a fixed order:
// budget, activity level, dietary, style.
func detect(ts []domain.PreferenceSet) []domain.Conflict {
	var out []domain.Conflict

	if c, ok := scalarConflict(ts, domain.ConflictBudget, "budget",
		func(t domain.PreferenceSet) string { return t.Budget },
		domain.BudgetBudget, domain.BudgetLuxury); ok {
		out = append(out, c)
	}
	if c, ok := scalarConflict(ts, domain.ConflictActivityLevel, "activity_level",
		func(t domain.PreferenceSet) string { return t.ActivityLevel },
		domain.LevelLow, domain.LevelHigh); ok {
		out = append(out, c)
	}

	for _, diet := range hardDiets {
		var vals []domain.TravelerValue
		for _, t := range ts {
			if contains(t.Dietary, diet) {
				vals = append(vals, domain.TravelerValue{TravelerID: t.TravelerID, Value: diet})
			}
		}
		if len(vals) > 0 {
			out = append(out, domain.Conflict{
				Category: domain.ConflictDietary,
				Field:    "dietary",
				Values:   vals,
				Severity: domain.SeverityHigh,
			})
		}
	}

	var styleVals []domain.TravelerValue
	hasAdventure, hasRelax := false, false
	for _, t := range ts {
		for _, s := range t.TravelStyle {
			switch s {
			case styleAdventure:
				hasAdventure = true
			case styleRelaxation:
				hasRelax = true
			default:
				continue
			}
			styleVals = append(styleVals, domain.TravelerValue{TravelerID: t.TravelerID, Value: s})
		}
	}
	if hasAdventure && hasRelax {
		out = append(out, domain.Conflict{
			Category: domain.ConflictStyle,
			Field:    "travel_style",
			Values:   styleVals,
			Severity: domain.SeverityLow,
		})
	}
	return out
}

// scalarConflict reports a conflict when some traveler chose a and another b.
func scalarConflict(ts []domain.PreferenceSet, cat domain.ConflictCategory, field string,
	get func(domain.PreferenceSet) string, a, b string) (domain.Conflict, bool) {
	var vals []domain.TravelerValue
	hasA, hasB := false, false
	for _, t := range ts {
		v := get(t)
		if v == "" {
			continue
		}
		hasA = hasA || v == a
		hasB = hasB || v == b
		vals = append(vals, domain.TravelerValue{TravelerID: t.TravelerID, Value: v})
	}
	if !hasA || !hasB {
		return domain.Conflict{}, false
	}
	return domain.Conflict{Category: cat, Field: field, Values: vals, Severity: domain.SeverityMedium}, true
}

// resolve settles one conflict under policy, adjusting agg where the policy
// picks a value, and fills in the resolution note and compromise.
func resolve(c *domain.Conflict, agg *domain.AggregatedPreferences, ts []domain.PreferenceSet, policy domain.ResolutionPolicy) {
	switch c.Category {
	case domain.ConflictBudget:
		switch policy {
		case domain.PolicyAccommodateAll:
			agg.Budget = domain.BudgetBudget
			c.Resolution = "budget set to the most restrictive tier so everyone can take part"
		case domain.PolicyFindMiddleGround:
			agg.Budget = domain.BudgetModerate
			c.Resolution = "budget set to moderate as a middle ground"
		default:
			c.Resolution = fmt.Sprintf("budget follows the majority: %s", agg.Budget)
		}
		c.Compromise = "Keep most days affordable and pick one splurge experience together; luxury add-ons stay optional."

	case domain.ConflictActivityLevel:
		switch policy {
		case domain.PolicyAccommodateAll:
			agg.MixedActivityLevels = true
			c.Resolution = "mixed activity levels kept; each day offers easy and demanding options"
		case domain.PolicyFindMiddleGround:
			agg.ActivityLevel = domain.LevelModerate
			c.Resolution = "activity level set to moderate as a middle ground"
		default:
			c.Resolution = fmt.Sprintf("activity level follows the majority: %s", agg.ActivityLevel)
		}
		c.Compromise = "Pair each strenuous outing with a relaxed alternative nearby and regroup for meals."

	case domain.ConflictDietary:
		diet := c.Values[0].Value
		c.Resolution = fmt.Sprintf("%s requirement accommodated for the whole group", diet)
		c.Compromise = fmt.Sprintf("Choose restaurants with reliable %s options and confirm when booking.", diet)

	case domain.ConflictStyle:
		switch policy {
		case domain.PolicyMajorityWins:
			winner := styleAdventure
			if styleVotes(ts, styleRelaxation) > styleVotes(ts, styleAdventure) {
				winner = styleRelaxation
			}
			c.Resolution = fmt.Sprintf("itinerary leans %s, the majority style", winner)
		case domain.PolicyFindMiddleGround:
			c.Resolution = "alternate active and restful days"
		default:
			c.Resolution = "both adventure and relaxation are scheduled"
		}
		c.Compromise = "Plan active mornings and slow afternoons, with at least one rest day."
	}
}

func styleVotes(ts []domain.PreferenceSet, style string) int {
	n := 0
	for _, t := range ts {
		if contains(t.TravelStyle, style) {
			n++
		}
	}
	return n
}

// Confidence maps the number of high-severity conflicts to a score in [0,1].
// It is a heuristic table, not a probability.
func Confidence(conflicts []domain.Conflict) float64 {
	high := 0
	for _, c := range conflicts {
		if c.Severity == domain.SeverityHigh {
			high++
		}
	}
	switch high {
	case 0:
		return 1.0
	case 1:
		return 0.85
	case 2:
		return 0.7
	case 3:
		return 0.55
	}
	return 0.4
}

func recommendations(size int, agg domain.AggregatedPreferences, conflicts []domain.Conflict) []string {
	recs := []string{}
	if size >= 6 {
		recs = append(recs,
			"Reserve restaurants for large groups at least a week ahead and ask for seating together.",
			"Book tours and transfers early; group rates usually need a longer lead time.")
	}
	if size >= 4 {
		recs = append(recs, "Schedule some split sessions so smaller groups can follow their own interests.")
	}
	if size >= 2 {
		recs = append(recs, "Agree on a daily meeting point and time before heading out.")
	}
	if agg.MixedActivityLevels {
		recs = append(recs, "Offer an easier alternative alongside every demanding activity.")
	}
	if len(agg.Dietary) > 0 {
		recs = append(recs, fmt.Sprintf("Confirm dietary options (%s) whenever booking a meal.", strings.Join(agg.Dietary, ", ")))
	}
	if len(agg.Accessibility) > 0 {
		recs = append(recs, "Check step-free access and rest stops for every venue.")
	}
	for _, c := range conflicts {
		if c.Category == domain.ConflictStyle {
			recs = append(recs, "Alternate busy and restful days to balance travel styles.")
			break
		}
	}
	return recs
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
