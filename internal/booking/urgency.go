// Package booking decides which activities should be booked ahead and
// schedules reminders backward from the activity date.
package booking

import (
	"time"

	"github.com/novatrek/planner/backend/internal/classify"
	"github.com/novatrek/planner/backend/internal/domain"
)

// Requirement is the yes/no classification of an activity.
type Requirement struct {
	Required bool `json:"required"`
}

// Classify reports whether the activity requires advance booking.
func Classify(a domain.Activity) Requirement {
	return Requirement{Required: classify.RequiresBooking(a)}
}

// Urgency rule identifiers, in evaluation order.
const (
	RuleExpert      = "expert_recommended"
	RulePopular     = "highly_rated"
	RuleWeekend     = "weekend_restaurant"
	RuleDinner      = "dinner_restaurant"
	RuleCulture     = "museum_attraction_tour"
	RuleRequirement = "booking_required"
	RuleNone        = "none"
)

var (
	dinnerFrom = domain.NewClock(18, 0)
	dinnerTo   = domain.NewClock(21, 0)
)

// Urgency is how strongly booking ahead is recommended. It is independent of
// Requirement: an activity may not require booking and still be recommended.
type Urgency struct {
	Recommended bool            `json:"recommended"`
	Priority    domain.Priority `json:"priority"`
	Rule        string          `json:"rule"`
	DaysUntil   int             `json:"days_until"`
}

// Analyze scores booking urgency for an activity taking place on date, as seen
// at now. Rules are tried in a fixed order and the first match wins:
//
//  1. expert recommended: high within 7 days, else medium
//  2. rating >= 4.7 with more than 500 ratings: high within 14 days, else medium
//  3. restaurant on a weekend: high within 7 days, else medium
//  4. restaurant starting 18:00-21:00: medium
//  5. museum, attraction or tour: high within 3 days, else low
func Analyze(a domain.Activity, date, now time.Time) Urgency {
	days := domain.DaysBetween(now, date)
	within := func(limit int, near, far domain.Priority) domain.Priority {
		if days <= limit {
			return near
		}
		return far
	}
	u := Urgency{Recommended: true, DaysUntil: days}

	switch {
	case a.ExpertRecommended:
		u.Rule, u.Priority = RuleExpert, within(7, domain.PriorityHigh, domain.PriorityMedium)
	case a.Rating >= 4.7 && a.RatingCount > 500:
		u.Rule, u.Priority = RulePopular, within(14, domain.PriorityHigh, domain.PriorityMedium)
	case classify.IsRestaurant(a) && weekend(date):
		u.Rule, u.Priority = RuleWeekend, within(7, domain.PriorityHigh, domain.PriorityMedium)
	case classify.IsRestaurant(a) && a.Start >= dinnerFrom && a.Start <= dinnerTo:
		u.Rule, u.Priority = RuleDinner, domain.PriorityMedium
	case classify.IsCulture(a):
		u.Rule, u.Priority = RuleCulture, within(3, domain.PriorityHigh, domain.PriorityLow)
	case classify.RequiresBooking(a):
		u.Rule, u.Priority = RuleRequirement, domain.PriorityLow
	default:
		u.Recommended, u.Rule, u.Priority = false, RuleNone, domain.PriorityLow
	}
	return u
}

func weekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
