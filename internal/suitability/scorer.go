// Package suitability scores how well an activity fits a day's weather.
//
// Every activity starts at 100 points and loses points for each unfavourable
// factor; deductions stack and the result is clamped to 0..100.
package suitability

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/classify"
	"github.com/novatrek/planner/backend/internal/domain"
)

// Tier is a coarse bucket of a score.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

const (
	excellentFrom = 80
	goodFrom      = 60
	fairAbove     = 40
)

// TierFor maps a score to its tier: 80+ excellent, 60+ good, above 40 fair,
// 40 or less poor.
func TierFor(score int) Tier {
	switch {
	case score >= excellentFrom:
		return TierExcellent
	case score >= goodFrom:
		return TierGood
	case score > fairAbove:
		return TierFair
	}
	return TierPoor
}

// Assessment is the weather fit of one activity on one day.
type Assessment struct {
	ActivityID uuid.UUID      `json:"activity_id"`
	Name       string         `json:"name"`
	Setting    domain.Setting `json:"setting"`
	Score      int            `json:"score"`
	Tier       Tier           `json:"tier"`
	Warnings   []string       `json:"warnings"`

	// BestHour is the suggested start hour for outdoor activities, nil when
	// no hourly forecast is available or no hour qualifies.
	BestHour *int `json:"best_hour,omitempty"`

	// NeedsAlternative is set for poor-tier activities; callers may look for
	// an indoor alternative nearby.
	NeedsAlternative bool `json:"needs_alternative"`
}

// Scorer applies a Policy. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	policy Policy
}

// New returns a Scorer using p.
func New(p Policy) *Scorer {
	return &Scorer{policy: p}
}

// Score rates one activity against the day's weather.
func (s *Scorer) Score(a domain.Activity, w domain.Weather) Assessment {
	setting := classify.Setting(a)
	outdoor := setting == domain.SettingOutdoor
	mixed := setting == domain.SettingMixed
	p := s.policy

	score := 100
	warnings := []string{}
	deduct := func(points int, msg string) {
		score -= points
		warnings = append(warnings, msg)
	}

	if w.Conditions == domain.ConditionRain || w.Precipitation > p.PrecipitationLimit {
		switch {
		case outdoor:
			deduct(p.RainOutdoor, fmt.Sprintf("rain expected (%.0f%% chance); outdoor plans are likely affected", w.Precipitation))
		case mixed:
			deduct(p.RainMixed, fmt.Sprintf("rain expected (%.0f%% chance); plan for the indoor parts", w.Precipitation))
		}
	}
	if outdoor && (w.TempHigh > p.ComfortMaxC || w.TempLow < p.ComfortMinC) {
		deduct(p.Temperature, fmt.Sprintf("temperature %.0f-%.0f °C is outside the comfortable %.0f-%.0f °C range",
			w.TempLow, w.TempHigh, p.ComfortMinC, p.ComfortMaxC))
	}
	if outdoor && w.WindSpeed > p.WindLimit {
		deduct(p.Wind, fmt.Sprintf("strong wind (%.0f)", w.WindSpeed))
	}
	if w.Conditions == domain.ConditionStorm {
		if outdoor {
			deduct(p.StormOutdoor, "storm forecast; outdoor activity is unsafe")
		} else {
			deduct(p.StormOther, "storm forecast; expect transport disruption")
		}
	}

	score = max(0, min(100, score))
	tier := TierFor(score)
	res := Assessment{
		ActivityID:       a.ID,
		Name:             a.Name,
		Setting:          setting,
		Score:            score,
		Tier:             tier,
		Warnings:         warnings,
		NeedsAlternative: tier == TierPoor,
	}
	if outdoor {
		res.BestHour = s.BestHour(w.Hourly)
	}
	return res
}

// BestHour picks a start hour from an hourly forecast: dry, under the
// precipitation cap and inside the pleasant temperature band. Hours 09-11 and
// 16-18 are preferred; otherwise the earliest acceptable hour is returned.
// Returns nil when no hour qualifies.
func (s *Scorer) BestHour(hourly []domain.HourlyForecast) *int {
	hours := make([]domain.HourlyForecast, len(hourly))
	copy(hours, hourly)
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Hour < hours[j].Hour })

	var fallback *int
	for _, h := range hours {
		if !s.acceptable(h) {
			continue
		}
		hour := h.Hour
		if preferredHour(hour) {
			return &hour
		}
		if fallback == nil {
			fallback = &hour
		}
	}
	return fallback
}

func (s *Scorer) acceptable(h domain.HourlyForecast) bool {
	p := s.policy
	wet := h.Conditions == domain.ConditionRain || h.Conditions == domain.ConditionStorm
	return !wet &&
		h.Precipitation < p.BestMaxPrecipitation &&
		h.Temperature >= p.BestMinC && h.Temperature <= p.BestMaxC
}

func preferredHour(h int) bool {
	return (h >= 9 && h <= 11) || (h >= 16 && h <= 18)
}

// Rank scores every activity and orders them by descending score, so poor
// fits come last. Ties keep their input order.
func (s *Scorer) Rank(acts []domain.Activity, w domain.Weather) []Assessment {
	out := make([]Assessment, len(acts))
	for i, a := range acts {
		out[i] = s.Score(a, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
