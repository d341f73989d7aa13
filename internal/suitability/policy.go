package suitability

import (
	"fmt"

	"github.com/novatrek/planner/backend/internal/domain"
)

// Policy is the deduction table of the scorer. Tier thresholds are not part
// of it; they are fixed.
type Policy struct {
	ComfortMinC        float64 // outdoor comfort band, °C
	ComfortMaxC        float64
	WindLimit          float64 // same unit as the forecast source
	PrecipitationLimit float64 // percent chance above which rain is assumed

	RainOutdoor  int
	RainMixed    int
	Temperature  int
	Wind         int
	StormOutdoor int
	StormOther   int

	// Best-hour filter for hourly forecasts.
	BestMinC             float64
	BestMaxC             float64
	BestMaxPrecipitation float64
}

// DefaultPolicy returns the standard deduction table: a 10-30 °C comfort band,
// wind limit 30, rain assumed above 50% precipitation.
func DefaultPolicy() Policy {
	return Policy{
		ComfortMinC:        10,
		ComfortMaxC:        30,
		WindLimit:          30,
		PrecipitationLimit: 50,

		RainOutdoor:  60,
		RainMixed:    20,
		Temperature:  30,
		Wind:         20,
		StormOutdoor: 80,
		StormOther:   20,

		BestMinC:             15,
		BestMaxC:             28,
		BestMaxPrecipitation: 30,
	}
}

// Validate rejects negative deductions and inverted temperature bands.
func (p Policy) Validate() error {
	for _, d := range []int{p.RainOutdoor, p.RainMixed, p.Temperature, p.Wind, p.StormOutdoor, p.StormOther} {
		if d < 0 {
			return fmt.Errorf("%w: deductions must not be negative", domain.ErrValidation)
		}
	}
	if p.ComfortMaxC < p.ComfortMinC || p.BestMaxC < p.BestMinC {
		return fmt.Errorf("%w: temperature band is inverted", domain.ErrValidation)
	}
	return nil
}
