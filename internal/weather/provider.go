// Package weather fetches day forecasts for the suitability scorer.
package weather

import (
	"context"
	"errors"
	"time"

	"github.com/novatrek/planner/backend/internal/domain"
)

// ErrUnavailable is returned when no forecast can be obtained, either because
// the upstream failed or because the date is outside its forecast horizon.
var ErrUnavailable = errors.New("weather forecast unavailable")

// Provider returns the forecast for one calendar day at one place.
type Provider interface {
	Forecast(ctx context.Context, at domain.Coordinates, date time.Time) (domain.Weather, error)
}

// Condition maps a WMO weather interpretation code to a coarse condition.
func Condition(code int) domain.Condition {
	switch {
	case code <= 1:
		return domain.ConditionClear
	case code <= 48:
		return domain.ConditionCloudy
	case code >= 95:
		return domain.ConditionStorm
	case code >= 71 && code <= 77, code == 85, code == 86:
		return domain.ConditionSnow
	default:
		return domain.ConditionRain
	}
}
