package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/handler"
	"github.com/novatrek/planner/backend/internal/service"
	"github.com/novatrek/planner/backend/internal/suitability"
	"github.com/novatrek/planner/backend/internal/weather"
)

type mockSuitabilityServicer struct {
	scoreDay  func(ctx context.Context, tripID, dayID uuid.UUID) (service.DayReport, error)
	scoreTrip func(ctx context.Context, tripID uuid.UUID) ([]service.DayReport, error)
}

func (m *mockSuitabilityServicer) ScoreDay(ctx context.Context, tripID, dayID uuid.UUID) (service.DayReport, error) {
	return m.scoreDay(ctx, tripID, dayID)
}
func (m *mockSuitabilityServicer) ScoreTrip(ctx context.Context, tripID uuid.UUID) ([]service.DayReport, error) {
	return m.scoreTrip(ctx, tripID)
}

var _ handler.SuitabilityServicer = (*mockSuitabilityServicer)(nil)

func TestScoreDay_ReturnsRankedActivities(t *testing.T) {
	day := domain.Day{ID: uuid.New(), DayNumber: 1, Date: date(6, 1), Destination: "Paris"}
	louvre := domain.Activity{ID: uuid.New(), Name: "Louvre", Setting: domain.SettingIndoor}
	svc := &mockSuitabilityServicer{
		scoreDay: func(_ context.Context, _, dayID uuid.UUID) (service.DayReport, error) {
			assert.Equal(t, day.ID, dayID)
			return service.DayReport{
				Day:     day,
				Weather: &domain.Weather{Date: day.Date, Conditions: domain.ConditionRain, Precipitation: 80},
				Activities: []service.ScoredActivity{
					{Assessment: suitability.Assessment{ActivityID: louvre.ID, Name: "Louvre", Score: 100, Tier: "excellent", Warnings: []string{}}},
					{
						Assessment:   suitability.Assessment{Name: "Seine walk", Score: 25, Tier: suitability.TierPoor, NeedsAlternative: true, Warnings: []string{"rain expected"}},
						Alternatives: []domain.Activity{louvre},
					},
				},
			}, nil
		},
	}

	rec := serve(t, handler.Services{Suitability: svc}, http.MethodGet,
		"/trips/"+uuid.NewString()+"/days/"+day.ID.String()+"/suitability", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Weather struct {
			Conditions string `json:"conditions"`
		} `json:"weather"`
		WeatherUnavailable bool `json:"weather_unavailable"`
		Activities         []struct {
			Name             string `json:"name"`
			Score            int    `json:"score"`
			NeedsAlternative bool   `json:"needs_alternative"`
			Alternatives     []struct {
				Name string `json:"name"`
			} `json:"alternatives"`
		} `json:"activities"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "rain", resp.Weather.Conditions)
	assert.False(t, resp.WeatherUnavailable)
	require.Len(t, resp.Activities, 2)
	assert.Equal(t, 100, resp.Activities[0].Score)
	assert.True(t, resp.Activities[1].NeedsAlternative)
	require.Len(t, resp.Activities[1].Alternatives, 1)
	assert.Equal(t, "Louvre", resp.Activities[1].Alternatives[0].Name)
}

func TestScoreDay_WeatherUnavailableIs503(t *testing.T) {
	svc := &mockSuitabilityServicer{
		scoreDay: func(context.Context, uuid.UUID, uuid.UUID) (service.DayReport, error) {
			return service.DayReport{}, fmt.Errorf("service.SuitabilityService.ScoreDay: %w", weather.ErrUnavailable)
		},
	}

	rec := serve(t, handler.Services{Suitability: svc}, http.MethodGet,
		"/trips/"+uuid.NewString()+"/days/"+uuid.NewString()+"/suitability", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "weather_unavailable", errorBody(t, rec).Code)
}

func TestScoreTrip_FlagsDegradedDays(t *testing.T) {
	svc := &mockSuitabilityServicer{
		scoreTrip: func(context.Context, uuid.UUID) ([]service.DayReport, error) {
			return []service.DayReport{
				{Day: domain.Day{DayNumber: 1, Date: date(6, 1)}},
				{Day: domain.Day{DayNumber: 2, Date: date(6, 2)}, WeatherUnavailable: true},
			}, nil
		},
	}

	rec := serve(t, handler.Services{Suitability: svc}, http.MethodGet, "/trips/"+uuid.NewString()+"/suitability", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []struct {
		WeatherUnavailable bool  `json:"weather_unavailable"`
		Activities         []any `json:"activities"`
	}
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 2)
	assert.False(t, resp[0].WeatherUnavailable)
	assert.True(t, resp[1].WeatherUnavailable)
	assert.NotNil(t, resp[0].Activities, "activities is always an array")
}
