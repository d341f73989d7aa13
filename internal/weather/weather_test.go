package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/weather"
)

const forecastJSON = `{
  "daily": {
    "time": ["2025-06-10"],
    "temperature_2m_max": [24.5],
    "temperature_2m_min": [14.1],
    "precipitation_probability_max": [80],
    "weather_code": [63],
    "wind_speed_10m_max": [18.2],
    "relative_humidity_2m_mean": [71]
  },
  "hourly": {
    "time": ["2025-06-10T09:00", "2025-06-10T10:00"],
    "temperature_2m": [17.0, 18.5],
    "precipitation_probability": [10, 20],
    "weather_code": [1, 3]
  }
}`

var paris = domain.Coordinates{Lat: 48.8566, Lng: 2.3522}

func TestOpenMeteo_Forecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "2025-06-10", r.URL.Query().Get("start_date"))
		assert.Equal(t, "48.8566", r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	c := weather.NewOpenMeteo(srv.URL+"/", time.Second)
	got, err := c.Forecast(context.Background(), paris, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 24.5, got.TempHigh)
	assert.Equal(t, 14.1, got.TempLow)
	assert.Equal(t, domain.ConditionRain, got.Conditions)
	assert.Equal(t, 80.0, got.Precipitation)
	assert.Equal(t, 18.2, got.WindSpeed)
	assert.Equal(t, 71.0, got.Humidity)
	require.Len(t, got.Hourly, 2)
	assert.Equal(t, 9, got.Hourly[0].Hour)
	assert.Equal(t, domain.ConditionClear, got.Hourly[0].Conditions)
	assert.Equal(t, domain.ConditionCloudy, got.Hourly[1].Conditions)
}

func TestOpenMeteo_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := weather.NewOpenMeteo(srv.URL, time.Second).Forecast(context.Background(), paris, time.Now())
	require.ErrorIs(t, err, weather.ErrUnavailable)
}

func TestOpenMeteo_NoDailyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"daily":{}}`))
	}))
	defer srv.Close()

	_, err := weather.NewOpenMeteo(srv.URL, time.Second).Forecast(context.Background(), paris, time.Now())
	require.ErrorIs(t, err, weather.ErrUnavailable)
}

func TestCondition(t *testing.T) {
	cases := map[int]domain.Condition{
		0:  domain.ConditionClear,
		2:  domain.ConditionCloudy,
		45: domain.ConditionCloudy,
		61: domain.ConditionRain,
		81: domain.ConditionRain,
		73: domain.ConditionSnow,
		86: domain.ConditionSnow,
		95: domain.ConditionStorm,
	}
	for code, want := range cases {
		assert.Equal(t, want, weather.Condition(code), "code %d", code)
	}
}

type providerFunc func(ctx context.Context, at domain.Coordinates, date time.Time) (domain.Weather, error)

func (f providerFunc) Forecast(ctx context.Context, at domain.Coordinates, date time.Time) (domain.Weather, error) {
	return f(ctx, at, date)
}

type recorder struct{ results []string }

func (r *recorder) Weather(result string) { r.results = append(r.results, result) }

func TestCached_HitsAfterFirstLookup(t *testing.T) {
	var calls atomic.Int32
	next := providerFunc(func(_ context.Context, _ domain.Coordinates, date time.Time) (domain.Weather, error) {
		calls.Add(1)
		return domain.Weather{Date: date, TempHigh: 20}, nil
	})
	rec := &recorder{}
	c := weather.NewCached(next, time.Minute, rec)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		w, err := c.Forecast(context.Background(), paris, date)
		require.NoError(t, err)
		assert.Equal(t, 20.0, w.TempHigh)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"miss", "hit", "hit"}, rec.results)
}

func TestCached_ErrorsNotCached(t *testing.T) {
	var calls atomic.Int32
	next := providerFunc(func(context.Context, domain.Coordinates, time.Time) (domain.Weather, error) {
		calls.Add(1)
		return domain.Weather{}, weather.ErrUnavailable
	})
	c := weather.NewCached(next, time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := c.Forecast(context.Background(), paris, time.Now())
		require.ErrorIs(t, err, weather.ErrUnavailable)
	}
	assert.Equal(t, int32(2), calls.Load())
}
