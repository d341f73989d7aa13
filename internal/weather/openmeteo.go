package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/novatrek/planner/backend/internal/domain"
)

const (
	dailyFields  = "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code,wind_speed_10m_max,relative_humidity_2m_mean"
	hourlyFields = "temperature_2m,precipitation_probability,weather_code"
)

// OpenMeteo is a Provider backed by the Open-Meteo forecast API.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteo creates a client for baseURL (e.g. https://api.open-meteo.com).
func NewOpenMeteo(baseURL string, timeout time.Duration) *OpenMeteo {
	return &OpenMeteo{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type forecastResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_probability_max"`
		Code          []int     `json:"weather_code"`
		Wind          []float64 `json:"wind_speed_10m_max"`
		Humidity      []float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation_probability"`
		Code          []int     `json:"weather_code"`
	} `json:"hourly"`
}

func (c *OpenMeteo) Forecast(ctx context.Context, at domain.Coordinates, date time.Time) (domain.Weather, error) {
	day := date.Format(domain.DateLayout)
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lng, 'f', 4, 64))
	q.Set("daily", dailyFields)
	q.Set("hourly", hourlyFields)
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather.OpenMeteo.Forecast: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather.OpenMeteo.Forecast: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Weather{}, fmt.Errorf("weather.OpenMeteo.Forecast: %w: upstream status %d", ErrUnavailable, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Weather{}, fmt.Errorf("weather.OpenMeteo.Forecast: decode: %w: %v", ErrUnavailable, err)
	}
	return body.toWeather(date)
}

func (r forecastResponse) toWeather(date time.Time) (domain.Weather, error) {
	d := r.Daily
	if len(d.Time) == 0 || len(d.TempMax) == 0 || len(d.TempMin) == 0 || len(d.Code) == 0 {
		return domain.Weather{}, fmt.Errorf("weather.OpenMeteo.Forecast: %w: no daily data for %s",
			ErrUnavailable, date.Format(domain.DateLayout))
	}

	w := domain.Weather{
		Date:       domain.DateOf(date),
		TempHigh:   d.TempMax[0],
		TempLow:    d.TempMin[0],
		Conditions: Condition(d.Code[0]),
	}
	if len(d.Precipitation) > 0 {
		w.Precipitation = d.Precipitation[0]
	}
	if len(d.Wind) > 0 {
		w.WindSpeed = d.Wind[0]
	}
	if len(d.Humidity) > 0 {
		w.Humidity = d.Humidity[0]
	}

	h := r.Hourly
	for i, ts := range h.Time {
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil || i >= len(h.Temperature) || i >= len(h.Code) {
			continue
		}
		hf := domain.HourlyForecast{
			Hour:        t.Hour(),
			Temperature: h.Temperature[i],
			Conditions:  Condition(h.Code[i]),
		}
		if i < len(h.Precipitation) {
			hf.Precipitation = h.Precipitation[i]
		}
		w.Hourly = append(w.Hourly, hf)
	}
	return w, nil
}
