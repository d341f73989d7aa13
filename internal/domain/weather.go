package domain

import "time"

// Condition is the coarse sky condition reported by the weather provider.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionStorm  Condition = "storm"
)

// Weather is the forecast for one calendar day at one place.
// Temperatures are in °C, Precipitation is a 0-100 chance, WindSpeed is in
// km/h as delivered by the provider.
type Weather struct {
	Date          time.Time        `json:"date"`
	TempHigh      float64          `json:"temp_high"`
	TempLow       float64          `json:"temp_low"`
	Conditions    Condition        `json:"conditions"`
	Precipitation float64          `json:"precipitation"`
	WindSpeed     float64          `json:"wind_speed"`
	Humidity      float64          `json:"humidity"`
	Hourly        []HourlyForecast `json:"hourly,omitempty"`
}

// HourlyForecast is one hour of an hourly forecast.
type HourlyForecast struct {
	Hour          int       `json:"hour"` // 0-23
	Temperature   float64   `json:"temperature"`
	Conditions    Condition `json:"conditions"`
	Precipitation float64   `json:"precipitation"`
}
