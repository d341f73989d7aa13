// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/novatrek/planner/backend/internal/booking"
	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/slot"
	"github.com/novatrek/planner/backend/internal/suitability"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// AutoMigrate applies pending migrations at startup. Defaults to true.
	AutoMigrate bool

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RateLimitRPS and RateLimitBurst configure the per-client token bucket.
	RateLimitRPS   float64
	RateLimitBurst int

	WeatherBaseURL  string
	WeatherCacheTTL time.Duration
	WeatherTimeout  time.Duration

	// RemindersEnabled turns reminder persistence on. When off, reminders are
	// still computed and returned.
	RemindersEnabled bool
	ReminderOffsets  []int

	Slot        slot.Policy
	Suitability suitability.Policy
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if present; variables
// already set in the environment win.
// Returns an error listing any required variables that are not set and any
// values that could not be parsed.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	p := parser{}
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AutoMigrate:      p.bool("AUTO_MIGRATE", true),
		MaxBodyBytes:     int64(p.int("MAX_BODY_BYTES", 1<<20)),
		RateLimitRPS:     p.float("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   p.int("RATE_LIMIT_BURST", 20),
		WeatherBaseURL:   getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		WeatherCacheTTL:  p.duration("WEATHER_CACHE_TTL", 30*time.Minute),
		WeatherTimeout:   p.duration("WEATHER_TIMEOUT", 5*time.Second),
		RemindersEnabled: p.bool("REMINDERS_ENABLED", true),
		ReminderOffsets:  p.ints("REMINDER_OFFSETS", booking.DefaultOffsets),
	}

	sp := slot.DefaultPolicy()
	sp.DayStart = p.clock("DAY_START", sp.DayStart)
	sp.DayEnd = p.clock("DAY_END", sp.DayEnd)
	sp.EarlyStart = p.clock("EARLY_START", sp.EarlyStart)
	sp.LateEnd = p.clock("LATE_END", sp.LateEnd)
	sp.Buffer = p.int("BUFFER_MINUTES", sp.Buffer)
	sp.TravelSpeedKmh = p.float("TRAVEL_SPEED_KMH", sp.TravelSpeedKmh)
	sp.TravelWarnMinutes = p.int("TRAVEL_WARN_MINUTES", sp.TravelWarnMinutes)
	cfg.Slot = sp

	su := suitability.DefaultPolicy()
	su.ComfortMinC = p.float("COMFORT_MIN_C", su.ComfortMinC)
	su.ComfortMaxC = p.float("COMFORT_MAX_C", su.ComfortMaxC)
	su.WindLimit = p.float("WIND_LIMIT", su.WindLimit)
	cfg.Suitability = su

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(p.invalid) > 0 {
		problems = append(problems, "invalid environment variables: "+strings.Join(p.invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	if err := cfg.Slot.Validate(); err != nil {
		return Config{}, fmt.Errorf("slot policy: %w", err)
	}
	if err := cfg.Suitability.Validate(); err != nil {
		return Config{}, fmt.Errorf("suitability policy: %w", err)
	}
	if err := booking.ValidateOffsets(cfg.ReminderOffsets); err != nil {
		return Config{}, fmt.Errorf("REMINDER_OFFSETS: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parser reads typed variables and remembers which ones failed to parse, so
// that Load can report all of them at once.
type parser struct {
	invalid []string
}

func (p *parser) fail(key, v string) {
	p.invalid = append(p.invalid, fmt.Sprintf("%s=%q", key, v))
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return d
}

func (p *parser) clock(key string, fallback domain.Clock) domain.Clock {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	c, err := domain.ParseClock(v)
	if err != nil {
		p.fail(key, v)
		return fallback
	}
	return c
}

func (p *parser) ints(key string, fallback []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return append([]int(nil), fallback...)
	}
	var out []int
	for _, part := range splitCSV(v) {
		n, err := strconv.Atoi(part)
		if err != nil {
			p.fail(key, v)
			return append([]int(nil), fallback...)
		}
		out = append(out, n)
	}
	return out
}
