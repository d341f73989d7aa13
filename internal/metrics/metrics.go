// Package metrics holds the Prometheus collectors for the planner.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "planner"

// Metrics holds all prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Placements       *prometheus.CounterVec
	Suitability      *prometheus.CounterVec
	RemindersCreated prometheus.Counter
	ReminderFailures prometheus.Counter
	Aggregations     *prometheus.CounterVec
	Conflicts        *prometheus.CounterVec
	OrphanedDays     prometheus.Counter
	WeatherLookups   *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry(); main passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Placements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_placements_total",
			Help:      "Activity placements by outcome",
		}, []string{"outcome"}),
		Suitability: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suitability_assessments_total",
			Help:      "Weather suitability assessments by tier",
		}, []string{"tier"}),
		RemindersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_created_total",
			Help:      "Booking reminders persisted",
		}),
		ReminderFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_persist_failures_total",
			Help:      "Reminder batches that failed to persist",
		}),
		Aggregations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preference_aggregations_total",
			Help:      "Group preference aggregations by mode",
		}, []string{"mode"}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preference_conflicts_total",
			Help:      "Preference conflicts detected by category",
		}, []string{"category"}),
		OrphanedDays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_days_total",
			Help:      "Days kept out of range because they still hold activities",
		}),
		WeatherLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_lookups_total",
			Help:      "Forecast lookups by result (hit, miss, error)",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Placement counts one allocator outcome: placed, relocated, conflict_accepted or no_slot.
func (m *Metrics) Placement(outcome string) {
	if m == nil {
		return
	}
	m.Placements.WithLabelValues(outcome).Inc()
}

// Assessed counts one activity scored into the given suitability tier.
func (m *Metrics) Assessed(tier string) {
	if m == nil {
		return
	}
	m.Suitability.WithLabelValues(tier).Inc()
}

// Reminders records one batch persistence attempt.
func (m *Metrics) Reminders(n int, persisted bool) {
	if m == nil {
		return
	}
	if !persisted {
		m.ReminderFailures.Inc()
		return
	}
	m.RemindersCreated.Add(float64(n))
}

// Aggregated counts one preference aggregation and each conflict category it found.
func (m *Metrics) Aggregated(mode string, conflictCategories []string) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(mode).Inc()
	for _, c := range conflictCategories {
		m.Conflicts.WithLabelValues(c).Inc()
	}
}

// Orphaned adds days left out of range that still hold activities.
func (m *Metrics) Orphaned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.OrphanedDays.Add(float64(n))
}

// Weather counts one forecast lookup by result: hit, miss or error.
func (m *Metrics) Weather(result string) {
	if m == nil {
		return
	}
	m.WeatherLookups.WithLabelValues(result).Inc()
}

// HTTP records one served request under its route pattern.
func (m *Metrics) HTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
