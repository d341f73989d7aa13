package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/novatrek/planner/backend/internal/metrics"
)

func TestMetrics_Record(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Placement("relocated")
	m.Placement("relocated")
	m.Assessed("poor")
	m.Reminders(3, true)
	m.Reminders(3, false)
	m.Aggregated("inclusive", []string{"budget", "dietary"})
	m.Orphaned(2)
	m.Weather("hit")
	m.HTTP("GET", "/trips", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Placements.WithLabelValues("relocated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Suitability.WithLabelValues("poor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Aggregations.WithLabelValues("inclusive")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RemindersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReminderFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Conflicts.WithLabelValues("dietary")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrphanedDays))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WeatherLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/trips", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.Placement("placed")
		m.Assessed("good")
		m.Reminders(1, true)
		m.Aggregated("consensus", nil)
		m.Orphaned(1)
		m.Weather("miss")
		m.HTTP("GET", "/", 200, time.Second)
	})
}
