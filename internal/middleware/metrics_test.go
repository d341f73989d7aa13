package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/middleware"
)

// TestMetricsHandler_LabelsByRoutePattern verifies that requests are counted
// under the chi route pattern rather than the raw path.
func TestMetricsHandler_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler(m))
	r.Get("/trips/{tripId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/trips/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/trips/{tripId}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	got []recordedRequest
}

func (f *fakeRecorder) HTTP(method, route string, status int, _ time.Duration) {
	f.got = append(f.got, recordedRequest{method, route, status})
}

// TestMetricsHandler_ImplicitOK verifies that a handler that only writes a
// body is recorded as 200.
func TestMetricsHandler_ImplicitOK(t *testing.T) {
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler(rec))
	r.Post("/groups/aggregate", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/groups/aggregate", nil))

	assert.Equal(t, []recordedRequest{{"POST", "/groups/aggregate", 200}}, rec.got)
}
