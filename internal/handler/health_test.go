package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novatrek/planner/backend/internal/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var _ handler.Pinger = pingerFunc(nil)

func TestGetHealth(t *testing.T) {
	cases := []struct {
		name     string
		db       handler.Pinger
		status   int
		body     string
		database string
	}{
		{"no database configured", nil, http.StatusOK, "ok", ""},
		{"database up", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "ok", "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			http.StatusServiceUnavailable, "degraded", "unreachable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, handler.Services{DB: tc.db}, http.MethodGet, "/healthz", nil)

			assert.Equal(t, tc.status, rec.Code)
			var body struct {
				Status   string `json:"status"`
				Database string `json:"database"`
			}
			decodeJSON(t, rec, &body)
			assert.Equal(t, tc.body, body.Status)
			assert.Equal(t, tc.database, body.Database)
		})
	}
}
