package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/handler"
	"github.com/novatrek/planner/backend/internal/preference"
)

type mockGroupServicer struct {
	aggregate func(ctx context.Context, req preference.Request) (preference.Result, error)
}

func (m *mockGroupServicer) Aggregate(ctx context.Context, req preference.Request) (preference.Result, error) {
	return m.aggregate(ctx, req)
}

var _ handler.GroupServicer = (*mockGroupServicer)(nil)

func TestAggregatePreferences_MapsTravelers(t *testing.T) {
	var got preference.Request
	svc := &mockGroupServicer{
		aggregate: func(_ context.Context, req preference.Request) (preference.Result, error) {
			got = req
			return preference.Aggregate(req)
		},
	}
	body := map[string]any{
		"mode":   "consensus",
		"policy": "find_middle_ground",
		"travelers": []map[string]any{
			{"name": "Ana", "dietary": []string{"vegetarian"}, "budget": "luxury", "activity_level": "high"},
			{"name": "Ben", "dietary": []string{"vegetarian", "gluten-free"}, "budget": "budget", "activity_level": "low"},
		},
	}

	rec := serve(t, handler.Services{Groups: svc}, http.MethodPost, "/groups/aggregate", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got.Travelers, 2)
	assert.Equal(t, domain.ModeConsensus, got.Mode)
	assert.Equal(t, domain.PolicyFindMiddleGround, got.Policy)
	assert.Equal(t, []string{"vegetarian", "gluten-free"}, got.Travelers[1].Dietary)

	var resp struct {
		GroupSize   int `json:"group_size"`
		Preferences struct {
			Dietary []string `json:"dietary"`
		} `json:"preferences"`
		Conflicts []struct {
			Category string `json:"category"`
		} `json:"conflicts"`
	}
	decodeJSON(t, rec, &resp)
	assert.Equal(t, 2, resp.GroupSize)
	assert.NotEmpty(t, resp.Conflicts)
}

func TestAggregatePreferences_RejectsBadBodies(t *testing.T) {
	cases := map[string]map[string]any{
		"no travelers":   {"travelers": []any{}},
		"unknown mode":   {"mode": "anarchy", "travelers": []map[string]any{{"name": "a"}}},
		"unknown budget": {"travelers": []map[string]any{{"budget": "infinite"}}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(t, handler.Services{Groups: &mockGroupServicer{}}, http.MethodPost, "/groups/aggregate", body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}
