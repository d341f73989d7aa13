package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/novatrek/planner/backend/internal/metrics"
	"github.com/novatrek/planner/backend/internal/preference"
)

// GroupService merges group travel preferences. Nothing is stored.
type GroupService struct {
	metrics *metrics.Metrics
}

// NewGroupService constructs a GroupService. m may be nil.
func NewGroupService(m *metrics.Metrics) *GroupService {
	return &GroupService{metrics: m}
}

// Aggregate runs the preference aggregator and records the conflicts found.
func (s *GroupService) Aggregate(ctx context.Context, req preference.Request) (preference.Result, error) {
	res, err := preference.Aggregate(req)
	if err != nil {
		return preference.Result{}, fmt.Errorf("service.GroupService.Aggregate: %w", err)
	}

	categories := make([]string, len(res.Conflicts))
	for i, c := range res.Conflicts {
		categories[i] = string(c.Category)
	}
	s.metrics.Aggregated(string(res.Mode), categories)
	if len(res.Conflicts) > 0 {
		slog.DebugContext(ctx, "group preferences had conflicts",
			"group_size", res.GroupSize, "conflicts", len(res.Conflicts), "confidence", res.Confidence)
	}
	return res, nil
}
