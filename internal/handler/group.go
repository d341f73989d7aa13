package handler

import (
	"net/http"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/preference"
)

// AggregatePreferences handles POST /groups/aggregate.
func (s *Server) AggregatePreferences(w http.ResponseWriter, r *http.Request) {
	var body aggregateRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	req := preference.Request{
		Travelers: make([]domain.PreferenceSet, len(body.Travelers)),
		Mode:      domain.AggregationMode(body.Mode),
		Policy:    domain.ResolutionPolicy(body.Policy),
	}
	for i, t := range body.Travelers {
		req.Travelers[i] = domain.PreferenceSet{
			TravelerID:    t.TravelerID,
			Name:          t.Name,
			Dietary:       t.Dietary,
			Accessibility: t.Accessibility,
			Interests:     t.Interests,
			Activities:    t.Activities,
			TravelStyle:   t.TravelStyle,
			Budget:        t.Budget,
			ActivityLevel: t.ActivityLevel,
		}
	}

	res, err := s.groups.Aggregate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
