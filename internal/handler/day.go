package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/novatrek/planner/backend/internal/domain"
)

// ListDays handles GET /trips/{tripId}/days.
// Out-of-range days that still hold activities are included and flagged.
func (s *Server) ListDays(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	days, err := s.days.List(r.Context(), tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, daysToResponse(days))
}

// GetDayByDate handles GET /trips/{tripId}/days/by-date/{date}.
// An unknown date answers 404 with the trip's valid dates.
func (s *Server) GetDayByDate(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	day, err := s.days.FindByDate(r.Context(), tripID, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// ResolveOrphan handles POST /trips/{tripId}/days/{dayId}/resolve.
func (s *Server) ResolveOrphan(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	dayID, ok := uuidParam(w, r, "dayId")
	if !ok {
		return
	}
	var body resolveRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	var target *time.Time
	if body.TargetDate != nil {
		t := body.TargetDate.Time
		target = &t
	}
	res, err := s.days.ResolveOrphan(r.Context(), tripID, dayID, domain.OrphanAction(body.Action), target)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := resolveResponse{Action: res.Action, Day: dayToResponse(res.Day)}
	if res.Target != nil {
		t := dayToResponse(*res.Target)
		resp.Target = &t
	}
	for _, m := range res.Moved {
		resp.Moved = append(resp.Moved, resultToResponse(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// dayToResponse converts a domain.Day. Out-of-range days have no day number.
func dayToResponse(d domain.Day) dayResponse {
	resp := dayResponse{
		ID:              d.ID,
		Date:            openapi_types.Date{Time: d.Date},
		Type:            d.Type,
		Destination:     d.Destination,
		FromDestination: d.FromDestination,
		ToDestination:   d.ToDestination,
		OutOfRange:      d.OutOfRange,
		ActivityCount:   d.ActivityCount,
	}
	if !d.OutOfRange {
		n := d.DayNumber
		resp.DayNumber = &n
	}
	return resp
}

func daysToResponse(days []domain.Day) []dayResponse {
	out := make([]dayResponse, len(days))
	for i, d := range days {
		out[i] = dayToResponse(d)
	}
	return out
}
