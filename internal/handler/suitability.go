package handler

import (
	"net/http"

	"github.com/novatrek/planner/backend/internal/service"
)

// ScoreDay handles GET /trips/{tripId}/days/{dayId}/suitability.
// Activities come back ranked best first against the day's forecast.
func (s *Server) ScoreDay(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	dayID, ok := uuidParam(w, r, "dayId")
	if !ok {
		return
	}
	report, err := s.suitability.ScoreDay(r.Context(), tripID, dayID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(report))
}

// ScoreTrip handles GET /trips/{tripId}/suitability. Days whose forecast
// could not be fetched are flagged weather_unavailable instead of failing the
// whole request.
func (s *Server) ScoreTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	reports, err := s.suitability.ScoreTrip(r.Context(), tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]dayReportResponse, len(reports))
	for i, rep := range reports {
		out[i] = reportToResponse(rep)
	}
	writeJSON(w, http.StatusOK, out)
}

func reportToResponse(r service.DayReport) dayReportResponse {
	acts := r.Activities
	if acts == nil {
		acts = []service.ScoredActivity{}
	}
	return dayReportResponse{
		Day:                dayToResponse(r.Day),
		Weather:            r.Weather,
		WeatherUnavailable: r.WeatherUnavailable,
		Activities:         acts,
	}
}
