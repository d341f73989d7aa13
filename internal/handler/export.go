// Package handler: export.go implements GET /trips/{tripId}/export.
// Returns the trip's itinerary as a flat table, one row per activity.
// Supports ?format=csv (CSV) or the default JSON.
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/novatrek/planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "day_number", "date", "day_type", "place",
	"activity_name", "category", "start_time", "end_time", "address",
	"cost_amount", "currency",
}

// ExportTrip implements GET /trips/{tripId}/export.
// Days without activities still produce one row so every date is present.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	rows, err := s.export.Export(r.Context(), tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, buildJSONResponse(rows))
	case "csv":
		writeCSV(w, rows)
	default:
		writeErrorBody(w, http.StatusBadRequest, codeBadRequest, "format must be json or csv", nil)
	}
}

// buildJSONResponse converts domain rows to the JSON row type.
func buildJSONResponse(rows []domain.ItineraryRow) []exportRow {
	out := make([]exportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToJSON(r))
	}
	return out
}

// writeCSV encodes domain rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ItineraryRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

func domainRowToJSON(r domain.ItineraryRow) exportRow {
	return exportRow{
		TripID:       r.TripID,
		TripName:     r.TripName,
		DayNumber:    r.DayNumber,
		Date:         r.Date,
		DayType:      r.DayType,
		Place:        r.Place,
		ActivityName: r.ActivityName,
		Category:     r.Category,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Address:      r.Address,
		CostAmount:   r.CostAmount,
		Currency:     r.Currency,
	}
}

// domainRowToCSVRecord encodes a row as a flat string slice. A zero cost on a
// row without an activity is written as an empty cell.
func domainRowToCSVRecord(r domain.ItineraryRow) []string {
	cost := ""
	if r.ActivityName != "" {
		cost = strconv.FormatFloat(r.CostAmount, 'f', 2, 64)
	}
	return []string{
		r.TripID,
		r.TripName,
		strconv.Itoa(r.DayNumber),
		r.Date,
		string(r.DayType),
		r.Place,
		r.ActivityName,
		r.Category,
		r.StartTime,
		r.EndTime,
		r.Address,
		cost,
		r.Currency,
	}
}
