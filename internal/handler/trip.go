package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/sequencer"
	"github.com/novatrek/planner/backend/internal/service"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	res, err := s.trips.Create(r.Context(), requestToTrip(uuid.Nil, body))
	if err != nil {
		writeScheduleError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusCreated, scheduleToResponse(res))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	page, err := s.trips.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := make([]tripResponse, len(page.Items))
	for i, t := range page.Items {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, tripListResponse{
		Data: data,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: page.Total,
		},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}. The response lists days left out of
// range that still hold activities; each must be resolved separately.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	var body tripRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	res, err := s.trips.Update(r.Context(), requestToTrip(id, body))
	if err != nil {
		writeScheduleError(w, r, res, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(res))
}

// ResequenceTrip handles POST /trips/{tripId}/sequence.
func (s *Server) ResequenceTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	res, err := s.trips.Resequence(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(res))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeScheduleError reports a create or update failure. When the trip row
// was stored but its days were not, the body carries the trip ID so the
// client can retry with POST /trips/{id}/sequence.
func writeScheduleError(w http.ResponseWriter, r *http.Request, res service.ScheduleResult, err error) {
	if errors.Is(err, domain.ErrPersistence) && res.Trip.ID != uuid.Nil {
		writeErrorBody(w, http.StatusServiceUnavailable, codePersistence,
			"trip saved but its days could not be stored; retry with POST /trips/"+res.Trip.ID.String()+"/sequence",
			map[string]any{"trip_id": res.Trip.ID})
		return
	}
	writeError(w, r, err)
}

// queryInt returns the named query parameter as an int, or nil when it is
// absent or not a number.
func queryInt(r *http.Request, name string) *int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a trip body into a domain.Trip. Destinations without
// an explicit order keep their position in the list.
func requestToTrip(id uuid.UUID, body tripRequest) domain.Trip {
	t := domain.Trip{
		ID:            id,
		Name:          body.Name,
		Destination:   body.Destination,
		StartDate:     optionalDate(body.StartDate),
		EndDate:       optionalDate(body.EndDate),
		TravelerCount: body.TravelerCount,
		Notes:         body.Notes,
	}
	if body.Budget != nil {
		t.Budget = &domain.Money{Amount: body.Budget.Amount, Currency: body.Budget.Currency}
	}
	for i, d := range body.Destinations {
		order := d.Order
		if order == 0 {
			order = i + 1
		}
		dest := domain.Destination{
			Name:        d.Name,
			PlaceID:     d.PlaceID,
			Coordinates: d.Coordinates.toDomain(),
			Order:       order,
		}
		dest.ArrivalDate = stayDate(&dest, "arrival_date", d.ArrivalDate)
		dest.DepartureDate = stayDate(&dest, "departure_date", d.DepartureDate)
		t.Destinations = append(t.Destinations, dest)
	}
	return t
}

// stayDate parses one destination date. An unparsable value is recorded in
// InvalidDates and yields the zero date, so the sequencer skips that stay.
func stayDate(d *domain.Destination, field, raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := domain.ParseDate(raw)
	if err != nil {
		d.InvalidDates = append(d.InvalidDates, field)
		return time.Time{}
	}
	return parsed
}

// tripToResponse converts a domain.Trip into its wire form.
func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:            t.ID,
		Name:          t.Name,
		Destination:   t.Destination,
		StartDate:     dateOrNil(t.StartDate),
		EndDate:       dateOrNil(t.EndDate),
		Destinations:  make([]destinationResponse, len(t.Destinations)),
		TravelerCount: t.TravelerCount,
		Budget:        t.Budget,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for i, d := range t.Destinations {
		resp.Destinations[i] = destinationResponse{
			ID:            d.ID,
			Name:          d.Name,
			PlaceID:       d.PlaceID,
			Coordinates:   d.Coordinates,
			ArrivalDate:   dateOrNil(d.ArrivalDate),
			DepartureDate: dateOrNil(d.DepartureDate),
			Order:         d.Order,
		}
	}
	return resp
}

func scheduleToResponse(res service.ScheduleResult) scheduleResponse {
	resp := scheduleResponse{
		Trip:     tripToResponse(res.Trip),
		Days:     daysToResponse(res.Days),
		Orphaned: daysToResponse(res.Orphaned),
		Skipped:  make([]skippedResponse, len(res.Skipped)),
	}
	for i, sk := range res.Skipped {
		resp.Skipped[i] = skippedToResponse(sk)
	}
	return resp
}

func skippedToResponse(sk sequencer.Skipped) skippedResponse {
	return skippedResponse{Order: sk.Order, Name: sk.Name, Reason: sk.Reason}
}
