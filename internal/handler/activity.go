package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/service"
)

// ListActivities handles GET /trips/{tripId}/days/{dayId}/activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	dayID, ok := uuidParam(w, r, "dayId")
	if !ok {
		return
	}
	acts, err := s.activities.List(r.Context(), tripID, dayID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data := make([]activityResponse, len(acts))
	for i, a := range acts {
		data[i] = activityToResponse(a)
	}
	writeJSON(w, http.StatusOK, data)
}

// AddActivity handles POST /trips/{tripId}/days/{dayId}/activities.
// The response carries the placement the allocator chose, including any
// conflicts that were accepted.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	dayID, ok := uuidParam(w, r, "dayId")
	if !ok {
		return
	}
	var body activityRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	a, opts := requestToActivity(uuid.Nil, body)
	res, err := s.activities.Add(r.Context(), tripID, dayID, a, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resultToResponse(res))
}

// AddActivityOnDate handles POST /trips/{tripId}/days/by-date/{date}/activities.
func (s *Server) AddActivityOnDate(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	var body activityRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	a, opts := requestToActivity(uuid.Nil, body)
	res, err := s.activities.AddOnDate(r.Context(), tripID, date, a, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resultToResponse(res))
}

// GetActivity handles GET /trips/{tripId}/activities/{activityId}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	a, err := s.activities.GetByID(r.Context(), tripID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// UpdateActivity handles PUT /trips/{tripId}/activities/{activityId}.
// The body must carry the version the client last read.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	var body activityRequest
	if !s.decode(w, r, &body, false) {
		return
	}
	if body.Version == 0 {
		writeErrorBody(w, http.StatusUnprocessableEntity, codeValidation, "version is required", nil)
		return
	}

	a, opts := requestToActivity(id, body)
	res, err := s.activities.Update(r.Context(), tripID, a, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// DeleteActivity handles DELETE /trips/{tripId}/activities/{activityId}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	if err := s.activities.Remove(r.Context(), tripID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveActivity handles POST /trips/{tripId}/activities/{activityId}/move.
func (s *Server) MoveActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	var body moveRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	opts := service.PlacementOptions{Desired: body.StartTime, AutoOptimize: body.AutoOptimize}
	res, err := s.activities.Move(r.Context(), tripID, id, body.DayID, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(res))
}

// DuplicateActivity handles POST /trips/{tripId}/activities/{activityId}/duplicate.
// Without a day_id the copy lands on the original's day.
func (s *Server) DuplicateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	var body duplicateRequest
	if !s.decode(w, r, &body, true) {
		return
	}

	toDay := uuid.Nil
	if body.DayID != nil {
		toDay = *body.DayID
	}
	res, err := s.activities.Duplicate(r.Context(), tripID, id, toDay)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resultToResponse(res))
}

// --- mapping helpers --------------------------------------------------------

// requestToActivity converts an activity body into a domain.Activity and the
// allocator options it carries.
func requestToActivity(id uuid.UUID, body activityRequest) (domain.Activity, service.PlacementOptions) {
	a := domain.Activity{
		ID:                id,
		Name:              body.Name,
		Description:       body.Description,
		Category:          body.Category,
		Duration:          body.Duration,
		BookingRequired:   body.BookingRequired,
		ExpertRecommended: body.ExpertRecommended,
		NovatrekEnhanced:  body.NovatrekEnhanced,
		Setting:           domain.Setting(body.Setting),
		Rating:            body.Rating,
		RatingCount:       body.RatingCount,
		Version:           body.Version,
	}
	if body.StartTime != nil {
		a.Start = *body.StartTime
	}
	if body.Location != nil {
		a.Location = &domain.Location{Coordinates: *body.Location.toDomain(), Address: body.Location.Address}
	}
	if body.Cost != nil {
		a.Cost = &domain.Cost{
			Money:     domain.Money{Amount: body.Cost.Amount, Currency: body.Cost.Currency},
			PerPerson: body.Cost.PerPerson,
		}
	}
	return a, service.PlacementOptions{
		Desired:      body.StartTime,
		AutoOptimize: body.AutoOptimize,
		EarlyBird:    body.EarlyBird,
		NightOwl:     body.NightOwl,
	}
}

func activityToResponse(a domain.Activity) activityResponse {
	return activityResponse{
		ID:                a.ID,
		TripID:            a.TripID,
		DayID:             a.DayID,
		Name:              a.Name,
		Description:       a.Description,
		Category:          a.Category,
		StartTime:         a.Start,
		EndTime:           a.End(),
		Duration:          a.Duration,
		Location:          a.Location,
		Cost:              a.Cost,
		BookingRequired:   a.BookingRequired,
		ExpertRecommended: a.ExpertRecommended,
		NovatrekEnhanced:  a.NovatrekEnhanced,
		Setting:           a.Setting,
		Rating:            a.Rating,
		RatingCount:       a.RatingCount,
		Version:           a.Version,
	}
}

func conflictsToResponse(acts []domain.Activity) []conflictResponse {
	out := make([]conflictResponse, len(acts))
	for i, a := range acts {
		out[i] = conflictResponse{ID: a.ID, Name: a.Name, StartTime: a.Start, EndTime: a.End()}
	}
	return out
}

func resultToResponse(res service.ActivityResult) activityResultResponse {
	p := res.Placement
	resp := activityResultResponse{
		Activity: activityToResponse(res.Activity),
		Placement: placementResponse{
			StartTime:        p.Start,
			EndTime:          p.End,
			Relocated:        p.Relocated,
			ConflictAccepted: p.ConflictAccepted,
			Conflicts:        conflictsToResponse(p.Conflicts),
			TravelMinutes:    p.TravelMinutes,
			Warnings:         p.Warnings,
		},
	}
	if p.TravelFrom != uuid.Nil {
		from := p.TravelFrom
		resp.Placement.TravelFrom = &from
	}
	if resp.Placement.Warnings == nil {
		resp.Placement.Warnings = []string{}
	}
	return resp
}
