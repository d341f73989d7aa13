package handler

import (
	"errors"
	"net/http"

	"github.com/novatrek/planner/backend/internal/domain"
)

// ScheduleReminders handles POST /trips/{tripId}/activities/{activityId}/reminders.
//
// The body is optional; offsets default to the server configuration. When
// the reminders were computed but could not be stored the response is still
// 200, with persisted=false and the store error in persist_error.
func (s *Server) ScheduleReminders(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "activityId")
	if !ok {
		return
	}
	var body reminderRequest
	if !s.decode(w, r, &body, true) {
		return
	}

	plan, err := s.reminders.Schedule(r.Context(), tripID, id, body.Offsets)
	if err != nil && !(errors.Is(err, domain.ErrPersistence) && plan.PersistErr != nil) {
		writeError(w, r, err)
		return
	}

	resp := reminderPlanResponse{ReminderPlan: plan}
	if plan.Reminders == nil {
		resp.Reminders = []domain.Reminder{}
	}
	status := http.StatusOK
	if plan.PersistErr != nil {
		resp.PersistError = "reminders could not be saved: " + plan.PersistErr.Error()
	} else if plan.Persisted {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// ListReminders handles GET /trips/{tripId}/reminders.
func (s *Server) ListReminders(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	list, err := s.reminders.List(r.Context(), tripID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateReminder handles PATCH /trips/{tripId}/reminders/{reminderId}.
// Only pending reminders can change status.
func (s *Server) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripId")
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "reminderId")
	if !ok {
		return
	}
	var body reminderStatusRequest
	if !s.decode(w, r, &body, false) {
		return
	}

	rem, err := s.reminders.UpdateStatus(r.Context(), tripID, id, domain.ReminderStatus(body.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}
