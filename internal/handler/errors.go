package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/weather"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code, a human message and
// optional structured remediation data.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error codes.
const (
	codeNotFound    = "not_found"
	codeDayNotFound = "day_not_found"
	codeValidation  = "validation_error"
	codeBadRequest  = "bad_request"
	codeTooLarge    = "request_too_large"
	codeNoSlot      = "no_feasible_slot"
	codeVersion     = "version_conflict"
	codePersistence = "persistence_error"
	codeWeather     = "weather_unavailable"
	codeInternal    = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}

// writeError maps a service error onto a status code and error body.
// Unknown errors are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dayNF  *domain.DayNotFoundError
		noSlot *domain.NoFeasibleSlotError
	)
	switch {
	case errors.As(err, &dayNF):
		writeErrorBody(w, http.StatusNotFound, codeDayNotFound, dayNF.Error(), dayNotFoundDetails(dayNF))
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, codeNotFound, unwrapMessage(err, domain.ErrNotFound), nil)
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation), nil)
	case errors.As(err, &noSlot):
		writeErrorBody(w, http.StatusConflict, codeNoSlot, noSlot.Error(), noSlotDetails(noSlot))
	case errors.Is(err, domain.ErrVersionConflict):
		writeErrorBody(w, http.StatusConflict, codeVersion, "activity was modified by another request; reload and retry", nil)
	case errors.Is(err, weather.ErrUnavailable):
		writeErrorBody(w, http.StatusServiceUnavailable, codeWeather, "weather forecast is unavailable, try again later", nil)
	case errors.Is(err, domain.ErrPersistence):
		slog.ErrorContext(r.Context(), "store write failed", "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusServiceUnavailable, codePersistence, "the result could not be saved, retry the request", nil)
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, codeInternal, "internal server error", nil)
	}
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.TripService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	if strings.HasSuffix(msg, sentinel.Error()) {
		return sentinel.Error()
	}
	return msg
}

func dayNotFoundDetails(e *domain.DayNotFoundError) map[string]any {
	dates := make([]string, len(e.ValidDates))
	for i, d := range e.ValidDates {
		dates[i] = d.Format(domain.DateLayout)
	}
	return map[string]any{
		"date":        e.Date.Format(domain.DateLayout),
		"valid_dates": dates,
	}
}

func noSlotDetails(e *domain.NoFeasibleSlotError) map[string]any {
	return map[string]any{
		"duration":     e.Duration,
		"window_start": e.WindowStart,
		"window_end":   e.WindowEnd,
		"conflicts":    conflictsToResponse(e.Conflicts),
	}
}

// decode reads a JSON body into dst and validates it. An empty body is an
// error unless optional is set. It reports false after writing the error
// response.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF) && optional:
	case errors.Is(err, io.EOF):
		writeErrorBody(w, http.StatusUnprocessableEntity, codeValidation, "request body is required", nil)
		return false
	case errors.As(err, &tooLarge):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, codeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), nil)
		return false
	case err != nil:
		writeErrorBody(w, http.StatusBadRequest, codeBadRequest, "malformed JSON: "+err.Error(), nil)
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		writeErrorBody(w, http.StatusUnprocessableEntity, codeValidation, validationMessage(err), nil)
		return false
	}
	return true
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts[i] = fmt.Sprintf("%s: %s", fe.Namespace(), rule)
	}
	return strings.Join(parts, "; ")
}

// uuidParam parses a UUID URL parameter, writing a 400 when it is malformed.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeErrorBody(w, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid %s", name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// dateParam parses a YYYY-MM-DD URL parameter, writing a 422 when it is malformed.
func dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	d, err := domain.ParseDate(chi.URLParam(r, name))
	if err != nil {
		writeErrorBody(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation), nil)
		return time.Time{}, false
	}
	return d, true
}
