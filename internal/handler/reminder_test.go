package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/booking"
	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/handler"
	"github.com/novatrek/planner/backend/internal/service"
)

type mockReminderServicer struct {
	schedule     func(ctx context.Context, tripID, activityID uuid.UUID, offsets []int) (service.ReminderPlan, error)
	list         func(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error)
	updateStatus func(ctx context.Context, tripID, id uuid.UUID, to domain.ReminderStatus) (domain.Reminder, error)
}

func (m *mockReminderServicer) Schedule(ctx context.Context, tripID, activityID uuid.UUID, offsets []int) (service.ReminderPlan, error) {
	return m.schedule(ctx, tripID, activityID, offsets)
}
func (m *mockReminderServicer) List(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error) {
	return m.list(ctx, tripID)
}
func (m *mockReminderServicer) UpdateStatus(ctx context.Context, tripID, id uuid.UUID, to domain.ReminderStatus) (domain.Reminder, error) {
	return m.updateStatus(ctx, tripID, id, to)
}

var _ handler.ReminderServicer = (*mockReminderServicer)(nil)

func remindersPath(activityID uuid.UUID) string {
	return "/trips/" + uuid.NewString() + "/activities/" + activityID.String() + "/reminders"
}

func planFixture() service.ReminderPlan {
	at := time.Date(2025, 6, 3, 20, 0, 0, 0, time.UTC)
	return service.ReminderPlan{
		Requirement: booking.Requirement{Required: true},
		Urgency:     booking.Urgency{Recommended: true, Priority: domain.PriorityHigh, Rule: booking.RuleDinner, DaysUntil: 8},
		Reminders: []domain.Reminder{
			{ID: uuid.New(), RemindAt: at, DaysBefore: 7, Type: domain.ReminderBooking, Status: domain.ReminderPending},
		},
	}
}

func TestScheduleReminders_Persisted201(t *testing.T) {
	var gotOffsets []int
	svc := &mockReminderServicer{
		schedule: func(_ context.Context, _, _ uuid.UUID, offsets []int) (service.ReminderPlan, error) {
			gotOffsets = offsets
			plan := planFixture()
			plan.Persisted = true
			return plan, nil
		},
	}

	rec := serve(t, handler.Services{Reminders: svc}, http.MethodPost, remindersPath(uuid.New()), map[string]any{"offsets": []int{14, 2}})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []int{14, 2}, gotOffsets)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, true, resp["persisted"])
	assert.NotContains(t, resp, "persist_error")
	assert.Len(t, resp["reminders"], 1)
}

func TestScheduleReminders_EmptyBodyUsesDefaults(t *testing.T) {
	svc := &mockReminderServicer{
		schedule: func(_ context.Context, _, _ uuid.UUID, offsets []int) (service.ReminderPlan, error) {
			assert.Nil(t, offsets)
			return planFixture(), nil
		},
	}

	rec := serve(t, handler.Services{Reminders: svc}, http.MethodPost, remindersPath(uuid.New()), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScheduleReminders_StoreFailureStillReturnsReminders(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := &mockReminderServicer{
		schedule: func(context.Context, uuid.UUID, uuid.UUID, []int) (service.ReminderPlan, error) {
			plan := planFixture()
			plan.PersistErr = storeErr
			return plan, fmt.Errorf("service.ReminderService.Schedule: %w: %w", domain.ErrPersistence, storeErr)
		},
	}

	rec := serve(t, handler.Services{Reminders: svc}, http.MethodPost, remindersPath(uuid.New()), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Persisted    bool   `json:"persisted"`
		PersistError string `json:"persist_error"`
		Reminders    []any  `json:"reminders"`
		Urgency      struct {
			Rule string `json:"rule"`
		} `json:"urgency"`
	}
	decodeJSON(t, rec, &resp)
	assert.False(t, resp.Persisted)
	assert.Contains(t, resp.PersistError, "connection refused")
	assert.Len(t, resp.Reminders, 1)
	assert.Equal(t, booking.RuleDinner, resp.Urgency.Rule)
}

func TestScheduleReminders_RejectsNonPositiveOffsets(t *testing.T) {
	rec := serve(t, handler.Services{Reminders: &mockReminderServicer{}}, http.MethodPost, remindersPath(uuid.New()),
		map[string]any{"offsets": []int{3, 0}})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorBody(t, rec).Message, "Offsets[1]")
}

func TestScheduleReminders_UnknownActivityIs404(t *testing.T) {
	svc := &mockReminderServicer{
		schedule: func(context.Context, uuid.UUID, uuid.UUID, []int) (service.ReminderPlan, error) {
			return service.ReminderPlan{}, domain.ErrNotFound
		},
	}

	rec := serve(t, handler.Services{Reminders: svc}, http.MethodPost, remindersPath(uuid.New()), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateReminder(t *testing.T) {
	cases := map[string]struct {
		body   map[string]any
		svcErr error
		status int
	}{
		"dismiss":            {map[string]any{"status": "dismissed"}, nil, http.StatusOK},
		"back to pending":    {map[string]any{"status": "pending"}, nil, http.StatusUnprocessableEntity},
		"already sent":       {map[string]any{"status": "sent"}, fmt.Errorf("%w: reminder is sent", domain.ErrValidation), http.StatusUnprocessableEntity},
		"unknown reminder":   {map[string]any{"status": "sent"}, domain.ErrNotFound, http.StatusNotFound},
		"missing the status": {map[string]any{}, nil, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockReminderServicer{
				updateStatus: func(_ context.Context, _, id uuid.UUID, to domain.ReminderStatus) (domain.Reminder, error) {
					if tc.svcErr != nil {
						return domain.Reminder{}, tc.svcErr
					}
					return domain.Reminder{ID: id, Status: to}, nil
				},
			}

			rec := serve(t, handler.Services{Reminders: svc}, http.MethodPatch,
				"/trips/"+uuid.NewString()+"/reminders/"+uuid.NewString(), tc.body)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestListReminders(t *testing.T) {
	svc := &mockReminderServicer{
		list: func(context.Context, uuid.UUID) ([]domain.Reminder, error) {
			return planFixture().Reminders, nil
		},
	}

	rec := serve(t, handler.Services{Reminders: svc}, http.MethodGet, "/trips/"+uuid.NewString()+"/reminders", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "booking", resp[0]["type"])
}
