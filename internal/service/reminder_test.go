package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/booking"
	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/repo"
	"github.com/novatrek/planner/backend/internal/service"
)

// mockReminderRepo is a hand-written test double for repo.ReminderRepo.
type mockReminderRepo struct {
	createBatch  func(ctx context.Context, reminders []domain.Reminder) ([]domain.Reminder, error)
	listByTrip   func(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error)
	getByID      func(ctx context.Context, tripID, id uuid.UUID) (domain.Reminder, error)
	updateStatus func(ctx context.Context, tripID, id uuid.UUID, from, to domain.ReminderStatus) (domain.Reminder, error)
}

func (m *mockReminderRepo) CreateBatch(ctx context.Context, reminders []domain.Reminder) ([]domain.Reminder, error) {
	return m.createBatch(ctx, reminders)
}
func (m *mockReminderRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockReminderRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Reminder, error) {
	return m.getByID(ctx, tripID, id)
}
func (m *mockReminderRepo) UpdateStatus(ctx context.Context, tripID, id uuid.UUID, from, to domain.ReminderStatus) (domain.Reminder, error) {
	return m.updateStatus(ctx, tripID, id, from, to)
}

var _ repo.ReminderRepo = (*mockReminderRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// reminderNow is eight days before dayOn(10).
var reminderNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func storingReminders() *mockReminderRepo {
	return &mockReminderRepo{
		createBatch: func(_ context.Context, rs []domain.Reminder) ([]domain.Reminder, error) {
			out := make([]domain.Reminder, len(rs))
			for i, r := range rs {
				r.ID = uuid.New()
				out[i] = r
			}
			return out, nil
		},
	}
}

func reminderFixture() (*store, domain.Activity) {
	d := dayOn(10)
	s := newStore(d)
	a := s.add(domain.Activity{
		DayID: d.ID, TripID: tripID, Name: "Belcanto", Category: "restaurant",
		Rating: 4.6, Start: domain.NewClock(20, 0), Duration: 120,
	})
	return s, a
}

func newReminderService(s *store, reminders repo.ReminderRepo, enabled bool) *service.ReminderService {
	return service.NewReminderService(s.activities(), s.dayRepo(), reminders, enabled, nil, nil).
		WithClock(func() time.Time { return reminderNow })
}

// ---- Schedule --------------------------------------------------------------

func TestReminderService_Schedule_PersistsBatch(t *testing.T) {
	s, a := reminderFixture()

	plan, err := newReminderService(s, storingReminders(), true).Schedule(context.Background(), tripID, a.ID, nil)

	require.NoError(t, err)
	assert.True(t, plan.Requirement.Required)
	assert.True(t, plan.Urgency.Recommended)
	assert.Equal(t, booking.RuleDinner, plan.Urgency.Rule, "10 June 2025 is a Tuesday")
	assert.True(t, plan.Persisted)
	require.Len(t, plan.Reminders, 3)
	for _, r := range plan.Reminders {
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.Equal(t, plan.Urgency.Priority, r.Priority)
	}
}

func TestReminderService_Schedule_ModestRestaurantNeedsNoBooking(t *testing.T) {
	s, a := reminderFixture()
	a.Rating = 4.2
	s.acts[a.ID] = a

	plan, err := newReminderService(s, storingReminders(), true).Schedule(context.Background(), tripID, a.ID, nil)

	require.NoError(t, err)
	assert.False(t, plan.Requirement.Required)
	assert.Equal(t, booking.RuleDinner, plan.Urgency.Rule, "dinner urgency does not depend on the booking requirement")
}

func TestReminderService_Schedule_PersistFailureKeepsReminders(t *testing.T) {
	s, a := reminderFixture()
	reminders := &mockReminderRepo{
		createBatch: func(context.Context, []domain.Reminder) ([]domain.Reminder, error) {
			return nil, errors.New("deadlock detected")
		},
	}

	plan, err := newReminderService(s, reminders, true).Schedule(context.Background(), tripID, a.ID, nil)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, plan.Persisted)
	assert.Error(t, plan.PersistErr)
	assert.Len(t, plan.Reminders, 3)
}

func TestReminderService_Schedule_DisabledComputesOnly(t *testing.T) {
	s, a := reminderFixture()
	reminders := &mockReminderRepo{
		createBatch: func(context.Context, []domain.Reminder) ([]domain.Reminder, error) {
			t.Fatal("reminders are disabled")
			return nil, nil
		},
	}

	plan, err := newReminderService(s, reminders, false).Schedule(context.Background(), tripID, a.ID, nil)

	require.NoError(t, err)
	assert.False(t, plan.Persisted)
	assert.Len(t, plan.Reminders, 3)
}

func TestReminderService_Schedule_CustomOffsetsDropPast(t *testing.T) {
	s, a := reminderFixture()

	plan, err := newReminderService(s, storingReminders(), true).Schedule(context.Background(), tripID, a.ID, []int{14, 2})

	require.NoError(t, err)
	require.Len(t, plan.Reminders, 1)
	assert.Equal(t, 2, plan.Reminders[0].DaysBefore)
	assert.Equal(t, domain.ReminderPreparation, plan.Reminders[0].Type)
}

func TestReminderService_Schedule_InvalidOffsets(t *testing.T) {
	s, a := reminderFixture()

	_, err := newReminderService(s, storingReminders(), true).Schedule(context.Background(), tripID, a.ID, []int{-1})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReminderService_Schedule_UnknownActivity(t *testing.T) {
	s, _ := reminderFixture()

	_, err := newReminderService(s, storingReminders(), true).Schedule(context.Background(), tripID, uuid.New(), nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- UpdateStatus ----------------------------------------------------------

func TestReminderService_UpdateStatus(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.ReminderStatus
		to      domain.ReminderStatus
		wantErr error
	}{
		{"pending to sent", domain.ReminderPending, domain.ReminderSent, nil},
		{"pending to dismissed", domain.ReminderPending, domain.ReminderDismissed, nil},
		{"sent to pending", domain.ReminderSent, domain.ReminderPending, domain.ErrValidation},
		{"dismissed to sent", domain.ReminderDismissed, domain.ReminderSent, domain.ErrValidation},
		{"unknown status", domain.ReminderPending, "snoozed", domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := uuid.New()
			reminders := &mockReminderRepo{
				getByID: func(context.Context, uuid.UUID, uuid.UUID) (domain.Reminder, error) {
					return domain.Reminder{ID: id, Status: tc.from}, nil
				},
				updateStatus: func(_ context.Context, _, _ uuid.UUID, from, to domain.ReminderStatus) (domain.Reminder, error) {
					assert.Equal(t, tc.from, from)
					return domain.Reminder{ID: id, Status: to}, nil
				},
			}

			got, err := newReminderService(newStore(), reminders, true).UpdateStatus(context.Background(), tripID, id, tc.to)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
		})
	}
}

func TestReminderService_List_Empty(t *testing.T) {
	reminders := &mockReminderRepo{
		listByTrip: func(context.Context, uuid.UUID) ([]domain.Reminder, error) { return nil, nil },
	}

	got, err := newReminderService(newStore(), reminders, true).List(context.Background(), tripID)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
