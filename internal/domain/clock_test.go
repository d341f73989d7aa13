package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/domain"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    domain.Clock
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", want: domain.MinutesPerDay},
		{in: "9:30", wantErr: true},
		{in: "09:3", wantErr: true},
		{in: "0930", wantErr: true},
		{in: "09-30", wantErr: true},
		{in: " 09:30", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := domain.ParseClock(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestClock_TextRoundTrip(t *testing.T) {
	var c domain.Clock
	require.NoError(t, c.UnmarshalText([]byte("18:45")))

	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "18:45", string(b))
	assert.Equal(t, 18, c.Hour())
	assert.Equal(t, 45, c.Minute())
}

func TestClock_On(t *testing.T) {
	date := time.Date(2025, 6, 1, 17, 3, 0, 0, time.UTC)

	got := domain.NewClock(14, 30).On(date)

	assert.Equal(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 29, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 4, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, domain.DaysBetween(a, b))
	assert.Equal(t, -4, domain.DaysBetween(b, a))
}

func TestActivity_End(t *testing.T) {
	a := domain.Activity{Start: domain.NewClock(9, 0), Duration: 150}

	assert.Equal(t, domain.NewClock(11, 30), a.End())
}

func TestDayNotFoundError_IsNotFound(t *testing.T) {
	err := &domain.DayNotFoundError{
		Date:       time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		ValidDates: []time.Time{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "2025-06-01")
}

func TestReminderStatus_CanTransition(t *testing.T) {
	assert.True(t, domain.ReminderPending.CanTransition(domain.ReminderSent))
	assert.True(t, domain.ReminderPending.CanTransition(domain.ReminderDismissed))
	assert.False(t, domain.ReminderSent.CanTransition(domain.ReminderDismissed))
	assert.False(t, domain.ReminderPending.CanTransition(domain.ReminderPending))
}

func TestNewPaginationParams(t *testing.T) {
	page, limit := 3, 500

	p := domain.NewPaginationParams(&page, &limit)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, domain.MaxPageLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())

	d := domain.NewPaginationParams(nil, nil)
	assert.Equal(t, domain.PaginationParams{Page: 1, Limit: domain.DefaultPageLimit}, d)
}
