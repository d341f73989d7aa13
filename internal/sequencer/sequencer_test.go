package sequencer_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/sequencer"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func dest(name string, order int, arrive, depart time.Time) domain.Destination {
	return domain.Destination{Name: name, Order: order, ArrivalDate: arrive, DepartureDate: depart}
}

// requireContiguous asserts day numbers run 1..N and dates are unique.
func requireContiguous(t *testing.T, days []sequencer.PlannedDay) {
	t.Helper()
	seen := map[time.Time]bool{}
	for i, d := range days {
		require.Equal(t, i+1, d.DayNumber, "day numbers must be 1..N without gaps")
		require.False(t, seen[d.Date], "duplicate date %s", d.Date.Format(domain.DateLayout))
		seen[d.Date] = true
	}
}

func TestBuild_Legacy(t *testing.T) {
	trip := domain.Trip{Destination: "Lisbon", StartDate: date(6, 1), EndDate: date(6, 4)}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	require.Len(t, seq.Days, 4)
	requireContiguous(t, seq.Days)
	for _, d := range seq.Days {
		assert.Equal(t, domain.DayTypeDestination, d.Type)
		assert.Equal(t, "Lisbon", d.Destination)
	}
	assert.Equal(t, date(6, 1), seq.Start())
	assert.Equal(t, date(6, 4), seq.End())
}

func TestBuild_Legacy_SingleDay(t *testing.T) {
	trip := domain.Trip{StartDate: date(6, 1), EndDate: date(6, 1)}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	assert.Len(t, seq.Days, 1)
}

func TestBuild_Legacy_EndBeforeStart(t *testing.T) {
	trip := domain.Trip{StartDate: date(6, 5), EndDate: date(6, 1)}

	_, err := sequencer.Build(trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuild_Legacy_MissingDates(t *testing.T) {
	_, err := sequencer.Build(domain.Trip{StartDate: date(6, 5)})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Paris 1-3, Rome 3-5: Paris days 1-2, travel day 3, Rome days 4-5.
func TestBuild_ParisRome(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		dest("Rome", 2, date(6, 3), date(6, 5)),
		dest("Paris", 1, date(6, 1), date(6, 3)),
	}}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	require.Len(t, seq.Days, 5)
	requireContiguous(t, seq.Days)

	want := []struct {
		date  time.Time
		typ   domain.DayType
		place string
	}{
		{date(6, 1), domain.DayTypeDestination, "Paris"},
		{date(6, 2), domain.DayTypeDestination, "Paris"},
		{date(6, 3), domain.DayTypeTravel, ""},
		{date(6, 4), domain.DayTypeDestination, "Rome"},
		{date(6, 5), domain.DayTypeDestination, "Rome"},
	}
	for i, w := range want {
		assert.Equal(t, w.date, seq.Days[i].Date, "day %d", i+1)
		assert.Equal(t, w.typ, seq.Days[i].Type, "day %d", i+1)
		assert.Equal(t, w.place, seq.Days[i].Destination, "day %d", i+1)
	}
	assert.Equal(t, "Paris", seq.Days[2].From)
	assert.Equal(t, "Rome", seq.Days[2].To)
}

func TestBuild_GapBetweenStays(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		dest("Oslo", 1, date(6, 1), date(6, 2)),
		dest("Bergen", 2, date(6, 5), date(6, 6)),
	}}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	requireContiguous(t, seq.Days)
	// Oslo 1,2; travel 5; Bergen 6.
	require.Len(t, seq.Days, 4)
	assert.Equal(t, date(6, 2), seq.Days[1].Date)
	assert.Equal(t, domain.DayTypeTravel, seq.Days[2].Type)
	assert.Equal(t, date(6, 5), seq.Days[2].Date)
	assert.Equal(t, date(6, 6), seq.Days[3].Date)
}

func TestBuild_SkipsIncompleteDestination(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		dest("Paris", 1, date(6, 1), date(6, 3)),
		{Name: "Nowhere", Order: 2, ArrivalDate: date(6, 3)},
		dest("Rome", 3, date(6, 3), date(6, 5)),
	}}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	requireContiguous(t, seq.Days)
	require.Len(t, seq.Skipped, 1)
	assert.Equal(t, "Nowhere", seq.Skipped[0].Name)
	assert.Contains(t, seq.Skipped[0].Reason, "departure_date")
	// Paris and Rome still produce all their dates.
	assert.Len(t, seq.Days, 5)
	assert.Equal(t, "Paris", seq.Days[2].From)
	assert.Equal(t, "Rome", seq.Days[2].To)
}

func TestBuild_SkipReasons(t *testing.T) {
	cases := []struct {
		name string
		dest domain.Destination
		want string
	}{
		{"no name", domain.Destination{ArrivalDate: date(6, 4), DepartureDate: date(6, 5)}, "missing name"},
		{"no dates", domain.Destination{Name: "Siena"}, "missing arrival_date, missing departure_date"},
		{"unparsable arrival", domain.Destination{Name: "Siena", DepartureDate: date(6, 5), InvalidDates: []string{"arrival_date"}}, "invalid arrival_date"},
		{"unparsable both", domain.Destination{Name: "Siena", InvalidDates: []string{"arrival_date", "departure_date"}}, "invalid arrival_date, invalid departure_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.dest.Order = 2
			trip := domain.Trip{Destinations: []domain.Destination{dest("Florence", 1, date(6, 1), date(6, 3)), tc.dest}}

			seq, err := sequencer.Build(trip)

			require.NoError(t, err)
			require.Len(t, seq.Skipped, 1)
			assert.Equal(t, tc.want, seq.Skipped[0].Reason)
			assert.Len(t, seq.Days, 3)
		})
	}
}

func TestBuild_FirstDestinationSkipped(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		{Order: 1, ArrivalDate: date(5, 28), DepartureDate: date(6, 1)},
		dest("Rome", 2, date(6, 1), date(6, 2)),
	}}

	seq, err := sequencer.Build(trip)

	require.NoError(t, err)
	require.Len(t, seq.Days, 2)
	assert.Equal(t, domain.DayTypeDestination, seq.Days[0].Type, "no travel day before the first emitted stay")
	assert.Equal(t, date(6, 1), seq.Days[0].Date)
}

func TestBuild_DepartureBeforeArrival(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		dest("Paris", 1, date(6, 5), date(6, 1)),
	}}

	_, err := sequencer.Build(trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuild_OverlappingStays(t *testing.T) {
	trip := domain.Trip{Destinations: []domain.Destination{
		dest("Paris", 1, date(6, 1), date(6, 5)),
		dest("Rome", 2, date(6, 3), date(6, 7)),
	}}

	_, err := sequencer.Build(trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuild_TooLong(t *testing.T) {
	trip := domain.Trip{StartDate: date(1, 1), EndDate: date(1, 1).AddDate(2, 0, 0)}

	_, err := sequencer.Build(trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReconcile_ShrinkGuardsActivities(t *testing.T) {
	tripID := uuid.New()
	existing := []domain.Day{
		{ID: uuid.New(), TripID: tripID, DayNumber: 1, Date: date(6, 1)},
		{ID: uuid.New(), TripID: tripID, DayNumber: 2, Date: date(6, 2)},
		{ID: uuid.New(), TripID: tripID, DayNumber: 3, Date: date(6, 3), ActivityCount: 2},
		{ID: uuid.New(), TripID: tripID, DayNumber: 4, Date: date(6, 4)},
	}
	seq, err := sequencer.Build(domain.Trip{StartDate: date(6, 2), EndDate: date(6, 2)})
	require.NoError(t, err)

	diff := sequencer.Reconcile(tripID, existing, seq)

	require.Len(t, diff.Days, 1)
	assert.Equal(t, existing[1].ID, diff.Days[0].ID, "matching date keeps its ID")
	assert.Equal(t, 1, diff.Days[0].DayNumber)

	require.Len(t, diff.Orphaned, 1)
	assert.Equal(t, existing[2].ID, diff.Orphaned[0].ID)
	assert.True(t, diff.Orphaned[0].OutOfRange)
	assert.Zero(t, diff.Orphaned[0].DayNumber)

	require.Len(t, diff.Removed, 2)
	assert.Equal(t, existing[0].ID, diff.Removed[0].ID)
	assert.Equal(t, existing[3].ID, diff.Removed[1].ID)
}

func TestReconcile_ExtendAddsNewDays(t *testing.T) {
	tripID := uuid.New()
	existing := []domain.Day{{ID: uuid.New(), TripID: tripID, DayNumber: 1, Date: date(6, 2)}}
	seq, err := sequencer.Build(domain.Trip{StartDate: date(6, 1), EndDate: date(6, 3)})
	require.NoError(t, err)

	diff := sequencer.Reconcile(tripID, existing, seq)

	require.Len(t, diff.Days, 3)
	assert.Equal(t, uuid.Nil, diff.Days[0].ID)
	assert.Equal(t, existing[0].ID, diff.Days[1].ID)
	assert.Equal(t, 2, diff.Days[1].DayNumber, "existing day is renumbered")
	assert.Equal(t, tripID, diff.Days[2].TripID)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Orphaned)
}

func TestReconcile_OrphanReturnsToRange(t *testing.T) {
	tripID := uuid.New()
	orphan := domain.Day{ID: uuid.New(), TripID: tripID, Date: date(6, 3), OutOfRange: true, ActivityCount: 1}
	seq, err := sequencer.Build(domain.Trip{StartDate: date(6, 3), EndDate: date(6, 3)})
	require.NoError(t, err)

	diff := sequencer.Reconcile(tripID, []domain.Day{orphan}, seq)

	require.Len(t, diff.Days, 1)
	assert.False(t, diff.Days[0].OutOfRange)
	assert.Equal(t, 1, diff.Days[0].DayNumber)
	assert.Empty(t, diff.Orphaned)
}
