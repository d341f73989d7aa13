// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/novatrek/planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so multi-statement writes stay atomic in both cases.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips and their destinations.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip with its destinations and returns the persisted
	// record (with DB-generated ids, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip with its destinations ordered by position.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns one page of trips ordered by start_date descending, plus the
	// total number of trips. Destinations are not loaded.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of an existing trip, replaces its
	// destinations, and returns the updated record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID, cascading to days, activities and reminders.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, destination, start_date, end_date, traveler_count,
		budget_amount, budget_currency, notes, created_at, updated_at`

func tripArgs(trip domain.Trip) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"id":              trip.ID,
		"name":            trip.Name,
		"destination":     trip.Destination,
		"start_date":      nullDate(trip.StartDate),
		"end_date":        nullDate(trip.EndDate),
		"traveler_count":  trip.TravelerCount,
		"budget_amount":   nil,
		"budget_currency": nil,
		"notes":           trip.Notes,
	}
	if trip.Budget != nil {
		args["budget_amount"] = trip.Budget.Amount
		args["budget_currency"] = trip.Budget.Currency
	}
	return args
}

// Create inserts a new trip row and its destinations in one transaction.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, destination, start_date, end_date, traveler_count,
		                   budget_amount, budget_currency, notes)
		VALUES (@name, @destination, @start_date, @end_date, @traveler_count,
		        @budget_amount, @budget_currency, @notes)
		RETURNING ` + tripColumns

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, tripArgs(trip)))
		if err != nil {
			return err
		}
		result.Destinations, err = replaceDestinations(ctx, tx, result.ID, trip.Destinations)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key together with its destinations.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	result.Destinations, err = listDestinations(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of trips, most recent first. Trips without dates sort last.
func (r *pgTripRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	q := `
		SELECT ` + tripColumns + `, COUNT(*) OVER () AS total
		FROM trips
		ORDER BY start_date DESC NULLS LAST, created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	var total int64
	for rows.Next() {
		t, err := scanTrip(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	// COUNT(*) OVER () is not available when the page is past the end.
	if len(trips) == 0 && p.Offset() > 0 {
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM trips`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.List: count: %w", err)
		}
	}
	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and replaces its destinations.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name            = @name,
		    destination     = @destination,
		    start_date      = @start_date,
		    end_date        = @end_date,
		    traveler_count  = @traveler_count,
		    budget_amount   = @budget_amount,
		    budget_currency = @budget_currency,
		    notes           = @notes,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, tripArgs(trip)))
		if err != nil {
			return err
		}
		result.Destinations, err = replaceDestinations(ctx, tx, result.ID, trip.Destinations)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// replaceDestinations deletes the trip's stays and inserts dests in their
// given order. Positions are taken from Order.
func replaceDestinations(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, dests []domain.Destination) ([]domain.Destination, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM destinations WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return nil, fmt.Errorf("delete destinations: %w", err)
	}

	const q = `
		INSERT INTO destinations (trip_id, name, place_id, lat, lng, arrival_date, departure_date, position)
		VALUES (@trip_id, @name, @place_id, @lat, @lng, @arrival_date, @departure_date, @position)
		RETURNING id, trip_id, name, place_id, lat, lng, arrival_date, departure_date, position`

	out := make([]domain.Destination, 0, len(dests))
	for _, d := range dests {
		args := pgx.NamedArgs{
			"trip_id":        tripID,
			"name":           d.Name,
			"place_id":       d.PlaceID,
			"lat":            nil,
			"lng":            nil,
			"arrival_date":   nullDate(d.ArrivalDate),
			"departure_date": nullDate(d.DepartureDate),
			"position":       d.Order,
		}
		if d.Coordinates != nil {
			args["lat"], args["lng"] = d.Coordinates.Lat, d.Coordinates.Lng
		}
		saved, err := scanDestination(tx.QueryRow(ctx, q, args))
		if err != nil {
			return nil, fmt.Errorf("insert destination %q: %w", d.Name, err)
		}
		out = append(out, saved)
	}
	return out, nil
}

func listDestinations(ctx context.Context, q db, tripID uuid.UUID) ([]domain.Destination, error) {
	const sql = `
		SELECT id, trip_id, name, place_id, lat, lng, arrival_date, departure_date, position
		FROM destinations
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := q.Query(ctx, sql, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var out []domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip. extra receives any
// columns selected after the trip columns.
func scanTrip(s scanner, extra ...any) (domain.Trip, error) {
	var (
		t          domain.Trip
		id         pgtype.UUID
		start, end pgtype.Date
		amount     pgtype.Float8
		currency   pgtype.Text
	)

	dest := append([]any{&id, &t.Name, &t.Destination, &start, &end, &t.TravelerCount,
		&amount, &currency, &t.Notes, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = dateOrZero(start)
	t.EndDate = dateOrZero(end)
	if amount.Valid {
		t.Budget = &domain.Money{Amount: amount.Float64, Currency: currency.String}
	}
	return t, nil
}

func scanDestination(s scanner) (domain.Destination, error) {
	var (
		d              domain.Destination
		id, tripID     pgtype.UUID
		lat, lng       pgtype.Float8
		arrive, depart pgtype.Date
	)
	if err := s.Scan(&id, &tripID, &d.Name, &d.PlaceID, &lat, &lng, &arrive, &depart, &d.Order); err != nil {
		return domain.Destination{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	if lat.Valid && lng.Valid {
		d.Coordinates = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	d.ArrivalDate = dateOrZero(arrive)
	d.DepartureDate = dateOrZero(depart)
	return d, nil
}

// nullDate maps the zero time to SQL NULL.
func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return domain.DateOf(t)
}

func dateOrZero(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOf(d.Time)
}
