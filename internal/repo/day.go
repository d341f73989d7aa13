package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/sequencer"
)

// Locked is handed to WithDayLock callbacks. Days holds the locked rows in
// the order their IDs were requested; Activities runs inside the lock's
// transaction.
type Locked struct {
	Days       []domain.Day
	Activities ActivityRepo
}

// DayRepo defines the persistence operations for Days.
type DayRepo interface {
	// ListByTrip returns all days of a trip, in-range days first by day number,
	// then out-of-range days by date. ActivityCount is populated.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)

	// GetByID returns one day scoped to tripID.
	// Returns domain.ErrNotFound if no such day exists.
	GetByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error)

	// FindByDate returns the day of a trip on date.
	// Returns domain.ErrNotFound if the trip has no day on that date.
	FindByDate(ctx context.Context, tripID uuid.UUID, date time.Time) (domain.Day, error)

	// Sync applies a re-sequencing diff in one transaction and returns the
	// resulting day list. Removed days that gained activities since the diff
	// was computed are flagged out of range instead of deleted.
	Sync(ctx context.Context, tripID uuid.UUID, diff sequencer.Diff) ([]domain.Day, error)

	// WithDayLock locks the given days with SELECT ... FOR UPDATE and runs fn
	// inside that transaction. Rows are locked in ID order so two callers
	// locking the same pair cannot deadlock. fn's error rolls back the
	// transaction and is returned as is.
	WithDayLock(ctx context.Context, tripID uuid.UUID, dayIDs []uuid.UUID, fn func(ctx context.Context, l Locked) error) error

	// Delete removes a day and its activities.
	// Returns domain.ErrNotFound if no such day exists.
	Delete(ctx context.Context, tripID, dayID uuid.UUID) error
}

// pgDayRepo is the Postgres implementation of DayRepo.
type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

const daySelect = `
		SELECT d.id, d.trip_id, d.day_number, d.date, d.type, d.destination,
		       d.from_destination, d.to_destination, d.out_of_range,
		       (SELECT COUNT(*) FROM activities a WHERE a.day_id = d.id) AS activity_count,
		       d.created_at, d.updated_at
		FROM days d`

func (r *pgDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	days, err := listDays(ctx, r.db, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	return days, nil
}

func (r *pgDayRepo) GetByID(ctx context.Context, tripID, dayID uuid.UUID) (domain.Day, error) {
	q := daySelect + ` WHERE d.trip_id = @trip_id AND d.id = @id`

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": dayID}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.GetByID: %w", err)
	}
	return day, nil
}

func (r *pgDayRepo) FindByDate(ctx context.Context, tripID uuid.UUID, date time.Time) (domain.Day, error) {
	q := daySelect + ` WHERE d.trip_id = @trip_id AND d.date = @date`

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "date": domain.DateOf(date)}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.DayRepo.FindByDate: %w", err)
	}
	return day, nil
}

func (r *pgDayRepo) Sync(ctx context.Context, tripID uuid.UUID, diff sequencer.Diff) ([]domain.Day, error) {
	const (
		deleteEmpty = `
		DELETE FROM days
		WHERE trip_id = @trip_id AND id = ANY(@ids)
		  AND NOT EXISTS (SELECT 1 FROM activities a WHERE a.day_id = days.id)`

		flagOrphans = `
		UPDATE days
		SET out_of_range = true, day_number = NULL, updated_at = now()
		WHERE trip_id = @trip_id AND id = ANY(@ids)`

		upsert = `
		INSERT INTO days (trip_id, day_number, date, type, destination, from_destination, to_destination)
		VALUES (@trip_id, @day_number, @date, @type, @destination, @from_destination, @to_destination)
		ON CONFLICT ON CONSTRAINT days_trip_date_key DO UPDATE
		SET day_number       = EXCLUDED.day_number,
		    type             = EXCLUDED.type,
		    destination      = EXCLUDED.destination,
		    from_destination = EXCLUDED.from_destination,
		    to_destination   = EXCLUDED.to_destination,
		    out_of_range     = false,
		    updated_at       = now()`
	)

	removed := ids(diff.Removed)
	orphaned := ids(diff.Orphaned)

	var days []domain.Day
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if len(removed) > 0 {
			if _, err := tx.Exec(ctx, deleteEmpty, pgx.NamedArgs{"trip_id": tripID, "ids": removed}); err != nil {
				return fmt.Errorf("delete days: %w", err)
			}
		}
		// Whatever survived the delete still owns activities.
		if flag := append(orphaned, removed...); len(flag) > 0 {
			if _, err := tx.Exec(ctx, flagOrphans, pgx.NamedArgs{"trip_id": tripID, "ids": flag}); err != nil {
				return fmt.Errorf("flag orphaned days: %w", err)
			}
		}
		for _, d := range diff.Days {
			_, err := tx.Exec(ctx, upsert, pgx.NamedArgs{
				"trip_id":          tripID,
				"day_number":       d.DayNumber,
				"date":             domain.DateOf(d.Date),
				"type":             string(d.Type),
				"destination":      d.Destination,
				"from_destination": d.FromDestination,
				"to_destination":   d.ToDestination,
			})
			if err != nil {
				return fmt.Errorf("upsert day %s: %w", d.Date.Format(domain.DateLayout), err)
			}
		}
		var err error
		days, err = listDays(ctx, tx, tripID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.Sync: %w", err)
	}
	return days, nil
}

func (r *pgDayRepo) WithDayLock(ctx context.Context, tripID uuid.UUID, dayIDs []uuid.UUID, fn func(ctx context.Context, l Locked) error) error {
	const q = `
		SELECT id FROM days
		WHERE trip_id = @trip_id AND id = ANY(@ids)
		ORDER BY id
		FOR UPDATE`

	want := unique(dayIDs)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "ids": want})
		if err != nil {
			return fmt.Errorf("lock days: %w", err)
		}
		locked, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("lock days: %w", err)
		}
		if len(locked) != len(want) {
			return domain.ErrNotFound
		}

		l := Locked{Activities: NewActivityRepo(tx)}
		get := daySelect + ` WHERE d.trip_id = @trip_id AND d.id = @id`
		for _, id := range dayIDs {
			day, err := scanDay(tx.QueryRow(ctx, get, pgx.NamedArgs{"trip_id": tripID, "id": id}))
			if err != nil {
				return err
			}
			l.Days = append(l.Days, day)
		}
		return fn(ctx, l)
	})
	if err != nil {
		return fmt.Errorf("repo.DayRepo.WithDayLock: %w", err)
	}
	return nil
}

func (r *pgDayRepo) Delete(ctx context.Context, tripID, dayID uuid.UUID) error {
	const q = `DELETE FROM days WHERE trip_id = @trip_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": dayID})
	if err != nil {
		return fmt.Errorf("repo.DayRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DayRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func listDays(ctx context.Context, q db, tripID uuid.UUID) ([]domain.Day, error) {
	sql := daySelect + `
		WHERE d.trip_id = @trip_id
		ORDER BY d.out_of_range, d.day_number, d.date`

	rows, err := q.Query(ctx, sql, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.Day{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func scanDay(s scanner) (domain.Day, error) {
	var (
		d          domain.Day
		id, tripID pgtype.UUID
		number     pgtype.Int4
		date       pgtype.Date
		typ        string
	)
	err := s.Scan(&id, &tripID, &number, &date, &typ, &d.Destination,
		&d.FromDestination, &d.ToDestination, &d.OutOfRange, &d.ActivityCount,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Day{}, domain.ErrNotFound
		}
		return domain.Day{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	d.DayNumber = int(number.Int32)
	d.Date = dateOrZero(date)
	d.Type = domain.DayType(typ)
	return d, nil
}

func ids(days []domain.Day) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(days))
	for _, d := range days {
		out = append(out, d.ID)
	}
	return out
}

func unique(in []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(in))
	var out []uuid.UUID
	for _, id := range in {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
