package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/novatrek/planner/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for Activities.
// Activities are stored one row each and carry a version for optimistic
// concurrency; there is no whole-day rewrite.
type ActivityRepo interface {
	// Create inserts an activity at version 1.
	Create(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetByID returns one activity scoped to tripID.
	// Returns domain.ErrNotFound if no such activity exists.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error)

	// ListByDay returns a day's activities ordered by start time.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error)

	// ListByTrip returns every activity of a trip ordered by day and start time.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// Update overwrites an activity if its stored version equals a.Version and
	// returns the record with the bumped version.
	// Returns domain.ErrVersionConflict on a version mismatch and
	// domain.ErrNotFound if the activity does not exist.
	Update(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// Delete removes one activity. Sibling activities are not touched.
	// Returns domain.ErrNotFound if no such activity exists.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, trip_id, day_id, name, description, category, start_minute, duration,
		lat, lng, address, cost_amount, cost_currency, cost_per_person, booking_required,
		expert_recommended, novatrek_enhanced, setting, rating, rating_count, version,
		created_at, updated_at`

func activityArgs(a domain.Activity) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"id":                 a.ID,
		"trip_id":            a.TripID,
		"day_id":             a.DayID,
		"name":               a.Name,
		"description":        a.Description,
		"category":           a.Category,
		"start_minute":       int(a.Start),
		"duration":           a.Duration,
		"lat":                nil,
		"lng":                nil,
		"address":            "",
		"cost_amount":        nil,
		"cost_currency":      nil,
		"cost_per_person":    false,
		"booking_required":   a.BookingRequired,
		"expert_recommended": a.ExpertRecommended,
		"novatrek_enhanced":  a.NovatrekEnhanced,
		"setting":            string(a.Setting),
		"rating":             a.Rating,
		"rating_count":       a.RatingCount,
		"version":            a.Version,
	}
	if a.Location != nil {
		args["lat"], args["lng"] = a.Location.Lat, a.Location.Lng
		args["address"] = a.Location.Address
	}
	if a.Cost != nil {
		args["cost_amount"] = a.Cost.Amount
		args["cost_currency"] = a.Cost.Currency
		args["cost_per_person"] = a.Cost.PerPerson
	}
	return args
}

func (r *pgActivityRepo) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (trip_id, day_id, name, description, category, start_minute, duration,
		                        lat, lng, address, cost_amount, cost_currency, cost_per_person,
		                        booking_required, expert_recommended, novatrek_enhanced, setting,
		                        rating, rating_count)
		VALUES (@trip_id, @day_id, @name, @description, @category, @start_minute, @duration,
		        @lat, @lng, @address, @cost_amount, @cost_currency, @cost_per_person,
		        @booking_required, @expert_recommended, @novatrek_enhanced, @setting,
		        @rating, @rating_count)
		RETURNING ` + activityColumns

	result, err := scanActivity(r.db.QueryRow(ctx, q, activityArgs(a)))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities WHERE trip_id = @trip_id AND id = @id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	q := `SELECT ` + activityColumns + `
		FROM activities
		WHERE day_id = @day_id
		ORDER BY start_minute, created_at`

	acts, err := r.list(ctx, q, pgx.NamedArgs{"day_id": dayID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByDay: %w", err)
	}
	return acts, nil
}

func (r *pgActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	q := `SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = @trip_id
		ORDER BY day_id, start_minute, created_at`

	acts, err := r.list(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: %w", err)
	}
	return acts, nil
}

func (r *pgActivityRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Activity, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	acts := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

func (r *pgActivityRepo) Update(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET day_id             = @day_id,
		    name               = @name,
		    description        = @description,
		    category           = @category,
		    start_minute       = @start_minute,
		    duration           = @duration,
		    lat                = @lat,
		    lng                = @lng,
		    address            = @address,
		    cost_amount        = @cost_amount,
		    cost_currency      = @cost_currency,
		    cost_per_person    = @cost_per_person,
		    booking_required   = @booking_required,
		    expert_recommended = @expert_recommended,
		    novatrek_enhanced  = @novatrek_enhanced,
		    setting            = @setting,
		    rating             = @rating,
		    rating_count       = @rating_count,
		    version            = version + 1,
		    updated_at         = now()
		WHERE trip_id = @trip_id AND id = @id AND version = @version
		RETURNING ` + activityColumns

	result, err := scanActivity(r.db.QueryRow(ctx, q, activityArgs(a)))
	if errors.Is(err, domain.ErrNotFound) {
		// Either the row is gone or someone else bumped the version.
		var exists bool
		const probe = `SELECT EXISTS (SELECT 1 FROM activities WHERE trip_id = @trip_id AND id = @id)`
		if perr := r.db.QueryRow(ctx, probe, pgx.NamedArgs{"trip_id": a.TripID, "id": a.ID}).Scan(&exists); perr != nil {
			return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", perr)
		}
		if exists {
			err = domain.ErrVersionConflict
		}
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM activities WHERE trip_id = @trip_id AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a                 domain.Activity
		id, tripID, dayID pgtype.UUID
		start             int
		lat, lng          pgtype.Float8
		address           string
		amount            pgtype.Float8
		currency          pgtype.Text
		perPerson         bool
		booking           pgtype.Bool
		setting           string
	)
	err := s.Scan(&id, &tripID, &dayID, &a.Name, &a.Description, &a.Category, &start, &a.Duration,
		&lat, &lng, &address, &amount, &currency, &perPerson, &booking,
		&a.ExpertRecommended, &a.NovatrekEnhanced, &setting, &a.Rating, &a.RatingCount, &a.Version,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.DayID = uuid.UUID(dayID.Bytes)
	a.Start = domain.Clock(start)
	a.Setting = domain.Setting(setting)
	if lat.Valid && lng.Valid {
		a.Location = &domain.Location{
			Coordinates: domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64},
			Address:     address,
		}
	}
	if amount.Valid {
		a.Cost = &domain.Cost{
			Money:     domain.Money{Amount: amount.Float64, Currency: currency.String},
			PerPerson: perPerson,
		}
	}
	if booking.Valid {
		b := booking.Bool
		a.BookingRequired = &b
	}
	return a, nil
}
