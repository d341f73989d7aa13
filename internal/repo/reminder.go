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

// ReminderRepo defines the persistence operations for Reminders.
// Reminders are never deleted through this interface.
type ReminderRepo interface {
	// CreateBatch inserts all reminders in one transaction: either every row
	// is written or none is.
	CreateBatch(ctx context.Context, reminders []domain.Reminder) ([]domain.Reminder, error)

	// ListByTrip returns a trip's reminders ordered by remind_at.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error)

	// GetByID returns one reminder scoped to tripID.
	// Returns domain.ErrNotFound if no such reminder exists.
	GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Reminder, error)

	// UpdateStatus moves a reminder from status from to status to.
	// Returns domain.ErrNotFound if no reminder with that ID is in status from.
	UpdateStatus(ctx context.Context, tripID, id uuid.UUID, from, to domain.ReminderStatus) (domain.Reminder, error)
}

// pgReminderRepo is the Postgres implementation of ReminderRepo.
type pgReminderRepo struct {
	db db
}

// NewReminderRepo constructs a ReminderRepo backed by the provided db connection.
func NewReminderRepo(db db) ReminderRepo {
	return &pgReminderRepo{db: db}
}

const reminderColumns = `id, trip_id, activity_id, remind_at, days_before, type, priority, message, status, created_at`

func (r *pgReminderRepo) CreateBatch(ctx context.Context, reminders []domain.Reminder) ([]domain.Reminder, error) {
	const q = `
		INSERT INTO reminders (trip_id, activity_id, remind_at, days_before, type, priority, message, status)
		VALUES (@trip_id, @activity_id, @remind_at, @days_before, @type, @priority, @message, @status)
		RETURNING ` + reminderColumns

	out := make([]domain.Reminder, 0, len(reminders))
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, rem := range reminders {
			status := rem.Status
			if status == "" {
				status = domain.ReminderPending
			}
			saved, err := scanReminder(tx.QueryRow(ctx, q, pgx.NamedArgs{
				"trip_id":     rem.TripID,
				"activity_id": nullUUID(rem.ActivityID),
				"remind_at":   rem.RemindAt,
				"days_before": rem.DaysBefore,
				"type":        string(rem.Type),
				"priority":    string(rem.Priority),
				"message":     rem.Message,
				"status":      string(status),
			}))
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ReminderRepo.CreateBatch: %w", err)
	}
	return out, nil
}

func (r *pgReminderRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Reminder, error) {
	q := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE trip_id = @trip_id
		ORDER BY remind_at, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ReminderRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	out := []domain.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReminderRepo.ListByTrip: scan: %w", err)
		}
		out = append(out, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReminderRepo.ListByTrip: rows: %w", err)
	}
	return out, nil
}

func (r *pgReminderRepo) GetByID(ctx context.Context, tripID, id uuid.UUID) (domain.Reminder, error) {
	q := `SELECT ` + reminderColumns + ` FROM reminders WHERE trip_id = @trip_id AND id = @id`

	rem, err := scanReminder(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "id": id}))
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("repo.ReminderRepo.GetByID: %w", err)
	}
	return rem, nil
}

func (r *pgReminderRepo) UpdateStatus(ctx context.Context, tripID, id uuid.UUID, from, to domain.ReminderStatus) (domain.Reminder, error) {
	const q = `
		UPDATE reminders
		SET status = @to
		WHERE trip_id = @trip_id AND id = @id AND status = @from
		RETURNING ` + reminderColumns

	rem, err := scanReminder(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id": tripID,
		"id":      id,
		"from":    string(from),
		"to":      string(to),
	}))
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("repo.ReminderRepo.UpdateStatus: %w", err)
	}
	return rem, nil
}

func scanReminder(s scanner) (domain.Reminder, error) {
	var (
		rem                    domain.Reminder
		id, tripID, activityID pgtype.UUID
		typ, priority, status  string
	)
	err := s.Scan(&id, &tripID, &activityID, &rem.RemindAt, &rem.DaysBefore,
		&typ, &priority, &rem.Message, &status, &rem.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reminder{}, domain.ErrNotFound
		}
		return domain.Reminder{}, err
	}
	rem.ID = uuid.UUID(id.Bytes)
	rem.TripID = uuid.UUID(tripID.Bytes)
	if activityID.Valid {
		rem.ActivityID = uuid.UUID(activityID.Bytes)
	}
	rem.Type = domain.ReminderType(typ)
	rem.Priority = domain.Priority(priority)
	rem.Status = domain.ReminderStatus(status)
	rem.RemindAt = rem.RemindAt.UTC()
	return rem, nil
}

// nullUUID maps uuid.Nil to SQL NULL.
func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
