package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType is derived from how many days before the event a reminder fires.
type ReminderType string

const (
	ReminderBooking      ReminderType = "booking"      // 7 or more days out
	ReminderConfirmation ReminderType = "confirmation" // 3 to 6 days out
	ReminderPreparation  ReminderType = "preparation"  // fewer than 3 days out
)

// Priority is shared by booking urgency and reminders.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ReminderStatus is the lifecycle state of a reminder. Reminders are never
// deleted; they only move from pending to sent or dismissed.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderDismissed ReminderStatus = "dismissed"
)

// CanTransition reports whether a reminder may move from s to next.
func (s ReminderStatus) CanTransition(next ReminderStatus) bool {
	return s == ReminderPending && (next == ReminderSent || next == ReminderDismissed)
}

// Reminder is a scheduled nudge about one activity.
type Reminder struct {
	ID         uuid.UUID      `json:"id"`
	TripID     uuid.UUID      `json:"trip_id"`
	ActivityID uuid.UUID      `json:"activity_id"`
	RemindAt   time.Time      `json:"remind_at"`
	DaysBefore int            `json:"days_before"`
	Type       ReminderType   `json:"type"`
	Priority   Priority       `json:"priority"`
	Message    string         `json:"message"`
	Status     ReminderStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
}
