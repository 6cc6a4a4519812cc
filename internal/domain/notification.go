package domain

import (
	"time"

	"github.com/google/uuid"
)

// TriggerKind classifies why a reminder fires on a given day
type TriggerKind string

const (
	Trigger10Day   TriggerKind = "10_day"
	Trigger5Day    TriggerKind = "5_day"
	Trigger1Day    TriggerKind = "1_day"
	TriggerDueDay  TriggerKind = "due_day"
	TriggerOverdue TriggerKind = "overdue"
	TriggerWeekend TriggerKind = "weekend"
)

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// NotificationLogEntry records one attempted send. (ReminderID, TriggerKind,
// SentOn) is unique; it doubles as the dedup index.
type NotificationLogEntry struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	ReminderID     uuid.UUID   `json:"reminder_id" db:"reminder_id"`
	TriggerKind    TriggerKind `json:"notification_type" db:"trigger_kind"`
	SentOn         time.Time   `json:"sent_on" db:"sent_on"`
	SentAt         time.Time   `json:"sent_at" db:"sent_at"`
	DeliveryStatus string      `json:"delivery_status" db:"delivery_status"`
}

// DispatchCandidate is a reminder fetched for evaluation together with its
// owner's profile.
type DispatchCandidate struct {
	Reminder *Reminder
	Profile  *OwnerProfile
}
