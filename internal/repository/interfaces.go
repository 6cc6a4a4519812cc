package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-reminder/internal/domain"
)

// ReminderRepository defines the interface for reminder data operations
type ReminderRepository interface {
	// Create inserts a new reminder
	Create(ctx context.Context, reminder *domain.Reminder) error

	// GetByID retrieves an active (not soft-deleted) reminder
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error)

	// GetDispatchCandidates returns active, unpaid, non-completed reminders due
	// on or before horizon whose owner has an address on at least one of
	// channels. limit <= 0 means no limit.
	GetDispatchCandidates(ctx context.Context, horizon time.Time, channels domain.Capabilities, limit int) ([]*domain.DispatchCandidate, error)

	// MarkPaid flips an unpaid reminder to paid. Returns false when the
	// reminder was already paid (or does not exist).
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.NullDecimal) (bool, error)

	// Complete flips an active reminder to completed. Returns false when it
	// was already completed.
	Complete(ctx context.Context, id uuid.UUID, completedOn time.Time) (bool, error)

	// CreateNextInstance records next.DueDate as the source's next occurrence
	// and inserts next, atomically. Returns false if the source already has a
	// next occurrence.
	CreateNextInstance(ctx context.Context, sourceID uuid.UUID, next *domain.Reminder) (bool, error)

	// GetUpcoming lists an owner's open reminders due on or before until
	GetUpcoming(ctx context.Context, ownerID uuid.UUID, until time.Time) ([]*domain.Reminder, error)

	// GetHistory lists an owner's paid or completed reminders, newest first
	GetHistory(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Reminder, error)

	// GetRecurringTemplates lists an owner's open recurring reminders
	GetRecurringTemplates(ctx context.Context, ownerID uuid.UUID) ([]*domain.Reminder, error)
}

// NotificationLogRepository defines the interface for the notification log
type NotificationLogRepository interface {
	// HasSent reports whether a sent entry exists for the dedup key
	HasSent(ctx context.Context, reminderID uuid.UUID, kind domain.TriggerKind, day time.Time) (bool, error)

	// Record inserts the entry unless a sent entry already holds its dedup
	// key. A failed entry for the key is replaced. Returns whether the entry
	// was written.
	Record(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error)

	// GetRecent returns the newest entries first
	GetRecent(ctx context.Context, limit int) ([]*domain.NotificationLogEntry, error)
}

// ProfileRepository defines the interface for owner profile reads
type ProfileRepository interface {
	// GetByOwnerID retrieves the profile of a reminder owner
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerProfile, error)
}
