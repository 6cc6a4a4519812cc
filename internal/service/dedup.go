package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

// Deduplicator guards the one-sent-entry-per-day rule for each
// (reminder, trigger kind) pair.
type Deduplicator struct {
	logRepo repository.NotificationLogRepository
	now     func() time.Time
}

func NewDeduplicator(logRepo repository.NotificationLogRepository) *Deduplicator {
	return &Deduplicator{logRepo: logRepo, now: time.Now}
}

// ShouldSend returns false when a sent entry already exists for the key.
func (d *Deduplicator) ShouldSend(ctx context.Context, reminderID uuid.UUID, kind domain.TriggerKind, day time.Time) (bool, error) {
	sent, err := d.logRepo.HasSent(ctx, reminderID, kind, day)
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return !sent, nil
}

// Record writes the outcome for the key. It returns false when another
// writer already recorded a sent entry, in which case nothing was written.
func (d *Deduplicator) Record(ctx context.Context, reminderID uuid.UUID, kind domain.TriggerKind, day time.Time, status string) (bool, error) {
	written, err := d.logRepo.Record(ctx, &domain.NotificationLogEntry{
		ID:             uuid.New(),
		ReminderID:     reminderID,
		TriggerKind:    kind,
		SentOn:         day,
		SentAt:         d.now().UTC(),
		DeliveryStatus: status,
	})
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return written, nil
}
