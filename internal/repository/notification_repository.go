package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/payment-reminder/internal/domain"
)

type notificationLogRepository struct {
	db *sqlx.DB
}

func NewNotificationLogRepository(db *sqlx.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) HasSent(ctx context.Context, reminderID uuid.UUID, kind domain.TriggerKind, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notification_log
			WHERE reminder_id = $1 AND trigger_kind = $2 AND sent_on = $3 AND delivery_status = 'sent'
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, reminderID, kind, day); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *notificationLogRepository) Record(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	// The unique index on the dedup key arbitrates concurrent writers: only
	// one of them inserts, and a sent row is never replaced.
	query := `
		INSERT INTO notification_log (id, reminder_id, trigger_kind, sent_on, sent_at, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (reminder_id, trigger_kind, sent_on) DO UPDATE
		SET delivery_status = EXCLUDED.delivery_status, sent_at = EXCLUDED.sent_at
		WHERE notification_log.delivery_status = 'failed'
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	res, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ReminderID,
		entry.TriggerKind,
		entry.SentOn,
		entry.SentAt,
		entry.DeliveryStatus,
	)
	if err != nil {
		return false, err
	}

	return affectedOne(res)
}

func (r *notificationLogRepository) GetRecent(ctx context.Context, limit int) ([]*domain.NotificationLogEntry, error) {
	query := `
		SELECT id, reminder_id, trigger_kind, sent_on, sent_at, delivery_status
		FROM notification_log
		ORDER BY sent_at DESC
		LIMIT $1
	`

	var entries []*domain.NotificationLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
