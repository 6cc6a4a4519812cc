package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-reminder/internal/domain"
)

const reminderColumns = `
	r.id, r.user_id, r.title, r.category, r.due_date, r.amount,
	r.is_recurring, r.recurrence_pattern, r.recurrence_interval, r.recurrence_end_date,
	r.next_occurrence_date, r.original_reminder_id,
	r.remind_10_days, r.remind_5_days, r.remind_1_day, r.remind_due_day, r.remind_weekend,
	r.reminder_status, r.payment_status, r.paid_at, r.paid_amount, r.completion_date,
	r.is_active, r.created_at, r.updated_at`

const profileColumns = `
	p.id AS "profile.id",
	COALESCE(p.full_name, '') AS "profile.full_name",
	COALESCE(p.email, '') AS "profile.email",
	COALESCE(p.telegram_chat_id, '') AS "profile.telegram_chat_id",
	COALESCE(p.phone, '') AS "profile.phone",
	COALESCE(p.timezone, '') AS "profile.timezone"`

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

type candidateRow struct {
	domain.Reminder
	Profile domain.OwnerProfile `db:"profile"`
}

func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	return insertReminder(ctx, r.db, reminder)
}

func insertReminder(ctx context.Context, exec sqlx.ExtContext, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, user_id, title, category, due_date, amount,
			is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
			next_occurrence_date, original_reminder_id,
			remind_10_days, remind_5_days, remind_1_day, remind_due_day, remind_weekend,
			reminder_status, payment_status, paid_at, paid_amount, completion_date,
			is_active, created_at, updated_at
		) VALUES (
			:id, :user_id, :title, :category, :due_date, :amount,
			:is_recurring, :recurrence_pattern, :recurrence_interval, :recurrence_end_date,
			:next_occurrence_date, :original_reminder_id,
			:remind_10_days, :remind_5_days, :remind_1_day, :remind_due_day, :remind_weekend,
			:reminder_status, :payment_status, :paid_at, :paid_amount, :completion_date,
			:is_active, :created_at, :updated_at
		)
	`

	_, err := sqlx.NamedExecContext(ctx, exec, query, reminder)
	return err
}

func (r *reminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.id = $1 AND r.is_active
	`

	var reminder domain.Reminder
	err := r.db.GetContext(ctx, &reminder, query, id)
	if err != nil {
		return nil, err
	}

	return &reminder, nil
}

func (r *reminderRepository) GetDispatchCandidates(ctx context.Context, horizon time.Time, channels domain.Capabilities, limit int) ([]*domain.DispatchCandidate, error) {
	query := `SELECT ` + reminderColumns + `,` + profileColumns + `
		FROM reminders r
		JOIN profiles p ON p.id = r.user_id
		WHERE r.is_active
			AND r.reminder_status = 'active'
			AND r.payment_status = 'unpaid'
			AND r.due_date <= $1
			AND (
				($2 AND COALESCE(p.email, '') <> '')
				OR ($3 AND COALESCE(p.telegram_chat_id, '') <> '')
				OR ($4 AND COALESCE(p.phone, '') <> '')
			)
		ORDER BY r.due_date, r.id
		LIMIT $5
	`

	// LIMIT NULL is LIMIT ALL in PostgreSQL
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	var rows []*candidateRow
	if err := r.db.SelectContext(ctx, &rows, query, horizon, channels.Email, channels.Telegram, channels.SMS, lim); err != nil {
		return nil, err
	}

	candidates := make([]*domain.DispatchCandidate, 0, len(rows))
	for _, row := range rows {
		reminder := row.Reminder
		profile := row.Profile
		candidates = append(candidates, &domain.DispatchCandidate{
			Reminder: &reminder,
			Profile:  &profile,
		})
	}

	return candidates, nil
}

func (r *reminderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.NullDecimal) (bool, error) {
	query := `
		UPDATE reminders
		SET payment_status = 'paid', paid_at = $2, paid_amount = COALESCE($3, amount), updated_at = $2
		WHERE id = $1 AND is_active AND payment_status = 'unpaid'
	`

	res, err := r.db.ExecContext(ctx, query, id, paidAt, paidAmount)
	if err != nil {
		return false, err
	}

	return affectedOne(res)
}

func (r *reminderRepository) Complete(ctx context.Context, id uuid.UUID, completedOn time.Time) (bool, error) {
	query := `
		UPDATE reminders
		SET reminder_status = 'completed', completion_date = $2, updated_at = now()
		WHERE id = $1 AND is_active AND reminder_status = 'active'
	`

	res, err := r.db.ExecContext(ctx, query, id, completedOn)
	if err != nil {
		return false, err
	}

	return affectedOne(res)
}

func (r *reminderRepository) CreateNextInstance(ctx context.Context, sourceID uuid.UUID, next *domain.Reminder) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE reminders
		SET next_occurrence_date = $2, updated_at = now()
		WHERE id = $1 AND next_occurrence_date IS NULL
	`, sourceID, next.DueDate)
	if err != nil {
		return false, err
	}

	claimed, err := affectedOne(res)
	if err != nil || !claimed {
		return false, err
	}

	if err = insertReminder(ctx, tx, next); err != nil {
		// Another series member already occupies this due date.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (r *reminderRepository) GetUpcoming(ctx context.Context, ownerID uuid.UUID, until time.Time) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.user_id = $1
			AND r.is_active
			AND r.reminder_status = 'active'
			AND r.payment_status = 'unpaid'
			AND r.due_date <= $2
		ORDER BY r.due_date
	`

	var reminders []*domain.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, ownerID, until); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) GetHistory(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.user_id = $1
			AND r.is_active
			AND (r.payment_status = 'paid' OR r.reminder_status = 'completed')
		ORDER BY COALESCE(r.paid_at, r.completion_date::timestamptz, r.updated_at) DESC
		LIMIT $2 OFFSET $3
	`

	var reminders []*domain.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, ownerID, limit, offset); err != nil {
		return nil, err
	}

	return reminders, nil
}

func (r *reminderRepository) GetRecurringTemplates(ctx context.Context, ownerID uuid.UUID) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.user_id = $1
			AND r.is_active
			AND r.is_recurring
			AND r.reminder_status = 'active'
			AND r.payment_status = 'unpaid'
		ORDER BY r.due_date
	`

	var reminders []*domain.Reminder
	if err := r.db.SelectContext(ctx, &reminders, query, ownerID); err != nil {
		return nil, err
	}

	return reminders, nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
