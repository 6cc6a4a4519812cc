package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

// NextDueDate adds interval units of pattern to due. Months and years clamp
// to the last day of a shorter target month.
func NextDueDate(due time.Time, pattern string, interval int) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, customError.WrapValidation(fmt.Sprintf("recurrence interval must be at least 1, got %d", interval))
	}

	if !domain.ValidRecurrencePattern(pattern) {
		return time.Time{}, customError.WrapValidation(fmt.Sprintf("unknown recurrence pattern %q", pattern))
	}

	due = utils.CivilDate(due)
	switch pattern {
	case domain.RecurrenceDaily:
		return due.AddDate(0, 0, interval), nil
	case domain.RecurrenceWeekly:
		return due.AddDate(0, 0, 7*interval), nil
	case domain.RecurrenceMonthly:
		return utils.AddMonthsClamped(due, interval), nil
	}
	return utils.AddMonthsClamped(due, 12*interval), nil
}

// Advancer materializes the next instance of a recurring reminder once the
// current one is paid or completed.
type Advancer struct {
	reminderRepo repository.ReminderRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewAdvancer(reminderRepo repository.ReminderRepository, logger *slog.Logger) *Advancer {
	return &Advancer{
		reminderRepo: reminderRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Advance creates the next instance of reminder and returns it. It returns
// nil when the reminder is not recurring, the series has ended, or a next
// instance already exists.
func (a *Advancer) Advance(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	if !reminder.IsRecurring || reminder.NextOccurrenceDate != nil {
		return nil, nil
	}

	nextDue, err := NextDueDate(reminder.DueDate, reminder.RecurrencePattern, reminder.RecurrenceInterval)
	if err != nil {
		return nil, err
	}

	if reminder.RecurrenceEndDate != nil && nextDue.After(utils.CivilDate(*reminder.RecurrenceEndDate)) {
		a.logger.Info("recurrence series ended",
			"reminder_id", reminder.ID,
			"next_due", nextDue.Format("2006-01-02"))
		return nil, nil
	}

	next := nextInstance(reminder, nextDue, a.now())

	created, err := a.reminderRepo.CreateNextInstance(ctx, reminder.ID, next)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !created {
		a.logger.Debug("next instance already exists", "reminder_id", reminder.ID)
		return nil, nil
	}

	reminder.NextOccurrenceDate = &nextDue
	a.logger.Info("recurring reminder advanced",
		"reminder_id", reminder.ID,
		"next_reminder_id", next.ID,
		"due_date", nextDue.Format("2006-01-02"))

	return next, nil
}

func nextInstance(src *domain.Reminder, due time.Time, now time.Time) *domain.Reminder {
	return &domain.Reminder{
		ID:                 uuid.New(),
		OwnerID:            src.OwnerID,
		Title:              src.Title,
		Category:           src.Category,
		DueDate:            due,
		Amount:             src.Amount,
		IsRecurring:        true,
		RecurrencePattern:  src.RecurrencePattern,
		RecurrenceInterval: src.RecurrenceInterval,
		RecurrenceEndDate:  src.RecurrenceEndDate,
		OriginalReminderID: uuid.NullUUID{UUID: src.SeriesID(), Valid: true},
		Remind10Days:       src.Remind10Days,
		Remind5Days:        src.Remind5Days,
		Remind1Day:         src.Remind1Day,
		RemindDueDay:       src.RemindDueDay,
		RemindWeekend:      src.RemindWeekend,
		ReminderStatus:     domain.ReminderStatusActive,
		PaymentStatus:      domain.PaymentStatusUnpaid,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
