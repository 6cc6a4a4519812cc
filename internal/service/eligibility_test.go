package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/payment-reminder/internal/domain"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2024-01-10 is a Wednesday, 2024-01-13 a Saturday.
var (
	wednesday = date(2024, 1, 10)
	saturday  = date(2024, 1, 13)
)

func reminderDue(due time.Time, opts ...func(*domain.Reminder)) *domain.Reminder {
	r := domain.NewReminder(uuid.New(), "Credit card", due)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func flagsOff(r *domain.Reminder) {
	r.Remind10Days = false
	r.Remind5Days = false
	r.Remind1Day = false
	r.RemindDueDay = false
	r.RemindWeekend = false
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		reminder  *domain.Reminder
		asOf      time.Time
		fires     bool
		kind      domain.TriggerKind
		daysUntil int
	}{
		{
			name:      "10 days before",
			reminder:  reminderDue(wednesday.AddDate(0, 0, 10)),
			asOf:      wednesday,
			fires:     true,
			kind:      domain.Trigger10Day,
			daysUntil: 10,
		},
		{
			name:      "5 days before",
			reminder:  reminderDue(wednesday.AddDate(0, 0, 5)),
			asOf:      wednesday,
			fires:     true,
			kind:      domain.Trigger5Day,
			daysUntil: 5,
		},
		{
			name:      "1 day before",
			reminder:  reminderDue(wednesday.AddDate(0, 0, 1)),
			asOf:      wednesday,
			fires:     true,
			kind:      domain.Trigger1Day,
			daysUntil: 1,
		},
		{
			name:      "due day",
			reminder:  reminderDue(wednesday),
			asOf:      wednesday,
			fires:     true,
			kind:      domain.TriggerDueDay,
			daysUntil: 0,
		},
		{
			name:      "overdue fires regardless of flags",
			reminder:  reminderDue(wednesday.AddDate(0, 0, -3), flagsOff),
			asOf:      wednesday,
			fires:     true,
			kind:      domain.TriggerOverdue,
			daysUntil: -3,
		},
		{
			name: "3 days out on a weekday with only 5 and 10 day flags",
			reminder: reminderDue(wednesday.AddDate(0, 0, 3), flagsOff, func(r *domain.Reminder) {
				r.Remind5Days = true
				r.Remind10Days = true
			}),
			asOf:      wednesday,
			fires:     false,
			daysUntil: 3,
		},
		{
			name: "flag off suppresses its day",
			reminder: reminderDue(wednesday.AddDate(0, 0, 10), func(r *domain.Reminder) {
				r.Remind10Days = false
			}),
			asOf:      wednesday,
			fires:     false,
			daysUntil: 10,
		},
		{
			name:      "weekend net",
			reminder:  reminderDue(saturday.AddDate(0, 0, 3)),
			asOf:      saturday,
			fires:     true,
			kind:      domain.TriggerWeekend,
			daysUntil: 3,
		},
		{
			name:      "weekend net upper bound",
			reminder:  reminderDue(saturday.AddDate(0, 0, 14)),
			asOf:      saturday,
			fires:     true,
			kind:      domain.TriggerWeekend,
			daysUntil: 14,
		},
		{
			name:      "weekend net beyond window",
			reminder:  reminderDue(saturday.AddDate(0, 0, 15)),
			asOf:      saturday,
			fires:     false,
			daysUntil: 15,
		},
		{
			name:      "day-count trigger outranks weekend",
			reminder:  reminderDue(saturday.AddDate(0, 0, 5)),
			asOf:      saturday,
			fires:     true,
			kind:      domain.Trigger5Day,
			daysUntil: 5,
		},
		{
			name: "weekend flag off",
			reminder: reminderDue(saturday.AddDate(0, 0, 3), func(r *domain.Reminder) {
				r.RemindWeekend = false
			}),
			asOf:      saturday,
			fires:     false,
			daysUntil: 3,
		},
		{
			name: "paid reminder never fires",
			reminder: reminderDue(wednesday, func(r *domain.Reminder) {
				r.PaymentStatus = domain.PaymentStatusPaid
			}),
			asOf:  wednesday,
			fires: false,
		},
		{
			name: "completed reminder never fires",
			reminder: reminderDue(wednesday.AddDate(0, 0, -2), func(r *domain.Reminder) {
				r.ReminderStatus = domain.ReminderStatusCompleted
			}),
			asOf:      wednesday,
			fires:     false,
			daysUntil: -2,
		},
		{
			name: "soft-deleted reminder never fires",
			reminder: reminderDue(wednesday, func(r *domain.Reminder) {
				r.IsActive = false
			}),
			asOf:  wednesday,
			fires: false,
		},
		{
			name:      "time of day is ignored",
			reminder:  reminderDue(time.Date(2024, 1, 11, 23, 59, 0, 0, time.UTC)),
			asOf:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			fires:     true,
			kind:      domain.Trigger1Day,
			daysUntil: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(tt.reminder, tt.asOf)
			require.NoError(t, err)

			assert.Equal(t, tt.fires, eval.Fires)
			assert.Equal(t, tt.kind, eval.Kind)
			assert.Equal(t, tt.daysUntil, eval.DaysUntil)
		})
	}
}

func TestEvaluate_OverdueFiresEveryDay(t *testing.T) {
	r := reminderDue(date(2024, 1, 1))

	for day := date(2024, 1, 2); day.Before(date(2024, 2, 1)); day = day.AddDate(0, 0, 1) {
		eval, err := Evaluate(r, day)
		require.NoError(t, err)
		assert.True(t, eval.Fires, day.Format("2006-01-02"))
		assert.Equal(t, domain.TriggerOverdue, eval.Kind)
	}
}

func TestEvaluate_AtMostOneTrigger(t *testing.T) {
	// Every flag on: each day yields zero or one kind, never more.
	r := reminderDue(date(2024, 1, 20))
	seen := map[domain.TriggerKind]int{}

	for day := date(2024, 1, 1); !day.After(date(2024, 1, 20)); day = day.AddDate(0, 0, 1) {
		eval, err := Evaluate(r, day)
		require.NoError(t, err)
		if eval.Fires {
			seen[eval.Kind]++
		}
	}

	assert.Equal(t, 1, seen[domain.Trigger10Day])
	assert.Equal(t, 1, seen[domain.Trigger5Day])
	assert.Equal(t, 1, seen[domain.Trigger1Day])
	assert.Equal(t, 1, seen[domain.TriggerDueDay])
}

func TestEvaluate_MissingDueDate(t *testing.T) {
	r := reminderDue(time.Time{})

	_, err := Evaluate(r, wednesday)
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrInvalidDueDate))
}
