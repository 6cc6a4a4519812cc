package service

import (
	"time"

	"github.com/segyhp/payment-reminder/internal/domain"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

// WeekendWindowDays bounds the weekend trigger to reminders due within two
// weeks.
const WeekendWindowDays = 14

// Evaluation is the eligibility decision for one reminder on one day.
type Evaluation struct {
	Kind      domain.TriggerKind
	DaysUntil int
	Fires     bool
}

// Evaluate decides whether reminder fires on asOf, a calendar date in the
// owner's timezone. At most one trigger fires; the first matching rule wins.
func Evaluate(reminder *domain.Reminder, asOf time.Time) (Evaluation, error) {
	if reminder.DueDate.IsZero() {
		return Evaluation{}, customError.WrapInvalidDueDate(reminder.ID.String())
	}

	today := utils.CivilDate(asOf)
	daysUntil := utils.DaysBetween(today, reminder.DueDate)
	eval := Evaluation{DaysUntil: daysUntil}

	if !reminder.Notifiable() {
		return eval, nil
	}

	switch {
	case daysUntil < 0:
		eval.Kind = domain.TriggerOverdue
	case daysUntil == 0 && reminder.RemindDueDay:
		eval.Kind = domain.TriggerDueDay
	case daysUntil == 1 && reminder.Remind1Day:
		eval.Kind = domain.Trigger1Day
	case daysUntil == 5 && reminder.Remind5Days:
		eval.Kind = domain.Trigger5Day
	case daysUntil == 10 && reminder.Remind10Days:
		eval.Kind = domain.Trigger10Day
	case reminder.RemindWeekend && utils.IsWeekend(today) && daysUntil <= WeekendWindowDays:
		eval.Kind = domain.TriggerWeekend
	default:
		return eval, nil
	}

	eval.Fires = true
	return eval, nil
}
