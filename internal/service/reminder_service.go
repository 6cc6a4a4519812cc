package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

const (
	DefaultUpcomingDays = 12
	MaxUpcomingDays     = 60
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// ReminderService serves the owner-facing reminder listings.
type ReminderService struct {
	reminderRepo repository.ReminderRepository
	profileRepo  repository.ProfileRepository
	defaultLoc   *time.Location
	now          func() time.Time
}

func NewReminderService(
	reminderRepo repository.ReminderRepository,
	profileRepo repository.ProfileRepository,
	defaultLoc *time.Location,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		profileRepo:  profileRepo,
		defaultLoc:   defaultLoc,
		now:          time.Now,
	}
}

// Upcoming lists open reminders due within days, overdue ones included,
// with days-until-due computed in the owner's timezone.
func (s *ReminderService) Upcoming(ctx context.Context, ownerID string, days int) ([]*domain.ReminderView, error) {
	if days < 1 || days > MaxUpcomingDays {
		return nil, customError.WrapValidation(fmt.Sprintf("days must be between 1 and %d", MaxUpcomingDays))
	}

	owner, err := parseOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByOwnerID(ctx, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapProfileNotFound(ownerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	today := utils.Date(s.now(), utils.LoadLocationOr(profile.Timezone, s.defaultLoc))

	reminders, err := s.reminderRepo.GetUpcoming(ctx, owner, today.AddDate(0, 0, days))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	views := make([]*domain.ReminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, &domain.ReminderView{
			Reminder:  r,
			DaysUntil: utils.DaysBetween(today, r.DueDate),
		})
	}

	return views, nil
}

// History lists paid or completed reminders, newest first.
func (s *ReminderService) History(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Reminder, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, customError.WrapValidation(fmt.Sprintf("limit must be between 1 and %d", MaxHistoryLimit))
	}
	if offset < 0 {
		return nil, customError.WrapValidation("offset must not be negative")
	}

	owner, err := parseOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.GetHistory(ctx, owner, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}

	return reminders, nil
}

// Recurring lists open recurring reminders with their next due date.
func (s *ReminderService) Recurring(ctx context.Context, ownerID string) ([]*domain.RecurringView, error) {
	owner, err := parseOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	reminders, err := s.reminderRepo.GetRecurringTemplates(ctx, owner)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	views := make([]*domain.RecurringView, 0, len(reminders))
	for _, r := range reminders {
		view := &domain.RecurringView{Reminder: r}
		next, err := NextDueDate(r.DueDate, r.RecurrencePattern, r.RecurrenceInterval)
		if err == nil && (r.RecurrenceEndDate == nil || !next.After(utils.CivilDate(*r.RecurrenceEndDate))) {
			view.NextDueDate = &next
		}
		views = append(views, view)
	}

	return views, nil
}

func parseOwnerID(ownerID string) (uuid.UUID, error) {
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, customError.WrapValidation("Invalid owner ID")
	}
	return id, nil
}
