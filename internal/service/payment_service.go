package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

const (
	msgPaid             = "Payment confirmed"
	msgAlreadyPaid      = "Reminder already paid"
	msgCompleted        = "Reminder completed"
	msgAlreadyCompleted = "Reminder already completed"
)

// PaymentService handles the paid and completed transitions of reminders.
type PaymentService struct {
	reminderRepo repository.ReminderRepository
	profileRepo  repository.ProfileRepository
	advancer     *Advancer
	defaultLoc   *time.Location
	logger       *slog.Logger
	now          func() time.Time
}

func NewPaymentService(
	reminderRepo repository.ReminderRepository,
	profileRepo repository.ProfileRepository,
	advancer *Advancer,
	defaultLoc *time.Location,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		reminderRepo: reminderRepo,
		profileRepo:  profileRepo,
		advancer:     advancer,
		defaultLoc:   defaultLoc,
		logger:       logger,
		now:          time.Now,
	}
}

// ConfirmPayment is the one-click link path: the token stands in for the
// caller's session.
func (s *PaymentService) ConfirmPayment(ctx context.Context, reminderID, token string) (*domain.PaymentResponse, error) {
	if reminderID == "" || token == "" {
		return nil, customError.WrapValidation("Missing reminder ID or token")
	}

	id, err := uuid.Parse(reminderID)
	if err != nil {
		return nil, customError.WrapValidation("Invalid reminder ID")
	}

	if !VerifyPaymentToken(id, token) {
		s.logger.Warn("payment confirmation with invalid token", "reminder_id", id)
		return nil, customError.WrapInvalidToken()
	}

	return s.markPaid(ctx, id, decimal.NullDecimal{})
}

// MarkPaid is the authenticated path; no token is required.
func (s *PaymentService) MarkPaid(ctx context.Context, request *domain.MarkPaidRequest) (*domain.PaymentResponse, error) {
	id, err := uuid.Parse(request.ReminderID)
	if err != nil {
		return nil, customError.WrapValidation("Invalid reminder ID")
	}

	var amount decimal.NullDecimal
	if request.PaidAmount != nil {
		amount = decimal.NewNullDecimal(*request.PaidAmount)
	}

	return s.markPaid(ctx, id, amount)
}

func (s *PaymentService) markPaid(ctx context.Context, id uuid.UUID, amount decimal.NullDecimal) (*domain.PaymentResponse, error) {
	reminder, err := s.getReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	if reminder.IsPaid() {
		return &domain.PaymentResponse{Success: true, Message: msgAlreadyPaid, Reminder: reminder}, nil
	}

	paidAt := s.now().UTC()
	updated, err := s.reminderRepo.MarkPaid(ctx, id, paidAt, amount)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !updated {
		// Lost the race to a concurrent confirmation.
		reminder.PaymentStatus = domain.PaymentStatusPaid
		return &domain.PaymentResponse{Success: true, Message: msgAlreadyPaid, Reminder: reminder}, nil
	}

	reminder.PaymentStatus = domain.PaymentStatusPaid
	reminder.PaidAt = &paidAt
	reminder.PaidAmount = amount
	if !amount.Valid {
		reminder.PaidAmount = reminder.Amount
	}

	s.logger.Info("reminder marked as paid", "reminder_id", id)

	return &domain.PaymentResponse{
		Success:      true,
		Message:      msgPaid,
		Reminder:     reminder,
		NextInstance: s.advance(ctx, reminder),
	}, nil
}

// Complete closes a reminder without recording a payment.
func (s *PaymentService) Complete(ctx context.Context, reminderID string) (*domain.CompleteResponse, error) {
	id, err := uuid.Parse(reminderID)
	if err != nil {
		return nil, customError.WrapValidation("Invalid reminder ID")
	}

	reminder, err := s.getReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	if reminder.IsCompleted() {
		return &domain.CompleteResponse{Success: true, Message: msgAlreadyCompleted, Reminder: reminder}, nil
	}

	loc, err := s.ownerLocation(ctx, reminder.OwnerID)
	if err != nil {
		return nil, err
	}
	completedOn := utils.Date(s.now(), loc)

	updated, err := s.reminderRepo.Complete(ctx, id, completedOn)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !updated {
		reminder.ReminderStatus = domain.ReminderStatusCompleted
		return &domain.CompleteResponse{Success: true, Message: msgAlreadyCompleted, Reminder: reminder}, nil
	}

	reminder.ReminderStatus = domain.ReminderStatusCompleted
	reminder.CompletionDate = &completedOn

	s.logger.Info("reminder completed", "reminder_id", id)

	return &domain.CompleteResponse{
		Success:      true,
		Message:      msgCompleted,
		Reminder:     reminder,
		NextInstance: s.advance(ctx, reminder),
	}, nil
}

// advance never fails the transition that triggered it; a reminder left
// without its next instance is advanced again on the next paid or completed
// call.
func (s *PaymentService) advance(ctx context.Context, reminder *domain.Reminder) *domain.Reminder {
	next, err := s.advancer.Advance(ctx, reminder)
	if err != nil {
		s.logger.Error("failed to create next recurring instance", "reminder_id", reminder.ID, "error", err)
		return nil
	}
	return next
}

func (s *PaymentService) getReminder(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapReminderNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return reminder, nil
}

func (s *PaymentService) ownerLocation(ctx context.Context, ownerID uuid.UUID) (*time.Location, error) {
	return ownerLocation(ctx, s.profileRepo, ownerID, s.defaultLoc)
}

// ownerLocation resolves the owner's timezone. A missing profile falls back
// to def.
func ownerLocation(ctx context.Context, repo repository.ProfileRepository, ownerID uuid.UUID, def *time.Location) (*time.Location, error) {
	profile, err := repo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return def, nil
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return utils.LoadLocationOr(profile.Timezone, def), nil
}
