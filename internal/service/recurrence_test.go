package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/logger"
	"github.com/segyhp/payment-reminder/internal/mocks"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		due      time.Time
		pattern  string
		interval int
		expected time.Time
	}{
		{"daily", date(2024, 1, 30), domain.RecurrenceDaily, 3, date(2024, 2, 2)},
		{"weekly", date(2024, 1, 10), domain.RecurrenceWeekly, 2, date(2024, 1, 24)},
		{"monthly leap year clamp", date(2024, 1, 31), domain.RecurrenceMonthly, 1, date(2024, 2, 29)},
		{"monthly non-leap clamp", date(2023, 1, 31), domain.RecurrenceMonthly, 1, date(2023, 2, 28)},
		{"monthly into 30-day month", date(2024, 3, 31), domain.RecurrenceMonthly, 1, date(2024, 4, 30)},
		{"monthly across year", date(2024, 11, 15), domain.RecurrenceMonthly, 3, date(2025, 2, 15)},
		{"yearly leap day clamp", date(2024, 2, 29), domain.RecurrenceYearly, 1, date(2025, 2, 28)},
		{"yearly leap to leap", date(2024, 2, 29), domain.RecurrenceYearly, 4, date(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NextDueDate(tt.due, tt.pattern, tt.interval)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestNextDueDate_Invalid(t *testing.T) {
	_, err := NextDueDate(date(2024, 1, 1), domain.RecurrenceMonthly, 0)
	assert.True(t, errors.Is(err, customError.ErrValidation))

	_, err = NextDueDate(date(2024, 1, 1), "hourly", 1)
	assert.True(t, errors.Is(err, customError.ErrValidation))
}

func recurring(due time.Time) *domain.Reminder {
	r := domain.NewReminder(uuid.New(), "Rent", due)
	r.IsRecurring = true
	r.Category = domain.CategoryOther
	r.Amount = decimal.NewNullDecimal(decimal.NewFromInt(25000))
	r.RemindWeekend = false
	r.PaymentStatus = domain.PaymentStatusPaid
	return r
}

func TestAdvancer_Advance(t *testing.T) {
	repo := &mocks.MockReminderRepository{}
	advancer := NewAdvancer(repo, logger.Discard())

	src := recurring(date(2024, 1, 31))

	repo.On("CreateNextInstance", mock.Anything, src.ID, mock.MatchedBy(func(next *domain.Reminder) bool {
		return next.DueDate.Equal(date(2024, 2, 29))
	})).Return(true, nil)

	next, err := advancer.Advance(context.Background(), src)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.NotEqual(t, src.ID, next.ID)
	assert.Equal(t, src.OwnerID, next.OwnerID)
	assert.Equal(t, "Rent", next.Title)
	assert.True(t, next.Amount.Decimal.Equal(decimal.NewFromInt(25000)))
	assert.False(t, next.RemindWeekend)
	assert.True(t, next.IsRecurring)
	assert.Equal(t, domain.PaymentStatusUnpaid, next.PaymentStatus)
	assert.Equal(t, domain.ReminderStatusActive, next.ReminderStatus)
	assert.Nil(t, next.PaidAt)
	assert.Nil(t, next.CompletionDate)
	assert.False(t, next.PaidAmount.Valid)
	assert.Equal(t, uuid.NullUUID{UUID: src.ID, Valid: true}, next.OriginalReminderID)

	require.NotNil(t, src.NextOccurrenceDate)
	assert.Equal(t, date(2024, 2, 29), *src.NextOccurrenceDate)

	repo.AssertExpectations(t)
}

func TestAdvancer_KeepsSeriesLineage(t *testing.T) {
	repo := &mocks.MockReminderRepository{}
	advancer := NewAdvancer(repo, logger.Discard())

	root := uuid.New()
	src := recurring(date(2024, 2, 29))
	src.OriginalReminderID = uuid.NullUUID{UUID: root, Valid: true}

	repo.On("CreateNextInstance", mock.Anything, src.ID, mock.Anything).Return(true, nil)

	next, err := advancer.Advance(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, root, next.OriginalReminderID.UUID)
	assert.Equal(t, date(2024, 3, 29), next.DueDate)
}

func TestAdvancer_NoInstance(t *testing.T) {
	end := date(2024, 2, 15)
	existing := date(2024, 2, 29)

	tests := []struct {
		name     string
		reminder *domain.Reminder
	}{
		{
			name: "not recurring",
			reminder: func() *domain.Reminder {
				r := recurring(date(2024, 1, 31))
				r.IsRecurring = false
				return r
			}(),
		},
		{
			name: "series ended",
			reminder: func() *domain.Reminder {
				r := recurring(date(2024, 1, 31))
				r.RecurrenceEndDate = &end
				return r
			}(),
		},
		{
			name: "already advanced",
			reminder: func() *domain.Reminder {
				r := recurring(date(2024, 1, 31))
				r.NextOccurrenceDate = &existing
				return r
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockReminderRepository{}
			advancer := NewAdvancer(repo, logger.Discard())

			next, err := advancer.Advance(context.Background(), tt.reminder)
			require.NoError(t, err)
			assert.Nil(t, next)
			repo.AssertNotCalled(t, "CreateNextInstance", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdvancer_EndDateInclusive(t *testing.T) {
	repo := &mocks.MockReminderRepository{}
	advancer := NewAdvancer(repo, logger.Discard())

	end := date(2024, 2, 29)
	src := recurring(date(2024, 1, 31))
	src.RecurrenceEndDate = &end

	repo.On("CreateNextInstance", mock.Anything, src.ID, mock.Anything).Return(true, nil)

	next, err := advancer.Advance(context.Background(), src)
	require.NoError(t, err)
	assert.NotNil(t, next)
}

func TestAdvancer_LostRace(t *testing.T) {
	repo := &mocks.MockReminderRepository{}
	advancer := NewAdvancer(repo, logger.Discard())

	src := recurring(date(2024, 1, 31))
	repo.On("CreateNextInstance", mock.Anything, src.ID, mock.Anything).Return(false, nil)

	next, err := advancer.Advance(context.Background(), src)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Nil(t, src.NextOccurrenceDate)
}

func TestAdvancer_StoreError(t *testing.T) {
	repo := &mocks.MockReminderRepository{}
	advancer := NewAdvancer(repo, logger.Discard())

	src := recurring(date(2024, 1, 31))
	repo.On("CreateNextInstance", mock.Anything, src.ID, mock.Anything).Return(false, errors.New("connection reset"))

	_, err := advancer.Advance(context.Background(), src)
	assert.True(t, errors.Is(err, customError.ErrStore))
}
