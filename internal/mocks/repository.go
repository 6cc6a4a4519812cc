package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/payment-reminder/internal/domain"
)

type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) GetDispatchCandidates(ctx context.Context, horizon time.Time, channels domain.Capabilities, limit int) ([]*domain.DispatchCandidate, error) {
	args := m.Called(ctx, horizon, channels, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DispatchCandidate), args.Error(1)
}

func (m *MockReminderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, paidAmount decimal.NullDecimal) (bool, error) {
	args := m.Called(ctx, id, paidAt, paidAmount)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) Complete(ctx context.Context, id uuid.UUID, completedOn time.Time) (bool, error) {
	args := m.Called(ctx, id, completedOn)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) CreateNextInstance(ctx context.Context, sourceID uuid.UUID, next *domain.Reminder) (bool, error) {
	args := m.Called(ctx, sourceID, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockReminderRepository) GetUpcoming(ctx context.Context, ownerID uuid.UUID, until time.Time) ([]*domain.Reminder, error) {
	args := m.Called(ctx, ownerID, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) GetHistory(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*domain.Reminder, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderRepository) GetRecurringTemplates(ctx context.Context, ownerID uuid.UUID) ([]*domain.Reminder, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

type MockNotificationLogRepository struct {
	mock.Mock
}

func (m *MockNotificationLogRepository) HasSent(ctx context.Context, reminderID uuid.UUID, kind domain.TriggerKind, day time.Time) (bool, error) {
	args := m.Called(ctx, reminderID, kind, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationLogRepository) Record(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationLogRepository) GetRecent(ctx context.Context, limit int) ([]*domain.NotificationLogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.NotificationLogEntry), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.OwnerProfile, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OwnerProfile), args.Error(1)
}
