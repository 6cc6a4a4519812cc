package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/payment-reminder/internal/domain"
)

type MockDispatchService struct {
	mock.Mock
}

func (m *MockDispatchService) RunDispatch(ctx context.Context, forceRun bool, batchLimit *int) (*domain.RunReport, error) {
	args := m.Called(ctx, forceRun, batchLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunReport), args.Error(1)
}

func (m *MockDispatchService) Status(ctx context.Context) (*domain.DispatchStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DispatchStatus), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, reminderID, token string) (*domain.PaymentResponse, error) {
	args := m.Called(ctx, reminderID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) MarkPaid(ctx context.Context, request *domain.MarkPaidRequest) (*domain.PaymentResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) Complete(ctx context.Context, reminderID string) (*domain.CompleteResponse, error) {
	args := m.Called(ctx, reminderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompleteResponse), args.Error(1)
}

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) Upcoming(ctx context.Context, ownerID string, days int) ([]*domain.ReminderView, error) {
	args := m.Called(ctx, ownerID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReminderView), args.Error(1)
}

func (m *MockReminderService) History(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Reminder, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Reminder), args.Error(1)
}

func (m *MockReminderService) Recurring(ctx context.Context, ownerID string) ([]*domain.RecurringView, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.RecurringView), args.Error(1)
}
