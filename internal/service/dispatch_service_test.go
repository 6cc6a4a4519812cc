package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/payment-reminder/internal/channel"
	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/logger"
	"github.com/segyhp/payment-reminder/internal/mocks"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

type recordingSender struct {
	name     string
	err      error
	disabled bool

	mu    sync.Mutex
	calls []string
	msgs  []*channel.Message
}

func (s *recordingSender) Name() string  { return s.name }
func (s *recordingSender) Enabled() bool { return !s.disabled }

func (s *recordingSender) Send(ctx context.Context, destination string, msg *channel.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, destination)
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type dispatchFixture struct {
	service      *DispatchService
	reminderRepo *mocks.MockReminderRepository
	email        *recordingSender
	telegram     *recordingSender
	sms          *recordingSender
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Cron = "0 0 9 * * *"
	cfg.Scheduler.Timezone = "UTC"
	cfg.Notification.AppBaseURL = "https://app.example.com/"
	cfg.Notification.ChannelTimeout = "10s"
	cfg.Notification.CurrencySymbol = "₹"
	return cfg
}

func newDispatchFixture(logRepo repository.NotificationLogRepository) *dispatchFixture {
	f := &dispatchFixture{
		reminderRepo: &mocks.MockReminderRepository{},
		email:        &recordingSender{name: domain.ChannelEmail},
		telegram:     &recordingSender{name: domain.ChannelTelegram},
		sms:          &recordingSender{name: domain.ChannelSMS},
	}
	fanout := channel.NewFanout(time.Second, logger.Discard(), f.email, f.telegram, f.sms)
	f.service = NewDispatchService(f.reminderRepo, logRepo, fanout, channel.NewRenderer("₹"), testConfig(), logger.Discard())
	// Wednesday morning, UTC.
	f.service.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	return f
}

func candidate(r *domain.Reminder, p *domain.OwnerProfile) *domain.DispatchCandidate {
	return &domain.DispatchCandidate{Reminder: r, Profile: p}
}

func emailAndChat() *domain.OwnerProfile {
	return &domain.OwnerProfile{ID: uuid.New(), Email: "owner@example.com", TelegramChatID: "42"}
}

func TestRunDispatch_DueTodayEmailAndChat(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)

	r := reminderDue(wednesday)
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, date(2024, 1, 25), domain.Capabilities{Email: true, Telegram: true, SMS: true}, 0).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)

	logRepo.On("HasSent", mock.Anything, r.ID, domain.TriggerDueDay, wednesday).Return(false, nil)
	logRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.ReminderID == r.ID &&
			e.TriggerKind == domain.TriggerDueDay &&
			e.SentOn.Equal(wednesday) &&
			e.DeliveryStatus == domain.DeliveryStatusSent
	})).Return(true, nil).Once()

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.False(t, report.Forced)
	assert.False(t, report.Timestamp.IsZero())

	assert.Equal(t, 1, f.email.count())
	assert.Equal(t, 1, f.telegram.count())
	assert.Equal(t, 0, f.sms.count())
	assert.Equal(t, []string{"owner@example.com"}, f.email.calls)
	assert.Equal(t, []string{"42"}, f.telegram.calls)

	msg := f.email.msgs[0]
	assert.Contains(t, msg.HTML, "Due Today!")
	q := url.Values{"id": {r.ID.String()}, "token": {PaymentToken(r.ID)}}
	assert.Contains(t, msg.Text, "https://app.example.com/api/v1/payments/confirm?"+q.Encode())

	logRepo.AssertNumberOfCalls(t, "Record", 1)
	logRepo.AssertExpectations(t)
}

func TestRunDispatch_NoTriggerNoLog(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)

	r := reminderDue(wednesday.AddDate(0, 0, 3), flagsOff, func(r *domain.Reminder) {
		r.Remind5Days = true
		r.Remind10Days = true
	})
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, 0).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, f.email.count())
	logRepo.AssertNotCalled(t, "HasSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	logRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRunDispatch_FetchFailureIsFatal(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)

	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrStore))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 0, f.email.count())
}

func TestRunDispatch_BatchLimit(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)
	f.service.config.Scheduler.BatchLimit = 100

	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, 5).
		Return([]*domain.DispatchCandidate{}, nil).Once()
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, 100).
		Return([]*domain.DispatchCandidate{}, nil).Once()

	limit := 5
	_, err := f.service.RunDispatch(context.Background(), false, &limit)
	require.NoError(t, err)
	_, err = f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	f.reminderRepo.AssertExpectations(t)
}

func TestRunDispatch_PerReminderErrorsDoNotAbort(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)

	broken := reminderDue(time.Time{})
	dedupDown := reminderDue(wednesday.AddDate(0, 0, 1))
	recordDown := reminderDue(wednesday.AddDate(0, 0, 5))
	healthy := reminderDue(wednesday.AddDate(0, 0, 10))

	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{
			candidate(broken, emailAndChat()),
			candidate(dedupDown, emailAndChat()),
			candidate(recordDown, emailAndChat()),
			candidate(healthy, emailAndChat()),
		}, nil)

	logRepo.On("HasSent", mock.Anything, dedupDown.ID, mock.Anything, mock.Anything).Return(false, errors.New("timeout"))
	logRepo.On("HasSent", mock.Anything, recordDown.ID, mock.Anything, mock.Anything).Return(false, nil)
	logRepo.On("HasSent", mock.Anything, healthy.ID, mock.Anything, mock.Anything).Return(false, nil)
	logRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.ReminderID == recordDown.ID
	})).Return(false, errors.New("deadlock detected"))
	logRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.ReminderID == healthy.ID && e.TriggerKind == domain.Trigger10Day
	})).Return(true, nil)

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, 2, f.email.count())
}

func TestRunDispatch_AlreadySentIsSkipped(t *testing.T) {
	log := newMemoryLog()
	f := newDispatchFixture(log)

	r := reminderDue(wednesday.AddDate(0, 0, -2))
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)

	first, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)
	second, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, first.Succeeded)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, f.email.count())
	assert.Equal(t, 1, log.sentCount())
}

func TestRunDispatch_ForceRunResendsWithoutNewEntry(t *testing.T) {
	log := newMemoryLog()
	f := newDispatchFixture(log)

	r := reminderDue(wednesday.AddDate(0, 0, -2))
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)

	_, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	forced, err := f.service.RunDispatch(context.Background(), true, nil)
	require.NoError(t, err)

	assert.True(t, forced.Forced)
	assert.Equal(t, 1, forced.Skipped)
	assert.Equal(t, 2, f.email.count())
	assert.Equal(t, 1, log.sentCount())
	assert.Len(t, log.rows, 1)
}

func TestRunDispatch_ConcurrentRunsRecordOnce(t *testing.T) {
	log := newMemoryLog()
	f := newDispatchFixture(log)

	r := reminderDue(wednesday)
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)

	var wg sync.WaitGroup
	reports := make([]*domain.RunReport, 4)
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := f.service.RunDispatch(context.Background(), i%2 == 0, nil)
			assert.NoError(t, err)
			reports[i] = report
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, report := range reports {
		succeeded += report.Succeeded
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, log.sentCount())
}

func TestRunDispatch_TransportFailureRecordsFailed(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)
	f.email.err = channel.TransportFailure(domain.ChannelEmail, errors.New("i/o timeout"))

	r := reminderDue(wednesday.AddDate(0, 0, 1))
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{candidate(r, emailAndChat())}, nil)
	logRepo.On("HasSent", mock.Anything, r.ID, domain.Trigger1Day, wednesday).Return(false, nil)
	logRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.DeliveryStatus == domain.DeliveryStatusFailed
	})).Return(true, nil)

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, f.telegram.count())
	logRepo.AssertExpectations(t)
}

func TestRunDispatch_OwnerTimezone(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)
	// 2024-01-10 20:00 UTC is already 2024-01-11 in Tokyo.
	f.service.now = func() time.Time { return time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC) }

	profile := emailAndChat()
	profile.Timezone = "Asia/Tokyo"
	r := reminderDue(date(2024, 1, 11))

	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.DispatchCandidate{candidate(r, profile)}, nil)
	logRepo.On("HasSent", mock.Anything, r.ID, domain.TriggerDueDay, date(2024, 1, 11)).Return(false, nil)
	logRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *domain.NotificationLogEntry) bool {
		return e.TriggerKind == domain.TriggerDueDay && e.SentOn.Equal(date(2024, 1, 11))
	})).Return(true, nil)

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	logRepo.AssertExpectations(t)
}

func TestRunDispatch_FetchesOnlyOwnersOnConfiguredChannels(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)
	f.sms.disabled = true

	configured := domain.Capabilities{Email: true, Telegram: true}
	f.reminderRepo.On("GetDispatchCandidates", mock.Anything, mock.Anything, configured, mock.Anything).
		Return([]*domain.DispatchCandidate{}, nil).Once()

	report, err := f.service.RunDispatch(context.Background(), false, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	f.reminderRepo.AssertExpectations(t)
}

func TestRunDispatch_NoConfiguredChannel(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)
	f.email.disabled = true
	f.telegram.disabled = true
	f.sms.disabled = true

	report, err := f.service.RunDispatch(context.Background(), true, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Processed)
	assert.True(t, report.Forced)
	assert.False(t, report.Timestamp.IsZero())
	f.reminderRepo.AssertNotCalled(t, "GetDispatchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchService_Status(t *testing.T) {
	logRepo := &mocks.MockNotificationLogRepository{}
	f := newDispatchFixture(logRepo)

	entries := []*domain.NotificationLogEntry{
		{ID: uuid.New(), TriggerKind: domain.TriggerOverdue, DeliveryStatus: domain.DeliveryStatusSent},
	}
	logRepo.On("GetRecent", mock.Anything, RecentLogLimit).Return(entries, nil)
	f.telegram.disabled = true

	status, err := f.service.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entries, status.RecentLogs)
	assert.Equal(t, "0 0 9 * * *", status.SchedulerConfig.CronSpec)
	assert.Equal(t, "10s", status.SchedulerConfig.ChannelTimeout)
	assert.True(t, status.SchedulerConfig.EmailEnabled)
	assert.False(t, status.SchedulerConfig.TelegramEnabled)
	assert.True(t, status.SchedulerConfig.SMSEnabled)
}
