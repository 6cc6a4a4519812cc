package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/segyhp/payment-reminder/internal/channel"
	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/internal/repository"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
	"github.com/segyhp/payment-reminder/pkg/utils"
)

// RecentLogLimit is how many log entries the status view returns.
const RecentLogLimit = 10

// candidateHorizonDays covers the weekend window plus one day of timezone
// skew between the server and the furthest-ahead owner.
const candidateHorizonDays = WeekendWindowDays + 1

type itemOutcome int

const (
	itemSkipped itemOutcome = iota
	itemSucceeded
	itemFailed
)

// DispatchService runs the notification pipeline: fetch candidates,
// evaluate, deduplicate, render, fan out to channels and record.
type DispatchService struct {
	reminderRepo repository.ReminderRepository
	logRepo      repository.NotificationLogRepository
	dedup        *Deduplicator
	fanout       *channel.Fanout
	renderer     *channel.Renderer
	config       *config.Config
	logger       *slog.Logger
	now          func() time.Time
}

func NewDispatchService(
	reminderRepo repository.ReminderRepository,
	logRepo repository.NotificationLogRepository,
	fanout *channel.Fanout,
	renderer *channel.Renderer,
	config *config.Config,
	logger *slog.Logger,
) *DispatchService {
	return &DispatchService{
		reminderRepo: reminderRepo,
		logRepo:      logRepo,
		dedup:        NewDeduplicator(logRepo),
		fanout:       fanout,
		renderer:     renderer,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// RunDispatch executes one dispatch run. A nil batchLimit falls back to the
// configured limit; zero means unlimited. A failed candidate fetch aborts the
// run before anything is sent. Per-reminder failures are counted and the run
// continues.
//
// forceRun skips the already-sent check so channels are invoked again, but
// the log write stays keyed: a forced re-send of a key that is already
// recorded as sent adds no entry and is counted as skipped.
func (s *DispatchService) RunDispatch(ctx context.Context, forceRun bool, batchLimit *int) (*domain.RunReport, error) {
	limit := s.config.Scheduler.BatchLimit
	if batchLimit != nil {
		limit = *batchLimit
	}

	now := s.now()
	horizon := utils.Date(now, time.UTC).AddDate(0, 0, candidateHorizonDays)

	s.logger.Info("starting dispatch run", "force_run", forceRun, "batch_limit", limit)

	channels := s.fanout.Capabilities()
	if !channels.Any() {
		s.logger.Warn("no notification channel is configured, nothing to dispatch")
		return &domain.RunReport{Forced: forceRun, Timestamp: s.now().UTC()}, nil
	}

	// Owners reachable only on unconfigured channels are never fetched.
	candidates, err := s.reminderRepo.GetDispatchCandidates(ctx, horizon, channels, limit)
	if err != nil {
		s.logger.Error("failed to fetch dispatch candidates", "error", err)
		return nil, customError.WrapDatabaseError(err)
	}

	report := &domain.RunReport{Forced: forceRun}
	for _, candidate := range candidates {
		report.Processed++
		switch s.processCandidate(ctx, candidate, now, forceRun) {
		case itemSucceeded:
			report.Succeeded++
		case itemFailed:
			report.Failed++
		default:
			report.Skipped++
		}
	}
	report.Timestamp = s.now().UTC()

	s.logger.Info("dispatch run completed",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped)

	return report, nil
}

func (s *DispatchService) processCandidate(ctx context.Context, candidate *domain.DispatchCandidate, now time.Time, forceRun bool) itemOutcome {
	reminder, profile := candidate.Reminder, candidate.Profile
	log := s.logger.With("reminder_id", reminder.ID)

	loc := utils.LoadLocationOr(profile.Timezone, s.config.GetLocation())
	today := utils.Date(now, loc)

	eval, err := Evaluate(reminder, today)
	if err != nil {
		log.Error("skipping reminder with bad data", "error", err)
		return itemFailed
	}
	if !eval.Fires {
		return itemSkipped
	}

	log = log.With("trigger", eval.Kind)

	if !forceRun {
		ok, err := s.dedup.ShouldSend(ctx, reminder.ID, eval.Kind, today)
		if err != nil {
			log.Error("dedup check failed", "error", err)
			return itemFailed
		}
		if !ok {
			log.Debug("already notified today")
			return itemSkipped
		}
	}

	msg, err := s.renderer.Render(s.notification(reminder, eval))
	if err != nil {
		log.Error("failed to render notification", "error", err)
		return itemFailed
	}

	outcome := s.fanout.Deliver(ctx, profile, msg)
	status := outcome.DeliveryStatus()
	for _, res := range outcome.Results {
		log.Debug("channel result", "channel", res.Channel, "status", res.Status, "reason", res.Reason)
	}

	written, err := s.dedup.Record(ctx, reminder.ID, eval.Kind, today, status)
	if err != nil {
		log.Error("failed to record notification", "delivery_status", status, "error", err)
		return itemFailed
	}
	if !written {
		log.Warn("notification already recorded as sent by another run", "delivery_status", status)
		return itemSkipped
	}

	if status != domain.DeliveryStatusSent {
		log.Warn("notification delivery failed", "attempted", outcome.Attempted())
		return itemFailed
	}

	log.Info("notification sent", "attempted", outcome.Attempted())
	return itemSucceeded
}

func (s *DispatchService) notification(reminder *domain.Reminder, eval Evaluation) channel.Notification {
	base := strings.TrimRight(s.config.Notification.AppBaseURL, "/")

	q := url.Values{}
	q.Set("id", reminder.ID.String())
	q.Set("token", PaymentToken(reminder.ID))

	return channel.Notification{
		ReminderID:   reminder.ID.String(),
		Title:        reminder.Title,
		Category:     reminder.Category,
		DueDate:      utils.CivilDate(reminder.DueDate),
		Amount:       reminder.Amount,
		DaysUntil:    eval.DaysUntil,
		Trigger:      eval.Kind,
		ConfirmURL:   fmt.Sprintf("%s/api/v1/payments/confirm?%s", base, q.Encode()),
		DashboardURL: base + "/dashboard",
	}
}

// Status reports the scheduler configuration and the most recent log
// entries, newest first.
func (s *DispatchService) Status(ctx context.Context) (*domain.DispatchStatus, error) {
	logs, err := s.logRepo.GetRecent(ctx, RecentLogLimit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if logs == nil {
		logs = []*domain.NotificationLogEntry{}
	}

	status := domain.SchedulerStatus{
		Enabled:        s.config.Scheduler.Enabled,
		CronSpec:       s.config.Scheduler.Cron,
		Timezone:       s.config.Scheduler.Timezone,
		BatchLimit:     s.config.Scheduler.BatchLimit,
		ChannelTimeout: s.config.GetChannelTimeout().String(),
	}
	channels := s.fanout.Capabilities()
	status.EmailEnabled = channels.Email
	status.TelegramEnabled = channels.Telegram
	status.SMSEnabled = channels.SMS

	return &domain.DispatchStatus{
		SchedulerConfig: status,
		RecentLogs:      logs,
	}, nil
}
