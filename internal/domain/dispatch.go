package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunReport is the aggregate result of one dispatch run
type RunReport struct {
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Forced    bool      `json:"forced"`
	Timestamp time.Time `json:"timestamp"`
}

// SchedulerStatus describes how the dispatch scheduler is configured
type SchedulerStatus struct {
	Enabled         bool   `json:"enabled"`
	CronSpec        string `json:"cron_spec"`
	Timezone        string `json:"timezone"`
	BatchLimit      int    `json:"batch_limit"`
	ChannelTimeout  string `json:"channel_timeout"`
	EmailEnabled    bool   `json:"email_enabled"`
	TelegramEnabled bool   `json:"telegram_enabled"`
	SMSEnabled      bool   `json:"sms_enabled"`
}

// DispatchStatus is the answer of the status endpoint
type DispatchStatus struct {
	SchedulerConfig SchedulerStatus         `json:"schedulerConfig"`
	RecentLogs      []*NotificationLogEntry `json:"recentLogs"`
}

// DTOs for requests and responses

type TriggerRequest struct {
	ForceRun   bool `json:"forceRun"`
	BatchLimit *int `json:"batchLimit" validate:"omitempty,gt=0"`
}

type MarkPaidRequest struct {
	ReminderID string           `json:"reminderId" validate:"required,uuid"`
	PaidAmount *decimal.Decimal `json:"paidAmount" validate:"omitempty,gte=0"`
}

type PaymentResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Reminder     *Reminder `json:"reminder"`
	NextInstance *Reminder `json:"next_instance,omitempty"`
}

type CompleteResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Reminder     *Reminder `json:"reminder"`
	NextInstance *Reminder `json:"next_instance,omitempty"`
}
