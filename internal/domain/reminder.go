package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CategoryCreditCard  = "credit_card"
	CategoryInsurance   = "insurance"
	CategoryElectricity = "electricity"
	CategoryPhone       = "phone"
	CategoryOther       = "other"
)

const (
	ReminderStatusActive    = "active"
	ReminderStatusCompleted = "completed"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// Reminder represents a payment obligation tracked for one owner
type Reminder struct {
	ID       uuid.UUID           `json:"id" db:"id"`
	OwnerID  uuid.UUID           `json:"user_id" db:"user_id"`
	Title    string              `json:"title" db:"title"`
	Category string              `json:"category" db:"category"`
	DueDate  time.Time           `json:"due_date" db:"due_date"`
	Amount   decimal.NullDecimal `json:"amount" db:"amount"`

	IsRecurring        bool          `json:"is_recurring" db:"is_recurring"`
	RecurrencePattern  string        `json:"recurrence_pattern" db:"recurrence_pattern"`
	RecurrenceInterval int           `json:"recurrence_interval" db:"recurrence_interval"`
	RecurrenceEndDate  *time.Time    `json:"recurrence_end_date" db:"recurrence_end_date"`
	NextOccurrenceDate *time.Time    `json:"next_occurrence_date" db:"next_occurrence_date"`
	OriginalReminderID uuid.NullUUID `json:"original_reminder_id" db:"original_reminder_id"`

	Remind10Days  bool `json:"remind_10_days" db:"remind_10_days"`
	Remind5Days   bool `json:"remind_5_days" db:"remind_5_days"`
	Remind1Day    bool `json:"remind_1_day" db:"remind_1_day"`
	RemindDueDay  bool `json:"remind_due_day" db:"remind_due_day"`
	RemindWeekend bool `json:"remind_weekend" db:"remind_weekend"`

	ReminderStatus string              `json:"reminder_status" db:"reminder_status"`
	PaymentStatus  string              `json:"payment_status" db:"payment_status"`
	PaidAt         *time.Time          `json:"paid_at" db:"paid_at"`
	PaidAmount     decimal.NullDecimal `json:"paid_amount" db:"paid_amount"`
	CompletionDate *time.Time          `json:"completion_date" db:"completion_date"`
	IsActive       bool                `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewReminder returns an active, unpaid reminder with every notification
// flag switched on.
func NewReminder(ownerID uuid.UUID, title string, dueDate time.Time) *Reminder {
	now := time.Now()
	return &Reminder{
		ID:                 uuid.New(),
		OwnerID:            ownerID,
		Title:              title,
		Category:           CategoryOther,
		DueDate:            dueDate,
		RecurrencePattern:  RecurrenceMonthly,
		RecurrenceInterval: 1,
		Remind10Days:       true,
		Remind5Days:        true,
		Remind1Day:         true,
		RemindDueDay:       true,
		RemindWeekend:      true,
		ReminderStatus:     ReminderStatusActive,
		PaymentStatus:      PaymentStatusUnpaid,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Notifiable reports whether the reminder may receive notifications at all.
// Paid, completed and soft-deleted reminders never do.
func (r *Reminder) Notifiable() bool {
	return r.IsActive &&
		r.ReminderStatus != ReminderStatusCompleted &&
		r.PaymentStatus != PaymentStatusPaid
}

// IsPaid returns true once payment has been confirmed
func (r *Reminder) IsPaid() bool {
	return r.PaymentStatus == PaymentStatusPaid
}

// IsCompleted returns true once the owner has completed the reminder
func (r *Reminder) IsCompleted() bool {
	return r.ReminderStatus == ReminderStatusCompleted
}

// SeriesID identifies the recurrence series the reminder belongs to.
func (r *Reminder) SeriesID() uuid.UUID {
	if r.OriginalReminderID.Valid {
		return r.OriginalReminderID.UUID
	}
	return r.ID
}

// ValidCategory reports whether c is a known category
func ValidCategory(c string) bool {
	switch c {
	case CategoryCreditCard, CategoryInsurance, CategoryElectricity, CategoryPhone, CategoryOther:
		return true
	}
	return false
}

// ValidRecurrencePattern reports whether p is a known recurrence pattern
func ValidRecurrencePattern(p string) bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// ReminderView is a reminder with its days-until-due computed for the owner.
type ReminderView struct {
	*Reminder
	DaysUntil int `json:"days_until"`
}

// RecurringView is a recurring reminder with the due date its next instance
// would get. NextDueDate is nil once the series has ended.
type RecurringView struct {
	*Reminder
	NextDueDate *time.Time `json:"next_due_date"`
}
