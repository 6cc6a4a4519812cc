package domain

import "github.com/google/uuid"

// OwnerProfile is the contact and timezone data of a reminder owner
type OwnerProfile struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FullName       string    `json:"full_name" db:"full_name"`
	Email          string    `json:"email" db:"email"`
	TelegramChatID string    `json:"telegram_chat_id" db:"telegram_chat_id"`
	Phone          string    `json:"phone" db:"phone"`
	Timezone       string    `json:"timezone" db:"timezone"`
}

// Channel names
const (
	ChannelEmail    = "email"
	ChannelTelegram = "telegram"
	ChannelSMS      = "sms"
)

// Capabilities is the set of channels an owner can be reached on, derived
// from which contact fields are present.
type Capabilities struct {
	Email    bool `json:"email"`
	Telegram bool `json:"telegram"`
	SMS      bool `json:"sms"`
}

// Capabilities computes the reachable channels of the profile
func (p *OwnerProfile) Capabilities() Capabilities {
	return Capabilities{
		Email:    p.Email != "",
		Telegram: p.TelegramChatID != "",
		SMS:      p.Phone != "",
	}
}

// Any reports whether at least one channel is reachable
func (c Capabilities) Any() bool {
	return c.Email || c.Telegram || c.SMS
}

// Has reports whether channel is in the set
func (c Capabilities) Has(channel string) bool {
	switch channel {
	case ChannelEmail:
		return c.Email
	case ChannelTelegram:
		return c.Telegram
	case ChannelSMS:
		return c.SMS
	}
	return false
}

// With returns the set with channel switched on or off.
func (c Capabilities) With(channel string, on bool) Capabilities {
	switch channel {
	case ChannelEmail:
		c.Email = on
	case ChannelTelegram:
		c.Telegram = on
	case ChannelSMS:
		c.SMS = on
	}
	return c
}

// Destination returns the owner's address on channel, empty if none.
func (p *OwnerProfile) Destination(channel string) string {
	switch channel {
	case ChannelEmail:
		return p.Email
	case ChannelTelegram:
		return p.TelegramChatID
	case ChannelSMS:
		return p.Phone
	}
	return ""
}
