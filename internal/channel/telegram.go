package channel

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/segyhp/payment-reminder/internal/domain"
)

// BotAPI is the part of *tgbotapi.BotAPI the chat sender needs.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender posts HTML chat messages through the Telegram Bot API.
type TelegramSender struct {
	bot BotAPI
}

// NewTelegramSender wraps bot; a nil bot yields a disabled sender.
func NewTelegramSender(bot BotAPI) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Name() string { return domain.ChannelTelegram }

func (s *TelegramSender) Enabled() bool { return s.bot != nil }

func (s *TelegramSender) Send(ctx context.Context, destination string, msg *Message) error {
	var cfg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(destination, 10, 64); err == nil {
		cfg = tgbotapi.NewMessage(chatID, msg.Chat)
	} else {
		cfg = tgbotapi.NewMessageToChannel(destination, msg.Chat)
	}
	cfg.ParseMode = tgbotapi.ModeHTML

	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(cfg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return TransportFailure(s.Name(), ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			return Rejected(s.Name(), apiErr.Message)
		}
		var apiErrValue tgbotapi.Error
		if errors.As(err, &apiErrValue) {
			return Rejected(s.Name(), apiErrValue.Message)
		}
		return TransportFailure(s.Name(), err)
	}
}
