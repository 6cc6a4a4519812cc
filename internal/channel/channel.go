package channel

import (
	"context"
	"errors"
	"fmt"

	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

// Message is one notification rendered for every channel.
type Message struct {
	Subject string
	HTML    string
	Chat    string
	Text    string
}

// Sender delivers a rendered message to a destination address. Senders know
// nothing about each other.
type Sender interface {
	// Name is the channel name, matching the domain.Channel* constants
	Name() string

	// Enabled reports whether the channel has the credentials it needs
	Enabled() bool

	// Send returns nil on success, an error wrapping ErrSkipped when the
	// channel declined without trying, or a *SendError.
	Send(ctx context.Context, destination string, msg *Message) error
}

// ErrSkipped marks a send that was intentionally not attempted.
var ErrSkipped = errors.New("channel skipped")

// SendError is a failed delivery attempt.
type SendError struct {
	Channel string
	Reason  string
	// Transport is set for timeouts and connection failures, as opposed to
	// the provider answering with a rejection.
	Transport bool
	Err       error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s send failed: %s: %v", e.Channel, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s send failed: %s", e.Channel, e.Reason)
}

func (e *SendError) Unwrap() error {
	return customError.WrapChannelError(e.Channel, e.Reason, e.Err)
}

// Rejected builds the error for a provider refusing the message.
func Rejected(channel, reason string) error {
	return &SendError{Channel: channel, Reason: reason}
}

// TransportFailure builds the error for a send that never got an answer.
func TransportFailure(channel string, err error) error {
	return &SendError{Channel: channel, Reason: "transport error", Transport: true, Err: err}
}

// IsTransport reports whether err is a transport-level send failure.
func IsTransport(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.Transport
}
