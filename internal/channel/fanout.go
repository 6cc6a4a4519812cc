package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/segyhp/payment-reminder/internal/domain"
)

// Result statuses
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Result is the outcome of one channel for one notification.
type Result struct {
	Channel   string `json:"channel"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Transport bool   `json:"transport,omitempty"`
}

// Outcome collects the per-channel results of one notification.
type Outcome struct {
	Results []Result `json:"results"`
}

// Attempted counts channels that actually tried to send.
func (o Outcome) Attempted() int {
	n := 0
	for _, r := range o.Results {
		if r.Status != StatusSkipped {
			n++
		}
	}
	return n
}

// DeliveryStatus is "sent" when at least one channel was attempted and none
// of the attempts failed at the transport level, otherwise "failed".
func (o Outcome) DeliveryStatus() string {
	if o.Attempted() == 0 {
		return domain.DeliveryStatusFailed
	}
	for _, r := range o.Results {
		if r.Status == StatusFailed && r.Transport {
			return domain.DeliveryStatusFailed
		}
	}
	return domain.DeliveryStatusSent
}

// Fanout delivers one message to every reachable channel of an owner
// concurrently. One channel failing never stops the others.
type Fanout struct {
	senders []Sender
	timeout time.Duration
	logger  *slog.Logger
}

func NewFanout(timeout time.Duration, logger *slog.Logger, senders ...Sender) *Fanout {
	return &Fanout{
		senders: senders,
		timeout: timeout,
		logger:  logger,
	}
}

// Capabilities is the set of channels whose sender is able to send.
func (f *Fanout) Capabilities() domain.Capabilities {
	var caps domain.Capabilities
	for _, sender := range f.senders {
		if sender.Enabled() {
			caps = caps.With(sender.Name(), true)
		}
	}
	return caps
}

func (f *Fanout) Deliver(ctx context.Context, profile *domain.OwnerProfile, msg *Message) Outcome {
	results := make([]Result, len(f.senders))

	var g errgroup.Group
	for i, sender := range f.senders {
		g.Go(func() error {
			results[i] = f.deliverOne(ctx, sender, profile, msg)
			return nil
		})
	}
	_ = g.Wait()

	return Outcome{Results: results}
}

func (f *Fanout) deliverOne(ctx context.Context, sender Sender, profile *domain.OwnerProfile, msg *Message) (res Result) {
	res = Result{Channel: sender.Name()}

	if !sender.Enabled() {
		res.Status = StatusSkipped
		res.Reason = "channel not configured"
		return res
	}

	if !profile.Capabilities().Has(sender.Name()) {
		res.Status = StatusSkipped
		res.Reason = "no destination"
		return res
	}
	dest := profile.Destination(sender.Name())

	defer func() {
		if p := recover(); p != nil {
			f.logger.Error("channel send panicked", "channel", sender.Name(), "panic", p)
			res = Result{
				Channel:   sender.Name(),
				Status:    StatusFailed,
				Reason:    fmt.Sprintf("panic: %v", p),
				Transport: true,
			}
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	err := sender.Send(sendCtx, dest, msg)
	switch {
	case err == nil:
		res.Status = StatusSent
	case errors.Is(err, ErrSkipped):
		res.Status = StatusSkipped
		res.Reason = err.Error()
	default:
		res.Status = StatusFailed
		res.Reason = err.Error()
		res.Transport = IsTransport(err) || errors.Is(err, context.DeadlineExceeded)
		f.logger.Warn("channel send failed",
			"channel", sender.Name(),
			"transport", res.Transport,
			"error", err)
	}
	return res
}
