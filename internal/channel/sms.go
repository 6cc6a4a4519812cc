package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/domain"
	customError "github.com/segyhp/payment-reminder/pkg/errors"
)

// Quota limits how many messages may be sent per day.
type Quota interface {
	// Allow consumes one unit of today's quota and reports whether it was
	// available.
	Allow(ctx context.Context) (bool, error)
}

// RedisQuota is a per-day counter kept in Redis.
type RedisQuota struct {
	client redis.Cmdable
	prefix string
	limit  int64
	loc    *time.Location
	now    func() time.Time
}

// NewRedisQuota allows limit units per calendar day in loc. A zero limit
// means unlimited.
func NewRedisQuota(client redis.Cmdable, prefix string, limit int, loc *time.Location) *RedisQuota {
	return &RedisQuota{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		loc:    loc,
		now:    time.Now,
	}
}

func (q *RedisQuota) Allow(ctx context.Context) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}

	key := q.prefix + q.now().In(q.loc).Format("2006-01-02")

	n, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return false, customError.WrapCacheError(fmt.Errorf("incr %s: %w", key, err))
	}
	if n == 1 {
		if err := q.client.Expire(ctx, key, 48*time.Hour).Err(); err != nil {
			return false, customError.WrapCacheError(fmt.Errorf("expire %s: %w", key, err))
		}
	}

	return n <= q.limit, nil
}

type textbeltResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	QuotaRemaining int    `json:"quotaRemaining"`
	TextID         string `json:"textId"`
}

// SMSSender sends plain text messages through the Textbelt API.
type SMSSender struct {
	client *http.Client
	url    string
	key    string
	quota  Quota
}

// NewSMSSender builds the sender; quota may be nil.
func NewSMSSender(cfg config.SMSConfig, client *http.Client, quota Quota) *SMSSender {
	return &SMSSender{
		client: client,
		url:    cfg.TextbeltURL,
		key:    cfg.TextbeltKey,
		quota:  quota,
	}
}

func (s *SMSSender) Name() string { return domain.ChannelSMS }

func (s *SMSSender) Enabled() bool { return s.key != "" }

func (s *SMSSender) Send(ctx context.Context, destination string, msg *Message) error {
	if s.quota != nil {
		ok, err := s.quota.Allow(ctx)
		if err != nil {
			return &SendError{Channel: s.Name(), Reason: "quota check failed", Err: err}
		}
		if !ok {
			return fmt.Errorf("%w: daily sms quota reached", ErrSkipped)
		}
	}

	form := url.Values{}
	form.Set("phone", destination)
	form.Set("message", stripSymbols(msg.Text))
	form.Set("key", s.key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return Rejected(s.Name(), fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return TransportFailure(s.Name(), err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Rejected(s.Name(), fmt.Sprintf("textbelt returned %d with unreadable body", resp.StatusCode))
	}
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = fmt.Sprintf("textbelt returned %d", resp.StatusCode)
		}
		return Rejected(s.Name(), reason)
	}

	return nil
}
