package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/domain"
	"github.com/segyhp/payment-reminder/pkg/response"
)

// Pinger is satisfied by *sqlx.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ChannelSet reports which notification channels can actually send;
// satisfied by *channel.Fanout.
type ChannelSet interface {
	Capabilities() domain.Capabilities
}

type HealthHandler struct {
	db       Pinger
	redis    redis.Cmdable
	channels ChannelSet
	config   *config.Config
}

func NewHealthHandler(db Pinger, redis redis.Cmdable, channels ChannelSet, config *config.Config) *HealthHandler {
	return &HealthHandler{
		db:       db,
		redis:    redis,
		channels: channels,
		config:   config,
	}
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment,omitempty"`
	Checks      map[string]string `json:"checks"`
	Channels    map[string]bool   `json:"channels,omitempty"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	channels := h.channels.Capabilities()
	status := HealthStatus{
		Status:      "ok",
		Timestamp:   time.Now(),
		Environment: h.config.Server.Env,
		Checks:      make(map[string]string),
		Channels: map[string]bool{
			domain.ChannelEmail:    channels.Email,
			domain.ChannelTelegram: channels.Telegram,
			domain.ChannelSMS:      channels.SMS,
		},
	}

	timeout := h.config.GetHealthTimeout()

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		status.Status = "error"
		status.Checks["database"] = "failed: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	// Check Redis connectivity
	redisCtx, redisCancel := context.WithTimeout(r.Context(), timeout)
	defer redisCancel()

	if err := h.redis.Ping(redisCtx).Err(); err != nil {
		status.Status = "error"
		status.Checks["redis"] = "failed: " + err.Error()
	} else {
		status.Checks["redis"] = "ok"
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, "Service not ready", status)
		return
	}

	response.Success(w, status)
}
