package app

import (
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/payment-reminder/internal/channel"
	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/repository"
	"github.com/segyhp/payment-reminder/internal/service"
)

const smsQuotaPrefix = "sms:quota:"

// App holds the connections and services shared by the server and the
// scheduler.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Channels  *channel.Fanout
	Dispatch  *service.DispatchService
	Payments  *service.PaymentService
	Reminders *service.ReminderService
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := initDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	redisClient := initRedis(cfg)

	reminderRepo := repository.NewReminderRepository(db)
	logRepo := repository.NewNotificationLogRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	loc := cfg.GetLocation()
	httpClient := &http.Client{Timeout: cfg.GetChannelTimeout()}

	fanout := channel.NewFanout(cfg.GetChannelTimeout(), logger.With("component", "channel"),
		channel.NewEmailSender(cfg.Email, httpClient),
		channel.NewTelegramSender(initBot(cfg, httpClient, logger)),
		channel.NewSMSSender(cfg.SMS, httpClient, channel.NewRedisQuota(redisClient, smsQuotaPrefix, cfg.SMS.DailyQuota, loc)),
	)

	advancer := service.NewAdvancer(reminderRepo, logger.With("component", "recurrence"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Redis:     redisClient,
		Channels:  fanout,
		Dispatch:  service.NewDispatchService(reminderRepo, logRepo, fanout, channel.NewRenderer(cfg.Notification.CurrencySymbol), cfg, logger.With("component", "dispatch")),
		Payments:  service.NewPaymentService(reminderRepo, profileRepo, advancer, loc, logger.With("component", "payment")),
		Reminders: service.NewReminderService(reminderRepo, profileRepo, loc),
	}, nil
}

// Close releases the database and redis connections.
func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Error("closing redis", "error", err)
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("closing database", "error", err)
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// initBot returns nil when the chat channel is unconfigured or the bot token
// is rejected; the channel is then skipped.
func initBot(cfg *config.Config, client *http.Client, logger *slog.Logger) channel.BotAPI {
	if !cfg.TelegramEnabled() {
		return nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		logger.Error("telegram bot unavailable, chat channel disabled", "error", err)
		return nil
	}

	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return bot
}
