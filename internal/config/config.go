package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig       `mapstructure:",squash"`
	Database     DatabaseConfig     `mapstructure:",squash"`
	Redis        RedisConfig        `mapstructure:",squash"`
	Scheduler    SchedulerConfig    `mapstructure:",squash"`
	Logging      LoggingConfig      `mapstructure:",squash"`
	Notification NotificationConfig `mapstructure:",squash"`
	Email        EmailConfig        `mapstructure:",squash"`
	Telegram     TelegramConfig     `mapstructure:",squash"`
	SMS          SMSConfig          `mapstructure:",squash"`
	Auth         AuthConfig         `mapstructure:",squash"`
	Health       HealthConfig       `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	Enabled    bool   `mapstructure:"SCHEDULER_ENABLED"`
	Cron       string `mapstructure:"SCHEDULER_CRON"`
	Timezone   string `mapstructure:"SCHEDULER_TIMEZONE"`
	BatchLimit int    `mapstructure:"SCHEDULER_BATCH_LIMIT"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type NotificationConfig struct {
	ChannelTimeout string `mapstructure:"NOTIFY_CHANNEL_TIMEOUT"`
	AppBaseURL     string `mapstructure:"APP_BASE_URL"`
	CurrencySymbol string `mapstructure:"CURRENCY_SYMBOL"`
}

type EmailConfig struct {
	BrevoAPIKey   string `mapstructure:"BREVO_API_KEY"`
	BrevoBaseURL  string `mapstructure:"BREVO_BASE_URL"`
	SenderName    string `mapstructure:"EMAIL_SENDER_NAME"`
	SenderAddress string `mapstructure:"EMAIL_SENDER_ADDRESS"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
}

type SMSConfig struct {
	TextbeltKey string `mapstructure:"TEXTBELT_KEY"`
	TextbeltURL string `mapstructure:"TEXTBELT_URL"`
	DailyQuota  int    `mapstructure:"SMS_DAILY_QUOTA"`
}

type AuthConfig struct {
	APIKey string `mapstructure:"API_KEY"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// .env is optional and never overrides the real environment
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Optional config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_CRON", "0 0 9 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("SCHEDULER_BATCH_LIMIT", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("NOTIFY_CHANNEL_TIMEOUT", "10s")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("CURRENCY_SYMBOL", "₹")

	v.SetDefault("BREVO_API_KEY", "")
	v.SetDefault("BREVO_BASE_URL", "https://api.brevo.com")
	v.SetDefault("EMAIL_SENDER_NAME", "Reminder App")
	v.SetDefault("EMAIL_SENDER_ADDRESS", "noreply@reminderapp.com")

	v.SetDefault("TELEGRAM_BOT_TOKEN", "")

	v.SetDefault("TEXTBELT_KEY", "")
	v.SetDefault("TEXTBELT_URL", "https://textbelt.com/text")
	v.SetDefault("SMS_DAILY_QUOTA", 50)

	v.SetDefault("API_KEY", "")

	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"NOTIFY_CHANNEL_TIMEOUT":     c.Notification.ChannelTimeout,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for key, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if _, err := CronParser().Parse(c.Scheduler.Cron); err != nil {
		return fmt.Errorf("SCHEDULER_CRON must be a valid cron spec: %w", err)
	}

	if c.Scheduler.BatchLimit < 0 {
		return fmt.Errorf("SCHEDULER_BATCH_LIMIT must not be negative")
	}

	if c.SMS.DailyQuota < 0 {
		return fmt.Errorf("SMS_DAILY_QUOTA must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}

	return nil
}

// CronParser parses six-field specs (with seconds), matching cron.WithSeconds.
func CronParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// GetLocation returns the scheduler's default timezone
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetChannelTimeout returns the per-channel send timeout
func (c *Config) GetChannelTimeout() time.Duration {
	return parseDuration(c.Notification.ChannelTimeout, 10*time.Second)
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	return parseDuration(c.Health.Timeout, 5*time.Second)
}

// GetReadTimeout returns the HTTP server read timeout
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the HTTP server write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

// GetConnMaxLifetime returns the database connection lifetime
func (c *Config) GetConnMaxLifetime() time.Duration {
	return parseDuration(c.Database.ConnMaxLifetime, 30*time.Minute)
}

// TelegramEnabled reports whether the chat channel has credentials
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
