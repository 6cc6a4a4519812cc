package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/segyhp/payment-reminder/internal/app"
	"github.com/segyhp/payment-reminder/internal/config"
	"github.com/segyhp/payment-reminder/internal/handler"
	"github.com/segyhp/payment-reminder/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(config.LoggingConfig{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if cfg.Auth.APIKey == "" {
		log.Warn("API_KEY is not set, authenticated endpoints will reject every request")
	}

	router := handler.NewRouter(handler.Handlers{
		Dispatch:  handler.NewDispatchHandler(application.Dispatch, log),
		Payment:   handler.NewPaymentHandler(application.Payments, log),
		Reminders: handler.NewReminderHandler(application.Reminders, log),
		Health:    handler.NewHealthHandler(application.DB, application.Redis, application.Channels, cfg),
	}, cfg.Auth.APIKey, log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
