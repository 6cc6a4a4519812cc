package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/payment-reminder/internal/app"
	"github.com/segyhp/payment-reminder/internal/config"
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
	log.Info("starting reminder scheduler")

	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled, exiting")
		return
	}

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	cronLogger := logger.NewCronLogger(log)
	c := cron.New(
		cron.WithParser(config.CronParser()),
		cron.WithLocation(cfg.GetLocation()),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := c.AddFunc(cfg.Scheduler.Cron, func() {
		report, err := application.Dispatch.RunDispatch(ctx, false, nil)
		if err != nil {
			log.Error("scheduled dispatch failed", "error", err)
			return
		}
		log.Info("scheduled dispatch finished",
			"processed", report.Processed,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
			"skipped", report.Skipped)
	}); err != nil {
		log.Error("failed to schedule dispatch job", "cron", cfg.Scheduler.Cron, "error", err)
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	log.Info("scheduler started", "cron", cfg.Scheduler.Cron, "timezone", cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	// Let a running dispatch finish; no new ticks fire after Stop.
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}
