package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/pr-notify/internal/config"
	"github.com/crucial707/pr-notify/internal/db"
	"github.com/crucial707/pr-notify/internal/email"
	"github.com/crucial707/pr-notify/internal/github"
	"github.com/crucial707/pr-notify/internal/notify"
	"github.com/crucial707/pr-notify/internal/repo"
	"github.com/crucial707/pr-notify/internal/scheduler"
	"github.com/crucial707/pr-notify/internal/secrets"
	"github.com/crucial707/pr-notify/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	tokens, err := secrets.NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Error("invalid ENCRYPTION_KEY", "error", err)
		os.Exit(1)
	}

	schedules := repo.NewScheduleRepo(database, tokens, logger)
	cache := repo.NewPullRequestRepo(database)
	gh := github.NewClient(cfg.GitHubBaseURL,
		time.Duration(cfg.GitHubTimeout)*time.Second, cfg.GitHubRateLimit, logger)
	sender := &email.SMTPSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	}

	executor := &notify.Executor{
		Schedules:        schedules,
		Cache:            cache,
		GitHub:           gh,
		Email:            sender,
		AppURL:           cfg.ApplicationURL,
		FetchConcurrency: cfg.FetchConcurrency,
		Logger:           logger,
	}

	sched, err := scheduler.New(logger, cfg.SchedulerTimezone)
	if err != nil {
		logger.Error("invalid SCHEDULER_TIMEZONE", "timezone", cfg.SchedulerTimezone, "error", err)
		os.Exit(1)
	}
	reconciler := &scheduler.Reconciler{
		Scheduler: sched,
		Source:    schedules,
		Runner:    executor,
		Logger:    logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One synchronous pass before anything fires, so a restart picks its jobs
	// back up immediately instead of waiting a poll interval.
	if err := reconciler.Sync(ctx); err != nil {
		logger.Error("initial schedule sync failed", "error", err)
	}
	sched.Start()
	logger.Info("scheduler started",
		"jobs", len(sched.JobIDs()),
		"poll_interval_seconds", cfg.PollInterval,
		"timezone", cfg.SchedulerTimezone)

	go reconciler.Poll(ctx, time.Duration(cfg.PollInterval)*time.Second)

	ops := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(database, logger)}
	go func() {
		logger.Info("ops server listening", "addr", ops.Addr)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := ops.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}
	// Stop firing new jobs and wait for in-flight runs to drain.
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop timed out, abandoning running jobs", "error", err)
	}
	logger.Info("shutdown complete")
}

func newLogger(format string) *slog.Logger {
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		h = slog.NewTextHandler(os.Stdout, nil)
	}
	return slog.New(h)
}
