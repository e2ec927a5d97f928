package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks"
	callbackrepo "github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/email"
	"github.com/mehdirazajaffri/leads-management-system/internal/scheduler"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.NewWithOptions(cfg.Env, logger.Options{File: cfg.GetLogFile()})
	defer func() { _ = log.Close() }()
	log.Info("starting scheduler", "env", cfg.Env)

	if !cfg.IsSchedulerEnabled() {
		log.Error("REDIS_URL is required for the scheduler")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender := email.NewSender(cfg)
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP not configured; callback reminders will be dropped")
	}

	store := callbacks.NewReminderStore(callbackrepo.New(pool))
	reminders := scheduler.NewReminderHandler(store, sender, cfg.GetCallbackReminderHour(), log)

	worker, err := scheduler.NewWorker(cfg, reminders, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}
