package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mehdirazajaffri/leads-management-system/internal/activity"
	"github.com/mehdirazajaffri/leads-management-system/internal/adapters/storage"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents"
	"github.com/mehdirazajaffri/leads-management-system/internal/analytics"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/exports"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/internal/http/router"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/importer"
	"github.com/mehdirazajaffri/leads-management-system/internal/notification"
	"github.com/mehdirazajaffri/leads-management-system/internal/scheduler"
	"github.com/mehdirazajaffri/leads-management-system/internal/statuses"
	"github.com/mehdirazajaffri/leads-management-system/migrations"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/metrics"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.NewWithOptions(cfg.Env, logger.Options{File: cfg.GetLogFile()})
	defer func() { _ = log.Close() }()
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := db.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	health := map[string]apphttp.HealthChecker{
		"postgres": apphttp.HealthCheckFunc(pool.Ping),
	}

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}
	if cfg.IsSchedulerEnabled() {
		redisHealth, err := scheduler.NewRedisHealth(cfg)
		if err != nil {
			log.Error("failed to initialize redis health check", "error", err)
		} else {
			defer func() { _ = redisHealth.Close() }()
			health["redis"] = redisHealth
		}
	}

	archive := initImportArchive(ctx, cfg, log)
	var archiver importer.Archiver
	if archive != nil {
		archiver = archive
		health["minio"] = archive
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events and serves the live stream
	notificationModule := notification.New(reminderScheduler, cfg.GetCallbackReminderHour(), log)
	notificationModule.RegisterHandlers(eventBus)

	authModule := auth.NewModule(pool, cfg, val, log)
	statusesModule := statuses.NewModule(pool, val, log)
	agentsModule := agents.NewModule(pool, eventBus, val, log)
	leadsModule := leads.NewModule(pool, eventBus, val, cfg, appMetrics, archiver, log)
	callbacksModule := callbacks.NewModule(pool, leadsModule.Service(), eventBus, val, log)
	activityModule := activity.NewModule(pool, leadsModule.Service())
	analyticsModule := analytics.NewModule(pool)
	exportsModule := exports.NewModule(pool, leadsModule.ManagementService(), activityModule.Service(), val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		Metrics:  appMetrics,
		Gatherer: registry,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			statusesModule,
			agentsModule,
			leadsModule,
			callbacksModule,
			activityModule,
			analyticsModule,
			exportsModule,
			notificationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}

	// Live streams never finish on their own; close them before draining requests.
	notificationModule.Stream().Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	eventBus.Wait()
	log.Info("server stopped")
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ReminderScheduler, func()) {
	if !cfg.IsSchedulerEnabled() {
		log.Warn("REDIS_URL not configured; callback reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

// initImportArchive connects to MinIO and ensures the imports bucket. Upload
// archiving is disabled when storage is not configured.
func initImportArchive(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.ImportArchive {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; import archiving disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg, cfg.GetMaxUploadSize())
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinIOBucketImports()
	if err := db.Retry(ctx, log, "ensure imports bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "importsBucket", bucket)

	return storage.NewImportArchive(storageSvc, bucket)
}
