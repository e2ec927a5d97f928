package main

import (
	"context"

	"github.com/mehdirazajaffri/leads-management-system/internal/seed"
	"github.com/mehdirazajaffri/leads-management-system/migrations"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting database seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	res, err := seed.Run(ctx, pool, cfg, log)
	if err != nil {
		log.Error("seed failed", "error", err)
		panic("seed failed: " + err.Error())
	}
	log.Info("seed complete", "statusesCreated", res.Statuses, "usersCreated", res.Users)
}
