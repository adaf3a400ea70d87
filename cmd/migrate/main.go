package main

import (
	"context"
	"log"

	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/database"
	"github.com/noah-isme/academy-admin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("open database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	changes, err := database.Migrate(context.Background(), db, logr)
	if err != nil {
		logr.Sugar().Fatalw("migration failed", "error", err)
	}
	logr.Sugar().Infow("migration complete", "driver", cfg.Database.Driver, "changes", len(changes))
}
