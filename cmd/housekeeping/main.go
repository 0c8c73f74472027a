package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gatherly/api/internal/adapters/repository/postgres"
	"github.com/gatherly/api/internal/config"
	"github.com/gatherly/api/internal/core/services"
)

// One-shot maintenance job: soft-deletes inactive polls, then purges polls
// that stayed soft-deleted past the grace period. Intended to run from cron.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dsn string
	var skipSoftDelete, skipPurge bool
	flag.StringVar(&dsn, "dsn", os.Getenv("POSTGRES_DSN"), "Postgres connection string")
	flag.BoolVar(&skipSoftDelete, "skip-soft-delete", false, "Skip the inactivity sweep")
	flag.BoolVar(&skipPurge, "skip-purge", false, "Skip the purge sweep")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if dsn != "" {
		cfg.PostgresDSN = dsn
	}

	db, err := postgres.Connect(cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	service := services.NewHousekeepingService(postgres.NewHousekeepingRepository(db), services.HousekeepingConfig{
		InactivityWindow: cfg.InactivityWindow,
		PurgeGrace:       cfg.PurgeGrace,
		PurgeBatchSize:   cfg.PurgeBatchSize,
	}, logger)

	// Bound the job so a stuck database cannot hang the cron slot.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if !skipSoftDelete {
		marked, err := service.SoftDeleteInactive(ctx)
		if err != nil {
			logger.Error("inactivity sweep failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Inactivity sweep marked %d polls deleted.\n", marked)
	}

	if !skipPurge {
		purged, err := service.Purge(ctx)
		if err != nil {
			logger.Error("purge sweep failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Purge removed %d polls.\n", purged)
	}
}
