package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gatherly/api/internal/core/ports"
)

// HousekeepingConfig bounds the two sweep jobs. Both sweeps are idempotent
// and uncoordinated: concurrent invocations only race on rows that match the
// same time-based predicate.
type HousekeepingConfig struct {
	// InactivityWindow is how long a poll may go untouched before it is
	// eligible for soft deletion.
	InactivityWindow time.Duration
	// PurgeGrace is how long a soft-deleted poll is retained before physical
	// removal.
	PurgeGrace time.Duration
	// PurgeBatchSize bounds each delete transaction.
	PurgeBatchSize int
}

func DefaultHousekeepingConfig() HousekeepingConfig {
	return HousekeepingConfig{
		InactivityWindow: 30 * 24 * time.Hour,
		PurgeGrace:       30 * 24 * time.Hour,
		PurgeBatchSize:   300,
	}
}

type housekeepingService struct {
	repo   ports.HousekeepingRepository
	cfg    HousekeepingConfig
	logger *slog.Logger
}

func NewHousekeepingService(repo ports.HousekeepingRepository, cfg HousekeepingConfig, logger *slog.Logger) ports.HousekeepingService {
	if cfg.PurgeBatchSize <= 0 {
		cfg.PurgeBatchSize = DefaultHousekeepingConfig().PurgeBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &housekeepingService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *housekeepingService) SoftDeleteInactive(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.cfg.InactivityWindow)

	marked, err := s.repo.SoftDeleteInactive(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("soft-delete sweep failed: %w", err)
	}
	if marked > 0 {
		s.logger.Info("soft-delete sweep completed", "marked", marked, "cutoff", cutoff)
	}
	return marked, nil
}

// Purge hard-deletes long-soft-deleted polls in fixed-size batches so each
// transaction stays short.
func (s *housekeepingService) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.PurgeGrace)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		purged, err := s.repo.PurgeDeleted(ctx, cutoff, s.cfg.PurgeBatchSize)
		if err != nil {
			return total, fmt.Errorf("purge sweep failed after %d rows: %w", total, err)
		}
		total += purged
		if purged < int64(s.cfg.PurgeBatchSize) {
			break
		}
	}

	if total > 0 {
		s.logger.Info("purge sweep completed", "purged", total, "cutoff", cutoff)
	}
	return total, nil
}
