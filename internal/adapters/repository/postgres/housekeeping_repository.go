package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gatherly/api/internal/core/ports"
)

type housekeepingRepository struct {
	db *gorm.DB
}

func NewHousekeepingRepository(db *gorm.DB) ports.HousekeepingRepository {
	return &housekeepingRepository{db: db}
}

// SoftDeleteInactive marks polls that went untouched past the cutoff, keep
// no future-dated option, and whose owner has no active subscription. The
// predicate makes the sweep idempotent.
func (r *housekeepingRepository) SoftDeleteInactive(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE polls
		SET deleted = TRUE, deleted_at = ?
		WHERE deleted = FALSE
		  AND touched_at < ?
		  AND NOT EXISTS (
			SELECT 1 FROM options o
			WHERE o.poll_id = polls.id AND o.start_time > ?
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM users u
			WHERE u.id = polls.owner_user_id AND u.active_subscription
		  )
	`, now, cutoff, now)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to soft-delete inactive polls: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeDeleted removes one batch of long-soft-deleted polls. The LIMIT
// bounds the transaction; child rows go with the poll via ON DELETE CASCADE.
func (r *housekeepingRepository) PurgeDeleted(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM polls
		WHERE id IN (
			SELECT id FROM polls
			WHERE deleted = TRUE AND deleted_at < ?
			LIMIT ?
		)
	`, cutoff, batchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge deleted polls: %w", result.Error)
	}
	return result.RowsAffected, nil
}
