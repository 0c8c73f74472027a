package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatherly/api/internal/core/ports"
)

type guestMergeRepository struct {
	db *gorm.DB
}

func NewGuestMergeRepository(db *gorm.DB) ports.GuestMergeRepository {
	return &guestMergeRepository{db: db}
}

// ReassignGuests moves poll ownership, participant rows and comments from
// the given guest identities to the user, in one transaction so a failure
// leaves no partial merge behind.
func (r *guestMergeRepository) ReassignGuests(ctx context.Context, userID uuid.UUID, guestIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&pollModel{}).
			Where("owner_guest_id IN ?", guestIDs).
			Updates(map[string]any{
				"owner_user_id":  userID,
				"owner_guest_id": "",
			}).Error; err != nil {
			return fmt.Errorf("reassign polls: %w", err)
		}

		// Skip participant rows in polls where the user already has a
		// response, since that would trip the one-response-per-user index.
		if err := tx.Exec(`
			UPDATE participants
			SET user_id = ?, guest_id = ''
			WHERE guest_id IN ?
			  AND NOT EXISTS (
				SELECT 1 FROM participants existing
				WHERE existing.poll_id = participants.poll_id
				  AND existing.user_id = ?
			  )
		`, userID, guestIDs, userID).Error; err != nil {
			return fmt.Errorf("reassign participants: %w", err)
		}

		if err := tx.Model(&commentModel{}).
			Where("guest_id IN ?", guestIDs).
			Updates(map[string]any{
				"user_id":  userID,
				"guest_id": "",
			}).Error; err != nil {
			return fmt.Errorf("reassign comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reassign guest rows: %w", err)
	}
	return nil
}
