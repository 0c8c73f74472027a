package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type pollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) ports.PollRepository {
	return &pollRepository{db: db}
}

func withOptions(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC")
}

func (r *pollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	row := pollModelFromEntity(poll)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *pollRepository) GetByAdminToken(ctx context.Context, token string) (*domain.Poll, error) {
	return r.getOne(ctx, "admin_token = ?", token)
}

func (r *pollRepository) GetByParticipantToken(ctx context.Context, token string) (*domain.Poll, error) {
	return r.getOne(ctx, "participant_token = ?", token)
}

func (r *pollRepository) getOne(ctx context.Context, query string, arg any) (*domain.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Preload("Options", withOptions).
		Where(query, arg).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return row.toEntity(), nil
}

func (r *pollRepository) ListByOwner(ctx context.Context, owner domain.Caller) ([]*domain.Poll, error) {
	tx := r.db.WithContext(ctx).
		Preload("Options", withOptions).
		Where("deleted = ?", false)

	switch {
	case owner.IsRegistered() && owner.GuestID != "":
		tx = tx.Where("owner_user_id = ? OR owner_guest_id = ?", *owner.UserID, owner.GuestID)
	case owner.IsRegistered():
		tx = tx.Where("owner_user_id = ?", *owner.UserID)
	case owner.GuestID != "":
		tx = tx.Where("owner_guest_id = ?", owner.GuestID)
	default:
		return nil, nil
	}

	var rows []pollModel
	if err := tx.Order("touched_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	polls := make([]*domain.Poll, 0, len(rows))
	for _, row := range rows {
		polls = append(polls, row.toEntity())
	}
	return polls, nil
}

func (r *pollRepository) UpdateDetails(ctx context.Context, poll *domain.Poll) error {
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", poll.ID).
		Updates(map[string]any{
			"title":                     poll.Title,
			"description":               poll.Description,
			"location":                  poll.Location,
			"time_zone":                 poll.TimeZone,
			"hide_participants":         poll.HideParticipants,
			"require_participant_email": poll.RequireParticipantEmail,
			"touched_at":                poll.TouchedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update poll: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

// SetStatus applies the transition conditionally: a row that reached
// finalized stays finalized, no matter what the caller read beforehand.
func (r *pollRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.PollStatus, eventOptionID *uuid.UUID, at time.Time) error {
	updates := map[string]any{
		"status":     string(status),
		"touched_at": at,
	}
	if eventOptionID != nil {
		updates["event_option_id"] = *eventOptionID
	}

	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ? AND status <> ?", id, string(domain.StatusFinalized)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set poll status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&pollModel{}).
			Where("id = ?", id).
			Count(&count).
			Error; err != nil {
			return fmt.Errorf("failed to set poll status: %w", err)
		}
		if count == 0 {
			return domain.ErrPollNotFound
		}
		return domain.ErrAlreadyFinalized
	}
	return nil
}

func (r *pollRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	// Already-deleted polls are left untouched so the original deletion
	// timestamp keeps driving the purge grace period.
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to soft-delete poll: %w", result.Error)
	}
	return nil
}

func (r *pollRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", id).
		Update("touched_at", at).
		Error
	if err != nil {
		return fmt.Errorf("failed to touch poll: %w", err)
	}
	return nil
}

func (r *pollRepository) OptionScores(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.OptionScore, error) {
	type scoreRow struct {
		OptionID uuid.UUID
		YesCount int64
		IfCount  int64
		NoCount  int64
	}

	var rows []scoreRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT option_id,
		       COUNT(*) FILTER (WHERE response_type = 'yes')      AS yes_count,
		       COUNT(*) FILTER (WHERE response_type = 'ifNeedBe') AS if_count,
		       COUNT(*) FILTER (WHERE response_type = 'no')       AS no_count
		FROM votes
		WHERE poll_id = ?
		GROUP BY option_id
	`, pollID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate option scores: %w", err)
	}

	scores := make(map[uuid.UUID]domain.OptionScore, len(rows))
	for _, row := range rows {
		scores[row.OptionID] = domain.OptionScore{
			Yes:      row.YesCount,
			IfNeedBe: row.IfCount,
			No:       row.NoCount,
		}
	}
	return scores, nil
}
