package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ports.ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Preload("Votes").
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return row.toEntity(), nil
}

func (r *participantRepository) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Participant, error) {
	var rows []participantModel
	err := r.db.WithContext(ctx).
		Preload("Votes").
		Where("poll_id = ?", pollID).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	participants := make([]*domain.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, row.toEntity())
	}
	return participants, nil
}

func (r *participantRepository) CreateWithVotes(ctx context.Context, participant *domain.Participant) error {
	row := participantModelFromEntity(participant)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateParticipant
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

// ReplaceVotes swaps the participant's entire vote set in one transaction,
// so no partial set is ever observable.
func (r *participantRepository) ReplaceVotes(ctx context.Context, participantID uuid.UUID, votes []domain.Vote) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", participantID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		if len(votes) == 0 {
			return nil
		}
		rows := make([]voteModel, 0, len(votes))
		for _, vote := range votes {
			rows = append(rows, voteModelFromEntity(vote))
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace votes: %w", err)
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", id).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&participantModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrParticipantNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}
