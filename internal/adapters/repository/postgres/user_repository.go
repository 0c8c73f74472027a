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

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) ports.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ? AND deleted_at IS NULL", email).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return row.toEntity(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return row.toEntity(), nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	row := userModel{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		ActiveSubscription: user.ActiveSubscription,
		CreatedAt:          user.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) IsSpaceMember(ctx context.Context, spaceID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&spaceMemberModel{}).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check space membership: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM spaces WHERE id = ? AND owner_user_id = ?", spaceID, userID).
		Scan(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check space ownership: %w", err)
	}
	return count > 0, nil
}
