package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	IsSpaceMember(ctx context.Context, spaceID, userID uuid.UUID) (bool, error)
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// GuestMergeRepository reassigns guest-owned rows (polls, participants,
// comments) to a registered user in a single transaction.
type GuestMergeRepository interface {
	ReassignGuests(ctx context.Context, userID uuid.UUID, guestIDs []string) error
}

type GuestMergeService interface {
	// Merge is opportunistic: a missing user is logged, not returned as an
	// error.
	Merge(ctx context.Context, email string, guestIDs []string) error
}
