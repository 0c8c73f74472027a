package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gatherly/api/internal/core/ports"
)

type guestMergeService struct {
	userRepo  ports.UserRepository
	mergeRepo ports.GuestMergeRepository
	logger    *slog.Logger
}

func NewGuestMergeService(userRepo ports.UserRepository, mergeRepo ports.GuestMergeRepository, logger *slog.Logger) ports.GuestMergeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &guestMergeService{
		userRepo:  userRepo,
		mergeRepo: mergeRepo,
		logger:    logger,
	}
}

// Merge reassigns everything the given guest identities own (polls,
// participants, comments) to the registered user matching email. The merge
// is opportunistic cleanup: a missing user is logged, not returned.
func (s *guestMergeService) Merge(ctx context.Context, email string, guestIDs []string) error {
	if len(guestIDs) == 0 {
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to resolve user for merge: %w", err)
	}
	if user == nil {
		s.logger.Warn("guest merge skipped, no user for email", "email", email)
		return nil
	}

	if err := s.mergeRepo.ReassignGuests(ctx, user.ID, guestIDs); err != nil {
		return fmt.Errorf("failed to reassign guest data: %w", err)
	}

	s.logger.Info("guest identities merged", "user_id", user.ID, "guest_count", len(guestIDs))
	return nil
}
