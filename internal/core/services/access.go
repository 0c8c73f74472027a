package services

import (
	"context"
	"fmt"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

// isPollAdmin extends the pure token/owner check with space membership,
// which needs a repository lookup.
func isPollAdmin(ctx context.Context, userRepo ports.UserRepository, poll *domain.Poll, caller domain.Caller, adminToken string) (bool, error) {
	if poll.IsAdmin(caller, adminToken) {
		return true, nil
	}
	if poll.SpaceID == nil || !caller.IsRegistered() {
		return false, nil
	}
	member, err := userRepo.IsSpaceMember(ctx, *poll.SpaceID, *caller.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to check space membership: %w", err)
	}
	return member, nil
}
