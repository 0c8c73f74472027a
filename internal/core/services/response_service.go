package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type responseService struct {
	pollRepo        ports.PollRepository
	participantRepo ports.ParticipantRepository
	userRepo        ports.UserRepository
	logger          *slog.Logger
}

func NewResponseService(pollRepo ports.PollRepository, participantRepo ports.ParticipantRepository, userRepo ports.UserRepository, logger *slog.Logger) ports.ResponseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &responseService{
		pollRepo:        pollRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		logger:          logger,
	}
}

// Submit persists a full vote set for one participant. Existing votes are
// replaced, never merged, and the replacement happens inside one repository
// transaction so concurrent readers never observe a partial set.
func (s *responseService) Submit(ctx context.Context, input ports.SubmitResponseInput, caller domain.Caller, adminToken string) (*domain.Participant, error) {
	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	if poll.Deleted {
		return nil, domain.ErrPollNotFound
	}

	admin, err := isPollAdmin(ctx, s.userRepo, poll, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if err := responsesMutable(poll, admin); err != nil {
		return nil, err
	}
	if err := validateVoteSet(poll, input.Votes); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if input.ParticipantID == nil {
		if input.Name == "" {
			return nil, fmt.Errorf("%w: participant name is required", domain.ErrInvalidInput)
		}
		if poll.RequireParticipantEmail && input.Email == "" {
			return nil, fmt.Errorf("%w: participant email is required", domain.ErrInvalidInput)
		}

		participant := &domain.Participant{
			ID:        uuid.New(),
			PollID:    poll.ID,
			Name:      input.Name,
			Email:     input.Email,
			UserID:    caller.UserID,
			GuestID:   caller.GuestID,
			CreatedAt: now,
		}
		participant.Votes = buildVotes(poll.ID, participant.ID, input.Votes, now)

		if err := s.participantRepo.CreateWithVotes(ctx, participant); err != nil {
			return nil, err
		}
		if err := s.pollRepo.Touch(ctx, poll.ID, now); err != nil {
			return nil, fmt.Errorf("failed to touch poll: %w", err)
		}
		s.logger.Info("response submitted", "poll_id", poll.ID, "participant_id", participant.ID, "votes", len(participant.Votes))
		return participant, nil
	}

	participant, err := s.participantRepo.GetByID(ctx, *input.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.PollID != poll.ID {
		return nil, domain.ErrParticipantNotFound
	}
	if !participant.IsOwnedBy(caller) && !admin {
		return nil, domain.ErrForbidden
	}

	votes := buildVotes(poll.ID, participant.ID, input.Votes, now)
	if err := s.participantRepo.ReplaceVotes(ctx, participant.ID, votes); err != nil {
		return nil, err
	}
	if input.Name != "" {
		participant.Name = input.Name
	}
	participant.Votes = votes

	if err := s.pollRepo.Touch(ctx, poll.ID, now); err != nil {
		return nil, fmt.Errorf("failed to touch poll: %w", err)
	}
	s.logger.Info("response updated", "poll_id", poll.ID, "participant_id", participant.ID, "votes", len(votes))
	return participant, nil
}

func (s *responseService) ListParticipants(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) ([]*domain.Participant, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Deleted {
		return nil, domain.ErrPollNotFound
	}

	participants, err := s.participantRepo.ListByPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.HideParticipants {
		return participants, nil
	}

	admin, err := isPollAdmin(ctx, s.userRepo, poll, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if admin {
		return participants, nil
	}

	// Hidden participants: each caller only sees their own response.
	var own []*domain.Participant
	for _, p := range participants {
		if p.IsOwnedBy(caller) {
			own = append(own, p)
		}
	}
	return own, nil
}

func (s *responseService) DeleteParticipant(ctx context.Context, pollID, participantID uuid.UUID, caller domain.Caller, adminToken string) error {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.Deleted {
		return domain.ErrPollNotFound
	}

	admin, err := isPollAdmin(ctx, s.userRepo, poll, caller, adminToken)
	if err != nil {
		return err
	}
	if err := responsesMutable(poll, admin); err != nil {
		return err
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.PollID != poll.ID {
		return domain.ErrParticipantNotFound
	}
	if !participant.IsOwnedBy(caller) && !admin {
		return domain.ErrForbidden
	}

	if err := s.participantRepo.Delete(ctx, participantID); err != nil {
		return err
	}
	if err := s.pollRepo.Touch(ctx, poll.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to touch poll: %w", err)
	}
	s.logger.Info("participant deleted", "poll_id", poll.ID, "participant_id", participantID)
	return nil
}

// responsesMutable gates response mutations by lifecycle: finalized blocks
// everyone, paused blocks everyone but admins.
func responsesMutable(poll *domain.Poll, admin bool) error {
	switch poll.Status {
	case domain.StatusFinalized:
		return domain.ErrResponsesClosed
	case domain.StatusPaused:
		if !admin {
			return domain.ErrResponsesClosed
		}
	}
	return nil
}

func validateVoteSet(poll *domain.Poll, votes []ports.VoteSubmission) error {
	seen := make(map[uuid.UUID]bool, len(votes))
	for _, v := range votes {
		if !v.Type.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidResponse, v.Type)
		}
		if seen[v.OptionID] {
			return domain.ErrDuplicateOption
		}
		seen[v.OptionID] = true
		if poll.OptionByID(v.OptionID) == nil {
			return domain.ErrOptionNotFound
		}
	}
	return nil
}

func buildVotes(pollID, participantID uuid.UUID, votes []ports.VoteSubmission, at time.Time) []domain.Vote {
	out := make([]domain.Vote, 0, len(votes))
	for _, v := range votes {
		out = append(out, domain.Vote{
			ID:            uuid.New(),
			PollID:        pollID,
			OptionID:      v.OptionID,
			ParticipantID: participantID,
			Type:          v.Type,
			CreatedAt:     at,
		})
	}
	return out
}
