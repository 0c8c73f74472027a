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

type pollService struct {
	repo     ports.PollRepository
	userRepo ports.UserRepository
	logger   *slog.Logger
}

func NewPollService(repo ports.PollRepository, userRepo ports.UserRepository, logger *slog.Logger) ports.PollService {
	if logger == nil {
		logger = slog.Default()
	}
	return &pollService{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput, caller domain.Caller) (*domain.Poll, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(input.Options) == 0 {
		return nil, fmt.Errorf("%w: at least one option is required", domain.ErrInvalidInput)
	}
	if caller.IsAnonymous() {
		return nil, fmt.Errorf("%w: poll owner identity is required", domain.ErrInvalidInput)
	}
	if input.TimeZone != "" {
		if _, err := time.LoadLocation(input.TimeZone); err != nil {
			return nil, fmt.Errorf("%w: unknown time zone %q", domain.ErrInvalidInput, input.TimeZone)
		}
	}

	seen := make(map[time.Time]bool, len(input.Options))
	for _, opt := range input.Options {
		if opt.DurationMinutes < 0 {
			return nil, fmt.Errorf("%w: negative option duration", domain.ErrInvalidInput)
		}
		start := opt.StartTime.UTC()
		if seen[start] {
			return nil, domain.ErrDuplicateOption
		}
		seen[start] = true
	}

	if input.SpaceID != nil {
		if !caller.IsRegistered() {
			return nil, domain.ErrForbidden
		}
		member, err := s.userRepo.IsSpaceMember(ctx, *input.SpaceID, *caller.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check space membership: %w", err)
		}
		if !member {
			return nil, domain.ErrForbidden
		}
	}

	pollID := uuid.New()
	now := time.Now().UTC()

	poll := &domain.Poll{
		ID:                      pollID,
		AdminToken:              uuid.NewString(),
		ParticipantToken:        uuid.NewString(),
		Title:                   input.Title,
		Description:             input.Description,
		Location:                input.Location,
		TimeZone:                input.TimeZone,
		SpaceID:                 input.SpaceID,
		Status:                  domain.StatusLive,
		HideParticipants:        input.HideParticipants,
		RequireParticipantEmail: input.RequireParticipantEmail,
		CreatedAt:               now,
		TouchedAt:               now,
	}
	if caller.IsRegistered() {
		poll.OwnerUserID = caller.UserID
	} else {
		poll.OwnerGuestID = caller.GuestID
	}

	for _, opt := range input.Options {
		poll.Options = append(poll.Options, domain.Option{
			ID:              uuid.New(),
			PollID:          pollID,
			StartTime:       opt.StartTime.UTC(),
			DurationMinutes: opt.DurationMinutes,
			CreatedAt:       now,
		})
	}

	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	s.logger.Info("poll created", "poll_id", pollID, "options", len(poll.Options))
	return poll, nil
}

func (s *pollService) Get(ctx context.Context, id uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	poll, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	admin, err := s.isAdmin(ctx, poll, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if poll.Deleted && !admin {
		return nil, domain.ErrPollNotFound
	}
	if !admin {
		redacted := *poll
		redacted.AdminToken = ""
		return &redacted, nil
	}
	return poll, nil
}

func (s *pollService) GetByAdminToken(ctx context.Context, token string) (*domain.Poll, error) {
	return s.repo.GetByAdminToken(ctx, token)
}

func (s *pollService) GetByParticipantToken(ctx context.Context, token string) (*domain.Poll, error) {
	poll, err := s.repo.GetByParticipantToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if poll.Deleted {
		return nil, domain.ErrPollNotFound
	}
	redacted := *poll
	redacted.AdminToken = ""
	return &redacted, nil
}

func (s *pollService) ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Poll, error) {
	if caller.IsAnonymous() {
		return nil, nil
	}
	return s.repo.ListByOwner(ctx, caller)
}

func (s *pollService) Update(ctx context.Context, input ports.UpdatePollInput, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	poll, err := s.requireAdmin(ctx, input.PollID, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if poll.Status == domain.StatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		poll.Title = *input.Title
	}
	if input.Description != nil {
		poll.Description = *input.Description
	}
	if input.Location != nil {
		poll.Location = *input.Location
	}
	if input.TimeZone != nil {
		if *input.TimeZone != "" {
			if _, err := time.LoadLocation(*input.TimeZone); err != nil {
				return nil, fmt.Errorf("%w: unknown time zone %q", domain.ErrInvalidInput, *input.TimeZone)
			}
		}
		poll.TimeZone = *input.TimeZone
	}
	if input.HideParticipants != nil {
		poll.HideParticipants = *input.HideParticipants
	}
	if input.RequireParticipantEmail != nil {
		poll.RequireParticipantEmail = *input.RequireParticipantEmail
	}
	poll.TouchedAt = time.Now().UTC()

	if err := s.repo.UpdateDetails(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to update poll: %w", err)
	}
	return poll, nil
}

// Finalize records the chosen option as the poll's event. Irreversible.
func (s *pollService) Finalize(ctx context.Context, pollID, optionID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	poll, err := s.requireAdmin(ctx, pollID, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if poll.Status == domain.StatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}
	if poll.OptionByID(optionID) == nil {
		return nil, domain.ErrOptionNotInPoll
	}

	// The status check above ran on a snapshot; the store repeats it so a
	// concurrent finalize cannot swap an already chosen option.
	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, pollID, domain.StatusFinalized, &optionID, now); err != nil {
		return nil, err
	}

	poll.Status = domain.StatusFinalized
	poll.EventOptionID = &optionID
	poll.TouchedAt = now
	s.logger.Info("poll finalized", "poll_id", pollID, "option_id", optionID)
	return poll, nil
}

func (s *pollService) Pause(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	return s.setStatus(ctx, pollID, domain.StatusPaused, caller, adminToken)
}

func (s *pollService) Resume(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	return s.setStatus(ctx, pollID, domain.StatusLive, caller, adminToken)
}

func (s *pollService) setStatus(ctx context.Context, pollID uuid.UUID, status domain.PollStatus, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	poll, err := s.requireAdmin(ctx, pollID, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if poll.Status == domain.StatusFinalized {
		return nil, domain.ErrAlreadyFinalized
	}

	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, pollID, status, nil, now); err != nil {
		return nil, err
	}

	poll.Status = status
	poll.TouchedAt = now
	return poll, nil
}

func (s *pollService) Delete(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) error {
	if _, err := s.requireAdmin(ctx, pollID, caller, adminToken); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, pollID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	s.logger.Info("poll soft-deleted", "poll_id", pollID)
	return nil
}

func (s *pollService) OptionScores(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.OptionScore, error) {
	return s.repo.OptionScores(ctx, pollID)
}

func (s *pollService) requireAdmin(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error) {
	poll, err := s.repo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	admin, err := s.isAdmin(ctx, poll, caller, adminToken)
	if err != nil {
		return nil, err
	}
	if !admin {
		if poll.Deleted {
			return nil, domain.ErrPollNotFound
		}
		return nil, domain.ErrForbidden
	}
	return poll, nil
}

func (s *pollService) isAdmin(ctx context.Context, poll *domain.Poll, caller domain.Caller, adminToken string) (bool, error) {
	return isPollAdmin(ctx, s.userRepo, poll, caller, adminToken)
}
