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

type commentService struct {
	commentRepo ports.CommentRepository
	pollRepo    ports.PollRepository
	userRepo    ports.UserRepository
	logger      *slog.Logger
}

func NewCommentService(commentRepo ports.CommentRepository, pollRepo ports.PollRepository, userRepo ports.UserRepository, logger *slog.Logger) ports.CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		commentRepo: commentRepo,
		pollRepo:    pollRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

func (s *commentService) Add(ctx context.Context, input ports.AddCommentInput, caller domain.Caller) (*domain.Comment, error) {
	if input.Content == "" {
		return nil, fmt.Errorf("%w: comment content is required", domain.ErrInvalidInput)
	}
	if input.AuthorName == "" {
		return nil, fmt.Errorf("%w: author name is required", domain.ErrInvalidInput)
	}

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}
	if poll.Deleted {
		return nil, domain.ErrPollNotFound
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:         uuid.New(),
		PollID:     poll.ID,
		AuthorName: input.AuthorName,
		UserID:     caller.UserID,
		GuestID:    caller.GuestID,
		Content:    input.Content,
		CreatedAt:  now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	if err := s.pollRepo.Touch(ctx, poll.ID, now); err != nil {
		return nil, fmt.Errorf("failed to touch poll: %w", err)
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, pollID uuid.UUID) ([]*domain.Comment, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if poll.Deleted {
		return nil, domain.ErrPollNotFound
	}
	return s.commentRepo.ListByPoll(ctx, pollID)
}

func (s *commentService) Delete(ctx context.Context, pollID, commentID uuid.UUID, caller domain.Caller, adminToken string) error {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}
	if poll.Deleted {
		return domain.ErrPollNotFound
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PollID != poll.ID {
		return domain.ErrCommentNotFound
	}

	if !comment.IsAuthoredBy(caller) {
		admin, err := isPollAdmin(ctx, s.userRepo, poll, caller, adminToken)
		if err != nil {
			return err
		}
		if !admin {
			return domain.ErrForbidden
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", "poll_id", poll.ID, "comment_id", commentID)
	return nil
}
