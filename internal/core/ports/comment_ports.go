package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AddCommentInput struct {
	PollID     uuid.UUID
	AuthorName string
	Content    string
}

type CommentService interface {
	Add(ctx context.Context, input AddCommentInput, caller domain.Caller) (*domain.Comment, error)
	List(ctx context.Context, pollID uuid.UUID) ([]*domain.Comment, error)
	Delete(ctx context.Context, pollID, commentID uuid.UUID, caller domain.Caller, adminToken string) error
}
