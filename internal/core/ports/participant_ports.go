package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type ParticipantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	// ListByPoll returns participants with their votes loaded.
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Participant, error)
	// CreateWithVotes inserts the participant and its vote set in one
	// transaction. A second registered-user response to the same poll
	// surfaces as domain.ErrDuplicateParticipant.
	CreateWithVotes(ctx context.Context, participant *domain.Participant) error
	// ReplaceVotes deletes the participant's existing votes and inserts the
	// given set in one transaction, so no partial vote set ever persists.
	ReplaceVotes(ctx context.Context, participantID uuid.UUID, votes []domain.Vote) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type VoteSubmission struct {
	OptionID uuid.UUID
	Type     domain.VoteType
}

type SubmitResponseInput struct {
	PollID        uuid.UUID
	ParticipantID *uuid.UUID
	Name          string
	Email         string
	Votes         []VoteSubmission
}

type ResponseService interface {
	// Submit persists a full vote set for one participant, creating the
	// participant when ParticipantID is absent.
	Submit(ctx context.Context, input SubmitResponseInput, caller domain.Caller, adminToken string) (*domain.Participant, error)
	ListParticipants(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) ([]*domain.Participant, error)
	DeleteParticipant(ctx context.Context, pollID, participantID uuid.UUID, caller domain.Caller, adminToken string) error
}
