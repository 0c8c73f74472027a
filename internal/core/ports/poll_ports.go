package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) error
	// GetByID returns the poll with its options, including soft-deleted rows;
	// callers decide how a deleted poll is treated.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetByAdminToken(ctx context.Context, token string) (*domain.Poll, error)
	GetByParticipantToken(ctx context.Context, token string) (*domain.Poll, error)
	// ListByOwner excludes soft-deleted polls.
	ListByOwner(ctx context.Context, owner domain.Caller) ([]*domain.Poll, error)
	UpdateDetails(ctx context.Context, poll *domain.Poll) error
	// SetStatus transitions the poll and bumps touched_at in one statement.
	// The store rejects the transition with ErrAlreadyFinalized when the row
	// is already finalized, so a stale read cannot replace the chosen option.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.PollStatus, eventOptionID *uuid.UUID, at time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	OptionScores(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.OptionScore, error)
}

type OptionInput struct {
	StartTime       time.Time
	DurationMinutes int
}

type CreatePollInput struct {
	Title                   string
	Description             string
	Location                string
	TimeZone                string
	Options                 []OptionInput
	SpaceID                 *uuid.UUID
	HideParticipants        bool
	RequireParticipantEmail bool
}

type UpdatePollInput struct {
	PollID                  uuid.UUID
	Title                   *string
	Description             *string
	Location                *string
	TimeZone                *string
	HideParticipants        *bool
	RequireParticipantEmail *bool
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput, caller domain.Caller) (*domain.Poll, error)
	Get(ctx context.Context, id uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error)
	GetByAdminToken(ctx context.Context, token string) (*domain.Poll, error)
	GetByParticipantToken(ctx context.Context, token string) (*domain.Poll, error)
	ListMine(ctx context.Context, caller domain.Caller) ([]*domain.Poll, error)
	Update(ctx context.Context, input UpdatePollInput, caller domain.Caller, adminToken string) (*domain.Poll, error)
	Finalize(ctx context.Context, pollID, optionID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error)
	Pause(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error)
	Resume(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) (*domain.Poll, error)
	Delete(ctx context.Context, pollID uuid.UUID, caller domain.Caller, adminToken string) error
	OptionScores(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.OptionScore, error)
}
