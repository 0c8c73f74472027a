package domain

import (
	"time"

	"github.com/google/uuid"
)

type VoteType string

const (
	VoteYes      VoteType = "yes"
	VoteNo       VoteType = "no"
	VoteIfNeedBe VoteType = "ifNeedBe"
)

func (v VoteType) Valid() bool {
	switch v {
	case VoteYes, VoteNo, VoteIfNeedBe:
		return true
	}
	return false
}

// Participant is one respondent to a poll, either a registered user or an
// anonymous guest. It exclusively owns its votes.
type Participant struct {
	ID        uuid.UUID  `json:"id"`
	PollID    uuid.UUID  `json:"poll_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	GuestID   string     `json:"guest_id,omitempty"`
	Votes     []Vote     `json:"votes"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsOwnedBy reports whether the caller submitted this response.
func (p *Participant) IsOwnedBy(c Caller) bool {
	if p.UserID != nil && c.UserID != nil && *p.UserID == *c.UserID {
		return true
	}
	return p.GuestID != "" && p.GuestID == c.GuestID
}

// Vote is one participant's response to one option. Options the participant
// did not cover default to an implicit "no opinion" when rendered.
type Vote struct {
	ID            uuid.UUID `json:"id"`
	PollID        uuid.UUID `json:"poll_id"`
	OptionID      uuid.UUID `json:"option_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Type          VoteType  `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}
