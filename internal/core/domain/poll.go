package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollStatus string

const (
	StatusLive      PollStatus = "live"
	StatusPaused    PollStatus = "paused"
	StatusFinalized PollStatus = "finalized"
)

// Poll is the aggregate root of a scheduling poll. Two capability tokens gate
// it at different privilege levels: AdminToken grants full control, the
// ParticipantToken is the shareable voting link.
type Poll struct {
	ID                      uuid.UUID  `json:"id"`
	AdminToken              string     `json:"admin_token,omitempty"`
	ParticipantToken        string     `json:"participant_token,omitempty"`
	Title                   string     `json:"title"`
	Description             string     `json:"description,omitempty"`
	Location                string     `json:"location,omitempty"`
	TimeZone                string     `json:"time_zone,omitempty"`
	OwnerUserID             *uuid.UUID `json:"owner_user_id,omitempty"`
	OwnerGuestID            string     `json:"owner_guest_id,omitempty"`
	SpaceID                 *uuid.UUID `json:"space_id,omitempty"`
	Status                  PollStatus `json:"status"`
	EventOptionID           *uuid.UUID `json:"event_option_id,omitempty"`
	HideParticipants        bool       `json:"hide_participants"`
	RequireParticipantEmail bool       `json:"require_participant_email"`
	Options                 []Option   `json:"options"`
	Deleted                 bool       `json:"deleted,omitempty"`
	DeletedAt               *time.Time `json:"deleted_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	TouchedAt               time.Time  `json:"touched_at"`
}

// Option is one candidate date/time. A zero duration denotes an all-day
// (date-only) option.
type Option struct {
	ID              uuid.UUID `json:"id"`
	PollID          uuid.UUID `json:"poll_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

func (o Option) AllDay() bool {
	return o.DurationMinutes == 0
}

// OptionScore aggregates the responses for one option.
type OptionScore struct {
	Yes      int64 `json:"yes"`
	IfNeedBe int64 `json:"if_need_be"`
	No       int64 `json:"no"`
}

func (p *Poll) OptionByID(id uuid.UUID) *Option {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

func (p *Poll) HasFutureOption(now time.Time) bool {
	for _, opt := range p.Options {
		if opt.StartTime.After(now) {
			return true
		}
	}
	return false
}

// CanMutateResponses reports whether participant submissions are accepted.
// Paused blocks new and edited votes; finalized blocks them permanently.
func (p *Poll) CanMutateResponses() bool {
	return p.Status == StatusLive && !p.Deleted
}

// IsOwner reports whether the caller created this poll, either as a
// registered user or under a guest identity.
func (p *Poll) IsOwner(c Caller) bool {
	if p.OwnerUserID != nil && c.UserID != nil && *p.OwnerUserID == *c.UserID {
		return true
	}
	return p.OwnerGuestID != "" && p.OwnerGuestID == c.GuestID
}

// IsAdmin reports whether the caller holds the admin capability, by
// presenting the admin token or by owning the poll. Space membership is
// checked at the service layer since it needs a repository lookup.
func (p *Poll) IsAdmin(c Caller, adminToken string) bool {
	if adminToken != "" && adminToken == p.AdminToken {
		return true
	}
	return p.IsOwner(c)
}
