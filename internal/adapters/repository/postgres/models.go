package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
)

type pollModel struct {
	ID                      uuid.UUID  `gorm:"column:id;primaryKey"`
	AdminToken              string     `gorm:"column:admin_token"`
	ParticipantToken        string     `gorm:"column:participant_token"`
	Title                   string     `gorm:"column:title"`
	Description             string     `gorm:"column:description"`
	Location                string     `gorm:"column:location"`
	TimeZone                string     `gorm:"column:time_zone"`
	OwnerUserID             *uuid.UUID `gorm:"column:owner_user_id"`
	OwnerGuestID            string     `gorm:"column:owner_guest_id"`
	SpaceID                 *uuid.UUID `gorm:"column:space_id"`
	Status                  string     `gorm:"column:status"`
	EventOptionID           *uuid.UUID `gorm:"column:event_option_id"`
	HideParticipants        bool       `gorm:"column:hide_participants"`
	RequireParticipantEmail bool       `gorm:"column:require_participant_email"`
	Deleted                 bool       `gorm:"column:deleted"`
	DeletedAt               *time.Time `gorm:"column:deleted_at"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
	TouchedAt               time.Time  `gorm:"column:touched_at"`

	Options []optionModel `gorm:"foreignKey:PollID"`
}

func (pollModel) TableName() string { return "polls" }

func (m pollModel) toEntity() *domain.Poll {
	poll := &domain.Poll{
		ID:                      m.ID,
		AdminToken:              m.AdminToken,
		ParticipantToken:        m.ParticipantToken,
		Title:                   m.Title,
		Description:             m.Description,
		Location:                m.Location,
		TimeZone:                m.TimeZone,
		OwnerUserID:             m.OwnerUserID,
		OwnerGuestID:            m.OwnerGuestID,
		SpaceID:                 m.SpaceID,
		Status:                  domain.PollStatus(m.Status),
		EventOptionID:           m.EventOptionID,
		HideParticipants:        m.HideParticipants,
		RequireParticipantEmail: m.RequireParticipantEmail,
		Deleted:                 m.Deleted,
		DeletedAt:               m.DeletedAt,
		CreatedAt:               m.CreatedAt,
		TouchedAt:               m.TouchedAt,
	}
	for _, opt := range m.Options {
		poll.Options = append(poll.Options, opt.toEntity())
	}
	return poll
}

func pollModelFromEntity(poll *domain.Poll) pollModel {
	m := pollModel{
		ID:                      poll.ID,
		AdminToken:              poll.AdminToken,
		ParticipantToken:        poll.ParticipantToken,
		Title:                   poll.Title,
		Description:             poll.Description,
		Location:                poll.Location,
		TimeZone:                poll.TimeZone,
		OwnerUserID:             poll.OwnerUserID,
		OwnerGuestID:            poll.OwnerGuestID,
		SpaceID:                 poll.SpaceID,
		Status:                  string(poll.Status),
		EventOptionID:           poll.EventOptionID,
		HideParticipants:        poll.HideParticipants,
		RequireParticipantEmail: poll.RequireParticipantEmail,
		Deleted:                 poll.Deleted,
		DeletedAt:               poll.DeletedAt,
		CreatedAt:               poll.CreatedAt,
		TouchedAt:               poll.TouchedAt,
	}
	for _, opt := range poll.Options {
		m.Options = append(m.Options, optionModelFromEntity(opt))
	}
	return m
}

type optionModel struct {
	ID              uuid.UUID `gorm:"column:id;primaryKey"`
	PollID          uuid.UUID `gorm:"column:poll_id"`
	StartTime       time.Time `gorm:"column:start_time"`
	DurationMinutes int       `gorm:"column:duration_minutes"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (optionModel) TableName() string { return "options" }

func (m optionModel) toEntity() domain.Option {
	return domain.Option{
		ID:              m.ID,
		PollID:          m.PollID,
		StartTime:       m.StartTime,
		DurationMinutes: m.DurationMinutes,
		CreatedAt:       m.CreatedAt,
	}
}

func optionModelFromEntity(opt domain.Option) optionModel {
	return optionModel{
		ID:              opt.ID,
		PollID:          opt.PollID,
		StartTime:       opt.StartTime,
		DurationMinutes: opt.DurationMinutes,
		CreatedAt:       opt.CreatedAt,
	}
}

type participantModel struct {
	ID        uuid.UUID  `gorm:"column:id;primaryKey"`
	PollID    uuid.UUID  `gorm:"column:poll_id"`
	Name      string     `gorm:"column:name"`
	Email     string     `gorm:"column:email"`
	UserID    *uuid.UUID `gorm:"column:user_id"`
	GuestID   string     `gorm:"column:guest_id"`
	CreatedAt time.Time  `gorm:"column:created_at"`

	Votes []voteModel `gorm:"foreignKey:ParticipantID"`
}

func (participantModel) TableName() string { return "participants" }

func (m participantModel) toEntity() *domain.Participant {
	participant := &domain.Participant{
		ID:        m.ID,
		PollID:    m.PollID,
		Name:      m.Name,
		Email:     m.Email,
		UserID:    m.UserID,
		GuestID:   m.GuestID,
		CreatedAt: m.CreatedAt,
	}
	for _, vote := range m.Votes {
		participant.Votes = append(participant.Votes, vote.toEntity())
	}
	return participant
}

func participantModelFromEntity(participant *domain.Participant) participantModel {
	m := participantModel{
		ID:        participant.ID,
		PollID:    participant.PollID,
		Name:      participant.Name,
		Email:     participant.Email,
		UserID:    participant.UserID,
		GuestID:   participant.GuestID,
		CreatedAt: participant.CreatedAt,
	}
	for _, vote := range participant.Votes {
		m.Votes = append(m.Votes, voteModelFromEntity(vote))
	}
	return m
}

type voteModel struct {
	ID            uuid.UUID `gorm:"column:id;primaryKey"`
	PollID        uuid.UUID `gorm:"column:poll_id"`
	OptionID      uuid.UUID `gorm:"column:option_id"`
	ParticipantID uuid.UUID `gorm:"column:participant_id"`
	ResponseType  string    `gorm:"column:response_type"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string { return "votes" }

func (m voteModel) toEntity() domain.Vote {
	return domain.Vote{
		ID:            m.ID,
		PollID:        m.PollID,
		OptionID:      m.OptionID,
		ParticipantID: m.ParticipantID,
		Type:          domain.VoteType(m.ResponseType),
		CreatedAt:     m.CreatedAt,
	}
}

func voteModelFromEntity(vote domain.Vote) voteModel {
	return voteModel{
		ID:            vote.ID,
		PollID:        vote.PollID,
		OptionID:      vote.OptionID,
		ParticipantID: vote.ParticipantID,
		ResponseType:  string(vote.Type),
		CreatedAt:     vote.CreatedAt,
	}
}

type commentModel struct {
	ID         uuid.UUID  `gorm:"column:id;primaryKey"`
	PollID     uuid.UUID  `gorm:"column:poll_id"`
	AuthorName string     `gorm:"column:author_name"`
	UserID     *uuid.UUID `gorm:"column:user_id"`
	GuestID    string     `gorm:"column:guest_id"`
	Content    string     `gorm:"column:content"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (commentModel) TableName() string { return "comments" }

func (m commentModel) toEntity() *domain.Comment {
	return &domain.Comment{
		ID:         m.ID,
		PollID:     m.PollID,
		AuthorName: m.AuthorName,
		UserID:     m.UserID,
		GuestID:    m.GuestID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

type userModel struct {
	ID                 uuid.UUID  `gorm:"column:id;primaryKey"`
	Email              string     `gorm:"column:email"`
	Name               string     `gorm:"column:name"`
	ActiveSubscription bool       `gorm:"column:active_subscription"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	DeletedAt          *time.Time `gorm:"column:deleted_at"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toEntity() *domain.User {
	return &domain.User{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		ActiveSubscription: m.ActiveSubscription,
		CreatedAt:          m.CreatedAt,
		DeletedAt:          m.DeletedAt,
	}
}

type refreshTokenModel struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	TokenHash string    `gorm:"column:token_hash"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	Revoked   bool      `gorm:"column:revoked"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (refreshTokenModel) TableName() string { return "refresh_tokens" }

func (m refreshTokenModel) toEntity() *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		Revoked:   m.Revoked,
		CreatedAt: m.CreatedAt,
	}
}

type spaceMemberModel struct {
	SpaceID   uuid.UUID `gorm:"column:space_id;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (spaceMemberModel) TableName() string { return "space_members" }
