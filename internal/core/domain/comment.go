package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a free-form remark on a poll, by a registered user or a guest.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	PollID     uuid.UUID  `json:"poll_id"`
	AuthorName string     `json:"author_name"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	GuestID    string     `json:"guest_id,omitempty"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Comment) IsAuthoredBy(caller Caller) bool {
	if c.UserID != nil && caller.UserID != nil && *c.UserID == *caller.UserID {
		return true
	}
	return c.GuestID != "" && c.GuestID == caller.GuestID
}
