package domain

import "github.com/google/uuid"

// Caller identifies who is performing an operation: a registered user, an
// anonymous guest, or both when a guest session is signed in. It is resolved
// once per request and passed explicitly into every service operation so the
// policy checks stay pure.
type Caller struct {
	UserID  *uuid.UUID
	GuestID string
}

func (c Caller) IsRegistered() bool {
	return c.UserID != nil
}

func (c Caller) IsAnonymous() bool {
	return c.UserID == nil && c.GuestID == ""
}
