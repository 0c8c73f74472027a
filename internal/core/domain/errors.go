package domain

import "errors"

// Not found: the target row is absent or was purged.
var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrOptionNotFound      = errors.New("option not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrUserNotFound        = errors.New("user not found")
)

// Forbidden: the caller may not perform this mutation.
var (
	ErrForbidden       = errors.New("operation not allowed for caller")
	ErrResponsesClosed = errors.New("poll is not accepting responses")
)

// Validation: the submission itself is malformed.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateOption = errors.New("duplicate option in submission")
	ErrInvalidResponse = errors.New("unknown response type")
)

// Conflict: the requested state transition is invalid.
var (
	ErrAlreadyFinalized     = errors.New("poll is already finalized")
	ErrOptionNotInPoll      = errors.New("option does not belong to this poll")
	ErrDuplicateParticipant = errors.New("user has already responded to this poll")
)
