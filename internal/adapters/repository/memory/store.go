// Package memory provides mutex-guarded in-memory implementations of the
// repository ports, used by service unit tests. A single Store holds the
// data; the per-port views returned by its accessors share it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type Store struct {
	mu sync.RWMutex

	polls        map[uuid.UUID]*domain.Poll
	participants map[uuid.UUID]*domain.Participant
	comments     map[uuid.UUID]*domain.Comment
	users        map[uuid.UUID]*domain.User
	spaceMembers map[uuid.UUID]map[uuid.UUID]bool
}

func NewStore() *Store {
	return &Store{
		polls:        make(map[uuid.UUID]*domain.Poll),
		participants: make(map[uuid.UUID]*domain.Participant),
		comments:     make(map[uuid.UUID]*domain.Comment),
		users:        make(map[uuid.UUID]*domain.User),
		spaceMembers: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *Store) Polls() ports.PollRepository                { return &pollRepo{s} }
func (s *Store) Participants() ports.ParticipantRepository  { return &participantRepo{s} }
func (s *Store) Comments() ports.CommentRepository          { return &commentRepo{s} }
func (s *Store) Users() ports.UserRepository                { return &userRepo{s} }
func (s *Store) Merge() ports.GuestMergeRepository          { return &mergeRepo{s} }
func (s *Store) Housekeeping() ports.HousekeepingRepository { return &housekeepingRepo{s} }

// SetUser seeds a user row for tests.
func (s *Store) SetUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := user
	s.users[user.ID] = &cp
}

// SetSpaceMember seeds a space membership for tests.
func (s *Store) SetSpaceMember(spaceID, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spaceMembers[spaceID] == nil {
		s.spaceMembers[spaceID] = make(map[uuid.UUID]bool)
	}
	s.spaceMembers[spaceID][userID] = true
}

func clonePoll(p *domain.Poll) *domain.Poll {
	cp := *p
	cp.Options = append([]domain.Option(nil), p.Options...)
	return &cp
}

func cloneParticipant(p *domain.Participant) *domain.Participant {
	cp := *p
	cp.Votes = append([]domain.Vote(nil), p.Votes...)
	return &cp
}

type pollRepo struct{ s *Store }

func (r *pollRepo) Create(_ context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (r *pollRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (r *pollRepo) GetByAdminToken(_ context.Context, token string) (*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, poll := range r.s.polls {
		if poll.AdminToken == token {
			return clonePoll(poll), nil
		}
	}
	return nil, domain.ErrPollNotFound
}

func (r *pollRepo) GetByParticipantToken(_ context.Context, token string) (*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, poll := range r.s.polls {
		if poll.ParticipantToken == token {
			return clonePoll(poll), nil
		}
	}
	return nil, domain.ErrPollNotFound
}

func (r *pollRepo) ListByOwner(_ context.Context, owner domain.Caller) ([]*domain.Poll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Poll
	for _, poll := range r.s.polls {
		if poll.Deleted {
			continue
		}
		if poll.IsOwner(owner) {
			out = append(out, clonePoll(poll))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TouchedAt.After(out[j].TouchedAt) })
	return out, nil
}

func (r *pollRepo) UpdateDetails(_ context.Context, poll *domain.Poll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.polls[poll.ID]
	if !ok {
		return domain.ErrPollNotFound
	}
	existing.Title = poll.Title
	existing.Description = poll.Description
	existing.Location = poll.Location
	existing.TimeZone = poll.TimeZone
	existing.HideParticipants = poll.HideParticipants
	existing.RequireParticipantEmail = poll.RequireParticipantEmail
	existing.TouchedAt = poll.TouchedAt
	return nil
}

func (r *pollRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.PollStatus, eventOptionID *uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	if poll.Status == domain.StatusFinalized {
		return domain.ErrAlreadyFinalized
	}
	poll.Status = status
	if eventOptionID != nil {
		optionID := *eventOptionID
		poll.EventOptionID = &optionID
	}
	poll.TouchedAt = at
	return nil
}

func (r *pollRepo) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	if !poll.Deleted {
		poll.Deleted = true
		deletedAt := at
		poll.DeletedAt = &deletedAt
	}
	return nil
}

func (r *pollRepo) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	poll, ok := r.s.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	poll.TouchedAt = at
	return nil
}

func (r *pollRepo) OptionScores(_ context.Context, pollID uuid.UUID) (map[uuid.UUID]domain.OptionScore, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	scores := make(map[uuid.UUID]domain.OptionScore)
	for _, participant := range r.s.participants {
		if participant.PollID != pollID {
			continue
		}
		for _, vote := range participant.Votes {
			score := scores[vote.OptionID]
			switch vote.Type {
			case domain.VoteYes:
				score.Yes++
			case domain.VoteIfNeedBe:
				score.IfNeedBe++
			case domain.VoteNo:
				score.No++
			}
			scores[vote.OptionID] = score
		}
	}
	return scores, nil
}

type participantRepo struct{ s *Store }

func (r *participantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	participant, ok := r.s.participants[id]
	if !ok {
		return nil, domain.ErrParticipantNotFound
	}
	return cloneParticipant(participant), nil
}

func (r *participantRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Participant
	for _, participant := range r.s.participants {
		if participant.PollID == pollID {
			out = append(out, cloneParticipant(participant))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *participantRepo) CreateWithVotes(_ context.Context, participant *domain.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if participant.UserID != nil {
		for _, existing := range r.s.participants {
			if existing.PollID == participant.PollID &&
				existing.UserID != nil && *existing.UserID == *participant.UserID {
				return domain.ErrDuplicateParticipant
			}
		}
	}
	r.s.participants[participant.ID] = cloneParticipant(participant)
	return nil
}

func (r *participantRepo) ReplaceVotes(_ context.Context, participantID uuid.UUID, votes []domain.Vote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	participant, ok := r.s.participants[participantID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	participant.Votes = append([]domain.Vote(nil), votes...)
	return nil
}

func (r *participantRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.participants[id]; !ok {
		return domain.ErrParticipantNotFound
	}
	delete(r.s.participants, id)
	return nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *comment
	r.s.comments[comment.ID] = &cp
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	cp := *comment
	return &cp, nil
}

func (r *commentRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*domain.Comment
	for _, comment := range r.s.comments {
		if comment.PollID == pollID {
			cp := *comment
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *commentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email && user.DeletedAt == nil {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	user, ok := r.s.users[uid]
	if !ok || user.DeletedAt != nil {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) IsSpaceMember(_ context.Context, spaceID, userID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.spaceMembers[spaceID][userID], nil
}

type mergeRepo struct{ s *Store }

func (r *mergeRepo) ReassignGuests(_ context.Context, userID uuid.UUID, guestIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	guests := make(map[string]bool, len(guestIDs))
	for _, id := range guestIDs {
		guests[id] = true
	}
	uid := userID

	for _, poll := range r.s.polls {
		if guests[poll.OwnerGuestID] {
			poll.OwnerUserID = &uid
			poll.OwnerGuestID = ""
		}
	}
	// Polls where the user already responded; guest rows there stay
	// guest-owned, mirroring the one-response-per-user guard in the SQL
	// store.
	taken := make(map[uuid.UUID]bool)
	for _, participant := range r.s.participants {
		if participant.UserID != nil && *participant.UserID == userID {
			taken[participant.PollID] = true
		}
	}
	for _, participant := range r.s.participants {
		if guests[participant.GuestID] && !taken[participant.PollID] {
			participant.UserID = &uid
			participant.GuestID = ""
		}
	}
	for _, comment := range r.s.comments {
		if guests[comment.GuestID] {
			comment.UserID = &uid
			comment.GuestID = ""
		}
	}
	return nil
}

type housekeepingRepo struct{ s *Store }

func (r *housekeepingRepo) SoftDeleteInactive(_ context.Context, cutoff, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var marked int64
	for _, poll := range r.s.polls {
		if poll.Deleted || !poll.TouchedAt.Before(cutoff) {
			continue
		}
		if poll.HasFutureOption(now) {
			continue
		}
		if poll.OwnerUserID != nil {
			if user, ok := r.s.users[*poll.OwnerUserID]; ok && user.ActiveSubscription {
				continue
			}
		}
		poll.Deleted = true
		deletedAt := now
		poll.DeletedAt = &deletedAt
		marked++
	}
	return marked, nil
}

func (r *housekeepingRepo) PurgeDeleted(_ context.Context, cutoff time.Time, batchSize int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var purged int64
	for id, poll := range r.s.polls {
		if purged >= int64(batchSize) {
			break
		}
		if !poll.Deleted || poll.DeletedAt == nil || !poll.DeletedAt.Before(cutoff) {
			continue
		}
		for pid, participant := range r.s.participants {
			if participant.PollID == id {
				delete(r.s.participants, pid)
			}
		}
		for cid, comment := range r.s.comments {
			if comment.PollID == id {
				delete(r.s.comments, cid)
			}
		}
		delete(r.s.polls, id)
		purged++
	}
	return purged, nil
}
