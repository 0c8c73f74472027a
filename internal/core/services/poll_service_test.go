package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/api/internal/adapters/repository/memory"
	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

func guestCaller(id string) domain.Caller {
	return domain.Caller{GuestID: id}
}

func userCaller(id uuid.UUID) domain.Caller {
	return domain.Caller{UserID: &id}
}

func testOptions(n int) []ports.OptionInput {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	opts := make([]ports.OptionInput, 0, n)
	for i := 0; i < n; i++ {
		opts = append(opts, ports.OptionInput{
			StartTime:       base.AddDate(0, 0, i),
			DurationMinutes: 60,
		})
	}
	return opts
}

func createTestPoll(t *testing.T, svc ports.PollService, caller domain.Caller) *domain.Poll {
	t.Helper()
	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		Title:   "Team offsite",
		Options: testOptions(3),
	}, caller)
	require.NoError(t, err)
	return poll
}

func TestCreatePollValidation(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()
	owner := guestCaller("guest-1")

	tests := []struct {
		name   string
		input  ports.CreatePollInput
		caller domain.Caller
		want   error
	}{
		{
			name:   "missing title",
			input:  ports.CreatePollInput{Options: testOptions(1)},
			caller: owner,
			want:   domain.ErrInvalidInput,
		},
		{
			name:   "no options",
			input:  ports.CreatePollInput{Title: "t"},
			caller: owner,
			want:   domain.ErrInvalidInput,
		},
		{
			name:   "anonymous caller",
			input:  ports.CreatePollInput{Title: "t", Options: testOptions(1)},
			caller: domain.Caller{},
			want:   domain.ErrInvalidInput,
		},
		{
			name: "unknown time zone",
			input: ports.CreatePollInput{
				Title:    "t",
				TimeZone: "Mars/Olympus_Mons",
				Options:  testOptions(1),
			},
			caller: owner,
			want:   domain.ErrInvalidInput,
		},
		{
			name: "duplicate start times",
			input: ports.CreatePollInput{
				Title:   "t",
				Options: append(testOptions(1), testOptions(1)...),
			},
			caller: owner,
			want:   domain.ErrDuplicateOption,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input, tc.caller)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreatePollGeneratesTokens(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)

	poll := createTestPoll(t, svc, guestCaller("guest-1"))

	assert.NotEmpty(t, poll.AdminToken)
	assert.NotEmpty(t, poll.ParticipantToken)
	assert.NotEqual(t, poll.AdminToken, poll.ParticipantToken)
	assert.Equal(t, domain.StatusLive, poll.Status)
	assert.Equal(t, "guest-1", poll.OwnerGuestID)
	assert.Len(t, poll.Options, 3)
}

func TestGetPollRedactsAdminToken(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)

	// A stranger sees the poll, without the admin token.
	got, err := svc.Get(ctx, poll.ID, guestCaller("stranger"), "")
	require.NoError(t, err)
	assert.Empty(t, got.AdminToken)

	// The owner and an admin-token bearer see everything.
	got, err = svc.Get(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.Equal(t, poll.AdminToken, got.AdminToken)

	got, err = svc.Get(ctx, poll.ID, guestCaller("stranger"), poll.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, poll.AdminToken, got.AdminToken)
}

func TestGetByParticipantTokenNeverExposesAdminToken(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	poll := createTestPoll(t, svc, guestCaller("owner"))

	got, err := svc.GetByParticipantToken(ctx, poll.ParticipantToken)
	require.NoError(t, err)
	assert.Empty(t, got.AdminToken)
	assert.Equal(t, poll.ID, got.ID)

	_, err = svc.GetByParticipantToken(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestFinalizePoll(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)
	winner := poll.Options[1].ID

	finalized, err := svc.Finalize(ctx, poll.ID, winner, owner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, finalized.Status)
	require.NotNil(t, finalized.EventOptionID)
	assert.Equal(t, winner, *finalized.EventOptionID)

	// Finalizing twice conflicts, and the winner sticks.
	_, err = svc.Finalize(ctx, poll.ID, poll.Options[0].ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	got, err := svc.Get(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.Equal(t, winner, *got.EventOptionID)
}

// staleReadPolls serves a fixed snapshot from GetByID, standing in for a
// read taken before a concurrent write landed.
type staleReadPolls struct {
	ports.PollRepository
	snapshot *domain.Poll
}

func (r *staleReadPolls) GetByID(context.Context, uuid.UUID) (*domain.Poll, error) {
	cp := *r.snapshot
	return &cp, nil
}

func TestFinalizeRaceKeepsChosenOption(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)
	winner := poll.Options[0].ID

	_, err := svc.Finalize(ctx, poll.ID, winner, owner, "")
	require.NoError(t, err)

	// A second finalize acting on a pre-finalize snapshot must conflict
	// instead of swapping the option.
	staleSvc := NewPollService(&staleReadPolls{PollRepository: store.Polls(), snapshot: poll}, store.Users(), nil)
	_, err = staleSvc.Finalize(ctx, poll.ID, poll.Options[1].ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	// Same for a racing pause: it must not stomp the finalized status.
	_, err = staleSvc.Pause(ctx, poll.ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)

	got, err := svc.Get(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, got.Status)
	require.NotNil(t, got.EventOptionID)
	assert.Equal(t, winner, *got.EventOptionID)
}

func TestFinalizeRejectsForeignOption(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)
	other := createTestPoll(t, svc, owner)

	_, err := svc.Finalize(ctx, poll.ID, other.Options[0].ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrOptionNotInPoll)
}

func TestPauseAndResume(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)

	paused, err := svc.Pause(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, paused.Status)

	resumed, err := svc.Resume(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLive, resumed.Status)

	_, err = svc.Finalize(ctx, poll.ID, poll.Options[0].ID, owner, "")
	require.NoError(t, err)

	_, err = svc.Pause(ctx, poll.ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	_, err = svc.Resume(ctx, poll.ID, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestUpdatePoll(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)

	title := "Rescheduled offsite"
	hide := true
	updated, err := svc.Update(ctx, ports.UpdatePollInput{
		PollID:           poll.ID,
		Title:            &title,
		HideParticipants: &hide,
	}, owner, "")
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.HideParticipants)
	// Untouched fields survive partial updates.
	assert.Equal(t, poll.Description, updated.Description)

	_, err = svc.Update(ctx, ports.UpdatePollInput{PollID: poll.ID, Title: &title}, guestCaller("stranger"), "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Finalize(ctx, poll.ID, poll.Options[0].ID, owner, "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, ports.UpdatePollInput{PollID: poll.ID, Title: &title}, owner, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
}

func TestDeletePollHidesItFromNonAdmins(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	poll := createTestPoll(t, svc, owner)

	err := svc.Delete(ctx, poll.ID, guestCaller("stranger"), "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, poll.ID, owner, ""))

	_, err = svc.Get(ctx, poll.ID, guestCaller("stranger"), "")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	// The owner can still reach it until the purge removes it.
	got, err := svc.Get(ctx, poll.ID, owner, "")
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	_, err = svc.GetByParticipantToken(ctx, poll.ParticipantToken)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestListMine(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	owner := guestCaller("owner")
	createTestPoll(t, svc, owner)
	createTestPoll(t, svc, owner)
	createTestPoll(t, svc, guestCaller("someone-else"))

	polls, err := svc.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, polls, 2)

	polls, err = svc.ListMine(ctx, domain.Caller{})
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func TestSpaceMembershipGrantsAdmin(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	ownerID := uuid.New()
	memberID := uuid.New()
	spaceID := uuid.New()
	store.SetUser(domain.User{ID: ownerID, Email: "owner@example.com"})
	store.SetUser(domain.User{ID: memberID, Email: "member@example.com"})
	store.SetSpaceMember(spaceID, ownerID)
	store.SetSpaceMember(spaceID, memberID)

	poll, err := svc.Create(ctx, ports.CreatePollInput{
		Title:   "Sprint planning",
		Options: testOptions(2),
		SpaceID: &spaceID,
	}, userCaller(ownerID))
	require.NoError(t, err)

	// A fellow space member holds the admin capability without the token.
	got, err := svc.Get(ctx, poll.ID, userCaller(memberID), "")
	require.NoError(t, err)
	assert.Equal(t, poll.AdminToken, got.AdminToken)

	_, err = svc.Pause(ctx, poll.ID, userCaller(memberID), "")
	require.NoError(t, err)
}

func TestCreateInSpaceRequiresMembership(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store.Polls(), store.Users(), nil)
	ctx := context.Background()

	outsiderID := uuid.New()
	spaceID := uuid.New()
	store.SetUser(domain.User{ID: outsiderID, Email: "outsider@example.com"})

	_, err := svc.Create(ctx, ports.CreatePollInput{
		Title:   "t",
		Options: testOptions(1),
		SpaceID: &spaceID,
	}, userCaller(outsiderID))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Create(ctx, ports.CreatePollInput{
		Title:   "t",
		Options: testOptions(1),
		SpaceID: &spaceID,
	}, guestCaller("guest"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOptionScores(t *testing.T) {
	store := memory.NewStore()
	pollSvc := NewPollService(store.Polls(), store.Users(), nil)
	responseSvc := NewResponseService(store.Polls(), store.Participants(), store.Users(), nil)
	ctx := context.Background()

	poll := createTestPoll(t, pollSvc, guestCaller("owner"))
	optA := poll.Options[0].ID
	optB := poll.Options[1].ID

	submit := func(guest string, votes []ports.VoteSubmission) {
		t.Helper()
		_, err := responseSvc.Submit(ctx, ports.SubmitResponseInput{
			PollID: poll.ID,
			Name:   guest,
			Votes:  votes,
		}, guestCaller(guest), "")
		require.NoError(t, err)
	}

	submit("g1", []ports.VoteSubmission{
		{OptionID: optA, Type: domain.VoteYes},
		{OptionID: optB, Type: domain.VoteNo},
	})
	submit("g2", []ports.VoteSubmission{
		{OptionID: optA, Type: domain.VoteYes},
		{OptionID: optB, Type: domain.VoteIfNeedBe},
	})

	scores, err := pollSvc.OptionScores(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OptionScore{Yes: 2}, scores[optA])
	assert.Equal(t, domain.OptionScore{No: 1, IfNeedBe: 1}, scores[optB])
}
