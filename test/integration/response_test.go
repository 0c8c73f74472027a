package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/api/internal/core/domain"
)

// TestResponseFlow covers the submit/replace path: a participant's votes are
// stored atomically and a resubmission replaces the whole set.
func TestResponseFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Response Poll"), asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decode[domain.Poll](t, resp)
	optA, optB := poll.Options[0].ID, poll.Options[1].ID

	base := "/api/polls/" + poll.ID.String()

	// Submit a full response.
	resp = app.doJSON(t, "POST", base+"/participants", map[string]any{
		"name": "Ana",
		"votes": []map[string]any{
			{"option_id": optA, "type": "yes"},
			{"option_id": optB, "type": "ifNeedBe"},
		},
	}, asGuest("ana-device"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	participant := decode[domain.Participant](t, resp)
	assert.Len(t, participant.Votes, 2)

	// Replace with a single vote; the dropped option's vote disappears.
	resp = app.doJSON(t, "PUT", base+"/participants/"+participant.ID.String(), map[string]any{
		"votes": []map[string]any{
			{"option_id": optB, "type": "no"},
		},
	}, asGuest("ana-device"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	replaced := decode[domain.Participant](t, resp)
	require.Len(t, replaced.Votes, 1)
	assert.Equal(t, optB, replaced.Votes[0].OptionID)
	assert.Equal(t, domain.VoteNo, replaced.Votes[0].Type)

	var voteCount int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM votes WHERE participant_id = $1", participant.ID).Scan(&voteCount)
	require.NoError(t, err)
	assert.Equal(t, 1, voteCount)

	// Someone else cannot rewrite Ana's response.
	resp = app.doJSON(t, "PUT", base+"/participants/"+participant.ID.String(), map[string]any{
		"votes": []map[string]any{{"option_id": optA, "type": "yes"}},
	}, asGuest("mallory-device"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Scores reflect the current vote set only.
	resp = app.doJSON(t, "GET", base+"/scores", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scores := decode[map[string]domain.OptionScore](t, resp)
	assert.Equal(t, domain.OptionScore{No: 1}, scores[optB.String()])
}

func TestPausedPollRejectsResponses(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Paused Poll"), asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decode[domain.Poll](t, resp)

	base := "/api/polls/" + poll.ID.String()
	resp = app.doJSON(t, "POST", base+"/pause", nil, asGuest("creator"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	submission := map[string]any{
		"name":  "Late Larry",
		"votes": []map[string]any{{"option_id": poll.Options[0].ID, "type": "yes"}},
	}

	resp = app.doJSON(t, "POST", base+"/participants", submission, asGuest("larry"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The admin can still record a response while paused.
	resp = app.doJSON(t, "POST", base+"/participants", submission, withAdminToken("larry", poll.AdminToken))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisteredUserSingleResponse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token := app.createUserAndToken(t)

	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("One Each"), asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decode[domain.Poll](t, resp)

	asUser := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}
	submission := map[string]any{
		"name":  "Reg",
		"votes": []map[string]any{{"option_id": poll.Options[0].ID, "type": "yes"}},
	}

	base := "/api/polls/" + poll.ID.String()
	resp = app.doJSON(t, "POST", base+"/participants", submission, asUser)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The partial unique index rejects a second response row.
	resp = app.doJSON(t, "POST", base+"/participants", submission, asUser)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestHiddenParticipants(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	payload := pollPayload("Hidden Poll")
	payload["hide_participants"] = true
	resp := app.doJSON(t, "POST", "/api/polls", payload, asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decode[domain.Poll](t, resp)

	base := "/api/polls/" + poll.ID.String()
	for _, guest := range []string{"g1", "g2"} {
		resp = app.doJSON(t, "POST", base+"/participants", map[string]any{
			"name":  guest,
			"votes": []map[string]any{{"option_id": poll.Options[0].ID, "type": "yes"}},
		}, asGuest(guest))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp = app.doJSON(t, "GET", base+"/participants", nil, asGuest("g1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	visible := decode[[]domain.Participant](t, resp)
	require.Len(t, visible, 1)
	assert.Equal(t, "g1", visible[0].Name)

	resp = app.doJSON(t, "GET", base+"/participants", nil, asGuest("creator"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]domain.Participant](t, resp)
	assert.Len(t, all, 2)
}

func TestCommentFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Commented Poll"), asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	poll := decode[domain.Poll](t, resp)

	base := "/api/polls/" + poll.ID.String()
	resp = app.doJSON(t, "POST", base+"/comments", map[string]any{
		"author_name": "Ana",
		"content":     "Thursday works best for me",
	}, asGuest("ana-device"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	comment := decode[domain.Comment](t, resp)

	resp = app.doJSON(t, "GET", base+"/comments", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments := decode[[]domain.Comment](t, resp)
	require.Len(t, comments, 1)
	assert.Equal(t, comment.ID, comments[0].ID)

	// The poll admin moderates someone else's comment away.
	resp = app.doJSON(t, "DELETE", base+"/comments/"+comment.ID.String(), nil, asGuest("creator"))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "GET", base+"/comments", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments = decode[[]domain.Comment](t, resp)
	assert.Empty(t, comments)
}
