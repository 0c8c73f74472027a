package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/api/internal/core/domain"
)

func (app *TestApp) doJSON(t *testing.T, method, path string, payload any, decorate func(*http.Request)) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, app.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

func asGuest(guestID string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("X-Guest-ID", guestID)
	}
}

func withAdminToken(guestID, token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("X-Guest-ID", guestID)
		req.Header.Set("X-Admin-Token", token)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func pollPayload(title string) map[string]any {
	base := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	return map[string]any{
		"title":       title,
		"description": "integration test poll",
		"options": []map[string]any{
			{"start_time": base, "duration_minutes": 60},
			{"start_time": base.AddDate(0, 0, 1), "duration_minutes": 60},
		},
	}
}

// TestPollLifecycleFlow drives a poll from creation through finalization
// over the HTTP surface.
func TestPollLifecycleFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// Create as a guest.
	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Lifecycle Poll"), asGuest("creator-device"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Poll](t, resp)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.NotEmpty(t, created.AdminToken)
	assert.NotEmpty(t, created.ParticipantToken)
	assert.Equal(t, domain.StatusLive, created.Status)
	require.Len(t, created.Options, 2)

	// A stranger fetching by id never sees the admin token.
	resp = app.doJSON(t, "GET", "/api/polls/"+created.ID.String(), nil, asGuest("stranger"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[domain.Poll](t, resp)
	assert.Empty(t, fetched.AdminToken)
	assert.Equal(t, created.ID, fetched.ID)

	// The shareable participant link resolves the same poll.
	resp = app.doJSON(t, "GET", "/api/polls/p/"+created.ParticipantToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	byToken := decode[domain.Poll](t, resp)
	assert.Equal(t, created.ID, byToken.ID)
	assert.Empty(t, byToken.AdminToken)

	// The owner updates details.
	resp = app.doJSON(t, "PATCH", "/api/polls/"+created.ID.String(),
		map[string]any{"title": "Lifecycle Poll v2"}, asGuest("creator-device"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[domain.Poll](t, resp)
	assert.Equal(t, "Lifecycle Poll v2", updated.Title)

	// A stranger cannot; with the admin token they can.
	resp = app.doJSON(t, "PATCH", "/api/polls/"+created.ID.String(),
		map[string]any{"title": "hijacked"}, asGuest("stranger"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "POST", "/api/polls/"+created.ID.String()+"/pause", nil,
		withAdminToken("stranger", created.AdminToken))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paused := decode[domain.Poll](t, resp)
	assert.Equal(t, domain.StatusPaused, paused.Status)

	resp = app.doJSON(t, "POST", "/api/polls/"+created.ID.String()+"/resume", nil, asGuest("creator-device"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Finalize on the second option.
	winner := created.Options[1].ID
	resp = app.doJSON(t, "POST", "/api/polls/"+created.ID.String()+"/finalize",
		map[string]any{"option_id": winner}, asGuest("creator-device"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	finalized := decode[domain.Poll](t, resp)
	assert.Equal(t, domain.StatusFinalized, finalized.Status)
	require.NotNil(t, finalized.EventOptionID)
	assert.Equal(t, winner, *finalized.EventOptionID)

	// Finalizing again conflicts.
	resp = app.doJSON(t, "POST", "/api/polls/"+created.ID.String()+"/finalize",
		map[string]any{"option_id": created.Options[0].ID}, asGuest("creator-device"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// The status change is durable.
	var status string
	err := app.DB.QueryRow("SELECT status FROM polls WHERE id = $1", created.ID).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "finalized", status)
}

func TestDeletePollFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Doomed Poll"), asGuest("creator"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[domain.Poll](t, resp)

	resp = app.doJSON(t, "DELETE", "/api/polls/"+created.ID.String(), nil, asGuest("creator"))
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Hidden from strangers, still reachable for the owner.
	resp = app.doJSON(t, "GET", "/api/polls/"+created.ID.String(), nil, asGuest("stranger"))
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "GET", "/api/polls/"+created.ID.String(), nil, asGuest("creator"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stillThere := decode[domain.Poll](t, resp)
	assert.True(t, stillThere.Deleted)

	// The row survives in the database until the purge.
	var deleted bool
	err := app.DB.QueryRow("SELECT deleted FROM polls WHERE id = $1", created.ID).Scan(&deleted)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestListMinePolls(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	for i := 0; i < 3; i++ {
		resp := app.doJSON(t, "POST", "/api/polls", pollPayload(fmt.Sprintf("Mine %d", i)), asGuest("creator"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
	resp := app.doJSON(t, "POST", "/api/polls", pollPayload("Not mine"), asGuest("someone-else"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.doJSON(t, "GET", "/api/polls", nil, asGuest("creator"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decode[[]domain.Poll](t, resp)
	assert.Len(t, mine, 3)
}
