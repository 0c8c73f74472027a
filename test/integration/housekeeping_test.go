package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepResult struct {
	Affected int64 `json:"affected"`
}

func withAPISecret(secret string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
}

func (app *TestApp) seedPollRow(t *testing.T, touchedAt time.Time, deleted bool, deletedAt *time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := app.DB.Exec(`
		INSERT INTO polls (id, admin_token, participant_token, title, owner_guest_id, touched_at, deleted, deleted_at)
		VALUES ($1, $2, $3, 'seeded', $4, $5, $6, $7)
	`, id, uuid.NewString(), uuid.NewString(), uuid.NewString(), touchedAt, deleted, deletedAt)
	require.NoError(t, err)
	return id
}

func TestHousekeepingEndpointsRequireSecret(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	for _, path := range []string{"/api/housekeeping/soft-delete", "/api/housekeeping/purge"} {
		resp := app.doJSON(t, "POST", path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()

		resp = app.doJSON(t, "POST", path, nil, withAPISecret("wrong-secret"))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestInactivitySweep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	stale := time.Now().UTC().Add(-40 * 24 * time.Hour)
	staleID := app.seedPollRow(t, stale, false, nil)
	freshID := app.seedPollRow(t, time.Now().UTC(), false, nil)

	// A stale poll with an upcoming option must survive the sweep.
	upcomingID := app.seedPollRow(t, stale, false, nil)
	_, err := app.DB.Exec(`
		INSERT INTO options (id, poll_id, start_time, duration_minutes)
		VALUES ($1, $2, $3, 60)
	`, uuid.New(), upcomingID, time.Now().UTC().Add(48*time.Hour))
	require.NoError(t, err)

	// So must a stale poll owned by a subscriber.
	subscriberID := uuid.New()
	_, err = app.DB.Exec(`
		INSERT INTO users (id, email, name, active_subscription)
		VALUES ($1, 'pro@example.com', 'Pro', TRUE)
	`, subscriberID)
	require.NoError(t, err)
	subscribedID := uuid.New()
	_, err = app.DB.Exec(`
		INSERT INTO polls (id, admin_token, participant_token, title, owner_user_id, touched_at)
		VALUES ($1, $2, $3, 'seeded', $4, $5)
	`, subscribedID, uuid.NewString(), uuid.NewString(), subscriberID, stale)
	require.NoError(t, err)

	resp := app.doJSON(t, "POST", "/api/housekeeping/soft-delete", nil, withAPISecret(testAPISecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[sweepResult](t, resp)
	assert.Equal(t, int64(1), result.Affected)

	assertDeleted := func(id uuid.UUID, want bool) {
		t.Helper()
		var deleted bool
		require.NoError(t, app.DB.QueryRow("SELECT deleted FROM polls WHERE id = $1", id).Scan(&deleted))
		assert.Equal(t, want, deleted)
	}
	assertDeleted(staleID, true)
	assertDeleted(freshID, false)
	assertDeleted(upcomingID, false)
	assertDeleted(subscribedID, false)
}

func TestPurgeSweep(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	expired := time.Now().UTC().Add(-40 * 24 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)

	// Five expired rows against a batch size of two exercises the loop.
	var expiredIDs []uuid.UUID
	for i := 0; i < 5; i++ {
		expiredIDs = append(expiredIDs, app.seedPollRow(t, expired, true, &expired))
	}
	gracedID := app.seedPollRow(t, recent, true, &recent)

	// Child rows must go with the poll.
	participantID := uuid.New()
	_, err := app.DB.Exec(`
		INSERT INTO participants (id, poll_id, name, guest_id) VALUES ($1, $2, 'Ana', 'g1')
	`, participantID, expiredIDs[0])
	require.NoError(t, err)

	resp := app.doJSON(t, "POST", "/api/housekeeping/purge", nil, withAPISecret(testAPISecret))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[sweepResult](t, resp)
	assert.Equal(t, int64(5), result.Affected)

	var remaining int
	require.NoError(t, app.DB.QueryRow("SELECT COUNT(*) FROM polls WHERE deleted = TRUE").Scan(&remaining))
	assert.Equal(t, 1, remaining)

	var exists bool
	require.NoError(t, app.DB.QueryRow("SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1)", gracedID).Scan(&exists))
	assert.True(t, exists)

	require.NoError(t, app.DB.QueryRow("SELECT EXISTS (SELECT 1 FROM participants WHERE id = $1)", participantID).Scan(&exists))
	assert.False(t, exists, "participants should cascade with the purged poll")
}
