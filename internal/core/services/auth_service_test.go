package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/api/internal/adapters/repository/memory"
	"github.com/gatherly/api/internal/core/domain"
	"github.com/gatherly/api/internal/core/ports"
)

type fakeVerifier struct {
	payload *ports.TokenPayload
	err     error
}

func (v *fakeVerifier) Verify(_ context.Context, _ string, _ string) (*ports.TokenPayload, error) {
	return v.payload, v.err
}

type fakeAuthRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeAuthRepo) StoreRefreshToken(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *fakeAuthRepo) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	cp := *token
	return &cp, nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.ID.String() == id {
			token.Revoked = true
			return nil
		}
	}
	return nil
}

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T, store *memory.Store, verifier ports.TokenVerifier) *AuthService {
	t.Helper()
	merge := NewGuestMergeService(store.Users(), store.Merge(), nil)
	return NewAuthService(store.Users(), newFakeAuthRepo(), merge, verifier, testJWTSecret, "client-id", nil)
}

func subjectOf(t *testing.T, accessToken string) string {
	t.Helper()
	token, err := jwt.Parse(accessToken, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(string)
	return sub
}

func TestLoginWithGoogleCreatesUser(t *testing.T) {
	store := memory.NewStore()
	verifier := &fakeVerifier{payload: &ports.TokenPayload{Email: "ana@example.com", Name: "Ana"}}
	svc := newAuthFixture(t, store, verifier)
	ctx := context.Background()

	accessToken, refreshToken, err := svc.LoginWithGoogle(ctx, "google-credential", "")
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	user, err := store.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, user.ID.String(), subjectOf(t, accessToken))

	// A second login reuses the account.
	accessToken, _, err = svc.LoginWithGoogle(ctx, "google-credential", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), subjectOf(t, accessToken))
}

func TestLoginWithGoogleMergesGuestData(t *testing.T) {
	store := memory.NewStore()
	polls := NewPollService(store.Polls(), store.Users(), nil)
	verifier := &fakeVerifier{payload: &ports.TokenPayload{Email: "ana@example.com", Name: "Ana"}}
	svc := newAuthFixture(t, store, verifier)
	ctx := context.Background()

	guest := guestCaller("device-1")
	poll := createTestPoll(t, polls, guest)

	_, _, err := svc.LoginWithGoogle(ctx, "google-credential", "device-1")
	require.NoError(t, err)

	user, err := store.Users().GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	got, err := polls.Get(ctx, poll.ID, userCaller(user.ID), "")
	require.NoError(t, err)
	require.NotNil(t, got.OwnerUserID)
	assert.Equal(t, user.ID, *got.OwnerUserID)
}

func TestLoginWithGoogleRejectsBadToken(t *testing.T) {
	store := memory.NewStore()
	verifier := &fakeVerifier{err: errors.New("token expired")}
	svc := newAuthFixture(t, store, verifier)

	_, _, err := svc.LoginWithGoogle(context.Background(), "bad", "")
	assert.Error(t, err)
}

func TestRefreshAccessToken(t *testing.T) {
	store := memory.NewStore()
	verifier := &fakeVerifier{payload: &ports.TokenPayload{Email: "ana@example.com", Name: "Ana"}}
	svc := newAuthFixture(t, store, verifier)
	ctx := context.Background()

	_, refreshToken, err := svc.LoginWithGoogle(ctx, "google-credential", "")
	require.NoError(t, err)

	accessToken, returnedRefresh, err := svc.RefreshAccessToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.Equal(t, refreshToken, returnedRefresh)

	_, _, err = svc.RefreshAccessToken(ctx, "unknown-token")
	assert.Error(t, err)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	store := memory.NewStore()
	verifier := &fakeVerifier{payload: &ports.TokenPayload{Email: "ana@example.com", Name: "Ana"}}
	svc := newAuthFixture(t, store, verifier)
	ctx := context.Background()

	_, refreshToken, err := svc.LoginWithGoogle(ctx, "google-credential", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, refreshToken))

	_, _, err = svc.RefreshAccessToken(ctx, refreshToken)
	assert.Error(t, err)

	// Logging out an unknown token is a no-op.
	assert.NoError(t, svc.Logout(ctx, "unknown-token"))
}
