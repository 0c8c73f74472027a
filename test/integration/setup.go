package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/gatherly/api/internal/adapters/handler/http"
	repo "github.com/gatherly/api/internal/adapters/repository/postgres"
	"github.com/gatherly/api/internal/core/ports"
	"github.com/gatherly/api/internal/core/services"
)

const (
	testJWTSecret   = "test-secret"
	testAPISecret   = "test-api-secret"
	testRedirectURL = "https://example.com/polls"
)

// MockVerifier stands in for Google token validation.
type MockVerifier struct {
	email string
	name  string
}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "valid_token" {
		return &ports.TokenPayload{Email: v.email, Name: v.name}, nil
	}
	return nil, fmt.Errorf("invalid credential")
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

type TestApp struct {
	DB              *sql.DB
	Server          *httptest.Server
	Client          *http.Client
	HousekeepingSvc ports.HousekeepingService
	DBContainer     testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	gormDB, err := repo.Connect(dbURL)
	require.NoError(t, err)

	pollRepo := repo.NewPollRepository(gormDB)
	participantRepo := repo.NewParticipantRepository(gormDB)
	commentRepo := repo.NewCommentRepository(gormDB)
	userRepo := repo.NewUserRepository(gormDB)
	authRepo := repo.NewAuthRepository(gormDB)
	mergeRepo := repo.NewGuestMergeRepository(gormDB)
	housekeepingRepo := repo.NewHousekeepingRepository(gormDB)

	mergeSvc := services.NewGuestMergeService(userRepo, mergeRepo, nil)
	pollSvc := services.NewPollService(pollRepo, userRepo, nil)
	responseSvc := services.NewResponseService(pollRepo, participantRepo, userRepo, nil)
	commentSvc := services.NewCommentService(commentRepo, pollRepo, userRepo, nil)
	userSvc := services.NewUserService(userRepo)
	verifier := &MockVerifier{email: "test@example.com", name: "Test User"}
	authSvc := services.NewAuthService(userRepo, authRepo, mergeSvc, verifier, testJWTSecret, "client-id", nil)
	housekeepingSvc := services.NewHousekeepingService(housekeepingRepo, services.HousekeepingConfig{
		InactivityWindow: 30 * 24 * time.Hour,
		PurgeGrace:       30 * 24 * time.Hour,
		PurgeBatchSize:   2,
	}, nil)

	router := handler.NewHandler(
		handler.RouterConfig{JWTSecret: testJWTSecret, APISecret: testAPISecret},
		handler.NewPollHandler(pollSvc),
		handler.NewParticipantHandler(responseSvc),
		handler.NewCommentHandler(commentSvc),
		handler.NewHousekeepingHandler(housekeepingSvc),
		handler.NewAuthHandler(authSvc, testRedirectURL, "", http.SameSiteLaxMode),
		handler.NewUserHandler(userSvc),
	)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:              db,
		Server:          server,
		Client:          server.Client(),
		HousekeepingSvc: housekeepingSvc,
		DBContainer:     dbContainer,
	}
}

func (app *TestApp) createUserAndToken(t *testing.T) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := app.DB.Exec("INSERT INTO users (id, email, name) VALUES ($1, $2, $3)", userID, email, name)
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return userID, signedToken
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
