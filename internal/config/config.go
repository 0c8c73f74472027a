// Package config loads centralized process configuration from the
// environment. Infra values live here; builders receive typed config.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	PostgresDSN string

	JWTSecret      string
	GoogleClientID string
	APISecret      string

	AuthRedirectURL string
	CookieDomain    string
	CookieSameSite  http.SameSite

	InactivityWindow time.Duration
	PurgeGrace       time.Duration
	PurgeBatchSize   int
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	redirect := os.Getenv("AUTH_REDIRECT_URL")
	if redirect == "" {
		redirect = "/"
	}

	return Config{
		HTTPPort:    port,
		PostgresDSN: dsn,

		JWTSecret:      jwtSecret,
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		APISecret:      os.Getenv("API_SECRET"),

		AuthRedirectURL: redirect,
		CookieDomain:    os.Getenv("COOKIE_DOMAIN"),
		CookieSameSite:  sameSite(os.Getenv("COOKIE_SAME_SITE")),

		InactivityWindow: envDuration("INACTIVITY_WINDOW", 30*24*time.Hour),
		PurgeGrace:       envDuration("PURGE_GRACE", 30*24*time.Hour),
		PurgeBatchSize:   envInt("PURGE_BATCH_SIZE", 300),
	}, nil
}

func sameSite(raw string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
