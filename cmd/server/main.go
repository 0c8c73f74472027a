package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/api/internal/adapters/handler/http"
	"github.com/gatherly/api/internal/adapters/oauth/google"
	"github.com/gatherly/api/internal/adapters/repository/postgres"
	"github.com/gatherly/api/internal/config"
	"github.com/gatherly/api/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Connect(cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	pollRepo := postgres.NewPollRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)
	mergeRepo := postgres.NewGuestMergeRepository(db)
	housekeepingRepo := postgres.NewHousekeepingRepository(db)

	mergeService := services.NewGuestMergeService(userRepo, mergeRepo, logger)
	pollService := services.NewPollService(pollRepo, userRepo, logger)
	responseService := services.NewResponseService(pollRepo, participantRepo, userRepo, logger)
	commentService := services.NewCommentService(commentRepo, pollRepo, userRepo, logger)
	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, authRepo, mergeService, google.NewVerifier(), cfg.JWTSecret, cfg.GoogleClientID, logger)
	housekeepingService := services.NewHousekeepingService(housekeepingRepo, services.HousekeepingConfig{
		InactivityWindow: cfg.InactivityWindow,
		PurgeGrace:       cfg.PurgeGrace,
		PurgeBatchSize:   cfg.PurgeBatchSize,
	}, logger)

	handler := http.NewHandler(
		http.RouterConfig{JWTSecret: cfg.JWTSecret, APISecret: cfg.APISecret},
		http.NewPollHandler(pollService),
		http.NewParticipantHandler(responseService),
		http.NewCommentHandler(commentService),
		http.NewHousekeepingHandler(housekeepingService),
		http.NewAuthHandler(authService, cfg.AuthRedirectURL, cfg.CookieDomain, cfg.CookieSameSite),
		http.NewUserHandler(userService),
	)
	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.HTTPPort, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
