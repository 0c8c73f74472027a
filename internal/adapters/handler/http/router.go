package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	JWTSecret string
	APISecret string
}

func NewHandler(
	cfg RouterConfig,
	pollHandler *PollHandler,
	participantHandler *ParticipantHandler,
	commentHandler *CommentHandler,
	housekeepingHandler *HousekeepingHandler,
	authHandler *AuthHandler,
	userHandler *UserHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/google/callback", authHandler.GoogleCallback)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(CallerContext(cfg.JWTSecret))

		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/", pollHandler.ListMine)
			r.Get("/admin/{adminToken}", pollHandler.GetByAdminToken)
			r.Get("/p/{participantToken}", pollHandler.GetByParticipantToken)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", pollHandler.GetPoll)
				r.Patch("/", pollHandler.UpdatePoll)
				r.Delete("/", pollHandler.DeletePoll)
				r.Post("/finalize", pollHandler.FinalizePoll)
				r.Post("/pause", pollHandler.PausePoll)
				r.Post("/resume", pollHandler.ResumePoll)
				r.Get("/scores", pollHandler.GetScores)

				r.Route("/participants", func(r chi.Router) {
					r.Get("/", participantHandler.ListParticipants)
					r.Post("/", participantHandler.SubmitResponse)
					r.Put("/{participantID}", participantHandler.UpdateResponse)
					r.Delete("/{participantID}", participantHandler.DeleteParticipant)
				})

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", commentHandler.ListComments)
					r.Post("/", commentHandler.AddComment)
					r.Delete("/{commentID}", commentHandler.DeleteComment)
				})
			})
		})

		r.With(RequireUser).Get("/users/me", userHandler.GetMe)

		r.Route("/housekeeping", func(r chi.Router) {
			r.Use(RequireAPISecret(cfg.APISecret))
			r.Post("/soft-delete", housekeepingHandler.SoftDeleteInactive)
			r.Post("/purge", housekeepingHandler.Purge)
		})
	})

	return r
}
