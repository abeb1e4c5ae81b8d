package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/perkhub/perkhub/internal/api/auth"
	"github.com/perkhub/perkhub/internal/api/points"
	"github.com/perkhub/perkhub/internal/api/scores"
	"github.com/perkhub/perkhub/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler   *auth.Handler
	UserHandler   *user.Handler
	PointsHandler *points.Handler
	ScoresHandler *scores.Handler

	// Authenticate validates the bearer token and stores the user in context;
	// RequireActive rejects deactivated users afterwards.
	Authenticate  func(http.Handler) http.Handler
	RequireActive func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://localhost:5173", "http://localhost"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Public routes: token endpoint and registration.
	r.Group(func(r chi.Router) {
		r.Post("/auth/token", cfg.AuthHandler.Login)
		r.Post("/user/create", cfg.UserHandler.CreateUser)
	})

	// Everything else requires an authenticated, active user.
	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticate)
		r.Use(cfg.RequireActive)

		r.Get("/user/all", cfg.UserHandler.GetUsers)

		r.Route("/data", func(r chi.Router) {
			r.Get("/total_score/get", cfg.ScoresHandler.Leaderboard)
			r.Get("/total_score/{userID}/get", cfg.ScoresHandler.TotalScore)
			r.Get("/tracking/{userID}/get", cfg.PointsHandler.UserActivities)
			r.Get("/tracking/{userID}/aggregate", cfg.ScoresHandler.DailyScores)
			r.Get("/{table}/all", cfg.PointsHandler.ListByKind)

			r.Post("/reward/add", cfg.PointsHandler.CreateReward)
			r.Post("/activity/add", cfg.PointsHandler.CreateActivity)
			r.Post("/tracking/add", cfg.PointsHandler.CreateTracking)

			r.Patch("/reward/{id}/update", cfg.PointsHandler.UpdateReward)
			r.Patch("/activity/{id}/update", cfg.PointsHandler.UpdateActivity)

			r.Delete("/{table}/{id}/delete", cfg.PointsHandler.Delete)
		})
	})

	return r
}
