package routes

import (
	"github.com/arenaforge/tournament-engine/handlers"
	"github.com/arenaforge/tournament-engine/middleware"
	"github.com/arenaforge/tournament-engine/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournamentHandler)
		r.Get("/{tournamentID}/ws", webSocketHandler.ServeWs)

		// Management operations: host of the tournament or admin. The
		// per-tournament ownership check lives in the services.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))
			r.Use(middleware.RequireRoles(models.UserRoleHost, models.UserRoleAdmin))

			r.Post("/{tournamentID}/bracket", tournamentHandler.GenerateBracketHandler)
			r.Post("/{tournamentID}/complete", tournamentHandler.CompleteHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))
			r.Use(middleware.RequireRoles(models.UserRoleHost, models.UserRoleAdmin))

			r.Post("/{matchID}/result", matchHandler.SubmitResultHandler)
			r.Post("/{matchID}/proof", matchHandler.UploadProofHandler)
		})
	})
}
