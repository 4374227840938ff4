package routes

import (
	"net/http"

	_ "github.com/Dosada05/tournament-engine/docs"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	settingsHandler *handlers.SettingsHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/ws/tournament", webSocketHandler.ServeWs)

	executorOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(opts.JWTSecret)))
		r.Use(middleware.Authorize(middleware.RoleExecutor))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", authHandler.IssueToken)
		r.Get("/settings", settingsHandler.ListHandler)

		r.Route("/tournament", func(r chi.Router) {
			r.Get("/", tournamentHandler.SummaryHandler)
			r.Get("/matches", tournamentHandler.ScheduleHandler)
			r.Get("/matches/{index}", tournamentHandler.MatchHandler)
			r.Get("/final", tournamentHandler.FinalMatchHandler)
			r.Get("/log", tournamentHandler.LogHandler)

			r.Group(func(r chi.Router) {
				executorOnly(r)
				r.Post("/", tournamentHandler.StartHandler)
				r.Delete("/", tournamentHandler.EndHandler)
				r.Post("/matches/result", tournamentHandler.EndMatchHandler)
			})
		})
	})
}
