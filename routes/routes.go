package routes

import (
	"github.com/fieldline/stage-system/handlers"
	"github.com/fieldline/stage-system/middleware"
	"github.com/fieldline/stage-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Team        *handlers.TeamHandler
	Stage       *handlers.StageHandler
	Match       *handlers.MatchHandler
	Leaderboard *handlers.LeaderboardHandler
	WebSocket   *handlers.WebSocketHandler
}

func New(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	organizerOnly := middleware.Authorize(models.RoleOrganizer)
	scoreAccess := middleware.Authorize(models.RoleOrganizer, models.RoleScorer)

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.List)
		r.Get("/{teamID}", h.Team.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Team.Create)
			r.Delete("/{teamID}", h.Team.Delete)
			r.Put("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/", h.Stage.List)
		r.Get("/{stageID}", h.Stage.Get)
		r.Get("/{stageID}/matches", h.Match.ListByStage)
		r.Get("/{stageID}/leaderboard", h.Leaderboard.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, organizerOnly)
			r.Post("/", h.Stage.Create)
			r.Delete("/{stageID}", h.Stage.Delete)
			r.Put("/{stageID}/teams", h.Stage.AssignTeams)
			r.Post("/{stageID}/matches/generate", h.Stage.GenerateMatches)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, scoreAccess)
			r.Post("/{matchID}/result", h.Match.SubmitResult)
		})
	})

	router.Get("/ws/stages/{stageID}", h.WebSocket.ServeStage)

	return router
}
