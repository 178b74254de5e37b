package routes

import (
	"github.com/CharfiNour/enstarobots-server/handlers"
	"github.com/CharfiNour/enstarobots-server/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Config struct {
	JWTSecretKey string
	JuryCodeHash string
}

func SetupRoutes(
	router *chi.Mux,
	cfg Config,
	scoreHandler *handlers.ScoreHandler,
	competitionHandler *handlers.CompetitionHandler,
	liveHandler *handlers.LiveHandler,
	drawHandler *handlers.DrawHandler,
	stateHandler *handlers.StateHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Jury-Code"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	jury := middleware.JuryAccess(cfg.JWTSecretKey, cfg.JuryCodeHash)
	admin := func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecretKey))
		r.Use(middleware.Authorize(middleware.RoleAdmin))
	}

	// Spectator-facing reads.
	router.Get("/categories", competitionHandler.ListCategories)
	router.Get("/teams", teamHandler.List)
	router.Get("/teams/{id}", teamHandler.Get)
	router.Get("/public/scores", scoreHandler.ListPublic)
	router.Get("/competitions/{category}/groups", competitionHandler.Groups)
	router.Get("/competitions/{category}/phase-progress", competitionHandler.PhaseProgress)
	router.Get("/competitions/{category}/phase-accessible", competitionHandler.PhaseAccessible)
	router.Get("/live", liveHandler.GetAll)
	router.Get("/live/{category}", liveHandler.Get)
	router.Get("/state", stateHandler.Get)

	// Jury devices: scoring and live-session control.
	router.Group(func(r chi.Router) {
		r.Use(jury)
		r.Get("/scores", scoreHandler.List)
		r.Post("/scores", scoreHandler.Submit)
		r.Post("/live/{category}/start", liveHandler.Start)
		r.Post("/live/{category}/end", liveHandler.End)
		r.Post("/live/refresh", liveHandler.Refresh)
	})

	// Admin console.
	router.Group(func(r chi.Router) {
		admin(r)
		r.Delete("/scores", scoreHandler.Delete)
		r.Post("/competitions/{category}/draw/plan", drawHandler.Plan)
		r.Post("/competitions/{category}/draw/execute", drawHandler.Execute)
		r.Post("/state/profiles-locked", stateHandler.SetProfilesLocked)
		r.Post("/state/event-day", stateHandler.SetEventDayStarted)
		r.Post("/state/ordered", stateHandler.SetOrdered)
		r.Post("/state/mirror", stateHandler.Mirror)
	})

	// Realtime.
	router.Get("/ws", webSocketHandler.ServeGlobal)
	router.Get("/ws/{category}", webSocketHandler.ServeCategory)
}
