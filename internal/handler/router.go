package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ocanamx/salud-rural/backend/internal/handler/chat"
	historyHandler "github.com/ocanamx/salud-rural/backend/internal/handler/history"
	sessionHandler "github.com/ocanamx/salud-rural/backend/internal/handler/session"
	middlewarePkg "github.com/ocanamx/salud-rural/backend/internal/middleware"
	agentService "github.com/ocanamx/salud-rural/backend/internal/service/agent"
	historyService "github.com/ocanamx/salud-rural/backend/internal/service/history"
	sessionService "github.com/ocanamx/salud-rural/backend/internal/service/session"
	"github.com/ocanamx/salud-rural/backend/internal/service/tools"
	"github.com/ocanamx/salud-rural/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *sessionService.Service, agent *agentService.Service, store historyService.Store, images *tools.ImageDelivery) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessHandler := sessionHandler.New(sessions, store)
	chatHandler := chat.New(agent, sessions, images)
	histHandler := historyHandler.New(sessions, store)
	wsHandler := chat.NewWebSocketHandler(agent, sessions)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"service": "salud-rural",
			})
		})

		sessHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		histHandler.RegisterRoutes(api)
		wsHandler.RegisterWebSocketRoutes(api)
	})

	return r
}
