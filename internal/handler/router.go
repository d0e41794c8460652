package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/talker-manager/backend/internal/config"
	"github.com/zhouzirui/talker-manager/backend/internal/handler/feed"
	"github.com/zhouzirui/talker-manager/backend/internal/handler/login"
	"github.com/zhouzirui/talker-manager/backend/internal/handler/talker"
	middlewarePkg "github.com/zhouzirui/talker-manager/backend/internal/middleware"
	"github.com/zhouzirui/talker-manager/backend/internal/service/events"
	talkerService "github.com/zhouzirui/talker-manager/backend/internal/service/talker"
	"github.com/zhouzirui/talker-manager/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, talkerSvc *talkerService.Service, hub *events.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.Server.CORSOrigin))

	gate := middlewarePkg.TokenGate(cfg.Auth.Token)

	loginHandler := login.New(cfg.Auth.Token)
	talkerHandler := talker.New(talkerSvc, gate)
	feedHandler := feed.New(hub)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	loginHandler.RegisterRoutes(r)

	r.Route("/talker", func(tr chi.Router) {
		feedHandler.RegisterRoutes(tr)
		talkerHandler.RegisterRoutes(tr)
	})

	return r
}
