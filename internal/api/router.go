package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wakelan/wakelan/internal/auth"
	"github.com/wakelan/wakelan/internal/config"
	"github.com/wakelan/wakelan/internal/middleware"
	"github.com/wakelan/wakelan/internal/netscan"
	"github.com/wakelan/wakelan/internal/store"
	"github.com/wakelan/wakelan/internal/wol"
)

// NewRouter wires the HTTP surface. Authentication runs on everything except
// /health and the /auth routes; per-route guards enforce role and assignment
// checks on top of that.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	st store.Store,
	authService *auth.Service,
	enricher *netscan.Enricher,
	dispatcher *wol.Dispatcher,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	}

	authHandler := NewAuthHandler(authService, st, logger)
	equipoHandler := NewEquipoHandler(st, enricher, dispatcher, logger)
	adminHandler := NewAdminHandler(st, logger)
	systemHandler := NewSystemHandler(st, logger)

	requireAdmin := middleware.Authorize(auth.RequireAdmin())
	requireEquipoAccess := middleware.Authorize(auth.RequireEquipoAccess(st))

	// Public routes
	r.Get("/health", systemHandler.Health)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/register", authHandler.Register)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authService))

		r.Get("/me", systemHandler.Me)

		r.Route("/equipos", func(r chi.Router) {
			r.Get("/", equipoHandler.List)
			r.With(requireAdmin).Post("/", equipoHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(requireEquipoAccess).Get("/", equipoHandler.Get)
				r.With(requireAdmin).Put("/", equipoHandler.Update)
				r.With(requireAdmin).Delete("/", equipoHandler.Delete)
				r.With(requireEquipoAccess).Post("/encender", equipoHandler.Wake)
				r.With(requireEquipoAccess).Get("/estado", equipoHandler.Status)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Post("/assign-equipo", adminHandler.Assign)
			r.Post("/unassign-equipo", adminHandler.Unassign)
		})
	})

	return r
}
