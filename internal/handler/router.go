/*
Package handler provides the HTTP handlers and routing setup for the presence hub.

This file defines the main Router, applying middleware like logging, CORS and
IP-based rate limiting before delegating requests to the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/pow"
)

// Router sets up the HTTP routing table for the application.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", pow.TokenHeaderKey},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/ping", HandlePing())
	r.Get("/health", HandleHealth(deps))

	r.With(deps.RegisterLimiter.Middleware).Post("/new-user", HandleRegister(deps))

	r.Route("/api", func(api chi.Router) {
		api.Get("/users", HandleListUsers(deps))

		api.Route("/pow", func(p chi.Router) {
			p.Use(deps.RegisterLimiter.Middleware)
			p.Get("/challenge", HandlePowChallenge(deps))
			p.Post("/verify", HandlePowVerify(deps))
		})
	})

	ws := HandleWebSocket(wsUpgrader, deps)
	r.Get("/", ws)
	r.Get("/ws", ws)

	return r
}
