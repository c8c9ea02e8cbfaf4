// Package api sets up and starts the API server with routing and middleware.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hdelgado/fileden/internal/api/middleware"
	"github.com/hdelgado/fileden/internal/api/routes/auth"
	"github.com/hdelgado/fileden/internal/api/routes/files"
	"github.com/hdelgado/fileden/internal/api/routes/groups"
	"github.com/hdelgado/fileden/internal/api/routes/storage"
	"github.com/hdelgado/fileden/internal/api/routes/user"
	"github.com/hdelgado/fileden/internal/env"
	"github.com/hdelgado/fileden/internal/obs"
	"github.com/hdelgado/fileden/internal/spa"
)

func addRoutes(router *chi.Mux, environment *env.Env) {
	spaServer := spa.New(environment.Config.Frontend.BuildDir)

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", auth.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate)

			r.Get("/user", user.HandleGetUser)
			r.Post("/files/clean", files.HandleClean)
			r.Get("/groups", groups.HandleList)
			r.Get("/storage", storage.HandleGet)
		})
	})

	router.Method(http.MethodGet, "/metrics", obs.Handler())
	router.Get("/static/*", spaServer.HandleStatic)

	// SPA fallback: client-side routing owns every unmatched GET
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		spaServer.HandleIndex(w, r)
	})
}

// New assembles the router with the standard middleware chain.
func New(environment *env.Env) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.AddRequestID)
	router.Use(middleware.LogRequest(environment.Logger))
	router.Use(middleware.InjectEnv(environment))
	router.Use(middleware.AddCors)

	addRoutes(router, environment)
	return router
}

// Start assembles the router and serves it.
func Start(environment *env.Env) error {
	router := New(environment)
	port := environment.Config.Server.Port

	environment.Logger.Info(fmt.Sprintf("Listening at 0.0.0.0:%d", port))
	return http.ListenAndServe(fmt.Sprintf(":%d", port), router)
}
