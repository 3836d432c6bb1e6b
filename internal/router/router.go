// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains. It splits
// the API into anonymous auth routes, which are rate limited, and token
// protected admin routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"autoblog/internal/handlers"
	"autoblog/internal/metrics"
	"autoblog/internal/middleware"
	"autoblog/internal/session"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions      *session.Manager
	AuthLimiter   *middleware.RateLimiter
	SecureCookies bool

	Auth     *handlers.Auth
	Content  *handlers.Content
	Bulk     *handlers.Bulk
	Posts    *handlers.Posts
	Settings *handlers.Settings
	Provider *handlers.Provider
}

// New creates the configured chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Probes. No auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Sessions))
		r.Use(middleware.CSRF(d.SecureCookies))

		// Credential lifecycle, reachable without a token.
		r.Route("/auth", func(r chi.Router) {
			r.Get("/check-admins", d.Auth.CheckAdmins)
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/register", d.Auth.Register)
				r.Post("/verify-admin", d.Auth.VerifyAdmin)
				r.Post("/login", d.Auth.Login)
				r.Post("/recover-password", d.Auth.RecoverPassword)
			})
		})

		r.Get("/settings", d.Settings.Get)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/reset-password", d.Auth.ResetPassword)
				r.Post("/remove", d.Auth.RemoveAdmin)
				r.Get("/ai-provider", d.Provider.Get)
				r.Post("/ai-provider", d.Provider.Set)
			})

			// Content pipeline
			r.Post("/chatgpt", d.Content.Complete)
			r.Post("/filterResponse", d.Content.Filter)
			r.Post("/seoOptimize", d.Content.Optimize)
			r.Post("/fixMetaTags", d.Content.FixMetaTags)
			r.Post("/bulkUpload", d.Bulk.Upload)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", d.Posts.List)
				r.Post("/", d.Posts.Create)
				r.Get("/{id}", d.Posts.Get)
				r.Put("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
				r.Post("/{id}/fix-meta", d.Posts.FixMeta)
			})

			r.Post("/settings", d.Settings.Update)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
