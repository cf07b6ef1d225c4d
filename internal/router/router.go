// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains. Routes
// are organized into the public site, the rate-limited public POST
// endpoints, and the admin area with its auth/CSRF stack.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tailorcms/internal/handlers"
	"tailorcms/internal/indexing"
	"tailorcms/internal/metrics"
	"tailorcms/internal/middleware"
	"tailorcms/internal/models"
	"tailorcms/internal/session"
	"tailorcms/web"
)

// Config carries the router's dependencies.
type Config struct {
	Sessions *session.Store
	Admin    *handlers.Admin
	Auth     *handlers.Auth
	Public   *handlers.Public

	// Limiter guards the abuse-prone public POSTs and the login flow.
	Limiter *middleware.RateLimiter

	// Metrics may be nil; both the middleware and the /metrics endpoint
	// are then skipped.
	Metrics *metrics.Metrics

	// Pinger may be nil; the IndexNow key file route is then skipped.
	Pinger *indexing.Pinger
}

// New creates the configured chi router.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Logger)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.LoadSession(cfg.Sessions))

	// Operational endpoints — no auth, no CSRF.
	r.Get("/health", cfg.Public.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// Admin area.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages — accessible without a session. Login and the
		// reset-request form are rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Limiter.Middleware)
			r.Post("/login", cfg.Auth.LoginSubmit)
			r.Post("/reset", cfg.Auth.ResetRequestSubmit)
		})
		r.Get("/login", cfg.Auth.LoginPage)
		r.Post("/logout", cfg.Auth.Logout)
		r.Get("/reset", cfg.Auth.ResetRequestPage)
		r.Get("/reset/{token}", cfg.Auth.ResetPasswordPage)
		r.Post("/reset/complete", cfg.Auth.ResetPasswordSubmit)

		// 2FA — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", cfg.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", cfg.Auth.TwoFAVerifySubmit)
			r.Get("/2fa/verify", cfg.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", cfg.Auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", cfg.Admin.Dashboard)

			r.Route("/content", func(r chi.Router) {
				// The {key} parameter is a content type on the list, new,
				// and create routes, and a record UUID everywhere else.
				// One name, because chi rejects mixed wildcard names at
				// the same position; ContentSave disambiguates.
				r.Get("/edit/{key}", cfg.Admin.ContentEdit)
				r.Get("/{key}", cfg.Admin.ContentList)
				r.Get("/{key}/new", cfg.Admin.ContentNew)
				r.Post("/{key}", cfg.Admin.ContentSave)
				r.Delete("/{key}", cfg.Admin.ContentDelete)
				r.Post("/{key}/preview-token", cfg.Admin.PreviewTokenCreate)
				r.Post("/{key}/preview-token/revoke", cfg.Admin.PreviewTokenRevoke)
			})

			r.Get("/contacts", cfg.Admin.ContactsList)

			// Site-wide settings are admin-role only; editors keep the
			// content and contact views above.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/settings", cfg.Admin.SettingsPage)
				r.Post("/settings", cfg.Admin.SettingsUpdate)
				r.Post("/personalize-test", cfg.Admin.PersonalizeTest)
			})
		})
	})

	// Rate-limited public POST endpoints.
	r.Group(func(r chi.Router) {
		r.Use(cfg.Limiter.Middleware)
		r.Post("/contact", cfg.Public.ContactSubmit)
		r.Post("/subscribe", cfg.Public.Subscribe)
	})
	r.Post("/personalize", cfg.Public.Personalize)

	// Crawler endpoints.
	r.Get("/sitemap.xml", cfg.Public.Sitemap)
	r.Get("/robots.txt", cfg.Public.Robots)
	if cfg.Pinger != nil {
		r.Get("/"+cfg.Pinger.Key()+".txt", keyFile(cfg.Pinger.Key()))
	}

	// Embedded admin static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Public site.
	r.Get("/", cfg.Public.Homepage)
	r.Get("/preview/{token}", cfg.Public.Preview)
	for prefix, ct := range typedRoutes() {
		r.Get("/"+prefix+"/{slug}", cfg.Public.TypedPage(ct))
	}
	r.Get("/{slug}", cfg.Public.StaticPage)

	return r
}

// typedRoutes returns the URL prefix → content type mapping for the
// prefixed public routes.
func typedRoutes() map[string]models.ContentType {
	return map[string]models.ContentType{
		"blog":           models.ContentTypeBlog,
		"case-studies":   models.ContentTypeCaseStudy,
		"guides":         models.ContentTypeImplementationGuide,
		"test-results":   models.ContentTypeTestResult,
		"best-practices": models.ContentTypeBestPractice,
		"tools":          models.ContentTypeToolGuide,
		"news":           models.ContentTypeNews,
	}
}

// keyFile serves the IndexNow key verification file.
func keyFile(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(key))
	}
}
