// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the public route table and the small
// handlers the router owns directly.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tailorcms/internal/handlers"
	"tailorcms/internal/middleware"
	"tailorcms/internal/models"
	"tailorcms/internal/pages"
	"tailorcms/internal/session"
)

func TestHealthEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	(&handlers.Public{}).Health(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

// TestTypedRoutesMatchPublicPaths keeps the route table aligned with
// the paths the sitemap and canonical URLs are built from.
func TestTypedRoutesMatchPublicPaths(t *testing.T) {
	routes := typedRoutes()

	for prefix, ct := range routes {
		c := &models.Content{Type: ct, Slug: "example"}
		want := "/" + prefix + "/example"
		if got := pages.PublicPath(c); got != want {
			t.Errorf("%s: route serves %q but canonical path is %q", ct, want, got)
		}
	}

	// Every addressable type except static pages gets a prefix.
	covered := make(map[models.ContentType]bool)
	for _, ct := range routes {
		covered[ct] = true
	}
	for _, ct := range models.ContentTypes {
		if ct == models.ContentTypeStaticPage {
			continue
		}
		if !covered[ct] {
			t.Errorf("content type %s has no public route prefix", ct)
		}
	}
}

// TestAdminRoutesRequireSession builds the real route table with inert
// dependencies and checks that the protected admin pages bounce
// anonymous requests into the login flow. Role enforcement past that
// point is covered by the middleware package's own tests.
func TestAdminRoutesRequireSession(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.NewMemoryLimiter(100, time.Minute))
	defer limiter.Stop()

	r := New(Config{
		Sessions: session.NewStore(nil, false),
		Admin:    &handlers.Admin{},
		Auth:     &handlers.Auth{},
		Public:   &handlers.Public{},
		Limiter:  limiter,
	})

	paths := []string{
		"/admin",
		"/admin/content/blog",
		"/admin/contacts",
		"/admin/settings",
	}
	for _, path := range paths {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusSeeOther {
			t.Errorf("%s: got %d, want 303 for anonymous request", path, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("%s: redirected to %q, want /admin/login", path, loc)
		}
	}
}

func TestKeyFile(t *testing.T) {
	h := keyFile("abc123def456")

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/abc123def456.txt", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("content-type: got %q", ct)
	}
	if w.Body.String() != "abc123def456" {
		t.Errorf("body: got %q, want the bare key", w.Body.String())
	}
}
