// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"tailorcms/internal/blocks"
	"tailorcms/internal/cache"
	"tailorcms/internal/database"
	"tailorcms/internal/middleware"
	"tailorcms/internal/models"
	"tailorcms/internal/pages"
	"tailorcms/internal/render"
	"tailorcms/internal/session"
	"tailorcms/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "tailorcms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "tailorcms")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Valkey       *redis.Client
	Renderer     *render.Renderer
	Sessions     *session.Store
	ContentStore *store.ContentStore
	PreviewStore *store.PreviewStore
	ContactStore *store.ContactStore
	ResetStore   *store.ResetStore
	UserStore    *store.UserStore
	SettingStore *store.SiteSettingStore
	PageCache    *cache.PageCache
	Assembler    *pages.Assembler
	Admin        *Admin
	Auth         *Auth
	Public       *Public
}

const testBaseURL = "https://cms.test"

// newTestEnv creates a complete test environment. The mailer, newsletter
// client, index pinger, and metrics stay nil — handlers must work with
// every integration unconfigured.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	blockRenderer, err := blocks.NewRenderer(nil)
	if err != nil {
		t.Fatalf("blocks.NewRenderer: %v", err)
	}

	sessions := session.NewStore(vk, false)
	contentStore := store.NewContentStore(db)
	previewStore := store.NewPreviewStore(db)
	contactStore := store.NewContactStore(db)
	resetStore := store.NewResetStore(db)
	userStore := store.NewUserStore(db)
	settingStore := store.NewSiteSettingStore(db)
	pageCache := cache.NewPageCache(vk, 1*time.Minute)
	assembler := pages.New(contentStore, previewStore, blockRenderer, testBaseURL)

	admin := NewAdmin(renderer, contentStore, previewStore, contactStore, settingStore, pageCache, nil, testBaseURL)
	auth := NewAuth(renderer, sessions, userStore, resetStore, nil, testBaseURL)
	public := NewPublic(assembler, contentStore, contactStore, settingStore, pageCache, nil, nil, nil, testBaseURL, "owner@cms.test")

	return &testEnv{
		DB:           db,
		Valkey:       vk,
		Renderer:     renderer,
		Sessions:     sessions,
		ContentStore: contentStore,
		PreviewStore: previewStore,
		ContactStore: contactStore,
		ResetStore:   resetStore,
		UserStore:    userStore,
		SettingStore: settingStore,
		PageCache:    pageCache,
		Assembler:    assembler,
		Admin:        admin,
		Auth:         auth,
		Public:       public,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       "editor@cms.test",
		DisplayName: "Test Editor",
		Role:        "admin",
		TwoFADone:   true,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formRequest builds an urlencoded POST request.
func formRequest(target string, values url.Values) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// testAuthorID returns a valid user ID for content creation, creating a
// fixture user if the table is empty.
func testAuthorID(t *testing.T, env *testEnv) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := env.DB.QueryRow("SELECT id FROM users LIMIT 1").Scan(&id)
	if err == nil {
		return id
	}

	user, err := env.UserStore.Create("author@cms.test", "author-password", "Author", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create fixture user: %v", err)
	}
	return user.ID
}

// cleanContent removes test content by slug.
func cleanContent(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM content WHERE slug = $1", s)
	}
}
