// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the TailorCMS server. It loads
// configuration, connects to services, wires the handler groups, and
// runs the HTTP server with graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"tailorcms/internal/blocks"
	"tailorcms/internal/cache"
	"tailorcms/internal/config"
	"tailorcms/internal/database"
	"tailorcms/internal/handlers"
	"tailorcms/internal/indexing"
	"tailorcms/internal/mailer"
	"tailorcms/internal/metrics"
	"tailorcms/internal/middleware"
	"tailorcms/internal/newsletter"
	"tailorcms/internal/pages"
	"tailorcms/internal/render"
	"tailorcms/internal/router"
	"tailorcms/internal/session"
	"tailorcms/internal/storage"
	"tailorcms/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: colored text in development, JSON in production.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "base_url", cfg.BaseURL)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	userStore := store.NewUserStore(db)
	contentStore := store.NewContentStore(db)
	previewStore := store.NewPreviewStore(db)
	contactStore := store.NewContactStore(db)
	resetStore := store.NewResetStore(db)
	settingStore := store.NewSiteSettingStore(db)

	// S3-compatible object storage resolves storage-keyed image refs in
	// block data. Optional — refs pass through unresolved without it.
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	var assets blocks.AssetResolver
	if storageClient != nil {
		assets = storageClient
		slog.Info("object storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("object storage not configured — storage-keyed asset refs pass through")
	}

	blockRenderer, err := blocks.NewRenderer(assets)
	if err != nil {
		slog.Error("failed to compile block templates", "error", err)
		os.Exit(1)
	}
	assembler := pages.New(contentStore, previewStore, blockRenderer, cfg.BaseURL)

	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	if mail == nil {
		slog.Warn("smtp not configured — contact notifications and reset emails disabled")
	}

	news := newsletter.New(cfg.NewsletterAPIURL, cfg.NewsletterAPIKey, cfg.NewsletterListID)
	if news != nil {
		// Catch up on signups that never reached the provider, e.g. after
		// an outage or a deploy that interrupted the post-signup push.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			news.SyncUnsynced(ctx, contactStore)
		}()
	}
	pinger := indexing.New(cfg.IndexNowEndpoint, cfg.IndexNowKey, cfg.BaseURL)
	if pinger == nil {
		slog.Warn("indexnow not configured — publish pings disabled")
	}

	m := metrics.New()
	if pinger != nil {
		pinger.OnResult = func(outcome string) {
			m.IndexSubmissionsTotal.WithLabelValues(outcome).Inc()
		}
	}

	// Rate limiter: Valkey-backed so limits hold across instances.
	limiter := middleware.NewRateLimiter(middleware.NewValkeyLimiter(valkeyClient, 10, time.Minute))
	limiter.OnReject = m.RateLimitRejectionsTotal.Inc
	defer limiter.Stop()

	adminHandlers := handlers.NewAdmin(renderer, contentStore, previewStore, contactStore, settingStore, pageCache, pinger, cfg.BaseURL)
	authHandlers := handlers.NewAuth(renderer, sessionStore, userStore, resetStore, mail, cfg.BaseURL)
	publicHandlers := handlers.NewPublic(assembler, contentStore, contactStore, settingStore, pageCache, mail, news, m, cfg.BaseURL, cfg.ContactTo)

	r := router.New(router.Config{
		Sessions: sessionStore,
		Admin:    adminHandlers,
		Auth:     authHandlers,
		Public:   publicHandlers,
		Limiter:  limiter,
		Metrics:  m,
		Pinger:   pinger,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
