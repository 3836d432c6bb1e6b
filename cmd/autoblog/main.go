// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the autoblog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"autoblog/internal/ai"
	"autoblog/internal/auth"
	"autoblog/internal/bulk"
	"autoblog/internal/cache"
	"autoblog/internal/config"
	"autoblog/internal/content"
	"autoblog/internal/database"
	"autoblog/internal/handlers"
	"autoblog/internal/middleware"
	"autoblog/internal/posts"
	"autoblog/internal/recovery"
	"autoblog/internal/router"
	"autoblog/internal/secret"
	"autoblog/internal/session"
	"autoblog/internal/storage"
	"autoblog/internal/store"
)

// Auth routes allow this many attempts per client per minute.
const authAttemptsPerMinute = 10

func main() {
	// "autoblog genkey" prints a fresh RECOVERY_PHRASES_KEY and exits.
	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		key, err := secret.GenerateKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(key)
		return
	}

	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	ctx := context.Background()

	// Recovery phrases are sealed with the configured key; bad key or pool
	// material is fatal.
	codec, err := secret.NewCodec(cfg.RecoveryKey)
	if err != nil {
		slog.Error("invalid recovery phrase key", "error", err)
		os.Exit(1)
	}
	phrases, err := recovery.NewGenerator(recovery.ParsePool(cfg.RecoveryPhrases), codec)
	if err != nil {
		slog.Error("invalid recovery phrase pool", "error", err)
		os.Exit(1)
	}
	slog.Info("recovery phrase pool loaded", "size", phrases.PoolSize())

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.Seed(ctx, db, cfg.SiteURL, cfg.DefaultAuthor); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (token revocations + settings cache).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessions := session.NewManager(cfg.TokenSecret, cfg.TokenTTL, cfg.SecureCookies(),
		session.NewValkeyRevocations(valkeyClient))

	// Initialize data stores.
	adminStore := store.NewAdminStore(db)
	postStore := store.NewPostStore(db)
	settings := cache.NewSettings(store.NewSettingsStore(db, cfg.SiteURL, cfg.DefaultAuthor),
		valkeyClient, cache.DefaultSettingsTTL)

	// Object storage is optional; without it featured images are left in
	// place when posts are deleted.
	var images posts.ImageRemover
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		images = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, featured image cleanup disabled")
	}

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, Timeout: cfg.UpstreamTimeout},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL, Timeout: cfg.UpstreamTimeout},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL, Timeout: cfg.UpstreamTimeout},
	})
	if !aiRegistry.HasProvider(aiRegistry.ActiveName()) {
		slog.Warn("active ai provider has no API key, completions will fail",
			"active", aiRegistry.ActiveName())
	}
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Services.
	authSvc, err := auth.NewService(adminStore, phrases, 0)
	if err != nil {
		slog.Error("failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	pipeline := content.NewPipeline(aiRegistry, settings, content.Config{
		Author:       cfg.DefaultAuthor,
		SiteURL:      cfg.SiteURL,
		StageTimeout: cfg.UpstreamTimeout,
		Enrich:       cfg.SEOEnrich,
	})
	postSvc := posts.NewService(postStore, images)
	driver := bulk.NewDriver(pipeline, postSvc, cfg.BulkItemDelay)

	authLimiter := middleware.NewRateLimiter(authAttemptsPerMinute, time.Minute)
	defer authLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:      sessions,
		AuthLimiter:   authLimiter,
		SecureCookies: cfg.SecureCookies(),
		Auth:          handlers.NewAuth(authSvc, sessions),
		Content:       handlers.NewContent(pipeline),
		Bulk:          handlers.NewBulk(driver),
		Posts:         handlers.NewPosts(postSvc, pipeline),
		Settings:      handlers.NewSettings(settings),
		Provider:      handlers.NewProvider(aiRegistry),
	})

	// WriteTimeout must cover a full pipeline call (draft plus optional
	// enrichment). Bulk uploads lift it per request.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2*cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
