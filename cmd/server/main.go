// Package main is the entrypoint for the MeetScribe API server.
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

	"github.com/meetscribe/meetscribe/internal/api"
	"github.com/meetscribe/meetscribe/internal/api/handler"
	mw "github.com/meetscribe/meetscribe/internal/api/middleware"
	"github.com/meetscribe/meetscribe/internal/api/response"
	"github.com/meetscribe/meetscribe/internal/cache"
	"github.com/meetscribe/meetscribe/internal/config"
	"github.com/meetscribe/meetscribe/internal/export"
	"github.com/meetscribe/meetscribe/internal/extract"
	"github.com/meetscribe/meetscribe/internal/review"
	"github.com/meetscribe/meetscribe/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.Extract.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create extraction provider
	provider, err := extract.NewProvider(cfg.Extract)
	if err != nil {
		return fmt.Errorf("create extraction provider: %w", err)
	}
	slog.Info("extraction provider initialized", "provider", provider.Name())

	// 6. Create store and services
	pgStore := store.NewPostgresStore(pool)

	if err := bootstrapAdminKey(ctx, pgStore); err != nil {
		return fmt.Errorf("bootstrap admin key: %w", err)
	}

	sessions := review.NewManager(redisCache, pgStore, cfg.Extract.DraftTTL)
	extractSvc := extract.NewService(provider, sessions, cfg.Extract.Timeout)
	exportSvc := export.NewService(pgStore)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RequestsPerMin)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: healthHandler(pgStore, redisCache),

		ExtractHandler: handler.NewExtractHandler(extractSvc),

		GetDraftHandler:        handler.NewGetDraftHandler(sessions),
		UpdateDraftItemHandler: handler.NewUpdateDraftItemHandler(sessions),
		DeleteDraftItemHandler: handler.NewDeleteDraftItemHandler(sessions),
		ConfirmDraftHandler:    handler.NewConfirmDraftHandler(sessions),

		ListAnalysesHandler: handler.NewListAnalysesHandler(pgStore),
		GetAnalysisHandler:  handler.NewGetAnalysisHandler(pgStore),
		ExportHandler:       handler.NewExportHandler(pgStore),

		UpdateItemHandler: handler.NewUpdateItemHandler(pgStore),
		DeleteItemHandler: handler.NewDeleteItemHandler(pgStore),

		ShareHandler: handler.NewShareHandler(exportSvc),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// bootstrapAdminKey creates an initial admin API key on an empty install and
// logs the raw key once. Without it there is no way to call the admin routes.
func bootstrapAdminKey(ctx context.Context, s store.Store) error {
	count, err := s.CountAPIKeys(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	raw, key, err := handler.GenerateAPIKey("bootstrap-admin", []string{"read", "write", "admin"})
	if err != nil {
		return err
	}
	if err := s.CreateAPIKey(ctx, key); err != nil {
		return err
	}

	slog.Warn("no API keys found; created bootstrap admin key (store this, it is not shown again)",
		"key", raw)
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
