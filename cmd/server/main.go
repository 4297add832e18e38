// Package main is the entry point for the data lake server.
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

	"github.com/sucharith-p/personal-data-lake/internal/api"
	"github.com/sucharith-p/personal-data-lake/internal/blob"
	"github.com/sucharith-p/personal-data-lake/internal/catalog"
	"github.com/sucharith-p/personal-data-lake/internal/config"
	internaldb "github.com/sucharith-p/personal-data-lake/internal/db"
	"github.com/sucharith-p/personal-data-lake/internal/domain"
	"github.com/sucharith-p/personal-data-lake/internal/embed"
	"github.com/sucharith-p/personal-data-lake/internal/engine"
	"github.com/sucharith-p/personal-data-lake/internal/service/export"
	"github.com/sucharith-p/personal-data-lake/internal/service/ingest"
	"github.com/sucharith-p/personal-data-lake/internal/service/reconciler"
	"github.com/sucharith-p/personal-data-lake/internal/vector"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadDotEnv(".env") // optional

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	conn, err := internaldb.OpenSQLite(cfg.CatalogDBPath)
	if err != nil {
		return fmt.Errorf("open catalog database: %w", err)
	}
	defer conn.Close() //nolint:errcheck
	if err := internaldb.RunMigrations(conn); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var blobs domain.BlobStore
	if cfg.HasS3Config() {
		store, err := blob.NewMinioStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect blob store: %w", err)
		}
		blobs = store
		logger.Info("blob store connected", "endpoint", *cfg.S3Endpoint, "bucket", *cfg.S3Bucket)
	} else {
		blobs = blob.NewMemoryStore()
		logger.Warn("no S3 configuration found, using in-memory blob store; uploads will not survive restarts")
	}

	embedder := embed.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel)
	if err := embedder.Ping(ctx); err != nil {
		logger.Warn("embedding backend unreachable, backfill sweeps will log failures until it returns",
			"url", cfg.OllamaURL, "error", err)
	}

	repo := catalog.NewRepo(conn)
	index := vector.NewIndex(conn)
	fed := engine.NewFederation(repo, blobs, logger.With("component", "engine"))
	ingestSvc := ingest.NewService(repo, blobs, logger.With("component", "ingest"))
	exportSvc := export.NewService(fed, ingestSvc, logger.With("component", "export"))
	sweeper := reconciler.NewService(repo, blobs, index, embedder, logger.With("component", "reconciler"))
	runner := reconciler.NewRunner(sweeper, cfg.ReconcileSchedule, logger.With("component", "reconciler"))

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}
	defer runner.Stop()

	h := api.NewHandler(repo, blobs, fed, index, embedder, ingestSvc, exportSvc, sweeper, runner, logger.With("component", "api"))
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Routes(cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
