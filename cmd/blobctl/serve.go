package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalogforge/imgingest/internal/assembler"
	"github.com/catalogforge/imgingest/internal/attach"
	"github.com/catalogforge/imgingest/internal/blobstore"
	"github.com/catalogforge/imgingest/internal/chunkcoordinator"
	"github.com/catalogforge/imgingest/internal/config"
	"github.com/catalogforge/imgingest/internal/httpapi"
	"github.com/catalogforge/imgingest/internal/imagepipeline"
	"github.com/catalogforge/imgingest/internal/jobrunner"
	"github.com/catalogforge/imgingest/internal/logging"
	"github.com/catalogforge/imgingest/internal/store"
	"github.com/catalogforge/imgingest/observability"
)

// ServeCmd boots the chunked-image-ingest HTTP service: runs pending
// migrations, wires the core operations, and serves the five endpoints
// until interrupted.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the image ingest and catalog attachment HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := observability.Init(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.App.Env,
		EnableTracing:  cfg.Observability.EnableTracing,
		EnableMetrics:  cfg.Observability.EnableMetrics,
		EnableLogging:  true,
	}); err != nil {
		log.Warn().Err(err).Msg("observability initialization failed, continuing with no-op observer")
	}

	if err := store.RunMigrations(cfg.Database.DSN, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	db, err := store.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close(db)

	uploads := store.NewUploadRepository(db)
	images := store.NewImageRepository(db)
	products := store.NewProductRepository(db)
	jobs := store.NewJobRepository(db)

	backend, err := blobstore.OpenBackend(cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob backend: %w", err)
	}
	blobs := blobstore.New(backend)

	pipeline := imagepipeline.New(blobs, images, uploads, cfg.Image.Variants, cfg.Image.JPEGQuality)
	runner := jobrunner.New(uploads, jobs, pipeline, log, cfg.Job.Workers, time.Duration(cfg.Job.TimeoutS)*time.Second)

	coordinator := chunkcoordinator.New(blobs, uploads)
	asm := assembler.New(blobs, uploads, jobs, cfg.Job.Tries, runner)
	resolver := attach.New(uploads, images, products, jobs, blobs, runner, log, time.Duration(cfg.Attach.ReadyWaitS)*time.Second, cfg.Job.Tries)

	server := httpapi.New(uploads, images, coordinator, asm, resolver, log, cfg.HTTP.APIKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner.Start(ctx)
	defer runner.Stop()

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
