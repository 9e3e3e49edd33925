// Package main is the entry point for the fundrisk HTTP service.
// It analyzes batches of ANBIMA / ISO 20022 fund position statements and
// serves the resulting risk reports over HTTP, optionally re-analyzing an
// inbox directory or S3 prefix on a cron schedule.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/fundrisk/internal/config"
	"github.com/aristath/fundrisk/internal/di"
	"github.com/aristath/fundrisk/internal/scheduler"
	"github.com/aristath/fundrisk/internal/server"
	"github.com/aristath/fundrisk/internal/version"
	"github.com/aristath/fundrisk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("version", version.Version).
		Str("data_dir", cfg.DataDir).
		Msg("Starting fundrisk")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, jobs, err := di.Wire(ctx, cfg, di.DefaultS3ClientFactory, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv := server.New(server.Config{
		Log:      log,
		Service:  container.Service,
		Registry: container.Registry,
		Jobs:     container.Scheduler,
		DataDir:  cfg.DataDir,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	if len(jobs.InboxAnalysis) > 0 {
		container.Scheduler.Start()

		// Analyze the inboxes once at startup so /latest is populated
		for _, job := range jobs.InboxAnalysis {
			job := job
			go func() {
				if err := container.Scheduler.RunNow(job); err != nil && !errors.Is(err, scheduler.ErrJobRunning) {
					log.Error().Err(err).Str("job", job.Name()).Msg("Initial inbox analysis failed")
				}
			}()
		}
	}

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	if len(jobs.InboxAnalysis) > 0 {
		container.Scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
