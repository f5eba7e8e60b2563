package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"store-monitor/internal/cache"
	"store-monitor/internal/config"
	"store-monitor/internal/database"
	"store-monitor/internal/engine"
	"store-monitor/internal/ingest"
	"store-monitor/internal/janitor"
	"store-monitor/internal/logging"
	"store-monitor/internal/metrics"
	"store-monitor/internal/report"
	"store-monitor/internal/web"
)

const cacheTTL = 60 * time.Second

func main() {
	flags := config.ParseFlags()
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logger.Level, cfg.Debug)
	logger.Info().Str("config", cfg.Path).Msgf("starting %s", cfg.AppName)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database schema")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Ingest.ImportOnStart {
		importer := ingest.New(db, logger)
		if _, err := importer.Import(ctx, cfg.Ingest.StatusFile, cfg.Ingest.HoursFile, cfg.Ingest.TimezonesFile); err != nil {
			logger.Fatal().Err(err).Msg("dataset import failed")
		}
	}

	// The reference instant anchors every report window; it is fixed
	// per dataset snapshot.
	now, err := db.LatestSampleTime(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("dataset is empty; enable ingest.importOnStart or load the database first")
	}
	logger.Info().Time("reference_instant", now).Msg("dataset ready")

	defaultLoc, err := time.LoadLocation(cfg.Report.DefaultTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid default timezone")
	}

	metricsProvider := metrics.New(cfg.Metrics.Enabled)
	if ids, err := db.StoreIDs(ctx); err == nil {
		metricsProvider.SetStoresTotal(len(ids))
	}

	eng := engine.New(db, db, db, defaultLoc, cfg.Report.Workers, logger)
	generator := report.New(ctx, db, eng, now, cfg.Report, metricsProvider, logger)
	cacheProvider := cache.New(cfg.Cache.Enabled, cfg.Cache.Size, cacheTTL, logger)
	webServer := web.New(db, generator, cacheProvider, metricsProvider, cfg.Metrics.Enabled, logger)

	jan := janitor.New(db, cfg.Maintenance, logger)
	jan.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.WebServer.Host, cfg.WebServer.Port),
		Handler:      webServer.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening for HTTP clients")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		logger.Fatal().Err(err).Msg("server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	// Cancel in-flight report computations; each job still records its
	// terminal state before Wait returns.
	cancel()
	generator.Wait()
	jan.Stop()
	jan.Wait()

	logger.Info().Msg("gracefully stopped")
}
