// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// CineLens serves movie recommendations over HTTP. On startup it
// acquires the MovieLens dataset, loads it into DuckDB, and exposes
// content-based and collaborative recommendation endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tomtom215/cinelens/internal/api"
	"github.com/tomtom215/cinelens/internal/config"
	"github.com/tomtom215/cinelens/internal/database"
	"github.com/tomtom215/cinelens/internal/dataset"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("version", version).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("CineLens starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths, err := ensureDataset(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to acquire dataset")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.LoadDataset(ctx, paths.Movies, paths.Ratings); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load dataset into database")
	}

	rec := recommend.NewRecommender(recommend.Config{
		MinOverlap:  cfg.Recommend.MinOverlap,
		NeighborCap: cfg.Recommend.NeighborCap,
		HighRating:  cfg.Recommend.HighRating,
		DefaultN:    cfg.Recommend.DefaultN,
	})

	handler := api.NewHandler(db, rec, cfg.Recommend.MaxN, version)
	router := api.NewRouter(&cfg.Server, handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}

	logging.Info().Msg("CineLens stopped")
}

// ensureDataset makes the CSV files available. When auto-download is
// disabled, missing files are a startup error rather than a fetch.
func ensureDataset(ctx context.Context, cfg *config.Config) (*dataset.Paths, error) {
	if cfg.Dataset.AutoDownload {
		return dataset.Ensure(ctx, dataset.Config{
			URL:     cfg.Dataset.URL,
			Dir:     cfg.Dataset.Dir,
			Timeout: cfg.Dataset.DownloadTimeout,
		})
	}

	paths := &dataset.Paths{
		Movies:  filepath.Join(cfg.Dataset.Dir, dataset.MoviesFile),
		Ratings: filepath.Join(cfg.Dataset.Dir, dataset.RatingsFile),
	}
	for _, p := range []string{paths.Movies, paths.Ratings} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("dataset file %s missing and auto-download is disabled: %w", p, err)
		}
	}
	return paths, nil
}
