// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package config loads CineLens configuration via Koanf v2 with layered
// sources, highest priority last:
//
//  1. Built-in defaults
//  2. Config file (config.yaml)
//  3. Environment variables (CINELENS_ prefix)
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinelens/internal/validation"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Database  DatabaseConfig  `koanf:"database"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Host is the bind address.
	Host string `koanf:"host"`

	// Port is the listening port.
	Port int `koanf:"port" validate:"gte=1,lte=65535"`

	// ReadTimeout bounds request reads.
	ReadTimeout time.Duration `koanf:"readtimeout"`

	// WriteTimeout bounds response writes.
	WriteTimeout time.Duration `koanf:"writetimeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`

	// RateLimit is the per-client request budget per minute.
	RateLimit int `koanf:"ratelimit" validate:"gte=1"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"corsorigins"`
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DatasetConfig controls MovieLens dataset acquisition.
type DatasetConfig struct {
	// URL is the dataset archive location.
	URL string `koanf:"url" validate:"url"`

	// Dir is the local directory the archive is extracted into.
	Dir string `koanf:"dir" validate:"required"`

	// AutoDownload fetches the archive on startup when the CSV files are
	// missing. When false, missing files are a startup error.
	AutoDownload bool `koanf:"autodownload"`

	// DownloadTimeout bounds the archive download.
	DownloadTimeout time.Duration `koanf:"downloadtimeout"`
}

// DatabaseConfig controls the DuckDB store.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an ephemeral store.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory caps DuckDB's memory usage (e.g. "1GB").
	MaxMemory string `koanf:"maxmemory"`

	// Threads sets DuckDB's thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads" validate:"gte=0"`
}

// RecommendConfig tunes the recommendation core.
type RecommendConfig struct {
	// MinOverlap is the minimum commonly rated movies for a neighbor.
	MinOverlap int `koanf:"minoverlap" validate:"gte=1"`

	// NeighborCap bounds the neighborhood size.
	NeighborCap int `koanf:"neighborcap" validate:"gte=1"`

	// HighRating is the endorsement score threshold.
	HighRating float64 `koanf:"highrating" validate:"gt=0"`

	// DefaultN is the result length when a request omits one.
	DefaultN int `koanf:"defaultn" validate:"gte=1"`

	// MaxN caps the requestable result length.
	MaxN int `koanf:"maxn" validate:"gte=1"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8484,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Dataset: DatasetConfig{
			URL:             "https://files.grouplens.org/datasets/movielens/ml-latest-small.zip",
			Dir:             "data",
			AutoDownload:    true,
			DownloadTimeout: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:      ":memory:",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Recommend: RecommendConfig{
			MinOverlap:  5,
			NeighborCap: 10,
			HighRating:  4.0,
			DefaultN:    5,
			MaxN:        100,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
