// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package dataset acquires the MovieLens dataset: it downloads the
// ml-latest-small archive and extracts the movies and ratings CSV files
// into a local data directory.
package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/cinelens/internal/logging"
)

// Files the archive must provide, relative to the archive root directory.
const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
)

// maxArchiveSize caps the downloaded archive to guard against a
// misconfigured URL feeding unbounded data.
const maxArchiveSize = 512 << 20 // 512MB

// maxFileSize caps any single extracted file (zip-bomb guard).
const maxFileSize = 1 << 30 // 1GB

// Config controls dataset acquisition.
type Config struct {
	// URL is the dataset archive location.
	URL string

	// Dir is the directory the CSV files are extracted into.
	Dir string

	// Timeout bounds the download request.
	Timeout time.Duration

	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Paths holds the locations of the extracted CSV files.
type Paths struct {
	Movies  string
	Ratings string
}

// Ensure makes the dataset CSV files available under cfg.Dir, downloading
// and extracting the archive only when they are missing.
func Ensure(ctx context.Context, cfg Config) (*Paths, error) {
	paths := &Paths{
		Movies:  filepath.Join(cfg.Dir, MoviesFile),
		Ratings: filepath.Join(cfg.Dir, RatingsFile),
	}

	if fileExists(paths.Movies) && fileExists(paths.Ratings) {
		logging.Debug().Str("dir", cfg.Dir).Msg("dataset already present, skipping download")
		return paths, nil
	}

	if err := download(ctx, cfg); err != nil {
		return nil, err
	}

	if !fileExists(paths.Movies) || !fileExists(paths.Ratings) {
		return nil, fmt.Errorf("archive at %s did not contain %s and %s", cfg.URL, MoviesFile, RatingsFile)
	}
	return paths, nil
}

// download fetches the archive and extracts the CSV files into cfg.Dir.
func download(ctx context.Context, cfg Config) error {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	logging.Info().Str("url", cfg.URL).Msg("downloading dataset archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("building download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading dataset: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize))
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	if err := extract(body, cfg.Dir); err != nil {
		return err
	}

	logging.Info().Str("dir", cfg.Dir).Int("bytes", len(body)).Msg("dataset extracted")
	return nil
}

// extract writes the CSV files found in the zip archive into dir. Archive
// entries live under a versioned root directory (e.g. ml-latest-small/),
// which is flattened away.
func extract(archive []byte, dir string) error {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	for _, f := range reader.File {
		name := filepath.Base(f.Name)
		if name != MoviesFile && name != RatingsFile {
			continue
		}
		// filepath.Base above already strips any traversal components,
		// so the destination cannot escape dir.
		if strings.Contains(f.Name, "..") {
			return fmt.Errorf("archive entry %q has a suspicious path", f.Name)
		}

		if err := writeEntry(f, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry copies one archive entry to disk.
func writeEntry(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(src, maxFileSize)); err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return nil
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
