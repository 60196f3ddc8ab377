// Package database manages the DuckDB store holding the MovieLens
// catalog and rating log. The CSV files are ingested with DuckDB's
// read_csv_auto and served back as typed slices in file order, which
// keeps downstream ranking deterministic across restarts.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/cinelens/internal/config"
	"github.com/tomtom215/cinelens/internal/logging"
	"github.com/tomtom215/cinelens/internal/metrics"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// DB wraps the DuckDB connection.
type DB struct {
	conn *sql.DB
}

// New opens the DuckDB store at cfg.Path and creates the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed stores.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Disable auto-install/auto-load to prevent hangs in restricted
	// network environments. Insertion order is preserved so table scans
	// return rows in CSV order.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=true&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id INTEGER NOT NULL,
			title    VARCHAR NOT NULL,
			genres   VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id  INTEGER NOT NULL,
			movie_id INTEGER NOT NULL,
			score    DOUBLE  NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// LoadDataset replaces the movies and ratings tables with the contents
// of the given CSV files. DuckDB reads the files directly, so the Go
// side never materializes the raw CSV rows.
func (db *DB) LoadDataset(ctx context.Context, moviesPath, ratingsPath string) error {
	start := time.Now()

	loads := []struct {
		table string
		query string
		path  string
	}{
		{
			table: "movies",
			query: `CREATE OR REPLACE TABLE movies AS
				SELECT movieId::INTEGER AS movie_id,
				       title::VARCHAR   AS title,
				       genres::VARCHAR  AS genres
				FROM read_csv_auto(%s, header=true)`,
			path: moviesPath,
		},
		{
			table: "ratings",
			query: `CREATE OR REPLACE TABLE ratings AS
				SELECT userId::INTEGER  AS user_id,
				       movieId::INTEGER AS movie_id,
				       rating::DOUBLE   AS score
				FROM read_csv_auto(%s, header=true)`,
			path: ratingsPath,
		},
	}

	for _, l := range loads {
		query := fmt.Sprintf(l.query, quoteLiteral(l.path))
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to load %s from %s: %w", l.table, l.path, err)
		}

		count, err := db.countRows(ctx, l.table)
		if err != nil {
			return err
		}
		metrics.DatasetRows.WithLabelValues(l.table).Set(float64(count))
		logging.Info().
			Str("table", l.table).
			Str("path", l.path).
			Int64("rows", count).
			Msg("Dataset table loaded")
	}

	metrics.ObserveDBQuery("load_dataset", time.Since(start))
	return nil
}

// Movies returns the full catalog in CSV order. The pipe-delimited
// genre cell is split into tags; MovieLens' "(no genres listed)"
// placeholder passes through as a single tag.
func (db *DB) Movies(ctx context.Context) ([]recommend.Movie, error) {
	start := time.Now()
	defer func() { metrics.ObserveDBQuery("movies", time.Since(start)) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT movie_id, title, genres FROM movies`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var catalog []recommend.Movie
	for rows.Next() {
		var (
			m      recommend.Movie
			genres string
		)
		if err := rows.Scan(&m.ID, &m.Title, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		m.Genres = splitGenres(genres)
		catalog = append(catalog, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movie row iteration failed: %w", err)
	}
	return catalog, nil
}

// Ratings returns the full rating log in CSV order.
func (db *DB) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	start := time.Now()
	defer func() { metrics.ObserveDBQuery("ratings", time.Since(start)) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT user_id, movie_id, score FROM ratings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var log []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		log = append(log, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rating row iteration failed: %w", err)
	}
	return log, nil
}

// SearchMovies returns catalog entries whose title contains the query,
// case-insensitively, in CSV order. An empty query matches everything.
func (db *DB) SearchMovies(ctx context.Context, query string, limit int) ([]recommend.Movie, error) {
	start := time.Now()
	defer func() { metrics.ObserveDBQuery("search_movies", time.Since(start)) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT movie_id, title, genres FROM movies
		 WHERE ? = '' OR title ILIKE '%' || ? || '%'
		 LIMIT ?`,
		query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []recommend.Movie
	for rows.Next() {
		var (
			m      recommend.Movie
			genres string
		)
		if err := rows.Scan(&m.ID, &m.Title, &genres); err != nil {
			return nil, fmt.Errorf("failed to scan movie row: %w", err)
		}
		m.Genres = splitGenres(genres)
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movie search iteration failed: %w", err)
	}
	return results, nil
}

// Stats reports row counts for the health endpoint.
func (db *DB) Stats(ctx context.Context) (movies, ratings int64, err error) {
	movies, err = db.countRows(ctx, "movies")
	if err != nil {
		return 0, 0, err
	}
	ratings, err = db.countRows(ctx, "ratings")
	if err != nil {
		return 0, 0, err
	}
	return movies, ratings, nil
}

func (db *DB) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := db.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func splitGenres(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, "|")
}

// quoteLiteral wraps s in single quotes for use where DuckDB does not
// accept bind parameters, such as table function arguments.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
