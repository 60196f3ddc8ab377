package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/cinelens/internal/config"
)

const (
	testMoviesCSV = `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Jumanji (1995),Adventure|Children|Fantasy
3,Heat (1995),Action|Crime|Thriller
4,Planet Earth (2006),(no genres listed)
`
	testRatingsCSV = `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,3,4.5,964981247
2,1,3.0,847434962
2,2,5.0,847435238
`
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   1,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func loadTestDataset(t *testing.T, db *DB) {
	t.Helper()

	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	ratingsPath := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(moviesPath, []byte(testMoviesCSV), 0o600); err != nil {
		t.Fatalf("failed to write movies.csv: %v", err)
	}
	if err := os.WriteFile(ratingsPath, []byte(testRatingsCSV), 0o600); err != nil {
		t.Fatalf("failed to write ratings.csv: %v", err)
	}

	if err := db.LoadDataset(context.Background(), moviesPath, ratingsPath); err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
}

func TestLoadDatasetAndMovies(t *testing.T) {
	db := openTestDB(t)
	loadTestDataset(t, db)

	catalog, err := db.Movies(context.Background())
	if err != nil {
		t.Fatalf("Movies() error = %v", err)
	}
	if len(catalog) != 4 {
		t.Fatalf("Movies() returned %d rows, want 4", len(catalog))
	}

	// Rows come back in CSV order.
	if catalog[0].ID != 1 || catalog[0].Title != "Toy Story (1995)" {
		t.Errorf("first movie = %+v, want Toy Story (1995)", catalog[0])
	}
	wantGenres := []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"}
	if len(catalog[0].Genres) != len(wantGenres) {
		t.Fatalf("first movie genres = %v, want %v", catalog[0].Genres, wantGenres)
	}
	for i, g := range wantGenres {
		if catalog[0].Genres[i] != g {
			t.Errorf("genre[%d] = %q, want %q", i, catalog[0].Genres[i], g)
		}
	}

	// The MovieLens placeholder passes through as a single tag.
	if len(catalog[3].Genres) != 1 || catalog[3].Genres[0] != "(no genres listed)" {
		t.Errorf("placeholder genres = %v, want [(no genres listed)]", catalog[3].Genres)
	}
}

func TestLoadDatasetAndRatings(t *testing.T) {
	db := openTestDB(t)
	loadTestDataset(t, db)

	log, err := db.Ratings(context.Background())
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(log) != 4 {
		t.Fatalf("Ratings() returned %d rows, want 4", len(log))
	}

	// CSV order is preserved, which downstream ranking depends on.
	first := log[0]
	if first.UserID != 1 || first.MovieID != 1 || first.Score != 4.0 {
		t.Errorf("first rating = %+v, want {1 1 4}", first)
	}
	last := log[3]
	if last.UserID != 2 || last.MovieID != 2 || last.Score != 5.0 {
		t.Errorf("last rating = %+v, want {2 2 5}", last)
	}
}

func TestLoadDatasetReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	loadTestDataset(t, db)
	loadTestDataset(t, db)

	movies, ratings, err := db.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if movies != 4 || ratings != 4 {
		t.Errorf("Stats() = (%d, %d), want (4, 4) after reload", movies, ratings)
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	db := openTestDB(t)

	missing := filepath.Join(t.TempDir(), "nope.csv")
	if err := db.LoadDataset(context.Background(), missing, missing); err == nil {
		t.Error("LoadDataset() with missing files should fail")
	}
}

func TestSearchMovies(t *testing.T) {
	db := openTestDB(t)
	loadTestDataset(t, db)

	tests := []struct {
		name    string
		query   string
		limit   int
		wantIDs []int
	}{
		{"case insensitive substring", "toy", 10, []int{1}},
		{"empty query matches all", "", 10, []int{1, 2, 3, 4}},
		{"limit applies", "", 2, []int{1, 2}},
		{"no match", "zzz", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := db.SearchMovies(context.Background(), tt.query, tt.limit)
			if err != nil {
				t.Fatalf("SearchMovies() error = %v", err)
			}
			if len(results) != len(tt.wantIDs) {
				t.Fatalf("SearchMovies() returned %d rows, want %d", len(results), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if results[i].ID != id {
					t.Errorf("result[%d].ID = %d, want %d", i, results[i].ID, id)
				}
			}
		})
	}
}

func TestFileBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cinelens.db")

	db, err := New(&config.DatabaseConfig{Path: path, MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}
