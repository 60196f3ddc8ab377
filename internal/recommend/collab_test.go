// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"errors"
	"math"
	"testing"
)

// ratingsFor expands a user's compact movie->score pairs into log entries.
func ratingsFor(userID int, pairs ...float64) []Rating {
	ratings := make([]Rating, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ratings = append(ratings, Rating{UserID: userID, MovieID: int(pairs[i]), Score: pairs[i+1]})
	}
	return ratings
}

func testCatalog() []Movie {
	return []Movie{
		{ID: 1, Title: "One", Genres: []string{"Action"}},
		{ID: 2, Title: "Two", Genres: []string{"Comedy"}},
		{ID: 3, Title: "Three", Genres: []string{"Drama"}},
		{ID: 4, Title: "Four", Genres: []string{"Horror"}},
		{ID: 5, Title: "Five", Genres: []string{"Sci-Fi"}},
		{ID: 100, Title: "Hundred", Genres: []string{"Action"}},
		{ID: 101, Title: "Hundred One", Genres: []string{"Comedy"}},
		{ID: 200, Title: "Two Hundred", Genres: []string{"Drama"}},
		{ID: 300, Title: "Three Hundred", Genres: []string{"Horror"}},
	}
}

func TestRecommendForUser_UserNotFound(t *testing.T) {
	log := ratingsFor(1, 1, 5, 2, 4)

	_, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 99, 5)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestRecommendForUser_OverlapThreshold(t *testing.T) {
	// Target rates five movies. User 2 shares all five (included) and
	// endorses movie 100; user 3 shares exactly four (excluded) and
	// endorses movie 200.
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	log = append(log, ratingsFor(2, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 100, 4.5)...)
	log = append(log, ratingsFor(3, 1, 5, 2, 4, 3, 3, 4, 5, 200, 5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}

	ids := make(map[int]bool)
	for _, item := range result.Items {
		ids[item.Movie.ID] = true
	}
	if !ids[100] {
		t.Error("movie 100 missing: five-common-movie neighbor should be included")
	}
	if ids[200] {
		t.Error("movie 200 present: four-common-movie neighbor should be skipped")
	}
}

func TestRecommendForUser_ExcludesRatedMovies(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	// Neighbor endorses movie 2, which the target already rated.
	log = append(log, ratingsFor(2, 1, 5, 2, 5, 3, 3, 4, 5, 5, 2, 100, 5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}

	for _, item := range result.Items {
		if item.Movie.ID <= 5 {
			t.Errorf("movie %d was already rated by the target", item.Movie.ID)
		}
	}
}

func TestRecommendForUser_SkipsZeroVarianceNeighbors(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	// Constant scores: Pearson is undefined, so the endorsement of movie
	// 300 must never surface.
	log = append(log, ratingsFor(4, 1, 3, 2, 3, 3, 3, 4, 3, 5, 3, 300, 5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("len(items) = %d, want 0 (only neighbor has undefined correlation)", len(result.Items))
	}
}

func TestRecommendForUser_PredictedScoreIsWeightedAverage(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	// Perfectly correlated neighbor: similarity 1, so the prediction is
	// exactly the neighbor's rating.
	log = append(log, ratingsFor(2, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 100, 4.5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(result.Items))
	}
	if got := result.Items[0].Score; math.Abs(got-4.5) > epsilon {
		t.Errorf("predicted score = %f, want 4.5", got)
	}
}

func TestRecommendForUser_HighRatingThreshold(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	// 3.5 is below the endorsement threshold; 4.0 is exactly at it.
	log = append(log, ratingsFor(2, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 100, 3.5, 101, 4.0)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(result.Items))
	}
	if result.Items[0].Movie.ID != 101 {
		t.Errorf("recommended movie = %d, want 101", result.Items[0].Movie.ID)
	}
}

func TestRecommendForUser_TieBreakIsFirstSeenOrder(t *testing.T) {
	// Two neighbors with identical correlation endorse different movies
	// with identical scores. The movie proposed first must rank first.
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	log = append(log, ratingsFor(2, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 100, 4.5)...)
	log = append(log, ratingsFor(5, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 101, 4.5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(result.Items))
	}
	if result.Items[0].Movie.ID != 100 || result.Items[1].Movie.ID != 101 {
		t.Errorf("tie order = [%d %d], want [100 101]",
			result.Items[0].Movie.ID, result.Items[1].Movie.ID)
	}
}

func TestRecommendForUser_NegativeNeighborhoodIsUnscoreable(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 2, 5, 1)...)
	// Perfectly anti-correlated neighbor: the accumulated weight is
	// negative, so its endorsements cannot be scored.
	log = append(log, ratingsFor(2, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 100, 5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(result.Items))
	}
}

func TestRecommendForUser_OmitsMoviesMissingFromCatalog(t *testing.T) {
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	// Movie 999 is not in the catalog and must be dropped at join time.
	log = append(log, ratingsFor(2, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 999, 5, 100, 4.5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(result.Items))
	}
	if result.Items[0].Movie.ID != 100 {
		t.Errorf("recommended movie = %d, want 100", result.Items[0].Movie.ID)
	}
}

func TestRecommendForUser_NeighborCap(t *testing.T) {
	// Eleven perfectly correlated neighbors; the eleventh (last in log
	// order among equal correlations) falls outside the cap, so its
	// exclusive endorsement never surfaces.
	var log []Rating
	log = append(log, ratingsFor(1, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2)...)
	for u := 2; u <= 11; u++ {
		log = append(log, ratingsFor(u, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 100, 5)...)
	}
	log = append(log, ratingsFor(12, 1, 5, 2, 4, 3, 3, 4, 5, 5, 2, 200, 5)...)

	result, err := NewRecommender(Config{}).RecommendForUser(log, testCatalog(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendForUser() error = %v", err)
	}

	for _, item := range result.Items {
		if item.Movie.ID == 200 {
			t.Error("movie 200 endorsed only by a neighbor beyond the cap")
		}
	}
}

func TestNewRecommender_Defaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Config
	}{
		{
			name: "zero config gets all defaults",
			cfg:  Config{},
			want: Config{MinOverlap: 5, NeighborCap: 10, HighRating: 4.0, DefaultN: 5},
		},
		{
			name: "explicit values are kept",
			cfg:  Config{MinOverlap: 3, NeighborCap: 20, HighRating: 3.5, DefaultN: 10},
			want: Config{MinOverlap: 3, NeighborCap: 20, HighRating: 3.5, DefaultN: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRecommender(tt.cfg).Config(); got != tt.want {
				t.Errorf("Config() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
