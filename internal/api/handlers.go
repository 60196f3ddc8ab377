// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinelens/internal/metrics"
	"github.com/tomtom215/cinelens/internal/middleware"
	"github.com/tomtom215/cinelens/internal/models"
	"github.com/tomtom215/cinelens/internal/recommend"
)

// Store is the data access surface the handlers need. *database.DB
// satisfies it.
type Store interface {
	Movies(ctx context.Context) ([]recommend.Movie, error)
	Ratings(ctx context.Context) ([]recommend.Rating, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]recommend.Movie, error)
	Stats(ctx context.Context) (movies, ratings int64, err error)
	Ping(ctx context.Context) error
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500

	// queryTimeout bounds a single recommendation request end to end,
	// including the catalog and rating log reads.
	queryTimeout = 30 * time.Second
)

// Handler serves the CineLens API endpoints.
type Handler struct {
	store     Store
	rec       *recommend.Recommender
	maxN      int
	startTime time.Time
	version   string
}

// NewHandler creates the API handler.
func NewHandler(store Store, rec *recommend.Recommender, maxN int, version string) *Handler {
	if maxN <= 0 {
		maxN = 100
	}
	return &Handler{
		store:     store,
		rec:       rec,
		maxN:      maxN,
		startTime: time.Now(),
		version:   version,
	}
}

// scoredItem is the wire form of one recommendation.
type scoredItem struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Score   float64  `json:"score"`
}

// recommendationData is the payload for both recommendation endpoints.
type recommendationData struct {
	Items        []scoredItem `json:"items"`
	Count        int          `json:"count"`
	MatchedTitle string       `json:"matched_title,omitempty"`
	UserID       int          `json:"user_id,omitempty"`
	Strategy     string       `json:"strategy"`
}

// SimilarMovies handles GET /api/v1/recommendations/similar/{title}.
// Scores are cosine similarities rounded to three decimals.
func (h *Handler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	if title == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationError, "Title must not be empty", nil)
		return
	}

	n, ok := h.parseN(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	catalog, err := h.store.Movies(ctx)
	if err != nil {
		metrics.ObserveRecommendation("content", "error", time.Since(start))
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load catalog", err)
		return
	}

	result, err := h.rec.RecommendByTitle(catalog, title, n)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, recommend.ErrTitleNotFound) {
			metrics.ObserveRecommendation("content", "not_found", elapsed)
			respondError(w, r, http.StatusNotFound, ErrCodeTitleNotFound, "No catalog title matches the query", nil)
			return
		}
		metrics.ObserveRecommendation("content", "error", elapsed)
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to generate recommendations", err)
		return
	}

	metrics.ObserveRecommendation("content", "success", elapsed)
	respondSuccess(w, r, &recommendationData{
		Items:        wireItems(result.Items, 3),
		Count:        len(result.Items),
		MatchedTitle: result.MatchedTitle,
		Strategy:     "content",
	}, elapsed)
}

// UserRecommendations handles GET /api/v1/recommendations/user/{userID}.
// Scores are predicted ratings rounded to two decimals; predictions are
// not clamped to the rating scale.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationError, "User ID must be an integer", err)
		return
	}

	n, ok := h.parseN(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	ratings, err := h.store.Ratings(ctx)
	if err != nil {
		metrics.ObserveRecommendation("collaborative", "error", time.Since(start))
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load rating log", err)
		return
	}
	catalog, err := h.store.Movies(ctx)
	if err != nil {
		metrics.ObserveRecommendation("collaborative", "error", time.Since(start))
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load catalog", err)
		return
	}

	result, err := h.rec.RecommendForUser(ratings, catalog, userID, n)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, recommend.ErrUserNotFound) {
			metrics.ObserveRecommendation("collaborative", "not_found", elapsed)
			respondError(w, r, http.StatusNotFound, ErrCodeUserNotFound, "User has no ratings in the log", nil)
			return
		}
		metrics.ObserveRecommendation("collaborative", "error", elapsed)
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to generate recommendations", err)
		return
	}

	metrics.ObserveRecommendation("collaborative", "success", elapsed)
	respondSuccess(w, r, &recommendationData{
		Items:    wireItems(result.Items, 2),
		Count:    len(result.Items),
		UserID:   userID,
		Strategy: "collaborative",
	}, elapsed)
}

// movieData is the payload for the catalog endpoint.
type movieData struct {
	Movies []movieItem `json:"movies"`
	Count  int         `json:"count"`
}

type movieItem struct {
	MovieID int      `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
}

// ListMovies handles GET /api/v1/movies with optional search and limit
// query parameters.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidationError, "Limit must be a positive integer", err)
			return
		}
		limit = parsed
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	start := time.Now()
	results, err := h.store.SearchMovies(ctx, query, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to search catalog", err)
		return
	}

	movies := make([]movieItem, 0, len(results))
	for _, m := range results {
		movies = append(movies, movieItem{MovieID: m.ID, Title: m.Title, Genres: m.Genres})
	}

	respondSuccess(w, r, &movieData{Movies: movies, Count: len(movies)}, time.Since(start))
}

// healthData is the payload for the health endpoint.
type healthData struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Movies        int64  `json:"movies"`
	Ratings       int64  `json:"ratings"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	data := &healthData{
		Status:        "healthy",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		data.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	} else if movies, ratings, err := h.store.Stats(ctx); err != nil {
		data.Status = "degraded"
	} else {
		data.Movies = movies
		data.Ratings = ratings
		if movies == 0 || ratings == 0 {
			data.Status = "degraded"
		}
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: middleware.GetRequestID(r.Context()),
		},
	})
}

// parseN resolves the n query parameter against the configured default
// and ceiling. A missing parameter falls back to the default.
func (h *Handler) parseN(w http.ResponseWriter, r *http.Request) (int, bool) {
	nStr := r.URL.Query().Get("n")
	if nStr == "" {
		return 0, true // the recommender substitutes its default
	}
	n, err := strconv.Atoi(nStr)
	if err != nil || n <= 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationError, "n must be a positive integer", err)
		return 0, false
	}
	if n > h.maxN {
		n = h.maxN
	}
	return n, true
}

// wireItems converts ranked results to wire form, rounding scores to
// the given number of decimals. Ranking used the unrounded scores.
func wireItems(items []recommend.ScoredMovie, decimals int) []scoredItem {
	pow := math.Pow(10, float64(decimals))
	out := make([]scoredItem, 0, len(items))
	for _, it := range items {
		out = append(out, scoredItem{
			MovieID: it.Movie.ID,
			Title:   it.Movie.Title,
			Genres:  it.Movie.Genres,
			Score:   math.Round(it.Score*pow) / pow,
		})
	}
	return out
}
