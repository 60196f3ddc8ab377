// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"errors"
	"strings"
)

// Common recommendation errors. Both are recoverable: the caller presents
// an empty result set rather than failing the request pipeline.
var (
	// ErrTitleNotFound indicates no catalog entry matched the query title,
	// neither exactly nor as a substring.
	ErrTitleNotFound = errors.New("title not found in catalog")

	// ErrUserNotFound indicates the user has no ratings in the log.
	ErrUserNotFound = errors.New("user not found in rating log")
)

// Movie is a catalog entry. Entries are immutable once loaded; identity is
// the ID. Title lookups are case-insensitive and may be ambiguous, in which
// case the first entry in catalog order wins.
type Movie struct {
	// ID is the unique movie identifier.
	ID int `json:"id"`

	// Title is the display title, typically suffixed with the release year.
	Title string `json:"title"`

	// Genres is the ordered list of genre tags.
	Genres []string `json:"genres"`
}

// Rating is one entry of the append-only rating log. Scores are bounded
// by the dataset's rating scale (0.5-5.0 for MovieLens); the core never
// mutates or removes entries.
type Rating struct {
	// UserID identifies the rating user.
	UserID int `json:"user_id"`

	// MovieID identifies the rated movie.
	MovieID int `json:"movie_id"`

	// Score is the rating value.
	Score float64 `json:"score"`
}

// ScoredMovie pairs a catalog entry with a recommendation score. For the
// content strategy the score is a cosine similarity; for the collaborative
// strategy it is a predicted rating, which may exceed the input rating
// range since no clamping is applied.
type ScoredMovie struct {
	// Movie is the recommended catalog entry.
	Movie Movie `json:"movie"`

	// Score is the raw strategy score. Rounding for display is the
	// caller's concern, not part of the ranking computation.
	Score float64 `json:"score"`
}

// Result is an ordered recommendation list, descending by score, with at
// most the requested number of entries.
type Result struct {
	// Items is the ranked list of recommendations.
	Items []ScoredMovie `json:"items"`

	// MatchedTitle reports which catalog title the query resolved to.
	// It differs from the query when a substring match was used.
	MatchedTitle string `json:"matched_title,omitempty"`
}

// GenreText returns one whitespace-joined genre document per catalog
// entry, in catalog order. It is a pure transformation: the catalog is
// never modified, unlike augmenting entries with a derived text column
// in place.
func GenreText(catalog []Movie) []string {
	docs := make([]string, len(catalog))
	for i := range catalog {
		docs[i] = strings.Join(catalog[i].Genres, " ")
	}
	return docs
}
