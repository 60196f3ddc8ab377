// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"sort"
	"strings"
)

// RecommendByTitle returns the catalog entries most similar to the entry
// resolved from queryTitle, ranked by cosine similarity of their TF-IDF
// genre vectors.
//
// Title resolution is case-insensitive: an exact match wins first, then a
// substring match; in both passes the first occurrence in catalog order
// wins. The resolved entry is reported in Result.MatchedTitle and is never
// part of the output. Ties in similarity preserve catalog order.
//
// Vectors are rebuilt from the supplied catalog on every call.
func (r *Recommender) RecommendByTitle(catalog []Movie, queryTitle string, n int) (*Result, error) {
	if len(catalog) == 0 {
		return nil, ErrTitleNotFound
	}

	queryIdx, err := resolveTitle(catalog, queryTitle)
	if err != nil {
		return nil, err
	}

	vectors := Vectorize(GenreText(catalog))

	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(catalog)-1)
	for i := range catalog {
		if i == queryIdx {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: Cosine(vectors[queryIdx], vectors[i])})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	n = r.resolveN(n)
	if n > len(candidates) {
		n = len(candidates)
	}

	items := make([]ScoredMovie, 0, n)
	for _, c := range candidates[:n] {
		items = append(items, ScoredMovie{Movie: catalog[c.idx], Score: c.score})
	}

	return &Result{Items: items, MatchedTitle: catalog[queryIdx].Title}, nil
}

// resolveTitle finds the catalog index for a query title.
func resolveTitle(catalog []Movie, queryTitle string) (int, error) {
	for i := range catalog {
		if strings.EqualFold(catalog[i].Title, queryTitle) {
			return i, nil
		}
	}

	lower := strings.ToLower(queryTitle)
	for i := range catalog {
		if strings.Contains(strings.ToLower(catalog[i].Title), lower) {
			return i, nil
		}
	}

	return 0, ErrTitleNotFound
}
