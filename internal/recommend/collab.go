// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import "sort"

// userHistory holds one user's ratings in log order plus a score index.
// The log order keeps candidate aggregation deterministic.
type userHistory struct {
	order  []Rating
	scores map[int]float64
}

// neighbor is a candidate similar user with their correlation to the
// target.
type neighbor struct {
	userID     int
	similarity float64
}

// RecommendForUser predicts ratings for movies the target user has not
// rated, based on the users whose rating patterns correlate with theirs.
//
// For every other user in the log, the overlap with the target's rated set
// is computed; users below MinOverlap common movies are skipped, as are
// users whose Pearson correlation is undefined. The remaining candidates
// are ranked by correlation descending and capped at NeighborCap. Each kept
// neighbor then contributes their ratings at or above HighRating on movies
// the target has not seen:
//
//	predicted(movie) = sum(sim * rating) / sum(sim)
//
// Only movies with a positive accumulated similarity weight are scored.
// Predicted scores are not clamped to the input rating range. Movies absent
// from the catalog are omitted from the result. Ties in predicted score
// preserve the order in which a movie was first proposed by a neighbor.
//
// Returns ErrUserNotFound when the user has no ratings in the log.
func (r *Recommender) RecommendForUser(log []Rating, catalog []Movie, userID, n int) (*Result, error) {
	users, userIDs := indexByUser(log)

	target, ok := users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	neighbors := r.findNeighbors(users, userIDs, userID, target)
	predictions := r.aggregate(neighbors, users, target)

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].score > predictions[j].score
	})

	byID := make(map[int]Movie, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = catalog[i]
	}

	n = r.resolveN(n)
	items := make([]ScoredMovie, 0, n)
	for _, p := range predictions {
		if len(items) == n {
			break
		}
		movie, ok := byID[p.movieID]
		if !ok {
			continue
		}
		items = append(items, ScoredMovie{Movie: movie, Score: p.score})
	}

	return &Result{Items: items}, nil
}

// indexByUser groups the rating log per user, preserving the order in
// which users first appear in the log so that downstream tie-breaks are
// deterministic.
func indexByUser(log []Rating) (map[int]*userHistory, []int) {
	users := make(map[int]*userHistory)
	var userIDs []int

	for _, rating := range log {
		hist, ok := users[rating.UserID]
		if !ok {
			hist = &userHistory{scores: make(map[int]float64)}
			users[rating.UserID] = hist
			userIDs = append(userIDs, rating.UserID)
		}
		hist.order = append(hist.order, rating)
		hist.scores[rating.MovieID] = rating.Score
	}

	return users, userIDs
}

// findNeighbors ranks the other users by Pearson correlation with the
// target, applying the minimum-overlap threshold and the neighbor cap.
func (r *Recommender) findNeighbors(users map[int]*userHistory, userIDs []int, targetID int, target *userHistory) []neighbor {
	var neighbors []neighbor

	for _, otherID := range userIDs {
		if otherID == targetID {
			continue
		}
		other := users[otherID]

		// Paired sequences over the common movies, walked in the
		// target's log order. Pearson is order-invariant, so any
		// deterministic walk works.
		var seqTarget, seqOther []float64
		for _, rating := range target.order {
			if score, ok := other.scores[rating.MovieID]; ok {
				seqTarget = append(seqTarget, rating.Score)
				seqOther = append(seqOther, score)
			}
		}

		if len(seqTarget) < r.config.MinOverlap {
			continue
		}

		corr := Pearson(seqTarget, seqOther)
		if !corr.Valid {
			continue
		}

		neighbors = append(neighbors, neighbor{userID: otherID, similarity: corr.Value})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].similarity > neighbors[j].similarity
	})

	if len(neighbors) > r.config.NeighborCap {
		neighbors = neighbors[:r.config.NeighborCap]
	}

	return neighbors
}

// prediction is a candidate movie with its similarity-weighted score.
type prediction struct {
	movieID int
	score   float64
}

// aggregate accumulates the neighbors' high ratings on movies the target
// has not rated into similarity-weighted predicted scores.
func (r *Recommender) aggregate(neighbors []neighbor, users map[int]*userHistory, target *userHistory) []prediction {
	type accumulator struct {
		weightedSum float64
		weight      float64
	}

	accs := make(map[int]*accumulator)
	var candidateIDs []int // first-seen order, the defined tie-break

	for _, nb := range neighbors {
		for _, rating := range users[nb.userID].order {
			if rating.Score < r.config.HighRating {
				continue
			}
			if _, rated := target.scores[rating.MovieID]; rated {
				continue
			}

			acc, ok := accs[rating.MovieID]
			if !ok {
				acc = &accumulator{}
				accs[rating.MovieID] = acc
				candidateIDs = append(candidateIDs, rating.MovieID)
			}
			acc.weightedSum += nb.similarity * rating.Score
			acc.weight += nb.similarity
		}
	}

	predictions := make([]prediction, 0, len(candidateIDs))
	for _, movieID := range candidateIDs {
		acc := accs[movieID]
		// A neighborhood dominated by negative correlations can drive
		// the weight non-positive; such candidates are unscoreable.
		if acc.weight <= 0 {
			continue
		}
		predictions = append(predictions, prediction{movieID: movieID, score: acc.weightedSum / acc.weight})
	}

	return predictions
}
