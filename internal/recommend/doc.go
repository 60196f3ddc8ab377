// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package recommend implements the recommendation core: a from-scratch
// TF-IDF vectorizer with cosine-similarity scoring, and user-based
// collaborative filtering over a sparse rating log using Pearson
// correlation.
//
// # Strategies
//
//   - Content-Based: resolves a title against the catalog, vectorizes
//     every entry's genre text, and ranks by cosine similarity.
//   - Collaborative: finds users whose rating overlap with the target is
//     large enough, ranks them by Pearson correlation, and aggregates
//     their high ratings on unseen movies into predicted scores.
//
// # Purity
//
// Every recommendation call is a pure function of the catalog and rating
// log passed to it. Vectors and correlations are recomputed on each call;
// nothing is cached across calls, so results can never go stale if the
// caller swaps in a different catalog.
package recommend
