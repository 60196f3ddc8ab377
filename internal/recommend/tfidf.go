// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import (
	"math"
	"strings"
)

// Vector is a sparse TF-IDF weight vector: term -> weight. Zero-weight
// terms are omitted. Weights may be negative when a term appears in more
// than N/e documents of an N-document corpus; that is accepted, not
// clamped.
type Vector map[string]float64

// Vectorize turns an ordered batch of text documents into TF-IDF vectors
// over a vocabulary derived solely from that batch.
//
// Tokenization is whitespace splitting with no stemming, stopword removal,
// or case normalization. Term frequency is the raw occurrence count, and
//
//	weight(term, doc) = tf(term, doc) * ln(N / (1 + df(term)))
//
// where df is the number of documents containing the term at least once.
// The +1 smoothing avoids division by zero for terms present in every
// document.
//
// An empty document yields an empty vector. The operation is undefined for
// an empty batch; callers must not invoke it with zero documents.
func Vectorize(docs []string) []Vector {
	tokens := make([][]string, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		tokens[i] = strings.Fields(doc)

		seen := make(map[string]struct{}, len(tokens[i]))
		for _, term := range tokens[i] {
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	n := float64(len(docs))
	vectors := make([]Vector, len(docs))

	for i, terms := range tokens {
		tf := make(map[string]int, len(terms))
		for _, term := range terms {
			tf[term]++
		}

		vec := make(Vector, len(tf))
		for term, freq := range tf {
			if w := float64(freq) * math.Log(n/float64(1+df[term])); w != 0 {
				vec[term] = w
			}
		}
		vectors[i] = vec
	}

	return vectors
}
