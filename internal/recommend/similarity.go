// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

import "math"

// Cosine computes the cosine similarity between two sparse weight vectors.
//
// The dot product runs over the key intersection only; terms unique to one
// side contribute zero implicitly. Magnitudes are computed over ALL of each
// vector's terms, not just the intersection. Two vectors with no common
// terms have a defined similarity of zero, as does any pair where either
// magnitude is zero.
func Cosine(a, b Vector) float64 {
	var dot float64
	common := false
	for term, wa := range a {
		if wb, ok := b[term]; ok {
			common = true
			dot += wa * wb
		}
	}
	if !common {
		return 0
	}

	var magA, magB float64
	for _, w := range a {
		magA += w * w
	}
	for _, w := range b {
		magB += w * w
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Correlation is the tagged result of a Pearson computation. An explicit
// Valid flag replaces NaN sentinel propagation: callers must discard
// invalid correlations rather than rank them.
type Correlation struct {
	// Value is the correlation coefficient in [-1, 1].
	Value float64

	// Valid is false when the correlation is undefined, i.e. either
	// input sequence has zero variance or the sequences are unusable.
	Valid bool
}

// Pearson computes the Pearson correlation coefficient between two paired
// equal-length sequences. The result is invalid when the sequences differ
// in length, are empty, or when either has zero variance.
func Pearson(a, b []float64) Correlation {
	if len(a) != len(b) || len(a) == 0 {
		return Correlation{}
	}

	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / n
	meanB := sumB / n

	var num, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return Correlation{}
	}

	return Correlation{Value: num / (math.Sqrt(varA) * math.Sqrt(varB)), Valid: true}
}
