// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

package recommend

// Config contains tuning parameters for the collaborative strategy.
// Changing the defaults trades coverage against the statistical
// reliability of the correlation estimates.
type Config struct {
	// MinOverlap is the minimum number of commonly rated movies required
	// before a candidate neighbor is considered at all.
	MinOverlap int

	// NeighborCap bounds the neighborhood to the top-N users by
	// correlation, limiting both cost and noise.
	NeighborCap int

	// HighRating is the score threshold at or above which a neighbor's
	// rating counts as an endorsement worth aggregating.
	HighRating float64

	// DefaultN is the result length used when a request does not specify
	// one.
	DefaultN int
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		MinOverlap:  5,
		NeighborCap: 10,
		HighRating:  4.0,
		DefaultN:    5,
	}
}

// Recommender runs both recommendation strategies against caller-supplied
// tables. It holds configuration only; every call is a pure function of
// its inputs.
type Recommender struct {
	config Config
}

// NewRecommender creates a Recommender, applying defaults for zero-valued
// configuration fields.
func NewRecommender(cfg Config) *Recommender {
	def := DefaultConfig()
	if cfg.MinOverlap <= 0 {
		cfg.MinOverlap = def.MinOverlap
	}
	if cfg.NeighborCap <= 0 {
		cfg.NeighborCap = def.NeighborCap
	}
	if cfg.HighRating <= 0 {
		cfg.HighRating = def.HighRating
	}
	if cfg.DefaultN <= 0 {
		cfg.DefaultN = def.DefaultN
	}
	return &Recommender{config: cfg}
}

// Config returns the effective configuration.
func (r *Recommender) Config() Config {
	return r.config
}

// resolveN applies the default result length.
func (r *Recommender) resolveN(n int) int {
	if n <= 0 {
		return r.config.DefaultN
	}
	return n
}
