// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package middleware provides HTTP middleware for the CineLens API:
// Prometheus instrumentation and request-ID correlation.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/cinelens/internal/metrics"
)

// PrometheusMetrics instruments a handler with request counters, latency
// histograms, and an in-flight gauge.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()

		wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		metrics.RecordAPIRequest(r.Method, normalizeEndpoint(r.URL.Path), wrapper.statusCode, time.Since(start))
	})
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader records the status code before delegating.
func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizeEndpoint collapses path parameters so metric cardinality stays
// bounded: /api/v1/recommendations/user/42 -> /api/v1/recommendations/user/{id}.
func normalizeEndpoint(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 5 {
		return path
	}
	switch parts[3] {
	case "recommendations":
		if len(parts) >= 6 {
			return strings.Join(append(parts[:5:5], "{id}"), "/")
		}
	case "movies":
		if len(parts) >= 5 && parts[4] != "" {
			return strings.Join(append(parts[:4:4], "{id}"), "/")
		}
	}
	return path
}
