// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package models defines shared API types for CineLens HTTP endpoints.
package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. Status is "success" or "error"; Error is populated only for
// error responses.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"items": [...], "matched_title": "Heat (1995)"},
//	  "metadata": {"timestamp": "2026-08-31T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
type Metadata struct {
	// Timestamp is the server time when the response was generated.
	Timestamp time.Time `json:"timestamp"`

	// QueryTimeMS is the recommendation or query latency in milliseconds.
	QueryTimeMS int64 `json:"query_time_ms,omitempty"`

	// RequestID is the correlation ID assigned to the request.
	RequestID string `json:"request_id,omitempty"`
}

// APIError carries structured error details.
//
// Common codes: VALIDATION_ERROR, TITLE_NOT_FOUND, USER_NOT_FOUND,
// RECOMMENDATION_ERROR, METHOD_NOT_ALLOWED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
