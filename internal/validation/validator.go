// CineLens - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinelens

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton instance.
//
// Example usage:
//
//	type SimilarRequest struct {
//	    Title string `validate:"required"`
//	    N     int    `validate:"min=1,max=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
//	    return
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError is a single field validation failure.
type FieldError struct {
	// Field is the struct field that failed.
	Field string

	// Tag is the validation tag that failed (e.g. "max").
	Tag string

	// Param is the tag parameter (e.g. "100" for "max=100").
	Param string
}

// Error returns a human-readable message for the failure.
func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s validation", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
}

// StructError is a collection of field validation failures.
type StructError struct {
	Fields []FieldError
}

// Error implements the error interface with a combined message.
func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Error()
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates a struct using its `validate` tags. It returns
// nil on success and a *StructError describing every failed field
// otherwise.
func ValidateStruct(v interface{}) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the input was not a struct.
		return fmt.Errorf("validation: %w", err)
	}

	structErr := &StructError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		structErr.Fields = append(structErr.Fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return structErr
}
