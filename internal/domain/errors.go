package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing catalog item.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a preference that failed shape or bounds checks.
	ErrValidation = errors.New("validation failed")
	// ErrConfiguration signals a catalog or feature setup that cannot serve queries.
	ErrConfiguration = errors.New("configuration error")
	// ErrMalformedRecord signals a catalog row with a field that could not be coerced.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrCatalogNotLoaded signals that no catalog snapshot has been published yet.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")
)

// ValidationError wraps ErrValidation with the offending preference field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a preference field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// MalformedRecordError wraps ErrMalformedRecord with the row and column that failed.
type MalformedRecordError struct {
	Row    int
	Column string
	Value  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: row %d column %q value %q", ErrMalformedRecord.Error(), e.Row, e.Column, e.Value)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// ConfigError wraps ErrConfiguration with a description of what is missing.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
