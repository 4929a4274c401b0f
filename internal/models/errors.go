// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

var (
	ErrLogNotFound      = errors.New("food log not found")
	ErrDraftNotFound    = errors.New("draft not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrNoSettings       = errors.New("user settings not configured")
)

// ValidationError rejects user input before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FailureKind classifies an estimation failure.
type FailureKind string

const (
	FailureNetwork FailureKind = "network"
	FailureStatus  FailureKind = "status"
	FailureParse   FailureKind = "parse"
)

// EstimationFailure is a retryable failure of the estimation capability.
type EstimationFailure struct {
	Kind FailureKind
	Err  error
}

func (e *EstimationFailure) Error() string {
	return fmt.Sprintf("estimation failed (%s): %v", e.Kind, e.Err)
}

func (e *EstimationFailure) Unwrap() error { return e.Err }

// Retryable is always true; nothing retries automatically.
func (e *EstimationFailure) Retryable() bool { return true }

// ConfigurationError reports a profile whose macro settings cannot be met.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsatisfiable %s (%.0f): %s", e.Field, e.Value, e.Reason)
}
