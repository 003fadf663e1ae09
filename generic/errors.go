/*
errors.go - Centralized error types for the core package

PURPOSE:
  All shared error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - a referenced record does not exist
  2. Validation errors - malformed input (clock times, periods, config)
  3. Store errors - optimistic concurrency conflicts

USAGE:
  Domain packages wrap generic errors:

    var ErrPeriodNotFound = fmt.Errorf("closing period %w", generic.ErrNotFound)

    if generic.IsNotFound(err) {
        // 404, never retried
    }

SEE ALSO:
  - attendance/errors.go: Domain sentinels wrapping these
  - store/sqlite/sqlite.go: Returns ErrConcurrentModification on CAS miss
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	// Lookups are never retried.
	ErrNotFound = errors.New("not found")

	// ErrConcurrentModification is returned when optimistic locking detects a conflict.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidTimeOfDay is returned for clock times that are not HH:mm.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")

	// ErrInvalidConfig is returned when a labor configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldViolation describes one invalid field.
type FieldViolation struct {
	Field   string
	Message string
}

// ConfigError lists every violation found while validating a configuration.
type ConfigError struct {
	Violations []FieldViolation
}

func (e *ConfigError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(parts, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidTimeOfDay) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
