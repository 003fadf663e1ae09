package attendance

import (
	"errors"
	"fmt"

	"github.com/warp/punchclock/generic"
)

var (
	// ErrPeriodNotFound is returned when a period identifier does not resolve.
	// Surfaced to the caller, never retried.
	ErrPeriodNotFound = fmt.Errorf("closing period %w", generic.ErrNotFound)

	ErrEmployeeNotFound = fmt.Errorf("employee %w", generic.ErrNotFound)
	ErrPunchNotFound    = fmt.Errorf("punch record %w", generic.ErrNotFound)

	// ErrInvalidKind is returned for unknown time/day kinds and statuses.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrInvalidPunch is returned for punches missing required fields.
	ErrInvalidPunch = errors.New("invalid punch record")

	// ErrPunchLimitReached is returned when a day already holds the
	// configured maximum number of timed punches.
	ErrPunchLimitReached = errors.New("daily punch limit reached")
)

// IsClientError extends generic.IsClientError with the attendance input errors.
func IsClientError(err error) bool {
	return generic.IsClientError(err) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidPunch)
}

// IsConflict reports errors the caller can resolve by retrying or by
// changing other data first.
func IsConflict(err error) bool {
	return generic.IsRetryable(err) || errors.Is(err, ErrPunchLimitReached)
}

// PunchLimitError details a rejected punch.
type PunchLimitError struct {
	EmployeeID generic.EmployeeID
	Date       generic.TimePoint
	Limit      int
}

func (e *PunchLimitError) Error() string {
	return fmt.Sprintf("daily punch limit reached: %s already has %d punches on %s",
		e.EmployeeID, e.Limit, e.Date)
}

func (e *PunchLimitError) Unwrap() error {
	return ErrPunchLimitReached
}
