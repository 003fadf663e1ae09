/*
store.go - Persistence interfaces for attendance data

PURPOSE:
  Defines the boundary between the closing engine and the database.
  The engine never touches storage; the Service reads inputs through these
  interfaces and writes summary totals back.

KEY INTERFACES:
  EmployeeStore: employee workload data
  PunchStore:    punch records (append + administrative correction)
  PeriodStore:   closing periods, totals written with compare-and-swap
  Store:         all of the above

COMPARE-AND-SWAP:
  UpdatePeriodTotals only writes when the stored Version still equals the
  caller's expectedVersion, then increments it. A mismatch returns
  generic.ErrConcurrentModification and nothing is written. Two summaries of
  the same period can therefore never interleave their writes.

NOT FOUND:
  Lookups return ErrEmployeeNotFound, ErrPunchNotFound or ErrPeriodNotFound,
  all of which wrap generic.ErrNotFound.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - store/memory/memory.go: in-memory for tests

SEE ALSO:
  - service.go: the only caller
*/
package attendance

import (
	"context"

	"github.com/warp/punchclock/generic"
)

type EmployeeStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id generic.EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

type PunchStore interface {
	// AddPunch persists a new record and returns it with Seq and CreatedAt
	// assigned by the store.
	AddPunch(ctx context.Context, p PunchRecord) (PunchRecord, error)

	// UpdatePunch replaces an existing record (administrative correction).
	UpdatePunch(ctx context.Context, p PunchRecord) error

	GetPunch(ctx context.Context, id generic.PunchID) (PunchRecord, error)

	// ListPunches returns an employee's records dated within period, ordered
	// by date then Seq.
	ListPunches(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]PunchRecord, error)

	// CountTimedPunches counts records with a clock time on one day.
	CountTimedPunches(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (int, error)
}

type PeriodStore interface {
	// CreatePeriod stores a new period. An employee can hold only one period
	// with the same bounds; a duplicate returns the existing period.
	CreatePeriod(ctx context.Context, p ClosingPeriod) (ClosingPeriod, error)

	GetPeriod(ctx context.Context, id generic.PeriodID) (ClosingPeriod, error)

	// FindPeriod returns the employee's period containing day.
	FindPeriod(ctx context.Context, employeeID generic.EmployeeID, day generic.TimePoint) (ClosingPeriod, error)

	// ListPeriods returns periods ordered by start date, newest first. An
	// empty employeeID lists every employee's periods.
	ListPeriods(ctx context.Context, employeeID generic.EmployeeID) ([]ClosingPeriod, error)

	// UpdatePeriodTotals replaces all totals if the stored Version equals
	// expectedVersion and returns the new Version.
	UpdatePeriodTotals(ctx context.Context, id generic.PeriodID, expectedVersion int64, totals PeriodTotals) (int64, error)

	UpdatePeriodStatus(ctx context.Context, id generic.PeriodID, status PeriodStatus, notes string) error
}

// Store is everything the Service needs.
type Store interface {
	EmployeeStore
	PunchStore
	PeriodStore
}
