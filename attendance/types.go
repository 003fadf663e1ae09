// Package attendance implements the attendance closing engine.
// It turns a closing period's punch records into the payroll summary
// (worked, overtime, owed and night hours, DSR, deductions and their values)
// using the generic core for calendar and clock arithmetic.
package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/punchclock/generic"
)

// =============================================================================
// TIME KIND - Which boundary of the workday a punch marks
// =============================================================================

type TimeKind string

const (
	TimeEntry    TimeKind = "ENTRY"
	TimeLunchOut TimeKind = "LUNCH_OUT"
	TimeLunchIn  TimeKind = "LUNCH_IN"
	TimeExit     TimeKind = "EXIT"
)

// rank orders time kinds within a workday. Unknown/empty kinds return -1.
func (k TimeKind) rank() int {
	switch k {
	case TimeEntry:
		return 0
	case TimeLunchOut:
		return 1
	case TimeLunchIn:
		return 2
	case TimeExit:
		return 3
	default:
		return -1
	}
}

func (k TimeKind) Valid() bool { return k.rank() >= 0 }

// ParseTimeKind accepts canonical names and the legacy Portuguese tags.
// An empty string yields the empty kind (punch without a boundary tag).
func ParseTimeKind(s string) (TimeKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "ENTRY", "ENTRADA":
		return TimeEntry, nil
	case "LUNCH_OUT", "SAIDA_ALMOCO":
		return TimeLunchOut, nil
	case "LUNCH_IN", "RETORNO_ALMOCO":
		return TimeLunchIn, nil
	case "EXIT", "SAIDA":
		return TimeExit, nil
	}
	return "", fmt.Errorf("%w: time kind %q", ErrInvalidKind, s)
}

// =============================================================================
// DAY KIND - What kind of day a punch describes
// =============================================================================

type DayKind string

const (
	DayNormal           DayKind = "NORMAL"
	DayHoliday          DayKind = "HOLIDAY"
	DayAbsenceExcused   DayKind = "ABSENCE_EXCUSED"
	DayAbsenceUnexcused DayKind = "ABSENCE_UNEXCUSED"
	DayVacation         DayKind = "VACATION"
)

func (k DayKind) Valid() bool {
	switch k {
	case DayNormal, DayHoliday, DayAbsenceExcused, DayAbsenceUnexcused, DayVacation:
		return true
	}
	return false
}

// ParseDayKind accepts canonical names and the legacy Portuguese tags.
// Empty defaults to NORMAL.
func ParseDayKind(s string) (DayKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NORMAL":
		return DayNormal, nil
	case "HOLIDAY", "FERIADO":
		return DayHoliday, nil
	case "ABSENCE_EXCUSED", "ATESTADO":
		return DayAbsenceExcused, nil
	case "ABSENCE_UNEXCUSED", "FALTA":
		return DayAbsenceUnexcused, nil
	case "VACATION", "FERIAS":
		return DayVacation, nil
	}
	return "", fmt.Errorf("%w: day kind %q", ErrInvalidKind, s)
}

// =============================================================================
// RECORD STATUS
// =============================================================================

type RecordStatus string

const (
	RecordPending    RecordStatus = "PENDING"
	RecordComplete   RecordStatus = "COMPLETE"
	RecordIncomplete RecordStatus = "INCOMPLETE"
)

func (s RecordStatus) Valid() bool {
	return s == RecordPending || s == RecordComplete || s == RecordIncomplete
}

// ParseRecordStatus accepts canonical names and the legacy Portuguese tags.
// Empty defaults to COMPLETE.
func ParseRecordStatus(s string) (RecordStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "COMPLETE", "COMPLETO":
		return RecordComplete, nil
	case "PENDING", "PENDENTE":
		return RecordPending, nil
	case "INCOMPLETE", "INCOMPLETO":
		return RecordIncomplete, nil
	}
	return "", fmt.Errorf("%w: record status %q", ErrInvalidKind, s)
}

// =============================================================================
// PUNCH RECORD - A single clock event
// =============================================================================

// PunchRecord is one clock event for one employee on one date.
// Records are created at clock-in and only changed by administrative
// correction.
type PunchRecord struct {
	ID         generic.PunchID
	EmployeeID generic.EmployeeID
	PeriodID   generic.PeriodID
	Date       generic.TimePoint
	Time       *generic.TimeOfDay // nil for day-level records (holiday, vacation...)
	TimeKind   TimeKind
	DayKind    DayKind
	Status     RecordStatus
	Note       string

	// Seq is the store-assigned creation order. Ties on clock time are
	// broken by Seq, then CreatedAt.
	Seq       int64
	CreatedAt time.Time
}

func (p PunchRecord) HasTime() bool { return p.Time != nil }

// =============================================================================
// CLOSING PERIOD
// =============================================================================

type PeriodStatus string

const (
	PeriodOpen        PeriodStatus = "OPEN"
	PeriodUnderReview PeriodStatus = "UNDER_REVIEW"
	PeriodApproved    PeriodStatus = "APPROVED"
	PeriodClosed      PeriodStatus = "CLOSED"
)

func (s PeriodStatus) Valid() bool {
	switch s {
	case PeriodOpen, PeriodUnderReview, PeriodApproved, PeriodClosed:
		return true
	}
	return false
}

// ParsePeriodStatus accepts canonical names and the legacy Portuguese tags.
func ParsePeriodStatus(s string) (PeriodStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "ABERTO":
		return PeriodOpen, nil
	case "UNDER_REVIEW", "EM_ANALISE":
		return PeriodUnderReview, nil
	case "APPROVED", "APROVADO":
		return PeriodApproved, nil
	case "CLOSED", "FECHADO":
		return PeriodClosed, nil
	}
	return "", fmt.Errorf("%w: period status %q", ErrInvalidKind, s)
}

// PeriodTotals are the running totals stored on a ClosingPeriod. They are
// overwritten as a whole every time a summary is computed.
type PeriodTotals struct {
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal
	OwedHours     decimal.Decimal
	NightHours    decimal.Decimal
}

// ClosingPeriod is an attendance window subject to the payroll closing
// workflow. Status transitions are driven by administrators; nothing here
// enforces their order.
type ClosingPeriod struct {
	ID         generic.PeriodID
	EmployeeID generic.EmployeeID
	Period     generic.Period
	Totals     PeriodTotals
	Status     PeriodStatus
	Notes      string

	// Version increments on every totals write (compare-and-swap token).
	Version   int64
	CreatedAt time.Time
}

// =============================================================================
// EMPLOYEE
// =============================================================================

// DefaultDailyHours is the contractual workload when none is recorded.
var DefaultDailyHours = decimal.NewFromInt(8)

// DefaultExpectedEntry is the entry time lateness is measured against.
var DefaultExpectedEntry = generic.MustTimeOfDay("08:00")

// Employee carries the workload data the engine needs.
type Employee struct {
	ID            generic.EmployeeID
	Name          string
	Email         string
	DailyHours    decimal.Decimal
	MonthlySalary decimal.Decimal
	ExpectedEntry generic.TimeOfDay
	IsAdmin       bool
	CreatedAt     time.Time
}

// =============================================================================
// ANOMALY - Non-fatal data quality findings
// =============================================================================

type AnomalyCode string

const (
	AnomalyOutOfOrder    AnomalyCode = "out_of_order"
	AnomalyDuplicateTime AnomalyCode = "duplicate_time"
	AnomalyInvertedLunch AnomalyCode = "inverted_lunch"
	AnomalyNegativeSpan  AnomalyCode = "negative_span"
	AnomalyIncompleteDay AnomalyCode = "incomplete_day"
	AnomalyMissingLunch  AnomalyCode = "missing_lunch"
	AnomalyOutsidePeriod AnomalyCode = "outside_period"
)

// Anomaly flags a recoverable problem found while summarizing. The affected
// value has already been clamped; anomalies exist for operator review.
type Anomaly struct {
	Date   generic.TimePoint
	Code   AnomalyCode
	Detail string
}
