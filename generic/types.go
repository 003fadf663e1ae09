/*
Package generic provides the domain-agnostic core of the closing engine.

PURPOSE:
  This package contains the value types and small algorithms every other
  package builds on: calendar days, periods, minute-of-day clock times,
  interval overlap on a two-day timeline and decimal quantities. Nothing
  here knows about punches, employees or labor rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - Quantity helpers: hours and money are decimal.Decimal, never float64
  - Rounding: money is rounded half-up to 2 places at presentation only
  - Identifiers: type-safe IDs for employees, periods and punches

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal avoids compounding float error in sums
  2. Type Safety: distinct ID types prevent mixing employee/period IDs
  3. Purity: no global state; everything is a value

USAGE:
  rate := generic.SafeDiv(salary, generic.Dec(22*8))
  shown := generic.RoundMoney(rate) // 28.41

SEE ALSO:
  - time.go: TimePoint (calendar day) helpers
  - clock.go: TimeOfDay (HH:mm) values
  - interval.go: 48h timeline overlap
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PeriodID string
type PunchID string

// =============================================================================
// DECIMAL QUANTITIES
// =============================================================================

// MoneyPlaces is the number of decimal places used when presenting money.
const MoneyPlaces = 2

var (
	minutesPerHour = decimal.NewFromInt(60)
	hundred        = decimal.NewFromInt(100)
)

// Dec converts an integer into a decimal.
func Dec(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

// MustParseDecimal parses s or returns zero. Used for values read back from
// storage that were written by this package.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// HoursFromMinutes converts a minute count into decimal hours.
func HoursFromMinutes(minutes int) decimal.Decimal {
	return Dec(minutes).Div(minutesPerHour)
}

// Percent converts a whole percentage (e.g. 50) into a fraction (0.5).
func Percent(p decimal.Decimal) decimal.Decimal { return p.Div(hundred) }

// SafeDiv divides a by b and returns zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// RoundMoney rounds half-up to MoneyPlaces. Inputs are non-negative in this
// system, where decimal's half-away-from-zero equals half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
