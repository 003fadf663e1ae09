package generic

import "time"

// =============================================================================
// PERIOD - Inclusive range of calendar days
// =============================================================================

// Period defines the day boundary of a closing window. Both ends are
// inclusive.
//
// Examples:
//   - March 2024: Mar 1 - Mar 31
//   - Custom range: any Start <= End chosen by an administrator
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the calendar month containing year/month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// MonthOf returns the calendar month that contains the given day.
func MonthOf(day TimePoint) Period {
	return MonthPeriod(day.Year(), day.Month())
}

// Validate rejects periods whose end precedes their start.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() || p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the day is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// BusinessDays counts Monday-Friday days in [Start, End]. Holidays are not
// subtracted; they are accounted separately by the caller.
func (p Period) BusinessDays() int {
	count := 0
	for _, d := range p.Days() {
		if d.IsBusinessDay() {
			count++
		}
	}
	return count
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
