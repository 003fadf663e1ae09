package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction
// =============================================================================

// DateLayout is the wire and storage format of calendar days.
const DateLayout = "2006-01-02"

// TimePoint is a calendar day in UTC. Punch dates and period bounds are
// days, never instants, so comparison always normalizes to midnight.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates any instant to its calendar day, keeping the wall-clock
// date of t's own location.
func DayOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DayOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.normalize().Weekday() }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsBusinessDay() bool { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool        { return tp.Time.IsZero() }

// Key is the day bucket key (YYYY-MM-DD).
func (tp TimePoint) Key() string { return tp.normalize().Format(DateLayout) }

func (tp TimePoint) String() string { return tp.Key() }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}
