package generic

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// TIME OF DAY - HH:mm wall-clock value
// =============================================================================

// MinutesPerDay is the length of one day on the minute timeline.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with minute resolution, stored as minutes
// since midnight (0..1439). It carries no date; callers pair it with a
// TimePoint when a full instant is needed.
type TimeOfDay struct {
	minutes int
}

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay{minutes: hour*60 + minute}, nil
}

// MustTimeOfDay parses s and panics on malformed input. For constants and
// tests only.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay parses "HH:mm" (a single-digit hour is accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(h, m)
}

func (t TimeOfDay) Minutes() int { return t.minutes }
func (t TimeOfDay) Hour() int    { return t.minutes / 60 }
func (t TimeOfDay) Minute() int  { return t.minutes % 60 }

// Sub returns t - other in minutes. Negative when t is earlier.
func (t TimeOfDay) Sub(other TimeOfDay) int { return t.minutes - other.minutes }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.minutes < other.minutes }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t.minutes > other.minutes }
func (t TimeOfDay) Equal(other TimeOfDay) bool  { return t.minutes == other.minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText encodes as "HH:mm" so TimeOfDay works as a JSON string.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
