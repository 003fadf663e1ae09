package attendance

import (
	"fmt"
	"sort"

	"github.com/warp/punchclock/generic"
)

// =============================================================================
// DAY GROUPER - Buckets punches per calendar day
// =============================================================================

// DayClass says how a day takes part in the period accounting.
type DayClass int

const (
	// ClassWorkable days contribute worked, night and lateness minutes.
	// Unexcused absences and incomplete days are workable too.
	ClassWorkable DayClass = iota
	// ClassHoliday days only increment the holiday counter.
	ClassHoliday
	// ClassExcused days (vacation, excused absence) are ignored by both worked
	// and expected-hours accounting.
	ClassExcused
)

func (c DayClass) String() string {
	switch c {
	case ClassHoliday:
		return "holiday"
	case ClassExcused:
		return "excused"
	default:
		return "workable"
	}
}

// DayBucket holds one calendar day's records, sorted by clock time.
type DayBucket struct {
	Date    generic.TimePoint
	Class   DayClass
	Records []PunchRecord
}

// GroupDays buckets records by calendar day. Buckets come back in date order
// and each bucket's records are sorted by clock time, ties broken by creation
// order; records without a clock time sort last. Records dated outside the
// period are dropped and reported.
func GroupDays(records []PunchRecord, period generic.Period) ([]DayBucket, []Anomaly) {
	var anomalies []Anomaly
	byKey := make(map[string]*DayBucket)

	for _, r := range records {
		if !period.Contains(r.Date) {
			anomalies = append(anomalies, Anomaly{
				Date:   r.Date,
				Code:   AnomalyOutsidePeriod,
				Detail: fmt.Sprintf("punch %s dated outside %s", r.ID, period),
			})
			continue
		}
		key := r.Date.Key()
		b, ok := byKey[key]
		if !ok {
			b = &DayBucket{Date: r.Date}
			byKey[key] = b
		}
		b.Records = append(b.Records, r)
	}

	buckets := make([]DayBucket, 0, len(byKey))
	for _, b := range byKey {
		sortDay(b.Records)
		b.Class = classify(b.Records)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	return buckets, anomalies
}

// classify applies holiday precedence: any HOLIDAY record makes the day a
// holiday even if it also holds vacation or normal punches.
func classify(records []PunchRecord) DayClass {
	excused := false
	for _, r := range records {
		switch r.DayKind {
		case DayHoliday:
			return ClassHoliday
		case DayVacation, DayAbsenceExcused:
			excused = true
		}
	}
	if excused {
		return ClassExcused
	}
	return ClassWorkable
}

func sortDay(records []PunchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case a.Time == nil && b.Time == nil:
			return lessCreation(a, b)
		case a.Time == nil:
			return false
		case b.Time == nil:
			return true
		}
		if !a.Time.Equal(*b.Time) {
			return a.Time.Before(*b.Time)
		}
		return lessCreation(a, b)
	})
}

func lessCreation(a, b PunchRecord) bool {
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// timedNormal returns the NORMAL, time-bearing records of a sorted bucket.
func timedNormal(records []PunchRecord) []PunchRecord {
	out := make([]PunchRecord, 0, len(records))
	for _, r := range records {
		if r.DayKind == DayNormal && r.HasTime() {
			out = append(out, r)
		}
	}
	return out
}
