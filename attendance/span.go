package attendance

import (
	"fmt"

	"github.com/warp/punchclock/generic"
)

// =============================================================================
// DAILY SPAN CALCULATOR - Worked minutes for one workable day
// =============================================================================
//
// Punches are laid out on the two-day timeline (see generic/interval.go).
// A day whose EXIT is earlier than its ENTRY is an overnight shift: every
// punch earlier than the ENTRY moves to the second day. If some punch sits
// between the EXIT and the ENTRY the day cannot be an overnight shift; the
// punches then keep their clock order and the tags are only flagged.

// DailySpan is the outcome of ComputeSpan.
type DailySpan struct {
	Date          generic.TimePoint
	WorkedMinutes int
	First         generic.TimeOfDay
	Last          generic.TimeOfDay
	// Complete is true when the day had at least two timed NORMAL punches.
	Complete  bool
	HasLunch  bool
	Overnight bool
	Anomalies []Anomaly
}

type placedPunch struct {
	rec PunchRecord
	pos int
}

// ComputeSpan derives the worked minutes of a workable day bucket.
func ComputeSpan(bucket DayBucket) DailySpan {
	span := DailySpan{Date: bucket.Date}
	timed := timedNormal(bucket.Records)

	if len(timed) < 2 {
		if len(timed) == 1 {
			span.First = *timed[0].Time
			span.Last = *timed[0].Time
			span.flag(AnomalyIncompleteDay, fmt.Sprintf("single punch at %s", timed[0].Time))
		}
		return span
	}
	span.Complete = true

	for i := 1; i < len(timed); i++ {
		if timed[i].Time.Equal(*timed[i-1].Time) {
			span.flag(AnomalyDuplicateTime, fmt.Sprintf("two punches at %s", timed[i].Time))
		}
	}

	entry, hasEntry := firstOfKind(timed, TimeEntry)
	exit, hasExit := lastOfKind(timed, TimeExit)

	if hasEntry && hasExit && exit.Time.Before(*entry.Time) && fitsOvernight(timed, *entry.Time, *exit.Time) {
		span.Overnight = true
	}

	var placed []placedPunch
	if span.Overnight {
		placed = place(timed, entry.Time)
	} else {
		placed = place(timed, nil)
	}
	span.checkOrder(placed)

	first, last := placed[0], placed[len(placed)-1]
	span.First = *first.rec.Time
	span.Last = *last.rec.Time
	raw := last.pos - first.pos

	out, hasOut := firstPlacedOfKind(placed, TimeLunchOut)
	in, hasIn := firstPlacedOfKind(placed, TimeLunchIn)
	if hasOut && hasIn {
		if in.pos > out.pos {
			raw -= in.pos - out.pos
			span.HasLunch = true
		} else {
			span.flag(AnomalyInvertedLunch, fmt.Sprintf("lunch return %s not after lunch out %s", in.rec.Time, out.rec.Time))
		}
	}

	if raw < 0 {
		span.flag(AnomalyNegativeSpan, fmt.Sprintf("computed span %d minutes", raw))
		raw = 0
	}
	span.WorkedMinutes = raw
	return span
}

func (s *DailySpan) flag(code AnomalyCode, detail string) {
	s.Anomalies = append(s.Anomalies, Anomaly{Date: s.Date, Code: code, Detail: detail})
}

// checkOrder flags the first tagged punch whose kind ranks below a preceding
// one. Untagged punches are skipped.
func (s *DailySpan) checkOrder(placed []placedPunch) {
	highest := -1
	for _, p := range placed {
		r := p.rec.TimeKind.rank()
		if r < 0 {
			continue
		}
		if r < highest {
			s.flag(AnomalyOutOfOrder, fmt.Sprintf("%s at %s after a later boundary", p.rec.TimeKind, p.rec.Time))
			return
		}
		highest = r
	}
}

// place maps punches onto the timeline in time order. With an overnight
// anchor, punches before the anchor move to the second day.
func place(timed []PunchRecord, anchor *generic.TimeOfDay) []placedPunch {
	out := make([]placedPunch, 0, len(timed))
	var tail []placedPunch
	for _, r := range timed {
		pos := r.Time.Minutes()
		if anchor != nil && r.Time.Before(*anchor) {
			tail = append(tail, placedPunch{rec: r, pos: pos + generic.MinutesPerDay})
			continue
		}
		out = append(out, placedPunch{rec: r, pos: pos})
	}
	return append(out, tail...)
}

// fitsOvernight is true when no punch lies strictly between exit and entry.
func fitsOvernight(timed []PunchRecord, entry, exit generic.TimeOfDay) bool {
	for _, r := range timed {
		if r.Time.After(exit) && r.Time.Before(entry) {
			return false
		}
	}
	return true
}

func firstOfKind(timed []PunchRecord, kind TimeKind) (PunchRecord, bool) {
	for _, r := range timed {
		if r.TimeKind == kind {
			return r, true
		}
	}
	return PunchRecord{}, false
}

func lastOfKind(timed []PunchRecord, kind TimeKind) (PunchRecord, bool) {
	for i := len(timed) - 1; i >= 0; i-- {
		if timed[i].TimeKind == kind {
			return timed[i], true
		}
	}
	return PunchRecord{}, false
}

func firstPlacedOfKind(placed []placedPunch, kind TimeKind) (placedPunch, bool) {
	for _, p := range placed {
		if p.rec.TimeKind == kind {
			return p, true
		}
	}
	return placedPunch{}, false
}
