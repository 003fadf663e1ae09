package generic

// =============================================================================
// INTERVAL - Half-open minute ranges on a 48h virtual timeline
// =============================================================================
//
// Work that starts in the evening may end after midnight, and a night window
// such as 22:00-05:00 wraps too. Instead of branching on every wraparound
// case, both sides are laid out on a timeline covering today (0..1439) and
// tomorrow (1440..2879), and overlap becomes plain range intersection.
//
//   0            1320      1440       1740            2760      2880
//   |-- today ----[ night  |  night )--|---- tomorrow --[ night  |
//                 ^22:00   ^00:00   ^05:00              ^22:00

// TimelineEnd is the exclusive end of the two-day timeline.
const TimelineEnd = 2 * MinutesPerDay

// Interval is the half-open range [Start, End) in timeline minutes.
type Interval struct {
	Start int
	End   int
}

// Len returns the interval length, or 0 for empty/inverted intervals.
func (i Interval) Len() int {
	if i.End <= i.Start {
		return 0
	}
	return i.End - i.Start
}

// Overlap returns the number of minutes a and b share.
func Overlap(a, b Interval) int {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if end <= start {
		return 0
	}
	return end - start
}

// SpanOf places a worked span on the timeline. An end earlier than the start
// means the span crossed midnight; equal ends make an empty span.
func SpanOf(start, end TimeOfDay) Interval {
	s, e := start.Minutes(), end.Minutes()
	if e < s {
		e += MinutesPerDay
	}
	return Interval{Start: s, End: e}
}

// WindowSegments expands a recurring daily window onto the timeline. A window
// whose end precedes its start wraps past midnight and contributes its
// early-morning tail on day one as well.
func WindowSegments(start, end TimeOfDay) []Interval {
	s, e := start.Minutes(), end.Minutes()
	switch {
	case s == e:
		return nil
	case s < e:
		return []Interval{
			{Start: s, End: e},
			{Start: s + MinutesPerDay, End: e + MinutesPerDay},
		}
	default:
		return []Interval{
			{Start: 0, End: e},
			{Start: s, End: e + MinutesPerDay},
			{Start: s + MinutesPerDay, End: TimelineEnd},
		}
	}
}

// OverlapWithSegments sums the overlap of span with every segment.
func OverlapWithSegments(span Interval, segments []Interval) int {
	total := 0
	for _, seg := range segments {
		total += Overlap(span, seg)
	}
	return total
}
