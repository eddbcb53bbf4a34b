package engine

import (
	"math"
	"sort"
	"time"
)

// Polarity classifies whether a logged activity contributes to or detracts
// from the daily balance.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNeutral  Polarity = "neutral"
	PolarityNegative Polarity = "negative"
)

// Origin identifies how a session was recorded.
type Origin string

const (
	OriginManual Origin = "manual"
	OriginTimer  Origin = "timer"
	OriginImport Origin = "import"
)

// Interval is a half-open [Start, End) span tagged with its source record.
// Callers are expected to reject malformed spans (End <= Start) before
// handing them to this package.
type Interval struct {
	RecordID string
	Category string
	Polarity Polarity
	Origin   Origin
	Start    time.Time
	End      time.Time
}

// Duration returns the exact span length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// DaySegment is the portion of an interval falling on a single local day.
type DaySegment struct {
	Day      string
	Interval Interval
}

// DayKey formats t as the local date key used throughout aggregation.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}

// MergeAndSum merges overlapping intervals and returns the total covered
// time in minutes, rounded to the nearest minute. Overlap is never counted
// twice.
func MergeAndSum(intervals []Interval) int {
	if len(intervals) == 0 {
		return 0
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var total time.Duration
	runStart := sorted[0].Start
	runEnd := sorted[0].End
	for _, iv := range sorted[1:] {
		if !iv.Start.After(runEnd) {
			if iv.End.After(runEnd) {
				runEnd = iv.End
			}
			continue
		}
		total += runEnd.Sub(runStart)
		runStart = iv.Start
		runEnd = iv.End
	}
	total += runEnd.Sub(runStart)

	return int(math.Round(total.Minutes()))
}

// SplitByLocalDay splits an interval crossing one or more local-midnight
// boundaries into one sub-interval per calendar day touched. The sub-interval
// durations sum exactly to the original duration; rounding happens only when
// minutes are reported.
func SplitByLocalDay(iv Interval, loc *time.Location) []DaySegment {
	if loc == nil {
		loc = time.Local
	}
	if !iv.End.After(iv.Start) {
		return nil
	}

	var segments []DaySegment
	local := iv.Start.In(loc)
	cur := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	for cur.Before(iv.End) {
		next := cur.AddDate(0, 0, 1)
		segStart := iv.Start
		if cur.After(segStart) {
			segStart = cur
		}
		segEnd := iv.End
		if next.Before(segEnd) {
			segEnd = next
		}
		if segEnd.After(segStart) {
			seg := iv
			seg.Start = segStart
			seg.End = segEnd
			segments = append(segments, DaySegment{Day: cur.Format("2006-01-02"), Interval: seg})
		}
		cur = next
	}
	return segments
}

// ClipToWindow intersects each interval with [winStart, winEnd), drops empty
// results and returns the merged minute total of what remains.
func ClipToWindow(intervals []Interval, winStart, winEnd time.Time) int {
	clipped := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		start := iv.Start
		if winStart.After(start) {
			start = winStart
		}
		end := iv.End
		if winEnd.Before(end) {
			end = winEnd
		}
		if end.After(start) {
			c := iv
			c.Start = start
			c.End = end
			clipped = append(clipped, c)
		}
	}
	return MergeAndSum(clipped)
}
