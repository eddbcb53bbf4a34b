package engine

import (
	"math"
	"sort"
	"time"
)

// SessionRecord is one logged session entering aggregation. WeightSum is the
// unsigned sum of the source activity's attribute weights; polarity supplies
// the sign.
type SessionRecord struct {
	ID        string
	Category  string
	Polarity  Polarity
	Origin    Origin
	Start     time.Time
	End       time.Time
	WeightSum float64
}

// AggregatorConfig tunes the reporting dimensions of daily aggregation.
type AggregatorConfig struct {
	// ActiveStartHour/ActiveEndHour bound the local "active hours" window
	// used for coverage percentage.
	ActiveStartHour int
	ActiveEndHour   int
	// TargetMinutes is the daily tracked-time goal.
	TargetMinutes int
	// TopCategories caps the per-day category breakdown length.
	TopCategories int
	// WindowDays is the trailing normalization window length.
	WindowDays int
	Location   *time.Location
}

// CategoryMinutes is one entry of a day's category breakdown.
type CategoryMinutes struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

// DaySummary is the reporting record for one calendar day.
type DaySummary struct {
	Day                 string            `json:"day"`
	UsedMinutes         int               `json:"used_minutes"`
	ActiveWindowMinutes int               `json:"active_window_minutes"`
	CoveragePct         float64           `json:"coverage_pct"`
	TargetMinutes       int               `json:"target_minutes"`
	TargetPct           float64           `json:"target_pct"`
	NetRaw              float64           `json:"net_raw"`
	NetNorm             float64           `json:"net_norm"`
	HasNegative         bool              `json:"has_negative"`
	HasTimerOrigin      bool              `json:"has_timer"`
	HitTarget           bool              `json:"hit_target"`
	TopCategories       []CategoryMinutes `json:"top_categories"`
}

// Aggregator composes interval merging and percentile normalization into
// calendar reporting records. It holds no mutable state; all methods are pure
// over their inputs and safe to call concurrently.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator builds an Aggregator, applying defaults for unset fields
// (06:00-23:00 active window, 360 minute target, top 5 categories, 28 day
// window, local time zone).
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.ActiveEndHour <= 0 {
		cfg.ActiveStartHour = 6
		cfg.ActiveEndHour = 23
	}
	if cfg.TargetMinutes <= 0 {
		cfg.TargetMinutes = 6 * 60
	}
	if cfg.TopCategories <= 0 {
		cfg.TopCategories = 5
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 28
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Aggregator{cfg: cfg}
}

// WindowStart returns the start of the trailing normalization window for a
// reporting boundary.
func (a *Aggregator) WindowStart(boundary time.Time) time.Time {
	return boundary.Add(-time.Duration(a.cfg.WindowDays) * 24 * time.Hour)
}

// Month aggregates one reporting record per day of the given month. The
// percentile anchors are computed once from windowRecords (the sessions
// touching the trailing window ending at the month boundary) and shared by
// every day, so the heat scale stays consistent across the month view.
func (a *Aggregator) Month(records, windowRecords []SessionRecord, year int, month time.Month) []DaySummary {
	buckets := a.buckets(records)
	p5, p95 := a.anchors(windowRecords)

	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, a.cfg.Location).Day()
	summaries := make([]DaySummary, 0, daysInMonth)
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, a.cfg.Location)
		summaries = append(summaries, a.summarize(buckets[date.Format("2006-01-02")], date, p5, p95))
	}
	return summaries
}

// Day aggregates a single calendar day using anchors from windowRecords.
func (a *Aggregator) Day(records, windowRecords []SessionRecord, date time.Time) DaySummary {
	local := date.In(a.cfg.Location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.cfg.Location)
	buckets := a.buckets(records)
	p5, p95 := a.anchors(windowRecords)
	return a.summarize(buckets[day.Format("2006-01-02")], day, p5, p95)
}

type dayBucket struct {
	intervals       []Interval
	hasTimerOrigin  bool
	hasNegative     bool
	categoryMinutes map[string]int
	netRaw          float64
}

// buckets splits every session across local days and accumulates the per-day
// aggregation inputs.
func (a *Aggregator) buckets(records []SessionRecord) map[string]*dayBucket {
	buckets := make(map[string]*dayBucket)
	for _, rec := range records {
		if !rec.End.After(rec.Start) {
			continue
		}
		iv := Interval{
			RecordID: rec.ID,
			Category: rec.Category,
			Polarity: rec.Polarity,
			Origin:   rec.Origin,
			Start:    rec.Start,
			End:      rec.End,
		}
		sign := 1.0
		if rec.Polarity == PolarityNegative {
			sign = -1
		}
		for _, seg := range SplitByLocalDay(iv, a.cfg.Location) {
			bucket, ok := buckets[seg.Day]
			if !ok {
				bucket = &dayBucket{categoryMinutes: make(map[string]int)}
				buckets[seg.Day] = bucket
			}
			bucket.intervals = append(bucket.intervals, seg.Interval)
			if rec.Origin == OriginTimer {
				bucket.hasTimerOrigin = true
			}
			if rec.Polarity == PolarityNegative {
				bucket.hasNegative = true
			}
			minutes := int(math.Round(seg.Interval.Duration().Minutes()))
			if rec.Category != "" {
				bucket.categoryMinutes[rec.Category] += minutes
			}
			bucket.netRaw += sign * sanitize(rec.WeightSum) * seg.Interval.Duration().Hours()
		}
	}
	return buckets
}

func (a *Aggregator) anchors(windowRecords []SessionRecord) (float64, float64) {
	netByDay := make(map[string]float64)
	for day, bucket := range a.buckets(windowRecords) {
		netByDay[day] = bucket.netRaw
	}
	values := make([]float64, 0, len(netByDay))
	for _, v := range netByDay {
		values = append(values, v)
	}
	return Anchors(values)
}

func (a *Aggregator) summarize(bucket *dayBucket, day time.Time, p5, p95 float64) DaySummary {
	activeStart := time.Date(day.Year(), day.Month(), day.Day(), a.cfg.ActiveStartHour, 0, 0, 0, a.cfg.Location)
	activeEnd := time.Date(day.Year(), day.Month(), day.Day(), a.cfg.ActiveEndHour, 0, 0, 0, a.cfg.Location)
	activeMinutes := int(math.Round(activeEnd.Sub(activeStart).Minutes()))
	if activeMinutes < 0 {
		activeMinutes = 0
	}

	summary := DaySummary{
		Day:                 day.Format("2006-01-02"),
		ActiveWindowMinutes: activeMinutes,
		TargetMinutes:       a.cfg.TargetMinutes,
		TopCategories:       []CategoryMinutes{},
	}
	if bucket != nil {
		summary.UsedMinutes = MergeAndSum(bucket.intervals)
		covered := ClipToWindow(bucket.intervals, activeStart, activeEnd)
		if activeMinutes > 0 {
			summary.CoveragePct = clamp(float64(covered)/float64(activeMinutes), 0, 1)
		}
		summary.NetRaw = bucket.netRaw
		summary.HasNegative = bucket.hasNegative
		summary.HasTimerOrigin = bucket.hasTimerOrigin
		summary.TopCategories = topCategories(bucket.categoryMinutes, a.cfg.TopCategories)
	}
	if a.cfg.TargetMinutes > 0 {
		summary.TargetPct = clamp(float64(summary.UsedMinutes)/float64(a.cfg.TargetMinutes), 0, 1)
	}
	summary.HitTarget = summary.UsedMinutes >= a.cfg.TargetMinutes
	summary.NetNorm = Normalize(summary.NetRaw, p5, p95)
	return summary
}

func topCategories(minutes map[string]int, limit int) []CategoryMinutes {
	out := make([]CategoryMinutes, 0, len(minutes))
	for name, mins := range minutes {
		out = append(out, CategoryMinutes{Name: name, Minutes: mins})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes == out[j].Minutes {
			return out[i].Name < out[j].Name
		}
		return out[i].Minutes > out[j].Minutes
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
