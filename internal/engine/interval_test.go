package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcInterval(start, end string) Interval {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return Interval{Start: s, End: e}
}

func TestMergeAndSumOverlap(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: base, End: base.Add(100 * time.Minute)},
		{Start: base.Add(50 * time.Minute), End: base.Add(150 * time.Minute)},
	}
	assert.Equal(t, 150, MergeAndSum(intervals))
}

func TestMergeAndSumDisjoint(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: base, End: base.Add(30 * time.Minute)},
		{Start: base.Add(60 * time.Minute), End: base.Add(90 * time.Minute)},
	}
	assert.Equal(t, 60, MergeAndSum(intervals))
}

func TestMergeAndSumEmpty(t *testing.T) {
	assert.Equal(t, 0, MergeAndSum(nil))
}

func TestMergeAndSumNeverOverexpands(t *testing.T) {
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	intervals := []Interval{
		{Start: base, End: base.Add(45 * time.Minute)},
		{Start: base.Add(20 * time.Minute), End: base.Add(70 * time.Minute)},
		{Start: base.Add(200 * time.Minute), End: base.Add(260 * time.Minute)},
	}
	var individual int
	for _, iv := range intervals {
		individual += int(iv.Duration().Minutes())
	}
	assert.LessOrEqual(t, MergeAndSum(intervals), individual)
}

func TestSplitByLocalDayCrossMidnight(t *testing.T) {
	iv := utcInterval("2024-01-01T23:00:00Z", "2024-01-02T01:00:00Z")
	segments := SplitByLocalDay(iv, time.UTC)
	require.Len(t, segments, 2)
	assert.Equal(t, "2024-01-01", segments[0].Day)
	assert.Equal(t, "2024-01-02", segments[1].Day)
	assert.Equal(t, 60*time.Minute, segments[0].Interval.Duration())
	assert.Equal(t, 60*time.Minute, segments[1].Interval.Duration())
}

func TestSplitByLocalDayConservesDuration(t *testing.T) {
	cases := []Interval{
		utcInterval("2024-01-01T09:15:00Z", "2024-01-01T10:45:30Z"),
		utcInterval("2024-01-01T23:59:59Z", "2024-01-02T00:00:01Z"),
		utcInterval("2024-02-27T18:00:00Z", "2024-03-02T06:30:00Z"),
	}
	for _, iv := range cases {
		var total time.Duration
		for _, seg := range SplitByLocalDay(iv, time.UTC) {
			total += seg.Interval.Duration()
		}
		assert.Equal(t, iv.Duration(), total)
	}
}

func TestSplitByLocalDayEmptyInterval(t *testing.T) {
	iv := utcInterval("2024-01-01T10:00:00Z", "2024-01-01T10:00:00Z")
	assert.Nil(t, SplitByLocalDay(iv, time.UTC))
}

func TestClipToWindow(t *testing.T) {
	winStart := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	winEnd := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	intervals := []Interval{
		utcInterval("2024-01-01T05:00:00Z", "2024-01-01T07:00:00Z"),
		utcInterval("2024-01-01T22:30:00Z", "2024-01-01T23:45:00Z"),
		utcInterval("2024-01-01T02:00:00Z", "2024-01-01T03:00:00Z"),
	}
	// 60 inside the window from the first, 30 from the second, none from the third.
	assert.Equal(t, 90, ClipToWindow(intervals, winStart, winEnd))
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2024, 7, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-15", DayKey(ts, time.UTC))
}
