package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAggregator() *Aggregator {
	return NewAggregator(AggregatorConfig{Location: time.UTC})
}

func session(id, category string, polarity Polarity, origin Origin, start, end string, weight float64) SessionRecord {
	s, _ := time.Parse(time.RFC3339, start)
	e, _ := time.Parse(time.RFC3339, end)
	return SessionRecord{ID: id, Category: category, Polarity: polarity, Origin: origin, Start: s, End: e, WeightSum: weight}
}

func TestDaySummaryBasics(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("e1", "study", PolarityPositive, OriginManual, "2024-06-10T08:00:00Z", "2024-06-10T10:00:00Z", 1.0),
		session("e2", "training", PolarityPositive, OriginTimer, "2024-06-10T09:00:00Z", "2024-06-10T11:00:00Z", 1.2),
	}
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	summary := agg.Day(records, records, date)

	assert.Equal(t, "2024-06-10", summary.Day)
	// overlapping hour merged: 08:00-11:00
	assert.Equal(t, 180, summary.UsedMinutes)
	assert.Equal(t, 17*60, summary.ActiveWindowMinutes)
	assert.InDelta(t, 180.0/float64(17*60), summary.CoveragePct, 1e-9)
	assert.Equal(t, 360, summary.TargetMinutes)
	assert.InDelta(t, 0.5, summary.TargetPct, 1e-9)
	assert.False(t, summary.HitTarget)
	assert.True(t, summary.HasTimerOrigin)
	assert.False(t, summary.HasNegative)
	// net raw: 2h * 1.0 + 2h * 1.2
	assert.InDelta(t, 4.4, summary.NetRaw, 1e-9)
	require.Len(t, summary.TopCategories, 2)
	assert.Equal(t, "study", summary.TopCategories[0].Name)
	assert.Equal(t, 120, summary.TopCategories[0].Minutes)
}

func TestDaySummaryNegativePolarity(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("e1", "doomscroll", PolarityNegative, OriginManual, "2024-06-10T21:00:00Z", "2024-06-10T22:00:00Z", 0.8),
	}
	summary := agg.Day(records, records, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))

	assert.True(t, summary.HasNegative)
	assert.InDelta(t, -0.8, summary.NetRaw, 1e-9)
	assert.LessOrEqual(t, summary.NetNorm, 0.0)
}

func TestDaySummaryCrossMidnightLandsOnBothDays(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("e1", "work", PolarityPositive, OriginManual, "2024-06-10T23:00:00Z", "2024-06-11T01:00:00Z", 1.0),
	}
	first := agg.Day(records, nil, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	second := agg.Day(records, nil, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 60, first.UsedMinutes)
	assert.Equal(t, 60, second.UsedMinutes)
}

func TestDaySummaryNoSignalWindow(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("e1", "study", PolarityPositive, OriginManual, "2024-06-10T08:00:00Z", "2024-06-10T13:00:00Z", 1.0),
	}
	// nil window: anchors are zero, so netNorm must be neutral regardless of netRaw
	summary := agg.Day(records, nil, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.InDelta(t, 5, summary.NetRaw, 1e-9)
	assert.Zero(t, summary.NetNorm)
}

func TestMonthEmitsEveryDay(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("e1", "study", PolarityPositive, OriginManual, "2024-02-05T08:00:00Z", "2024-02-05T09:00:00Z", 1.0),
	}
	summaries := agg.Month(records, records, 2024, time.February)

	require.Len(t, summaries, 29) // leap year
	assert.Equal(t, "2024-02-01", summaries[0].Day)
	assert.Equal(t, "2024-02-29", summaries[28].Day)

	var withTime int
	for _, s := range summaries {
		if s.UsedMinutes > 0 {
			withTime++
		}
	}
	assert.Equal(t, 1, withTime)
}

func TestMonthSharesAnchorsAcrossDays(t *testing.T) {
	agg := testAggregator()
	var window []SessionRecord
	for d := 1; d <= 28; d++ {
		start := time.Date(2024, 5, d, 8, 0, 0, 0, time.UTC)
		window = append(window, SessionRecord{
			ID: "w", Category: "study", Polarity: PolarityPositive, Origin: OriginManual,
			Start: start, End: start.Add(time.Duration(d) * 10 * time.Minute), WeightSum: 1.0,
		})
	}
	summaries := agg.Month(window, window, 2024, time.May)

	for _, s := range summaries {
		assert.GreaterOrEqual(t, s.NetNorm, -1.0)
		assert.LessOrEqual(t, s.NetNorm, 1.0)
	}
	// the heaviest day saturates against the shared 95th percentile anchor
	last := summaries[30]
	assert.Zero(t, last.UsedMinutes)
}

func TestMalformedSessionSkipped(t *testing.T) {
	agg := testAggregator()
	records := []SessionRecord{
		session("bad", "study", PolarityPositive, OriginManual, "2024-06-10T10:00:00Z", "2024-06-10T09:00:00Z", 1.0),
	}
	summary := agg.Day(records, nil, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, summary.UsedMinutes)
}

func TestWindowStart(t *testing.T) {
	agg := testAggregator()
	boundary := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, boundary.AddDate(0, 0, -28), agg.WindowStart(boundary))
}
