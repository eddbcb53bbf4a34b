package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type mockAnalyticsEntries struct {
	details []models.EntryDetail
	calls   int
}

func (m *mockAnalyticsEntries) ListDetailTouching(ctx context.Context, userID string, from, to time.Time) ([]models.EntryDetail, error) {
	m.calls++
	var out []models.EntryDetail
	for _, d := range m.details {
		if d.StartAt.Before(to) && !d.EndAt.Before(from) {
			out = append(out, d)
		}
	}
	return out, nil
}

func testAnalyticsService(entries *mockAnalyticsEntries) *AnalyticsService {
	aggregator := engine.NewAggregator(engine.AggregatorConfig{Location: time.UTC})
	return NewAnalyticsService(entries, aggregator, nil, nil, zap.NewNop(), 0, time.UTC)
}

func TestAnalyticsMonthShape(t *testing.T) {
	entries := &mockAnalyticsEntries{}
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	entries.details = []models.EntryDetail{
		entryAt("e1", start, 120, "study", models.WeightMap{"knowledge": 1}),
	}
	svc := testAnalyticsService(entries)

	view, err := svc.Month(context.Background(), models.MonthFilter{UserID: "u1", Year: 2026, Month: time.February})
	require.NoError(t, err)
	assert.Equal(t, 2026, view.Year)
	assert.Equal(t, 2, view.Month)
	require.Len(t, view.Days, 28)

	day := view.Days[9]
	assert.Equal(t, "2026-02-10", day.Day)
	assert.Equal(t, 120, day.UsedMinutes)
	require.Len(t, day.TopCategories, 1)
	assert.Equal(t, "study", day.TopCategories[0].Name)
}

func TestAnalyticsMonthInvalidFilter(t *testing.T) {
	svc := testAnalyticsService(&mockAnalyticsEntries{})

	_, err := svc.Month(context.Background(), models.MonthFilter{UserID: "u1", Year: 2026, Month: 13})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnalyticsDay(t *testing.T) {
	entries := &mockAnalyticsEntries{}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	entries.details = []models.EntryDetail{
		entryAt("e1", start, 360, "study", models.WeightMap{"knowledge": 1}),
	}
	svc := testAnalyticsService(entries)

	view, err := svc.Day(context.Background(), models.DayFilter{UserID: "u1", Day: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", view.Summary.Day)
	assert.Equal(t, 360, view.Summary.UsedMinutes)
	assert.True(t, view.Summary.HitTarget)
}

func TestAnalyticsDayBadFormat(t *testing.T) {
	svc := testAnalyticsService(&mockAnalyticsEntries{})

	_, err := svc.Day(context.Background(), models.DayFilter{UserID: "u1", Day: "10-03-2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestToSessionRecordsWeightFallback(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	records := toSessionRecords([]models.EntryDetail{
		entryAt("e1", start, 60, "Reading", nil),
	})
	require.Len(t, records, 1)
	assert.Equal(t, "reading", records[0].Category)
	// reading defaults: knowledge 0.8 + clarity 0.2.
	assert.InDelta(t, 1.0, records[0].WeightSum, 1e-9)
}

func TestToSessionRecordsUnknownCategoryScoresZero(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	records := toSessionRecords([]models.EntryDetail{
		entryAt("e1", start, 60, "mystery", nil),
	})
	require.Len(t, records, 1)
	// No weights resolve: the session keeps its minutes but scores nothing.
	assert.Equal(t, "mystery", records[0].Category)
	assert.InDelta(t, 0.0, records[0].WeightSum, 1e-9)
}
