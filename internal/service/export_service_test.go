package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

func testExportService(entries *mockAnalyticsEntries, progression *mockProgressionStore) *ExportService {
	analytics := testAnalyticsService(entries)
	var progressionSvc *ProgressionService
	if progression != nil {
		progressionSvc = testProgressionService(progression)
	}
	return NewExportService(analytics, progressionSvc, zap.NewNop(), nil, nil)
}

func TestExportMonthCSV(t *testing.T) {
	entries := &mockAnalyticsEntries{}
	start := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	entries.details = []models.EntryDetail{
		entryAt("e1", start, 120, "study", models.WeightMap{"knowledge": 1}),
	}
	svc := testExportService(entries, nil)

	result, err := svc.Month(context.Background(), models.MonthFilter{UserID: "u1", Year: 2026, Month: time.February}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Day,Used Minutes")
	assert.Contains(t, body, "2026-02-10,120")
	// header plus one row per day of February.
	assert.Equal(t, 29, strings.Count(strings.TrimSpace(body), "\n")+1)
}

func TestExportMonthPDF(t *testing.T) {
	entries := &mockAnalyticsEntries{}
	svc := testExportService(entries, nil)

	result, err := svc.Month(context.Background(), models.MonthFilter{UserID: "u1", Year: 2026, Month: time.February}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := testExportService(&mockAnalyticsEntries{}, nil)

	_, err := svc.Month(context.Background(), models.MonthFilter{UserID: "u1", Year: 2026, Month: time.February}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportProgressionCSV(t *testing.T) {
	store := newMockProgressionStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.progress["u1"] = []models.AttributeProgress{
		{UserID: "u1", Attribute: "knowledge", Tier: 1, Subtier: 2, RP: 33.5, LastUpdate: &now},
	}
	svc := testExportService(&mockAnalyticsEntries{}, store)

	result, err := svc.Progression(context.Background(), "u1", ExportFormatCSV)
	require.NoError(t, err)
	body := string(result.Payload)
	assert.Contains(t, body, "knowledge,1,2,33.50")
}
