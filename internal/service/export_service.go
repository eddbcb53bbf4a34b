package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/export"
)

// ExportFormat selects the rendering of a monthly report.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered report ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders monthly reporting views as downloadable files.
type ExportService struct {
	analytics   *AnalyticsService
	progression *ProgressionService
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(analytics *AnalyticsService, progression *ProgressionService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{analytics: analytics, progression: progression, csv: csv, pdf: pdf, logger: logger}
}

// Month renders the per-day calendar view of one month.
func (s *ExportService) Month(ctx context.Context, filter models.MonthFilter, format ExportFormat) (*ExportResult, error) {
	view, err := s.analytics.Month(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := monthDataset(view)
	title := fmt.Sprintf("Activity Report %04d-%02d", view.Year, view.Month)
	filename := fmt.Sprintf("activity_report_%04d-%02d_%s.%s", view.Year, view.Month, time.Now().UTC().Format("20060102_150405"), format)

	return s.render(dataset, title, filename, format)
}

// Progression renders the current tier/subtier standing per attribute.
func (s *ExportService) Progression(ctx context.Context, userID string, format ExportFormat) (*ExportResult, error) {
	progress, err := s.progression.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	dataset := progressionDataset(progress)
	title := "Attribute Progression"
	filename := fmt.Sprintf("progression_%s.%s", time.Now().UTC().Format("20060102_150405"), format)

	return s.render(dataset, title, filename, format)
}

func (s *ExportService) render(dataset export.Dataset, title, filename string, format ExportFormat) (*ExportResult, error) {
	var payload []byte
	var contentType string
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func monthDataset(view *models.MonthView) export.Dataset {
	headers := []string{"Day", "Used Minutes", "Coverage (%)", "Target (%)", "Net Raw", "Net Norm", "Hit Target", "Top Categories"}
	rows := make([]map[string]string, 0, len(view.Days))
	for _, day := range view.Days {
		categories := make([]string, 0, len(day.TopCategories))
		for _, cat := range day.TopCategories {
			categories = append(categories, fmt.Sprintf("%s (%dm)", cat.Name, cat.Minutes))
		}
		rows = append(rows, map[string]string{
			"Day":            day.Day,
			"Used Minutes":   fmt.Sprintf("%d", day.UsedMinutes),
			"Coverage (%)":   fmt.Sprintf("%.1f", day.CoveragePct*100),
			"Target (%)":     fmt.Sprintf("%.1f", day.TargetPct*100),
			"Net Raw":        fmt.Sprintf("%.2f", day.NetRaw),
			"Net Norm":       fmt.Sprintf("%.3f", day.NetNorm),
			"Hit Target":     fmt.Sprintf("%t", day.HitTarget),
			"Top Categories": strings.Join(categories, ", "),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func progressionDataset(progress []models.AttributeProgress) export.Dataset {
	headers := []string{"Attribute", "Tier", "Subtier", "Reward Points", "Last Update", "Promoted At"}
	rows := make([]map[string]string, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, map[string]string{
			"Attribute":     p.Attribute,
			"Tier":          fmt.Sprintf("%d", p.Tier),
			"Subtier":       fmt.Sprintf("%d", p.Subtier),
			"Reward Points": fmt.Sprintf("%.2f", p.RP),
			"Last Update":   formatReportTime(p.LastUpdate),
			"Promoted At":   formatReportTime(p.PromotedAt),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
