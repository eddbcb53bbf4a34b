package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leveling-api/internal/middleware"
	"github.com/noah-isme/leveling-api/internal/models"
	"github.com/noah-isme/leveling-api/internal/service"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type exportServiceMock struct {
	monthResp       *service.ExportResult
	monthErr        error
	progressionResp *service.ExportResult
	progressionErr  error
	lastFormat      service.ExportFormat
}

func (m *exportServiceMock) Month(ctx context.Context, filter models.MonthFilter, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.monthResp, m.monthErr
}

func (m *exportServiceMock) Progression(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.progressionResp, m.progressionErr
}

func TestExportHandlerMonthCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		monthResp: &service.ExportResult{
			Filename:    "activity_report_2026-02.csv",
			ContentType: "text/csv",
			Payload:     []byte("Day,Used Minutes\n"),
		},
	}
	handler := NewExportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/export/month?year=2026&month=2", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, userClaims())

	handler.Month(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatCSV, mockSvc.lastFormat)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "activity_report_2026-02.csv")
}

func TestExportHandlerMonthFormatPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		monthResp: &service.ExportResult{ContentType: "application/pdf", Payload: []byte("%PDF-1.3")},
	}
	handler := NewExportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/export/month?format=pdf", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, userClaims())

	handler.Month(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, mockSvc.lastFormat)
}

func TestExportHandlerProgressionUnsupportedFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		progressionErr: appErrors.Clone(appErrors.ErrValidation, `unsupported export format "xlsx"`),
	}
	handler := NewExportHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/export/progression?format=xlsx", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, userClaims())

	handler.Progression(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/export/month", nil)
	c.Request = req

	handler.Month(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
