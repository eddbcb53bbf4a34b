package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leveling-api/internal/models"
	"github.com/noah-isme/leveling-api/internal/service"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/response"
)

type exportService interface {
	Month(ctx context.Context, filter models.MonthFilter, format service.ExportFormat) (*service.ExportResult, error)
	Progression(ctx context.Context, userID string, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler streams rendered reports back to the client.
type ExportHandler struct {
	service exportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Month godoc
// @Summary Export monthly report
// @Description Download the per-day calendar view as CSV or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /export/month [get]
func (h *ExportHandler) Month(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	now := time.Now().UTC()
	filter := models.MonthFilter{
		UserID: claims.UserID,
		Year:   parseIntDefault(c.Query("year"), now.Year()),
		Month:  time.Month(parseIntDefault(c.Query("month"), int(now.Month()))),
	}

	result, err := h.service.Month(c.Request.Context(), filter, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

// Progression godoc
// @Summary Export progression standing
// @Description Download the per-attribute tier standing as CSV or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /export/progression [get]
func (h *ExportHandler) Progression(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.service.Progression(c.Request.Context(), claims.UserID, exportFormat(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	writeExport(c, result)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
}

func writeExport(c *gin.Context, result *service.ExportResult) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
