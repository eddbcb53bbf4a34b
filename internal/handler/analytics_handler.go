package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leveling-api/internal/middleware"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/response"
)

type analyticsService interface {
	Month(ctx context.Context, filter models.MonthFilter) (*models.MonthView, error)
	Day(ctx context.Context, filter models.DayFilter) (*models.DayView, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes the calendar reporting endpoints.
type AnalyticsHandler struct {
	service analyticsService
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// Month godoc
// @Summary Month calendar view
// @Description One reporting record per day of the month
// @Tags Analytics
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/month [get]
func (h *AnalyticsHandler) Month(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	year := parseIntDefault(c.Query("year"), 0)
	month := parseIntDefault(c.Query("month"), 0)
	if year == 0 || month == 0 {
		now := time.Now()
		year = now.Year()
		month = int(now.Month())
	}

	view, err := h.service.Month(c.Request.Context(), models.MonthFilter{
		UserID: claims.UserID,
		Year:   year,
		Month:  time.Month(month),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Day godoc
// @Summary Day reporting record
// @Tags Analytics
// @Produce json
// @Param day query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /analytics/day [get]
func (h *AnalyticsHandler) Day(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	day := c.Query("day")
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}

	view, err := h.service.Day(c.Request.Context(), models.DayFilter{UserID: claims.UserID, Day: day})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// System godoc
// @Summary System metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SystemMetrics(), nil)
}
