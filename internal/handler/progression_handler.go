package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/response"
)

type progressionService interface {
	Snapshot(ctx context.Context, userID string) ([]models.AttributeProgress, error)
	Thresholds(ctx context.Context) (map[string]float64, error)
	Rebuild(ctx context.Context, userID string) error
	Reset(ctx context.Context, userID string) error
}

// ProgressionHandler exposes the tier/subtier progression endpoints.
type ProgressionHandler struct {
	service progressionService
}

// NewProgressionHandler creates a new handler.
func NewProgressionHandler(svc progressionService) *ProgressionHandler {
	return &ProgressionHandler{service: svc}
}

// Snapshot godoc
// @Summary Current progression state
// @Description Per-attribute tier, subtier and reward points
// @Tags Progression
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progression [get]
func (h *ProgressionHandler) Snapshot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	progress, err := h.service.Snapshot(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Thresholds godoc
// @Summary Promotion thresholds
// @Description Promotion cost per attribute derived from the constants table
// @Tags Progression
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progression/thresholds [get]
func (h *ProgressionHandler) Thresholds(c *gin.Context) {
	thresholds, err := h.service.Thresholds(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thresholds, nil)
}

// Rebuild godoc
// @Summary Replay history
// @Description Recompute progression by replaying the full entry history
// @Tags Progression
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /progression/rebuild [post]
func (h *ProgressionHandler) Rebuild(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Rebuild(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	progress, err := h.service.Snapshot(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Reset godoc
// @Summary Reset progression
// @Description Clear the caller's progression state
// @Tags Progression
// @Success 204 {object} response.Envelope
// @Router /progression [delete]
func (h *ProgressionHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Reset(c.Request.Context(), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
