package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/service"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/response"
)

// AttributeHandler exposes the attribute constants table.
type AttributeHandler struct {
	service *service.AttributeService
}

// NewAttributeHandler creates a new handler.
func NewAttributeHandler(svc *service.AttributeService) *AttributeHandler {
	return &AttributeHandler{service: svc}
}

// List godoc
// @Summary List attribute configs
// @Description Points-per-unit, saturation and threshold bounds per attribute
// @Tags Attributes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attributes [get]
func (h *AttributeHandler) List(c *gin.Context) {
	configs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs, nil)
}

// Upsert godoc
// @Summary Create or replace an attribute config
// @Description Admin only. Updates the constants table for one attribute key
// @Tags Attributes
// @Accept json
// @Produce json
// @Param request body dto.UpsertAttributeConfigRequest true "Attribute config"
// @Success 200 {object} response.Envelope
// @Router /attributes [put]
func (h *AttributeHandler) Upsert(c *gin.Context) {
	var req dto.UpsertAttributeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attribute payload"))
		return
	}

	config, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, config, nil)
}
