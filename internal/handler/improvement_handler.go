package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/models"
	"github.com/noah-isme/leveling-api/internal/service"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
	"github.com/noah-isme/leveling-api/pkg/response"
)

// ImprovementHandler exposes the improvement request endpoints.
type ImprovementHandler struct {
	service *service.ImprovementService
}

// NewImprovementHandler creates a new handler.
func NewImprovementHandler(svc *service.ImprovementService) *ImprovementHandler {
	return &ImprovementHandler{service: svc}
}

// List godoc
// @Summary List improvement requests
// @Tags Improvements
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /improvements [get]
func (h *ImprovementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ImprovementFilter{
		UserID:   claims.UserID,
		Status:   models.ImprovementStatus(c.Query("status")),
		Page:     parseIntDefault(c.Query("page"), 1),
		PageSize: parseIntDefault(c.Query("pageSize"), 50),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown improvement status"))
		return
	}

	improvements, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	response.JSON(c, http.StatusOK, improvements, pagination)
}

// Create godoc
// @Summary File improvement request
// @Tags Improvements
// @Accept json
// @Produce json
// @Param payload body dto.CreateImprovementRequest true "Improvement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /improvements [post]
func (h *ImprovementHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateImprovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid improvement payload"))
		return
	}

	improvement, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, improvement)
}

// Update godoc
// @Summary Update improvement request
// @Tags Improvements
// @Accept json
// @Produce json
// @Param id path string true "Improvement ID"
// @Param payload body dto.UpdateImprovementRequest true "Improvement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /improvements/{id} [put]
func (h *ImprovementHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateImprovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid improvement payload"))
		return
	}

	improvement, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, improvement, nil)
}

// Delete godoc
// @Summary Delete improvement request
// @Tags Improvements
// @Param id path string true "Improvement ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /improvements/{id} [delete]
func (h *ImprovementHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
