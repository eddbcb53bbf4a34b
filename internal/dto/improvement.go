package dto

import "github.com/noah-isme/leveling-api/internal/models"

// CreateImprovementRequest files an improvement request.
type CreateImprovementRequest struct {
	Title       string                   `json:"title" validate:"required,min=1,max=120"`
	Description string                   `json:"description" validate:"omitempty,max=2000"`
	Status      models.ImprovementStatus `json:"status" validate:"omitempty,oneof=open in_progress resolved rejected"`
}

// UpdateImprovementRequest patches an improvement request; omitted fields keep
// their stored value.
type UpdateImprovementRequest struct {
	Title       *string                   `json:"title" validate:"omitempty,min=1,max=120"`
	Description *string                   `json:"description" validate:"omitempty,max=2000"`
	Status      *models.ImprovementStatus `json:"status" validate:"omitempty,oneof=open in_progress resolved rejected"`
}
