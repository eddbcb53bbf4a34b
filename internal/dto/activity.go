package dto

import "github.com/noah-isme/leveling-api/internal/engine"

// CreateActivityRequest is the payload for defining a catalog activity.
type CreateActivityRequest struct {
	Title     string             `json:"title" validate:"required,min=1,max=160"`
	Category  string             `json:"category" validate:"required,min=1,max=60"`
	Polarity  engine.Polarity    `json:"polarity" validate:"omitempty,oneof=positive negative"`
	BaseUnits *float64           `json:"base_units" validate:"omitempty,gt=0"`
	Weights   map[string]float64 `json:"weights" validate:"omitempty,dive,gte=0"`
	Caps      map[string]float64 `json:"caps" validate:"omitempty,dive,gte=0,lte=1"`
	Active    *bool              `json:"active"`
}

// UpdateActivityRequest mirrors the create payload; omitted fields keep their
// stored value.
type UpdateActivityRequest struct {
	Title     *string            `json:"title" validate:"omitempty,min=1,max=160"`
	Category  *string            `json:"category" validate:"omitempty,min=1,max=60"`
	Polarity  *engine.Polarity   `json:"polarity" validate:"omitempty,oneof=positive negative"`
	BaseUnits *float64           `json:"base_units" validate:"omitempty,gt=0"`
	Weights   map[string]float64 `json:"weights" validate:"omitempty,dive,gte=0"`
	Caps      map[string]float64 `json:"caps" validate:"omitempty,dive,gte=0,lte=1"`
	Active    *bool              `json:"active"`
}
