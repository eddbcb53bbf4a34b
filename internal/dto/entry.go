package dto

import (
	"time"

	"github.com/noah-isme/leveling-api/internal/engine"
)

// CreateEntryRequest logs one session against a catalog activity.
type CreateEntryRequest struct {
	ActivityID string        `json:"activity_id" validate:"required"`
	StartAt    time.Time     `json:"start_at" validate:"required"`
	EndAt      time.Time     `json:"end_at" validate:"required"`
	Origin     engine.Origin `json:"origin" validate:"omitempty,oneof=timer manual import"`
	Notes      *string       `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateEntryRequest edits a logged session; omitted fields keep their stored
// value.
type UpdateEntryRequest struct {
	ActivityID *string        `json:"activity_id"`
	StartAt    *time.Time     `json:"start_at"`
	EndAt      *time.Time     `json:"end_at"`
	Origin     *engine.Origin `json:"origin" validate:"omitempty,oneof=timer manual import"`
	Notes      *string        `json:"notes" validate:"omitempty,max=2000"`
}
