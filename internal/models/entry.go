package models

import (
	"time"

	"github.com/noah-isme/leveling-api/internal/engine"
)

// Entry is one logged session: a half-open [StartAt, EndAt) span attached to
// a catalog activity. DurationMin is derived on write and kept for listings.
type Entry struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"user_id"`
	ActivityID  string        `db:"activity_id" json:"activity_id"`
	StartAt     time.Time     `db:"start_at" json:"start_at"`
	EndAt       time.Time     `db:"end_at" json:"end_at"`
	DurationMin int           `db:"duration_min" json:"duration_min"`
	Origin      engine.Origin `db:"origin" json:"origin"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// EntryDetail joins an entry with the aggregation-relevant fields of its
// activity. This is the record shape pulled for analytics and progression.
type EntryDetail struct {
	Entry
	ActivityTitle string          `db:"activity_title" json:"activity_title"`
	Category      string          `db:"category" json:"category"`
	Polarity      engine.Polarity `db:"polarity" json:"polarity"`
	BaseUnits     *float64        `db:"base_units" json:"base_units,omitempty"`
	Weights       WeightMap       `db:"weights" json:"weights,omitempty"`
	Caps          WeightMap       `db:"caps" json:"caps,omitempty"`
}

// EntryFilter narrows down entry listings.
type EntryFilter struct {
	UserID     string
	ActivityID string
	From       *time.Time
	To         *time.Time
	Origin     *engine.Origin
	Page       int
	PageSize   int
}
