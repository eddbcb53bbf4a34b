package models

import "time"

// AttributeConfig is one row of the static per-attribute constants table,
// shared by every user.
type AttributeConfig struct {
	Key             string  `db:"key" json:"key"`
	Unit            string  `db:"unit" json:"unit"`
	PointsPerUnit   float64 `db:"points_per_unit" json:"points_per_unit"`
	DailySaturation float64 `db:"daily_saturation" json:"daily_saturation"`
	ThresholdMin    float64 `db:"threshold_min" json:"threshold_min"`
	ThresholdMax    float64 `db:"threshold_max" json:"threshold_max"`
}

// AttributeProgress is the persisted per-user progression state for one
// attribute.
type AttributeProgress struct {
	UserID     string     `db:"user_id" json:"user_id"`
	Attribute  string     `db:"attribute" json:"attribute"`
	Tier       int        `db:"tier" json:"tier"`
	Subtier    int        `db:"subtier" json:"subtier"`
	RP         float64    `db:"rp" json:"rp"`
	LastUpdate *time.Time `db:"last_update" json:"last_update,omitempty"`
	PromotedAt *time.Time `db:"promoted_at" json:"promoted_at,omitempty"`
}
