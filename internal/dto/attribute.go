package dto

// UpsertAttributeConfigRequest writes one attribute constants row.
type UpsertAttributeConfigRequest struct {
	Key             string  `json:"key" validate:"required,min=1,max=60"`
	Unit            string  `json:"unit" validate:"required,min=1,max=20"`
	PointsPerUnit   float64 `json:"points_per_unit" validate:"gt=0"`
	DailySaturation float64 `json:"daily_saturation" validate:"gt=0"`
	ThresholdMin    float64 `json:"threshold_min" validate:"gt=0"`
	ThresholdMax    float64 `json:"threshold_max" validate:"gt=0"`
}
