package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/leveling-api/internal/engine"
)

// WeightMap is a JSONB-backed attribute weight mapping.
type WeightMap map[string]float64

// Value implements driver.Valuer for JSONB storage.
func (m WeightMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *WeightMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported weight map source %T", src)
	}
	return json.Unmarshal(raw, m)
}

// Activity is a catalog entry describing a repeatable activity: its
// category, polarity and how its units distribute across attributes.
// Weights may be nil, in which case the category's default mapping applies.
type Activity struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Title     string          `db:"title" json:"title"`
	Category  string          `db:"category" json:"category"`
	Polarity  engine.Polarity `db:"polarity" json:"polarity"`
	BaseUnits *float64        `db:"base_units" json:"base_units,omitempty"`
	Weights   WeightMap       `db:"weights" json:"weights,omitempty"`
	Caps      WeightMap       `db:"caps" json:"caps,omitempty"`
	Active    bool            `db:"active" json:"active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ActivityFilter narrows down activity listings.
type ActivityFilter struct {
	UserID   string
	Category string
	Polarity *engine.Polarity
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
