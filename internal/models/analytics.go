package models

import (
	"time"

	"github.com/noah-isme/leveling-api/internal/engine"
)

// MonthFilter selects the month of a calendar view.
type MonthFilter struct {
	UserID string
	Year   int
	Month  time.Month
}

// DayFilter selects a single reporting day.
type DayFilter struct {
	UserID string
	Day    string // YYYY-MM-DD
}

// MonthView is the calendar response for one month: one summary per day,
// normalized against a shared trailing window.
type MonthView struct {
	Year        int                 `json:"year"`
	Month       int                 `json:"month"`
	WindowStart string              `json:"window_start"`
	Days        []engine.DaySummary `json:"days"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// DayView is the reporting response for a single day.
type DayView struct {
	WindowStart string            `json:"window_start"`
	Summary     engine.DaySummary `json:"summary"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SystemMetrics is a lightweight instrumentation snapshot exposed through
// the analytics API.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
