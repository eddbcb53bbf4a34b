package models

import "strings"

// DefaultCategoryWeights maps a category key to the attribute weight mapping
// applied when an activity carries no explicit weights. Input units are
// minutes for timed sessions or one event otherwise.
var DefaultCategoryWeights = map[string]map[string]float64{
	"study":      {"knowledge": 1.0},
	"reading":    {"knowledge": 0.8, "clarity": 0.2},
	"training":   {"vitality": 1.0, "resilience": 0.2},
	"exercise":   {"vitality": 1.0, "resilience": 0.2},
	"health":     {"vitality": 0.6, "resilience": 0.4},
	"meditation": {"clarity": 0.7, "resilience": 0.5},
	"work":       {"delivery": 0.7, "skill": 0.5},
	"project":    {"skill": 0.8, "delivery": 0.6},
	"networking": {"relations": 1.0},
	"social":     {"relations": 1.0},
	"finance":    {"finance": 1.0},
	"habit":      {"discipline": 1.0},
}

// NormalizeCategory canonicalises a raw category key.
func NormalizeCategory(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CategoryWeights resolves the default weight mapping for a category, or nil
// when the category is unknown.
func CategoryWeights(category string) map[string]float64 {
	return DefaultCategoryWeights[NormalizeCategory(category)]
}
