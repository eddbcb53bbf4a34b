package engine

import (
	"math"
	"sort"
)

// Anchors returns the nearest-rank 5th and 95th percentiles of the rolling
// window. An empty window yields zero anchors, which Normalize treats as
// "no signal".
func Anchors(window []float64) (p5, p95 float64) {
	if len(window) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(window))
	copy(sorted, window)
	sort.Float64s(sorted)
	return sorted[rankIndex(5, len(sorted))], sorted[rankIndex(95, len(sorted))]
}

func rankIndex(percentile float64, n int) int {
	idx := int(math.Round(percentile / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// Normalize maps a raw daily net score onto [-1, 1] using the window anchors
// as scale: positive values against |p95|, negative against |p5|. The scale
// self-calibrates to each user's recent history since net benefit per day has
// no natural unit.
func Normalize(value, p5, p95 float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if p5 == 0 && p95 == 0 {
		return 0
	}
	if value >= 0 {
		denom := 1.0
		if p95 != 0 {
			denom = math.Abs(p95)
		}
		return clamp(value/denom, 0, 1)
	}
	denom := 1.0
	if p5 != 0 {
		denom = math.Abs(p5)
	}
	return -clamp(math.Abs(value)/denom, 0, 1)
}
