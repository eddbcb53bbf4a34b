package engine

import "math"

// Credit band multipliers. Units consumed beyond the daily saturation are
// credited at 50%, and beyond twice the saturation at 10%, so repeating the
// same activity all day cannot dominate progression.
const (
	bandTwoRate   = 0.5
	bandThreeRate = 0.1
)

// AllocateCredit applies tiered diminishing returns to rawUnits given the
// units already consumed today for the same attribute and the attribute's
// daily saturation constant. The result is nondecreasing in rawUnits, never
// negative and never exceeds rawUnits.
func AllocateCredit(rawUnits, usedToday, saturation float64) float64 {
	rawUnits = sanitize(rawUnits)
	usedToday = sanitize(usedToday)
	saturation = sanitize(saturation)

	rem1 := clamp(saturation-usedToday, 0, rawUnits)
	left1 := rawUnits - rem1

	consumed := usedToday + rem1
	if consumed > 2*saturation {
		consumed = 2 * saturation
	}
	cap2 := 2*saturation - consumed
	if cap2 < 0 {
		cap2 = 0
	}
	rem2 := clamp(cap2, 0, left1)
	left2 := left1 - rem2

	return rem1 + rem2*bandTwoRate + left2*bandThreeRate
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
