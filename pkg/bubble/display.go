package bubble

import "math"

// Margin is the gap between a bubble's circle and its outer ring.
func Margin(radius float64) float64 {
	if radius >= 40 {
		return 4
	}
	return radius / 10
}

// FillHeight returns the height of the mask that leaves the filled share of
// a bubble uncovered, measured from the top of the outer ring. The ratio is
// clamped to [0, 1] and is 0 when amount is 0.
func FillHeight(radius, amount, fill float64) float64 {
	ratio := 0.0
	if amount != 0 {
		ratio = math.Max(0, math.Min(1, fill/amount))
	}
	if math.IsNaN(ratio) {
		ratio = 0
	}
	return 2 * (radius + Margin(radius)) * (1 - ratio)
}

// AmountFontSize returns the amount text size in em.
func AmountFontSize(radius float64) float64 {
	return math.Min(radius/50*1.85, 1.85)
}

// LabelFontSize returns the label text size in em.
func LabelFontSize(radius float64) float64 {
	return math.Max(0.3, math.Min(radius/40, 1))
}

// LabelOffset returns the vertical distance from the bubble center to the
// label baseline.
func LabelOffset(radius float64) float64 {
	switch {
	case radius >= 40:
		return radius + 2*4 + 12
	case radius < 12:
		return radius*1.2 + 3.6
	default:
		return radius*1.2 + radius*12/40
	}
}
