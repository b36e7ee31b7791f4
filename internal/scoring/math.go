package scoring

import "math"

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
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

// roundScore rounds half away from zero, matching math.Round.
func roundScore(v float64) int {
	return int(math.Round(v))
}
