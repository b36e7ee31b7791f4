package scoring

import "math"

// Odds output bounds. Real pools never yield certainties, so the transform
// saturates short of 0 and 100.
const (
	minOdds = 2
	maxOdds = 98
)

// AdmissionOdds converts the gap between a student score and a college score
// into an admission-probability percentage. Both inputs are clamped to
// [0,100] first. The delta feeds a bounded-growth transform so extreme gaps
// saturate toward the [2,98] bounds instead of hitting 0 or 100; a zero
// delta yields exactly 50.
func AdmissionOdds(studentScore, collegeScore float64) int {
	s := clamp(studentScore, 0, 100)
	c := clamp(collegeScore, 0, 100)

	delta := s - c
	normalized := delta / 50
	smoothed := normalized / (1 + math.Abs(normalized)*0.8) * 50
	odds := clamp(50+smoothed*1.5, minOdds, maxOdds)
	return roundScore(odds)
}

// OddsBand labels an odds percentage the way counselors bucket schools.
func OddsBand(odds int) string {
	switch {
	case odds < 30:
		return "reach"
	case odds <= 70:
		return "target"
	default:
		return "safety"
	}
}
