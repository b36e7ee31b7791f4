package scoring

import "math"

// College dimension weights. They sum to 1.
const (
	weightSelectivity  = 0.30
	weightTestScores   = 0.25
	weightGraduation   = 0.15
	weightRetention    = 0.10
	weightEarnings     = 0.10
	weightEnrollment   = 0.05
	weightFacultyRatio = 0.05
)

// Acceptance rates under this threshold get the reach-school boost.
const reachRateThreshold = 0.20

// CollegeBreakdown reports the normalized 0..1 dimensions behind a college
// score.
type CollegeBreakdown struct {
	Selectivity  float64 `json:"selectivity"`
	TestScores   float64 `json:"testScores"`
	Graduation   float64 `json:"graduation"`
	Retention    float64 `json:"retention"`
	Earnings     float64 `json:"earnings"`
	Enrollment   float64 `json:"enrollment"`
	FacultyRatio float64 `json:"facultyRatio"`
}

// RateCollege computes the 0..100 college score. Missing or out-of-range
// attributes contribute zero (or a clamped value); the call never fails.
func RateCollege(rec CollegeRecord) (int, CollegeBreakdown) {
	b := CollegeBreakdown{
		Selectivity:  selectivityDimension(rec.AcceptanceRate),
		TestScores:   collegeTestDimension(rec),
		Graduation:   rateDimension(rec.GraduationRate),
		Retention:    rateDimension(rec.RetentionRate),
		Earnings:     earningsDimension(rec.MedianEarnings),
		Enrollment:   enrollmentDimension(rec.Enrollment),
		FacultyRatio: facultyRatioDimension(rec.StudentFacultyRatio),
	}

	composite := weightSelectivity*b.Selectivity +
		weightTestScores*b.TestScores +
		weightGraduation*b.Graduation +
		weightRetention*b.Retention +
		weightEarnings*b.Earnings +
		weightEnrollment*b.Enrollment +
		weightFacultyRatio*b.FacultyRatio
	return roundScore(composite * 100), b
}

// selectivityDimension inverts the acceptance rate and boosts highly
// selective schools (rate under 20%) by 1.2x, re-clamped to 1.
func selectivityDimension(rate float64) float64 {
	if rate <= 0 || rate > 1 {
		return 0
	}
	norm := 1 - rate
	if rate < reachRateThreshold {
		norm = math.Min(1, norm*1.2)
	}
	return norm
}

func collegeTestDimension(rec CollegeRecord) float64 {
	var satNorm, actNorm float64
	if rec.SATMid > 0 {
		satNorm = clamp01((rec.SATMid - 400) / 1200)
	}
	if rec.ACTMid > 0 {
		actNorm = clamp01((rec.ACTMid - 1) / 35)
	}
	if actNorm > satNorm {
		return actNorm
	}
	return satNorm
}

func rateDimension(rate float64) float64 {
	if rate <= 0 || rate > 1 {
		return 0
	}
	return rate
}

func earningsDimension(earnings float64) float64 {
	if earnings <= 0 {
		return 0
	}
	return clamp01((earnings - 30000) / 120000)
}

// enrollmentDimension prefers mid-to-large institutions. Headcounts between
// 5000 and 30000 score in [0.8,1.0] peaking at 15000; larger schools score a
// flat 0.7; smaller schools ramp up to a 0.6 ceiling.
func enrollmentDimension(enrollment float64) float64 {
	switch {
	case enrollment <= 0:
		return 0
	case enrollment >= 5000 && enrollment <= 30000:
		return 0.8 + 0.2*(1-math.Abs(enrollment-15000)/15000)
	case enrollment > 30000:
		return 0.7
	default:
		return math.Min(0.6, enrollment/5000)
	}
}

// facultyRatioDimension maps a 5:1 student/faculty ratio to 1.0 and 25:1 to 0.
func facultyRatioDimension(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	return clamp01(1 - (ratio-5)/20)
}
