package scoring

import (
	"context"
	"fmt"
	"strings"
)

// Student dimension weights. They sum to 1.
const (
	weightGPA        = 0.35
	weightTests      = 0.30
	weightAP         = 0.15
	weightActivities = 0.20
)

// assumedSATForUntested stands in for students with no SAT or ACT result so
// the test dimension lands at exactly one third rather than zero.
const assumedSATForUntested = 800

// StudentBreakdown reports the normalized 0..1 dimensions behind a student
// score, plus the raw 1..10 activity rating that fed the activities dimension.
type StudentBreakdown struct {
	GPA            float64 `json:"gpa"`
	Tests          float64 `json:"tests"`
	AP             float64 `json:"ap"`
	Activities     float64 `json:"activities"`
	ActivityRating float64 `json:"activityRating"`
}

// RateStudent computes the 0..100 student score. The rater may be nil; a nil,
// failing or empty-input rating falls back to NeutralActivityRating and never
// surfaces as an error.
func RateStudent(ctx context.Context, rec StudentRecord, rater ActivityRater) (int, StudentBreakdown) {
	b := StudentBreakdown{
		GPA:   gpaDimension(rec),
		Tests: testDimension(rec),
		AP:    apDimension(rec.APCourses),
	}
	b.ActivityRating = rateActivities(ctx, rec, rater)
	b.Activities = b.ActivityRating / 10

	composite := weightGPA*b.GPA +
		weightTests*b.Tests +
		weightAP*b.AP +
		weightActivities*b.Activities
	return roundScore(composite * 100), b
}

func gpaDimension(rec StudentRecord) float64 {
	if rec.GPA <= 0 {
		return 0
	}
	scale := 4.0
	if rec.Weighted {
		scale = 5.0
	}
	return clamp01(rec.GPA / scale)
}

func testDimension(rec StudentRecord) float64 {
	sat := rec.SAT
	if sat <= 0 && rec.ACT <= 0 {
		sat = assumedSATForUntested
	}
	var satNorm, actNorm float64
	if sat > 0 {
		satNorm = clamp01((sat - 400) / 1200)
	}
	if rec.ACT > 0 {
		actNorm = clamp01((rec.ACT - 1) / 35)
	}
	if actNorm > satNorm {
		return actNorm
	}
	return satNorm
}

// apDimension blends how many AP courses were taken (10 caps the count) with
// how well they went (average score out of 5). Courses without a name are
// ignored; named courses without a score drag the average down as zeros.
func apDimension(courses []APCourse) float64 {
	var n int
	var total float64
	for _, c := range courses {
		if strings.TrimSpace(c.Course) == "" {
			continue
		}
		n++
		if c.Score >= 1 && c.Score <= 5 {
			total += c.Score
		}
	}
	if n == 0 {
		return 0
	}
	countNorm := clamp01(float64(n) / 10)
	avgNorm := clamp01(total / float64(n) / 5)
	return 0.5*countNorm + 0.5*avgNorm
}

func rateActivities(ctx context.Context, rec StudentRecord, rater ActivityRater) float64 {
	text := FlattenActivities(rec)
	if text == "" || rater == nil {
		return NeutralActivityRating
	}
	rating, err := rater.Rate(ctx, text)
	if err != nil || rating < 1 || rating > 10 {
		return NeutralActivityRating
	}
	return rating
}

// FlattenActivities renders the structured activity list as one line per
// entry ("<hours> hours - <description>"). Entries without a description are
// dropped. When no structured entries survive, the legacy free-text block is
// returned as-is.
func FlattenActivities(rec StudentRecord) string {
	var lines []string
	for _, a := range rec.Activities {
		desc := strings.TrimSpace(a.Description)
		if desc == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%g hours - %s", a.Hours, desc))
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	return strings.TrimSpace(rec.ActivitiesText)
}
