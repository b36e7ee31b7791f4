// Package scoring implements the fit-score engine: it normalizes raw
// academic and institutional attributes into 0..1 dimensions, blends them
// with fixed weights into 0..100 composite scores, and converts the gap
// between a student score and a college score into an admission-odds
// percentage. Everything here is pure computation over value objects; the
// single external touchpoint (activity-strength rating) is injected as an
// interface and degrades to a neutral default on any failure.
package scoring

import "context"

// StudentRecord is the academic profile rated by RateStudent. All fields are
// optional; zero values count as "not provided" and contribute nothing.
type StudentRecord struct {
	GPA       float64    `json:"gpa"`
	Weighted  bool       `json:"weighted"`
	SAT       float64    `json:"sat"`
	ACT       float64    `json:"act"`
	APCourses []APCourse `json:"apCourses"`

	// Activities holds the structured list; ActivitiesText is the legacy
	// free-text block. When both are present the structured list wins.
	Activities     []Activity `json:"activities"`
	ActivitiesText string     `json:"activitiesText"`
}

type APCourse struct {
	Course string  `json:"course"`
	Score  float64 `json:"score"`
}

type Activity struct {
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

// CollegeRecord is the institutional profile rated by RateCollege.
// AcceptanceRate, GraduationRate and RetentionRate are fractions in [0,1];
// MedianEarnings is 10-year median earnings in dollars.
type CollegeRecord struct {
	AcceptanceRate      float64 `json:"acceptanceRate"`
	SATMid              float64 `json:"satMid"`
	ACTMid              float64 `json:"actMid"`
	GraduationRate      float64 `json:"graduationRate"`
	RetentionRate       float64 `json:"retentionRate"`
	MedianEarnings      float64 `json:"medianEarnings"`
	Enrollment          float64 `json:"enrollment"`
	StudentFacultyRatio float64 `json:"studentFacultyRatio"`
}

// ActivityRater scores a flattened activities text on a 1..10 scale.
// Implementations may block on the network; callers must treat any error as
// "use the neutral default".
type ActivityRater interface {
	Rate(ctx context.Context, activitiesText string) (float64, error)
}

// NeutralActivityRating is substituted whenever the rating capability is
// absent, fails, or has nothing to rate.
const NeutralActivityRating = 5.5
