package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRater struct {
	rating float64
	err    error
	gotTxt string
}

func (s *stubRater) Rate(_ context.Context, text string) (float64, error) {
	s.gotTxt = text
	return s.rating, s.err
}

func TestRateStudent_ScoreAlwaysInRange(t *testing.T) {
	tests := []struct {
		name string
		rec  StudentRecord
	}{
		{"empty record", StudentRecord{}},
		{"everything maxed", StudentRecord{
			GPA: 9.9, Weighted: true, SAT: 2400, ACT: 99,
			APCourses: []APCourse{{Course: "Calc BC", Score: 5}},
		}},
		{"negative noise", StudentRecord{GPA: -3, SAT: -100, ACT: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := RateStudent(context.Background(), tt.rec, nil)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestRateStudent_UntestedPolicy(t *testing.T) {
	rec := StudentRecord{GPA: 4.0}

	score, breakdown := RateStudent(context.Background(), rec, nil)

	require.InDelta(t, 1.0/3.0, breakdown.Tests, 1e-9,
		"untested students get the assumed-SAT floor, not zero")
	// 0.35*1.0 + 0.30*(1/3) + 0.20*0.55 = 0.56
	assert.Equal(t, 56, score)
}

func TestRateStudent_GPADimension(t *testing.T) {
	tests := []struct {
		name     string
		gpa      float64
		weighted bool
		want     float64
	}{
		{"unweighted 4.0 is perfect", 4.0, false, 1.0},
		{"weighted 5.0 is perfect", 5.0, true, 1.0},
		{"weighted 4.0 is 0.8", 4.0, true, 0.8},
		{"above scale clamps", 4.6, false, 1.0},
		{"missing contributes zero", 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := StudentRecord{GPA: tt.gpa, Weighted: tt.weighted}
			_, b := RateStudent(context.Background(), rec, nil)
			assert.InDelta(t, tt.want, b.GPA, 1e-9)
		})
	}
}

func TestRateStudent_TestDimensionTakesBest(t *testing.T) {
	// SAT 1400 normalizes to 0.8333, ACT 30 to 0.8286; SAT wins.
	_, b := RateStudent(context.Background(), StudentRecord{SAT: 1400, ACT: 30}, nil)
	assert.InDelta(t, (1400.0-400)/1200, b.Tests, 1e-9)

	// ACT 36 beats a middling SAT.
	_, b = RateStudent(context.Background(), StudentRecord{SAT: 1000, ACT: 36}, nil)
	assert.InDelta(t, 1.0, b.Tests, 1e-9)
}

func TestRateStudent_APDimension(t *testing.T) {
	tests := []struct {
		name    string
		courses []APCourse
		want    float64
	}{
		{"no courses", nil, 0},
		{"single five", []APCourse{{Course: "Calc BC", Score: 5}}, 0.55},
		{"unnamed courses ignored", []APCourse{{Course: "  ", Score: 5}}, 0},
		{"unscored course zero-fills the average",
			[]APCourse{{Course: "Bio", Score: 4}, {Course: "CSA"}},
			0.5*0.2 + 0.5*(4.0/2/5)},
		{"ten courses cap the count norm", []APCourse{
			{Course: "a", Score: 5}, {Course: "b", Score: 5}, {Course: "c", Score: 5},
			{Course: "d", Score: 5}, {Course: "e", Score: 5}, {Course: "f", Score: 5},
			{Course: "g", Score: 5}, {Course: "h", Score: 5}, {Course: "i", Score: 5},
			{Course: "j", Score: 5}, {Course: "k", Score: 5},
		}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b := RateStudent(context.Background(), StudentRecord{APCourses: tt.courses}, nil)
			assert.InDelta(t, tt.want, b.AP, 1e-9)
		})
	}
}

func TestRateStudent_ActivitiesUseRater(t *testing.T) {
	rater := &stubRater{rating: 8}
	rec := StudentRecord{Activities: []Activity{{Hours: 10, Description: "debate team captain"}}}

	_, b := RateStudent(context.Background(), rec, rater)

	assert.Equal(t, "10 hours - debate team captain", rater.gotTxt)
	assert.InDelta(t, 0.8, b.Activities, 1e-9)
}

func TestRateStudent_ActivitiesFallback(t *testing.T) {
	rec := StudentRecord{Activities: []Activity{{Hours: 5, Description: "robotics"}}}

	tests := []struct {
		name  string
		rater ActivityRater
	}{
		{"nil rater", nil},
		{"rater error", &stubRater{err: errors.New("upstream down")}},
		{"rating out of range", &stubRater{rating: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, b := RateStudent(context.Background(), rec, tt.rater)
			assert.InDelta(t, NeutralActivityRating, b.ActivityRating, 1e-9)
			assert.InDelta(t, 0.55, b.Activities, 1e-9)
			assert.GreaterOrEqual(t, score, 0)
		})
	}
}

func TestRateStudent_EmptyActivitiesSkipRater(t *testing.T) {
	rater := &stubRater{rating: 9}

	_, b := RateStudent(context.Background(), StudentRecord{}, rater)

	assert.Empty(t, rater.gotTxt)
	assert.InDelta(t, NeutralActivityRating, b.ActivityRating, 1e-9)
}

func TestRateStudent_FullProfile(t *testing.T) {
	rec := StudentRecord{
		GPA: 3.8,
		SAT: 1400,
		ACT: 30,
		APCourses: []APCourse{
			{Course: "Calc BC", Score: 4}, {Course: "Physics C", Score: 4},
			{Course: "Lang", Score: 4}, {Course: "USH", Score: 4},
		},
		Activities: []Activity{{Hours: 12, Description: "varsity soccer"}},
	}

	score, _ := RateStudent(context.Background(), rec, &stubRater{rating: 7})

	// 0.35*0.95 + 0.30*0.8333 + 0.15*0.6 + 0.20*0.7 = 0.8125
	assert.Equal(t, 81, score)
}

func TestFlattenActivities(t *testing.T) {
	tests := []struct {
		name string
		rec  StudentRecord
		want string
	}{
		{
			"structured list",
			StudentRecord{Activities: []Activity{
				{Hours: 10, Description: "debate"},
				{Hours: 3.5, Description: "volunteering"},
			}},
			"10 hours - debate\n3.5 hours - volunteering",
		},
		{
			"entries without a description are dropped",
			StudentRecord{Activities: []Activity{
				{Hours: 10, Description: "  "},
				{Hours: 2, Description: "chess club"},
			}},
			"2 hours - chess club",
		},
		{
			"legacy free text when no structured entries",
			StudentRecord{ActivitiesText: "president of the coding club\n"},
			"president of the coding club",
		},
		{
			"structured list wins over free text",
			StudentRecord{
				Activities:     []Activity{{Hours: 1, Description: "band"}},
				ActivitiesText: "ignored",
			},
			"1 hours - band",
		},
		{"nothing at all", StudentRecord{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenActivities(tt.rec))
		})
	}
}
