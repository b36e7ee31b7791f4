// internal/workers/scoring/rate-student/handler_test.go
package ratestudent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/profile"
	"collegeplan-workers/internal/scoring"
)

type stubProfiles struct {
	profiles map[string]*profile.StudentProfile
	err      error
}

func (s *stubProfiles) Get(_ context.Context, studentID string) (*profile.StudentProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[studentID]
	if !ok {
		return nil, apperrors.NewProfileNotFoundError(studentID)
	}
	return p, nil
}

type stubRater struct {
	rating float64
	err    error
}

func (s *stubRater) Rate(context.Context, string) (float64, error) {
	return s.rating, s.err
}

func newHandler(t *testing.T, profiles ProfileStore, rater scoring.ActivityRater) *Handler {
	return NewHandler(LoadConfig(), profiles, rater, logger.NewTestLogger(t))
}

func TestExecute_InlineRecord(t *testing.T) {
	handler := newHandler(t, nil, &stubRater{rating: 8})

	output, err := handler.Execute(context.Background(), &Input{
		Student: &scoring.StudentRecord{
			GPA: 4.0,
			SAT: 1450,
			Activities: []scoring.Activity{
				{Hours: 10, Description: "student government"},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "inline", output.RatedFrom)
	assert.GreaterOrEqual(t, output.StudentScore, 0)
	assert.LessOrEqual(t, output.StudentScore, 100)
	assert.InDelta(t, 0.8, output.Breakdown.Activities, 1e-9)
}

func TestExecute_ResolvesProfile(t *testing.T) {
	profiles := &stubProfiles{profiles: map[string]*profile.StudentProfile{
		"stu-1": {
			StudentID: "stu-1",
			GPA:       3.6,
			SAT:       1300,
			APCourses: []scoring.APCourse{{Course: "Calc BC", Score: 5}},
		},
	}}
	handler := newHandler(t, profiles, nil)

	output, err := handler.Execute(context.Background(), &Input{StudentID: "stu-1"})

	require.NoError(t, err)
	assert.Equal(t, "profile", output.RatedFrom)
	assert.InDelta(t, 0.9, output.Breakdown.GPA, 1e-9)
	assert.InDelta(t, 0.55, output.Breakdown.AP, 1e-9)
}

func TestExecute_InlineWinsOverProfile(t *testing.T) {
	profiles := &stubProfiles{err: errors.New("should not be called")}
	handler := newHandler(t, profiles, nil)

	output, err := handler.Execute(context.Background(), &Input{
		StudentID: "stu-1",
		Student:   &scoring.StudentRecord{GPA: 4.0},
	})

	require.NoError(t, err)
	assert.Equal(t, "inline", output.RatedFrom)
}

func TestExecute_MissingInput(t *testing.T) {
	handler := newHandler(t, &stubProfiles{}, nil)

	_, err := handler.Execute(context.Background(), &Input{})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeScoringInputInvalid, stdErr.Code)
}

func TestExecute_ProfileNotFound(t *testing.T) {
	handler := newHandler(t, &stubProfiles{profiles: map[string]*profile.StudentProfile{}}, nil)

	_, err := handler.Execute(context.Background(), &Input{StudentID: "ghost"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeProfileNotFound, stdErr.Code)
}

func TestExecute_NoProfileStoreConfigured(t *testing.T) {
	handler := newHandler(t, nil, nil)

	_, err := handler.Execute(context.Background(), &Input{StudentID: "stu-1"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeScoringInputInvalid, stdErr.Code)
}

func TestExecute_RaterFailureFallsBackToNeutral(t *testing.T) {
	handler := newHandler(t, nil, &stubRater{err: errors.New("llm down")})

	output, err := handler.Execute(context.Background(), &Input{
		Student: &scoring.StudentRecord{
			GPA:        3.5,
			Activities: []scoring.Activity{{Hours: 4, Description: "robotics"}},
		},
	})

	require.NoError(t, err, "rating failures must never fail the job")
	assert.InDelta(t, scoring.NeutralActivityRating, output.Breakdown.ActivityRating, 1e-9)
}

func TestExecute_UntestedStudentPolicy(t *testing.T) {
	handler := newHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		Student: &scoring.StudentRecord{GPA: 4.0},
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, output.Breakdown.Tests, 1e-9)
	assert.Equal(t, 56, output.StudentScore)
}
