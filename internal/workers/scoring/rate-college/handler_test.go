// internal/workers/scoring/rate-college/handler_test.go
package ratecollege

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeplan-workers/internal/catalog"
	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/scoring"
)

type stubScorer struct {
	scored *catalog.ScoredCollege
	err    error
	asked  string
}

func (s *stubScorer) Score(_ context.Context, name string) (*catalog.ScoredCollege, error) {
	s.asked = name
	if s.err != nil {
		return nil, s.err
	}
	return s.scored, nil
}

func TestExecute_InlineRecord(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		College: &scoring.CollegeRecord{
			AcceptanceRate:      0.05,
			SATMid:              1500,
			GraduationRate:      0.95,
			RetentionRate:       0.97,
			MedianEarnings:      90000,
			Enrollment:          15000,
			StudentFacultyRatio: 5,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "inline", output.RatedFrom)
	assert.Equal(t, 92, output.CollegeScore)
	assert.InDelta(t, 1.0, output.Breakdown.Selectivity, 1e-9)
}

func TestExecute_CatalogLookup(t *testing.T) {
	scorer := &stubScorer{scored: &catalog.ScoredCollege{
		College: catalog.College{Name: "Ridgemont University"},
		Score:   88,
	}}
	handler := NewHandler(LoadConfig(), scorer, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{CollegeName: "ridgemont university"})

	require.NoError(t, err)
	assert.Equal(t, "ridgemont university", scorer.asked)
	assert.Equal(t, "catalog", output.RatedFrom)
	assert.Equal(t, "Ridgemont University", output.CollegeName)
	assert.Equal(t, 88, output.CollegeScore)
}

func TestExecute_UnknownCollege(t *testing.T) {
	scorer := &stubScorer{err: apperrors.NewCollegeNotFoundError("Nowhere State")}
	handler := NewHandler(LoadConfig(), scorer, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{CollegeName: "Nowhere State"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeCollegeNotFound, stdErr.Code)
}

func TestExecute_MissingInput(t *testing.T) {
	handler := NewHandler(LoadConfig(), &stubScorer{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeScoringInputInvalid, stdErr.Code)
}

func TestExecute_NoCatalogConfigured(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{CollegeName: "Anywhere U"})

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeScoringInputInvalid, stdErr.Code)
}

func TestExecute_EmptyRecordStillScores(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		College: &scoring.CollegeRecord{},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.CollegeScore)
}
