// internal/workers/scoring/admission-odds/handler_test.go
package admissionodds

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/validation"
)

func newHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func TestExecute_EvenMatch(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), &Input{
		StudentScore: 70,
		CollegeScore: 70,
	})

	require.NoError(t, err)
	assert.Equal(t, 50, output.AdmissionOdds)
	assert.Equal(t, "target", output.OddsBand)
}

func TestExecute_KnownOdds(t *testing.T) {
	tests := []struct {
		student, college float64
		wantOdds         int
		wantBand         string
	}{
		{90, 50, 87, "safety"},
		{50, 90, 13, "reach"},
		{60, 50, 63, "target"},
		{100, 0, 98, "safety"},
		{0, 100, 2, "reach"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v vs %v", tt.student, tt.college), func(t *testing.T) {
			output, err := newHandler(t).Execute(context.Background(), &Input{
				StudentScore: tt.student,
				CollegeScore: tt.college,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOdds, output.AdmissionOdds)
			assert.Equal(t, tt.wantBand, output.OddsBand)
		})
	}
}

func TestExecute_AbsentScoresCountAsZero(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 50, output.AdmissionOdds)
}

func TestExecute_OutOfRangeScoresClamp(t *testing.T) {
	output, err := newHandler(t).Execute(context.Background(), &Input{
		StudentScore: 500,
		CollegeScore: -20,
	})

	require.NoError(t, err)
	assert.Equal(t, 98, output.AdmissionOdds)
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]interface{}
		wantErr bool
	}{
		{"both scores numeric", map[string]interface{}{"studentScore": 70.0, "collegeScore": 60.0}, false},
		{"scores absent", map[string]interface{}{}, false},
		{"extra variables ignored", map[string]interface{}{"studentScore": 70.0, "foo": "bar"}, false},
		{"string score rejected", map[string]interface{}{"studentScore": "seventy"}, true},
		{"object score rejected", map[string]interface{}{"collegeScore": map[string]interface{}{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateAgainstSchema(tt.payload, inputSchema)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
