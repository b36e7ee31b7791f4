// internal/workers/scoring/rate-student/models.go
package ratestudent

import "collegeplan-workers/internal/scoring"

// Input carries either an inline academic record or a studentId to resolve
// from the profile store. Inline wins when both are present.
type Input struct {
	StudentID string                 `json:"studentId"`
	Student   *scoring.StudentRecord `json:"student"`
}

type Output struct {
	StudentScore int                      `json:"studentScore"`
	Breakdown    scoring.StudentBreakdown `json:"scoreBreakdown"`
	RatedFrom    string                   `json:"ratedFrom"` // "inline" or "profile"
}
