// internal/workers/scoring/rate-college/models.go
package ratecollege

import "collegeplan-workers/internal/scoring"

// Input carries either an inline college record or a catalog name to look
// up. Inline wins when both are present.
type Input struct {
	CollegeName string                 `json:"collegeName"`
	College     *scoring.CollegeRecord `json:"college"`
}

type Output struct {
	CollegeName  string                   `json:"collegeName,omitempty"`
	CollegeScore int                      `json:"collegeScore"`
	Breakdown    scoring.CollegeBreakdown `json:"scoreBreakdown"`
	RatedFrom    string                   `json:"ratedFrom"` // "inline" or "catalog"
}
