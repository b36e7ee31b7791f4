// internal/workers/scoring/match-colleges/models.go
package matchcolleges

import "collegeplan-workers/internal/scoring"

// Input identifies the student (inline or by id) and optionally restricts
// the candidate set to specific catalog names. Limit caps the result list.
type Input struct {
	StudentID string                 `json:"studentId"`
	Student   *scoring.StudentRecord `json:"student"`
	Colleges  []string               `json:"colleges"`
	Limit     int                    `json:"limit"`
}

type Match struct {
	CollegeName   string `json:"collegeName"`
	CollegeScore  int    `json:"collegeScore"`
	AdmissionOdds int    `json:"admissionOdds"`
	OddsBand      string `json:"oddsBand"`
}

// Output carries the ranked list plus a MatchRunID so downstream process
// steps can correlate follow-up work with this run.
type Output struct {
	MatchRunID   string  `json:"matchRunId"`
	StudentScore int     `json:"studentScore"`
	Matches      []Match `json:"matches"`
	Considered   int     `json:"considered"`
}
