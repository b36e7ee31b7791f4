// internal/workers/scoring/admission-odds/models.go
package admissionodds

// Input takes the two composite scores, usually produced upstream by the
// rate-student and rate-college workers in the same process instance.
// Absent scores count as 0.
type Input struct {
	StudentScore float64 `json:"studentScore"`
	CollegeScore float64 `json:"collegeScore"`
}

type Output struct {
	AdmissionOdds int    `json:"admissionOdds"`
	OddsBand      string `json:"oddsBand"`
}
