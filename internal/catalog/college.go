// Package catalog loads the scanned college catalog CSV and serves lookups
// for the rating and matching workers, with a redis cache in front of the
// per-college score computation.
package catalog

import (
	"strings"

	"collegeplan-workers/internal/scoring"
)

// College is one catalog row. Percent columns hold fractions in [0,1];
// numeric columns are zero when the source cell was empty.
type College struct {
	Name                string  `json:"name"`
	Type                string  `json:"collegeType"`
	Years               int     `json:"collegeYears"`
	AcceptanceRate      float64 `json:"acceptanceRate"`
	SAT25               float64 `json:"sat25"`
	SAT50               float64 `json:"sat50"`
	SAT75               float64 `json:"sat75"`
	ACT25               float64 `json:"act25"`
	ACT50               float64 `json:"act50"`
	ACT75               float64 `json:"act75"`
	GraduationRate      float64 `json:"graduationRate"`
	RetentionRate       float64 `json:"retentionRate"`
	PctReceivingAid     float64 `json:"pctReceivingAid"`
	AvgAidPackage       float64 `json:"avgAidPackage"`
	AvgCostAfterAid     float64 `json:"avgCostAfterAid"`
	UndergradStudents   float64 `json:"undergradStudents"`
	StudentFacultyRatio float64 `json:"studentFacultyRatio"`
	MedianEarnings      float64 `json:"medianEarnings"`
	Setting             string  `json:"setting"`
	TestOptional        string  `json:"testOptional"`
	Score               int     `json:"collegeScore"`
}

// ScoringRecord maps the catalog row onto the rater's input shape. The
// median percentiles stand in for the test midpoints.
func (c College) ScoringRecord() scoring.CollegeRecord {
	return scoring.CollegeRecord{
		AcceptanceRate:      c.AcceptanceRate,
		SATMid:              c.SAT50,
		ACTMid:              c.ACT50,
		GraduationRate:      c.GraduationRate,
		RetentionRate:       c.RetentionRate,
		MedianEarnings:      c.MedianEarnings,
		Enrollment:          c.UndergradStudents,
		StudentFacultyRatio: c.StudentFacultyRatio,
	}
}

// NormalizeName is the catalog's match key: lowercased, trimmed.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
