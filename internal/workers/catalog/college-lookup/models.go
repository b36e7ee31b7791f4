// internal/workers/catalog/college-lookup/models.go
package collegelookup

import "collegeplan-workers/internal/catalog"

type Input struct {
	CollegeName string `json:"collegeName"`
}

type Output struct {
	College      catalog.College `json:"college"`
	CollegeScore int             `json:"collegeScore"`
}
