package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	apperrors "collegeplan-workers/internal/common/errors"
	"collegeplan-workers/internal/common/logger"
)

// Store holds the catalog in memory, keyed by normalized name. Reload swaps
// the whole index atomically so lookups never see a partial load.
type Store struct {
	mu      sync.RWMutex
	byName  map[string]College
	ordered []College
	logger  logger.Logger
}

func NewStore(log logger.Logger) *Store {
	return &Store{
		byName: make(map[string]College),
		logger: log.With(map[string]interface{}{"component": "catalog"}),
	}
}

// LoadFile reads a scanned catalog CSV and replaces the in-memory index.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewCatalogLoadFailedError(path, err)
	}
	defer f.Close()
	return s.Load(f, path)
}

// Load parses CSV from r. Rows without a name are skipped; rows with
// malformed numeric cells are kept with those cells zeroed, matching how the
// scraper writes partial data.
func (s *Store) Load(r io.Reader, source string) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return apperrors.NewCatalogLoadFailedError(source, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["name"]; !ok {
		return apperrors.NewCatalogLoadFailedError(source, fmt.Errorf("missing name column"))
	}

	byName := make(map[string]College)
	var ordered []College
	var skipped int

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return apperrors.NewCatalogLoadFailedError(source, err)
		}

		cell := func(name string) string {
			idx, ok := col[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := cell("name")
		if name == "" {
			skipped++
			continue
		}

		c := College{
			Name:                name,
			Type:                cell("college_type"),
			Years:               parseIntCell(cell("college_years")),
			AcceptanceRate:      parseFloatCell(cell("acceptance_rate_pct")),
			SAT25:               parseFloatCell(cell("sat_25th_percentile")),
			SAT50:               parseFloatCell(cell("sat_50th_percentile")),
			SAT75:               parseFloatCell(cell("sat_75th_percentile")),
			ACT25:               parseFloatCell(cell("act_25th_percentile")),
			ACT50:               parseFloatCell(cell("act_50th_percentile")),
			ACT75:               parseFloatCell(cell("act_75th_percentile")),
			GraduationRate:      parseFloatCell(cell("graduation_rate_pct")),
			RetentionRate:       parseFloatCell(cell("retention_rate_pct")),
			PctReceivingAid:     parseFloatCell(cell("pct_receiving_aid_pct")),
			AvgAidPackage:       parseFloatCell(cell("avg_aid_package_val")),
			AvgCostAfterAid:     parseFloatCell(cell("avg_after_aid_costs_val")),
			UndergradStudents:   parseFloatCell(cell("undergrad_students_num")),
			StudentFacultyRatio: parseFloatCell(cell("student_faculty_ratio_num")),
			MedianEarnings:      parseFloatCell(cell("median_earnings_val")),
			Setting:             cell("setting"),
			TestOptional:        cell("test_optional"),
			Score:               parseIntCell(cell("college_score")),
		}
		byName[NormalizeName(name)] = c
		ordered = append(ordered, c)
	}

	s.mu.Lock()
	s.byName = byName
	s.ordered = ordered
	s.mu.Unlock()

	s.logger.Info("catalog loaded", map[string]interface{}{
		"source":   source,
		"colleges": len(ordered),
		"skipped":  skipped,
	})
	return nil
}

// Lookup finds a college by exact name, case-insensitively.
func (s *Store) Lookup(name string) (College, error) {
	s.mu.RLock()
	c, ok := s.byName[NormalizeName(name)]
	s.mu.RUnlock()
	if !ok {
		return College{}, apperrors.NewCollegeNotFoundError(name)
	}
	return c, nil
}

// All returns the catalog in file order.
func (s *Store) All() []College {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]College, len(s.ordered))
	copy(out, s.ordered)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

func parseFloatCell(cell string) float64 {
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseIntCell(cell string) int {
	if cell == "" {
		return 0
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		// scraper sometimes writes floats into integer columns
		f, ferr := strconv.ParseFloat(cell, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return v
}
