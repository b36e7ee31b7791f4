// cmd/tools/catalog-precompute/main.go
//
// Recomputes the college_score column for every row of the catalog CSV and
// writes the results out, so the scanned data ships with scores already
// populated and the workers only recompute on cache misses.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"sort"

	"collegeplan-workers/internal/catalog"
	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/scoring"
)

func main() {
	inPath := flag.String("in", "data/scanned.csv", "Path to the catalog CSV")
	outPath := flag.String("out", "", "Output path for name,college_score pairs (default: stdout)")
	top := flag.Int("top", 0, "Print only the N highest scoring colleges (0 = all)")
	flag.Parse()

	store := catalog.NewStore(logger.NewNoOpLogger())
	if err := store.LoadFile(*inPath); err != nil {
		fmt.Printf("Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	type scored struct {
		name  string
		score int
	}

	colleges := store.All()
	results := make([]scored, 0, len(colleges))
	for _, c := range colleges {
		score, _ := scoring.RateCollege(c.ScoringRecord())
		results = append(results, scored{name: c.Name, score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].name < results[j].name
	})

	if *top > 0 && *top < len(results) {
		results = results[:*top]
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Printf("Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	w.Write([]string{"name", "college_score"})
	for _, r := range results {
		w.Write([]string{r.name, fmt.Sprintf("%d", r.score)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Scored %d colleges from %s\n", len(results), *inPath)
}
