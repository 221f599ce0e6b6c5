package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// ValidationResult is a detailed health report, distinct from Stats in
// that it records the specific problem found per bad entry.
type ValidationResult struct {
	TotalEntries int
	ValidEntries int
	Problems     []ValidationProblem
}

// ValidationProblem names one malformed cache file and why it failed.
type ValidationProblem struct {
	File   string
	Reason string
}

// HealthScore is the percentage of examined entries that validated
// cleanly (100 when there are none). Unlike Stats.HealthScore it does
// not weight problems by kind.
func (v ValidationResult) HealthScore() float64 {
	if v.TotalEntries == 0 {
		return 100
	}
	score := 100 * float64(v.ValidEntries) / float64(v.TotalEntries)
	return score
}

// Validate inspects every cache file in detail and reports specific
// problems, rather than just counting them the way Stats does.
func (s *Store) Validate() (ValidationResult, error) {
	var result ValidationResult

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return result, nil
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		result.TotalEntries++
		full := filepath.Join(s.dir, e.Name())

		raw, err := os.ReadFile(full)
		if err != nil {
			result.Problems = append(result.Problems, ValidationProblem{File: e.Name(), Reason: "unreadable"})
			continue
		}

		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			result.Problems = append(result.Problems, ValidationProblem{File: e.Name(), Reason: "malformed_json"})
			continue
		}

		if entry.SchemaVersion != SchemaVersion {
			result.Problems = append(result.Problems, ValidationProblem{File: e.Name(), Reason: "schema_mismatch"})
			continue
		}

		if time.Since(entry.CreatedAt) > s.ttl {
			result.Problems = append(result.Problems, ValidationProblem{File: e.Name(), Reason: "expired"})
			continue
		}

		result.ValidEntries++
	}

	return result, nil
}

// Repair removes every file Validate flagged as a problem. With
// dryRun true it reports what would be removed without touching the
// filesystem.
func (s *Store) Repair(dryRun bool) (map[string]int, error) {
	result, err := s.Validate()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, p := range result.Problems {
		counts[p.Reason]++
		if !dryRun {
			_ = os.Remove(filepath.Join(s.dir, p.File))
		}
	}
	return counts, nil
}
