package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Stats summarizes the health of a Store's contents.
type Stats struct {
	CacheDir     string
	TotalEntries int
	ValidEntries int
	ExpiredCount int
	CorruptCount int
	OldestEntry  time.Time
	NewestEntry  time.Time
}

// Stats scans every file in the store and reports aggregate health.
func (s *Store) Stats() (Stats, error) {
	out := Stats{CacheDir: s.dir}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return out, nil
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out.TotalEntries++

		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			out.CorruptCount++
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			out.CorruptCount++
			continue
		}
		if entry.SchemaVersion != SchemaVersion {
			out.CorruptCount++
			continue
		}
		if time.Since(entry.CreatedAt) > s.ttl {
			out.ExpiredCount++
			continue
		}

		out.ValidEntries++
		if out.OldestEntry.IsZero() || entry.CreatedAt.Before(out.OldestEntry) {
			out.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(out.NewestEntry) {
			out.NewestEntry = entry.CreatedAt
		}
	}

	return out, nil
}

// HealthScore returns a 0-100 score: 100 when every entry is valid,
// penalized for expired and corrupt entries.
func (st Stats) HealthScore() float64 {
	if st.TotalEntries == 0 {
		return 100
	}
	bad := st.ExpiredCount + 2*st.CorruptCount
	score := 100 * (1 - float64(bad)/float64(2*st.TotalEntries))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
