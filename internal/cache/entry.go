// Package cache persists amorsize decisions so repeated calls against
// the same function and workload shape skip dry-run sampling
// entirely. Entries live as one JSON file per key under
// os.UserCacheDir()/amorsize, validated on load against schema
// version, TTL, and the platform that produced them.
package cache

import "time"

// SchemaVersion is bumped whenever Entry's on-disk shape changes.
const SchemaVersion = 1

// DefaultTTL matches the original implementation's week-long default.
const DefaultTTL = 7 * 24 * time.Hour

// AutoPruneProbability is the chance, on any given Store.Save or
// Store.Load, that the store also sweeps expired entries before the
// call returns.
const AutoPruneProbability = 0.05

// Entry is a cached optimization decision for one function/workload
// shape.
type Entry struct {
	SchemaVersion    int       `json:"schema_version"`
	CacheKey         string    `json:"cache_key"`
	NumWorkers       int       `json:"num_workers"`
	ChunkSize        int       `json:"chunk_size"`
	EstimatedSpeedup float64   `json:"estimated_speedup"`
	Reason           string    `json:"reason"`
	PhysicalCores    int       `json:"physical_cores"`
	LogicalCores     int       `json:"logical_cores"`
	SpawnModel       string    `json:"spawn_model"`
	AvailableMemory  uint64    `json:"available_memory"`
	CreatedAt        time.Time `json:"created_at"`
}

// BenchmarkEntry is a cached empirical speedup measurement, keyed
// without the time bucket since a benchmark's whole point is to
// override the estimate.
type BenchmarkEntry struct {
	SchemaVersion    int       `json:"schema_version"`
	CacheKey         string    `json:"cache_key"`
	MeasuredSpeedup  float64   `json:"measured_speedup"`
	NumWorkers       int       `json:"num_workers"`
	ChunkSize        int       `json:"chunk_size"`
	SampleDataSize   int       `json:"sample_data_size"`
	CreatedAt        time.Time `json:"created_at"`
}
