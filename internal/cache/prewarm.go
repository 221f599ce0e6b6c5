package cache

import (
	"time"

	"github.com/amorsize/amorsize/internal/costmodel"
	"github.com/amorsize/amorsize/internal/fingerprint"
	"github.com/amorsize/amorsize/internal/platform"
)

// WorkloadProfile describes a canonical workload shape to pre-seed,
// without needing to run the candidate function at all.
type WorkloadProfile struct {
	Name              string
	TotalItems        int
	AvgSecondsPerItem float64
	ChunkSize         int
}

// DefaultWorkloadProfiles covers the shapes most callers hit in
// practice: a large fast-item batch, a small slow-item batch, and a
// middling mixed one.
func DefaultWorkloadProfiles() []WorkloadProfile {
	return []WorkloadProfile{
		{Name: "large_fast", TotalItems: 100000, AvgSecondsPerItem: 0.0005, ChunkSize: 200},
		{Name: "small_slow", TotalItems: 50, AvgSecondsPerItem: 0.5, ChunkSize: 1},
		{Name: "medium_mixed", TotalItems: 2000, AvgSecondsPerItem: 0.01, ChunkSize: 20},
	}
}

// Prewarm populates the store with a decision entry for each profile
// against fn's fingerprint, using the cost model directly instead of
// sampling fn. Returns the number of entries written.
func Prewarm(s *Store, fn interface{}, profiles []WorkloadProfile) (int, error) {
	info, err := platform.Probe()
	if err != nil {
		return 0, err
	}

	written := 0
	for _, p := range profiles {
		workers := info.PhysicalCores
		speedup := costmodel.Speedup(costmodel.Inputs{
			TotalComputeTime:         p.AvgSecondsPerItem * float64(p.TotalItems),
			TransferOverheadPerItem:  0.0001,
			SpawnCostPerWorker:       info.SpawnCost.Seconds(),
			ChunkingOverheadPerChunk: info.DispatchCost.Seconds(),
			NumWorkers:               workers,
			ChunkSize:                p.ChunkSize,
			TotalItems:               p.TotalItems,
		})

		key := fingerprint.CacheKey(fn, p.TotalItems, p.AvgSecondsPerItem)
		entry := Entry{
			CacheKey:         key,
			NumWorkers:       workers,
			ChunkSize:        p.ChunkSize,
			EstimatedSpeedup: speedup,
			Reason:           "prewarmed from profile " + p.Name,
			PhysicalCores:    info.PhysicalCores,
			LogicalCores:     info.LogicalCores,
			SpawnModel:       string(info.SpawnModel),
			AvailableMemory:  info.AvailableMemory,
			CreatedAt:        time.Now(),
		}

		if err := s.Save(entry); err == nil {
			written++
		}
	}
	return written, nil
}
