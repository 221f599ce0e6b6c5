package decision

import (
	"math"
	"strconv"
	"time"

	"github.com/amorsize/amorsize/internal/amlog"
	"github.com/amorsize/amorsize/internal/cache"
	"github.com/amorsize/amorsize/internal/costmodel"
	"github.com/amorsize/amorsize/internal/fingerprint"
	"github.com/amorsize/amorsize/internal/observability"
	"github.com/amorsize/amorsize/internal/platform"
	"github.com/amorsize/amorsize/internal/sampling"
)

// OptimizationResult is the outcome of one Optimize call.
type OptimizationResult struct {
	NumWorkers       int               `json:"num_workers" yaml:"num_workers"`
	ChunkSize        int               `json:"chunk_size" yaml:"chunk_size"`
	Reason           string            `json:"reason" yaml:"reason"`
	EstimatedSpeedup float64           `json:"estimated_speedup" yaml:"estimated_speedup"`
	Warnings         []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Remaining        []interface{}     `json:"-" yaml:"-"`
	Profile          *DiagnosticProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	CacheHit         bool              `json:"cache_hit" yaml:"cache_hit"`
}

// Engine runs the batch decision state machine against a cache store
// and metrics collector shared across calls.
type Engine struct {
	Cache     *cache.Store
	Metrics   observability.MetricsCollector
	Logger    *amlog.Logger
}

// NewEngine builds an Engine. A nil cache disables cache lookups
// entirely (every call samples fresh); a nil metrics collector
// defaults to the no-op.
func NewEngine(store *cache.Store, metrics observability.MetricsCollector) *Engine {
	if metrics == nil {
		metrics = observability.NewNoopCollector()
	}
	return &Engine{Cache: store, Metrics: metrics, Logger: amlog.For("decision")}
}

// Optimize decides parallelization parameters for calling fn over
// each element of data. T is the item type, R is fn's result type.
// Optimize never returns a non-nil error except for invalid opts or a
// nil fn.
func Optimize[T, R any](e *Engine, fn func(T) R, data []T, opts Options) (OptimizationResult, error) {
	if err := opts.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	if fn == nil {
		return OptimizationResult{}, amErr("function must not be nil")
	}

	profile := &DiagnosticProfile{}
	totalItems := len(data)

	store := e.Cache
	if store != nil && opts.CacheTTL > 0 {
		store = store.WithTTL(opts.CacheTTL)
	}

	// Provisional cache lookup using a rough per-item time estimate: a
	// single untimed call against the first item, cheap relative to the
	// full sample below. This lets a repeat call against an unchanged
	// workload skip sampling entirely.
	if opts.UseCache && store != nil && totalItems > 0 {
		provisionalKey := fingerprint.CacheKey(fn, totalItems, quickProbe(fn, data))
		if entry, reason, _ := store.Load(provisionalKey); reason == cache.MissNone && entry != nil {
			e.Metrics.Count("amorsize_cache_hits_total", 1, map[string]string{"component": "decision"})
			return OptimizationResult{
				NumWorkers:       entry.NumWorkers,
				ChunkSize:        entry.ChunkSize,
				Reason:           entry.Reason,
				EstimatedSpeedup: entry.EstimatedSpeedup,
				CacheHit:         true,
				Profile:          profile,
			}, nil
		}
	}
	e.Metrics.Count("amorsize_cache_misses_total", 1, map[string]string{"component": "decision"})

	sampleOpts := sampling.DefaultOptions()
	sampleOpts.SampleSize = opts.SampleSize
	sampleOpts.EnableMemoryEstimation = opts.EnableMemoryTracking
	start := time.Now()
	sampleResult := sampling.Sample(fn, data, sampleOpts)
	e.Metrics.Histogram("amorsize_sampler_duration_seconds", time.Since(start).Seconds(), map[string]string{"component": "decision"})

	// The provisional estimate above is a single call and can land in a
	// different time bucket than the refined, multi-sample average
	// below (fingerprint.BucketTime's boundaries are narrow). Re-check
	// under the refined key before doing the full decision computation,
	// so a second identical Optimize call still reports a cache hit
	// even when the provisional probe mis-bucketed.
	if opts.UseCache && store != nil && totalItems > 0 && sampleResult.Error == nil {
		refinedKey := fingerprint.CacheKey(fn, totalItems, sampleResult.AvgTime.Seconds())
		if entry, reason, _ := store.Load(refinedKey); reason == cache.MissNone && entry != nil {
			e.Metrics.Count("amorsize_cache_hits_total", 1, map[string]string{"component": "decision"})
			return OptimizationResult{
				NumWorkers:       entry.NumWorkers,
				ChunkSize:        entry.ChunkSize,
				Reason:           entry.Reason,
				EstimatedSpeedup: entry.EstimatedSpeedup,
				CacheHit:         true,
				Profile:          profile,
			}, nil
		}
	}

	remaining := make([]interface{}, 0, totalItems)
	for _, item := range data {
		remaining = append(remaining, item)
	}

	result := OptimizationResult{NumWorkers: 1, ChunkSize: 1, EstimatedSpeedup: 1.0, Remaining: remaining, Profile: profile}

	profile.AvgExecTime = sampleResult.AvgTime
	profile.CoefficientOfVariation = sampleResult.CoefficientOfVariation
	profile.WorkloadKind = string(sampleResult.WorkloadKind)
	profile.NestedParallelism = sampleResult.NestedParallelismLikely

	// Hard rejections.
	if sampleResult.Error != nil {
		profile.reject("sampling error: " + sampleResult.Error.Error())
		result.Reason = "serial: sampling failed"
		return result, nil
	}
	if !sampleResult.IsEncodable {
		profile.reject("function is not encodable across a goroutine boundary")
		result.Reason = "serial: function not picklable"
		result.Warnings = append(result.Warnings, "function failed the encodability check")
		return result, nil
	}
	if !sampleResult.DataItemsEncodable {
		profile.reject("data item not encodable")
		result.Reason = "serial: data item not picklable at index " + strconv.Itoa(sampleResult.UnencodableDataIndex)
		return result, nil
	}
	if sampleResult.AvgTime < time.Millisecond {
		profile.reject("average execution time below 1ms")
		result.Reason = "serial: function too fast, overhead would dominate"
		return result, nil
	}

	info, err := platform.Probe()
	if err != nil {
		result.Warnings = append(result.Warnings, "platform probe failed, using conservative defaults")
		info = platform.Info{PhysicalCores: 1, LogicalCores: 1, AvailableMemory: 1 << 30, SpawnModel: platform.SpawnModelGoroutine}
	}
	profile.PhysicalCores = info.PhysicalCores

	// Workload sizing.
	estimatedSerialTime := time.Duration(float64(sampleResult.AvgTime) * float64(totalItems))
	estimatedResultMemory := uint64(sampleResult.AvgReturnSize) * uint64(totalItems)
	profile.EstimatedTotalItems = totalItems
	profile.EstimatedSerialTime = estimatedSerialTime
	profile.EstimatedResultMemory = estimatedResultMemory
	profile.PeakMemoryBytes = sampleResult.PeakMemoryBytes

	if float64(estimatedResultMemory) > 0.5*float64(info.AvailableMemory) {
		result.Warnings = append(result.Warnings, "estimated result memory exceeds half of available memory; consider streaming mode")
		profile.recommend("switch to streaming mode to avoid accumulating results in memory")
	}

	if estimatedSerialTime < 2*info.SpawnCost {
		profile.reject("estimated total time below twice the spawn cost")
		result.Reason = "serial: workload too small relative to spawn cost"
		return result, nil
	}

	// Chunk size.
	chunkSize := 1
	if sampleResult.AvgTime > 0 {
		chunkSize = int(opts.TargetChunkDuration.Seconds() / sampleResult.AvgTime.Seconds())
		if chunkSize < 1 {
			chunkSize = 1
		}
	}
	if sampleResult.CoefficientOfVariation > 0.5 {
		scale := math.Max(0.25, 1.0-sampleResult.CoefficientOfVariation*0.5)
		chunkSize = int(float64(chunkSize) * scale)
		if chunkSize < 1 {
			chunkSize = 1
		}
		profile.constrain("heterogeneous workload: chunk size scaled down for load balance")
	}
	if totalItems > 0 {
		cap := totalItems / 10
		if cap > 0 && chunkSize > cap {
			chunkSize = cap
		}
	}

	// Worker count.
	workers := info.PhysicalCores
	if sampleResult.AvgReturnSize > 0 {
		maxByMemory := int(float64(info.AvailableMemory) / float64(sampleResult.AvgReturnSize))
		if maxByMemory > 0 && maxByMemory < workers {
			workers = maxByMemory
			profile.constrain("worker count reduced to fit available memory")
		}
	}
	// peak_memory_bytes * N > available_memory clamp: only applies when
	// memory tracking measured a nonzero peak (opts.EnableMemoryTracking
	// false leaves PeakMemoryBytes at 0, which skips this clamp).
	if sampleResult.PeakMemoryBytes > 0 {
		maxByPeakMemory := int(float64(info.AvailableMemory) / float64(sampleResult.PeakMemoryBytes))
		if maxByPeakMemory > 0 && maxByPeakMemory < workers {
			workers = maxByPeakMemory
			profile.constrain("worker count reduced to fit peak per-call memory usage")
		}
	}
	if sampleResult.NestedParallelismLikely {
		if opts.AutoAdjustForNestedParallelism {
			threads := sampleResult.EstimatedInternalThreads
			if threads < 1 {
				threads = 1
			}
			adjusted := info.PhysicalCores / threads
			if adjusted < 1 {
				adjusted = 1
			}
			if adjusted < workers {
				workers = adjusted
			}
			profile.constrain("worker count reduced to avoid oversubscription from nested parallelism")
		} else {
			result.Warnings = append(result.Warnings, "nested parallelism detected; consider pinning thread-count env vars to 1")
			profile.recommend("pin OMP_NUM_THREADS (and siblings) to 1 to avoid oversubscription")
		}
	}
	if workers < 1 {
		workers = 1
	}

	speedup := costmodel.Speedup(costmodel.Inputs{
		TotalComputeTime:         estimatedSerialTime.Seconds(),
		TransferOverheadPerItem:  sampleResult.AvgEncodeTime.Seconds() + sampleResult.AvgDataEncodeTime.Seconds(),
		SpawnCostPerWorker:       info.SpawnCost.Seconds(),
		ChunkingOverheadPerChunk: info.DispatchCost.Seconds(),
		NumWorkers:               workers,
		ChunkSize:                chunkSize,
		TotalItems:               totalItems,
	})
	profile.EstimatedSpeedup = speedup
	profile.ChosenWorkers = workers
	profile.ChosenChunkSize = chunkSize

	if speedup < 1.2 {
		profile.reject("estimated speedup below marginal-benefit threshold of 1.2x")
		result.Reason = "serial: estimated speedup too small to justify overhead"
		return result, nil
	}

	if workers <= 1 {
		result.Reason = "serial: single worker selected"
		return result, nil
	}

	result.NumWorkers = workers
	result.ChunkSize = chunkSize
	result.EstimatedSpeedup = speedup
	result.Reason = "parallelization beneficial: " + strconv.Itoa(workers) + " workers with chunks of " + strconv.Itoa(chunkSize)

	if opts.UseCache && store != nil && totalItems > 0 {
		key := fingerprint.CacheKey(fn, totalItems, sampleResult.AvgTime.Seconds())
		entry := cache.Entry{
			CacheKey:         key,
			NumWorkers:       workers,
			ChunkSize:        chunkSize,
			EstimatedSpeedup: speedup,
			Reason:           result.Reason,
			PhysicalCores:    info.PhysicalCores,
			LogicalCores:     info.LogicalCores,
			SpawnModel:       string(info.SpawnModel),
			AvailableMemory:  info.AvailableMemory,
		}
		_ = store.Save(entry) // cache is strictly advisory
	}

	e.Metrics.Gauge("amorsize_estimated_speedup", speedup, map[string]string{"component": "decision"})

	return result, nil
}

// quickProbe times a single call to fn against the first item of data,
// giving the provisional cache lookup a per-item time estimate cheaper
// than the full sample. Returns 0 (the "instant" bucket) for empty data.
func quickProbe[T, R any](fn func(T) R, data []T) float64 {
	if len(data) == 0 {
		return 0
	}
	start := time.Now()
	_ = fn(data[0])
	return time.Since(start).Seconds()
}

