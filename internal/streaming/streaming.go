// Package streaming is the streaming sibling of internal/decision: it
// optimizes for pool.imap/imap_unordered-style incremental consumption
// instead of a single bulk call. It never gates on result memory (a
// streaming caller never holds every result at once) and additionally
// decides between ordered and unordered delivery and a buffer size.
package streaming

import (
	"math"
	"strconv"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"github.com/amorsize/amorsize/internal/costmodel"
	"github.com/amorsize/amorsize/internal/platform"
	"github.com/amorsize/amorsize/internal/sampling"
)

// BufferSizeMultiplier sets the default buffer size as a multiple of
// the chosen worker count when the caller leaves BufferSize unset.
const BufferSizeMultiplier = 3

// MaxChunkSizeGrowthFactor bounds how large an adaptive chunk size may
// grow from its initial value.
const MaxChunkSizeGrowthFactor = 4

// ResultBufferMemoryFraction is the share of available memory an
// auto-sized buffer may occupy when memory backpressure is enabled.
const ResultBufferMemoryFraction = 0.1

// orderOverheadThreshold is the fraction of execution time overhead
// must exceed before unordered delivery is chosen automatically.
const orderOverheadThreshold = 0.2

// Options controls one Optimize call.
type Options struct {
	SampleSize                int
	TargetChunkDuration       time.Duration
	PreferOrdered             *bool // nil means decide automatically
	BufferSize                int   // 0 means auto
	EnableAdaptiveChunking    bool
	AdaptationRate            float64
	EnableMemoryBackpressure  bool
	MemoryThreshold           float64
}

// DefaultOptions mirrors the original streaming defaults.
func DefaultOptions() Options {
	return Options{
		SampleSize:          5,
		TargetChunkDuration: 200 * time.Millisecond,
		AdaptationRate:      0.3,
		MemoryThreshold:     0.8,
	}
}

func (o Options) Validate() error {
	if o.SampleSize <= 0 || o.SampleSize > 10000 {
		return amerrors.New(amerrors.ComponentStreaming, "validate", amerrors.ErrorTypeValidation,
			amErr("sample_size must be in (0, 10000]"))
	}
	if o.TargetChunkDuration <= 0 || o.TargetChunkDuration > time.Hour {
		return amerrors.New(amerrors.ComponentStreaming, "validate", amerrors.ErrorTypeValidation,
			amErr("target_chunk_duration must be in (0, 3600s]"))
	}
	if o.AdaptationRate < 0 || o.AdaptationRate > 1 {
		return amerrors.New(amerrors.ComponentStreaming, "validate", amerrors.ErrorTypeValidation,
			amErr("adaptation_rate must be in [0, 1]"))
	}
	if o.MemoryThreshold < 0 || o.MemoryThreshold > 1 {
		return amerrors.New(amerrors.ComponentStreaming, "validate", amerrors.ErrorTypeValidation,
			amErr("memory_threshold must be in [0, 1]"))
	}
	if o.BufferSize < 0 {
		return amerrors.New(amerrors.ComponentStreaming, "validate", amerrors.ErrorTypeValidation,
			amErr("buffer_size must be >= 1 when set"))
	}
	return nil
}

// AdaptiveChunkingParams is the policy handed to a streaming consumer
// that wants to shrink or grow its chunk size at runtime.
type AdaptiveChunkingParams struct {
	InitialChunkSize    int
	TargetChunkDuration time.Duration
	AdaptationRate      float64
	MinChunkSize        int
	MaxChunkSize         int
}

// OptimizationResult is the outcome of one streaming Optimize call.
type OptimizationResult struct {
	NumWorkers                int                     `json:"num_workers" yaml:"num_workers"`
	ChunkSize                 int                     `json:"chunk_size" yaml:"chunk_size"`
	UseOrdered                bool                    `json:"use_ordered" yaml:"use_ordered"`
	Reason                    string                  `json:"reason" yaml:"reason"`
	EstimatedSpeedup          float64                 `json:"estimated_speedup" yaml:"estimated_speedup"`
	Warnings                  []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Remaining                 []interface{}           `json:"-" yaml:"-"`
	AdaptiveChunkingEnabled   bool                    `json:"adaptive_chunking_enabled" yaml:"adaptive_chunking_enabled"`
	AdaptiveChunkingParams    *AdaptiveChunkingParams `json:"adaptive_chunking_params,omitempty" yaml:"adaptive_chunking_params,omitempty"`
	BufferSize                int                     `json:"buffer_size" yaml:"buffer_size"`
	MemoryBackpressureEnabled bool                    `json:"memory_backpressure_enabled" yaml:"memory_backpressure_enabled"`
}

// Optimize decides parallelization parameters for streaming consumption
// of fn applied to each element of data via an ordered or unordered
// incremental iterator.
func Optimize[T, R any](fn func(T) R, data []T, opts Options) (OptimizationResult, error) {
	if err := opts.Validate(); err != nil {
		return OptimizationResult{}, err
	}
	if fn == nil {
		return OptimizationResult{}, amErr("function must not be nil")
	}

	totalItems := len(data)
	remaining := make([]interface{}, 0, totalItems)
	for _, item := range data {
		remaining = append(remaining, item)
	}

	sampleOpts := sampling.DefaultOptions()
	sampleOpts.SampleSize = opts.SampleSize
	sampleOpts.EnableMemoryEstimation = opts.EnableMemoryBackpressure
	sampleResult := sampling.Sample(fn, data, sampleOpts)

	result := OptimizationResult{
		NumWorkers:       1,
		ChunkSize:        1,
		UseOrdered:       true,
		EstimatedSpeedup: 1.0,
		Remaining:        remaining,
		BufferSize:       1,
	}

	if sampleResult.Error != nil {
		result.Reason = "serial: sampling error: " + sampleResult.Error.Error()
		result.Warnings = append(result.Warnings, result.Reason)
		return result, nil
	}
	if !sampleResult.IsEncodable {
		result.Reason = "serial: function not picklable - multiprocessing requires picklable functions"
		result.Warnings = append(result.Warnings, "function is not picklable")
		return result, nil
	}
	if !sampleResult.DataItemsEncodable {
		result.Reason = "serial: data item not picklable at index " + strconv.Itoa(sampleResult.UnencodableDataIndex)
		result.Warnings = append(result.Warnings, "data items contain objects that cannot cross a goroutine boundary")
		return result, nil
	}

	info, err := platform.Probe()
	if err != nil {
		result.Warnings = append(result.Warnings, "platform probe failed, using conservative defaults")
		info = platform.Info{PhysicalCores: 1, LogicalCores: 1, AvailableMemory: 1 << 30, SpawnModel: platform.SpawnModelGoroutine}
	}

	if sampleResult.NestedParallelismLikely {
		result.Warnings = append(result.Warnings, "nested parallelism detected: function spawns internal goroutines, reduce worker count to avoid oversubscription")
	}

	// Streaming never gates on result memory: the whole point of imap
	// is that results are never accumulated all at once.

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
	}
	result.ChunkSize = chunkSize

	minDurationForParallel := info.SpawnCost
	if info.PhysicalCores > 0 {
		minDurationForParallel = info.SpawnCost / time.Duration(info.PhysicalCores)
	}
	if sampleResult.AvgTime < minDurationForParallel {
		result.Reason = "serial: function too fast, spawn overhead would dominate"
		return result, nil
	}

	workers := info.PhysicalCores
	if sampleResult.NestedParallelismLikely {
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
			result.Warnings = append(result.Warnings, "reduced worker count to prevent thread oversubscription")
		}
	}
	if workers < 1 {
		workers = 1
	}

	bestSpeedup := 1.0
	bestWorkers := 1
	if totalItems > 0 && sampleResult.AvgTime > 0 {
		serialTime := float64(totalItems) * sampleResult.AvgTime.Seconds()
		for n := 1; n <= workers; n++ {
			speedup := costmodel.Speedup(costmodel.Inputs{
				TotalComputeTime:         serialTime,
				TransferOverheadPerItem:  sampleResult.AvgEncodeTime.Seconds() + sampleResult.AvgDataEncodeTime.Seconds(),
				SpawnCostPerWorker:       info.SpawnCost.Seconds(),
				ChunkingOverheadPerChunk: info.DispatchCost.Seconds(),
				NumWorkers:               n,
				ChunkSize:                chunkSize,
				TotalItems:               totalItems,
			})
			if speedup > bestSpeedup {
				bestSpeedup = speedup
				bestWorkers = n
			}
		}

		if bestSpeedup < 1.2 {
			result.Reason = "serial: estimated speedup too small to justify overhead"
			if opts.PreferOrdered != nil {
				result.UseOrdered = *opts.PreferOrdered
			}
			return result, nil
		}
	} else {
		// Unknown data set size: heuristic 80% parallel efficiency.
		bestWorkers = workers
		bestSpeedup = float64(workers) * 0.8
	}

	useOrdered := true
	orderReason := "overhead is minimal, ordered results preferred for usability"
	if opts.PreferOrdered != nil {
		useOrdered = *opts.PreferOrdered
		orderReason = "caller preference"
	} else if sampleResult.AvgTime > 0 {
		overheadFraction := (info.SpawnCost.Seconds() + sampleResult.AvgEncodeTime.Seconds()) / sampleResult.AvgTime.Seconds()
		if overheadFraction > orderOverheadThreshold {
			useOrdered = false
			orderReason = "unordered delivery is faster given relative overhead"
		}
	}

	result.NumWorkers = bestWorkers
	result.EstimatedSpeedup = bestSpeedup
	result.UseOrdered = useOrdered
	result.Reason = "streaming parallelization beneficial: " + strconv.Itoa(bestWorkers) + " workers with chunks of " + strconv.Itoa(chunkSize) + " (" + orderReason + ")"

	if opts.EnableAdaptiveChunking && sampleResult.CoefficientOfVariation > 0.3 {
		result.AdaptiveChunkingEnabled = true
		result.AdaptiveChunkingParams = &AdaptiveChunkingParams{
			InitialChunkSize:    chunkSize,
			TargetChunkDuration: opts.TargetChunkDuration,
			AdaptationRate:      opts.AdaptationRate,
			MinChunkSize:        1,
			MaxChunkSize:        chunkSize * MaxChunkSizeGrowthFactor,
		}
	}

	bufferSize := opts.BufferSize
	if bufferSize == 0 {
		bufferSize = bestWorkers * BufferSizeMultiplier
		if opts.EnableMemoryBackpressure && sampleResult.AvgReturnSize > 0 {
			maxInMemory := int(float64(info.AvailableMemory) * ResultBufferMemoryFraction / float64(sampleResult.AvgReturnSize))
			if maxInMemory > bestWorkers {
				bufferSize = min(bufferSize, maxInMemory)
			} else {
				bufferSize = bestWorkers
			}
		}
	}
	result.BufferSize = bufferSize
	result.MemoryBackpressureEnabled = opts.EnableMemoryBackpressure

	return result, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}


type simpleErr string

func (e simpleErr) Error() string { return string(e) }
func amErr(msg string) error      { return simpleErr(msg) }
