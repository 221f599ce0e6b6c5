// Package amorsize is the public entry point: Optimize and
// OptimizeStreaming decide parallelization parameters for running a
// function over a collection on an external worker pool, backed by a
// process-wide decision cache. Callers never run F through this
// package; they use its recommendation to drive their own pool.
package amorsize

import (
	"context"
	"iter"
	"time"

	"github.com/amorsize/amorsize/internal/benchmark"
	"github.com/amorsize/amorsize/internal/cache"
	"github.com/amorsize/amorsize/internal/decision"
	"github.com/amorsize/amorsize/internal/observability"
	"github.com/amorsize/amorsize/internal/streaming"
)

// Options mirrors the decision engine's tunables, the single value
// object every public entry point accepts.
type Options struct {
	SampleSize                     int
	TargetChunkDuration            time.Duration
	EnableMemoryTracking           bool
	EnableFunctionProfiling        bool
	Profile                        bool
	UseCache                       bool
	AutoAdjustForNestedParallelism bool
	CacheTTL                       time.Duration
	CacheDir                       string

	// Streaming-only fields; ignored by Optimize.
	PreferOrdered            *bool
	BufferSize               int
	EnableAdaptiveChunking   bool
	AdaptationRate           float64
	EnableMemoryBackpressure bool
	MemoryThreshold          float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		SampleSize:                     5,
		TargetChunkDuration:            200 * time.Millisecond,
		EnableMemoryTracking:           true,
		UseCache:                       true,
		AutoAdjustForNestedParallelism: true,
		AdaptationRate:                 0.3,
		MemoryThreshold:                0.8,
	}
}

func (o Options) toDecisionOptions() decision.Options {
	return decision.Options{
		SampleSize:                     o.SampleSize,
		TargetChunkDuration:            o.TargetChunkDuration,
		EnableMemoryTracking:           o.EnableMemoryTracking,
		EnableFunctionProfiling:        o.EnableFunctionProfiling,
		Profile:                        o.Profile,
		UseCache:                       o.UseCache,
		AutoAdjustForNestedParallelism: o.AutoAdjustForNestedParallelism,
		CacheTTL:                       o.CacheTTL,
		CacheDir:                       o.CacheDir,
	}
}

func (o Options) toStreamingOptions() streaming.Options {
	return streaming.Options{
		SampleSize:               o.SampleSize,
		TargetChunkDuration:      o.TargetChunkDuration,
		PreferOrdered:            o.PreferOrdered,
		BufferSize:               o.BufferSize,
		EnableAdaptiveChunking:   o.EnableAdaptiveChunking,
		AdaptationRate:           o.AdaptationRate,
		EnableMemoryBackpressure: o.EnableMemoryBackpressure,
		MemoryThreshold:          o.MemoryThreshold,
	}
}

// Client bundles the decision engine and the cache store it shares
// across calls, so repeated Optimize calls in the same process share
// one file-backed cache store.
type Client struct {
	engine *decision.Engine
	store  *cache.Store
}

// New builds a Client backed by a local cache store rooted at cacheDir
// (empty resolves to os.UserCacheDir()/amorsize/optimization_cache). A nil metrics
// collector defaults to the no-op.
func New(cacheDir string, metrics observability.MetricsCollector) (*Client, error) {
	store, err := cache.NewStore(cacheDir)
	if err != nil {
		return nil, err
	}
	return &Client{engine: decision.NewEngine(store, metrics), store: store}, nil
}

// Store exposes the underlying cache store for cache-management
// operations (Clear, PruneExpired, Stats, Validate, Repair, Export,
// Import, Prewarm).
func (c *Client) Store() *cache.Store { return c.store }

// Optimize decides parallelization parameters for calling fn over
// each element of data. T is the item type, R is fn's result type.
func Optimize[T, R any](c *Client, fn func(T) R, data []T, opts Options) (decision.OptimizationResult, error) {
	return decision.Optimize(c.engine, fn, data, opts.toDecisionOptions())
}

// OptimizeStreaming decides parallelization parameters for incremental
// imap/imap_unordered-style consumption of fn over data.
func OptimizeStreaming[T, R any](fn func(T) R, data []T, opts Options) (streaming.OptimizationResult, error) {
	return streaming.Optimize(fn, data, opts.toStreamingOptions())
}

// Validate empirically checks a Client's recommendation against a real
// run of fn over data, the in-process analogue of the benchmark
// package's standalone entry point.
func Validate[T, R any](ctx context.Context, c *Client, fn func(T) R, data []T, opt benchmark.Options) (benchmark.Result, error) {
	return benchmark.Validate(ctx, c.engine, fn, data, opt)
}

// OptimizeSeq is Optimize for a caller that only holds a single-shot
// iter.Seq[T] (a database cursor, a file scanner) rather than an
// already-materialized slice. It drains data once into a slice so the
// decision engine can sample a prefix and return the rest through
// OptimizationResult.Remaining, reconstructing random access from an
// iterator that can only be walked forward once.
func OptimizeSeq[T, R any](c *Client, fn func(T) R, data iter.Seq[T], opts Options) (decision.OptimizationResult, error) {
	return Optimize(c, fn, collectSeq(data), opts)
}

// OptimizeStreamingSeq is OptimizeStreaming for a single-shot
// iter.Seq[T] source; see OptimizeSeq.
func OptimizeStreamingSeq[T, R any](fn func(T) R, data iter.Seq[T], opts Options) (streaming.OptimizationResult, error) {
	return OptimizeStreaming(fn, collectSeq(data), opts)
}

func collectSeq[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}
