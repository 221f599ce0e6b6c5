// Package benchmark empirically validates a decision engine
// recommendation: it runs both the serial and the recommended parallel
// plan against real data, measures wall-clock time for each, and
// reports how far the measured speedup strayed from the estimate.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
	"github.com/amorsize/amorsize/internal/decision"
	"github.com/amorsize/amorsize/internal/workerpool"
)

// Result compares a decision engine's prediction against a measured
// run.
type Result struct {
	Optimization      decision.OptimizationResult
	SerialTime        time.Duration
	ParallelTime      time.Duration
	ActualSpeedup     float64
	PredictedSpeedup  float64
	AccuracyPercent   float64
	ErrorPercent      float64
	Recommendations   []string
}

// IsAccurate reports whether the prediction met threshold percent
// accuracy (defaulting to 75% when threshold is 0).
func (r Result) IsAccurate(threshold float64) bool {
	if threshold == 0 {
		threshold = 75.0
	}
	return r.AccuracyPercent >= threshold
}

// String renders a short human-readable summary.
func (r Result) String() string {
	return fmt.Sprintf(
		"actual=%.2fx predicted=%.2fx accuracy=%.1f%% (serial=%s parallel=%s)",
		r.ActualSpeedup, r.PredictedSpeedup, r.AccuracyPercent, r.SerialTime, r.ParallelTime,
	)
}

// Options controls Validate.
type Options struct {
	MaxItems int           // 0 means no limit
	Timeout  time.Duration // 0 means 60s
}

// DefaultOptions mirrors the original validator's defaults.
func DefaultOptions() Options {
	return Options{Timeout: 60 * time.Second}
}

// Validate runs fn serially and, if the engine recommends
// parallelism, across a workerpool.Pool sized to the recommendation,
// then compares the measured speedup to the prediction. Passing a
// non-zero opt.MaxItems truncates data before either run, the Go
// analogue of the original's runtime-bounding knob for large data sets.
func Validate[T, R any](ctx context.Context, e *decision.Engine, fn func(T) R, data []T, opt Options) (Result, error) {
	if opt.Timeout <= 0 {
		opt.Timeout = 60 * time.Second
	}
	if opt.MaxItems > 0 && len(data) > opt.MaxItems {
		data = data[:opt.MaxItems]
	}
	if len(data) == 0 {
		return Result{}, amerrors.New(amerrors.ComponentDecision, "validate", amerrors.ErrorTypeValidation, errEmptyData)
	}

	opts := decision.DefaultOptions()
	optimization, err := decision.Optimize(e, fn, data, opts)
	if err != nil {
		return Result{}, err
	}

	recommendations := make([]string, 0, 2)

	if optimization.NumWorkers == 1 {
		start := time.Now()
		runSerial(fn, data)
		serialTime := time.Since(start)

		recommendations = append(recommendations, "serial execution is optimal for this workload")

		return Result{
			Optimization:     optimization,
			SerialTime:       serialTime,
			ParallelTime:     serialTime,
			ActualSpeedup:    1.0,
			PredictedSpeedup: optimization.EstimatedSpeedup,
			AccuracyPercent:  100.0,
			Recommendations:  recommendations,
		}, nil
	}

	serialStart := time.Now()
	runSerial(fn, data)
	serialTime := time.Since(serialStart)
	if serialTime > opt.Timeout {
		return Result{}, amerrors.New(amerrors.ComponentDecision, "validate", amerrors.ErrorTypeResource, errTimeout("serial"))
	}

	pool := workerpool.New(optimization.NumWorkers)
	defer pool.Close()
	chunks := workerpool.Chunks(data, optimization.ChunkSize)

	parallelStart := time.Now()
	_, err = workerpool.Run(ctx, pool, chunks, func(ctx context.Context, c workerpool.Chunk[T]) ([]R, error) {
		out := make([]R, len(c.Items))
		for i, item := range c.Items {
			out[i] = fn(item)
		}
		return out, nil
	})
	parallelTime := time.Since(parallelStart)
	if err != nil {
		return Result{}, amerrors.WrapWithType(amerrors.ComponentDecision, "validate-parallel", amerrors.ErrorTypeResource, err)
	}
	if parallelTime > opt.Timeout {
		return Result{}, amerrors.New(amerrors.ComponentDecision, "validate", amerrors.ErrorTypeResource, errTimeout("parallel"))
	}

	actualSpeedup := 1.0
	if parallelTime > 0 {
		actualSpeedup = serialTime.Seconds() / parallelTime.Seconds()
	}

	if actualSpeedup < 1.0 {
		recommendations = append(recommendations, "parallel execution measured slower than serial, overhead dominates the benefit")
	} else if actualSpeedup < 1.2 {
		recommendations = append(recommendations, "marginal measured speedup, overhead nearly equals benefit")
	}

	predicted := optimization.EstimatedSpeedup
	errDelta := actualSpeedup - predicted
	errorPercent := 0.0
	if predicted > 0 {
		errorPercent = (errDelta / predicted) * 100
	}

	maxSpeedup := predicted
	if actualSpeedup > maxSpeedup {
		maxSpeedup = actualSpeedup
	}
	normalizedErr := 0.0
	if maxSpeedup > 0 {
		normalizedErr = abs(errDelta) / maxSpeedup
	}
	accuracyPercent := (1.0 - normalizedErr) * 100

	if accuracyPercent < 75 {
		recommendations = append(recommendations, "significant deviation from prediction, system-specific factors detected")
		if actualSpeedup > predicted*1.3 {
			recommendations = append(recommendations, "actual speedup exceeds prediction, this system is more efficient than estimated")
		} else if actualSpeedup < predicted*0.7 {
			recommendations = append(recommendations, "actual speedup below prediction, check for system contention")
		}
	}

	return Result{
		Optimization:     optimization,
		SerialTime:       serialTime,
		ParallelTime:     parallelTime,
		ActualSpeedup:    actualSpeedup,
		PredictedSpeedup: predicted,
		AccuracyPercent:  accuracyPercent,
		ErrorPercent:     errorPercent,
		Recommendations:  recommendations,
	}, nil
}

// QuickValidate runs Validate against an evenly-strided sample of
// data, for a fast confidence check without benchmarking the whole
// data set.
func QuickValidate[T, R any](ctx context.Context, e *decision.Engine, fn func(T) R, data []T, sampleSize int) (Result, error) {
	if sampleSize <= 0 {
		sampleSize = 100
	}
	sampled := data
	if len(data) > sampleSize {
		step := len(data) / sampleSize
		if step < 1 {
			step = 1
		}
		sampled = make([]T, 0, sampleSize)
		for i := 0; i < len(data) && len(sampled) < sampleSize; i += step {
			sampled = append(sampled, data[i])
		}
	}
	return Validate(ctx, e, fn, sampled, DefaultOptions())
}

func runSerial[T, R any](fn func(T) R, data []T) []R {
	out := make([]R, len(data))
	for i, item := range data {
		out[i] = fn(item)
	}
	return out
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

var errEmptyData = simpleErr("data cannot be empty for benchmarking")

func errTimeout(phase string) error {
	return simpleErr(phase + " execution exceeded timeout")
}
