// Package sampling performs amorsize's dry run: it calls the
// candidate function against a small prefix of the data, timing each
// call, checking whether arguments and results cross a goroutine
// boundary cleanly, and classifying the workload so the decision
// engine can reason about whether parallelizing it is worthwhile at
// all.
package sampling

import (
	"bytes"
	"encoding/gob"
	"math"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
)

// WorkloadKind classifies a sampled function by how it spends its
// time.
type WorkloadKind string

const (
	WorkloadCPUBound WorkloadKind = "cpu_bound"
	WorkloadMixed    WorkloadKind = "mixed"
	WorkloadIOBound  WorkloadKind = "io_bound"
)

// Result is everything the dry run learned about the candidate
// function and its first few data items.
type Result struct {
	AvgTime                  time.Duration
	AvgReturnSize            int
	AvgEncodeTime            time.Duration
	AvgDataEncodeTime        time.Duration
	AvgDataSize              int
	SampleCount              int
	IsEncodable              bool
	DataItemsEncodable       bool
	UnencodableDataIndex     int
	DataEncodeError          error
	TimeVariance             float64
	CoefficientOfVariation   float64
	NestedParallelismLikely  bool
	DetectedParallelLibraries []string
	EstimatedInternalThreads int
	WorkloadKind             WorkloadKind
	CPUTimeRatio             float64
	PeakMemoryBytes          uint64
	Error                    error
}

// Options tunes the dry run.
type Options struct {
	SampleSize             int
	SkipNestedParallelism  bool
	EnableMemoryEstimation bool
}

// DefaultOptions mirrors the original's defaults: five samples, nested
// parallelism detection enabled.
func DefaultOptions() Options {
	return Options{SampleSize: 5, EnableMemoryEstimation: true}
}

// welford accumulates mean and variance in a single pass.
type welford struct {
	count int
	mean  float64
	m2    float64
}

func (w *welford) add(x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

func (w *welford) variance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count)
}

// Sample runs fn against the first len(sample) items of data, timing
// each call and accumulating the statistics the decision engine needs.
// T is the per-item argument type, R is fn's result type.
func Sample[T, R any](fn func(T) R, data []T, opts Options) Result {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 5
	}

	sampleSize := opts.SampleSize
	if sampleSize > len(data) {
		sampleSize = len(data)
	}

	if sampleSize == 0 {
		return Result{Error: amerrors.New(amerrors.ComponentSampling, "dry-run", amerrors.ErrorTypeSampling, errEmptyData)}
	}

	isEncodable, encErr := checkEncodable(fn)

	result := Result{
		SampleCount:          sampleSize,
		IsEncodable:          isEncodable,
		DataItemsEncodable:   true,
		UnencodableDataIndex: -1,
		WorkloadKind:         WorkloadIOBound,
	}

	if !isEncodable {
		result.Error = amerrors.New(amerrors.ComponentSampling, "check-encodable", amerrors.ErrorTypeSampling, encErr)
		return result
	}

	var times welford
	var totalReturnSize, totalDataSize int
	var totalEncodeTime, totalDataEncodeTime time.Duration
	var totalCPUTime time.Duration
	var peakMemoryDelta uint64

	trackMemory := opts.EnableMemoryEstimation
	var memBefore runtime.MemStats
	if trackMemory {
		runtime.ReadMemStats(&memBefore)
	}

	goroutinesBefore := runtime.NumGoroutine()

	for i := 0; i < sampleSize; i++ {
		item := data[i]

		dataSize, dataEncodeTime, dataErr := measureEncode(item)
		if dataErr != nil {
			result.DataItemsEncodable = false
			result.UnencodableDataIndex = i
			result.DataEncodeError = dataErr
			return result
		}
		totalDataSize += dataSize
		totalDataEncodeTime += dataEncodeTime

		cpuBefore := cpuTime()
		start := time.Now()
		out := fn(item)
		elapsed := time.Since(start)
		cpuAfter := cpuTime()

		totalCPUTime += cpuAfter - cpuBefore
		times.add(elapsed.Seconds())

		if trackMemory {
			var memAfter runtime.MemStats
			runtime.ReadMemStats(&memAfter)
			if memAfter.HeapAlloc > memBefore.HeapAlloc {
				if delta := memAfter.HeapAlloc - memBefore.HeapAlloc; delta > peakMemoryDelta {
					peakMemoryDelta = delta
				}
			}
			memBefore = memAfter
		}

		returnSize, encodeTime, _ := measureEncode(out)
		totalReturnSize += returnSize
		totalEncodeTime += encodeTime
	}

	goroutinesAfter := runtime.NumGoroutine()

	if trackMemory {
		result.PeakMemoryBytes = peakMemoryDelta
	}

	result.AvgTime = time.Duration(times.mean * float64(time.Second))
	result.AvgReturnSize = totalReturnSize / sampleSize
	result.AvgEncodeTime = totalEncodeTime / time.Duration(sampleSize)
	result.AvgDataSize = totalDataSize / sampleSize
	result.AvgDataEncodeTime = totalDataEncodeTime / time.Duration(sampleSize)

	if sampleSize > 1 && times.mean > 0 {
		result.TimeVariance = times.variance()
		result.CoefficientOfVariation = math.Sqrt(result.TimeVariance) / times.mean
	}

	wallTotal := time.Duration(times.mean * float64(sampleSize) * float64(time.Second))
	if wallTotal > 0 {
		result.CPUTimeRatio = totalCPUTime.Seconds() / (times.mean * float64(sampleSize))
	}
	result.WorkloadKind = classifyWorkload(result.CPUTimeRatio)

	if opts.SkipNestedParallelism || testingSuppressionActive() {
		result.EstimatedInternalThreads = 1
	} else {
		delta := goroutinesAfter - goroutinesBefore
		libraries, pinnedThreads, anyPinned := detectParallelEnv()
		result.DetectedParallelLibraries = libraries
		result.NestedParallelismLikely = delta > 0 || (len(libraries) > 0 && !anyPinned)
		result.EstimatedInternalThreads = estimateInternalThreads(delta, pinnedThreads, len(libraries) > 0)
	}

	return result
}

// threadEnvVar names an environment variable the sampler reads (never
// sets) to detect a pinned or unpinned numerical/parallel library, per
// spec.md's thread-count pin list.
type threadEnvVar struct {
	Env     string
	Library string
}

var threadEnvVars = []threadEnvVar{
	{"OMP_NUM_THREADS", "openmp"},
	{"MKL_NUM_THREADS", "mkl"},
	{"OPENBLAS_NUM_THREADS", "openblas"},
	{"NUMEXPR_NUM_THREADS", "numexpr"},
	{"VECLIB_MAXIMUM_THREADS", "veclib"},
	{"NUMBA_NUM_THREADS", "numba"},
}

// detectParallelEnv reports which known parallel/numerical libraries
// appear to be in play (their thread-count env var is set), whether
// any of them is pinned to exactly 1 thread, and the first valid
// explicit pin found (0 if none).
func detectParallelEnv() (libraries []string, pinnedThreads int, anyPinnedToOne bool) {
	for _, v := range threadEnvVars {
		val, ok := os.LookupEnv(v.Env)
		if !ok {
			continue
		}
		libraries = append(libraries, v.Library)
		n, err := strconv.Atoi(val)
		if err != nil {
			continue
		}
		if n == 1 {
			anyPinnedToOne = true
		}
		if pinnedThreads == 0 && n > 0 {
			pinnedThreads = n
		}
	}
	return libraries, pinnedThreads, anyPinnedToOne
}

// testingSuppressionActive reports whether AMORSIZE_TESTING is set to
// a truthy value, the escape hatch test suites use to keep their own
// parallel test runners from being mistaken for nested parallelism in
// the function under test.
func testingSuppressionActive() bool {
	switch os.Getenv("AMORSIZE_TESTING") {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

var errEmptyData = amErr("dry run requires at least one data item")

type simpleError string

func (e simpleError) Error() string { return string(e) }

func amErr(msg string) error { return simpleError(msg) }

// closureNamePattern matches the trailing ".funcN" (and nested
// ".funcN.M") suffix the compiler appends to an anonymous function
// literal's runtime name; a plain top-level or method-declared
// function's name never carries this suffix.
var closureNamePattern = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// checkEncodable reports whether fn can be reliably carried across a
// process/worker boundary. Go functions are always directly callable
// from any goroutine, but a real multi-process worker pool (the thing
// this recommendation drives) would need to ship fn's identity and any
// captured state across that boundary the way a forked Python worker
// needs to pickle it. A function literal closing over local state has
// no such stable, transferable identity — its runtime name carries a
// compiler-synthesized ".funcN" suffix rather than a plain
// package-qualified name — so it is treated as unencodable, matching
// pickle's own refusal to serialize closures and lambdas.
func checkEncodable[T, R any](fn func(T) R) (bool, error) {
	if fn == nil {
		return false, amErr("function is nil")
	}

	ptr := reflect.ValueOf(fn).Pointer()
	name := runtime.FuncForPC(ptr).Name()
	if closureNamePattern.MatchString(name) {
		return false, amErr("function " + name + " is an anonymous closure and cannot be reliably serialized across a process boundary")
	}
	return true, nil
}

// measureEncode times how long it takes to gob-encode v, the Go
// analogue of measuring pickle cost for a data item or return value.
func measureEncode(v interface{}) (size int, elapsed time.Duration, err error) {
	var buf bytes.Buffer
	start := time.Now()
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return 0, time.Since(start), err
	}
	return buf.Len(), time.Since(start), nil
}

func classifyWorkload(cpuRatio float64) WorkloadKind {
	switch {
	case cpuRatio >= 0.7:
		return WorkloadCPUBound
	case cpuRatio >= 0.3:
		return WorkloadMixed
	default:
		return WorkloadIOBound
	}
}

// estimateInternalThreads guesses how many OS threads the sampled
// function itself is using internally: an explicit thread-count pin
// wins outright, then the observed goroutine-count delta, then a
// library-typical default of 4 when a library was detected but left
// unpinned, then 1.
func estimateInternalThreads(goroutineDelta, pinnedThreads int, librariesDetected bool) int {
	if pinnedThreads > 0 {
		return pinnedThreads
	}
	if goroutineDelta > 0 {
		return goroutineDelta + 1
	}
	if librariesDetected {
		return 4
	}
	return 1
}
