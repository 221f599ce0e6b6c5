// Package platform probes the host for the numbers amorsize's cost
// model needs: core counts, available memory, the runtime's spawn
// model, and one-shot benchmarks of goroutine dispatch and IPC-like
// round trips. Every value is computed once and memoized, since
// re-probing on every decision would itself be the kind of overhead
// the decision engine is trying to avoid.
package platform

import (
	"runtime"
	"sync"
	"time"
)

// SpawnModel identifies how Go schedules new work relative to the
// process/fork/spawn vocabulary the original cost model assumes.
// Go never forks a new OS process per worker, so this always reports
// Goroutine; the field exists so diagnostics can explain why
// amorsize's spawn cost is so much lower than a forking runtime's.
type SpawnModel string

const (
	SpawnModelGoroutine SpawnModel = "goroutine"
)

// Info is the immutable snapshot of host capabilities used by the
// decision engine.
type Info struct {
	PhysicalCores   int
	LogicalCores    int
	AvailableMemory uint64
	TotalMemory     uint64
	SpawnModel      SpawnModel
	SpawnCost       time.Duration
	DispatchCost    time.Duration
}

var (
	once      sync.Once
	cached    Info
	cachedErr error
)

// Probe returns the memoized Info for this process, computing it on
// first call.
func Probe() (Info, error) {
	once.Do(func() {
		cached, cachedErr = probe()
	})
	return cached, cachedErr
}

// Reset clears the memoized probe result. Intended for tests that
// need to force a fresh probe.
func Reset() {
	once = sync.Once{}
	cached = Info{}
	cachedErr = nil
}

func probe() (Info, error) {
	logical := runtime.GOMAXPROCS(0)
	physical := physicalCoreCount(logical)

	total, available, err := memoryInfo()
	if err != nil {
		return Info{}, err
	}

	spawnCost := benchmarkSpawnCost()
	dispatchCost := benchmarkDispatchCost()

	return Info{
		PhysicalCores:   physical,
		LogicalCores:    logical,
		AvailableMemory: available,
		TotalMemory:     total,
		SpawnModel:      SpawnModelGoroutine,
		SpawnCost:       spawnCost,
		DispatchCost:    dispatchCost,
	}, nil
}

// physicalCoreCount approximates physical cores from logical cores.
// Go does not expose hyperthreading topology through the standard
// library, so a conservative halving is used when the logical count
// is even and greater than one, matching the heuristic the original
// cost model falls back to when /proc/cpuinfo parsing is unavailable.
func physicalCoreCount(logical int) int {
	if logical <= 1 {
		return 1
	}
	if logical%2 == 0 {
		return logical / 2
	}
	return logical
}

// benchmarkSpawnCost measures the cost of starting and joining a single
// goroutine, the Go analogue of the original's worker spawn cost.
func benchmarkSpawnCost() time.Duration {
	const iterations = 50
	var total time.Duration
	var wg sync.WaitGroup

	for i := 0; i < iterations; i++ {
		start := time.Now()
		wg.Add(1)
		go func() {
			defer wg.Done()
		}()
		wg.Wait()
		total += time.Since(start)
	}

	return total / iterations
}

// benchmarkDispatchCost measures the cost of a single unbuffered
// channel round trip, the Go analogue of IPC/dispatch overhead between
// a coordinator and a worker.
func benchmarkDispatchCost() time.Duration {
	const iterations = 50
	var total time.Duration
	ch := make(chan struct{})

	for i := 0; i < iterations; i++ {
		start := time.Now()
		go func() { ch <- struct{}{} }()
		<-ch
		total += time.Since(start)
	}

	return total / iterations
}
