package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amorsize/amorsize/internal/cache"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewEngine(store, nil)
}

func square(x int) int { return x * x }

func slowSquare(x int) int {
	time.Sleep(5 * time.Millisecond)
	return x * x
}

func tooFast(x int) int { return x + 1 }

func chanArgProbe(ch chan int) int { return 1 }

func closureOverCounter() func(int) int {
	total := 0
	return func(x int) int {
		total += x
		return total
	}
}

func TestOptimize_TooFastFunctionStaysSerial(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 1000)
	for i := range data {
		data[i] = i
	}

	result, err := Optimize(e, tooFast, data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumWorkers)
	assert.Equal(t, 1.0, result.EstimatedSpeedup)
	assert.Contains(t, result.Reason, "serial")
}

func TestOptimize_ClassicCPUBoundParallelizes(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 5000)
	for i := range data {
		data[i] = i
	}

	opts := DefaultOptions()
	result, err := Optimize(e, slowSquare, data, opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.NumWorkers, 1)
	if result.NumWorkers > 1 {
		assert.GreaterOrEqual(t, result.EstimatedSpeedup, 1.2)
		assert.Contains(t, result.Reason, "workers")
	}
}

func TestOptimize_UnencodableDatumRejectsToSerial(t *testing.T) {
	e := newTestEngine(t)

	data := make([]chan int, 10)
	for i := range data {
		data[i] = make(chan int)
	}
	result, err := Optimize(e, chanArgProbe, data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumWorkers)
	assert.Contains(t, result.Reason, "not picklable")
}

func TestOptimize_UnencodableClosureRejectsToSerial(t *testing.T) {
	e := newTestEngine(t)
	fn := closureOverCounter()

	data := make([]int, 10)
	for i := range data {
		data[i] = i
	}
	result, err := Optimize(e, fn, data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumWorkers)
	assert.Contains(t, result.Reason, "picklable")
}

func TestOptimize_InvalidOptionsReturnsError(t *testing.T) {
	e := newTestEngine(t)
	opts := DefaultOptions()
	opts.SampleSize = -1

	_, err := Optimize(e, square, []int{1, 2, 3}, opts)
	require.Error(t, err)
}

func TestOptimize_NilFunctionReturnsError(t *testing.T) {
	e := newTestEngine(t)
	_, err := Optimize[int, int](e, nil, []int{1, 2, 3}, DefaultOptions())
	require.Error(t, err)
}

func TestOptimize_EmptyDataStaysSerial(t *testing.T) {
	e := newTestEngine(t)
	result, err := Optimize(e, square, []int{}, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumWorkers)
	assert.Contains(t, result.Reason, "serial")
}

func TestOptimize_CacheHitShortCircuitsSecondCall(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 5000)
	for i := range data {
		data[i] = i
	}
	opts := DefaultOptions()

	first, err := Optimize(e, slowSquare, data, opts)
	require.NoError(t, err)

	second, err := Optimize(e, slowSquare, data, opts)
	require.NoError(t, err)

	if !first.CacheHit && first.NumWorkers > 1 {
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.NumWorkers, second.NumWorkers)
	}
}
