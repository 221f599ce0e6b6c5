package streaming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x int) int { return x * x }

func slowSquare(x int) int {
	time.Sleep(5 * time.Millisecond)
	return x * x
}

func chanArgProbe(ch chan int) int { return 1 }

func TestOptimize_InvalidOptionsReturnsError(t *testing.T) {
	opts := DefaultOptions()
	opts.AdaptationRate = 2.0
	_, err := Optimize(square, []int{1, 2, 3}, opts)
	require.Error(t, err)
}

func TestOptimize_NeverGatesOnResultMemory(t *testing.T) {
	data := make([]int, 2000)
	for i := range data {
		data[i] = i
	}
	opts := DefaultOptions()
	opts.EnableMemoryBackpressure = false

	result, err := Optimize(slowSquare, data, opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.NumWorkers, 1)
}

func TestOptimize_PreferOrderedHonored(t *testing.T) {
	data := make([]int, 2000)
	for i := range data {
		data[i] = i
	}
	opts := DefaultOptions()
	ordered := false
	opts.PreferOrdered = &ordered

	result, err := Optimize(slowSquare, data, opts)
	require.NoError(t, err)
	assert.False(t, result.UseOrdered)
}

func TestOptimize_AdaptiveChunkingOnlyForHeterogeneousWorkload(t *testing.T) {
	data := make([]int, 2000)
	for i := range data {
		data[i] = i
	}
	opts := DefaultOptions()
	opts.EnableAdaptiveChunking = true

	result, err := Optimize(square, data, opts)
	require.NoError(t, err)
	if !result.AdaptiveChunkingEnabled {
		assert.Nil(t, result.AdaptiveChunkingParams)
	}
}

func TestOptimize_BufferSizeDefaultsToWorkerMultiple(t *testing.T) {
	data := make([]int, 2000)
	for i := range data {
		data[i] = i
	}
	result, err := Optimize(slowSquare, data, DefaultOptions())
	require.NoError(t, err)
	if result.NumWorkers > 1 {
		assert.Equal(t, result.NumWorkers*BufferSizeMultiplier, result.BufferSize)
	}
}

func TestOptimize_UnencodableDatumStaysSerial(t *testing.T) {
	data := make([]chan int, 10)
	for i := range data {
		data[i] = make(chan int)
	}
	result, err := Optimize(chanArgProbe, data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NumWorkers)
	assert.Contains(t, result.Reason, "not picklable")
}
