package sampling

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slowSquare(x int) int {
	time.Sleep(time.Millisecond)
	return x * x
}

func identity(x int) int { return x }

func TestSample_BasicStatistics(t *testing.T) {
	data := []int{1, 2, 3, 4, 5}

	result := Sample(slowSquare, data, DefaultOptions())

	require.NoError(t, result.Error)
	assert.Equal(t, 5, result.SampleCount)
	assert.True(t, result.IsEncodable)
	assert.True(t, result.DataItemsEncodable)
	assert.Greater(t, result.AvgTime, time.Duration(0))
}

func TestSample_EmptyDataReturnsError(t *testing.T) {
	result := Sample(identity, []int{}, DefaultOptions())

	assert.Error(t, result.Error)
}

func TestSample_SampleSizeClampedToDataLength(t *testing.T) {
	data := []int{1, 2}

	opts := DefaultOptions()
	opts.SampleSize = 10
	result := Sample(identity, data, opts)

	require.NoError(t, result.Error)
	assert.Equal(t, 2, result.SampleCount)
}

func TestSample_ClosureIsNotEncodable(t *testing.T) {
	total := 0
	fn := func(x int) int {
		total += x
		return total
	}

	result := Sample(fn, []int{1, 2, 3}, DefaultOptions())

	assert.False(t, result.IsEncodable)
	require.Error(t, result.Error)
}

func TestSample_MethodValueIsEncodable(t *testing.T) {
	g := &adder{base: 10}

	result := Sample(g.add, []int{1, 2, 3}, DefaultOptions())

	assert.True(t, result.IsEncodable)
	require.NoError(t, result.Error)
}

type adder struct{ base int }

func (a *adder) add(x int) int { return a.base + x }

func TestClassifyWorkload_Thresholds(t *testing.T) {
	assert.Equal(t, WorkloadCPUBound, classifyWorkload(0.9))
	assert.Equal(t, WorkloadMixed, classifyWorkload(0.5))
	assert.Equal(t, WorkloadIOBound, classifyWorkload(0.1))
}

func TestDetectParallelEnv_ReadsThreadCountVars(t *testing.T) {
	t.Setenv("OMP_NUM_THREADS", "4")
	libraries, pinned, anyPinned := detectParallelEnv()

	assert.Contains(t, libraries, "openmp")
	assert.Equal(t, 4, pinned)
	assert.False(t, anyPinned)
}

func TestDetectParallelEnv_PinnedToOne(t *testing.T) {
	t.Setenv("MKL_NUM_THREADS", "1")
	libraries, _, anyPinned := detectParallelEnv()

	assert.Contains(t, libraries, "mkl")
	assert.True(t, anyPinned)
}

func TestTestingSuppressionActive_RespectsEnvFlag(t *testing.T) {
	assert.False(t, testingSuppressionActive())

	t.Setenv("AMORSIZE_TESTING", "1")
	assert.True(t, testingSuppressionActive())

	os.Setenv("AMORSIZE_TESTING", "false")
	assert.False(t, testingSuppressionActive())
}

func TestEstimateInternalThreads_PrecedenceOrder(t *testing.T) {
	assert.Equal(t, 3, estimateInternalThreads(10, 3, true))
	assert.Equal(t, 2, estimateInternalThreads(1, 0, false))
	assert.Equal(t, 4, estimateInternalThreads(0, 0, true))
	assert.Equal(t, 1, estimateInternalThreads(0, 0, false))
}

func TestSample_NestedParallelismSuppressedUnderTestingFlag(t *testing.T) {
	t.Setenv("AMORSIZE_TESTING", "1")
	t.Setenv("OMP_NUM_THREADS", "8")

	result := Sample(slowSquare, []int{1, 2, 3}, DefaultOptions())

	assert.False(t, result.NestedParallelismLikely)
	assert.Equal(t, 1, result.EstimatedInternalThreads)
}

func TestSample_TracksPeakMemoryWhenEnabled(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableMemoryEstimation = true

	result := Sample(allocator, make([]int, 3), opts)

	require.NoError(t, result.Error)
	assert.GreaterOrEqual(t, result.PeakMemoryBytes, uint64(0))
}

func allocator(x int) []byte { return make([]byte, 1<<20) }

func TestSample_SkipsMemoryTrackingWhenDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.EnableMemoryEstimation = false

	result := Sample(allocator, make([]int, 3), opts)

	require.NoError(t, result.Error)
	assert.Equal(t, uint64(0), result.PeakMemoryBytes)
}
