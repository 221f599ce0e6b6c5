package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amorsize/amorsize/internal/cache"
	"github.com/amorsize/amorsize/internal/decision"
)

func newTestEngine(t *testing.T) *decision.Engine {
	t.Helper()
	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	return decision.NewEngine(store, nil)
}

func square(x int) int { return x * x }

func slowSquare(x int) int {
	time.Sleep(2 * time.Millisecond)
	return x * x
}

func TestValidate_SerialRecommendationRunsOnce(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 100)
	for i := range data {
		data[i] = i
	}

	result, err := Validate(context.Background(), e, square, data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ActualSpeedup)
	assert.Equal(t, 100.0, result.AccuracyPercent)
}

func TestValidate_EmptyDataReturnsError(t *testing.T) {
	e := newTestEngine(t)
	_, err := Validate(context.Background(), e, square, []int{}, DefaultOptions())
	require.Error(t, err)
}

func TestValidate_MaxItemsTruncatesData(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 1000)
	for i := range data {
		data[i] = i
	}
	opt := DefaultOptions()
	opt.MaxItems = 50

	result, err := Validate(context.Background(), e, square, data, opt)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestQuickValidate_SamplesEvenlyWhenDataExceedsSampleSize(t *testing.T) {
	e := newTestEngine(t)
	data := make([]int, 10000)
	for i := range data {
		data[i] = i
	}
	result, err := QuickValidate(context.Background(), e, slowSquare, data, 50)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestResult_IsAccurateDefaultsToSeventyFivePercent(t *testing.T) {
	r := Result{AccuracyPercent: 80}
	assert.True(t, r.IsAccurate(0))
	r.AccuracyPercent = 60
	assert.False(t, r.IsAccurate(0))
}
