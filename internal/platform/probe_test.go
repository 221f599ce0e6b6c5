package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_ReturnsPositiveCoreCounts(t *testing.T) {
	Reset()
	info, err := Probe()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, info.LogicalCores, 1)
	assert.GreaterOrEqual(t, info.PhysicalCores, 1)
	assert.LessOrEqual(t, info.PhysicalCores, info.LogicalCores)
	assert.Equal(t, SpawnModelGoroutine, info.SpawnModel)
}

func TestProbe_MemoizesAcrossCalls(t *testing.T) {
	Reset()
	first, err := Probe()
	require.NoError(t, err)

	second, err := Probe()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPhysicalCoreCount_HalvesEvenLogicalCounts(t *testing.T) {
	assert.Equal(t, 1, physicalCoreCount(1))
	assert.Equal(t, 2, physicalCoreCount(4))
	assert.Equal(t, 3, physicalCoreCount(3))
}
