package costmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedup_ZeroWorkersReturnsOne(t *testing.T) {
	assert.Equal(t, 1.0, Speedup(Inputs{NumWorkers: 0, TotalComputeTime: 10}))
}

func TestSpeedup_ZeroComputeTimeReturnsOne(t *testing.T) {
	assert.Equal(t, 1.0, Speedup(Inputs{NumWorkers: 4, TotalComputeTime: 0}))
}

func TestSpeedup_CappedAtWorkerCount(t *testing.T) {
	in := Inputs{
		TotalComputeTime:         100,
		TransferOverheadPerItem:  0,
		SpawnCostPerWorker:       0,
		ChunkingOverheadPerChunk: 0,
		NumWorkers:               4,
		ChunkSize:                10,
		TotalItems:               100,
	}
	assert.InDelta(t, 4.0, Speedup(in), 0.0001)
}

func TestSpeedup_OverheadDominatesSmallWorkload(t *testing.T) {
	in := Inputs{
		TotalComputeTime:         0.01,
		TransferOverheadPerItem:  0.001,
		SpawnCostPerWorker:       0.05,
		ChunkingOverheadPerChunk: 0.01,
		NumWorkers:               4,
		ChunkSize:                1,
		TotalItems:               10,
	}
	speedup := Speedup(in)
	assert.Less(t, speedup, 1.0)
}

func TestSpeedup_ChunkingReducesDispatchOverhead(t *testing.T) {
	base := Inputs{
		TotalComputeTime:         10,
		TransferOverheadPerItem:  0.0001,
		SpawnCostPerWorker:       0.01,
		ChunkingOverheadPerChunk: 0.02,
		NumWorkers:               4,
		TotalItems:               1000,
	}

	smallChunks := base
	smallChunks.ChunkSize = 1
	largeChunks := base
	largeChunks.ChunkSize = 100

	assert.Greater(t, Speedup(largeChunks), Speedup(smallChunks))
}
