// Package costmodel implements amorsize's refined Amdahl's-law speedup
// estimate: serial execution time against a parallel time that charges
// for worker spawn, inter-goroutine data movement, and chunk dispatch,
// not just divided compute.
package costmodel

// Inputs carries every measured or estimated quantity the speedup
// estimate needs.
type Inputs struct {
	// TotalComputeTime is the estimated serial compute time for the
	// whole data set, in seconds.
	TotalComputeTime float64

	// TransferOverheadPerItem is the estimated cost of moving one
	// item's argument and result across a goroutine boundary, in
	// seconds. The Go analogue of per-item pickle overhead.
	TransferOverheadPerItem float64

	// SpawnCostPerWorker is the estimated cost of starting one
	// worker, in seconds.
	SpawnCostPerWorker float64

	// ChunkingOverheadPerChunk is the estimated dispatch cost per
	// chunk handed to a worker, in seconds.
	ChunkingOverheadPerChunk float64

	// NumWorkers is the candidate worker count.
	NumWorkers int

	// ChunkSize is the candidate number of items per chunk.
	ChunkSize int

	// TotalItems is the total number of items in the data set.
	TotalItems int
}

// Speedup estimates the parallel speedup for the given Inputs, capped
// at NumWorkers since no configuration modeled here can beat perfectly
// linear scaling.
func Speedup(in Inputs) float64 {
	if in.NumWorkers <= 0 || in.TotalComputeTime <= 0 {
		return 1.0
	}

	serialTime := in.TotalComputeTime

	spawnOverhead := in.SpawnCostPerWorker * float64(in.NumWorkers)
	parallelComputeTime := in.TotalComputeTime / float64(in.NumWorkers)
	transferOverhead := in.TransferOverheadPerItem * float64(in.TotalItems)

	chunkSize := in.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1
	}
	numChunks := (in.TotalItems + chunkSize - 1) / chunkSize
	if numChunks < 1 {
		numChunks = 1
	}
	chunkingOverhead := in.ChunkingOverheadPerChunk * float64(numChunks)

	parallelTime := spawnOverhead + parallelComputeTime + transferOverhead + chunkingOverhead
	if parallelTime <= 0 {
		return 1.0
	}

	speedup := serialTime / parallelTime
	if speedup > float64(in.NumWorkers) {
		return float64(in.NumWorkers)
	}
	return speedup
}
