// Package workerpool runs a decided chunk plan against real data: a
// bounded pool of goroutines each execute fn over one chunk, with
// results reassembled in original chunk order. It sits entirely
// outside the decision path — internal/decision and internal/streaming
// only ever recommend (workers, chunk size); this package is what
// actually executes that recommendation, for callers (principally
// internal/benchmark) that want to measure real wall-clock time rather
// than just trust the estimate.
package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Chunk is one contiguous slice of input items to hand to a worker,
// with its position in the original data set for ordered reassembly.
type Chunk[T any] struct {
	Items []T
	Index int
}

// Result holds one chunk's processed output, still tagged with its
// original position.
type Result[R any] struct {
	Items []R
	Index int
	Error error
}

// TaskFunc processes a single chunk and returns its per-item results.
type TaskFunc[T, R any] func(ctx context.Context, chunk Chunk[T]) ([]R, error)

// Pool runs chunked work across a bounded number of goroutines.
type Pool struct {
	workers   int
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// New builds a Pool with the given worker count. Panics if workers<=0,
// matching the teacher's worker pool constructor.
func New(workers int) *Pool {
	if workers <= 0 {
		panic("workerpool: workers must be > 0")
	}
	return &Pool{workers: workers}
}

// Chunks splits data into contiguous chunks of at most chunkSize items.
func Chunks[T any](data []T, chunkSize int) []Chunk[T] {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	var chunks []Chunk[T]
	for start, idx := 0, 0; start < len(data); start, idx = start+chunkSize, idx+1 {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk[T]{Items: data[start:end], Index: idx})
	}
	return chunks
}

// Run processes chunks concurrently across the pool's worker count,
// reassembling results in original chunk order. The first worker
// error cancels the remaining work and is returned.
func Run[T, R any](ctx context.Context, p *Pool, chunks []Chunk[T], task TaskFunc[T, R]) ([]Result[R], error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, fmt.Errorf("workerpool: pool is closed")
	}
	p.mu.RUnlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(chunks) == 0 {
		return nil, nil
	}

	workCh := make(chan Chunk[T], len(chunks))
	resultCh := make(chan Result[R], len(chunks))

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	actualWorkers := p.workers
	if actualWorkers > len(chunks) {
		actualWorkers = len(chunks)
	}

	var wg sync.WaitGroup
	wg.Add(actualWorkers)
	for i := 0; i < actualWorkers; i++ {
		go worker(workerCtx, workCh, resultCh, task, &wg)
	}

	go func() {
		for _, c := range chunks {
			select {
			case workCh <- c:
			case <-workerCtx.Done():
				close(workCh)
				return
			}
		}
		close(workCh)
	}()

	results := make([]Result[R], 0, len(chunks))
	var firstErr error

collect:
	for i := 0; i < len(chunks); i++ {
		select {
		case r := <-resultCh:
			if r.Error != nil && firstErr == nil {
				firstErr = r.Error
				cancel()
			}
			results = append(results, r)
		case <-ctx.Done():
			cancel()
			return nil, ctx.Err()
		case <-workerCtx.Done():
			for len(results) < len(chunks) {
				select {
				case r := <-resultCh:
					results = append(results, r)
				default:
					break collect
				}
			}
			break collect
		}
	}

	wg.Wait()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sortResults(results)
	return results, nil
}

func worker[T, R any](ctx context.Context, workCh <-chan Chunk[T], resultCh chan<- Result[R], task TaskFunc[T, R], wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case chunk, ok := <-workCh:
			if !ok {
				return
			}
			select {
			case <-ctx.Done():
				resultCh <- Result[R]{Index: chunk.Index, Error: ctx.Err()}
				return
			default:
			}
			items, err := task(ctx, chunk)
			select {
			case resultCh <- Result[R]{Items: items, Index: chunk.Index, Error: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close marks the pool closed, rejecting further Run calls. Idempotent.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
	})
	return nil
}

// Workers reports the pool's configured worker count.
func (p *Pool) Workers() int { return p.workers }

func sortResults[R any](results []Result[R]) {
	for i := 1; i < len(results); i++ {
		key := results[i]
		j := i - 1
		for j >= 0 && results[j].Index > key.Index {
			results[j+1] = results[j]
			j--
		}
		results[j+1] = key
	}
}

// Flatten concatenates chunked results back into one ordered slice,
// the step a caller takes after Run to recover a plain []R.
func Flatten[R any](results []Result[R]) []R {
	total := 0
	for _, r := range results {
		total += len(r.Items)
	}
	out := make([]R, 0, total)
	for _, r := range results {
		out = append(out, r.Items...)
	}
	return out
}
