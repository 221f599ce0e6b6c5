package workerpool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProcessesAllChunksInOrder(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	chunks := Chunks(data, 3)
	pool := New(2)
	defer pool.Close()

	results, err := Run(context.Background(), pool, chunks, func(ctx context.Context, c Chunk[int]) ([]int, error) {
		out := make([]int, len(c.Items))
		for i, v := range c.Items {
			out[i] = v * v
		}
		return out, nil
	})
	require.NoError(t, err)

	flat := Flatten(results)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, flat)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	data := []int{1, 2, 3, 4}
	chunks := Chunks(data, 1)
	pool := New(2)
	defer pool.Close()

	boom := errors.New("boom")
	_, err := Run(context.Background(), pool, chunks, func(ctx context.Context, c Chunk[int]) ([]int, error) {
		if c.Items[0] == 3 {
			return nil, boom
		}
		return c.Items, nil
	})
	require.Error(t, err)
}

func TestRun_EmptyChunksReturnsNoResults(t *testing.T) {
	pool := New(2)
	defer pool.Close()
	results, err := Run[int, int](context.Background(), pool, nil, func(ctx context.Context, c Chunk[int]) ([]int, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRun_ClosedPoolRejectsWork(t *testing.T) {
	pool := New(2)
	pool.Close()
	_, err := Run(context.Background(), pool, Chunks([]int{1, 2}, 1), func(ctx context.Context, c Chunk[int]) ([]int, error) {
		return c.Items, nil
	})
	require.Error(t, err)
}

func TestChunks_SplitsIntoBoundedSizes(t *testing.T) {
	chunks := Chunks([]int{1, 2, 3, 4, 5}, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Items, 2)
	assert.Len(t, chunks[2].Items, 1)
}
