package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	require.NoError(t, src.Save(Entry{CacheKey: "func:a_size:tiny_time:fast_v:1", SpawnModel: "goroutine", NumWorkers: 2}))
	require.NoError(t, src.Save(Entry{CacheKey: "func:b_size:small_time:fast_v:1", SpawnModel: "goroutine", NumWorkers: 3}))

	exportPath := filepath.Join(t.TempDir(), "export.yaml")
	count, err := src.Export(exportPath, "test-system")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	dst := newTestStore(t)
	imported, err := dst.Import(exportPath, MergeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
}

func TestValidate_CleanEntryScoresFullHealth(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Entry{CacheKey: "func:ok_size:tiny_time:fast_v:1", SpawnModel: "goroutine"}))

	result, err := s.Validate()
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEntries)
	assert.Equal(t, 1, result.ValidEntries)
	assert.Equal(t, float64(100), result.HealthScore())
}
