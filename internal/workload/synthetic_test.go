package workload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ProducesRequestedItemCount(t *testing.T) {
	p := Profile{TotalItems: 50, AvgSecondsPerItem: 0.001, ReturnBytes: 8}
	fn, data := Build(p)

	assert.Len(t, data, 50)
	out := fn(data[0])
	assert.Len(t, out, 8)
}

func TestBuild_ZeroItemsDefaultsToOne(t *testing.T) {
	p := Profile{TotalItems: 0, AvgSecondsPerItem: 0}
	_, data := Build(p)
	assert.Len(t, data, 1)
}

func TestLoadProfile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := "name: custom\ntotal_items: 100\navg_seconds_per_item: 0.002\njitter: 0.1\nreturn_bytes: 16\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name)
	assert.Equal(t, 100, p.TotalItems)
}

func TestLoadProfile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	content := `{"name": "custom", "total_items": 42, "avg_seconds_per_item": 0.001, "return_bytes": 4}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, p.TotalItems)
}

func TestDefaultProfile_IsValidForBuild(t *testing.T) {
	fn, data := Build(DefaultProfile())
	assert.NotEmpty(t, data)
	assert.NotNil(t, fn)
}
