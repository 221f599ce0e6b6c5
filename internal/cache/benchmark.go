package cache

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/amorsize/amorsize/internal/amerrors"
)

// BenchmarkStore is a second, unbucketed-key cache for empirical
// speedup measurements gathered by internal/benchmark, kept distinct
// from the estimate cache in Store since a measured speedup should
// never be silently mixed in with an estimated one.
type BenchmarkStore struct {
	dir string
	ttl time.Duration
}

// NewBenchmarkStore builds a BenchmarkStore rooted at dir, defaulting
// to os.UserCacheDir()/amorsize/benchmark_cache.
func NewBenchmarkStore(dir string) (*BenchmarkStore, error) {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, amerrors.WrapWithType(amerrors.ComponentCache, "resolve-dir", amerrors.ErrorTypeCache, err)
		}
		dir = filepath.Join(base, "amorsize", "benchmark_cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, amerrors.WrapWithType(amerrors.ComponentCache, "mkdir", amerrors.ErrorTypeCache, err)
	}
	return &BenchmarkStore{dir: dir, ttl: DefaultTTL}, nil
}

func (b *BenchmarkStore) path(key string) string {
	return filepath.Join(b.dir, safeFileName(key)+".json")
}

// Save persists a BenchmarkEntry atomically.
func (b *BenchmarkStore) Save(entry BenchmarkEntry) error {
	entry.SchemaVersion = SchemaVersion
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return amerrors.WrapWithType(amerrors.ComponentCache, "marshal", amerrors.ErrorTypeCache, err)
	}

	final := b.path(entry.CacheKey)
	tmp := final + fmt.Sprintf(".tmp-%d", rand.Int64())

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return amerrors.WrapWithType(amerrors.ComponentCache, "write-temp", amerrors.ErrorTypeCache, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return amerrors.WrapWithType(amerrors.ComponentCache, "rename", amerrors.ErrorTypeCache, err)
	}
	return nil
}

// Load returns the BenchmarkEntry for key if present and unexpired.
func (b *BenchmarkStore) Load(key string) (*BenchmarkEntry, MissReason, error) {
	raw, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MissNotFound, nil
		}
		return nil, MissCorrupt, amerrors.WrapWithType(amerrors.ComponentCache, "read", amerrors.ErrorTypeCache, err)
	}

	var entry BenchmarkEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, MissCorrupt, nil
	}
	if entry.SchemaVersion != SchemaVersion {
		return nil, MissSchemaMismatch, nil
	}
	if time.Since(entry.CreatedAt) > b.ttl {
		return nil, MissExpired, nil
	}
	return &entry, MissNone, nil
}

// Clear removes every benchmark entry, returning the count removed.
func (b *BenchmarkStore) Clear() (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, amerrors.WrapWithType(amerrors.ComponentCache, "list", amerrors.ErrorTypeCache, err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if os.Remove(filepath.Join(b.dir, e.Name())) == nil {
			count++
		}
	}
	return count, nil
}

// BenchmarkCacheKey builds the key BenchmarkStore uses: function
// identity plus raw data size, without a time bucket, since a
// benchmark measurement is meant to be looked up by shape alone.
func BenchmarkCacheKey(functionHash string, dataSize int) string {
	return fmt.Sprintf("bench:%s_size:%d_v:%d", functionHash, dataSize, SchemaVersion)
}
