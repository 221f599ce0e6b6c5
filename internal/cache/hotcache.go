package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/amorsize/amorsize/internal/platform"
)

// HotCache fronts a Store with an in-process ristretto cache, bounded
// by entry count rather than wall-clock TTL. It is pure performance:
// every hit still passes back through the same schema/TTL/platform
// checks a cold load performs, since ristretto eviction or a process
// restart must never change what counts as a valid entry.
type HotCache struct {
	store *Store
	ring  *ristretto.Cache
}

// NewHotCache wraps store with a ristretto cache sized for
// maxEntries. Cost is tracked as 1 per entry, so maxEntries directly
// bounds the number of cached decisions.
func NewHotCache(store *Store, maxEntries int64) (*HotCache, error) {
	ring, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &HotCache{store: store, ring: ring}, nil
}

// Load checks the hot layer first; on a miss it falls through to the
// store and, if the store returns a valid entry, repopulates the hot
// layer.
func (h *HotCache) Load(key string) (*Entry, MissReason, error) {
	if v, ok := h.ring.Get(key); ok {
		if entry, ok := v.(Entry); ok && entry.SchemaVersion == SchemaVersion && time.Since(entry.CreatedAt) <= h.store.ttl {
			if info, err := platform.Probe(); err != nil || h.store.platformCompatible(entry, info, h.store.memorySlack) {
				return &entry, MissNone, nil
			}
		}
		h.ring.Del(key)
	}

	entry, reason, err := h.store.Load(key)
	if err != nil || reason != MissNone || entry == nil {
		return entry, reason, err
	}

	h.ring.Set(key, *entry, 1)
	return entry, reason, nil
}

// Save writes through to the store and updates the hot layer.
func (h *HotCache) Save(entry Entry) error {
	if err := h.store.Save(entry); err != nil {
		return err
	}
	h.ring.Set(entry.CacheKey, entry, 1)
	return nil
}

// Invalidate removes key from the hot layer only; the store entry, if
// any, is untouched.
func (h *HotCache) Invalidate(key string) {
	h.ring.Del(key)
}

// Close releases ristretto's background goroutines.
func (h *HotCache) Close() {
	h.ring.Close()
}
