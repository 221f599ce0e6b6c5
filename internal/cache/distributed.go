package cache

import (
	"sync"
	"time"
)

// DistributedBackend is the capability interface a remote decision
// cache must implement. No concrete implementation ships by default:
// the retrieved example pack carries no redis/memcached-style KV
// client, so callers bring their own and pass it to
// NewDistributedCache. HTTPBackend (http_backend.go) is a reference
// implementation exercising the interface end to end.
type DistributedBackend interface {
	Save(key string, entry Entry, ttl time.Duration) error
	Load(key string) (*Entry, bool, error)
	Delete(key string) error
	Ping() error
	Keys() ([]string, error)
	Stats() (map[string]interface{}, error)
}

// DistributedCache layers a DistributedBackend in front of a local
// Store: Load tries the backend first and falls back to local on any
// error or miss; Save writes through to both.
type DistributedCache struct {
	local   *Store
	backend DistributedBackend

	mu             sync.Mutex
	lastPingAt     time.Time
	lastPingResult error
}

// NewDistributedCache pairs a local Store with a DistributedBackend.
func NewDistributedCache(local *Store, backend DistributedBackend) *DistributedCache {
	return &DistributedCache{local: local, backend: backend}
}

// IsEnabled pings the backend at most once per second, caching the
// result in between so a degraded remote cache doesn't add latency to
// every call.
func (d *DistributedCache) IsEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if time.Since(d.lastPingAt) < time.Second {
		return d.lastPingResult == nil
	}

	d.lastPingResult = d.backend.Ping()
	d.lastPingAt = time.Now()
	return d.lastPingResult == nil
}

// Load tries the distributed backend first, falling back to the
// local store on any miss, disablement, or backend error.
func (d *DistributedCache) Load(key string) (*Entry, MissReason, error) {
	if d.IsEnabled() {
		if entry, found, err := d.backend.Load(key); err == nil && found {
			return entry, MissNone, nil
		}
	}
	return d.local.Load(key)
}

// Save writes through to the local store always, and to the
// distributed backend when enabled.
func (d *DistributedCache) Save(entry Entry, ttl time.Duration) error {
	if err := d.local.Save(entry); err != nil {
		return err
	}
	if d.IsEnabled() {
		_ = d.backend.Save(entry.CacheKey, entry, ttl)
	}
	return nil
}
