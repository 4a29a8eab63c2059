package market

import (
	"context"
	"sync"
	"time"
)

// Source produces market snapshots on demand.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*Snapshot, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// CacheInfo reports how a snapshot was served.
type CacheInfo struct {
	Cached bool          // served from cache rather than a fresh fetch
	Age    time.Duration // time since the snapshot was fetched
	Stale  bool          // older than the TTL (served because refresh failed)
}

// Cache wraps a Source with a time-to-live. It is an explicitly constructed
// service object: every consumer receives its own instance, and the TTL is
// chosen by the caller. Safe for concurrent use.
type Cache struct {
	mu        sync.Mutex
	src       Source
	ttl       time.Duration
	now       func() time.Time
	snapshot  *Snapshot
	fetchedAt time.Time
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithNow overrides the cache's clock. Used by tests.
func WithNow(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a snapshot cache over src with the given TTL.
func NewCache(src Source, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		src: src,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot when it is younger than the TTL,
// otherwise refreshes from the source. When a refresh fails and a previous
// snapshot exists, that snapshot is served with Stale set; the error is
// returned only when nothing can be served.
func (c *Cache) Get(ctx context.Context) (*Snapshot, CacheInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.snapshot != nil && now.Sub(c.fetchedAt) < c.ttl {
		return c.snapshot, CacheInfo{Cached: true, Age: now.Sub(c.fetchedAt)}, nil
	}

	snap, err := c.src.Fetch(ctx)
	if err != nil {
		if c.snapshot != nil {
			return c.snapshot, CacheInfo{Cached: true, Age: now.Sub(c.fetchedAt), Stale: true}, nil
		}
		return nil, CacheInfo{}, err
	}
	snap.Normalize()

	c.snapshot = snap
	c.fetchedAt = now
	return snap, CacheInfo{}, nil
}

// ClearCache drops the cached snapshot; the next Get refreshes.
func (c *Cache) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
}
