// Package cache provides tagged, time-bounded memoization for derived content.
//
// Every derived collection (posts, views, comments, profiles) is stored under
// its own key with a tag set, so a webhook can invalidate exactly the
// collections a change affects. Entries keep a last-known-good copy outside
// the TTL store: when a recompute fails, readers get the prior value instead
// of an error. Only a true cold-start failure surfaces to the caller.
//
// The cache is an explicit instance constructed once per process; tests build
// a fresh one per case.
package cache

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/platform/logger"

	gocache "github.com/patrickmn/go-cache"
)

// Options configures a Cache
type Options struct {
	// DefaultTTL applies when GetOrCompute is called with ttl <= 0
	DefaultTTL time.Duration

	// CleanupInterval controls how often expired entries are swept
	CleanupInterval time.Duration
}

// Cache is a tag-indexed TTL store with last-known-good fallback
type Cache struct {
	live *gocache.Cache

	mu    sync.Mutex
	stale map[string]any                 // last successful value per key, never expires
	tags  map[string]map[string]struct{} // tag -> keys carrying it

	defaultTTL time.Duration
	log        *logger.Logger
}

// New constructs a Cache. Zero-value options get sane defaults
func New(opt Options) *Cache {
	if opt.DefaultTTL <= 0 {
		opt.DefaultTTL = time.Hour
	}
	if opt.CleanupInterval <= 0 {
		opt.CleanupInterval = 10 * time.Minute
	}
	return &Cache{
		live:       gocache.New(opt.DefaultTTL, opt.CleanupInterval),
		stale:      make(map[string]any),
		tags:       make(map[string]map[string]struct{}),
		defaultTTL: opt.DefaultTTL,
		log:        logger.Named("cache"),
	}
}

// Invalidate drops the live entries for every key carrying any of the given
// tags. The stale copies survive so subsequent recompute failures can still
// fall back. Invalidating an unknown or already-cleared tag is a no-op
func (c *Cache) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		for key := range c.tags[t] {
			c.live.Delete(key)
		}
	}
}

// InvalidateAll drops every live entry, keeping stale copies
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live.Flush()
}

// index records key under each tag
func (c *Cache) index(key string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		set := c.tags[t]
		if set == nil {
			set = make(map[string]struct{})
			c.tags[t] = set
		}
		set[key] = struct{}{}
	}
}

// store saves a freshly computed value as both live and last-known-good
func (c *Cache) store(key string, v any, ttl time.Duration, tags []string) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.live.Set(key, v, ttl)
	c.mu.Lock()
	c.stale[key] = v
	c.mu.Unlock()
	c.index(key, tags)
}

// lastGood returns the last successfully computed value for key, if any
func (c *Cache) lastGood(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.stale[key]
	return v, ok
}

// GetOrCompute returns the live value for key, recomputing on miss or expiry.
// A failed recompute serves the last-known-good value when one exists; the
// error only propagates on a cold start. Concurrent misses may both compute,
// last writer wins; results derive from the same upstream so they converge
func GetOrCompute[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	tags []string,
	compute func(context.Context) (T, error),
) (T, error) {
	if v, ok := c.live.Get(key); ok {
		if tv, ok := v.(T); ok {
			return tv, nil
		}
	}

	v, err := compute(ctx)
	if err != nil {
		if prev, ok := c.lastGood(key); ok {
			if tv, ok := prev.(T); ok {
				c.log.Warn().Err(err).Str("key", key).Msg("recompute failed, serving last known good")
				return tv, nil
			}
		}
		var zero T
		return zero, err
	}

	c.store(key, v, ttl, tags)
	return v, nil
}

// Peek returns the live value for key without computing. It never touches
// upstream, so callers can consult warm state on paths that must not block
func Peek[T any](c *Cache, key string) (T, bool) {
	if v, ok := c.live.Get(key); ok {
		if tv, ok := v.(T); ok {
			return tv, true
		}
	}
	var zero T
	return zero, false
}
