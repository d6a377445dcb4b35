package geocode

import (
	"sync"
	"time"

	"github.com/jbadenas/pistaclima/internal/metrics"
	"github.com/jbadenas/pistaclima/internal/models"
)

// DefaultTTL bounds how long a resolved place stays cached. Geography does
// not move, but provider corrections should eventually surface.
const DefaultTTL = 24 * time.Hour

// CachedResolver decorates a Resolver with a bounded in-memory TTL cache.
type CachedResolver struct {
	inner      Resolver
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	loc     models.Location
	expires time.Time
}

// NewCachedResolver wraps inner with a TTL cache of at most maxEntries.
func NewCachedResolver(inner Resolver, ttl time.Duration, maxEntries int) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedResolver{
		inner:      inner,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]cacheEntry),
	}
}

func (c *CachedResolver) Resolve(name string) (models.Location, error) {
	c.mu.Lock()
	if e, ok := c.entries[name]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		metrics.GeocodeCacheHits.Inc()
		return e.loc, nil
	}
	c.mu.Unlock()

	metrics.GeocodeCacheMisses.Inc()
	loc, err := c.inner.Resolve(name)
	if err != nil {
		return loc, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.evictExpiredOrOldest()
	}
	c.entries[name] = cacheEntry{loc: loc, expires: c.now().Add(c.ttl)}
	return loc, nil
}

// evictExpiredOrOldest drops expired entries, or the soonest-to-expire one
// when nothing has expired yet. Called with the lock held.
func (c *CachedResolver) evictExpiredOrOldest() {
	now := c.now()
	var (
		oldestKey string
		oldestExp time.Time
		dropped   bool
	)
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			dropped = true
			continue
		}
		if oldestKey == "" || e.expires.Before(oldestExp) {
			oldestKey, oldestExp = k, e.expires
		}
	}
	if !dropped && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
