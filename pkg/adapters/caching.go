package adapters

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachingDiscovery wraps a DiscoveryAdapter for slow or remote discovery
// sources: the cached target list is read under a read lock by every
// connection, and a refresher swaps it in under the write lock. A singleflight.Group
// collapses refreshes so a cache miss under concurrent load triggers exactly
// one upstream Discover call, not one per waiting connection.
type CachingDiscovery struct {
	inner DiscoveryAdapter
	ttl   time.Duration

	mu       sync.RWMutex
	targets  []Target
	fetched  time.Time
	hasValue bool

	group singleflight.Group
}

// NewCachingDiscovery returns a CachingDiscovery refreshing inner's result
// at most once per ttl.
func NewCachingDiscovery(inner DiscoveryAdapter, ttl time.Duration) *CachingDiscovery {
	return &CachingDiscovery{inner: inner, ttl: ttl}
}

// Discover returns the cached target list, refreshing it first if it is
// stale or has never been populated.
func (c *CachingDiscovery) Discover(ctx context.Context) ([]Target, error) {
	c.mu.RLock()
	fresh := c.hasValue && time.Since(c.fetched) < c.ttl
	targets := c.targets
	c.mu.RUnlock()
	if fresh {
		return targets, nil
	}

	result, err, _ := c.group.Do("discover", func() (any, error) {
		c.mu.RLock()
		stillFresh := c.hasValue && time.Since(c.fetched) < c.ttl
		cached := c.targets
		c.mu.RUnlock()
		if stillFresh {
			return cached, nil
		}

		refreshed, derr := c.inner.Discover(ctx)
		if derr != nil {
			return nil, derr
		}

		c.mu.Lock()
		c.targets = refreshed
		c.fetched = time.Now()
		c.hasValue = true
		c.mu.Unlock()
		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Target), nil
}
