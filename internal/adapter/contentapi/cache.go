package contentapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/jonboulle/clockwork"
)

// CachedGateway decorates a content.Gateway with a TTL-bounded availability
// snapshot and an LRU of trail lists. The TTL keeps browser re-validation
// honest without a gateway round-trip per tap; the Kafka invalidator drops
// entries the moment the content layer announces a change.
type CachedGateway struct {
	inner   content.Gateway
	clock   clockwork.Clock
	ttl     time.Duration
	metrics *observability.Metrics

	mu        sync.Mutex
	snapshot  content.Availability
	fetchedAt time.Time
	hasSnap   bool

	trails *lruCache
}

// NewCachedGateway creates the cache decorator. ttl bounds snapshot age;
// maxTrailEntries bounds the trail-list LRU.
func NewCachedGateway(inner content.Gateway, clock clockwork.Clock, ttl time.Duration,
	maxTrailEntries int, metrics *observability.Metrics) *CachedGateway {
	return &CachedGateway{
		inner:   inner,
		clock:   clock,
		ttl:     ttl,
		metrics: metrics,
		trails:  newLRUCache(maxTrailEntries),
	}
}

// Availability returns the cached snapshot when fresh, refetching otherwise.
func (c *CachedGateway) Availability(ctx context.Context) (content.Availability, error) {
	c.mu.Lock()
	if c.hasSnap && c.clock.Since(c.fetchedAt) < c.ttl {
		snap := c.snapshot
		c.mu.Unlock()
		c.metrics.AvailabilityCache.WithLabelValues("hit").Inc()
		return snap, nil
	}
	c.mu.Unlock()

	c.metrics.AvailabilityCache.WithLabelValues("miss").Inc()
	snap, err := c.inner.Availability(ctx)
	if err != nil {
		return content.Availability{}, err
	}

	c.mu.Lock()
	c.snapshot = snap
	c.fetchedAt = c.clock.Now()
	c.hasSnap = true
	c.mu.Unlock()
	return snap, nil
}

// TrailsFor returns the cached trail list for the city, fetching on miss.
// Empty lists are not cached so freshly published content appears promptly.
func (c *CachedGateway) TrailsFor(ctx context.Context, province, city region.Code) ([]content.Trail, error) {
	key := trailKey(province, city)
	if trails, ok := c.trails.get(key); ok {
		return trails, nil
	}
	trails, err := c.inner.TrailsFor(ctx, province, city)
	if err != nil {
		return nil, err
	}
	if len(trails) > 0 {
		c.trails.put(key, trails)
	}
	return trails, nil
}

// InvalidateAvailability drops the snapshot so the next read refetches.
func (c *CachedGateway) InvalidateAvailability() {
	c.mu.Lock()
	c.hasSnap = false
	c.mu.Unlock()
	c.metrics.AvailabilityCache.WithLabelValues("invalidated").Inc()
}

// InvalidateTrails drops the cached trail list of one city.
func (c *CachedGateway) InvalidateTrails(province, city region.Code) {
	c.trails.remove(trailKey(province, city))
}

// CheckReadiness reports whether a usable availability snapshot can be
// served, fetching one if none has been seen yet.
func (c *CachedGateway) CheckReadiness(ctx context.Context) error {
	c.mu.Lock()
	has := c.hasSnap
	c.mu.Unlock()
	if has {
		return nil
	}
	if _, err := c.Availability(ctx); err != nil {
		return fmt.Errorf("availability snapshot not reachable: %w", err)
	}
	return nil
}

func trailKey(province, city region.Code) string {
	return string(province) + "/" + string(city)
}

// lruCache is a small thread-safe LRU of trail lists.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []content.Trail
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]content.Trail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []content.Trail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.unlink(e)
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
