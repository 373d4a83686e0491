package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

// DefaultCleanupInterval is how often the janitor sweeps expired entries.
const DefaultCleanupInterval = 5 * time.Minute

// entry is a cached value with its expiration.
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// ReferenceCache is an in-memory TTL cache with a namespace index.
//
// Every stored key is registered under each of its namespaces so that
// InvalidateNamespace removes exactly the live keys of a namespace without
// scanning or guessing id ranges. Each invalidation also records a
// sequence number per namespace; a populate that started before an
// invalidation of one of its namespaces returns its value to the caller
// but does not store it.
type ReferenceCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	index   map[string]map[string]struct{}

	seq         uint64
	invalidated map[string]uint64
	flushedAt   uint64

	now     func() time.Time
	cleanup time.Duration
	logger  interfaces.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	expirations   atomic.Int64
	invalidations atomic.Int64
	staleDiscards atomic.Int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ interfaces.Cache = (*ReferenceCache)(nil)

// Option configures a ReferenceCache.
type Option func(*ReferenceCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *ReferenceCache) { c.now = now }
}

// WithCleanupInterval sets the janitor period. Zero or less disables it.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *ReferenceCache) { c.cleanup = d }
}

// WithLogger sets the logger.
func WithLogger(l interfaces.Logger) Option {
	return func(c *ReferenceCache) { c.logger = l }
}

// New creates a cache and starts its janitor. Call Close to stop it.
func New(opts ...Option) *ReferenceCache {
	c := &ReferenceCache{
		entries:     make(map[string]*entry),
		index:       make(map[string]map[string]struct{}),
		invalidated: make(map[string]uint64),
		now:         time.Now,
		cleanup:     DefaultCleanupInterval,
		logger:      logger.NewNoop(),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cleanup > 0 {
		go c.janitor()
	} else {
		close(c.done)
	}

	return c
}

// GetOrPopulate implements interfaces.Cache.
func (c *ReferenceCache) GetOrPopulate(
	ctx context.Context,
	key string,
	ttl time.Duration,
	populate interfaces.PopulateFunc,
) (interface{}, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	if ok && c.now().Before(e.expiresAt) {
		c.mu.RUnlock()
		c.hits.Add(1)
		return e.value, nil
	}
	c.mu.RUnlock()

	c.misses.Add(1)
	ticket := c.begin(key)

	value, err := populate(ctx)
	if err != nil {
		return nil, err
	}

	if !c.commit(key, value, ttl, ticket) {
		c.staleDiscards.Add(1)
		c.logger.Debug("Discarded cache fill raced by invalidation",
			interfaces.String("key", key))
	}

	return value, nil
}

// begin drops an expired entry for key and returns the sequence number the
// populate result will be checked against.
func (c *ReferenceCache) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !c.now().Before(e.expiresAt) {
		c.removeLocked(key)
		c.expirations.Add(1)
	}
	return c.seq
}

// commit stores value unless key or any of its namespaces was invalidated
// after ticket was taken.
func (c *ReferenceCache) commit(key string, value interface{}, ttl time.Duration, ticket uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flushedAt > ticket {
		return false
	}
	namespaces := Namespaces(key)
	for _, ns := range namespaces {
		if c.invalidated[ns] > ticket {
			return false
		}
	}

	c.entries[key] = &entry{value: value, expiresAt: c.now().Add(ttl)}
	for _, ns := range namespaces {
		keys, ok := c.index[ns]
		if !ok {
			keys = make(map[string]struct{})
			c.index[ns] = keys
		}
		keys[key] = struct{}{}
	}
	return true
}

// Invalidate implements interfaces.Cache.
func (c *ReferenceCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.invalidated[key] = c.seq
	if _, ok := c.entries[key]; ok {
		c.removeLocked(key)
		c.invalidations.Add(1)
	}
}

// InvalidateNamespace implements interfaces.Cache.
func (c *ReferenceCache) InvalidateNamespace(namespace string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.invalidated[namespace] = c.seq

	keys := c.index[namespace]
	victims := make([]string, 0, len(keys))
	for key := range keys {
		victims = append(victims, key)
	}
	for _, key := range victims {
		c.removeLocked(key)
	}
	c.invalidations.Add(int64(len(victims)))

	return len(victims)
}

// Flush implements interfaces.Cache.
func (c *ReferenceCache) Flush() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.invalidations.Add(int64(removed))
	c.seq++
	c.flushedAt = c.seq
	c.entries = make(map[string]*entry)
	c.index = make(map[string]map[string]struct{})
	c.invalidated = make(map[string]uint64)
	return removed
}

// Stats implements interfaces.Cache.
func (c *ReferenceCache) Stats() interfaces.CacheStats {
	c.mu.RLock()
	entries, namespaces := len(c.entries), len(c.index)
	c.mu.RUnlock()

	return interfaces.CacheStats{
		Entries:       entries,
		Namespaces:    namespaces,
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Expirations:   c.expirations.Load(),
		Invalidations: c.invalidations.Load(),
		StaleDiscards: c.staleDiscards.Load(),
	}
}

// Close stops the janitor. The cache stays usable.
func (c *ReferenceCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
	return nil
}

// removeLocked deletes key and its index registrations. c.mu must be held.
func (c *ReferenceCache) removeLocked(key string) {
	delete(c.entries, key)
	for _, ns := range Namespaces(key) {
		keys, ok := c.index[ns]
		if !ok {
			continue
		}
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.index, ns)
		}
	}
}

// sweep removes every expired entry.
func (c *ReferenceCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var removed int
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.removeLocked(key)
			removed++
		}
	}
	c.expirations.Add(int64(removed))

	c.pruneLocked()
	return removed
}

// pruneLocked forgets per-namespace invalidation marks by moving the flush
// horizon up to the current sequence. Populates that began before the
// horizon are then discarded, which is conservative but never stale.
func (c *ReferenceCache) pruneLocked() {
	if len(c.invalidated) == 0 {
		return
	}
	c.flushedAt = c.seq
	c.invalidated = make(map[string]uint64)
}

// janitor periodically removes expired entries.
func (c *ReferenceCache) janitor() {
	defer close(c.done)

	ticker := time.NewTicker(c.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.sweep(); n > 0 {
				c.logger.Debug("Cache sweep removed expired entries", interfaces.Int("count", n))
			}
		case <-c.stop:
			return
		}
	}
}
