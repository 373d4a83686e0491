package interfaces

import (
	"context"
	"time"
)

// PopulateFunc loads the value for a cache key from its source of truth.
type PopulateFunc func(ctx context.Context) (interface{}, error)

// Cache is a process-local TTL cache whose keys are grouped into
// namespaces by their colon-separated prefixes.
type Cache interface {
	// GetOrPopulate returns the live value for key, or calls populate,
	// stores its result for ttl and returns it. Populate errors are
	// returned unchanged and nothing is stored.
	GetOrPopulate(ctx context.Context, key string, ttl time.Duration, populate PopulateFunc) (interface{}, error)

	// Invalidate removes a single key
	Invalidate(key string)

	// InvalidateNamespace removes every key equal to namespace or starting
	// with namespace followed by a separator, returning how many were removed
	InvalidateNamespace(namespace string) int

	// Flush removes every entry and returns how many were dropped
	Flush() int

	// Stats returns a snapshot of the cache counters
	Stats() CacheStats
}

// CacheStats holds cache counters for diagnostics.
type CacheStats struct {
	Entries       int   `json:"entries"`
	Namespaces    int   `json:"namespaces"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Expirations   int64 `json:"expirations"`
	Invalidations int64 `json:"invalidations"`
	StaleDiscards int64 `json:"stale_discards"`
}
