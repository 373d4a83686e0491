package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// Fetch is the typed form of GetOrPopulate. A cached value of the wrong
// type is treated as corrupt: the key is dropped and load runs again.
func Fetch[V any](
	ctx context.Context,
	c interfaces.Cache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (V, error),
) (V, error) {
	populate := func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	}

	raw, err := c.GetOrPopulate(ctx, key, ttl, populate)
	if err != nil {
		var zero V
		return zero, err
	}
	if v, ok := raw.(V); ok {
		return v, nil
	}

	c.Invalidate(key)
	raw, err = c.GetOrPopulate(ctx, key, ttl, populate)
	if err != nil {
		var zero V
		return zero, err
	}
	v, ok := raw.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("cache key %q holds %T", key, raw)
	}
	return v, nil
}
