package types

import (
	"context"
	"time"
)

// Loader is the contract between the cache and the backing resource.
type Loader[V any] interface {

	/*
		Load is called when a key has to be (re)computed: either it was never
		cached, its entry hard-expired, or a reader volunteered to refresh it
		early.

		Load returns the value together with the time-to-live the resulting
		cache entry should get. Returning the TTL from the loader keeps
		freshness a property of the data (a payload can carry its own
		expiration), not of the cache configuration.

		The cache measures how long Load takes; that measurement becomes the
		entry's delta and widens its early-expiration window. Slow loads get
		more advance warning.
	*/
	Load(ctx context.Context, key string) (V, time.Duration, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[V any] func(ctx context.Context, key string) (V, time.Duration, error)

func (f LoaderFunc[V]) Load(ctx context.Context, key string) (V, time.Duration, error) {
	return f(ctx, key)
}
