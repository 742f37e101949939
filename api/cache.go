package api

import (
	"context"
	"time"

	"github.com/probcache/xfetch"
)

/*
Cache is the public contract of a stampede-protected cache container. It
hides sharding, load collapsing and refresh plumbing behind a small surface;
cache.ShardedCache is the provided implementation.
*/
type Cache[V any] interface {

	// Get returns the value for key, serving from memory when the entry's
	// expiration test allows it and loading from the backing resource
	// otherwise. A probabilistic expiration strategy may refresh the entry
	// before its deadline; Get still returns a valid value either way.
	Get(ctx context.Context, key string) (V, error)

	// Reload forces a load from the backing resource and replaces the
	// cached entry, measuring the load time as the new entry's delta.
	Reload(ctx context.Context, key string) (V, error)

	// Put stores a value directly with an exact TTL and zero delta, so it
	// never volunteers early.
	Put(key string, value V, ttl time.Duration)

	// PutEntry stores a caller-built entry, preserving whatever delta, TTL
	// and beta the caller configured on it.
	PutEntry(key string, ent *xfetch.Entry[V])

	// Remove deletes a key immediately. Idempotent.
	Remove(key string)

	// TTL returns the time remaining until the key's hard expiry, or -1 if
	// the key is absent or already expired.
	TTL(key string) time.Duration

	// Len returns the number of stored entries.
	Len() int64

	// Close stops background refresh work. Call after readers have stopped.
	Close()
}
