// Package cache provides a sharded in-process container for xfetch entries.
//
// The xfetch core deliberately stops at "one entry, one expiration test";
// this package is the reference integration: a keyed store that consults the
// test before serving, reloads through singleflight, and optionally hands
// early volunteers to a background refresher.
package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/probcache/xfetch"
	"github.com/probcache/xfetch/engine"
	"github.com/probcache/xfetch/shard"
)

/*
ShardedCache connects the pieces: shards for storage, an engine for policy,
a selector for key placement and singleflight for load collapsing.

Stampede protection happens in two layers that cover each other's gaps:

  - The probabilistic expiration test spreads recomputation out BEFORE the
    deadline, so most refreshes happen while the old value is still valid.
  - singleflight collapses the residual case where several goroutines still
    reach the load path for the same key at once.
*/
type ShardedCache[V any] struct {
	shards   []*shard.Shard[V]
	engine   *engine.CacheEngine[V]
	selector shard.Selector[V]

	// beta is stamped onto every entry this cache builds.
	beta float64

	// sf collapses concurrent loads of the same key.
	sf singleflight.Group
}

// NewShardedCache creates a cache with the given shard count and beta. Beta
// tunes how aggressively entries volunteer for early refresh; use
// xfetch.DefaultBeta unless measurements say otherwise. Negative beta and a
// non-positive shard count are configuration bugs and panic.
func NewShardedCache[V any](shards int, beta float64, eng *engine.CacheEngine[V]) *ShardedCache[V] {
	if shards <= 0 {
		panic(fmt.Sprintf("cache: shard count must be > 0, got %d", shards))
	}
	if beta < 0 {
		panic(fmt.Sprintf("cache: beta must be >= 0, got %g", beta))
	}

	s := make([]*shard.Shard[V], shards)
	for i := range s {
		s[i] = shard.NewShard[V]()
	}

	return &ShardedCache[V]{
		shards:   s,
		engine:   eng,
		selector: shard.FNVSelector[V]{},
		beta:     beta,
	}
}

/*
Get retrieves a value, consulting the entry's expiration test first.

BEHAVIOR:
---------
 1. Entry present, past its hard expiry: drop it and reload.
 2. Entry present, strategy volunteers it early: if a refresh hook is
    configured the hook refreshes in the background and the current (still
    valid) value is served; otherwise this caller reloads inline.
 3. Entry present and fresh: serve it.
 4. Entry absent: load it.

Concurrent reloads of one key are collapsed by singleflight.
*/
func (c *ShardedCache[V]) Get(ctx context.Context, key string) (V, error) {
	sh := c.selector.Select(key, c.shards)

	if ent, ok := sh.Store.Get(key); ok {
		now := time.Now()

		switch {
		case c.engine.HardExpired(ent, now):
			c.engine.Metrics.Expire()
			c.Remove(key)

		case c.engine.IsExpired(ent, now):
			// Early volunteer: the deadline has not passed, one independent
			// draw just elected this reader to refresh ahead of it.
			c.engine.Metrics.EarlyExpire()
			if c.engine.OnVolunteer(key, ent) {
				return ent.Get(), nil
			}

		default:
			c.engine.Metrics.Hit()
			return ent.Get(), nil
		}
	} else {
		c.engine.Metrics.Miss()
	}

	return c.Reload(ctx, key)
}

/*
Reload fetches the key from the backing resource and replaces its entry.

The load runs inside the entry builder's compute closure, so the measured
load time becomes the new entry's delta: slow loads automatically get a
wider early-expiration window next time around. The loader also dictates the
TTL.
*/
func (c *ShardedCache[V]) Reload(ctx context.Context, key string) (V, error) {
	v, err, _ := c.sf.Do(key, func() (any, error) {
		var (
			ttl     time.Duration
			loadErr error
		)

		ent, err := xfetch.New(func() V {
			value, t, err := c.engine.Load(ctx, key)
			ttl, loadErr = t, err
			return value
		}).WithTTL(func(V) time.Duration {
			return ttl
		}).WithBeta(c.beta).Build()

		if err != nil {
			return nil, err
		}
		if loadErr != nil {
			return nil, loadErr
		}

		c.PutEntry(key, ent)
		return ent, nil
	})

	if err != nil {
		var zero V
		return zero, err
	}

	return v.(*xfetch.Entry[V]).Get(), nil
}

// Put stores a value directly, bypassing the loader. A directly stored
// value has no measured recomputation cost, so its delta is zero and it
// expires exactly at now + ttl with no early volunteering.
func (c *ShardedCache[V]) Put(key string, value V, ttl time.Duration) {
	ent := xfetch.New(func() V { return value }).
		WithDelta(func(V) time.Duration { return 0 }).
		WithTTL(func(V) time.Duration { return ttl }).
		WithBeta(c.beta).
		MustBuild()

	c.PutEntry(key, ent)
}

// PutEntry stores a pre-built entry. This is the escape hatch for callers
// that build entries themselves, e.g. with an explicit delta override.
func (c *ShardedCache[V]) PutEntry(key string, ent *xfetch.Entry[V]) {
	sh := c.selector.Select(key, c.shards)

	sh.WriteMu.Lock()
	defer sh.WriteMu.Unlock()

	sh.Store.Put(key, ent)
}

// Remove deletes a key. Removing an absent key is a no-op.
func (c *ShardedCache[V]) Remove(key string) {
	sh := c.selector.Select(key, c.shards)

	sh.WriteMu.Lock()
	defer sh.WriteMu.Unlock()

	sh.Store.Delete(key)
}

// TTL returns the remaining time until the key's hard expiry, or -1 if the
// key is absent or already past it. The probabilistic test may of course
// volunteer the entry sooner than the returned duration.
func (c *ShardedCache[V]) TTL(key string) time.Duration {
	sh := c.selector.Select(key, c.shards)

	ent, ok := sh.Store.Get(key)
	if !ok {
		return -1
	}

	d := time.Until(ent.Expiry())
	if d <= 0 {
		return -1
	}
	return d
}

// Len returns the number of stored entries, including ones past expiry that
// no reader has touched yet.
func (c *ShardedCache[V]) Len() int64 {
	var n int64
	for _, sh := range c.shards {
		n += sh.Store.Size()
	}
	return n
}

// Close shuts down the refresh hook, if any, waiting for in-flight
// background refreshes to finish. Call it after readers have stopped.
func (c *ShardedCache[V]) Close() {
	if c.engine.Refresh != nil {
		c.engine.Refresh.Close()
	}
}
