package engine

import (
	"context"
	"time"

	"github.com/probcache/xfetch"
	"github.com/probcache/xfetch/expiration"
	"github.com/probcache/xfetch/refresh"
	"github.com/probcache/xfetch/types"
)

/*
CacheEngine is the policy layer of the cache. It decides behavior, not
storage:

- when an entry counts as expired (and whether that was a volunteer)
- what happens to early volunteers (inline recompute vs refresh hook)
- how missing data is loaded
- how events are reported

It does not store data, shard keys or lock anything.
*/
type CacheEngine[V any] struct {

	// Expiration decides when an entry is too old to serve. Nil falls back
	// to the exact deadline check, which gives a stampede-prone cache; wire
	// expiration.Probabilistic to get early volunteers.
	Expiration expiration.Strategy[V]

	// Refresh optionally absorbs early volunteers so readers never block on
	// recomputation. Nil means the volunteering reader recomputes inline,
	// as in the XFetch paper.
	Refresh refresh.Hook[V]

	// Loader produces values (and their TTLs) when the cache cannot.
	Loader types.Loader[V]

	// Metrics receives cache lifecycle events. Never nil.
	Metrics types.Metrics
}

// NewCacheEngine assembles an engine. A nil metrics is replaced with
// NoopMetrics so call sites never have to nil-check.
func NewCacheEngine[V any](
	exp expiration.Strategy[V],
	hook refresh.Hook[V],
	loader types.Loader[V],
	metrics types.Metrics,
) *CacheEngine[V] {

	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine[V]{
		Expiration: exp,
		Refresh:    hook,
		Loader:     loader,
		Metrics:    metrics,
	}
}

// HardExpired reports whether the entry's nominal deadline has passed. This
// is deterministic and independent of the configured strategy: no strategy
// may keep an entry alive past its expiry.
func (e *CacheEngine[V]) HardExpired(ent *xfetch.Entry[V], now time.Time) bool {
	return !now.Before(ent.Expiry())
}

// IsExpired runs the configured expiration strategy. Callers that need to
// distinguish a volunteer from a genuinely dead entry check HardExpired
// first; a true here with HardExpired false is an early volunteer.
func (e *CacheEngine[V]) IsExpired(ent *xfetch.Entry[V], now time.Time) bool {
	if e.Expiration == nil {
		return e.HardExpired(ent, now)
	}
	return e.Expiration.IsExpired(ent, now)
}

/*
OnVolunteer routes an early-expiration volunteer.

Returns true if a refresh hook took the key, in which case the caller should
keep serving the current (still valid) entry. Returns false if no hook is
configured: the volunteering reader recomputes inline.
*/
func (e *CacheEngine[V]) OnVolunteer(key string, ent *xfetch.Entry[V]) bool {
	if e.Refresh == nil {
		return false
	}

	e.Metrics.Refresh()
	e.Refresh.OnVolunteer(key, ent)
	return true
}

// Load fetches a value from the backing resource.
func (e *CacheEngine[V]) Load(ctx context.Context, key string) (V, time.Duration, error) {
	return e.Loader.Load(ctx, key)
}
