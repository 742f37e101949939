// This file defines how the cache decides that an entry is too old to serve.

package expiration

import (
	"time"

	"github.com/probcache/xfetch"
)

/*
Strategy is the interface all expiration rules follow. The cache never
hard-codes an expiration decision; it asks the configured Strategy, so the
probabilistic XFetch test and a plain deadline check are interchangeable.

Implementations must be safe for concurrent use: the cache calls IsExpired
from many readers at once, on the same entry, without synchronization.
*/
type Strategy[V any] interface {

	// IsExpired reports whether the entry should be treated as expired at
	// the given moment. A true result may be probabilistic: strategies are
	// allowed to volunteer an entry early, but never to keep one alive past
	// its nominal expiry.
	IsExpired(ent *xfetch.Entry[V], now time.Time) bool
}

// Exact is the classic deadline check: expired iff now >= expiry. It never
// volunteers early, which is exactly the stampede-prone behavior the
// Probabilistic strategy exists to replace. Useful as a baseline and for
// workloads with a single reader.
type Exact[V any] struct{}

func (Exact[V]) IsExpired(ent *xfetch.Entry[V], now time.Time) bool {
	return !now.Before(ent.Expiry())
}
