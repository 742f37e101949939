package expiration

import (
	"time"

	"github.com/probcache/xfetch"
)

/*
Probabilistic is the XFetch strategy: each IsExpired call makes an
independent draw and may declare the entry expired before its deadline, with
a probability that rises as the deadline approaches.

The decision itself lives on the entry (it owns delta, expiry and beta);
this type only adapts it to the Strategy interface. It carries no state, so
one value can serve any number of shards and goroutines.
*/
type Probabilistic[V any] struct{}

func (Probabilistic[V]) IsExpired(ent *xfetch.Entry[V], now time.Time) bool {
	return ent.ExpiredAt(now)
}
