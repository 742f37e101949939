/*
Package xfetch implements probabilistic early cache expiration using the
XFetch algorithm (Vattani, Chierichetti, Lowenstein, 2015: "Optimal
Probabilistic Cache Stampede Prevention").

Under heavy load, many workers can observe the same cache entry expire at
once and all recompute it together, hammering the backing resource the cache
was meant to protect. XFetch avoids this by letting every worker volunteer
for recomputation BEFORE the entry truly expires, with a probability that
grows as the expiry approaches. Each decision is independent, so the
recomputation load spreads out over time instead of spiking at the deadline.

The decision is a single closed-form test. Given the measured recomputation
cost delta, a tuning parameter beta and a fresh uniform draw r from the open
interval (0, 1):

	expired = now + delta*beta*ln(1/r) >= expiry

ln(1/r) is always >= 0, so the test can only ever move expiration earlier,
never later. An Entry is immutable once built and the test reads nothing but
its own fields plus a private random draw, so any number of goroutines may
call it concurrently without synchronization.

An Entry holds one value and carries its own expiration decision. It can sit
inside any keyed container; the cache package in this module provides one.
*/
package xfetch

import (
	"math"
	"math/rand/v2"
	"time"
)

/*
Entry is a single cached value together with everything the XFetch test
needs: the time the value took to compute (delta), the nominal expiration
instant and the beta tuning parameter.

An Entry is read-only after Build. All methods are safe for concurrent use.
*/
type Entry[T any] struct {
	value  T
	delta  time.Duration
	expiry time.Time
	beta   float64
}

// Get returns the cached value. No expiration check is performed here;
// callers decide separately, via IsExpired, whether to trust the value.
func (e *Entry[T]) Get() T {
	return e.value
}

// Delta returns the measured (or overridden) recomputation cost.
func (e *Entry[T]) Delta() time.Duration {
	return e.delta
}

// Expiry returns the nominal expiration instant (build time + TTL).
func (e *Entry[T]) Expiry() time.Time {
	return e.expiry
}

// Beta returns the early-expiration tuning parameter.
func (e *Entry[T]) Beta() float64 {
	return e.beta
}

/*
IsExpired reports whether the entry should be treated as expired right now.

The entry is expired for certain once its nominal expiry has passed. Before
that, this method may ALSO report true with a probability that rises as the
expiry approaches:

	P(expired) = exp(-(expiry - now) / (delta * beta))

Every call draws independently, so concurrent callers never correlate their
decisions. With delta == 0 or beta == 0 the test degenerates to a plain
deadline check.
*/
func (e *Entry[T]) IsExpired() bool {
	return e.expiredAt(time.Now(), openUnit())
}

// ExpiredAt runs the same test against a supplied clock reading. This is the
// entry point for expiration strategies that carry their own notion of "now".
func (e *Entry[T]) ExpiredAt(now time.Time) bool {
	return e.expiredAt(now, openUnit())
}

/*
expiredAt is the XFetch decision itself, with the random draw injected so
tests can pin it.

BEHAVIOR:
---------
 1. now >= expiry always wins: the probabilistic part only ever makes
    expiration earlier, never later.
 2. delta == 0 or beta == 0 disables early expiration entirely.
 3. Otherwise, expired iff now + delta*beta*ln(1/r) >= expiry.

r must lie in the open interval (0, 1): r == 0 would make ln(1/r) infinite
and r == 1 would make the draw indistinguishable from "never early".
*/
func (e *Entry[T]) expiredAt(now time.Time, r float64) bool {
	if !now.Before(e.expiry) {
		return true
	}

	if e.delta <= 0 || e.beta <= 0 {
		return false
	}

	// ln(1/r) = -ln(r) >= 0 for r in (0, 1). Comparing in the float domain
	// keeps an extreme draw from overflowing a Duration conversion.
	window := float64(e.delta) * e.beta * -math.Log(r)

	return window >= float64(e.expiry.Sub(now))
}

/*
openUnit draws one uniform sample from the open interval (0, 1).

rand.Float64 yields [0, 1): it can return exactly 0 but never 1, so we only
have to resample the zero case. The exclusion of both endpoints is a
contract of the expiration test, not an implementation detail.

math/rand/v2's top-level generator keeps per-thread state, so this draw
needs no lock and concurrent callers stay independent.
*/
func openUnit() float64 {
	for {
		if r := rand.Float64(); r > 0 {
			return r
		}
	}
}
