package xfetch

import (
	"errors"
	"time"
)

// DefaultBeta is the beta applied when WithBeta is never called. 1.0 is the
// optimal setting for most workloads per the XFetch paper.
const DefaultBeta = 1.0

var (
	// ErrMissingTTL is returned by Build when no TTL function was registered.
	// A missing TTL is a programming error, so there is no implicit default.
	ErrMissingTTL = errors.New("xfetch: builder has no TTL function")

	// ErrNegativeBeta is returned by Build when WithBeta was called with a
	// negative value. Negative beta has no meaning in the expiration formula.
	ErrNegativeBeta = errors.New("xfetch: beta must be >= 0")
)

/*
Builder stages the inputs for one Entry and assembles it exactly once.

The three configurable inputs are:
- the computation producing the value (required, passed to New)
- the TTL function mapping the value to its time-to-live (required)
- beta (optional, defaults to DefaultBeta)

A Builder is a one-shot object: configure it, call Build, discard it.
*/
type Builder[T any] struct {
	compute func() T
	ttlFn   func(T) time.Duration
	deltaFn func(T) time.Duration
	beta    float64
	err     error
}

// New starts a Builder around the value-producing computation. The
// computation is not invoked until Build.
func New[T any](compute func() T) *Builder[T] {
	return &Builder[T]{
		compute: compute,
		beta:    DefaultBeta,
	}
}

// WithTTL registers the function deriving the time-to-live from the computed
// value. Calling it again replaces the previous registration. Build fails
// without one.
func (b *Builder[T]) WithTTL(fn func(T) time.Duration) *Builder[T] {
	b.ttlFn = fn
	return b
}

/*
WithDelta overrides the measured recomputation cost.

Normally delta is the wall-clock time the computation took inside Build.
When that measurement does not reflect the real cost, for example when the
computation only kicks off asynchronous work, the caller can derive delta
from the value instead. Negative results are floored at zero.
*/
func (b *Builder[T]) WithDelta(fn func(T) time.Duration) *Builder[T] {
	b.deltaFn = fn
	return b
}

// WithBeta sets the early-expiration tuning parameter. Values above 1.0
// favor earlier recomputation, values below favor later. Negative values are
// rejected: Build will return ErrNegativeBeta.
func (b *Builder[T]) WithBeta(beta float64) *Builder[T] {
	if beta < 0 {
		b.err = ErrNegativeBeta
		return b
	}
	b.beta = beta
	return b
}

/*
Build runs the computation, measures it and assembles the Entry.

BEHAVIOR:
---------
 1. Record t0, invoke the computation, record t1.
 2. delta = t1 - t0, floored at zero in case the clock went backward.
 3. Invoke the TTL function on the value; expiry = t1 + ttl.

The computation and the TTL function each run exactly once, in that order.
Panics out of either propagate to the caller unmodified: retry and fallback
policy belongs to the surrounding application, not here.
*/
func (b *Builder[T]) Build() (*Entry[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.ttlFn == nil {
		return nil, ErrMissingTTL
	}

	t0 := time.Now()
	value := b.compute()
	t1 := time.Now()

	delta := t1.Sub(t0)
	if b.deltaFn != nil {
		delta = b.deltaFn(value)
	}
	if delta < 0 {
		delta = 0
	}

	return &Entry[T]{
		value:  value,
		delta:  delta,
		expiry: t1.Add(b.ttlFn(value)),
		beta:   b.beta,
	}, nil
}

// MustBuild is Build for call sites where a configuration error is a bug,
// such as static construction in demos and tests. It panics on error.
func (b *Builder[T]) MustBuild() *Entry[T] {
	ent, err := b.Build()
	if err != nil {
		panic(err)
	}
	return ent
}
