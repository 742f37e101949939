package refresh

import (
	"sync"

	"github.com/probcache/xfetch"
)

/*
Background refreshes volunteered keys on a single worker goroutine.

Volunteers are pushed into a buffered channel and picked up by the worker,
which runs the supplied refresh function (typically the cache's Reload).
Two properties keep the read path cheap:

  - A key already queued or refreshing is not queued again. Early-expiration
    draws fire independently per reader, so near the deadline several readers
    can volunteer the same key within milliseconds; one refresh is enough.
  - If the buffer is full, the volunteer is dropped. The entry is still
    valid (only volunteers, never hard-expired entries, land here), so
    dropping costs nothing but a missed head start.
*/
type Background[V any] struct {
	fn func(key string)
	ch chan string
	wg sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewBackground starts the worker. fn is invoked once per accepted
// volunteer, off the read path. buffer bounds the number of queued keys.
func NewBackground[V any](buffer int, fn func(key string)) *Background[V] {
	b := &Background[V]{
		fn:       fn,
		ch:       make(chan string, buffer),
		inflight: make(map[string]struct{}),
	}

	b.wg.Add(1)
	go b.worker()

	return b
}

// OnVolunteer queues the key for refresh. Duplicate volunteers and volunteers
// arriving while the buffer is full are dropped.
func (b *Background[V]) OnVolunteer(key string, _ *xfetch.Entry[V]) {
	b.mu.Lock()
	if _, dup := b.inflight[key]; dup {
		b.mu.Unlock()
		return
	}
	b.inflight[key] = struct{}{}
	b.mu.Unlock()

	select {
	case b.ch <- key:
	default:
		// Buffer full: forget the reservation so a later volunteer can retry.
		b.mu.Lock()
		delete(b.inflight, key)
		b.mu.Unlock()
	}
}

func (b *Background[V]) worker() {
	defer b.wg.Done()

	for key := range b.ch {
		b.fn(key)

		b.mu.Lock()
		delete(b.inflight, key)
		b.mu.Unlock()
	}
}

/*
Close shuts the refresher down gracefully:

 1. Close the channel so no further volunteers are accepted.
 2. Wait for the worker to drain the queued keys.

Call Close only after the cache has stopped handing out volunteers;
OnVolunteer after Close panics on the closed channel.
*/
func (b *Background[V]) Close() {
	close(b.ch)
	b.wg.Wait()
}
