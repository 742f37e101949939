package shard

import (
	"sync/atomic"

	"github.com/probcache/xfetch"
)

// Store is how a shard keeps its entries.
type Store[V any] interface {

	// Get retrieves an entry by key.
	Get(key string) (*xfetch.Entry[V], bool)

	// Put inserts or replaces an entry.
	Put(key string, ent *xfetch.Entry[V])

	// Delete removes an entry.
	Delete(key string)

	// Size returns how many entries are stored.
	Size() int64
}

/*
cowStore is a copy-on-write Store.

Readers load an immutable map snapshot and never block; writers build a new
map and swap it in atomically. The expiration test runs on every read, so
the read path being lock-free is what preserves the "no coordination between
concurrent callers" property end to end: immutable entry, immutable map
snapshot, private random draw.

Writes here are comparatively rare: one per load/refresh, not one per read.
*/
type cowStore[V any] struct {
	data atomic.Value // holds map[string]*xfetch.Entry[V]
	size atomic.Int64
}

func NewCOWStore[V any]() Store[V] {
	s := &cowStore[V]{}
	s.data.Store(make(map[string]*xfetch.Entry[V]))
	return s
}

func (s *cowStore[V]) Get(key string) (*xfetch.Entry[V], bool) {
	m := s.data.Load().(map[string]*xfetch.Entry[V])
	ent, ok := m[key]
	return ent, ok
}

// Put replaces the whole map: copy the old entries, add the new one, swap.
// Callers serialize writes per shard, so two Puts never race the copy.
func (s *cowStore[V]) Put(key string, ent *xfetch.Entry[V]) {
	old := s.data.Load().(map[string]*xfetch.Entry[V])

	n := make(map[string]*xfetch.Entry[V], len(old)+1)
	for k, v := range old {
		n[k] = v
	}
	n[key] = ent

	s.data.Store(n)
	s.size.Store(int64(len(n)))
}

func (s *cowStore[V]) Delete(key string) {
	old := s.data.Load().(map[string]*xfetch.Entry[V])
	if _, ok := old[key]; !ok {
		return
	}

	n := make(map[string]*xfetch.Entry[V], len(old)-1)
	for k, v := range old {
		if k != key {
			n[k] = v
		}
	}

	s.data.Store(n)
	s.size.Store(int64(len(n)))
}

func (s *cowStore[V]) Size() int64 {
	return s.size.Load()
}
