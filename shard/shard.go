package shard

import "sync"

/*
A Shard is a small, independent slice of the cache. Instead of one big map
behind one big lock, the key space is split across shards; each shard has
its own copy-on-write store and its own write mutex.

- Reads are lock-free (the store hands out immutable snapshots)
- Writes take only this shard's mutex

Entries themselves are immutable after construction, so a reader holding a
snapshot can run the expiration test without any coordination.
*/
type Shard[V any] struct {

	// Store holds this shard's entries behind a copy-on-write map.
	Store Store[V]

	// WriteMu serializes writers on this shard. Readers never take it.
	WriteMu sync.Mutex
}

func NewShard[V any]() *Shard[V] {
	return &Shard[V]{
		Store: NewCOWStore[V](),
	}
}
