// This file decides which shard a cache key lands on.

package shard

import "hash/fnv"

// Selector maps a key to one of the shards. The cache does not care how;
// different strategies can be plugged in.
type Selector[V any] interface {
	Select(key string, shards []*Shard[V]) *Shard[V]
}

// FNVSelector hashes the key with FNV-1a and picks the shard by modulus.
// FNV is fast, non-cryptographic and spreads typical cache keys well.
type FNVSelector[V any] struct{}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (FNVSelector[V]) Select(key string, shards []*Shard[V]) *Shard[V] {
	return shards[int(hash(key))%len(shards)]
}
