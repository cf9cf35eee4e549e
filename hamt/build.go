package hamt

import "github.com/arborix/pcol"

// Pair is a key/value pair, used by From to describe a bulk insertion
// sequence.
type Pair[K, V any] struct {
	Key K
	Val V
}

// From builds a trie from a sequence of key/value pairs by repeated
// Alter. Unlike pcol/tree's From, which batches inserts through a
// mutable scratch tree because insertion order affects rebalancing
// cost, a trie's shape is driven entirely by key hashes: there is no
// insertion-order-sensitive rebalancing to batch around, so a plain
// loop is both the simplest and the idiomatic construction here. merge
// resolves duplicate keys (later pair as "next", earlier result as
// "cur"); a nil merge keeps the later value.
func From[K, V any](cfg pcol.HashConfig[K], items []Pair[K, V], merge func(key K, cur, next V) V) (*node[K, V], int) {
	if merge == nil {
		merge = func(_ K, _, next V) V { return next }
	}
	var root *node[K, V]
	size := 0
	for _, it := range items {
		var delta int
		root, delta = Alter(cfg, root, it.Key, func(cur V, found bool) (V, bool) {
			if !found {
				return it.Val, true
			}
			return merge(it.Key, cur, it.Val), true
		})
		size += delta
	}
	return root, size
}

// Build is From generalized over an arbitrary item type T, extracting the
// key and value from each item with key/val.
func Build[K, V, T any](cfg pcol.HashConfig[K], items []T, key func(T) K, val func(T) V, merge func(k K, cur, next V) V) (*node[K, V], int) {
	if merge == nil {
		merge = func(_ K, _, next V) V { return next }
	}
	var root *node[K, V]
	size := 0
	for _, it := range items {
		k, v := key(it), val(it)
		var delta int
		root, delta = Alter(cfg, root, k, func(cur V, found bool) (V, bool) {
			if !found {
				return v, true
			}
			return merge(k, cur, v), true
		})
		size += delta
	}
	return root, size
}
