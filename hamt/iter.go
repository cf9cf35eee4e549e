package hamt

import "github.com/arborix/pcol/tree"

// Iterator walks a trie using an explicit stack rather than recursion, so
// traversal state lives on the heap instead of the goroutine stack. An
// Iterator is single-use: once exhausted, it yields nothing more.
//
// Order is the trie's own bit order (branch children ascending by bit
// position, depth-first), not key order: a hash array mapped trie has no
// natural key ordering outside a single collision bucket, where entries
// are visited in ascending key order via the bucket's inner tree.
type Iterator[K, V any] struct {
	stack []*node[K, V]
	inner *tree.Iterator[K, V]
}

// NewIterator returns an Iterator positioned before root's first entry.
func NewIterator[K, V any](root *node[K, V]) *Iterator[K, V] {
	it := &Iterator[K, V]{}
	if root != nil {
		it.stack = append(it.stack, root)
	}
	return it
}

// Next returns the next entry, and whether one was available.
func (it *Iterator[K, V]) Next() (K, V, bool) {
	for {
		if it.inner != nil {
			k, v, ok := it.inner.Next()
			if ok {
				return k, v, true
			}
			it.inner = nil
		}
		if len(it.stack) == 0 {
			var zk K
			var zv V
			return zk, zv, false
		}
		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]
		switch n.kind {
		case leafKind:
			return n.key, n.val, true
		case collisionKind:
			it.inner = tree.NewIterator(n.coll)
		default: // branchKind
			for i := len(n.children) - 1; i >= 0; i-- {
				it.stack = append(it.stack, n.children[i])
			}
		}
	}
}

// Iterate calls fn for every entry, stopping early if fn returns false.
func Iterate[K, V any](root *node[K, V], fn func(k K, v V) bool) {
	it := NewIterator(root)
	for {
		k, v, ok := it.Next()
		if !ok {
			return
		}
		if !fn(k, v) {
			return
		}
	}
}

// Fold reduces every entry into an accumulator, starting from zero.
func Fold[K, V, A any](root *node[K, V], zero A, fn func(acc A, k K, v V) A) A {
	acc := zero
	Iterate(root, func(k K, v V) bool {
		acc = fn(acc, k, v)
		return true
	})
	return acc
}
