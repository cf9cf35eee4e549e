package tree

import "github.com/arborix/pcol"

// mnode is the mutable node shape used exclusively by the bulk builders
// below. It is never returned to a caller: every builder ends by handing
// its scratch tree to freeze, which is the first point the result becomes
// an immutable, shareable *Node. Keeping the mutable and immutable node
// shapes as distinct types avoids ever publishing a "trust me, don't
// mutate this" node.
type mnode[K, V any] struct {
	key         K
	val         V
	size        int
	left, right *mnode[K, V]
}

func msize[K, V any](n *mnode[K, V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

// mutateBalance restores the weight-balance invariant at n, which may be
// off by at most the effect of a single insertion below it, using the
// mutable single/double rotation variants: it updates the existing node
// structs' fields in place instead of allocating bin() replacements, since
// nothing outside the builder can be holding a reference to them yet.
func mutateBalance[K, V any](n *mnode[K, V]) *mnode[K, V] {
	l, r := n.left, n.right
	switch {
	case msize(r) > delta*msize(l):
		rl, rr := r.left, r.right
		if msize(rl) < ratio*msize(rr) {
			n.right = rl
			n.size = 1 + msize(l) + msize(rl)
			r.left = n
			r.size = 1 + msize(n) + msize(rr)
			return r
		}
		n.right = rl.left
		n.size = 1 + msize(l) + msize(rl.left)
		r.left = rl.right
		r.size = 1 + msize(rl.right) + msize(rr)
		rl.left = n
		rl.right = r
		rl.size = 1 + msize(n) + msize(r)
		return rl
	case msize(l) > delta*msize(r):
		ll, lr := l.left, l.right
		if msize(lr) < ratio*msize(ll) {
			n.left = lr
			n.size = 1 + msize(lr) + msize(r)
			l.right = n
			l.size = 1 + msize(ll) + msize(n)
			return l
		}
		n.left = lr.right
		n.size = 1 + msize(lr.right) + msize(r)
		l.right = lr.left
		l.size = 1 + msize(ll) + msize(lr.left)
		lr.left = l
		lr.right = n
		lr.size = 1 + msize(l) + msize(n)
		return lr
	default:
		return n
	}
}

// mutateInsert inserts key/val into the scratch tree rooted at n, merging
// with merge on a duplicate key, and returns the (possibly rebalanced,
// possibly newly allocated) root of the scratch tree. Together with
// mutateBalance, it is the only code in this package that mutates a
// node's fields after construction.
func mutateInsert[K, V any](cmp pcol.Compare[K], merge func(key K, cur, next V) V, n *mnode[K, V], key K, val V) *mnode[K, V] {
	if n == nil {
		return &mnode[K, V]{key: key, val: val, size: 1}
	}
	c := cmp.Compare(key, n.key)
	switch {
	case c < 0:
		n.left = mutateInsert(cmp, merge, n.left, key, val)
		n.size = 1 + msize(n.left) + msize(n.right)
		return mutateBalance(n)
	case c > 0:
		n.right = mutateInsert(cmp, merge, n.right, key, val)
		n.size = 1 + msize(n.left) + msize(n.right)
		return mutateBalance(n)
	default:
		n.val = merge(key, n.val, val)
		return n
	}
}

// freeze converts a scratch tree into the published, immutable node shape.
// It is the one conversion boundary in this package: before freeze
// returns, no reference to the result has escaped the builder.
func freeze[K, V any](n *mnode[K, V]) *Node[K, V] {
	if n == nil {
		return nil
	}
	return &Node[K, V]{
		Key:   n.key,
		Val:   n.val,
		Size:  n.size,
		Left:  freeze(n.left),
		Right: freeze(n.right),
	}
}

// Pair is a key/value pair, used by From to describe a bulk insertion
// sequence.
type Pair[K, V any] struct {
	Key K
	Val V
}

// defaultMerge keeps the later value on a duplicate key, matching the
// behavior of inserting the sequence one at a time with Alter.
func defaultMerge[K, V any](_ K, _, next V) V {
	return next
}

// From builds a tree from a sequence of key/value pairs in a single
// pass, using the mutable bulk-build path rather than repeated persistent
// Alter calls. merge resolves duplicate keys (later pair as "next",
// earlier result as "cur"); a nil merge keeps the later value.
func From[K, V any](cmp pcol.Compare[K], items []Pair[K, V], merge func(key K, cur, next V) V) (*Node[K, V], int) {
	if merge == nil {
		merge = defaultMerge[K, V]
	}
	var root *mnode[K, V]
	for _, it := range items {
		root = mutateInsert(cmp, merge, root, it.Key, it.Val)
	}
	frozen := freeze(root)
	return frozen, size(frozen)
}

// Build is From generalized over an arbitrary item type T, extracting the
// key and value from each item with key/val.
func Build[K, V, T any](cmp pcol.Compare[K], items []T, key func(T) K, val func(T) V, merge func(k K, cur, next V) V) (*Node[K, V], int) {
	if merge == nil {
		merge = defaultMerge[K, V]
	}
	var root *mnode[K, V]
	for _, it := range items {
		root = mutateInsert(cmp, merge, root, key(it), val(it))
	}
	frozen := freeze(root)
	return frozen, size(frozen)
}
