// Package hamt implements a persistent, structurally shared hash array
// mapped trie: the hash map core of this module. Entries whose keys hash
// identically are held in a collision node backed by pcol/tree, so
// arbitrarily large collision sets still resolve in O(log c).
//
// As with pcol/tree, every function here is pure: it takes a root
// (possibly nil) and returns a new root, sharing as much of the input
// structure as possible, and returns its input unchanged by pointer
// identity when nothing changed.
//
// Non-goals: this package does not provide a Map/Set convenience type,
// does not ship hashers for primitive key types, and does not support
// concurrent mutation of a single root.
package hamt

import (
	"fmt"
	"math/bits"

	"github.com/arborix/pcol/tree"
)

const (
	bitsPerSubkey = 5
	subkeyMask    = 1<<bitsPerSubkey - 1 // 31
	maxChildren   = 1 << bitsPerSubkey   // 32
	fullBitmap    = 0xFFFFFFFF
	maxShift      = 32 // no chunk starts at or beyond this
)

type kind uint8

const (
	leafKind kind = iota
	collisionKind
	branchKind
)

// node is the unexported sum type over the trie's three variant shapes,
// tagged by kind rather than dispatched through an interface: only the
// fields relevant to kind are populated, an explicit sum type standing
// in for what a duck-typed tagged variant would otherwise express.
type node[K, V any] struct {
	kind kind

	hash uint32 // leaf, collision

	key K // leaf
	val V // leaf

	coll *tree.Node[K, V] // collision: ordered by key compare, size >= 2 always

	bitmap   uint32     // branch
	children []*node[K, V] // branch: len(children) == popcount(bitmap)
}

func newLeaf[K, V any](hash uint32, key K, val V) *node[K, V] {
	return &node[K, V]{kind: leafKind, hash: hash, key: key, val: val}
}

func newCollision[K, V any](hash uint32, coll *tree.Node[K, V]) *node[K, V] {
	return &node[K, V]{kind: collisionKind, hash: hash, coll: coll}
}

func newBranch[K, V any](bitmap uint32, children []*node[K, V]) *node[K, V] {
	return &node[K, V]{kind: branchKind, bitmap: bitmap, children: children}
}

// invariantf panics with a diagnostic naming the violated condition. It
// is reserved for states a correct caller can never reach; it is never
// used for ordinary not-found results.
func invariantf(format string, args ...any) {
	panic(fmt.Sprintf("hamt: invariant violation: "+format, args...))
}

// chunk extracts the bitsPerSubkey-bit slice of hash starting at shift.
func chunk(hash uint32, shift uint) uint32 {
	return (hash >> shift) & subkeyMask
}

// bitFor returns the single-bit mask for a chunk value in [0, 32).
func bitFor(c uint32) uint32 {
	return 1 << c
}

// branchIndex locates chunk c within n, a branch node: ok reports whether
// a child exists there, and idx is its position in n.children when ok.
// A full branch addresses its children directly by chunk; a sparse
// branch addresses them by popcount of the bits below c.
func branchIndex[K, V any](n *node[K, V], c uint32) (idx int, ok bool) {
	bit := bitFor(c)
	if n.bitmap == fullBitmap {
		return int(c), true
	}
	// popcount below the bit gives the correct array position whether or
	// not the bit itself is set: absent, it is exactly where a new child
	// at c would need to be spliced in to keep children ascending by bit.
	return bits.OnesCount32(n.bitmap & (bit - 1)), n.bitmap&bit != 0
}

// bitPositions returns the set bits of bitmap in ascending order. It is
// used for both full and sparse branches: a full branch's bitmap simply
// has every position set, so the same scan produces 0..31 without a
// special case.
func bitPositions(bitmap uint32) []int {
	positions := make([]int, 0, bits.OnesCount32(bitmap))
	for bitmap != 0 {
		i := bits.TrailingZeros32(bitmap)
		positions = append(positions, i)
		bitmap &^= 1 << i
	}
	return positions
}

// copyAndInsertChild returns a copy of children with child inserted at
// position idx, shifting the tail over by one.
func copyAndInsertChild[K, V any](children []*node[K, V], idx int, child *node[K, V]) []*node[K, V] {
	out := make([]*node[K, V], len(children)+1)
	copy(out, children[:idx])
	out[idx] = child
	copy(out[idx+1:], children[idx:])
	return out
}

// copyAndReplaceChild returns a copy of children with position idx
// replaced by child.
func copyAndReplaceChild[K, V any](children []*node[K, V], idx int, child *node[K, V]) []*node[K, V] {
	out := make([]*node[K, V], len(children))
	copy(out, children)
	out[idx] = child
	return out
}

// copyAndRemoveChild returns a copy of children with position idx
// dropped.
func copyAndRemoveChild[K, V any](children []*node[K, V], idx int) []*node[K, V] {
	out := make([]*node[K, V], len(children)-1)
	copy(out, children[:idx])
	copy(out[idx:], children[idx+1:])
	return out
}

// collapseChildren builds the node replacing a branch whose children are
// now exactly kept (already in ascending bit order, in positions). An
// empty kept set deletes the whole subtree; a single kept child that is
// itself a Leaf or Collision is lifted in its place, so no single-child
// chain over a Leaf/Collision ever survives; otherwise a fresh Branch is
// built from positions/kept.
func collapseChildren[K, V any](positions []int, kept []*node[K, V]) *node[K, V] {
	switch len(kept) {
	case 0:
		return nil
	case 1:
		if kept[0].kind != branchKind {
			return kept[0]
		}
	}
	var bitmap uint32
	for _, p := range positions {
		bitmap |= bitFor(uint32(p))
	}
	return newBranch(bitmap, kept)
}

// childAtPosition returns the child of n (which may be nil) living at
// absolute bit position p, or nil if n is nil or has no child there.
func childAtPosition[K, V any](n *node[K, V], p int) *node[K, V] {
	if n == nil {
		return nil
	}
	idx, ok := branchIndex(n, uint32(p))
	if !ok {
		return nil
	}
	return n.children[idx]
}

// buildBranchFromSlots builds the node replacing a branch from a dense,
// position-indexed scratch array: nil slots are absent children. It is
// the set-algebra counterpart to collapseChildren, used wherever a merge
// assembles a full 32-wide view before re-packing it sparsely.
func buildBranchFromSlots[K, V any](slots [maxChildren]*node[K, V]) *node[K, V] {
	positions := make([]int, 0, maxChildren)
	kept := make([]*node[K, V], 0, maxChildren)
	for i := 0; i < maxChildren; i++ {
		if slots[i] != nil {
			positions = append(positions, i)
			kept = append(kept, slots[i])
		}
	}
	return collapseChildren(positions, kept)
}

// two builds the minimal branch chain discriminating leafA and leafB,
// whose hashes must differ. It descends one chunk at a time, emitting a
// single-child branch at every level the chunks agree, until the chunks
// first differ, where it emits a two-child branch ordered by chunk index.
// It is the only way Branch nodes are initially synthesized.
func two[K, V any](shift uint, leafA, leafB *node[K, V]) *node[K, V] {
	if shift >= maxShift {
		invariantf("two: descended past maximum depth without discriminating hashes %d/%d", leafA.hash, leafB.hash)
	}
	ca := chunk(leafA.hash, shift)
	cb := chunk(leafB.hash, shift)
	if ca == cb {
		child := two[K, V](shift+bitsPerSubkey, leafA, leafB)
		return newBranch(bitFor(ca), []*node[K, V]{child})
	}
	if ca < cb {
		return newBranch(bitFor(ca)|bitFor(cb), []*node[K, V]{leafA, leafB})
	}
	return newBranch(bitFor(ca)|bitFor(cb), []*node[K, V]{leafB, leafA})
}

// Empty reports whether root represents an empty trie.
func Empty[K, V any](root *node[K, V]) bool {
	return root == nil
}
