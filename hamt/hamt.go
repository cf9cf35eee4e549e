package hamt

import (
	"github.com/arborix/pcol"
	"github.com/arborix/pcol/tree"
)

// treeCompare adapts a HashConfig's Compare into the plain pcol.Compare
// that the collision bucket's pcol/tree operations expect; collision
// trees never need Hash, only key order.
func treeCompare[K any](cfg pcol.HashConfig[K]) pcol.Compare[K] {
	return cfg.Compare
}

// buildCollisionTree creates the two-entry ordered tree backing a new
// Collision node, the only way a Collision is ever created from scratch.
func buildCollisionTree[K, V any](cfg pcol.HashConfig[K], keyA K, valA V, keyB K, valB V) *tree.Node[K, V] {
	var t *tree.Node[K, V]
	t = tree.Alter(treeCompare(cfg), t, keyA, func(_ V, _ bool) (V, bool) { return valA, true })
	t = tree.Alter(treeCompare(cfg), t, keyB, func(_ V, _ bool) (V, bool) { return valB, true })
	return t
}

// ValueFunc is the value-producer callback shared by Alter: it receives
// the current value (or the zero value) and whether the key was present,
// and returns the value to store and whether to keep an entry at all,
// exactly as pcol/tree.ValueFunc does for the ordered tree.
type ValueFunc[V any] func(cur V, found bool) (newVal V, keep bool)

// Lookup returns the value stored for key, and whether it was present.
func Lookup[K, V any](cfg pcol.HashConfig[K], root *node[K, V], key K) (V, bool) {
	return lookupAt(cfg, root, key, cfg.Hash(key), 0)
}

func lookupAt[K, V any](cfg pcol.HashConfig[K], n *node[K, V], key K, hash uint32, shift uint) (V, bool) {
	for {
		if n == nil {
			var zero V
			return zero, false
		}
		switch n.kind {
		case leafKind:
			if n.hash == hash && cfg.Compare.Compare(key, n.key) == 0 {
				return n.val, true
			}
			var zero V
			return zero, false
		case collisionKind:
			if n.hash != hash {
				var zero V
				return zero, false
			}
			return tree.Lookup(treeCompare(cfg), n.coll, key)
		default: // branchKind
			idx, ok := branchIndex(n, chunk(hash, shift))
			if !ok {
				var zero V
				return zero, false
			}
			n = n.children[idx]
			shift += bitsPerSubkey
			continue
		}
	}
}

// Alter is the unified insert/update/delete entry point, fusing insert
// and remove exactly as pcol/tree.Alter does for the ordered tree. f is
// called with the current value (or the zero value) and whether key was
// present; its return controls the outcome exactly as ValueFunc
// documents. Returns the new root (nil if the trie becomes empty) and
// the size delta, which is in {-1, 0, +1}.
func Alter[K, V any](cfg pcol.HashConfig[K], root *node[K, V], key K, f ValueFunc[V]) (*node[K, V], int) {
	return alterAt(cfg, root, key, cfg.Hash(key), 0, f)
}

func alterAt[K, V any](cfg pcol.HashConfig[K], n *node[K, V], key K, hash uint32, shift uint, f ValueFunc[V]) (*node[K, V], int) {
	if n == nil {
		var zero V
		newVal, keep := f(zero, false)
		if !keep {
			return nil, 0
		}
		return newLeaf[K, V](hash, key, newVal), 1
	}

	switch n.kind {
	case leafKind:
		if n.hash == hash {
			if cfg.Compare.Compare(key, n.key) == 0 {
				newVal, keep := f(n.val, true)
				if !keep {
					return nil, -1
				}
				return newLeaf[K, V](hash, key, newVal), 0
			}
			var zero V
			newVal, keep := f(zero, false)
			if !keep {
				return n, 0
			}
			coll := buildCollisionTree(cfg, n.key, n.val, key, newVal)
			return newCollision[K, V](hash, coll), 1
		}
		var zero V
		newVal, keep := f(zero, false)
		if !keep {
			return n, 0
		}
		return two[K, V](shift, newLeaf[K, V](hash, key, newVal), n), 1

	case collisionKind:
		if n.hash == hash {
			newColl := tree.Alter(treeCompare(cfg), n.coll, key, tree.ValueFunc[V](f))
			if newColl == n.coll {
				return n, 0
			}
			oldSize := tree.Size(n.coll)
			newSize := tree.Size(newColl)
			delta := newSize - oldSize
			if newSize == 1 {
				k, v, _ := tree.LookupMin(newColl)
				return newLeaf[K, V](hash, k, v), delta
			}
			return newCollision[K, V](hash, newColl), delta
		}
		var zero V
		newVal, keep := f(zero, false)
		if !keep {
			return n, 0
		}
		return two[K, V](shift, n, newLeaf[K, V](hash, key, newVal)), 1

	default: // branchKind
		c := chunk(hash, shift)
		idx, ok := branchIndex(n, c)
		if ok {
			child := n.children[idx]
			newChild, delta := alterAt(cfg, child, key, hash, shift+bitsPerSubkey, f)
			if newChild == child {
				return n, 0
			}
			if newChild == nil {
				return removeChildFromBranch(n, idx, c), delta
			}
			return replaceChildInBranch(n, idx, newChild), delta
		}
		var zero V
		newVal, keep := f(zero, false)
		if !keep {
			return n, 0
		}
		leaf := newLeaf[K, V](hash, key, newVal)
		if n.bitmap == fullBitmap {
			invariantf("alter: full branch reported missing chunk %d", c)
		}
		return newBranch(n.bitmap|bitFor(c), copyAndInsertChild(n.children, idx, leaf)), 1
	}
}

// replaceChildInBranch returns the node replacing n after its child at
// idx becomes newChild. If n had exactly one child and newChild is
// itself a Leaf or Collision, newChild is returned directly instead of
// wrapping it in a fresh one-child Branch: a recursive call one level
// down may have already collapsed that child from a Branch into a
// Leaf/Collision (removeChildFromBranch firing inside it), and
// propagating that collapse upward is required to keep the no-single-
// non-Branch-child invariant holding at every level of the spine, not
// just the level where the collapse first happened.
func replaceChildInBranch[K, V any](n *node[K, V], idx int, newChild *node[K, V]) *node[K, V] {
	if len(n.children) == 1 && newChild.kind != branchKind {
		return newChild
	}
	return newBranch(n.bitmap, copyAndReplaceChild(n.children, idx, newChild))
}

// removeChildFromBranch implements the three cases of removal from a
// branch: splicing a full branch down to sparse, collapsing a two-child
// branch whose surviving sibling is itself minimal, and the ordinary
// splice-and-clear-bit case.
func removeChildFromBranch[K, V any](n *node[K, V], idx int, c uint32) *node[K, V] {
	newChildren := copyAndRemoveChild(n.children, idx)
	if len(newChildren) == 0 {
		return nil
	}
	if len(newChildren) == 1 && newChildren[0].kind != branchKind {
		return newChildren[0]
	}
	var newBitmap uint32
	if n.bitmap == fullBitmap {
		newBitmap = fullBitmap &^ bitFor(c)
	} else {
		newBitmap = n.bitmap &^ bitFor(c)
	}
	return newBranch(newBitmap, newChildren)
}

// Insert is Alter specialized to always keep an entry, returning whether
// the key was newly added (as opposed to merely updated).
func Insert[K, V any](cfg pcol.HashConfig[K], root *node[K, V], key K, getVal func(existing V, found bool) V) (*node[K, V], bool) {
	newRoot, delta := Alter(cfg, root, key, func(cur V, found bool) (V, bool) {
		return getVal(cur, found), true
	})
	return newRoot, delta == 1
}

// Remove is Alter specialized to always delete, returning whether key
// was present (as opposed to a no-op on an absent key).
func Remove[K, V any](cfg pcol.HashConfig[K], root *node[K, V], key K) (*node[K, V], bool) {
	newRoot, delta := Alter(cfg, root, key, func(_ V, _ bool) (V, bool) {
		var zero V
		return zero, false
	})
	return newRoot, delta == -1
}

// MapValues applies f to every value, preserving trie shape: f's second
// return, same, asserts that the returned value is identical to v; when
// f reports same for every entry, root is returned unchanged by
// reference.
func MapValues[K, V any](root *node[K, V], f func(k K, v V) (w V, same bool)) *node[K, V] {
	if root == nil {
		return nil
	}
	switch root.kind {
	case leafKind:
		w, same := f(root.key, root.val)
		if same {
			return root
		}
		return newLeaf[K, V](root.hash, root.key, w)
	case collisionKind:
		newColl := tree.MapValues(root.coll, f)
		if newColl == root.coll {
			return root
		}
		return newCollision[K, V](root.hash, newColl)
	default:
		changed := false
		newChildren := make([]*node[K, V], len(root.children))
		for i, child := range root.children {
			nc := MapValues(child, f)
			newChildren[i] = nc
			if nc != child {
				changed = true
			}
		}
		if !changed {
			return root
		}
		return newBranch(root.bitmap, newChildren)
	}
}

// CollectValues applies f to every value, dropping entries where f
// reports ok == false and collapsing the trie shape exactly as removal
// does (a branch losing its last child vanishes; a branch reduced to one
// Leaf/Collision child is lifted in its place). The result's value type
// may differ from the input's.
func CollectValues[K, V, W any](root *node[K, V], f func(k K, v V) (w W, ok bool)) *node[K, W] {
	if root == nil {
		return nil
	}
	switch root.kind {
	case leafKind:
		w, ok := f(root.key, root.val)
		if !ok {
			return nil
		}
		return newLeaf[K, W](root.hash, root.key, w)
	case collisionKind:
		newColl := tree.CollectValues(root.coll, f)
		sz := tree.Size(newColl)
		switch sz {
		case 0:
			return nil
		case 1:
			k, v, _ := tree.LookupMin(newColl)
			return newLeaf[K, W](root.hash, k, v)
		default:
			return newCollision[K, W](root.hash, newColl)
		}
	default:
		positions := bitPositions(root.bitmap)
		kept := make([]*node[K, W], 0, len(root.children))
		keptPositions := make([]int, 0, len(positions))
		for i, child := range root.children {
			nc := CollectValues(child, f)
			if nc != nil {
				kept = append(kept, nc)
				keptPositions = append(keptPositions, positions[i])
			}
		}
		return collapseChildren(keptPositions, kept)
	}
}
