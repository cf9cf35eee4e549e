package hamt

import (
	"github.com/arborix/pcol"
	"github.com/arborix/pcol/tree"
)

// Merge resolves a collision between two tries that both hold key,
// mirroring pcol/tree.Merge: it receives the two colliding values and
// must return the value to store, plus sameAsThis reporting whether that
// result is identical to this. Union and Intersection are left-biased
// with a as "this".
type Merge[K, V any] func(key K, this, other V) (result V, sameAsThis bool)

// AdjustFunc is called once per key present in the adjustment plan
// passed to Adjust, exactly as pcol/tree.AdjustFunc is for the ordered
// tree.
type AdjustFunc[K, V any] func(key K, cur V, curOK bool, plan V) (result V, keep bool)

// asCollisionTree returns n's entries as an ordered tree: n.coll
// directly for a Collision, or a freshly built single-entry tree for a
// Leaf. Used throughout this file to delegate same-hash merges to
// pcol/tree's already-correct set algebra instead of duplicating it.
func asCollisionTree[K, V any](cfg pcol.Compare[K], n *node[K, V]) *tree.Node[K, V] {
	if n.kind == leafKind {
		return tree.Alter(cfg, nil, n.key, func(_ V, _ bool) (V, bool) { return n.val, true })
	}
	return n.coll
}

// countEntries counts every entry reachable from n, for the rare cases
// (a pointer-identical self-merge) where no recursion threads a running
// count past this subtree.
func countEntries[K, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	switch n.kind {
	case leafKind:
		return 1
	case collisionKind:
		return tree.Size(n.coll)
	default:
		total := 0
		for _, c := range n.children {
			total += countEntries(c)
		}
		return total
	}
}

// Union merges a and b, calling merge(key, this, other) whenever both
// hold key, with a as "this". Returns the new root and the number of
// keys present in both (the "intersection size"), from which a wrapper
// derives its new size as sizeA + sizeB - intersectionSize.
func Union[K, V any](cfg pcol.Compare[K], merge Merge[K, V], a, b *node[K, V]) (*node[K, V], int) {
	return unionAt(cfg, merge, a, b, 0)
}

func unionAt[K, V any](cfg pcol.Compare[K], merge Merge[K, V], a, b *node[K, V], shift uint) (*node[K, V], int) {
	if a == nil {
		return b, 0
	}
	if b == nil {
		return a, 0
	}
	if a == b {
		return a, countEntries(a)
	}
	switch {
	case a.kind == branchKind && b.kind == branchKind:
		var slots [maxChildren]*node[K, V]
		count := 0
		sameAsA := true
		for i := 0; i < maxChildren; i++ {
			childA := childAtPosition(a, i)
			childB := childAtPosition(b, i)
			var newChild *node[K, V]
			var c int
			switch {
			case childA == nil:
				newChild = childB
			case childB == nil:
				newChild = childA
			default:
				newChild, c = unionAt(cfg, merge, childA, childB, shift+bitsPerSubkey)
			}
			count += c
			slots[i] = newChild
			if newChild != childA {
				sameAsA = false
			}
		}
		if sameAsA {
			return a, count
		}
		return buildBranchFromSlots(slots), count

	case a.kind == branchKind:
		return unionHashedIntoBranch(cfg, merge, a, b, shift, false)
	case b.kind == branchKind:
		return unionHashedIntoBranch(cfg, merge, b, a, shift, true)

	default:
		if a.hash != b.hash {
			return two[K, V](shift, a, b), 0
		}
		return unionHashedPair(cfg, merge, a, b)
	}
}

// unionHashedPair merges a and b, which share a hash. Leaf-vs-Leaf is
// handled directly, without building single-entry trees for
// pcol/tree.Union: a same-key pair calls merge once and keeps a when
// merge reports sameAsThis, which covers the common case of two tries
// built from mostly non-colliding keys. Any pair involving a Collision
// delegates to pcol/tree.Union, which returns its left operand by
// reference when every merge reports sameAsThis.
func unionHashedPair[K, V any](cfg pcol.Compare[K], merge Merge[K, V], a, b *node[K, V]) (*node[K, V], int) {
	if a.kind == leafKind && b.kind == leafKind {
		if cfg.Compare(a.key, b.key) == 0 {
			result, same := merge(a.key, a.val, b.val)
			if same {
				return a, 1
			}
			return newLeaf[K, V](a.hash, a.key, result), 1
		}
		coll := buildPairTree(cfg, a.key, a.val, b.key, b.val)
		return newCollision[K, V](a.hash, coll), 0
	}
	ta := asCollisionTree(cfg, a)
	tb := asCollisionTree(cfg, b)
	merged := tree.Union(cfg, tree.Merge[K, V](merge), ta, tb)
	intersectionCount := tree.Size(ta) + tree.Size(tb) - tree.Size(merged)
	if merged == ta {
		return a, intersectionCount
	}
	switch tree.Size(merged) {
	case 1:
		k, v, _ := tree.LookupMin(merged)
		return newLeaf[K, V](a.hash, k, v), intersectionCount
	default:
		return newCollision[K, V](a.hash, merged), intersectionCount
	}
}

// buildPairTree creates a two-entry ordered tree holding two distinct
// keys, the ordered backing store for a freshly synthesized Collision.
func buildPairTree[K, V any](cmp pcol.Compare[K], keyA K, valA V, keyB K, valB V) *tree.Node[K, V] {
	var t *tree.Node[K, V]
	t = tree.Alter(cmp, t, keyA, func(_ V, _ bool) (V, bool) { return valA, true })
	t = tree.Alter(cmp, t, keyB, func(_ V, _ bool) (V, bool) { return valB, true })
	return t
}

// unionHashedIntoBranch merges other (a Leaf or Collision) into branch,
// at whichever position other's hash chunk lands on. otherIsLeftOperand
// tells the recursive unionAt call which of {other, existing child}
// should be passed as "this" to merge, so the left-biased identity
// contract holds regardless of which side of Union's original call
// carried the branch.
func unionHashedIntoBranch[K, V any](cfg pcol.Compare[K], merge Merge[K, V], branch, other *node[K, V], shift uint, otherIsLeftOperand bool) (*node[K, V], int) {
	c := chunk(other.hash, shift)
	idx, ok := branchIndex(branch, c)
	if !ok {
		newBitmap := branch.bitmap | bitFor(c)
		return newBranch(newBitmap, copyAndInsertChild(branch.children, idx, other)), 0
	}
	child := branch.children[idx]
	var newChild *node[K, V]
	var count int
	if otherIsLeftOperand {
		newChild, count = unionAt(cfg, merge, other, child, shift+bitsPerSubkey)
	} else {
		newChild, count = unionAt(cfg, merge, child, other, shift+bitsPerSubkey)
	}
	if newChild == child {
		return branch, count
	}
	return newBranch(branch.bitmap, copyAndReplaceChild(branch.children, idx, newChild)), count
}

// Intersection keeps only keys present in both a and b, calling
// merge(key, this, other) with a as "this". Returns the new root and its
// size directly (intersection size is the result's size).
func Intersection[K, V any](cfg pcol.Compare[K], merge Merge[K, V], a, b *node[K, V]) (*node[K, V], int) {
	return intersectionAt(cfg, merge, a, b, 0)
}

func intersectionAt[K, V any](cfg pcol.Compare[K], merge Merge[K, V], a, b *node[K, V], shift uint) (*node[K, V], int) {
	if a == nil || b == nil {
		return nil, 0
	}
	if a == b {
		n := countEntries(a)
		return a, n
	}
	switch {
	case a.kind == branchKind && b.kind == branchKind:
		var slots [maxChildren]*node[K, V]
		count := 0
		sameAsA := true
		for i := 0; i < maxChildren; i++ {
			childA := childAtPosition(a, i)
			childB := childAtPosition(b, i)
			var newChild *node[K, V]
			var c int
			if childA != nil && childB != nil {
				newChild, c = intersectionAt(cfg, merge, childA, childB, shift+bitsPerSubkey)
			}
			count += c
			slots[i] = newChild
			if newChild != childA {
				sameAsA = false
			}
		}
		if sameAsA {
			return a, count
		}
		return buildBranchFromSlots(slots), count

	case a.kind == branchKind:
		return intersectionBranchWithOther(cfg, merge, a, b, shift, false)
	case b.kind == branchKind:
		return intersectionBranchWithOther(cfg, merge, b, a, shift, true)

	default:
		if a.hash != b.hash {
			return nil, 0
		}
		ta := asCollisionTree(cfg, a)
		tb := asCollisionTree(cfg, b)
		merged := tree.Intersection(cfg, tree.Merge[K, V](merge), ta, tb)
		if merged == ta {
			return a, tree.Size(ta)
		}
		switch tree.Size(merged) {
		case 0:
			return nil, 0
		case 1:
			k, v, _ := tree.LookupMin(merged)
			return newLeaf[K, V](a.hash, k, v), 1
		default:
			return newCollision[K, V](a.hash, merged), tree.Size(merged)
		}
	}
}

func intersectionBranchWithOther[K, V any](cfg pcol.Compare[K], merge Merge[K, V], branch, other *node[K, V], shift uint, otherIsLeftOperand bool) (*node[K, V], int) {
	c := chunk(other.hash, shift)
	idx, ok := branchIndex(branch, c)
	if !ok {
		return nil, 0
	}
	child := branch.children[idx]
	if otherIsLeftOperand {
		return intersectionAt(cfg, merge, other, child, shift+bitsPerSubkey)
	}
	return intersectionAt(cfg, merge, child, other, shift+bitsPerSubkey)
}

// Difference returns the entries of a whose key is absent from b. b's
// values are irrelevant and may have a different type than a's. Returns
// the new root and the number of entries removed from a.
func Difference[K, V, V2 any](cfg pcol.Compare[K], a *node[K, V], b *node[K, V2]) (*node[K, V], int) {
	return differenceAt(cfg, a, b, 0)
}

func differenceAt[K, V, V2 any](cfg pcol.Compare[K], a *node[K, V], b *node[K, V2], shift uint) (*node[K, V], int) {
	if a == nil {
		return nil, 0
	}
	if b == nil {
		return a, 0
	}
	switch {
	case a.kind == branchKind && b.kind == branchKind:
		var slots [maxChildren]*node[K, V]
		removed := 0
		sameAsA := true
		for i := 0; i < maxChildren; i++ {
			childA := childAtPosition(a, i)
			if childA == nil {
				continue
			}
			childB := childAtPosition(b, i)
			newChild, r := differenceAt(cfg, childA, childB, shift+bitsPerSubkey)
			removed += r
			slots[i] = newChild
			if newChild != childA {
				sameAsA = false
			}
		}
		if sameAsA {
			return a, removed
		}
		return buildBranchFromSlots(slots), removed

	case a.kind == branchKind:
		// b is a Leaf or Collision: it can only remove entries at its own
		// hash chunk within a.
		c := chunk(b.hash, shift)
		idx, ok := branchIndex(a, c)
		if !ok {
			return a, 0
		}
		child := a.children[idx]
		newChild, removed := differenceAt(cfg, child, b, shift+bitsPerSubkey)
		if newChild == child {
			return a, 0
		}
		if newChild == nil {
			return removeChildFromBranch(a, idx, c), removed
		}
		return replaceChildInBranch(a, idx, newChild), removed

	case b.kind == branchKind:
		// a is a Leaf or Collision: only the position matching a's own
		// hash chunk inside b can possibly overlap.
		c := chunk(a.hash, shift)
		idx, ok := branchIndex(b, c)
		if !ok {
			return a, 0
		}
		return differenceAt(cfg, a, b.children[idx], shift+bitsPerSubkey)

	default:
		if a.hash != b.hash {
			return a, 0
		}
		ta := asCollisionTree(cfg, a)
		tb := asCollisionTree(cfg, b)
		result := tree.Difference(cfg, ta, tb)
		if result == ta {
			return a, 0
		}
		removed := tree.Size(ta) - tree.Size(result)
		switch tree.Size(result) {
		case 0:
			return nil, removed
		case 1:
			k, v, _ := tree.LookupMin(result)
			return newLeaf[K, V](a.hash, k, v), removed
		default:
			return newCollision[K, V](a.hash, result), removed
		}
	}
}

// Adjust applies f once for every key in plan against base, inserting,
// updating or removing that key in base according to f's return. Keys
// present only in base are left untouched. Returns the new root and
// numRemoved, which may be negative when the net effect is growth (per
// the sign convention: newSize = sizeBase - numRemoved).
func Adjust[K, V any](cfg pcol.Compare[K], f AdjustFunc[K, V], base, plan *node[K, V]) (*node[K, V], int) {
	return adjustAt(cfg, f, base, plan, 0)
}

func adjustAt[K, V any](cfg pcol.Compare[K], f AdjustFunc[K, V], base, plan *node[K, V], shift uint) (*node[K, V], int) {
	if plan == nil {
		return base, 0
	}
	switch {
	case plan.kind == branchKind && (base == nil || base.kind == branchKind):
		var slots [maxChildren]*node[K, V]
		sameAsBase := base != nil
		if base != nil {
			for i := 0; i < maxChildren; i++ {
				slots[i] = childAtPosition(base, i)
			}
		}
		delta := 0
		for i := 0; i < maxChildren; i++ {
			childPlan := childAtPosition(plan, i)
			if childPlan == nil {
				continue
			}
			old := slots[i]
			newChild, d := adjustAt(cfg, f, old, childPlan, shift+bitsPerSubkey)
			delta += d
			slots[i] = newChild
			if newChild != old {
				sameAsBase = false
			}
		}
		if sameAsBase {
			return base, delta
		}
		return buildBranchFromSlots(slots), delta

	case plan.kind == branchKind:
		// base is a non-nil Leaf/Collision, plan is a Branch: base occupies
		// exactly one position under plan; every other position inserts
		// fresh against an absent base.
		var slots [maxChildren]*node[K, V]
		c := chunk(base.hash, shift)
		slots[c] = base
		sameAsBase := true
		delta := 0
		for i := 0; i < maxChildren; i++ {
			childPlan := childAtPosition(plan, i)
			if childPlan == nil {
				continue
			}
			old := slots[i]
			newChild, d := adjustAt(cfg, f, old, childPlan, shift+bitsPerSubkey)
			delta += d
			slots[i] = newChild
			if newChild != old {
				sameAsBase = false
			}
		}
		if sameAsBase {
			return base, delta
		}
		return buildBranchFromSlots(slots), delta

	case base != nil && base.kind == branchKind:
		// plan is a Leaf/Collision, base is a Branch: descend to plan's
		// position in base; every other position in base is untouched.
		c := chunk(plan.hash, shift)
		childBase := childAtPosition(base, int(c))
		newChild, delta := adjustAt(cfg, f, childBase, plan, shift+bitsPerSubkey)
		if newChild == childBase {
			return base, delta
		}
		idx, ok := branchIndex(base, c)
		switch {
		case newChild == nil:
			return removeChildFromBranch(base, idx, c), delta
		case ok:
			return replaceChildInBranch(base, idx, newChild), delta
		default:
			return newBranch(base.bitmap|bitFor(c), copyAndInsertChild(base.children, idx, newChild)), delta
		}

	default:
		return adjustHashedPair(cfg, f, base, plan, shift)
	}
}

// adjustHashedPair handles the case where plan (and base, if non-nil)
// are both Leaf/Collision-shaped: either they share a hash, in which
// case every key of plan is run through f against base's matching entry
// via pcol/tree.Adjust, or they don't, in which case base passes through
// untouched and plan's surviving entries (after running f with curOK
// always false) become a fresh sibling synthesized with two.
func adjustHashedPair[K, V any](cfg pcol.Compare[K], f AdjustFunc[K, V], base, plan *node[K, V], shift uint) (*node[K, V], int) {
	if base != nil && base.hash != plan.hash {
		inserted, added := collectPlanInserts(cfg, f, plan)
		if inserted == nil {
			return base, 0
		}
		return two[K, V](shift, base, inserted), -added
	}
	planTree := asCollisionTree(cfg, plan)
	var baseTree *tree.Node[K, V]
	if base != nil {
		baseTree = asCollisionTree(cfg, base)
	}
	resultTree := tree.Adjust(cfg, tree.AdjustFunc[K, V](f), baseTree, planTree)
	numRemoved := tree.Size(baseTree) - tree.Size(resultTree)
	switch tree.Size(resultTree) {
	case 0:
		return nil, numRemoved
	case 1:
		k, v, _ := tree.LookupMin(resultTree)
		return newLeaf[K, V](plan.hash, k, v), numRemoved
	default:
		return newCollision[K, V](plan.hash, resultTree), numRemoved
	}
}

// collectPlanInserts runs f over every entry of plan against an absent
// base (curOK always false), used when plan's hash bucket does not
// overlap base's at all.
func collectPlanInserts[K, V any](cfg pcol.Compare[K], f AdjustFunc[K, V], plan *node[K, V]) (*node[K, V], int) {
	planTree := asCollisionTree(cfg, plan)
	resultTree := tree.CollectValues(planTree, func(k K, v V) (V, bool) {
		var zero V
		return f(k, zero, false, v)
	})
	switch sz := tree.Size(resultTree); sz {
	case 0:
		return nil, 0
	case 1:
		k, v, _ := tree.LookupMin(resultTree)
		return newLeaf[K, V](plan.hash, k, v), sz
	default:
		return newCollision[K, V](plan.hash, resultTree), sz
	}
}
