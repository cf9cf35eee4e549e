package tree

import "github.com/arborix/pcol"

// ValueFunc is the value-producer callback shared by Alter and
// AlterByIndex. It receives the current value and whether the key (or
// index) was present, and returns the value to store and whether to keep
// an entry at all: keep == false deletes (or, for an absent key, is a
// no-op).
type ValueFunc[V any] func(cur V, found bool) (newVal V, keep bool)

// Merge resolves a collision between two trees that both hold key. It
// receives the two colliding values and must return the value to store,
// plus sameAsThis reporting whether that result is identical to this -
// callers that can cheaply tell (e.g. comparable V, or this == other by
// some caller-defined notion) should set it so Union/Intersection can
// preserve reference identity per the left-biased identity law; callers
// that cannot should always report false, which costs only the identity
// fast path, never correctness.
type Merge[K, V any] func(key K, this, other V) (result V, sameAsThis bool)

// Lookup returns the value stored for key, and whether it was present.
func Lookup[K, V any](cmp pcol.Compare[K], root *Node[K, V], key K) (V, bool) {
	n := root
	for n != nil {
		c := cmp.Compare(key, n.Key)
		switch {
		case c < 0:
			n = n.Left
		case c > 0:
			n = n.Right
		default:
			return n.Val, true
		}
	}
	var zero V
	return zero, false
}

// Alter is the unified insert/update/delete entry point. f is called with
// the current value (or the zero value) and whether key was present; its
// return controls the outcome exactly as ValueFunc documents. If key was
// absent and f reports keep == false, root is returned unchanged by
// reference. If key was present and f reports keep == true, the path to
// key is always rebuilt with the new value, even when that value is the
// one already stored; no value-identity check is made.
func Alter[K, V any](cmp pcol.Compare[K], root *Node[K, V], key K, f ValueFunc[V]) *Node[K, V] {
	if root == nil {
		var zero V
		newVal, keep := f(zero, false)
		if !keep {
			return nil
		}
		return bin(key, newVal, nil, nil)
	}
	c := cmp.Compare(key, root.Key)
	switch {
	case c < 0:
		l2 := Alter(cmp, root.Left, key, f)
		if l2 == root.Left {
			return root
		}
		return combineAfterInsertOrRemove(root.Key, root.Val, l2, root.Right)
	case c > 0:
		r2 := Alter(cmp, root.Right, key, f)
		if r2 == root.Right {
			return root
		}
		return combineAfterInsertOrRemove(root.Key, root.Val, root.Left, r2)
	default:
		newVal, keep := f(root.Val, true)
		if !keep {
			return glueSizeBalanced(root.Left, root.Right)
		}
		return &Node[K, V]{Key: root.Key, Val: newVal, Size: root.Size, Left: root.Left, Right: root.Right}
	}
}

// Split partitions root into (below, matchVal, matchOK, above): every key
// below key, the value stored at key if any, and every key above key.
// Both returned subtrees are individually balanced. O(log n).
func Split[K, V any](cmp pcol.Compare[K], root *Node[K, V], key K) (below *Node[K, V], matchVal V, matchOK bool, above *Node[K, V]) {
	if root == nil {
		var zero V
		return nil, zero, false, nil
	}
	c := cmp.Compare(key, root.Key)
	switch {
	case c < 0:
		l, v, ok, r := Split(cmp, root.Left, key)
		return l, v, ok, combineDifferentSizes(root.Key, root.Val, r, root.Right)
	case c > 0:
		l, v, ok, r := Split(cmp, root.Right, key)
		return combineDifferentSizes(root.Key, root.Val, root.Left, l), v, ok, r
	default:
		return root.Left, root.Val, true, root.Right
	}
}

// Union merges a and b, calling merge(key, this, other) whenever both hold
// key, with a as "this" - the operation is left-biased, per the design
// note on identity preservation: if the merged result equals a structurally
// throughout, a itself is returned.
func Union[K, V any](cmp pcol.Compare[K], merge Merge[K, V], a, b *Node[K, V]) *Node[K, V] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if size(b) == 1 {
		unchanged := false
		res := Alter(cmp, a, b.Key, func(cur V, found bool) (V, bool) {
			if !found {
				return b.Val, true
			}
			result, same := merge(b.Key, cur, b.Val)
			unchanged = same
			return result, true
		})
		if unchanged {
			return a
		}
		return res
	}
	if size(a) == 1 {
		return Alter(cmp, b, a.Key, func(cur V, found bool) (V, bool) {
			if !found {
				return a.Val, true
			}
			result, _ := merge(a.Key, a.Val, cur)
			return result, true
		})
	}
	l, v, ok, r := Split(cmp, b, a.Key)
	leftU := Union(cmp, merge, a.Left, l)
	rightU := Union(cmp, merge, a.Right, r)
	if !ok {
		if leftU == a.Left && rightU == a.Right {
			return a
		}
		return combineDifferentSizes(a.Key, a.Val, leftU, rightU)
	}
	result, same := merge(a.Key, a.Val, v)
	if same && leftU == a.Left && rightU == a.Right {
		return a
	}
	return combineDifferentSizes(a.Key, result, leftU, rightU)
}

// Intersection keeps only keys present in both a and b, calling
// merge(key, this, other) with a as "this". Left-biased, per Union.
func Intersection[K, V any](cmp pcol.Compare[K], merge Merge[K, V], a, b *Node[K, V]) *Node[K, V] {
	if a == nil || b == nil {
		return nil
	}
	l, v, ok, r := Split(cmp, b, a.Key)
	leftI := Intersection(cmp, merge, a.Left, l)
	rightI := Intersection(cmp, merge, a.Right, r)
	if !ok {
		return glueDifferentSizes(leftI, rightI)
	}
	result, same := merge(a.Key, a.Val, v)
	if same && leftI == a.Left && rightI == a.Right {
		return a
	}
	return combineDifferentSizes(a.Key, result, leftI, rightI)
}

// Difference returns the entries of a whose key is absent from b. b's
// values are irrelevant and may have a different type than a's.
func Difference[K, V, V2 any](cmp pcol.Compare[K], a *Node[K, V], b *Node[K, V2]) *Node[K, V] {
	if a == nil {
		return nil
	}
	if b == nil {
		return a
	}
	l, _, ok, r := Split(cmp, b, a.Key)
	leftD := Difference(cmp, a.Left, l)
	rightD := Difference(cmp, a.Right, r)
	if ok {
		return glueDifferentSizes(leftD, rightD)
	}
	if leftD == a.Left && rightD == a.Right {
		return a
	}
	return combineDifferentSizes(a.Key, a.Val, leftD, rightD)
}

// SymmetricDifference returns the entries whose key is present in exactly
// one of a, b, keeping that tree's value. Equal by content regardless of
// argument order (SymmetricDifference(a,b) == SymmetricDifference(b,a)),
// though not necessarily reference-equal to either argument.
func SymmetricDifference[K, V any](cmp pcol.Compare[K], a, b *Node[K, V]) *Node[K, V] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	l, _, ok, r := Split(cmp, b, a.Key)
	leftS := SymmetricDifference(cmp, a.Left, l)
	rightS := SymmetricDifference(cmp, a.Right, r)
	if ok {
		return glueDifferentSizes(leftS, rightS)
	}
	if leftS == a.Left && rightS == a.Right {
		return a
	}
	return combineDifferentSizes(a.Key, a.Val, leftS, rightS)
}

// AdjustFunc is called once per key present in the adjustment plan passed
// to Adjust: cur/curOK is the current value in the base tree (or the zero
// value and false, if key is absent there), plan is the adjustment plan's
// value for key. Its return controls the outcome exactly as ValueFunc
// documents.
type AdjustFunc[K, V any] func(key K, cur V, curOK bool, plan V) (result V, keep bool)

// Adjust applies f once for every key in plan against base, inserting,
// updating or removing that key in base according to f's return. Keys
// present only in base are left untouched.
func Adjust[K, V any](cmp pcol.Compare[K], f AdjustFunc[K, V], base, plan *Node[K, V]) *Node[K, V] {
	if plan == nil {
		return base
	}
	l, curVal, curOK, r := Split(cmp, base, plan.Key)
	leftA := Adjust(cmp, f, l, plan.Left)
	rightA := Adjust(cmp, f, r, plan.Right)
	result, keep := f(plan.Key, curVal, curOK, plan.Val)
	if !keep {
		return glueDifferentSizes(leftA, rightA)
	}
	return combineDifferentSizes(plan.Key, result, leftA, rightA)
}

// MapValues applies f to every value in order. f's second return, same,
// asserts that the returned value is identical to v; when f reports same
// for every entry, root is returned unchanged by reference.
func MapValues[K, V any](root *Node[K, V], f func(k K, v V) (w V, same bool)) *Node[K, V] {
	if root == nil {
		return nil
	}
	l := MapValues(root.Left, f)
	r := MapValues(root.Right, f)
	w, same := f(root.Key, root.Val)
	if same && l == root.Left && r == root.Right {
		return root
	}
	return bin(root.Key, w, l, r)
}

// CollectValues applies f to every value in order, in a post-order walk
// that drops entries where f reports ok == false and re-glues the
// remaining subtrees. The result's value type may differ from the input's.
func CollectValues[K, V, W any](root *Node[K, V], f func(k K, v V) (w W, ok bool)) *Node[K, W] {
	if root == nil {
		return nil
	}
	l := CollectValues(root.Left, f)
	r := CollectValues(root.Right, f)
	w, ok := f(root.Key, root.Val)
	if !ok {
		return glueDifferentSizes(l, r)
	}
	return combineDifferentSizes(root.Key, w, l, r)
}

// Partition splits root into two balanced trees: entries for which pred
// returns true, and all the rest.
func Partition[K, V any](root *Node[K, V], pred func(k K, v V) bool) (trueTree, falseTree *Node[K, V]) {
	if root == nil {
		return nil, nil
	}
	lt, lf := Partition(root.Left, pred)
	rt, rf := Partition(root.Right, pred)
	if pred(root.Key, root.Val) {
		return combineDifferentSizes(root.Key, root.Val, lt, rt), glueDifferentSizes(lf, rf)
	}
	return glueDifferentSizes(lt, rt), combineDifferentSizes(root.Key, root.Val, lf, rf)
}

// LookupMin returns the entry with the smallest key, and whether root is
// non-empty.
func LookupMin[K, V any](root *Node[K, V]) (K, V, bool) {
	n := root
	if n == nil {
		var zk K
		var zv V
		return zk, zv, false
	}
	for n.Left != nil {
		n = n.Left
	}
	return n.Key, n.Val, true
}

// LookupMax returns the entry with the largest key, and whether root is
// non-empty.
func LookupMax[K, V any](root *Node[K, V]) (K, V, bool) {
	n := root
	if n == nil {
		var zk K
		var zv V
		return zk, zv, false
	}
	for n.Right != nil {
		n = n.Right
	}
	return n.Key, n.Val, true
}

// MinView removes and returns the smallest entry, along with the tree
// that remains. ok is false iff root was empty.
func MinView[K, V any](root *Node[K, V]) (k K, v V, rest *Node[K, V], ok bool) {
	if root == nil {
		var zk K
		var zv V
		return zk, zv, nil, false
	}
	k, v, rest = deleteFindMin(root)
	return k, v, rest, true
}

// MaxView removes and returns the largest entry, along with the tree that
// remains. ok is false iff root was empty.
func MaxView[K, V any](root *Node[K, V]) (k K, v V, rest *Node[K, V], ok bool) {
	if root == nil {
		var zk K
		var zv V
		return zk, zv, nil, false
	}
	k, v, rest = deleteFindMax(root)
	return k, v, rest, true
}

// IndexOf returns the rank of key (0 for the smallest key present), and
// whether key was found.
func IndexOf[K, V any](cmp pcol.Compare[K], root *Node[K, V], key K) (int, bool) {
	n := root
	idx := 0
	for n != nil {
		c := cmp.Compare(key, n.Key)
		switch {
		case c < 0:
			n = n.Left
		case c > 0:
			idx += size(n.Left) + 1
			n = n.Right
		default:
			return idx + size(n.Left), true
		}
	}
	return 0, false
}

// LookupByIndex returns the entry at rank idx (0-based), and whether idx
// was in range.
func LookupByIndex[K, V any](root *Node[K, V], idx int) (K, V, bool) {
	n := root
	for n != nil {
		ls := size(n.Left)
		switch {
		case idx < ls:
			n = n.Left
		case idx > ls:
			idx -= ls + 1
			n = n.Right
		default:
			return n.Key, n.Val, true
		}
	}
	var zk K
	var zv V
	return zk, zv, false
}

// Take returns the n smallest entries as a balanced tree (all of root if
// n >= Size(root), empty if n <= 0).
func Take[K, V any](root *Node[K, V], n int) *Node[K, V] {
	if root == nil || n <= 0 {
		return nil
	}
	if n >= root.Size {
		return root
	}
	ls := size(root.Left)
	switch {
	case n <= ls:
		return Take(root.Left, n)
	case n == ls+1:
		return combineDifferentSizes(root.Key, root.Val, root.Left, nil)
	default:
		takenRight := Take(root.Right, n-ls-1)
		return combineDifferentSizes(root.Key, root.Val, root.Left, takenRight)
	}
}

// Drop returns root with its n smallest entries removed, as a balanced
// tree (empty if n >= Size(root), all of root if n <= 0).
func Drop[K, V any](root *Node[K, V], n int) *Node[K, V] {
	if root == nil || n <= 0 {
		return root
	}
	if n >= root.Size {
		return nil
	}
	ls := size(root.Left)
	switch {
	case n < ls:
		droppedLeft := Drop(root.Left, n)
		return combineDifferentSizes(root.Key, root.Val, droppedLeft, root.Right)
	case n == ls:
		return combineDifferentSizes(root.Key, root.Val, nil, root.Right)
	default:
		return Drop(root.Right, n-ls-1)
	}
}

// AlterByIndex applies f to the entry at rank idx, exactly as Alter
// applies f to the entry at a key; out-of-range idx is a no-op.
func AlterByIndex[K, V any](root *Node[K, V], idx int, f ValueFunc[V]) *Node[K, V] {
	if root == nil || idx < 0 || idx >= root.Size {
		return root
	}
	ls := size(root.Left)
	switch {
	case idx < ls:
		l2 := AlterByIndex(root.Left, idx, f)
		if l2 == root.Left {
			return root
		}
		return combineAfterInsertOrRemove(root.Key, root.Val, l2, root.Right)
	case idx > ls:
		r2 := AlterByIndex(root.Right, idx-ls-1, f)
		if r2 == root.Right {
			return root
		}
		return combineAfterInsertOrRemove(root.Key, root.Val, root.Left, r2)
	default:
		newVal, keep := f(root.Val, true)
		if !keep {
			return glueSizeBalanced(root.Left, root.Right)
		}
		return &Node[K, V]{Key: root.Key, Val: newVal, Size: root.Size, Left: root.Left, Right: root.Right}
	}
}

// IsKeySubset reports whether every key of small is present in big.
// O(m*log(n/m+1)) where m = Size(small), n = Size(big).
func IsKeySubset[K, V1, V2 any](cmp pcol.Compare[K], small *Node[K, V1], big *Node[K, V2]) bool {
	if small == nil {
		return true
	}
	if big == nil {
		return false
	}
	l, _, ok, r := Split(cmp, big, small.Key)
	if !ok {
		return false
	}
	return IsKeySubset(cmp, small.Left, l) && IsKeySubset(cmp, small.Right, r)
}

// IsDisjoint reports whether a and b share no keys.
func IsDisjoint[K, V1, V2 any](cmp pcol.Compare[K], a *Node[K, V1], b *Node[K, V2]) bool {
	if a == nil || b == nil {
		return true
	}
	l, _, ok, r := Split(cmp, b, a.Key)
	if ok {
		return false
	}
	return IsDisjoint(cmp, a.Left, l) && IsDisjoint(cmp, a.Right, r)
}
