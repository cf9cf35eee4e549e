package tree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborix/pcol"
	"github.com/arborix/pcol/tree"
)

// randomTree builds a tree from n random keys drawn from [0, space), using
// Alter so the reference implementation under test is exercised directly
// rather than via the bulk builder.
func randomTree(cmp pcol.Compare[int], rng *rand.Rand, n, space int) *tree.Node[int, int] {
	var root *tree.Node[int, int]
	for i := 0; i < n; i++ {
		k := rng.Intn(space)
		root = tree.Alter(cmp, root, k, func(_ int, _ bool) (int, bool) { return k, true })
	}
	return root
}

func TestPropertyRandomSequencesStayBalanced(t *testing.T) {
	cmp := pcol.NewCompare(intCmp)
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		root := randomTree(cmp, rng, 200, 80)
		checkInvariants[int, int](t, intCmp, root)

		// deleting the smallest key and reinserting it with the same value
		// keeps the invariants and restores the original size.
		if tree.Size(root) == 0 {
			continue
		}
		k, v, _ := tree.LookupMin(root)
		removed := tree.Alter(cmp, root, k, func(_ int, _ bool) (int, bool) { return 0, false })
		reinserted := tree.Alter(cmp, removed, k, func(_ int, _ bool) (int, bool) { return v, true })
		checkInvariants[int, int](t, intCmp, reinserted)
		require.Equal(t, tree.Size(root), tree.Size(reinserted))
	}
}

func TestPropertyUnionIntersectionDifferencePartitionKeyspace(t *testing.T) {
	cmp := pcol.NewCompare(intCmp)
	rng := rand.New(rand.NewSource(7))
	merge := func(_ int, this, _ int) (int, bool) { return this, true }

	for trial := 0; trial < 30; trial++ {
		a := randomTree(cmp, rng, 100, 60)
		b := randomTree(cmp, rng, 100, 60)

		u := tree.Union(cmp, merge, a, b)
		i := tree.Intersection(cmp, merge, a, b)
		d := tree.Difference(cmp, a, b)
		sd := tree.SymmetricDifference(cmp, a, b)

		checkInvariants[int, int](t, intCmp, u)
		checkInvariants[int, int](t, intCmp, i)
		checkInvariants[int, int](t, intCmp, d)
		checkInvariants[int, int](t, intCmp, sd)

		// |union| = |a| + |b| - |intersection|
		require.Equal(t, tree.Size(a)+tree.Size(b)-tree.Size(i), tree.Size(u))
		// |difference| + |intersection| = |a|
		require.Equal(t, tree.Size(a), tree.Size(d)+tree.Size(i))
		// symmetricDifference(a,b) = difference(a,b) union difference(b,a), disjoint
		dba := tree.Difference(cmp, b, a)
		require.Equal(t, tree.Size(d)+tree.Size(dba), tree.Size(sd))

		// every key of a is in union, and every key of intersection is in both
		tree.Iterate(a, func(k, _ int) bool {
			_, ok := tree.Lookup(cmp, u, k)
			require.True(t, ok)
			return true
		})
		tree.Iterate(i, func(k, _ int) bool {
			_, okA := tree.Lookup(cmp, a, k)
			_, okB := tree.Lookup(cmp, b, k)
			require.True(t, okA)
			require.True(t, okB)
			return true
		})
	}
}

func TestPropertyIndexRoundTrip(t *testing.T) {
	cmp := pcol.NewCompare(intCmp)
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 30; trial++ {
		root := randomTree(cmp, rng, 150, 120)
		tree.Iterate(root, func(k, v int) bool {
			idx, ok := tree.IndexOf(cmp, root, k)
			require.True(t, ok)
			gotK, gotV, ok := tree.LookupByIndex(root, idx)
			require.True(t, ok)
			require.Equal(t, k, gotK)
			require.Equal(t, v, gotV)
			return true
		})
	}
}

func TestPropertyTakeDropComplementary(t *testing.T) {
	cmp := pcol.NewCompare(intCmp)
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 30; trial++ {
		root := randomTree(cmp, rng, 100, 100)
		n := tree.Size(root)
		cut := rng.Intn(n + 1)

		taken := tree.Take(root, cut)
		dropped := tree.Drop(root, cut)
		checkInvariants[int, int](t, intCmp, taken)
		checkInvariants[int, int](t, intCmp, dropped)
		require.Equal(t, cut, tree.Size(taken))
		require.Equal(t, n-cut, tree.Size(dropped))

		merge := func(_ int, this, _ int) (int, bool) { return this, true }
		rejoined := tree.Union(cmp, merge, taken, dropped)
		require.Equal(t, n, tree.Size(rejoined))
	}
}

func TestPropertyMapValuesPreservesKeysAndSize(t *testing.T) {
	cmp := pcol.NewCompare(intCmp)
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 30; trial++ {
		root := randomTree(cmp, rng, 100, 70)
		mapped := tree.MapValues(root, func(_, v int) (int, bool) { return v * 2, false })
		checkInvariants[int, int](t, intCmp, mapped)
		require.Equal(t, tree.Size(root), tree.Size(mapped))
		require.Equal(t, keysOf(root), keysOf(mapped))
	}
}
