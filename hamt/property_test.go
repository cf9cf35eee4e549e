package hamt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborix/pcol"
)

// randomTrie builds a trie from n random keys drawn from [0, space) via
// Insert, so the reference implementation under test is exercised
// directly rather than via the bulk builder.
func randomTrie(cfg pcol.HashConfig[int], rng *rand.Rand, n, space int) *node[int, int] {
	var root *node[int, int]
	for i := 0; i < n; i++ {
		k := rng.Intn(space)
		root, _ = Insert(cfg, root, k, func(_ int, _ bool) int { return k })
	}
	return root
}

func TestPropertyRandomSequencesStayConsistent(t *testing.T) {
	cfg := intConfig()
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		root := randomTrie(cfg, rng, 200, 80)
		checkInvariants(t, root)

		if countEntries(root) == 0 {
			continue
		}
		k, v, ok := firstEntry(root)
		require.True(t, ok)
		removed, wasRemoved := Remove(cfg, root, k)
		require.True(t, wasRemoved)
		reinserted, inserted := Insert(cfg, removed, k, func(_ int, _ bool) int { return v })
		require.True(t, inserted)
		checkInvariants(t, reinserted)
		require.Equal(t, countEntries(root), countEntries(reinserted))
	}
}

func TestPropertyNarrowConfigStaysConsistent(t *testing.T) {
	cfg := narrowConfig()
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 50; trial++ {
		root := randomTrie(cfg, rng, 150, 100)
		checkInvariants(t, root)
	}
}

func TestPropertyUnionIntersectionDifferencePartitionKeyspace(t *testing.T) {
	cfg := intConfig()
	rng := rand.New(rand.NewSource(7))
	merge := func(_ int, this, _ int) (int, bool) { return this, true }

	for trial := 0; trial < 30; trial++ {
		a := randomTrie(cfg, rng, 100, 60)
		b := randomTrie(cfg, rng, 100, 60)

		u, _ := Union(cfg.Compare, merge, a, b)
		i, interSize := Intersection(cfg.Compare, merge, a, b)
		d, removed := Difference[int, int, int](cfg.Compare, a, b)

		checkInvariants(t, u)
		checkInvariants(t, i)
		checkInvariants(t, d)

		require.Equal(t, countEntries(a)+countEntries(b)-interSize, countEntries(u))
		require.Equal(t, countEntries(a), countEntries(d)+interSize)
		require.Equal(t, countEntries(a)-removed, countEntries(d))

		Iterate(a, func(k, _ int) bool {
			_, ok := Lookup(cfg, u, k)
			require.True(t, ok)
			return true
		})
		Iterate(i, func(k, _ int) bool {
			_, okA := Lookup(cfg, a, k)
			_, okB := Lookup(cfg, b, k)
			require.True(t, okA)
			require.True(t, okB)
			return true
		})
	}
}

func TestPropertyAdjustAgainstSelfIsNoop(t *testing.T) {
	cfg := intConfig()
	rng := rand.New(rand.NewSource(23))
	keep := func(_ int, cur int, curOK bool, _ int) (int, bool) {
		return cur, curOK
	}
	for trial := 0; trial < 30; trial++ {
		root := randomTrie(cfg, rng, 100, 80)
		result, delta := Adjust(cfg.Compare, keep, root, root)
		require.Equal(t, 0, delta)
		require.True(t, result == root)
	}
}

func TestPropertyMapValuesPreservesKeysAndSize(t *testing.T) {
	cfg := intConfig()
	rng := rand.New(rand.NewSource(17))
	for trial := 0; trial < 30; trial++ {
		root := randomTrie(cfg, rng, 100, 70)
		mapped := MapValues(root, func(_, v int) (int, bool) { return v * 2, false })
		checkInvariants(t, mapped)
		require.Equal(t, countEntries(root), countEntries(mapped))

		before := keysOf(root)
		after := keysOf(mapped)
		require.Equal(t, len(before), len(after))
		for k, v := range before {
			require.Equal(t, v*2, after[k])
		}
	}
}

func TestPropertyCollectValuesFilteringIsIdentityWhenNothingDropped(t *testing.T) {
	cfg := intConfig()
	rng := rand.New(rand.NewSource(29))
	for trial := 0; trial < 30; trial++ {
		root := randomTrie(cfg, rng, 100, 70)
		collected := CollectValues(root, func(_, v int) (int, bool) { return v, true })
		require.Equal(t, countEntries(root), countEntries(collected))
		require.Equal(t, keysOf(root), keysOf(collected))
	}
}

func firstEntry(root *node[int, int]) (int, int, bool) {
	return NewIterator(root).Next()
}
