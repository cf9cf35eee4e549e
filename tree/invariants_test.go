package tree_test

import (
	"testing"

	"github.com/arborix/pcol/tree"
)

// checkInvariants walks root and fails t if any of the universal
// invariants (BST order, weight balance, size accuracy) do not hold.
func checkInvariants[K, V any](t *testing.T, cmp func(a, b K) int, root *tree.Node[K, V]) {
	t.Helper()
	checkSubtree(t, cmp, root, nil, nil)
}

// checkSubtree returns the size of n, verifying BST order against the
// open bounds (lo, hi) and weight balance/size along the way.
func checkSubtree[K, V any](t *testing.T, cmp func(a, b K) int, n *tree.Node[K, V], lo, hi *K) int {
	t.Helper()
	if n == nil {
		return 0
	}
	if lo != nil && cmp(n.Key, *lo) <= 0 {
		t.Fatalf("BST order violated: key not greater than lower bound")
	}
	if hi != nil && cmp(n.Key, *hi) >= 0 {
		t.Fatalf("BST order violated: key not less than upper bound")
	}
	l := checkSubtree(t, cmp, n.Left, lo, &n.Key)
	r := checkSubtree(t, cmp, n.Right, &n.Key, hi)
	if l+r > 1 {
		if l > 3*r {
			t.Fatalf("weight balance violated: left=%d right=%d", l, r)
		}
		if r > 3*l {
			t.Fatalf("weight balance violated: left=%d right=%d", l, r)
		}
	}
	if n.Size != 1+l+r {
		t.Fatalf("size accuracy violated: node.Size=%d want %d", n.Size, 1+l+r)
	}
	return n.Size
}

func intCmp(a, b int) int { return a - b }
