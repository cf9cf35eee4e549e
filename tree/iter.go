package tree

// Iterator walks a tree in ascending key order using an explicit stack
// rather than recursion, so traversal state lives on the heap instead of
// the goroutine stack. An Iterator is single-use: once exhausted, it
// yields nothing more.
type Iterator[K, V any] struct {
	stack []*Node[K, V]
}

// NewIterator returns an Iterator positioned before the smallest entry of
// root.
func NewIterator[K, V any](root *Node[K, V]) *Iterator[K, V] {
	it := &Iterator[K, V]{}
	it.pushLeftSpine(root)
	return it
}

func (it *Iterator[K, V]) pushLeftSpine(n *Node[K, V]) {
	for n != nil {
		it.stack = append(it.stack, n)
		n = n.Left
	}
}

// Next returns the next entry in ascending key order, and whether one was
// available.
func (it *Iterator[K, V]) Next() (K, V, bool) {
	if len(it.stack) == 0 {
		var zk K
		var zv V
		return zk, zv, false
	}
	top := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.pushLeftSpine(top.Right)
	return top.Key, top.Val, true
}

// Iterate calls fn for every entry in ascending key order, stopping early
// if fn returns false.
func Iterate[K, V any](root *Node[K, V], fn func(k K, v V) bool) {
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

// Fold reduces every entry in ascending key order into an accumulator,
// starting from zero.
func Fold[K, V, A any](root *Node[K, V], zero A, fn func(acc A, k K, v V) A) A {
	acc := zero
	Iterate(root, func(k K, v V) bool {
		acc = fn(acc, k, v)
		return true
	})
	return acc
}
