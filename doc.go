// Package pcol defines the key-capability contracts shared by the
// persistent container cores in pcol/tree and pcol/hamt.
//
// Neither core stores a comparison or hash function on its nodes: every
// entry point takes a Compare or HashConfig value explicitly, so the
// config is fixed once at container-creation time rather than inferred
// per call. A config must be internally consistent for the lifetime of
// any root built with it — passing two different configs to operations
// over the same tree, or using a Compare whose results disagree across
// calls for the same pair of keys, is caller misuse (see Compare below
// for what that misuse can and cannot do to a tree).
//
// A wrapper type (not part of this module; see the non-goals in the
// package-level docs of pcol/tree and pcol/hamt) typically holds a
// (root, size) pair and translates its own method calls into calls
// against the core functions here, taking the new root and adjusting
// its cached size by whatever delta the core reports. When a core
// function returns the same root reference it was given, nothing
// changed, and such a wrapper should return itself unmodified rather
// than allocate a new wrapper value.
package pcol

// Compare holds a total order over keys of type K. Compare(a, b) must
// return a negative number if a < b, zero if a == b, and a positive
// number if a > b, and must be consistent across calls: if it ever
// returns inconsistent results for the same pair of keys, every
// operation built on it has undefined (but memory-safe) behavior.
type Compare[K any] struct {
	Compare func(a, b K) int
}

// HashConfig extends Compare with a hash function for use by pcol/hamt.
// Hash may return any 32-bit value, including values an adversary
// chose to collide; the hash array mapped trie tolerates arbitrarily
// large collision sets (at reduced performance) by falling back to the
// Compare order inside a collision node. Hash need not be
// cryptographically secure, only a pure function of its argument: two
// calls with equal keys (per Compare) must return the same hash.
type HashConfig[K any] struct {
	Compare[K]
	Hash func(k K) uint32
}

// NewCompare builds a Compare from a standalone comparison function.
func NewCompare[K any](cmp func(a, b K) int) Compare[K] {
	return Compare[K]{Compare: cmp}
}

// NewHashConfig builds a HashConfig from a comparison and hash function.
func NewHashConfig[K any](cmp func(a, b K) int, hash func(k K) uint32) HashConfig[K] {
	return HashConfig[K]{Compare: NewCompare(cmp), Hash: hash}
}
