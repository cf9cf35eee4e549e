package hamt

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/arborix/pcol"
)

func intCompare(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// intConfig hashes ints through their decimal string via xxhash, giving
// a config with no special structure to exploit.
func intConfig() pcol.HashConfig[int] {
	return pcol.NewHashConfig(intCompare, func(k int) uint32 {
		return uint32(xxhash.Sum64String(strconv.Itoa(k)))
	})
}

func stringConfig() pcol.HashConfig[string] {
	return pcol.NewHashConfig(stringCompare, func(k string) uint32 {
		return uint32(xxhash.Sum64String(k))
	})
}

// narrowConfig hashes every int into one of four buckets, forcing deep
// collision chains for any reasonably sized key set: it exists purely
// to exercise the Collision node machinery, not to model a real key
// distribution.
func narrowConfig() pcol.HashConfig[int] {
	return pcol.NewHashConfig(intCompare, func(k int) uint32 {
		return uint32(k % 4)
	})
}

// constConfig sends every key to the same hash bucket, so every entry
// after the first lives in a single Collision node.
func constConfig() pcol.HashConfig[int] {
	return pcol.NewHashConfig(intCompare, func(int) uint32 {
		return 7
	})
}
