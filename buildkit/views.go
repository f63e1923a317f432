package buildkit

import "iter"

// ReadOnlyList is a read view over a list.
type ReadOnlyList[T any] interface {
	Len() int
	At(i int) T
	All() iter.Seq[T]
}

// ReadOnlySet is a read view over a set.
type ReadOnlySet[T any] interface {
	Len() int
	Contains(e T) bool
	All() iter.Seq[T]
}

// ReadOnlyMap is a read view over a map.
type ReadOnlyMap[K comparable, V any] interface {
	Len() int
	Get(k K) (V, bool)
	All() iter.Seq2[K, V]
}

// ReadOnlyMultiset is a read view over a multiset.
type ReadOnlyMultiset[T comparable] interface {
	Len() int
	Count(e T) int
	Entries() iter.Seq2[T, int]
}

// ReadOnlyMultimap is a read view over a multimap.
type ReadOnlyMultimap[K comparable, V any] interface {
	Len() int
	Get(k K) []V
	Keys() iter.Seq[K]
	All() iter.Seq2[K, V]
}
