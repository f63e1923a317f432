package buildkit

import (
	"iter"
	"maps"
)

// MapField accumulates the entries of a map property.
type MapField[K comparable, V any] struct {
	m map[K]V
}

// Put sets k to v.
func (f *MapField[K, V]) Put(k K, v V) {
	if f.m == nil {
		f.m = make(map[K]V)
	}

	f.m[k] = v
}

// PutAll copies every entry of src.
func (f *MapField[K, V]) PutAll(src map[K]V) {
	for k, v := range src {
		f.Put(k, v)
	}
}

// PutSeq copies every entry of seq.
func (f *MapField[K, V]) PutSeq(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		f.Put(k, v)
	}
}

// Remove deletes k, reporting whether it was present.
func (f *MapField[K, V]) Remove(k K) bool {
	_, ok := f.m[k]
	delete(f.m, k)

	return ok
}

// Clear removes every entry.
func (f *MapField[K, V]) Clear() {
	f.m = nil
}

// Len implements ReadOnlyMap.
func (f *MapField[K, V]) Len() int {
	return len(f.m)
}

// Get implements ReadOnlyMap.
func (f *MapField[K, V]) Get(k K) (V, bool) {
	v, ok := f.m[k]

	return v, ok
}

// All implements ReadOnlyMap.
func (f *MapField[K, V]) All() iter.Seq2[K, V] {
	return maps.All(f.m)
}

// View returns a live read-only view.
func (f *MapField[K, V]) View() ReadOnlyMap[K, V] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *MapField[K, V]) Freeze() map[K]V {
	return FreezeMap(f.m)
}

// Mutate runs fn over an editor whose insertions go through put.
func (f *MapField[K, V]) Mutate(fn func(*MapEditor[K, V]), put func(K, V)) {
	fn(&MapEditor[K, V]{f: f, put: put})
}

// MapEditor is the checked view handed to Mutate callbacks.
type MapEditor[K comparable, V any] struct {
	f   *MapField[K, V]
	put func(K, V)
}

// Put sets k through the property's own put.
func (e *MapEditor[K, V]) Put(k K, v V) {
	e.put(k, v)
}

// Remove deletes k.
func (e *MapEditor[K, V]) Remove(k K) bool {
	return e.f.Remove(k)
}

// Get returns the value of k.
func (e *MapEditor[K, V]) Get(k K) (V, bool) {
	return e.f.Get(k)
}

// Len returns the number of entries.
func (e *MapEditor[K, V]) Len() int {
	return e.f.Len()
}

// All yields a snapshot of the entries.
func (e *MapEditor[K, V]) All() iter.Seq2[K, V] {
	return maps.All(maps.Clone(e.f.m))
}
