package buildkit

import (
	"iter"
	"slices"
)

// ListField accumulates the elements of a list property.
type ListField[T any] struct {
	items []T
}

// Add appends elems.
func (f *ListField[T]) Add(elems ...T) {
	f.items = append(f.items, elems...)
}

// AddSeq appends every element of seq.
func (f *ListField[T]) AddSeq(seq iter.Seq[T]) {
	for e := range seq {
		f.items = append(f.items, e)
	}
}

// Replace discards the current elements and copies src.
func (f *ListField[T]) Replace(src []T) {
	f.items = append(f.items[:0:0], src...)
}

// Clear removes every element.
func (f *ListField[T]) Clear() {
	f.items = nil
}

// Len implements ReadOnlyList.
func (f *ListField[T]) Len() int {
	return len(f.items)
}

// At implements ReadOnlyList.
func (f *ListField[T]) At(i int) T {
	return f.items[i]
}

// All implements ReadOnlyList.
func (f *ListField[T]) All() iter.Seq[T] {
	return slices.Values(f.items)
}

// View returns a live read-only view.
func (f *ListField[T]) View() ReadOnlyList[T] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *ListField[T]) Freeze() []T {
	return FreezeSlice(f.items)
}

// Mutate runs fn over an editor whose insertions go through add.
func (f *ListField[T]) Mutate(fn func(*ListEditor[T]), add func(T)) {
	fn(&ListEditor[T]{f: f, add: add})
}

// ListEditor is the checked view handed to Mutate callbacks.
type ListEditor[T any] struct {
	f   *ListField[T]
	add func(T)
}

// Add appends e through the property's own add.
func (e *ListEditor[T]) Add(v T) {
	e.add(v)
}

// Set replaces the element at i.
func (e *ListEditor[T]) Set(i int, v T) {
	e.f.items[i] = v
}

// RemoveAt deletes the element at i.
func (e *ListEditor[T]) RemoveAt(i int) {
	e.f.items = slices.Delete(e.f.items, i, i+1)
}

// RemoveFunc deletes every element matching del.
func (e *ListEditor[T]) RemoveFunc(del func(T) bool) {
	e.f.items = slices.DeleteFunc(e.f.items, del)
}

// Len returns the number of elements.
func (e *ListEditor[T]) Len() int {
	return len(e.f.items)
}

// At returns the element at i.
func (e *ListEditor[T]) At(i int) T {
	return e.f.items[i]
}
