package buildkit

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
)

// SortedSet is an immutable set kept in comparator order. The zero value is
// empty and orders values with CompareAny.
type SortedSet[T any] struct {
	items   []T
	compare func(a, b T) int
}

// SortedSetOf returns a sorted set of ordered items.
func SortedSetOf[T cmp.Ordered](items ...T) SortedSet[T] {
	return SortedSetFunc(cmp.Compare[T], items...)
}

// SortedSetFunc returns a set of items ordered by compare.
func SortedSetFunc[T any](compare func(a, b T) int, items ...T) SortedSet[T] {
	f := NewSortedSetField(compare)
	f.Add(items...)

	return f.Freeze()
}

func (s SortedSet[T]) cmp() func(a, b T) int {
	if s.compare == nil {
		return anyCompare[T]
	}

	return s.compare
}

// Len returns the number of elements.
func (s SortedSet[T]) Len() int {
	return len(s.items)
}

// Contains reports whether e is in the set.
func (s SortedSet[T]) Contains(e T) bool {
	_, ok := slices.BinarySearchFunc(s.items, e, s.cmp())

	return ok
}

// All yields the elements in order.
func (s SortedSet[T]) All() iter.Seq[T] {
	return slices.Values(s.items)
}

// Slice returns the elements in order.
func (s SortedSet[T]) Slice() []T {
	return slices.Clone(s.items)
}

// Comparator returns the ordering of the set.
func (s SortedSet[T]) Comparator() func(a, b T) int {
	return s.cmp()
}

// Equal reports whether both sets hold the same elements.
func (s SortedSet[T]) Equal(o SortedSet[T]) bool {
	if len(s.items) != len(o.items) {
		return false
	}

	for _, e := range s.items {
		if !o.Contains(e) {
			return false
		}
	}

	return true
}

// Hash implements Hasher.
func (s SortedSet[T]) Hash() uint64 {
	h := uint64(0)
	for _, e := range s.items {
		h += HashOf(e)
	}

	return h
}

// String implements fmt.Stringer.
func (s SortedSet[T]) String() string {
	return fmt.Sprint(s.items)
}

func anyCompare[T any](a, b T) int {
	return CompareAny(a, b)
}

// SortedSetField accumulates the elements of a sorted-set property.
type SortedSetField[T any] struct {
	items   []T
	compare func(a, b T) int
}

// NewSortedSetField returns a field ordered by compare, or by CompareAny
// when compare is nil.
func NewSortedSetField[T any](compare func(a, b T) int) SortedSetField[T] {
	return SortedSetField[T]{compare: compare}
}

func (f *SortedSetField[T]) cmp() func(a, b T) int {
	if f.compare == nil {
		return anyCompare[T]
	}

	return f.compare
}

// Add inserts elems, ignoring those already present.
func (f *SortedSetField[T]) Add(elems ...T) {
	for _, e := range elems {
		i, ok := slices.BinarySearchFunc(f.items, e, f.cmp())
		if !ok {
			f.items = slices.Insert(f.items, i, e)
		}
	}
}

// AddSeq inserts every element of seq.
func (f *SortedSetField[T]) AddSeq(seq iter.Seq[T]) {
	for e := range seq {
		f.Add(e)
	}
}

// Remove deletes e, reporting whether it was present.
func (f *SortedSetField[T]) Remove(e T) bool {
	i, ok := slices.BinarySearchFunc(f.items, e, f.cmp())
	if ok {
		f.items = slices.Delete(f.items, i, i+1)
	}

	return ok
}

// Clear removes every element, keeping the ordering.
func (f *SortedSetField[T]) Clear() {
	f.items = nil
}

// Len implements ReadOnlySet.
func (f *SortedSetField[T]) Len() int {
	return len(f.items)
}

// Contains implements ReadOnlySet.
func (f *SortedSetField[T]) Contains(e T) bool {
	_, ok := slices.BinarySearchFunc(f.items, e, f.cmp())

	return ok
}

// All implements ReadOnlySet.
func (f *SortedSetField[T]) All() iter.Seq[T] {
	return slices.Values(f.items)
}

// View returns a live read-only view.
func (f *SortedSetField[T]) View() ReadOnlySet[T] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *SortedSetField[T]) Freeze() SortedSet[T] {
	return SortedSet[T]{items: FreezeSlice(f.items), compare: f.compare}
}

// Mutate runs fn over an editor whose insertions go through add.
func (f *SortedSetField[T]) Mutate(fn func(*SortedSetEditor[T]), add func(T)) {
	fn(&SortedSetEditor[T]{f: f, add: add})
}

// SortedSetEditor is the checked view handed to Mutate callbacks.
type SortedSetEditor[T any] struct {
	f   *SortedSetField[T]
	add func(T)
}

// Add inserts v through the property's own add.
func (e *SortedSetEditor[T]) Add(v T) {
	e.add(v)
}

// Remove deletes v, reporting whether it was present.
func (e *SortedSetEditor[T]) Remove(v T) bool {
	return e.f.Remove(v)
}

// Contains reports whether v is present.
func (e *SortedSetEditor[T]) Contains(v T) bool {
	return e.f.Contains(v)
}

// Len returns the number of elements.
func (e *SortedSetEditor[T]) Len() int {
	return e.f.Len()
}
