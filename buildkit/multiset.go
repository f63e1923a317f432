package buildkit

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Multiset is an immutable bag keeping the first-insertion order of its
// distinct elements. The zero value is empty.
type Multiset[T comparable] struct {
	order  []T
	counts map[T]int
	size   int
}

// MultisetOf returns a multiset holding items.
func MultisetOf[T comparable](items ...T) Multiset[T] {
	var f MultisetField[T]
	f.Add(items...)

	return f.Freeze()
}

// Len returns the number of elements, counting repeats.
func (s Multiset[T]) Len() int {
	return s.size
}

// Count returns the occurrences of e.
func (s Multiset[T]) Count(e T) int {
	return s.counts[e]
}

// Entries yields each distinct element with its count.
func (s Multiset[T]) Entries() iter.Seq2[T, int] {
	return func(yield func(T, int) bool) {
		for _, e := range s.order {
			if !yield(e, s.counts[e]) {
				return
			}
		}
	}
}

// All yields every element, repeats included.
func (s Multiset[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range s.order {
			for range s.counts[e] {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Slice returns every element, repeats included.
func (s Multiset[T]) Slice() []T {
	return slices.Collect(s.All())
}

// Equal reports whether both multisets hold the same counts.
func (s Multiset[T]) Equal(o Multiset[T]) bool {
	if s.size != o.size || len(s.order) != len(o.order) {
		return false
	}

	for _, e := range s.order {
		if s.counts[e] != o.counts[e] {
			return false
		}
	}

	return true
}

// Hash implements Hasher.
func (s Multiset[T]) Hash() uint64 {
	h := uint64(0)
	for _, e := range s.order {
		h += HashOf(e) ^ uint64(s.counts[e])
	}

	return h
}

// String implements fmt.Stringer, rendering repeats as e x n.
func (s Multiset[T]) String() string {
	parts := make([]string, 0, len(s.order))
	for _, e := range s.order {
		if n := s.counts[e]; n > 1 {
			parts = append(parts, fmt.Sprintf("%v x %d", e, n))
		} else {
			parts = append(parts, fmt.Sprint(e))
		}
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// MultisetField accumulates the elements of a multiset property.
type MultisetField[T comparable] struct {
	order  []T
	counts map[T]int
	size   int
}

// Add inserts one occurrence of each of elems.
func (f *MultisetField[T]) Add(elems ...T) {
	for _, e := range elems {
		f.AddCopies(e, 1)
	}
}

// AddSeq inserts every element of seq.
func (f *MultisetField[T]) AddSeq(seq iter.Seq[T]) {
	for e := range seq {
		f.AddCopies(e, 1)
	}
}

// AddCopies inserts n occurrences of e. Negative n panics.
func (f *MultisetField[T]) AddCopies(e T, n int) {
	if n < 0 {
		panic(fmt.Sprintf("buildkit: negative occurrences %d", n))
	}

	f.SetCount(e, f.counts[e]+n)
}

// SetCount sets the occurrences of e to n. Negative n panics.
func (f *MultisetField[T]) SetCount(e T, n int) {
	if n < 0 {
		panic(fmt.Sprintf("buildkit: negative count %d", n))
	}

	old := f.counts[e]

	switch {
	case n == old:
		return
	case n == 0:
		delete(f.counts, e)
		f.order = slices.DeleteFunc(f.order, func(x T) bool { return x == e })
	default:
		if f.counts == nil {
			f.counts = make(map[T]int)
		}

		if old == 0 {
			f.order = append(f.order, e)
		}

		f.counts[e] = n
	}

	f.size += n - old
}

// AddAll inserts every occurrence held by src.
func (f *MultisetField[T]) AddAll(src Multiset[T]) {
	for e, n := range src.Entries() {
		f.AddCopies(e, n)
	}
}

// Replace discards the current elements and copies src.
func (f *MultisetField[T]) Replace(src Multiset[T]) {
	f.Clear()
	f.AddAll(src)
}

// Clear removes every element.
func (f *MultisetField[T]) Clear() {
	f.order, f.counts, f.size = nil, nil, 0
}

// Len implements ReadOnlyMultiset.
func (f *MultisetField[T]) Len() int {
	return f.size
}

// Count implements ReadOnlyMultiset.
func (f *MultisetField[T]) Count(e T) int {
	return f.counts[e]
}

// Entries implements ReadOnlyMultiset.
func (f *MultisetField[T]) Entries() iter.Seq2[T, int] {
	return func(yield func(T, int) bool) {
		for _, e := range f.order {
			if !yield(e, f.counts[e]) {
				return
			}
		}
	}
}

// View returns a live read-only view.
func (f *MultisetField[T]) View() ReadOnlyMultiset[T] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *MultisetField[T]) Freeze() Multiset[T] {
	s := Multiset[T]{order: FreezeSlice(f.order), size: f.size}
	if len(s.order) > 0 {
		s.counts = make(map[T]int, len(s.order))
		for _, e := range s.order {
			s.counts[e] = f.counts[e]
		}
	}

	return s
}

// Mutate runs fn over an editor whose insertions go through add.
func (f *MultisetField[T]) Mutate(fn func(*MultisetEditor[T]), add func(T)) {
	fn(&MultisetEditor[T]{f: f, add: add})
}

// MultisetEditor is the checked view handed to Mutate callbacks.
type MultisetEditor[T comparable] struct {
	f   *MultisetField[T]
	add func(T)
}

// Add inserts one occurrence of v through the property's own add.
func (e *MultisetEditor[T]) Add(v T) {
	e.add(v)
}

// SetCount sets the occurrences of v.
func (e *MultisetEditor[T]) SetCount(v T, n int) {
	e.f.SetCount(v, n)
}

// Count returns the occurrences of v.
func (e *MultisetEditor[T]) Count(v T) int {
	return e.f.Count(v)
}

// Len returns the number of elements, counting repeats.
func (e *MultisetEditor[T]) Len() int {
	return e.f.Len()
}
