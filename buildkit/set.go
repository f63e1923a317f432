package buildkit

import (
	"fmt"
	"iter"
	"slices"
)

// Set is an immutable insertion-ordered set. The zero value is empty.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// SetOf returns a set of items, dropping duplicates.
func SetOf[T comparable](items ...T) Set[T] {
	var f SetField[T]
	f.Add(items...)

	return f.Freeze()
}

// Len returns the number of elements.
func (s Set[T]) Len() int {
	return len(s.items)
}

// Contains reports whether e is in the set.
func (s Set[T]) Contains(e T) bool {
	_, ok := s.index[e]

	return ok
}

// All yields the elements in insertion order.
func (s Set[T]) All() iter.Seq[T] {
	return slices.Values(s.items)
}

// Slice returns the elements in insertion order.
func (s Set[T]) Slice() []T {
	return slices.Clone(s.items)
}

// Equal reports whether both sets hold the same elements, in any order.
func (s Set[T]) Equal(o Set[T]) bool {
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

// Hash implements Hasher; it does not depend on element order.
func (s Set[T]) Hash() uint64 {
	h := uint64(0)
	for _, e := range s.items {
		h += HashOf(e)
	}

	return h
}

// String implements fmt.Stringer.
func (s Set[T]) String() string {
	return fmt.Sprint(s.items)
}

// SetField accumulates the elements of a set property.
type SetField[T comparable] struct {
	items []T
	index map[T]struct{}
}

// Add inserts elems, ignoring those already present.
func (f *SetField[T]) Add(elems ...T) {
	for _, e := range elems {
		if _, ok := f.index[e]; ok {
			continue
		}

		if f.index == nil {
			f.index = make(map[T]struct{})
		}

		f.index[e] = struct{}{}
		f.items = append(f.items, e)
	}
}

// AddSeq inserts every element of seq.
func (f *SetField[T]) AddSeq(seq iter.Seq[T]) {
	for e := range seq {
		f.Add(e)
	}
}

// Remove deletes e, reporting whether it was present.
func (f *SetField[T]) Remove(e T) bool {
	if _, ok := f.index[e]; !ok {
		return false
	}

	delete(f.index, e)
	f.items = slices.DeleteFunc(f.items, func(x T) bool { return x == e })

	return true
}

// Clear removes every element.
func (f *SetField[T]) Clear() {
	f.items, f.index = nil, nil
}

// Len implements ReadOnlySet.
func (f *SetField[T]) Len() int {
	return len(f.items)
}

// Contains implements ReadOnlySet.
func (f *SetField[T]) Contains(e T) bool {
	_, ok := f.index[e]

	return ok
}

// All implements ReadOnlySet.
func (f *SetField[T]) All() iter.Seq[T] {
	return slices.Values(f.items)
}

// View returns a live read-only view.
func (f *SetField[T]) View() ReadOnlySet[T] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *SetField[T]) Freeze() Set[T] {
	s := Set[T]{items: FreezeSlice(f.items)}
	if len(s.items) > 0 {
		s.index = make(map[T]struct{}, len(s.items))
		for _, e := range s.items {
			s.index[e] = struct{}{}
		}
	}

	return s
}

// FreezeMap returns an immutable snapshot as a map-backed set.
func (f *SetField[T]) FreezeMap() map[T]struct{} {
	if len(f.items) == 0 {
		return nil
	}

	out := make(map[T]struct{}, len(f.items))
	for _, e := range f.items {
		out[e] = struct{}{}
	}

	return out
}

// Mutate runs fn over an editor whose insertions go through add.
func (f *SetField[T]) Mutate(fn func(*SetEditor[T]), add func(T)) {
	fn(&SetEditor[T]{f: f, add: add})
}

// SetEditor is the checked view handed to Mutate callbacks.
type SetEditor[T comparable] struct {
	f   *SetField[T]
	add func(T)
}

// Add inserts e through the property's own add.
func (e *SetEditor[T]) Add(v T) {
	e.add(v)
}

// Remove deletes v, reporting whether it was present.
func (e *SetEditor[T]) Remove(v T) bool {
	return e.f.Remove(v)
}

// Contains reports whether v is present.
func (e *SetEditor[T]) Contains(v T) bool {
	return e.f.Contains(v)
}

// Len returns the number of elements.
func (e *SetEditor[T]) Len() int {
	return e.f.Len()
}

// All yields the elements in insertion order.
func (e *SetEditor[T]) All() iter.Seq[T] {
	return slices.Values(slices.Clone(e.f.items))
}
