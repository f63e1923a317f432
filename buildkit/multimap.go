package buildkit

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// ListMultimap is an immutable multimap keeping values per key in insertion
// order. The zero value is empty.
type ListMultimap[K comparable, V any] struct {
	keys   []K
	values map[K][]V
	size   int
}

// Len returns the number of key-value entries.
func (m ListMultimap[K, V]) Len() int {
	return m.size
}

// Get returns the values of k.
func (m ListMultimap[K, V]) Get(k K) []V {
	return slices.Clip(m.values[k])
}

// ContainsKey reports whether k has at least one value.
func (m ListMultimap[K, V]) ContainsKey(k K) bool {
	return len(m.values[k]) > 0
}

// Keys yields the distinct keys in first-insertion order.
func (m ListMultimap[K, V]) Keys() iter.Seq[K] {
	return slices.Values(m.keys)
}

// All yields every entry.
func (m ListMultimap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			for _, v := range m.values[k] {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Equal reports whether both multimaps hold the same values per key.
func (m ListMultimap[K, V]) Equal(o ListMultimap[K, V]) bool {
	if m.size != o.size || len(m.keys) != len(o.keys) {
		return false
	}

	for _, k := range m.keys {
		if !Equal(m.values[k], o.values[k]) {
			return false
		}
	}

	return true
}

// Hash implements Hasher.
func (m ListMultimap[K, V]) Hash() uint64 {
	h := uint64(0)
	for _, k := range m.keys {
		h += Combine(HashOf(k), HashOf(m.values[k]))
	}

	return h
}

// String implements fmt.Stringer.
func (m ListMultimap[K, V]) String() string {
	return formatMultimap(m.keys, func(k K) any { return m.values[k] })
}

func formatMultimap[K comparable](keys []K, values func(K) any) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v:%v", k, values(k)))
	}

	return "map[" + strings.Join(parts, " ") + "]"
}

// ListMultimapField accumulates the entries of a list-multimap property.
type ListMultimapField[K comparable, V any] struct {
	keys   []K
	values map[K][]V
	size   int
}

// Put appends v to the values of k.
func (f *ListMultimapField[K, V]) Put(k K, v V) {
	if f.values == nil {
		f.values = make(map[K][]V)
	}

	if len(f.values[k]) == 0 {
		f.keys = append(f.keys, k)
	}

	f.values[k] = append(f.values[k], v)
	f.size++
}

// PutAll appends vs to the values of k.
func (f *ListMultimapField[K, V]) PutAll(k K, vs ...V) {
	for _, v := range vs {
		f.Put(k, v)
	}
}

// PutMultimap copies every entry of src.
func (f *ListMultimapField[K, V]) PutMultimap(src ListMultimap[K, V]) {
	for k, v := range src.All() {
		f.Put(k, v)
	}
}

// PutSeq copies every entry of seq.
func (f *ListMultimapField[K, V]) PutSeq(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		f.Put(k, v)
	}
}

// Remove deletes the first occurrence of v under k.
func (f *ListMultimapField[K, V]) Remove(k K, v V) bool {
	vs := f.values[k]

	i := slices.IndexFunc(vs, func(x V) bool { return Equal(x, v) })
	if i < 0 {
		return false
	}

	f.values[k] = slices.Delete(vs, i, i+1)
	f.size--
	f.dropEmpty(k)

	return true
}

// RemoveAll deletes every value of k.
func (f *ListMultimapField[K, V]) RemoveAll(k K) []V {
	vs := f.values[k]
	delete(f.values, k)
	f.size -= len(vs)
	f.keys = slices.DeleteFunc(f.keys, func(x K) bool { return x == k })

	return vs
}

func (f *ListMultimapField[K, V]) dropEmpty(k K) {
	if len(f.values[k]) == 0 {
		delete(f.values, k)
		f.keys = slices.DeleteFunc(f.keys, func(x K) bool { return x == k })
	}
}

// Replace discards the current entries and copies src.
func (f *ListMultimapField[K, V]) Replace(src ListMultimap[K, V]) {
	f.Clear()
	f.PutMultimap(src)
}

// Clear removes every entry.
func (f *ListMultimapField[K, V]) Clear() {
	f.keys, f.values, f.size = nil, nil, 0
}

// Len implements ReadOnlyMultimap.
func (f *ListMultimapField[K, V]) Len() int {
	return f.size
}

// Get implements ReadOnlyMultimap.
func (f *ListMultimapField[K, V]) Get(k K) []V {
	return slices.Clone(f.values[k])
}

// Keys implements ReadOnlyMultimap.
func (f *ListMultimapField[K, V]) Keys() iter.Seq[K] {
	return slices.Values(f.keys)
}

// All implements ReadOnlyMultimap.
func (f *ListMultimapField[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range f.keys {
			for _, v := range f.values[k] {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// View returns a live read-only view.
func (f *ListMultimapField[K, V]) View() ReadOnlyMultimap[K, V] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *ListMultimapField[K, V]) Freeze() ListMultimap[K, V] {
	m := ListMultimap[K, V]{keys: FreezeSlice(f.keys), size: f.size}
	if len(m.keys) > 0 {
		m.values = make(map[K][]V, len(m.keys))
		for _, k := range m.keys {
			m.values[k] = FreezeSlice(f.values[k])
		}
	}

	return m
}

// Mutate runs fn over an editor whose insertions go through put.
func (f *ListMultimapField[K, V]) Mutate(fn func(*MultimapEditor[K, V]), put func(K, V)) {
	fn(&MultimapEditor[K, V]{
		put:       put,
		remove:    f.Remove,
		removeAll: func(k K) { f.RemoveAll(k) },
		get:       f.Get,
		size:      f.Len,
	})
}

// SetMultimap is an immutable multimap holding distinct values per key.
// The zero value is empty.
type SetMultimap[K, V comparable] struct {
	keys   []K
	values map[K]Set[V]
	size   int
}

// Len returns the number of key-value entries.
func (m SetMultimap[K, V]) Len() int {
	return m.size
}

// Get returns the values of k.
func (m SetMultimap[K, V]) Get(k K) []V {
	return m.values[k].Slice()
}

// ContainsEntry reports whether v is among the values of k.
func (m SetMultimap[K, V]) ContainsEntry(k K, v V) bool {
	return m.values[k].Contains(v)
}

// Keys yields the distinct keys in first-insertion order.
func (m SetMultimap[K, V]) Keys() iter.Seq[K] {
	return slices.Values(m.keys)
}

// All yields every entry.
func (m SetMultimap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range m.keys {
			for v := range m.values[k].All() {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Equal reports whether both multimaps hold the same entries.
func (m SetMultimap[K, V]) Equal(o SetMultimap[K, V]) bool {
	if m.size != o.size || len(m.keys) != len(o.keys) {
		return false
	}

	for _, k := range m.keys {
		if !m.values[k].Equal(o.values[k]) {
			return false
		}
	}

	return true
}

// Hash implements Hasher.
func (m SetMultimap[K, V]) Hash() uint64 {
	h := uint64(0)
	for _, k := range m.keys {
		h += Combine(HashOf(k), m.values[k].Hash())
	}

	return h
}

// String implements fmt.Stringer.
func (m SetMultimap[K, V]) String() string {
	return formatMultimap(m.keys, func(k K) any { return m.values[k] })
}

// SetMultimapField accumulates the entries of a set-multimap property.
type SetMultimapField[K, V comparable] struct {
	keys   []K
	values map[K]*SetField[V]
	size   int
}

// Put adds v to the values of k, ignoring duplicates.
func (f *SetMultimapField[K, V]) Put(k K, v V) {
	if f.values == nil {
		f.values = make(map[K]*SetField[V])
	}

	s, ok := f.values[k]
	if !ok {
		s = &SetField[V]{}
		f.values[k] = s
		f.keys = append(f.keys, k)
	}

	if !s.Contains(v) {
		s.Add(v)
		f.size++
	}
}

// PutAll adds vs to the values of k.
func (f *SetMultimapField[K, V]) PutAll(k K, vs ...V) {
	for _, v := range vs {
		f.Put(k, v)
	}
}

// PutMultimap copies every entry of src.
func (f *SetMultimapField[K, V]) PutMultimap(src SetMultimap[K, V]) {
	for k, v := range src.All() {
		f.Put(k, v)
	}
}

// PutSeq copies every entry of seq.
func (f *SetMultimapField[K, V]) PutSeq(seq iter.Seq2[K, V]) {
	for k, v := range seq {
		f.Put(k, v)
	}
}

// Remove deletes v from the values of k.
func (f *SetMultimapField[K, V]) Remove(k K, v V) bool {
	s, ok := f.values[k]
	if !ok || !s.Remove(v) {
		return false
	}

	f.size--

	if s.Len() == 0 {
		delete(f.values, k)
		f.keys = slices.DeleteFunc(f.keys, func(x K) bool { return x == k })
	}

	return true
}

// RemoveAll deletes every value of k.
func (f *SetMultimapField[K, V]) RemoveAll(k K) []V {
	s, ok := f.values[k]
	if !ok {
		return nil
	}

	delete(f.values, k)
	f.size -= s.Len()
	f.keys = slices.DeleteFunc(f.keys, func(x K) bool { return x == k })

	return slices.Collect(s.All())
}

// Clear removes every entry.
func (f *SetMultimapField[K, V]) Clear() {
	f.keys, f.values, f.size = nil, nil, 0
}

// Len implements ReadOnlyMultimap.
func (f *SetMultimapField[K, V]) Len() int {
	return f.size
}

// Get implements ReadOnlyMultimap.
func (f *SetMultimapField[K, V]) Get(k K) []V {
	s, ok := f.values[k]
	if !ok {
		return nil
	}

	return slices.Collect(s.All())
}

// Keys implements ReadOnlyMultimap.
func (f *SetMultimapField[K, V]) Keys() iter.Seq[K] {
	return slices.Values(f.keys)
}

// All implements ReadOnlyMultimap.
func (f *SetMultimapField[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range f.keys {
			for v := range f.values[k].All() {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// View returns a live read-only view.
func (f *SetMultimapField[K, V]) View() ReadOnlyMultimap[K, V] {
	return f
}

// Freeze returns an immutable snapshot.
func (f *SetMultimapField[K, V]) Freeze() SetMultimap[K, V] {
	m := SetMultimap[K, V]{keys: FreezeSlice(f.keys), size: f.size}
	if len(m.keys) > 0 {
		m.values = make(map[K]Set[V], len(m.keys))
		for _, k := range m.keys {
			m.values[k] = f.values[k].Freeze()
		}
	}

	return m
}

// Mutate runs fn over an editor whose insertions go through put.
func (f *SetMultimapField[K, V]) Mutate(fn func(*MultimapEditor[K, V]), put func(K, V)) {
	fn(&MultimapEditor[K, V]{
		put:       put,
		remove:    f.Remove,
		removeAll: func(k K) { f.RemoveAll(k) },
		get:       f.Get,
		size:      f.Len,
	})
}

// MultimapEditor is the checked view handed to multimap Mutate callbacks.
type MultimapEditor[K comparable, V any] struct {
	put       func(K, V)
	remove    func(K, V) bool
	removeAll func(K)
	get       func(K) []V
	size      func() int
}

// Put adds an entry through the property's own put.
func (e *MultimapEditor[K, V]) Put(k K, v V) {
	e.put(k, v)
}

// Remove deletes one entry.
func (e *MultimapEditor[K, V]) Remove(k K, v V) bool {
	return e.remove(k, v)
}

// RemoveAll deletes every value of k.
func (e *MultimapEditor[K, V]) RemoveAll(k K) {
	e.removeAll(k)
}

// Get returns a copy of the values of k.
func (e *MultimapEditor[K, V]) Get(k K) []V {
	return e.get(k)
}

// Len returns the number of entries.
func (e *MultimapEditor[K, V]) Len() int {
	return e.size()
}
