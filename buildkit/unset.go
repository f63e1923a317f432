package buildkit

import (
	"math/bits"
	"slices"
)

// UnsetSet is a set of small non-negative property indices.
//
// The zero value is empty. Copies share storage; use Clone before mutating
// a copy.
type UnsetSet struct {
	words []uint64
}

// NewUnsetSet returns a set holding indices.
func NewUnsetSet(indices ...int) UnsetSet {
	var s UnsetSet
	for _, i := range indices {
		s.Add(i)
	}

	return s
}

// Add inserts i.
func (s *UnsetSet) Add(i int) {
	w := i / 64
	if w >= len(s.words) {
		s.words = append(s.words, make([]uint64, w-len(s.words)+1)...)
	}

	s.words[w] |= 1 << (uint(i) % 64)
}

// Remove deletes i.
func (s *UnsetSet) Remove(i int) {
	w := i / 64
	if w < len(s.words) {
		s.words[w] &^= 1 << (uint(i) % 64)
	}
}

// Has reports whether i is in the set.
func (s UnsetSet) Has(i int) bool {
	w := i / 64

	return w < len(s.words) && s.words[w]&(1<<(uint(i)%64)) != 0
}

// Len returns the number of indices in the set.
func (s UnsetSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}

	return n
}

// IsEmpty reports whether the set is empty.
func (s UnsetSet) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}

	return true
}

// Indices returns the members in ascending order.
func (s UnsetSet) Indices() []int {
	var out []int

	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}

	return out
}

// Clone returns an independent copy.
func (s UnsetSet) Clone() UnsetSet {
	return UnsetSet{words: slices.Clone(s.words)}
}

// Equal reports whether both sets hold the same indices.
func (s UnsetSet) Equal(o UnsetSet) bool {
	n := max(len(s.words), len(o.words))
	for i := range n {
		if word(s.words, i) != word(o.words, i) {
			return false
		}
	}

	return true
}

// Hash returns a hash consistent with Equal.
func (s UnsetSet) Hash() uint64 {
	h := uint64(0)
	for _, i := range s.Indices() {
		h = Combine(h, uint64(i)+1)
	}

	return h
}

// Names maps the members to names, in index order.
func (s UnsetSet) Names(names []string) []string {
	out := make([]string, 0, s.Len())
	for _, i := range s.Indices() {
		if i < len(names) {
			out = append(out, names[i])
		}
	}

	return out
}

func word(ws []uint64, i int) uint64 {
	if i < len(ws) {
		return ws[i]
	}

	return 0
}
