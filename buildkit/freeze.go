package buildkit

import "maps"

// FreezeSlice returns an exact-capacity copy of s: nil when empty, a single
// element slice for one element, a clone otherwise.
func FreezeSlice[T any](s []T) []T {
	switch len(s) {
	case 0:
		return nil
	case 1:
		return []T{s[0]}
	default:
		out := make([]T, len(s))
		copy(out, s)

		return out
	}
}

// FreezeMap returns a copy of m, nil when empty.
func FreezeMap[K comparable, V any](m map[K]V) map[K]V {
	if len(m) == 0 {
		return nil
	}

	return maps.Clone(m)
}

// ClonePtr returns a pointer to a copy of *p, nil when p is nil.
func ClonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
