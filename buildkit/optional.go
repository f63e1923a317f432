package buildkit

import "fmt"

// Optional holds a value or nothing. The zero value is empty.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an empty optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// OptionalOf returns an optional holding *p, empty when p is nil.
func OptionalOf[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}

	return Some(*p)
}

// MapOptional applies fn to the value of o, if present.
func MapOptional[T, U any](o Optional[T], fn func(T) U) Optional[U] {
	if !o.ok {
		return None[U]()
	}

	return Some(fn(o.value))
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the value, or def when empty.
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}

	return o.value
}

// Ptr returns a pointer to a copy of the value, nil when empty.
func (o Optional[T]) Ptr() *T {
	if !o.ok {
		return nil
	}

	v := o.value

	return &v
}

// Equal reports whether both optionals are empty or hold equal values.
func (o Optional[T]) Equal(other Optional[T]) bool {
	if o.ok != other.ok {
		return false
	}

	return !o.ok || Equal(o.value, other.value)
}

// Hash implements Hasher.
func (o Optional[T]) Hash() uint64 {
	if !o.ok {
		return 0
	}

	return Combine(1, HashOf(o.value))
}

// String implements fmt.Stringer.
func (o Optional[T]) String() string {
	if !o.ok {
		return "None"
	}

	return fmt.Sprintf("Some(%v)", o.value)
}
