package buildkit

import (
	"cmp"
	"fmt"
	"hash/fnv"
	"reflect"
)

// Hasher is implemented by values with their own hash.
type Hasher interface {
	Hash() uint64
}

// Combine folds v into the running hash h.
func Combine(h, v uint64) uint64 {
	return h*31 + v
}

// HashOf hashes v consistently with Equal.
func HashOf(v any) uint64 {
	if isNil(v) {
		return 0
	}

	if h, ok := v.(Hasher); ok {
		return h.Hash()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return HashOf(rv.Elem().Interface())
	}

	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0 {
		return 0
	}

	if rv.Kind() == reflect.Slice {
		h := uint64(1)
		for i := range rv.Len() {
			h = Combine(h, HashOf(rv.Index(i).Interface()))
		}

		return h
	}

	f := fnv.New64a()
	_, _ = fmt.Fprintf(f, "%T:%v", v, v)

	return f.Sum64()
}

// Equal compares a and b structurally. A method Equal(T) bool on a is used
// when b is assignable to T, and nil compares equal to an empty slice or map.
func Equal(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isEmpty(a) && isEmpty(b)
	}

	if eq, ok := callEqual(a, b); ok {
		return eq
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Slice, reflect.Array:
		if ra.Len() != rb.Len() {
			return false
		}

		for i := range ra.Len() {
			if !Equal(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}

		return true

	case reflect.Map:
		if ra.Len() != rb.Len() {
			return false
		}

		iter := ra.MapRange()
		for iter.Next() {
			other := rb.MapIndex(iter.Key())
			if !other.IsValid() || !Equal(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}

		return true

	default:
		return reflect.DeepEqual(a, b)
	}
}

func callEqual(a, b any) (bool, bool) {
	m := reflect.ValueOf(a).MethodByName("Equal")
	if !m.IsValid() {
		return false, false
	}

	t := m.Type()
	if t.NumIn() != 1 || t.NumOut() != 1 || t.Out(0).Kind() != reflect.Bool {
		return false, false
	}

	if !reflect.TypeOf(b).AssignableTo(t.In(0)) {
		return false, false
	}

	return m.Call([]reflect.Value{reflect.ValueOf(b)})[0].Bool(), true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func isEmpty(v any) bool {
	if isNil(v) {
		return true
	}

	rv := reflect.ValueOf(v)

	return (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.Len() == 0
}

// CompareAny orders values of arbitrary type: numbers and strings by value,
// bools false first, anything else by its fmt rendering. Values of
// different types are ordered by type name first.
func CompareAny(a, b any) int {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return cmp.Compare(boolInt(ra.IsValid()), boolInt(rb.IsValid()))
	}

	if ra.Type() != rb.Type() {
		return cmp.Compare(ra.Type().String(), rb.Type().String())
	}

	switch ra.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(ra.Int(), rb.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(ra.Uint(), rb.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(ra.Float(), rb.Float())
	case reflect.String:
		return cmp.Compare(ra.String(), rb.String())
	case reflect.Bool:
		return cmp.Compare(boolInt(ra.Bool()), boolInt(rb.Bool()))
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
