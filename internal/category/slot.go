package category

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
)

// ErrUnsupported is returned by Slot.Call for operations a category lacks.
var ErrUnsupported = errors.New("unsupported operation")

// ErrArgument is returned by Slot.Call for arguments of the wrong shape.
var ErrArgument = errors.New("invalid argument")

// Slot is the runtime storage of one property inside a builder.
type Slot interface {
	// Call performs a property operation and returns its result, if any.
	Call(op model.Op, args ...any) (any, error)
	// Present reports whether the property holds a value that a merge
	// would transfer.
	Present() bool
	// Clear resets the slot to its zero state.
	Clear()
	// ResetFrom copies the state of a slot taken from a pristine builder.
	ResetFrom(fresh Slot)
	// MergeValue merges the getter result of a value. present is false
	// when the source is a partial lacking the property.
	MergeValue(v any, present bool) error
	// MergeSlot merges the same property of another builder.
	MergeSlot(other Slot) error
	// Freeze returns what a built value stores for the property.
	Freeze(partial bool) (any, error)
}

// NestedBuilder is the runtime view of a nested buildable's builder.
type NestedBuilder interface {
	Build() (any, error)
	BuildPartial() any
	Clear()
	MergeFrom(v any) error
	MergeFromBuilder(other NestedBuilder) error
}

// SlotEnv connects a slot to the builder owning it.
type SlotEnv struct {
	Type     string
	Property string
	Required bool
	// MarkSet removes the property from the builder's unset set.
	MarkSet func()
	// IsUnset reports whether the property is still in the unset set.
	IsUnset func() bool
	// Route invokes the builder's own method performing op on the property,
	// which may be overridden.
	Route func(op model.Op, args ...any) error
	// NewNested returns a fresh nested builder, for buildable properties
	// and list-of-buildable elements.
	NewNested func() NestedBuilder
	// Fresh returns the slot of a pristine builder, nil under the zero
	// value convention.
	Fresh func() Slot
}

func (e SlotEnv) notSet() error {
	return buildkit.NotSetError{Type: e.Type, Property: e.Property}
}

func (e SlotEnv) markSet() {
	if e.MarkSet != nil {
		e.MarkSet()
	}
}

func (e SlotEnv) unset() bool {
	return e.Required && e.IsUnset != nil && e.IsUnset()
}

func (e SlotEnv) fresh() Slot {
	if e.Fresh == nil {
		return nil
	}

	return e.Fresh()
}

// route sends op through the builder, or falls back to the slot itself.
func (e SlotEnv) route(s Slot, op model.Op, args ...any) error {
	if e.Route != nil {
		return e.Route(op, args...)
	}

	_, err := s.Call(op, args...)

	return err
}

func unsupported(op model.Op) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, op)
}

func argAt[T any](op model.Op, args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("%w: %s needs %d arguments", ErrArgument, op, i+1)
	}

	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s argument %d is %T, want %T", ErrArgument, op, i, args[i], zero)
	}

	return v, nil
}

// intArg accepts any integer kind.
func intArg(op model.Op, args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: %s needs %d arguments", ErrArgument, op, i+1)
	}

	rv := reflect.ValueOf(args[i])
	if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64 {
		return int(rv.Int()), nil
	}

	return 0, fmt.Errorf("%w: %s argument %d is %T, want int", ErrArgument, op, i, args[i])
}

type allSeq interface {
	All() iter.Seq[any]
}

type allSeq2 interface {
	All() iter.Seq2[any, any]
}

// toSeq accepts slices, iterators and containers exposing All.
func toSeq(v any) (iter.Seq[any], error) {
	switch s := v.(type) {
	case nil:
		return func(func(any) bool) {}, nil
	case []any:
		return func(yield func(any) bool) {
			for _, e := range s {
				if !yield(e) {
					return
				}
			}
		}, nil
	case iter.Seq[any]:
		return s, nil
	case func(func(any) bool):
		return s, nil
	case allSeq:
		return s.All(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, nil
	case reflect.Map:
		// map[E]struct{} used as a set
		return func(yield func(any) bool) {
			for _, k := range sortedKeys(rv) {
				if !yield(k.Interface()) {
					return
				}
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T is not iterable", ErrArgument, v)
	}
}

// toSeq2 accepts maps, pair iterators and containers exposing All.
func toSeq2(v any) (iter.Seq2[any, any], error) {
	switch s := v.(type) {
	case nil:
		return func(func(any, any) bool) {}, nil
	case iter.Seq2[any, any]:
		return s, nil
	case func(func(any, any) bool):
		return s, nil
	case allSeq2:
		return s.All(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: %T is not a map", ErrArgument, v)
	}

	return func(yield func(any, any) bool) {
		for _, k := range sortedKeys(rv) {
			if !yield(k.Interface(), rv.MapIndex(k).Interface()) {
				return
			}
		}
	}, nil
}

func sortedKeys(rv reflect.Value) []reflect.Value {
	keys := rv.MapKeys()
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && buildkit.CompareAny(keys[j-1].Interface(), keys[j].Interface()) > 0; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}

	return keys
}

func collect(seq iter.Seq[any]) []any {
	var out []any
	for e := range seq {
		out = append(out, e)
	}

	return out
}

// isEmpty reports whether a container value holds no element.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	if l, ok := v.(interface{ Len() int }); ok {
		return l.Len() == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}
