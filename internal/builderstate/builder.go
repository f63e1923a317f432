package builderstate

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/category"
	"builder-generator/internal/model"
)

// Builder is a mutable builder of one datatype.
type Builder struct {
	typ     *Type
	slots   []category.Slot
	unset   buildkit.UnsetSet
	partial bool
}

// New returns a pristine builder of t, running t.Defaults.
func New(t *Type) (*Builder, error) {
	b := newBare(t)

	if t.Defaults != nil {
		if err := t.Defaults(b); err != nil {
			return nil, fmt.Errorf("%s defaults: %w", t.Name(), err)
		}
	}

	return b, nil
}

// NewPartial returns a builder whose Build always yields a partial. Only
// extensible datatypes have one.
func NewPartial(t *Type) (*Builder, error) {
	if !t.Datatype.Extensible {
		return nil, fmt.Errorf("%s: %w", t.Name(), buildkit.ErrPartialToBuilder)
	}

	b, err := New(t)
	if err != nil {
		return nil, err
	}

	b.partial = true

	return b, nil
}

func newBare(t *Type) *Builder {
	b := &Builder{typ: t, unset: t.seed.Clone()}

	for i, s := range t.Strategies {
		b.slots = append(b.slots, s.NewSlot(b.slotEnv(i)))
	}

	return b
}

func (b *Builder) slotEnv(i int) category.SlotEnv {
	p := b.typ.Datatype.Properties[i]

	env := category.SlotEnv{
		Type:     b.typ.Name(),
		Property: p.Name,
		MarkSet:  func() { b.unset.Remove(i) },
		IsUnset:  func() bool { return b.unset.Has(i) },
		Route: func(op model.Op, args ...any) error {
			_, err := b.dispatch(i, op, args)
			return err
		},
		NewNested: b.typ.Nested[p.Name],
	}

	if b.typ.Defaults != nil {
		env.Fresh = func() category.Slot {
			fresh, err := New(b.typ)
			if err != nil {
				return nil
			}

			return fresh.slots[i]
		}
	}

	return env
}

// Type returns the datatype the builder builds.
func (b *Builder) Type() *Type {
	return b.typ
}

func (b *Builder) dispatch(i int, op model.Op, args []any) (any, error) {
	name := b.typ.Datatype.Properties[i].Name
	if o, ok := b.typ.Overrides[Key{Property: name, Op: op}]; ok {
		return nil, o(b, args...)
	}

	return b.slots[i].Call(op, args...)
}

// Call performs op on the named property through any override.
func (b *Builder) Call(property string, op model.Op, args ...any) (any, error) {
	i, err := b.typ.lookup(property)
	if err != nil {
		return nil, err
	}

	return b.dispatch(i, op, args)
}

// Super performs op on the named property, bypassing overrides.
func (b *Builder) Super(property string, op model.Op, args ...any) (any, error) {
	i, err := b.typ.lookup(property)
	if err != nil {
		return nil, err
	}

	return b.slots[i].Call(op, args...)
}

// Set is shorthand for Call(property, model.OpSet, v).
func (b *Builder) Set(property string, v any) error {
	_, err := b.Call(property, model.OpSet, v)

	return err
}

// Unset returns the names of the required properties not yet set.
func (b *Builder) Unset() []string {
	return b.unset.Names(b.typ.names)
}

// IsPartial reports whether Build yields partials.
func (b *Builder) IsPartial() bool {
	return b.partial
}

// Build returns the value under construction. It fails listing every unset
// required property.
func (b *Builder) Build() (*Value, error) {
	if b.partial {
		return b.BuildPartial(), nil
	}

	if !b.unset.IsEmpty() {
		return nil, &buildkit.UnsetPropertiesError{Type: b.typ.Name(), Properties: b.Unset()}
	}

	v := &Value{typ: b.typ, values: make([]any, len(b.slots))}

	for i, s := range b.slots {
		x, err := s.Freeze(false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.typ.Name(), err)
		}

		v.values[i] = x
	}

	return v, nil
}

// BuildPartial returns a partial holding the properties set so far.
func (b *Builder) BuildPartial() *Value {
	v := &Value{
		typ:     b.typ,
		values:  make([]any, len(b.slots)),
		unset:   b.unset.Clone(),
		partial: true,
	}

	for i, s := range b.slots {
		if x, err := s.Freeze(true); err == nil {
			v.values[i] = x
		}
	}

	return v
}

// Clear resets every property to the state of a new builder.
func (b *Builder) Clear() error {
	if b.typ.Defaults == nil {
		for _, s := range b.slots {
			s.Clear()
		}

		b.unset = b.typ.seed.Clone()

		return nil
	}

	fresh, err := New(b.typ)
	if err != nil {
		return err
	}

	for i, s := range b.slots {
		s.ResetFrom(fresh.slots[i])
	}

	b.unset = fresh.unset.Clone()

	return nil
}

// MergeFrom copies every property of v in declaration order. Properties a
// partial lacks are left alone. A failure leaves the earlier properties
// merged.
func (b *Builder) MergeFrom(v *Value) error {
	if v.typ != b.typ {
		return fmt.Errorf("%w: merging %s into %s", ErrMismatch, v.typ.Name(), b.typ.Name())
	}

	for i, s := range b.slots {
		present := !(v.partial && v.unset.Has(i))
		if err := s.MergeValue(v.values[i], present); err != nil {
			return fmt.Errorf("%s.%s: %w", b.typ.Name(), b.typ.names[i], err)
		}
	}

	return nil
}

// MergeFromBuilder copies every property set on other.
func (b *Builder) MergeFromBuilder(other *Builder) error {
	if other.typ != b.typ {
		return fmt.Errorf("%w: merging %s into %s", ErrMismatch, other.typ.Name(), b.typ.Name())
	}

	for i, s := range b.slots {
		if err := s.MergeSlot(other.slots[i]); err != nil {
			return fmt.Errorf("%s.%s: %w", b.typ.Name(), b.typ.names[i], err)
		}
	}

	return nil
}

// AsNested adapts b to the nested builder view used by buildable slots.
func (b *Builder) AsNested() category.NestedBuilder {
	return nested{b: b}
}

type nested struct {
	b *Builder
}

func (n nested) Build() (any, error) {
	v, err := n.b.Build()
	if err != nil {
		return nil, err
	}

	return v, nil
}

func (n nested) BuildPartial() any {
	return n.b.BuildPartial()
}

func (n nested) Clear() {
	_ = n.b.Clear()
}

func (n nested) MergeFrom(v any) error {
	val, ok := v.(*Value)
	if !ok {
		return fmt.Errorf("%w: %T is not a %s", ErrMismatch, v, n.b.typ.Name())
	}

	return n.b.MergeFrom(val)
}

func (n nested) MergeFromBuilder(other category.NestedBuilder) error {
	o, ok := other.(nested)
	if !ok {
		return fmt.Errorf("%w: %T is not a %s builder", ErrMismatch, other, n.b.typ.Name())
	}

	return n.b.MergeFromBuilder(o.b)
}
