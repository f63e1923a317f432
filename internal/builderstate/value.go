package builderstate

import (
	"builder-generator/buildkit"
	"builder-generator/internal/category"
	"builder-generator/internal/standard"
)

// Value is an immutable built value, or a partial when required properties
// may be missing.
type Value struct {
	typ     *Type
	values  []any
	unset   buildkit.UnsetSet
	partial bool
}

// Type returns the datatype of v.
func (v *Value) Type() *Type {
	return v.typ
}

// IsPartial reports whether v came from BuildPartial.
func (v *Value) IsPartial() bool {
	return v.partial
}

// Unset returns the required properties a partial lacks.
func (v *Value) Unset() []string {
	return v.unset.Names(v.typ.names)
}

// Get returns the named property. Getting a required property a partial
// lacks fails with a buildkit.NotSetError.
func (v *Value) Get(property string) (any, error) {
	i, err := v.typ.lookup(property)
	if err != nil {
		return nil, err
	}

	if v.partial && v.unset.Has(i) {
		return nil, buildkit.NotSetError{Type: v.typ.Name(), Property: property}
	}

	return v.values[i], nil
}

func (v *Value) missing(i int) bool {
	return v.partial && v.unset.Has(i)
}

// Equal reports whether o holds the same properties. Partials never equal
// values.
func (v *Value) Equal(o *Value) bool {
	if o == nil || v.typ != o.typ || v.partial != o.partial || !v.unset.Equal(o.unset) {
		return false
	}

	for i := range v.values {
		if v.missing(i) {
			continue
		}

		if !buildkit.Equal(v.values[i], o.values[i]) {
			return false
		}
	}

	return true
}

// Hash is consistent with Equal.
func (v *Value) Hash() uint64 {
	h := buildkit.HashOf(v.typ.Name())

	for i, x := range v.values {
		if !v.missing(i) {
			h = buildkit.Combine(h, buildkit.HashOf(x))
		}
	}

	if v.partial {
		h = buildkit.Combine(h, v.unset.Hash())
		h = buildkit.Combine(h, buildkit.HashOf(true))
	}

	return h
}

// String renders v as Type{a=1, b=x}, omitting absent properties.
func (v *Value) String() string {
	shown := make([]standard.Shown, len(v.values))

	for i, x := range v.values {
		s := standard.Shown{Label: v.typ.names[i], Present: !v.missing(i), Value: x}

		switch v.typ.Strategies[i].Category() {
		case category.Optional:
			if o, ok := x.(buildkit.Optional[any]); ok {
				s.Value, ok = o.Get()
				s.Present = s.Present && ok
			}
		case category.Nullable:
			s.Present = s.Present && x != nil
		}

		shown[i] = s
	}

	return standard.Render(v.typ.Name(), shown)
}

// ToBuilder returns a builder holding the properties of v. A partial yields
// an always-partial builder, which only extensible datatypes have.
func (v *Value) ToBuilder() (*Builder, error) {
	var (
		b   *Builder
		err error
	)

	if v.partial {
		b, err = NewPartial(v.typ)
	} else {
		b, err = New(v.typ)
	}

	if err != nil {
		return nil, err
	}

	if err := b.MergeFrom(v); err != nil {
		return nil, err
	}

	return b, nil
}
