package builderstate

import (
	"errors"
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/category"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
)

var (
	// ErrUnknownProperty is returned for property names the datatype lacks.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrMismatch is returned when mixing builders or values of different types.
	ErrMismatch = errors.New("datatype mismatch")
)

// Key selects a builder method by property and operation.
type Key struct {
	Property string
	Op       model.Op
}

// Override replaces a builder method. It may delegate to Builder.Super.
type Override func(b *Builder, args ...any) error

// Type is the executable schema of a datatype.
type Type struct {
	Datatype   *schema.Datatype
	Strategies []category.Strategy
	// Defaults runs on every new builder, like the setters of a builder
	// factory. Nil means a new builder is the zero value.
	Defaults func(b *Builder) error
	// Nested returns fresh builders for buildable properties and
	// list-of-buildable elements, keyed by property name.
	Nested map[string]func() category.NestedBuilder
	// Overrides replace builder methods, the way methods declared on a user
	// builder shadow the generated ones.
	Overrides map[Key]Override

	index map[string]int
	seed  buildkit.UnsetSet
	names []string
}

// NewType binds strategies, one per property of dt in declaration order.
func NewType(dt *schema.Datatype, strategies []category.Strategy) (*Type, error) {
	if len(strategies) != len(dt.Properties) {
		return nil, fmt.Errorf("%w: %s has %d properties but %d strategies",
			ErrMismatch, dt.ID.Name, len(dt.Properties), len(strategies))
	}

	t := &Type{
		Datatype:   dt,
		Strategies: strategies,
		Nested:     map[string]func() category.NestedBuilder{},
		Overrides:  map[Key]Override{},
		index:      make(map[string]int, len(strategies)),
		names:      dt.PropertyNames(),
	}

	var required []int

	for i, s := range strategies {
		p := dt.Properties[i]
		if s.Property() != p {
			return nil, fmt.Errorf("%w: strategy %d is bound to %s, want %s", ErrMismatch, i, s.Property().Name, p.Name)
		}

		t.index[p.Name] = i

		if s.Required() {
			required = append(required, i)
		}
	}

	t.seed = buildkit.NewUnsetSet(required...)

	return t, nil
}

// Name returns the datatype name.
func (t *Type) Name() string {
	return t.Datatype.ID.Name
}

func (t *Type) lookup(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no property %q", ErrUnknownProperty, t.Name(), name)
	}

	return i, nil
}

// NestedFactory returns builders of t for use as t's nested builders in
// other types. Defaults failures leave the new builder at its zero state.
func NestedFactory(t *Type) func() category.NestedBuilder {
	return func() category.NestedBuilder {
		b, err := New(t)
		if err != nil {
			b = newBare(t)
		}

		return b.AsNested()
	}
}
