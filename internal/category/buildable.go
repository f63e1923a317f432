package category

import (
	"fmt"

	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// BuildableStrategy handles properties whose type has its own builder. The
// builder holds a lazily created nested builder; Build builds it.
type BuildableStrategy struct {
	base
	nested *Nested
}

// NewBuildable binds the Buildable category to p.
func NewBuildable(p *schema.Property, nested *Nested) *BuildableStrategy {
	return &BuildableStrategy{base: base{prop: p, cat: Buildable}, nested: nested}
}

// Nested returns the builder description of the property type.
func (s *BuildableStrategy) Nested() *Nested { return s.nested }

func (s *BuildableStrategy) builderPtr() *typemodel.TypeRef {
	return typemodel.Pointer(s.nested.Builder)
}

func (s *BuildableStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.builderPtr(), Property: s.prop.Name}}
}

func (s *BuildableStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *BuildableStrategy) RegisterHelpers(env *Env) {
	s.nested.registerHelper(env)
}

func (s *BuildableStrategy) getBuilder() string {
	return fmt.Sprintf("%s.%s()", Recv, s.suffixed("Get", "Builder"))
}

func (s *BuildableStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	n := s.nested

	var set []string
	if p.Type.IsNillable() {
		set = append(set, "if value == nil {", f+" = nil", "return "+Recv, "}")
	}

	if n.ToBuilder {
		set = append(set, f+" = value.ToBuilder()")
	} else {
		set = append(set, f+" = "+n.NewExpr(env), f+".MergeFrom(value)")
	}

	return []model.Method{
		env.fluent(p, s.method("Set"), model.OpSet,
			fmt.Sprintf("%s replaces the nested builder with one holding value.", s.method("Set")),
			[]model.Param{param("value", p.Type)}, set...),
		env.fluent(p, s.suffixed("Set", "Builder"), model.OpSetBuilder,
			fmt.Sprintf("%s copies builder. Later changes to builder are not seen.", s.suffixed("Set", "Builder")),
			[]model.Param{param("builder", s.builderPtr())},
			f+" = "+n.NewExpr(env),
			n.mergeBuilder(f, "builder")),
		{
			Name:     s.suffixed("Get", "Builder"),
			Property: p.Name,
			Op:       model.OpGetBuilder,
			Results:  []*typemodel.TypeRef{s.builderPtr()},
			Body: []string{
				fmt.Sprintf("if %s == nil {", f),
				f + " = " + n.NewExpr(env),
				"}",
				"return " + f,
			},
			Doc: fmt.Sprintf("%s returns the nested builder, creating it on first use.", s.suffixed("Get", "Builder")),
		},
		env.fluent(p, s.method("Mutate"), model.OpMutate, "",
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{s.builderPtr()}))},
			"mutator("+s.getBuilder()+")"),
	}
}

func (s *BuildableStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *BuildableStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("Set"), expr)}
}

func (s *BuildableStrategy) MergeFromValue(*Env) []string {
	get := fmt.Sprintf("%s.%s()", Source, s.prop.Getter)
	if !s.prop.Type.IsNillable() {
		return []string{fmt.Sprintf("%s.MergeFrom(%s)", s.getBuilder(), get)}
	}

	x := "_" + s.prop.Field

	return []string{
		fmt.Sprintf("if %s := %s; %s != nil {", x, get, x),
		fmt.Sprintf("%s.MergeFrom(%s)", s.getBuilder(), x),
		"}",
	}
}

func (s *BuildableStrategy) MergeFromBuilder(*Env) []string {
	f := field(Other, s.prop)

	return []string{
		fmt.Sprintf("if %s != nil {", f),
		s.nested.mergeBuilder(s.getBuilder(), f),
		"}",
	}
}

func (s *BuildableStrategy) Clear(env *Env) []string {
	if env.Fresh {
		return []string{fmt.Sprintf("%s = %s", field(Recv, s.prop), field(Defaults, s.prop))}
	}

	return []string{field(Recv, s.prop) + " = nil"}
}

func (s *BuildableStrategy) FinalAssign(env *Env, partial bool) []string {
	dst := field(Target, s.prop)
	if partial {
		return []string{fmt.Sprintf("%s = %s.BuildPartial()", dst, s.getBuilder())}
	}

	x := "_" + s.prop.Field

	return []string{
		fmt.Sprintf("%s, err := %s.Build()", x, s.getBuilder()),
		"if err != nil {",
		fmt.Sprintf("return nil, %s.Errorf(\"%%s: %%w\", %q, err)", env.pkg("fmt"), s.prop.Name),
		"}",
		fmt.Sprintf("%s = %s", dst, x),
	}
}

func (s *BuildableStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *BuildableStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &buildableSlot{env: env}
}

type buildableSlot struct {
	env SlotEnv
	nb  NestedBuilder
}

func (s *buildableSlot) builder() (NestedBuilder, error) {
	if s.nb == nil {
		if s.env.NewNested == nil {
			return nil, fmt.Errorf("%w: no nested builder for %s", ErrUnsupported, s.env.Property)
		}

		s.nb = s.env.NewNested()
	}

	return s.nb, nil
}

func (s *buildableSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpSet, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.nb = nil
		if args[0] == nil {
			return nil, nil
		}

		nb, err := s.builder()
		if err != nil {
			return nil, err
		}

		return nil, nb.MergeFrom(args[0])
	case model.OpSetBuilder:
		src, err := argAt[NestedBuilder](op, args, 0)
		if err != nil {
			return nil, err
		}

		s.nb = nil

		nb, err := s.builder()
		if err != nil {
			return nil, err
		}

		return nil, nb.MergeFromBuilder(src)
	case model.OpGetBuilder:
		return s.builder()
	case model.OpMutate:
		fn, err := argAt[func(NestedBuilder)](op, args, 0)
		if err != nil {
			return nil, err
		}

		nb, err := s.builder()
		if err != nil {
			return nil, err
		}

		fn(nb)

		return nil, nil
	default:
		return nil, unsupported(op)
	}
}

func (s *buildableSlot) Present() bool {
	return true
}

func (s *buildableSlot) Clear() {
	s.nb = nil
}

func (s *buildableSlot) ResetFrom(fresh Slot) {
	s.nb = nil
	if f, ok := fresh.(*buildableSlot); ok {
		s.nb = f.nb
	}
}

func (s *buildableSlot) MergeValue(v any, present bool) error {
	if !present || v == nil {
		return nil
	}

	nb, err := s.builder()
	if err != nil {
		return err
	}

	return nb.MergeFrom(v)
}

func (s *buildableSlot) MergeSlot(other Slot) error {
	o, ok := other.(*buildableSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	if o.nb == nil {
		return nil
	}

	nb, err := s.builder()
	if err != nil {
		return err
	}

	return nb.MergeFromBuilder(o.nb)
}

func (s *buildableSlot) Freeze(partial bool) (any, error) {
	nb, err := s.builder()
	if err != nil {
		return nil, err
	}

	if partial {
		return nb.BuildPartial(), nil
	}

	v, err := nb.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.env.Property, err)
	}

	return v, nil
}
