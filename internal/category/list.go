package category

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// ListStrategy handles []E properties.
type ListStrategy struct {
	base
	elem *typemodel.TypeRef
	// nested is set when E has a compatible builder.
	nested *Nested
}

// NewList binds the List category to p. nested may be nil.
func NewList(p *schema.Property, elem *typemodel.TypeRef, nested *Nested) *ListStrategy {
	return &ListStrategy{base: base{prop: p, cat: List}, elem: elem, nested: nested}
}

// Elem returns the element type.
func (s *ListStrategy) Elem() *typemodel.TypeRef { return s.elem }

// Nested returns the element builder, nil when elements are not buildable.
func (s *ListStrategy) Nested() *Nested { return s.nested }

func (s *ListStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: bkRef("ListField", s.elem), Property: s.prop.Name}}
}

func (s *ListStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *ListStrategy) NeedsDefaults(env *Env) bool { return env.Fresh }

func (s *ListStrategy) RegisterHelpers(env *Env) {
	if s.nested != nil {
		s.nested.registerHelper(env)
	}
}

func (s *ListStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	add := s.method("Add")

	methods := []model.Method{
		env.fluent(p, add, model.OpAdd,
			fmt.Sprintf("%s appends elements to the value returned by %s.", add, p.Getter),
			[]model.Param{variadic("elements", s.elem)}, f+".Add(elements...)"),
		env.fluent(p, s.method("AddAll"), model.OpAddAll, "",
			[]model.Param{param("elements", p.Type)},
			fmt.Sprintf("%s.%s(elements...)", Recv, add)),
		env.fluent(p, s.suffixed("Add", "Seq"), model.OpAddSeq, "",
			[]model.Param{param("elements", seqOf(s.elem))},
			"for e := range elements {",
			fmt.Sprintf("%s.%s(e)", Recv, add),
			"}"),
		env.fluent(p, s.method("Mutate"), model.OpMutate,
			fmt.Sprintf("%s edits the list in place. Added elements go through %s.", s.method("Mutate"), add),
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{typemodel.Pointer(bkRef("ListEditor", s.elem))}))},
			fmt.Sprintf("%s.Mutate(mutator, func(e %s) { %s.%s(e) })", f, env.q(s.elem), Recv, add)),
		env.fluent(p, s.method("Clear"), model.OpClear, "", nil, f+".Clear()"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{bkRef("ReadOnlyList", s.elem)},
			Body:     []string{"return " + f + ".View()"},
			Doc:      fmt.Sprintf("%s returns a live read-only view of the list.", s.method("Get")),
		},
	}

	if s.nested != nil {
		methods = append(methods, model.Method{
			Name:     s.suffixed("Add", "Builder"),
			Property: p.Name,
			Op:       model.OpAddBuilder,
			Params:   []model.Param{param("builder", typemodel.Pointer(s.nested.Builder))},
			Results:  []*typemodel.TypeRef{env.self(), typemodel.Error()},
			Body: []string{
				"e, err := builder.Build()",
				"if err != nil {",
				"return " + Recv + ", err",
				"}",
				fmt.Sprintf("return %s.%s(e), nil", Recv, add),
			},
			Doc: fmt.Sprintf("%s builds builder and appends the result.", s.suffixed("Add", "Builder")),
		})
	}

	return methods
}

func (s *ListStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *ListStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{
		fmt.Sprintf("%s.%s()", Recv, s.method("Clear")),
		fmt.Sprintf("%s.%s(%s)", Recv, s.method("AddAll"), expr),
	}
}

// replaceUnlessDefault replaces the collection with the source unless the
// source equals a fresh builder's collection.
func replaceUnlessDefault(env *Env, s Strategy, isDefault func(x string) string) []string {
	p := s.Property()
	x := "_" + p.Field

	cond := isDefault(x)
	if env.Fresh {
		cond = fmt.Sprintf("%s.Equal(%s, %s.Freeze())", env.bk(), x, field(Defaults, p))
	}

	return append([]string{fmt.Sprintf("if %s := %s.%s(); !(%s) {", x, Source, p.Getter, cond)},
		append(s.FromComputed(env, x), "}")...)
}

func (s *ListStrategy) MergeFromValue(env *Env) []string {
	return replaceUnlessDefault(env, s, func(x string) string { return fmt.Sprintf("len(%s) == 0", x) })
}

func (s *ListStrategy) MergeFromBuilder(*Env) []string {
	return []string{fmt.Sprintf("%s.%s(%s.All())", Recv, s.suffixed("Add", "Seq"), field(Other, s.prop))}
}

func (s *ListStrategy) Clear(env *Env) []string {
	return collectionClear(env, s.prop)
}

func collectionClear(env *Env, p *schema.Property) []string {
	if env.Fresh {
		return []string{fmt.Sprintf("%s = %s", field(Recv, p), field(Defaults, p))}
	}

	return []string{field(Recv, p) + ".Clear()"}
}

func (s *ListStrategy) FinalAssign(*Env, bool) []string {
	return []string{fmt.Sprintf("%s = %s.Freeze()", field(Target, s.prop), field(Recv, s.prop))}
}

func (s *ListStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *ListStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &listSlot{env: env}
}

type listSlot struct {
	env SlotEnv
	f   buildkit.ListField[any]
}

func (s *listSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpAdd:
		s.f.Add(args...)

		return nil, nil
	case model.OpAddAll, model.OpAddSeq:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		seq, err := toSeq(args[0])
		if err != nil {
			return nil, err
		}

		s.f.AddSeq(seq)

		return nil, nil
	case model.OpFromComputed:
		s.f.Clear()

		return s.Call(model.OpAddAll, args...)
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.ListEditor[any])](op, args, 0)
		if err != nil {
			return nil, err
		}

		var routeErr error
		s.f.Mutate(fn, func(e any) {
			if err := s.env.route(s, model.OpAdd, e); err != nil && routeErr == nil {
				routeErr = err
			}
		})

		return nil, routeErr
	case model.OpAddBuilder:
		nb, err := argAt[NestedBuilder](op, args, 0)
		if err != nil {
			return nil, err
		}

		e, err := nb.Build()
		if err != nil {
			return nil, err
		}

		return nil, s.env.route(s, model.OpAdd, e)
	case model.OpClear:
		s.f.Clear()

		return nil, nil
	case model.OpGet:
		return s.f.View(), nil
	default:
		return nil, unsupported(op)
	}
}

func (s *listSlot) Present() bool { return true }

func (s *listSlot) Clear() { s.f.Clear() }

func (s *listSlot) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*listSlot); ok {
		s.f.AddSeq(f.f.All())
	}
}

// isFreshDefault reports whether v equals the pristine content of the slot.
func isFreshDefault(env SlotEnv, v any, freeze func(Slot) any) bool {
	if f := env.fresh(); f != nil {
		return buildkit.Equal(v, freeze(f))
	}

	return isEmpty(v)
}

func (s *listSlot) MergeValue(v any, present bool) error {
	if !present || isFreshDefault(s.env, v, func(f Slot) any { return f.(*listSlot).f.Freeze() }) {
		return nil
	}

	seq, err := toSeq(v)
	if err != nil {
		return err
	}

	s.f.Clear()
	s.f.AddSeq(seq)

	return nil
}

func (s *listSlot) MergeSlot(other Slot) error {
	o, ok := other.(*listSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.AddSeq(o.f.All())

	return nil
}

func (s *listSlot) Freeze(bool) (any, error) {
	return s.f.Freeze(), nil
}
