package category

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// MultisetStrategy handles buildkit.Multiset[E] properties.
type MultisetStrategy struct {
	base
	elem *typemodel.TypeRef
}

// NewMultiset binds the Multiset category to p.
func NewMultiset(p *schema.Property, elem *typemodel.TypeRef) *MultisetStrategy {
	return &MultisetStrategy{base: base{prop: p, cat: Multiset}, elem: elem}
}

func (s *MultisetStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: bkRef("MultisetField", s.elem), Property: s.prop.Name}}
}

func (s *MultisetStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *MultisetStrategy) NeedsDefaults(env *Env) bool { return env.Fresh }

func (s *MultisetStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	add := s.method("Add")
	intT := typemodel.Basic("int")

	return []model.Method{
		env.fluent(p, add, model.OpAdd,
			fmt.Sprintf("%s adds one occurrence of each element.", add),
			[]model.Param{variadic("elements", s.elem)},
			"for _, e := range elements {",
			fmt.Sprintf("%s.%s(e, 1)", Recv, s.method("AddCopiesTo")),
			"}"),
		env.fluent(p, s.method("AddAll"), model.OpAddAll, "",
			[]model.Param{param("elements", p.Type)},
			"for e, n := range elements.Entries() {",
			fmt.Sprintf("%s.%s(e, n)", Recv, s.method("AddCopiesTo")),
			"}"),
		env.fluent(p, s.suffixed("Add", "Seq"), model.OpAddSeq, "",
			[]model.Param{param("elements", seqOf(s.elem))},
			"for e := range elements {",
			fmt.Sprintf("%s.%s(e)", Recv, add),
			"}"),
		env.fluent(p, s.method("AddCopiesTo"), model.OpAddCopies,
			fmt.Sprintf("%s adds occurrences copies of element. It panics when occurrences is negative.", s.method("AddCopiesTo")),
			[]model.Param{param("element", s.elem), param("occurrences", intT)},
			f+".AddCopies(element, occurrences)"),
		env.fluent(p, s.method("SetCountOf"), model.OpSetCount,
			fmt.Sprintf("%s sets the occurrences of element. It panics when count is negative.", s.method("SetCountOf")),
			[]model.Param{param("element", s.elem), param("count", intT)},
			f+".SetCount(element, count)"),
		env.fluent(p, s.method("Mutate"), model.OpMutate, "",
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{typemodel.Pointer(bkRef("MultisetEditor", s.elem))}))},
			fmt.Sprintf("%s.Mutate(mutator, func(e %s) { %s.%s(e) })", f, env.q(s.elem), Recv, add)),
		env.fluent(p, s.method("Clear"), model.OpClear, "", nil, f+".Clear()"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{bkRef("ReadOnlyMultiset", s.elem)},
			Body:     []string{"return " + f + ".View()"},
		},
	}
}

func (s *MultisetStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *MultisetStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{
		fmt.Sprintf("%s.%s()", Recv, s.method("Clear")),
		fmt.Sprintf("%s.%s(%s)", Recv, s.method("AddAll"), expr),
	}
}

func (s *MultisetStrategy) MergeFromValue(env *Env) []string {
	return replaceUnlessDefault(env, s, func(x string) string { return x + ".Len() == 0" })
}

func (s *MultisetStrategy) MergeFromBuilder(*Env) []string {
	return []string{fmt.Sprintf("%s.%s(%s.Freeze())", Recv, s.method("AddAll"), field(Other, s.prop))}
}

func (s *MultisetStrategy) Clear(env *Env) []string {
	return collectionClear(env, s.prop)
}

func (s *MultisetStrategy) FinalAssign(*Env, bool) []string {
	return []string{fmt.Sprintf("%s = %s.Freeze()", field(Target, s.prop), field(Recv, s.prop))}
}

func (s *MultisetStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *MultisetStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &multisetSlot{env: env}
}

type multisetSlot struct {
	env SlotEnv
	f   buildkit.MultisetField[any]
}

func (s *multisetSlot) addAll(v any) error {
	if m, ok := v.(buildkit.Multiset[any]); ok {
		s.f.AddAll(m)

		return nil
	}

	seq, err := toSeq(v)
	if err != nil {
		return err
	}

	s.f.AddSeq(seq)

	return nil
}

func (s *multisetSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpAdd:
		s.f.Add(args...)

		return nil, nil
	case model.OpAddAll, model.OpAddSeq:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		return nil, s.addAll(args[0])
	case model.OpFromComputed:
		s.f.Clear()

		return s.Call(model.OpAddAll, args...)
	case model.OpAddCopies, model.OpSetCount:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes two arguments", ErrArgument, op)
		}

		n, err := intArg(op, args, 1)
		if err != nil {
			return nil, err
		}

		if n < 0 {
			return nil, fmt.Errorf("%w: %s with negative count %d", ErrArgument, op, n)
		}

		if op == model.OpAddCopies {
			s.f.AddCopies(args[0], n)
		} else {
			s.f.SetCount(args[0], n)
		}

		return nil, nil
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.MultisetEditor[any])](op, args, 0)
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
	case model.OpClear:
		s.f.Clear()

		return nil, nil
	case model.OpGet:
		return s.f.View(), nil
	default:
		return nil, unsupported(op)
	}
}

func (s *multisetSlot) Present() bool { return true }

func (s *multisetSlot) Clear() { s.f.Clear() }

func (s *multisetSlot) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*multisetSlot); ok {
		s.f.AddAll(f.f.Freeze())
	}
}

func (s *multisetSlot) MergeValue(v any, present bool) error {
	if !present || isFreshDefault(s.env, v, func(f Slot) any { return f.(*multisetSlot).f.Freeze() }) {
		return nil
	}

	s.f.Clear()

	return s.addAll(v)
}

func (s *multisetSlot) MergeSlot(other Slot) error {
	o, ok := other.(*multisetSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.AddAll(o.f.Freeze())

	return nil
}

func (s *multisetSlot) Freeze(bool) (any, error) {
	return s.f.Freeze(), nil
}
