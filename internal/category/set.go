package category

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// SetStrategy handles buildkit.Set[E], map[E]struct{} and, when sorted,
// buildkit.SortedSet[E] properties.
type SetStrategy struct {
	base
	elem   *typemodel.TypeRef
	sorted bool
	// mapForm is set for map[E]struct{} properties.
	mapForm bool
}

// NewSet binds the Set category to p.
func NewSet(p *schema.Property, elem *typemodel.TypeRef, mapForm bool) *SetStrategy {
	return &SetStrategy{base: base{prop: p, cat: Set}, elem: elem, mapForm: mapForm}
}

// NewSortedSet binds the SortedSet category to p.
func NewSortedSet(p *schema.Property, elem *typemodel.TypeRef) *SetStrategy {
	return &SetStrategy{base: base{prop: p, cat: SortedSet}, elem: elem, sorted: true}
}

// Elem returns the element type.
func (s *SetStrategy) Elem() *typemodel.TypeRef { return s.elem }

func (s *SetStrategy) fieldType() *typemodel.TypeRef {
	if s.sorted {
		return bkRef("SortedSetField", s.elem)
	}

	return bkRef("SetField", s.elem)
}

func (s *SetStrategy) editorType() *typemodel.TypeRef {
	if s.sorted {
		return bkRef("SortedSetEditor", s.elem)
	}

	return bkRef("SetEditor", s.elem)
}

func (s *SetStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.fieldType(), Property: s.prop.Name}}
}

func (s *SetStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

// Init installs the natural order of ordered elements.
func (s *SetStrategy) Init(env *Env) []string {
	if !s.sorted || !s.elem.IsOrdered() {
		return nil
	}

	return []string{fmt.Sprintf("%s = %s.NewSortedSetField(%s.Compare[%s])",
		field(Recv, s.prop), env.bk(), env.pkg("cmp"), env.q(s.elem))}
}

func (s *SetStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	add := s.method("Add")

	var addAll string
	if s.mapForm {
		addAll = fmt.Sprintf("%s.%s(%s.Keys(elements))", Recv, s.suffixed("Add", "Seq"), env.pkg("maps"))
	} else {
		addAll = fmt.Sprintf("%s.%s(elements.All())", Recv, s.suffixed("Add", "Seq"))
	}

	view := bkRef("ReadOnlySet", s.elem)

	return []model.Method{
		env.fluent(p, add, model.OpAdd,
			fmt.Sprintf("%s adds elements to the set returned by %s. Duplicates are ignored.", add, p.Getter),
			[]model.Param{variadic("elements", s.elem)}, f+".Add(elements...)"),
		env.fluent(p, s.method("AddAll"), model.OpAddAll, "",
			[]model.Param{param("elements", p.Type)}, addAll),
		env.fluent(p, s.suffixed("Add", "Seq"), model.OpAddSeq, "",
			[]model.Param{param("elements", seqOf(s.elem))},
			"for e := range elements {",
			fmt.Sprintf("%s.%s(e)", Recv, add),
			"}"),
		env.fluent(p, s.method("Remove"), model.OpRemove, "",
			[]model.Param{param("element", s.elem)}, f+".Remove(element)"),
		env.fluent(p, s.method("Mutate"), model.OpMutate,
			fmt.Sprintf("%s edits the set in place. Added elements go through %s.", s.method("Mutate"), add),
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{typemodel.Pointer(s.editorType())}))},
			fmt.Sprintf("%s.Mutate(mutator, func(e %s) { %s.%s(e) })", f, env.q(s.elem), Recv, add)),
		env.fluent(p, s.method("Clear"), model.OpClear, "", nil, f+".Clear()"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{view},
			Body:     []string{"return " + f + ".View()"},
		},
	}
}

func (s *SetStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *SetStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("AddAll"), expr)}
}

// MergeFromValue takes the union, which makes repeated merges idempotent.
func (s *SetStrategy) MergeFromValue(env *Env) []string {
	return s.FromComputed(env, fmt.Sprintf("%s.%s()", Source, s.prop.Getter))
}

func (s *SetStrategy) MergeFromBuilder(*Env) []string {
	return []string{fmt.Sprintf("%s.%s(%s.All())", Recv, s.suffixed("Add", "Seq"), field(Other, s.prop))}
}

func (s *SetStrategy) Clear(env *Env) []string {
	return collectionClear(env, s.prop)
}

func (s *SetStrategy) FinalAssign(*Env, bool) []string {
	freeze := "Freeze"
	if s.mapForm {
		freeze = "FreezeMap"
	}

	return []string{fmt.Sprintf("%s = %s.%s()", field(Target, s.prop), field(Recv, s.prop), freeze)}
}

func (s *SetStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *SetStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	if s.sorted {
		return &sortedSetSlot{env: env}
	}

	return &setSlot{env: env, mapForm: s.mapForm}
}

type setSlot struct {
	env     SlotEnv
	f       buildkit.SetField[any]
	mapForm bool
}

func (s *setSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpAdd:
		s.f.Add(args...)

		return nil, nil
	case model.OpAddAll, model.OpAddSeq, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		seq, err := toSeq(args[0])
		if err != nil {
			return nil, err
		}

		s.f.AddSeq(seq)

		return nil, nil
	case model.OpRemove:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.f.Remove(args[0])

		return nil, nil
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.SetEditor[any])](op, args, 0)
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

func (s *setSlot) Present() bool { return true }

func (s *setSlot) Clear() { s.f.Clear() }

func (s *setSlot) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*setSlot); ok {
		s.f.AddSeq(f.f.All())
	}
}

func (s *setSlot) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	seq, err := toSeq(v)
	if err != nil {
		return err
	}

	s.f.AddSeq(seq)

	return nil
}

func (s *setSlot) MergeSlot(other Slot) error {
	o, ok := other.(*setSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.AddSeq(o.f.All())

	return nil
}

func (s *setSlot) Freeze(bool) (any, error) {
	if s.mapForm {
		return s.f.FreezeMap(), nil
	}

	return s.f.Freeze(), nil
}

type sortedSetSlot struct {
	env SlotEnv
	f   buildkit.SortedSetField[any]
}

func (s *sortedSetSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpAdd:
		s.f.Add(args...)

		return nil, nil
	case model.OpAddAll, model.OpAddSeq, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		seq, err := toSeq(args[0])
		if err != nil {
			return nil, err
		}

		s.f.AddSeq(seq)

		return nil, nil
	case model.OpRemove:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.f.Remove(args[0])

		return nil, nil
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.SortedSetEditor[any])](op, args, 0)
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

func (s *sortedSetSlot) Present() bool { return true }

func (s *sortedSetSlot) Clear() { s.f.Clear() }

func (s *sortedSetSlot) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*sortedSetSlot); ok {
		s.f.AddSeq(f.f.All())
	}
}

func (s *sortedSetSlot) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	seq, err := toSeq(v)
	if err != nil {
		return err
	}

	s.f.AddSeq(seq)

	return nil
}

func (s *sortedSetSlot) MergeSlot(other Slot) error {
	o, ok := other.(*sortedSetSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.AddSeq(o.f.All())

	return nil
}

func (s *sortedSetSlot) Freeze(bool) (any, error) {
	return s.f.Freeze(), nil
}
