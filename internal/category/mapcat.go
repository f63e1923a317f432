package category

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// MapStrategy handles map[K]V properties.
type MapStrategy struct {
	base
	key, value *typemodel.TypeRef
}

// NewMap binds the Map category to p.
func NewMap(p *schema.Property, key, value *typemodel.TypeRef) *MapStrategy {
	return &MapStrategy{base: base{prop: p, cat: Map}, key: key, value: value}
}

func (s *MapStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: bkRef("MapField", s.key, s.value), Property: s.prop.Name}}
}

func (s *MapStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *MapStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	put := s.method("Put")

	return []model.Method{
		env.fluent(p, put, model.OpPut,
			fmt.Sprintf("%s associates key with value, replacing any previous value.", put),
			[]model.Param{param("key", s.key), param("value", s.value)}, f+".Put(key, value)"),
		env.fluent(p, s.method("PutAll"), model.OpPutAll, "",
			[]model.Param{param("entries", p.Type)},
			fmt.Sprintf("%s.%s(%s.All(entries))", Recv, s.suffixed("Put", "Seq"), env.pkg("maps"))),
		env.fluent(p, s.suffixed("Put", "Seq"), model.OpPutSeq, "",
			[]model.Param{param("entries", seq2Of(s.key, s.value))},
			"for k, v := range entries {",
			fmt.Sprintf("%s.%s(k, v)", Recv, put),
			"}"),
		env.fluent(p, s.method("Remove"), model.OpRemove, "",
			[]model.Param{param("key", s.key)}, f+".Remove(key)"),
		env.fluent(p, s.method("Mutate"), model.OpMutate,
			fmt.Sprintf("%s edits the map in place. Insertions go through %s.", s.method("Mutate"), put),
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{typemodel.Pointer(bkRef("MapEditor", s.key, s.value))}))},
			fmt.Sprintf("%s.Mutate(mutator, func(k %s, v %s) { %s.%s(k, v) })", f, env.q(s.key), env.q(s.value), Recv, put)),
		env.fluent(p, s.method("Clear"), model.OpClear, "", nil, f+".Clear()"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{bkRef("ReadOnlyMap", s.key, s.value)},
			Body:     []string{"return " + f + ".View()"},
		},
	}
}

func (s *MapStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *MapStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("PutAll"), expr)}
}

func (s *MapStrategy) MergeFromValue(env *Env) []string {
	return s.FromComputed(env, fmt.Sprintf("%s.%s()", Source, s.prop.Getter))
}

func (s *MapStrategy) MergeFromBuilder(*Env) []string {
	return []string{fmt.Sprintf("%s.%s(%s.All())", Recv, s.suffixed("Put", "Seq"), field(Other, s.prop))}
}

func (s *MapStrategy) Clear(env *Env) []string {
	return collectionClear(env, s.prop)
}

func (s *MapStrategy) FinalAssign(*Env, bool) []string {
	return []string{fmt.Sprintf("%s = %s.Freeze()", field(Target, s.prop), field(Recv, s.prop))}
}

func (s *MapStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *MapStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &mapSlot{env: env}
}

type mapSlot struct {
	env SlotEnv
	f   buildkit.MapField[any, any]
}

func (s *mapSlot) putAll(v any) error {
	seq, err := toSeq2(v)
	if err != nil {
		return err
	}

	s.f.PutSeq(seq)

	return nil
}

func (s *mapSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpPut:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes two arguments", ErrArgument, op)
		}

		s.f.Put(args[0], args[1])

		return nil, nil
	case model.OpPutAll, model.OpPutSeq, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		return nil, s.putAll(args[0])
	case model.OpRemove:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.f.Remove(args[0])

		return nil, nil
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.MapEditor[any, any])](op, args, 0)
		if err != nil {
			return nil, err
		}

		var routeErr error
		s.f.Mutate(fn, func(k, v any) {
			if err := s.env.route(s, model.OpPut, k, v); err != nil && routeErr == nil {
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

func (s *mapSlot) Present() bool { return true }

func (s *mapSlot) Clear() { s.f.Clear() }

func (s *mapSlot) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*mapSlot); ok {
		s.f.PutSeq(f.f.All())
	}
}

func (s *mapSlot) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	return s.putAll(v)
}

func (s *mapSlot) MergeSlot(other Slot) error {
	o, ok := other.(*mapSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.PutSeq(o.f.All())

	return nil
}

func (s *mapSlot) Freeze(bool) (any, error) {
	return s.f.Freeze(), nil
}
