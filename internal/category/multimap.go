package category

import (
	"fmt"
	"iter"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// MultimapStrategy handles buildkit.ListMultimap[K, V] and
// buildkit.SetMultimap[K, V] properties.
type MultimapStrategy struct {
	base
	key, value *typemodel.TypeRef
	// distinct is set for set multimaps.
	distinct bool
}

// NewListMultimap binds the ListMultimap category to p.
func NewListMultimap(p *schema.Property, key, value *typemodel.TypeRef) *MultimapStrategy {
	return &MultimapStrategy{base: base{prop: p, cat: ListMultimap}, key: key, value: value}
}

// NewSetMultimap binds the SetMultimap category to p.
func NewSetMultimap(p *schema.Property, key, value *typemodel.TypeRef) *MultimapStrategy {
	return &MultimapStrategy{base: base{prop: p, cat: SetMultimap}, key: key, value: value, distinct: true}
}

func (s *MultimapStrategy) fieldType() *typemodel.TypeRef {
	if s.distinct {
		return bkRef("SetMultimapField", s.key, s.value)
	}

	return bkRef("ListMultimapField", s.key, s.value)
}

func (s *MultimapStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.fieldType(), Property: s.prop.Name}}
}

func (s *MultimapStrategy) ValueFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *MultimapStrategy) NeedsDefaults(env *Env) bool { return env.Fresh && !s.distinct }

func (s *MultimapStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	put := s.method("Put")

	return []model.Method{
		env.fluent(p, put, model.OpPut,
			fmt.Sprintf("%s adds value to the values of key.", put),
			[]model.Param{param("key", s.key), param("value", s.value)}, f+".Put(key, value)"),
		env.fluent(p, s.method("PutAll"), model.OpPutAll, "",
			[]model.Param{param("entries", p.Type)},
			fmt.Sprintf("%s.%s(entries.All())", Recv, s.suffixed("Put", "Seq"))),
		env.fluent(p, s.suffixed("Put", "Seq"), model.OpPutSeq, "",
			[]model.Param{param("entries", seq2Of(s.key, s.value))},
			"for k, v := range entries {",
			fmt.Sprintf("%s.%s(k, v)", Recv, put),
			"}"),
		env.fluent(p, s.method("Remove"), model.OpRemove, "",
			[]model.Param{param("key", s.key), param("value", s.value)}, f+".Remove(key, value)"),
		env.fluent(p, s.method("RemoveAll"), model.OpRemoveAll, "",
			[]model.Param{param("key", s.key)}, f+".RemoveAll(key)"),
		env.fluent(p, s.method("Mutate"), model.OpMutate, "",
			[]model.Param{param("mutator", funcOf([]*typemodel.TypeRef{typemodel.Pointer(bkRef("MultimapEditor", s.key, s.value))}))},
			fmt.Sprintf("%s.Mutate(mutator, func(k %s, v %s) { %s.%s(k, v) })", f, env.q(s.key), env.q(s.value), Recv, put)),
		env.fluent(p, s.method("Clear"), model.OpClear, "", nil, f+".Clear()"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{bkRef("ReadOnlyMultimap", s.key, s.value)},
			Body:     []string{"return " + f + ".View()"},
		},
	}
}

func (s *MultimapStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *MultimapStrategy) FromComputed(_ *Env, expr string) []string {
	if s.distinct {
		return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("PutAll"), expr)}
	}

	return []string{
		fmt.Sprintf("%s.%s()", Recv, s.method("Clear")),
		fmt.Sprintf("%s.%s(%s)", Recv, s.method("PutAll"), expr),
	}
}

// MergeFromValue replaces list multimaps and takes the union of set
// multimaps; both are idempotent.
func (s *MultimapStrategy) MergeFromValue(env *Env) []string {
	if s.distinct {
		return s.FromComputed(env, fmt.Sprintf("%s.%s()", Source, s.prop.Getter))
	}

	return replaceUnlessDefault(env, s, func(x string) string { return x + ".Len() == 0" })
}

func (s *MultimapStrategy) MergeFromBuilder(*Env) []string {
	return []string{fmt.Sprintf("%s.%s(%s.All())", Recv, s.suffixed("Put", "Seq"), field(Other, s.prop))}
}

func (s *MultimapStrategy) Clear(env *Env) []string {
	return collectionClear(env, s.prop)
}

func (s *MultimapStrategy) FinalAssign(*Env, bool) []string {
	return []string{fmt.Sprintf("%s = %s.Freeze()", field(Target, s.prop), field(Recv, s.prop))}
}

func (s *MultimapStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *MultimapStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	if s.distinct {
		return &multimapSlot[buildkit.SetMultimap[any, any]]{env: env, f: &setMultimapStore{}}
	}

	return &multimapSlot[buildkit.ListMultimap[any, any]]{env: env, f: &listMultimapStore{}, replace: true}
}

// multimapStore abstracts over the two multimap fields.
type multimapStore[M any] interface {
	Put(k, v any)
	PutSeq(seq iter.Seq2[any, any])
	Remove(k, v any) bool
	RemoveAll(k any) []any
	Clear()
	All() iter.Seq2[any, any]
	Mutate(fn func(*buildkit.MultimapEditor[any, any]), put func(any, any))
	View() buildkit.ReadOnlyMultimap[any, any]
	Freeze() M
}

type listMultimapStore struct {
	buildkit.ListMultimapField[any, any]
}

type setMultimapStore struct {
	buildkit.SetMultimapField[any, any]
}

type multimapSlot[M any] struct {
	env SlotEnv
	f   multimapStore[M]
	// replace is set when merging a value replaces the content.
	replace bool
}

func (s *multimapSlot[M]) putAll(v any) error {
	seq, err := toSeq2(v)
	if err != nil {
		return err
	}

	s.f.PutSeq(seq)

	return nil
}

func (s *multimapSlot[M]) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpPut, model.OpRemove:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes two arguments", ErrArgument, op)
		}

		if op == model.OpPut {
			s.f.Put(args[0], args[1])
		} else {
			s.f.Remove(args[0], args[1])
		}

		return nil, nil
	case model.OpPutAll, model.OpPutSeq:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		return nil, s.putAll(args[0])
	case model.OpFromComputed:
		if s.replace {
			s.f.Clear()
		}

		return s.Call(model.OpPutAll, args...)
	case model.OpRemoveAll:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.f.RemoveAll(args[0])

		return nil, nil
	case model.OpMutate:
		fn, err := argAt[func(*buildkit.MultimapEditor[any, any])](op, args, 0)
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

func (s *multimapSlot[M]) Present() bool { return true }

func (s *multimapSlot[M]) Clear() { s.f.Clear() }

func (s *multimapSlot[M]) ResetFrom(fresh Slot) {
	s.f.Clear()
	if f, ok := fresh.(*multimapSlot[M]); ok {
		s.f.PutSeq(f.f.All())
	}
}

func (s *multimapSlot[M]) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	if s.replace {
		if isFreshDefault(s.env, v, func(f Slot) any { return f.(*multimapSlot[M]).f.Freeze() }) {
			return nil
		}

		s.f.Clear()
	}

	return s.putAll(v)
}

func (s *multimapSlot[M]) MergeSlot(other Slot) error {
	o, ok := other.(*multimapSlot[M])
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	s.f.PutSeq(o.f.All())

	return nil
}

func (s *multimapSlot[M]) Freeze(bool) (any, error) {
	return s.f.Freeze(), nil
}
