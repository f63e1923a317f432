package category

import (
	"fmt"

	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// NullableStrategy handles null-marked properties, stored as *T.
type NullableStrategy struct {
	base
}

// NewNullable binds the Nullable category to p.
func NewNullable(p *schema.Property) *NullableStrategy {
	return &NullableStrategy{base: base{prop: p, cat: Nullable}}
}

func (s *NullableStrategy) ptr() *typemodel.TypeRef {
	return typemodel.Pointer(s.prop.Type)
}

func (s *NullableStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.ptr(), Property: s.prop.Name}}
}

func (s *NullableStrategy) ValueFields(env *Env) []model.Field {
	return s.BuilderFields(env)
}

func (s *NullableStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)

	return []model.Method{
		env.fluent(p, s.method("Set"), model.OpSet,
			fmt.Sprintf("%s sets the value returned by %s. nil clears it.", s.method("Set"), p.Getter),
			[]model.Param{param("value", s.ptr())}, f+" = value"),
		env.fluent(p, s.method("Map"), model.OpMap,
			fmt.Sprintf("%s replaces a present value with the result of mapper.", s.method("Map")),
			[]model.Param{param("mapper", funcOf([]*typemodel.TypeRef{p.Type}, p.Type))},
			fmt.Sprintf("if %s != nil {", f),
			fmt.Sprintf("mapped := mapper(*%s)", f),
			fmt.Sprintf("%s.%s(&mapped)", Recv, s.method("Set")),
			"}"),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{s.ptr()},
			Body:     []string{"return " + f},
		},
	}
}

func (s *NullableStrategy) ValueGetter(env *Env) model.Method {
	return s.getter(s.ptr(), fmt.Sprintf("return %s.ClonePtr(%s)", env.bk(), field(ValueRcv, s.prop)))
}

func (s *NullableStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("Set"), expr)}
}

func (s *NullableStrategy) MergeFromValue(env *Env) []string {
	x := "_" + s.prop.Field

	return append([]string{fmt.Sprintf("if %s := %s.%s(); %s != nil {", x, Source, s.prop.Getter, x)},
		append(s.FromComputed(env, x), "}")...)
}

func (s *NullableStrategy) MergeFromBuilder(env *Env) []string {
	f := field(Other, s.prop)

	return append([]string{fmt.Sprintf("if %s != nil {", f)},
		append(s.FromComputed(env, fmt.Sprintf("%s.ClonePtr(%s)", env.bk(), f)), "}")...)
}

func (s *NullableStrategy) Clear(env *Env) []string {
	if env.Fresh {
		return []string{fmt.Sprintf("%s = %s", field(Recv, s.prop), field(Defaults, s.prop))}
	}

	return []string{field(Recv, s.prop) + " = nil"}
}

func (s *NullableStrategy) FinalAssign(env *Env, _ bool) []string {
	return []string{fmt.Sprintf("%s = %s.ClonePtr(%s)", field(Target, s.prop), env.bk(), field(Recv, s.prop))}
}

func (s *NullableStrategy) Fragment(env *Env) model.Fragment {
	p := s.prop

	return model.Fragment{
		Label:              p.Name,
		ConditionalInValue: true,
		Present:            func(recv string) string { return field(recv, p) + " != nil" },
		Shown:              func(recv string) string { return "*" + field(recv, p) },
		Equal: func(a, b string) string {
			return fmt.Sprintf("%s.Equal(%s, %s)", env.bk(), field(a, p), field(b, p))
		},
		Hash: func(recv string) string { return hashExpr(env, field(recv, p)) },
	}
}

func (s *NullableStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &nullableSlot{env: env}
}

// nullableSlot stores the value itself, nil when absent.
type nullableSlot struct {
	env SlotEnv
	v   any
}

func (s *nullableSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpSet, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.v = args[0]

		return nil, nil
	case model.OpMap:
		fn, err := argAt[func(any) any](op, args, 0)
		if err != nil || s.v == nil {
			return nil, err
		}

		return nil, s.env.route(s, model.OpSet, fn(s.v))
	case model.OpGet:
		return s.v, nil
	default:
		return nil, unsupported(op)
	}
}

func (s *nullableSlot) Present() bool {
	return s.v != nil
}

func (s *nullableSlot) Clear() {
	s.v = nil
}

func (s *nullableSlot) ResetFrom(fresh Slot) {
	s.v = nil
	if f, ok := fresh.(*nullableSlot); ok {
		s.v = f.v
	}
}

func (s *nullableSlot) MergeValue(v any, present bool) error {
	if present && v != nil {
		s.v = v
	}

	return nil
}

func (s *nullableSlot) MergeSlot(other Slot) error {
	o, ok := other.(*nullableSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	if o.v != nil {
		s.v = o.v
	}

	return nil
}

func (s *nullableSlot) Freeze(bool) (any, error) {
	return s.v, nil
}
