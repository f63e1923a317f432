package category

import (
	"fmt"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// DefaultStrategy is the fallback category. Its property is required,
// unless the builder factory always assigns it.
type DefaultStrategy struct {
	base
	hasDefault bool
}

// NewDefault binds the Default category to p.
func NewDefault(p *schema.Property, hasDefault bool) *DefaultStrategy {
	return &DefaultStrategy{base: base{prop: p, cat: Default}, hasDefault: hasDefault}
}

func (s *DefaultStrategy) Required() bool   { return !s.hasDefault }
func (s *DefaultStrategy) HasDefault() bool { return s.hasDefault }

func (s *DefaultStrategy) NeedsDefaults(*Env) bool { return s.hasDefault }

func (s *DefaultStrategy) BuilderFields(*Env) []model.Field {
	return []model.Field{{Name: s.prop.Field, Type: s.prop.Type, Property: s.prop.Name}}
}

func (s *DefaultStrategy) ValueFields(env *Env) []model.Field {
	return s.BuilderFields(env)
}

func (s *DefaultStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	t := p.Type
	f := field(Recv, p)

	set := []string{f + " = value"}
	if s.Required() {
		set = append(set, fmt.Sprintf("%s._unset.Remove(%s)", Recv, env.Index))
	}

	mapper := funcOf([]*typemodel.TypeRef{t}, t)
	methods := []model.Method{
		env.fluent(p, s.method("Set"), model.OpSet,
			fmt.Sprintf("%s sets the value returned by %s.", s.method("Set"), p.Getter),
			[]model.Param{param("value", t)}, set...),
	}

	if s.Required() {
		methods = append(methods,
			model.Method{
				Name:     s.method("Map"),
				Property: p.Name,
				Op:       model.OpMap,
				Params:   []model.Param{param("mapper", mapper)},
				Results:  []*typemodel.TypeRef{env.self(), typemodel.Error()},
				Body: []string{
					fmt.Sprintf("if %s._unset.Has(%s) {", Recv, env.Index),
					fmt.Sprintf("return %s, %s", Recv, env.notSet(p)),
					"}",
					fmt.Sprintf("return %s.%s(mapper(%s)), nil", Recv, s.method("Set"), f),
				},
				Doc: fmt.Sprintf("%s replaces the value with the result of mapper. It fails when the value is not set.", s.method("Map")),
			},
			model.Method{
				Name:     s.method("Get"),
				Property: p.Name,
				Op:       model.OpGet,
				Results:  []*typemodel.TypeRef{t, typemodel.Error()},
				Body: []string{
					fmt.Sprintf("if %s._unset.Has(%s) {", Recv, env.Index),
					fmt.Sprintf("return %s, %s", f, env.notSet(p)),
					"}",
					fmt.Sprintf("return %s, nil", f),
				},
			})

		return methods
	}

	return append(methods,
		model.Method{
			Name:     s.method("Map"),
			Property: p.Name,
			Op:       model.OpMap,
			Params:   []model.Param{param("mapper", mapper)},
			Results:  []*typemodel.TypeRef{env.self()},
			Body:     []string{fmt.Sprintf("return %s.%s(mapper(%s))", Recv, s.method("Set"), f)},
		},
		model.Method{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{t},
			Body:     []string{"return " + f},
		})
}

func (s *DefaultStrategy) ValueGetter(*Env) model.Method {
	return s.getter(s.prop.Type)
}

func (s *DefaultStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("Set"), expr)}
}

func (s *DefaultStrategy) MergeFromValue(env *Env) []string {
	get := fmt.Sprintf("%s.%s()", Source, s.prop.Getter)
	if s.Required() {
		return append([]string{fmt.Sprintf("if !%s.Has(%s) {", Unset, env.Index)},
			append(s.FromComputed(env, get), "}")...)
	}

	x := "_" + s.prop.Field
	eq := equalExpr(env, s.prop.Type, x, field(Defaults, s.prop))

	return append([]string{fmt.Sprintf("if %s := %s; !(%s) {", x, get, eq)},
		append(s.FromComputed(env, x), "}")...)
}

func (s *DefaultStrategy) MergeFromBuilder(env *Env) []string {
	set := s.FromComputed(env, field(Other, s.prop))
	if !s.Required() {
		return set
	}

	return append([]string{fmt.Sprintf("if !%s._unset.Has(%s) {", Other, env.Index)}, append(set, "}")...)
}

func (s *DefaultStrategy) Clear(env *Env) []string {
	if env.Fresh {
		return []string{fmt.Sprintf("%s = %s", field(Recv, s.prop), field(Defaults, s.prop))}
	}

	return []string{fmt.Sprintf("%s = *new(%s)", field(Recv, s.prop), env.q(s.prop.Type))}
}

func (s *DefaultStrategy) FinalAssign(*Env, bool) []string {
	return []string{fmt.Sprintf("%s = %s", field(Target, s.prop), field(Recv, s.prop))}
}

func (s *DefaultStrategy) Fragment(env *Env) model.Fragment {
	return plainFragment(env, s.prop, s.prop.Type)
}

func (s *DefaultStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = s.Required()

	return &defaultSlot{env: env}
}

type defaultSlot struct {
	env SlotEnv
	v   any
}

func (s *defaultSlot) set(v any) {
	s.v = v
	s.env.markSet()
}

func (s *defaultSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpSet, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.set(args[0])

		return nil, nil
	case model.OpMap:
		fn, err := argAt[func(any) any](op, args, 0)
		if err != nil {
			return nil, err
		}

		if s.env.unset() {
			return nil, s.env.notSet()
		}

		return nil, s.env.route(s, model.OpSet, fn(s.v))
	case model.OpGet:
		if s.env.unset() {
			return nil, s.env.notSet()
		}

		return s.v, nil
	default:
		return nil, unsupported(op)
	}
}

func (s *defaultSlot) Present() bool {
	return !s.env.unset()
}

func (s *defaultSlot) Clear() {
	s.v = nil
}

func (s *defaultSlot) ResetFrom(fresh Slot) {
	s.v = nil
	if f, ok := fresh.(*defaultSlot); ok {
		s.v = f.v
	}
}

func (s *defaultSlot) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	if !s.env.Required {
		if f, ok := s.env.fresh().(*defaultSlot); ok && buildkit.Equal(v, f.v) {
			return nil
		}
	}

	s.set(v)

	return nil
}

func (s *defaultSlot) MergeSlot(other Slot) error {
	o, ok := other.(*defaultSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	if o.Present() {
		s.set(o.v)
	}

	return nil
}

func (s *defaultSlot) Freeze(bool) (any, error) {
	return s.v, nil
}
