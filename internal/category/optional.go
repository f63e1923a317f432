package category

import (
	"fmt"
	"reflect"

	"builder-generator/buildkit"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// OptionalKind is the wrapper shape of an optional property.
type OptionalKind int

const (
	OptionalWrapper   OptionalKind = iota // buildkit.Optional[T]
	OptionalSQL                           // sql.Null[T]
	OptionalPrimitive                     // sql.NullString and friends
)

// PrimitiveOptional describes a non-generic sql.NullX type.
type PrimitiveOptional struct {
	// Field is the value field of the wrapper ("String" in sql.NullString).
	Field string
	Elem  *typemodel.TypeRef
}

// PrimitiveOptionals lists the primitive optional wrappers of database/sql.
var PrimitiveOptionals = map[string]PrimitiveOptional{
	"NullString":  {Field: "String", Elem: typemodel.Basic("string")},
	"NullInt64":   {Field: "Int64", Elem: typemodel.Basic("int64")},
	"NullInt32":   {Field: "Int32", Elem: typemodel.Basic("int32")},
	"NullInt16":   {Field: "Int16", Elem: typemodel.Basic("int16")},
	"NullByte":    {Field: "Byte", Elem: typemodel.Basic("byte")},
	"NullFloat64": {Field: "Float64", Elem: typemodel.Basic("float64")},
	"NullBool":    {Field: "Bool", Elem: typemodel.Basic("bool")},
	"NullTime":    {Field: "Time", Elem: typemodel.Named("time", "Time")},
}

// OptionalStrategy handles properties holding a value or nothing.
type OptionalStrategy struct {
	base
	kind OptionalKind
	elem *typemodel.TypeRef
	// prim is set for OptionalPrimitive.
	prim PrimitiveOptional
}

// NewOptional binds the Optional category to p, whose wrapper holds elem.
func NewOptional(p *schema.Property, kind OptionalKind, elem *typemodel.TypeRef) *OptionalStrategy {
	s := &OptionalStrategy{base: base{prop: p, cat: Optional}, kind: kind, elem: elem}
	if kind == OptionalPrimitive {
		s.prim = PrimitiveOptionals[p.Type.ID.Name]
		s.elem = s.prim.Elem
	}

	return s
}

// Kind returns the wrapper shape.
func (s *OptionalStrategy) Kind() OptionalKind { return s.kind }

// Elem returns the wrapped type.
func (s *OptionalStrategy) Elem() *typemodel.TypeRef { return s.elem }

func (s *OptionalStrategy) hasField() string {
	return "_has" + s.prop.Capitalized
}

func (s *OptionalStrategy) fields() []model.Field {
	if s.kind == OptionalPrimitive {
		return []model.Field{
			{Name: s.prop.Field, Type: s.elem, Property: s.prop.Name},
			{Name: s.hasField(), Type: typemodel.Basic("bool"), Property: s.prop.Name},
		}
	}

	return []model.Field{{Name: s.prop.Field, Type: typemodel.Pointer(s.elem), Property: s.prop.Name}}
}

func (s *OptionalStrategy) BuilderFields(*Env) []model.Field { return s.fields() }
func (s *OptionalStrategy) ValueFields(*Env) []model.Field   { return s.fields() }

func (s *OptionalStrategy) present(recv string) string {
	if s.kind == OptionalPrimitive {
		return recv + "." + s.hasField()
	}

	return field(recv, s.prop) + " != nil"
}

func (s *OptionalStrategy) current(recv string) string {
	if s.kind == OptionalPrimitive {
		return field(recv, s.prop)
	}

	return "*" + field(recv, s.prop)
}

// materialize builds the wrapper from the stored state of recv.
func (s *OptionalStrategy) materialize(env *Env, recv string) string {
	f := field(recv, s.prop)

	switch s.kind {
	case OptionalSQL:
		return fmt.Sprintf("nullOf(%s)", f)
	case OptionalPrimitive:
		return fmt.Sprintf("%s{%s: %s, Valid: %s}", env.q(s.prop.Type), s.prim.Field, f, recv+"."+s.hasField())
	default:
		return fmt.Sprintf("%s.OptionalOf(%s)", env.bk(), f)
	}
}

func (s *OptionalStrategy) RegisterHelpers(env *Env) {
	if s.kind != OptionalSQL {
		return
	}

	env.Helpers.Register(Optional.String(), "nullOf", func() string {
		return `// nullOf returns a valid sql.Null holding *p, or an invalid one for nil.
func nullOf[T any](p *T) sql.Null[T] {
	if p == nil {
		return sql.Null[T]{}
	}

	return sql.Null[T]{V: *p, Valid: true}
}`
	})
}

func (s *OptionalStrategy) clearLines(env *Env) []string {
	f := field(Recv, s.prop)
	if s.kind == OptionalPrimitive {
		return []string{
			fmt.Sprintf("%s = *new(%s)", f, env.q(s.elem)),
			fmt.Sprintf("%s.%s = false", Recv, s.hasField()),
		}
	}

	return []string{f + " = nil"}
}

func (s *OptionalStrategy) Mutators(env *Env) []model.Method {
	p := s.prop
	f := field(Recv, p)
	set, clear := s.method("Set"), s.method("Clear")

	var store []string
	if s.kind == OptionalPrimitive {
		store = []string{f + " = value", fmt.Sprintf("%s.%s = true", Recv, s.hasField())}
	} else {
		store = []string{f + " = &value"}
	}

	var unwrap []string
	switch s.kind {
	case OptionalSQL:
		unwrap = []string{"if value.Valid {", fmt.Sprintf("return %s.%s(value.V)", Recv, set)}
	case OptionalPrimitive:
		unwrap = []string{"if value.Valid {", fmt.Sprintf("return %s.%s(value.%s)", Recv, set, s.prim.Field)}
	default:
		unwrap = []string{"if x, ok := value.Get(); ok {", fmt.Sprintf("return %s.%s(x)", Recv, set)}
	}

	clearLines := s.clearLines(env)

	return []model.Method{
		env.fluent(p, set, model.OpSet,
			fmt.Sprintf("%s sets the value returned by %s.", set, p.Getter),
			[]model.Param{param("value", s.elem)}, store...),
		{
			Name:     s.method("SetOptional"),
			Property: p.Name,
			Op:       model.OpSetOptional,
			Params:   []model.Param{param("value", p.Type)},
			Results:  []*typemodel.TypeRef{env.self()},
			Body:     append(unwrap, "}", fmt.Sprintf("return %s.%s()", Recv, clear)),
			Doc:      fmt.Sprintf("%s sets or clears the value from its wrapper.", s.method("SetOptional")),
		},
		{
			Name:     s.method("SetNullable"),
			Property: p.Name,
			Op:       model.OpSetNullable,
			Params:   []model.Param{param("value", typemodel.Pointer(s.elem))},
			Results:  []*typemodel.TypeRef{env.self()},
			Body: []string{
				"if value != nil {",
				fmt.Sprintf("return %s.%s(*value)", Recv, set),
				"}",
				fmt.Sprintf("return %s.%s()", Recv, clear),
			},
			Doc: fmt.Sprintf("%s sets the value, or clears it for nil.", s.method("SetNullable")),
		},
		env.fluent(p, s.method("Map"), model.OpMap,
			fmt.Sprintf("%s replaces a present value with the result of mapper.", s.method("Map")),
			[]model.Param{param("mapper", funcOf([]*typemodel.TypeRef{s.elem}, s.elem))},
			fmt.Sprintf("if %s {", s.present(Recv)),
			fmt.Sprintf("%s.%s(mapper(%s))", Recv, set, s.current(Recv)),
			"}"),
		env.fluent(p, clear, model.OpClear, "", nil, clearLines...),
		{
			Name:     s.method("Get"),
			Property: p.Name,
			Op:       model.OpGet,
			Results:  []*typemodel.TypeRef{p.Type},
			Body:     []string{"return " + s.materialize(env, Recv)},
		},
	}
}

func (s *OptionalStrategy) ValueGetter(env *Env) model.Method {
	return s.getter(s.prop.Type, "return "+s.materialize(env, ValueRcv))
}

func (s *OptionalStrategy) FromComputed(_ *Env, expr string) []string {
	return []string{fmt.Sprintf("%s.%s(%s)", Recv, s.method("SetOptional"), expr)}
}

func (s *OptionalStrategy) MergeFromValue(env *Env) []string {
	x := "_" + s.prop.Field

	var present string
	if s.kind == OptionalWrapper {
		present = x + ".IsPresent()"
	} else {
		present = x + ".Valid"
	}

	return append([]string{fmt.Sprintf("if %s := %s.%s(); %s {", x, Source, s.prop.Getter, present)},
		append(s.FromComputed(env, x), "}")...)
}

func (s *OptionalStrategy) MergeFromBuilder(*Env) []string {
	return []string{
		fmt.Sprintf("if %s {", s.present(Other)),
		fmt.Sprintf("%s.%s(%s)", Recv, s.method("Set"), s.current(Other)),
		"}",
	}
}

func (s *OptionalStrategy) Clear(env *Env) []string {
	if !env.Fresh {
		return s.clearLines(env)
	}

	lines := []string{fmt.Sprintf("%s = %s", field(Recv, s.prop), field(Defaults, s.prop))}
	if s.kind == OptionalPrimitive {
		lines = append(lines, fmt.Sprintf("%s.%s = %s.%s", Recv, s.hasField(), Defaults, s.hasField()))
	}

	return lines
}

func (s *OptionalStrategy) FinalAssign(env *Env, _ bool) []string {
	if s.kind == OptionalPrimitive {
		return []string{
			fmt.Sprintf("%s = %s", field(Target, s.prop), field(Recv, s.prop)),
			fmt.Sprintf("%s.%s = %s.%s", Target, s.hasField(), Recv, s.hasField()),
		}
	}

	return []string{fmt.Sprintf("%s = %s.ClonePtr(%s)", field(Target, s.prop), env.bk(), field(Recv, s.prop))}
}

func (s *OptionalStrategy) Fragment(env *Env) model.Fragment {
	p := s.prop

	frag := model.Fragment{
		Label:              p.Name,
		ConditionalInValue: true,
		Present:            s.present,
		Shown:              s.current,
		Equal: func(a, b string) string {
			return fmt.Sprintf("%s.Equal(%s, %s)", env.bk(), field(a, p), field(b, p))
		},
		Hash: func(recv string) string { return hashExpr(env, field(recv, p)) },
	}

	if s.kind == OptionalPrimitive {
		frag.Equal = func(a, b string) string {
			return fmt.Sprintf("%s.%s == %s.%s && %s", a, s.hasField(), b, s.hasField(),
				equalExpr(env, s.elem, field(a, p), field(b, p)))
		}
		frag.Hash = func(recv string) string {
			return fmt.Sprintf("%s.Combine(%s, %s)", env.bk(),
				hashExpr(env, field(recv, p)), hashExpr(env, recv+"."+s.hasField()))
		}
	}

	return frag
}

func (s *OptionalStrategy) NewSlot(env SlotEnv) Slot {
	env.Required = false

	return &optionalSlot{env: env}
}

// optionalSlot stores a value and a presence flag. Values expose it as
// buildkit.Optional[any].
type optionalSlot struct {
	env SlotEnv
	v   any
	ok  bool
}

func (s *optionalSlot) set(v any) {
	s.v, s.ok = v, true
}

func (s *optionalSlot) wrapper() buildkit.Optional[any] {
	if !s.ok {
		return buildkit.None[any]()
	}

	return buildkit.Some(s.v)
}

// unwrapOptional reads the wrappers accepted by SetOptional.
func unwrapOptional(v any) (any, bool, error) {
	switch o := v.(type) {
	case buildkit.Optional[any]:
		x, ok := o.Get()
		return x, ok, nil
	case interface{ Get() (any, bool) }:
		x, ok := o.Get()
		return x, ok, nil
	case nil:
		return nil, false, nil
	}

	// sql.Null[T] and sql.NullX share the Valid field
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Struct {
		valid := rv.FieldByName("Valid")
		if valid.IsValid() && valid.Kind() == reflect.Bool && rv.NumField() == 2 {
			return rv.Field(0).Interface(), valid.Bool(), nil
		}
	}

	return nil, false, fmt.Errorf("%w: %T is not an optional", ErrArgument, v)
}

func (s *optionalSlot) Call(op model.Op, args ...any) (any, error) {
	switch op {
	case model.OpSet:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		s.set(args[0])

		return nil, nil
	case model.OpSetOptional, model.OpFromComputed:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		x, ok, err := unwrapOptional(args[0])
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, s.env.route(s, model.OpClear)
		}

		return nil, s.env.route(s, model.OpSet, x)
	case model.OpSetNullable:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument", ErrArgument, op)
		}

		if args[0] == nil {
			return nil, s.env.route(s, model.OpClear)
		}

		x := args[0]
		if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return nil, s.env.route(s, model.OpClear)
			}

			x = rv.Elem().Interface()
		}

		return nil, s.env.route(s, model.OpSet, x)
	case model.OpMap:
		fn, err := argAt[func(any) any](op, args, 0)
		if err != nil || !s.ok {
			return nil, err
		}

		return nil, s.env.route(s, model.OpSet, fn(s.v))
	case model.OpClear:
		s.Clear()

		return nil, nil
	case model.OpGet:
		return s.wrapper(), nil
	default:
		return nil, unsupported(op)
	}
}

func (s *optionalSlot) Present() bool {
	return s.ok
}

func (s *optionalSlot) Clear() {
	s.v, s.ok = nil, false
}

func (s *optionalSlot) ResetFrom(fresh Slot) {
	s.Clear()
	if f, ok := fresh.(*optionalSlot); ok {
		s.v, s.ok = f.v, f.ok
	}
}

func (s *optionalSlot) MergeValue(v any, present bool) error {
	if !present {
		return nil
	}

	x, ok, err := unwrapOptional(v)
	if err != nil || !ok {
		return err
	}

	s.set(x)

	return nil
}

func (s *optionalSlot) MergeSlot(other Slot) error {
	o, ok := other.(*optionalSlot)
	if !ok {
		return fmt.Errorf("%w: merge from %T", ErrArgument, other)
	}

	if o.ok {
		s.set(o.v)
	}

	return nil
}

func (s *optionalSlot) Freeze(bool) (any, error) {
	return s.wrapper(), nil
}
