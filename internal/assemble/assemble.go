package assemble

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"builder-generator/internal/category"
	"builder-generator/internal/common"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/standard"
	"builder-generator/internal/typemodel"
)

// ErrInternal marks failures of the assembler itself rather than of the
// user type.
var ErrInternal = errors.New("internal error")

const (
	fieldUnset   = "_unset"
	fieldInit    = "_init"
	fieldPartial = "_partial"
)

// Assemble builds the triad of dt. strategies holds one strategy per
// property of dt, in declaration order. A panic raised while assembling is
// returned as an error wrapping ErrInternal.
func Assemble(dt *schema.Datatype, strategies []category.Strategy) (triad *model.Triad, err error) {
	defer func() {
		if r := recover(); r != nil {
			triad = nil
			err = fmt.Errorf("%w: assembling %s: %v", ErrInternal, dt.ID.Name, r)
		}
	}()

	if len(strategies) != len(dt.Properties) {
		return nil, fmt.Errorf("%w: %s has %d properties but %d strategies",
			ErrInternal, dt.ID.Name, len(dt.Properties), len(strategies))
	}

	a := newAssembler(dt, strategies)

	return a.run(), nil
}

// IndexConst names the unset-set index constant of p.
func IndexConst(dt *schema.Datatype, p *schema.Property) string {
	return common.Decapitalize(dt.ID.Name) + p.Capitalized + "Index"
}

// NamesVar names the table of property names of dt.
func NamesVar(dt *schema.Datatype) string {
	return common.Decapitalize(dt.ID.Name) + "PropertyNames"
}

// PartialBuilderFunc names the constructor of always-partial builders.
func PartialBuilderFunc(dt *schema.Datatype) string {
	return "new" + common.Capitalize(dt.PartialBuilder)
}

type assembler struct {
	dt         *schema.Datatype
	strategies []category.Strategy
	envs       []*category.Env
	imports    *model.Imports
	helpers    *model.Helpers
	bk         string
}

func newAssembler(dt *schema.Datatype, strategies []category.Strategy) *assembler {
	a := &assembler{
		dt:         dt,
		strategies: strategies,
		imports:    model.NewImports(dt.ID.PkgPath),
		helpers:    model.NewHelpers(),
	}
	a.bk = a.imports.Buildkit()

	for _, p := range dt.Properties {
		a.envs = append(a.envs, &category.Env{
			Datatype: dt,
			Builder:  dt.Builder.Generated,
			Imports:  a.imports,
			Helpers:  a.helpers,
			Index:    IndexConst(dt, p),
			Fresh:    dt.Builder.Convention != schema.ConventionZeroValue,
		})
	}

	return a
}

func (a *assembler) run() *model.Triad {
	dt := a.dt

	t := &model.Triad{
		Datatype: dt,
		Helpers:  a.helpers,
		Imports:  a.imports,
	}

	for i, s := range a.strategies {
		p := s.Property()
		if p != dt.Properties[i] {
			panic(fmt.Sprintf("strategy %d belongs to %s, want %s", i, p.Name, dt.Properties[i].Name))
		}

		env := a.envs[i]
		s.RegisterHelpers(env)

		t.Properties = append(t.Properties, model.PropertyModel{
			Property:   p,
			Category:   s.Category().String(),
			Required:   s.Required(),
			HasDefault: s.HasDefault(),
			IndexConst: env.Index,
			Fragment:   s.Fragment(env),
		})
		t.Consts = append(t.Consts, model.Const{Name: env.Index, Value: strconv.Itoa(i)})
	}

	t.Funcs = append(t.Funcs, a.namesVar())
	t.Builder = a.builder()
	t.Value = a.value(t)

	if dt.SharedPartial() {
		t.Partial = model.Descriptor{Name: dt.Partial, Kind: model.KindPartial}
	} else {
		t.Partial = a.partial(t)
	}

	if dt.Extensible {
		t.PartialBuilder = &model.Descriptor{
			Name: dt.PartialBuilder,
			Kind: model.KindPartialBuilder,
			Doc:  fmt.Sprintf("%s builds partials only; it is a %s flagged as partial.", PartialBuilderFunc(dt), dt.Builder.Name),
		}
		t.Funcs = append(t.Funcs, a.partialBuilderFunc())
	}

	if !dt.Builder.Declared {
		t.Funcs = append(t.Funcs, a.builderFunc())
	}

	return t
}

func (a *assembler) namesVar() model.Func {
	quoted := make([]string, len(a.dt.Properties))
	for i, p := range a.dt.Properties {
		quoted[i] = strconv.Quote(p.Name)
	}

	name := NamesVar(a.dt)

	return model.Func{
		Name: name,
		Code: fmt.Sprintf("var %s = []string{%s}", name, strings.Join(quoted, ", ")),
	}
}

func (a *assembler) builderFunc() model.Func {
	name := "New" + a.dt.Builder.Name

	return model.Func{
		Name: name,
		Doc:  fmt.Sprintf("%s returns an empty %s.", name, a.dt.Builder.Name),
		Code: fmt.Sprintf("func %s() *%s {\n\treturn &%s{}\n}", name, a.dt.Builder.Name, a.dt.Builder.Name),
	}
}

func (a *assembler) partialBuilderFunc() model.Func {
	name := PartialBuilderFunc(a.dt)
	user := a.dt.Builder.Name

	return model.Func{
		Name: name,
		Code: fmt.Sprintf("func %s() *%s {\n\tb := &%s{}\n\tb.%s = true\n\n\treturn b\n}", name, user, user, fieldPartial),
	}
}

// newBuilder is an expression evaluating to a pristine *user builder.
func (a *assembler) newBuilder() string {
	if a.dt.Builder.Convention == schema.ConventionZeroValue {
		return "&" + a.dt.Builder.Name + "{}"
	}

	return a.dt.Builder.Factory + "()"
}

func (a *assembler) unsetSetType() *typemodel.TypeRef {
	return typemodel.Named(typemodel.BuildkitPath, "UnsetSet")
}

func (a *assembler) self() *typemodel.TypeRef {
	return typemodel.Pointer(typemodel.Named(a.dt.ID.PkgPath, a.dt.Builder.Generated))
}

func (a *assembler) userBuilder() *typemodel.TypeRef {
	return typemodel.Pointer(typemodel.Named(a.dt.ID.PkgPath, a.dt.Builder.Name))
}

func (a *assembler) required() []string {
	var out []string

	for i, s := range a.strategies {
		if s.Required() {
			out = append(out, a.envs[i].Index)
		}
	}

	return out
}

func (a *assembler) seedUnset() string {
	return fmt.Sprintf("%s.%s = %s.NewUnsetSet(%s)", category.Recv, fieldUnset, a.bk, strings.Join(a.required(), ", "))
}

// whole returns a builder method preceded by lazy initialization.
func (a *assembler) whole(name string, op model.Op, doc string, params []model.Param, results []*typemodel.TypeRef, body ...string) model.Method {
	return model.Method{
		Name:    name,
		Op:      op,
		Params:  params,
		Results: results,
		Body:    append([]string{category.Recv + ".init()"}, body...),
		Doc:     doc,
	}
}

func (a *assembler) builder() model.Descriptor {
	dt := a.dt

	d := model.Descriptor{
		Name: dt.Builder.Generated,
		Kind: model.KindBuilder,
		Doc:  fmt.Sprintf("%s holds the state of a %s under construction.", dt.Builder.Generated, dt.ID.Name),
		Fields: []model.Field{
			{Name: fieldUnset, Type: a.unsetSetType()},
			{Name: fieldInit, Type: typemodel.Basic("bool")},
		},
	}

	if dt.Extensible {
		d.Fields = append(d.Fields, model.Field{Name: fieldPartial, Type: typemodel.Basic("bool")})
	}

	for i, s := range a.strategies {
		d.Fields = append(d.Fields, s.BuilderFields(a.envs[i])...)
	}

	d.Methods = append(d.Methods, a.initMethod())

	for i, s := range a.strategies {
		for _, m := range s.Mutators(a.envs[i]) {
			m.Body = append([]string{category.Recv + ".init()"}, m.Body...)
			d.Methods = append(d.Methods, m)
		}
	}

	d.Methods = append(d.Methods,
		a.buildMethod(),
		a.buildPartialMethod(),
		a.clearMethod(),
		a.mergeFromMethod(),
		a.mergeFromBuilderMethod(),
	)

	return d
}

func (a *assembler) initMethod() model.Method {
	body := []string{
		fmt.Sprintf("if %s.%s {", category.Recv, fieldInit),
		"return",
		"}",
		fmt.Sprintf("%s.%s = true", category.Recv, fieldInit),
		a.seedUnset(),
	}

	for i, s := range a.strategies {
		body = append(body, s.Init(a.envs[i])...)
	}

	return model.Method{Name: "init", Op: model.OpInit, Body: body}
}

// structValue is the embedded user struct of struct datatypes.
func (a *assembler) structValue() string {
	dt := a.dt

	switch {
	case dt.Constructor == "":
		return dt.ID.Name + "{}"
	case dt.ConstructorPointer:
		return "*" + dt.Constructor + "()"
	default:
		return dt.Constructor + "()"
	}
}

// literal renders a composite literal of the generated type name.
func (a *assembler) literal(name string, partial bool) string {
	var elems []string

	if a.dt.Kind == typemodel.DeclStruct {
		elems = append(elems, fmt.Sprintf("%s: %s", a.dt.ID.Name, a.structValue()))
	}

	if partial {
		if a.dt.SharedPartial() {
			elems = append(elems, fieldPartial+": true")
		}

		elems = append(elems, fmt.Sprintf("%s: %s.%s.Clone()", fieldUnset, category.Recv, fieldUnset))
	}

	return fmt.Sprintf("&%s{%s}", name, strings.Join(elems, ", "))
}

func (a *assembler) buildMethod() model.Method {
	dt := a.dt

	var body []string

	if dt.Extensible {
		body = append(body,
			fmt.Sprintf("if %s.%s {", category.Recv, fieldPartial),
			fmt.Sprintf("return %s.BuildPartial(), nil", category.Recv),
			"}")
	}

	if len(a.required()) > 0 {
		body = append(body,
			fmt.Sprintf("if !%s.%s.IsEmpty() {", category.Recv, fieldUnset),
			fmt.Sprintf("return nil, &%s.UnsetPropertiesError{Type: %q, Properties: %s.%s.Names(%s)}",
				a.bk, dt.ID.Name, category.Recv, fieldUnset, NamesVar(dt)),
			"}")
	}

	body = append(body, fmt.Sprintf("%s := %s", category.Target, a.literal(dt.Value, false)))

	for i, s := range a.strategies {
		body = append(body, s.FinalAssign(a.envs[i], false)...)
	}

	body = append(body, fmt.Sprintf("return %s, nil", category.Target))

	return a.whole("Build", model.OpBuild,
		fmt.Sprintf("Build returns the %s under construction. It fails when a required property is unset.", dt.ID.Name),
		nil, []*typemodel.TypeRef{dt.Result, typemodel.Error()}, body...)
}

func (a *assembler) buildPartialMethod() model.Method {
	dt := a.dt

	body := []string{fmt.Sprintf("%s := %s", category.Target, a.literal(dt.Partial, true))}

	for i, s := range a.strategies {
		body = append(body, s.FinalAssign(a.envs[i], true)...)
	}

	body = append(body, "return "+category.Target)

	return a.whole("BuildPartial", model.OpBuildPartial,
		"BuildPartial returns a value that may lack required properties. Their getters panic.",
		nil, []*typemodel.TypeRef{dt.Result}, body...)
}

func (a *assembler) freshDefaults() []string {
	return []string{
		fmt.Sprintf("%s := %s", category.Defaults, a.newBuilder()),
		category.Defaults + ".init()",
	}
}

func (a *assembler) clearMethod() model.Method {
	var body []string

	fresh := a.dt.Builder.Convention != schema.ConventionZeroValue
	if fresh {
		body = append(body, a.freshDefaults()...)
	}

	for i, s := range a.strategies {
		body = append(body, s.Clear(a.envs[i])...)
	}

	if fresh {
		body = append(body, fmt.Sprintf("%s.%s = %s.%s.Clone()", category.Recv, fieldUnset, category.Defaults, fieldUnset))
	} else {
		body = append(body, a.seedUnset())
	}

	body = append(body, "return "+category.Recv)

	return a.whole("Clear", model.OpClearAll,
		"Clear resets every property to the state of a new builder.",
		nil, []*typemodel.TypeRef{a.self()}, body...)
}

func (a *assembler) mergeFromMethod() model.Method {
	dt := a.dt

	var body []string

	if len(a.required()) > 0 {
		if dt.SharedPartial() {
			body = append(body, fmt.Sprintf("%s := %s.%s", category.Unset, category.Source, fieldUnset))
		} else {
			body = append(body,
				fmt.Sprintf("var %s %s.UnsetSet", category.Unset, a.bk),
				fmt.Sprintf("if p, ok := %s.(*%s); ok {", category.Source, dt.Partial),
				fmt.Sprintf("%s = p.%s", category.Unset, fieldUnset),
				"}")
		}
	}

	for i, s := range a.strategies {
		if s.NeedsDefaults(a.envs[i]) {
			body = append(body, a.freshDefaults()...)

			break
		}
	}

	for i, s := range a.strategies {
		body = append(body, s.MergeFromValue(a.envs[i])...)
	}

	body = append(body, "return "+category.Recv)

	return a.whole("MergeFrom", model.OpMergeFrom,
		fmt.Sprintf("MergeFrom copies every property of %s. Properties a partial lacks are left alone.", category.Source),
		[]model.Param{{Name: category.Source, Type: dt.Result}}, []*typemodel.TypeRef{a.self()}, body...)
}

func (a *assembler) mergeFromBuilderMethod() model.Method {
	body := []string{category.Other + ".init()"}

	for i, s := range a.strategies {
		body = append(body, s.MergeFromBuilder(a.envs[i])...)
	}

	body = append(body, "return "+category.Recv)

	return a.whole("MergeFromBuilder", model.OpMergeFromBuilder,
		fmt.Sprintf("MergeFromBuilder copies every property set on %s.", category.Other),
		[]model.Param{{Name: category.Other, Type: a.userBuilder()}}, []*typemodel.TypeRef{a.self()}, body...)
}

// target returns the standard-method target of a generated value type.
func (a *assembler) target(t *model.Triad, name string, partial bool) standard.Target {
	return standard.Target{
		Datatype:   a.dt,
		Type:       name,
		Partial:    partial,
		Shared:     a.dt.SharedPartial(),
		Properties: t.Properties,
		Imports:    a.imports,
	}
}

func (a *assembler) valueFields(partial bool) []model.Field {
	var fields []model.Field

	if a.dt.Kind == typemodel.DeclStruct {
		fields = append(fields, model.Field{Name: a.dt.ID.Name, Type: typemodel.NamedID(a.dt.ID), Embedded: true})
	}

	if partial && a.dt.SharedPartial() {
		fields = append(fields, model.Field{Name: fieldPartial, Type: typemodel.Basic("bool")})
	}

	if partial {
		fields = append(fields, model.Field{Name: fieldUnset, Type: a.unsetSetType()})
	}

	for i, s := range a.strategies {
		fields = append(fields, s.ValueFields(a.envs[i])...)
	}

	return fields
}

// getters returns the value getters, guarding required properties when
// they may be unset.
func (a *assembler) getters(guard bool) []model.Method {
	var out []model.Method

	for i, s := range a.strategies {
		m := s.ValueGetter(a.envs[i])
		if guard && s.Required() {
			m.Body = append([]string{
				fmt.Sprintf("if %s.%s.Has(%s) {", category.ValueRcv, fieldUnset, a.envs[i].Index),
				fmt.Sprintf("panic(%s.NotSetError{Type: %q, Property: %q})", a.bk, a.dt.ID.Name, s.Property().Name),
				"}",
			}, m.Body...)
		}

		out = append(out, m)
	}

	return out
}

func (a *assembler) toBuilder(body ...string) model.Method {
	return model.Method{
		Name:    schema.MethodToBuilder,
		Op:      model.OpToBuilder,
		Results: []*typemodel.TypeRef{a.userBuilder()},
		Body:    body,
		Doc:     fmt.Sprintf("ToBuilder returns a %s holding the properties of %s.", a.dt.Builder.Name, category.ValueRcv),
	}
}

func (a *assembler) partialToBuilder() []string {
	if a.dt.Extensible {
		return []string{fmt.Sprintf("b := %s()", PartialBuilderFunc(a.dt))}
	}

	return []string{fmt.Sprintf("panic(%s.ErrPartialToBuilder)", a.bk)}
}

func (a *assembler) value(t *model.Triad) model.Descriptor {
	dt := a.dt
	shared := dt.SharedPartial()

	d := model.Descriptor{
		Name:    dt.Value,
		Kind:    model.KindValue,
		Doc:     fmt.Sprintf("%s is the immutable %s returned by %s.Build.", dt.Value, dt.ID.Name, dt.Builder.Name),
		Fields:  a.valueFields(shared),
		Methods: a.getters(shared),
	}

	if shared {
		d.Doc = fmt.Sprintf("%s is the immutable %s returned by %s.Build and BuildPartial.", dt.Value, dt.ID.Name, dt.Builder.Name)

		partial := a.partialToBuilder()
		if dt.Extensible {
			partial = []string{fmt.Sprintf("b = %s()", PartialBuilderFunc(dt))}
		}

		body := []string{
			fmt.Sprintf("b := %s", a.newBuilder()),
			fmt.Sprintf("if %s.%s {", category.ValueRcv, fieldPartial),
		}
		body = append(body, partial...)
		body = append(body, "}", fmt.Sprintf("b.MergeFrom(%s)", category.ValueRcv), "return b")
		d.Methods = append(d.Methods, a.toBuilder(body...))
	} else {
		d.Methods = append(d.Methods, a.toBuilder(
			fmt.Sprintf("b := %s", a.newBuilder()),
			fmt.Sprintf("b.MergeFrom(%s)", category.ValueRcv),
			"return b",
		))
	}

	tg := a.target(t, dt.Value, shared)
	if m, ok := standard.MarshalMethod(tg); ok {
		d.Methods = append(d.Methods, m)
	}

	d.Methods = append(d.Methods, standard.Methods(tg)...)

	return d
}

func (a *assembler) partial(t *model.Triad) model.Descriptor {
	dt := a.dt

	d := model.Descriptor{
		Name:    dt.Partial,
		Kind:    model.KindPartial,
		Doc:     fmt.Sprintf("%s is a %s that may lack required properties.", dt.Partial, dt.ID.Name),
		Fields:  a.valueFields(true),
		Methods: a.getters(true),
	}

	body := a.partialToBuilder()
	if dt.Extensible {
		body = append(body, fmt.Sprintf("b.MergeFrom(%s)", category.ValueRcv), "return b")
	}

	d.Methods = append(d.Methods, a.toBuilder(body...))

	tg := a.target(t, dt.Partial, true)
	if m, ok := standard.MarshalMethod(tg); ok {
		d.Methods = append(d.Methods, m)
	}

	d.Methods = append(d.Methods, standard.Methods(tg)...)

	return d
}
