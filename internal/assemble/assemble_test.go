package assemble

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/category"
	"builder-generator/internal/common"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const testPkg = "example.com/people"

func prop(name string, t *typemodel.TypeRef) *schema.Property {
	c := common.Capitalize(name)

	return &schema.Property{
		Name:        name,
		Capitalized: c,
		AllCaps:     common.AllCaps(name),
		Field:       common.SafeIdent(name),
		Getter:      "Get" + c,
		Type:        t,
	}
}

func person(convention schema.Convention, props ...*schema.Property) *schema.Datatype {
	id := typemodel.TypeID{PkgPath: testPkg, Name: "Person"}
	dt := &schema.Datatype{
		ID:             id,
		Kind:           typemodel.DeclInterface,
		Properties:     props,
		Value:          "personValue",
		Partial:        "personPartial",
		PartialBuilder: "personPartialBuilder",
		Builder: schema.Builder{
			Name:       "PersonBuilder",
			Generated:  "PersonBuilder",
			Convention: convention,
		},
		Extensible: convention == schema.ConventionZeroValue,
		Defaults:   map[string]bool{},
	}

	if convention == schema.ConventionFactory {
		dt.Builder.Declared = true
		dt.Builder.Generated = "PersonBuilderBase"
		dt.Builder.Factory = "NewPersonBuilder"
	}

	dt.Result = dt.Ref()

	return dt
}

// standardPerson has a required name, a list of tags and an optional nickname.
func standardPerson(convention schema.Convention) (*schema.Datatype, []category.Strategy) {
	str := typemodel.Basic("string")
	name := prop("name", str)
	tags := prop("tags", typemodel.Slice(str))
	nick := prop("nick", typemodel.Named(typemodel.BuildkitPath, "Optional", str))

	dt := person(convention, name, tags, nick)

	return dt, []category.Strategy{
		category.NewDefault(name, false),
		category.NewList(tags, str, nil),
		category.NewOptional(nick, category.OptionalWrapper, str),
	}
}

func body(m *model.Method) string {
	return strings.Join(m.Body, "\n")
}

func method(t *testing.T, d *model.Descriptor, name string) *model.Method {
	t.Helper()

	m, ok := d.Method(name)
	require.True(t, ok, "%s.%s missing; have %v", d.Name, name, d.MethodNames())

	return m
}

func fieldNames(fs []model.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}

	return out
}

func TestAssemble_ZeroValueBuilder(t *testing.T) {
	dt, strategies := standardPerson(schema.ConventionZeroValue)

	triad, err := Assemble(dt, strategies)
	require.NoError(t, err)

	assert.Equal(t, []model.Const{
		{Name: "personNameIndex", Value: "0"},
		{Name: "personTagsIndex", Value: "1"},
		{Name: "personNickIndex", Value: "2"},
	}, triad.Consts)

	var funcs []string
	for _, f := range triad.Funcs {
		funcs = append(funcs, f.Name)
	}

	assert.Equal(t, []string{"personPropertyNames", "newPersonPartialBuilder", "NewPersonBuilder"}, funcs)
	assert.Equal(t, `var personPropertyNames = []string{"name", "tags", "nick"}`, triad.Funcs[0].Code)

	b := &triad.Builder
	assert.Equal(t, "PersonBuilder", b.Name)
	assert.Equal(t, []string{"_unset", "_init", "_partial", "name", "tags", "nick"}, fieldNames(b.Fields))

	for _, m := range b.Methods {
		if m.Name == "init" {
			continue
		}

		require.NotEmpty(t, m.Body, m.Name)
		assert.Equal(t, "b.init()", m.Body[0], m.Name)
	}

	init := method(t, b, "init")
	assert.Contains(t, init.Body, "b._unset = buildkit.NewUnsetSet(personNameIndex)")

	build := body(method(t, b, "Build"))
	assert.Contains(t, build, "if b._partial {\nreturn b.BuildPartial(), nil\n}")
	assert.Contains(t, build, `return nil, &buildkit.UnsetPropertiesError{Type: "Person", Properties: b._unset.Names(personPropertyNames)}`)
	assert.Contains(t, build, "dst := &personValue{}")
	assert.Equal(t, "Person", method(t, b, "Build").Results[0].Format(nil))

	partial := body(method(t, b, "BuildPartial"))
	assert.Contains(t, partial, "dst := &personPartial{_unset: b._unset.Clone()}")

	clear := method(t, b, "Clear")
	assert.NotContains(t, body(clear), "_defaults")
	assert.Equal(t, []string{"b._unset = buildkit.NewUnsetSet(personNameIndex)", "return b"}, clear.Body[len(clear.Body)-2:])

	merge := body(method(t, b, "MergeFrom"))
	assert.Contains(t, merge, "var _unset buildkit.UnsetSet\nif p, ok := value.(*personPartial); ok {\n_unset = p._unset\n}")

	mergeBuilder := method(t, b, "MergeFromBuilder")
	assert.Equal(t, "other.init()", mergeBuilder.Body[1])
	assert.Equal(t, "*PersonBuilder", mergeBuilder.Params[0].Type.Format(nil))
}

func TestAssemble_ValueAndPartial(t *testing.T) {
	dt, strategies := standardPerson(schema.ConventionZeroValue)

	triad, err := Assemble(dt, strategies)
	require.NoError(t, err)

	v := &triad.Value
	assert.Equal(t, []string{"name", "tags", "nick"}, fieldNames(v.Fields))
	assert.Equal(t, []string{"return v.name"}, method(t, v, "GetName").Body)
	assert.Equal(t, []string{"b := &PersonBuilder{}", "b.MergeFrom(v)", "return b"}, method(t, v, "ToBuilder").Body)
	assert.Contains(t, v.MethodNames(), "Equal")
	assert.Contains(t, v.MethodNames(), "Hash")
	assert.Contains(t, v.MethodNames(), "String")

	p := &triad.Partial
	assert.Equal(t, []string{"_unset", "name", "tags", "nick"}, fieldNames(p.Fields))
	assert.Equal(t, []string{
		"if v._unset.Has(personNameIndex) {",
		`panic(buildkit.NotSetError{Type: "Person", Property: "name"})`,
		"}",
		"return v.name",
	}, method(t, p, "GetName").Body)
	assert.Equal(t, []string{"b := newPersonPartialBuilder()", "b.MergeFrom(v)", "return b"}, method(t, p, "ToBuilder").Body)
	assert.Contains(t, body(method(t, p, "Equal")), "v._unset.Equal(o._unset)")

	require.NotNil(t, triad.PartialBuilder)
	assert.Equal(t, model.KindPartialBuilder, triad.PartialBuilder.Kind)

	categories := make([]string, len(triad.Properties))
	for i, pm := range triad.Properties {
		categories[i] = pm.Category
	}

	assert.Empty(t, cmp.Diff([]string{"default", "list", "optional"}, categories))
	assert.True(t, triad.Properties[0].Required)
}

func TestAssemble_FactoryBuilder(t *testing.T) {
	dt, strategies := standardPerson(schema.ConventionFactory)

	triad, err := Assemble(dt, strategies)
	require.NoError(t, err)

	assert.Nil(t, triad.PartialBuilder)

	for _, f := range triad.Funcs {
		assert.NotEqual(t, "NewPersonBuilder", f.Name, "declared builders bring their own factory")
	}

	b := &triad.Builder
	assert.Equal(t, "PersonBuilderBase", b.Name)
	assert.NotContains(t, fieldNames(b.Fields), "_partial")
	assert.NotContains(t, body(method(t, b, "Build")), "_partial")

	clear := method(t, b, "Clear")
	assert.Equal(t, []string{"b.init()", "_defaults := NewPersonBuilder()", "_defaults.init()"}, clear.Body[:3])
	assert.Contains(t, clear.Body, "b._unset = _defaults._unset.Clone()")
	assert.Contains(t, clear.Body, "b.tags = _defaults.tags")
	assert.Equal(t, "*PersonBuilderBase", clear.Results[0].Format(nil))

	assert.Contains(t, body(method(t, b, "MergeFrom")), "_defaults := NewPersonBuilder()")
	assert.Equal(t, "*PersonBuilder", method(t, b, "MergeFromBuilder").Params[0].Type.Format(nil))

	assert.Equal(t, []string{"panic(buildkit.ErrPartialToBuilder)"}, method(t, &triad.Partial, "ToBuilder").Body)
	assert.Equal(t, "b := NewPersonBuilder()", method(t, &triad.Value, "ToBuilder").Body[0])
}

func TestAssemble_NoRequiredProperties(t *testing.T) {
	str := typemodel.Basic("string")
	tags := prop("tags", typemodel.Slice(str))
	dt := person(schema.ConventionZeroValue, tags)

	triad, err := Assemble(dt, []category.Strategy{category.NewList(tags, str, nil)})
	require.NoError(t, err)

	assert.NotContains(t, body(method(t, &triad.Builder, "MergeFrom")), "_unset")
	assert.NotContains(t, body(method(t, &triad.Builder, "Build")), "UnsetPropertiesError")
	assert.Contains(t, method(t, &triad.Builder, "init").Body, "b._unset = buildkit.NewUnsetSet()")
}

func TestAssemble_StructSharesValueAndPartial(t *testing.T) {
	str := typemodel.Basic("string")
	name := prop("name", str)
	dt := person(schema.ConventionZeroValue, name)
	dt.Kind = typemodel.DeclStruct
	dt.Value = "PersonValue"
	dt.Partial = "PersonValue"
	dt.Result = typemodel.Pointer(typemodel.Named(testPkg, "PersonValue"))
	dt.Constructor = "NewPerson"
	dt.ConstructorPointer = true

	triad, err := Assemble(dt, []category.Strategy{category.NewDefault(name, false)})
	require.NoError(t, err)

	assert.Empty(t, triad.Partial.Fields)
	assert.Empty(t, triad.Partial.Methods)

	v := &triad.Value
	require.NotEmpty(t, v.Fields)
	assert.True(t, v.Fields[0].Embedded)
	assert.Equal(t, []string{"Person", "_partial", "_unset", "name"}, fieldNames(v.Fields))
	assert.Equal(t, "if v._unset.Has(personNameIndex) {", method(t, v, "GetName").Body[0])
	assert.Contains(t, body(method(t, v, "ToBuilder")), "if v._partial {\nb = newPersonPartialBuilder()\n}")
	assert.Equal(t, "any", method(t, v, "Equal").Params[0].Type.Format(nil))

	b := &triad.Builder
	assert.Contains(t, body(method(t, b, "Build")), "dst := &PersonValue{Person: *NewPerson()}")
	assert.Contains(t, body(method(t, b, "BuildPartial")),
		"dst := &PersonValue{Person: *NewPerson(), _partial: true, _unset: b._unset.Clone()}")
	assert.Contains(t, body(method(t, b, "MergeFrom")), "_unset := value._unset")
}

func TestAssemble_SerializableInterface(t *testing.T) {
	dt, strategies := standardPerson(schema.ConventionZeroValue)
	dt.Serializable = true

	triad, err := Assemble(dt, strategies)
	require.NoError(t, err)

	assert.Contains(t, triad.Value.MethodNames(), "MarshalJSON")
	assert.Contains(t, triad.Partial.MethodNames(), "MarshalJSON")
}

func TestAssemble_InternalErrors(t *testing.T) {
	dt, strategies := standardPerson(schema.ConventionZeroValue)

	_, err := Assemble(dt, strategies[:1])
	require.ErrorIs(t, err, ErrInternal)

	swapped := []category.Strategy{strategies[1], strategies[0], strategies[2]}
	triad, err := Assemble(dt, swapped)
	require.ErrorIs(t, err, ErrInternal)
	assert.Nil(t, triad)
	assert.Contains(t, err.Error(), "Person")
}

func TestNames(t *testing.T) {
	dt, _ := standardPerson(schema.ConventionZeroValue)

	assert.Equal(t, "personTagsIndex", IndexConst(dt, dt.Properties[1]))
	assert.Equal(t, "personPropertyNames", NamesVar(dt))
	assert.Equal(t, "newPersonPartialBuilder", PartialBuilderFunc(dt))
}
