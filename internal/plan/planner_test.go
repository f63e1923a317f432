package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/category"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const pkg = "example.com/people"

func ref(expr string) *typemodel.TypeRef {
	r, err := typemodel.ParseExpr(expr, typemodel.ExprContext{PkgPath: pkg})
	if err != nil {
		panic(err)
	}

	return r
}

func getter(name, result string) typemodel.Method {
	return typemodel.Method{Name: name, Results: []*typemodel.TypeRef{ref(result)}, Abstract: true, Exported: true}
}

func iface(name string, methods ...typemodel.Method) *typemodel.TypeDecl {
	return &typemodel.TypeDecl{
		ID:       typemodel.TypeID{PkgPath: pkg, Name: name},
		Kind:     typemodel.DeclInterface,
		Exported: true,
		Generate: true,
		Methods:  methods,
	}
}

func id(name string) typemodel.TypeID {
	return typemodel.TypeID{PkgPath: pkg, Name: name}
}

func peopleUniverse() *typemodel.Universe {
	u := typemodel.NewUniverse()
	u.Add(iface("Person",
		getter("GetName", "string"),
		getter("GetTags", "[]string"),
		getter("GetAddress", "Address"),
		getter("GetNickname", "*string"),
	))
	u.Add(iface("Address", getter("GetCity", "string")))

	hidden := iface("secret", getter("GetCode", "int"))
	u.Add(hidden)

	return u
}

func TestPlan_BatchNestsPendingBuilders(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(u, u, DefaultConfig())

	res, err := p.Plan([]typemodel.TypeID{id("Person"), id("Address")})
	require.NoError(t, err)
	require.Len(t, res.Types, 2)

	person, ok := res.Type("Person")
	require.True(t, ok)
	assert.Equal(t, []category.Category{
		category.Default, category.List, category.Buildable, category.Nullable,
	}, person.Categories())
	require.NotNil(t, person.Triad)
	assert.Equal(t, "PersonBuilder", person.Triad.Builder.Name)

	state, err := person.State()
	require.NoError(t, err)
	assert.Equal(t, "Person", state.Name())

	assert.Len(t, res.ByPackage()[pkg], 2)
}

func TestPlan_AddressAloneIsDefault(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(u, u, DefaultConfig())

	res, err := p.Plan([]typemodel.TypeID{id("Person")})
	require.NoError(t, err)

	person, ok := res.Type("Person")
	require.True(t, ok)
	assert.Equal(t, category.Default, person.Categories()[2],
		"without a builder in the batch the address is a plain property")
}

func TestPlan_TypeErrorsSkipOnlyThatType(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(u, u, DefaultConfig())

	res, err := p.Plan([]typemodel.TypeID{id("secret"), id("Address"), id("Missing")})
	require.NoError(t, err)

	require.Len(t, res.Types, 1)
	assert.Equal(t, "Address", res.Types[0].Datatype.ID.Name)
	assert.Contains(t, res.Diagnostics.Codes(), diagnostic.CodeTypeNotExported)
	assert.Contains(t, res.Diagnostics.Codes(), diagnostic.CodeTypeNotFound)
	assert.NotContains(t, res.Diagnostics.Codes(), diagnostic.CodeInternal)
}

func TestPlan_StrictMode(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(u, u, Config{StrictMode: true})

	res, err := p.Plan([]typemodel.TypeID{id("secret"), id("Address")})
	require.ErrorIs(t, err, ErrStrict)
	assert.Len(t, res.Types, 1)
}

type panicking struct {
	typemodel.Provider
}

func (p panicking) AbstractGetterCandidates(typemodel.TypeID) []typemodel.Method {
	panic("boom")
}

func TestPlan_PanicIsInternalDiagnostic(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(panicking{Provider: u}, nil, DefaultConfig())

	res, err := p.Plan([]typemodel.TypeID{id("Address")})
	require.NoError(t, err)
	assert.Empty(t, res.Types)
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeInternal, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, "Address", res.Diagnostics.Errors[0].Type)
	assert.Contains(t, res.Diagnostics.Errors[0].Message, "boom")
}

func TestPending(t *testing.T) {
	u := peopleUniverse()
	p := NewPlanner(u, u, DefaultConfig())

	res, err := p.Plan([]typemodel.TypeID{id("Address")})
	require.NoError(t, err)

	pending := Pending(u, []*schema.Datatype{res.Types[0].Datatype})
	n, ok := pending[id("Address")]
	require.True(t, ok)
	assert.Equal(t, "AddressBuilder", n.Builder.ID.Name)
	assert.Empty(t, n.Factory)
	assert.True(t, n.MergeFromBuilder)
	assert.False(t, n.ToBuilder)
}

func TestCandidates(t *testing.T) {
	u := peopleUniverse()
	u.Add(&typemodel.TypeDecl{ID: typemodel.TypeID{PkgPath: "example.com/other", Name: "Car"}, Generate: true})
	u.Add(&typemodel.TypeDecl{ID: id("Plain")})

	all := Candidates(u)
	assert.Len(t, all, 4)

	names := []string{}
	for _, c := range Candidates(u, pkg) {
		names = append(names, c.Name)
	}

	assert.ElementsMatch(t, []string{"Person", "Address", "secret"}, names)
}
