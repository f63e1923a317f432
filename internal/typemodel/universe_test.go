package typemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pkg = "example.com/people"

func testUniverse() *Universe {
	u := NewUniverse()

	u.Add(&TypeDecl{
		ID:       TypeID{PkgPath: pkg, Name: "Person"},
		Kind:     DeclInterface,
		Exported: true,
		Methods: []Method{
			{Name: "GetName", Results: []*TypeRef{Basic("string")}, Abstract: true, Exported: true},
			{Name: "GetTags", Results: []*TypeRef{Slice(Basic("string"))}, Abstract: true, Exported: true},
			{Name: "With", Params: []*TypeRef{Basic("int")}, Results: []*TypeRef{Basic("int")}, Abstract: true},
		},
	})

	u.Add(&TypeDecl{
		ID:           TypeID{PkgPath: pkg, Name: "PersonBuilder"},
		Kind:         DeclStruct,
		Exported:     true,
		Embeds:       []*TypeRef{Unresolved(pkg, "PersonBuilderBase")},
		Constructors: []Constructor{{Accessible: true}},
	})

	u.Add(&TypeDecl{
		ID:         TypeID{PkgPath: pkg, Name: "Box"},
		Kind:       DeclStruct,
		TypeParams: []string{"T"},
		Methods: []Method{
			{Name: "Get", Results: []*TypeRef{TypeParam("T")}},
		},
	})

	u.Add(&TypeDecl{
		ID:   TypeID{PkgPath: pkg, Name: "Named"},
		Kind: DeclInterface,
		Methods: []Method{
			{Name: "GetName", Results: []*TypeRef{Basic("string")}, Abstract: true},
		},
	})

	u.AddFunc(Func{
		PkgPath: pkg,
		Name:    "NewPersonBuilder",
		Results: []*TypeRef{Pointer(Named(pkg, "PersonBuilder"))},
	})

	u.AddFunc(Func{PkgPath: pkg, Name: "Other", Results: []*TypeRef{Basic("int")}})

	return u
}

func TestUniverse_AbstractGetterCandidates(t *testing.T) {
	u := testUniverse()

	got := u.AbstractGetterCandidates(TypeID{PkgPath: pkg, Name: "Person"})
	require.Len(t, got, 2)
	assert.Equal(t, "GetName", got[0].Name)
	assert.Equal(t, "GetTags", got[1].Name)

	assert.Empty(t, u.AbstractGetterCandidates(TypeID{PkgPath: pkg, Name: "Missing"}))
}

func TestUniverse_ReturnType(t *testing.T) {
	u := testUniverse()

	got, ok := u.ReturnType(Named(pkg, "Box", Basic("int")), "Get")
	require.True(t, ok)
	assert.Equal(t, "int", got.String())

	got, ok = u.ReturnType(Pointer(Named(pkg, "Box", Slice(Basic("string")))), "Get")
	require.True(t, ok)
	assert.Equal(t, "[]string", got.String())

	_, ok = u.ReturnType(Named(pkg, "Box"), "Missing")
	assert.False(t, ok)
}

func TestUniverse_IsSubtype(t *testing.T) {
	u := testUniverse()

	builder := Named(pkg, "PersonBuilder")

	assert.True(t, u.IsSubtype(builder, Unresolved(pkg, "PersonBuilderBase")))
	assert.True(t, u.IsSubtype(builder, Unresolved("other/pkg", "PersonBuilderBase")), "simple name match")
	assert.True(t, u.IsSubtype(builder, Named(pkg, "PersonBuilderBase")), "qualified match")
	assert.False(t, u.IsSubtype(builder, Named("other/pkg", "PersonBuilderBase")))
	assert.True(t, u.IsSubtype(Named(pkg, "Person"), Named(pkg, "Named")), "method set superset")
	assert.False(t, u.IsSubtype(Named(pkg, "Named"), Named(pkg, "Person")))
	assert.True(t, u.IsSubtype(builder, Any()))
}

func TestUniverse_FindNestedAndFactories(t *testing.T) {
	u := testUniverse()

	d, ok := u.FindNested(TypeID{PkgPath: pkg, Name: "Person"}, "Builder")
	require.True(t, ok)
	assert.Equal(t, "PersonBuilder", d.ID.Name)
	assert.True(t, d.HasZeroConstructor())

	fns := u.Factories(TypeID{PkgPath: pkg, Name: "PersonBuilder"})
	require.Len(t, fns, 1)
	assert.Equal(t, "NewPersonBuilder", fns[0].Name)
}

func TestUniverse_Normalize(t *testing.T) {
	u := testUniverse()
	u.Add(&TypeDecl{
		ID:   TypeID{PkgPath: pkg, Name: "Holder"},
		Kind: DeclInterface,
		Methods: []Method{
			{Name: "GetPerson", Results: []*TypeRef{Named(pkg, "Person")}, Abstract: true},
		},
	})

	u.Normalize()

	d, _ := u.Lookup(TypeID{PkgPath: pkg, Name: "Holder"})
	assert.True(t, d.Methods[0].Results[0].IsNillable())
}

func TestUniverse_Types(t *testing.T) {
	u := testUniverse()

	var names []string
	for _, d := range u.Package(pkg) {
		names = append(names, d.ID.Name)
	}

	assert.Equal(t, []string{"Box", "Named", "Person", "PersonBuilder"}, names)
}
