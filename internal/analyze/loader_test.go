package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/diagnostic"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const pkgPath = "example.com/people"

const peopleSrc = `package people

import "database/sql"

// Person is a person.
//
//builder:generate
type Person interface {
	Named
	GetAge() int
	IsActive() bool
	GetNickname() *string
	GetScore() sql.NullInt64
	ToBuilder() *PersonBuilder
}

type Named interface {
	GetName() string
}

type PersonBuilder struct {
	PersonBuilderBase
}

var debug bool

func NewPersonBuilder() *PersonBuilder {
	b := &PersonBuilder{}
	b.SetAge(18)
	if debug {
		return b
	}
	for range 3 {
		b.SetName("loop")
	}
	b.SetActive(true)
	return b
}

type Record struct {
	Named
	id int
}

//builder:final
func (r *Record) String() string { return "" }

func (r Record) Hash() uint64 { return uint64(r.id) }

func Local() {
	type inner interface{ GetX() int }
	var _ inner
}
`

func load(t *testing.T) (*typemodel.Universe, *Analyzer) {
	t.Helper()

	a := NewAnalyzer()
	u, err := a.LoadSource(pkgPath, "people.go", peopleSrc)
	require.NoError(t, err)

	return u, a
}

func id(name string) typemodel.TypeID {
	return typemodel.TypeID{PkgPath: pkgPath, Name: name}
}

func methodNames(d *typemodel.TypeDecl) []string {
	var out []string
	for _, m := range d.Methods {
		out = append(out, m.Name)
	}

	return out
}

func TestAnalyzer_LoadSource_Interface(t *testing.T) {
	u, a := load(t)
	assert.NotEmpty(t, a.TypeErrors, "the builder supertype does not exist yet")

	person, ok := u.Lookup(id("Person"))
	require.True(t, ok)
	assert.Equal(t, typemodel.DeclInterface, person.Kind)
	assert.True(t, person.Exported)
	assert.True(t, person.Generate)
	assert.Contains(t, person.Doc, "Person is a person.")

	assert.Equal(t, []string{"GetName", "GetAge", "IsActive", "GetNickname", "GetScore", "ToBuilder"}, methodNames(person))

	for _, m := range person.Methods {
		assert.True(t, m.Abstract, m.Name)
	}

	name, _ := person.Method("GetName")
	assert.Equal(t, id("Named"), name.Origin)

	nick, _ := person.Method("GetNickname")
	assert.Equal(t, "*string", nick.Result().String())

	score, _ := person.Method("GetScore")
	assert.True(t, score.Result().IsNamed("database/sql", "NullInt64"))

	toBuilder, _ := person.Method("ToBuilder")
	assert.True(t, toBuilder.Result().Deref().IsNamed(pkgPath, "PersonBuilder"))

	named, ok := u.Lookup(id("Named"))
	require.True(t, ok)
	assert.False(t, named.Generate)
}

func TestAnalyzer_LoadSource_Builder(t *testing.T) {
	u, _ := load(t)

	b, ok := u.Lookup(id("PersonBuilder"))
	require.True(t, ok)
	assert.Equal(t, typemodel.DeclStruct, b.Kind)
	assert.False(t, b.HasZeroConstructor(), "the factory replaces the zero value")

	require.Len(t, b.Embeds, 1)
	assert.True(t, b.Embeds[0].Unresolved)
	assert.Equal(t, "PersonBuilderBase", b.Embeds[0].ID.Name)

	factories := u.Factories(id("PersonBuilder"))
	require.Len(t, factories, 1)
	assert.Equal(t, "NewPersonBuilder", factories[0].Name)

	assert.Equal(t, [][]string{{"SetAge"}, {"SetAge", "SetActive"}}, u.ConstructionPaths(id("PersonBuilder")))
}

func TestAnalyzer_LoadSource_Struct(t *testing.T) {
	u, _ := load(t)

	rec, ok := u.Lookup(id("Record"))
	require.True(t, ok)
	assert.Equal(t, typemodel.DeclStruct, rec.Kind)
	assert.True(t, rec.HasZeroConstructor())
	assert.Equal(t, []string{"GetName", "String", "Hash"}, methodNames(rec))

	getName, _ := rec.Method("GetName")
	assert.True(t, getName.Abstract)

	str, _ := rec.Method("String")
	assert.False(t, str.Abstract)
	assert.True(t, str.Final)
	assert.True(t, str.PointerReceiver)

	hash, _ := rec.Method("Hash")
	assert.False(t, hash.Final)
	assert.False(t, hash.PointerReceiver)
}

func TestAnalyzer_LoadSource_Enclosed(t *testing.T) {
	u, _ := load(t)

	inner, ok := u.Lookup(id("inner"))
	require.True(t, ok)
	assert.True(t, inner.Enclosed)
	assert.True(t, inner.EnclosingExported)
	assert.False(t, inner.Exported)
}

func TestAnalyzer_FeedsExtraction(t *testing.T) {
	u, _ := load(t)

	diags := &diagnostic.Diagnostics{}
	x := &schema.Extractor{Provider: u, Effects: u, Sink: diags}

	dt, err := x.Extract(id("Person"))
	require.NoError(t, err, diags.Error())

	assert.Equal(t, []string{"name", "age", "active", "nickname", "score"}, dt.PropertyNames())
	assert.True(t, dt.Builder.Declared)
	assert.Equal(t, schema.ConventionFactory, dt.Builder.Convention)
	assert.Equal(t, "NewPersonBuilder", dt.Builder.Factory)
	assert.True(t, dt.HasDefault("age"))
	assert.False(t, dt.HasDefault("active"), "skipped by the early return")
	assert.False(t, dt.HasDefault("name"), "loop bodies may not run")
}

func TestAnalyzer_LoadSource_Packages(t *testing.T) {
	_, a := load(t)

	assert.Equal(t, []string{pkgPath}, a.Roots)
	assert.Equal(t, map[string]string{pkgPath: "people"}, a.Names())
	assert.Equal(t, map[string]string{pkgPath: "."}, a.Dirs())
}

func TestAnalyzer_LoadSource_ParseError(t *testing.T) {
	_, err := NewAnalyzer().LoadSource(pkgPath, "broken.go", "package people\n\ntype {")
	require.ErrorIs(t, err, ErrLoad)
}
