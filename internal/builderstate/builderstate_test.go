package builderstate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/buildkit"
	"builder-generator/internal/category"
	"builder-generator/internal/common"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const testPkg = "example.com/people"

var anyT = typemodel.Any()

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

func bk(name string, args ...*typemodel.TypeRef) *typemodel.TypeRef {
	return typemodel.Named(typemodel.BuildkitPath, name, args...)
}

// typeOf builds a datatype from properties and the strategy factories bound
// to them.
func typeOf(t *testing.T, name string, extensible bool, bind ...func() (*schema.Property, category.Strategy)) *Type {
	t.Helper()

	dt := &schema.Datatype{
		ID:         typemodel.TypeID{PkgPath: testPkg, Name: name},
		Kind:       typemodel.DeclInterface,
		Extensible: extensible,
		Defaults:   map[string]bool{},
	}

	var strategies []category.Strategy

	for _, b := range bind {
		p, s := b()
		p.Index = len(dt.Properties)
		dt.Properties = append(dt.Properties, p)
		strategies = append(strategies, s)
	}

	typ, err := NewType(dt, strategies)
	require.NoError(t, err)

	return typ
}

func required(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, anyT)
		return p, category.NewDefault(p, false)
	}
}

func defaulted(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, anyT)
		return p, category.NewDefault(p, true)
	}
}

func list(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, typemodel.Slice(anyT))
		return p, category.NewList(p, anyT, nil)
	}
}

func optional(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, bk("Optional", anyT))
		return p, category.NewOptional(p, category.OptionalWrapper, anyT)
	}
}

func nullable(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, anyT)
		p.Nullable = true

		return p, category.NewNullable(p)
	}
}

func set(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, bk("Set", anyT))
		return p, category.NewSet(p, anyT, false)
	}
}

func mapping(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, typemodel.Map(anyT, anyT))
		return p, category.NewMap(p, anyT, anyT)
	}
}

func multiset(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, bk("Multiset", anyT))
		return p, category.NewMultiset(p, anyT)
	}
}

func listMultimap(name string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		p := prop(name, bk("ListMultimap", anyT, anyT))
		return p, category.NewListMultimap(p, anyT, anyT)
	}
}

func buildable(name string, nested string) func() (*schema.Property, category.Strategy) {
	return func() (*schema.Property, category.Strategy) {
		ref := typemodel.Named(testPkg, nested)
		p := prop(name, ref)

		return p, category.NewBuildable(p, &category.Nested{Value: ref, Builder: typemodel.Named(testPkg, nested+"Builder")})
	}
}

func newBuilder(t *testing.T, typ *Type) *Builder {
	t.Helper()

	b, err := New(typ)
	require.NoError(t, err)

	return b
}

func call(t *testing.T, b *Builder, property string, op model.Op, args ...any) any {
	t.Helper()

	v, err := b.Call(property, op, args...)
	require.NoError(t, err, "%s %s", property, op)

	return v
}

func get(t *testing.T, v *Value, property string) any {
	t.Helper()

	x, err := v.Get(property)
	require.NoError(t, err, property)

	return x
}

func TestRequiredTracking(t *testing.T) {
	typ := typeOf(t, "Pair", true, required("a"), required("b"))
	b := newBuilder(t, typ)

	require.NoError(t, b.Set("a", 1))

	_, err := b.Build()
	require.ErrorIs(t, err, buildkit.ErrNotSet)

	var unset *buildkit.UnsetPropertiesError
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, []string{"b"}, unset.Properties)

	require.NoError(t, b.Set("b", "x"))

	v, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Pair{a=1, b=x}", v.String())

	require.NoError(t, b.Clear())
	assert.Equal(t, []string{"a", "b"}, b.Unset())

	_, err = b.Build()
	require.ErrorAs(t, err, &unset)
	assert.Equal(t, []string{"a", "b"}, unset.Properties)
}

func TestRequiredMapAndGetFailWhenUnset(t *testing.T) {
	typ := typeOf(t, "Pair", true, required("a"))
	b := newBuilder(t, typ)

	_, err := b.Call("a", model.OpGet)
	require.ErrorIs(t, err, buildkit.ErrNotSet)

	_, err = b.Call("a", model.OpMap, func(v any) any { return v })
	require.ErrorIs(t, err, buildkit.ErrNotSet)

	_, err = b.Call("missing", model.OpGet)
	require.ErrorIs(t, err, ErrUnknownProperty)
}

func TestListScenario(t *testing.T) {
	typ := typeOf(t, "Numbers", true, list("list"))
	b := newBuilder(t, typ)

	call(t, b, "list", model.OpAddAll, []any{1, 2, 3})
	call(t, b, "list", model.OpAdd, 4)

	v, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3, 4}, get(t, v, "list"))

	require.NoError(t, b.Clear())

	v, err = b.Build()
	require.NoError(t, err)
	assert.Empty(t, get(t, v, "list"))
}

func TestOptionalScenario(t *testing.T) {
	typ := typeOf(t, "Contact", true, optional("opt"))
	b := newBuilder(t, typ)

	v, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, buildkit.None[any](), get(t, v, "opt"))

	call(t, b, "opt", model.OpSet, "x")
	call(t, b, "opt", model.OpClear)

	v, err = b.Build()
	require.NoError(t, err)
	assert.Equal(t, buildkit.None[any](), get(t, v, "opt"))

	call(t, b, "opt", model.OpSet, "x")

	var none *string
	call(t, b, "opt", model.OpSetNullable, none)

	cleared, err := b.Build()
	require.NoError(t, err)
	assert.True(t, v.Equal(cleared), "SetNullable(nil) clears")
	assert.Equal(t, "Contact{}", cleared.String())
}

// everything has one property of every category but buildable.
func everything(t *testing.T) *Type {
	return typeOf(t, "Everything", true,
		required("name"),
		list("tags"),
		set("roles"),
		mapping("scores"),
		multiset("votes"),
		listMultimap("links"),
		optional("nick"),
		nullable("note"),
	)
}

func populated(t *testing.T, typ *Type) *Value {
	b := newBuilder(t, typ)

	require.NoError(t, b.Set("name", "ann"))
	call(t, b, "tags", model.OpAdd, "a", "b", "a")
	call(t, b, "roles", model.OpAdd, "admin", "dev")
	call(t, b, "scores", model.OpPut, "go", 3)
	call(t, b, "votes", model.OpAddCopies, "yes", 2)
	call(t, b, "links", model.OpPut, "home", "x")
	call(t, b, "links", model.OpPut, "home", "x")
	call(t, b, "nick", model.OpSet, "a")
	call(t, b, "note", model.OpSet, "hi")

	v, err := b.Build()
	require.NoError(t, err)

	return v
}

func TestRoundTrip(t *testing.T) {
	typ := everything(t)
	v := populated(t, typ)

	b := newBuilder(t, typ)
	require.NoError(t, b.MergeFrom(v))

	got, err := b.Build()
	require.NoError(t, err)
	assert.True(t, v.Equal(got), "%s != %s", v, got)
	assert.Equal(t, v.Hash(), got.Hash())

	viaToBuilder, err := v.ToBuilder()
	require.NoError(t, err)

	got, err = viaToBuilder.Build()
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}

func TestMergeFromIsIdempotent(t *testing.T) {
	typ := everything(t)
	v := populated(t, typ)

	once := newBuilder(t, typ)
	require.NoError(t, once.MergeFrom(v))

	twice := newBuilder(t, typ)
	require.NoError(t, twice.MergeFrom(v))
	require.NoError(t, twice.MergeFrom(v))

	a, err := once.Build()
	require.NoError(t, err)

	b, err := twice.Build()
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "%s != %s", a, b)
	assert.Equal(t, []any{"a", "b", "a"}, get(t, b, "tags"))
}

func TestMergeFromBuilder(t *testing.T) {
	typ := typeOf(t, "Person", true, required("name"), list("tags"))

	src := newBuilder(t, typ)
	call(t, src, "tags", model.OpAdd, "b")

	dst := newBuilder(t, typ)
	require.NoError(t, dst.Set("name", "ann"))
	call(t, dst, "tags", model.OpAdd, "a")

	require.NoError(t, dst.MergeFromBuilder(src))

	v, err := dst.Build()
	require.NoError(t, err)
	assert.Equal(t, "ann", get(t, v, "name"), "unset in the source leaves the target alone")
	assert.Equal(t, []any{"a", "b"}, get(t, v, "tags"))

	other := newBuilder(t, typeOf(t, "Other", true))
	require.ErrorIs(t, dst.MergeFromBuilder(other), ErrMismatch)
}

func TestPartialIncompleteness(t *testing.T) {
	typ := typeOf(t, "Triple", true, required("a"), required("b"), required("c"))
	b := newBuilder(t, typ)
	require.NoError(t, b.Set("b", 2))

	p := b.BuildPartial()
	assert.True(t, p.IsPartial())
	assert.Equal(t, []string{"a", "c"}, p.Unset())

	for _, name := range []string{"a", "c"} {
		_, err := p.Get(name)
		require.ErrorIs(t, err, buildkit.ErrNotSet, name)

		var notSet buildkit.NotSetError
		require.ErrorAs(t, err, &notSet)
		assert.Equal(t, name, notSet.Property)
	}

	assert.Equal(t, 2, get(t, p, "b"))
}

func TestPartialStringAtEverySubset(t *testing.T) {
	names := []string{"a", "b", "c"}
	typ := typeOf(t, "Triple", true, required("a"), required("b"), required("c"))

	for mask := 0; mask < 1<<len(names); mask++ {
		b := newBuilder(t, typ)

		var want []string

		for i, n := range names {
			if mask&(1<<i) != 0 {
				require.NoError(t, b.Set(n, i))
				want = append(want, fmt.Sprintf("%s=%d", n, i))
			}
		}

		assert.Equal(t, "Triple{"+strings.Join(want, ", ")+"}", b.BuildPartial().String(), "mask %03b", mask)
	}
}

func TestPartialNeverEqualsValue(t *testing.T) {
	typ := typeOf(t, "Pair", true, required("a"), list("tags"))
	b := newBuilder(t, typ)
	require.NoError(t, b.Set("a", 1))

	v, err := b.Build()
	require.NoError(t, err)

	p := b.BuildPartial()
	assert.False(t, v.Equal(p))
	assert.False(t, p.Equal(v))
	assert.NotEqual(t, v.Hash(), p.Hash())
	assert.Equal(t, v.String(), p.String())

	empty := newBuilder(t, typ)
	q := empty.BuildPartial()
	assert.Equal(t, "Pair{tags=[]}", q.String())
	assert.True(t, q.Equal(empty.BuildPartial()))
	assert.False(t, q.Equal(p), "different unset sets")
}

func TestPartialToBuilder(t *testing.T) {
	extensible := typeOf(t, "Pair", true, required("a"), required("b"))
	b := newBuilder(t, extensible)
	require.NoError(t, b.Set("a", 1))

	pb, err := b.BuildPartial().ToBuilder()
	require.NoError(t, err)
	assert.True(t, pb.IsPartial())

	require.NoError(t, pb.Set("b", 2))

	built, err := pb.Build()
	require.NoError(t, err, "partial builders never fail")
	assert.True(t, built.IsPartial())
	assert.Equal(t, "Pair{a=1, b=2}", built.String())

	sealed := typeOf(t, "Sealed", false, required("a"))
	_, err = newBuilder(t, sealed).BuildPartial().ToBuilder()
	require.ErrorIs(t, err, buildkit.ErrPartialToBuilder)
}

func TestMergeFromPartialSkipsMissing(t *testing.T) {
	typ := typeOf(t, "Pair", true, required("a"), required("b"))

	src := newBuilder(t, typ)
	require.NoError(t, src.Set("b", "new"))

	dst := newBuilder(t, typ)
	require.NoError(t, dst.Set("a", "kept"))
	require.NoError(t, dst.Set("b", "old"))
	require.NoError(t, dst.MergeFrom(src.BuildPartial()))

	v, err := dst.Build()
	require.NoError(t, err)
	assert.Equal(t, "kept", get(t, v, "a"))
	assert.Equal(t, "new", get(t, v, "b"))
}

func TestFactoryDefaults(t *testing.T) {
	typ := typeOf(t, "Account", true, required("owner"), defaulted("plan"), list("tags"))
	typ.Defaults = func(b *Builder) error {
		if err := b.Set("plan", "free"); err != nil {
			return err
		}

		_, err := b.Call("tags", model.OpAdd, "new")

		return err
	}

	b := newBuilder(t, typ)
	assert.Equal(t, []string{"owner"}, b.Unset(), "defaulted properties are not required")

	require.NoError(t, b.Set("owner", "ann"))
	require.NoError(t, b.Set("plan", "pro"))
	call(t, b, "tags", model.OpAdd, "x")
	require.NoError(t, b.Clear())

	assert.Equal(t, []string{"owner"}, b.Unset())
	assert.Equal(t, "free", call(t, b, "plan", model.OpGet))

	require.NoError(t, b.Set("owner", "ann"))

	pristine, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []any{"new"}, get(t, pristine, "tags"))

	// a source holding the factory defaults leaves customized state alone
	custom := newBuilder(t, typ)
	require.NoError(t, custom.Set("plan", "pro"))
	call(t, custom, "tags", model.OpAdd, "mine")
	require.NoError(t, custom.MergeFrom(pristine))

	v, err := custom.Build()
	require.NoError(t, err)
	assert.Equal(t, "pro", get(t, v, "plan"))
	assert.Equal(t, []any{"new", "mine"}, get(t, v, "tags"))
}

func TestDefaultsFailure(t *testing.T) {
	boom := errors.New("boom")
	typ := typeOf(t, "Account", true, required("owner"))
	typ.Defaults = func(*Builder) error { return boom }

	_, err := New(typ)
	require.ErrorIs(t, err, boom)
}

func TestMutateRoutesThroughOverride(t *testing.T) {
	typ := typeOf(t, "Tags", true, list("tags"))
	typ.Overrides[Key{Property: "tags", Op: model.OpAdd}] = func(b *Builder, args ...any) error {
		upper := make([]any, len(args))
		for i, a := range args {
			upper[i] = strings.ToUpper(a.(string))
		}

		_, err := b.Super("tags", model.OpAdd, upper...)

		return err
	}

	b := newBuilder(t, typ)
	call(t, b, "tags", model.OpAdd, "a")
	call(t, b, "tags", model.OpMutate, func(e *buildkit.ListEditor[any]) {
		e.Add("b")
	})

	v, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B"}, get(t, v, "tags"))
}

func TestNestedBuildable(t *testing.T) {
	address := typeOf(t, "Address", true, required("street"))
	person := typeOf(t, "Person", true, required("name"), buildable("address", "Address"))
	person.Nested["address"] = NestedFactory(address)

	b := newBuilder(t, person)
	require.NoError(t, b.Set("name", "ann"))

	_, err := b.Build()
	require.ErrorIs(t, err, buildkit.ErrNotSet, "the nested builder lacks its street")

	ab := newBuilder(t, address)
	require.NoError(t, ab.Set("street", "Main"))
	call(t, b, "address", model.OpSetBuilder, ab.AsNested())

	// later changes to the source builder are not seen
	require.NoError(t, ab.Set("street", "Side"))

	v, err := b.Build()
	require.NoError(t, err)

	addr, ok := get(t, v, "address").(*Value)
	require.True(t, ok)
	assert.Equal(t, "Main", get(t, addr, "street"))
	assert.Equal(t, "Person{name=ann, address=Address{street=Main}}", v.String())

	again := newBuilder(t, person)
	require.NoError(t, again.MergeFrom(v))

	got, err := again.Build()
	require.NoError(t, err)
	assert.True(t, v.Equal(got))
}

func TestNewTypeMismatch(t *testing.T) {
	p := prop("a", anyT)
	dt := &schema.Datatype{ID: typemodel.TypeID{PkgPath: testPkg, Name: "Bad"}, Properties: []*schema.Property{p}}

	_, err := NewType(dt, nil)
	require.ErrorIs(t, err, ErrMismatch)

	_, err = NewType(dt, []category.Strategy{category.NewDefault(prop("b", anyT), false)})
	require.ErrorIs(t, err, ErrMismatch)
}
