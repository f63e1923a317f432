package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/buildkit"
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

func testEnv(index string) *Env {
	return &Env{
		Datatype: &schema.Datatype{ID: typemodel.TypeID{PkgPath: testPkg, Name: "Person"}},
		Builder:  "PersonBuilder",
		Imports:  model.NewImports(testPkg),
		Helpers:  model.NewHelpers(),
		Index:    index,
	}
}

func methodNames(ms []model.Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}

	return out
}

func findMethod(t *testing.T, ms []model.Method, name string) model.Method {
	t.Helper()

	for _, m := range ms {
		if m.Name == name {
			return m
		}
	}

	require.Failf(t, "method not found", "%s in %v", name, methodNames(ms))

	return model.Method{}
}

func TestCategoryString(t *testing.T) {
	tests := map[Category]string{
		List:         "list",
		SortedSet:    "sorted_set",
		SetMultimap:  "set_multimap",
		Buildable:    "buildable",
		Default:      "default",
		Category(99): common.UnknownStr,
	}

	for c, want := range tests {
		assert.Equal(t, want, c.String())
	}

	assert.True(t, Multiset.IsCollection())
	assert.False(t, Optional.IsCollection())
}

func TestDefaultStrategy(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		env := testEnv("personNameIndex")
		s := NewDefault(prop("name", typemodel.Basic("string")), false)

		assert.True(t, s.Required())
		assert.False(t, s.NeedsDefaults(env))

		ms := s.Mutators(env)
		assert.Equal(t, []string{"SetName", "MapName", "GetName"}, methodNames(ms))

		set := findMethod(t, ms, "SetName")
		assert.Equal(t, []string{"b.name = value", "b._unset.Remove(personNameIndex)", "return b"}, set.Body)
		assert.Equal(t, "*people.PersonBuilder", set.Results[0].String())

		get := findMethod(t, ms, "GetName")
		require.Len(t, get.Results, 2)
		assert.Contains(t, get.Body[1], `buildkit.NotSetError{Type: "Person", Property: "name"}`)

		assert.Equal(t, []string{
			"if !_unset.Has(personNameIndex) {",
			"b.SetName(value.GetName())",
			"}",
		}, s.MergeFromValue(env))
		assert.Equal(t, []string{
			"if !other._unset.Has(personNameIndex) {",
			"b.SetName(other.name)",
			"}",
		}, s.MergeFromBuilder(env))
		assert.Equal(t, []string{"b.name = *new(string)"}, s.Clear(env))
		assert.Equal(t, []string{"dst.name = b.name"}, s.FinalAssign(env, false))
	})

	t.Run("has default", func(t *testing.T) {
		env := testEnv("personAgeIndex")
		env.Fresh = true
		s := NewDefault(prop("age", typemodel.Basic("int")), true)

		assert.False(t, s.Required())
		assert.True(t, s.NeedsDefaults(env))
		assert.Equal(t, []string{
			"if _age := value.GetAge(); !(_age == _defaults.age) {",
			"b.SetAge(_age)",
			"}",
		}, s.MergeFromValue(env))
		assert.Equal(t, []string{"b.SetAge(other.age)"}, s.MergeFromBuilder(env))
		assert.Equal(t, []string{"b.age = _defaults.age"}, s.Clear(env))

		get := findMethod(t, s.Mutators(env), "GetAge")
		assert.Len(t, get.Results, 1)
	})
}

func TestFragments(t *testing.T) {
	env := testEnv("personTagsIndex")

	list := NewList(prop("tags", typemodel.Slice(typemodel.Basic("string"))), typemodel.Basic("string"), nil)
	frag := list.Fragment(env)
	assert.Equal(t, "slices.Equal(v.tags, o.tags)", frag.Equal("v", "o"))
	assert.Equal(t, "buildkit.HashOf(v.tags)", frag.Hash("v"))
	assert.False(t, frag.ConditionalInValue)

	nullable := NewNullable(prop("nick", typemodel.Basic("string")))
	frag = nullable.Fragment(env)
	assert.True(t, frag.ConditionalInValue)
	assert.Equal(t, "v.nick != nil", frag.Present("v"))
	assert.Equal(t, "*v.nick", frag.Shown("v"))

	opt := NewOptional(prop("email", typemodel.Named("database/sql", "NullString")), OptionalPrimitive, nil)
	frag = opt.Fragment(env)
	assert.Equal(t, "v._hasEmail", frag.Present("v"))
	assert.Equal(t, "v.email", frag.Shown("v"))
	assert.Equal(t, "v._hasEmail == o._hasEmail && v.email == o.email", frag.Equal("v", "o"))
}

func TestListStrategy(t *testing.T) {
	env := testEnv("personTagsIndex")
	elem := typemodel.Basic("string")
	s := NewList(prop("tags", typemodel.Slice(elem)), elem, nil)

	assert.Equal(t, []string{"AddTags", "AddAllTags", "AddTagsSeq", "MutateTags", "ClearTags", "GetTags"},
		methodNames(s.Mutators(env)))

	mutate := findMethod(t, s.Mutators(env), "MutateTags")
	assert.Equal(t, "b.tags.Mutate(mutator, func(e string) { b.AddTags(e) })", mutate.Body[0])

	assert.Equal(t, []string{
		"if _tags := value.GetTags(); !(len(_tags) == 0) {",
		"b.ClearTags()",
		"b.AddAllTags(_tags)",
		"}",
	}, s.MergeFromValue(env))
	assert.Equal(t, []string{"b.AddTagsSeq(other.tags.All())"}, s.MergeFromBuilder(env))
	assert.Equal(t, []string{"dst.tags = b.tags.Freeze()"}, s.FinalAssign(env, false))

	env.Fresh = true
	assert.True(t, s.NeedsDefaults(env))
	assert.Equal(t, "if _tags := value.GetTags(); !(buildkit.Equal(_tags, _defaults.tags.Freeze())) {",
		s.MergeFromValue(env)[0])
}

func TestListOfBuildable(t *testing.T) {
	env := testEnv("personFriendsIndex")
	addr := typemodel.Named(testPkg, "Address")
	nested := &Nested{Value: addr, Builder: typemodel.Named(testPkg, "AddressBuilder"), Factory: "NewAddressBuilder"}
	s := NewList(prop("friends", typemodel.Slice(addr)), addr, nested)

	m := findMethod(t, s.Mutators(env), "AddFriendsBuilder")
	assert.Equal(t, model.OpAddBuilder, m.Op)
	assert.Equal(t, "*people.AddressBuilder", m.Params[0].Type.String())

	s.RegisterHelpers(env)
	s.RegisterHelpers(env)

	helpers := env.Helpers.All()
	require.Len(t, helpers, 1)
	assert.Equal(t, "newAddressBuilder", helpers[0].Name)
	assert.Contains(t, helpers[0].Code, "return NewAddressBuilder()")
}

func TestBuildableStrategy(t *testing.T) {
	env := testEnv("personAddressIndex")
	addr := typemodel.Named(testPkg, "Address")
	addr.Nillable = true
	s := NewBuildable(prop("address", addr), &Nested{
		Value:   addr,
		Builder: typemodel.Named(testPkg, "AddressBuilder"),
	})

	assert.Equal(t, []string{"SetAddress", "SetAddressBuilder", "GetAddressBuilder", "MutateAddress"},
		methodNames(s.Mutators(env)))

	setB := findMethod(t, s.Mutators(env), "SetAddressBuilder")
	assert.Equal(t, "b.address.MergeFrom(builder.BuildPartial())", setB.Body[1])

	assert.Equal(t, []string{"dst.address = b.GetAddressBuilder().BuildPartial()"}, s.FinalAssign(env, true))

	build := s.FinalAssign(env, false)
	assert.Equal(t, "_address, err := b.GetAddressBuilder().Build()", build[0])
	assert.Contains(t, build[2], `fmt.Errorf("%s: %w", "address", err)`)

	s.RegisterHelpers(env)
	assert.True(t, env.Helpers.Has("buildable", "newAddressBuilder"))
	assert.Contains(t, env.Helpers.All()[0].Code, "return &AddressBuilder{}")
}

func TestOptionalStrategy(t *testing.T) {
	env := testEnv("personEmailIndex")
	elem := typemodel.Basic("string")

	s := NewOptional(prop("email", bkRef("Optional", elem)), OptionalWrapper, elem)
	ms := s.Mutators(env)
	assert.Equal(t, []string{"SetEmail", "SetOptionalEmail", "SetNullableEmail", "MapEmail", "ClearEmail", "GetEmail"},
		methodNames(ms))
	assert.Equal(t, []string{"return buildkit.OptionalOf(b.email)"}, findMethod(t, ms, "GetEmail").Body)
	assert.Equal(t, []string{
		"if _email := value.GetEmail(); _email.IsPresent() {",
		"b.SetOptionalEmail(_email)",
		"}",
	}, s.MergeFromValue(env))

	sqlOpt := NewOptional(prop("phone", typemodel.Named("database/sql", "Null", elem)), OptionalSQL, elem)
	sqlOpt.RegisterHelpers(env)
	assert.True(t, env.Helpers.Has("optional", "nullOf"))
	assert.Equal(t, "return nullOf(v.phone)", sqlOpt.ValueGetter(env).Body[0])

	prim := NewOptional(prop("age", typemodel.Named("database/sql", "NullInt64")), OptionalPrimitive, nil)
	assert.Equal(t, "int64", prim.Elem().String())
	assert.Equal(t, "return sql.NullInt64{Int64: v.age, Valid: v._hasAge}", prim.ValueGetter(env).Body[0])
	assert.Equal(t, []string{"b.age = *new(int64)", "b._hasAge = false"}, prim.Clear(env))
}

func TestSetStrategies(t *testing.T) {
	env := testEnv("personRolesIndex")
	elem := typemodel.Basic("string")

	set := NewSet(prop("roles", typemodel.Map(elem, typemodel.EmptyStruct())), elem, true)
	assert.Equal(t, []string{"dst.roles = b.roles.FreezeMap()"}, set.FinalAssign(env, false))
	assert.Equal(t, "b.AddRolesSeq(maps.Keys(elements))", findMethod(t, set.Mutators(env), "AddAllRoles").Body[0])
	assert.Nil(t, set.Init(env))

	sorted := NewSortedSet(prop("ranks", bkRef("SortedSet", typemodel.Basic("int"))), typemodel.Basic("int"))
	assert.Equal(t, SortedSet, sorted.Category())
	assert.Equal(t, []string{"b.ranks = buildkit.NewSortedSetField(cmp.Compare[int])"}, sorted.Init(env))
}

func TestMultimapMerge(t *testing.T) {
	env := testEnv("personLinksIndex")
	k, v := typemodel.Basic("string"), typemodel.Basic("int")

	list := NewListMultimap(prop("links", bkRef("ListMultimap", k, v)), k, v)
	assert.Equal(t, "if _links := value.GetLinks(); !(_links.Len() == 0) {", list.MergeFromValue(env)[0])

	set := NewSetMultimap(prop("links", bkRef("SetMultimap", k, v)), k, v)
	assert.Equal(t, []string{"b.PutAllLinks(value.GetLinks())"}, set.MergeFromValue(env))
	assert.False(t, set.NeedsDefaults(&Env{Fresh: true}))
}

// slot tests

func TestDefaultSlot(t *testing.T) {
	unset := buildkit.NewUnsetSet(0)
	env := SlotEnv{
		Type:     "Person",
		Property: "name",
		MarkSet:  func() { unset.Remove(0) },
		IsUnset:  func() bool { return unset.Has(0) },
	}
	s := NewDefault(prop("name", typemodel.Basic("string")), false).NewSlot(env)

	_, err := s.Call(model.OpGet)
	require.ErrorIs(t, err, buildkit.ErrNotSet)

	_, err = s.Call(model.OpMap, func(v any) any { return v })
	require.ErrorIs(t, err, buildkit.ErrNotSet)
	assert.False(t, s.Present())

	_, err = s.Call(model.OpSet, "ann")
	require.NoError(t, err)
	assert.True(t, unset.IsEmpty())

	_, err = s.Call(model.OpMap, func(v any) any { return v.(string) + "!" })
	require.NoError(t, err)

	got, err := s.Call(model.OpGet)
	require.NoError(t, err)
	assert.Equal(t, "ann!", got)

	_, err = s.Call(model.OpAdd, 1)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestListSlotMutateRoutesThroughAdd(t *testing.T) {
	var routed []any

	var s Slot
	s = NewList(prop("tags", typemodel.Slice(typemodel.Any())), typemodel.Any(), nil).NewSlot(SlotEnv{
		Route: func(op model.Op, args ...any) error {
			if op == model.OpAdd {
				routed = append(routed, args...)
			}

			_, err := s.Call(op, args...)

			return err
		},
	})

	_, err := s.Call(model.OpAdd, "a")
	require.NoError(t, err)

	_, err = s.Call(model.OpMutate, func(e *buildkit.ListEditor[any]) {
		e.Add("b")
		e.Set(0, "z")
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"b"}, routed)

	v, err := s.Freeze(false)
	require.NoError(t, err)
	assert.Equal(t, []any{"z", "b"}, v)
}

func TestListSlotMergeReplaces(t *testing.T) {
	s := NewList(prop("tags", typemodel.Slice(typemodel.Any())), typemodel.Any(), nil).NewSlot(SlotEnv{})

	_, err := s.Call(model.OpAdd, "x")
	require.NoError(t, err)

	require.NoError(t, s.MergeValue([]any{"a", "b"}, true))
	require.NoError(t, s.MergeValue([]any{"a", "b"}, true))

	v, _ := s.Freeze(false)
	assert.Equal(t, []any{"a", "b"}, v)

	// an empty source equals the pristine state and is skipped
	require.NoError(t, s.MergeValue([]any{}, true))
	v, _ = s.Freeze(false)
	assert.Equal(t, []any{"a", "b"}, v)

	other := NewList(prop("tags", typemodel.Slice(typemodel.Any())), typemodel.Any(), nil).NewSlot(SlotEnv{})
	_, _ = other.Call(model.OpAdd, "c")
	require.NoError(t, s.MergeSlot(other))

	v, _ = s.Freeze(false)
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestSetSlotUnion(t *testing.T) {
	s := NewSet(prop("roles", bkRef("Set", typemodel.Any())), typemodel.Any(), false).NewSlot(SlotEnv{})

	_, _ = s.Call(model.OpAdd, "a", "b", "a")
	require.NoError(t, s.MergeValue(buildkit.SetOf[any]("b", "c"), true))
	require.NoError(t, s.MergeValue(buildkit.SetOf[any]("b", "c"), true))

	_, _ = s.Call(model.OpRemove, "a")

	v, err := s.Freeze(false)
	require.NoError(t, err)
	assert.True(t, buildkit.SetOf[any]("b", "c").Equal(v.(buildkit.Set[any])))
}

func TestOptionalSlot(t *testing.T) {
	var s Slot
	s = NewOptional(prop("email", bkRef("Optional", typemodel.Any())), OptionalWrapper, typemodel.Any()).NewSlot(SlotEnv{
		Route: func(op model.Op, args ...any) error {
			_, err := s.Call(op, args...)
			return err
		},
	})

	got, _ := s.Call(model.OpGet)
	assert.Equal(t, buildkit.None[any](), got)

	_, err := s.Call(model.OpMap, func(v any) any { return "never" })
	require.NoError(t, err)
	assert.False(t, s.Present())

	x := "a@b"
	_, err = s.Call(model.OpSetNullable, &x)
	require.NoError(t, err)
	got, _ = s.Call(model.OpGet)
	assert.Equal(t, buildkit.Some[any]("a@b"), got)

	var nilPtr *string
	_, err = s.Call(model.OpSetNullable, nilPtr)
	require.NoError(t, err)
	assert.False(t, s.Present())

	_, err = s.Call(model.OpSetOptional, buildkit.Some[any]("c@d"))
	require.NoError(t, err)
	assert.True(t, s.Present())

	// an absent source leaves the slot alone
	require.NoError(t, s.MergeValue(buildkit.None[any](), true))
	assert.True(t, s.Present())
}

func TestMultisetSlot(t *testing.T) {
	s := NewMultiset(prop("votes", bkRef("Multiset", typemodel.Any())), typemodel.Any()).NewSlot(SlotEnv{})

	_, err := s.Call(model.OpAddCopies, "a", 2)
	require.NoError(t, err)

	_, err = s.Call(model.OpSetCount, "b", -1)
	require.ErrorIs(t, err, ErrArgument)

	require.NoError(t, s.MergeValue(buildkit.MultisetOf[any]("c", "c"), true))

	v, _ := s.Freeze(false)
	assert.Equal(t, 2, v.(buildkit.Multiset[any]).Count("c"))
	assert.Equal(t, 0, v.(buildkit.Multiset[any]).Count("a"))
}

func TestMultimapSlots(t *testing.T) {
	k, v := typemodel.Any(), typemodel.Any()

	list := NewListMultimap(prop("links", bkRef("ListMultimap", k, v)), k, v).NewSlot(SlotEnv{})
	_, _ = list.Call(model.OpPut, "a", 1)
	_, _ = list.Call(model.OpPut, "a", 1)

	frozen, _ := list.Freeze(false)
	assert.Equal(t, []any{1, 1}, frozen.(buildkit.ListMultimap[any, any]).Get("a"))

	set := NewSetMultimap(prop("links", bkRef("SetMultimap", k, v)), k, v).NewSlot(SlotEnv{})
	_, _ = set.Call(model.OpPut, "a", 1)
	_, _ = set.Call(model.OpPut, "a", 1)
	_, _ = set.Call(model.OpPut, "b", 2)
	_, _ = set.Call(model.OpRemoveAll, "b")

	frozen, _ = set.Freeze(false)
	assert.Equal(t, 1, frozen.(buildkit.SetMultimap[any, any]).Len())
}

type fakeNested struct {
	values []any
	fail   error
}

func (f *fakeNested) Build() (any, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	return f.values, nil
}

func (f *fakeNested) BuildPartial() any { return f.values }
func (f *fakeNested) Clear()            { f.values = nil }

func (f *fakeNested) MergeFrom(v any) error {
	f.values = append(f.values, v)
	return nil
}

func (f *fakeNested) MergeFromBuilder(o NestedBuilder) error {
	f.values = append(f.values, o.(*fakeNested).values...)
	return nil
}

func TestBuildableSlot(t *testing.T) {
	addr := typemodel.Named(testPkg, "Address")
	strategy := NewBuildable(prop("address", addr), &Nested{Value: addr, Builder: typemodel.Named(testPkg, "AddressBuilder")})

	created := 0
	s := strategy.NewSlot(SlotEnv{
		Property:  "address",
		NewNested: func() NestedBuilder { created++; return &fakeNested{} },
	})

	_, err := s.Call(model.OpSet, "home")
	require.NoError(t, err)

	src := &fakeNested{values: []any{"work"}}
	_, err = s.Call(model.OpSetBuilder, src)
	require.NoError(t, err)

	// later changes to src are not seen
	src.values = append(src.values, "late")

	v, err := s.Freeze(false)
	require.NoError(t, err)
	assert.Equal(t, []any{"work"}, v)
	assert.Equal(t, 2, created)

	nb, err := s.Call(model.OpGetBuilder)
	require.NoError(t, err)
	nb.(*fakeNested).fail = assert.AnError

	_, err = s.Freeze(false)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "address: ")

	partial, err := s.Freeze(true)
	require.NoError(t, err)
	assert.Equal(t, []any{"work"}, partial)
}
