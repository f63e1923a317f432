package classify

import (
	"builder-generator/internal/category"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const sqlPath = "database/sql"

// Context is what matchers may consult.
type Context struct {
	Provider typemodel.Provider
	// Pending describes the datatypes generated in the same run, whose
	// builders do not exist yet.
	Pending  map[typemodel.TypeID]*category.Nested
	Datatype *schema.Datatype
}

// Matcher recognises one category.
type Matcher struct {
	Name  string
	Match func(ctx *Context, p *schema.Property) (category.Strategy, bool)
}

// Matchers is the fixed classification order.
var Matchers = []Matcher{
	{Name: category.List.String(), Match: matchList},
	{Name: category.Set.String(), Match: matchSet},
	{Name: category.SortedSet.String(), Match: matchSortedSet},
	{Name: category.Map.String(), Match: matchMap},
	{Name: category.Multiset.String(), Match: matchMultiset},
	{Name: category.ListMultimap.String(), Match: matchListMultimap},
	{Name: category.SetMultimap.String(), Match: matchSetMultimap},
	{Name: category.Optional.String(), Match: matchOptional},
	{Name: category.Buildable.String(), Match: matchBuildable},
	{Name: category.Nullable.String(), Match: matchNullable},
	{Name: category.Default.String(), Match: matchDefault},
}

// Classifier runs a matcher chain ending with a total matcher.
type Classifier struct {
	ctx      *Context
	matchers []Matcher
}

// New returns a classifier using the standard matcher order.
func New(ctx *Context) *Classifier {
	return &Classifier{ctx: ctx, matchers: Matchers}
}

// Classify returns the strategy of p.
func (c *Classifier) Classify(p *schema.Property) category.Strategy {
	for _, m := range c.matchers {
		if s, ok := m.Match(c.ctx, p); ok {
			return s
		}
	}

	// unreachable while the chain ends with matchDefault
	s, _ := matchDefault(c.ctx, p)

	return s
}

// ClassifyAll classifies every property of the context datatype, in order.
func (c *Classifier) ClassifyAll() []category.Strategy {
	out := make([]category.Strategy, len(c.ctx.Datatype.Properties))
	for i, p := range c.ctx.Datatype.Properties {
		out[i] = c.Classify(p)
	}

	return out
}

func isBuildkit(t *typemodel.TypeRef, name string, args int) bool {
	return t.Kind == typemodel.RefNamed && t.ID.PkgPath == typemodel.BuildkitPath &&
		t.ID.Name == name && len(t.Args) == args
}

func isByteSlice(t *typemodel.TypeRef) bool {
	return t.Kind == typemodel.RefSlice && (t.Elem.IsBasic("byte") || t.Elem.IsBasic("uint8"))
}

func isSetMap(t *typemodel.TypeRef) bool {
	return t.Kind == typemodel.RefMap && t.Elem.Kind == typemodel.RefStruct
}

func matchList(ctx *Context, p *schema.Property) (category.Strategy, bool) {
	t := p.Type
	if p.Nullable || t.Kind != typemodel.RefSlice || isByteSlice(t) {
		return nil, false
	}

	nested, _ := FindBuildable(ctx, t.Elem)

	return category.NewList(p, t.Elem, nested), true
}

func matchSet(_ *Context, p *schema.Property) (category.Strategy, bool) {
	switch t := p.Type; {
	case p.Nullable:
		return nil, false
	case isBuildkit(t, "Set", 1):
		return category.NewSet(p, t.Args[0], false), true
	case isSetMap(t):
		return category.NewSet(p, t.Key, true), true
	default:
		return nil, false
	}
}

func matchSortedSet(_ *Context, p *schema.Property) (category.Strategy, bool) {
	if p.Nullable || !isBuildkit(p.Type, "SortedSet", 1) {
		return nil, false
	}

	return category.NewSortedSet(p, p.Type.Args[0]), true
}

func matchMap(_ *Context, p *schema.Property) (category.Strategy, bool) {
	t := p.Type
	if p.Nullable || t.Kind != typemodel.RefMap {
		return nil, false
	}

	return category.NewMap(p, t.Key, t.Elem), true
}

func matchMultiset(_ *Context, p *schema.Property) (category.Strategy, bool) {
	if p.Nullable || !isBuildkit(p.Type, "Multiset", 1) {
		return nil, false
	}

	return category.NewMultiset(p, p.Type.Args[0]), true
}

func matchListMultimap(_ *Context, p *schema.Property) (category.Strategy, bool) {
	if p.Nullable || !isBuildkit(p.Type, "ListMultimap", 2) {
		return nil, false
	}

	return category.NewListMultimap(p, p.Type.Args[0], p.Type.Args[1]), true
}

func matchSetMultimap(_ *Context, p *schema.Property) (category.Strategy, bool) {
	if p.Nullable || !isBuildkit(p.Type, "SetMultimap", 2) {
		return nil, false
	}

	return category.NewSetMultimap(p, p.Type.Args[0], p.Type.Args[1]), true
}

func matchOptional(_ *Context, p *schema.Property) (category.Strategy, bool) {
	t := p.Type
	if p.Nullable || t.Kind != typemodel.RefNamed {
		return nil, false
	}

	switch {
	case isBuildkit(t, "Optional", 1):
		return category.NewOptional(p, category.OptionalWrapper, t.Args[0]), true
	case t.ID.PkgPath == sqlPath && t.ID.Name == "Null" && len(t.Args) == 1:
		return category.NewOptional(p, category.OptionalSQL, t.Args[0]), true
	case t.ID.PkgPath == sqlPath && len(t.Args) == 0:
		if _, ok := category.PrimitiveOptionals[t.ID.Name]; ok {
			return category.NewOptional(p, category.OptionalPrimitive, nil), true
		}
	}

	return nil, false
}

func matchBuildable(ctx *Context, p *schema.Property) (category.Strategy, bool) {
	if p.Nullable {
		return nil, false
	}

	nested, ok := FindBuildable(ctx, p.Type)
	if !ok {
		return nil, false
	}

	return category.NewBuildable(p, nested), true
}

func matchNullable(_ *Context, p *schema.Property) (category.Strategy, bool) {
	if !p.Nullable {
		return nil, false
	}

	return category.NewNullable(p), true
}

func matchDefault(ctx *Context, p *schema.Property) (category.Strategy, bool) {
	hasDefault := ctx.Datatype != nil && ctx.Datatype.HasDefault(p.Name)

	return category.NewDefault(p, hasDefault), true
}
