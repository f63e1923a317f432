package classify

import (
	"builder-generator/internal/category"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// FindBuildable reports whether t exposes a builder compatible with nested
// building: a type <T>Builder in the same package obtainable from its zero
// value or a parameterless New<T>Builder factory, with Build() (T, error),
// BuildPartial() T, Clear() and MergeFrom(T). MergeFromBuilder(*<T>Builder)
// and T.ToBuilder() are used when present.
func FindBuildable(ctx *Context, t *typemodel.TypeRef) (*category.Nested, bool) {
	if t == nil || t.Kind != typemodel.RefNamed || len(t.Args) > 0 || t.Unresolved {
		return nil, false
	}

	if n, ok := ctx.Pending[t.ID]; ok {
		return n, true
	}

	if ctx.Provider == nil {
		return nil, false
	}

	b, ok := ctx.Provider.FindNested(t.ID, schema.BuilderSuffix)
	if !ok || b.Kind == typemodel.DeclInterface || len(b.TypeParams) > 0 {
		return nil, false
	}

	builderRef := typemodel.NamedID(b.ID)

	if !hasMethod(b, "Build", nil, t, typemodel.Error()) ||
		!hasMethod(b, "BuildPartial", nil, t) ||
		!hasNiladic(b, "Clear") ||
		!acceptsMergeFrom(b, t) {
		return nil, false
	}

	n := &category.Nested{Value: t, Builder: builderRef}

	factory, ok := builderFactory(ctx.Provider, b)
	switch {
	case ok:
		n.Factory = factory
	case !b.HasZeroConstructor():
		return nil, false
	}

	if m, ok := b.Method("MergeFromBuilder"); ok && len(m.Params) == 1 && m.Params[0].Deref().Equal(builderRef) {
		n.MergeFromBuilder = true
	}

	if d, ok := ctx.Provider.Lookup(t.ID); ok {
		if m, ok := d.Method("ToBuilder"); ok && len(m.Params) == 0 && len(m.Results) == 1 &&
			m.Results[0].Deref().Equal(builderRef) {
			n.ToBuilder = true
		}
	}

	return n, true
}

// hasMethod checks name for exactly the given parameters and results.
func hasMethod(d *typemodel.TypeDecl, name string, params []*typemodel.TypeRef, results ...*typemodel.TypeRef) bool {
	m, ok := d.Method(name)
	if !ok || !m.Exported || len(m.Params) != len(params) || len(m.Results) != len(results) {
		return false
	}

	for i, p := range params {
		if !m.Params[i].Equal(p) {
			return false
		}
	}

	for i, r := range results {
		if !m.Results[i].Equal(r) {
			return false
		}
	}

	return true
}

// hasNiladic checks for a parameterless method with any results.
func hasNiladic(d *typemodel.TypeDecl, name string) bool {
	m, ok := d.Method(name)

	return ok && m.Exported && len(m.Params) == 0
}

// acceptsMergeFrom allows MergeFrom(T) with any results, so fluent builders
// returning themselves qualify.
func acceptsMergeFrom(d *typemodel.TypeDecl, t *typemodel.TypeRef) bool {
	m, ok := d.Method("MergeFrom")

	return ok && m.Exported && len(m.Params) == 1 && m.Params[0].Equal(t)
}

func builderFactory(p typemodel.Provider, b *typemodel.TypeDecl) (string, bool) {
	want := "New" + b.ID.Name
	for _, f := range p.Factories(b.ID) {
		if f.Name == want && f.Exported && len(f.Params) == 0 && len(f.TypeParams) == 0 {
			return f.Name, true
		}
	}

	return "", false
}
