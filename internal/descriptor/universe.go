package descriptor

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"builder-generator/internal/common"
	"builder-generator/internal/typemodel"
)

// ErrInvalid is returned by ToUniverse when the descriptor has errors.
var ErrInvalid = errors.New("invalid descriptor")

type exprCtx struct {
	typemodel.ExprContext
}

func exprContext(f *File, typeParams []string) exprCtx {
	return exprCtx{typemodel.ExprContext{PkgPath: f.Package, Imports: f.Imports, TypeParams: typeParams}}
}

func (c exprCtx) parse(expr string) (*typemodel.TypeRef, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty type expression")
	}

	return typemodel.ParseExpr(expr, c.ExprContext)
}

func (c exprCtx) all(exprs []string) ([]*typemodel.TypeRef, error) {
	out := make([]*typemodel.TypeRef, 0, len(exprs))

	for _, e := range exprs {
		r, err := c.parse(e)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}

// getterStem returns the part of a getter after Get or Is.
func getterStem(getter string) string {
	switch {
	case common.HasUpperBoundary(getter, "Get"):
		return strings.TrimPrefix(getter, "Get")
	case common.HasUpperBoundary(getter, "Is"):
		return strings.TrimPrefix(getter, "Is")
	default:
		return common.Capitalize(getter)
	}
}

func propertyNames(t *TypeDesc) []string {
	out := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		out = append(out, common.Decapitalize(getterStem(p.Getter)))
	}

	return out
}

// ToUniverse validates f and converts it into a type universe.
func ToUniverse(f *File) (*typemodel.Universe, error) {
	if diags := Validate(f); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, diags.Error())
	}

	u := typemodel.NewUniverse()
	b := &universeBuilder{file: f, universe: u, decls: map[string]*typemodel.TypeDecl{}}

	for i := range f.Types {
		if err := b.declare(&f.Types[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, f.Types[i].Name, err)
		}
	}

	for i := range f.Funcs {
		if err := b.function(&f.Funcs[i]); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, f.Funcs[i].Name, err)
		}
	}

	for i := range f.Types {
		b.promote(b.decls[f.Types[i].Name], map[string]bool{})
	}

	for _, d := range b.decls {
		if d.Kind != typemodel.DeclInterface && hasFactory(u, d.ID) {
			for i := range d.Constructors {
				d.Constructors[i].Accessible = false
			}
		}
	}

	u.Normalize()

	return u, nil
}

func hasFactory(u *typemodel.Universe, id typemodel.TypeID) bool {
	for _, f := range u.Factories(id) {
		if f.Name == "New"+id.Name && len(f.Params) == 0 {
			return true
		}
	}

	return false
}

type universeBuilder struct {
	file     *File
	universe *typemodel.Universe
	decls    map[string]*typemodel.TypeDecl
}

func (b *universeBuilder) id(name string) typemodel.TypeID {
	return typemodel.TypeID{PkgPath: b.file.Package, Name: name}
}

func (b *universeBuilder) pos(line int) token.Position {
	return token.Position{Filename: b.file.Source, Line: line}
}

func (b *universeBuilder) add(d *typemodel.TypeDecl) {
	b.decls[d.ID.Name] = d
	b.universe.Add(d)
}

func (b *universeBuilder) declare(t *TypeDesc) error {
	ctx := exprContext(b.file, t.TypeParams)

	d := &typemodel.TypeDecl{
		ID:         b.id(t.Name),
		Doc:        t.Doc,
		Exported:   token.IsExported(t.Name),
		TypeParams: t.TypeParams,
		Generate:   t.Generated(),
		Pos:        b.pos(t.Line),
	}

	switch t.Kind {
	case KindStruct:
		d.Kind = typemodel.DeclStruct
		d.Constructors = []typemodel.Constructor{{Accessible: true}}
	case KindScalar:
		d.Kind = typemodel.DeclScalar
		d.Constructors = []typemodel.Constructor{{Accessible: true}}

		u, err := ctx.parse(t.Underlying)
		if err != nil {
			return err
		}

		d.Underlying = u
	default:
		d.Kind = typemodel.DeclInterface
	}

	embeds, err := ctx.all(t.Embeds)
	if err != nil {
		return err
	}

	d.Embeds = embeds

	for _, p := range t.Properties {
		r, err := ctx.parse(p.Type)
		if err != nil {
			return err
		}

		d.Methods = append(d.Methods, typemodel.Method{
			Name:     p.Getter,
			Results:  []*typemodel.TypeRef{r},
			Abstract: true,
			Exported: token.IsExported(p.Getter),
			Origin:   d.ID,
			Pos:      b.pos(p.Line),
		})
	}

	methods, err := b.methods(ctx, d.ID, t.Methods, d.Kind == typemodel.DeclInterface)
	if err != nil {
		return err
	}

	d.Methods = append(d.Methods, methods...)

	b.add(d)

	if t.Builder != nil {
		return b.builder(t, d)
	}

	return nil
}

func (b *universeBuilder) methods(ctx exprCtx, owner typemodel.TypeID, descs []MethodDesc, abstract bool) ([]typemodel.Method, error) {
	out := make([]typemodel.Method, 0, len(descs))

	for _, m := range descs {
		params, err := ctx.all(m.Params)
		if err != nil {
			return nil, err
		}

		results, err := ctx.all(m.Results)
		if err != nil {
			return nil, err
		}

		out = append(out, typemodel.Method{
			Name:            m.Name,
			Params:          params,
			Results:         results,
			Variadic:        m.Variadic,
			Abstract:        abstract || m.Abstract,
			Final:           m.Final,
			Exported:        token.IsExported(m.Name),
			Origin:          owner,
			PointerReceiver: m.PointerReceiver,
		})
	}

	return out, nil
}

// builder declares <Type>Builder embedding the generated base, its factory
// and the construction path of its defaults.
func (b *universeBuilder) builder(t *TypeDesc, owner *typemodel.TypeDecl) error {
	name := t.Name + "Builder"
	ctx := exprContext(b.file, nil)

	d := &typemodel.TypeDecl{
		ID:           b.id(name),
		Kind:         typemodel.DeclStruct,
		Exported:     token.IsExported(name),
		Embeds:       []*typemodel.TypeRef{typemodel.Unresolved(b.file.Package, t.Name+"BuilderBase")},
		Constructors: []typemodel.Constructor{{Accessible: true}},
		Pos:          owner.Pos,
	}

	methods, err := b.methods(ctx, d.ID, t.Builder.Methods, false)
	if err != nil {
		return err
	}

	d.Methods = methods
	b.add(d)

	if t.Builder.Factory == "" {
		return nil
	}

	b.universe.AddFunc(typemodel.Func{
		PkgPath:  b.file.Package,
		Name:     t.Builder.Factory,
		Results:  []*typemodel.TypeRef{typemodel.Pointer(typemodel.NamedID(d.ID))},
		Exported: token.IsExported(t.Builder.Factory),
		Pos:      owner.Pos,
	})

	if len(t.Builder.Defaults) > 0 {
		stems := map[string]string{}
		for _, p := range t.Properties {
			stem := getterStem(p.Getter)
			stems[common.Decapitalize(stem)] = stem
		}

		path := make([]string, 0, len(t.Builder.Defaults))
		for _, def := range t.Builder.Defaults {
			path = append(path, "Set"+stems[def])
		}

		b.universe.SetConstructionPaths(d.ID, [][]string{path})
	}

	return nil
}

func (b *universeBuilder) function(fn *FuncDesc) error {
	ctx := exprContext(b.file, fn.TypeParams)

	params, err := ctx.all(fn.Params)
	if err != nil {
		return err
	}

	results, err := ctx.all(fn.Results)
	if err != nil {
		return err
	}

	b.universe.AddFunc(typemodel.Func{
		PkgPath:    b.file.Package,
		Name:       fn.Name,
		TypeParams: fn.TypeParams,
		Params:     params,
		Results:    results,
		Exported:   token.IsExported(fn.Name),
	})

	return nil
}

// promote prepends the methods of embedded descriptor types, which are part
// of the method set.
func (b *universeBuilder) promote(d *typemodel.TypeDecl, seen map[string]bool) {
	if d == nil || seen[d.ID.Name] {
		return
	}

	seen[d.ID.Name] = true

	var promoted []typemodel.Method

	for _, e := range d.Embeds {
		e = e.Deref()
		if e.Kind != typemodel.RefNamed || e.ID.PkgPath != b.file.Package {
			continue
		}

		sub, ok := b.decls[e.ID.Name]
		if !ok {
			continue
		}

		b.promote(sub, seen)

		for _, m := range sub.Methods {
			if _, own := d.Method(m.Name); own || containsMethod(promoted, m.Name) {
				continue
			}

			promoted = append(promoted, m)
		}
	}

	d.Methods = append(promoted, d.Methods...)
}

func containsMethod(ms []typemodel.Method, name string) bool {
	for _, m := range ms {
		if m.Name == name {
			return true
		}
	}

	return false
}
