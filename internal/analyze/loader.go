package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"builder-generator/internal/typemodel"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// ErrLoad is returned when packages cannot be listed or parsed.
var ErrLoad = errors.New("failed to load packages")

// PackageInfo locates a loaded package.
type PackageInfo struct {
	Name string
	Dir  string
}

// Analyzer loads Go packages and builds a type universe.
type Analyzer struct {
	universe *typemodel.Universe
	// TypeErrors collects the tolerated type-checking errors.
	TypeErrors []error
	// Packages holds the loaded packages by path, in load order in Roots.
	Packages map[string]PackageInfo
	Roots    []string
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{universe: typemodel.NewUniverse(), Packages: map[string]PackageInfo{}}
}

// Dirs maps the loaded package paths to their directories.
func (a *Analyzer) Dirs() map[string]string {
	out := make(map[string]string, len(a.Packages))
	for p, info := range a.Packages {
		out[p] = info.Dir
	}

	return out
}

// Names maps the loaded package paths to their package names.
func (a *Analyzer) Names() map[string]string {
	out := make(map[string]string, len(a.Packages))
	for p, info := range a.Packages {
		out[p] = info.Name
	}

	return out
}

func (a *Analyzer) record(pkgPath, name, file string) {
	if _, ok := a.Packages[pkgPath]; !ok {
		a.Roots = append(a.Roots, pkgPath)
	}

	a.Packages[pkgPath] = PackageInfo{Name: name, Dir: filepath.Dir(file)}
}

// Universe returns the current type universe.
func (a *Analyzer) Universe() *typemodel.Universe {
	return a.universe
}

// LoadPackages loads the specified packages and adds their declarations to
// the universe. Patterns are standard Go package patterns (e.g.,
// "./examples/people", "builder-generator/examples/people").
func (a *Analyzer) LoadPackages(patterns ...string) (*typemodel.Universe, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	// Type errors are expected before the first generation run.
	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				a.TypeErrors = append(a.TypeErrors, e)
				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrLoad, errs)
	}

	for _, pkg := range pkgs {
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}

		if len(pkg.GoFiles) > 0 {
			a.record(pkg.PkgPath, pkg.Name, pkg.GoFiles[0])
		}

		a.processPackage(pkg.Fset, pkg.Types, pkg.TypesInfo, pkg.Syntax)
	}

	a.universe.Normalize()

	return a.universe, nil
}

// LoadSource type-checks a single file as package pkgPath, importing the
// standard library only. It is meant for small inputs and tests.
func (a *Analyzer) LoadSource(pkgPath, filename string, src any) (*typemodel.Universe, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}

	conf := types.Config{
		Importer: importer.Default(),
		Error: func(err error) {
			a.TypeErrors = append(a.TypeErrors, err)
		},
	}

	pkg, _ := conf.Check(pkgPath, fset, []*ast.File{file}, info)

	a.record(pkgPath, file.Name.Name, filename)

	a.processPackage(fset, pkg, info, []*ast.File{file})
	a.universe.Normalize()

	return a.universe, nil
}

// syntax indexes the declarations of a package's files.
type syntax struct {
	// specs maps type names to their declarations.
	specs map[*types.TypeName]*typeSpec
	// funcs maps functions and interface methods to their syntax.
	funcs map[*types.Func]*funcSyntax
	// fields maps struct fields to their type expressions.
	fields map[*types.Var]ast.Expr
	// factories lists the package-level function declarations.
	factories []*ast.FuncDecl
}

type typeSpec struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
	file *ast.File
	// enclosing is the function declaring a local type.
	enclosing *ast.FuncDecl
}

type funcSyntax struct {
	typ  *ast.FuncType
	doc  *ast.CommentGroup
	file *ast.File
}

func indexSyntax(info *types.Info, files []*ast.File) *syntax {
	s := &syntax{
		specs:  map[*types.TypeName]*typeSpec{},
		funcs:  map[*types.Func]*funcSyntax{},
		fields: map[*types.Var]ast.Expr{},
	}

	for _, file := range files {
		var enclosing *ast.FuncDecl

		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl:
				enclosing = n

				if fn, ok := info.Defs[n.Name].(*types.Func); ok {
					s.funcs[fn] = &funcSyntax{typ: n.Type, doc: n.Doc, file: file}
				}

				if n.Recv == nil {
					s.factories = append(s.factories, n)
				}

			case *ast.GenDecl:
				if n.Tok != token.TYPE {
					return true
				}

				for _, spec := range n.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}

					doc := ts.Doc
					if doc == nil && len(n.Specs) == 1 {
						doc = n.Doc
					}

					if tn, ok := info.Defs[ts.Name].(*types.TypeName); ok {
						s.specs[tn] = &typeSpec{spec: ts, doc: doc, file: file, enclosing: enclosingOf(tn, enclosing)}
					}
				}

			case *ast.InterfaceType:
				if n.Methods == nil {
					return true
				}

				for _, f := range n.Methods.List {
					ft, ok := f.Type.(*ast.FuncType)
					if !ok {
						continue
					}

					for _, name := range f.Names {
						if fn, ok := info.Defs[name].(*types.Func); ok {
							s.funcs[fn] = &funcSyntax{typ: ft, doc: f.Doc, file: file}
						}
					}
				}

			case *ast.StructType:
				if n.Fields == nil {
					return true
				}

				for _, f := range n.Fields.List {
					for _, name := range f.Names {
						if v, ok := info.Defs[name].(*types.Var); ok {
							s.fields[v] = f.Type
						}
					}

					if len(f.Names) == 0 {
						s.embedded(info, f)
					}
				}
			}

			return true
		})
	}

	return s
}

// embedded records an embedded field, whose identifier is the type name.
func (s *syntax) embedded(info *types.Info, f *ast.Field) {
	expr := f.Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}

	var ident *ast.Ident

	switch e := expr.(type) {
	case *ast.Ident:
		ident = e
	case *ast.SelectorExpr:
		ident = e.Sel
	case *ast.IndexExpr:
		if id, ok := e.X.(*ast.Ident); ok {
			ident = id
		}
	}

	if ident == nil {
		return
	}

	if v, ok := info.Defs[ident].(*types.Var); ok {
		s.fields[v] = f.Type
	}
}

func enclosingOf(tn *types.TypeName, fn *ast.FuncDecl) *ast.FuncDecl {
	if tn.Pkg() == nil || tn.Parent() == tn.Pkg().Scope() {
		return nil
	}

	return fn
}

func hasDirective(doc *ast.CommentGroup, directive string) bool {
	if doc == nil {
		return false
	}

	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == directive {
			return true
		}
	}

	return false
}

// processPackage extracts declarations from a type-checked package.
func (a *Analyzer) processPackage(fset *token.FileSet, pkg *types.Package, info *types.Info, files []*ast.File) {
	syn := indexSyntax(info, files)

	names := make([]*types.TypeName, 0, len(syn.specs))
	for tn := range syn.specs {
		names = append(names, tn)
	}

	slices.SortFunc(names, func(x, y *types.TypeName) int { return int(x.Pos() - y.Pos()) })

	var decls []*typemodel.TypeDecl

	for _, tn := range names {
		if tn.IsAlias() {
			continue
		}

		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}

		decls = append(decls, a.declare(fset, pkg, syn, tn, named))
	}

	for _, fd := range syn.factories {
		fn, ok := info.Defs[fd.Name].(*types.Func)
		if !ok {
			continue
		}

		a.universe.AddFunc(a.function(fset, pkg, syn, fn))
	}

	// The zero value is only offered when no New<Type> factory exists.
	for _, d := range decls {
		if hasFactory(a.universe, d.ID) {
			for i := range d.Constructors {
				d.Constructors[i].Accessible = false
			}
		}

		a.universe.Add(d)
	}

	for id, paths := range constructionPaths(pkg, info, syn.factories) {
		a.universe.SetConstructionPaths(id, paths)
	}
}

func hasFactory(u *typemodel.Universe, id typemodel.TypeID) bool {
	for _, f := range u.Factories(id) {
		if f.Name == "New"+id.Name && f.Exported && len(f.Params) == 0 {
			return true
		}
	}

	return false
}

func (a *Analyzer) function(fset *token.FileSet, pkg *types.Package, syn *syntax, fn *types.Func) typemodel.Func {
	sig := fn.Type().(*types.Signature)
	fs := syn.funcs[fn]

	out := typemodel.Func{
		PkgPath:  pkg.Path(),
		Name:     fn.Name(),
		Exported: fn.Exported(),
		Pos:      fset.Position(fn.Pos()),
	}

	for i := range sig.TypeParams().Len() {
		out.TypeParams = append(out.TypeParams, sig.TypeParams().At(i).Obj().Name())
	}

	c := newConverter(pkg, fs.file)
	out.Params, out.Results = c.signature(sig, fs.typ, out.TypeParams)

	return out
}

func (a *Analyzer) declare(fset *token.FileSet, pkg *types.Package, syn *syntax, tn *types.TypeName, named *types.Named) *typemodel.TypeDecl {
	ts := syn.specs[tn]

	d := &typemodel.TypeDecl{
		ID:       typemodel.TypeID{PkgPath: pkg.Path(), Name: tn.Name()},
		Exported: tn.Exported(),
		Generate: hasDirective(ts.doc, typemodel.DirectiveGenerate),
		Pos:      fset.Position(tn.Pos()),
	}

	if ts.doc != nil {
		d.Doc = ts.doc.Text()
	}

	if ts.enclosing != nil {
		d.Enclosed = true
		d.EnclosingExported = ts.enclosing.Name.IsExported()
	}

	for i := range named.TypeParams().Len() {
		d.TypeParams = append(d.TypeParams, named.TypeParams().At(i).Obj().Name())
	}

	c := newConverter(pkg, ts.file)
	m := &methodSet{conv: c, fset: fset, syn: syn, pkg: pkg, typeParams: d.TypeParams}

	switch under := named.Underlying().(type) {
	case *types.Interface:
		d.Kind = typemodel.DeclInterface
		d.Methods = m.ofInterface(d.ID, under)

		for i := range under.NumEmbeddeds() {
			d.Embeds = append(d.Embeds, c.ref(under.EmbeddedType(i), nil, d.TypeParams))
		}

	case *types.Struct:
		d.Kind = typemodel.DeclStruct
		d.Methods = m.ofStruct(d.ID, named, under)
		d.Constructors = []typemodel.Constructor{{Accessible: true}}

		for i := range under.NumFields() {
			f := under.Field(i)
			if f.Embedded() {
				d.Embeds = append(d.Embeds, c.ref(f.Type(), syn.fields[f], d.TypeParams))
			}
		}

	case *types.Basic:
		d.Kind = typemodel.DeclScalar
		d.Underlying, _ = fromType(under)
		d.Methods = m.ofStruct(d.ID, named, nil)
		d.Constructors = []typemodel.Constructor{{Accessible: true}}

	default:
		d.Kind = typemodel.DeclOther
		d.Underlying, _ = fromType(under)
		d.Methods = m.ofStruct(d.ID, named, nil)
		d.Constructors = []typemodel.Constructor{{Accessible: true}}
	}

	return d
}
