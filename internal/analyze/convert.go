package analyze

import (
	"go/ast"
	"go/types"

	"builder-generator/internal/typemodel"
)

// converter turns go/types types into type references. Invalid types fall
// back to the syntax tree when the expression is known.
type converter struct {
	pkg   *types.Package
	exprs typemodel.ExprContext
}

func newConverter(pkg *types.Package, file *ast.File) *converter {
	c := &converter{
		pkg:   pkg,
		exprs: typemodel.ExprContext{PkgPath: pkg.Path(), Imports: map[string]string{}},
	}

	if file != nil {
		for _, imp := range file.Imports {
			path := imp.Path.Value[1 : len(imp.Path.Value)-1]

			name := lastSegment(path)
			if imp.Name != nil {
				name = imp.Name.Name
			}

			c.exprs.Imports[name] = path
		}
	}

	return c
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}

	return path
}

// ref converts t, using expr when t is (or contains) an invalid type.
func (c *converter) ref(t types.Type, expr ast.Expr, typeParams []string) *typemodel.TypeRef {
	r, ok := fromType(t)
	if ok || expr == nil {
		return r
	}

	ctx := c.exprs
	ctx.TypeParams = typeParams

	fallback, err := ctx.Convert(expr)
	if err != nil {
		return r
	}

	fallback.Walk(func(n *typemodel.TypeRef) {
		if n.Kind == typemodel.RefNamed && n.ID.PkgPath == c.pkg.Path() && c.pkg.Scope().Lookup(n.ID.Name) == nil {
			n.Unresolved = true
		}
	})

	return fallback
}

// fromType converts t. ok is false when t contains an invalid type.
//
//nolint:gocyclo,cyclop // one case per type kind
func fromType(t types.Type) (ref *typemodel.TypeRef, ok bool) {
	switch tt := t.(type) {
	case *types.Basic:
		if tt.Kind() == types.Invalid {
			return typemodel.Unresolved("", "invalid"), false
		}

		return typemodel.Basic(tt.Name()), true

	case *types.Alias:
		return fromType(types.Unalias(tt))

	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() == nil {
			if obj.Name() == "error" {
				return typemodel.Error(), true
			}

			return typemodel.Basic(obj.Name()), true
		}

		ok = true

		var args []*typemodel.TypeRef

		for i := range tt.TypeArgs().Len() {
			a, aok := fromType(tt.TypeArgs().At(i))
			ok = ok && aok
			args = append(args, a)
		}

		r := typemodel.Named(obj.Pkg().Path(), obj.Name(), args...)
		r.Nillable = nillable(tt.Underlying())

		return r, ok

	case *types.TypeParam:
		return typemodel.TypeParam(tt.Obj().Name()), true

	case *types.Pointer:
		elem, ok := fromType(tt.Elem())
		return typemodel.Pointer(elem), ok

	case *types.Slice:
		elem, ok := fromType(tt.Elem())
		return typemodel.Slice(elem), ok

	case *types.Array:
		elem, ok := fromType(tt.Elem())
		return typemodel.Array(tt.Len(), elem), ok

	case *types.Map:
		key, kok := fromType(tt.Key())
		value, vok := fromType(tt.Elem())

		return typemodel.Map(key, value), kok && vok

	case *types.Chan:
		elem, ok := fromType(tt.Elem())
		return &typemodel.TypeRef{Kind: typemodel.RefChan, Elem: elem}, ok

	case *types.Signature:
		params, pok := tuple(tt.Params())
		results, rok := tuple(tt.Results())

		f := typemodel.Func(params, results)
		f.Variadic = tt.Variadic()

		return f, pok && rok

	case *types.Interface:
		return typemodel.Any(), true

	case *types.Struct:
		return typemodel.EmptyStruct(), true

	default:
		return typemodel.Unresolved("", "invalid"), false
	}
}

func tuple(t *types.Tuple) ([]*typemodel.TypeRef, bool) {
	if t == nil {
		return nil, true
	}

	ok := true
	out := make([]*typemodel.TypeRef, 0, t.Len())

	for i := range t.Len() {
		r, rok := fromType(t.At(i).Type())
		ok = ok && rok
		out = append(out, r)
	}

	return out, ok
}

func nillable(under types.Type) bool {
	switch under.(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return true
	default:
		return false
	}
}

// signature converts sig, using fn to recover invalid parameter or result
// types from the declaration.
func (c *converter) signature(sig *types.Signature, fn *ast.FuncType, typeParams []string) (params, results []*typemodel.TypeRef) {
	var paramExprs, resultExprs []ast.Expr
	if fn != nil {
		paramExprs = fieldExprs(fn.Params)
		resultExprs = fieldExprs(fn.Results)
	}

	for i := range sig.Params().Len() {
		var expr ast.Expr
		if i < len(paramExprs) {
			expr = paramExprs[i]
		}

		t := sig.Params().At(i).Type()
		if sig.Variadic() && i == sig.Params().Len()-1 {
			if ell, ok := expr.(*ast.Ellipsis); ok {
				expr = &ast.ArrayType{Elt: ell.Elt}
			}
		}

		params = append(params, c.ref(t, expr, typeParams))
	}

	for i := range sig.Results().Len() {
		var expr ast.Expr
		if i < len(resultExprs) {
			expr = resultExprs[i]
		}

		results = append(results, c.ref(sig.Results().At(i).Type(), expr, typeParams))
	}

	return params, results
}

// fieldExprs expands a field list to one expression per parameter.
func fieldExprs(list *ast.FieldList) []ast.Expr {
	if list == nil {
		return nil
	}

	var out []ast.Expr

	for _, f := range list.List {
		for range max(len(f.Names), 1) {
			out = append(out, f.Type)
		}
	}

	return out
}
