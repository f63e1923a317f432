package typemodel

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"slices"
	"strconv"
)

// BuildkitPath is the import path of the runtime support library.
const BuildkitPath = "builder-generator/buildkit"

// KnownImports maps the package names that type expressions may use without
// declaring an import.
var KnownImports = map[string]string{
	"buildkit": BuildkitPath,
	"sql":      "database/sql",
	"time":     "time",
	"iter":     "iter",
	"json":     "encoding/json",
}

var basicNames = []string{
	"bool", "string", "byte", "rune", "uintptr",
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64",
	"float32", "float64", "complex64", "complex128",
}

// ExprContext resolves identifiers of a type expression.
type ExprContext struct {
	// PkgPath qualifies unqualified declared names.
	PkgPath string
	// Imports maps package names to import paths, on top of KnownImports.
	Imports map[string]string
	// TypeParams lists names resolving to type parameters.
	TypeParams []string
}

// ParseExpr parses a Go type expression such as "map[string][]*time.Time".
func ParseExpr(expr string, ctx ExprContext) (*TypeRef, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q: %w", expr, err)
	}

	ref, err := ctx.convert(node)
	if err != nil {
		return nil, fmt.Errorf("invalid type expression %q: %w", expr, err)
	}

	return ref, nil
}

// MustParse is like ParseExpr with an empty context, and panics on error.
func MustParse(expr string) *TypeRef {
	ref, err := ParseExpr(expr, ExprContext{})
	if err != nil {
		panic(err)
	}

	return ref
}

func (c ExprContext) pkg(name string) (string, bool) {
	if p, ok := c.Imports[name]; ok {
		return p, true
	}

	p, ok := KnownImports[name]

	return p, ok
}

//nolint:gocyclo,cyclop // one case per expression kind
func (c ExprContext) convert(node ast.Expr) (*TypeRef, error) {
	switch n := node.(type) {
	case *ast.Ident:
		switch {
		case slices.Contains(c.TypeParams, n.Name):
			return TypeParam(n.Name), nil
		case slices.Contains(basicNames, n.Name):
			return Basic(n.Name), nil
		case n.Name == "any":
			return Any(), nil
		case n.Name == "error":
			return Error(), nil
		default:
			return Named(c.PkgPath, n.Name), nil
		}

	case *ast.SelectorExpr:
		x, ok := n.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported selector %T", n.X)
		}

		p, ok := c.pkg(x.Name)
		if !ok {
			return nil, fmt.Errorf("unknown package %q", x.Name)
		}

		return Named(p, n.Sel.Name), nil

	case *ast.IndexExpr:
		return c.instantiate(n.X, []ast.Expr{n.Index})

	case *ast.IndexListExpr:
		return c.instantiate(n.X, n.Indices)

	case *ast.StarExpr:
		elem, err := c.convert(n.X)
		if err != nil {
			return nil, err
		}

		return Pointer(elem), nil

	case *ast.ArrayType:
		elem, err := c.convert(n.Elt)
		if err != nil {
			return nil, err
		}

		if n.Len == nil {
			return Slice(elem), nil
		}

		lit, ok := n.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return nil, fmt.Errorf("unsupported array length")
		}

		size, err := strconv.ParseInt(lit.Value, 0, 64)
		if err != nil {
			return nil, err
		}

		return Array(size, elem), nil

	case *ast.MapType:
		key, err := c.convert(n.Key)
		if err != nil {
			return nil, err
		}

		value, err := c.convert(n.Value)
		if err != nil {
			return nil, err
		}

		return Map(key, value), nil

	case *ast.ChanType:
		elem, err := c.convert(n.Value)
		if err != nil {
			return nil, err
		}

		return &TypeRef{Kind: RefChan, Elem: elem}, nil

	case *ast.FuncType:
		return c.funcType(n)

	case *ast.InterfaceType:
		if n.Methods != nil && len(n.Methods.List) > 0 {
			return nil, fmt.Errorf("only empty interfaces are supported")
		}

		return Any(), nil

	case *ast.StructType:
		if n.Fields != nil && len(n.Fields.List) > 0 {
			return nil, fmt.Errorf("only empty structs are supported")
		}

		return EmptyStruct(), nil

	case *ast.ParenExpr:
		return c.convert(n.X)

	default:
		return nil, fmt.Errorf("unsupported expression %T", node)
	}
}

func (c ExprContext) instantiate(base ast.Expr, indices []ast.Expr) (*TypeRef, error) {
	ref, err := c.convert(base)
	if err != nil {
		return nil, err
	}

	if ref.Kind != RefNamed {
		return nil, fmt.Errorf("type arguments on non-named type %s", ref)
	}

	for _, idx := range indices {
		arg, err := c.convert(idx)
		if err != nil {
			return nil, err
		}

		ref.Args = append(ref.Args, arg)
	}

	return ref, nil
}

func (c ExprContext) funcType(n *ast.FuncType) (*TypeRef, error) {
	out := &TypeRef{Kind: RefFunc}

	fields := func(list *ast.FieldList, dst *[]*TypeRef) error {
		if list == nil {
			return nil
		}

		for _, f := range list.List {
			typ := f.Type
			if ell, ok := typ.(*ast.Ellipsis); ok {
				out.Variadic = true
				typ = &ast.ArrayType{Elt: ell.Elt}
			}

			ref, err := c.convert(typ)
			if err != nil {
				return err
			}

			count := max(len(f.Names), 1)
			for range count {
				*dst = append(*dst, ref)
			}
		}

		return nil
	}

	if err := fields(n.Params, &out.Params); err != nil {
		return nil, err
	}

	if err := fields(n.Results, &out.Results); err != nil {
		return nil, err
	}

	return out, nil
}

// Convert converts a parsed type expression, such as a field type taken from
// a syntax tree.
func (c ExprContext) Convert(node ast.Expr) (*TypeRef, error) {
	return c.convert(node)
}
