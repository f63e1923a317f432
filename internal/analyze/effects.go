package analyze

import (
	"go/ast"
	"go/types"
	"slices"

	"builder-generator/internal/typemodel"
)

// constructionPaths analyses the functions returning a struct of pkg, or a
// pointer to one. Each return statement yields the builder methods called
// unconditionally before it.
func constructionPaths(pkg *types.Package, info *types.Info, funcs []*ast.FuncDecl) map[typemodel.TypeID][][]string {
	out := map[typemodel.TypeID][][]string{}

	for _, fd := range funcs {
		if fd.Body == nil {
			continue
		}

		fn, ok := info.Defs[fd.Name].(*types.Func)
		if !ok {
			continue
		}

		sig := fn.Type().(*types.Signature)
		if sig.Results().Len() == 0 || sig.TypeParams().Len() > 0 {
			continue
		}

		builder := builtStruct(pkg, sig.Results().At(0).Type())
		if builder == nil {
			continue
		}

		w := &effectWalker{info: info, builder: builder}
		w.block(fd.Body.List, nil)

		id := typemodel.TypeID{PkgPath: pkg.Path(), Name: builder.Obj().Name()}
		out[id] = append(out[id], w.paths...)
	}

	return out
}

func builtStruct(pkg *types.Package, t types.Type) *types.Named {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	n, ok := t.(*types.Named)
	if !ok || n.Obj().Pkg() != pkg {
		return nil
	}

	if _, ok := n.Underlying().(*types.Struct); !ok {
		return nil
	}

	return n
}

type effectWalker struct {
	info    *types.Info
	builder *types.Named
	paths   [][]string
}

// block walks stmts with the methods already guaranteed in cur. It returns
// the methods guaranteed after the block and whether the block always
// returns.
func (w *effectWalker) block(stmts []ast.Stmt, cur []string) ([]string, bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ReturnStmt:
			for _, r := range s.Results {
				cur = w.calls(r, cur)
			}

			w.paths = append(w.paths, slices.Clone(cur))

			return cur, true

		case *ast.BlockStmt:
			var done bool
			if cur, done = w.block(s.List, cur); done {
				return cur, true
			}

		case *ast.IfStmt:
			if s.Init != nil {
				cur = w.calls(s.Init, cur)
			}

			cur = w.calls(s.Cond, cur)

			w.block(s.Body.List, slices.Clone(cur))

			if s.Else != nil {
				w.block([]ast.Stmt{s.Else}, slices.Clone(cur))
			}

		case *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt, *ast.LabeledStmt:
			// Bodies may not run, but their returns are exits.
			w.branches(s, cur)

		default:
			cur = w.calls(s, cur)
		}
	}

	return cur, false
}

// branches records the exits of the nested blocks of a compound statement.
func (w *effectWalker) branches(stmt ast.Stmt, cur []string) {
	ast.Inspect(stmt, func(n ast.Node) bool {
		switch b := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.BlockStmt:
			if isClauses(b) {
				return true
			}

			w.block(b.List, slices.Clone(cur))

			return false
		case *ast.CaseClause:
			w.block(b.Body, slices.Clone(cur))
			return false
		case *ast.CommClause:
			w.block(b.Body, slices.Clone(cur))
			return false
		}

		return true
	})
}

func isClauses(b *ast.BlockStmt) bool {
	if len(b.List) == 0 {
		return false
	}

	switch b.List[0].(type) {
	case *ast.CaseClause, *ast.CommClause:
		return true
	default:
		return false
	}
}

// calls appends the builder methods called in node, outside function literals.
func (w *effectWalker) calls(node ast.Node, cur []string) []string {
	if node == nil {
		return cur
	}

	ast.Inspect(node, func(n ast.Node) bool {
		switch c := n.(type) {
		case *ast.FuncLit:
			return false
		case *ast.CallExpr:
			sel, ok := c.Fun.(*ast.SelectorExpr)
			if !ok || !w.isBuilder(sel.X) {
				return true
			}

			if !slices.Contains(cur, sel.Sel.Name) {
				cur = append(cur, sel.Sel.Name)
			}
		}

		return true
	})

	return cur
}

func (w *effectWalker) isBuilder(x ast.Expr) bool {
	tv, ok := w.info.Types[x]
	if !ok || tv.Type == nil {
		return false
	}

	t := tv.Type
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	n, ok := t.(*types.Named)

	return ok && n.Obj() == w.builder.Obj()
}
