package analyze

import (
	"go/token"
	"go/types"
	"slices"

	"builder-generator/internal/typemodel"
)

// methodSet converts the method set of one declared type.
type methodSet struct {
	conv       *converter
	fset       *token.FileSet
	syn        *syntax
	pkg        *types.Package
	typeParams []string
}

// ofInterface lists the methods of an interface, embedded interfaces first,
// each group in declaration order.
func (m *methodSet) ofInterface(owner typemodel.TypeID, iface *types.Interface) []typemodel.Method {
	byName := make(map[string]*types.Func, iface.NumMethods())
	for i := range iface.NumMethods() {
		fn := iface.Method(i)
		byName[fn.Name()] = fn
	}

	var out []typemodel.Method

	for _, name := range interfaceOrder(iface, nil) {
		fn, ok := byName[name]
		if !ok {
			continue
		}

		out = append(out, m.method(owner, fn, fn.Type().(*types.Signature)))
	}

	return out
}

// ofStruct lists the method set of *named. Methods promoted from embedded
// interfaces come first and are abstract unless a shallower method hides
// them.
func (m *methodSet) ofStruct(owner typemodel.TypeID, named *types.Named, st *types.Struct) []typemodel.Method {
	mset := types.NewMethodSet(types.NewPointer(named))

	byName := make(map[string]*types.Selection, mset.Len())
	rest := make([]*types.Selection, 0, mset.Len())

	for i := range mset.Len() {
		sel := mset.At(i)
		byName[sel.Obj().Name()] = sel
		rest = append(rest, sel)
	}

	var order []string
	if st != nil {
		order = structOrder(st, nil)
	}

	slices.SortStableFunc(rest, func(x, y *types.Selection) int { return int(x.Obj().Pos() - y.Obj().Pos()) })

	for _, sel := range rest {
		if !slices.Contains(order, sel.Obj().Name()) {
			order = append(order, sel.Obj().Name())
		}
	}

	var out []typemodel.Method

	for _, name := range order {
		sel, ok := byName[name]
		if !ok {
			continue
		}

		fn := sel.Obj().(*types.Func)

		sig, ok := sel.Type().(*types.Signature)
		if !ok {
			continue
		}

		out = append(out, m.method(owner, fn, sig))
	}

	return out
}

func (m *methodSet) method(owner typemodel.TypeID, fn *types.Func, sig *types.Signature) typemodel.Method {
	out := typemodel.Method{
		Name:     fn.Name(),
		Variadic: sig.Variadic(),
		Exported: fn.Exported(),
		Origin:   owner,
		Pos:      m.fset.Position(fn.Pos()),
	}

	if decl, ok := fn.Type().(*types.Signature); ok && decl.Recv() != nil {
		recv := decl.Recv().Type()
		if p, ok := recv.(*types.Pointer); ok {
			out.PointerReceiver = true
			recv = p.Elem()
		}

		out.Abstract = types.IsInterface(recv)

		if n, ok := recv.(*types.Named); ok && n.Obj().Pkg() != nil {
			out.Origin = typemodel.TypeID{PkgPath: n.Obj().Pkg().Path(), Name: n.Obj().Name()}
		}
	}

	fs := m.syn.funcs[fn.Origin()]

	conv := m.conv
	if fs != nil && fn.Pkg() != nil {
		conv = newConverter(fn.Pkg(), fs.file)
	}

	if fs != nil {
		out.Params, out.Results = conv.signature(sig, fs.typ, m.typeParams)
		out.Final = !out.Abstract && hasDirective(fs.doc, typemodel.DirectiveFinal)
	} else {
		out.Params, out.Results = conv.signature(sig, nil, m.typeParams)
	}

	return out
}

// interfaceOrder returns method names of iface: embedded interfaces in
// order, then explicit methods by position.
func interfaceOrder(iface *types.Interface, seen map[*types.Interface]bool) []string {
	if seen == nil {
		seen = map[*types.Interface]bool{}
	}

	if seen[iface] {
		return nil
	}

	seen[iface] = true

	var out []string

	add := func(name string) {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	for i := range iface.NumEmbeddeds() {
		if sub, ok := iface.EmbeddedType(i).Underlying().(*types.Interface); ok {
			for _, name := range interfaceOrder(sub, seen) {
				add(name)
			}
		}
	}

	explicit := make([]*types.Func, 0, iface.NumExplicitMethods())
	for i := range iface.NumExplicitMethods() {
		explicit = append(explicit, iface.ExplicitMethod(i))
	}

	slices.SortStableFunc(explicit, func(x, y *types.Func) int { return int(x.Pos() - y.Pos()) })

	for _, fn := range explicit {
		add(fn.Name())
	}

	return out
}

// structOrder returns the names of methods promoted from interfaces embedded
// in st, directly or through embedded structs, in field order.
func structOrder(st *types.Struct, seen map[*types.Struct]bool) []string {
	if seen == nil {
		seen = map[*types.Struct]bool{}
	}

	if seen[st] {
		return nil
	}

	seen[st] = true

	var out []string

	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}

		t := f.Type()
		if p, ok := t.(*types.Pointer); ok {
			t = p.Elem()
		}

		var names []string

		switch under := t.Underlying().(type) {
		case *types.Interface:
			names = interfaceOrder(under, nil)
		case *types.Struct:
			names = structOrder(under, seen)
		}

		for _, name := range names {
			if !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}

	return out
}
