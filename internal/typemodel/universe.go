package typemodel

import (
	"maps"
	"slices"
	"strings"
)

// Universe is an in-memory Provider and EffectAnalyzer.
type Universe struct {
	types   map[TypeID]*TypeDecl
	funcs   map[string][]Func
	effects map[TypeID][][]string
}

// NewUniverse returns an empty universe.
func NewUniverse() *Universe {
	return &Universe{
		types:   make(map[TypeID]*TypeDecl),
		funcs:   make(map[string][]Func),
		effects: make(map[TypeID][][]string),
	}
}

// Add registers (or replaces) a type declaration.
func (u *Universe) Add(d *TypeDecl) {
	u.types[d.ID] = d
}

// AddFunc registers a package-level function.
func (u *Universe) AddFunc(f Func) {
	u.funcs[f.PkgPath] = append(u.funcs[f.PkgPath], f)
}

// SetConstructionPaths records the effect analysis of a builder type.
func (u *Universe) SetConstructionPaths(id TypeID, paths [][]string) {
	u.effects[id] = paths
}

// Merge copies every declaration of other into u.
func (u *Universe) Merge(other *Universe) {
	maps.Copy(u.types, other.types)
	maps.Copy(u.effects, other.effects)

	for pkg, fns := range other.funcs {
		u.funcs[pkg] = append(u.funcs[pkg], fns...)
	}
}

// Types returns every declaration, sorted by id.
func (u *Universe) Types() []*TypeDecl {
	out := slices.Collect(maps.Values(u.types))
	slices.SortFunc(out, func(a, b *TypeDecl) int {
		if c := strings.Compare(a.ID.PkgPath, b.ID.PkgPath); c != 0 {
			return c
		}

		return strings.Compare(a.ID.Name, b.ID.Name)
	})

	return out
}

// Package returns the declarations of pkgPath, sorted by name.
func (u *Universe) Package(pkgPath string) []*TypeDecl {
	var out []*TypeDecl

	for _, d := range u.Types() {
		if d.ID.PkgPath == pkgPath {
			out = append(out, d)
		}
	}

	return out
}

// Lookup implements Provider.
func (u *Universe) Lookup(id TypeID) (*TypeDecl, bool) {
	d, ok := u.types[id]

	return d, ok
}

// AbstractGetterCandidates implements Provider.
func (u *Universe) AbstractGetterCandidates(id TypeID) []Method {
	d, ok := u.types[id]
	if !ok {
		return nil
	}

	var out []Method

	for _, m := range d.Methods {
		if m.Abstract && len(m.Params) == 0 {
			out = append(out, m)
		}
	}

	return out
}

// ReturnType implements Provider.
func (u *Universe) ReturnType(receiver *TypeRef, method string) (*TypeRef, bool) {
	receiver = receiver.Deref()
	if receiver == nil || receiver.Kind != RefNamed {
		return nil, false
	}

	d, ok := u.types[receiver.ID]
	if !ok {
		return nil, false
	}

	m, ok := d.Method(method)
	if !ok || len(m.Results) == 0 {
		return nil, false
	}

	return m.Results[0].Subst(bindings(d, receiver)), true
}

func bindings(d *TypeDecl, ref *TypeRef) map[string]*TypeRef {
	if len(d.TypeParams) == 0 || len(d.TypeParams) != len(ref.Args) {
		return nil
	}

	env := make(map[string]*TypeRef, len(d.TypeParams))
	for i, name := range d.TypeParams {
		env[name] = ref.Args[i]
	}

	return env
}

// IsSubtype implements Provider.
//
// An unresolved super matches any embedding with the same simple name, since
// the referenced type may only come into existence once it is generated.
func (u *Universe) IsSubtype(sub, super *TypeRef) bool {
	if sub == nil || super == nil {
		return false
	}

	if sub.Equal(super) {
		return true
	}

	if super.Kind == RefInterface {
		return true
	}

	if super.Kind != RefNamed {
		return false
	}

	subDecl, ok := u.types[sub.Deref().ID]
	if !ok || sub.Deref().Kind != RefNamed {
		return false
	}

	if super.Unresolved {
		return u.embedsName(subDecl, super.ID.Name, map[TypeID]bool{})
	}

	if u.embeds(subDecl, super, map[TypeID]bool{}) {
		return true
	}

	superDecl, ok := u.types[super.ID]
	if !ok || superDecl.Kind != DeclInterface {
		return false
	}

	env := bindings(superDecl, super)

	for _, want := range superDecl.Methods {
		have, ok := subDecl.Method(want.Name)
		if !ok || have.Abstract && subDecl.Kind != DeclInterface {
			return false
		}

		if !have.Signature().Equal(want.Signature().Subst(env)) {
			return false
		}
	}

	return true
}

func (u *Universe) embeds(d *TypeDecl, super *TypeRef, seen map[TypeID]bool) bool {
	if seen[d.ID] {
		return false
	}

	seen[d.ID] = true

	for _, e := range d.Embeds {
		e = e.Deref()
		if e.Equal(super) {
			return true
		}

		if inner, ok := u.types[e.ID]; ok && u.embeds(inner, super, seen) {
			return true
		}
	}

	return false
}

func (u *Universe) embedsName(d *TypeDecl, name string, seen map[TypeID]bool) bool {
	if seen[d.ID] {
		return false
	}

	seen[d.ID] = true

	for _, e := range d.Embeds {
		e = e.Deref()
		if e.Kind == RefNamed && e.ID.Name == name {
			return true
		}

		if inner, ok := u.types[e.ID]; ok && u.embedsName(inner, name, seen) {
			return true
		}
	}

	return false
}

// FindNested implements Provider.
func (u *Universe) FindNested(owner TypeID, suffix string) (*TypeDecl, bool) {
	return u.Lookup(TypeID{PkgPath: owner.PkgPath, Name: owner.Name + suffix})
}

// Factories implements Provider.
func (u *Universe) Factories(id TypeID) []Func {
	var out []Func

	for _, f := range u.funcs[id.PkgPath] {
		if len(f.Results) == 0 {
			continue
		}

		r := f.Results[0].Deref()
		if r != nil && r.Kind == RefNamed && r.ID == id {
			out = append(out, f)
		}
	}

	return out
}

// ConstructionPaths implements EffectAnalyzer.
func (u *Universe) ConstructionPaths(builder TypeID) [][]string {
	return u.effects[builder]
}

// Normalize refreshes the Nillable flag of every named reference held by
// declarations of the universe. Sources that build references before all
// declarations are known call it once loading completes.
func (u *Universe) Normalize() {
	fix := func(r *TypeRef) {
		r.Walk(func(n *TypeRef) {
			if n.Kind != RefNamed || n.Unresolved {
				return
			}

			if d, ok := u.types[n.ID]; ok {
				n.Nillable = d.IsNillable()
			}
		})
	}

	for _, d := range u.types {
		for i := range d.Methods {
			for _, p := range d.Methods[i].Params {
				fix(p)
			}

			for _, r := range d.Methods[i].Results {
				fix(r)
			}
		}

		for _, e := range d.Embeds {
			fix(e)
		}
	}

	for _, fns := range u.funcs {
		for _, f := range fns {
			for _, p := range f.Params {
				fix(p)
			}

			for _, r := range f.Results {
				fix(r)
			}
		}
	}
}
