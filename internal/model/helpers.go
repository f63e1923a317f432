package model

import (
	"fmt"
	"path"
	"slices"

	"builder-generator/internal/typemodel"
)

// Helper is a package-level helper needed by some category.
type Helper struct {
	Category string
	Name     string
	Code     string
}

// Helpers registers helpers once per (category, name), in registration order.
type Helpers struct {
	order []Helper
	index map[[2]string]int
}

// NewHelpers returns an empty registry.
func NewHelpers() *Helpers {
	return &Helpers{index: make(map[[2]string]int)}
}

// Register adds a helper unless one with the same category and name exists.
// code is only called for the first registration. It reports whether the
// helper was added.
func (h *Helpers) Register(category, name string, code func() string) bool {
	key := [2]string{category, name}
	if _, ok := h.index[key]; ok {
		return false
	}

	h.index[key] = len(h.order)
	h.order = append(h.order, Helper{Category: category, Name: name, Code: code()})

	return true
}

// Has reports whether a helper is registered.
func (h *Helpers) Has(category, name string) bool {
	_, ok := h.index[[2]string{category, name}]

	return ok
}

// All returns the helpers in registration order.
func (h *Helpers) All() []Helper {
	return slices.Clone(h.order)
}

// Imports tracks the packages referenced by code generated into pkgPath.
type Imports struct {
	pkgPath string
	byPath  map[string]string
	byName  map[string]string
}

// NewImports returns the import set of a file in pkgPath.
func NewImports(pkgPath string) *Imports {
	return &Imports{
		pkgPath: pkgPath,
		byPath:  make(map[string]string),
		byName:  make(map[string]string),
	}
}

// PkgPath returns the package the code is generated into.
func (i *Imports) PkgPath() string {
	return i.pkgPath
}

// Use records an import and returns the name qualifying its identifiers,
// or "" for the target package itself.
func (i *Imports) Use(importPath string) string {
	if importPath == "" || importPath == i.pkgPath {
		return ""
	}

	if name, ok := i.byPath[importPath]; ok {
		return name
	}

	base := path.Base(importPath)
	name := base

	for n := 2; ; n++ {
		if _, taken := i.byName[name]; !taken {
			break
		}

		name = fmt.Sprintf("%s%d", base, n)
	}

	i.byPath[importPath] = name
	i.byName[name] = importPath

	return name
}

// Qualify renders ref for the target package, recording its imports.
func (i *Imports) Qualify(ref *typemodel.TypeRef) string {
	return ref.Format(i.Use)
}

// Buildkit returns the qualifier of the runtime library.
func (i *Imports) Buildkit() string {
	return i.Use(typemodel.BuildkitPath)
}

// Spec is one import line.
type Spec struct {
	Name string // explicit name, empty when it matches the path base
	Path string
}

// Specs returns the recorded imports sorted by path.
func (i *Imports) Specs() []Spec {
	out := make([]Spec, 0, len(i.byPath))

	for p, name := range i.byPath {
		s := Spec{Path: p}
		if name != path.Base(p) {
			s.Name = name
		}

		out = append(out, s)
	}

	slices.SortFunc(out, func(a, b Spec) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})

	return out
}
