package schema

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"builder-generator/internal/common"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/match"
	"builder-generator/internal/typemodel"
)

// Name suffixes of the companion types of a datatype.
const (
	BuilderSuffix     = "Builder"
	BuilderBaseSuffix = "BuilderBase"
)

// Standard method names.
const (
	MethodEqual       = "Equal"
	MethodHash        = "Hash"
	MethodString      = "String"
	MethodMarshalJSON = "MarshalJSON"
	MethodToBuilder   = "ToBuilder"
)

// Extractor turns type declarations into Datatype schemas.
type Extractor struct {
	Provider typemodel.Provider
	// Effects may be nil, in which case no property is upgraded to HAS_DEFAULT.
	Effects typemodel.EffectAnalyzer
	Sink    diagnostic.Sink
}

// extraction carries the state of one Extract call.
type extraction struct {
	*Extractor

	decl   *typemodel.TypeDecl
	failed bool
}

// Extract builds the schema of id. Type-level errors are reported to the
// sink and yield an error wrapping diagnostic.ErrCannotGenerate.
func (e *Extractor) Extract(id typemodel.TypeID) (*Datatype, error) {
	decl, ok := e.Provider.Lookup(id)
	if !ok {
		e.report(diagnostic.DiagnosticError, diagnostic.CodeTypeNotFound,
			"type not found", id.Name, "", token.Position{})

		return nil, fmt.Errorf("%s: %w", id, diagnostic.ErrCannotGenerate)
	}

	x := &extraction{Extractor: e, decl: decl}

	x.validateType()

	dt := &Datatype{
		ID:             id,
		Kind:           decl.Kind,
		Value:          common.Decapitalize(id.Name) + "Value",
		Partial:        common.Decapitalize(id.Name) + "Partial",
		PartialBuilder: common.Decapitalize(id.Name) + "PartialBuilder",
		Defaults:       map[string]bool{},
	}

	if decl.Kind == typemodel.DeclStruct {
		dt.Value = id.Name + "Value"
		dt.Partial = dt.Value
		dt.Result = typemodel.Pointer(typemodel.Named(id.PkgPath, dt.Value))
		dt.Constructor, dt.ConstructorPointer = constructorName(e.Provider, id)
	} else {
		dt.Result = dt.Ref()
	}

	dt.Builder = x.detectBuilder()
	dt.Extensible = dt.Builder.Convention == ConventionZeroValue

	if x.failed {
		return nil, fmt.Errorf("%s: %w", id, diagnostic.ErrCannotGenerate)
	}

	dt.Properties = x.properties()
	dt.Overrides, dt.Serializable = x.overrides()
	dt.Defaults = x.defaults(dt)

	return dt, nil
}

func (e *Extractor) report(sev diagnostic.DiagnosticSeverity, code, msg, typeName, prop string, pos token.Position, suggestions ...string) {
	d := diagnostic.Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     msg,
		Type:        typeName,
		Property:    prop,
		Suggestions: suggestions,
	}

	if pos.IsValid() {
		d.Pos = pos.String()
	}

	e.Sink.Report(d)
}

func (x *extraction) typeError(code, msg string, suggestions ...string) {
	x.failed = true
	x.report(diagnostic.DiagnosticError, code, msg, x.decl.ID.Name, "", x.decl.Pos, suggestions...)
}

func (x *extraction) propertyError(code, msg, prop string, pos token.Position, suggestions ...string) {
	x.report(diagnostic.DiagnosticError, code, msg, x.decl.ID.Name, prop, pos, suggestions...)
}

func (x *extraction) validateType() {
	d := x.decl

	if !d.Exported {
		x.typeError(diagnostic.CodeTypeNotExported, "type must be exported")
	}

	if d.Enclosed && !d.EnclosingExported {
		x.typeError(diagnostic.CodeTypeEnclosed, "type must not be declared in an unexported scope")
	}

	if len(d.TypeParams) > 0 {
		x.typeError(diagnostic.CodeTypeGeneric, "generic types are not supported")
	}

	switch d.Kind {
	case typemodel.DeclInterface:
	case typemodel.DeclStruct:
		if name, _ := constructorName(x.Provider, d.ID); name == "" && !d.HasZeroConstructor() {
			x.typeError(diagnostic.CodeTypeNoConstructor,
				fmt.Sprintf("struct type needs an accessible zero-argument constructor New%s()", d.ID.Name))
		}
	default:
		x.typeError(diagnostic.CodeTypeKind,
			fmt.Sprintf("%s types cannot have builders; use an interface", d.Kind))
	}
}

func constructorName(p typemodel.Provider, id typemodel.TypeID) (string, bool) {
	for _, f := range p.Factories(id) {
		if f.Name == "New"+id.Name && len(f.Params) == 0 && len(f.TypeParams) == 0 && len(f.Results) > 0 {
			return f.Name, f.Results[0].Kind == typemodel.RefPointer
		}
	}

	return "", false
}

func (x *extraction) detectBuilder() Builder {
	id := x.decl.ID
	generated := Builder{
		Name:      id.Name + BuilderSuffix,
		Generated: id.Name + BuilderSuffix,
	}

	user, ok := x.Provider.FindNested(id, BuilderSuffix)
	if !ok {
		x.report(diagnostic.DiagnosticInfo, diagnostic.CodeBuilderMissing,
			fmt.Sprintf("no %s declared; add \"type %s struct{ %s }\" to customize the builder",
				generated.Name, generated.Name, id.Name+BuilderBaseSuffix),
			id.Name, "", x.decl.Pos)

		return generated
	}

	b := Builder{
		Declared:  true,
		Name:      user.ID.Name,
		Generated: id.Name + BuilderBaseSuffix,
	}

	if user.Kind != typemodel.DeclStruct {
		x.typeError(diagnostic.CodeBuilderNotStruct,
			fmt.Sprintf("%s must be a struct type, not a %s", user.ID.Name, user.Kind))

		return b
	}

	baseID := typemodel.TypeID{PkgPath: id.PkgPath, Name: b.Generated}

	base := typemodel.NamedID(baseID)
	if _, exists := x.Provider.Lookup(baseID); !exists {
		base = typemodel.Unresolved(baseID.PkgPath, baseID.Name)
	}

	if !x.Provider.IsSubtype(typemodel.NamedID(user.ID), base) {
		var embedded []string
		for _, e := range user.Embeds {
			embedded = append(embedded, e.Deref().ID.Name)
		}

		x.typeError(diagnostic.CodeBuilderSupertype,
			fmt.Sprintf("%s must embed %s", user.ID.Name, b.Generated),
			match.Suggest(b.Generated, embedded)...)

		return b
	}

	switch {
	case user.HasZeroConstructor():
		b.Convention = ConventionZeroValue
	default:
		factory, generic, found := builderFactory(x.Provider, user.ID)
		if !found {
			x.typeError(diagnostic.CodeBuilderNoConstructor,
				fmt.Sprintf("%s needs a zero-argument factory New%s()", user.ID.Name, user.ID.Name))

			return b
		}

		b.Factory = factory
		b.Convention = ConventionFactory

		if generic {
			b.Convention = ConventionGenericFactory
		}
	}

	return b
}

// builderFactory finds a parameterless factory of the builder, preferring
// New<Builder> and plain functions over generic ones.
func builderFactory(p typemodel.Provider, id typemodel.TypeID) (string, bool, bool) {
	fns := slices.DeleteFunc(p.Factories(id), func(f typemodel.Func) bool {
		return len(f.Params) > 0 || !f.Exported
	})

	slices.SortStableFunc(fns, func(a, b typemodel.Func) int {
		rank := func(f typemodel.Func) int {
			r := 0
			if len(f.TypeParams) > 0 {
				r += 2
			}

			if f.Name != "New"+id.Name {
				r++
			}

			return r
		}

		return rank(a) - rank(b)
	})

	if len(fns) == 0 {
		return "", false, false
	}

	return fns[0].Name, len(fns[0].TypeParams) > 0, true
}

// isStandard reports whether m is one of the methods every generated value
// provides itself.
func isStandard(m *typemodel.Method, self *typemodel.TypeRef) bool {
	switch m.Name {
	case MethodEqual:
		return len(m.Params) == 1 && len(m.Results) == 1 && m.Results[0].IsBool() &&
			(m.Params[0].Equal(self) || m.Params[0].Kind == typemodel.RefInterface)
	case MethodHash:
		return len(m.Params) == 0 && len(m.Results) == 1 && m.Results[0].IsBasic("uint64")
	case MethodString:
		return len(m.Params) == 0 && len(m.Results) == 1 && m.Results[0].IsBasic("string")
	case MethodMarshalJSON:
		return len(m.Params) == 0 && len(m.Results) == 2 &&
			m.Results[0].Equal(typemodel.Slice(typemodel.Basic("byte"))) &&
			m.Results[1].Equal(typemodel.Error())
	case MethodToBuilder:
		if len(m.Params) != 0 || len(m.Results) != 1 {
			return false
		}

		r := m.Results[0].Deref()

		return r.Kind == typemodel.RefNamed && r.ID.PkgPath == self.ID.PkgPath &&
			r.ID.Name == self.ID.Name+BuilderSuffix
	default:
		return false
	}
}

func (x *extraction) properties() []*Property {
	self := typemodel.NamedID(x.decl.ID)

	var (
		props   []*Property
		getters []string
	)

	for i := range x.decl.Methods {
		if m := &x.decl.Methods[i]; m.Abstract && len(m.Params) == 0 {
			getters = append(getters, m.Name)
		}
	}

	for i := range x.decl.Methods {
		m := &x.decl.Methods[i]
		if !m.Abstract || m.Universal || isStandard(m, self) {
			continue
		}

		prop, ok := x.property(m, getters)
		if !ok {
			continue
		}

		if prev, dup := findProperty(props, prop.Name); dup {
			x.propertyError(diagnostic.CodePropertyDuplicate,
				fmt.Sprintf("%s and %s both declare property %q", prev.Getter, prop.Getter, prop.Name),
				prop.Name, m.Pos)

			continue
		}

		prop.Index = len(props)
		props = append(props, prop)
	}

	return props
}

func findProperty(props []*Property, name string) (*Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// property accepts m as a getter, or reports why it cannot be one.
func (x *extraction) property(m *typemodel.Method, getters []string) (*Property, bool) {
	if len(m.Params) != 0 || len(m.Results) != 1 {
		x.propertyError(diagnostic.CodePropertyNotGetter,
			fmt.Sprintf("abstract method %s is not a getter: getters take no arguments and return one value", m.Name),
			m.Name, m.Pos)

		return nil, false
	}

	var rest string

	switch {
	case common.HasUpperBoundary(m.Name, "Get"):
		rest = strings.TrimPrefix(m.Name, "Get")
	case common.HasUpperBoundary(m.Name, "Is"):
		if !m.Results[0].IsBool() {
			x.propertyError(diagnostic.CodePropertyGetter,
				fmt.Sprintf("%s must return bool, found %s", m.Name, m.Results[0]),
				m.Name, m.Pos, "Get"+strings.TrimPrefix(m.Name, "Is"))

			return nil, false
		}

		rest = strings.TrimPrefix(m.Name, "Is")
	default:
		suggestion := "Get" + common.Capitalize(m.Name)
		if m.Results[0].IsBool() {
			suggestion = "Is" + common.Capitalize(m.Name)
		}

		suggestions := []string{suggestion}
		for _, s := range match.Suggest(m.Name, getters) {
			if s != m.Name && !slices.Contains(suggestions, s) {
				suggestions = append(suggestions, s)
			}
		}

		x.propertyError(diagnostic.CodePropertyNotGetter,
			fmt.Sprintf("abstract method %s does not follow the Get/Is naming convention", m.Name),
			m.Name, m.Pos, suggestions...)

		return nil, false
	}

	typ := m.Results[0]
	nullable := false

	if typ.Kind == typemodel.RefPointer {
		nullable = true
		typ = typ.Elem

		if typ.IsNillable() {
			x.propertyError(diagnostic.CodePropertyNullable,
				fmt.Sprintf("%s returns a pointer to %s, which is already nillable", m.Name, typ),
				m.Name, m.Pos)

			return nil, false
		}
	}

	name := common.Decapitalize(rest)

	return &Property{
		Name:        name,
		Capitalized: rest,
		AllCaps:     common.AllCaps(name),
		Field:       common.SafeIdent(name),
		Getter:      m.Name,
		Type:        typ,
		BoxedType:   Boxed(typ),
		Nullable:    nullable,
		Pos:         m.Pos,
	}, true
}

// Boxed returns t when nil is a valid value of t, *t otherwise.
func Boxed(t *typemodel.TypeRef) *typemodel.TypeRef {
	if t.IsNillable() {
		return t
	}

	return typemodel.Pointer(t)
}

func (x *extraction) overrides() (Overrides, bool) {
	self := typemodel.NamedID(x.decl.ID)

	var (
		o            Overrides
		serializable bool
	)

	for i := range x.decl.Methods {
		m := &x.decl.Methods[i]
		if m.Universal || !isStandard(m, self) {
			continue
		}

		level := OverrideOverrideable

		switch {
		case m.Abstract:
			level = OverrideAbsent
		case m.Final:
			level = OverrideFinal
		}

		switch m.Name {
		case MethodEqual:
			o.Equal = level
			o.EqualParam = m.Params[0]
		case MethodHash:
			o.Hash = level
		case MethodString:
			o.String = level
		case MethodMarshalJSON:
			serializable = true
		}
	}

	if (o.Equal == OverrideAbsent) != (o.Hash == OverrideAbsent) {
		missing, present := MethodHash, MethodEqual
		if o.Equal == OverrideAbsent {
			missing, present = MethodEqual, MethodHash
		}

		x.propertyError(diagnostic.CodeOverrideAsymmetric,
			fmt.Sprintf("%s is implemented without %s; implement both or neither", present, missing),
			present, x.decl.Pos, missing)
	}

	return o, serializable
}

// defaults intersects the setters run on every construction path of the
// user builder.
func (x *extraction) defaults(dt *Datatype) map[string]bool {
	out := map[string]bool{}
	if x.Effects == nil || !dt.Builder.Declared {
		return out
	}

	paths := x.Effects.ConstructionPaths(typemodel.TypeID{PkgPath: dt.ID.PkgPath, Name: dt.Builder.Name})
	if len(paths) == 0 {
		return out
	}

	counts := map[string]int{}

	for _, path := range paths {
		seen := map[string]bool{}
		for _, call := range path {
			if !seen[call] {
				seen[call] = true
				counts[call]++
			}
		}
	}

	for _, p := range dt.Properties {
		if counts["Set"+p.Capitalized] == len(paths) {
			out[p.Name] = true
		}
	}

	return out
}
