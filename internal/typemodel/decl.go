package typemodel

import (
	"go/token"

	"builder-generator/internal/common"
)

// DeclKind is the kind of a declared type.
type DeclKind int

const (
	DeclOther     DeclKind = iota // func types, chans, aliases of unnamed types, ...
	DeclInterface                 // interface type
	DeclStruct                    // struct type
	DeclScalar                    // named basic type, typically an enum
)

// String returns a human-readable representation of the DeclKind.
func (k DeclKind) String() string {
	switch k {
	case DeclOther:
		return "other"
	case DeclInterface:
		return "interface"
	case DeclStruct:
		return "struct"
	case DeclScalar:
		return "scalar"
	default:
		return common.UnknownStr
	}
}

// Directives recognised in doc comments.
const (
	DirectiveGenerate = "//builder:generate"
	DirectiveFinal    = "//builder:final"
)

// Method is a method of a declared type's method set.
type Method struct {
	Name     string
	Params   []*TypeRef
	Results  []*TypeRef
	Variadic bool
	// Abstract is set for interface methods not implemented by the type.
	Abstract bool
	// Final is set for implemented methods carrying the //builder:final directive.
	Final    bool
	Exported bool
	// Origin is the declaring type, which differs from the owner for promoted methods.
	Origin TypeID
	// Universal marks methods every value has regardless of its declaration.
	Universal bool
	// PointerReceiver is set for implemented methods declared on *T.
	PointerReceiver bool
	Pos             token.Position
}

// Result returns the single result type, or nil.
func (m *Method) Result() *TypeRef {
	if len(m.Results) != 1 {
		return nil
	}

	return m.Results[0]
}

// Signature returns the method type as a func reference.
func (m *Method) Signature() *TypeRef {
	f := Func(m.Params, m.Results)
	f.Variadic = m.Variadic

	return f
}

// Func is a package-level function, used to discover factories.
type Func struct {
	PkgPath    string
	Name       string
	TypeParams []string
	Params     []*TypeRef
	Results    []*TypeRef
	Exported   bool
	Pos        token.Position
}

// Constructor is a way to obtain a value of a declared type without arguments
// beyond Params. For Go types the zero value is the only parameterless one.
type Constructor struct {
	Params     []*TypeRef
	Accessible bool
}

// TypeDecl is a declared type.
type TypeDecl struct {
	ID   TypeID
	Kind DeclKind
	Doc  string

	Exported bool
	// Enclosed is set for types declared inside a function or another scope.
	Enclosed          bool
	EnclosingExported bool

	TypeParams []string
	// Methods is the full method set, including promoted and abstract methods.
	Methods []Method
	// Embeds lists embedded interfaces and struct fields.
	Embeds []*TypeRef
	// Constructors lists accessible ways to construct a value of the type.
	Constructors []Constructor
	// Underlying describes scalar and other kinds.
	Underlying *TypeRef
	// Generate marks types requesting a builder (//builder:generate).
	Generate bool
	Pos      token.Position
}

// Method returns the named method from the method set.
func (d *TypeDecl) Method(name string) (*Method, bool) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i], true
		}
	}

	return nil, false
}

// Ref returns a reference to the declared type, instantiated with its own
// type parameters.
func (d *TypeDecl) Ref() *TypeRef {
	args := make([]*TypeRef, 0, len(d.TypeParams))
	for _, tp := range d.TypeParams {
		args = append(args, TypeParam(tp))
	}

	r := NamedID(d.ID, args...)
	r.Nillable = d.IsNillable()

	return r
}

// IsNillable reports whether nil is a valid value of the declared type.
func (d *TypeDecl) IsNillable() bool {
	switch d.Kind {
	case DeclInterface:
		return true
	case DeclOther, DeclScalar:
		return d.Underlying.IsNillable()
	default:
		return false
	}
}

// HasZeroConstructor reports whether an accessible parameterless constructor exists.
func (d *TypeDecl) HasZeroConstructor() bool {
	for _, c := range d.Constructors {
		if c.Accessible && len(c.Params) == 0 {
			return true
		}
	}

	return false
}

// Provider is the type-model query surface used by extraction and classification.
type Provider interface {
	// Lookup returns the declaration of id.
	Lookup(id TypeID) (*TypeDecl, bool)
	// AbstractGetterCandidates lists the abstract methods of id taking no
	// parameters, in declaration order.
	AbstractGetterCandidates(id TypeID) []Method
	// ReturnType resolves the single result of method on receiver,
	// substituting the receiver's type arguments.
	ReturnType(receiver *TypeRef, method string) (*TypeRef, bool)
	// IsSubtype reports whether sub can be used where super is expected.
	IsSubtype(sub, super *TypeRef) bool
	// FindNested finds the type companion to owner named by suffix,
	// e.g. Builder for Person resolves PersonBuilder.
	FindNested(owner TypeID, suffix string) (*TypeDecl, bool)
	// Factories lists package-level functions returning id or *id.
	Factories(id TypeID) []Func
}

// EffectAnalyzer reports constructor side effects.
type EffectAnalyzer interface {
	// ConstructionPaths returns, for every way of constructing builder, the
	// names of the methods guaranteed to run before any early return.
	// Nil means nothing is known.
	ConstructionPaths(builder TypeID) [][]string
}
