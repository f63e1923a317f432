package schema

import (
	"go/token"

	"builder-generator/internal/common"
	"builder-generator/internal/typemodel"
)

// Property is a named, typed attribute declared as an abstract getter.
type Property struct {
	// Name is the property name ("name" for GetName).
	Name string
	// Capitalized is used to derive method names ("Name").
	Capitalized string
	// AllCaps is used for constants ("NAME").
	AllCaps string
	// Field is the Go identifier of the storage field.
	Field string
	// Getter is the accessor method name ("GetName").
	Getter string
	// Type is the declared type, with the null marker removed.
	Type *typemodel.TypeRef
	// BoxedType is Type when it is nillable, *Type otherwise.
	BoxedType *typemodel.TypeRef
	// Nullable is set for null-marked properties (pointer getters).
	Nullable bool
	// Index is the position among the accepted properties.
	Index int
	Pos   token.Position
}

// OverrideLevel says how a standard method is provided by the user type.
type OverrideLevel int

const (
	OverrideAbsent       OverrideLevel = iota // abstract or missing
	OverrideOverrideable                      // implemented
	OverrideFinal                             // implemented and marked final
)

// String returns a human-readable representation of the OverrideLevel.
func (l OverrideLevel) String() string {
	switch l {
	case OverrideAbsent:
		return "absent"
	case OverrideOverrideable:
		return "overrideable"
	case OverrideFinal:
		return "final"
	default:
		return common.UnknownStr
	}
}

// Overrides holds the override level of each standard method.
type Overrides struct {
	Equal  OverrideLevel
	Hash   OverrideLevel
	String OverrideLevel
	// EqualParam is the parameter type of a declared Equal method.
	EqualParam *typemodel.TypeRef
}

// Convention is the way a user-declared builder is constructed.
type Convention int

const (
	ConventionZeroValue      Convention = iota // var b PersonBuilder
	ConventionFactory                          // NewPersonBuilder()
	ConventionGenericFactory                   // NewPersonBuilder[T]()
)

// String returns a human-readable representation of the Convention.
func (c Convention) String() string {
	switch c {
	case ConventionZeroValue:
		return "zero_value"
	case ConventionFactory:
		return "factory"
	case ConventionGenericFactory:
		return "generic_factory"
	default:
		return common.UnknownStr
	}
}

// Builder describes the builder of a datatype.
type Builder struct {
	// Declared is set when the user declared <Type>Builder.
	Declared bool
	// Name is the user builder type, or the generated one when not declared.
	Name string
	// Generated is the name of the generated builder type: <Type>BuilderBase
	// under a declared builder, <Type>Builder otherwise.
	Generated string
	// Convention is how Name values are obtained.
	Convention Convention
	// Factory is the factory function of the factory conventions.
	Factory string
}

// Datatype is the extracted schema of a user type.
type Datatype struct {
	ID   typemodel.TypeID
	Kind typemodel.DeclKind
	// Properties in declaration order.
	Properties []*Property
	Builder    Builder
	// Value, Partial and PartialBuilder name the generated implementation
	// types. Struct datatypes share one type between Value and Partial.
	Value          string
	Partial        string
	PartialBuilder string
	// Result is the type returned by Build.
	Result *typemodel.TypeRef
	// Constructor obtains the embedded user struct for struct datatypes.
	Constructor string
	// ConstructorPointer is set when Constructor returns a pointer.
	ConstructorPointer bool
	Overrides    Overrides
	Serializable bool
	// Extensible is set when the builder is zero-value constructible, which
	// allows a dedicated always-partial builder.
	Extensible bool
	// Defaults lists properties the builder factory always assigns.
	Defaults map[string]bool
}

// SharedPartial reports whether partials are values flagged as partial.
func (d *Datatype) SharedPartial() bool {
	return d.Partial == d.Value
}

// Property returns the named property.
func (d *Datatype) Property(name string) (*Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// HasDefault reports whether name was upgraded to HAS_DEFAULT.
func (d *Datatype) HasDefault(name string) bool {
	return d.Defaults[name]
}

// Ref returns a reference to the datatype.
func (d *Datatype) Ref() *typemodel.TypeRef {
	r := typemodel.NamedID(d.ID)
	r.Nillable = d.Kind == typemodel.DeclInterface

	return r
}

// PropertyNames returns the property names in order.
func (d *Datatype) PropertyNames() []string {
	out := make([]string, len(d.Properties))
	for i, p := range d.Properties {
		out[i] = p.Name
	}

	return out
}
