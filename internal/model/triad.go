package model

import (
	"builder-generator/internal/common"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// DescriptorKind says which artifact a descriptor describes.
type DescriptorKind int

const (
	KindBuilder DescriptorKind = iota
	KindValue
	KindPartial
	KindPartialBuilder
)

// String returns a human-readable representation of the DescriptorKind.
func (k DescriptorKind) String() string {
	switch k {
	case KindBuilder:
		return "builder"
	case KindValue:
		return "value"
	case KindPartial:
		return "partial"
	case KindPartialBuilder:
		return "partial_builder"
	default:
		return common.UnknownStr
	}
}

// Field is a struct field of a generated type.
type Field struct {
	Name string
	Type *typemodel.TypeRef
	// Property is the owning property, empty for bookkeeping fields.
	Property string
	// Embedded fields are rendered without a name.
	Embedded bool
}

// Param is a method parameter.
type Param struct {
	Name     string
	Type     *typemodel.TypeRef
	Variadic bool
}

// Method is a generated method.
type Method struct {
	Name string
	// Property is the property the method belongs to, empty for
	// whole-builder methods.
	Property string
	Op       Op
	Params   []Param
	Results  []*typemodel.TypeRef
	// Body holds Go statements, already qualified for the target package.
	Body []string
	Doc  string
}

// Signature renders the parameter list for diagnostics and tests.
func (m *Method) Signature() string {
	s := m.Name + "("

	for i, p := range m.Params {
		if i > 0 {
			s += ", "
		}

		if p.Variadic && p.Type.Kind == typemodel.RefSlice {
			s += "..." + p.Type.Elem.String()
		} else {
			s += p.Type.String()
		}
	}

	return s + ")"
}

// Descriptor describes one generated type.
type Descriptor struct {
	Name    string
	Kind    DescriptorKind
	Doc     string
	Fields  []Field
	Methods []Method
}

// Method returns the named method.
func (d *Descriptor) Method(name string) (*Method, bool) {
	for i := range d.Methods {
		if d.Methods[i].Name == name {
			return &d.Methods[i], true
		}
	}

	return nil, false
}

// MethodByOp returns the first method performing op on property.
func (d *Descriptor) MethodByOp(property string, op Op) (*Method, bool) {
	for i := range d.Methods {
		if d.Methods[i].Property == property && d.Methods[i].Op == op {
			return &d.Methods[i], true
		}
	}

	return nil, false
}

// MethodNames lists the method names in order.
func (d *Descriptor) MethodNames() []string {
	out := make([]string, len(d.Methods))
	for i, m := range d.Methods {
		out[i] = m.Name
	}

	return out
}

// Const is a generated constant.
type Const struct {
	Name  string
	Value string
}

// PropertyModel is the classification result of one property.
type PropertyModel struct {
	Property *schema.Property
	Category string
	// Required properties are tracked by the unset set.
	Required bool
	// HasDefault properties are assigned by the builder factory.
	HasDefault bool
	// IndexConst names the property index constant.
	IndexConst string
	Fragment   Fragment
}

// Triad is the full description of the code generated for one datatype.
type Triad struct {
	Datatype       *schema.Datatype
	Properties     []PropertyModel
	Builder        Descriptor
	Value          Descriptor
	Partial        Descriptor
	PartialBuilder *Descriptor
	// Consts are the property index constants.
	Consts []Const
	// Funcs are package-level functions (constructors, names table).
	Funcs   []Func
	Helpers *Helpers
	Imports *Imports
}

// Func is a generated package-level function or variable declaration.
type Func struct {
	Name string
	Doc  string
	// Code is the complete declaration.
	Code string
}

// Property returns the model of the named property.
func (t *Triad) Property(name string) (*PropertyModel, bool) {
	for i := range t.Properties {
		if t.Properties[i].Property.Name == name {
			return &t.Properties[i], true
		}
	}

	return nil, false
}

// Descriptors returns every descriptor of the triad.
func (t *Triad) Descriptors() []*Descriptor {
	out := []*Descriptor{&t.Builder, &t.Value, &t.Partial}
	if t.PartialBuilder != nil {
		out = append(out, t.PartialBuilder)
	}

	return out
}
