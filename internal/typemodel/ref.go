package typemodel

import (
	"path"
	"strconv"
	"strings"

	"builder-generator/internal/common"
)

// TypeID uniquely identifies a declared type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "example.com/people"
	Name    string // e.g., "Person"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IsZero reports whether the id is unset.
func (t TypeID) IsZero() bool {
	return t.PkgPath == "" && t.Name == ""
}

// RefKind is the shape of a type expression.
type RefKind int

const (
	RefInvalid   RefKind = iota
	RefBasic             // int, string, bool, ...
	RefNamed             // declared type, possibly instantiated
	RefPointer           // *T
	RefSlice             // []T
	RefArray             // [N]T
	RefMap               // map[K]V
	RefChan              // chan T
	RefFunc              // func(...) ...
	RefInterface         // unnamed interface (any)
	RefStruct            // unnamed struct (struct{})
	RefTypeParam         // type parameter
)

// String returns a human-readable representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefInvalid:
		return "invalid"
	case RefBasic:
		return "basic"
	case RefNamed:
		return "named"
	case RefPointer:
		return "pointer"
	case RefSlice:
		return "slice"
	case RefArray:
		return "array"
	case RefMap:
		return "map"
	case RefChan:
		return "chan"
	case RefFunc:
		return "func"
	case RefInterface:
		return "interface"
	case RefStruct:
		return "struct"
	case RefTypeParam:
		return "type_param"
	default:
		return common.UnknownStr
	}
}

// TypeRef describes a type expression.
type TypeRef struct {
	Kind RefKind
	// ID names basic types ({"", "int"}), declared types and type parameters.
	ID TypeID
	// Args are the type arguments of an instantiated generic named type.
	Args []*TypeRef
	// Elem is the element of pointers, slices, arrays, chans and the value of maps.
	Elem *TypeRef
	// Key is the key of maps.
	Key *TypeRef
	// Len is the length of arrays.
	Len int64
	// Params, Results and Variadic describe func types.
	Params   []*TypeRef
	Results  []*TypeRef
	Variadic bool
	// Nillable is set on named types whose underlying type admits nil.
	Nillable bool
	// Unresolved marks a named reference the source could not resolve, such
	// as a supertype that will only exist once it has been generated.
	Unresolved bool
}

// Basic returns a basic type reference.
func Basic(name string) *TypeRef {
	return &TypeRef{Kind: RefBasic, ID: TypeID{Name: name}}
}

// Named returns a reference to a declared type, instantiated with args.
func Named(pkgPath, name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: RefNamed, ID: TypeID{PkgPath: pkgPath, Name: name}, Args: args}
}

// NamedID returns a reference to the declared type id.
func NamedID(id TypeID, args ...*TypeRef) *TypeRef {
	return Named(id.PkgPath, id.Name, args...)
}

// Unresolved returns a reference to a type that does not exist (yet).
func Unresolved(pkgPath, name string) *TypeRef {
	r := Named(pkgPath, name)
	r.Unresolved = true

	return r
}

// Pointer returns *elem.
func Pointer(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: RefPointer, Elem: elem}
}

// Slice returns []elem.
func Slice(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: RefSlice, Elem: elem}
}

// Array returns [n]elem.
func Array(n int64, elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: RefArray, Len: n, Elem: elem}
}

// Map returns map[key]value.
func Map(key, value *TypeRef) *TypeRef {
	return &TypeRef{Kind: RefMap, Key: key, Elem: value}
}

// Func returns func(params...) results.
func Func(params, results []*TypeRef) *TypeRef {
	return &TypeRef{Kind: RefFunc, Params: params, Results: results}
}

// TypeParam returns a reference to the type parameter name.
func TypeParam(name string) *TypeRef {
	return &TypeRef{Kind: RefTypeParam, ID: TypeID{Name: name}}
}

// Any returns the empty interface.
func Any() *TypeRef {
	return &TypeRef{Kind: RefInterface}
}

// EmptyStruct returns struct{}.
func EmptyStruct() *TypeRef {
	return &TypeRef{Kind: RefStruct}
}

// Error returns the predeclared error interface.
func Error() *TypeRef {
	return &TypeRef{Kind: RefNamed, ID: TypeID{Name: "error"}, Nillable: true}
}

// IsBasic reports whether t is the basic type name (any basic when name is empty).
func (t *TypeRef) IsBasic(name string) bool {
	return t != nil && t.Kind == RefBasic && (name == "" || t.ID.Name == name)
}

// IsBool reports whether t is bool.
func (t *TypeRef) IsBool() bool {
	return t.IsBasic("bool")
}

// IsNamed reports whether t references the declared type pkgPath.name.
func (t *TypeRef) IsNamed(pkgPath, name string) bool {
	return t != nil && t.Kind == RefNamed && t.ID.PkgPath == pkgPath && t.ID.Name == name
}

// IsNillable reports whether nil is a valid value of t.
func (t *TypeRef) IsNillable() bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case RefPointer, RefSlice, RefMap, RefChan, RefFunc, RefInterface:
		return true
	case RefNamed:
		return t.Nillable
	default:
		return false
	}
}

// IsComparable reports whether values of t can be compared with ==, as far
// as the reference alone can tell.
func (t *TypeRef) IsComparable() bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case RefSlice, RefMap, RefFunc:
		return false
	case RefArray:
		return t.Elem.IsComparable()
	default:
		return true
	}
}

// IsOrdered reports whether t is a basic type supporting < (cmp.Ordered).
func (t *TypeRef) IsOrdered() bool {
	if t == nil || t.Kind != RefBasic {
		return false
	}

	switch t.ID.Name {
	case "bool", "complex64", "complex128", "unsafe.Pointer":
		return false
	default:
		return true
	}
}

// Equal reports whether t and o denote identical types.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}

	if t.Kind != o.Kind || t.ID != o.ID || t.Len != o.Len || t.Variadic != o.Variadic {
		return false
	}

	return refsEqual(t.Args, o.Args) &&
		t.Elem.Equal(o.Elem) &&
		t.Key.Equal(o.Key) &&
		refsEqual(t.Params, o.Params) &&
		refsEqual(t.Results, o.Results)
}

func refsEqual(a, b []*TypeRef) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}

	return true
}

// Deref returns the element of a pointer, or t itself.
func (t *TypeRef) Deref() *TypeRef {
	if t != nil && t.Kind == RefPointer {
		return t.Elem
	}

	return t
}

// Subst replaces type parameters by the references bound in env.
func (t *TypeRef) Subst(env map[string]*TypeRef) *TypeRef {
	if t == nil || len(env) == 0 {
		return t
	}

	if t.Kind == RefTypeParam {
		if bound, ok := env[t.ID.Name]; ok {
			return bound
		}

		return t
	}

	out := *t
	out.Args = substAll(t.Args, env)
	out.Params = substAll(t.Params, env)
	out.Results = substAll(t.Results, env)
	out.Elem = t.Elem.Subst(env)
	out.Key = t.Key.Subst(env)

	return &out
}

func substAll(refs []*TypeRef, env map[string]*TypeRef) []*TypeRef {
	if refs == nil {
		return nil
	}

	out := make([]*TypeRef, len(refs))
	for i, r := range refs {
		out[i] = r.Subst(env)
	}

	return out
}

// Walk calls fn for t and every type reference nested inside it.
func (t *TypeRef) Walk(fn func(*TypeRef)) {
	if t == nil {
		return
	}

	fn(t)

	for _, group := range [][]*TypeRef{t.Args, t.Params, t.Results} {
		for _, r := range group {
			r.Walk(fn)
		}
	}

	t.Key.Walk(fn)
	t.Elem.Walk(fn)
}

// String renders t in Go syntax, qualifying declared types by the last
// element of their package path.
func (t *TypeRef) String() string {
	return t.Format(func(pkgPath string) string {
		return path.Base(pkgPath)
	})
}

// Format renders t in Go syntax. qualify maps a package path to the
// identifier used to qualify it; returning "" leaves the name unqualified.
func (t *TypeRef) Format(qualify func(pkgPath string) string) string {
	var sb strings.Builder
	t.format(&sb, qualify)

	return sb.String()
}

func (t *TypeRef) format(sb *strings.Builder, qualify func(string) string) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}

	switch t.Kind {
	case RefBasic, RefTypeParam:
		sb.WriteString(t.ID.Name)

	case RefNamed:
		if t.ID.PkgPath != "" && qualify != nil {
			if q := qualify(t.ID.PkgPath); q != "" {
				sb.WriteString(q)
				sb.WriteByte('.')
			}
		}

		sb.WriteString(t.ID.Name)

		if len(t.Args) > 0 {
			sb.WriteByte('[')
			formatList(sb, t.Args, qualify)
			sb.WriteByte(']')
		}

	case RefPointer:
		sb.WriteByte('*')
		t.Elem.format(sb, qualify)

	case RefSlice:
		sb.WriteString("[]")
		t.Elem.format(sb, qualify)

	case RefArray:
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatInt(t.Len, 10))
		sb.WriteByte(']')
		t.Elem.format(sb, qualify)

	case RefMap:
		sb.WriteString("map[")
		t.Key.format(sb, qualify)
		sb.WriteByte(']')
		t.Elem.format(sb, qualify)

	case RefChan:
		sb.WriteString("chan ")
		t.Elem.format(sb, qualify)

	case RefFunc:
		sb.WriteString("func(")

		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}

			if t.Variadic && i == len(t.Params)-1 && p.Kind == RefSlice {
				sb.WriteString("...")
				p.Elem.format(sb, qualify)

				continue
			}

			p.format(sb, qualify)
		}

		sb.WriteByte(')')

		switch len(t.Results) {
		case 0:
		case 1:
			sb.WriteByte(' ')
			t.Results[0].format(sb, qualify)
		default:
			sb.WriteString(" (")
			formatList(sb, t.Results, qualify)
			sb.WriteByte(')')
		}

	case RefInterface:
		sb.WriteString("any")

	case RefStruct:
		sb.WriteString("struct{}")

	default:
		sb.WriteString("invalid")
	}
}

func formatList(sb *strings.Builder, refs []*TypeRef, qualify func(string) string) {
	for i, r := range refs {
		if i > 0 {
			sb.WriteString(", ")
		}

		r.format(sb, qualify)
	}
}
