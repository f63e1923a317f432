package category

import (
	"fmt"

	"builder-generator/internal/common"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// Category is the structural classification of a property.
type Category int

const (
	List Category = iota
	Set
	SortedSet
	Map
	Multiset
	ListMultimap
	SetMultimap
	Optional
	Buildable
	Nullable
	Default
)

// String returns a human-readable representation of the Category.
func (c Category) String() string {
	switch c {
	case List:
		return "list"
	case Set:
		return "set"
	case SortedSet:
		return "sorted_set"
	case Map:
		return "map"
	case Multiset:
		return "multiset"
	case ListMultimap:
		return "list_multimap"
	case SetMultimap:
		return "set_multimap"
	case Optional:
		return "optional"
	case Buildable:
		return "buildable"
	case Nullable:
		return "nullable"
	case Default:
		return "default"
	default:
		return common.UnknownStr
	}
}

// IsCollection reports whether the category accumulates elements.
func (c Category) IsCollection() bool {
	return c <= SetMultimap
}

// Names used by generated statements.
const (
	Recv     = "b"         // builder receiver
	ValueRcv = "v"         // value and partial receiver
	Source   = "value"     // MergeFrom argument
	Other    = "other"     // MergeFromBuilder argument
	Defaults = "_defaults" // fresh builder used to recover defaults
	Target   = "dst"       // value under construction
	Unset    = "_unset"    // unset set of a partial merge source
)

// Strategy is the capability interface implemented by every category.
type Strategy interface {
	Category() Category
	Property() *schema.Property
	// Required properties are tracked by the unset set.
	Required() bool
	// HasDefault properties are always assigned by the builder factory.
	HasDefault() bool

	// BuilderFields declares the builder-side storage.
	BuilderFields(env *Env) []model.Field
	// ValueFields declares the storage shared by Value and Partial.
	ValueFields(env *Env) []model.Field
	// Init returns statements run when a builder is first used.
	Init(env *Env) []string
	// Mutators returns the builder methods of the property.
	Mutators(env *Env) []model.Method
	// ValueGetter returns the getter implemented by Value and Partial.
	ValueGetter(env *Env) model.Method
	// MergeFromValue copies the property from Source.
	MergeFromValue(env *Env) []string
	// MergeFromBuilder copies the property from Other.
	MergeFromBuilder(env *Env) []string
	// FromComputed stores the result of expr through the property's setter.
	FromComputed(env *Env, expr string) []string
	// Clear resets the property to its pristine state.
	Clear(env *Env) []string
	// FinalAssign copies the property into Target.
	FinalAssign(env *Env, partial bool) []string
	// Fragment returns the standard-method contribution.
	Fragment(env *Env) model.Fragment
	// NeedsDefaults reports whether MergeFromValue reads Defaults.
	NeedsDefaults(env *Env) bool
	// RegisterHelpers adds the package-level helpers the code relies on.
	RegisterHelpers(env *Env)
	// NewSlot returns the runtime storage of the property.
	NewSlot(env SlotEnv) Slot
}

// Env is the code generation environment of one property.
type Env struct {
	Datatype *schema.Datatype
	// Builder is the generated builder type, receiver of every mutator.
	Builder string
	Imports *model.Imports
	Helpers *model.Helpers
	// Index is the constant holding the property's unset-set index.
	Index string
	// Fresh is set when a pristine builder is not the zero value, so
	// clearing copies from a throwaway builder held in Defaults.
	Fresh bool
}

func (e *Env) bk() string {
	return e.Imports.Buildkit()
}

func (e *Env) q(r *typemodel.TypeRef) string {
	return e.Imports.Qualify(r)
}

func (e *Env) pkg(path string) string {
	return e.Imports.Use(path)
}

// self is the result type of fluent mutators.
func (e *Env) self() *typemodel.TypeRef {
	return typemodel.Pointer(typemodel.Named(e.Datatype.ID.PkgPath, e.Builder))
}

// fluent returns a mutator returning the builder.
func (e *Env) fluent(p *schema.Property, name string, op model.Op, doc string, params []model.Param, body ...string) model.Method {
	return model.Method{
		Name:     name,
		Property: p.Name,
		Op:       op,
		Params:   params,
		Results:  []*typemodel.TypeRef{e.self()},
		Body:     append(body, "return "+Recv),
		Doc:      doc,
	}
}

// notSet renders a NotSetError literal for p.
func (e *Env) notSet(p *schema.Property) string {
	return fmt.Sprintf("%s.NotSetError{Type: %q, Property: %q}", e.bk(), e.Datatype.ID.Name, p.Name)
}

func param(name string, t *typemodel.TypeRef) model.Param {
	return model.Param{Name: name, Type: t}
}

func variadic(name string, elem *typemodel.TypeRef) model.Param {
	return model.Param{Name: name, Type: typemodel.Slice(elem), Variadic: true}
}

func bkRef(name string, args ...*typemodel.TypeRef) *typemodel.TypeRef {
	return typemodel.Named(typemodel.BuildkitPath, name, args...)
}

func seqOf(elem *typemodel.TypeRef) *typemodel.TypeRef {
	return typemodel.Named("iter", "Seq", elem)
}

func seq2Of(k, v *typemodel.TypeRef) *typemodel.TypeRef {
	return typemodel.Named("iter", "Seq2", k, v)
}

func funcOf(params []*typemodel.TypeRef, results ...*typemodel.TypeRef) *typemodel.TypeRef {
	return typemodel.Func(params, results)
}

// field renders the property's storage on recv.
func field(recv string, p *schema.Property) string {
	return recv + "." + p.Field
}

// base holds what every strategy shares.
type base struct {
	prop *schema.Property
	cat  Category
}

func (s *base) Category() Category           { return s.cat }
func (s *base) Property() *schema.Property   { return s.prop }
func (s *base) Required() bool               { return false }
func (s *base) HasDefault() bool             { return false }
func (s *base) Init(*Env) []string           { return nil }
func (s *base) RegisterHelpers(*Env)         {}
func (s *base) NeedsDefaults(*Env) bool      { return false }
func (s *base) getterName() string           { return s.prop.Getter }
func (s *base) method(prefix string) string  { return prefix + s.prop.Capitalized }
func (s *base) suffixed(prefix, suffix string) string {
	return prefix + s.prop.Capitalized + suffix
}

// getter returns a value getter reading the property's single field.
func (s *base) getter(result *typemodel.TypeRef, body ...string) model.Method {
	if len(body) == 0 {
		body = []string{"return " + field(ValueRcv, s.prop)}
	}

	return model.Method{
		Name:     s.getterName(),
		Property: s.prop.Name,
		Op:       model.OpValueGetter,
		Results:  []*typemodel.TypeRef{result},
		Body:     body,
	}
}

// equalExpr compares two expressions of type t.
func equalExpr(env *Env, t *typemodel.TypeRef, a, b string) string {
	switch {
	case t.Kind == typemodel.RefBasic:
		return a + " == " + b
	case t.Kind == typemodel.RefSlice && t.Elem.Kind == typemodel.RefBasic:
		return fmt.Sprintf("%s.Equal(%s, %s)", env.pkg("slices"), a, b)
	case t.Kind == typemodel.RefMap && t.Elem.Kind == typemodel.RefBasic:
		return fmt.Sprintf("%s.Equal(%s, %s)", env.pkg("maps"), a, b)
	case t.Kind == typemodel.RefNamed && t.ID.PkgPath == typemodel.BuildkitPath:
		return fmt.Sprintf("%s.Equal(%s)", a, b)
	default:
		return fmt.Sprintf("%s.Equal(%s, %s)", env.bk(), a, b)
	}
}

func hashExpr(env *Env, x string) string {
	return fmt.Sprintf("%s.HashOf(%s)", env.bk(), x)
}

// plainFragment is the fragment of a property stored in one always-present field.
func plainFragment(env *Env, p *schema.Property, t *typemodel.TypeRef) model.Fragment {
	return model.Fragment{
		Label: p.Name,
		Shown: func(recv string) string { return field(recv, p) },
		Equal: func(a, b string) string { return equalExpr(env, t, field(a, p), field(b, p)) },
		Hash:  func(recv string) string { return hashExpr(env, field(recv, p)) },
	}
}

// Nested describes a type with a compatible builder.
type Nested struct {
	// Value is the buildable type.
	Value *typemodel.TypeRef
	// Builder is the builder type, without pointer.
	Builder *typemodel.TypeRef
	// Factory is the builder factory in Builder's package, empty when the
	// zero value is usable.
	Factory string
	// MergeFromBuilder is set when the builder merges another builder
	// directly, otherwise the other builder is merged via BuildPartial.
	MergeFromBuilder bool
	// ToBuilder is set when Value converts itself back into a builder.
	ToBuilder bool
}

// NewFunc returns the name of the helper constructing a fresh builder.
func (n *Nested) NewFunc(env *Env) string {
	name := "new" + n.Builder.ID.Name
	if n.Builder.ID.PkgPath != env.Imports.PkgPath() {
		name = "new" + common.Capitalize(common.SafeIdent(env.pkg(n.Builder.ID.PkgPath))) + n.Builder.ID.Name
	}

	return name
}

// NewExpr returns an expression evaluating to a fresh *Builder.
func (n *Nested) NewExpr(env *Env) string {
	return n.NewFunc(env) + "()"
}

func (n *Nested) registerHelper(env *Env) {
	name := n.NewFunc(env)
	env.Helpers.Register(Buildable.String(), name, func() string {
		t := env.q(n.Builder)

		body := "return &" + t + "{}"
		if n.Factory != "" {
			fn := n.Factory
			if q := env.pkg(n.Builder.ID.PkgPath); q != "" {
				fn = q + "." + fn
			}

			body = "return " + fn + "()"
		}

		return fmt.Sprintf("func %s() *%s {\n\t%s\n}", name, t, body)
	})
}

// mergeBuilder returns the statement merging builder expression src into dst.
func (n *Nested) mergeBuilder(dst, src string) string {
	if n.MergeFromBuilder {
		return fmt.Sprintf("%s.MergeFromBuilder(%s)", dst, src)
	}

	return fmt.Sprintf("%s.MergeFrom(%s.BuildPartial())", dst, src)
}
