package plan

import (
	"errors"
	"fmt"
	"runtime/debug"

	"builder-generator/internal/assemble"
	"builder-generator/internal/builderstate"
	"builder-generator/internal/category"
	"builder-generator/internal/classify"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// Config holds configuration for the planning process.
type Config struct {
	// StrictMode fails the run when any diagnostic error was reported, even
	// when every type could be generated.
	StrictMode bool
	// Stack adds the goroutine stack to internal error diagnostics.
	Stack bool
}

// DefaultConfig returns the default planning configuration.
func DefaultConfig() Config {
	return Config{}
}

// ErrStrict is returned in strict mode when diagnostics hold errors.
var ErrStrict = errors.New("strict mode: planning reported errors")

// TypePlan is everything generated for one datatype.
type TypePlan struct {
	Datatype   *schema.Datatype
	Strategies []category.Strategy
	Triad      *model.Triad
}

// Categories returns the category of each property, in order.
func (t *TypePlan) Categories() []category.Category {
	out := make([]category.Category, len(t.Strategies))
	for i, s := range t.Strategies {
		out[i] = s.Category()
	}

	return out
}

// State returns the executable builder model of the datatype.
func (t *TypePlan) State() (*builderstate.Type, error) {
	return builderstate.NewType(t.Datatype, t.Strategies)
}

// Result is the outcome of a planning run.
type Result struct {
	Types       []*TypePlan
	Diagnostics diagnostic.Diagnostics
}

// Type returns the plan of the named datatype.
func (r *Result) Type(name string) (*TypePlan, bool) {
	for _, t := range r.Types {
		if t.Datatype.ID.Name == name {
			return t, true
		}
	}

	return nil, false
}

// ByPackage groups the type plans by package path, keeping their order.
func (r *Result) ByPackage() map[string][]*TypePlan {
	out := make(map[string][]*TypePlan)
	for _, t := range r.Types {
		out[t.Datatype.ID.PkgPath] = append(out[t.Datatype.ID.PkgPath], t)
	}

	return out
}

// Planner performs the planning pipeline.
type Planner struct {
	provider typemodel.Provider
	effects  typemodel.EffectAnalyzer
	config   Config
}

// NewPlanner creates a new Planner. effects may be nil.
func NewPlanner(provider typemodel.Provider, effects typemodel.EffectAnalyzer, config Config) *Planner {
	return &Planner{provider: provider, effects: effects, config: config}
}

// Plan extracts, classifies and assembles ids. A failure in one type never
// affects the others; it is reported in the result diagnostics.
func (p *Planner) Plan(ids []typemodel.TypeID) (*Result, error) {
	res := &Result{}

	var datatypes []*schema.Datatype

	for _, id := range ids {
		dt, err := p.extract(id, &res.Diagnostics)
		if err != nil {
			if !errors.Is(err, diagnostic.ErrCannotGenerate) {
				res.Diagnostics.AddInternal(id.Name, err)
			}

			continue
		}

		datatypes = append(datatypes, dt)
	}

	pending := Pending(p.provider, datatypes)

	for _, dt := range datatypes {
		tp, err := p.planType(dt, pending)
		if err != nil {
			res.Diagnostics.AddInternal(dt.ID.Name, err)

			continue
		}

		res.Types = append(res.Types, tp)
	}

	if p.config.StrictMode && res.Diagnostics.HasErrors() {
		return res, ErrStrict
	}

	return res, nil
}

func (p *Planner) recovered(name string, r any) error {
	if p.config.Stack {
		return fmt.Errorf("%w: %s: %v\n%s", assemble.ErrInternal, name, r, debug.Stack())
	}

	return fmt.Errorf("%w: %s: %v", assemble.ErrInternal, name, r)
}

func (p *Planner) extract(id typemodel.TypeID, diags *diagnostic.Diagnostics) (dt *schema.Datatype, err error) {
	defer func() {
		if r := recover(); r != nil {
			dt, err = nil, p.recovered(id.Name, r)
		}
	}()

	x := &schema.Extractor{Provider: p.provider, Effects: p.effects, Sink: diags}

	return x.Extract(id)
}

func (p *Planner) planType(dt *schema.Datatype, pending map[typemodel.TypeID]*category.Nested) (tp *TypePlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			tp, err = nil, p.recovered(dt.ID.Name, r)
		}
	}()

	c := classify.New(&classify.Context{Provider: p.provider, Pending: pending, Datatype: dt})
	strategies := c.ClassifyAll()

	triad, err := assemble.Assemble(dt, strategies)
	if err != nil {
		return nil, err
	}

	return &TypePlan{Datatype: dt, Strategies: strategies, Triad: triad}, nil
}

// Pending describes the builders of datatypes generated in the same batch.
// Only interface datatypes qualify: their Build returns the type itself.
func Pending(provider typemodel.Provider, datatypes []*schema.Datatype) map[typemodel.TypeID]*category.Nested {
	out := make(map[typemodel.TypeID]*category.Nested)

	for _, dt := range datatypes {
		if dt.Kind != typemodel.DeclInterface || dt.Builder.Convention == schema.ConventionGenericFactory {
			continue
		}

		n := &category.Nested{
			Value:            dt.Ref(),
			Builder:          typemodel.Named(dt.ID.PkgPath, dt.Builder.Name),
			MergeFromBuilder: true,
		}

		if dt.Builder.Convention == schema.ConventionFactory {
			n.Factory = dt.Builder.Factory
		}

		if provider != nil {
			if d, ok := provider.Lookup(dt.ID); ok {
				_, n.ToBuilder = d.Method(schema.MethodToBuilder)
			}
		}

		out[dt.ID] = n
	}

	return out
}

// Candidates returns the types of u marked for generation, optionally
// restricted to pkgPaths.
func Candidates(u *typemodel.Universe, pkgPaths ...string) []typemodel.TypeID {
	var out []typemodel.TypeID

	for _, d := range u.Types() {
		if !d.Generate {
			continue
		}

		if len(pkgPaths) > 0 && !contains(pkgPaths, d.ID.PkgPath) {
			continue
		}

		out = append(out, d.ID)
	}

	return out
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}

	return false
}
