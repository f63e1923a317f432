package standard

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const pkg = "example.com/people"

func part(label string, conditional bool) Part {
	p := Part{Label: label, Shown: "v." + label, Conditional: conditional}
	if conditional {
		p.Present = "v." + label + " != nil"
	}

	return p
}

func leads(plan StringPlan) []Lead {
	out := make([]Lead, len(plan.Parts))
	for i, p := range plan.Parts {
		out[i] = p.Lead
	}

	return out
}

func TestNewStringPlan_Modes(t *testing.T) {
	tests := []struct {
		name  string
		parts []Part
		mode  Mode
		leads []Lead
		last  int
	}{
		{
			name:  "empty",
			mode:  ModeUnconditional,
			leads: []Lead{},
			last:  -1,
		},
		{
			name:  "unconditional",
			parts: []Part{part("a", false), part("b", false)},
			mode:  ModeUnconditional,
			leads: []Lead{LeadNone, LeadComma},
			last:  -1,
		},
		{
			name:  "conditional",
			parts: []Part{part("a", true), part("b", true), part("c", true)},
			mode:  ModeConditional,
			leads: []Lead{LeadNone, LeadSeparator, LeadSeparator},
			last:  2,
		},
		{
			name:  "unconditional first",
			parts: []Part{part("a", false), part("b", true), part("c", true)},
			mode:  ModeMixed,
			leads: []Lead{LeadNone, LeadComma, LeadComma},
			last:  -1,
		},
		{
			name:  "conditional first",
			parts: []Part{part("a", true), part("b", false), part("c", true)},
			mode:  ModeMixed,
			leads: []Lead{LeadNone, LeadSeparator, LeadComma},
			last:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewStringPlan("Person", tt.parts)
			assert.Equal(t, tt.mode, plan.Mode)
			assert.Equal(t, tt.leads, leads(plan))
			assert.Equal(t, tt.last, plan.LastConditional)
		})
	}
}

func TestStringPlan_LastConditionalDoesNotAdvance(t *testing.T) {
	plan := NewStringPlan("Person", []Part{part("a", true), part("b", true)})

	assert.True(t, plan.Parts[0].Advance)
	assert.False(t, plan.Parts[1].Advance)

	body := strings.Join(plan.Body("fmt", "strings"), "\n")
	assert.Equal(t, 1, strings.Count(body, `sep = ", "`))
	assert.Contains(t, body, `fmt.Fprintf(&sb, "%sb=%v", sep, v.b)`)
}

func TestStringPlan_Body(t *testing.T) {
	plan := NewStringPlan("Person", []Part{part("a", false), part("b", false)})
	assert.Equal(t, []string{`return fmt.Sprintf("Person{a=%v, b=%v}", v.a, v.b)`}, plan.Body("fmt", "strings"))

	plan = NewStringPlan("Person", nil)
	assert.Equal(t, []string{`return "Person{}"`}, plan.Body("fmt", "strings"))

	plan = NewStringPlan("Person", []Part{part("a", false), part("b", true)})
	body := plan.Body("fmt", "strings")
	assert.NotContains(t, strings.Join(body, "\n"), "sep")
	assert.Contains(t, body, `fmt.Fprintf(&sb, ", b=%v", v.b)`)
}

// renderPlan evaluates a plan the way its generated code would, given the
// presence of each part.
func renderPlan(plan StringPlan, present []bool) string {
	var sb strings.Builder

	sb.WriteString(plan.Prefix + "{")

	sep := ""

	for i, p := range plan.Parts {
		if p.Conditional && !present[i] {
			continue
		}

		switch p.Lead {
		case LeadComma:
			sb.WriteString(", ")
		case LeadSeparator:
			sb.WriteString(sep)
		}

		fmt.Fprintf(&sb, "%s=%s", p.Label, p.Label)

		if p.Advance {
			sep = ", "
		}
	}

	sb.WriteString("}")

	return sb.String()
}

func TestStringPlan_CommaPlacementAtEverySubset(t *testing.T) {
	shapes := [][]bool{
		{true, true, true},
		{true, false, true},
		{false, true, true},
		{true, true, false},
		{false, false, true},
	}

	for _, shape := range shapes {
		parts := make([]Part, len(shape))
		for i, c := range shape {
			parts[i] = part(string(rune('a'+i)), c)
		}

		plan := NewStringPlan("T", parts)

		for mask := 0; mask < 1<<len(shape); mask++ {
			present := make([]bool, len(shape))
			shown := make([]Shown, len(shape))

			for i := range shape {
				present[i] = !shape[i] || mask&(1<<i) != 0
				shown[i] = Shown{Label: parts[i].Label, Present: present[i], Value: parts[i].Label}
			}

			assert.Equal(t, Render("T", shown), renderPlan(plan, present), "shape %v mask %b", shape, mask)
		}
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "Person{}", Render("Person", nil))
	assert.Equal(t, "Person{a=1, b=x}", Render("Person", []Shown{
		{Label: "a", Present: true, Value: 1},
		{Label: "c", Present: false},
		{Label: "b", Present: true, Value: "x"},
	}))
}

func fragment(label string) model.Fragment {
	return model.Fragment{
		Label: label,
		Shown: func(r string) string { return r + "." + label },
		Equal: func(a, b string) string { return a + "." + label + " == " + b + "." + label },
		Hash:  func(r string) string { return "buildkit.HashOf(" + r + "." + label + ")" },
	}
}

func target(overrides schema.Overrides, partial bool) Target {
	dt := &schema.Datatype{
		ID:        typemodel.TypeID{PkgPath: pkg, Name: "Person"},
		Kind:      typemodel.DeclInterface,
		Overrides: overrides,
	}

	return Target{
		Datatype: dt,
		Type:     "personPartial",
		Partial:  partial,
		Properties: []model.PropertyModel{
			{Required: true, IndexConst: "personNameIndex", Fragment: fragment("name")},
			{Fragment: fragment("tags")},
		},
		Imports: model.NewImports(pkg),
	}
}

func names(ms []model.Method) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}

	return out
}

func TestMethods_Overrides(t *testing.T) {
	assert.Equal(t, []string{"Equal", "Hash", "String"}, names(Methods(target(schema.Overrides{}, false))))

	final := schema.Overrides{Equal: schema.OverrideFinal, Hash: schema.OverrideFinal, String: schema.OverrideFinal}
	assert.Empty(t, Methods(target(final, false)))

	overrideable := schema.Overrides{String: schema.OverrideOverrideable}
	assert.Equal(t, []string{"Equal", "Hash"}, names(Methods(target(overrideable, false))))
}

func TestMethods_PartialGuardsRequired(t *testing.T) {
	ms := Methods(target(schema.Overrides{}, true))
	require.Len(t, ms, 3)

	equal := strings.Join(ms[0].Body, "\n")
	assert.Contains(t, equal, "o, ok := other.(*personPartial)")
	assert.Contains(t, equal, "v._unset.Equal(o._unset)")
	assert.Contains(t, equal, "(v._unset.Has(personNameIndex) || v.name == o.name)")
	assert.Equal(t, "Person", ms[0].Params[0].Type.Format(nil))

	hash := strings.Join(ms[1].Body, "\n")
	assert.Contains(t, hash, "if !v._unset.Has(personNameIndex) {")
	assert.Contains(t, hash, "h = buildkit.Combine(h, v._unset.Hash())")

	str := strings.Join(ms[2].Body, "\n")
	assert.Contains(t, str, "if !v._unset.Has(personNameIndex) {")
	assert.Contains(t, str, `sb.WriteString("Person{")`)
}

func TestMethods_ValueComparesEveryProperty(t *testing.T) {
	ms := Methods(target(schema.Overrides{}, false))

	equal := strings.Join(ms[0].Body, "\n")
	assert.NotContains(t, equal, "_unset")
	assert.Contains(t, equal, "v.name == o.name")

	assert.Equal(t, []string{`return fmt.Sprintf("Person{name=%v, tags=%v}", v.name, v.tags)`}, ms[2].Body)
}

func TestMethods_SharedDelegatesToOverride(t *testing.T) {
	tg := target(schema.Overrides{Equal: schema.OverrideOverrideable, Hash: schema.OverrideOverrideable}, true)
	tg.Datatype.Kind = typemodel.DeclStruct
	tg.Shared = true
	tg.Type = "PersonValue"

	ms := Methods(tg)
	require.Len(t, ms, 3)

	equal := strings.Join(ms[0].Body, "\n")
	assert.Contains(t, equal, "v._partial == o._partial")
	assert.Contains(t, equal, "v.Person.Equal(o.Person)")
	assert.Equal(t, "any", ms[0].Params[0].Type.Format(nil))

	hash := strings.Join(ms[1].Body, "\n")
	assert.Contains(t, hash, "h := v.Person.Hash()")
	assert.Contains(t, hash, "buildkit.HashOf(v._partial)")
}

func TestMarshalMethod(t *testing.T) {
	tg := target(schema.Overrides{}, true)

	_, ok := MarshalMethod(tg)
	assert.False(t, ok, "not serializable")

	tg.Datatype.Serializable = true

	m, ok := MarshalMethod(tg)
	require.True(t, ok)
	assert.Equal(t, []string{
		"m := make(map[string]any, 2)",
		"if !v._unset.Has(personNameIndex) {",
		`m["name"] = v.name`,
		"}",
		`m["tags"] = v.tags`,
		"return json.Marshal(m)",
	}, m.Body)
}
