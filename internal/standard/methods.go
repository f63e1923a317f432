package standard

import (
	"fmt"
	"strings"

	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

const (
	recv  = "v"
	other = "o"
)

// Target is the generated type receiving the standard methods.
type Target struct {
	Datatype *schema.Datatype
	// Type is the generated type name, receiver of the methods.
	Type string
	// Partial is set when required properties may be unset.
	Partial bool
	// Shared is set when values and partials share Type and differ by a
	// _partial flag.
	Shared     bool
	Properties []model.PropertyModel
	Imports    *model.Imports
}

// Methods returns the standard methods to generate on t, skipping the ones
// the user type provides with a final implementation.
func Methods(t Target) []model.Method {
	o := t.Datatype.Overrides

	var out []model.Method

	if o.Equal != schema.OverrideFinal {
		out = append(out, equalMethod(t))
	}

	if o.Hash != schema.OverrideFinal {
		out = append(out, hashMethod(t))
	}

	if o.String == schema.OverrideAbsent {
		out = append(out, model.Method{
			Name:    schema.MethodString,
			Op:      model.OpString,
			Results: []*typemodel.TypeRef{typemodel.Basic("string")},
			Body:    PlanString(t).Body(t.Imports.Use("fmt"), t.Imports.Use("strings")),
		})
	}

	return out
}

// EqualParam is the parameter type of the generated Equal method.
func EqualParam(dt *schema.Datatype) *typemodel.TypeRef {
	switch {
	case dt.Overrides.EqualParam != nil && dt.Kind == typemodel.DeclInterface:
		return dt.Overrides.EqualParam
	case dt.Kind == typemodel.DeclInterface:
		return dt.Ref()
	default:
		return typemodel.Any()
	}
}

// guarded reports whether p may be unset on t.
func guarded(t Target, p *model.PropertyModel) bool {
	return t.Partial && p.Required
}

func unsetHas(r string, p *model.PropertyModel) string {
	return fmt.Sprintf("%s._unset.Has(%s)", r, p.IndexConst)
}

func equalMethod(t Target) model.Method {
	dt := t.Datatype

	body := []string{
		fmt.Sprintf("%s, ok := other.(*%s)", other, t.Type),
		"if !ok {",
		"return false",
		"}",
	}

	var terms []string

	if t.Shared {
		terms = append(terms, fmt.Sprintf("%s._partial == %s._partial", recv, other))
	}

	if t.Partial {
		terms = append(terms, fmt.Sprintf("%s._unset.Equal(%s._unset)", recv, other))
	}

	if dt.Overrides.Equal == schema.OverrideOverrideable {
		terms = append(terms, fmt.Sprintf("%s.%s.Equal(%s.%s)", recv, dt.ID.Name, other, dt.ID.Name))
	} else {
		for i := range t.Properties {
			p := &t.Properties[i]

			term := p.Fragment.Equal(recv, other)
			if guarded(t, p) {
				term = fmt.Sprintf("(%s || %s)", unsetHas(recv, p), term)
			}

			terms = append(terms, term)
		}
	}

	if len(terms) == 0 {
		terms = []string{"true"}
	}

	body = append(body, "return "+strings.Join(terms, " &&\n"))

	return model.Method{
		Name:    schema.MethodEqual,
		Op:      model.OpEqual,
		Params:  []model.Param{{Name: "other", Type: EqualParam(dt)}},
		Results: []*typemodel.TypeRef{typemodel.Basic("bool")},
		Body:    body,
	}
}

func hashMethod(t Target) model.Method {
	dt := t.Datatype
	bk := t.Imports.Buildkit()
	combine := func(x string) string {
		return fmt.Sprintf("h = %s.Combine(h, %s)", bk, x)
	}

	var body []string

	if dt.Overrides.Hash == schema.OverrideOverrideable {
		body = append(body, fmt.Sprintf("h := %s.%s.Hash()", recv, dt.ID.Name))
	} else {
		body = append(body, fmt.Sprintf("h := %s.HashOf(%q)", bk, dt.ID.Name))

		for i := range t.Properties {
			p := &t.Properties[i]
			if guarded(t, p) {
				body = append(body, fmt.Sprintf("if !%s {", unsetHas(recv, p)), combine(p.Fragment.Hash(recv)), "}")

				continue
			}

			body = append(body, combine(p.Fragment.Hash(recv)))
		}
	}

	if t.Partial {
		body = append(body, combine(recv+"._unset.Hash()"))
	}

	if t.Shared {
		body = append(body, combine(fmt.Sprintf("%s.HashOf(%s._partial)", bk, recv)))
	}

	body = append(body, "return h")

	return model.Method{
		Name:    schema.MethodHash,
		Op:      model.OpHash,
		Results: []*typemodel.TypeRef{typemodel.Basic("uint64")},
		Body:    body,
	}
}

// PlanString lays out the String method of t.
func PlanString(t Target) StringPlan {
	parts := make([]Part, len(t.Properties))

	for i := range t.Properties {
		p := &t.Properties[i]
		f := p.Fragment

		part := Part{Label: f.Label, Shown: f.Shown(recv)}

		switch {
		case guarded(t, p):
			part.Conditional = true
			part.Present = "!" + unsetHas(recv, p)
		case f.ConditionalInValue:
			part.Conditional = true
			part.Present = f.Present(recv)
		}

		parts[i] = part
	}

	return NewStringPlan(t.Datatype.ID.Name, parts)
}
