package standard

import (
	"fmt"

	"builder-generator/internal/model"
	"builder-generator/internal/schema"
	"builder-generator/internal/typemodel"
)

// MarshalMethod returns MarshalJSON for datatypes declaring it abstractly.
// Properties are encoded under their names; absent ones are omitted.
func MarshalMethod(t Target) (model.Method, bool) {
	if !t.Datatype.Serializable || t.Datatype.Kind != typemodel.DeclInterface {
		return model.Method{}, false
	}

	body := []string{fmt.Sprintf("m := make(map[string]any, %d)", len(t.Properties))}

	for i := range t.Properties {
		p := &t.Properties[i]
		f := p.Fragment
		set := fmt.Sprintf("m[%q] = %s", f.Label, f.Shown(recv))

		switch {
		case guarded(t, p):
			body = append(body, fmt.Sprintf("if !%s {", unsetHas(recv, p)), set, "}")
		case f.ConditionalInValue:
			body = append(body, fmt.Sprintf("if %s {", f.Present(recv)), set, "}")
		default:
			body = append(body, set)
		}
	}

	body = append(body, fmt.Sprintf("return %s.Marshal(m)", t.Imports.Use("encoding/json")))

	return model.Method{
		Name:    schema.MethodMarshalJSON,
		Op:      model.OpMarshalJSON,
		Results: []*typemodel.TypeRef{typemodel.Slice(typemodel.Basic("byte")), typemodel.Error()},
		Body:    body,
	}, true
}
