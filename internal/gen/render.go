package gen

import (
	"fmt"
	"strings"

	"builder-generator/internal/category"
	"builder-generator/internal/model"
	"builder-generator/internal/typemodel"
)

// renderer turns descriptors into Go declarations for one target package.
type renderer struct {
	imports  *model.Imports
	comments bool
}

func (r *renderer) typ(t *typemodel.TypeRef) string {
	return r.imports.Qualify(t)
}

func (r *renderer) comment(sb *strings.Builder, doc string) {
	if !r.comments || doc == "" {
		return
	}

	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		if line == "" {
			sb.WriteString("//\n")
			continue
		}

		sb.WriteString("// " + line + "\n")
	}
}

// receiver names the receiver of the methods of d.
func receiver(d *model.Descriptor) string {
	if d.Kind == model.KindBuilder {
		return category.Recv
	}

	return category.ValueRcv
}

// descriptor renders the struct type of d followed by its methods.
func (r *renderer) descriptor(d *model.Descriptor) string {
	var sb strings.Builder

	r.comment(&sb, d.Doc)
	sb.WriteString(fmt.Sprintf("type %s struct {\n", d.Name))

	for _, f := range d.Fields {
		if f.Embedded {
			sb.WriteString(fmt.Sprintf("\t%s\n", r.typ(f.Type)))
			continue
		}

		sb.WriteString(fmt.Sprintf("\t%s %s\n", f.Name, r.typ(f.Type)))
	}

	sb.WriteString("}\n")

	for i := range d.Methods {
		sb.WriteString("\n")
		sb.WriteString(r.method(d, &d.Methods[i]))
	}

	return sb.String()
}

func (r *renderer) method(d *model.Descriptor, m *model.Method) string {
	var sb strings.Builder

	r.comment(&sb, m.Doc)
	sb.WriteString(fmt.Sprintf("func (%s *%s) %s(%s)%s {\n", receiver(d), d.Name, m.Name, r.params(m.Params), r.results(m.Results)))

	for _, line := range m.Body {
		sb.WriteString("\t" + line + "\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}

func (r *renderer) params(params []model.Param) string {
	parts := make([]string, len(params))

	for i, p := range params {
		if p.Variadic && p.Type.Kind == typemodel.RefSlice {
			parts[i] = p.Name + " ..." + r.typ(p.Type.Elem)
			continue
		}

		parts[i] = p.Name + " " + r.typ(p.Type)
	}

	return strings.Join(parts, ", ")
}

func (r *renderer) results(results []*typemodel.TypeRef) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + r.typ(results[0])
	}

	parts := make([]string, len(results))
	for i, t := range results {
		parts[i] = r.typ(t)
	}

	return " (" + strings.Join(parts, ", ") + ")"
}

func (r *renderer) function(f model.Func) string {
	var sb strings.Builder

	r.comment(&sb, f.Doc)
	sb.WriteString(f.Code)
	sb.WriteString("\n")

	return sb.String()
}

// declarations renders every declaration of t in file order: the builder,
// the value, the partial unless it shares the value type, then the
// package-level functions. The partial builder has no type of its own.
func (r *renderer) declarations(t *model.Triad) []string {
	out := []string{r.descriptor(&t.Builder), r.descriptor(&t.Value)}

	if !t.Datatype.SharedPartial() {
		out = append(out, r.descriptor(&t.Partial))
	}

	for _, f := range t.Funcs {
		out = append(out, r.function(f))
	}

	return out
}
