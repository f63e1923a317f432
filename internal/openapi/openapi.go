package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"builder-generator/internal/common"
	"builder-generator/internal/descriptor"
)

// ErrNoSchemas is returned when a document declares no object schemas.
var ErrNoSchemas = errors.New("openapi: no object schemas in components")

// Options configures the conversion.
type Options struct {
	// Package is the import path of the generated code.
	Package string
	// Validate runs the kin-openapi document validation first.
	Validate bool
}

// Load reads an OpenAPI document from a file and converts it.
func Load(ctx context.Context, path string, opts Options) (*descriptor.File, error) {
	loader := &openapi3.Loader{Context: ctx}

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document %s: %w", path, err)
	}

	f, err := convertDoc(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	f.Source = path

	return f, nil
}

// LoadData converts an OpenAPI document held in memory.
func LoadData(ctx context.Context, data []byte, opts Options) (*descriptor.File, error) {
	loader := &openapi3.Loader{Context: ctx}

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	return convertDoc(ctx, doc, opts)
}

func convertDoc(ctx context.Context, doc *openapi3.T, opts Options) (*descriptor.File, error) {
	if opts.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	return Convert(doc, opts)
}

// Convert maps the object schemas of doc to interface descriptors.
func Convert(doc *openapi3.T, opts Options) (*descriptor.File, error) {
	f := &descriptor.File{Version: "1", Package: opts.Package, Source: "openapi"}

	if doc.Components == nil {
		return nil, ErrNoSchemas
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name, ref := range doc.Components.Schemas {
		if ref != nil && isObject(ref.Value) {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, ErrNoSchemas
	}

	slices.Sort(names)

	c := &converter{objects: map[string]bool{}}
	for _, name := range names {
		c.objects[name] = true
	}

	for _, name := range names {
		t, err := c.object(name, doc.Components.Schemas[name].Value)
		if err != nil {
			return nil, err
		}

		f.Types = append(f.Types, t)
	}

	return f, nil
}

func isObject(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}

	if s.Type.Is("object") && (len(s.Properties) > 0 || s.AdditionalProperties.Schema == nil) {
		return true
	}

	return s.Type == nil && len(s.Properties) > 0
}

type converter struct {
	// objects are the component schemas converted to datatypes.
	objects map[string]bool
}

func (c *converter) object(name string, s *openapi3.Schema) (descriptor.TypeDesc, error) {
	t := descriptor.TypeDesc{
		Name: GoName(name),
		Kind: descriptor.KindInterface,
		Doc:  strings.TrimSpace(s.Description),
	}

	props := make([]string, 0, len(s.Properties))
	for p := range s.Properties {
		props = append(props, p)
	}

	slices.Sort(props)

	var defaults []string

	for _, p := range props {
		ref := s.Properties[p]
		if ref == nil || (ref.Value == nil && ref.Ref == "") {
			continue
		}

		expr, err := c.property(ref, slices.Contains(s.Required, p))
		if err != nil {
			return t, fmt.Errorf("openapi: %s.%s: %w", name, p, err)
		}

		stem := GoName(p)

		getter := "Get" + stem
		if expr == "bool" {
			getter = "Is" + stem
		}

		t.Properties = append(t.Properties, descriptor.PropertyDesc{Getter: getter, Type: expr})

		if ref.Value != nil && ref.Value.Default != nil {
			defaults = append(defaults, common.Decapitalize(stem))
		}
	}

	if len(defaults) > 0 {
		t.Builder = &descriptor.BuilderDesc{Factory: "New" + t.Name + "Builder", Defaults: defaults}
	}

	return t, nil
}

// property returns the getter type expression of a property schema.
func (c *converter) property(ref *openapi3.SchemaRef, required bool) (string, error) {
	if ref.Ref != "" {
		target := refName(ref.Ref)
		if c.objects[target] {
			return GoName(target), nil
		}
	}

	s := ref.Value
	if s == nil {
		return "", fmt.Errorf("unresolved reference %q", ref.Ref)
	}

	expr, scalar, err := c.typeExpr(s)
	if err != nil {
		return "", err
	}

	switch {
	case s.PermitsNull() && scalar:
		return "*" + expr, nil
	case !required && scalar:
		return "buildkit.Optional[" + expr + "]", nil
	default:
		return expr, nil
	}
}

// typeExpr maps a schema to a Go type expression. scalar is false for
// types that are nillable or collections already.
func (c *converter) typeExpr(s *openapi3.Schema) (expr string, scalar bool, err error) {
	switch {
	case s.Type.Includes("string"):
		switch s.Format {
		case "date-time", "date":
			return "time.Time", true, nil
		case "byte", "binary":
			return "[]byte", false, nil
		default:
			return "string", true, nil
		}

	case s.Type.Includes("integer"):
		switch s.Format {
		case "int32":
			return "int32", true, nil
		case "int64":
			return "int64", true, nil
		default:
			return "int", true, nil
		}

	case s.Type.Includes("number"):
		if s.Format == "float" {
			return "float32", true, nil
		}

		return "float64", true, nil

	case s.Type.Includes("boolean"):
		return "bool", true, nil

	case s.Type.Includes("array"):
		if s.Items == nil {
			return "[]any", false, nil
		}

		elem, err := c.element(s.Items)
		if err != nil {
			return "", false, err
		}

		if s.UniqueItems && isComparable(elem) {
			return "buildkit.Set[" + elem + "]", false, nil
		}

		return "[]" + elem, false, nil

	case s.Type.Includes("object") || s.Type == nil:
		if s.AdditionalProperties.Schema != nil {
			value, err := c.element(s.AdditionalProperties.Schema)
			if err != nil {
				return "", false, err
			}

			return "map[string]" + value, false, nil
		}

		return "map[string]any", false, nil

	default:
		return "", false, fmt.Errorf("unsupported schema type %v", s.Type.Slice())
	}
}

func (c *converter) element(ref *openapi3.SchemaRef) (string, error) {
	if ref.Ref != "" && c.objects[refName(ref.Ref)] {
		return GoName(refName(ref.Ref)), nil
	}

	if ref.Value == nil {
		return "", fmt.Errorf("unresolved reference %q", ref.Ref)
	}

	expr, _, err := c.typeExpr(ref.Value)

	return expr, err
}

func isComparable(expr string) bool {
	return !strings.HasPrefix(expr, "[]") && !strings.HasPrefix(expr, "map[")
}

func refName(ref string) string {
	return ref[strings.LastIndex(ref, "/")+1:]
}

// GoName converts a schema or property name to an exported Go identifier,
// e.g. "pet_owner" and "pet-owner" both become "PetOwner".
func GoName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var sb strings.Builder

	for _, p := range parts {
		sb.WriteString(common.Capitalize(p))
	}

	out := sb.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}

	return out
}
