package descriptor

import (
	"fmt"
	"slices"

	"builder-generator/internal/diagnostic"
	"builder-generator/internal/match"
)

// Descriptor diagnostic codes.
const (
	CodeNoPackage       = "descriptor.no_package"
	CodeDuplicateType   = "descriptor.duplicate_type"
	CodeKind            = "descriptor.kind"
	CodeTypeExpr        = "descriptor.type_expr"
	CodeUnknownEmbed    = "descriptor.unknown_embed"
	CodeBuilderKind     = "descriptor.builder_kind"
	CodeUnknownDefault  = "descriptor.unknown_default"
	CodeDuplicateGetter = "descriptor.duplicate_getter"
)

var kinds = []string{KindInterface, KindStruct, KindScalar}

// Validate checks the structure of a descriptor and that every type
// expression parses.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("descriptor_is_nil", "descriptor is nil", "", "")
		return res
	}

	if f.Package == "" {
		res.AddError(CodeNoPackage, "package import path is required", "", "")
	}

	seen := map[string]bool{}

	for i := range f.Types {
		t := &f.Types[i]

		if seen[t.Name] {
			res.AddError(CodeDuplicateType, fmt.Sprintf("line %d: duplicate type %q", t.Line, t.Name), t.Name, "")
			continue
		}

		seen[t.Name] = true

		validateType(f, t, res)
	}

	for i := range f.Funcs {
		fn := &f.Funcs[i]
		ctx := exprContext(f, fn.TypeParams)

		for _, e := range append(slices.Clone(fn.Params), fn.Results...) {
			if _, err := ctx.parse(e); err != nil {
				res.AddError(CodeTypeExpr, err.Error(), "", fn.Name)
			}
		}
	}

	return res
}

func validateType(f *File, t *TypeDesc, res *diagnostic.Diagnostics) {
	if !slices.Contains(kinds, t.Kind) {
		res.Report(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticError,
			Code:        CodeKind,
			Message:     fmt.Sprintf("unknown kind %q", t.Kind),
			Type:        t.Name,
			Pos:         pos(f, t.Line),
			Suggestions: match.Suggest(t.Kind, kinds),
		})
	}

	ctx := exprContext(f, t.TypeParams)

	getters := map[string]bool{}

	for _, p := range t.Properties {
		if getters[p.Getter] {
			res.AddError(CodeDuplicateGetter, fmt.Sprintf("line %d: duplicate getter %s", p.Line, p.Getter), t.Name, p.Getter)
		}

		getters[p.Getter] = true

		if _, err := ctx.parse(p.Type); err != nil {
			res.AddError(CodeTypeExpr, fmt.Sprintf("line %d: %v", p.Line, err), t.Name, p.Getter)
		}
	}

	for _, m := range t.Methods {
		for _, e := range append(slices.Clone(m.Params), m.Results...) {
			if _, err := ctx.parse(e); err != nil {
				res.AddError(CodeTypeExpr, err.Error(), t.Name, m.Name)
			}
		}
	}

	if t.Kind == KindScalar {
		if _, err := ctx.parse(t.Underlying); err != nil {
			res.AddError(CodeTypeExpr, err.Error(), t.Name, "")
		}
	}

	for _, e := range t.Embeds {
		if _, err := ctx.parse(e); err != nil {
			res.AddError(CodeUnknownEmbed, err.Error(), t.Name, "")
		}
	}

	validateBuilder(f, t, res)
}

func pos(f *File, line int) string {
	return fmt.Sprintf("%s:%d", f.Source, line)
}

func validateBuilder(f *File, t *TypeDesc, res *diagnostic.Diagnostics) {
	if t.Builder == nil {
		return
	}

	if t.Kind == KindScalar {
		res.AddError(CodeBuilderKind, "scalar types cannot declare a builder", t.Name, "")
	}

	names := propertyNames(t)

	for _, d := range t.Builder.Defaults {
		if !slices.Contains(names, d) {
			res.Report(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        CodeUnknownDefault,
				Message:     fmt.Sprintf("default %q is not a property of %s", d, t.Name),
				Type:        t.Name,
				Property:    d,
				Pos:         pos(f, t.Line),
				Suggestions: match.Suggest(d, names),
			})
		}
	}
}
