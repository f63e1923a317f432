package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"builder-generator/internal/common"
)

// ErrCannotGenerate aborts generation of a single type after its type-level
// errors have been reported. Other types in the batch are unaffected.
var ErrCannotGenerate = errors.New("cannot generate builder")

// Diagnostic codes.
const (
	CodeTypeNotExported      = "type.not_exported"
	CodeTypeEnclosed         = "type.enclosed"
	CodeTypeGeneric          = "type.generic"
	CodeTypeKind             = "type.kind"
	CodeTypeNoConstructor    = "type.no_constructor"
	CodeTypeNotFound         = "type.not_found"
	CodePropertyGetter       = "property.getter"
	CodePropertyNotGetter    = "property.not_getter"
	CodePropertyDuplicate    = "property.duplicate"
	CodePropertyNullable     = "property.nullable"
	CodeOverrideAsymmetric   = "override.asymmetric"
	CodeBuilderMissing       = "builder.missing"
	CodeBuilderNotStruct     = "builder.not_struct"
	CodeBuilderSupertype     = "builder.supertype"
	CodeBuilderNoConstructor = "builder.no_constructor"
	CodeBuilderPartial       = "builder.partial_to_builder"
	CodeSourceLoad           = "source.load"
	CodeInternal             = "internal"
)

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(d Diagnostic)
}

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

var _ Sink = (*Diagnostics)(nil)

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a stable identifier for this class of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Type anchors the diagnostic to a datatype (if any).
	Type string
	// Property anchors the diagnostic to a property or method (if any).
	Property string
	// Pos is a source position, when the type source knows one.
	Pos string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Report implements Sink by filing d under its severity.
func (d *Diagnostics) Report(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, property string) {
	d.Report(Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Property: property,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, property string) {
	d.Report(Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Property: property,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typeName, property string) {
	d.Report(Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Property: property,
	})
}

// AddInternal records an unexpected failure while processing typeName.
func (d *Diagnostics) AddInternal(typeName string, cause any) {
	d.AddError(CodeInternal, fmt.Sprintf("internal error: %v", cause), typeName, "")
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// ForType returns the diagnostics anchored to typeName, in severity order.
func (d *Diagnostics) ForType(typeName string) []Diagnostic {
	var out []Diagnostic

	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range group {
			if diag.Type == typeName {
				out = append(out, diag)
			}
		}
	}

	return out
}

// Codes returns the sorted, de-duplicated codes of every error diagnostic.
func (d *Diagnostics) Codes() []string {
	seen := make(map[string]struct{})

	var codes []string

	for _, e := range d.Errors {
		if _, ok := seen[e.Code]; ok {
			continue
		}

		seen[e.Code] = struct{}{}
		codes = append(codes, e.Code)
	}

	sort.Strings(codes)

	return codes
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pos != "" {
		prefix = append(prefix, d.Pos)
	}

	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}

	if d.Property != "" {
		prefix = append(prefix, d.Property)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
