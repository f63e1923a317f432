package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_Report(t *testing.T) {
	var d Diagnostics

	d.AddError(CodeTypeGeneric, "generic types are not supported", "Person", "")
	d.AddWarning(CodePropertyGetter, "skipped", "Person", "GetX")
	d.AddInfo(CodeBuilderMissing, "no builder declared", "Person", "")

	assert.True(t, d.HasErrors())
	assert.False(t, d.IsValid())
	assert.Len(t, d.Errors, 1)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)
	assert.Equal(t, []string{CodeTypeGeneric}, d.Codes())
	assert.Len(t, d.ForType("Person"), 3)
	assert.Empty(t, d.ForType("Other"))
}

func TestDiagnostics_Error(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Error())

	d.AddError(CodeTypeKind, "not an interface", "Color", "")
	d.AddError(CodePropertyGetter, "bad getter", "Person", "Name")

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"[Color]: [type.kind] not an interface; [Person] Name: [property.getter] bad getter",
		err.Error())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddError(CodeInternal, "boom", "A", "")
	b.AddInternal("B", "index out of range")

	a.Merge(b)
	require.Len(t, a.Errors, 2)
	assert.Equal(t, "internal error: index out of range", a.Errors[1].Message)
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:        CodeBuilderNotStruct,
		Message:     "builder must be a struct",
		Type:        "Person",
		Pos:         "person.go:12:6",
		Suggestions: []string{"PersonBuilder"},
	}

	assert.Equal(t,
		"person.go:12:6 [Person]: [builder.not_struct] builder must be a struct (did you mean PersonBuilder?)",
		d.String())
}

func TestDiagnosticSeverity_String(t *testing.T) {
	assert.Equal(t, "info", DiagnosticInfo.String())
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "error", DiagnosticError.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
