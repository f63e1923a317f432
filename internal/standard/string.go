package standard

import (
	"fmt"
	"strings"

	"builder-generator/internal/common"
)

// Mode is the shape of a String method.
type Mode int

const (
	// ModeUnconditional renders every property: a fixed concatenation.
	ModeUnconditional Mode = iota
	// ModeConditional renders each property only when present, behind a
	// running separator.
	ModeConditional
	// ModeMixed seeds the output with unconditional properties and appends
	// conditional ones with folded separators.
	ModeMixed
)

// String returns a human-readable representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeUnconditional:
		return "unconditional"
	case ModeConditional:
		return "conditional"
	case ModeMixed:
		return "mixed"
	default:
		return common.UnknownStr
	}
}

// Lead is what precedes a rendered property.
type Lead int

const (
	LeadNone      Lead = iota // first property written
	LeadComma                 // a property is known to precede
	LeadSeparator             // the running separator decides
)

// Part is one property of a String plan.
type Part struct {
	Label       string
	Conditional bool
	// Present is the presence test of a conditional part.
	Present string
	// Shown is the rendered expression.
	Shown string
	Lead  Lead
	// Advance is set when the part must switch the running separator to ", ".
	Advance bool
}

// StringPlan is the generation-time layout of a String method.
type StringPlan struct {
	Mode   Mode
	Prefix string
	Parts  []Part
	// LastConditional is the index of the last part reading the running
	// separator, -1 when the method needs none.
	LastConditional int
}

// NewStringPlan lays out parts, resolving every separator it can before the
// generated code runs.
func NewStringPlan(prefix string, parts []Part) StringPlan {
	plan := StringPlan{Prefix: prefix, Parts: parts, LastConditional: -1}

	conditional := 0

	for _, p := range parts {
		if p.Conditional {
			conditional++
		}
	}

	switch {
	case conditional == 0:
		plan.Mode = ModeUnconditional
	case conditional == len(parts):
		plan.Mode = ModeConditional
	default:
		plan.Mode = ModeMixed
	}

	definite, maybe := false, false

	for i := range plan.Parts {
		p := &plan.Parts[i]

		switch {
		case definite:
			p.Lead = LeadComma
		case maybe:
			p.Lead = LeadSeparator
			plan.LastConditional = i
		default:
			p.Lead = LeadNone
		}

		if p.Conditional {
			maybe = true
		} else {
			definite = true
		}
	}

	// Only conditional parts ahead of the last separator reader move it.
	for i := 0; i < plan.LastConditional; i++ {
		if p := &plan.Parts[i]; p.Conditional && p.Lead != LeadComma {
			p.Advance = true
		}
	}

	return plan
}

// usesSeparator reports whether the running separator variable is needed.
func (p StringPlan) usesSeparator() bool {
	for _, part := range p.Parts {
		if part.Advance {
			return true
		}
	}

	return false
}

// Body renders the statements of the String method.
func (p StringPlan) Body(fmtPkg, stringsPkg string) []string {
	if p.Mode == ModeUnconditional {
		if len(p.Parts) == 0 {
			return []string{fmt.Sprintf("return %q", p.Prefix+"{}")}
		}

		labels := make([]string, len(p.Parts))
		args := make([]string, len(p.Parts))

		for i, part := range p.Parts {
			labels[i] = part.Label + "=%v"
			args[i] = part.Shown
		}

		return []string{fmt.Sprintf("return %s.Sprintf(%q, %s)",
			fmtPkg, p.Prefix+"{"+strings.Join(labels, ", ")+"}", strings.Join(args, ", "))}
	}

	body := []string{
		"var sb " + stringsPkg + ".Builder",
		fmt.Sprintf("sb.WriteString(%q)", p.Prefix+"{"),
	}

	sep := p.usesSeparator()
	if sep {
		body = append(body, `sep := ""`)
	}

	for _, part := range p.Parts {
		var write string

		switch {
		case part.Lead == LeadComma:
			write = fmt.Sprintf("%s.Fprintf(&sb, %q, %s)", fmtPkg, ", "+part.Label+"=%v", part.Shown)
		case part.Lead == LeadSeparator && sep:
			write = fmt.Sprintf("%s.Fprintf(&sb, %q, sep, %s)", fmtPkg, "%s"+part.Label+"=%v", part.Shown)
		default:
			write = fmt.Sprintf("%s.Fprintf(&sb, %q, %s)", fmtPkg, part.Label+"=%v", part.Shown)
		}

		if !part.Conditional {
			body = append(body, write)

			continue
		}

		body = append(body, "if "+part.Present+" {", write)
		if part.Advance {
			body = append(body, `sep = ", "`)
		}

		body = append(body, "}")
	}

	return append(body, `sb.WriteString("}")`, "return sb.String()")
}

// Shown is a property as rendered at run time.
type Shown struct {
	Label   string
	Present bool
	Value   any
}

// Render formats props the way generated String methods do.
func Render(prefix string, props []Shown) string {
	var sb strings.Builder

	sb.WriteString(prefix + "{")

	sep := ""

	for _, p := range props {
		if !p.Present {
			continue
		}

		fmt.Fprintf(&sb, "%s%s=%v", sep, p.Label, p.Value)
		sep = ", "
	}

	sb.WriteString("}")

	return sb.String()
}
