package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"builder-generator/internal/builderstate"
	"builder-generator/internal/plan"
)

// describe prints the builder model of one datatype.
func describe(w io.Writer, t *plan.TypePlan) error {
	dt := t.Datatype

	state, err := t.State()
	if err != nil {
		return fmt.Errorf("%s: %w", dt.ID, err)
	}

	b, err := builderstate.New(state)
	if err != nil {
		return fmt.Errorf("%s: %w", dt.ID, err)
	}

	fmt.Fprintf(w, "%s\n", dt.ID)
	fmt.Fprintf(w, "  builder: %s (%s)\n", dt.Builder.Name, dt.Builder.Convention)
	fmt.Fprintf(w, "  value:   %s\n", dt.Value)

	if !dt.SharedPartial() {
		fmt.Fprintf(w, "  partial: %s\n", dt.Partial)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PROPERTY\tTYPE\tCATEGORY\tREQUIRED\tDEFAULT\tMETHODS")

	categories := t.Categories()

	for i, p := range dt.Properties {
		pm := t.Triad.Properties[i]

		var methods []string

		for _, m := range t.Triad.Builder.Methods {
			if m.Property == p.Name {
				methods = append(methods, m.Name)
			}
		}

		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.Type, categories[i], yesNo(pm.Required), yesNo(pm.HasDefault), strings.Join(methods, ", "))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if unset := b.Unset(); len(unset) > 0 {
		fmt.Fprintf(w, "  unset on a new builder: %s\n", strings.Join(unset, ", "))
	}

	fmt.Fprintln(w)

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
