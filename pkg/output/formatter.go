// Package output prints human-readable build summaries.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/gridcase/csv2mgc/pkg/model"
	"github.com/gridcase/csv2mgc/pkg/network"
)

// PrintBuildReport prints a nicely formatted build report with colors
func PrintBuildReport(w io.Writer, res *network.Result) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	c := res.Case

	// Header
	bold.Fprintf(w, "csv2mgc - %s\n", c.Meta.Name)
	bold.Fprintln(w, "==============================")

	// Per-source stats
	for _, s := range res.Stats {
		switch {
		case s.Failed:
			red.Fprintf(w, "  %-10s %s: skipped (%s)\n", s.Kind, s.Source, s.Err)
		case s.Discarded > 0:
			yellow.Fprintf(w, "  %-10s %s: %d added, %d/%d discarded\n", s.Kind, s.Source, s.Added, s.Discarded, s.Rows)
		default:
			fmt.Fprintf(w, "  %-10s %s: %d added\n", s.Kind, s.Source, s.Added)
		}
	}
	fmt.Fprintln(w)

	// Collection sizes
	for _, kind := range model.CollectionKinds {
		if n := c.Count(kind); n > 0 {
			cyan.Fprintf(w, "  %-11s %d\n", kind.Plural()+":", n)
		}
	}
	fmt.Fprintln(w)

	// Validation findings
	if len(res.Report.Findings) > 0 {
		red.Fprintln(w, "FINDINGS:")
		for _, f := range res.Report.Findings {
			col := yellow
			if f.Severity == network.SeverityError {
				col = red
			}
			col.Fprintf(w, "  [%s] %s: %s\n", f.Severity, f.Code, f.Message)
		}
		fmt.Fprintln(w)
	}

	// Summary colored by outcome
	discarded := 0
	for _, n := range c.Discarded {
		discarded += n
	}
	summaryColor := green
	if discarded > 0 || len(res.Report.Findings) > 0 {
		summaryColor = yellow
	}
	if res.Report.Failed() {
		summaryColor = red
	}
	summaryColor.Fprintf(w, "Summary: %d discarded row(s), %d finding(s) in %s\n",
		discarded, len(res.Report.Findings), res.Duration.Round(time.Millisecond))

	if discarded == 0 && len(res.Report.Findings) == 0 {
		green.Fprintln(w, "✓ Every row decoded and the case validated cleanly")
	}
}
