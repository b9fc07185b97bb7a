package fit

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMinCorrel is the correlation threshold used by reports.
const DefaultMinCorrel = 0.1

// Report renders the result as a text block with [[Model]],
// [[Fit Statistics]], [[Variables]] and [[Correlations]] sections.
// Correlations below minCorrel in magnitude are omitted.
func (r *Result) Report(minCorrel float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[[Model]]\n    %s\n", r.Model.Name())

	b.WriteString("[[Fit Statistics]]\n")
	fmt.Fprintf(&b, "    # fitting method   = levenberg-marquardt\n")
	fmt.Fprintf(&b, "    # function evals   = %d\n", r.NFev)
	fmt.Fprintf(&b, "    # data points      = %d\n", r.NData)
	fmt.Fprintf(&b, "    # variables        = %d\n", r.NVarys)
	fmt.Fprintf(&b, "    chi-square         = %s\n", gformat(r.Chisqr))
	fmt.Fprintf(&b, "    reduced chi-square = %s\n", gformat(r.Redchi))
	fmt.Fprintf(&b, "    Akaike info crit   = %s\n", gformat(r.AIC))
	fmt.Fprintf(&b, "    Bayesian info crit = %s\n", gformat(r.BIC))
	if !r.Success {
		fmt.Fprintf(&b, "##  Warning: solver stopped with status %v\n", r.Status)
	}
	if !r.ErrorbarsEstimated {
		b.WriteString("##  Warning: uncertainties could not be estimated\n")
	}

	b.WriteString("[[Variables]]\n")
	names := r.Params.Names()
	derived := r.DerivedValues()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for _, d := range derived {
		width = max(width, len(d.Name))
	}
	for _, n := range names {
		p := r.Params.MustGet(n)
		fmt.Fprintf(&b, "    %-*s %s", width+1, n+":", gformat(p.Value))
		switch {
		case !p.Vary:
			b.WriteString(" (fixed)")
		default:
			if !math.IsNaN(p.Stderr) {
				fmt.Fprintf(&b, " +/- %s%s", gformat(p.Stderr), percent(p.Stderr, p.Value))
			}
			fmt.Fprintf(&b, " (init = %s)", gformat(p.Init))
		}
		b.WriteByte('\n')
	}
	for _, d := range derived {
		fmt.Fprintf(&b, "    %-*s %s", width+1, d.Name+":", gformat(d.Value))
		if !math.IsNaN(d.Stderr) {
			fmt.Fprintf(&b, " +/- %s%s", gformat(d.Stderr), percent(d.Stderr, d.Value))
		}
		fmt.Fprintf(&b, " == '%s'\n", d.Expr)
	}

	if corr := r.Correlations(minCorrel); len(corr) > 0 {
		fmt.Fprintf(&b, "[[Correlations]] (unreported correlations are < %.3f)\n", minCorrel)
		for _, c := range corr {
			fmt.Fprintf(&b, "    C(%s, %s) = %+.4f\n", c.A, c.B, c.Value)
		}
	}
	return b.String()
}

func gformat(v float64) string {
	return fmt.Sprintf("%.7g", v)
}

func percent(stderr, value float64) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf(" (%.2f%%)", math.Abs(100*stderr/value))
}
