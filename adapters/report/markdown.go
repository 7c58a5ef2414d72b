// Package report renders covariance results for people: a markdown report
// with an optional HTML rendering, and the console summary of the CLI.
package report

import (
	"fmt"
	"math"
	"strings"

	"tdcov/ports"
)

// RenderMarkdown builds the calibration report of one covariance run
func RenderMarkdown(results ports.CovarianceResults) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# Covariance report: %s_%s\n\n", results.Lens, results.Dataset)

	if m := results.Manifest; m != nil {
		fmt.Fprintf(&b, "Run `%s`, code %s, created %s, %d mock realizations.\n\n", m.RunID, m.CodeVersion, m.CreatedAt, m.Rows)
		if m.UsedGroupFallback {
			b.WriteString("> Accepted groups were unavailable, every evaluated group was used.\n\n")
		}

		b.WriteString("## Accepted fits\n\n| knot | microlensing |\n|---|---|\n")
		for _, fit := range m.AcceptedFits {
			fmt.Fprintf(&b, "| %s | %s |\n", fit.Knot, fit.Microlensing)
		}
		b.WriteString("\n")

		b.WriteString("## Archives\n\n| archive | run | realizations |\n|---|---|---:|\n")
		for _, a := range m.Archives {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", a.Archive, a.RunPath, a.Rows)
		}
		for _, name := range m.SkippedArchives {
			fmt.Fprintf(&b, "| %s | no mocks | 0 |\n", name)
		}
		b.WriteString("\n")

		b.WriteString("## Pairs\n\n| pair | 16-84 err | std | ratio | systematic | clip sigma | outcome | excluded |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---|---:|\n")
		for _, p := range m.Pairs {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %d / %d |\n",
				p.Pair,
				fixed(float64(p.DesiredStd), 2),
				fixed(float64(p.Std), 2),
				fixed(float64(p.Ratio), 2),
				fixed(float64(p.Systematic), 3),
				fixed(float64(p.ClipSigma), 2),
				p.ClipOutcome,
				p.Excluded, p.Total)
		}
		b.WriteString("\n")
	}

	if cov := results.Covariance; cov != nil {
		b.WriteString("## Covariance matrix\n\n|")
		for _, l := range cov.Labels {
			fmt.Fprintf(&b, " | %s", l)
		}
		b.WriteString(" |\n|---")
		for range cov.Labels {
			b.WriteString("|---:")
		}
		b.WriteString("|\n")
		for i, l := range cov.Labels {
			fmt.Fprintf(&b, "| %s", l)
			for j := range cov.Labels {
				fmt.Fprintf(&b, " | %s", fixed(cov.Matrix.At(i, j), 1))
			}
			b.WriteString(" |\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Median ratio of standard deviation over 16-84 percentile interval: **%s**\n", fixed(results.MedianRatio, 2))
	return []byte(b.String())
}

func fixed(v float64, digits int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.*f", digits, v)
}
