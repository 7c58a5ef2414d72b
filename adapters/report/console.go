package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"tdcov/ports"
)

// WriteSummary prints the rounded covariance matrix, the per-pair spread
// comparison and the median ratio
func WriteSummary(w io.Writer, results ports.CovarianceResults) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(w, "\nCovariance Matrix:")
	if cov := results.Covariance; cov != nil {
		fmt.Fprint(tw, "\t")
		for _, l := range cov.Labels {
			fmt.Fprintf(tw, "%s\t", l)
		}
		fmt.Fprintln(tw)
		for i, l := range cov.Labels {
			fmt.Fprintf(tw, "%s\t", l)
			for j := range cov.Labels {
				fmt.Fprintf(tw, "%s\t", fixed(cov.Matrix.At(i, j), 1))
			}
			fmt.Fprintln(tw)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if m := results.Manifest; m != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(tw, "Label\t16-84 err\tstd\tclip sigma\t")
		for _, p := range m.Pairs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", p.Pair, fixed(float64(p.DesiredStd), 1), fixed(float64(p.Std), 1), fixed(float64(p.ClipSigma), 2))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nMedian ratio of standard deviation over 16-84 percentile interval: %s\n", fixed(results.MedianRatio, 2))
	return err
}
