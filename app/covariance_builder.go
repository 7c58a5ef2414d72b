package app

import (
	"fmt"
	"math"

	"tdcov/domain/delay"
	"tdcov/internal"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CovarianceResult is the covariance matrix with the per-pair statistics
// derived from it
type CovarianceResult struct {
	Covariance  *delay.CovarianceMatrix
	Systematics []float64
	Stds        []float64
	DesiredStds []float64
	Ratios      []float64
	MedianRatio float64
}

// CovarianceBuilder assembles the covariance of the clipped error series
type CovarianceBuilder struct {
	logger *internal.Logger
}

// NewCovarianceBuilder creates a covariance builder
func NewCovarianceBuilder(logger *internal.Logger) *CovarianceBuilder {
	return &CovarianceBuilder{logger: logger}
}

// Build computes the pairwise-complete sample covariance of the series, adds
// each pair's squared systematic error (the absolute median) to the diagonal
// and compares the resulting standard deviations to the percentile spreads.
func (b *CovarianceBuilder) Build(calibrations []Calibration) (*CovarianceResult, error) {
	n := len(calibrations)
	if n == 0 {
		return nil, fmt.Errorf("no calibrated pairs to build a covariance from")
	}
	rows := len(calibrations[0].Series.Values)
	labels := make([]delay.PairLabel, n)
	for i, c := range calibrations {
		if len(c.Series.Values) != rows {
			return nil, fmt.Errorf("pair %s has %d realizations, expected %d", c.Pair, len(c.Series.Values), rows)
		}
		labels[i] = c.Pair
	}

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, pairwiseCovariance(calibrations[i].Series.Values, calibrations[j].Series.Values))
		}
	}

	result := &CovarianceResult{
		Systematics: make([]float64, n),
		Stds:        make([]float64, n),
		DesiredStds: make([]float64, n),
		Ratios:      make([]float64, n),
	}
	for i, c := range calibrations {
		sys := Systematic(c.Series)
		result.Systematics[i] = sys
		cov.SetSym(i, i, cov.At(i, i)+sys*sys)

		std := math.Sqrt(cov.At(i, i))
		result.Stds[i] = std
		result.DesiredStds[i] = c.DesiredStd
		result.Ratios[i] = std / c.DesiredStd
		b.logger.Debug("%s: systematic %.4g, std %.4g, 16-84 %.4g", c.Pair, sys, std, c.DesiredStd)
	}

	matrix, err := delay.NewCovarianceMatrix(labels, cov)
	if err != nil {
		return nil, err
	}
	result.Covariance = matrix
	result.MedianRatio = medianFinite(result.Ratios)
	return result, nil
}

// Systematic is the absolute median of the unclipped realizations, NaN when
// every realization was clipped
func Systematic(series delay.ErrorSeries) float64 {
	median, err := stats.Median(series.Finite())
	if err != nil {
		return math.NaN()
	}
	return math.Abs(median)
}

// pairwiseCovariance is the unbiased covariance over the realizations where
// both series are finite, NaN with fewer than two such rows
func pairwiseCovariance(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Covariance(xs, ys, nil)
}

func medianFinite(values []float64) float64 {
	finite := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	median, err := finite.Median()
	if err != nil {
		return math.NaN()
	}
	return median
}
