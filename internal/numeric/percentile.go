// Package numeric holds the small numerical kernels used by the error
// calibration: percentiles, iterative sigma clipping and a bracketing root
// finder.
package numeric

import (
	"errors"
	"math"
	"sort"
)

var ErrEmptyInput = errors.New("numeric: empty input")

// Percentile returns the p-th percentile (0..100) of x using linear
// interpolation between closest ranks, the definition used by numpy's default
// percentile. NaN is returned when x contains NaN.
func Percentile(x []float64, p float64) (float64, error) {
	if len(x) == 0 {
		return math.NaN(), ErrEmptyInput
	}
	if p < 0 || p > 100 || math.IsNaN(p) {
		return math.NaN(), errors.New("numeric: percentile out of range")
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	for _, v := range sorted {
		if math.IsNaN(v) {
			return math.NaN(), nil
		}
	}
	sort.Float64s(sorted)
	return percentileSorted(sorted, p), nil
}

func percentileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p / 100
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - lo
	return sorted[i] + (sorted[i+1]-sorted[i])*frac
}

// RobustStd returns half the distance between the low and high percentiles.
// With 16 and 84 this is the one-sigma spread of a Gaussian, insensitive to
// outliers in the tails.
func RobustStd(x []float64, low, high float64) (float64, error) {
	if len(x) == 0 {
		return math.NaN(), ErrEmptyInput
	}
	lower, err := Percentile(x, low)
	if err != nil {
		return math.NaN(), err
	}
	upper, err := Percentile(x, high)
	if err != nil {
		return math.NaN(), err
	}
	return (upper - lower) / 2, nil
}
