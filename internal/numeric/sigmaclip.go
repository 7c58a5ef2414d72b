package numeric

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ClipResult is the outcome of an iterative sigma clip
type ClipResult struct {
	Kept  []float64
	Lower float64
	Upper float64
}

// SigmaClip repeatedly discards values outside
// [mean - low*std, mean + high*std] of the remaining sample, using the
// population standard deviation, until no more values are removed. The bounds
// of the final iteration are returned. NaN values never survive the first
// pass.
func SigmaClip(x []float64, low, high float64) ClipResult {
	kept := make([]float64, len(x))
	copy(kept, x)

	var lower, upper float64
	for {
		if len(kept) == 0 {
			return ClipResult{Kept: kept, Lower: math.NaN(), Upper: math.NaN()}
		}
		mean, std := stat.PopMeanStdDev(kept, nil)
		lower = mean - std*low
		upper = mean + std*high

		next := kept[:0:0]
		for _, v := range kept {
			if v >= lower && v <= upper {
				next = append(next, v)
			}
		}
		removed := len(kept) - len(next)
		kept = next
		if removed == 0 {
			break
		}
	}
	return ClipResult{Kept: kept, Lower: lower, Upper: upper}
}

// MaskOutside returns a copy of x where values outside [lower, upper] are NaN,
// together with the number of masked entries.
func MaskOutside(x []float64, lower, upper float64) ([]float64, int) {
	out := make([]float64, len(x))
	masked := 0
	for i, v := range x {
		if v > upper || v < lower {
			out[i] = math.NaN()
			masked++
			continue
		}
		out[i] = v
	}
	return out, masked
}
