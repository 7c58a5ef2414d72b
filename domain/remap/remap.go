// Package remap relabels pairwise delays and their covariance when the
// single-character image labels are renamed, e.g. swapping A and B.
//
// Pair labels are always stored ordered ("AB", never "BA"), and the delay
// of "BA" is the negative of "AB". A renaming can therefore reorder a pair,
// which flips the sign of its delay and of the matching covariance rows and
// columns.
package remap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tdcov/domain/core"
	"tdcov/domain/delay"

	"gonum.org/v1/gonum/mat"
)

// Remapping maps an original image label to its new label
type Remapping map[string]string

// Inverse swaps keys and values. Only meaningful for a valid remapping.
func (r Remapping) Inverse() Remapping {
	inv := make(Remapping, len(r))
	for k, v := range r {
		inv[v] = k
	}
	return inv
}

// Validate checks that r is a bijection of single characters over one alphabet
func Validate(r Remapping) error {
	if r == nil {
		return core.NewRemappingError("remapping is nil")
	}

	keys := make(map[string]struct{}, len(r))
	values := make(map[string]struct{}, len(r))
	for k, v := range r {
		if utf8.RuneCountInString(k) != 1 {
			return core.NewRemappingError(fmt.Sprintf("key %q is not a single character", k))
		}
		if utf8.RuneCountInString(v) != 1 {
			return core.NewRemappingError(fmt.Sprintf("value %q for key %q is not a single character", v, k))
		}
		keys[k] = struct{}{}
		if _, dup := values[v]; dup {
			return core.NewRemappingError(fmt.Sprintf("value %q is the target of more than one key", v))
		}
		values[v] = struct{}{}
	}

	for k := range keys {
		if _, ok := values[k]; !ok {
			return core.NewRemappingError(fmt.Sprintf("key %q is never a target, keys and values must be the same set", k))
		}
	}
	return nil
}

// IsValid is the boolean form of Validate
func IsValid(r Remapping) bool {
	return Validate(r) == nil
}

// originalPair returns the stored pair that a new label reads from, and the
// sign to apply. Characters missing from the map keep their label.
func originalPair(label delay.PairLabel, r Remapping) (delay.PairLabel, float64, error) {
	if err := label.Validate(); err != nil {
		return "", 0, err
	}
	first, second := label.Split()
	pair, swapped := delay.NewPairLabel(lookup(r, first), lookup(r, second))
	if swapped {
		return pair, -1, nil
	}
	return pair, 1, nil
}

func lookup(r Remapping, l delay.EntityLabel) delay.EntityLabel {
	if mapped, ok := r[string(l)]; ok {
		return delay.EntityLabel(mapped)
	}
	return l
}

// RemapDelays returns a table with the same labels and columns as delays,
// where each value is read from its original pair and sign corrected.
func RemapDelays(delays *delay.DelayTable, r Remapping) (*delay.DelayTable, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	out := &delay.DelayTable{
		Labels:  append([]delay.PairLabel(nil), delays.Labels...),
		Columns: append([]string(nil), delays.Columns...),
		Values:  make([][]float64, len(delays.Labels)),
	}
	for i, label := range delays.Labels {
		orig, sign, err := originalPair(label, r)
		if err != nil {
			return nil, err
		}
		src, err := delays.Row(orig)
		if err != nil {
			return nil, fmt.Errorf("remap %s: %w", label, err)
		}
		row := make([]float64, len(src))
		for k, v := range src {
			row[k] = sign * v
		}
		out.Values[i] = row
	}
	return out, nil
}

// RemapCovariance returns a covariance matrix with the same labels as cov,
// where each entry is read from the original row/column pairs and scaled by
// the product of their signs.
func RemapCovariance(cov *delay.CovarianceMatrix, r Remapping) (*delay.CovarianceMatrix, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	n := len(cov.Labels)
	index := make([]int, n)
	signs := make([]float64, n)
	for i, label := range cov.Labels {
		orig, sign, err := originalPair(label, r)
		if err != nil {
			return nil, err
		}
		src := cov.Index(orig)
		if src < 0 {
			return nil, fmt.Errorf("remap %s: %w", label, core.NewPairNotFoundError(string(orig)))
		}
		index[i] = src
		signs[i] = sign
	}

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, signs[i]*signs[j]*cov.Matrix.At(index[i], index[j]))
		}
	}
	return delay.NewCovarianceMatrix(append([]delay.PairLabel(nil), cov.Labels...), out)
}

// ParseRemapping reads a comma separated list of old=new entries, e.g.
// "A=B,B=A". The result is validated.
func ParseRemapping(s string) (Remapping, error) {
	r := Remapping{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		from, to, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, core.NewRemappingError(fmt.Sprintf("entry %q is not of the form old=new", entry))
		}
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if _, dup := r[from]; dup {
			return nil, core.NewRemappingError(fmt.Sprintf("key %q appears more than once", from))
		}
		r[from] = to
	}
	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}
