package filestore

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tdcov/domain/core"
	"tdcov/domain/delay"

	"gonum.org/v1/gonum/mat"
)

// symmetryTolerance bounds the relative asymmetry accepted when reading a
// covariance table written with limited precision
const symmetryTolerance = 1e-9

// FormatFloat writes the shortest representation that reads back exactly.
// NaN is written as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat reads a cell written by FormatFloat or by other tools, treating
// empty cells and "nan" as NaN
func ParseFloat(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// EncodeCovariance lays a covariance matrix out as a labeled square table,
// with pair labels on the first row and the first column
func EncodeCovariance(cov *delay.CovarianceMatrix) [][]string {
	n := len(cov.Labels)
	records := make([][]string, 0, n+1)

	header := make([]string, 0, n+1)
	header = append(header, "")
	for _, l := range cov.Labels {
		header = append(header, string(l))
	}
	records = append(records, header)

	for i, l := range cov.Labels {
		row := make([]string, 0, n+1)
		row = append(row, string(l))
		for j := 0; j < n; j++ {
			row = append(row, FormatFloat(cov.Matrix.At(i, j)))
		}
		records = append(records, row)
	}
	return records
}

// DecodeCovariance reads a table produced by EncodeCovariance. Row and column
// labels must agree and the values must be symmetric.
func DecodeCovariance(records [][]string) (*delay.CovarianceMatrix, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: covariance table needs a header and at least one row", core.ErrMalformedTable)
	}
	header := records[0]
	n := len(header) - 1
	if n < 1 || len(records)-1 != n {
		return nil, fmt.Errorf("%w: covariance table is %d rows by %d columns", core.ErrMalformedTable, len(records)-1, n)
	}

	labels := make([]delay.PairLabel, n)
	for j := 0; j < n; j++ {
		labels[j] = delay.PairLabel(strings.TrimSpace(header[j+1]))
		if err := labels[j].Validate(); err != nil {
			return nil, err
		}
	}

	values := mat.NewDense(n, n, nil)
	for i, row := range records[1:] {
		if len(row) != n+1 {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", core.ErrMalformedTable, i+1, len(row), n+1)
		}
		if got := delay.PairLabel(strings.TrimSpace(row[0])); got != labels[i] {
			return nil, fmt.Errorf("%w: row %d is labeled %s but column %d is %s", core.ErrMalformedTable, i+1, got, i+1, labels[i])
		}
		for j, cell := range row[1:] {
			v, err := ParseFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: row %s column %s: %v", core.ErrMalformedTable, labels[i], labels[j], err)
			}
			values.Set(i, j, v)
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := values.At(i, j), values.At(j, i)
			if !nearlyEqual(a, b) {
				return nil, fmt.Errorf("%w: covariance is not symmetric at %s,%s (%g vs %g)", core.ErrMalformedTable, labels[i], labels[j], a, b)
			}
			sym.SetSym(i, j, a)
		}
	}
	return delay.NewCovarianceMatrix(labels, sym)
}

// EncodeDelays lays a delay table out with the column names on the first row
// and the pair labels in the first column
func EncodeDelays(table *delay.DelayTable) [][]string {
	records := make([][]string, 0, len(table.Labels)+1)
	records = append(records, append([]string{""}, table.Columns...))
	for i, l := range table.Labels {
		row := make([]string, 0, len(table.Columns)+1)
		row = append(row, string(l))
		for _, v := range table.Values[i] {
			row = append(row, FormatFloat(v))
		}
		records = append(records, row)
	}
	return records
}

// DecodeDelays reads a table produced by EncodeDelays
func DecodeDelays(records [][]string) (*delay.DelayTable, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: delay table needs a header and at least one row", core.ErrMalformedTable)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: delay table has no value columns", core.ErrMalformedTable)
	}

	table := &delay.DelayTable{}
	for _, c := range header[1:] {
		table.Columns = append(table.Columns, strings.TrimSpace(c))
	}
	seen := make(map[delay.PairLabel]struct{}, len(records)-1)
	for i, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", core.ErrMalformedTable, i+1, len(row), len(header))
		}
		label := delay.PairLabel(strings.TrimSpace(row[0]))
		if err := label.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: pair %s appears twice", core.ErrMalformedTable, label)
		}
		seen[label] = struct{}{}

		values := make([]float64, len(row)-1)
		for j, cell := range row[1:] {
			v, err := ParseFloat(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: pair %s column %s: %v", core.ErrMalformedTable, label, table.Columns[j], err)
			}
			values[j] = v
		}
		table.Labels = append(table.Labels, label)
		table.Values = append(table.Values, values)
	}
	return table, nil
}

func nearlyEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= symmetryTolerance*scale
}
