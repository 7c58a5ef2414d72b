package delay

import (
	"fmt"
	"math"

	"tdcov/domain/core"

	"gonum.org/v1/gonum/mat"
)

// ParameterGroup is one combination of fitting hyperparameters produced by
// the upstream model-selection stage, with the pair labels it was evaluated on.
type ParameterGroup struct {
	Name   string      `json:"name"`
	Labels []PairLabel `json:"labels"`
}

// MockResultSet holds per-realization absolute time references.
// Rows are mock realizations, columns follow Labels.
type MockResultSet struct {
	Labels   []EntityLabel
	Measured *mat.Dense
	True     *mat.Dense
}

// NewMockResultSet checks that both matrices agree with each other and with labels
func NewMockResultSet(labels []EntityLabel, measured, truth *mat.Dense) (*MockResultSet, error) {
	if measured == nil || truth == nil {
		return nil, fmt.Errorf("%w: missing measured or true matrix", core.ErrMalformedArchive)
	}
	mr, mc := measured.Dims()
	tr, tc := truth.Dims()
	if mr != tr || mc != tc {
		return nil, fmt.Errorf("%w: measured is %dx%d but true is %dx%d", core.ErrMalformedArchive, mr, mc, tr, tc)
	}
	if len(labels) != 0 && len(labels) != mc {
		return nil, fmt.Errorf("%w: %d labels for %d columns", core.ErrMalformedArchive, len(labels), mc)
	}
	return &MockResultSet{Labels: labels, Measured: measured, True: truth}, nil
}

// Rows returns the number of mock realizations
func (m *MockResultSet) Rows() int {
	r, _ := m.Measured.Dims()
	return r
}

// Cols returns the number of entity columns
func (m *MockResultSet) Cols() int {
	_, c := m.Measured.Dims()
	return c
}

// Column returns the column of an entity label, or -1
func (m *MockResultSet) Column(label EntityLabel) int {
	return IndexOf(m.Labels, label)
}

// Reorder returns a copy whose columns follow want. A set without labels is
// assumed to already be in that order.
func (m *MockResultSet) Reorder(want []EntityLabel) (*MockResultSet, error) {
	if len(m.Labels) == 0 {
		if m.Cols() != len(want) {
			return nil, fmt.Errorf("%w: unlabeled archive has %d columns, expected %d", core.ErrLabelMismatch, m.Cols(), len(want))
		}
		return &MockResultSet{Labels: append([]EntityLabel(nil), want...), Measured: m.Measured, True: m.True}, nil
	}

	rows := m.Rows()
	measured := mat.NewDense(rows, len(want), nil)
	truth := mat.NewDense(rows, len(want), nil)
	for dst, label := range want {
		src := m.Column(label)
		if src < 0 {
			return nil, fmt.Errorf("%w: archive has no column for image %s", core.ErrLabelMismatch, label)
		}
		measured.SetCol(dst, mat.Col(nil, src, m.Measured))
		truth.SetCol(dst, mat.Col(nil, src, m.True))
	}
	return &MockResultSet{Labels: append([]EntityLabel(nil), want...), Measured: measured, True: truth}, nil
}

// StackMockResults concatenates result sets vertically. All sets must share
// the same labels.
func StackMockResults(sets []*MockResultSet) (*MockResultSet, error) {
	if len(sets) == 0 {
		return nil, core.ErrNoData
	}

	labels := sets[0].Labels
	cols := sets[0].Cols()
	rows := 0
	for i, s := range sets {
		if s.Cols() != cols || len(s.Labels) != len(labels) {
			return nil, fmt.Errorf("%w: set %d has %d columns, expected %d", core.ErrLabelMismatch, i, s.Cols(), cols)
		}
		for k := range labels {
			if s.Labels[k] != labels[k] {
				return nil, fmt.Errorf("%w: set %d column %d is %s, expected %s", core.ErrLabelMismatch, i, k, s.Labels[k], labels[k])
			}
		}
		rows += s.Rows()
	}
	if rows == 0 || cols == 0 {
		return nil, core.ErrNoData
	}

	measured := mat.NewDense(rows, cols, nil)
	truth := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, s := range sets {
		n := s.Rows()
		measured.Slice(offset, offset+n, 0, cols).(*mat.Dense).Copy(s.Measured)
		truth.Slice(offset, offset+n, 0, cols).(*mat.Dense).Copy(s.True)
		offset += n
	}
	return &MockResultSet{Labels: append([]EntityLabel(nil), labels...), Measured: measured, True: truth}, nil
}

// PairErrors returns (measured_j - measured_i) - (true_j - true_i) for every
// realization, where i is the reference and j the image of the pair.
func (m *MockResultSet) PairErrors(pair PairLabel) ([]float64, error) {
	ref, img := pair.Split()
	i, j := m.Column(ref), m.Column(img)
	if i < 0 || j < 0 {
		return nil, fmt.Errorf("%w: pair %s not covered by images %v", core.ErrLabelMismatch, pair, m.Labels)
	}

	rows := m.Rows()
	errs := make([]float64, rows)
	for r := 0; r < rows; r++ {
		measuredDelay := m.Measured.At(r, j) - m.Measured.At(r, i)
		trueDelay := m.True.At(r, j) - m.True.At(r, i)
		errs[r] = measuredDelay - trueDelay
	}
	return errs, nil
}

// ErrorSeries is the residual error of one pair across all realizations.
// Clipped entries are NaN so positions stay aligned across pairs.
type ErrorSeries struct {
	Pair   PairLabel
	Values []float64
}

// Finite returns the non-NaN entries
func (s ErrorSeries) Finite() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Excluded counts the NaN entries
func (s ErrorSeries) Excluded() int {
	n := 0
	for _, v := range s.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// CovarianceMatrix is a symmetric matrix indexed by pair label on both axes
type CovarianceMatrix struct {
	Labels []PairLabel
	Matrix *mat.SymDense
}

// NewCovarianceMatrix wraps m, which must be len(labels) square
func NewCovarianceMatrix(labels []PairLabel, m *mat.SymDense) (*CovarianceMatrix, error) {
	if m == nil || m.SymmetricDim() != len(labels) {
		return nil, fmt.Errorf("%w: covariance dimension does not match %d labels", core.ErrMalformedTable, len(labels))
	}
	return &CovarianceMatrix{Labels: labels, Matrix: m}, nil
}

// Index returns the position of label, or -1
func (c *CovarianceMatrix) Index(label PairLabel) int {
	for i, l := range c.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// At returns the entry for a pair of labels
func (c *CovarianceMatrix) At(row, col PairLabel) (float64, error) {
	i, j := c.Index(row), c.Index(col)
	if i < 0 {
		return 0, core.NewPairNotFoundError(string(row))
	}
	if j < 0 {
		return 0, core.NewPairNotFoundError(string(col))
	}
	return c.Matrix.At(i, j), nil
}

// DelayTable holds one or more values per pair label, e.g. a delay and its
// uncertainty. Values[i] belongs to Labels[i].
type DelayTable struct {
	Labels  []PairLabel
	Columns []string
	Values  [][]float64
}

// Row returns the values of label
func (t *DelayTable) Row(label PairLabel) ([]float64, error) {
	for i, l := range t.Labels {
		if l == label {
			return t.Values[i], nil
		}
	}
	return nil, core.NewPairNotFoundError(string(label))
}

// Value returns the first column of label. Convenient for single-column tables.
func (t *DelayTable) Value(label PairLabel) (float64, error) {
	row, err := t.Row(label)
	if err != nil {
		return 0, err
	}
	if len(row) == 0 {
		return 0, fmt.Errorf("%w: pair %s has no values", core.ErrMalformedTable, label)
	}
	return row[0], nil
}

// NewSingleColumnTable builds a table from parallel labels and values
func NewSingleColumnTable(column string, labels []PairLabel, values []float64) *DelayTable {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return &DelayTable{Labels: append([]PairLabel(nil), labels...), Columns: []string{column}, Values: rows}
}
