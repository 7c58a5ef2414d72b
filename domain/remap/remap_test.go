package remap

import (
	"testing"

	"tdcov/domain/core"
	"tdcov/domain/delay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestValidate(t *testing.T) {
	valid := []struct {
		name string
		r    Remapping
	}{
		{"swap", Remapping{"A": "B", "B": "A"}},
		{"cycle", Remapping{"A": "B", "B": "C", "C": "A"}},
		{"identity", Remapping{"A": "A", "B": "B"}},
		{"partial identity", Remapping{"A": "C", "C": "A", "B": "B"}},
		{"empty", Remapping{}},
	}
	for _, tc := range valid {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, Validate(tc.r))
			assert.True(t, IsValid(tc.r))
		})
	}

	invalid := []struct {
		name string
		r    Remapping
	}{
		{"nil", nil},
		{"multi-char key", Remapping{"AB": "B", "B": "AB"}},
		{"multi-char value", Remapping{"A": "BC"}},
		{"empty key", Remapping{"": "A", "A": ""}},
		{"duplicate values", Remapping{"A": "C", "B": "C", "C": "A"}},
		{"not closed", Remapping{"A": "B"}},
		{"different alphabets", Remapping{"A": "X", "B": "Y"}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.r)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidRemapping)
			assert.False(t, IsValid(tc.r))
		})
	}
}

func exampleDelays() *delay.DelayTable {
	return delay.NewSingleColumnTable("delay",
		[]delay.PairLabel{"AB", "AC", "BC"},
		[]float64{5.0, 3.0, -2.0})
}

func TestRemapDelays_SwapAB(t *testing.T) {
	out, err := RemapDelays(exampleDelays(), Remapping{"A": "B", "B": "A"})
	require.NoError(t, err)

	ab, _ := out.Value("AB")
	ac, _ := out.Value("AC")
	bc, _ := out.Value("BC")
	assert.Equal(t, -5.0, ab)
	assert.Equal(t, -2.0, ac)
	assert.Equal(t, 3.0, bc)
	assert.Equal(t, []delay.PairLabel{"AB", "AC", "BC"}, out.Labels)
}

func TestRemapDelays_CycleKeepsAllColumns(t *testing.T) {
	in := &delay.DelayTable{
		Labels:  []delay.PairLabel{"AB", "AC", "BC"},
		Columns: []string{"delay", "error"},
		Values:  [][]float64{{5, 0.5}, {3, 0.3}, {-2, 0.2}},
	}
	// A->B, B->C, C->A
	out, err := RemapDelays(in, Remapping{"A": "B", "B": "C", "C": "A"})
	require.NoError(t, err)

	// AB reads BC unchanged; AC reads BA = -AB; BC reads CA = -AC
	assert.Equal(t, [][]float64{{-2, 0.2}, {-5, -0.5}, {-3, -0.3}}, out.Values)
	assert.Equal(t, []string{"delay", "error"}, out.Columns)
}

func TestRemapDelays_Involution(t *testing.T) {
	in := delay.NewSingleColumnTable("delay",
		delay.AllPairs([]delay.EntityLabel{"A", "B", "C", "D"}),
		[]float64{1.5, -2.25, 3.0, 4.75, -5.5, 6.125})

	mappings := []Remapping{
		{"A": "B", "B": "A"},
		{"A": "D", "D": "A"},
		{"A": "B", "B": "C", "C": "D", "D": "A"},
		{"A": "C", "C": "B", "B": "A", "D": "D"},
		{"A": "A"},
	}
	for _, r := range mappings {
		forward, err := RemapDelays(in, r)
		require.NoError(t, err)
		back, err := RemapDelays(forward, r.Inverse())
		require.NoError(t, err)
		assert.Equal(t, in.Values, back.Values, "mapping %v", r)
	}
}

func TestRemapDelays_Errors(t *testing.T) {
	_, err := RemapDelays(exampleDelays(), Remapping{"A": "B"})
	assert.ErrorIs(t, err, core.ErrInvalidRemapping)

	// D is renamed into the alphabet but the source table never had AD
	incomplete := delay.NewSingleColumnTable("delay", []delay.PairLabel{"AB", "AC"}, []float64{1, 2})
	_, err = RemapDelays(incomplete, Remapping{"C": "D", "D": "C"})
	assert.ErrorIs(t, err, core.ErrPairNotFound)
}

func exampleCovariance(t *testing.T) *delay.CovarianceMatrix {
	m := mat.NewSymDense(3, []float64{
		4.0, 1.0, 0.5,
		1.0, 9.0, -2.0,
		0.5, -2.0, 16.0,
	})
	cov, err := delay.NewCovarianceMatrix([]delay.PairLabel{"AB", "AC", "BC"}, m)
	require.NoError(t, err)
	return cov
}

func TestRemapCovariance_SwapAB(t *testing.T) {
	out, err := RemapCovariance(exampleCovariance(t), Remapping{"A": "B", "B": "A"})
	require.NoError(t, err)

	// AB <- -AB, AC <- +BC, BC <- +AC
	want := mat.NewSymDense(3, []float64{
		4.0, -0.5, -1.0,
		-0.5, 16.0, -2.0,
		-1.0, -2.0, 9.0,
	})
	assert.True(t, mat.Equal(want, out.Matrix), "got %v", mat.Formatted(out.Matrix))
}

func TestRemapCovariance_InvolutionAndSymmetry(t *testing.T) {
	cov := exampleCovariance(t)
	r := Remapping{"A": "C", "B": "A", "C": "B"}

	forward, err := RemapCovariance(cov, r)
	require.NoError(t, err)
	n := len(forward.Labels)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.Equal(t, forward.Matrix.At(i, j), forward.Matrix.At(j, i))
		}
	}

	back, err := RemapCovariance(forward, r.Inverse())
	require.NoError(t, err)
	assert.True(t, mat.Equal(cov.Matrix, back.Matrix))
}

func TestRemapCovariance_MissingPair(t *testing.T) {
	m := mat.NewSymDense(2, []float64{1, 0, 0, 1})
	cov, err := delay.NewCovarianceMatrix([]delay.PairLabel{"AB", "AC"}, m)
	require.NoError(t, err)

	_, err = RemapCovariance(cov, Remapping{"B": "D", "D": "B"})
	assert.ErrorIs(t, err, core.ErrPairNotFound)
}

func TestParseRemapping(t *testing.T) {
	r, err := ParseRemapping("A=B, B=A")
	require.NoError(t, err)
	assert.Equal(t, Remapping{"A": "B", "B": "A"}, r)

	r, err = ParseRemapping("A=C,C=B,B=A,")
	require.NoError(t, err)
	assert.Equal(t, Remapping{"A": "C", "C": "B", "B": "A"}, r)

	for _, bad := range []string{"A", "A=B", "A=B,A=C,B=A", "AB=C,C=AB"} {
		_, err := ParseRemapping(bad)
		assert.ErrorIs(t, err, core.ErrInvalidRemapping, "input %q", bad)
	}
}
