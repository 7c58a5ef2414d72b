package delay

import (
	"errors"
	"math"
	"testing"

	"tdcov/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestPairLabel_SplitAndValidate(t *testing.T) {
	ref, img := PairLabel("AC").Split()
	assert.Equal(t, EntityLabel("A"), ref)
	assert.Equal(t, EntityLabel("C"), img)

	assert.NoError(t, PairLabel("BD").Validate())
	assert.ErrorIs(t, PairLabel("BA").Validate(), core.ErrInvalidLabel)
	assert.ErrorIs(t, PairLabel("AA").Validate(), core.ErrInvalidLabel)
	assert.ErrorIs(t, PairLabel("ABC").Validate(), core.ErrInvalidLabel)
}

func TestNewPairLabel_ReportsSwap(t *testing.T) {
	p, swapped := NewPairLabel("C", "A")
	assert.Equal(t, PairLabel("AC"), p)
	assert.True(t, swapped)

	p, swapped = NewPairLabel("A", "C")
	assert.Equal(t, PairLabel("AC"), p)
	assert.False(t, swapped)
}

func TestEntitiesOf(t *testing.T) {
	got := EntitiesOf([]PairLabel{"CD", "AB", "AC", "BD"})
	assert.Equal(t, []EntityLabel{"A", "B", "C", "D"}, got)
	assert.Equal(t, []PairLabel{"AB", "AC", "AD", "BC", "BD", "CD"}, AllPairs(got))
}

func TestMockResultSet_PairErrors(t *testing.T) {
	measured := mat.NewDense(2, 3, []float64{
		0, 10, 21,
		1, 12, 20,
	})
	truth := mat.NewDense(2, 3, []float64{
		0, 10, 20,
		0, 10, 20,
	})
	set, err := NewMockResultSet([]EntityLabel{"A", "B", "C"}, measured, truth)
	require.NoError(t, err)

	errs, err := set.PairErrors("AC")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1}, errs)

	errs, err = set.PairErrors("BC")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, errs)

	_, err = set.PairErrors("AD")
	assert.ErrorIs(t, err, core.ErrLabelMismatch)
}

func TestMockResultSet_ReorderAndStack(t *testing.T) {
	first, err := NewMockResultSet([]EntityLabel{"B", "A"},
		mat.NewDense(1, 2, []float64{2, 1}),
		mat.NewDense(1, 2, []float64{20, 10}))
	require.NoError(t, err)
	second, err := NewMockResultSet(nil,
		mat.NewDense(2, 2, []float64{3, 4, 5, 6}),
		mat.NewDense(2, 2, []float64{30, 40, 50, 60}))
	require.NoError(t, err)

	want := []EntityLabel{"A", "B"}
	a, err := first.Reorder(want)
	require.NoError(t, err)
	b, err := second.Reorder(want)
	require.NoError(t, err)

	stacked, err := StackMockResults([]*MockResultSet{a, b})
	require.NoError(t, err)
	assert.Equal(t, 3, stacked.Rows())
	assert.Equal(t, []float64{1, 2}, mat.Row(nil, 0, stacked.Measured))
	assert.Equal(t, []float64{5, 6}, mat.Row(nil, 2, stacked.Measured))
	assert.Equal(t, []float64{10, 20}, mat.Row(nil, 0, stacked.True))

	_, err = first.Reorder([]EntityLabel{"A", "C"})
	assert.True(t, errors.Is(err, core.ErrLabelMismatch))
}

func TestStackMockResults_Empty(t *testing.T) {
	_, err := StackMockResults(nil)
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestErrorSeries_FiniteAndExcluded(t *testing.T) {
	s := ErrorSeries{Pair: "AB", Values: []float64{1, math.NaN(), 3, math.NaN()}}
	assert.Equal(t, []float64{1, 3}, s.Finite())
	assert.Equal(t, 2, s.Excluded())
}

func TestMicrolensing_Token(t *testing.T) {
	assert.Equal(t, "", NoMicrolensing.Token())
	assert.Equal(t, "2", SplineMicrolensing("2").Token())
	assert.Equal(t, "3", PolynomialMicrolensing("3").Token())
	assert.Equal(t, "splml(2)", SplineMicrolensing("2").String())
}
