package testkit

import (
	"math"
	"testing"

	"tdcov/domain/delay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestMockGenerator_Deterministic(t *testing.T) {
	cfg := DefaultMockConfig()
	cfg.Rows = 200

	a, err := NewMockGenerator(cfg).Generate()
	require.NoError(t, err)
	b, err := NewMockGenerator(cfg).Generate()
	require.NoError(t, err)

	assert.Equal(t, a.Measured.RawMatrix().Data, b.Measured.RawMatrix().Data)
	assert.Equal(t, a.True.RawMatrix().Data, b.True.RawMatrix().Data)
	assert.Equal(t, cfg.Labels, a.Labels)
}

func TestMockGenerator_BiasLeavesTruthAlone(t *testing.T) {
	cfg := DefaultMockConfig()
	cfg.Rows = 2000
	base, err := NewMockGenerator(cfg).Generate()
	require.NoError(t, err)

	cfg.Bias = map[delay.EntityLabel]float64{"B": 0.3}
	biased, err := NewMockGenerator(cfg).Generate()
	require.NoError(t, err)

	assert.Equal(t, base.True.RawMatrix().Data, biased.True.RawMatrix().Data)

	errs, err := biased.PairErrors("AB")
	require.NoError(t, err)
	mean, std := stat.MeanStdDev(errs, nil)
	assert.InDelta(t, 0.3, mean, 0.05)
	assert.InEpsilon(t, 0.3*math.Sqrt2, std, 0.1)
}

func TestMockGenerator_RejectsEmptyConfig(t *testing.T) {
	_, err := NewMockGenerator(MockGeneratorConfig{}).Generate()
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	cfg := DefaultMockConfig()
	cfg.Rows = 25
	set, err := NewMockGenerator(cfg).Generate()
	require.NoError(t, err)

	chunks := Split(set, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, 10, chunks[0].Rows())
	assert.Equal(t, 5, chunks[2].Rows())

	stacked, err := delay.StackMockResults(chunks)
	require.NoError(t, err)
	assert.Equal(t, set.Measured.RawMatrix().Data, stacked.Measured.RawMatrix().Data)
}
