package numeric

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestPercentile_LinearInterpolation(t *testing.T) {
	x := []float64{4, 1, 3, 2, 5}

	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 2},
		{50, 3},
		{100, 5},
		{16, 1.64},
		{84, 4.36},
	}
	for _, tc := range cases {
		got, err := Percentile(x, tc.p)
		require.NoError(t, err)
		assert.InDelta(t, tc.want, got, 1e-12, "p=%v", tc.p)
	}

	// input is not reordered
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, x)
}

func TestPercentile_Errors(t *testing.T) {
	_, err := Percentile(nil, 50)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Percentile([]float64{1}, 101)
	assert.Error(t, err)

	got, err := Percentile([]float64{1, math.NaN()}, 50)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestRobustStd_RecoversGaussianSigma(t *testing.T) {
	for _, n := range []int{5000, 20000} {
		for _, sigma := range []float64{0.5, 2.0, 7.5} {
			dist := distuv.Normal{Mu: 3, Sigma: sigma, Src: rand.NewPCG(uint64(n), 17)}
			x := make([]float64, n)
			for i := range x {
				x[i] = dist.Rand()
			}
			got, err := RobustStd(x, 16, 84)
			require.NoError(t, err)
			assert.InEpsilon(t, sigma, got, 0.05, "n=%d sigma=%v", n, sigma)
		}
	}
}

func TestSigmaClip_RemovesOutliers(t *testing.T) {
	x := make([]float64, 0, 102)
	for i := 0; i < 100; i++ {
		x = append(x, float64(i%10)-4.5)
	}
	x = append(x, 1000, -1000)

	res := SigmaClip(x, 3, 3)
	assert.Len(t, res.Kept, 100)
	assert.Less(t, res.Upper, 1000.0)
	assert.Greater(t, res.Lower, -1000.0)

	masked, n := MaskOutside(x, res.Lower, res.Upper)
	assert.Equal(t, 2, n)
	assert.True(t, math.IsNaN(masked[100]))
	assert.True(t, math.IsNaN(masked[101]))
	assert.Equal(t, x[0], masked[0])
}

func TestSigmaClip_ConstantInputKeepsEverything(t *testing.T) {
	x := []float64{2, 2, 2, 2}
	res := SigmaClip(x, 2, 2)
	assert.Equal(t, x, res.Kept)
	assert.Equal(t, 2.0, res.Lower)
	assert.Equal(t, 2.0, res.Upper)
}

func TestSigmaClip_Empty(t *testing.T) {
	res := SigmaClip(nil, 3, 3)
	assert.Empty(t, res.Kept)
	assert.True(t, math.IsNaN(res.Lower))
}

func TestBrent_FindsRoots(t *testing.T) {
	settings := BrentSettings{XTol: 1e-12, MaxIterations: 100}

	root, err := Brent(func(x float64) float64 { return x*x - 2 }, 0, 2, settings)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-10)

	root, err = Brent(math.Cos, 1, 2, settings)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, root, 1e-10)

	root, err = Brent(func(x float64) float64 { return x - 3 }, 3, 5, settings)
	require.NoError(t, err)
	assert.Equal(t, 3.0, root)
}

func TestBrent_CoarseTolerance(t *testing.T) {
	root, err := Brent(func(x float64) float64 { return math.Exp(x) - 20 }, 2, 5, BrentSettings{XTol: 1e-2})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(20), root, 1e-2)
}

func TestBrent_Failures(t *testing.T) {
	_, err := Brent(func(x float64) float64 { return x*x + 1 }, -1, 1, BrentSettings{XTol: 1e-6})
	assert.True(t, errors.Is(err, ErrNotBracketed))

	_, err = Brent(func(x float64) float64 { return math.NaN() }, -1, 1, BrentSettings{XTol: 1e-6})
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Brent(func(x float64) float64 { return x }, -1, 3, BrentSettings{XTol: 1e-300, MaxIterations: 1})
	assert.ErrorIs(t, err, ErrNoConvergence)
}
