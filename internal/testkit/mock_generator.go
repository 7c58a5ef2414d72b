package testkit

import (
	"fmt"
	"math/rand/v2"

	"tdcov/domain/delay"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MockGeneratorConfig configures the synthetic mock realization generator
type MockGeneratorConfig struct {
	Labels []delay.EntityLabel
	Rows   int
	// Noise is the standard deviation of each image's measurement error
	Noise float64
	// Bias shifts the measured time of an image in every realization
	Bias map[delay.EntityLabel]float64
	// OutlierRate is the chance that a measurement is thrown off by OutlierScale
	OutlierRate  float64
	OutlierScale float64
	// DelaySpread is the half-width of the uniform range of true time references
	DelaySpread float64
	Seed        uint64
}

// DefaultMockConfig returns a four image configuration with moderate noise
func DefaultMockConfig() MockGeneratorConfig {
	return MockGeneratorConfig{
		Labels:      []delay.EntityLabel{"A", "B", "C", "D"},
		Rows:        1000,
		Noise:       0.3,
		DelaySpread: 50,
		Seed:        42,
	}
}

// MockGenerator draws measured and true time references for mock light curves
type MockGenerator struct {
	config MockGeneratorConfig
}

// NewMockGenerator creates a new mock generator
func NewMockGenerator(config MockGeneratorConfig) *MockGenerator {
	return &MockGenerator{config: config}
}

// Generate returns a labeled result set. The same config always gives the
// same draws, and the true references do not depend on Noise or Bias.
func (g *MockGenerator) Generate() (*delay.MockResultSet, error) {
	cfg := g.config
	if cfg.Rows <= 0 || len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("mock generator needs rows and labels, got %d rows and %d labels", cfg.Rows, len(cfg.Labels))
	}

	cols := len(cfg.Labels)
	truth := mat.NewDense(cfg.Rows, cols, nil)
	measured := mat.NewDense(cfg.Rows, cols, nil)

	for c, label := range cfg.Labels {
		stream := uint64(c + 1)
		trueDist := distuv.Uniform{Min: -cfg.DelaySpread, Max: cfg.DelaySpread, Src: rand.NewPCG(cfg.Seed, stream)}
		noiseDist := distuv.Normal{Mu: 0, Sigma: cfg.Noise, Src: rand.NewPCG(cfg.Seed, stream+1000)}
		outliers := rand.New(rand.NewPCG(cfg.Seed, stream+2000))
		bias := cfg.Bias[label]

		for r := 0; r < cfg.Rows; r++ {
			t := trueDist.Rand()
			truth.Set(r, c, t)

			m := t + bias
			if cfg.Noise > 0 {
				m += noiseDist.Rand()
			}
			if cfg.OutlierRate > 0 && outliers.Float64() < cfg.OutlierRate {
				if outliers.IntN(2) == 0 {
					m += cfg.OutlierScale
				} else {
					m -= cfg.OutlierScale
				}
			}
			measured.Set(r, c, m)
		}
	}
	return delay.NewMockResultSet(append([]delay.EntityLabel(nil), cfg.Labels...), measured, truth)
}

// Split cuts a result set into consecutive chunks of at most size rows,
// mimicking one archive per chunk
func Split(set *delay.MockResultSet, size int) []*delay.MockResultSet {
	var out []*delay.MockResultSet
	rows, cols := set.Rows(), set.Cols()
	for start := 0; start < rows; start += size {
		end := start + size
		if end > rows {
			end = rows
		}
		measured := mat.DenseCopyOf(set.Measured.Slice(start, end, 0, cols))
		truth := mat.DenseCopyOf(set.True.Slice(start, end, 0, cols))
		out = append(out, &delay.MockResultSet{
			Labels:   append([]delay.EntityLabel(nil), set.Labels...),
			Measured: measured,
			True:     truth,
		})
	}
	return out
}
