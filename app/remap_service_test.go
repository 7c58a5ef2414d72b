package app

import (
	"context"
	"path/filepath"
	"testing"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/domain/remap"
	"tdcov/internal"
	"tdcov/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRemapService_Run(t *testing.T) {
	tables := testkit.NewMemoryTableStore()
	tables.Delays["in/delays.csv"] = delay.NewSingleColumnTable("delay", threePairs, []float64{5, 3, -2})
	cov, err := delay.NewCovarianceMatrix(threePairs, mat.NewSymDense(3, []float64{
		4.0, 1.0, 0.5,
		1.0, 9.0, -2.0,
		0.5, -2.0, 16.0,
	}))
	require.NoError(t, err)
	tables.Covariances["in/cov.csv"] = cov

	service := NewRemapService(tables, internal.NewDiscardLogger())
	result, err := service.Run(context.Background(), RemapRequest{
		DelaysPath:     "in/delays.csv",
		CovariancePath: "in/cov.csv",
		Mapping:        remap.Remapping{"A": "B", "B": "A"},
		OutDir:         "out",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", RemappedDelaysFile), result.DelaysPath)
	assert.Equal(t, filepath.Join("out", RemappedCovarianceFile), result.CovariancePath)

	delays := tables.Delays[result.DelaysPath]
	require.NotNil(t, delays)
	assert.Equal(t, [][]float64{{-5}, {-2}, {3}}, delays.Values)

	remapped := tables.Covariances[result.CovariancePath]
	require.NotNil(t, remapped)
	assert.Equal(t, 16.0, remapped.Matrix.At(1, 1))
	assert.Equal(t, -0.5, remapped.Matrix.At(0, 1))
}

func TestRemapService_Errors(t *testing.T) {
	tables := testkit.NewMemoryTableStore()
	service := NewRemapService(tables, internal.NewDiscardLogger())
	ctx := context.Background()

	_, err := service.Run(ctx, RemapRequest{DelaysPath: "d.csv", Mapping: remap.Remapping{"A": "B"}})
	assert.ErrorIs(t, err, core.ErrInvalidRemapping)

	_, err = service.Run(ctx, RemapRequest{Mapping: remap.Remapping{"A": "B", "B": "A"}})
	assert.Error(t, err)

	_, err = service.Run(ctx, RemapRequest{DelaysPath: "missing.csv", Mapping: remap.Remapping{"A": "B", "B": "A"}})
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, tables.Delays)
}
