package ports

import (
	"context"

	"tdcov/domain/delay"
	"tdcov/domain/run"
)

// CovarianceResults is the terminal output of a covariance run
type CovarianceResults struct {
	Lens        string
	Dataset     string
	Covariance  *delay.CovarianceMatrix
	MedianRatio float64
	Manifest    *run.Manifest
}

// ResultWriter persists covariance results
type ResultWriter interface {
	WriteResults(ctx context.Context, results CovarianceResults) error
}

// OutputLocator resolves where the results of a lens/dataset are written
type OutputLocator interface {
	OutputDir(lens, dataset string) string
}
