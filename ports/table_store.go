package ports

import (
	"context"

	"tdcov/domain/delay"
)

// TableStore reads and writes labeled delay and covariance tables
type TableStore interface {
	ReadDelays(ctx context.Context, path string) (*delay.DelayTable, error)
	ReadCovariance(ctx context.Context, path string) (*delay.CovarianceMatrix, error)
	WriteDelays(ctx context.Context, path string, table *delay.DelayTable) error
	WriteCovariance(ctx context.Context, path string, cov *delay.CovarianceMatrix) error
}
