package app

import (
	"context"
	"fmt"

	"tdcov/ports"
)

// ResultWriters fans results out to several writers in order, stopping at
// the first failure
type ResultWriters []ports.ResultWriter

func (ws ResultWriters) WriteResults(ctx context.Context, results ports.CovarianceResults) error {
	for i, w := range ws {
		if err := w.WriteResults(ctx, results); err != nil {
			return fmt.Errorf("result writer %d: %w", i, err)
		}
	}
	return nil
}
