package ports

import (
	"context"

	"tdcov/domain/delay"
)

// GroupStore provides read-only access to the parameter groups written by
// the upstream model-selection stage
type GroupStore interface {
	// LoadAccepted returns the groups kept for the combined estimate.
	// A missing file is reported as core.ErrNotFound.
	LoadAccepted(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error)

	// LoadAll returns every evaluated group, before any selection
	LoadAll(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error)
}
