package ports

import (
	"context"

	"tdcov/domain/delay"
)

// Archive is one estimator directory, i.e. one concrete fit configuration
type Archive struct {
	Name string
	Path string
}

// ArchiveCatalog lists and loads archived mock results
type ArchiveCatalog interface {
	// ListArchives returns the estimator archives of a lens/dataset, sorted by name
	ListArchives(ctx context.Context, lens, dataset string) ([]Archive, error)

	// CandidateRuns returns the mock run directories inside an archive
	CandidateRuns(ctx context.Context, archive Archive) ([]string, error)

	// Collect loads every result file of one mock run directory
	Collect(ctx context.Context, runPath string) (*delay.MockResultSet, error)
}
