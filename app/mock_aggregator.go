package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/domain/run"
	"tdcov/internal"
	"tdcov/ports"
)

// AggregateReport records which archives contributed mock realizations
type AggregateReport struct {
	Used    []run.ArchiveUse
	Skipped []string
}

// MockAggregator loads and stacks the mock results of every archive that
// matches an accepted fit
type MockAggregator struct {
	catalog ports.ArchiveCatalog
	logger  *internal.Logger
}

// NewMockAggregator creates a mock aggregator
func NewMockAggregator(catalog ports.ArchiveCatalog, logger *internal.Logger) *MockAggregator {
	return &MockAggregator{catalog: catalog, logger: logger}
}

// ListArchives returns the estimator archives, failing with core.ErrNoArchives
// when there are none
func (a *MockAggregator) ListArchives(ctx context.Context, lens, dataset string) ([]ports.Archive, error) {
	archives, err := a.catalog.ListArchives(ctx, lens, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to list estimator archives: %w", err)
	}
	if len(archives) == 0 {
		return nil, fmt.Errorf("%w for %s_%s", core.ErrNoArchives, lens, dataset)
	}
	return archives, nil
}

// Aggregate stacks the measured and true time references of all matching
// archives, with columns in the order of entities.
func (a *MockAggregator) Aggregate(
	ctx context.Context,
	archives []ports.Archive,
	accepted []delay.AcceptedFit,
	entities []delay.EntityLabel,
) (*delay.MockResultSet, *AggregateReport, error) {
	report := &AggregateReport{}
	var sets []*delay.MockResultSet

	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		if !MatchesArchive(archive.Name, accepted) {
			continue
		}

		a.logger.Info("Loading mocks from %s", archive.Path)
		runs, err := a.catalog.CandidateRuns(ctx, archive)
		if err != nil {
			return nil, report, fmt.Errorf("failed to list mock runs of %s: %w", archive.Name, err)
		}
		if len(runs) == 0 {
			a.logger.Info("No mocks found in %s, skipping", archive.Path)
			report.Skipped = append(report.Skipped, archive.Name)
			continue
		}
		runPath := latestRun(runs)

		set, err := a.catalog.Collect(ctx, runPath)
		if err != nil {
			return nil, report, fmt.Errorf("failed to collect %s: %w", runPath, err)
		}
		set, err = set.Reorder(entities)
		if err != nil {
			return nil, report, fmt.Errorf("archive %s: %w", archive.Name, err)
		}
		a.logger.Debug("Loaded %d realizations from %s", set.Rows(), runPath)

		sets = append(sets, set)
		report.Used = append(report.Used, run.ArchiveUse{Archive: archive.Name, RunPath: runPath, Rows: set.Rows()})
	}

	if len(sets) == 0 {
		return nil, report, fmt.Errorf("%w: check the accepted parameters and mock paths", core.ErrNoData)
	}
	stacked, err := delay.StackMockResults(sets)
	if err != nil {
		return nil, report, err
	}
	return stacked, report, nil
}

// MatchesArchive reports whether any accepted fit has both its knot token and
// its microlensing token in the archive name
func MatchesArchive(name string, accepted []delay.AcceptedFit) bool {
	for _, fit := range accepted {
		if strings.Contains(name, fit.Knot) && strings.Contains(name, fit.Microlensing.Token()) {
			return true
		}
	}
	return false
}

// latestRun picks the lexicographically greatest run path. Run directories
// encode their realization count, so this usually selects the largest run.
func latestRun(runs []string) string {
	sorted := append([]string(nil), runs...)
	sort.Strings(sorted)
	return sorted[len(sorted)-1]
}
