package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/internal"
	"tdcov/internal/config"
	"tdcov/ports"

	"gonum.org/v1/gonum/mat"
)

// runFile is one archived batch of mock realizations
type runFile struct {
	Labels      []string    `json:"labels"`
	TsArray     [][]float64 `json:"tsarray"`
	TrueTsArray [][]float64 `json:"truetsarray"`
}

// ArchiveCatalog finds estimator archives and their mock runs on disk
type ArchiveCatalog struct {
	layout Layout
	paths  config.PathConfig
	logger *internal.Logger
}

// NewArchiveCatalog creates an archive catalog
func NewArchiveCatalog(paths config.PathConfig, logger *internal.Logger) *ArchiveCatalog {
	return &ArchiveCatalog{layout: NewLayout(paths), paths: paths, logger: logger}
}

func (c *ArchiveCatalog) ListArchives(ctx context.Context, lens, dataset string) ([]ports.Archive, error) {
	matches, err := filepath.Glob(filepath.Join(c.layout.LensDir(lens, dataset), c.paths.EstimatorGlob))
	if err != nil {
		return nil, fmt.Errorf("bad estimator pattern %q: %w", c.paths.EstimatorGlob, err)
	}
	sort.Strings(matches)

	archives := make([]ports.Archive, 0, len(matches))
	for _, m := range matches {
		if !isDir(m) {
			continue
		}
		archives = append(archives, ports.Archive{Name: filepath.Base(m), Path: m})
	}
	return archives, nil
}

func (c *ArchiveCatalog) CandidateRuns(ctx context.Context, archive ports.Archive) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(archive.Path, c.paths.MockRunGlob))
	if err != nil {
		return nil, fmt.Errorf("bad mock run pattern %q: %w", c.paths.MockRunGlob, err)
	}
	runs := matches[:0]
	for _, m := range matches {
		if isDir(m) {
			runs = append(runs, m)
		}
	}
	return runs, nil
}

// Collect concatenates every run file of a run directory, in name order
func (c *ArchiveCatalog) Collect(ctx context.Context, runPath string) (*delay.MockResultSet, error) {
	files, err := filepath.Glob(filepath.Join(runPath, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, core.NewNotFoundError("run files in", runPath)
	}
	sort.Strings(files)

	sets := make([]*delay.MockResultSet, 0, len(files))
	for _, f := range files {
		set, err := readRunFile(f)
		if err != nil {
			return nil, err
		}
		c.logger.Trace("Read %d realizations from %s", set.Rows(), f)
		sets = append(sets, set)
	}
	return delay.StackMockResults(sets)
}

func readRunFile(path string) (*delay.MockResultSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file %s: %w", path, err)
	}
	var rf runFile
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedArchive, path, err)
	}

	measured, err := denseOf(rf.TsArray)
	if err != nil {
		return nil, fmt.Errorf("%s tsarray: %w", path, err)
	}
	truth, err := denseOf(rf.TrueTsArray)
	if err != nil {
		return nil, fmt.Errorf("%s truetsarray: %w", path, err)
	}

	labels := make([]delay.EntityLabel, len(rf.Labels))
	for i, l := range rf.Labels {
		labels[i] = delay.EntityLabel(l)
	}
	set, err := delay.NewMockResultSet(labels, measured, truth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func denseOf(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty array", core.ErrMalformedArchive)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", core.ErrMalformedArchive, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
