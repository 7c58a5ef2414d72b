// Package filestore reads the outputs of the fitting stages from the
// simulation directory tree and writes the covariance results next to them.
package filestore

import (
	"path/filepath"

	"tdcov/internal/config"
)

// Output file names, fixed by downstream consumers
const (
	CovarianceFile = "covariance_matrix.csv"
	RatioFile      = "median_std_over_16-84_interval_ratio.txt"
	ManifestFile   = "run_manifest.json"
)

// Layout resolves paths inside the simulation directory
type Layout struct {
	paths config.PathConfig
}

// NewLayout creates a layout over the configured paths
func NewLayout(paths config.PathConfig) Layout {
	return Layout{paths: paths}
}

// LensDir is the directory of one lens/dataset, e.g. Simulation/J1206_WFI
func (l Layout) LensDir(lens, dataset string) string {
	return filepath.Join(l.paths.SimulationDir, lens+"_"+dataset)
}

// OutputDir is where results and group files live
func (l Layout) OutputDir(lens, dataset string) string {
	return filepath.Join(l.LensDir(lens, dataset), l.paths.MarginalisationDir)
}

// AcceptedGroupsPath is the file listing the groups used in the combined estimate
func (l Layout) AcceptedGroupsPath(lens, dataset string) string {
	return filepath.Join(l.OutputDir(lens, dataset), l.paths.GroupsUsedFile)
}

// AllGroupsPath is the file listing every evaluated group
func (l Layout) AllGroupsPath(lens, dataset string) string {
	return filepath.Join(l.OutputDir(lens, dataset), l.paths.GroupsAllFile)
}
