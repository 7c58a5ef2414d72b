package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tdcov/domain/delay"
	"tdcov/internal/config"

	"gonum.org/v1/gonum/mat"
)

// SimulationTree describes the on-disk output of the fitting stages for one
// lens/dataset. A nil group list leaves its file out.
type SimulationTree struct {
	Lens     string
	Dataset  string
	Accepted []delay.ParameterGroup
	All      []delay.ParameterGroup
	Archives []SimulationArchive
}

// SimulationArchive is one estimator directory. Runs maps a run directory
// name to the result files written inside it.
type SimulationArchive struct {
	Name string
	Runs map[string][]*delay.MockResultSet
}

type runFile struct {
	Labels      []string    `json:"labels"`
	TsArray     [][]float64 `json:"tsarray"`
	TrueTsArray [][]float64 `json:"truetsarray"`
}

// Write lays the tree out under paths.SimulationDir
func (t SimulationTree) Write(paths config.PathConfig) error {
	base := filepath.Join(paths.SimulationDir, t.Lens+"_"+t.Dataset)
	margDir := filepath.Join(base, paths.MarginalisationDir)
	if err := os.MkdirAll(margDir, 0o755); err != nil {
		return err
	}
	if t.Accepted != nil {
		if err := writeJSON(filepath.Join(margDir, paths.GroupsUsedFile), t.Accepted); err != nil {
			return err
		}
	}
	if t.All != nil {
		if err := writeJSON(filepath.Join(margDir, paths.GroupsAllFile), t.All); err != nil {
			return err
		}
	}

	for _, archive := range t.Archives {
		archiveDir := filepath.Join(base, archive.Name)
		if err := os.MkdirAll(archiveDir, 0o755); err != nil {
			return err
		}
		for runName, sets := range archive.Runs {
			runDir := filepath.Join(archiveDir, runName)
			if err := os.MkdirAll(runDir, 0o755); err != nil {
				return err
			}
			for i, set := range sets {
				if err := writeJSON(filepath.Join(runDir, fmt.Sprintf("result_%03d.json", i)), toRunFile(set)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func toRunFile(set *delay.MockResultSet) runFile {
	labels := make([]string, len(set.Labels))
	for i, l := range set.Labels {
		labels[i] = string(l)
	}
	return runFile{Labels: labels, TsArray: rowsOf(set.Measured), TrueTsArray: rowsOf(set.True)}
}

func rowsOf(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Groups builds parameter groups that share one set of pair labels
func Groups(labels []delay.PairLabel, names ...string) []delay.ParameterGroup {
	groups := make([]delay.ParameterGroup, len(names))
	for i, name := range names {
		groups[i] = delay.ParameterGroup{Name: name, Labels: append([]delay.PairLabel(nil), labels...)}
	}
	return groups
}
