package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tdcov/domain/delay"
	"tdcov/internal/config"
	"tdcov/internal/errors"
	"tdcov/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSimulation(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	mocks := testkit.DefaultMockConfig()
	mocks.Labels = []delay.EntityLabel{"A", "B", "C"}
	mocks.Rows = 400
	set, err := testkit.NewMockGenerator(mocks).Generate()
	require.NoError(t, err)

	paths := config.Default().Paths
	paths.SimulationDir = dir
	tree := testkit.SimulationTree{
		Lens:     "J1206",
		Dataset:  "WFI",
		Accepted: testkit.Groups([]delay.PairLabel{"AB", "AC", "BC"}, "spl1_ks35_splml_nmlspl_2_ok", "combined_0.50"),
		Archives: []testkit.SimulationArchive{{
			Name: "spl1_ks35_splml_nmlspl_2_knstp",
			Runs: map[string][]*delay.MockResultSet{"sims_mocks_400_opt_spl1t4": testkit.Split(set, 200)},
		}},
	}
	require.NoError(t, tree.Write(paths))
	return dir
}

func TestCovarianceCommand(t *testing.T) {
	dir := writeSimulation(t)
	t.Setenv("TDCOV_SIMULATION_DIR", dir)
	t.Setenv("TDCOV_EXCEL_EXPORT", "true")
	t.Setenv("TDCOV_HTML_REPORT", "true")
	t.Setenv("LOG_LEVEL", "ERROR")

	out, err := execute(t, "covariance", "J1206", "WFI")
	require.NoError(t, err)
	assert.Contains(t, out, "Covariance Matrix:")
	assert.Contains(t, out, "Median ratio of standard deviation over 16-84 percentile interval:")

	outDir := filepath.Join(dir, "J1206_WFI", "marginalisation_spline")
	for _, name := range []string{
		"covariance_matrix.csv",
		"median_std_over_16-84_interval_ratio.txt",
		"run_manifest.json",
		"covariance_matrix.xlsx",
		"covariance_report.md",
		"covariance_report.html",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	csv, err := os.ReadFile(filepath.Join(outDir, "covariance_matrix.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csv, []byte(",AB,AC,BC\n")))
}

func TestCovarianceCommand_Failures(t *testing.T) {
	t.Setenv("TDCOV_SIMULATION_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "ERROR")

	_, err := execute(t, "covariance", "J1206")
	assert.Error(t, err)

	_, err = execute(t, "covariance", "J1206", "WFI")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestRemapCommand(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	dir := t.TempDir()
	delays := filepath.Join(dir, "delays.csv")
	require.NoError(t, os.WriteFile(delays, []byte(",delay\nAB,5\nAC,3\nBC,-2\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "remap", "--delays", delays, "--map", "A=B,B=A", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Remapped delays written to")

	got, err := os.ReadFile(filepath.Join(outDir, "delays_remapped.csv"))
	require.NoError(t, err)
	assert.Equal(t, ",delay\nAB,-5\nAC,-2\nBC,3\n", string(got))

	_, err = execute(t, "remap", "--delays", delays, "--map", "A=B", "--out", outDir)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
