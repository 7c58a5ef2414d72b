package app

import (
	"context"
	"testing"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/internal"
	"tdcov/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var abc = []delay.EntityLabel{"A", "B", "C"}

func generate(t *testing.T, labels []delay.EntityLabel, rows int, seed uint64) *delay.MockResultSet {
	t.Helper()
	cfg := testkit.DefaultMockConfig()
	cfg.Labels = labels
	cfg.Rows = rows
	cfg.Seed = seed
	set, err := testkit.NewMockGenerator(cfg).Generate()
	require.NoError(t, err)
	return set
}

func splineFit(knot, param string) delay.AcceptedFit {
	return delay.AcceptedFit{Knot: knot, Microlensing: delay.SplineMicrolensing(param)}
}

func TestMatchesArchive(t *testing.T) {
	accepted := []delay.AcceptedFit{splineFit("ks35", "2"), {Knot: "ks50", Microlensing: delay.NoMicrolensing}}

	assert.True(t, MatchesArchive("spl1_ks35_splml_nmlspl_2_mocks", accepted))
	assert.False(t, MatchesArchive("spl1_ks45_splml_nmlspl_2_mocks", accepted))
	assert.False(t, MatchesArchive("spl1_ks35_splml_nmlspl_3_mocks", accepted))
	// no microlensing token matches on the knot alone
	assert.True(t, MatchesArchive("spl1_ks50_polyml_degree_1", accepted))
	assert.False(t, MatchesArchive("anything", nil))
}

func TestMockAggregator_StacksMatchingArchives(t *testing.T) {
	first := generate(t, abc, 30, 1)
	second := generate(t, []delay.EntityLabel{"C", "A", "B"}, 20, 2)
	small := generate(t, abc, 5, 3)
	ignored := generate(t, abc, 7, 4)

	catalog := testkit.NewMemoryArchiveCatalog()
	catalog.AddArchive("spl1_ks35_splml_nmlspl_2_a", map[string]*delay.MockResultSet{
		"ks35/sims_mocks_100_opt_spl1t4": small,
		"ks35/sims_mocks_500_opt_spl1t4": first,
	})
	catalog.AddArchive("spl1_ks45_splml_nmlspl_2_a", map[string]*delay.MockResultSet{"ks45/sims_mocks_500_opt_spl1t4": second})
	catalog.AddArchive("spl1_ks55_splml_nmlspl_2_a", map[string]*delay.MockResultSet{"ks55/sims_mocks_500_opt_spl1t4": ignored})
	catalog.AddArchive("spl1_ks35_splml_nmlspl_2_empty", nil)

	agg := NewMockAggregator(catalog, internal.NewDiscardLogger())
	ctx := context.Background()
	archives, err := agg.ListArchives(ctx, "L", "D")
	require.NoError(t, err)

	stacked, report, err := agg.Aggregate(ctx, archives, []delay.AcceptedFit{splineFit("ks35", "2"), splineFit("ks45", "2")}, abc)
	require.NoError(t, err)

	assert.Equal(t, 50, stacked.Rows())
	assert.Equal(t, abc, stacked.Labels)
	assert.Equal(t, []string{"ks35/sims_mocks_500_opt_spl1t4", "ks45/sims_mocks_500_opt_spl1t4"}, catalog.Collected)
	assert.Equal(t, []string{"spl1_ks35_splml_nmlspl_2_empty"}, report.Skipped)
	require.Len(t, report.Used, 2)
	assert.Equal(t, 30, report.Used[0].Rows)
	assert.Equal(t, 20, report.Used[1].Rows)

	// the second archive stored its columns as C, A, B
	gotA := mat.Col(nil, 0, stacked.Measured)[30:]
	assert.Equal(t, mat.Col(nil, 1, second.Measured), gotA)
	gotC := mat.Col(nil, 2, stacked.True)[30:]
	assert.Equal(t, mat.Col(nil, 0, second.True), gotC)
}

func TestMockAggregator_NoArchives(t *testing.T) {
	agg := NewMockAggregator(testkit.NewMemoryArchiveCatalog(), internal.NewDiscardLogger())
	_, err := agg.ListArchives(context.Background(), "L", "D")
	assert.ErrorIs(t, err, core.ErrNoArchives)
	assert.True(t, core.IsDataAvailabilityError(err))
}

func TestMockAggregator_NoData(t *testing.T) {
	catalog := testkit.NewMemoryArchiveCatalog()
	catalog.AddArchive("spl1_ks35_splml_nmlspl_2_a", map[string]*delay.MockResultSet{"run/sims_mocks_1_opt": generate(t, abc, 5, 1)})
	catalog.AddArchive("spl1_ks45_splml_nmlspl_2_a", nil)
	agg := NewMockAggregator(catalog, internal.NewDiscardLogger())

	archives, err := agg.ListArchives(context.Background(), "L", "D")
	require.NoError(t, err)

	// nothing matches
	_, _, err = agg.Aggregate(context.Background(), archives, []delay.AcceptedFit{splineFit("ks99", "2")}, abc)
	assert.ErrorIs(t, err, core.ErrNoData)

	// matches, but the archive has no runs
	_, report, err := agg.Aggregate(context.Background(), archives, []delay.AcceptedFit{splineFit("ks45", "2")}, abc)
	assert.ErrorIs(t, err, core.ErrNoData)
	assert.Equal(t, []string{"spl1_ks45_splml_nmlspl_2_a"}, report.Skipped)
}

func TestMockAggregator_MissingImageColumn(t *testing.T) {
	catalog := testkit.NewMemoryArchiveCatalog()
	catalog.AddArchive("spl1_ks35_splml_nmlspl_2_a", map[string]*delay.MockResultSet{
		"run/sims_mocks_1_opt": generate(t, []delay.EntityLabel{"A", "B"}, 5, 1),
	})
	agg := NewMockAggregator(catalog, internal.NewDiscardLogger())
	archives, err := agg.ListArchives(context.Background(), "L", "D")
	require.NoError(t, err)

	_, _, err = agg.Aggregate(context.Background(), archives, []delay.AcceptedFit{splineFit("ks35", "2")}, abc)
	assert.ErrorIs(t, err, core.ErrLabelMismatch)
}

func TestMockAggregator_HonoursCancellation(t *testing.T) {
	catalog := testkit.NewMemoryArchiveCatalog()
	catalog.AddArchive("spl1_ks35_splml_nmlspl_2_a", map[string]*delay.MockResultSet{"run/sims_mocks_1_opt": generate(t, abc, 5, 1)})
	agg := NewMockAggregator(catalog, internal.NewDiscardLogger())
	archives, err := agg.ListArchives(context.Background(), "L", "D")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = agg.Aggregate(ctx, archives, []delay.AcceptedFit{splineFit("ks35", "2")}, abc)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, catalog.Collected)
}
