package main

import (
	stderrors "errors"
	"fmt"

	"tdcov/adapters/excel"
	"tdcov/adapters/filestore"
	"tdcov/adapters/report"
	"tdcov/app"
	"tdcov/domain/core"
	"tdcov/internal/errors"
	"tdcov/ports"

	"github.com/spf13/cobra"
)

func newCovarianceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "covariance [lens] [dataset]",
		Short: "Estimate the time-delay error covariance of a lens/dataset",
		Long: `Estimate the covariance of the pairwise time-delay errors from the mock
runs of every accepted fit, calibrating a sigma clip per pair so the clipped
spread matches the 16-84 percentile interval.

Results are written to <simulation_dir>/<lens>_<dataset>/<marginalisation_dir>/.

Example: tdcov covariance J1206 WFI`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lens, dataset := args[0], args[1]
			cfg := *c.cfg

			layout := filestore.NewLayout(cfg.Paths)
			csvWriter := filestore.NewResultWriter(layout, c.logger)
			writers := app.ResultWriters{csvWriter}
			if cfg.Output.ExcelExport {
				writers = append(writers, excel.NewCovarianceExporter(excel.DefaultExcelConfig(), csvWriter, c.logger))
			}
			if cfg.Output.Report {
				writers = append(writers, report.NewWriter(csvWriter, cfg.Output.HTMLReport, c.logger))
			}

			service := app.NewCovarianceService(
				filestore.NewGroupStore(layout),
				filestore.NewArchiveCatalog(cfg.Paths, c.logger),
				writers,
				cfg,
				c.logger,
			)

			result, err := service.Run(cmd.Context(), lens, dataset)
			if err != nil {
				return covarianceError(lens, dataset, err)
			}

			return report.WriteSummary(cmd.OutOrStdout(), ports.CovarianceResults{
				Lens:        lens,
				Dataset:     dataset,
				Covariance:  result.Result.Covariance,
				MedianRatio: result.Result.MedianRatio,
				Manifest:    result.Manifest,
			})
		},
	}
}

// covarianceError tags data-availability failures so the CLI reports them as such
func covarianceError(lens, dataset string, err error) error {
	switch {
	case stderrors.Is(err, core.ErrNoArchives):
		return errors.NoData(fmt.Sprintf("no estimator archives for %s_%s", lens, dataset), err)
	case stderrors.Is(err, core.ErrNoData):
		return errors.NoData(fmt.Sprintf("no mock results for %s_%s", lens, dataset), err)
	case stderrors.Is(err, core.ErrNoGroups):
		return errors.NoData(fmt.Sprintf("no parameter groups for %s_%s", lens, dataset), err)
	}
	return errors.Wrapf(err, "covariance run for %s_%s failed", lens, dataset)
}
