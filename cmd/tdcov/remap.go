package main

import (
	"fmt"

	"tdcov/adapters/excel"
	"tdcov/adapters/filestore"
	"tdcov/app"
	"tdcov/domain/remap"
	"tdcov/internal/errors"

	"github.com/spf13/cobra"
)

func newRemapCmd(c *cli) *cobra.Command {
	var (
		delaysPath     string
		covariancePath string
		mapping        string
		outDir         string
		sheet          string
	)

	cmd := &cobra.Command{
		Use:   "remap",
		Short: "Relabel delay and covariance tables under an image renaming",
		Long: `Rename images in stored delay and covariance tables. The mapping must be a
bijection over one set of single-character image names. Pairs whose images
swap order change sign, and covariance entries follow the sign of both pairs.

Tables may be CSV or xlsx, chosen by file extension.

Example: tdcov remap --delays delays.csv --covariance covariance_matrix.csv --map A=B,B=A --out remapped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := remap.ParseRemapping(mapping)
			if err != nil {
				return errors.WithCode(errors.CodeInvalidInput, err)
			}

			tableConfig := excel.DefaultExcelConfig()
			tableConfig.SheetName = sheet
			service := app.NewRemapService(filestore.NewTableStore(tableConfig), c.logger)

			result, err := service.Run(cmd.Context(), app.RemapRequest{
				DelaysPath:     delaysPath,
				CovariancePath: covariancePath,
				Mapping:        r,
				OutDir:         outDir,
			})
			if err != nil {
				return errors.Wrap(err, "remap failed")
			}

			out := cmd.OutOrStdout()
			if result.DelaysPath != "" {
				fmt.Fprintf(out, "Remapped delays written to %s\n", result.DelaysPath)
			}
			if result.CovariancePath != "" {
				fmt.Fprintf(out, "Remapped covariance written to %s\n", result.CovariancePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&delaysPath, "delays", "", "Delay table to relabel (CSV or xlsx)")
	cmd.Flags().StringVar(&covariancePath, "covariance", "", "Covariance table to relabel (CSV or xlsx)")
	cmd.Flags().StringVar(&mapping, "map", "", "Image renaming, e.g. A=B,B=A")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read from xlsx inputs (default: first sheet)")
	_ = cmd.MarkFlagRequired("map")

	return cmd
}
