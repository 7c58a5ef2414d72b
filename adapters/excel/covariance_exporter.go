package excel

import (
	"context"
	"math"
	"path/filepath"
	"strconv"

	"tdcov/domain/delay"
	"tdcov/internal"
	"tdcov/ports"
)

// CovarianceExporter writes the covariance matrix, the per-pair summary and
// the run metadata to a workbook
type CovarianceExporter struct {
	config  ExcelConfig
	locator ports.OutputLocator
	logger  *internal.Logger
}

// NewCovarianceExporter creates an exporter writing into the locator's output directory
func NewCovarianceExporter(config ExcelConfig, locator ports.OutputLocator, logger *internal.Logger) *CovarianceExporter {
	return &CovarianceExporter{config: config, locator: locator, logger: logger}
}

// Path returns the workbook path for a lens/dataset
func (e *CovarianceExporter) Path(lens, dataset string) string {
	return filepath.Join(e.locator.OutputDir(lens, dataset), e.config.FileName)
}

func (e *CovarianceExporter) WriteResults(ctx context.Context, results ports.CovarianceResults) error {
	sheets := []Sheet{{Name: CovarianceSheet, Data: covarianceTable(results.Covariance)}}
	if m := results.Manifest; m != nil {
		pairs := &TableData{Headers: []string{"pair", "desired_std", "clip_sigma", "clip_outcome", "excluded", "total", "systematic", "std", "ratio"}}
		for _, p := range m.Pairs {
			pairs.Rows = append(pairs.Rows, []string{
				string(p.Pair),
				formatFloat(float64(p.DesiredStd)),
				formatFloat(float64(p.ClipSigma)),
				p.ClipOutcome,
				strconv.Itoa(p.Excluded),
				strconv.Itoa(p.Total),
				formatFloat(float64(p.Systematic)),
				formatFloat(float64(p.Std)),
				formatFloat(float64(p.Ratio)),
			})
		}
		sheets = append(sheets, Sheet{Name: PairsSheet, Data: pairs})

		run := &TableData{
			Headers: []string{"key", "value"},
			Rows: [][]string{
				{"run_id", string(m.RunID)},
				{"lens", m.Lens},
				{"dataset", m.Dataset},
				{"code_version", m.CodeVersion},
				{"input_hash", string(m.InputHash)},
				{"rows", strconv.Itoa(m.Rows)},
				{"median_ratio", formatFloat(results.MedianRatio)},
				{"created_at", m.CreatedAt.String()},
			},
		}
		sheets = append(sheets, Sheet{Name: RunSheet, Data: run})
	}

	path := e.Path(results.Lens, results.Dataset)
	if err := WriteWorkbook(path, sheets...); err != nil {
		return err
	}
	e.logger.Info("Covariance workbook written to %s", path)
	return nil
}

func covarianceTable(cov *delay.CovarianceMatrix) *TableData {
	n := len(cov.Labels)
	data := &TableData{Headers: make([]string, 0, n+1)}
	data.Headers = append(data.Headers, "")
	for _, l := range cov.Labels {
		data.Headers = append(data.Headers, string(l))
	}
	for i, l := range cov.Labels {
		row := make([]string, 0, n+1)
		row = append(row, string(l))
		for j := 0; j < n; j++ {
			row = append(row, formatFloat(cov.Matrix.At(i, j)))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
