package filestore

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"tdcov/internal"
	"tdcov/ports"
)

// ResultWriter writes the covariance table, the median ratio and the run
// manifest into the lens/dataset output directory
type ResultWriter struct {
	layout Layout
	logger *internal.Logger
}

// NewResultWriter creates a result writer
func NewResultWriter(layout Layout, logger *internal.Logger) *ResultWriter {
	return &ResultWriter{layout: layout, logger: logger}
}

// OutputDir implements ports.OutputLocator
func (w *ResultWriter) OutputDir(lens, dataset string) string {
	return w.layout.OutputDir(lens, dataset)
}

func (w *ResultWriter) WriteResults(ctx context.Context, results ports.CovarianceResults) error {
	dir := w.layout.OutputDir(results.Lens, results.Dataset)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	if err := WriteCSV(filepath.Join(dir, CovarianceFile), EncodeCovariance(results.Covariance)); err != nil {
		return err
	}
	if err := writeRatio(filepath.Join(dir, RatioFile), results.MedianRatio); err != nil {
		return err
	}
	if results.Manifest != nil {
		data, err := json.MarshalIndent(results.Manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode run manifest: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
			return fmt.Errorf("failed to write run manifest: %w", err)
		}
	}

	w.logger.Info("Results saved to %s", dir)
	return nil
}

// writeRatio writes a single value in the %.18e layout of numpy.savetxt
func writeRatio(path string, ratio float64) error {
	line := fmt.Sprintf("%.18e\n", ratio)
	if math.IsNaN(ratio) {
		line = "nan\n"
	}
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes records to path, creating parent directories
func WriteCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
