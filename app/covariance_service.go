package app

import (
	"context"
	"fmt"
	"time"

	"tdcov/domain/core"
	"tdcov/domain/run"
	"tdcov/internal"
	"tdcov/internal/config"
	"tdcov/ports"
)

// CovarianceReport is everything a covariance run produced, for display
type CovarianceReport struct {
	Selection    *Selection
	Aggregate    *AggregateReport
	Calibrations []Calibration
	Result       *CovarianceResult
	Manifest     *run.Manifest
}

// CovarianceService runs the covariance pipeline for one lens/dataset
type CovarianceService struct {
	selector   *GroupSelector
	aggregator *MockAggregator
	calibrator *ErrorCalibrator
	builder    *CovarianceBuilder
	writer     ports.ResultWriter
	cfg        config.Config
	logger     *internal.Logger
}

// NewCovarianceService wires the pipeline stages over the given ports
func NewCovarianceService(
	groups ports.GroupStore,
	catalog ports.ArchiveCatalog,
	writer ports.ResultWriter,
	cfg config.Config,
	logger *internal.Logger,
) *CovarianceService {
	return &CovarianceService{
		selector:   NewGroupSelector(groups, cfg.Selection, logger),
		aggregator: NewMockAggregator(catalog, logger),
		calibrator: NewErrorCalibrator(cfg.Calibration, logger),
		builder:    NewCovarianceBuilder(logger),
		writer:     writer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run estimates the covariance of the pairwise delay errors and persists it
func (s *CovarianceService) Run(ctx context.Context, lens, dataset string) (*CovarianceReport, error) {
	start := time.Now()
	runID := core.NewRunID()
	s.logger.Info("Starting covariance run %s for %s_%s", runID, lens, dataset)

	archives, err := s.aggregator.ListArchives(ctx, lens, dataset)
	if err != nil {
		return nil, err
	}

	selection, err := s.selector.Select(ctx, lens, dataset)
	if err != nil {
		return nil, fmt.Errorf("group selection failed: %w", err)
	}
	s.logger.Info("Pairs %v over images %v, %d accepted fits", selection.PairLabels, selection.EntityLabels, len(selection.Accepted))

	results, aggregate, err := s.aggregator.Aggregate(ctx, archives, selection.Accepted, selection.EntityLabels)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stacked %d mock realizations from %d archives", results.Rows(), len(aggregate.Used))

	calibrations, err := s.calibrator.CalibrateAll(ctx, results, selection.PairLabels)
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}

	result, err := s.builder.Build(calibrations)
	if err != nil {
		return nil, fmt.Errorf("covariance assembly failed: %w", err)
	}

	manifest := run.NewManifest(runID, lens, dataset, aggregate.Used, s.settings())
	manifest.UsedGroupFallback = selection.UsedFallback
	manifest.AcceptedFits = selection.Accepted
	manifest.SkippedGroups = selection.Skipped
	manifest.SkippedArchives = aggregate.Skipped
	manifest.Rows = results.Rows()
	manifest.MedianRatio = run.Float(result.MedianRatio)
	for i, c := range calibrations {
		manifest.Pairs = append(manifest.Pairs, run.PairSummary{
			Pair:        c.Pair,
			DesiredStd:  run.Float(c.DesiredStd),
			ClipSigma:   run.Float(c.Clip.Sigma),
			ClipOutcome: c.Clip.Outcome.String(),
			Excluded:    c.Excluded(),
			Total:       c.Total,
			Systematic:  run.Float(result.Systematics[i]),
			Std:         run.Float(result.Stds[i]),
			Ratio:       run.Float(result.Ratios[i]),
		})
	}
	if fallbacks := manifest.FallbackPairs(); len(fallbacks) > 0 {
		s.logger.Warn("Pairs using the default clip sigma: %v", fallbacks)
	}
	manifest.DurationMs = time.Since(start).Milliseconds()

	err = s.writer.WriteResults(ctx, ports.CovarianceResults{
		Lens:        lens,
		Dataset:     dataset,
		Covariance:  result.Covariance,
		MedianRatio: result.MedianRatio,
		Manifest:    manifest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}
	s.logger.Info("Covariance run %s finished in %dms", runID, manifest.DurationMs)

	return &CovarianceReport{
		Selection:    selection,
		Aggregate:    aggregate,
		Calibrations: calibrations,
		Result:       result,
		Manifest:     manifest,
	}, nil
}

func (s *CovarianceService) settings() map[string]interface{} {
	cal := s.cfg.Calibration
	return map[string]interface{}{
		"sigma_lower":        cal.SigmaLower,
		"sigma_upper":        cal.SigmaUpper,
		"tolerance":          cal.Tolerance,
		"max_iterations":     cal.MaxIterations,
		"default_clip_sigma": cal.DefaultClipSigma,
		"percentile_low":     cal.PercentileLow,
		"percentile_high":    cal.PercentileHigh,
		"estimator_glob":     s.cfg.Paths.EstimatorGlob,
		"mock_run_glob":      s.cfg.Paths.MockRunGlob,
	}
}
