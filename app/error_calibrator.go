package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"tdcov/domain/delay"
	"tdcov/internal"
	"tdcov/internal/config"
	"tdcov/internal/numeric"

	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"
)

// ClipOutcome says how a clip sigma was obtained
type ClipOutcome int

const (
	ClipCalibrated ClipOutcome = iota
	// ClipNoRoot means the objective kept its sign across the search bounds
	ClipNoRoot
	// ClipNumericalFailure covers NaN spreads and non-convergence
	ClipNumericalFailure
)

func (o ClipOutcome) String() string {
	switch o {
	case ClipCalibrated:
		return "calibrated"
	case ClipNoRoot:
		return "no_root"
	case ClipNumericalFailure:
		return "numerical_failure"
	default:
		return fmt.Sprintf("ClipOutcome(%d)", int(o))
	}
}

// ClipSigma is a calibrated clipping threshold in units of the standard deviation
type ClipSigma struct {
	Sigma   float64
	Outcome ClipOutcome
}

// Fallback reports whether Sigma is the configured default
func (c ClipSigma) Fallback() bool {
	return c.Outcome != ClipCalibrated
}

// Calibration is the clipped error series of one pair
type Calibration struct {
	Pair       delay.PairLabel
	DesiredStd float64
	Clip       ClipSigma
	Lower      float64
	Upper      float64
	Series     delay.ErrorSeries
	Total      int
}

// Excluded returns the number of clipped realizations
func (c Calibration) Excluded() int {
	return c.Series.Excluded()
}

// ErrorCalibrator finds, per pair, the sigma-clipping threshold whose
// clipped standard deviation matches the 16-84 percentile spread
type ErrorCalibrator struct {
	settings config.CalibrationConfig
	logger   *internal.Logger
}

// NewErrorCalibrator creates an error calibrator
func NewErrorCalibrator(settings config.CalibrationConfig, logger *internal.Logger) *ErrorCalibrator {
	return &ErrorCalibrator{settings: settings, logger: logger}
}

// DesiredStd returns half the width of the configured percentile interval
func (c *ErrorCalibrator) DesiredStd(errs []float64) float64 {
	std, err := numeric.RobustStd(errs, c.settings.PercentileLow, c.settings.PercentileHigh)
	if err != nil {
		return math.NaN()
	}
	return std
}

// FindClipSigma searches the configured bounds for the clip sigma at which
// the clipped population standard deviation equals desired. It never fails:
// unresolvable searches return the default sigma with the reason attached.
func (c *ErrorCalibrator) FindClipSigma(pair delay.PairLabel, errs []float64, desired float64) ClipSigma {
	fallback := func(outcome ClipOutcome) ClipSigma {
		return ClipSigma{Sigma: c.settings.DefaultClipSigma, Outcome: outcome}
	}
	if math.IsNaN(desired) || math.IsInf(desired, 0) {
		c.logger.Error("%s: 16-84 spread is not finite, using clip sigma %.2f", pair, c.settings.DefaultClipSigma)
		return fallback(ClipNumericalFailure)
	}

	objective := func(sigma float64) float64 {
		clipped := numeric.SigmaClip(errs, sigma, sigma)
		if len(clipped.Kept) == 0 {
			return desired
		}
		std := stat.PopStdDev(clipped.Kept, nil)
		c.logger.Trace("%s: clip sigma %.4f gives std %.6g", pair, sigma, std)
		return std - desired
	}

	lo, hi := c.settings.SigmaLower, c.settings.SigmaUpper
	objLo, objHi := objective(lo), objective(hi)
	if objLo*objHi > 0 {
		c.logger.Warn("%s: no root for sigma clipping within [%.2f, %.2f] (objective %.4g at lower, %.4g at upper), using %.2f",
			pair, lo, hi, objLo, objHi, c.settings.DefaultClipSigma)
		return fallback(ClipNoRoot)
	}

	sigma, err := numeric.Brent(objective, lo, hi, numeric.BrentSettings{
		XTol:          c.settings.Tolerance,
		MaxIterations: c.settings.MaxIterations,
	})
	if err != nil {
		c.logger.Error("%s: error finding optimal clip sigma: %v, using %.2f", pair, err, c.settings.DefaultClipSigma)
		if errors.Is(err, numeric.ErrNotBracketed) {
			return fallback(ClipNoRoot)
		}
		return fallback(ClipNumericalFailure)
	}
	return ClipSigma{Sigma: sigma, Outcome: ClipCalibrated}
}

// Calibrate computes the error series of one pair, resolves its clip sigma
// and masks the clipped realizations with NaN
func (c *ErrorCalibrator) Calibrate(results *delay.MockResultSet, pair delay.PairLabel) (Calibration, error) {
	errs, err := results.PairErrors(pair)
	if err != nil {
		return Calibration{}, err
	}

	desired := c.DesiredStd(errs)
	c.logger.Info("%s: desired 16-84 percentile interval width: %.2f", pair, 2*desired)

	clip := c.FindClipSigma(pair, errs, desired)
	c.logger.Info("%s: optimal clip sigma: %.2f (%s)", pair, clip.Sigma, clip.Outcome)

	bounds := numeric.SigmaClip(errs, clip.Sigma, clip.Sigma)
	masked, excluded := numeric.MaskOutside(errs, bounds.Lower, bounds.Upper)
	c.logger.Info("%s: excluding %d mocks out of %d (sigma=%.2f)", pair, excluded, len(errs), clip.Sigma)

	return Calibration{
		Pair:       pair,
		DesiredStd: desired,
		Clip:       clip,
		Lower:      bounds.Lower,
		Upper:      bounds.Upper,
		Series:     delay.ErrorSeries{Pair: pair, Values: masked},
		Total:      len(errs),
	}, nil
}

// CalibrateAll calibrates every pair on a bounded worker pool. Results are
// returned in the order of pairs.
func (c *ErrorCalibrator) CalibrateAll(ctx context.Context, results *delay.MockResultSet, pairs []delay.PairLabel) ([]Calibration, error) {
	workers := c.settings.Workers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	out := make([]Calibration, len(pairs))
	errs := make([]error, len(pairs))
	var wg sync.WaitGroup

	for i, pair := range pairs {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(index int, pair delay.PairLabel) {
			defer wg.Done()
			defer sem.Release(1)
			cal, err := c.Calibrate(results, pair)
			if err != nil {
				errs[index] = fmt.Errorf("pair %s: %w", pair, err)
				return
			}
			out[index] = cal
		}(i, pair)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
