package numeric

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotBracketed is returned when f(a) and f(b) have the same sign
	ErrNotBracketed = errors.New("numeric: root not bracketed")
	// ErrNoConvergence is returned when the iteration limit is reached
	ErrNoConvergence = errors.New("numeric: root finder did not converge")
	// ErrNonFinite is returned when the objective yields NaN or Inf
	ErrNonFinite = errors.New("numeric: objective is not finite")
)

// defaultRelTol matches four machine epsilons, the customary floor for the
// relative x tolerance of Brent's method.
const defaultRelTol = 4 * 2.220446049250313e-16

// BrentSettings bounds the root search
type BrentSettings struct {
	XTol          float64
	RTol          float64
	MaxIterations int
}

// Brent finds a root of f in [a, b] using Brent's method (inverse quadratic
// interpolation and secant steps safeguarded by bisection). f(a) and f(b)
// must not have the same sign.
func Brent(f func(float64) float64, a, b float64, settings BrentSettings) (float64, error) {
	xtol := settings.XTol
	rtol := settings.RTol
	if rtol <= 0 {
		rtol = defaultRelTol
	}
	maxIter := settings.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}

	xpre, xcur := a, b
	fpre, fcur := f(xpre), f(xcur)
	if !isFinite(fpre) || !isFinite(fcur) {
		return math.NaN(), ErrNonFinite
	}
	if fpre*fcur > 0 {
		return math.NaN(), fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNotBracketed, a, fpre, b, fcur)
	}
	if fpre == 0 {
		return xpre, nil
	}
	if fcur == 0 {
		return xcur, nil
	}

	var xblk, fblk, spre, scur float64
	for i := 0; i < maxIter; i++ {
		if fpre != 0 && fcur != 0 && math.Signbit(fpre) != math.Signbit(fcur) {
			xblk = xpre
			fblk = fpre
			spre = xcur - xpre
			scur = spre
		}
		if math.Abs(fblk) < math.Abs(fcur) {
			xpre, xcur, xblk = xcur, xblk, xcur
			fpre, fcur, fblk = fcur, fblk, fcur
		}

		delta := (xtol + rtol*math.Abs(xcur)) / 2
		sbis := (xblk - xcur) / 2
		if fcur == 0 || math.Abs(sbis) < delta {
			return xcur, nil
		}

		if math.Abs(spre) > delta && math.Abs(fcur) < math.Abs(fpre) {
			var stry float64
			if xpre == xblk {
				// secant
				stry = -fcur * (xcur - xpre) / (fcur - fpre)
			} else {
				// inverse quadratic
				dpre := (fpre - fcur) / (xpre - xcur)
				dblk := (fblk - fcur) / (xblk - xcur)
				stry = -fcur * (fblk*dblk - fpre*dpre) / (dblk * dpre * (fblk - fpre))
			}
			if 2*math.Abs(stry) < math.Min(math.Abs(spre), 3*math.Abs(sbis)-delta) {
				spre = scur
				scur = stry
			} else {
				spre = sbis
				scur = sbis
			}
		} else {
			spre = sbis
			scur = sbis
		}

		xpre = xcur
		fpre = fcur
		if math.Abs(scur) > delta {
			xcur += scur
		} else if sbis > 0 {
			xcur += delta
		} else {
			xcur -= delta
		}

		fcur = f(xcur)
		if !isFinite(fcur) {
			return math.NaN(), ErrNonFinite
		}
	}
	return xcur, ErrNoConvergence
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
