package numeric

import (
	"math"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

const (
	defaultTolerance = 1e-12
	defaultMaxIter   = 100
)

// NewtonSolve finds a root of f near guess using Newton-Raphson with a
// numerically differentiated slope, damped steps, and NaN/Inf guards. It is
// the workhorse behind the curve bootstrap, the cross-currency fair-spread
// solve, and implied volatility.
func NewtonSolve(f func(float64) float64, guess float64) (float64, error) {
	x := guess
	for iter := 0; iter < defaultMaxIter; iter++ {
		fx := f(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			return 0, errors.Domain("objective returned NaN/Inf")
		}
		if math.Abs(fx) < defaultTolerance {
			return x, nil
		}

		h := 1e-7 * math.Max(1.0, math.Abs(x))
		slope := (f(x+h) - f(x-h)) / (2 * h)
		if math.Abs(slope) < 1e-15 {
			break
		}

		step := fx / slope
		// Damping keeps the iterate from overshooting into a bad region.
		limit := 0.5 * math.Max(1.0, math.Abs(x))
		if math.Abs(step) > limit {
			step = math.Copysign(limit, step)
		}
		x -= step
	}
	return 0, errors.NoConvergence("newton solve", defaultMaxIter)
}

// Bisect finds a root of f on [lo, hi]; f(lo) and f(hi) must differ in sign.
// Used as a fallback where Newton has no reliable slope.
func Bisect(f func(float64) float64, lo, hi float64) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if flo*fhi > 0 {
		return 0, errors.InvalidArgument("bisect: interval does not bracket a root")
	}
	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if math.Abs(fmid) < defaultTolerance || hi-lo < defaultTolerance {
			return mid, nil
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, errors.NoConvergence("bisection", 200)
}
