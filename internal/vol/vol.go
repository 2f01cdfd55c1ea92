// Package vol provides swaption volatility inputs: a flat quote, an
// expiry-by-tenor surface, and a cube adding a strike-offset dimension on
// top of the surface.
package vol

import (
	"sort"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Structure resolves a volatility for an option expiry (years), underlying
// swap tenor (years) and strike offset from ATM (decimal rate difference;
// zero for ATM).
type Structure interface {
	Vol(expiry, tenor, strikeOffset float64) (float64, error)
}

// Flat is a single volatility for every lookup.
type Flat struct {
	Sigma float64
}

// NewFlat validates and wraps a flat volatility quote.
func NewFlat(sigma float64) (Flat, error) {
	if sigma <= 0 {
		return Flat{}, errors.InvalidArgumentf("non-positive volatility %g", sigma)
	}
	return Flat{Sigma: sigma}, nil
}

func (f Flat) Vol(expiry, tenor, strikeOffset float64) (float64, error) {
	return f.Sigma, nil
}

// interp1 linearly interpolates y(x) on sorted xs, clamping outside the grid.
func interp1(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs, x)
	if xs[i] == x {
		return ys[i]
	}
	w := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1]*(1-w) + ys[i]*w
}
