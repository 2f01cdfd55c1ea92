package vol

import (
	"sort"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Cube layers strike-offset slices over ATM surfaces: each slice is a full
// expiry-by-tenor surface at a fixed strike distance from ATM. Lookups
// interpolate linearly across the offset dimension; offsets outside the
// quoted range clamp to the nearest slice rather than failing the lookup.
type Cube struct {
	offsets  []float64
	surfaces []*Surface
}

// NewCube builds a cube from strike offsets (decimal rate differences, e.g.
// -0.01, 0, +0.01) and one surface per offset. An offset of zero (the ATM
// slice) must be present.
func NewCube(offsets []float64, surfaces []*Surface) (*Cube, error) {
	if len(offsets) == 0 || len(offsets) != len(surfaces) {
		return nil, errors.InvalidArgument("cube needs one surface per strike offset")
	}

	order := make([]int, len(offsets))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return offsets[order[i]] < offsets[order[j]] })

	c := &Cube{
		offsets:  make([]float64, len(offsets)),
		surfaces: make([]*Surface, len(surfaces)),
	}
	hasATM := false
	for i, k := range order {
		if surfaces[k] == nil {
			return nil, errors.InvalidArgument("cube slice surface is nil")
		}
		c.offsets[i] = offsets[k]
		c.surfaces[i] = surfaces[k]
		if offsets[k] == 0 {
			hasATM = true
		}
	}
	if !hasATM {
		return nil, errors.InvalidArgument("cube needs an ATM (zero offset) slice")
	}
	return c, nil
}

func (c *Cube) Vol(expiry, tenor, strikeOffset float64) (float64, error) {
	n := len(c.offsets)

	// Clamp outside the quoted offset range.
	if strikeOffset <= c.offsets[0] {
		return c.surfaces[0].Vol(expiry, tenor, 0)
	}
	if strikeOffset >= c.offsets[n-1] {
		return c.surfaces[n-1].Vol(expiry, tenor, 0)
	}

	i := sort.SearchFloat64s(c.offsets, strikeOffset)
	if c.offsets[i] == strikeOffset {
		return c.surfaces[i].Vol(expiry, tenor, 0)
	}

	lo, err := c.surfaces[i-1].Vol(expiry, tenor, 0)
	if err != nil {
		return 0, err
	}
	hi, err := c.surfaces[i].Vol(expiry, tenor, 0)
	if err != nil {
		return 0, err
	}
	w := (strikeOffset - c.offsets[i-1]) / (c.offsets[i] - c.offsets[i-1])
	return lo*(1-w) + hi*w, nil
}
