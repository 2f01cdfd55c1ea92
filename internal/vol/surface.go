package vol

import (
	"sort"

	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Surface is an ATM volatility grid over option expiry and swap tenor,
// bilinearly interpolated with flat extrapolation at the edges.
type Surface struct {
	expiries []float64
	tenors   []float64
	// vols[i][j] is the vol at expiries[i], tenors[j].
	vols [][]float64
}

// NewSurface builds a surface from sorted-or-unsorted axes and a vols matrix
// indexed [expiry][tenor]. All vols must be positive.
func NewSurface(expiries, tenors []float64, vols [][]float64) (*Surface, error) {
	if len(expiries) == 0 || len(tenors) == 0 {
		return nil, errors.InvalidArgument("surface needs at least one expiry and one tenor")
	}
	if len(vols) != len(expiries) {
		return nil, errors.InvalidArgumentf("vols has %d rows, want %d", len(vols), len(expiries))
	}

	type row struct {
		x    float64
		vals []float64
	}
	rows := make([]row, len(expiries))
	for i, e := range expiries {
		if len(vols[i]) != len(tenors) {
			return nil, errors.InvalidArgumentf("vols row %d has %d columns, want %d", i, len(vols[i]), len(tenors))
		}
		rows[i] = row{x: e, vals: append([]float64{}, vols[i]...)}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].x < rows[j].x })

	// Sort the tenor axis and reorder every row consistently.
	order := make([]int, len(tenors))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return tenors[order[i]] < tenors[order[j]] })

	s := &Surface{
		expiries: make([]float64, len(rows)),
		tenors:   make([]float64, len(tenors)),
		vols:     make([][]float64, len(rows)),
	}
	for j, k := range order {
		s.tenors[j] = tenors[k]
	}
	for i, r := range rows {
		s.expiries[i] = r.x
		s.vols[i] = make([]float64, len(tenors))
		for j, k := range order {
			v := r.vals[k]
			if v <= 0 {
				return nil, errors.InvalidArgumentf("non-positive vol %g at expiry %g tenor %g", v, r.x, tenors[k])
			}
			s.vols[i][j] = v
		}
	}
	return s, nil
}

func (s *Surface) Vol(expiry, tenor, strikeOffset float64) (float64, error) {
	// Interpolate along the tenor axis at each bracketing expiry, then
	// along the expiry axis. Edges are clamped.
	byExpiry := make([]float64, len(s.expiries))
	for i := range s.expiries {
		byExpiry[i] = interp1(s.tenors, s.vols[i], tenor)
	}
	return interp1(s.expiries, byExpiry, expiry), nil
}
