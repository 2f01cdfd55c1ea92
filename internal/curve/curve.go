package curve

import (
	"math"
	"sort"
	"time"

	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// Curve time axis follows market convention: ACT/365F regardless of the
// currency's coupon day counts.
const timeAxisDayCount = schedule.Act365F

// DiscountCurve provides discount factors and zero rates for valuation.
// Rates are decimals, continuously compounded on the ACT/365F time axis.
type DiscountCurve interface {
	Settlement() time.Time
	DF(t time.Time) float64
	ZeroRate(t time.Time) float64
}

// FlatCurve is a constant continuously-compounded zero curve.
type FlatCurve struct {
	settlement time.Time
	rate       float64
}

// NewFlatCurve builds a flat curve at the given zero rate.
func NewFlatCurve(settlement time.Time, rate float64) *FlatCurve {
	return &FlatCurve{settlement: settlement, rate: rate}
}

func (c *FlatCurve) Settlement() time.Time { return c.settlement }

func (c *FlatCurve) DF(t time.Time) float64 {
	tau := schedule.YearFraction(c.settlement, t, timeAxisDayCount)
	if tau <= 0 {
		return 1.0
	}
	return math.Exp(-c.rate * tau)
}

func (c *FlatCurve) ZeroRate(t time.Time) float64 { return c.rate }

// PillarCurve is a discount curve defined by pillar dates and discount
// factors, log-linearly interpolated between pillars and flat-forward
// extrapolated beyond the last pillar.
type PillarCurve struct {
	settlement time.Time
	dates      []time.Time
	dfs        []float64
}

// NewPillarCurve builds a curve from explicit pillar discount factors. The
// settlement pillar (DF = 1) is added if missing. Pillars are sorted; DFs
// must be positive.
func NewPillarCurve(settlement time.Time, pillars map[time.Time]float64) (*PillarCurve, error) {
	if len(pillars) == 0 {
		return nil, errors.InvalidArgument("pillar curve needs at least one pillar")
	}
	dates := make([]time.Time, 0, len(pillars)+1)
	for d, df := range pillars {
		if df <= 0 {
			return nil, errors.InvalidArgumentf("non-positive discount factor %g at %s", df, d.Format("2006-01-02"))
		}
		dates = append(dates, d)
	}
	if _, ok := pillars[settlement]; !ok {
		dates = append(dates, settlement)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	dfs := make([]float64, len(dates))
	for i, d := range dates {
		if d.Equal(settlement) {
			if df, ok := pillars[settlement]; ok {
				dfs[i] = df
			} else {
				dfs[i] = 1.0
			}
			continue
		}
		dfs[i] = pillars[d]
	}
	return &PillarCurve{settlement: settlement, dates: dates, dfs: dfs}, nil
}

func (c *PillarCurve) Settlement() time.Time { return c.settlement }

func (c *PillarCurve) DF(t time.Time) float64 {
	return interpDF(c.settlement, c.dates, c.dfs, t)
}

func (c *PillarCurve) ZeroRate(t time.Time) float64 {
	tau := schedule.YearFraction(c.settlement, t, timeAxisDayCount)
	if tau <= 0 {
		return 0
	}
	return -math.Log(c.DF(t)) / tau
}

// Pillars returns the curve's pillar dates and discount factors in order.
func (c *PillarCurve) Pillars() ([]time.Time, []float64) {
	dates := make([]time.Time, len(c.dates))
	dfs := make([]float64, len(c.dfs))
	copy(dates, c.dates)
	copy(dfs, c.dfs)
	return dates, dfs
}

// SimpleForward returns the simple forward rate over [t1, t2] implied by the
// curve, accrued on dc.
func SimpleForward(c DiscountCurve, t1, t2 time.Time, dc schedule.DayCount) (float64, error) {
	if !t2.After(t1) {
		return 0, errors.InvalidArgument("forward period end must be after start")
	}
	tau := schedule.YearFraction(t1, t2, dc)
	return (c.DF(t1)/c.DF(t2) - 1.0) / tau, nil
}

// interpDF log-linearly interpolates a discount factor on sorted pillars.
// Before the first pillar it interpolates from the settlement (DF = 1);
// beyond the last it extrapolates at the final segment's forward rate.
func interpDF(settlement time.Time, dates []time.Time, dfs []float64, t time.Time) float64 {
	n := len(dates)
	if n == 0 {
		return 1.0
	}
	if !t.After(dates[0]) {
		if t.Equal(dates[0]) {
			return dfs[0]
		}
		// Before the first pillar: flat forward from settlement.
		if n == 1 {
			return dfs[0]
		}
	}

	i := sort.Search(n, func(i int) bool { return !dates[i].Before(t) })
	if i < n && dates[i].Equal(t) {
		return dfs[i]
	}

	var lo, hi int
	switch {
	case i <= 0:
		lo, hi = 0, 1
	case i >= n:
		lo, hi = n-2, n-1
	default:
		lo, hi = i-1, i
	}

	t1 := schedule.YearFraction(settlement, dates[lo], timeAxisDayCount)
	t2 := schedule.YearFraction(settlement, dates[hi], timeAxisDayCount)
	tt := schedule.YearFraction(settlement, t, timeAxisDayCount)
	if t2 == t1 {
		return dfs[lo]
	}
	fwd := math.Log(dfs[lo]/dfs[hi]) / (t2 - t1)
	return dfs[lo] * math.Exp(-fwd*(tt-t1))
}
