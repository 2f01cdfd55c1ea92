package fx

import (
	"math"
	"sort"
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/numeric"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// BasisConvention holds the date-generation settings of a cross-currency
// basis swap: both floating legs share the calendar and frequency, each
// accrues on its own day count.
type BasisConvention struct {
	Calendar         schedule.Calendar
	Frequency        schedule.Frequency
	DomesticDayCount schedule.DayCount
	ForeignDayCount  schedule.DayCount
}

// DefaultBasisConvention is the quarterly ACT/360 market standard.
func DefaultBasisConvention(cal schedule.Calendar) BasisConvention {
	return BasisConvention{
		Calendar:         cal,
		Frequency:        schedule.Quarterly,
		DomesticDayCount: schedule.Act360,
		ForeignDayCount:  schedule.Act360,
	}
}

// SpreadQuote is a solved fair basis spread for one tenor.
type SpreadQuote struct {
	Tenor    string    `json:"tenor"`
	Maturity time.Time `json:"maturity"`
	Spread   float64   `json:"spread"`
}

// Market bundles the curves a cross-currency basis swap prices against:
// projection and discounting for the domestic flat leg, projection and
// (basis-adjusted) discounting for the foreign leg carrying the spread.
type Market struct {
	Domestic          curve.DiscountCurve
	ForeignProjection curve.DiscountCurve
	ForeignDiscount   curve.DiscountCurve
}

// Bootstrapper solves cross-currency basis swaps tenor by tenor, shortest
// first: either the fair spread given a foreign discount curve, or the
// foreign discount pillars given market spreads.
type Bootstrapper struct {
	conv BasisConvention
	log  *logger.Logger
}

func NewBootstrapper(conv BasisConvention) *Bootstrapper {
	return &Bootstrapper{conv: conv, log: logger.GetLogger("fx.xccy")}
}

// FairSpreads returns, per tenor, the spread on the foreign leg making the
// basis swap's NPV zero. Both legs exchange notionals at maturity; the
// domestic leg pays its curve's forwards flat.
func (b *Bootstrapper) FairSpreads(m Market, tenors []string) ([]SpreadQuote, error) {
	if m.Domestic == nil || m.ForeignProjection == nil || m.ForeignDiscount == nil {
		return nil, errors.InvalidArgument("fair-spread solve needs all three curves")
	}
	maturities, err := b.sortedMaturities(m.Domestic.Settlement(), tenors)
	if err != nil {
		return nil, err
	}

	quotes := make([]SpreadQuote, 0, len(maturities))
	for _, mt := range maturities {
		domPV, err := b.domesticLegPV(m.Domestic, mt.date)
		if err != nil {
			return nil, err
		}
		foreignPV := func(spread float64) (float64, error) {
			return b.foreignLegPV(m.ForeignProjection, m.ForeignDiscount, mt.date, spread)
		}

		spread, err := numeric.NewtonSolve(func(s float64) float64 {
			pv, perr := foreignPV(s)
			if perr != nil {
				return math.NaN()
			}
			return pv - domPV
		}, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "solving fair spread for %s", mt.label)
		}

		b.log.Debugf("Fair basis spread %s: %.4f bp", mt.label, spread*1e4)
		quotes = append(quotes, SpreadQuote{Tenor: mt.label, Maturity: mt.date, Spread: spread})
	}
	return quotes, nil
}

// BootstrapDiscountCurve inverts FairSpreads: given quoted basis spreads it
// solves, shortest tenor first, the foreign discount pillar that makes each
// swap fair, interpolating earlier pillars log-linearly during later solves.
func (b *Bootstrapper) BootstrapDiscountCurve(m Market, spreads map[string]float64) (*curve.PillarCurve, error) {
	if m.Domestic == nil || m.ForeignProjection == nil {
		return nil, errors.InvalidArgument("basis curve bootstrap needs domestic and foreign projection curves")
	}
	if len(spreads) == 0 {
		return nil, errors.InvalidArgument("basis curve bootstrap needs at least one spread quote")
	}

	settlement := m.Domestic.Settlement()
	labels := make([]string, 0, len(spreads))
	for label := range spreads {
		labels = append(labels, label)
	}
	maturities, err := b.sortedMaturities(settlement, labels)
	if err != nil {
		return nil, err
	}

	solved := map[time.Time]float64{}
	guess := 1.0
	for _, mt := range maturities {
		domPV, err := b.domesticLegPV(m.Domestic, mt.date)
		if err != nil {
			return nil, err
		}
		spread := spreads[mt.label]

		objective := func(x float64) float64 {
			if x < 1e-9 {
				x = 1e-9
			}
			candidate := map[time.Time]float64{mt.date: x}
			for d, df := range solved {
				candidate[d] = df
			}
			disc, cerr := curve.NewPillarCurve(settlement, candidate)
			if cerr != nil {
				return math.NaN()
			}
			pv, perr := b.foreignLegPV(m.ForeignProjection, disc, mt.date, spread)
			if perr != nil {
				return math.NaN()
			}
			return pv - domPV
		}

		df, err := numeric.NewtonSolve(objective, guess)
		if err != nil {
			return nil, errors.Wrapf(err, "bootstrapping basis pillar %s", mt.label)
		}
		if df < 1e-9 {
			df = 1e-9
		}
		solved[mt.date] = df
		guess = df
	}
	return curve.NewPillarCurve(settlement, solved)
}

// domesticLegPV values the flat floating leg plus final notional, per unit
// notional, projected and discounted on the same curve.
func (b *Bootstrapper) domesticLegPV(c curve.DiscountCurve, maturity time.Time) (float64, error) {
	return b.floatLegPV(c, c, maturity, b.conv.DomesticDayCount, 0)
}

func (b *Bootstrapper) foreignLegPV(projection, discount curve.DiscountCurve, maturity time.Time, spread float64) (float64, error) {
	return b.floatLegPV(projection, discount, maturity, b.conv.ForeignDayCount, spread)
}

func (b *Bootstrapper) floatLegPV(projection, discount curve.DiscountCurve, maturity time.Time, dc schedule.DayCount, spread float64) (float64, error) {
	leg := schedule.LegConvention{
		Frequency: b.conv.Frequency,
		DayCount:  dc,
		Calendar:  b.conv.Calendar,
	}
	periods, err := schedule.Generate(projection.Settlement(), maturity, leg)
	if err != nil {
		return 0, err
	}

	pv := 0.0
	for _, p := range periods {
		fwd, ferr := curve.SimpleForward(projection, p.StartDate, p.EndDate, dc)
		if ferr != nil {
			return 0, ferr
		}
		pv += (fwd + spread) * p.Accrual * discount.DF(p.PayDate)
	}
	pv += discount.DF(periods[len(periods)-1].PayDate)
	return pv, nil
}

type tenorDate struct {
	label string
	date  time.Time
}

func (b *Bootstrapper) sortedMaturities(settlement time.Time, labels []string) ([]tenorDate, error) {
	if len(labels) == 0 {
		return nil, errors.InvalidArgument("no tenors given")
	}
	out := make([]tenorDate, 0, len(labels))
	for _, label := range labels {
		tenor, err := schedule.ParseTenor(label)
		if err != nil {
			return nil, err
		}
		out = append(out, tenorDate{label: label, date: schedule.Adjust(b.conv.Calendar, tenor.AddTo(settlement))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date) })
	return out, nil
}
