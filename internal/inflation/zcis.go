package inflation

import (
	"math"
	"sort"
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

// IndexCurve holds monthly inflation index values (published fixings plus
// projections), keyed by the first day of the reference month.
type IndexCurve struct {
	months []time.Time
	values []float64
}

// NewIndexCurve builds an index curve from month -> index level observations.
// Keys are normalized to the first of the month.
func NewIndexCurve(observations map[time.Time]float64) (*IndexCurve, error) {
	if len(observations) == 0 {
		return nil, errors.InvalidArgument("index curve needs at least one observation")
	}
	byMonth := make(map[time.Time]float64, len(observations))
	for d, v := range observations {
		if v <= 0 {
			return nil, errors.InvalidArgumentf("non-positive index level %g at %s", v, d.Format("2006-01"))
		}
		byMonth[monthStart(d)] = v
	}

	ic := &IndexCurve{
		months: make([]time.Time, 0, len(byMonth)),
		values: make([]float64, 0, len(byMonth)),
	}
	for m := range byMonth {
		ic.months = append(ic.months, m)
	}
	sort.Slice(ic.months, func(i, j int) bool { return ic.months[i].Before(ic.months[j]) })
	for _, m := range ic.months {
		ic.values = append(ic.values, byMonth[m])
	}
	return ic, nil
}

// Value returns the index level referenced by date d. Monthly indexation
// takes the level of d's month; interpolated indexation blends d's month and
// the next one by the day fraction through the month.
func (ic *IndexCurve) Value(d time.Time, interpolated bool) (float64, error) {
	m := monthStart(d)
	cur, err := ic.monthValue(m)
	if err != nil {
		return 0, err
	}
	if !interpolated {
		return cur, nil
	}

	next, err := ic.monthValue(m.AddDate(0, 1, 0))
	if err != nil {
		return 0, err
	}
	daysIn := float64(m.AddDate(0, 1, 0).Sub(m).Hours() / 24)
	w := float64(d.Day()-1) / daysIn
	return cur*(1-w) + next*w, nil
}

func (ic *IndexCurve) monthValue(m time.Time) (float64, error) {
	i := sort.Search(len(ic.months), func(i int) bool { return !ic.months[i].Before(m) })
	if i >= len(ic.months) || !ic.months[i].Equal(m) {
		return 0, errors.NotFound("no index level for " + m.Format("2006-01"))
	}
	return ic.values[i], nil
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Convention encodes zero-coupon inflation swap market conventions as data:
// the indexation lag, monthly vs interpolated index reference, and the
// payment calendar.
type Convention struct {
	LagMonths    int
	Interpolated bool
	Calendar     schedule.Calendar
}

// Swap is a zero-coupon inflation swap: at maturity the fixed leg pays
// N*((1+K)^T - 1) against the inflation leg's N*(I(T-lag)/I(base) - 1).
type Swap struct {
	Notional  float64
	FixedRate float64
	Start     time.Time
	Tenor     schedule.Tenor
}

// Result reports the swap decomposition: the referenced index levels, the
// fair (breakeven) rate and the NPV to the inflation receiver.
type Result struct {
	BaseIndex  float64 `json:"baseIndex"`
	FinalIndex float64 `json:"finalIndex"`
	FairRate   float64 `json:"fairRate"`
	NPV        float64 `json:"npv"`
}

// Price values a ZCIS against the nominal discount curve and the projected
// index path. The fair rate is the annually-compounded K making both legs
// equal: K = (I(T-lag)/I(base))^(1/T) - 1.
func Price(c curve.DiscountCurve, index *IndexCurve, conv Convention, swap Swap) (*Result, error) {
	if swap.Notional <= 0 {
		return nil, errors.InvalidArgument("swap notional must be positive")
	}
	years := swap.Tenor.Years()
	if years <= 0 {
		return nil, errors.InvalidArgument("swap tenor must be positive")
	}
	if conv.LagMonths < 0 {
		return nil, errors.InvalidArgumentf("indexation lag must be non-negative, got %d", conv.LagMonths)
	}

	maturity := schedule.Adjust(conv.Calendar, swap.Tenor.AddTo(swap.Start))

	base, err := index.Value(schedule.AddMonths(swap.Start, -conv.LagMonths), conv.Interpolated)
	if err != nil {
		return nil, errors.Wrap(err, "base index lookup")
	}
	final, err := index.Value(schedule.AddMonths(maturity, -conv.LagMonths), conv.Interpolated)
	if err != nil {
		return nil, errors.Wrap(err, "final index lookup")
	}

	ratio := final / base
	fair := math.Pow(ratio, 1/years) - 1

	inflationLeg := ratio - 1
	fixedLeg := math.Pow(1+swap.FixedRate, years) - 1
	npv := swap.Notional * c.DF(maturity) * (inflationLeg - fixedLeg)

	return &Result{BaseIndex: base, FinalIndex: final, FairRate: fair, NPV: npv}, nil
}
