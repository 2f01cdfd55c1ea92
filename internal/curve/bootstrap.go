package curve

import (
	"sort"
	"time"

	"github.com/marekkolman/rates-engine/internal/numeric"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// BootstrapConvention describes the fixed leg of the par swaps behind a set
// of curve quotes.
type BootstrapConvention struct {
	Calendar  schedule.Calendar
	Frequency schedule.Frequency
	DayCount  schedule.DayCount
}

// DefaultOISConvention is an annual ACT/360 fixed leg, the usual quoting
// convention for overnight-index swap curves.
func DefaultOISConvention(cal schedule.Calendar) BootstrapConvention {
	return BootstrapConvention{Calendar: cal, Frequency: schedule.Annual, DayCount: schedule.Act360}
}

// Bootstrap builds a discount curve from par swap quotes, tenor label to
// decimal rate (0.025 == 2.5%). Pillars are solved shortest first: each
// maturity's discount factor is found with Newton-Raphson on the par
// equation 1 = R·Σ τ_i·D(t_i) + D(T), interpolating intermediate coupon
// dates log-linearly between the previous pillar and the unknown.
func Bootstrap(settlement time.Time, quotes map[string]float64, conv BootstrapConvention) (*PillarCurve, error) {
	if len(quotes) == 0 {
		return nil, errors.InvalidArgument("bootstrap needs at least one quote")
	}
	log := logger.GetLogger("curve.bootstrap")

	type pillarQuote struct {
		label    string
		maturity time.Time
		years    float64
		rate     float64
	}

	parsed := make([]pillarQuote, 0, len(quotes))
	for label, rate := range quotes {
		tn, err := schedule.ParseTenor(label)
		if err != nil {
			return nil, err
		}
		maturity := schedule.Adjust(conv.Calendar, tn.AddTo(settlement))
		parsed = append(parsed, pillarQuote{label: label, maturity: maturity, years: tn.Years(), rate: rate})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].years < parsed[j].years })

	dates := []time.Time{settlement}
	dfs := []float64{1.0}

	leg := schedule.LegConvention{
		Frequency: conv.Frequency,
		DayCount:  conv.DayCount,
		Calendar:  conv.Calendar,
	}

	for _, q := range parsed {
		periods, err := schedule.Generate(settlement, q.maturity, leg)
		if err != nil {
			return nil, errors.Wrapf(err, "quote %s", q.label)
		}

		prevDF := dfs[len(dfs)-1]
		rate := q.rate
		maturity := q.maturity

		objective := func(x float64) float64 {
			if x <= 1e-9 {
				x = 1e-9
			}
			candDates := append(append([]time.Time{}, dates...), maturity)
			candDFs := append(append([]float64{}, dfs...), x)
			pvFixed := 0.0
			for _, p := range periods {
				d := interpDF(settlement, candDates, candDFs, p.PayDate)
				pvFixed += d * p.Accrual * rate
			}
			return pvFixed + x - 1.0
		}

		df, err := numeric.NewtonSolve(objective, prevDF)
		if err != nil {
			return nil, errors.Wrapf(err, "bootstrap pillar %s", q.label)
		}
		if df <= 0 {
			return nil, errors.Domain("bootstrap produced a non-positive discount factor")
		}

		dates = append(dates, maturity)
		dfs = append(dfs, df)
		log.Debugf("pillar %s: maturity=%s df=%.12f", q.label, maturity.Format("2006-01-02"), df)
	}

	pillars := make(map[time.Time]float64, len(dates))
	for i, d := range dates {
		pillars[d] = dfs[i]
	}
	return NewPillarCurve(settlement, pillars)
}

// ParRate returns the par swap rate to maturity implied by the curve under
// the bootstrap convention: R = (1 − D(T)) / Σ τ_i·D(t_i).
func ParRate(c DiscountCurve, maturity time.Time, conv BootstrapConvention) (float64, error) {
	leg := schedule.LegConvention{
		Frequency: conv.Frequency,
		DayCount:  conv.DayCount,
		Calendar:  conv.Calendar,
	}
	periods, err := schedule.Generate(c.Settlement(), maturity, leg)
	if err != nil {
		return 0, err
	}
	annuity := 0.0
	for _, p := range periods {
		annuity += p.Accrual * c.DF(p.PayDate)
	}
	if annuity == 0 {
		return 0, errors.Domain("zero annuity")
	}
	return (1.0 - c.DF(maturity)) / annuity, nil
}
