package cms

import (
	"math"
	"time"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// exp(x) overflows float64 past this
const maxExpArg = 700

// Annuity returns the fixed-leg annuity of a swap: the sum of accrual
// fractions discounted to their pay dates.
func Annuity(c curve.DiscountCurve, periods []schedule.Period) (float64, error) {
	if len(periods) == 0 {
		return 0, errors.InvalidArgument("annuity needs at least one fixed-leg period")
	}
	a := 0.0
	for _, p := range periods {
		a += p.Accrual * c.DF(p.PayDate)
	}
	return a, nil
}

// ParRate returns the par rate of the swap whose fixed leg is described by
// periods: (DF(start) - DF(end)) / annuity.
func ParRate(c curve.DiscountCurve, periods []schedule.Period) (float64, error) {
	a, err := Annuity(c, periods)
	if err != nil {
		return 0, err
	}
	start := periods[0].StartDate
	end := periods[len(periods)-1].EndDate
	return (c.DF(start) - c.DF(end)) / a, nil
}

// ShiftedLognormalVariance returns Var[S(T0)] = (S+s)^2 (exp(sigma^2 T0) - 1)
// for a shifted-lognormal swap rate.
func ShiftedLognormalVariance(forward, shift, sigma, t0 float64) (float64, error) {
	if sigma < 0 || t0 < 0 {
		return 0, errors.InvalidArgumentf("vol and observation time must be non-negative, got sigma=%f t0=%f", sigma, t0)
	}
	arg := sigma * sigma * t0
	if arg > maxExpArg {
		return 0, errors.Domain("sigma^2*T0 overflows the lognormal variance")
	}
	d := forward + shift
	return d * d * (math.Exp(arg) - 1.0), nil
}

// TSRCoefficients returns the linear terminal swap rate coefficients (a, b)
// of the annuity mapping alpha(S) = a*S + b, where alpha approximates
// DF(Tp)/A as a function of the swap rate. The slope a comes from a centered
// finite difference of the flat swap-yield mapping psi at the current par
// rate; b is pinned so that alpha(S0) = DF(Tp)/A(0) holds exactly.
func TSRCoefficients(c curve.DiscountCurve, periods []schedule.Period, payDate time.Time) (a, b float64, err error) {
	annuity, err := Annuity(c, periods)
	if err != nil {
		return 0, 0, err
	}
	s0, err := ParRate(c, periods)
	if err != nil {
		return 0, 0, err
	}

	psi := SwapYieldMapping(c.Settlement(), periods, payDate)
	h := fdStep(s0)
	a = (psi(s0+h) - psi(s0-h)) / (2 * h)
	b = c.DF(payDate)/annuity - a*s0
	return a, b, nil
}

// SwapYieldMapping returns the flat-yield annuity mapping psi(y) =
// DFy(Tp)/Ay, where DFy and Ay discount the swap's fixed leg and the pay
// date at a single annually-compounded yield y.
func SwapYieldMapping(settlement time.Time, periods []schedule.Period, payDate time.Time) func(float64) float64 {
	times := make([]float64, len(periods))
	accruals := make([]float64, len(periods))
	for i, p := range periods {
		times[i] = schedule.YearFraction(settlement, p.PayDate, schedule.Act365F)
		accruals[i] = p.Accrual
	}
	tp := schedule.YearFraction(settlement, payDate, schedule.Act365F)

	return func(y float64) float64 {
		ay := 0.0
		for i := range times {
			ay += accruals[i] * math.Pow(1+y, -times[i])
		}
		return math.Pow(1+y, -tp) / ay
	}
}

// AdjustedForward returns the convexity-adjusted expectation of the swap
// rate under the pay-date measure, expanding the annuity mapping psi to
// second order around s0 with centered finite differences.
func AdjustedForward(psi func(float64) float64, s0, variance float64) float64 {
	h := fdStep(s0)
	p0 := psi(s0)
	pUp := psi(s0 + h)
	pDn := psi(s0 - h)
	d1 := (pUp - pDn) / (2 * h)
	d2 := (pUp - 2*p0 + pDn) / (h * h)

	num := s0*p0 + (d1+0.5*s0*d2)*variance
	den := p0 + 0.5*d2*variance
	return num / den
}

func fdStep(s0 float64) float64 {
	return 1e-4 * (math.Abs(s0) + 0.01)
}

// Coupon describes a single CMS coupon: a payment of N*tau*S(T0) at Tp,
// where S is the par rate of the underlying swap observed at the fixing.
type Coupon struct {
	Notional   float64
	Accrual    float64
	PayDate    time.Time
	FixingDate time.Time
	Underlying []schedule.Period
	Sigma      float64
	Shift      float64
}

// CouponResult reports the pricing decomposition of a CMS coupon.
type CouponResult struct {
	ParRate    float64 `json:"parRate"`
	CMSRate    float64 `json:"cmsRate"`
	Adjustment float64 `json:"adjustment"`
	Variance   float64 `json:"variance"`
	TSRSlope   float64 `json:"tsrSlope"`
	Annuity    float64 `json:"annuity"`
	DFPay      float64 `json:"dfPay"`
	PV         float64 `json:"pv"`
}

// CouponPricer values CMS coupons under the linear terminal swap rate model.
type CouponPricer struct {
	log *logger.Logger
}

func NewCouponPricer() *CouponPricer {
	return &CouponPricer{log: logger.GetLogger("cms.coupon")}
}

// Price returns the CMS rate R = S + (A/DF(Tp))*a*Var[S(T0)] and the coupon
// present value N*tau*DF(Tp)*R.
func (p *CouponPricer) Price(c curve.DiscountCurve, cpn Coupon) (*CouponResult, error) {
	if cpn.Notional <= 0 || cpn.Accrual <= 0 {
		return nil, errors.InvalidArgument("coupon notional and accrual must be positive")
	}
	if !cpn.PayDate.After(c.Settlement()) {
		return nil, errors.InvalidArgument("coupon pay date must be after settlement")
	}

	annuity, err := Annuity(c, cpn.Underlying)
	if err != nil {
		return nil, err
	}
	s0, err := ParRate(c, cpn.Underlying)
	if err != nil {
		return nil, err
	}
	a, _, err := TSRCoefficients(c, cpn.Underlying, cpn.PayDate)
	if err != nil {
		return nil, err
	}

	t0 := schedule.YearFraction(c.Settlement(), cpn.FixingDate, schedule.Act365F)
	variance, err := ShiftedLognormalVariance(s0, cpn.Shift, cpn.Sigma, t0)
	if err != nil {
		return nil, err
	}

	dfPay := c.DF(cpn.PayDate)
	adjustment := annuity / dfPay * a * variance
	cmsRate := s0 + adjustment
	pv := cpn.Notional * cpn.Accrual * dfPay * cmsRate

	p.log.Debugf("CMS coupon: S=%.6f R=%.6f adj=%.8f PV=%.4f", s0, cmsRate, adjustment, pv)
	return &CouponResult{
		ParRate:    s0,
		CMSRate:    cmsRate,
		Adjustment: adjustment,
		Variance:   variance,
		TSRSlope:   a,
		Annuity:    annuity,
		DFPay:      dfPay,
		PV:         pv,
	}, nil
}
