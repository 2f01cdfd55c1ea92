package cms

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marekkolman/rates-engine/internal/curve"
	"github.com/marekkolman/rates-engine/internal/schedule"
)

var settlement = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func fixedLeg(t *testing.T, startYears, tenorYears int) []schedule.Period {
	t.Helper()
	leg := schedule.LegConvention{
		Frequency: schedule.Annual,
		DayCount:  schedule.Act360,
		Calendar:  schedule.TARGET,
	}
	start := schedule.AddMonths(settlement, 12*startYears)
	end := schedule.AddMonths(start, 12*tenorYears)
	periods, err := schedule.Generate(start, end, leg)
	require.NoError(t, err)
	return periods
}

func TestAnnuityAndParRateOnFlatCurve(t *testing.T) {
	c := curve.NewFlatCurve(settlement, 0.03)
	periods := fixedLeg(t, 1, 10)

	a, err := Annuity(c, periods)
	require.NoError(t, err)
	assert.Greater(t, a, 0.0)
	assert.Less(t, a, 10.5)

	s, err := ParRate(c, periods)
	require.NoError(t, err)
	// A par rate on a 3% continuous flat curve sits near 3%.
	assert.InDelta(t, 0.03, s, 0.005)
}

func TestShiftedLognormalVariance(t *testing.T) {
	v, err := ShiftedLognormalVariance(0.02, 0.01, 0.25, 5)
	require.NoError(t, err)
	assert.InDelta(t, 0.03*0.03*(math.Exp(0.25*0.25*5)-1), v, 1e-15)

	// sigma^2*T0 -> 0 drives the variance to zero, first order matching
	// sigma^2*T0*(S+s)^2.
	small, err := ShiftedLognormalVariance(0.02, 0.01, 0.001, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 0.001*0.001*0.01*0.03*0.03, small, 1e-15)

	zero, err := ShiftedLognormalVariance(0.02, 0.01, 0, 5)
	require.NoError(t, err)
	assert.Zero(t, zero)

	_, err = ShiftedLognormalVariance(0.02, 0.01, 30, 5)
	assert.Error(t, err)
}

func TestTSRCoefficientsPinned(t *testing.T) {
	c := curve.NewFlatCurve(settlement, 0.03)
	periods := fixedLeg(t, 1, 10)
	payDate := periods[0].PayDate

	a, b, err := TSRCoefficients(c, periods, payDate)
	require.NoError(t, err)

	annuity, err := Annuity(c, periods)
	require.NoError(t, err)
	s0, err := ParRate(c, periods)
	require.NoError(t, err)

	// alpha(S0) must reproduce DF(Tp)/A(0) exactly.
	assert.InDelta(t, c.DF(payDate)/annuity, a*s0+b, 1e-15)

	// Paying at the swap start, the mapping falls as rates rise.
	assert.Less(t, a, 0.0)
}

func TestCouponConvexityAdjustment(t *testing.T) {
	c := curve.NewFlatCurve(settlement, 0.03)
	periods := fixedLeg(t, 1, 10)

	pricer := NewCouponPricer()
	cpn := Coupon{
		Notional:   1e6,
		Accrual:    1.0,
		PayDate:    periods[0].PayDate,
		FixingDate: periods[0].FixingDate,
		Underlying: periods,
		Sigma:      0.25,
	}

	res, err := pricer.Price(c, cpn)
	require.NoError(t, err)
	assert.Greater(t, res.PV, 0.0)
	assert.InDelta(t, res.ParRate+res.Adjustment, res.CMSRate, 1e-15)

	// Adjustment sign follows the TSR slope sign.
	if res.TSRSlope < 0 {
		assert.Less(t, res.Adjustment, 0.0)
	} else {
		assert.Greater(t, res.Adjustment, 0.0)
	}

	// Vanishing vol removes the adjustment entirely.
	cpn.Sigma = 1e-9
	flat, err := pricer.Price(c, cpn)
	require.NoError(t, err)
	assert.InDelta(t, flat.ParRate, flat.CMSRate, 1e-12)
}

func TestAdjustedForwardZeroVariance(t *testing.T) {
	c := curve.NewFlatCurve(settlement, 0.03)
	periods := fixedLeg(t, 1, 10)
	psi := SwapYieldMapping(settlement, periods, periods[0].PayDate)

	s0, err := ParRate(c, periods)
	require.NoError(t, err)
	assert.InDelta(t, s0, AdjustedForward(psi, s0, 0), 1e-15)

	// Positive variance moves the forward; magnitude stays small.
	adj := AdjustedForward(psi, s0, 1e-4)
	assert.NotEqual(t, s0, adj)
	assert.InDelta(t, s0, adj, 0.01)
}

func TestSpreadOptionConvergence(t *testing.T) {
	pricer := NewSpreadPricer()
	opt := SpreadOption{
		Leg1:        SpreadLeg{Forward: 0.025, AdjustedForward: 0.0262, Sigma: 0.28},
		Leg2:        SpreadLeg{Forward: 0.018, AdjustedForward: 0.0184, Sigma: 0.32},
		Strike:      0.005,
		Expiry:      5,
		Correlation: 0.8,
	}

	res, err := pricer.Price(opt)
	require.NoError(t, err)
	assert.Greater(t, res.Value, 0.0)
	assert.Less(t, res.RelChange, 1e-6)
	assert.GreaterOrEqual(t, res.Points, 800)
	assert.LessOrEqual(t, res.Points, 8000)
}

func TestSpreadOptionDegeneratesToIntrinsicStrike(t *testing.T) {
	pricer := NewSpreadPricer()
	base := SpreadOption{
		Leg1:        SpreadLeg{Forward: 0.025, AdjustedForward: 0.025, Sigma: 0.25},
		Leg2:        SpreadLeg{Forward: 0.018, AdjustedForward: 0.018, Sigma: 0.25},
		Expiry:      5,
		Correlation: 0.9,
	}

	// A deeply negative strike makes the payoff linear: E[S1 - S2 - K].
	deep := base
	deep.Strike = -0.5
	res, err := pricer.Price(deep)
	require.NoError(t, err)
	assert.InDelta(t, 0.025-0.018+0.5, res.Value, 1e-4)

	// Higher strike, lower value.
	lowK := base
	lowK.Strike = 0.0
	highK := base
	highK.Strike = 0.01
	lo, err := pricer.Price(lowK)
	require.NoError(t, err)
	hi, err := pricer.Price(highK)
	require.NoError(t, err)
	assert.Greater(t, lo.Value, hi.Value)
}

func TestSpreadOptionValidation(t *testing.T) {
	pricer := NewSpreadPricer()
	opt := SpreadOption{
		Leg1:        SpreadLeg{Forward: 0.02, AdjustedForward: 0.02, Sigma: 0.2},
		Leg2:        SpreadLeg{Forward: 0.02, AdjustedForward: 0.02, Sigma: 0.2},
		Expiry:      5,
		Correlation: 1.5,
	}
	_, err := pricer.Price(opt)
	assert.Error(t, err)

	opt.Correlation = 0.5
	opt.Expiry = -1
	_, err = pricer.Price(opt)
	assert.Error(t, err)

	opt.Expiry = 5
	opt.Leg1.Sigma = 0
	_, err = pricer.Price(opt)
	assert.Error(t, err)
}
