package curve

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marekkolman/rates-engine/internal/schedule"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
)

var settlement = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestFlatCurveDF(t *testing.T) {
	c := NewFlatCurve(settlement, 0.02)

	assert.Equal(t, 1.0, c.DF(settlement))
	assert.Equal(t, 1.0, c.DF(settlement.AddDate(0, 0, -30)))

	oneYear := settlement.AddDate(1, 0, 0)
	tau := schedule.YearFraction(settlement, oneYear, schedule.Act365F)
	assert.InDelta(t, 0.02, -math.Log(c.DF(oneYear))/tau, 1e-12)
	assert.Equal(t, 0.02, c.ZeroRate(oneYear))
}

func TestNewPillarCurveValidation(t *testing.T) {
	_, err := NewPillarCurve(settlement, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))

	_, err = NewPillarCurve(settlement, map[time.Time]float64{
		settlement.AddDate(1, 0, 0): -0.5,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
}

func TestPillarCurveInterpolation(t *testing.T) {
	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(2, 0, 0)
	c, err := NewPillarCurve(settlement, map[time.Time]float64{d1: 0.98, d2: 0.95})
	require.NoError(t, err)

	// Pillars reproduce exactly, settlement pillar is implied.
	assert.Equal(t, 1.0, c.DF(settlement))
	assert.Equal(t, 0.98, c.DF(d1))
	assert.Equal(t, 0.95, c.DF(d2))

	// Log-linear interpolation sits between the bracketing pillars and the
	// implied forward is constant over the segment.
	mid := d1.AddDate(0, 6, 0)
	df := c.DF(mid)
	assert.Greater(t, df, 0.95)
	assert.Less(t, df, 0.98)

	f1, err := SimpleForward(c, d1, mid, schedule.Act365F)
	require.NoError(t, err)
	f2, err := SimpleForward(c, mid, d2, schedule.Act365F)
	require.NoError(t, err)
	assert.InDelta(t, f1, f2, 1e-9)
}

func TestPillarCurveFlatForwardExtrapolation(t *testing.T) {
	d1 := settlement.AddDate(1, 0, 0)
	d2 := settlement.AddDate(2, 0, 0)
	c, err := NewPillarCurve(settlement, map[time.Time]float64{d1: 0.98, d2: 0.95})
	require.NoError(t, err)

	// Beyond the last pillar the final segment's forward carries on.
	fLast, err := SimpleForward(c, d1, d2, schedule.Act365F)
	require.NoError(t, err)
	fExt, err := SimpleForward(c, d2, d2.AddDate(1, 0, 0), schedule.Act365F)
	require.NoError(t, err)
	assert.InDelta(t, fLast, fExt, 1e-9)
}

func TestSimpleForwardRejectsInvertedPeriod(t *testing.T) {
	c := NewFlatCurve(settlement, 0.02)
	_, err := SimpleForward(c, settlement.AddDate(1, 0, 0), settlement, schedule.Act360)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
}

func TestBootstrapRecoversParRates(t *testing.T) {
	quotes := map[string]float64{
		"1Y": 0.020, "2Y": 0.022, "3Y": 0.023, "5Y": 0.025, "10Y": 0.027,
	}
	conv := DefaultOISConvention(schedule.TARGET)

	c, err := Bootstrap(settlement, quotes, conv)
	require.NoError(t, err)

	for label, rate := range quotes {
		tn, err := schedule.ParseTenor(label)
		require.NoError(t, err)
		maturity := schedule.Adjust(conv.Calendar, tn.AddTo(settlement))
		par, err := ParRate(c, maturity, conv)
		require.NoError(t, err)
		assert.InDelta(t, rate, par, 1e-10, "tenor %s", label)
	}
}

func TestBootstrapDFsDecrease(t *testing.T) {
	c, err := Bootstrap(settlement, map[string]float64{
		"1Y": 0.020, "2Y": 0.022, "5Y": 0.025, "10Y": 0.027,
	}, DefaultOISConvention(schedule.TARGET))
	require.NoError(t, err)

	dates, dfs := c.Pillars()
	require.Equal(t, len(dates), len(dfs))
	for i := 1; i < len(dfs); i++ {
		assert.Less(t, dfs[i], dfs[i-1], "pillar %s", dates[i].Format("2006-01-02"))
	}
}

func TestBootstrapFlatQuotesGiveFlatForwards(t *testing.T) {
	c, err := Bootstrap(settlement, map[string]float64{
		"1Y": 0.02, "2Y": 0.02, "3Y": 0.02, "5Y": 0.02,
	}, DefaultOISConvention(schedule.TARGET))
	require.NoError(t, err)

	// Flat par quotes imply (close to) flat zero rates.
	z2 := c.ZeroRate(settlement.AddDate(2, 0, 0))
	z5 := c.ZeroRate(settlement.AddDate(5, 0, 0))
	assert.InDelta(t, z2, z5, 5e-4)
}

func TestBootstrapValidation(t *testing.T) {
	conv := DefaultOISConvention(schedule.TARGET)

	_, err := Bootstrap(settlement, nil, conv)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))

	_, err = Bootstrap(settlement, map[string]float64{"banana": 0.02}, conv)
	require.Error(t, err)
}

func TestForwardGrid(t *testing.T) {
	c, err := Bootstrap(settlement, map[string]float64{
		"1Y": 0.020, "2Y": 0.022, "5Y": 0.025,
	}, DefaultOISConvention(schedule.TARGET))
	require.NoError(t, err)

	horizon := settlement.AddDate(3, 0, 0)
	points, err := ForwardGrid(c, 6, horizon, schedule.Act360)
	require.NoError(t, err)
	require.Len(t, points, 7)

	assert.Equal(t, settlement, points[0].Date)
	assert.Equal(t, 1.0, points[0].DF)
	assert.Equal(t, 0.0, points[len(points)-1].Forward)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Date.After(points[i-1].Date))
		assert.Less(t, points[i].DF, points[i-1].DF)
		assert.Greater(t, points[i-1].Forward, 0.0)
	}
}

func TestForwardGridValidation(t *testing.T) {
	c := NewFlatCurve(settlement, 0.02)

	_, err := ForwardGrid(c, 0, settlement.AddDate(1, 0, 0), schedule.Act360)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))

	_, err = ForwardGrid(c, 6, settlement, schedule.Act360)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeInvalidArgument, errors.TypeOf(err))
}
