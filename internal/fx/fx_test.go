package fx

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

func TestForwardsFollowCIP(t *testing.T) {
	domestic := curve.NewFlatCurve(settlement, 0.04)
	foreign := curve.NewFlatCurve(settlement, 0.01)
	spot := 1.10

	points, err := Forwards(spot, domestic, foreign, schedule.NoHolidays, []string{"1Y", "3M", "5Y"})
	require.NoError(t, err)
	require.Len(t, points, 3)

	// Sorted by maturity.
	assert.Equal(t, "3M", points[0].Tenor)
	assert.Equal(t, "5Y", points[2].Tenor)

	for _, p := range points {
		tau := schedule.YearFraction(settlement, p.Date, schedule.Act365F)
		expected := spot * math.Exp((0.04-0.01)*tau)
		assert.InDelta(t, expected, p.Outright, 1e-12, "tenor %s", p.Tenor)
		assert.InDelta(t, p.Outright-spot, p.Points, 1e-15)
	}

	// Higher domestic rates put the forward above spot.
	assert.Greater(t, points[0].Outright, spot)
}

func TestForwardsValidation(t *testing.T) {
	c := curve.NewFlatCurve(settlement, 0.02)

	_, err := Forwards(-1, c, c, schedule.NoHolidays, []string{"1Y"})
	assert.Error(t, err)

	_, err = Forwards(1.1, c, c, schedule.NoHolidays, nil)
	assert.Error(t, err)

	_, err = Forwards(1.1, c, c, schedule.NoHolidays, []string{"bogus"})
	assert.Error(t, err)
}

func TestFairSpreadZeroWithoutBasis(t *testing.T) {
	domestic := curve.NewFlatCurve(settlement, 0.04)
	foreign := curve.NewFlatCurve(settlement, 0.01)

	b := NewBootstrapper(DefaultBasisConvention(schedule.NoHolidays))
	quotes, err := b.FairSpreads(Market{
		Domestic:          domestic,
		ForeignProjection: foreign,
		ForeignDiscount:   foreign,
	}, []string{"1Y", "2Y", "5Y"})
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	// Discounting the foreign leg on its own projection curve leaves no
	// basis to price in.
	for _, q := range quotes {
		assert.InDelta(t, 0.0, q.Spread, 1e-10, "tenor %s", q.Tenor)
	}
}

func TestFairSpreadPricesBackToZeroNPV(t *testing.T) {
	domestic := curve.NewFlatCurve(settlement, 0.04)
	foreignProj := curve.NewFlatCurve(settlement, 0.01)
	// Foreign discounting cheapened by a 25bp basis.
	foreignDisc := curve.NewFlatCurve(settlement, 0.0125)

	b := NewBootstrapper(DefaultBasisConvention(schedule.NoHolidays))
	m := Market{Domestic: domestic, ForeignProjection: foreignProj, ForeignDiscount: foreignDisc}

	quotes, err := b.FairSpreads(m, []string{"2Y", "5Y", "10Y"})
	require.NoError(t, err)

	for _, q := range quotes {
		assert.Greater(t, q.Spread, 0.0, "tenor %s", q.Tenor)

		domPV, err := b.domesticLegPV(domestic, q.Maturity)
		require.NoError(t, err)
		forPV, err := b.foreignLegPV(foreignProj, foreignDisc, q.Maturity, q.Spread)
		require.NoError(t, err)
		assert.InDelta(t, domPV, forPV, 1e-10, "tenor %s", q.Tenor)
	}
}

func TestBootstrapDiscountCurveRoundTrip(t *testing.T) {
	domestic := curve.NewFlatCurve(settlement, 0.04)
	foreignProj := curve.NewFlatCurve(settlement, 0.01)
	foreignDisc := curve.NewFlatCurve(settlement, 0.013)

	b := NewBootstrapper(DefaultBasisConvention(schedule.NoHolidays))
	m := Market{Domestic: domestic, ForeignProjection: foreignProj, ForeignDiscount: foreignDisc}

	quotes, err := b.FairSpreads(m, []string{"1Y", "2Y", "3Y", "5Y"})
	require.NoError(t, err)

	spreads := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		spreads[q.Tenor] = q.Spread
	}

	rebuilt, err := b.BootstrapDiscountCurve(Market{
		Domestic:          domestic,
		ForeignProjection: foreignProj,
	}, spreads)
	require.NoError(t, err)

	// Pillar DFs of the rebuilt curve reproduce the discounting the spreads
	// were solved against.
	for _, q := range quotes {
		assert.InDelta(t, foreignDisc.DF(q.Maturity), rebuilt.DF(q.Maturity), 1e-6, "tenor %s", q.Tenor)
	}
}

func TestBootstrapValidation(t *testing.T) {
	b := NewBootstrapper(DefaultBasisConvention(schedule.NoHolidays))

	_, err := b.FairSpreads(Market{}, []string{"1Y"})
	assert.Error(t, err)

	_, err = b.BootstrapDiscountCurve(Market{
		Domestic:          curve.NewFlatCurve(settlement, 0.02),
		ForeignProjection: curve.NewFlatCurve(settlement, 0.01),
	}, nil)
	assert.Error(t, err)
}
