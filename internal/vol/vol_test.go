package vol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSurface(t *testing.T, bump float64) *Surface {
	t.Helper()
	s, err := NewSurface(
		[]float64{1, 5, 10},
		[]float64{2, 10},
		[][]float64{
			{0.20 + bump, 0.22 + bump},
			{0.18 + bump, 0.20 + bump},
			{0.16 + bump, 0.18 + bump},
		},
	)
	require.NoError(t, err)
	return s
}

func TestFlatVol(t *testing.T) {
	f, err := NewFlat(0.25)
	require.NoError(t, err)

	v, err := f.Vol(3, 10, 0.01)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)

	_, err = NewFlat(-0.1)
	assert.Error(t, err)
}

func TestSurfaceAtNodes(t *testing.T) {
	s := testSurface(t, 0)

	v, err := s.Vol(1, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, v, 1e-15)

	v, err = s.Vol(10, 10, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.18, v, 1e-15)
}

func TestSurfaceInterpolation(t *testing.T) {
	s := testSurface(t, 0)

	// Midpoint between the 1y and 5y expiries at the 2y tenor.
	v, err := s.Vol(3, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.19, v, 1e-12)

	// Midpoint across tenors at the 5y expiry.
	v, err = s.Vol(5, 6, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.19, v, 1e-12)
}

func TestSurfaceClampsOutsideGrid(t *testing.T) {
	s := testSurface(t, 0)

	lo, err := s.Vol(0.25, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, lo, 1e-12)

	hi, err := s.Vol(30, 30, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.18, hi, 1e-12)
}

func TestSurfaceSortsAxes(t *testing.T) {
	// Same grid as testSurface but with the expiry axis scrambled.
	s, err := NewSurface(
		[]float64{10, 1, 5},
		[]float64{2, 10},
		[][]float64{
			{0.16, 0.18},
			{0.20, 0.22},
			{0.18, 0.20},
		},
	)
	require.NoError(t, err)

	v, err := s.Vol(1, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, v, 1e-12)
}

func TestSurfaceValidation(t *testing.T) {
	_, err := NewSurface([]float64{1}, []float64{2}, [][]float64{{0.2, 0.3}})
	assert.Error(t, err)

	_, err = NewSurface([]float64{1}, []float64{2}, [][]float64{{-0.2}})
	assert.Error(t, err)
}

func TestCubeInterpolatesOffsets(t *testing.T) {
	c, err := NewCube(
		[]float64{0.01, -0.01, 0},
		[]*Surface{testSurface(t, 0.03), testSurface(t, 0.05), testSurface(t, 0)},
	)
	require.NoError(t, err)

	// ATM slice.
	v, err := c.Vol(1, 2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, v, 1e-12)

	// Halfway between ATM and +100bp.
	v, err = c.Vol(1, 2, 0.005)
	require.NoError(t, err)
	assert.InDelta(t, 0.215, v, 1e-12)
}

func TestCubeClampsOffsets(t *testing.T) {
	c, err := NewCube(
		[]float64{-0.01, 0, 0.01},
		[]*Surface{testSurface(t, 0.05), testSurface(t, 0), testSurface(t, 0.03)},
	)
	require.NoError(t, err)

	v, err := c.Vol(1, 2, 0.10)
	require.NoError(t, err)
	assert.InDelta(t, 0.23, v, 1e-12)

	v, err = c.Vol(1, 2, -0.10)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-12)
}

func TestCubeRequiresATM(t *testing.T) {
	_, err := NewCube(
		[]float64{-0.01, 0.01},
		[]*Surface{testSurface(t, 0.05), testSurface(t, 0.03)},
	)
	assert.Error(t, err)
}
