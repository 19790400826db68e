// SPDX-License-Identifier: MIT
package homography_test

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/homography"
	"github.com/katalvlaran/planar/matrix"
	"github.com/stretchr/testify/require"
)

// onConic evaluates xᵀSx for x = (p, 1).
func onConic(c homography.Conic, p r2.Point) float64 {
	x := [3]float64{p.X, p.Y, 1}
	s := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += x[i] * c[i][j] * x[j]
		}
	}

	return s
}

func TestEllipseRoundTrip(t *testing.T) {
	cases := []struct {
		center      r2.Point
		a, b, angle float64
	}{
		{r2.Point{X: 0, Y: 0}, 2, 1, 0},
		{r2.Point{X: 3, Y: -1}, 5, 2, 0.4},
		{r2.Point{X: -7, Y: 2}, 1.5, 0.5, -1.2},
		{r2.Point{X: 10, Y: 10}, 3, 1, math.Pi / 2},
	}
	for _, tc := range cases {
		c, err := homography.NewEllipse(tc.center, tc.a, tc.b, tc.angle)
		require.NoError(t, err)

		// points of the parametric curve lie on the conic
		for k := 0; k < 8; k++ {
			phi := float64(k) * math.Pi / 4
			lx, ly := tc.a*math.Cos(phi), tc.b*math.Sin(phi)
			p := r2.Point{
				X: tc.center.X + lx*math.Cos(tc.angle) - ly*math.Sin(tc.angle),
				Y: tc.center.Y + lx*math.Sin(tc.angle) + ly*math.Cos(tc.angle),
			}
			require.InDelta(t, 0.0, onConic(c, p), 1e-9)
		}

		e, err := c.Ellipse()
		require.NoError(t, err)
		require.InDelta(t, tc.center.X, e.Center.X, 1e-9)
		require.InDelta(t, tc.center.Y, e.Center.Y, 1e-9)
		require.InDelta(t, tc.a, e.SemiMajor, 1e-9)
		require.InDelta(t, tc.b, e.SemiMinor, 1e-9)
		// orientation is defined modulo π
		require.InDelta(t, math.Sin(2*tc.angle), math.Sin(2*e.Angle), 1e-9)
		require.InDelta(t, math.Cos(2*tc.angle), math.Cos(2*e.Angle), 1e-9)
	}
}

func TestEllipseScaleInvariant(t *testing.T) {
	c, err := homography.NewEllipse(r2.Point{X: 1, Y: 2}, 4, 3, 0.3)
	require.NoError(t, err)
	scaled, err := matrix.Scale(c.Matrix(), -7)
	require.NoError(t, err)
	s, err := homography.NewConic(scaled)
	require.NoError(t, err)

	e1, err := c.Ellipse()
	require.NoError(t, err)
	e2, err := s.Ellipse()
	require.NoError(t, err)
	require.InDelta(t, e1.SemiMajor, e2.SemiMajor, 1e-9)
	require.InDelta(t, e1.SemiMinor, e2.SemiMinor, 1e-9)
	require.InDelta(t, e1.Angle, e2.Angle, 1e-9)
}

func TestConicCoefficients(t *testing.T) {
	c := homography.NewConicCoefficients(1, 0, 1, -2, -4, 1) // (x−1)² + (y−2)² = 4
	require.Equal(t, [6]float64{1, 0, 1, -2, -4, 1}, c.Coefficients())
	ctr, err := c.Center()
	require.NoError(t, err)
	require.InDelta(t, 1.0, ctr.X, 1e-15)
	require.InDelta(t, 2.0, ctr.Y, 1e-15)

	e, err := c.Ellipse()
	require.NoError(t, err)
	require.InDelta(t, 2.0, e.SemiMajor, 1e-12)
	require.InDelta(t, 2.0, e.SemiMinor, 1e-12)
}

func TestConicTransform(t *testing.T) {
	c, err := homography.NewCircle(r2.Point{X: 1, Y: 1}, 0.25)
	require.NoError(t, err)
	inv, err := trueH.Inverse()
	require.NoError(t, err)

	img, err := c.Transform(inv)
	require.NoError(t, err)
	// points of the circle map onto the image conic
	for k := 0; k < 6; k++ {
		phi := float64(k) * math.Pi / 3
		q, err := trueH.Apply(r2.Point{X: 1 + 0.25*math.Cos(phi), Y: 1 + 0.25*math.Sin(phi)})
		require.NoError(t, err)
		require.InDelta(t, 0.0, onConic(img, q), 1e-9)
	}

	back, err := img.Transform(trueH)
	require.NoError(t, err)
	ctr, err := back.Center()
	require.NoError(t, err)
	require.InDelta(t, 1.0, ctr.X, 1e-12)
	require.InDelta(t, 1.0, ctr.Y, 1e-12)

	// the image of the center is not the center of the image ellipse
	imgCtr, err := img.Center()
	require.NoError(t, err)
	projected, err := trueH.Apply(r2.Point{X: 1, Y: 1})
	require.NoError(t, err)
	require.Greater(t, imgCtr.Sub(projected).Norm(), 1e-6)
}

func TestConicDegenerate(t *testing.T) {
	parabola := homography.NewConicCoefficients(1, 0, 0, 0, -1, 0) // y = x²
	_, err := parabola.Center()
	require.ErrorIs(t, err, homography.ErrDegenerateConic)
	require.ErrorIs(t, err, matrix.ErrSingular)

	hyperbola := homography.NewConicCoefficients(1, 0, -1, 0, 0, -1)
	_, err = hyperbola.Ellipse()
	require.ErrorIs(t, err, homography.ErrDegenerateConic)

	_, err = homography.NewEllipse(r2.Point{}, 0, 1, 0)
	require.ErrorIs(t, err, homography.ErrDegenerateConic)

	asym, err := matrix.NewDenseFrom(3, 3, []float64{1, 2, 0, 0, 1, 0, 0, 0, -1})
	require.NoError(t, err)
	_, err = homography.NewConic(asym)
	require.ErrorIs(t, err, matrix.ErrAsymmetry)
}
