// SPDX-License-Identifier: MIT
package homography_test

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/homography"
	"github.com/stretchr/testify/require"
)

// trueH maps the reference plane to the image with a visible projective part.
var trueH = homography.Homography{
	{2, 0.2, 5},
	{-0.1, 1.8, 3},
	{0.05, 0.03, 1},
}

// grid returns n×n reference points with unit spacing.
func grid(n int) []r2.Point {
	pts := make([]r2.Point, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pts = append(pts, r2.Point{X: float64(j), Y: float64(i)})
		}
	}

	return pts
}

// project maps every point through h.
func project(t testing.TB, h homography.Homography, pts []r2.Point) []r2.Point {
	t.Helper()
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		q, err := h.Apply(p)
		require.NoError(t, err)
		out[i] = q
	}

	return out
}

// circleTargets images circles of the given radius around each reference point
// through h, so that pulling the image conics back through h is exact.
func circleTargets(t testing.TB, h homography.Homography, refs []r2.Point, radius float64) []homography.Target {
	t.Helper()
	inv, err := h.Inverse()
	require.NoError(t, err)
	targets := make([]homography.Target, len(refs))
	for i, ref := range refs {
		c, err := homography.NewCircle(ref, radius)
		require.NoError(t, err)
		img, err := c.Transform(inv)
		require.NoError(t, err)
		targets[i] = homography.Target{Conic: img, Reference: ref}
	}

	return targets
}

func requireHomographyClose(t testing.TB, want, got homography.Homography, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			require.InDeltaf(t, want[i][j], got[i][j], tol*(1+math.Abs(want[i][j])), "H[%d][%d]", i, j)
		}
	}
}
