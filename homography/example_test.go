// SPDX-License-Identifier: MIT
package homography_test

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/homography"
)

func ExampleSolvePoints() {
	src := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	dst := []r2.Point{{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 4}, {X: 2, Y: 4}}

	h, err := homography.SolvePoints(src, dst)
	if err != nil {
		fmt.Println(err)
		return
	}
	p, _ := h.Apply(r2.Point{X: 0.5, Y: 0.5})
	fmt.Printf("%.3f %.3f\n", p.X, p.Y)
	// Output: 2.500 3.500
}

func ExampleConic_Ellipse() {
	c, _ := homography.NewEllipse(r2.Point{X: 4, Y: 1}, 3, 2, 0)
	e, _ := c.Ellipse()
	fmt.Printf("center (%.1f, %.1f) axes %.1f/%.1f\n", e.Center.X, e.Center.Y, e.SemiMajor, e.SemiMinor)
	// Output: center (4.0, 1.0) axes 3.0/2.0
}
