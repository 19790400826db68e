// SPDX-License-Identifier: MIT
package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/planar/matrix"
)

// ExampleSolveLU solves a 2×2 system.
func ExampleSolveLU() {
	a, _ := matrix.NewDenseFrom(2, 2, []float64{2, 1, 1, 3})
	b, _ := matrix.NewVectorFrom([]float64{3, 5})

	x, err := matrix.SolveLUVec(a, b)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("x=%.1f y=%.1f\n", x.Data()[0], x.Data()[1])
	// Output: x=0.8 y=1.4
}

// ExampleNullspace recovers the direction annihilated by a rank-2 matrix.
func ExampleNullspace() {
	a, _ := matrix.NewDenseFrom(2, 3, []float64{
		1, 0, 0,
		0, 1, 0,
	})
	v, err := matrix.NullspaceDefault(a)
	if err != nil {
		fmt.Println(err)
		return
	}
	z, _ := v.AtVec(2)
	fmt.Printf("|z|=%.0f\n", z*z)
	// Output: |z|=1
}

// ExampleNewSVD shows the decreasing order of singular values.
func ExampleNewSVD() {
	a, _ := matrix.NewDenseFrom(2, 2, []float64{1, 0, 0, 5})
	svd, _ := matrix.NewSVD(a)
	fmt.Println(svd.Values(), svd.SV(7))
	// Output: [5 1] 0
}
