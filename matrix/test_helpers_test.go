// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   - Provide small, deterministic fixtures and utilities for kernels and solvers.
//   - Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/planar/matrix"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Shared tolerances.
const (
	tolExact = 1e-12
	tolLoose = 1e-9
)

// hide wraps any Matrix to hide its concrete type from type assertions.
// Use hide{X} in tests to force the interface fallback path of a kernel.
type hide struct{ matrix.Matrix }

// MustDense allocates an r×c *Dense or fails the test.
func MustDense(t testing.TB, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// IdentityDense returns I_n or fails the test.
func IdentityDense(t testing.TB, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewIdentity(n)
	if err != nil {
		t.Fatalf("NewIdentity(%d): %v", n, err)
	}

	return m
}

// NewFilledDense builds an r×c *Dense from a row-major flat slice.
func NewFilledDense(t testing.TB, r, c int, vals []float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return m
}

// MustVector builds a Vector from values or fails the test.
func MustVector(t testing.TB, vals ...float64) *matrix.Vector {
	t.Helper()
	v, err := matrix.NewVectorFrom(vals)
	if err != nil {
		t.Fatalf("NewVectorFrom: %v", err)
	}

	return v
}

// RandomFill fills m with deterministic U(-1,1) values by seed.
func RandomFill(t testing.TB, m matrix.Matrix, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	r, c := m.Rows(), m.Cols()
	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			MustSet(t, m, i, j, rng.Float64()*2-1)
		}
	}
}

// RandFilledDense returns an r×c Dense with deterministic U(-1,1) entries.
func RandFilledDense(t testing.TB, r, c int, seed int64) *matrix.Dense {
	t.Helper()
	m := MustDense(t, r, c)
	RandomFill(t, m, seed)

	return m
}

// WellConditioned returns a random n×n matrix with a dominant diagonal.
func WellConditioned(t testing.TB, n int, seed int64) *matrix.Dense {
	t.Helper()
	m := RandFilledDense(t, n, n, seed)
	for i := 0; i < n; i++ {
		MustSet(t, m, i, i, MustAt(t, m, i, i)+float64(n))
	}

	return m
}

// MustSet sets m[i,j] or fails the test.
func MustSet(t testing.TB, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d,%v): %v", i, j, v, err)
	}
}

// MustAt reads m[i,j] or fails the test.
func MustAt(t testing.TB, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// RequireClose asserts element-wise |a-b| ≤ tol for equal shapes.
func RequireClose(t testing.TB, want, got matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows(), "rows")
	require.Equal(t, want.Cols(), got.Cols(), "cols")
	for i := 0; i < want.Rows(); i++ {
		for j := 0; j < want.Cols(); j++ {
			w, g := MustAt(t, want, i, j), MustAt(t, got, i, j)
			require.InDeltaf(t, w, g, tol, "(%d,%d)", i, j)
		}
	}
}

// toGonum copies m into a gonum Dense for oracle comparisons.
func toGonum(t testing.TB, m matrix.Matrix) *mat.Dense {
	t.Helper()
	g := mat.NewDense(m.Rows(), m.Cols(), nil)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			g.Set(i, j, MustAt(t, m, i, j))
		}
	}

	return g
}

// colNorm returns the Euclidean norm of column j.
func colNorm(t testing.TB, m matrix.Matrix, j int) float64 {
	t.Helper()
	s := 0.0
	for i := 0; i < m.Rows(); i++ {
		v := MustAt(t, m, i, j)
		s += v * v
	}

	return math.Sqrt(s)
}
