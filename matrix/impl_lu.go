// SPDX-License-Identifier: MIT

// Package matrix - LU solver with scaled partial pivoting.
//
// Purpose:
//   - Solve square systems A·X = B for one or many right-hand sides.
//   - Provide Det and Inverse on top of the same factorization.
//
// Algorithm (Gaussian elimination, scaled partial pivoting):
//   - Row scale factors s(i) = 1/max_j |A(i,j)| are computed once, before elimination.
//     An identically zero row is reported as ErrSingular immediately.
//   - At step k the pivot row p ≥ k maximizes s(p)·|A(p,k)|. The pivot row is swapped
//     into place together with its scale factor and the swap is recorded in perm.
//   - Multipliers are stored below the diagonal (L has an implicit unit diagonal).
//   - Forward substitution replays perm on B only; B is never rescaled.
//
// Complexity: factorization O(n^3), each solve O(n^2·k) for k right-hand sides.

package matrix

import (
	"errors"
	"fmt"
	"math"
)

const (
	opSolveLU    = "SolveLU"
	opSolveLUVec = "SolveLUVec"
	opDet        = "Det"
	opInverse    = "Inverse"
)

// luFactor is an in-place LU factorization of a square matrix.
type luFactor struct {
	lu    *Dense // U on and above the diagonal, multipliers of L below it
	perm  []int  // perm[k] is the row swapped with k at step k
	swaps int    // number of effective row exchanges (for the determinant sign)
}

// factorLU decomposes a copy of a. It never touches the caller's matrix.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
func factorLU(a Matrix) (*luFactor, error) {
	if err := ValidateSquareNonNil(a); err != nil {
		return nil, err
	}
	lu, err := ToDense(a)
	if err != nil {
		return nil, err
	}
	n := lu.r
	d := lu.data

	// Stage 1: implicit row scaling.
	scale := make([]float64, n)
	var i, j, k int
	var big, v float64
	for i = 0; i < n; i++ {
		big = NormZero
		for j = 0; j < n; j++ {
			if v = math.Abs(d[i*n+j]); v > big {
				big = v
			}
		}
		if big == ZeroPivot {
			return nil, fmt.Errorf("row %d is zero: %w", i, ErrSingular)
		}
		scale[i] = 1 / big
	}

	// Stage 2: elimination.
	f := &luFactor{lu: lu, perm: make([]int, n)}
	var p int
	var best, pivot, m float64
	for k = 0; k < n; k++ {
		p, best = k, -1
		for i = k; i < n; i++ {
			if v = scale[i] * math.Abs(d[i*n+k]); v > best {
				p, best = i, v
			}
		}
		if d[p*n+k] == ZeroPivot {
			return nil, fmt.Errorf("no pivot in column %d: %w", k, ErrSingular)
		}
		if p != k {
			_ = lu.SwapRows(p, k) // indices validated by construction
			scale[p], scale[k] = scale[k], scale[p]
			f.swaps++
		}
		f.perm[k] = p

		pivot = d[k*n+k]
		for i = k + 1; i < n; i++ {
			m = d[i*n+k] / pivot
			d[i*n+k] = m
			if m == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				d[i*n+j] -= m * d[k*n+j]
			}
		}
	}

	return f, nil
}

// solve overwrites b (n×k) with the solution of LU·X = P·b.
func (f *luFactor) solve(b *Dense) {
	n, cols := f.lu.r, b.c
	d, x := f.lu.data, b.data
	var i, j, c int
	var l float64

	// Forward substitution with the recorded permutation.
	for i = 0; i < n; i++ {
		if f.perm[i] != i {
			_ = b.SwapRows(i, f.perm[i])
		}
	}
	for i = 1; i < n; i++ {
		for j = 0; j < i; j++ {
			if l = d[i*n+j]; l == 0 {
				continue
			}
			for c = 0; c < cols; c++ {
				x[i*cols+c] -= l * x[j*cols+c]
			}
		}
	}

	// Back substitution.
	for i = n - 1; i >= 0; i-- {
		for j = i + 1; j < n; j++ {
			if l = d[i*n+j]; l == 0 {
				continue
			}
			for c = 0; c < cols; c++ {
				x[i*cols+c] -= l * x[j*cols+c]
			}
		}
		_ = b.ScaleRow(i, 1/d[i*n+i])
	}
}

// SolveLU solves A·X = B for square A and returns X with the shape of B.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare (A not square), ErrShapeMismatch (B.Rows != A.Rows).
//   - ErrSingular when a row of A is zero or a column has no usable pivot.
func SolveLU(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolveLU, err)
	}
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opSolveLU, err)
	}
	if a.Rows() != b.Rows() {
		return nil, matrixErrorf(opSolveLU, ErrShapeMismatch)
	}
	f, err := factorLU(a)
	if err != nil {
		return nil, matrixErrorf(opSolveLU, err)
	}
	x, err := ToDense(b)
	if err != nil {
		return nil, matrixErrorf(opSolveLU, err)
	}
	f.solve(x)

	return x, nil
}

// SolveLUVec is SolveLU for a single right-hand side vector.
func SolveLUVec(a Matrix, b *Vector) (*Vector, error) {
	if b == nil {
		return nil, matrixErrorf(opSolveLUVec, ErrNilMatrix)
	}
	x, err := SolveLU(a, b)
	if err != nil {
		return nil, matrixErrorf(opSolveLUVec, err)
	}

	return vectorOf(x.data), nil
}

// Det returns the determinant of a square matrix. A singular matrix yields 0 without error.
func Det(a Matrix) (float64, error) {
	f, err := factorLU(a)
	switch {
	case err == nil:
	case errors.Is(err, ErrSingular):
		return 0, nil
	default:
		return 0, matrixErrorf(opDet, err)
	}
	n := f.lu.r
	det := 1.0
	for i := 0; i < n; i++ {
		det *= f.lu.data[i*n+i]
	}
	if f.swaps%2 == 1 {
		det = -det
	}

	return det, nil
}

// Inverse returns A⁻¹ by solving A·X = I.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
func Inverse(a Matrix) (*Dense, error) {
	if err := ValidateSquareNonNil(a); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	id, err := NewIdentity(a.Rows())
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	inv, err := SolveLU(a, id)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return inv, nil
}
