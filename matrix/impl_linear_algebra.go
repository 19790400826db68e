// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation,
// including element-wise addition, subtraction, matrix multiplication,
// transpose, scalar scaling and the symmetric Jacobi eigen solver. All
// functions perform strict fail-fast validation and return ErrShapeMismatch
// instead of silently truncating operands.
//
// Purpose:
//   - Declare canonical linear-algebra kernels used across the package.
//   - Define operation tags and shared constants for determinism and error reporting.
//
// Notes:
//   - Kernels return freshly allocated *Dense values; operands are never mutated.
//   - A *Dense operand unlocks a flat-slice fast path; any other Matrix goes through At/Set.

package matrix

import (
	"fmt"
	"math"
)

// NormZero is the additive identity for norm and accumulation operations.
const NormZero = 0.0

// ZeroSum is the initial sum value for forward/backward substitution and similar.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in elimination routines.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd       = "Add"
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opEigen     = "Eigen"
	opHadamard  = "Hadamard"
	opMatVec    = "MatVec"
	opMulVec    = "MulVec"
	opToDense   = "ToDense"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil to avoid creating a non-nil wrapper around a nil cause.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ToDense returns m as a *Dense. A *Dense input is cloned, a *Vector becomes an
// n×1 column, anything else is copied through At.
func ToDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	switch t := m.(type) {
	case *Dense:
		return t.clone(), nil
	case *Vector:
		return t.AsDense(), nil
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	var v float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opToDense, err)
			}
			res.data[i*cols+j] = v
		}
	}

	return res, nil
}

// flatData exposes the row-major buffer of *Dense and *Vector operands.
func flatData(m Matrix) ([]float64, bool) {
	switch t := m.(type) {
	case *Dense:
		return t.data, true
	case *Vector:
		return t.data, true
	}

	return nil, false
}

// addSub computes elementwise out = a + sign*b for sign ∈ {+1, -1}.
//
// Implementation:
//   - Stage 1: ValidateBinarySameShape(a, b). Allocate result Dense(rows, cols).
//   - Stage 2: Fast-path if both expose flat data - single flat loop 0..n-1.
//     Otherwise, fallback At with fixed i→j order.
//
// Errors:
//   - ErrNilMatrix, ErrShapeMismatch (from ValidateBinarySameShape).
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for the new result.
func addSub(a, b Matrix, sign float64, opTag string) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opTag, err)
	}

	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}

	// Fast path: both flat → single loop.
	if da, okA := flatData(a); okA {
		if db, okB := flatData(b); okB {
			for idx := range res.data {
				res.data[idx] = da[idx] + sign*db[idx]
			}

			return res, nil
		}
	}

	// Fallback: interface path with fixed i→j order.
	var i, j int
	var av, bv float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if av, err = a.At(i, j); err != nil {
				return nil, matrixErrorf(opTag, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			if bv, err = b.At(i, j); err != nil {
				return nil, matrixErrorf(opTag, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			res.data[i*cols+j] = av + sign*bv
		}
	}

	return res, nil
}

// Add computes the element-wise sum C = A + B and returns a fresh Dense result.
// Errors: ErrNilMatrix (nil input), ErrShapeMismatch (shape mismatch).
// Complexity: O(r*c).
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub computes the element-wise difference C = A − B.
// Errors: ErrNilMatrix (nil input), ErrShapeMismatch (shape mismatch).
// Complexity: O(r*c).
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Mul computes the matrix product C = A × B.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b). Allocate Dense(a.Rows, b.Cols).
//   - Stage 2: Fast path i→k→j over flat slices (skips zero A[i,k]); fallback i→j→k via At.
//
// Errors:
//   - ErrNilMatrix (nil input), ErrShapeMismatch (inner mismatch).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k         int
		av, bv, current float64
	)
	if da, okA := flatData(a); okA {
		if db, okB := flatData(b); okB {
			var rowOffsetA, rowOffsetB, rowOffsetR int
			for i = 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da[rowOffsetA+k]
					if av == 0 {
						continue
					}
					rowOffsetB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowOffsetR+j] += av * db[rowOffsetB+j]
					}
				}
			}

			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k)
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			current = ZeroSum
			for k = 0; k < aCols; k++ {
				if av, err = a.At(i, k); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", i, k, err))
				}
				if av == 0 {
					continue
				}
				if bv, err = b.At(k, j); err != nil {
					return nil, matrixErrorf(opMul, fmt.Errorf("At(%d,%d): %w", k, j, err))
				}
				current += av * bv
			}
			res.data[i*bCols+j] = current
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Errors: ErrNilMatrix.
// Complexity: O(r*c).
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var i, j int
	if dm, ok := flatData(m); ok {
		// data[i*cols + j] → res.data[j*rows + i]
		for i = 0; i < rows; i++ {
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = dm[i*cols+j]
			}
		}

		return res, nil
	}

	var v float64
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTranspose, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
// alpha = 0 yields an explicit zero matrix with the same shape.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res, err := ToDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	for idx := range res.data {
		res.data[idx] *= alpha
	}

	return res, nil
}

// Hadamard computes the elementwise product (a ⊙ b) with a fresh Dense result.
// Hadamard ≠ matrix multiplication; use Mul for A×B.
// Errors: ErrNilMatrix, ErrShapeMismatch.
func Hadamard(a, b Matrix) (*Dense, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	da, err := ToDense(a)
	if err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	db, err := ToDense(b)
	if err != nil {
		return nil, matrixErrorf(opHadamard, err)
	}
	for idx := range da.data {
		da.data[idx] *= db.data[idx]
	}

	return da, nil
}

// MatVec computes y = m * x for a column vector given as a slice.
//
// Contract: m non-nil; x non-nil; len(x) == m.Cols().
// Complexity: Time O(r*c), Space O(r) for y.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)

	if d, ok := flatData(m); ok {
		var acc float64
		for i := 0; i < rows; i++ {
			acc = ZeroSum
			base := i * cols
			for j := 0; j < cols; j++ {
				if x[j] != 0 {
					acc += d[base+j] * x[j]
				}
			}
			y[i] = acc
		}

		return y, nil
	}

	var mv float64
	var err error
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if mv, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opMatVec, fmt.Errorf("At(%d,%d): %w", i, j, err))
			}
			y[i] += mv * x[j]
		}
	}

	return y, nil
}

// MulVec is the Vector form of MatVec: returns m·v.
func MulVec(m Matrix, v *Vector) (*Vector, error) {
	if v == nil {
		return nil, matrixErrorf(opMulVec, ErrNilMatrix)
	}
	y, err := MatVec(m, v.data)
	if err != nil {
		return nil, matrixErrorf(opMulVec, err)
	}

	return vectorOf(y), nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi rotations.
//
// Implementation:
//   - Stage 1: Validate symmetric square input within tol.
//   - Stage 2: Repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and apply a rotation.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix), in diagonal order.
//   - *Dense: Q whose columns are the matching eigenvectors.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed (max off-diagonal ≥ tol after maxIter).
//
// Complexity:
//   - Time O(maxIter * n^2), Space O(n^2).
//
// Notes:
//   - If |A[p,q]| ≤ tol, the rotation is skipped to avoid numerical blow-ups.
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, tol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := m.Rows()
	a, err := ToDense(m) // working copy
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	q, err := NewIdentity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		i, j, p, r         int
		maxOff, off        float64
		app, arr, apr      float64
		aip, air, qip, qir float64
		theta, t, c, s     float64
	)
	for iter := 0; iter < maxIter; iter++ {
		// J.1: Find pivot (p,r) maximizing |A[p,r]|
		maxOff = NormZero
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				if off = math.Abs(a.data[i*n+j]); off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		// J.2: Converged.
		if maxOff < tol {
			break
		}

		// J.3: Rotation parameters from A[p,p], A[r,r], A[p,r]
		app, arr, apr = a.data[p*n+p], a.data[r*n+r], a.data[p*n+r]
		theta = (arr - app) / (2 * apr)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		// J.4: Apply rotation to A symmetrically.
		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip, air = a.data[i*n+p], a.data[i*n+r]
			a.data[i*n+p], a.data[p*n+i] = c*aip-s*air, c*aip-s*air
			a.data[i*n+r], a.data[r*n+i] = s*aip+c*air, s*aip+c*air
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apr + s*s*arr
		a.data[r*n+r] = s*s*app + 2*c*s*apr + c*c*arr
		a.data[p*n+r], a.data[r*n+p] = 0, 0

		// J.5: Accumulate rotation into Q
		for i = 0; i < n; i++ {
			qip, qir = q.data[i*n+p], q.data[i*n+r]
			q.data[i*n+p] = c*qip - s*qir
			q.data[i*n+r] = s*qip + c*qir
		}
	}

	// Final convergence check.
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if math.Abs(a.data[i*n+j]) >= tol {
				return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
			}
		}
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}

	return eigs, q, nil
}
