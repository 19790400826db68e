// SPDX-License-Identifier: MIT
// Package matrix - public API facades.
//
// Purpose:
//   - Provide thin entry points for common construction and composition tasks.
//   - Avoid logic duplication: each facade delegates to the canonical implementation.
//
// Determinism & Policy:
//   - Facades never change the loop orders or numeric policy of underlying kernels.
//   - Validation is performed in the kernels; facades only compose or forward.

package matrix

const (
	opOnes      = "Ones"
	opDiag      = "Diag"
	opSymmetric = "Symmetrize"
	opGram      = "Gram"
	opTMulVec   = "TMulVec"
)

// ---------- Constructors & Utilities ----------

// Zeros returns a new zero-initialized *Dense of size rows×cols.
// Thin alias of NewDense with an intention-revealing name.
func Zeros(rows, cols int) (*Dense, error) {
	return NewDense(rows, cols)
}

// Ones returns a rows×cols matrix filled with 1.
func Ones(rows, cols int) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opOnes, err)
	}
	for i := range m.data {
		m.data[i] = 1
	}

	return m, nil
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing (constructor) + O(n) writes on the diagonal.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// Diag returns the square matrix with values on its diagonal.
func Diag(values []float64) (*Dense, error) {
	v, err := NewVectorFrom(values)
	if err != nil {
		return nil, matrixErrorf(opDiag, err)
	}

	return v.Diag(), nil
}

// ---------- Convenience facades (compositions only; no loop duplication) ----------

// Symmetrize returns (m + mᵀ)/2. Deterministic composition: Transpose → Add → Scale.
// Useful to repair asymmetry drift before Eigen.
func Symmetrize(m Matrix) (*Dense, error) {
	mt, err := Transpose(m)
	if err != nil {
		return nil, matrixErrorf(opSymmetric, err)
	}
	sum, err := Add(m, mt)
	if err != nil {
		return nil, matrixErrorf(opSymmetric, err)
	}

	return Scale(sum, 0.5)
}

// Gram returns mᵀ·m, the normal-equations matrix of a least-squares problem.
func Gram(m Matrix) (*Dense, error) {
	mt, err := Transpose(m)
	if err != nil {
		return nil, matrixErrorf(opGram, err)
	}
	g, err := Mul(mt, m)
	if err != nil {
		return nil, matrixErrorf(opGram, err)
	}

	return g, nil
}

// TMulVec returns mᵀ·v without materialising the transpose.
func TMulVec(m Matrix, v *Vector) (*Vector, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTMulVec, err)
	}
	if v == nil {
		return nil, matrixErrorf(opTMulVec, ErrNilMatrix)
	}
	rows, cols := m.Rows(), m.Cols()
	if v.Len() != rows {
		return nil, matrixErrorf(opTMulVec, ErrShapeMismatch)
	}
	out := make([]float64, cols)
	var (
		mv  float64
		err error
	)
	for i := 0; i < rows; i++ {
		if v.data[i] == 0 {
			continue
		}
		for j := 0; j < cols; j++ {
			if mv, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opTMulVec, err)
			}
			out[j] += mv * v.data[i]
		}
	}

	return vectorOf(out), nil
}

// AllClose reports whether |a-b| ≤ atol + rtol*|b| holds element-wise.
// Shapes must match; NaN never compares equal.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, err
	}
	var (
		av, bv, diff float64
		err          error
	)
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			if av, err = a.At(i, j); err != nil {
				return false, err
			}
			if bv, err = b.At(i, j); err != nil {
				return false, err
			}
			diff = av - bv
			if diff < 0 {
				diff = -diff
			}
			if bv < 0 {
				bv = -bv
			}
			if !(diff <= atol+rtol*bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
