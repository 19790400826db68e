// SPDX-License-Identifier: MIT

// Package matrix - Vector: a single-column matrix with vector algebra.
//
// Purpose:
//   - Give the solvers a column type with dot/cross/norm and element-wise arithmetic.
//   - Implement Matrix (Rows()==Len(), Cols()==1) so a Vector can flow into any kernel.
//
// All arithmetic is pure: every method returns a new Vector and leaves the
// receiver untouched. Length mismatches surface as ErrShapeMismatch.

package matrix

import (
	"fmt"
	"math"
)

const (
	ctxVecAt   = "Vector.At"
	ctxVecSet  = "Vector.Set"
	ctxDot     = "Dot"
	ctxCross   = "Cross"
	ctxVecAdd  = "Vector.Add"
	ctxVecSub  = "Vector.Sub"
	ctxVecMul  = "Vector.MulElem"
	ctxVecDiv  = "Vector.DivElem"
	ctxVecCopy = "Vector.Copy"
	ctxVecNorm = "Vector.Normalize"
	ctxVecFrom = "NewVectorFrom"
)

// Vector is a dense column vector backed by its own slice.
type Vector struct {
	data           []float64
	validateNaNInf bool
}

var _ Matrix = (*Vector)(nil)

// NewVector returns a zero vector of length n (n > 0).
func NewVector(n int) (*Vector, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Vector{data: make([]float64, n), validateNaNInf: DefaultValidateNaNInf}, nil
}

// NewVectorFrom copies data into a new Vector.
//
// Errors:
//   - ErrInvalidDimensions for an empty slice.
//   - ErrNaNInf for non-finite entries.
func NewVectorFrom(data []float64) (*Vector, error) {
	if len(data) == 0 {
		return nil, ErrInvalidDimensions
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s[%d]: %w", ctxVecFrom, i, ErrNaNInf)
		}
	}
	cp := make([]float64, len(data))
	copy(cp, data)

	return &Vector{data: cp, validateNaNInf: DefaultValidateNaNInf}, nil
}

// vectorOf wraps an owned slice without copying. Internal use only.
func vectorOf(data []float64) *Vector {
	return &Vector{data: data, validateNaNInf: DefaultValidateNaNInf}
}

// Len returns the number of elements.
func (v *Vector) Len() int { return len(v.data) }

// Rows returns Len(); a Vector is one column.
func (v *Vector) Rows() int { return len(v.data) }

// Cols always returns 1.
func (v *Vector) Cols() int { return 1 }

// At implements Matrix; j must be 0.
func (v *Vector) At(i, j int) (float64, error) {
	if j != 0 || i < 0 || i >= len(v.data) {
		return 0, fmt.Errorf("%s(%d,%d): %w", ctxVecAt, i, j, ErrOutOfRange)
	}

	return v.data[i], nil
}

// Set implements Matrix; j must be 0.
func (v *Vector) Set(i, j int, x float64) error {
	if j != 0 || i < 0 || i >= len(v.data) {
		return fmt.Errorf("%s(%d,%d): %w", ctxVecSet, i, j, ErrOutOfRange)
	}
	if v.validateNaNInf && (math.IsNaN(x) || math.IsInf(x, 0)) {
		return fmt.Errorf("%s(%d,%d): %w", ctxVecSet, i, j, ErrNaNInf)
	}
	v.data[i] = x

	return nil
}

// AtVec is the one-index form of At.
func (v *Vector) AtVec(i int) (float64, error) { return v.At(i, 0) }

// SetVec is the one-index form of Set.
func (v *Vector) SetVec(i int, x float64) error { return v.Set(i, 0, x) }

// Clone returns a deep copy.
func (v *Vector) Clone() Matrix { return v.clone() }

func (v *Vector) clone() *Vector {
	cp := make([]float64, len(v.data))
	copy(cp, v.data)

	return &Vector{data: cp, validateNaNInf: v.validateNaNInf}
}

// Data returns a copy of the elements.
func (v *Vector) Data() []float64 {
	cp := make([]float64, len(v.data))
	copy(cp, v.data)

	return cp
}

// String renders the vector as a single bracketed row.
func (v *Vector) String() string {
	return fmt.Sprintf("%g", v.data)
}

// AsDense returns the vector as an n×1 Dense.
func (v *Vector) AsDense() *Dense {
	cp := make([]float64, len(v.data))
	copy(cp, v.data)

	return &Dense{r: len(cp), c: 1, data: cp, validateNaNInf: v.validateNaNInf}
}

// Dot returns Σ v[i]*w[i].
func (v *Vector) Dot(w *Vector) (float64, error) {
	if w == nil {
		return 0, matrixErrorf(ctxDot, ErrNilMatrix)
	}
	if len(v.data) != len(w.data) {
		return 0, matrixErrorf(ctxDot, ErrShapeMismatch)
	}
	sum := ZeroSum
	for i, x := range v.data {
		sum += x * w.data[i]
	}

	return sum, nil
}

// Cross returns v × w for 3-element vectors.
func (v *Vector) Cross(w *Vector) (*Vector, error) {
	if w == nil {
		return nil, matrixErrorf(ctxCross, ErrNilMatrix)
	}
	if len(v.data) != 3 || len(w.data) != 3 {
		return nil, matrixErrorf(ctxCross, ErrNotThreeVector)
	}
	a, b := v.data, w.data

	return vectorOf([]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}), nil
}

// Norm returns the Euclidean length, computed with scaling to avoid overflow.
func (v *Vector) Norm() float64 {
	scale, ssq := 0.0, 1.0
	for _, x := range v.data {
		if x == 0 {
			continue
		}
		ax := math.Abs(x)
		if scale < ax {
			ssq = 1 + ssq*(scale/ax)*(scale/ax)
			scale = ax
		} else {
			ssq += (ax / scale) * (ax / scale)
		}
	}

	return scale * math.Sqrt(ssq)
}

// SquaredNorm returns Σ v[i]².
func (v *Vector) SquaredNorm() float64 {
	sum := ZeroSum
	for _, x := range v.data {
		sum += x * x
	}

	return sum
}

// Normalize returns v/‖v‖.
func (v *Vector) Normalize() (*Vector, error) {
	n := v.Norm()
	if n == NormZero {
		return nil, matrixErrorf(ctxVecNorm, ErrZeroVector)
	}

	return v.Scale(1 / n), nil
}

// Scale returns alpha*v.
func (v *Vector) Scale(alpha float64) *Vector {
	out := make([]float64, len(v.data))
	for i, x := range v.data {
		out[i] = alpha * x
	}

	return &Vector{data: out, validateNaNInf: v.validateNaNInf}
}

// elementwise applies f pairwise after a length check.
func (v *Vector) elementwise(w *Vector, tag string, f func(a, b float64) float64) (*Vector, error) {
	if w == nil {
		return nil, matrixErrorf(tag, ErrNilMatrix)
	}
	if len(v.data) != len(w.data) {
		return nil, matrixErrorf(tag, ErrShapeMismatch)
	}
	out := make([]float64, len(v.data))
	for i := range v.data {
		out[i] = f(v.data[i], w.data[i])
	}

	return &Vector{data: out, validateNaNInf: v.validateNaNInf}, nil
}

// Add returns v + w.
func (v *Vector) Add(w *Vector) (*Vector, error) {
	return v.elementwise(w, ctxVecAdd, func(a, b float64) float64 { return a + b })
}

// Sub returns v − w.
func (v *Vector) Sub(w *Vector) (*Vector, error) {
	return v.elementwise(w, ctxVecSub, func(a, b float64) float64 { return a - b })
}

// MulElem returns the element-wise product v ⊙ w.
func (v *Vector) MulElem(w *Vector) (*Vector, error) {
	return v.elementwise(w, ctxVecMul, func(a, b float64) float64 { return a * b })
}

// DivElem returns the element-wise quotient v ⊘ w. Division by zero yields ErrNaNInf.
func (v *Vector) DivElem(w *Vector) (*Vector, error) {
	out, err := v.elementwise(w, ctxVecDiv, func(a, b float64) float64 { return a / b })
	if err != nil {
		return nil, err
	}
	for i, x := range out.data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%s[%d]: %w", ctxVecDiv, i, ErrNaNInf)
		}
	}

	return out, nil
}

// Copy extracts the contiguous sub-vector [i0, i1).
func (v *Vector) Copy(i0, i1 int) (*Vector, error) {
	if i0 < 0 || i1 > len(v.data) || i0 >= i1 {
		return nil, fmt.Errorf("%s(%d,%d): %w", ctxVecCopy, i0, i1, ErrOutOfRange)
	}
	out := make([]float64, i1-i0)
	copy(out, v.data[i0:i1])

	return &Vector{data: out, validateNaNInf: v.validateNaNInf}, nil
}

// Diag builds the n×n diagonal matrix with v on its diagonal.
func (v *Vector) Diag() *Dense {
	n := len(v.data)
	d := &Dense{r: n, c: n, data: make([]float64, n*n), validateNaNInf: v.validateNaNInf}
	for i, x := range v.data {
		d.data[i*n+i] = x
	}

	return d
}
