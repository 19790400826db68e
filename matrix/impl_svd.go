// SPDX-License-Identifier: MIT

// Package matrix - singular value decomposition.
//
// Purpose:
//   - Decompose any m×n matrix as A = U·diag(D)·Vᵀ with D non-increasing.
//   - Offer two interchangeable raw backends: one-sided Jacobi (default) and
//     gonum's Golub–Kahan bidiagonalisation (WithGolubKahan).
//
// Shape contract:
//   - D has length n (one value per column of A). When m < n the trailing n−m values are zero.
//   - V is n×n orthogonal; U is m×n and its columns for zero singular values are zero.
//
// Ordering:
//   - After the raw decomposition D is sorted into decreasing order and the columns of U
//     and V follow it through an in-place cycle-following permutation.

package matrix

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const (
	opSVD       = "SVD"
	opRecompose = "SVD.Recompose"
)

// machineEpsilon is the float64 unit roundoff (2^-52).
const machineEpsilon = 2.220446049250313e-16

// SVD holds a decomposition produced by NewSVD. The zero value is not usable.
type SVD struct {
	m, n int
	u    *Dense    // m×n
	d    []float64 // length n, non-increasing
	v    *Dense    // n×n
}

// NewSVD decomposes a.
//
// Errors:
//   - ErrNilMatrix, ErrNaNInf (non-finite input).
//   - ErrSVDFailed when the Jacobi sweeps do not converge within MaxSweeps
//     or the gonum backend reports failure.
func NewSVD(a Matrix, opts ...Option) (*SVD, error) {
	if err := ValidateFinite(a); err != nil {
		return nil, matrixErrorf(opSVD, err)
	}
	o := gatherOptions(opts...)

	var (
		s   *SVD
		err error
	)
	switch o.backend {
	case BackendGolubKahan:
		s, err = svdGolubKahan(a)
	default:
		s, err = svdJacobi(a, o.eps, o.maxSweeps)
	}
	if err != nil {
		return nil, matrixErrorf(opSVD, err)
	}
	s.sortDecreasing()

	return s, nil
}

// svdJacobi runs the one-sided (Hestenes) Jacobi method.
//
// Columns of A are orthogonalised pairwise by plane rotations that are accumulated in V.
// Working storage is transposed (w[j] is column j of A·V) so every rotation touches two
// contiguous slices.
func svdJacobi(a Matrix, eps float64, maxSweeps int) (*SVD, error) {
	m, n := a.Rows(), a.Cols()
	src, err := ToDense(a)
	if err != nil {
		return nil, err
	}
	w := make([]float64, n*m) // w[j*m+i] = A(i,j)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			w[j*m+i] = src.data[i*n+j]
		}
	}
	vt := make([]float64, n*n) // vt[j*n+k] = V(k,j)
	for j := 0; j < n; j++ {
		vt[j*n+j] = 1
	}
	// Columns whose norm falls below floor are numerically zero: they are never
	// rotated (their cosine with any column is meaningless) and yield D = 0.
	floor := vectorOf(w).Norm() * float64(m*n) * machineEpsilon
	negligible := floor * floor
	// A dot product of length m carries about m ulps of relative error.
	tol := math.Max(eps, float64(m)*machineEpsilon)

	var (
		p, q, k                int
		alpha, beta, gamma     float64
		zeta, t, c, s, wp, wq  float64
		rotated                bool
		colP, colQ, rowP, rowQ []float64
	)
	for sweep := 0; ; sweep++ {
		if sweep == maxSweeps {
			return nil, fmt.Errorf("no convergence after %d sweeps: %w", maxSweeps, ErrSVDFailed)
		}
		rotated = false
		for p = 0; p < n-1; p++ {
			colP = w[p*m : (p+1)*m]
			for q = p + 1; q < n; q++ {
				colQ = w[q*m : (q+1)*m]
				alpha, beta, gamma = ZeroSum, ZeroSum, ZeroSum
				for k = 0; k < m; k++ {
					alpha += colP[k] * colP[k]
					beta += colQ[k] * colQ[k]
					gamma += colP[k] * colQ[k]
				}
				if gamma == 0 || alpha <= negligible || beta <= negligible {
					continue
				}
				if math.Abs(gamma) <= tol*math.Sqrt(alpha*beta) {
					continue
				}
				rotated = true

				zeta = (beta - alpha) / (2 * gamma)
				t = math.Copysign(1.0/(math.Abs(zeta)+math.Hypot(zeta, 1)), zeta)
				c = 1.0 / math.Sqrt(1+t*t)
				s = c * t
				for k = 0; k < m; k++ {
					wp, wq = colP[k], colQ[k]
					colP[k] = c*wp - s*wq
					colQ[k] = s*wp + c*wq
				}
				rowP, rowQ = vt[p*n:(p+1)*n], vt[q*n:(q+1)*n]
				for k = 0; k < n; k++ {
					wp, wq = rowP[k], rowQ[k]
					rowP[k] = c*wp - s*wq
					rowQ[k] = s*wp + c*wq
				}
			}
		}
		if !rotated {
			break
		}
	}

	out := &SVD{m: m, n: n, d: make([]float64, n)}
	if out.u, err = NewDense(m, n); err != nil {
		return nil, err
	}
	if out.v, err = NewDense(n, n); err != nil {
		return nil, err
	}
	var sigma float64
	for j := 0; j < n; j++ {
		col := w[j*m : (j+1)*m]
		if sigma = vectorOf(col).Norm(); sigma > floor {
			out.d[j] = sigma
			for i := 0; i < m; i++ {
				out.u.data[i*n+j] = col[i] / sigma
			}
		}
		for k = 0; k < n; k++ {
			out.v.data[k*n+j] = vt[j*n+k]
		}
	}

	return out, nil
}

// svdGolubKahan delegates to gonum and reshapes the result to the package contract.
func svdGolubKahan(a Matrix) (*SVD, error) {
	m, n := a.Rows(), a.Cols()
	src, err := ToDense(a)
	if err != nil {
		return nil, err
	}

	var g mat.SVD
	if ok := g.Factorize(mat.NewDense(m, n, src.data), mat.SVDFull); !ok {
		return nil, fmt.Errorf("gonum factorization: %w", ErrSVDFailed)
	}
	values := g.Values(nil)
	var gu, gv mat.Dense
	g.UTo(&gu)
	g.VTo(&gv)

	out := &SVD{m: m, n: n, d: make([]float64, n)}
	copy(out.d, values)
	if out.u, err = NewDense(m, n); err != nil {
		return nil, err
	}
	if out.v, err = NewDense(n, n); err != nil {
		return nil, err
	}
	r := len(values)
	for i := 0; i < m; i++ {
		for j := 0; j < r; j++ {
			out.u.data[i*n+j] = gu.At(i, j)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.v.data[i*n+j] = gv.At(i, j)
		}
	}

	return out, nil
}

// sortDecreasing orders D from largest to smallest and permutes the columns of U and V
// to match. The permutation is applied in place by following its cycles with swaps.
func (s *SVD) sortDecreasing() {
	order := make([]int, s.n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return s.d[order[i]] > s.d[order[j]] })

	// dest[i] is the final position of the entry currently at i.
	dest := make([]int, s.n)
	for k, src := range order {
		dest[src] = k
	}
	var j int
	for i := 0; i < s.n; i++ {
		for dest[i] != i {
			j = dest[i]
			s.d[i], s.d[j] = s.d[j], s.d[i]
			swapCols(s.u, i, j)
			swapCols(s.v, i, j)
			dest[i], dest[j] = dest[j], dest[i]
		}
	}
}

// swapCols exchanges two columns of a row-major Dense in place.
func swapCols(m *Dense, i, j int) {
	for r := 0; r < m.r; r++ {
		base := r * m.c
		m.data[base+i], m.data[base+j] = m.data[base+j], m.data[base+i]
	}
}

// U returns a copy of the m×n left factor.
func (s *SVD) U() *Dense { return s.u.clone() }

// V returns a copy of the n×n right factor.
func (s *SVD) V() *Dense { return s.v.clone() }

// Values returns a copy of the singular values in decreasing order.
func (s *SVD) Values() []float64 {
	out := make([]float64, len(s.d))
	copy(out, s.d)

	return out
}

// SV returns the i-th singular value, or 0 when i is outside [0, n).
func (s *SVD) SV(i int) float64 {
	if i < 0 || i >= len(s.d) {
		return 0
	}

	return s.d[i]
}

// InvCond returns the ratio of the smallest to the largest singular value.
// A zero matrix yields 0.
func (s *SVD) InvCond() float64 {
	if s.d[0] == 0 {
		return 0
	}

	return s.d[len(s.d)-1] / s.d[0]
}

// Rank counts singular values strictly greater than tol·D[0].
func (s *SVD) Rank(tol float64) int {
	r := 0
	for _, v := range s.d {
		if v > tol*s.d[0] {
			r++
		}
	}

	return r
}

// Recompose returns U·diag(D)·Vᵀ.
func (s *SVD) Recompose() (*Dense, error) {
	ud := s.u.clone()
	for i := 0; i < ud.r; i++ {
		for j := 0; j < ud.c; j++ {
			ud.data[i*ud.c+j] *= s.d[j]
		}
	}
	vt, err := Transpose(s.v)
	if err != nil {
		return nil, matrixErrorf(opRecompose, err)
	}
	out, err := Mul(ud, vt)
	if err != nil {
		return nil, matrixErrorf(opRecompose, err)
	}

	return out, nil
}
