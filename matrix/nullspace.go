// SPDX-License-Identifier: MIT

package matrix

import "fmt"

const (
	opNullspace = "Nullspace"
	opRank2     = "EnforceRank2"
)

// Nullspace gate defaults.
const (
	// DefaultRatioExtremes bounds D[n-1]/D[0]: the smallest singular value must be
	// at most this fraction of the largest.
	DefaultRatioExtremes = 1e-2

	// DefaultRatio2Min bounds D[n-1]/D[n-2] when the second-smallest value is small too.
	DefaultRatio2Min = 0.5
)

// Nullspace returns the unit right-singular vector of the smallest singular value of a,
// provided a has a unique one-dimensional nullspace.
//
// Gate, with D sorted decreasing and n = a.Cols():
//   - D[n-1] ≤ ratioExtremes·D[0], otherwise ErrNoNullspace.
//   - When D[n-2] ≤ ratioExtremes·D[0] as well, D[n-1] < ratio2Min·D[n-2] is required,
//     otherwise ErrAmbiguousNullspace. Two exact zeros are therefore ambiguous.
//
// Errors:
//   - ErrUnderdetermined when a has fewer than n−1 rows.
//   - Any NewSVD error.
func Nullspace(a Matrix, ratioExtremes, ratio2Min float64, opts ...Option) (*Vector, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opNullspace, err)
	}
	n := a.Cols()
	if a.Rows() < n-1 {
		return nil, matrixErrorf(opNullspace, fmt.Errorf("%d rows for %d unknowns: %w", a.Rows(), n, ErrUnderdetermined))
	}
	svd, err := NewSVD(a, opts...)
	if err != nil {
		return nil, matrixErrorf(opNullspace, err)
	}

	largest, smallest := svd.SV(0), svd.SV(n-1)
	if largest == 0 && n > 1 {
		return nil, matrixErrorf(opNullspace, ErrAmbiguousNullspace)
	}
	if smallest > ratioExtremes*largest {
		return nil, matrixErrorf(opNullspace, ErrNoNullspace)
	}
	if n > 1 {
		second := svd.SV(n - 2)
		if second <= ratioExtremes*largest && !(smallest < ratio2Min*second) {
			return nil, matrixErrorf(opNullspace, ErrAmbiguousNullspace)
		}
	}

	col, err := svd.v.Col(n - 1)
	if err != nil {
		return nil, matrixErrorf(opNullspace, err)
	}

	return col, nil
}

// NullspaceDefault is Nullspace with DefaultRatioExtremes and DefaultRatio2Min.
func NullspaceDefault(a Matrix) (*Vector, error) {
	return Nullspace(a, DefaultRatioExtremes, DefaultRatio2Min)
}

// EnforceRank2 projects a 3×3 matrix onto the rank-2 manifold by zeroing its
// smallest singular value and recomposing.
func EnforceRank2(a Matrix) (*Dense, error) {
	if err := ValidateSquareNonNil(a); err != nil {
		return nil, matrixErrorf(opRank2, err)
	}
	if a.Rows() != 3 {
		return nil, matrixErrorf(opRank2, ErrShapeMismatch)
	}
	svd, err := NewSVD(a)
	if err != nil {
		return nil, matrixErrorf(opRank2, err)
	}
	svd.d[2] = 0
	out, err := svd.Recompose()
	if err != nil {
		return nil, matrixErrorf(opRank2, err)
	}

	return out, nil
}
