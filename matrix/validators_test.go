// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the matrix validators.
package matrix_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/planar/matrix"
	"github.com/stretchr/testify/require"
)

// TestValidateSameShape covers nil inputs, matching and mismatched dimensions.
func TestValidateSameShape(t *testing.T) {
	t.Parallel()

	// helper matrix implementation
	identity := func(r, c int) matrix.Matrix {
		m, err := matrix.NewDense(r, c)
		require.NoError(t, err)
		return m
	}

	tests := []struct {
		name    string
		a, b    matrix.Matrix
		wantErr error
	}{
		{"both nil", nil, nil, matrix.ErrNilMatrix},
		{"first nil", nil, identity(2, 2), matrix.ErrNilMatrix},
		{"second nil", identity(2, 2), nil, matrix.ErrNilMatrix},
		{"typed nil vector", (*matrix.Vector)(nil), identity(2, 1), matrix.ErrNilMatrix},
		{"equal 2x3", identity(2, 3), identity(2, 3), nil},
		{"row mismatch", identity(2, 3), identity(3, 3), matrix.ErrShapeMismatch},
		{"col mismatch", identity(2, 3), identity(2, 4), matrix.ErrShapeMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := matrix.ValidateSameShape(tc.a, tc.b)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Truef(t, errors.Is(err, tc.wantErr),
					"expected errors.Is(%v, %v)", err, tc.wantErr)
			}
		})
	}
}

// TestValidateSquare covers nil inputs, square and non-square cases.
func TestValidateSquare(t *testing.T) {
	t.Parallel()

	identity := func(n int) matrix.Matrix {
		m, err := matrix.NewDense(n, n)
		require.NoError(t, err)
		return m
	}

	tests := []struct {
		name string
		m    matrix.Matrix
		want error
	}{
		{"nil", nil, matrix.ErrNilMatrix},
		{"typed nil dense", (*matrix.Dense)(nil), matrix.ErrNilMatrix},
		{"1x1", identity(1), nil},
		{"3x3", identity(3), nil},
		{"2x3", func() matrix.Matrix { m, _ := matrix.NewDense(2, 3); return m }(), matrix.ErrShapeMismatch},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := matrix.ValidateSquare(tc.m)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Truef(t, errors.Is(err, tc.want),
					"expected errors.Is(%v, %v)", err, tc.want)
			}
		})
	}
}

func TestValidateSymmetricAndFinite(t *testing.T) {
	t.Parallel()

	sym := NewFilledDense(t, 2, 2, []float64{1, 2, 2, 1})
	require.NoError(t, matrix.ValidateSymmetric(sym, 0))
	require.NoError(t, matrix.ValidateSymmetric(hide{sym}, 0))

	asym := NewFilledDense(t, 2, 2, []float64{1, 2, 2.1, 1})
	require.ErrorIs(t, matrix.ValidateSymmetric(asym, 1e-3), matrix.ErrAsymmetry)
	require.NoError(t, matrix.ValidateSymmetric(asym, 0.2))
	require.ErrorIs(t, matrix.ValidateSymmetric(sym, -1), matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateSymmetric(MustDense(t, 2, 3), 0), matrix.ErrNonSquare)

	require.NoError(t, matrix.ValidateFinite(sym))
	require.ErrorIs(t, matrix.ValidateFinite(nil), matrix.ErrNilMatrix)
}

func TestValidateMulCompatibleAndVecLen(t *testing.T) {
	t.Parallel()

	require.NoError(t, matrix.ValidateMulCompatible(MustDense(t, 2, 3), MustDense(t, 3, 1)))
	require.ErrorIs(t, matrix.ValidateMulCompatible(MustDense(t, 2, 3), MustDense(t, 2, 1)), matrix.ErrShapeMismatch)
	require.ErrorIs(t, matrix.ValidateVecLen(nil, 1), matrix.ErrNilMatrix)
	require.ErrorIs(t, matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrShapeMismatch)
}
