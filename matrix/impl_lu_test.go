// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/planar/matrix"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveLUKnownSystem(t *testing.T) {
	// 2x + y = 3, x + 3y = 5  →  x = 0.8, y = 1.4
	a := NewFilledDense(t, 2, 2, []float64{2, 1, 1, 3})
	b := NewFilledDense(t, 2, 1, []float64{3, 5})

	x, err := matrix.SolveLU(a, b)
	require.NoError(t, err)
	require.InDelta(t, 0.8, MustAt(t, x, 0, 0), tolExact)
	require.InDelta(t, 1.4, MustAt(t, x, 1, 0), tolExact)

	// inputs are not modified
	require.Equal(t, []float64{2, 1, 1, 3}, a.RawData())
	require.Equal(t, []float64{3, 5}, b.RawData())
}

func TestSolveLUNeedsPivoting(t *testing.T) {
	// zero in the leading position forces a row exchange
	a := NewFilledDense(t, 3, 3, []float64{
		0, 2, 1,
		1, 1, 1,
		2, 1, 0,
	})
	want := MustVector(t, 1, -2, 3)
	b, err := matrix.MulVec(a, want)
	require.NoError(t, err)

	x, err := matrix.SolveLUVec(a, b)
	require.NoError(t, err)
	RequireClose(t, want, x, tolExact)
}

func TestSolveLUSingular(t *testing.T) {
	t.Run("zero row", func(t *testing.T) {
		a := NewFilledDense(t, 3, 3, []float64{1, 2, 3, 0, 0, 0, 4, 5, 6})
		_, err := matrix.SolveLU(a, IdentityDense(t, 3))
		require.ErrorIs(t, err, matrix.ErrSingular)
	})
	t.Run("dependent rows", func(t *testing.T) {
		a := NewFilledDense(t, 2, 2, []float64{1, 2, 2, 4})
		_, err := matrix.SolveLU(a, IdentityDense(t, 2))
		require.ErrorIs(t, err, matrix.ErrSingular)
	})
	t.Run("shape", func(t *testing.T) {
		_, err := matrix.SolveLU(MustDense(t, 2, 3), MustDense(t, 2, 1))
		require.ErrorIs(t, err, matrix.ErrNonSquare)
		require.ErrorIs(t, err, matrix.ErrShapeMismatch)
		_, err = matrix.SolveLU(IdentityDense(t, 2), MustDense(t, 3, 1))
		require.ErrorIs(t, err, matrix.ErrShapeMismatch)
	})
}

// The pivot permutation is applied to the right-hand side only; a reference LU must agree.
func TestSolveLUMatchesGonum(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		n := 2 + int(seed%6)
		a := RandFilledDense(t, n, n, seed)
		// badly scaled rows exercise the implicit scaling
		require.NoError(t, a.ScaleRow(0, 1e6))
		b := RandFilledDense(t, n, 2, seed+100)

		x, err := matrix.SolveLU(a, b)
		require.NoError(t, err)

		var lu mat.LU
		lu.Factorize(toGonum(t, a))
		var ref mat.Dense
		require.NoError(t, lu.SolveTo(&ref, false, toGonum(t, b)))

		for i := 0; i < n; i++ {
			for j := 0; j < 2; j++ {
				require.InDeltaf(t, ref.At(i, j), MustAt(t, x, i, j), 1e-7*(1+math.Abs(ref.At(i, j))), "seed %d (%d,%d)", seed, i, j)
			}
		}
	}
}

func TestSolveLURoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("SolveLU(A, A·X) == X", prop.ForAll(
		func(n int, seed int64) bool {
			a := WellConditioned(t, n, seed)
			want := RandFilledDense(t, n, 1, seed^0x5eed)
			b, err := matrix.Mul(a, want)
			if err != nil {
				return false
			}
			got, err := matrix.SolveLU(a, b)
			if err != nil {
				return false
			}
			ok, err := matrix.AllClose(got, want, 1e-9, 1e-9)

			return err == nil && ok
		},
		gen.IntRange(1, 12),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestDetInverse(t *testing.T) {
	a := NewFilledDense(t, 3, 3, []float64{
		0, 2, 1,
		1, 1, 1,
		2, 1, 0,
	})
	det, err := matrix.Det(a)
	require.NoError(t, err)
	require.InDelta(t, mat.Det(toGonum(t, a)), det, tolExact)

	inv, err := matrix.Inverse(a)
	require.NoError(t, err)
	id, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	RequireClose(t, IdentityDense(t, 3), id, tolExact)

	det, err = matrix.Det(NewFilledDense(t, 2, 2, []float64{1, 2, 2, 4}))
	require.NoError(t, err)
	require.Zero(t, det)

	_, err = matrix.Inverse(NewFilledDense(t, 2, 2, []float64{1, 2, 2, 4}))
	require.ErrorIs(t, err, matrix.ErrSingular)
}
