// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set (unified, consistent).
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All kernels MUST return these sentinels and tests MUST check them
// via errors.Is. No kernel should panic on user-triggered error conditions.
// Panics are reserved for programmer errors in option constructors.

package matrix

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs. Kernels wrap with matrixErrorf(op, err) so the
// caller sees "Op: matrix: ..." and can still match with errors.Is.
//
// ERROR PRIORITY (documented, enforced in tests):
// nil -> shape/index/NaN -> dimension mismatch -> numeric failures
// (singular, nullspace, convergence).

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrShapeMismatch indicates incompatible dimensions between operands,
	// e.g., Add/Sub with different shapes, or Mul where a.Cols != b.Rows.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated symmetry
	// within the configured tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value was encountered where finite values
	// are required by the numeric policy.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNotThreeVector is returned by Cross when an operand is not a 3-vector.
	ErrNotThreeVector = errors.New("matrix: cross product requires 3-element vectors")

	// ErrZeroVector is returned when a direction is requested from a zero-norm vector.
	ErrZeroVector = errors.New("matrix: zero-norm vector")

	// ErrSingular is returned when elimination finds an identically zero row
	// or no usable pivot in a column.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrMatrixEigenFailed indicates that the Jacobi eigen routine failed to converge
	// under the given tolerance/iterations.
	ErrMatrixEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrSVDFailed indicates that the singular value decomposition did not converge
	// or the backend refused the input.
	ErrSVDFailed = errors.New("matrix: singular value decomposition failed")

	// ErrUnderdetermined is returned when a system has too few equations
	// for the requested solution (e.g. Nullspace on fewer than n-1 rows).
	ErrUnderdetermined = errors.New("matrix: underdetermined system")

	// ErrAmbiguousNullspace is returned when more than one singular value is
	// small and they cannot be separated: the nullspace is not one-dimensional.
	ErrAmbiguousNullspace = errors.New("matrix: ambiguous nullspace")

	// ErrNoNullspace is returned when even the smallest singular value is
	// large relative to the largest one.
	ErrNoNullspace = errors.New("matrix: no nullspace within tolerance")
)

// BACKWARD-COMPATIBILITY ALIASES.
// Semantically identical sentinels kept for callers using the older names.

// ErrDimensionMismatch names the same condition as ErrShapeMismatch.
var ErrDimensionMismatch = ErrShapeMismatch // Deprecated: use ErrShapeMismatch.

// ErrIndexOutOfBounds names the same condition as ErrOutOfRange.
var ErrIndexOutOfBounds = ErrOutOfRange // Deprecated: use ErrOutOfRange.

// ErrEigenFailed aliases ErrMatrixEigenFailed.
var ErrEigenFailed = ErrMatrixEigenFailed // Deprecated: use ErrMatrixEigenFailed.
