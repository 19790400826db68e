// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear algebra used by homography estimation.
//
// The matrix package provides:
//
//   - Dense, a row-major matrix whose accessors return errors instead of panicking,
//     and Vector, a single-column matrix with dot, cross and norm.
//   - Pure kernels (Add, Sub, Mul, Transpose, Scale, Hadamard, MatVec) with a flat-slice
//     fast path for *Dense operands and an interface fallback for any Matrix.
//   - SolveLU, Gaussian elimination with scaled partial pivoting, plus Det and Inverse.
//   - NewSVD with a one-sided Jacobi backend or gonum's Golub–Kahan backend.
//   - Nullspace, which returns a unique one-dimensional nullspace or a typed error.
//   - Eigen, a Jacobi solver for small symmetric matrices.
//
// Every failure is one of the sentinels in errors.go, wrapped with the name of
// the operation that produced it, so callers match with errors.Is.
//
// Matrices are small here (at most a few hundred rows): no blocking, no
// parallelism and no sparse storage.
package matrix
