// SPDX-License-Identifier: MIT

// Package matrix: the public Matrix interface shared by Dense and Vector.
// Kernels accept Matrix and unlock flat-slice fast paths when the dynamic
// type is *Dense or *Vector.
package matrix

// Matrix is a mutable rows×cols grid of float64. A Vector is an n×1 Matrix.
//
// Shape queries and element access are O(1); Clone is O(rows·cols).
type Matrix interface {
	// Rows is the row count.
	Rows() int

	// Cols is the column count.
	Cols() int

	// At reads element (i, j); ErrOutOfRange outside the shape.
	At(i, j int) (float64, error)

	// Set writes element (i, j); ErrOutOfRange outside the shape and
	// ErrNaNInf for non-finite values when the policy rejects them.
	Set(i, j int, v float64) error

	// Clone deep-copies the receiver, keeping its concrete type.
	Clone() Matrix
}
