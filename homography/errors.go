// SPDX-License-Identifier: MIT

package homography

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/planar/matrix"
)

var (
	// ErrInsufficientCorrespondences is returned when fewer than MinCorrespondences
	// pairs (or targets) are supplied.
	ErrInsufficientCorrespondences = fmt.Errorf("homography: insufficient correspondences: %w", matrix.ErrUnderdetermined)

	// ErrUnsolvable is returned when no usable homography can be extracted.
	ErrUnsolvable = errors.New("homography: unsolvable")

	// ErrDegenerateConic indicates a conic without a finite center or, for
	// Ellipse, one that is not a real ellipse.
	ErrDegenerateConic = errors.New("homography: degenerate conic")

	// ErrPointAtInfinity indicates a homogeneous point with w = 0 where a
	// Euclidean point is required.
	ErrPointAtInfinity = errors.New("homography: point at infinity")

	// ErrDegeneratePoints indicates a point set whose members all coincide.
	ErrDegeneratePoints = errors.New("homography: coincident points")

	// ErrLengthMismatch is returned when paired inputs have different lengths.
	ErrLengthMismatch = fmt.Errorf("homography: length mismatch: %w", matrix.ErrShapeMismatch)
)

// unsolvable joins ErrUnsolvable with its cause.
func unsolvable(cause error) error {
	return fmt.Errorf("%w: %w", ErrUnsolvable, cause)
}
