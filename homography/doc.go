// SPDX-License-Identifier: MIT

// Package homography estimates planar homographies.
//
// Two estimators are provided:
//
//   - Solve: the Direct Linear Transform over ≥4 point correspondences, with
//     Hartley normalization of both point sets and the nullspace gate of
//     matrix.Nullspace deciding whether a unique solution exists.
//   - Refine / Estimate: Levenberg–Marquardt refinement against calibration
//     targets. Each Target pairs an image-space conic (usually an ellipse) with
//     the reference-plane position of its center; the residual is the distance
//     between the reference and the center of the conic pulled back through H
//     (HᵀSH).
//
// Every Homography returned by this package is normalized: det(H) ≥ 0 and
// H(2,2) = 1.
//
// Failures of the underlying linear algebra are reported as ErrUnsolvable joined
// with the cause, so callers can test either errors.Is(err, ErrUnsolvable) or the
// matrix sentinel (for example matrix.ErrAmbiguousNullspace).
package homography
