// SPDX-License-Identifier: MIT

package homography

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Evaluate maps every image-space center back through H⁻¹ and returns the RMSE of
// its Euclidean distance to the matching reference position.
func Evaluate(h Homography, centers, references []r2.Point) (float64, error) {
	if len(centers) != len(references) {
		return 0, fmt.Errorf("homography: Evaluate: %d centers, %d references: %w", len(centers), len(references), ErrLengthMismatch)
	}
	if len(centers) == 0 {
		return 0, fmt.Errorf("homography: Evaluate: %w", ErrInsufficientCorrespondences)
	}
	inv, err := h.Inverse()
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for i, c := range centers {
		p, err := inv.Apply(c)
		if err != nil {
			return 0, fmt.Errorf("homography: Evaluate: center %d: %w", i, err)
		}
		sum += sq(p.Sub(references[i]))
	}

	return math.Sqrt(sum / float64(len(centers))), nil
}

// EvaluateCorrespondences returns the RMSE of ‖H·source − target‖ in the target plane.
func EvaluateCorrespondences(h Homography, corrs []Correspondence) (float64, error) {
	if len(corrs) == 0 {
		return 0, fmt.Errorf("homography: EvaluateCorrespondences: %w", ErrInsufficientCorrespondences)
	}
	sum := 0.0
	for i, c := range corrs {
		got, err := euclidean(h.ApplyHomogeneous(c.Source))
		if err != nil {
			return 0, fmt.Errorf("homography: EvaluateCorrespondences: pair %d: %w", i, err)
		}
		want, err := euclidean(c.Target)
		if err != nil {
			return 0, fmt.Errorf("homography: EvaluateCorrespondences: pair %d: %w", i, err)
		}
		sum += sq(got.Sub(want))
	}

	return math.Sqrt(sum / float64(len(corrs))), nil
}

// EvaluateTargets returns the per-target RMSE of the refinement residual: the
// distance between each reference and the center of its conic pulled back through H.
func EvaluateTargets(h Homography, targets []Target) (float64, error) {
	if len(targets) == 0 {
		return 0, fmt.Errorf("homography: EvaluateTargets: %w", ErrInsufficientCorrespondences)
	}
	sum := 0.0
	for i, t := range targets {
		back, err := t.Conic.Transform(h)
		if err != nil {
			return 0, fmt.Errorf("homography: EvaluateTargets: target %d: %w", i, err)
		}
		c, err := back.Center()
		if err != nil {
			return 0, fmt.Errorf("homography: EvaluateTargets: target %d: %w", i, err)
		}
		sum += sq(c.Sub(t.Reference))
	}

	return math.Sqrt(sum / float64(len(targets))), nil
}

func sq(d r2.Point) float64 { return d.Dot(d) }
