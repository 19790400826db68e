// SPDX-License-Identifier: MIT

package homography

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Correspondence pairs a source point with its image, both homogeneous.
type Correspondence struct {
	Source r3.Vector
	Target r3.Vector
}

// NewCorrespondence lifts a Euclidean pair to homogeneous coordinates (w = 1).
func NewCorrespondence(src, dst r2.Point) Correspondence {
	return Correspondence{Source: homogeneous(src), Target: homogeneous(dst)}
}

// Correspondences zips two point lists.
func Correspondences(src, dst []r2.Point) ([]Correspondence, error) {
	if len(src) != len(dst) {
		return nil, fmt.Errorf("homography: %d sources, %d targets: %w", len(src), len(dst), ErrLengthMismatch)
	}
	out := make([]Correspondence, len(src))
	for i := range src {
		out[i] = NewCorrespondence(src[i], dst[i])
	}

	return out, nil
}
