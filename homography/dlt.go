// SPDX-License-Identifier: MIT

package homography

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/katalvlaran/planar/matrix"
)

// Solve estimates H with x₂ ~ H·x₁ for every correspondence by the Direct Linear
// Transform.
//
// Each pair x₁ = (x, y, w), x₂ = (u, v, s) contributes two rows of x₂ × (H·x₁) = 0:
//
//	[ 0ᵀ     −s·x₁ᵀ   v·x₁ᵀ ]
//	[ s·x₁ᵀ   0ᵀ     −u·x₁ᵀ ]
//
// and H is the unique nullspace vector of the stacked 2n×9 design matrix.
//
// Errors:
//   - ErrInsufficientCorrespondences for fewer than MinCorrespondences pairs.
//   - ErrUnsolvable joined with the cause otherwise: ErrDegeneratePoints when
//     normalization cannot be built, the matrix error when the nullspace gate fails.
//
// Hartley normalization is skipped when any point has w = 0.
func Solve(corrs []Correspondence, opts ...Option) (Homography, error) {
	o := gatherOptions(opts...)
	if len(corrs) < MinCorrespondences {
		return Homography{}, fmt.Errorf("homography: Solve: %d pairs: %w", len(corrs), ErrInsufficientCorrespondences)
	}

	src := make([]r3.Vector, len(corrs))
	dst := make([]r3.Vector, len(corrs))
	for i, c := range corrs {
		src[i], dst[i] = c.Source, c.Target
	}
	t1, t2 := Identity(), Identity()
	normalize := o.normalize
	if normalize && (hasIdeal(src) || hasIdeal(dst)) {
		// ideal points have no centroid contribution; solve on the raw coordinates
		o.logger.Debugw("dlt normalization skipped", "pairs", len(corrs), "reason", "point at infinity")
		normalize = false
	}
	if normalize {
		var err error
		if src, t1, err = normalizePoints(src); err != nil {
			return Homography{}, fmt.Errorf("homography: Solve: source: %w", unsolvable(err))
		}
		if dst, t2, err = normalizePoints(dst); err != nil {
			return Homography{}, fmt.Errorf("homography: Solve: target: %w", unsolvable(err))
		}
	}

	a, err := designMatrix(src, dst)
	if err != nil {
		return Homography{}, unsolvable(err)
	}
	v, err := matrix.Nullspace(a, o.ratioExtremes, o.ratio2Min, o.svd...)
	if err != nil {
		o.logger.Debugw("dlt nullspace rejected", "pairs", len(corrs), "err", err)
		return Homography{}, unsolvable(err)
	}
	hn, err := FromParams(v)
	if err != nil {
		return Homography{}, unsolvable(err)
	}

	// H = T₂⁻¹·Ĥ·T₁
	h, err := denormalize(hn, t1, t2)
	if err != nil {
		return Homography{}, unsolvable(err)
	}
	if h, err = h.Normalize(); err != nil {
		return Homography{}, unsolvable(err)
	}
	o.logger.Debugw("dlt solved", "pairs", len(corrs), "normalized", normalize)

	return h, nil
}

// SolvePoints is Solve over Euclidean point lists.
func SolvePoints(src, dst []r2.Point, opts ...Option) (Homography, error) {
	corrs, err := Correspondences(src, dst)
	if err != nil {
		return Homography{}, err
	}

	return Solve(corrs, opts...)
}

func designMatrix(src, dst []r3.Vector) (*matrix.Dense, error) {
	data := make([]float64, 0, 18*len(src))
	for i := range src {
		x, u := src[i], dst[i]
		data = append(data,
			0, 0, 0, -u.Z*x.X, -u.Z*x.Y, -u.Z*x.Z, u.Y*x.X, u.Y*x.Y, u.Y*x.Z,
			u.Z*x.X, u.Z*x.Y, u.Z*x.Z, 0, 0, 0, -u.X*x.X, -u.X*x.Y, -u.X*x.Z,
		)
	}

	return matrix.NewDenseFrom(2*len(src), 9, data)
}

func hasIdeal(pts []r3.Vector) bool {
	for _, p := range pts {
		if p.Z == 0 {
			return true
		}
	}

	return false
}

// normalizePoints translates the centroid to the origin and scales the mean
// distance from it to √2. It returns the moved points (w = 1) and the transform.
func normalizePoints(pts []r3.Vector) ([]r3.Vector, Homography, error) {
	eu := make([]r2.Point, len(pts))
	var mu r2.Point
	for i, p := range pts {
		e, err := euclidean(p)
		if err != nil {
			return nil, Homography{}, err
		}
		eu[i] = e
		mu = mu.Add(e)
	}
	mu = mu.Mul(1 / float64(len(pts)))

	d := 0.0
	for _, e := range eu {
		d += e.Sub(mu).Norm()
	}
	d /= float64(len(pts))
	if d == 0 {
		return nil, Homography{}, ErrDegeneratePoints
	}

	scale := math.Sqrt2 / d
	t := Homography{
		{scale, 0, -scale * mu.X},
		{0, scale, -scale * mu.Y},
		{0, 0, 1},
	}
	out := make([]r3.Vector, len(eu))
	for i, e := range eu {
		out[i] = r3.Vector{X: scale * (e.X - mu.X), Y: scale * (e.Y - mu.Y), Z: 1}
	}

	return out, t, nil
}

// denormalize returns T₂⁻¹·Ĥ·T₁. T₂ is a similarity, inverted in closed form.
func denormalize(hn, t1, t2 Homography) (Homography, error) {
	s := t2[0][0]
	t2inv := Homography{
		{1 / s, 0, -t2[0][2] / s},
		{0, 1 / s, -t2[1][2] / s},
		{0, 0, 1},
	}
	left, err := t2inv.mul(hn)
	if err != nil {
		return Homography{}, err
	}

	return left.mul(t1)
}

func (h Homography) mul(g Homography) (Homography, error) {
	m, err := matrix.Mul(h.Matrix(), g.Matrix())
	if err != nil {
		return Homography{}, err
	}

	return New(m)
}
