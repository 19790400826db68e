// SPDX-License-Identifier: MIT

package homography

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/katalvlaran/planar/matrix"
)

// Homography is a 3×3 projective map between planes. Indices are [row][col].
// The parameter order used by refinement is row-major.
type Homography [3][3]float64

// Identity returns the identity map.
func Identity() Homography {
	return Homography{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// New copies a 3×3 matrix into a Homography.
func New(m matrix.Matrix) (Homography, error) {
	var h Homography
	if err := matrix.ValidateNotNil(m); err != nil {
		return h, err
	}
	if m.Rows() != 3 || m.Cols() != 3 {
		return h, fmt.Errorf("homography: New: %dx%d: %w", m.Rows(), m.Cols(), matrix.ErrShapeMismatch)
	}
	if err := matrix.ValidateFinite(m); err != nil {
		return h, err
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return Homography{}, err
			}
			h[i][j] = v
		}
	}

	return h, nil
}

// FromParams reshapes a 9-vector (row-major) into a Homography.
func FromParams(p *matrix.Vector) (Homography, error) {
	if p == nil {
		return Homography{}, matrix.ErrNilMatrix
	}
	if p.Len() != 9 {
		return Homography{}, fmt.Errorf("homography: FromParams: %d params: %w", p.Len(), matrix.ErrShapeMismatch)
	}
	var h Homography
	for k, v := range p.Data() {
		if !finite(v) {
			return Homography{}, fmt.Errorf("homography: FromParams: %w", matrix.ErrNaNInf)
		}
		h[k/3][k%3] = v
	}

	return h, nil
}

// Params flattens h row-major.
func (h Homography) Params() *matrix.Vector {
	v, _ := matrix.NewVectorFrom(h.flat())

	return v
}

func (h Homography) flat() []float64 {
	return []float64{
		h[0][0], h[0][1], h[0][2],
		h[1][0], h[1][1], h[1][2],
		h[2][0], h[2][1], h[2][2],
	}
}

// Matrix returns h as a dense 3×3 matrix.
func (h Homography) Matrix() *matrix.Dense {
	m, _ := matrix.NewDenseFrom(3, 3, h.flat())

	return m
}

func (h Homography) At(row, col int) float64 { return h[row][col] }

// ApplyHomogeneous returns H·v.
func (h Homography) ApplyHomogeneous(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: h[0][0]*v.X + h[0][1]*v.Y + h[0][2]*v.Z,
		Y: h[1][0]*v.X + h[1][1]*v.Y + h[1][2]*v.Z,
		Z: h[2][0]*v.X + h[2][1]*v.Y + h[2][2]*v.Z,
	}
}

// Apply maps a Euclidean point. It fails with ErrPointAtInfinity when the image
// lies on the line at infinity.
func (h Homography) Apply(pt r2.Point) (r2.Point, error) {
	return euclidean(h.ApplyHomogeneous(homogeneous(pt)))
}

// Det returns det(H).
func (h Homography) Det() float64 {
	return h[0][0]*(h[1][1]*h[2][2]-h[1][2]*h[2][1]) -
		h[0][1]*(h[1][0]*h[2][2]-h[1][2]*h[2][0]) +
		h[0][2]*(h[1][0]*h[2][1]-h[1][1]*h[2][0])
}

// Normalize negates h when det(H) < 0 and then divides through by H(2,2).
// ErrPointAtInfinity is returned when H(2,2) is zero, i.e. the origin maps to infinity.
func (h Homography) Normalize() (Homography, error) {
	if h.Det() < 0 {
		h = h.scale(-1)
	}
	if h[2][2] == 0 {
		return h, fmt.Errorf("homography: Normalize: %w", ErrPointAtInfinity)
	}

	return h.scale(1 / h[2][2]), nil
}

func (h Homography) scale(s float64) Homography {
	for i := range h {
		for j := range h[i] {
			h[i][j] *= s
		}
	}

	return h
}

// Inverse returns the normalized inverse map.
func (h Homography) Inverse() (Homography, error) {
	inv, err := matrix.Inverse(h.Matrix())
	if err != nil {
		return Homography{}, fmt.Errorf("homography: Inverse: %w", err)
	}
	out, err := New(inv)
	if err != nil {
		return Homography{}, err
	}

	return out.Normalize()
}

// Compose returns the normalized map x ↦ h(g(x)), i.e. H·G.
func (h Homography) Compose(g Homography) (Homography, error) {
	out, err := h.mul(g)
	if err != nil {
		return Homography{}, err
	}

	return out.Normalize()
}

// ApproxEqual reports whether |h − g| ≤ atol + rtol·|g| entry-wise. Normalize both
// first when they may differ by scale.
func (h Homography) ApproxEqual(g Homography, rtol, atol float64) bool {
	ok, err := matrix.AllClose(h.Matrix(), g.Matrix(), rtol, atol)

	return err == nil && ok
}

func (h Homography) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g; %g %g %g]",
		h[0][0], h[0][1], h[0][2], h[1][0], h[1][1], h[1][2], h[2][0], h[2][1], h[2][2])
}

func homogeneous(pt r2.Point) r3.Vector { return r3.Vector{X: pt.X, Y: pt.Y, Z: 1} }

func euclidean(v r3.Vector) (r2.Point, error) {
	if v.Z == 0 {
		return r2.Point{}, ErrPointAtInfinity
	}

	return r2.Point{X: v.X / v.Z, Y: v.Y / v.Z}, nil
}
