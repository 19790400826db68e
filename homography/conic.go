// SPDX-License-Identifier: MIT

package homography

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/matrix"
)

const (
	// eigenTol bounds the off-diagonal residue of the 2×2 axis decomposition.
	eigenTol = 1e-12
	// eigenMaxIter is generous; a 2×2 Jacobi converges in one rotation.
	eigenMaxIter = 16
)

// Conic is the symmetric matrix S of ax² + bxy + cy² + dx + ey + f = 0:
//
//	S = [ a   b/2 d/2 ]
//	    [ b/2 c   e/2 ]
//	    [ d/2 e/2 f   ]
//
// S is defined up to a non-zero scale factor.
type Conic [3][3]float64

// Ellipse is the geometric form of an elliptical conic.
type Ellipse struct {
	Center    r2.Point
	SemiMajor float64
	SemiMinor float64
	Angle     float64 // major-axis direction in (−π/2, π/2]
}

// NewConic reads a symmetric 3×3 matrix.
func NewConic(s matrix.Matrix) (Conic, error) {
	if err := matrix.ValidateNotNil(s); err != nil {
		return Conic{}, err
	}
	if s.Rows() != 3 || s.Cols() != 3 {
		return Conic{}, fmt.Errorf("homography: NewConic: %dx%d: %w", s.Rows(), s.Cols(), matrix.ErrShapeMismatch)
	}
	if err := matrix.ValidateFinite(s); err != nil {
		return Conic{}, err
	}
	var c Conic
	scale := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := s.At(i, j)
			if err != nil {
				return Conic{}, err
			}
			c[i][j] = v
			scale = math.Max(scale, math.Abs(v))
		}
	}
	if err := matrix.ValidateSymmetric(s, 1e-12*math.Max(scale, 1)); err != nil {
		return Conic{}, err
	}

	return c, nil
}

// NewConicCoefficients builds the conic ax² + bxy + cy² + dx + ey + f = 0.
func NewConicCoefficients(a, b, c, d, e, f float64) Conic {
	return Conic{
		{a, b / 2, d / 2},
		{b / 2, c, e / 2},
		{d / 2, e / 2, f},
	}
}

// NewEllipse builds the ellipse with the given center, semi-axes and rotation
// (radians, counter-clockwise from +x to the first axis).
func NewEllipse(center r2.Point, semiA, semiB, angle float64) (Conic, error) {
	if !finite(semiA) || !finite(semiB) || semiA <= 0 || semiB <= 0 ||
		!finite(center.X) || !finite(center.Y) || !finite(angle) {
		return Conic{}, fmt.Errorf("homography: NewEllipse: axes %g, %g: %w", semiA, semiB, ErrDegenerateConic)
	}
	cs, sn := math.Cos(angle), math.Sin(angle)
	ia, ib := 1/(semiA*semiA), 1/(semiB*semiB)
	// M = R·diag(1/a², 1/b²)·Rᵀ
	m00 := cs*cs*ia + sn*sn*ib
	m01 := cs * sn * (ia - ib)
	m11 := sn*sn*ia + cs*cs*ib
	// g = −M·c
	g0 := -(m00*center.X + m01*center.Y)
	g1 := -(m01*center.X + m11*center.Y)
	f := -(g0*center.X + g1*center.Y) - 1

	return Conic{
		{m00, m01, g0},
		{m01, m11, g1},
		{g0, g1, f},
	}, nil
}

// NewCircle builds the circle of radius r around center.
func NewCircle(center r2.Point, r float64) (Conic, error) {
	return NewEllipse(center, r, r, 0)
}

// Coefficients returns (a, b, c, d, e, f).
func (c Conic) Coefficients() [6]float64 {
	return [6]float64{c[0][0], 2 * c[0][1], c[1][1], 2 * c[0][2], 2 * c[1][2], c[2][2]}
}

// Matrix returns S.
func (c Conic) Matrix() *matrix.Dense {
	m, _ := matrix.NewDenseFrom(3, 3, []float64{
		c[0][0], c[0][1], c[0][2],
		c[1][0], c[1][1], c[1][2],
		c[2][0], c[2][1], c[2][2],
	})

	return m
}

// Center solves A·x = −g for the upper-left block A and g = S[0:2, 2].
// ErrDegenerateConic is returned when A is singular (parabolas, line pairs).
func (c Conic) Center() (r2.Point, error) {
	x, err := c.center()
	if err != nil {
		return r2.Point{}, err
	}

	return r2.Point{X: x[0], Y: x[1]}, nil
}

func (c Conic) center() ([2]float64, error) {
	a, err := matrix.NewDenseFrom(2, 2, []float64{c[0][0], c[0][1], c[1][0], c[1][1]})
	if err != nil {
		return [2]float64{}, fmt.Errorf("homography: conic center: %w", err)
	}
	g, err := matrix.NewVectorFrom([]float64{-c[0][2], -c[1][2]})
	if err != nil {
		return [2]float64{}, fmt.Errorf("homography: conic center: %w", err)
	}
	x, err := matrix.SolveLUVec(a, g)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) || errors.Is(err, matrix.ErrNaNInf) {
			return [2]float64{}, fmt.Errorf("homography: conic center: %w: %w", ErrDegenerateConic, err)
		}
		return [2]float64{}, err
	}
	d := x.Data()

	return [2]float64{d[0], d[1]}, nil
}

// Transform pulls c back through h: S' = HᵀSH. If S lives in the target plane of h,
// S' is the same curve expressed in the source plane.
func (c Conic) Transform(h Homography) (Conic, error) {
	ht, err := matrix.Transpose(h.Matrix())
	if err != nil {
		return Conic{}, err
	}
	sh, err := matrix.Mul(c.Matrix(), h.Matrix())
	if err != nil {
		return Conic{}, err
	}
	out, err := matrix.Mul(ht, sh)
	if err != nil {
		return Conic{}, err
	}
	// round-off leaves HᵀSH a few ulps from symmetric
	sym, err := matrix.Symmetrize(out)
	if err != nil {
		return Conic{}, err
	}

	return NewConic(sym)
}

// Ellipse recovers center, semi-axes and orientation. ErrDegenerateConic is
// returned unless c is a real, non-degenerate ellipse.
func (c Conic) Ellipse() (Ellipse, error) {
	ctr, err := c.center()
	if err != nil {
		return Ellipse{}, err
	}
	// (x−c)ᵀA(x−c) = k with k = −(f + gᵀc)
	k := -(c[2][2] + c[0][2]*ctr[0] + c[1][2]*ctr[1])
	if k == 0 || !finite(k) {
		return Ellipse{}, fmt.Errorf("homography: Ellipse: %w", ErrDegenerateConic)
	}
	off := (c[0][1] + c[1][0]) / 2
	a, err := matrix.NewDenseFrom(2, 2, []float64{c[0][0] / k, off / k, off / k, c[1][1] / k})
	if err != nil {
		return Ellipse{}, fmt.Errorf("homography: Ellipse: %w: %w", ErrDegenerateConic, err)
	}
	vals, vecs, err := matrix.Eigen(a, eigenTol*math.Max(maxAbs(a), 1), eigenMaxIter)
	if err != nil {
		return Ellipse{}, fmt.Errorf("homography: Ellipse: %w", err)
	}
	if vals[0] <= 0 || vals[1] <= 0 {
		return Ellipse{}, fmt.Errorf("homography: Ellipse: eigenvalues %g, %g: %w", vals[0], vals[1], ErrDegenerateConic)
	}

	// the smaller eigenvalue belongs to the major axis
	major := 0
	if vals[1] < vals[0] {
		major = 1
	}
	qx, err := vecs.At(0, major)
	if err != nil {
		return Ellipse{}, err
	}
	qy, err := vecs.At(1, major)
	if err != nil {
		return Ellipse{}, err
	}
	angle := math.Atan2(qy, qx)
	if angle <= -math.Pi/2 {
		angle += math.Pi
	} else if angle > math.Pi/2 {
		angle -= math.Pi
	}

	return Ellipse{
		Center:    r2.Point{X: ctr[0], Y: ctr[1]},
		SemiMajor: 1 / math.Sqrt(vals[major]),
		SemiMinor: 1 / math.Sqrt(vals[1-major]),
		Angle:     angle,
	}, nil
}

// maxAbs returns the largest entry magnitude of a.
func maxAbs(a *matrix.Dense) float64 {
	m := 0.0
	for _, v := range a.RawData() {
		m = math.Max(m, math.Abs(v))
	}

	return m
}
