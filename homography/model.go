// SPDX-License-Identifier: MIT

package homography

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/matrix"
)

// Target is a calibration mark: its conic as observed in the image and the
// position of its center on the reference plane.
type Target struct {
	Conic     Conic
	Reference r2.Point
}

// TargetModel is the lm.Model of target-based refinement. Parameters are the nine
// row-major entries of an H mapping the reference plane to the image. For every
// target the model predicts two values: the center of the image conic pulled back
// through H (HᵀSH), which should coincide with the target's reference position.
type TargetModel struct {
	targets []Target
	mode    JacobianMode
	step    float64
}

// NewTargetModel copies targets. Only WithJacobian and WithDifferenceStep apply.
func NewTargetModel(targets []Target, opts ...Option) (*TargetModel, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("homography: NewTargetModel: %w", ErrInsufficientCorrespondences)
	}
	o := gatherOptions(opts...)

	return &TargetModel{
		targets: append([]Target(nil), targets...),
		mode:    o.jacobian,
		step:    o.step,
	}, nil
}

// Len returns the residual count, two per target.
func (m *TargetModel) Len() int { return 2 * len(m.targets) }

// Observations returns the reference positions flattened as (x₀, y₀, x₁, y₁, …).
func (m *TargetModel) Observations() *matrix.Vector {
	out := make([]float64, 0, m.Len())
	for _, t := range m.targets {
		out = append(out, t.Reference.X, t.Reference.Y)
	}
	v, _ := matrix.NewVectorFrom(out)

	return v
}

// Data returns the pulled-back conic centers for parameters p.
func (m *TargetModel) Data(p *matrix.Vector) (*matrix.Vector, error) {
	h, err := FromParams(p)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, m.Len())
	for i, t := range m.targets {
		back, err := t.Conic.Transform(h)
		if err != nil {
			return nil, fmt.Errorf("homography: target %d: %w", i, err)
		}
		c, err := back.center()
		if err != nil {
			return nil, fmt.Errorf("homography: target %d: %w", i, err)
		}
		out = append(out, c[0], c[1])
	}

	return matrix.NewVectorFrom(out)
}

// Jacobian returns ∂Data/∂p, a Len()×9 matrix.
func (m *TargetModel) Jacobian(p *matrix.Vector) (*matrix.Dense, error) {
	if m.mode == ForwardDifference {
		return m.forwardDifference(p)
	}

	return m.analytic(p)
}

// analytic differentiates A'·c' = −g' with C' = HᵀSH:
//
//	∂C'/∂H_ij = E_ijᵀ·S·H + Hᵀ·S·E_ij
//	∂c'       = −A'⁻¹·(∂A'·c' + ∂g')
func (m *TargetModel) analytic(p *matrix.Vector) (*matrix.Dense, error) {
	h, err := FromParams(p)
	if err != nil {
		return nil, err
	}
	jac, err := matrix.NewDense(m.Len(), 9)
	if err != nil {
		return nil, err
	}
	for t, tg := range m.targets {
		sh := mul3(tg.Conic, h)
		back, err := tg.Conic.Transform(h)
		if err != nil {
			return nil, fmt.Errorf("homography: target %d: %w", t, err)
		}
		c, err := back.center()
		if err != nil {
			return nil, fmt.Errorf("homography: target %d: %w", t, err)
		}

		rhs := make([]float64, 2*9) // 2×9 row-major
		for k := 0; k < 9; k++ {
			i, j := k/3, k%3
			// X = E_ijᵀ·S·H has row j equal to row i of S·H; ∂C' = X + Xᵀ
			dc := func(r, s int) float64 {
				v := 0.0
				if r == j {
					v += sh[i][s]
				}
				if s == j {
					v += sh[i][r]
				}
				return v
			}
			for r := 0; r < 2; r++ {
				rhs[r*9+k] = -(dc(r, 0)*c[0] + dc(r, 1)*c[1] + dc(r, 2))
			}
		}
		a, err := matrix.NewDenseFrom(2, 2, []float64{back[0][0], back[0][1], back[1][0], back[1][1]})
		if err != nil {
			return nil, err
		}
		b, err := matrix.NewDenseFrom(2, 9, rhs)
		if err != nil {
			return nil, err
		}
		d, err := matrix.SolveLU(a, b)
		if err != nil {
			return nil, fmt.Errorf("homography: target %d: %w: %w", t, ErrDegenerateConic, err)
		}
		if err = jac.Paste(2*t, 0, d); err != nil {
			return nil, err
		}
	}

	return jac, nil
}

// forwardDifference computes J(:, i) = (r(p + dx·eᵢ) − r(p)) / dx.
func (m *TargetModel) forwardDifference(p *matrix.Vector) (*matrix.Dense, error) {
	r, err := m.Data(p)
	if err != nil {
		return nil, err
	}
	jac, err := matrix.NewDense(m.Len(), p.Len())
	if err != nil {
		return nil, err
	}
	base := p.Data()
	for i := range base {
		shifted := append([]float64(nil), base...)
		shifted[i] += m.step
		ps, err := matrix.NewVectorFrom(shifted)
		if err != nil {
			return nil, err
		}
		rd, err := m.Data(ps)
		if err != nil {
			return nil, err
		}
		diff, err := rd.Sub(r)
		if err != nil {
			return nil, err
		}
		if err = jac.Paste(0, i, diff.Scale(1/m.step)); err != nil {
			return nil, err
		}
	}

	return jac, nil
}

// mul3 returns S·H.
func mul3(s Conic, h Homography) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = s[i][0]*h[0][j] + s[i][1]*h[1][j] + s[i][2]*h[2][j]
		}
	}

	return out
}
