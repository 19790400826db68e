// SPDX-License-Identifier: MIT

package lm

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/planar/matrix"
)

// Model is a residual model: Data predicts the observations for parameters p and
// Jacobian returns ∂Data/∂p as a len(data)×len(p) matrix.
//
// A Model is owned by the caller and must not be mutated while Minimize runs.
type Model interface {
	Data(p *matrix.Vector) (*matrix.Vector, error)
	Jacobian(p *matrix.Vector) (*matrix.Dense, error)
}

// Status tells why the iteration stopped.
type Status int

const (
	// StatusTargetReached means err² ≤ target²·n.
	StatusTargetReached Status = iota
	// StatusConverged means a step changed the error by at most RelativeTol·error.
	StatusConverged
	// StatusExhausted means MaxIters iterations ran without reaching the target.
	StatusExhausted
	// StatusStationary means every parameter direction was unobservable (JᵀJ ≈ 0).
	StatusStationary
	// StatusCanceled means the context ended between iterations.
	StatusCanceled
)

var statusNames = [...]string{"target-reached", "converged", "exhausted", "stationary", "canceled"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}

	return statusNames[s]
}

// MarshalText renders the status name in YAML and JSON output.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is the outcome of a minimization.
type Result struct {
	Params      *matrix.Vector // best parameters found
	RMSE        float64        // sqrt(err²/n) at Params
	Iterations  int            // damped solves attempted
	Evaluations int            // calls to Model.Data
	Lambda      float64        // damping at exit
	Status      Status
}

// Minimizer runs Levenberg–Marquardt with a fixed configuration.
// It holds no per-call state and is safe for concurrent use.
type Minimizer struct {
	opts Options
}

// NewMinimizer resolves opts over the documented defaults.
func NewMinimizer(opts ...Option) *Minimizer {
	return &Minimizer{opts: gatherOptions(opts...)}
}

// Options returns the resolved configuration.
func (m *Minimizer) Options() Options { return m.opts }

// Minimize is MinimizeContext with context.Background().
func (m *Minimizer) Minimize(model Model, p0, y *matrix.Vector) (Result, error) {
	return m.MinimizeContext(context.Background(), model, p0, y)
}

// normal holds the compressed normal equations of one linearization point.
type normal struct {
	jtj  *matrix.Dense  // compressed JᵀJ
	b    *matrix.Vector // compressed Jᵀe
	keep []int          // surviving parameter indices
}

// MinimizeContext minimizes ‖y − model.Data(p)‖ starting at p0.
//
// The context is checked between iterations; on cancellation the best result so far
// is returned together with ctx.Err().
//
// Errors:
//   - ErrNilModel, ErrResidualLength, ErrJacobianShape, ErrNonFinite.
//   - Any error returned by the model.
func (m *Minimizer) MinimizeContext(ctx context.Context, model Model, p0, y *matrix.Vector) (Result, error) {
	if model == nil || p0 == nil || y == nil {
		return Result{}, ErrNilModel
	}
	o := m.opts
	log := o.logger
	n := float64(y.Len())

	p := p0.Scale(1)
	e, err2, err := residual(model, p, y)
	if err != nil {
		return Result{}, err
	}
	if !finite(err2) {
		return Result{}, ErrNonFinite
	}
	res := Result{Params: p, Evaluations: 1, Lambda: o.lambdaInit, Status: StatusExhausted}
	finish := func(status Status) Result {
		res.Params, res.Status = p, status
		res.RMSE = math.Sqrt(err2 / n)
		log.Debugw("lm done", "status", status, "iterations", res.Iterations, "rmse", res.RMSE, "lambda", res.Lambda)

		return res
	}

	ne, err := linearize(model, p, e, o.kernelEpsilon)
	if err != nil {
		return Result{}, err
	}
	if len(ne.keep) == 0 {
		return finish(StatusStationary), nil
	}

	target := o.targetRMSE * o.targetRMSE * n
	lambda := o.lambdaInit
	for res.Iterations < o.maxIters && err2 > target {
		if ctx.Err() != nil {
			return finish(StatusCanceled), ctx.Err()
		}
		res.Iterations++

		delta, err := solveDamped(ne, lambda, p.Len())
		if err != nil {
			if !errors.Is(err, matrix.ErrSingular) && !errors.Is(err, matrix.ErrNaNInf) {
				return Result{}, err
			}
			log.Debugw("lm rejected damped system", "err", err, "iter", res.Iterations, "lambda", lambda)
			lambda *= o.lambdaFactor
			res.Lambda = lambda

			continue
		}
		trial, err := p.Add(delta)
		if err != nil {
			return Result{}, err
		}
		te, terr2, err := residual(model, trial, y)
		if err != nil {
			return Result{}, err
		}
		res.Evaluations++

		prev, next := math.Sqrt(err2), math.Sqrt(terr2)
		log.Debugw("lm iteration", "iter", res.Iterations, "lambda", lambda, "error", prev, "trial", next)
		switch {
		case !finite(terr2) || next > prev:
			if finite(terr2) && math.Abs(next-prev) <= o.relativeTol*prev {
				return finish(StatusConverged), nil
			}
			lambda *= o.lambdaFactor
		default:
			p, e, err2 = trial, te, terr2
			lambda /= o.lambdaFactor
			if prev-next <= o.relativeTol*prev {
				res.Lambda = lambda
				return finish(StatusConverged), nil
			}
			if ne, err = linearize(model, p, e, o.kernelEpsilon); err != nil {
				return Result{}, err
			}
			if len(ne.keep) == 0 {
				res.Lambda = lambda
				return finish(StatusStationary), nil
			}
		}
		res.Lambda = lambda
	}

	if err2 <= target {
		return finish(StatusTargetReached), nil
	}

	return finish(StatusExhausted), nil
}

// residual returns e = y − model(p) and ‖e‖².
func residual(model Model, p, y *matrix.Vector) (*matrix.Vector, float64, error) {
	yhat, err := model.Data(p)
	if err != nil {
		return nil, 0, err
	}
	if yhat == nil || yhat.Len() != y.Len() {
		return nil, 0, ErrResidualLength
	}
	e, err := y.Sub(yhat)
	if err != nil {
		return nil, 0, err
	}

	return e, e.SquaredNorm(), nil
}

// linearize builds JᵀJ and Jᵀe at p and strips null directions.
func linearize(model Model, p, e *matrix.Vector, kernelEps float64) (normal, error) {
	j, err := model.Jacobian(p)
	if err != nil {
		return normal{}, err
	}
	if j == nil || j.Rows() != e.Len() || j.Cols() != p.Len() {
		return normal{}, ErrJacobianShape
	}
	jtj, err := matrix.Gram(j)
	if err != nil {
		return normal{}, err
	}
	b, err := matrix.TMulVec(j, e)
	if err != nil {
		return normal{}, err
	}

	return compress(jtj, b, kernelEps)
}

// compress removes every index whose JᵀJ diagonal is at most kernelEps·max diagonal.
func compress(jtj *matrix.Dense, b *matrix.Vector, kernelEps float64) (normal, error) {
	k := jtj.Rows()
	diag := make([]float64, k)
	maxDiag := 0.0
	var err error
	for i := 0; i < k; i++ {
		if diag[i], err = jtj.At(i, i); err != nil {
			return normal{}, err
		}
		maxDiag = math.Max(maxDiag, diag[i])
	}
	keep := make([]int, 0, k)
	for i, d := range diag {
		if d > kernelEps*maxDiag {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return normal{}, nil
	}
	cjtj, err := jtj.Induced(keep, keep)
	if err != nil {
		return normal{}, err
	}
	bd := b.Data()
	cb := make([]float64, len(keep))
	for idx, i := range keep {
		cb[idx] = bd[i]
	}
	vb, err := matrix.NewVectorFrom(cb)
	if err != nil {
		return normal{}, err
	}

	return normal{jtj: cjtj, b: vb, keep: keep}, nil
}

// solveDamped solves (JᵀJ with diagonal ×(1+λ))·δ = b and reinserts zeros for stripped indices.
func solveDamped(ne normal, lambda float64, size int) (*matrix.Vector, error) {
	h := ne.jtj.Clone().(*matrix.Dense)
	for i := range ne.keep {
		d, err := h.At(i, i)
		if err != nil {
			return nil, err
		}
		if err = h.Set(i, i, d*(1+lambda)); err != nil {
			return nil, err
		}
	}
	delta, err := matrix.SolveLUVec(h, ne.b)
	if err != nil {
		return nil, err
	}

	return uncompress(delta, ne.keep, size)
}

// uncompress scatters delta into a zero vector of length size at positions keep.
func uncompress(delta *matrix.Vector, keep []int, size int) (*matrix.Vector, error) {
	full, err := matrix.NewVector(size)
	if err != nil {
		return nil, err
	}
	d := delta.Data()
	for idx, i := range keep {
		if err = full.SetVec(i, d[idx]); err != nil {
			return nil, err
		}
	}

	return full, nil
}
