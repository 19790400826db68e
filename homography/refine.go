// SPDX-License-Identifier: MIT

package homography

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/planar/lm"
)

// RefineResult is the outcome of Refine and Estimate.
type RefineResult struct {
	H           Homography
	RMSE        float64 // per-target RMSE at H
	InitialRMSE float64 // per-target RMSE of the starting homography
	Iterations  int
	Status      lm.Status
	Refined     bool // false when Estimate accepted the DLT result as is
}

// Refine is RefineContext with context.Background().
func Refine(h0 Homography, targets []Target, opts ...Option) (RefineResult, error) {
	return RefineContext(context.Background(), h0, targets, opts...)
}

// RefineContext minimizes the target residual of TargetModel starting at h0.
//
// The minimizer reports sqrt(err²/2n) over 2n scalar residuals; RMSE is that value
// times √2, i.e. the RMSE of the per-target distance.
func RefineContext(ctx context.Context, h0 Homography, targets []Target, opts ...Option) (RefineResult, error) {
	if len(targets) < MinCorrespondences {
		return RefineResult{}, fmt.Errorf("homography: Refine: %d targets: %w", len(targets), ErrInsufficientCorrespondences)
	}
	o := gatherOptions(opts...)
	model, err := NewTargetModel(targets, opts...)
	if err != nil {
		return RefineResult{}, err
	}
	start, err := h0.Normalize()
	if err != nil {
		return RefineResult{}, err
	}
	initial, err := EvaluateTargets(start, targets)
	if err != nil {
		return RefineResult{}, err
	}

	res, err := lm.NewMinimizer(o.minimizerOptions()...).MinimizeContext(ctx, model, start.Params(), model.Observations())
	if err != nil && res.Params == nil {
		return RefineResult{}, err
	}
	h, herr := FromParams(res.Params)
	if herr == nil {
		h, herr = h.Normalize()
	}
	if herr != nil {
		return RefineResult{}, unsolvable(herr)
	}
	out := RefineResult{
		H:           h,
		RMSE:        res.RMSE * math.Sqrt2,
		InitialRMSE: initial,
		Iterations:  res.Iterations,
		Status:      res.Status,
		Refined:     true,
	}
	o.logger.Debugw("refined", "targets", len(targets), "initial", initial, "rmse", out.RMSE,
		"iterations", out.Iterations, "status", out.Status, "jacobian", o.jacobian)

	return out, err
}

// Estimate is EstimateContext with context.Background().
func Estimate(targets []Target, opts ...Option) (RefineResult, error) {
	return EstimateContext(context.Background(), targets, opts...)
}

// EstimateContext solves the DLT from reference positions to image conic centers and
// refines it only when its per-target RMSE exceeds the accept threshold.
func EstimateContext(ctx context.Context, targets []Target, opts ...Option) (RefineResult, error) {
	if len(targets) < MinCorrespondences {
		return RefineResult{}, fmt.Errorf("homography: Estimate: %d targets: %w", len(targets), ErrInsufficientCorrespondences)
	}
	o := gatherOptions(opts...)
	corrs := make([]Correspondence, len(targets))
	for i, t := range targets {
		c, err := t.Conic.Center()
		if err != nil {
			return RefineResult{}, fmt.Errorf("homography: Estimate: target %d: %w", i, err)
		}
		corrs[i] = NewCorrespondence(t.Reference, c)
	}
	h0, err := Solve(corrs, opts...)
	if err != nil {
		return RefineResult{}, err
	}
	rmse, err := EvaluateTargets(h0, targets)
	if err != nil {
		return RefineResult{}, err
	}
	if rmse <= o.acceptRMSE {
		o.logger.Debugw("dlt accepted", "targets", len(targets), "rmse", rmse)
		return RefineResult{H: h0, RMSE: rmse, InitialRMSE: rmse, Status: lm.StatusTargetReached}, nil
	}

	return RefineContext(ctx, h0, targets, opts...)
}
