// SPDX-License-Identifier: MIT

package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/katalvlaran/planar/homography"
)

// Result is the rendered outcome of one job.
type Result struct {
	Name        string        `yaml:"name" json:"name"`
	Kind        Kind          `yaml:"kind" json:"kind"`
	H           [3][3]float64 `yaml:"h,flow" json:"h"`
	RMSE        float64       `yaml:"rmse" json:"rmse"`
	InitialRMSE float64       `yaml:"initial_rmse,omitempty" json:"initial_rmse,omitempty"`
	Iterations  int           `yaml:"iterations,omitempty" json:"iterations,omitempty"`
	Status      string        `yaml:"status,omitempty" json:"status,omitempty"`
	Refined     bool          `yaml:"refined,omitempty" json:"refined,omitempty"`
	Elapsed     time.Duration `yaml:"elapsed" json:"elapsed"`
	Error       string        `yaml:"error,omitempty" json:"error,omitempty"`
}

// Run solves a correspondences job with homography.Solve, or a targets job with
// homography.EstimateContext. The returned Result carries the error text too.
func Run(ctx context.Context, job *Job, opts ...homography.Option) (Result, error) {
	start := time.Now()
	res := Result{Name: job.Name, Kind: job.Kind}
	err := run(ctx, job, &res, opts)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Error = err.Error()
	}

	return res, err
}

func run(ctx context.Context, job *Job, res *Result, opts []homography.Option) error {
	switch job.Kind {
	case KindCorrespondences:
		corrs, err := job.BuildCorrespondences()
		if err != nil {
			return err
		}
		h, err := homography.Solve(corrs, opts...)
		if err != nil {
			return err
		}
		rmse, err := homography.EvaluateCorrespondences(h, corrs)
		if err != nil {
			return err
		}
		res.H, res.RMSE = h, rmse

		return nil
	case KindTargets:
		targets, err := job.BuildTargets()
		if err != nil {
			return err
		}
		out, err := homography.EstimateContext(ctx, targets, opts...)
		if err != nil {
			return err
		}
		res.H, res.RMSE, res.InitialRMSE = out.H, out.RMSE, out.InitialRMSE
		res.Iterations, res.Status, res.Refined = out.Iterations, out.Status.String(), out.Refined

		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, job.Kind)
	}
}
