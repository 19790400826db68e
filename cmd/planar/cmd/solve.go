// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/katalvlaran/planar/dataset"
	"github.com/spf13/cobra"
)

func newSolveCommand(a *app) *cobra.Command {
	var input string
	c := &cobra.Command{
		Use:   "solve",
		Short: "Solve a homography from point correspondences (DLT)",
		Example: `  planar solve -i corners.yaml
  planar solve -i corners.json --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOne(cmd, input, dataset.KindCorrespondences)
		},
	}
	c.Flags().StringVarP(&input, "input", "i", "", "correspondences job file (.yaml, .yml, .json)")
	_ = c.MarkFlagRequired("input")

	return c
}

func newRefineCommand(a *app) *cobra.Command {
	var input string
	c := &cobra.Command{
		Use:   "refine",
		Short: "Estimate and refine a homography from calibration targets",
		Long: `refine solves the DLT from target reference positions to ellipse centers and,
when its per-target RMSE exceeds refine.accept_rmse, refines it with
Levenberg–Marquardt on the pulled-back ellipse centers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOne(cmd, input, dataset.KindTargets)
		},
	}
	c.Flags().StringVarP(&input, "input", "i", "", "targets job file (.yaml, .yml, .json)")
	c.Flags().String("jacobian", "analytic", "refinement Jacobian (analytic, forward-difference)")
	_ = a.v.BindPFlag("refine.jacobian", c.Flags().Lookup("jacobian"))
	_ = c.MarkFlagRequired("input")

	return c
}

// runOne loads a single job of the wanted kind, runs it and renders the result.
func (a *app) runOne(cmd *cobra.Command, input string, want dataset.Kind) error {
	job, err := dataset.Load(input)
	if err != nil {
		return err
	}
	if job.Kind != want {
		return fmt.Errorf("%s: %w: want a %s job, got %s", input, dataset.ErrInvalidJob, want, job.Kind)
	}
	opts := a.solverOptions()
	res, err := dataset.Run(cmd.Context(), job, opts...)
	a.log.Debugw("job finished", "name", res.Name, "rmse", res.RMSE, "elapsed", res.Elapsed, "err", err)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), a.cfg.Output.Format, res)
}
