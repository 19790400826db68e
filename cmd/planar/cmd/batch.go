// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/katalvlaran/planar/dataset"
	"github.com/katalvlaran/planar/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCommand(a *app) *cobra.Command {
	var input string
	c := &cobra.Command{
		Use:   "batch",
		Short: "Run every job file in a directory concurrently",
		Long: `batch runs all .yaml, .yml and .json job files found directly in the input
directory on a bounded worker pool. Results are printed in file-name order.

Without --continue-on-error the first failing job cancels the rest.`,
		Example: `  planar batch -i jobs/ --workers 8 --metrics-out /var/lib/node_exporter/planar.prom`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBatch(cmd, input)
		},
	}
	f := c.Flags()
	f.StringVarP(&input, "input", "i", "", "directory of job files")
	f.Int("workers", 4, "number of concurrent jobs")
	f.Bool("continue-on-error", false, "keep going after a failed job")
	f.String("metrics-out", "", "write Prometheus metrics in textfile format to this path")
	_ = a.v.BindPFlag("batch.workers", f.Lookup("workers"))
	_ = a.v.BindPFlag("batch.continue_on_error", f.Lookup("continue-on-error"))
	_ = a.v.BindPFlag("batch.metrics_out", f.Lookup("metrics-out"))
	_ = c.MarkFlagRequired("input")

	return c
}

func (a *app) runBatch(cmd *cobra.Command, dir string) error {
	files, err := dataset.Glob(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("batch: no job files in %s", dir)
	}
	bc := a.cfg.Batch
	rec := metrics.NewRecorder()
	opts := a.solverOptions()
	results := make([]dataset.Result, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(bc.Workers)
	for i, path := range files {
		g.Go(func() error {
			// queued behind SetLimit when an earlier job failed or the caller canceled
			if err := ctx.Err(); err != nil {
				return err
			}
			done := rec.Busy()
			defer done()

			job, err := dataset.Load(path)
			if err != nil {
				results[i] = dataset.Result{Name: path, Error: err.Error()}
			} else {
				results[i], err = dataset.Run(ctx, job, opts...)
			}
			rec.Observe(results[i])
			if err != nil {
				a.log.Warnw("job failed", "file", path, "err", err)
				if !bc.ContinueOnError {
					return fmt.Errorf("%s: %w", path, err)
				}
				return nil
			}
			a.log.Debugw("job finished", "file", path, "rmse", results[i].RMSE, "elapsed", results[i].Elapsed)

			return nil
		})
	}
	runErr := g.Wait()

	if bc.MetricsOut != "" {
		if err := rec.WriteTextfile(bc.MetricsOut); err != nil {
			return err
		}
		a.log.Infow("metrics written", "path", bc.MetricsOut)
	}
	if runErr != nil {
		return runErr
	}

	return render(cmd.OutOrStdout(), a.cfg.Output.Format, results...)
}
