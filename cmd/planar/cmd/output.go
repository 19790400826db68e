// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"io"

	"github.com/katalvlaran/planar/config"
	"github.com/katalvlaran/planar/dataset"
)

// render writes results in the configured format. Text lists one block per result.
func render(w io.Writer, format string, results ...dataset.Result) error {
	switch format {
	case config.FormatYAML, config.FormatJSON:
		var v any = results
		if len(results) == 1 {
			v = results[0]
		}
		return dataset.Encode(w, dataset.Format(format), v)
	}

	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "%s (%s)\n", r.Name, r.Kind)
		if r.Error != "" {
			_, _ = fmt.Fprintf(w, "  error: %s\n", r.Error)
			continue
		}
		for _, row := range r.H {
			_, _ = fmt.Fprintf(w, "  [% .9g % .9g % .9g]\n", row[0], row[1], row[2])
		}
		_, _ = fmt.Fprintf(w, "  rmse: %.6g\n", r.RMSE)
		if r.Kind == dataset.KindTargets {
			_, _ = fmt.Fprintf(w, "  initial rmse: %.6g\n", r.InitialRMSE)
			_, _ = fmt.Fprintf(w, "  refined: %t  iterations: %d  status: %s\n", r.Refined, r.Iterations, r.Status)
		}
	}

	return nil
}
