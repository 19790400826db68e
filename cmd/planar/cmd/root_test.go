// SPDX-License-Identifier: MIT
package cmd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/cmd/planar/cmd"
	"github.com/katalvlaran/planar/dataset"
	"github.com/katalvlaran/planar/homography"
	"github.com/stretchr/testify/require"
)

var (
	square     = []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	translated = []r2.Point{{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 4}, {X: 2, Y: 4}}
)

// execute runs planar with args from an empty working directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	root := cmd.NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)

	return out.String(), err
}

func targetsJob(t *testing.T, name string) *dataset.Job {
	t.Helper()
	h := homography.Homography{{20, 1, 5}, {-1, 18, 7}, {0.02, 0.01, 1}}
	inv, err := h.Inverse()
	require.NoError(t, err)
	var targets []homography.Target
	for _, ref := range append(square, r2.Point{X: 0.5, Y: 0.5}, r2.Point{X: 2, Y: 1}) {
		c, err := homography.NewCircle(ref, 0.2)
		require.NoError(t, err)
		img, err := c.Transform(inv)
		require.NoError(t, err)
		targets = append(targets, homography.Target{Conic: img, Reference: ref})
	}

	return dataset.FromTargets(name, targets)
}

func TestSolveCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "square.yaml")
	require.NoError(t, dataset.Save(path, dataset.FromCorrespondences("square", square, translated)))

	out, err := execute(t, "solve", "-i", path)
	require.NoError(t, err)
	require.Contains(t, out, "square (correspondences)")
	require.Contains(t, out, "rmse:")

	out, err = execute(t, "solve", "-i", path, "--format", "json")
	require.NoError(t, err)
	var res dataset.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.InDelta(t, 2.0, res.H[0][2], 1e-9)
	require.InDelta(t, 3.0, res.H[1][2], 1e-9)
}

func TestSolveRejectsTargetsJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.yaml")
	require.NoError(t, dataset.Save(path, targetsJob(t, "t")))

	_, err := execute(t, "solve", "-i", path)
	require.ErrorIs(t, err, dataset.ErrInvalidJob)
}

func TestRefineCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, dataset.Save(path, targetsJob(t, "bench")))
	cfg := filepath.Join(t.TempDir(), "planar.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("refine:\n  accept_rmse: 0\nminimizer:\n  target_rmse: 1e-9\n"), 0o600))

	out, err := execute(t, "refine", "-i", path, "--config", cfg, "--format", "yaml", "--jacobian", "forward-difference")
	require.NoError(t, err)
	require.Contains(t, out, "name: bench")
	require.Contains(t, out, "refined: true")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, dataset.Save(filepath.Join(dir, "a.yaml"), dataset.FromCorrespondences("a", square, translated)))
	require.NoError(t, dataset.Save(filepath.Join(dir, "b.json"), targetsJob(t, "b")))
	require.NoError(t, dataset.Save(filepath.Join(dir, "c.yaml"),
		dataset.FromCorrespondences("c", make([]r2.Point, 4), translated)))
	prom := filepath.Join(t.TempDir(), "planar.prom")

	_, err := execute(t, "batch", "-i", dir, "--workers", "2")
	require.Error(t, err)

	out, err := execute(t, "batch", "-i", dir, "--workers", "2", "--continue-on-error", "--metrics-out", prom, "--format", "json")
	require.NoError(t, err)
	var results []dataset.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	require.Equal(t, "a", results[0].Name)
	require.Empty(t, results[1].Error)
	require.NotEmpty(t, results[2].Error)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.Contains(t, string(data), `planar_jobs_total{kind="correspondences",status="error"} 1`)
	require.Contains(t, string(data), `planar_jobs_total{kind="targets",status="ok"} 1`)

	_, err = execute(t, "batch", "-i", t.TempDir())
	require.ErrorContains(t, err, "no job files")
}

func TestBatchCanceledSkipsQueuedJobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, dataset.Save(filepath.Join(dir, name+".yaml"), dataset.FromCorrespondences(name, square, translated)))
	}
	prom := filepath.Join(t.TempDir(), "planar.prom")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeContext(t, ctx, "batch", "-i", dir, "--workers", "1", "--continue-on-error", "--metrics-out", prom)
	require.ErrorIs(t, err, context.Canceled)
	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	require.NotContains(t, string(data), "planar_jobs_total{")
}

func TestVersionAndConfigErrors(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "planar dev")

	_, err = execute(t, "solve", "-i", "x.yaml", "--log-level", "shout")
	require.ErrorContains(t, err, "log_level")

	_, err = execute(t, "solve")
	require.ErrorContains(t, err, "input")
}
