// SPDX-License-Identifier: MIT
package dataset_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/katalvlaran/planar/dataset"
	"github.com/katalvlaran/planar/homography"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const translationYAML = `
name: translation
correspondences:
  - {source: [0, 0], target: [2, 3]}
  - {source: [1, 0], target: [3, 3]}
  - {source: [1, 1], target: [3, 4]}
  - {source: [0, 1, 1], target: [4, 8, 2]}
`

func TestDecodeYAMLInfersKind(t *testing.T) {
	job, err := dataset.Decode(strings.NewReader(translationYAML), dataset.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, dataset.KindCorrespondences, job.Kind)
	require.Len(t, job.Correspondences, 4)

	corrs, err := job.BuildCorrespondences()
	require.NoError(t, err)
	require.Equal(t, 2.0, corrs[3].Target.Z)

	_, err = job.BuildTargets()
	require.ErrorIs(t, err, dataset.ErrInvalidJob)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := dataset.Decode(strings.NewReader("name: x\ncorners: []\n"), dataset.FormatYAML)
	require.Error(t, err)

	_, err = dataset.Decode(strings.NewReader(`{"name":"x","corners":[]}`), dataset.FormatJSON)
	require.Error(t, err)

	_, err = dataset.Decode(strings.NewReader(""), dataset.Format("toml"))
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestValidateCollectsErrors(t *testing.T) {
	job := &dataset.Job{
		Kind: dataset.KindTargets,
		Targets: []dataset.TargetSpec{
			{Reference: []float64{0}},
			{Reference: []float64{0, 0}, Ellipse: &dataset.EllipseSpec{Center: []float64{1, 1}}},
			{Reference: []float64{0, 0}, Conic: []float64{1, 2}},
		},
	}
	err := job.Validate()
	require.ErrorIs(t, err, dataset.ErrInvalidJob)
	// too few targets, bad reference, missing conic, bad axes, short conic
	require.Len(t, multierr.Errors(errorsUnwrapJoin(err)), 5)

	require.ErrorIs(t, (&dataset.Job{Kind: "mesh"}).Validate(), dataset.ErrInvalidJob)
}

// errorsUnwrapJoin strips the ErrInvalidJob prefix and returns the multierr payload.
func errorsUnwrapJoin(err error) error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range u.Unwrap() {
			if e != dataset.ErrInvalidJob {
				return e
			}
		}
	}

	return err
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	refs := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.5, Y: 0.5}}
	targets := make([]homography.Target, len(refs))
	for i, ref := range refs {
		c, err := homography.NewCircle(r2.Point{X: 10 * ref.X, Y: 10 * ref.Y}, 0.5)
		require.NoError(t, err)
		targets[i] = homography.Target{Conic: c, Reference: ref}
	}

	for _, name := range []string{"targets.yaml", "targets.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, dataset.Save(path, dataset.FromTargets("", targets)))

		job, err := dataset.Load(path)
		require.NoError(t, err)
		require.Equal(t, "targets", job.Name)
		require.Equal(t, dataset.KindTargets, job.Kind)
		got, err := job.BuildTargets()
		require.NoError(t, err)
		require.Equal(t, targets, got)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o700))
	files, err := dataset.Glob(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "targets.json"), filepath.Join(dir, "targets.yaml")}, files)

	_, err = dataset.Load(filepath.Join(dir, "notes.txt"))
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestRun(t *testing.T) {
	job, err := dataset.Decode(strings.NewReader(translationYAML), dataset.FormatYAML)
	require.NoError(t, err)

	res, err := dataset.Run(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, "translation", res.Name)
	require.InDelta(t, 2.0, res.H[0][2], 1e-9)
	require.InDelta(t, 3.0, res.H[1][2], 1e-9)
	require.Less(t, res.RMSE, 1e-9)
	require.Empty(t, res.Error)

	var buf bytes.Buffer
	require.NoError(t, dataset.Encode(&buf, dataset.FormatJSON, res))
	require.Contains(t, buf.String(), `"name": "translation"`)

	// a square whose corners all coincide cannot be normalized
	bad := dataset.FromCorrespondences("bad", make([]r2.Point, 4), []r2.Point{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	res, err = dataset.Run(context.Background(), bad)
	require.ErrorIs(t, err, homography.ErrDegeneratePoints)
	require.NotEmpty(t, res.Error)
}

func TestRunTargets(t *testing.T) {
	h := homography.Homography{{10, 0, 1}, {0, 10, 2}, {0, 0, 1}}
	inv, err := h.Inverse()
	require.NoError(t, err)
	var targets []homography.Target
	for _, ref := range []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 2, Y: 1}} {
		c, err := homography.NewCircle(ref, 0.2)
		require.NoError(t, err)
		img, err := c.Transform(inv)
		require.NoError(t, err)
		targets = append(targets, homography.Target{Conic: img, Reference: ref})
	}

	res, err := dataset.Run(context.Background(), dataset.FromTargets("affine", targets))
	require.NoError(t, err)
	// an affine map sends centers to centers, so the DLT alone is exact
	require.False(t, res.Refined)
	require.Less(t, res.RMSE, 1e-9)
	require.InDelta(t, 10.0, res.H[0][0], 1e-8)
}
