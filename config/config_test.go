// SPDX-License-Identifier: MIT
package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/planar/config"
	"github.com/katalvlaran/planar/homography"
	"github.com/katalvlaran/planar/lm"
	"github.com/katalvlaran/planar/matrix"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// inEmptyDir runs the test from a directory without planar.yaml.
func inEmptyDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, zapcore.InfoLevel, cfg.Level())

	cfg.Verbose = true
	require.Equal(t, zapcore.DebugLevel, cfg.Level())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.Solver.RatioExtremes = 2
	cfg.Solver.SVDBackend = "qr"
	cfg.Minimizer.LambdaFactor = 1
	cfg.Minimizer.TargetRMSE = math.NaN()
	cfg.Refine.Jacobian = "central"
	cfg.Batch.Workers = 0
	cfg.Output.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 8)
	require.ErrorContains(t, err, "solver.svd_backend")
	require.ErrorContains(t, err, "output.format")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	inEmptyDir(t)

	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfig(), *cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	inEmptyDir(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
solver:
  svd_backend: golub-kahan
  normalize: false
minimizer:
  max_iters: 50
refine:
  jacobian: forward-difference
output:
  format: json
`), 0o600))
	t.Setenv("PLANAR_MINIMIZER_TARGET_RMSE", "0.01")

	l := config.NewLoader()
	cfg, err := l.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, path, l.ConfigFileUsed())
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, config.BackendGolubKahan, cfg.Solver.SVDBackend)
	require.False(t, cfg.Solver.Normalize)
	require.Equal(t, 50, cfg.Minimizer.MaxIters)
	require.Equal(t, 0.01, cfg.Minimizer.TargetRMSE)
	require.Equal(t, "forward-difference", cfg.Refine.Jacobian)
	require.Equal(t, config.FormatJSON, cfg.Output.Format)
	// untouched keys keep their defaults
	require.Equal(t, lm.DefaultLambdaFactor, cfg.Minimizer.LambdaFactor)
}

func TestLoadSearchPath(t *testing.T) {
	inEmptyDir(t)
	require.NoError(t, os.WriteFile("planar.yaml", []byte("batch:\n  workers: 9\n"), 0o600))

	cfg, err := config.NewLoader().Load()
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Batch.Workers)
}

func TestLoadErrors(t *testing.T) {
	inEmptyDir(t)

	_, err := config.NewLoader().LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("minimizer:\n  max_iters: 0\n"), 0o600))
	_, err = config.NewLoader().LoadFile(bad)
	require.ErrorContains(t, err, "minimizer.max_iters")
}

func TestLoaderWithBoundViper(t *testing.T) {
	inEmptyDir(t)
	v := viper.New()
	v.Set("output.format", "yaml")

	cfg, err := config.NewLoaderWith(v).Load()
	require.NoError(t, err)
	require.Equal(t, config.FormatYAML, cfg.Output.Format)
}

func TestOptionConversion(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Solver.SVDBackend = config.BackendGolubKahan
	cfg.Minimizer.MaxIters = 7
	cfg.Refine.Jacobian = "fd"
	cfg.Refine.AcceptRMSE = 0.5
	require.NoError(t, cfg.Validate())

	mo := matrix.NewMatrixOptions(cfg.MatrixOptions()...)
	require.Equal(t, matrix.BackendGolubKahan, mo.Backend())

	lo := lm.NewMinimizer(cfg.MinimizerOptions()...).Options()
	require.Equal(t, 7, lo.MaxIters())

	ho := homography.NewOptions(cfg.SolverOptions()...)
	require.Equal(t, homography.ForwardDifference, ho.Jacobian())
	require.Equal(t, 0.5, ho.AcceptRMSE())
	require.True(t, ho.Normalization())
}
