// SPDX-License-Identifier: MIT

// Package config resolves planar's settings from defaults, a YAML file, PLANAR_*
// environment variables and bound command-line flags, and turns them into
// estimator options.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/planar/homography"
	"github.com/katalvlaran/planar/lm"
	"github.com/katalvlaran/planar/matrix"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// SVD backends.
const (
	BackendJacobi     = "jacobi"
	BackendGolubKahan = "golub-kahan"
)

// Config is the complete planar configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Solver    SolverConfig    `mapstructure:"solver" yaml:"solver" json:"solver"`
	Minimizer MinimizerConfig `mapstructure:"minimizer" yaml:"minimizer" json:"minimizer"`
	Refine    RefineConfig    `mapstructure:"refine" yaml:"refine" json:"refine"`
	Batch     BatchConfig     `mapstructure:"batch" yaml:"batch" json:"batch"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output" json:"output"`
}

// SolverConfig tunes the DLT and its SVD.
type SolverConfig struct {
	Normalize     bool    `mapstructure:"normalize" yaml:"normalize" json:"normalize"`
	RatioExtremes float64 `mapstructure:"ratio_extremes" yaml:"ratio_extremes" json:"ratio_extremes"`
	Ratio2Min     float64 `mapstructure:"ratio2_min" yaml:"ratio2_min" json:"ratio2_min"`
	SVDBackend    string  `mapstructure:"svd_backend" yaml:"svd_backend" json:"svd_backend"`
	Epsilon       float64 `mapstructure:"epsilon" yaml:"epsilon" json:"epsilon"`
	MaxSweeps     int     `mapstructure:"max_sweeps" yaml:"max_sweeps" json:"max_sweeps"`
}

// MinimizerConfig mirrors lm.Options.
type MinimizerConfig struct {
	TargetRMSE    float64 `mapstructure:"target_rmse" yaml:"target_rmse" json:"target_rmse"`
	MaxIters      int     `mapstructure:"max_iters" yaml:"max_iters" json:"max_iters"`
	RelativeTol   float64 `mapstructure:"relative_tol" yaml:"relative_tol" json:"relative_tol"`
	LambdaInit    float64 `mapstructure:"lambda_init" yaml:"lambda_init" json:"lambda_init"`
	LambdaFactor  float64 `mapstructure:"lambda_factor" yaml:"lambda_factor" json:"lambda_factor"`
	KernelEpsilon float64 `mapstructure:"kernel_epsilon" yaml:"kernel_epsilon" json:"kernel_epsilon"`
}

// RefineConfig tunes target-based refinement.
type RefineConfig struct {
	Jacobian       string  `mapstructure:"jacobian" yaml:"jacobian" json:"jacobian"`
	DifferenceStep float64 `mapstructure:"difference_step" yaml:"difference_step" json:"difference_step"`
	AcceptRMSE     float64 `mapstructure:"accept_rmse" yaml:"accept_rmse" json:"accept_rmse"`
}

// BatchConfig controls the batch command.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	MetricsOut      string `mapstructure:"metrics_out" yaml:"metrics_out" json:"metrics_out"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Solver: SolverConfig{
			Normalize:     true,
			RatioExtremes: matrix.DefaultRatioExtremes,
			Ratio2Min:     matrix.DefaultRatio2Min,
			SVDBackend:    BackendJacobi,
			Epsilon:       matrix.DefaultEpsilon,
			MaxSweeps:     matrix.DefaultMaxSweeps,
		},
		Minimizer: MinimizerConfig{
			TargetRMSE:    lm.DefaultTargetRMSE,
			MaxIters:      lm.DefaultMaxIters,
			RelativeTol:   lm.DefaultRelativeTol,
			LambdaInit:    lm.DefaultLambdaInit,
			LambdaFactor:  lm.DefaultLambdaFactor,
			KernelEpsilon: lm.DefaultKernelEpsilon,
		},
		Refine: RefineConfig{
			Jacobian:       homography.Analytic.String(),
			DifferenceStep: 0.25 * homography.DefaultDifferenceEpsilon,
			AcceptRMSE:     homography.DefaultAcceptRMSE,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf(format, args...))
		}
	}
	finite := func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

	_, lerr := zapcore.ParseLevel(c.LogLevel)
	check(lerr == nil, "log_level: unknown level %q", c.LogLevel)

	s := c.Solver
	check(finite(s.RatioExtremes) && s.RatioExtremes > 0 && s.RatioExtremes <= 1, "solver.ratio_extremes must be in (0, 1], got %g", s.RatioExtremes)
	check(finite(s.Ratio2Min) && s.Ratio2Min > 0 && s.Ratio2Min <= 1, "solver.ratio2_min must be in (0, 1], got %g", s.Ratio2Min)
	check(s.SVDBackend == BackendJacobi || s.SVDBackend == BackendGolubKahan, "solver.svd_backend: unknown backend %q", s.SVDBackend)
	check(finite(s.Epsilon) && s.Epsilon > 0, "solver.epsilon must be > 0, got %g", s.Epsilon)
	check(s.MaxSweeps > 0, "solver.max_sweeps must be > 0, got %d", s.MaxSweeps)

	m := c.Minimizer
	check(finite(m.TargetRMSE) && m.TargetRMSE >= 0, "minimizer.target_rmse must be >= 0, got %g", m.TargetRMSE)
	check(m.MaxIters > 0, "minimizer.max_iters must be > 0, got %d", m.MaxIters)
	check(finite(m.RelativeTol) && m.RelativeTol >= 0, "minimizer.relative_tol must be >= 0, got %g", m.RelativeTol)
	check(finite(m.LambdaInit) && m.LambdaInit > 0, "minimizer.lambda_init must be > 0, got %g", m.LambdaInit)
	check(finite(m.LambdaFactor) && m.LambdaFactor > 1, "minimizer.lambda_factor must be > 1, got %g", m.LambdaFactor)
	check(finite(m.KernelEpsilon) && m.KernelEpsilon >= 0 && m.KernelEpsilon < 1, "minimizer.kernel_epsilon must be in [0, 1), got %g", m.KernelEpsilon)

	r := c.Refine
	_, jerr := parseJacobian(r.Jacobian)
	check(jerr == nil, "refine.jacobian: unknown mode %q", r.Jacobian)
	check(finite(r.DifferenceStep) && r.DifferenceStep > 0, "refine.difference_step must be > 0, got %g", r.DifferenceStep)
	check(finite(r.AcceptRMSE) && r.AcceptRMSE >= 0, "refine.accept_rmse must be >= 0, got %g", r.AcceptRMSE)

	check(c.Batch.Workers > 0, "batch.workers must be > 0, got %d", c.Batch.Workers)
	switch c.Output.Format {
	case FormatText, FormatYAML, FormatJSON:
	default:
		check(false, "output.format: unknown format %q", c.Output.Format)
	}

	return err
}

// Level returns the zap level, debug when Verbose is set.
func (c *Config) Level() zapcore.Level {
	if c.Verbose {
		return zapcore.DebugLevel
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}

	return lvl
}

// MatrixOptions returns the SVD options. Call Validate first.
func (c *Config) MatrixOptions() []matrix.Option {
	opts := []matrix.Option{matrix.WithEpsilon(c.Solver.Epsilon), matrix.WithMaxSweeps(c.Solver.MaxSweeps)}
	if c.Solver.SVDBackend == BackendGolubKahan {
		opts = append(opts, matrix.WithGolubKahan())
	} else {
		opts = append(opts, matrix.WithJacobi())
	}

	return opts
}

// MinimizerOptions returns the lm options. Call Validate first.
func (c *Config) MinimizerOptions() []lm.Option {
	m := c.Minimizer

	return []lm.Option{
		lm.WithTargetRMSE(m.TargetRMSE),
		lm.WithMaxIters(m.MaxIters),
		lm.WithRelativeTol(m.RelativeTol),
		lm.WithLambdaInit(m.LambdaInit),
		lm.WithLambdaFactor(m.LambdaFactor),
		lm.WithKernelEpsilon(m.KernelEpsilon),
	}
}

// SolverOptions returns the full homography option set. Call Validate first.
func (c *Config) SolverOptions() []homography.Option {
	mode, _ := parseJacobian(c.Refine.Jacobian)

	return []homography.Option{
		homography.WithNormalization(c.Solver.Normalize),
		homography.WithNullspaceRatios(c.Solver.RatioExtremes, c.Solver.Ratio2Min),
		homography.WithSVDOptions(c.MatrixOptions()...),
		homography.WithJacobian(mode),
		homography.WithDifferenceStep(c.Refine.DifferenceStep),
		homography.WithAcceptRMSE(c.Refine.AcceptRMSE),
		homography.WithMinimizer(c.MinimizerOptions()...),
	}
}

func parseJacobian(s string) (homography.JacobianMode, error) {
	switch strings.ToLower(s) {
	case homography.Analytic.String():
		return homography.Analytic, nil
	case homography.ForwardDifference.String(), "fd":
		return homography.ForwardDifference, nil
	default:
		return 0, fmt.Errorf("config: unknown jacobian %q", s)
	}
}
