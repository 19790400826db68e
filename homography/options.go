// SPDX-License-Identifier: MIT

// Package homography: functional configuration shared by Solve, Refine and Estimate.
package homography

import (
	"math"

	"github.com/katalvlaran/planar/lm"
	"github.com/katalvlaran/planar/matrix"
	"go.uber.org/zap"
)

// MinCorrespondences is the smallest number of pairs that determines a homography.
const MinCorrespondences = 4

const (
	// DefaultDifferenceEpsilon is the base forward-difference step; the model
	// uses 0.25 of it.
	DefaultDifferenceEpsilon = 1e-6

	// DefaultAcceptRMSE is the per-point RMSE at which Estimate keeps the DLT
	// result without refinement.
	DefaultAcceptRMSE = lm.DefaultTargetRMSE
)

// JacobianMode selects how TargetModel differentiates its residuals.
type JacobianMode int

const (
	// Analytic uses closed-form partials of the pulled-back conic center.
	Analytic JacobianMode = iota
	// ForwardDifference uses (r(p+dx) − r(p))/dx per parameter.
	ForwardDifference
)

func (m JacobianMode) String() string {
	switch m {
	case Analytic:
		return "analytic"
	case ForwardDifference:
		return "forward-difference"
	default:
		return "unknown"
	}
}

const (
	panicRatios     = "homography: WithNullspaceRatios: ratios must be finite and in (0, 1]"
	panicJacobian   = "homography: WithJacobian: unknown mode"
	panicStep       = "homography: WithDifferenceStep: step must be finite and > 0"
	panicAcceptRMSE = "homography: WithAcceptRMSE: threshold must be finite and >= 0"
)

// Option mutates Options.
type Option func(*Options)

// Options is the resolved estimator configuration.
type Options struct {
	normalize     bool
	ratioExtremes float64
	ratio2Min     float64
	svd           []matrix.Option
	jacobian      JacobianMode
	step          float64
	acceptRMSE    float64
	minimizer     []lm.Option
	logger        *zap.SugaredLogger
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// WithNormalization toggles Hartley normalization of the DLT inputs.
func WithNormalization(on bool) Option {
	return func(o *Options) { o.normalize = on }
}

// WithNullspaceRatios overrides the nullspace gate used by Solve.
func WithNullspaceRatios(ratioExtremes, ratio2Min float64) Option {
	if !finite(ratioExtremes) || !finite(ratio2Min) ||
		ratioExtremes <= 0 || ratioExtremes > 1 || ratio2Min <= 0 || ratio2Min > 1 {
		panic(panicRatios)
	}

	return func(o *Options) {
		o.ratioExtremes = ratioExtremes
		o.ratio2Min = ratio2Min
	}
}

// WithSVDOptions forwards options to the SVD behind the nullspace extraction.
func WithSVDOptions(opts ...matrix.Option) Option {
	return func(o *Options) { o.svd = append(o.svd, opts...) }
}

// WithJacobian selects the refinement Jacobian.
func WithJacobian(mode JacobianMode) Option {
	if mode != Analytic && mode != ForwardDifference {
		panic(panicJacobian)
	}

	return func(o *Options) { o.jacobian = mode }
}

// WithDifferenceStep sets the forward-difference step dx.
func WithDifferenceStep(dx float64) Option {
	if !finite(dx) || dx <= 0 {
		panic(panicStep)
	}

	return func(o *Options) { o.step = dx }
}

// WithAcceptRMSE sets the DLT acceptance threshold of Estimate.
func WithAcceptRMSE(rmse float64) Option {
	if !finite(rmse) || rmse < 0 {
		panic(panicAcceptRMSE)
	}

	return func(o *Options) { o.acceptRMSE = rmse }
}

// WithMinimizer appends options for the refinement minimizer.
func WithMinimizer(opts ...lm.Option) Option {
	return func(o *Options) { o.minimizer = append(o.minimizer, opts...) }
}

// WithLogger routes estimator and minimizer tracing to l. A nil logger disables it.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop().Sugar()
		}
		o.logger = l
	}
}

// NewOptions resolves opts over the defaults.
func NewOptions(opts ...Option) Options { return gatherOptions(opts...) }

// Normalization reports whether Hartley normalization is enabled.
func (o Options) Normalization() bool { return o.normalize }

// NullspaceRatios returns the gate ratios.
func (o Options) NullspaceRatios() (ratioExtremes, ratio2Min float64) {
	return o.ratioExtremes, o.ratio2Min
}

// Jacobian returns the Jacobian mode.
func (o Options) Jacobian() JacobianMode { return o.jacobian }

// DifferenceStep returns dx.
func (o Options) DifferenceStep() float64 { return o.step }

// AcceptRMSE returns the Estimate acceptance threshold.
func (o Options) AcceptRMSE() float64 { return o.acceptRMSE }

func defaultOptions() Options {
	return Options{
		normalize:     true,
		ratioExtremes: matrix.DefaultRatioExtremes,
		ratio2Min:     matrix.DefaultRatio2Min,
		jacobian:      Analytic,
		step:          0.25 * DefaultDifferenceEpsilon,
		acceptRMSE:    DefaultAcceptRMSE,
		logger:        zap.NewNop().Sugar(),
	}
}

func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, opt := range user {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// minimizerOptions puts the shared logger first so explicit lm.WithLogger wins.
func (o Options) minimizerOptions() []lm.Option {
	out := make([]lm.Option, 0, len(o.minimizer)+1)
	out = append(out, lm.WithLogger(o.logger))

	return append(out, o.minimizer...)
}
