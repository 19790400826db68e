// SPDX-License-Identifier: MIT

// Package lm: functional configuration of the minimizer.
//
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper that applies defaults first.
package lm

import (
	"math"

	"go.uber.org/zap"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultTargetRMSE stops the loop once sqrt(err²/n) falls to this value.
	DefaultTargetRMSE = 0.1

	// DefaultMaxIters caps the number of damped solves.
	DefaultMaxIters = 300

	// DefaultRelativeTol is the plateau test: |e' − e| ≤ tol·e ends the loop.
	DefaultRelativeTol = 1e-3

	// DefaultLambdaInit is the starting damping factor.
	DefaultLambdaInit = 1e-3

	// DefaultLambdaFactor multiplies λ after a rejected step and divides it after an accepted one.
	DefaultLambdaFactor = 10.0

	// DefaultKernelEpsilon is the relative size below which a JᵀJ diagonal entry is a null direction.
	DefaultKernelEpsilon = 1e-10
)

const (
	panicTargetRMSE    = "lm: WithTargetRMSE: target must be finite and >= 0"
	panicMaxIters      = "lm: WithMaxIters: iterations must be > 0"
	panicRelativeTol   = "lm: WithRelativeTol: tolerance must be finite and >= 0"
	panicLambdaInit    = "lm: WithLambdaInit: lambda must be finite and > 0"
	panicLambdaFactor  = "lm: WithLambdaFactor: factor must be finite and > 1"
	panicKernelEpsilon = "lm: WithKernelEpsilon: epsilon must be finite and in [0, 1)"
)

// Option mutates Options.
type Option func(*Options)

// Options is the resolved minimizer configuration.
type Options struct {
	targetRMSE    float64
	maxIters      int
	relativeTol   float64
	lambdaInit    float64
	lambdaFactor  float64
	kernelEpsilon float64
	logger        *zap.SugaredLogger
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// WithTargetRMSE sets the RMSE at which the loop stops early.
func WithTargetRMSE(target float64) Option {
	if !finite(target) || target < 0 {
		panic(panicTargetRMSE)
	}

	return func(o *Options) { o.targetRMSE = target }
}

// WithMaxIters caps the number of iterations.
func WithMaxIters(n int) Option {
	if n <= 0 {
		panic(panicMaxIters)
	}

	return func(o *Options) { o.maxIters = n }
}

// WithRelativeTol sets the plateau tolerance.
func WithRelativeTol(tol float64) Option {
	if !finite(tol) || tol < 0 {
		panic(panicRelativeTol)
	}

	return func(o *Options) { o.relativeTol = tol }
}

// WithLambdaInit sets the initial damping.
func WithLambdaInit(lambda float64) Option {
	if !finite(lambda) || lambda <= 0 {
		panic(panicLambdaInit)
	}

	return func(o *Options) { o.lambdaInit = lambda }
}

// WithLambdaFactor sets the damping growth/shrink factor.
func WithLambdaFactor(f float64) Option {
	if !finite(f) || f <= 1 {
		panic(panicLambdaFactor)
	}

	return func(o *Options) { o.lambdaFactor = f }
}

// WithKernelEpsilon sets the relative threshold used to drop unobservable directions.
func WithKernelEpsilon(eps float64) Option {
	if !finite(eps) || eps < 0 || eps >= 1 {
		panic(panicKernelEpsilon)
	}

	return func(o *Options) { o.kernelEpsilon = eps }
}

// WithLogger routes iteration traces to logger. A nil logger restores the no-op default.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = zap.NewNop().Sugar()
		}
		o.logger = logger
	}
}

// TargetRMSE returns the resolved target.
func (o Options) TargetRMSE() float64 { return o.targetRMSE }

// MaxIters returns the resolved iteration cap.
func (o Options) MaxIters() int { return o.maxIters }

// RelativeTol returns the resolved plateau tolerance.
func (o Options) RelativeTol() float64 { return o.relativeTol }

// LambdaInit returns the resolved initial damping.
func (o Options) LambdaInit() float64 { return o.lambdaInit }

// LambdaFactor returns the resolved damping factor.
func (o Options) LambdaFactor() float64 { return o.lambdaFactor }

// KernelEpsilon returns the resolved null-direction threshold.
func (o Options) KernelEpsilon() float64 { return o.kernelEpsilon }

func defaultOptions() Options {
	return Options{
		targetRMSE:    DefaultTargetRMSE,
		maxIters:      DefaultMaxIters,
		relativeTol:   DefaultRelativeTol,
		lambdaInit:    DefaultLambdaInit,
		lambdaFactor:  DefaultLambdaFactor,
		kernelEpsilon: DefaultKernelEpsilon,
		logger:        zap.NewNop().Sugar(),
	}
}

// gatherOptions applies user options in order over defaults; nil options are skipped.
func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, opt := range user {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
