// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the numeric policy and the
// decompositions. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Options fields are unexported; public APIs consume ...Option.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

// Numeric policy.
const (
	// DefaultEpsilon is the relative off-diagonal tolerance of the Jacobi SVD sweeps.
	DefaultEpsilon = 1e-15

	// DefaultValidateNaNInf toggles strict finite-value validation on Set.
	DefaultValidateNaNInf = true

	// DefaultMaxSweeps caps the number of one-sided Jacobi sweeps.
	DefaultMaxSweeps = 75
)

// SVDBackend selects the raw decomposition routine used by NewSVD.
type SVDBackend int

const (
	// BackendJacobi is the one-sided (Hestenes) Jacobi rotation scheme.
	BackendJacobi SVDBackend = iota
	// BackendGolubKahan delegates to gonum's LAPACK-style bidiagonalisation.
	BackendGolubKahan
)

// DefaultSVDBackend is used when no backend option is given.
const DefaultSVDBackend = BackendJacobi

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid   = "matrix: WithEpsilon: eps must be finite, positive"
	panicMaxSweepsInvalid = "matrix: WithMaxSweeps: sweeps must be > 0"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
type Options struct {
	eps            float64    // > 0; DefaultEpsilon
	validateNaNInf bool       // DefaultValidateNaNInf
	maxSweeps      int        // DefaultMaxSweeps
	backend        SVDBackend // DefaultSVDBackend
}

// ---------- Constructors (WithX) ----------

// WithEpsilon sets the convergence tolerance of iterative kernels.
// Panics when eps is not finite or not positive.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithMaxSweeps caps the number of Jacobi sweeps before ErrSVDFailed.
// Panics when sweeps <= 0.
func WithMaxSweeps(sweeps int) Option {
	if sweeps <= 0 {
		panic(panicMaxSweepsInvalid)
	}

	return func(o *Options) { o.maxSweeps = sweeps }
}

// WithJacobi selects the one-sided Jacobi SVD backend (default).
func WithJacobi() Option {
	return func(o *Options) { o.backend = BackendJacobi }
}

// WithGolubKahan selects the gonum Golub–Kahan SVD backend.
func WithGolubKahan() Option {
	return func(o *Options) { o.backend = BackendGolubKahan }
}

// WithValidateNaNInf makes constructors built with options reject NaN/±Inf on Set.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables the finite-only policy on Set.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// --------------------------- Option Resolution ---------------------------

// NewMatrixOptions resolves user options over defaults.
// Complexity: O(len(opts)).
func NewMatrixOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// Epsilon returns the resolved tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// MaxSweeps returns the resolved sweep cap.
func (o Options) MaxSweeps() int { return o.maxSweeps }

// Backend returns the resolved SVD backend.
func (o Options) Backend() SVDBackend { return o.backend }

// ValidateNaNInf reports whether finite-only Set is enforced.
func (o Options) ValidateNaNInf() bool { return o.validateNaNInf }

func defaultOptions() Options {
	return Options{
		eps:            DefaultEpsilon,
		validateNaNInf: DefaultValidateNaNInf,
		maxSweeps:      DefaultMaxSweeps,
		backend:        DefaultSVDBackend,
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
