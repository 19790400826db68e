// SPDX-License-Identifier: MIT

// Package lm implements a Levenberg–Marquardt minimizer for nonlinear least squares.
//
// A Model supplies predictions ŷ(P) and their Jacobian J(P). Minimize searches for the
// parameter vector P that minimizes ‖y − ŷ(P)‖ by solving damped normal equations
//
//	(JᵀJ + λ·diag(JᵀJ))·δ = Jᵀ(y − ŷ)
//
// with matrix.SolveLU, raising λ after a rejected step and lowering it after an
// accepted one.
//
// Parameter directions that the data cannot observe (diagonal entries of JᵀJ that are
// negligible next to the largest) are removed before each solve and receive a zero
// correction, so the damped system stays non-singular.
//
// Running out of iterations is not an error: the Result carries the best parameters
// found, their RMSE and a Status describing why the loop stopped.
package lm
