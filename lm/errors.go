// SPDX-License-Identifier: MIT

package lm

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/planar/matrix"
)

var (
	// ErrNilModel is returned when Minimize receives a nil Model or nil vectors.
	ErrNilModel = errors.New("lm: nil model or input")

	// ErrResidualLength is returned when the model's prediction length differs from the data length.
	ErrResidualLength = fmt.Errorf("lm: prediction length differs from data: %w", matrix.ErrShapeMismatch)

	// ErrJacobianShape is returned when the Jacobian is not len(data)×len(params).
	ErrJacobianShape = fmt.Errorf("lm: jacobian shape: %w", matrix.ErrShapeMismatch)

	// ErrNonFinite is returned when the initial residual contains NaN or ±Inf.
	ErrNonFinite = fmt.Errorf("lm: non-finite residual: %w", matrix.ErrNaNInf)
)
