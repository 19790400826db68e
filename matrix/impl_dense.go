// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Support copy-based block extraction (Slice, Induced) and block insertion (Paste).
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Slice/Induced: O(r'*c').

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"       // method tag used in error wrappers
	ctxSet      = "Set"      // method tag used in error wrappers
	ctxInduce   = "Induced"  // ctor/tag for Dense.Induced
	ctxSlice    = "Slice"    // ctor/tag for Dense.Slice
	ctxPaste    = "Paste"    // tag for Dense.Paste
	ctxSwapRows = "SwapRows" // tag for Dense.SwapRows
	ctxScaleRow = "ScaleRow" // tag for Dense.ScaleRow
	ctxFrom     = "NewDenseFrom"
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Keep tags in constants for grep-ability and consistency.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables optional NaN/Inf rejection in Set.
//
// Dense owns its buffer outright: every kernel returns a fresh Dense and no
// two values ever share storage.
type Dense struct {
	r, c           int       // row and column counts (>=0; zero allowed only for internal zero-OK constructors)
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer and initialize policy from defaults.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// make() zero-fills deterministically.
	buf := make([]float64, rows*cols)

	return &Dense{
		r:              rows,
		c:              cols,
		data:           buf,
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewDenseFrom creates an r×c matrix from a row-major slice. The slice is copied.
//
// Errors:
//   - ErrInvalidDimensions when rows or cols is non-positive.
//   - ErrShapeMismatch when len(data) != rows*cols.
//   - ErrNaNInf when a value is not finite (default policy).
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%s: len %d for %dx%d: %w", ctxFrom, len(data), rows, cols, ErrShapeMismatch)
	}
	for i, v := range data {
		if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return nil, denseErrorf(ctxFrom, i/cols, i%cols, ErrNaNInf)
		}
	}
	copy(m.data, data)

	return m, nil
}

// newDenseZeroOK is an internal constructor that allows rows==0 or cols==0.
// Used where a legal 0×N shape can appear (e.g., compressing away every direction).
func newDenseZeroOK(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:              rows,
		c:              cols,
		data:           make([]float64, rows*cols),
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// newDenseWithPolicy constructs a Dense and overrides its numeric policy.
func newDenseWithPolicy(rows, cols int, validateNaNInf bool) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	m.validateNaNInf = validateNaNInf

	return m, nil
}

// NewDenseWithOptions creates an r×c zero matrix whose numeric policy follows opts.
func NewDenseWithOptions(rows, cols int, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)

	return newDenseWithPolicy(rows, cols, o.validateNaNInf)
}

// Rows returns the row count. No side effects.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Returns a bare sentinel; public methods wrap with coordinates and method name.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range; returns sentinel error.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite values when the policy is on.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	// Numeric policy: optional finite-only enforcement.
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
// Complexity: O(r*c).
func (m *Dense) Clone() Matrix {
	return m.clone()
}

// clone is the typed variant used internally to avoid interface assertions.
func (m *Dense) clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		validateNaNInf: m.validateNaNInf, // preserve guard policy
	}
}

// RawData returns a row-major copy of the backing buffer.
func (m *Dense) RawData() []float64 {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return cp
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Not for hot paths; intended for logs and debugging.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxAt, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Col returns a copy of column j as a Vector.
func (m *Dense) Col(j int) (*Vector, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxAt, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return &Vector{data: out, validateNaNInf: m.validateNaNInf}, nil
}

// SwapRows exchanges rows i and k in place. Swapping a row with itself is a no-op.
// Complexity: O(c).
func (m *Dense) SwapRows(i, k int) error {
	if i < 0 || i >= m.r || k < 0 || k >= m.r {
		return denseErrorf(ctxSwapRows, i, k, ErrOutOfRange)
	}
	if i == k {
		return nil
	}
	ri := m.data[i*m.c : (i+1)*m.c]
	rk := m.data[k*m.c : (k+1)*m.c]
	for j := range ri {
		ri[j], rk[j] = rk[j], ri[j]
	}

	return nil
}

// ScaleRow multiplies row i by alpha in place.
// This is the only mutating arithmetic on Dense; LU elimination relies on it.
func (m *Dense) ScaleRow(i int, alpha float64) error {
	if i < 0 || i >= m.r {
		return denseErrorf(ctxScaleRow, i, 0, ErrOutOfRange)
	}
	if m.validateNaNInf && (math.IsNaN(alpha) || math.IsInf(alpha, 0)) {
		return denseErrorf(ctxScaleRow, i, 0, ErrNaNInf)
	}
	row := m.data[i*m.c : (i+1)*m.c]
	for j := range row {
		row[j] *= alpha
	}

	return nil
}

// Paste copies block into m with its top-left corner at (r0, c0).
//
// Errors:
//   - ErrNilMatrix when block is nil.
//   - ErrShapeMismatch when the block does not fit inside m.
//
// Complexity: O(rows(block)*cols(block)).
func (m *Dense) Paste(r0, c0 int, block Matrix) error {
	if err := ValidateNotNil(block); err != nil {
		return denseErrorf(ctxPaste, r0, c0, err)
	}
	br, bc := block.Rows(), block.Cols()
	if r0 < 0 || c0 < 0 || r0+br > m.r || c0+bc > m.c {
		return denseErrorf(ctxPaste, r0, c0, ErrShapeMismatch)
	}
	var (
		i, j int
		v    float64
		err  error
	)
	// Fast path: flat row copies.
	if bd, ok := block.(*Dense); ok {
		for i = 0; i < br; i++ {
			copy(m.data[(r0+i)*m.c+c0:(r0+i)*m.c+c0+bc], bd.data[i*bc:(i+1)*bc])
		}

		return nil
	}
	for i = 0; i < br; i++ {
		for j = 0; j < bc; j++ {
			if v, err = block.At(i, j); err != nil {
				return denseErrorf(ctxPaste, i, j, err)
			}
			m.data[(r0+i)*m.c+c0+j] = v
		}
	}

	return nil
}

// Slice copies the block [r0:r0+rows, c0:c0+cols) into a new Dense.
//
// Errors:
//   - ErrInvalidDimensions for non-positive rows/cols.
//   - ErrOutOfRange when the window leaves the matrix.
func (m *Dense) Slice(r0, c0, rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, denseErrorf(ctxSlice, rows, cols, ErrInvalidDimensions)
	}
	if r0 < 0 || c0 < 0 || r0+rows > m.r || c0+cols > m.c {
		return nil, denseErrorf(ctxSlice, r0, c0, ErrOutOfRange)
	}
	res, err := newDenseWithPolicy(rows, cols, m.validateNaNInf)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		copy(res.data[i*cols:(i+1)*cols], m.data[(r0+i)*m.c+c0:(r0+i)*m.c+c0+cols])
	}

	return res, nil
}

// Induced materializes a copy submatrix using explicit index sets.
//
// Behavior highlights:
//   - Policy is preserved from the base (validateNaNInf).
//   - Duplicates in index sets are allowed (repeated rows/cols in the result).
//   - Zero-area returns a legal Dense with a zero-length buffer.
//
// Errors:
//   - ErrOutOfRange (index outside bounds).
//
// Complexity:
//   - Time O(rp*cp), Space O(rp*cp).
func (m *Dense) Induced(rowsIdx, colsIdx []int) (*Dense, error) {
	rp := len(rowsIdx)
	cp := len(colsIdx)
	if rp == 0 || cp == 0 {
		res, _ := newDenseZeroOK(rp, cp)
		res.validateNaNInf = m.validateNaNInf

		return res, nil
	}

	res, err := newDenseWithPolicy(rp, cp, m.validateNaNInf)
	if err != nil {
		return nil, err
	}

	var i, j, ri, cj int
	for i = 0; i < rp; i++ {
		ri = rowsIdx[i]
		if ri < 0 || ri >= m.r {
			return nil, fmt.Errorf("Dense.%s: row index %d: %w", ctxInduce, ri, ErrOutOfRange)
		}
		for j = 0; j < cp; j++ {
			cj = colsIdx[j]
			if cj < 0 || cj >= m.c {
				return nil, fmt.Errorf("Dense.%s: col index %d: %w", ctxInduce, cj, ErrOutOfRange)
			}
			res.data[i*cp+j] = m.data[ri*m.c+cj]
		}
	}

	return res, nil
}
