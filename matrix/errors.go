// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set. Algorithms return these directly (or
// wrapped via matrixErrorf at the public boundary); callers discriminate
// with errors.Is, never string matching.

package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrBadShape is returned when a requested shape is invalid (r<=0 or c<=0).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates a row/column index outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible operand dimensions.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrSingular is returned when a zero pivot is encountered during
	// LU/Inverse.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrNotPositiveDefinite signals Cholesky met a non-positive pivot.
	// CholeskyJittered returns it only when the jitter-escalation ladder
	// and the flat fallback jitter also fail.
	ErrNotPositiveDefinite = errors.New("matrix: not positive definite")
)

// matrixErrorf wraps err with an operation tag, the package's single
// wrapping convention.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("matrix.%s: %w", tag, err)
}
