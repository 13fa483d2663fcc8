// SPDX-License-Identifier: MIT

package matrix

import "math"

const opCholesky = "Cholesky"

// jitterBase is the initial diagonal jitter added to a near-singular
// correlation matrix before factoring (10^-5 * I).
const jitterBase = 1e-5

// jitterEscalations caps the number of 10x jitter-escalation attempts
// before the generator falls back to a flat 0.1 * I jitter.
const jitterEscalations = 6

// jitterFallback is applied once the escalation ladder is exhausted.
const jitterFallback = 0.1

// Cholesky factors a symmetric positive definite n x n matrix m as
// L*Lᵀ, used by the synthetic generator to inject cross-sensor
// correlation into otherwise-independent noise draws. A correlation
// matrix assembled from a hand-specified target can be marginally
// non-PD due to rounding; CholeskyJittered compensates by escalating a
// diagonal perturbation rather than failing the run outright.
func Cholesky(m *Dense) (*Dense, error) {
	if m.rows != m.cols {
		return nil, matrixErrorf(opCholesky, ErrNonSquare)
	}
	n := m.rows
	l, _ := NewDense(n, n)

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m.data[i*n+j]
			for k := 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if sum <= 0 {
					return nil, matrixErrorf(opCholesky, ErrNotPositiveDefinite)
				}
				l.data[i*n+i] = sqrt32(sum)
			} else {
				l.data[i*n+j] = sum / l.data[j*n+j]
			}
		}
	}

	return l, nil
}

// CholeskyJittered attempts Cholesky(m), and on failure retries against
// m + jitter*I with jitter escalating 10^-5, 10^-4, ..., up to
// jitterEscalations attempts, then a final attempt at a flat 0.1*I jitter.
// Returns the factor along with the jitter magnitude actually used (0 if
// the original matrix factored cleanly).
func CholeskyJittered(m *Dense) (*Dense, float32, error) {
	if l, err := Cholesky(m); err == nil {
		return l, 0, nil
	}

	jitter := float32(jitterBase)
	for attempt := 0; attempt < jitterEscalations; attempt++ {
		perturbed := addDiagonal(m, jitter)
		if l, err := Cholesky(perturbed); err == nil {
			return l, jitter, nil
		}
		jitter *= 10
	}

	perturbed := addDiagonal(m, jitterFallback)
	l, err := Cholesky(perturbed)
	if err != nil {
		return nil, 0, matrixErrorf(opCholesky, err)
	}

	return l, jitterFallback, nil
}

func addDiagonal(m *Dense, v float32) *Dense {
	out := m.Clone()
	for i := 0; i < out.rows; i++ {
		out.data[i*out.cols+i] += v
	}

	return out
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
