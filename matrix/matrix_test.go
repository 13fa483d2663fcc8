// SPDX-License-Identifier: MIT

package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func denseFrom(t *testing.T, rows, cols int, vals []float32) *Dense {
	t.Helper()
	m, err := NewDenseFromRowMajor(rows, cols, vals)
	require.NoError(t, err)

	return m
}

func TestAddSub(t *testing.T) {
	a := denseFrom(t, 2, 2, []float32{1, 2, 3, 4})
	b := denseFrom(t, 2, 2, []float32{4, 3, 2, 1})

	sum, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 5, 5, 5}, sum.data)

	diff, err := Sub(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float32{-3, -1, 1, 3}, diff.data)
}

func TestAdd_ShapeMismatch(t *testing.T) {
	a := denseFrom(t, 2, 2, []float32{1, 2, 3, 4})
	b := denseFrom(t, 1, 2, []float32{1, 2})

	_, err := Add(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestMul(t *testing.T) {
	a := denseFrom(t, 2, 3, []float32{1, 2, 3, 4, 5, 6})
	b := denseFrom(t, 3, 2, []float32{7, 8, 9, 10, 11, 12})

	out, err := Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 2, out.Cols())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.data)
}

func TestTransposeAndScale(t *testing.T) {
	m := denseFrom(t, 2, 3, []float32{1, 2, 3, 4, 5, 6})
	tr := Transpose(m)
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	v, _ := tr.At(2, 1)
	assert.Equal(t, float32(6), v)

	scaled := Scale(m, 2)
	assert.Equal(t, []float32{2, 4, 6, 8, 10, 12}, scaled.data)
}

func TestLUAndInverse_RoundTrip(t *testing.T) {
	a := denseFrom(t, 3, 3, []float32{4, 2, 1, 2, 5, 2, 1, 2, 4})

	inv, err := Inverse(a)
	require.NoError(t, err)

	product, err := Mul(a, inv)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			got, _ := product.At(i, j)
			assert.InDelta(t, want, got, 1e-3)
		}
	}
}

func TestSolve(t *testing.T) {
	a := denseFrom(t, 2, 2, []float32{2, 0, 0, 2})
	x, err := Solve(a, []float32{4, 6})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, x)
}

func TestCholesky_IdentityIsItself(t *testing.T) {
	id, _ := Identity(3)
	l, err := Cholesky(id)
	require.NoError(t, err)
	assert.Equal(t, id.data, l.data)
}

func TestCholesky_ReconstructsOriginal(t *testing.T) {
	// A simple valid correlation-like SPD matrix.
	a := denseFrom(t, 2, 2, []float32{1, 0.5, 0.5, 1})
	l, err := Cholesky(a)
	require.NoError(t, err)

	lt := Transpose(l)
	reconstructed, err := Mul(l, lt)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want, _ := a.At(i, j)
			got, _ := reconstructed.At(i, j)
			assert.InDelta(t, want, got, 1e-4)
		}
	}
}

func TestCholeskyJittered_RecoversFromNonPD(t *testing.T) {
	// Slightly indefinite due to an overstated off-diagonal.
	bad := denseFrom(t, 2, 2, []float32{1, 1.2, 1.2, 1})

	l, jitter, err := CholeskyJittered(bad)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Greater(t, jitter, float32(0))
}
