// SPDX-License-Identifier: MIT

package matrix

const (
	opAdd       = "Add"
	opSub       = "Sub"
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opInverse   = "Inverse"
	opLU        = "LU"
)

// Add returns the element-wise sum a+b. Contract: identical shapes.
// Complexity: O(rows*cols).
func Add(a, b *Dense) (*Dense, error) {
	if !sameShape(a, b) {
		return nil, matrixErrorf(opAdd, ErrDimensionMismatch)
	}
	out, _ := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}

	return out, nil
}

// Sub returns the element-wise difference a-b. Contract: identical shapes.
func Sub(a, b *Dense) (*Dense, error) {
	if !sameShape(a, b) {
		return nil, matrixErrorf(opSub, ErrDimensionMismatch)
	}
	out, _ := NewDense(a.rows, a.cols)
	for i := range a.data {
		out.data[i] = a.data[i] - b.data[i]
	}

	return out, nil
}

// Mul returns the matrix product a*b. Contract: a.Cols == b.Rows.
// Complexity: O(rows(a)*cols(a)*cols(b)).
func Mul(a, b *Dense) (*Dense, error) {
	if a.cols != b.rows {
		return nil, matrixErrorf(opMul, ErrDimensionMismatch)
	}
	out, _ := NewDense(a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			av := a.data[i*a.cols+k]
			if av == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*out.cols+j] += av * b.data[k*b.cols+j]
			}
		}
	}

	return out, nil
}

// Transpose returns mᵀ.
func Transpose(m *Dense) *Dense {
	out, _ := NewDense(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i] = m.data[i*m.cols+j]
		}
	}

	return out
}

// Scale returns alpha*m.
func Scale(m *Dense, alpha float32) *Dense {
	out, _ := NewDense(m.rows, m.cols)
	for i := range m.data {
		out.data[i] = alpha * m.data[i]
	}

	return out
}

// LU factors square m as A = L*U (Doolittle, no pivoting), returning L
// (unit lower triangular) and U (upper triangular). ErrSingular on a zero
// pivot: a non-pivoting scheme, intentional for determinism and simplicity
// — every caller in this core solves against a ridge-regularized normal
// matrix (XᵀX + λI), which is symmetric positive definite and so never
// hits a zero pivot.
func LU(m *Dense) (l, u *Dense, err error) {
	if m.rows != m.cols {
		return nil, nil, matrixErrorf(opLU, ErrNonSquare)
	}
	n := m.rows
	u = m.Clone()
	l, _ = Identity(n)

	for k := 0; k < n; k++ {
		if u.data[k*n+k] == 0 {
			return nil, nil, matrixErrorf(opLU, ErrSingular)
		}
		for i := k + 1; i < n; i++ {
			factor := u.data[i*n+k] / u.data[k*n+k]
			l.data[i*n+k] = factor
			for j := k; j < n; j++ {
				u.data[i*n+j] -= factor * u.data[k*n+j]
			}
		}
	}

	return l, u, nil
}

// Inverse returns m⁻¹ via LU-based forward/back substitution on each unit
// basis vector. Used by the yield forecaster's ridge-regression solve
// (normal equations are always small: one column per feature).
func Inverse(m *Dense) (*Dense, error) {
	if m.rows != m.cols {
		return nil, matrixErrorf(opInverse, ErrNonSquare)
	}
	n := m.rows
	l, u, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	out, _ := NewDense(n, n)
	for col := 0; col < n; col++ {
		e := make([]float32, n)
		e[col] = 1

		y := forwardSubst(l, e)
		x := backSubst(u, y)
		for i := 0; i < n; i++ {
			out.data[i*n+col] = x[i]
		}
	}

	return out, nil
}

func forwardSubst(l *Dense, b []float32) []float32 {
	n := l.rows
	y := make([]float32, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= l.data[i*n+j] * y[j]
		}
		y[i] = sum / l.data[i*n+i]
	}

	return y
}

func backSubst(u *Dense, y []float32) []float32 {
	n := u.rows
	x := make([]float32, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= u.data[i*n+j] * x[j]
		}
		x[i] = sum / u.data[i*n+i]
	}

	return x
}

// Solve returns x satisfying a*x = b for square a, via LU then
// forward/back substitution.
func Solve(a *Dense, b []float32) ([]float32, error) {
	if a.rows != a.cols {
		return nil, matrixErrorf(opLU, ErrNonSquare)
	}
	if len(b) != a.rows {
		return nil, matrixErrorf(opLU, ErrDimensionMismatch)
	}
	l, u, err := LU(a)
	if err != nil {
		return nil, err
	}

	return backSubst(u, forwardSubst(l, b)), nil
}
