package hypergraph

import "github.com/agrisense/hypercore/backend"

// rowToCols inverts a CSC matrix's column->rows mapping into a per-row list
// of incident columns, used by cross-layer query and aggregation. O(nnz).
func rowToCols(m *CSC) [][]int32 {
	out := make([][]int32, m.RowsN)
	for c := 0; c < m.ColsN; c++ {
		for k := m.ColPtr[c]; k < m.ColPtr[c+1]; k++ {
			r := m.RowIdx[k]
			out[r] = append(out[r], int32(c))
		}
	}

	return out
}

// crossLayerDense computes the dense |cols(a)| x |cols(b)| matrix whose
// (i,j) entry is |members(edge_i of a) ∩ members(edge_j of b)|, i.e. the
// sparse product Bᵀ_a · B_b. Each work item owns one output row (one
// column of a), so the launch is write-disjoint.
func crossLayerDense(a, b *CSC, kind backend.Kind) []float32 {
	out := make([]float32, a.ColsN*b.ColsN)
	if a.RowsN != b.RowsN {
		return out
	}

	bRowCols := rowToCols(b)
	// Walk a column-by-column (sparse in a), and for each incident row,
	// fan out over b's columns incident to that row.
	_ = backend.Launch(kind, a.ColsN, 0, func(ca int) {
		for k := a.ColPtr[ca]; k < a.ColPtr[ca+1]; k++ {
			v := a.RowIdx[k]
			for _, cb := range bRowCols[v] {
				out[ca*b.ColsN+int(cb)]++
			}
		}
	})

	return out
}

// aggregateSum computes Bᵀ · F for incidence B (|V|x|E|) and dense features
// F (|V|xD row-major), returning a dense |E|xD row-major matrix (the
// "sum" reducer). One work item per edge column; writes are disjoint.
func aggregateSum(b *CSC, features []float32, dim int, kind backend.Kind) []float32 {
	out := make([]float32, b.ColsN*dim)
	_ = backend.Launch(kind, b.ColsN, 0, func(c int) {
		for k := b.ColPtr[c]; k < b.ColPtr[c+1]; k++ {
			v := int(b.RowIdx[k])
			for f := 0; f < dim; f++ {
				out[c*dim+f] += features[v*dim+f]
			}
		}
	})

	return out
}

// aggregateMean computes aggregateSum divided by per-column degree, with a
// floor of 1 on the divisor to avoid division by zero.
func aggregateMean(b *CSC, features []float32, dim int, kind backend.Kind) []float32 {
	sum := aggregateSum(b, features, dim, kind)
	deg := b.ColumnDegree()
	for c := 0; c < b.ColsN; c++ {
		d := deg[c]
		if d < 1 {
			d = 1
		}
		for f := 0; f < dim; f++ {
			sum[c*dim+f] /= float32(d)
		}
	}

	return sum
}
