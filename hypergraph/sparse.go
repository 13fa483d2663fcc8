package hypergraph

import "sort"

// CSC is the canonical host-resident compressed-sparse-column form:
// 32-bit row indices, 32-bit float values. Columns are hyperedges,
// rows are vertices. Entries are 1.0 (member) — incidence carries no
// weight, only membership.
//
// Layout, standard CSC: for column j, the entries are
// RowIdx[ColPtr[j] : ColPtr[j+1]], with parallel Vals in the same range.
// ColPtr has length Cols+1; ColPtr[0] == 0 and ColPtr[Cols] == len(RowIdx).
type CSC struct {
	RowsN  int
	ColsN  int
	ColPtr []int32
	RowIdx []int32
	Vals   []float32
}

// NewEmptyCSC returns a rows x cols CSC matrix with no nonzero entries.
func NewEmptyCSC(rows, cols int) *CSC {
	return &CSC{
		RowsN:  rows,
		ColsN:  cols,
		ColPtr: make([]int32, cols+1),
		RowIdx: nil,
		Vals:   nil,
	}
}

// Rows and Cols report the matrix shape. Complexity: O(1).
func (m *CSC) Rows() int { return m.RowsN }
func (m *CSC) Cols() int { return m.ColsN }

// triplet is an intermediate (row, col, val) entry used while assembling a
// CSC matrix from edge-membership lists: ingest assembles (row, col)
// pairs on host, then compresses.
type triplet struct {
	row, col int32
	val      float32
}

// buildCSC compresses a set of triplets into canonical CSC form.
// Duplicate (row, col) pairs are rejected by the caller before this
// point; buildCSC itself only sorts and compresses, it does not
// deduplicate.
//
// Determinism: sort by (col, row); (row, col) pairs are unique, so the
// order is fully determined and repeated builds from the same triplet set
// produce byte-identical output.
func buildCSC(rows, cols int, trips []triplet) *CSC {
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].col != trips[j].col {
			return trips[i].col < trips[j].col
		}

		return trips[i].row < trips[j].row
	})

	m := &CSC{
		RowsN:  rows,
		ColsN:  cols,
		ColPtr: make([]int32, cols+1),
		RowIdx: make([]int32, len(trips)),
		Vals:   make([]float32, len(trips)),
	}
	for i, t := range trips {
		m.RowIdx[i] = t.row
		m.Vals[i] = t.val
	}
	// ColPtr[j] = number of entries with col < j, accumulated.
	col := int32(0)
	count := int32(0)
	for _, t := range trips {
		for col < t.col {
			m.ColPtr[col+1] = count
			col++
		}
		count++
	}
	for col < int32(cols) {
		m.ColPtr[col+1] = count
		col++
	}

	return m
}

// AppendColumn returns a new CSC with one additional column appended,
// containing 1.0 at each row in rows (sorted, deduplicated by the caller).
// The original matrix is not mutated (callers that want in-place topology
// mutation replace the Layer.Incidence pointer with the result).
func (m *CSC) AppendColumn(rows []int32) *CSC {
	trips := make([]triplet, 0, len(m.RowIdx)+len(rows))
	for c := 0; c < m.ColsN; c++ {
		for k := m.ColPtr[c]; k < m.ColPtr[c+1]; k++ {
			trips = append(trips, triplet{row: m.RowIdx[k], col: int32(c), val: m.Vals[k]})
		}
	}
	newCol := int32(m.ColsN)
	for _, r := range rows {
		trips = append(trips, triplet{row: r, col: newCol, val: 1.0})
	}

	return buildCSC(m.RowsN, m.ColsN+1, trips)
}

// RemoveColumn returns a new CSC with column idx deleted and all later
// columns shifted left by one.
func (m *CSC) RemoveColumn(idx int) *CSC {
	trips := make([]triplet, 0, len(m.RowIdx))
	for c := 0; c < m.ColsN; c++ {
		if c == idx {
			continue
		}
		newCol := int32(c)
		if c > idx {
			newCol = int32(c - 1)
		}
		for k := m.ColPtr[c]; k < m.ColPtr[c+1]; k++ {
			trips = append(trips, triplet{row: m.RowIdx[k], col: newCol, val: m.Vals[k]})
		}
	}

	return buildCSC(m.RowsN, m.ColsN-1, trips)
}

// AppendRow returns a new CSC with one more (zero) row; used when a vertex
// is added to the graph — incidence gets a new all-zero row at the bottom.
func (m *CSC) AppendRow() *CSC {
	out := &CSC{
		RowsN:  m.RowsN + 1,
		ColsN:  m.ColsN,
		ColPtr: append([]int32(nil), m.ColPtr...),
		RowIdx: append([]int32(nil), m.RowIdx...),
		Vals:   append([]float32(nil), m.Vals...),
	}

	return out
}

// ColumnDegree returns, for each column, the count of nonzero rows (the
// divisor used by AggregateByEdge's mean reducer).
func (m *CSC) ColumnDegree() []int {
	deg := make([]int, m.ColsN)
	for c := 0; c < m.ColsN; c++ {
		deg[c] = int(m.ColPtr[c+1] - m.ColPtr[c])
	}

	return deg
}

// Column returns the sorted row indices in column c.
func (m *CSC) Column(c int) []int32 {
	return m.RowIdx[m.ColPtr[c]:m.ColPtr[c+1]]
}

// Dense materializes m as a row-major |rows|x|cols| float32 slice. Used
// only where a dense view is genuinely required (cross-layer query output,
// aggregation output) — never to avoid sparse storage internally.
func (m *CSC) Dense() []float32 {
	out := make([]float32, m.RowsN*m.ColsN)
	for c := 0; c < m.ColsN; c++ {
		for k := m.ColPtr[c]; k < m.ColPtr[c+1]; k++ {
			out[int(m.RowIdx[k])*m.ColsN+c] = m.Vals[k]
		}
	}

	return out
}
