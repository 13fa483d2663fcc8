package contract

import (
	"github.com/agrisense/hypercore/backend"
	"github.com/agrisense/hypercore/hypergraph"
)

// rehydrateLayer reconstructs one layer directly into g.Layers, validating
// the parallel-array shapes a corrupt or hand-edited serialized state
// could violate.
func rehydrateLayer(g *hypergraph.LayeredHyperGraph, tag hypergraph.LayerTag, sl SerializedLayer) error {
	n := len(g.VertexIDs)
	if sl.NVertices != n {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}
	if len(sl.IncidenceRows) != len(sl.IncidenceCols) || len(sl.IncidenceRows) != len(sl.IncidenceVals) {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}
	if sl.Dim <= 0 || len(sl.VertexFeatures) != n*sl.Dim {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}
	if sl.HistoryDepth <= 0 || len(sl.FeatureHistory) != n*sl.Dim*sl.HistoryDepth {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}
	if len(sl.HistoryHead) != n || len(sl.HistoryLength) != n {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}
	if len(sl.EdgeIDs) != sl.NEdges || len(sl.EdgeMetadata) != sl.NEdges {
		return contractErrorf("rehydrateLayer", ErrDeserializeError)
	}

	incidence, err := buildCSCFromParallel(sl.IncidenceRows, sl.IncidenceCols, sl.IncidenceVals, n, sl.NEdges)
	if err != nil {
		return err
	}

	l := &hypergraph.Layer{
		Tag:            tag,
		Incidence:      incidence,
		VertexFeatures: append([]float32(nil), sl.VertexFeatures...),
		Dim:            sl.Dim,
		FeatureHistory: append([]float32(nil), sl.FeatureHistory...),
		HistoryDepth:   sl.HistoryDepth,
		HistoryHead:    append([]int32(nil), sl.HistoryHead...),
		HistoryLength:  append([]int32(nil), sl.HistoryLength...),
		EdgeIDs:        append([]string(nil), sl.EdgeIDs...),
		EdgeMetadata:   sl.EdgeMetadata,
		Residency:      backend.ResidentHost,
	}

	g.Layers[tag] = l

	return nil
}

// buildCSCFromParallel reconstructs a CSC matrix from the three parallel
// arrays the serialized form carries. rows/cols/vals must be grouped by
// column in ascending column order (the order SerializeGraph emits them
// in); this rebuilds ColPtr from per-column counts rather than
// re-sorting, so a cols array out of that order is rejected with
// ErrDeserializeError, not silently re-sorted.
func buildCSCFromParallel(rows, cols []int32, vals []float32, nRows, nCols int) (*hypergraph.CSC, error) {
	for _, r := range rows {
		if int(r) < 0 || int(r) >= nRows {
			return nil, contractErrorf("buildCSCFromParallel", ErrDeserializeError)
		}
	}
	prev := int32(0)
	for _, c := range cols {
		if int(c) < 0 || int(c) >= nCols || c < prev {
			return nil, contractErrorf("buildCSCFromParallel", ErrDeserializeError)
		}
		prev = c
	}

	colPtr := make([]int32, nCols+1)
	for _, c := range cols {
		colPtr[c+1]++
	}
	for c := 0; c < nCols; c++ {
		colPtr[c+1] += colPtr[c]
	}

	return &hypergraph.CSC{
		RowsN:  nRows,
		ColsN:  nCols,
		ColPtr: colPtr,
		RowIdx: append([]int32(nil), rows...),
		Vals:   append([]float32(nil), vals...),
	}, nil
}
