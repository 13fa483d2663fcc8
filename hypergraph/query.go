package hypergraph

import "github.com/agrisense/hypercore/backend"

// CrossLayerQuery computes the dense |E_a| x |E_b| co-membership matrix
// between two active layers (Bᵀ_a · B_b), where
// entry (i, j) is the number of vertices shared by edge i of layer a and
// edge j of layer b.
func (g *LayeredHyperGraph) CrossLayerQuery(a, b LayerTag) ([]float32, int, int, error) {
	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	la, ok := g.Layers[a]
	if !ok {
		return nil, 0, 0, hgErrorf("CrossLayerQuery", ErrLayerNotFound)
	}
	lb, ok := g.Layers[b]
	if !ok {
		return nil, 0, 0, hgErrorf("CrossLayerQuery", ErrLayerNotFound)
	}

	kind := launchKind(la.Residency)
	if backend.IsAccelerator(lb.Residency) {
		kind = backend.Parallel
	}
	out := crossLayerDense(la.Incidence, lb.Incidence, kind)

	return out, la.Incidence.ColsN, lb.Incidence.ColsN, nil
}

// QueryLayer returns the current feature row for vid in layer tag.
func (g *LayeredHyperGraph) QueryLayer(tag LayerTag, vid string) ([]float32, error) {
	g.muVertex.RLock()
	row, ok := g.VertexIndex[vid]
	g.muVertex.RUnlock()
	if !ok {
		return nil, hgErrorf("QueryLayer", ErrVertexNotFound)
	}

	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	l, ok := g.Layers[tag]
	if !ok {
		return nil, hgErrorf("QueryLayer", ErrLayerNotFound)
	}

	out := make([]float32, l.Dim)
	copy(out, l.VertexFeatures[row*l.Dim:(row+1)*l.Dim])

	return out, nil
}

// EdgeMembers returns, for layer tag, the edge IDs in column order together
// with each edge's member vertex IDs — the shape model-layer aggregation
// (irrigation zones, npk zones, crop-requirement beds) folds per-vertex
// records into per-edge records over.
func (g *LayeredHyperGraph) EdgeMembers(tag LayerTag) ([]string, [][]string, error) {
	g.muVertex.RLock()
	g.muLayers.RLock()
	defer g.muVertex.RUnlock()
	defer g.muLayers.RUnlock()

	l, ok := g.Layers[tag]
	if !ok {
		return nil, nil, hgErrorf("EdgeMembers", ErrLayerNotFound)
	}

	members := make([][]string, l.Incidence.ColsN)
	for c := 0; c < l.Incidence.ColsN; c++ {
		rows := l.Incidence.Column(c)
		vids := make([]string, len(rows))
		for i, r := range rows {
			vids[i] = g.VertexIDs[r]
		}
		members[c] = vids
	}

	edgeIDs := make([]string, len(l.EdgeIDs))
	copy(edgeIDs, l.EdgeIDs)

	return edgeIDs, members, nil
}

// Snapshot reports, per materialized layer, vertex count/edge count/feature
// dim — a debug helper useful for logging and tests without exposing
// internal slices.
func (g *LayeredHyperGraph) Snapshot() map[LayerTag][3]int {
	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	out := make(map[LayerTag][3]int, len(g.Layers))
	for tag, l := range g.Layers {
		out[tag] = [3]int{l.Incidence.RowsN, l.Incidence.ColsN, l.Dim}
	}

	return out
}
