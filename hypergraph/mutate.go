package hypergraph

// AddVertex registers a new vertex, appending a zero row to every
// materialized layer's incidence matrix and feature storage so all layers
// keep the same row count as the global vertex index.
//
// Concurrency: takes both locks since it touches the shared vertex index
// and every layer's storage in one atomic step.
func (g *LayeredHyperGraph) AddVertex(id, vtype string) error {
	g.muVertex.Lock()
	defer g.muVertex.Unlock()

	if _, exists := g.VertexIndex[id]; exists {
		return hgErrorf("AddVertex", ErrDuplicateVertex)
	}

	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	g.VertexIndex[id] = len(g.VertexIDs)
	g.VertexIDs = append(g.VertexIDs, id)
	g.VertexTypes = append(g.VertexTypes, vtype)

	for _, l := range g.Layers {
		l.Incidence = l.Incidence.AppendRow()
		l.VertexFeatures = append(l.VertexFeatures, make([]float32, l.Dim)...)
		l.FeatureHistory = append(l.FeatureHistory, make([]float32, l.Dim*l.HistoryDepth)...)
		l.HistoryHead = append(l.HistoryHead, 1)
		l.HistoryLength = append(l.HistoryLength, 0)
	}

	return nil
}

// AddHyperedge inserts e into its layer, materializing the layer on first
// use (invariant 6: adding a hyperedge to a not-yet-materialized layer
// creates it). Unknown member vertex ids are dropped (invariant 4); if
// every member id is unknown the edge is rejected with ErrEmptyHyperedge
// and nothing is mutated.
func (g *LayeredHyperGraph) AddHyperedge(e Hyperedge) error {
	if !IsKnownLayer(e.Layer) {
		return hgErrorf("AddHyperedge", ErrConfigError)
	}

	g.muVertex.RLock()
	rows := make([]int32, 0, len(e.Vertices))
	seen := make(map[int32]bool)
	for _, vid := range e.Vertices {
		row, ok := g.VertexIndex[vid]
		if !ok {
			continue
		}
		r := int32(row)
		if seen[r] {
			continue
		}
		seen[r] = true
		rows = append(rows, r)
	}
	g.muVertex.RUnlock()

	if len(rows) == 0 {
		return hgErrorf("AddHyperedge", ErrEmptyHyperedge)
	}

	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	l, ok := g.Layers[e.Layer]
	if !ok {
		l = g.newLayer(e.Layer)
		g.Layers[e.Layer] = l
	}

	l.Incidence = l.Incidence.AppendColumn(rows)
	l.EdgeIDs = append(l.EdgeIDs, e.ID)
	l.EdgeMetadata = append(l.EdgeMetadata, cloneMeta(e.Metadata))

	return nil
}

// RemoveHyperedge deletes the edge identified by id from layer tag,
// returning false (not an error) if the layer or edge id does not exist.
func (g *LayeredHyperGraph) RemoveHyperedge(tag LayerTag, id string) (bool, error) {
	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	l, ok := g.Layers[tag]
	if !ok {
		return false, nil
	}

	idx := -1
	for i, eid := range l.EdgeIDs {
		if eid == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	l.Incidence = l.Incidence.RemoveColumn(idx)
	l.EdgeIDs = append(l.EdgeIDs[:idx], l.EdgeIDs[idx+1:]...)
	l.EdgeMetadata = append(l.EdgeMetadata[:idx], l.EdgeMetadata[idx+1:]...)

	return true, nil
}
