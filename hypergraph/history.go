package hypergraph

import "github.com/agrisense/hypercore/backend"

// PushFeatures overwrites vertex vid's current feature row in layer tag and
// appends it to the ring-buffer history, advancing the write head and
// saturating the length counter at H.
//
// Only the first min(len(feats), Dim) elements are written. A feats wider
// than the layer's current Dim grows Dim and zero-pads every pre-existing
// vertex row instead of erroring.
func (g *LayeredHyperGraph) PushFeatures(tag LayerTag, vid string, feats []float32) error {
	g.muVertex.RLock()
	row, ok := g.VertexIndex[vid]
	g.muVertex.RUnlock()
	if !ok {
		return hgErrorf("PushFeatures", ErrVertexNotFound)
	}

	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	l, ok := g.Layers[tag]
	if !ok {
		return hgErrorf("PushFeatures", ErrLayerNotFound)
	}

	if len(feats) > l.Dim {
		growLayerDim(l, len(g.VertexIDs), len(feats))
	}

	n := len(feats)
	if n > l.Dim {
		n = l.Dim
	}

	head := l.HistoryHead[row] // 1-indexed next write slot
	slot := (head - 1) % int32(l.HistoryDepth)

	// One work item per feature column, writing the live row and the ring
	// slot together. On accelerator residency this is a single vector-sized
	// kernel rather than many scalar stores.
	writeOne := func(f int) {
		l.VertexFeatures[row*l.Dim+f] = feats[f]
		l.FeatureHistory[row*l.Dim*l.HistoryDepth+f*l.HistoryDepth+int(slot)] = feats[f]
	}
	if backend.IsAccelerator(l.Residency) {
		_ = backend.Launch(backend.Parallel, n, 0, writeOne)
	} else {
		for f := 0; f < n; f++ {
			writeOne(f)
		}
	}

	l.HistoryHead[row] = head%int32(l.HistoryDepth) + 1
	if int(l.HistoryLength[row]) < l.HistoryDepth {
		l.HistoryLength[row]++
	}

	return nil
}

// growLayerDim widens l's feature width from its current Dim to newDim,
// re-laying out VertexFeatures and FeatureHistory so every pre-existing
// vertex's old columns land at the same column offsets and the new
// columns read zero.
func growLayerDim(l *Layer, nVertices, newDim int) {
	oldDim := l.Dim
	h := l.HistoryDepth

	newFeatures := make([]float32, nVertices*newDim)
	for v := 0; v < nVertices; v++ {
		copy(newFeatures[v*newDim:v*newDim+oldDim], l.VertexFeatures[v*oldDim:(v+1)*oldDim])
	}

	newHistory := make([]float32, nVertices*newDim*h)
	for v := 0; v < nVertices; v++ {
		for f := 0; f < oldDim; f++ {
			srcOff := v*oldDim*h + f*h
			dstOff := v*newDim*h + f*h
			copy(newHistory[dstOff:dstOff+h], l.FeatureHistory[srcOff:srcOff+h])
		}
	}

	l.VertexFeatures = newFeatures
	l.FeatureHistory = newHistory
	l.Dim = newDim
}

// GetHistory returns vertex vid's feature history in layer tag, oldest
// entry first, as a dense [length]x[Dim] row-major slice. length is the
// lesser of elapsed pushes and H.
func (g *LayeredHyperGraph) GetHistory(tag LayerTag, vid string) ([]float32, int, error) {
	g.muVertex.RLock()
	row, ok := g.VertexIndex[vid]
	g.muVertex.RUnlock()
	if !ok {
		return nil, 0, hgErrorf("GetHistory", ErrVertexNotFound)
	}

	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	l, ok := g.Layers[tag]
	if !ok {
		return nil, 0, hgErrorf("GetHistory", ErrLayerNotFound)
	}

	length := int(l.HistoryLength[row])
	out := make([]float32, length*l.Dim)
	if length == 0 {
		return out, 0, nil
	}

	head := int(l.HistoryHead[row]) - 1 // 0-indexed next write slot
	// Oldest valid slot is `length` steps behind head when the buffer has
	// wrapped (length == H); otherwise oldest is slot 0.
	oldest := (head - length + l.HistoryDepth) % l.HistoryDepth

	for i := 0; i < length; i++ {
		slot := (oldest + i) % l.HistoryDepth
		for f := 0; f < l.Dim; f++ {
			out[i*l.Dim+f] = l.FeatureHistory[row*l.Dim*l.HistoryDepth+f*l.HistoryDepth+slot]
		}
	}

	return out, length, nil
}
