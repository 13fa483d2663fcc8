package hypergraph

import "github.com/agrisense/hypercore/backend"

// Reducer selects the aggregation applied by AggregateByEdge.
type Reducer string

const (
	ReduceSum  Reducer = "sum"
	ReduceMean Reducer = "mean"
)

// AggregateByEdge reduces layer tag's current vertex features to its edges
// via Bᵀ·F (sum) or the degree-normalized mean, returning a dense
// |E_l| x Dim row-major matrix. An unrecognized reducer falls back to sum,
// a documented default rather than a rejected call on a cosmetic parameter.
func (g *LayeredHyperGraph) AggregateByEdge(tag LayerTag, reducer Reducer) ([]float32, int, int, error) {
	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	l, ok := g.Layers[tag]
	if !ok {
		return nil, 0, 0, hgErrorf("AggregateByEdge", ErrLayerNotFound)
	}

	var out []float32
	switch reducer {
	case ReduceMean:
		out = aggregateMean(l.Incidence, l.VertexFeatures, l.Dim, launchKind(l.Residency))
	default:
		out = aggregateSum(l.Incidence, l.VertexFeatures, l.Dim, launchKind(l.Residency))
	}

	return out, l.Incidence.ColsN, l.Dim, nil
}

// MultiLayerFeatures concatenates vid's current feature row across tags, in
// the order given, into a single dense vector. A nil tags slice means
// every layer, in KnownLayers order. Unmaterialized layers are skipped
// rather than erroring, so callers can request the full known-layer set
// against a graph that has not materialized every layer yet.
func (g *LayeredHyperGraph) MultiLayerFeatures(vid string, tags []LayerTag) ([]float32, error) {
	if tags == nil {
		tags = KnownLayers()
	}

	g.muVertex.RLock()
	row, ok := g.VertexIndex[vid]
	g.muVertex.RUnlock()
	if !ok {
		return nil, hgErrorf("MultiLayerFeatures", ErrVertexNotFound)
	}

	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	var out []float32
	for _, tag := range tags {
		l, ok := g.Layers[tag]
		if !ok {
			continue
		}
		out = append(out, l.VertexFeatures[row*l.Dim:(row+1)*l.Dim]...)
	}

	return out, nil
}

// launchKind maps a layer's residency to the lane its kernels launch on.
func launchKind(r backend.Residency) backend.Kind {
	if backend.IsAccelerator(r) {
		return backend.Parallel
	}

	return backend.Host
}
