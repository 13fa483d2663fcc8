package hypergraph

import "github.com/agrisense/hypercore/backend"

// ToDevice marks layer tag as resident on the parallel backend. No data
// moves — residency is a scheduling hint for Launch call sites, not a real
// device transfer (see package backend's doc comment).
func (g *LayeredHyperGraph) ToDevice(tag LayerTag) error {
	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	l, ok := g.Layers[tag]
	if !ok {
		return hgErrorf("ToDevice", ErrLayerNotFound)
	}
	l.Residency = backend.ResidentParallel

	return nil
}

// ToHost marks layer tag as host-resident, the inverse of ToDevice.
func (g *LayeredHyperGraph) ToHost(tag LayerTag) error {
	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	l, ok := g.Layers[tag]
	if !ok {
		return hgErrorf("ToHost", ErrLayerNotFound)
	}
	l.Residency = backend.EnsureHost(l.Residency)

	return nil
}

// AllToDevice marks every materialized layer as parallel-resident. Only
// the numeric arrays change lane; vertex/edge identifiers and metadata
// always stay host-side.
func (g *LayeredHyperGraph) AllToDevice() {
	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	for _, l := range g.Layers {
		l.Residency = backend.ResidentParallel
	}
}

// AllToHost marks every materialized layer host-resident, the inverse of
// AllToDevice. A round trip leaves every numeric array value-identical.
func (g *LayeredHyperGraph) AllToHost() {
	g.muLayers.Lock()
	defer g.muLayers.Unlock()

	for _, l := range g.Layers {
		l.Residency = backend.EnsureHost(l.Residency)
	}
}

// Residency reports tag's current residency marker.
func (g *LayeredHyperGraph) Residency(tag LayerTag) (backend.Residency, error) {
	g.muLayers.RLock()
	defer g.muLayers.RUnlock()

	l, ok := g.Layers[tag]
	if !ok {
		return backend.ResidentHost, hgErrorf("Residency", ErrLayerNotFound)
	}

	return l.Residency, nil
}
