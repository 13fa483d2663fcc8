package contract

import (
	"sync"

	"github.com/agrisense/hypercore/hypergraph"
	"github.com/agrisense/hypercore/models"
)

// ProcessState encapsulates the two process-wide resources shared
// across entry-point calls: the farm-id -> owned-graph cache, and the
// single trained residual-coefficient cell. Both live behind a small
// object constructed once and threaded through explicitly, rather than
// package-level globals, so tests can run concurrent ProcessStates
// without cross-contamination.
//
// The single mutex serializes every read and write of both resources.
// Readers receive the stored pointer itself, not a copy: a later
// ClearCache drops the cache's reference but leaves a graph or residual
// already handed to a caller intact.
type ProcessState struct {
	mu       sync.Mutex
	graphs   map[string]*hypergraph.LayeredHyperGraph
	residual *models.TrainedResidual
}

// NewProcessState constructs an empty process state: no cached graphs,
// no trained residual.
func NewProcessState() *ProcessState {
	return &ProcessState{
		graphs: make(map[string]*hypergraph.LayeredHyperGraph),
	}
}

// CacheGraph stores g under farmID, replacing any previously cached graph
// for that id. The cache owns g exclusively from this point.
func (ps *ProcessState) CacheGraph(farmID string, g *hypergraph.LayeredHyperGraph) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.graphs[farmID] = g
}

// GetCachedGraph returns the graph cached under farmID, or ErrNotCached
// if none is resident.
func (ps *ProcessState) GetCachedGraph(farmID string) (*hypergraph.LayeredHyperGraph, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	g, ok := ps.graphs[farmID]
	if !ok {
		return nil, contractErrorf("GetCachedGraph", ErrNotCached)
	}

	return g, nil
}

// EvictGraph removes farmID's cached graph, if any. Not an error to
// evict an id that was never cached.
func (ps *ProcessState) EvictGraph(farmID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.graphs, farmID)
}

// ClearCache releases every cached graph and drops the trained residual
// cell. Dropping the last reference is sufficient release for a
// garbage-collected host; an accelerator-resident graph's Layer.Residency
// is advisory bookkeeping only, so nothing further needs an explicit
// free.
func (ps *ProcessState) ClearCache() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.graphs = make(map[string]*hypergraph.LayeredHyperGraph)
	ps.residual = nil
}

// SetResidual installs r as the single process-wide trained residual,
// read by every subsequent YieldForecast call.
func (ps *ProcessState) SetResidual(r *models.TrainedResidual) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.residual = r
}

// Residual returns the currently installed trained residual, or nil if
// none has been trained yet in this process.
func (ps *ProcessState) Residual() *models.TrainedResidual {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.residual
}
