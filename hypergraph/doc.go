// Package hypergraph implements the layered hypergraph that is the central
// data structure of the farm analytics core.
//
// A farm is modeled as up to seven layers (soil, irrigation, weather,
// lighting, crop_requirements, npk, vision), each holding a sparse
// vertex-to-hyperedge incidence matrix over one shared vertex index. Rows
// are vertices (sensors, valves, beds, cameras, stations); columns are
// hyperedges (zones, irrigation circuits, any typed relation over an
// arbitrary non-empty subset of vertices).
//
// Concurrency: a single graph is not safe for concurrent mutation and
// concurrent readers (callers serialize access per farm ID); internal
// locks only protect against the engine's own goroutine fan-out inside a
// single public call. The vertex-catalog lock is split from the
// per-layer topology lock so read paths never contend on mutation-heavy
// layers.
package hypergraph
