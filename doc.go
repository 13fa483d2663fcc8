// Package hypercore is the layered hypergraph computation core of an
// agricultural analytics system.
//
// A farm is modeled as a layered hypergraph: up to seven layers (soil,
// irrigation, weather, lighting, crop_requirements, npk, vision), each a
// sparse vertex-to-hyperedge incidence matrix sharing one global vertex
// index. Cross-layer relationships fall out as sparse matrix products;
// per-vertex reductions fall out as broadcasts and sparse matrix-vector
// multiplies.
//
// Subpackages, leaves first:
//
//	backend/    — host/parallel-accelerator selection, launch, residency
//	hypergraph/ — the graph type: incidence, features, ring-buffer history
//	matrix/     — dense linear algebra (ridge regression, Cholesky noise)
//	models/     — irrigation, nutrients, yield, anomaly-detection analytics
//	synth/      — correlated multi-layer synthetic dataset generator
//	contract/   — the external boundary: plain-data IO, serialization,
//	              process-wide cache and trained-residual state
//
// Every exported entry point in contract/ takes and returns plain Go data
// (maps, slices, structs) — no device pointer, sparse-matrix handle, or
// mutex ever crosses that boundary.
package hypercore
