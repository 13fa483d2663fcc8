// Package contract is the external boundary of the layered hypergraph
// core: plain-data entry points, opaque serialization, and the
// process-wide cache + trained-residual cell. No sparse matrix or graph
// pointer crosses the analytics entry points — they take and return maps,
// slices, strings, and the typed structs defined here. SerializeGraph,
// DeserializeGraph and ProcessState's cache and residual accessors are
// the exceptions: they take or return *hypergraph.LayeredHyperGraph and
// *models.TrainedResidual values.
//
// Internally, contract converts the loose farm-configuration map into
// hypergraph.Profile, drives the hypergraph/models/synth packages, and
// converts their typed results back to plain data. It is the one package permitted to
// hold a package-level notion of "current state" — via ProcessState,
// constructed once by the embedder and threaded through every call.
package contract
