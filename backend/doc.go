// Package backend selects and drives the numeric execution backend for the
// hypergraph engine: a host (CPU, goroutine-parallel) lane and a logical
// "parallel accelerator" lane.
//
// No accelerator binding is linked into this build, so Parallel residency
// is a marker over the same host memory rather than a real device
// allocation. Code written against Kind and Residency dispatches correctly
// today and has a single seam (Launch's worker-pool body) to swap in a
// real accelerator kernel queue later without touching call sites.
package backend
