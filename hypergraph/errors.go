package hypergraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for the hypergraph engine. Callers discriminate failure
// categories with errors.Is, never by matching error strings.
var (
	// ErrConfigError flags a malformed farm profile or unknown layer tag.
	ErrConfigError = errors.New("hypergraph: invalid configuration")

	// ErrLayerNotFound flags a reference to a layer absent from the graph,
	// in a context where absence is a precondition violation.
	ErrLayerNotFound = errors.New("hypergraph: layer not found")

	// ErrVertexNotFound flags a reference to a vertex absent from the
	// global vertex index, in a context where absence is a precondition
	// violation.
	ErrVertexNotFound = errors.New("hypergraph: vertex not found")

	// ErrDuplicateVertex flags AddVertex called with an already-indexed id.
	ErrDuplicateVertex = errors.New("hypergraph: duplicate vertex")

	// ErrEmptyHyperedge flags an attempt to add a hyperedge whose vertex
	// membership, after dropping unknown ids, would be empty.
	ErrEmptyHyperedge = errors.New("hypergraph: hyperedge has no resolvable vertices")
)

// hgErrorf wraps err with an operation tag, the same per-package
// Errorf-wrapper convention matrix and contract also use.
func hgErrorf(op string, err error) error {
	return fmt.Errorf("hypergraph.%s: %w", op, err)
}
