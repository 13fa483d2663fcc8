package models

import (
	"sort"

	"github.com/agrisense/hypercore/hypergraph"
)

// visionAnomalyScoreCol is the anomaly_score column of the vision layer
// (canopy_coverage, growth_stage, anomaly_score, ndvi).
const visionAnomalyScoreCol = 2

// layerEdgeMembership is a thin convenience wrapper over
// hypergraph.EdgeMembers that swallows a missing-layer error into empty
// results, since every caller here has already checked layer presence via
// a snapshot.
func layerEdgeMembership(g *hypergraph.LayeredHyperGraph, tag hypergraph.LayerTag) ([]string, [][]string) {
	edgeIDs, members, err := g.EdgeMembers(tag)
	if err != nil {
		return nil, nil
	}

	return edgeIDs, members
}

func sortStrings(s []string) {
	sort.Strings(s)
}
