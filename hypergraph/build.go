package hypergraph

import "sort"

// VertexDef is one entry of the farm profile's vertex list.
type VertexDef struct {
	ID   string
	Type string
}

// EdgeDef is one entry of the farm profile's edge list.
type EdgeDef struct {
	ID       string
	Layer    LayerTag
	Vertices []string
	Metadata map[string]string
}

// Profile is the typed form of the farm configuration. Loose-map
// conversion lives in package contract; hypergraph only ever sees this
// typed shape.
type Profile struct {
	FarmID       string
	FarmType     string
	ActiveLayers []LayerTag
	Models       ModelToggles
	Vertices     []VertexDef
	Edges        []EdgeDef
	HistorySize  int
}

// Build constructs an owned graph from a farm profile, a vertex list,
// and an edge list.
//
// Steps:
//  1. Validate active layer tags and every edge's layer tag against the
//     closed set (ConfigError).
//  2. Register all vertices in a dense 0..|V|-1 index (insertion order,
//     duplicates collapsed — a profile listing the same vertex twice is
//     not an error at build time, only AddVertex post-build rejects dupes).
//  3. Group edge definitions by layer; for each layer with at least one
//     edge, collect (row, col) triplets, dropping unknown vertex ids,
//     and compress to CSC.
//  4. Allocate zero-initialized features and history for every
//     materialized layer.
//
// Layers with zero edges are not materialized: Build itself never
// creates an empty layer proactively; the first AddHyperedge into a
// fresh tag does.
func Build(p Profile) (*LayeredHyperGraph, error) {
	for _, tag := range p.ActiveLayers {
		if !IsKnownLayer(tag) {
			return nil, hgErrorf("Build", ErrConfigError)
		}
	}
	for _, e := range p.Edges {
		if !IsKnownLayer(e.Layer) {
			return nil, hgErrorf("Build", ErrConfigError)
		}
	}

	g := NewEmpty(p.FarmID, p.FarmType, p.HistorySize)
	g.ModelToggles = p.Models

	for _, v := range p.Vertices {
		if _, exists := g.VertexIndex[v.ID]; exists {
			continue
		}
		g.VertexIndex[v.ID] = len(g.VertexIDs)
		g.VertexIDs = append(g.VertexIDs, v.ID)
		g.VertexTypes = append(g.VertexTypes, v.Type)
	}

	byLayer := make(map[LayerTag][]EdgeDef)
	for _, e := range p.Edges {
		byLayer[e.Layer] = append(byLayer[e.Layer], e)
	}

	// Deterministic layer materialization order.
	tags := make([]LayerTag, 0, len(byLayer))
	for t := range byLayer {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	for _, tag := range tags {
		defs := byLayer[tag]
		if len(defs) == 0 {
			continue
		}
		layer := g.newLayer(tag)

		trips := make([]triplet, 0, len(defs)*2)
		for col, e := range defs {
			seen := make(map[int32]bool)
			for _, vid := range e.Vertices {
				row, ok := g.VertexIndex[vid]
				if !ok {
					continue // unknown vertex id silently dropped
				}
				r := int32(row)
				if seen[r] {
					continue
				}
				seen[r] = true
				trips = append(trips, triplet{row: r, col: int32(col), val: 1.0})
			}
			layer.EdgeIDs = append(layer.EdgeIDs, e.ID)
			layer.EdgeMetadata = append(layer.EdgeMetadata, cloneMeta(e.Metadata))
		}
		layer.Incidence = buildCSC(len(g.VertexIDs), len(defs), trips)
		g.Layers[tag] = layer
	}

	return g, nil
}

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
