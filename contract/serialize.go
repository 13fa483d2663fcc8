package contract

import (
	"fmt"
	"sort"

	"github.com/agrisense/hypercore/hypergraph"
)

// SerializedLayer is one layer's opaque cross-boundary form:
// incidence as three parallel arrays, vertex_features as a flattened
// dense 2D array (NVertices x Dim, row-major), feature_history as a
// flattened dense 3D array (NVertices x Dim x HistoryDepth, row-major).
// HistoryDepth is carried explicitly so the ring buffer's third
// dimension rehydrates exactly.
type SerializedLayer struct {
	IncidenceRows  []int32
	IncidenceCols  []int32
	IncidenceVals  []float32
	NVertices      int
	NEdges         int
	Dim            int
	VertexFeatures []float32
	FeatureHistory []float32
	HistoryDepth   int
	HistoryHead    []int32
	HistoryLength  []int32
	EdgeMetadata   []map[string]string
	VertexIDs      []string
	EdgeIDs        []string
}

// SerializedModelToggles mirrors hypergraph.ModelToggles in the
// serialized form, persisted so contract entry points can honor the
// farm configuration's `models` map after a deserialize.
type SerializedModelToggles struct {
	Irrigation       bool
	Nutrients        bool
	YieldForecast    bool
	AnomalyDetection bool
}

// SerializedGraph is the opaque, plain-data graph state handed across the
// boundary. No device pointer, sparse-matrix handle, or mutex ever
// appears in this shape.
type SerializedGraph struct {
	FarmID       string
	FarmType     string
	NVertices    int
	VertexIndex  map[string]int
	VertexTypes  map[string]string
	HistorySize  int
	ModelToggles SerializedModelToggles
	Layers       map[string]SerializedLayer
}

// SerializeGraph converts an owned graph into its opaque cross-boundary
// form. A host-materialisation pass happens implicitly: every array read
// here is already host-addressable Go data, so no device pointer can
// leak into the output.
func SerializeGraph(g *hypergraph.LayeredHyperGraph) *SerializedGraph {
	vertexIndex := make(map[string]int, len(g.VertexIDs))
	vertexTypes := make(map[string]string, len(g.VertexIDs))
	for i, vid := range g.VertexIDs {
		vertexIndex[vid] = i
		vertexTypes[vid] = g.VertexTypes[i]
	}

	layers := make(map[string]SerializedLayer, len(g.Layers))
	for tag, l := range g.Layers {
		edgeMeta := make([]map[string]string, len(l.EdgeMetadata))
		for i, m := range l.EdgeMetadata {
			cp := make(map[string]string, len(m))
			for k, v := range m {
				cp[k] = v
			}
			edgeMeta[i] = cp
		}

		layers[string(tag)] = SerializedLayer{
			IncidenceRows:  append([]int32(nil), l.Incidence.RowIdx...),
			IncidenceCols:  expandColPtr(l.Incidence),
			IncidenceVals:  append([]float32(nil), l.Incidence.Vals...),
			NVertices:      l.Incidence.RowsN,
			NEdges:         l.Incidence.ColsN,
			Dim:            l.Dim,
			VertexFeatures: append([]float32(nil), l.VertexFeatures...),
			FeatureHistory: append([]float32(nil), l.FeatureHistory...),
			HistoryDepth:   l.HistoryDepth,
			HistoryHead:    append([]int32(nil), l.HistoryHead...),
			HistoryLength:  append([]int32(nil), l.HistoryLength...),
			EdgeMetadata:   edgeMeta,
			VertexIDs:      append([]string(nil), g.VertexIDs...),
			EdgeIDs:        append([]string(nil), l.EdgeIDs...),
		}
	}

	return &SerializedGraph{
		FarmID:      g.FarmID,
		FarmType:    g.FarmType,
		NVertices:   len(g.VertexIDs),
		VertexIndex: vertexIndex,
		VertexTypes: vertexTypes,
		HistorySize: g.HistorySize,
		ModelToggles: SerializedModelToggles{
			Irrigation:       g.ModelToggles.Irrigation,
			Nutrients:        g.ModelToggles.Nutrients,
			YieldForecast:    g.ModelToggles.YieldForecast,
			AnomalyDetection: g.ModelToggles.AnomalyDetection,
		},
		Layers: layers,
	}
}

// expandColPtr turns CSC's compressed ColPtr back into a per-entry column
// index array, the parallel form the serialized shape carries.
func expandColPtr(m *hypergraph.CSC) []int32 {
	out := make([]int32, len(m.RowIdx))
	for c := 0; c < m.ColsN; c++ {
		for k := m.ColPtr[c]; k < m.ColPtr[c+1]; k++ {
			out[k] = int32(c)
		}
	}

	return out
}

// DeserializeGraph rehydrates a SerializedGraph into an owned, host-resident
// graph, validating the presence of the required top-level keys
// (farm_id, n_vertices, vertex_index, layers) and wrapping any per-layer
// reconstruction failure with the layer's name.
func DeserializeGraph(s *SerializedGraph) (*hypergraph.LayeredHyperGraph, error) {
	if s == nil || s.FarmID == "" || s.VertexIndex == nil || s.Layers == nil {
		return nil, contractErrorf("DeserializeGraph", ErrDeserializeError)
	}

	vertices := make([]string, s.NVertices)
	for vid, idx := range s.VertexIndex {
		if idx < 0 || idx >= s.NVertices {
			return nil, contractErrorf("DeserializeGraph", ErrDeserializeError)
		}
		vertices[idx] = vid
	}

	g := hypergraph.NewEmpty(s.FarmID, s.FarmType, s.HistorySize)
	g.ModelToggles = hypergraph.ModelToggles{
		Irrigation:       s.ModelToggles.Irrigation,
		Nutrients:        s.ModelToggles.Nutrients,
		YieldForecast:    s.ModelToggles.YieldForecast,
		AnomalyDetection: s.ModelToggles.AnomalyDetection,
	}

	for _, vid := range vertices {
		vtype := s.VertexTypes[vid]
		if err := g.AddVertex(vid, vtype); err != nil {
			return nil, contractErrorf("DeserializeGraph", ErrDeserializeError)
		}
	}

	tags := make([]string, 0, len(s.Layers))
	for tag := range s.Layers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tagStr := range tags {
		sl := s.Layers[tagStr]
		if err := rehydrateLayer(g, hypergraph.LayerTag(tagStr), sl); err != nil {
			return nil, contractErrorf("DeserializeGraph", fmt.Errorf("layer %s: %w", tagStr, err))
		}
	}

	return g, nil
}
