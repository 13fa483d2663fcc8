package hypergraph

import (
	"sort"
	"strconv"
	"sync"

	"github.com/agrisense/hypercore/backend"
)

// LayerTag identifies one of the closed set of farm layers.
type LayerTag string

// The closed set of layer tags. An unknown tag encountered anywhere
// (farm profile, hyperedge insertion) is a ConfigError, never silently
// accepted.
const (
	LayerSoil              LayerTag = "soil"
	LayerIrrigation        LayerTag = "irrigation"
	LayerWeather           LayerTag = "weather"
	LayerLighting          LayerTag = "lighting"
	LayerCropRequirements  LayerTag = "crop_requirements"
	LayerNPK               LayerTag = "npk"
	LayerVision            LayerTag = "vision"
)

// DefaultHistoryDepth is H, the ring-buffer depth (24h at 15-minute cadence).
// Overridden by the HISTORY_SIZE environment knob at the contract boundary.
const DefaultHistoryDepth = 96

// layerDims is the authoritative feature-dimension table. An unknown
// layer tag defaults to 1 column.
var layerDims = map[LayerTag]int{
	LayerSoil:             4, // moisture, temperature, conductivity, pH
	LayerIrrigation:       3, // flow_rate, pressure, valve_state
	LayerWeather:          5, // temperature, humidity, precipitation, wind_speed, solar_rad
	LayerNPK:              3, // N, P, K
	LayerLighting:         3, // PAR, DLI, spectrum_index
	LayerVision:           4, // canopy_coverage, growth_stage, anomaly_score, ndvi
	LayerCropRequirements: 5, // target_yield, growth_progress, N_target, P_target, K_target
}

// layerFeatureNames mirrors layerDims column-for-column; readers that
// report per-feature results (the anomaly detector) use these instead of
// bare column indices.
var layerFeatureNames = map[LayerTag][]string{
	LayerSoil:             {"moisture", "temperature", "conductivity", "ph"},
	LayerIrrigation:       {"flow_rate", "pressure", "valve_state"},
	LayerWeather:          {"temperature", "humidity", "precipitation", "wind_speed", "solar_rad"},
	LayerNPK:              {"nitrogen", "phosphorus", "potassium"},
	LayerLighting:         {"par", "dli", "spectrum_index"},
	LayerVision:           {"canopy_coverage", "growth_stage", "anomaly_score", "ndvi"},
	LayerCropRequirements: {"target_yield", "growth_progress", "n_target", "p_target", "k_target"},
}

// FeatureName returns the column name for (tag, idx), falling back to
// "f<idx>" for unknown tags or columns grown past the authoritative width.
func FeatureName(tag LayerTag, idx int) string {
	if names, ok := layerFeatureNames[tag]; ok && idx >= 0 && idx < len(names) {
		return names[idx]
	}

	return "f" + strconv.Itoa(idx)
}

// FeatureDim returns the authoritative column count for tag, defaulting to
// 1 for an unrecognized tag.
func FeatureDim(tag LayerTag) int {
	if d, ok := layerDims[tag]; ok {
		return d
	}

	return 1
}

// KnownLayers lists the closed set of layer tags in a stable order, used
// for deterministic iteration (MultiLayerFeatures' default order).
func KnownLayers() []LayerTag {
	return []LayerTag{
		LayerSoil, LayerIrrigation, LayerWeather, LayerLighting,
		LayerCropRequirements, LayerNPK, LayerVision,
	}
}

// IsKnownLayer reports whether tag is one of the seven closed-set layers.
func IsKnownLayer(tag LayerTag) bool {
	_, ok := layerDims[tag]

	return ok
}

// Hyperedge is a typed relation over a non-empty subset of vertices,
// belonging to exactly one layer.
type Hyperedge struct {
	ID       string
	Layer    LayerTag
	Vertices []string // member vertex IDs, insertion order
	Metadata map[string]string
}

// Layer materializes one layer's incidence, features, and ring-buffer
// history. All three numeric arrays share row count |V|.
type Layer struct {
	Tag LayerTag

	// Incidence is the sparse |V| x |E_l| membership matrix.
	Incidence *CSC

	// VertexFeatures is the dense |V| x D row-major feature matrix.
	VertexFeatures []float32
	Dim            int // D, current feature width (may grow via PushFeatures)

	// FeatureHistory is the dense |V| x D x H ring buffer, row-major as
	// [v*Dim*H + f*H + slot].
	FeatureHistory []float32
	HistoryDepth   int // H
	HistoryHead    []int32 // per-vertex next write slot, 1-indexed, len |V|
	HistoryLength  []int32 // per-vertex valid-entry count, len |V|, saturates at H

	EdgeIDs      []string          // column order
	EdgeMetadata []map[string]string

	Residency backend.Residency
}

// LayeredHyperGraph is a farm identifier, the shared vertex index, and a
// mapping from layer tag to Layer. It exclusively owns all layer storage.
type LayeredHyperGraph struct {
	muVertex sync.RWMutex
	muLayers sync.RWMutex

	FarmID   string
	FarmType string

	VertexIndex map[string]int // vertex ID -> row, dense range 0..|V|-1
	VertexIDs   []string       // row -> vertex ID (inverse of VertexIndex)
	VertexTypes []string       // row -> vertex type tag

	Layers map[LayerTag]*Layer

	// ModelToggles persists the farm profile's model enable flags so
	// contract entry points can honor them after deserialization.
	ModelToggles ModelToggles

	// HistorySize is H for newly-created layers in this graph (the
	// HISTORY_SIZE knob); existing layers keep whatever depth they were
	// built with.
	HistorySize int
}

// ModelToggles mirrors the farm profile's `models` map. NewEmpty starts
// with all four enabled; Build copies Profile.Models as given, so a
// zero-valued Profile.Models leaves all four disabled.
type ModelToggles struct {
	Irrigation       bool
	Nutrients        bool
	YieldForecast    bool
	AnomalyDetection bool
}

// DefaultModelToggles returns all four toggles enabled, the documented
// default when a farm profile omits the `models` map.
func DefaultModelToggles() ModelToggles {
	return ModelToggles{Irrigation: true, Nutrients: true, YieldForecast: true, AnomalyDetection: true}
}

// NewEmpty constructs a graph with no vertices and no layers, ready for
// incremental population by Build or by direct mutation calls. historySize
// <= 0 resolves to DefaultHistoryDepth.
func NewEmpty(farmID, farmType string, historySize int) *LayeredHyperGraph {
	if historySize <= 0 {
		historySize = DefaultHistoryDepth
	}

	return &LayeredHyperGraph{
		FarmID:       farmID,
		FarmType:     farmType,
		VertexIndex:  make(map[string]int),
		VertexIDs:    nil,
		VertexTypes:  nil,
		Layers:       make(map[LayerTag]*Layer),
		ModelToggles: DefaultModelToggles(),
		HistorySize:  historySize,
	}
}

// VertexCount returns |V|. Complexity: O(1).
func (g *LayeredHyperGraph) VertexCount() int {
	g.muVertex.RLock()
	defer g.muVertex.RUnlock()

	return len(g.VertexIDs)
}

// SortedVertexIDs returns all vertex IDs in lexicographic order, used
// wherever deterministic enumeration is required (the model passes,
// error-record candidate lists).
func (g *LayeredHyperGraph) SortedVertexIDs() []string {
	g.muVertex.RLock()
	defer g.muVertex.RUnlock()

	out := make([]string, len(g.VertexIDs))
	copy(out, g.VertexIDs)
	sort.Strings(out)

	return out
}

// newLayer allocates a Layer with zero-initialized features/history for
// the current vertex count, sized by FeatureDim(tag). Callers must hold
// g.muLayers for writing.
func (g *LayeredHyperGraph) newLayer(tag LayerTag) *Layer {
	d := FeatureDim(tag)
	n := len(g.VertexIDs)
	h := g.HistorySize

	l := &Layer{
		Tag:            tag,
		Incidence:      NewEmptyCSC(n, 0),
		VertexFeatures: make([]float32, n*d),
		Dim:            d,
		FeatureHistory: make([]float32, n*d*h),
		HistoryDepth:   h,
		HistoryHead:    make([]int32, n),
		HistoryLength:  make([]int32, n),
		EdgeIDs:        nil,
		EdgeMetadata:   nil,
		Residency:      backend.ResidentHost,
	}
	for i := range l.HistoryHead {
		l.HistoryHead[i] = 1 // head is 1-indexed
	}

	return l
}
