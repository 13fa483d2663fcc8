package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFarmConfig() map[string]any {
	return map[string]any{
		"farm_id":       "farm-1",
		"farm_type":     "greenhouse",
		"active_layers": []any{"soil", "weather", "crop_requirements", "npk"},
		"zones": []any{
			map[string]any{"id": "zone-a", "name": "Zone A", "zone_type": "greenhouse", "area_m2": 100.0},
		},
		"vertices": []any{
			map[string]any{"id": "bed-1", "type": "bed"},
			map[string]any{"id": "bed-2", "type": "bed"},
		},
		"edges": []any{
			map[string]any{"id": "zone-a", "layer": "soil", "vertex_ids": []any{"bed-1", "bed-2"}},
			map[string]any{"id": "zone-a", "layer": "weather", "vertex_ids": []any{"bed-1", "bed-2"}},
			map[string]any{"id": "zone-a", "layer": "crop_requirements", "vertex_ids": []any{"bed-1", "bed-2"}},
			map[string]any{"id": "zone-a", "layer": "npk", "vertex_ids": []any{"bed-1", "bed-2"}},
		},
	}
}

func TestBuildGraph_ProducesSerializedStateAndCaches(t *testing.T) {
	ps := NewProcessState()

	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)
	assert.Equal(t, "farm-1", state.FarmID)
	assert.Equal(t, 2, state.NVertices)

	cached, err := ps.GetCachedGraph("farm-1")
	require.NoError(t, err)
	assert.Equal(t, 2, cached.VertexCount())
}

func TestBuildGraph_RejectsUnknownLayerTag(t *testing.T) {
	cfg := sampleFarmConfig()
	edges := cfg["edges"].([]any)
	edges = append(edges, map[string]any{"id": "bad", "layer": "not_a_layer", "vertex_ids": []any{"bed-1"}})
	cfg["edges"] = edges

	_, err := BuildGraph(NewProcessState(), cfg)
	require.Error(t, err)
}

func TestQueryFarmStatus_UnknownVertexReturnsErrorRecords(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	status, err := QueryFarmStatus(state, "ghost")
	require.NoError(t, err)
	for _, rec := range status {
		assert.Contains(t, rec, "error")
	}
}

func TestQueryFarmStatus_KnownVertexReturnsFeatures(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	updated, err := UpdateFeatures(state, "soil", "bed-1", []float32{0.3, 20, 1.0, 6.5})
	require.NoError(t, err)

	status, err := QueryFarmStatus(updated, "bed-1")
	require.NoError(t, err)
	soilRec := status["soil"]
	require.NotContains(t, soilRec, "error")
	assert.Equal(t, []float32{0.3, 20, 1.0, 6.5}, soilRec["features"])
}

func TestIrrigationSchedule_DrySoilTriggersIrrigation(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	state, err = UpdateFeatures(state, "soil", "bed-1", []float32{0.10, 25, 1.0, 6.5})
	require.NoError(t, err)
	state, err = UpdateFeatures(state, "soil", "bed-2", []float32{0.10, 25, 1.0, 6.5})
	require.NoError(t, err)
	state, err = UpdateFeatures(state, "weather", "bed-1", []float32{25, 0.5, 0, 0, 15})
	require.NoError(t, err)
	state, err = UpdateFeatures(state, "weather", "bed-2", []float32{25, 0.5, 0, 0, 15})
	require.NoError(t, err)

	records, err := IrrigationSchedule(state, 1, nil)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	anyIrrigate := false
	for _, r := range records {
		if r["irrigate"].(bool) {
			anyIrrigate = true
		}
	}
	assert.True(t, anyIrrigate)
}

func TestNutrientReport_EmptyWithoutRequiredLayers(t *testing.T) {
	cfg := map[string]any{
		"farm_id":       "farm-2",
		"farm_type":     "open_field",
		"active_layers": []any{"soil"},
		"vertices":      []any{map[string]any{"id": "v1", "type": "sensor"}},
		"edges":         []any{map[string]any{"id": "e1", "layer": "soil", "vertex_ids": []any{"v1"}}},
	}
	state, err := BuildGraph(NewProcessState(), cfg)
	require.NoError(t, err)

	records, err := NutrientReport(state)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestYieldForecast_DefaultsToFAOOnly(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	state, err = UpdateFeatures(state, "crop_requirements", "bed-1", []float32{5, 0.5, 100, 40, 60})
	require.NoError(t, err)
	state, err = UpdateFeatures(state, "crop_requirements", "bed-2", []float32{5, 0.5, 100, 40, 60})
	require.NoError(t, err)

	records, err := YieldForecast(ps, state)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, "fao_only", r["model_layer"])
	}
}

func TestTrainYieldResidual_InsufficientDataStatus(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	result, err := TrainYieldResidual(ps, state, map[string]float64{"bed-1": 3.5})
	require.NoError(t, err)
	assert.Equal(t, "insufficient_data", result["status"])
	assert.Nil(t, ps.Residual())
}

func TestTrainYieldResidual_SufficientDataFlipsForecastModelLayer(t *testing.T) {
	const beds = 8
	vertices := make([]any, beds)
	vertexIDs := make([]any, beds)
	for i := 0; i < beds; i++ {
		id := string(rune('a'+i)) + "-bed"
		vertices[i] = map[string]any{"id": id, "type": "bed"}
		vertexIDs[i] = id
	}
	cfg := map[string]any{
		"farm_id":       "farm-train",
		"farm_type":     "greenhouse",
		"active_layers": []any{"crop_requirements"},
		"vertices":      vertices,
		"edges": []any{
			map[string]any{"id": "zone-a", "layer": "crop_requirements", "vertex_ids": vertexIDs},
		},
	}

	ps := NewProcessState()
	state, err := BuildGraph(ps, cfg)
	require.NoError(t, err)

	outcomes := make(map[string]float64, beds)
	for i, vid := range vertexIDs {
		id := vid.(string)
		state, err = UpdateFeatures(state, "crop_requirements", id, []float32{5 + float32(i)*0.1, 0.5, 100, 40, 60})
		require.NoError(t, err)
		outcomes[id] = 3.0 + float64(i)*0.05
	}

	// Feature width is 5 (crop_requirements) + 2 derived = 7, so 8
	// observations clear the p+1 bar.
	result, err := TrainYieldResidual(ps, state, outcomes)
	require.NoError(t, err)
	require.Equal(t, "trained", result["status"])
	assert.Equal(t, 8, result["n_observations"])
	assert.Equal(t, 7, result["n_coefficients"])
	require.NotNil(t, ps.Residual())

	records, err := YieldForecast(ps, state)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, "fao_plus_residual", r["model_layer"])
		est := r["yield_estimate_kg_m2"].(float32)
		lower := r["yield_lower"].(float32)
		assert.InDelta(t, est*0.9, lower, 1e-4)
	}
}

func TestSerializeDeserialize_RoundTripPreservesGraphState(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	state, err = UpdateFeatures(state, "soil", "bed-1", []float32{0.31, 19, 1.1, 6.4})
	require.NoError(t, err)
	state, err = UpdateFeatures(state, "soil", "bed-1", []float32{0.29, 20, 1.2, 6.6})
	require.NoError(t, err)

	g, err := DeserializeGraph(state)
	require.NoError(t, err)
	round := SerializeGraph(g)

	assert.Equal(t, state.FarmID, round.FarmID)
	assert.Equal(t, state.NVertices, round.NVertices)
	assert.Equal(t, state.VertexIndex, round.VertexIndex)
	require.Equal(t, len(state.Layers), len(round.Layers))
	for tag, sl := range state.Layers {
		rl, ok := round.Layers[tag]
		require.Truef(t, ok, "layer %s lost in round trip", tag)
		assert.Equal(t, sl.IncidenceRows, rl.IncidenceRows)
		assert.Equal(t, sl.IncidenceCols, rl.IncidenceCols)
		assert.Equal(t, sl.IncidenceVals, rl.IncidenceVals)
		assert.Equal(t, sl.VertexFeatures, rl.VertexFeatures)
		assert.Equal(t, sl.FeatureHistory, rl.FeatureHistory)
		assert.Equal(t, sl.HistoryHead, rl.HistoryHead)
		assert.Equal(t, sl.HistoryLength, rl.HistoryLength)
		assert.Equal(t, sl.EdgeIDs, rl.EdgeIDs)
		assert.Equal(t, sl.EdgeMetadata, rl.EdgeMetadata)
	}
}

func TestDetectAnomalies_EmptyBelowMinimumHistory(t *testing.T) {
	ps := NewProcessState()
	state, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	records, err := DetectAnomalies(state, time.Now())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateSynthetic_OpenFieldOmitsVision(t *testing.T) {
	ds, err := GenerateSynthetic("open_field", 1, 42)
	require.NoError(t, err)
	assert.Equal(t, "ok", ds["status"])

	layers := ds["layers"].(map[string]any)
	assert.Nil(t, layers["vision"])
	assert.NotNil(t, layers["soil"])
}

func TestGenerateSynthetic_HybridZonesDeclareActiveLayers(t *testing.T) {
	ds, err := GenerateSynthetic("hybrid", 1, 7)
	require.NoError(t, err)

	topo := ds["topology"].(map[string]any)
	zones := topo["zones"].([]map[string]any)
	require.Len(t, zones, 6)

	assert.Equal(t, "greenhouse", zones[0]["zone_type"])
	assert.Contains(t, zones[0]["active_layers"], "vision")
	assert.Equal(t, "open_field", zones[2]["zone_type"])
	assert.NotContains(t, zones[2]["active_layers"], "vision")
}

func TestUpdateFeaturesIncremental_MutatesCachedGraphInPlace(t *testing.T) {
	ps := NewProcessState()
	_, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	err = UpdateFeaturesIncremental(ps, "farm-1", "soil", "bed-1", []float32{0.3, 20, 1.0, 6.5})
	require.NoError(t, err)

	cached, err := ps.GetCachedGraph("farm-1")
	require.NoError(t, err)
	feats, err := cached.QueryLayer("soil", "bed-1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.3, 20, 1.0, 6.5}, feats)
}

func TestUpdateFeaturesIncremental_UnknownFarmIDErrors(t *testing.T) {
	ps := NewProcessState()
	err := UpdateFeaturesIncremental(ps, "no-such-farm", "soil", "bed-1", []float32{0.3})
	require.Error(t, err)
}

func TestProcessState_ClearCacheDropsGraphsAndResidual(t *testing.T) {
	ps := NewProcessState()
	_, err := BuildGraph(ps, sampleFarmConfig())
	require.NoError(t, err)

	ps.ClearCache()

	_, err = ps.GetCachedGraph("farm-1")
	require.Error(t, err)
}
