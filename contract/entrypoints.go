package contract

import (
	"fmt"
	"sort"
	"time"

	"github.com/agrisense/hypercore/hypergraph"
	"github.com/agrisense/hypercore/models"
	"github.com/agrisense/hypercore/synth"
)

// BuildGraph is the build_graph entry point: it converts a loose
// farm-configuration map into a hypergraph.Profile, builds the owned
// graph, caches it under its farm id, and returns the opaque serialized
// form for callers that want to hold state across the boundary
// themselves rather than rely on the process-wide cache.
func BuildGraph(ps *ProcessState, farmConfig map[string]any) (*SerializedGraph, error) {
	cfg, err := farmConfigFromMap(farmConfig)
	if err != nil {
		return nil, err
	}

	profile, err := cfg.toProfile()
	if err != nil {
		return nil, err
	}

	g, err := hypergraph.Build(profile)
	if err != nil {
		return nil, contractErrorf("BuildGraph", err)
	}

	if ps != nil {
		ps.CacheGraph(cfg.FarmID, g)
	}

	return SerializeGraph(g), nil
}

// errorRecord is the shape a read entry point returns for a missing
// reference: a record with an error string naming the missing entity
// and listing available alternatives, not a raised failure.
func errorRecord(missing string, available []string) map[string]any {
	return map[string]any{
		"error":     missing,
		"available": available,
	}
}

func layerTags(g *hypergraph.LayeredHyperGraph) []string {
	snap := g.Snapshot()
	out := make([]string, 0, len(snap))
	for tag := range snap {
		out = append(out, string(tag))
	}
	sort.Strings(out)

	return out
}

// QueryFarmStatus is the query_farm_status entry point: for every
// materialized layer, runs the per-vertex layer query against vertexID
// (a zone-level rollup is the caller's responsibility via irrigation/npk
// edge membership, not this status probe) and returns a map of layer tag
// to either the query result or an error record.
func QueryFarmStatus(state *SerializedGraph, vertexID string) (map[string]map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}

	tags := layerTags(g)
	out := make(map[string]map[string]any, len(tags))

	if _, ok := g.VertexIndex[vertexID]; !ok {
		rec := errorRecord("vertex not found: "+vertexID, g.SortedVertexIDs())
		for _, tag := range tags {
			out[tag] = rec
		}

		return out, nil
	}

	for _, tagStr := range tags {
		tag := hypergraph.LayerTag(tagStr)
		feats, err := g.QueryLayer(tag, vertexID)
		if err != nil {
			out[tagStr] = errorRecord(err.Error(), tags)
			continue
		}

		edgeIDs, members, _ := g.EdgeMembers(tag)
		var memberOf []string
		for i, ids := range members {
			for _, vid := range ids {
				if vid == vertexID {
					memberOf = append(memberOf, edgeIDs[i])
					break
				}
			}
		}

		out[tagStr] = map[string]any{
			"vertex_id": vertexID,
			"layer":     tagStr,
			"edge_ids":  memberOf,
			"features":  feats,
		}
	}

	return out, nil
}

// IrrigationSchedule is the irrigation_schedule entry point. A farm
// configuration that disabled the irrigation model gets an empty result,
// the same downgrade shape as a missing required layer.
func IrrigationSchedule(state *SerializedGraph, horizonDays int, weatherForecast map[string]any) ([]map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}
	if !g.ModelToggles.Irrigation {
		return []map[string]any{}, nil
	}

	forecast := models.IrrigationForecast{}
	if weatherForecast != nil {
		forecast.Precip = float32SliceField(weatherForecast, "precip_forecast")
		forecast.ET0 = float32SliceField(weatherForecast, "et0_forecast")
	}

	records, err := models.Schedule(g, horizonDays, forecast)
	if err != nil {
		return nil, contractErrorf("IrrigationSchedule", err)
	}

	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any{
			"zone_id":                  r.ZoneID,
			"day":                      r.Day,
			"irrigate":                 r.Irrigate,
			"volume_liters":            r.VolumeLiters,
			"projected_moisture":       r.ProjectedMoisture,
			"priority":                 r.Priority,
			"trigger_reason":           r.TriggerReason,
			"cumulative_volume_liters": r.CumulativeVolumeLiters,
		}
	}

	return out, nil
}

// NutrientReport is the nutrient_report entry point.
func NutrientReport(state *SerializedGraph) ([]map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}
	if !g.ModelToggles.Nutrients {
		return []map[string]any{}, nil
	}

	records, err := models.NutrientReport(g, models.DefaultNutrientWeights())
	if err != nil {
		return nil, contractErrorf("NutrientReport", err)
	}

	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any{
			"zone_id":             r.ZoneID,
			"nitrogen_deficit":    r.NitrogenDeficit,
			"phosphorus_deficit":  r.PhosphorusDeficit,
			"potassium_deficit":   r.PotassiumDeficit,
			"severity_score":      r.SeverityScore,
			"urgency":             r.Urgency,
			"suggested_amendment": r.SuggestedAmendment,
			"visual_confirmed":    r.VisualConfirmed,
		}
	}

	return out, nil
}

// YieldForecast is the yield_forecast entry point; it reads the
// process-wide trained residual (if any) so that a prior
// train_yield_residual call changes every subsequent forecast's
// model_layer without the caller re-supplying coefficients.
func YieldForecast(ps *ProcessState, state *SerializedGraph) ([]map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}
	if !g.ModelToggles.YieldForecast {
		return []map[string]any{}, nil
	}

	var residual *models.TrainedResidual
	if ps != nil {
		residual = ps.Residual()
	}

	records, err := models.Forecast(g, residual)
	if err != nil {
		return nil, contractErrorf("YieldForecast", err)
	}

	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any{
			"crop_bed_id":          r.CropBedID,
			"yield_estimate_kg_m2": r.YieldEstimateKgM2,
			"yield_lower":          r.YieldLower,
			"yield_upper":          r.YieldUpper,
			"confidence":           r.Confidence,
			"stress_factors": map[string]any{
				"Ks": r.Stress.Ks,
				"Kn": r.Stress.Kn,
				"Kl": r.Stress.Kl,
				"Kw": r.Stress.Kw,
			},
			"model_layer": r.ModelLayer,
		}
	}

	return out, nil
}

// DetectAnomalies is the detect_anomalies entry point. now is supplied
// by the caller's clock provider; the core itself never reads the wall
// clock.
func DetectAnomalies(state *SerializedGraph, now time.Time) ([]map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}
	if !g.ModelToggles.AnomalyDetection {
		return []map[string]any{}, nil
	}

	records, err := models.DetectAnomalies(g, now)
	if err != nil {
		return nil, contractErrorf("DetectAnomalies", err)
	}

	out := make([]map[string]any, len(records))
	for i, r := range records {
		out[i] = map[string]any{
			"vertex_id":             r.VertexID,
			"layer":                 string(r.Layer),
			"feature":               r.Feature,
			"anomaly_type":          r.AnomalyType,
			"severity":              r.Severity,
			"current_value":         r.CurrentValue,
			"rolling_mean":          r.RollingMean,
			"rolling_std":           r.RollingStd,
			"sigma_deviation":       r.SigmaDeviation,
			"anomaly_rules":         r.AnomalyRules,
			"cross_layer_confirmed": r.CrossLayerConfirmed,
			"timestamp_start":       r.TimestampStart,
			"timestamp_end":         r.TimestampEnd,
		}
	}

	return out, nil
}

// UpdateFeatures is the update_features entry point: it deserializes
// state, pushes features into layer for vertexID (advancing the
// ring-buffer head), and re-serializes. This path is quadratic in graph
// size when hammered in a hot loop; UpdateFeaturesIncremental below is
// the preferred path when a ProcessState cache is already holding the
// graph hot.
func UpdateFeatures(state *SerializedGraph, layer string, vertexID string, features []float32) (*SerializedGraph, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}

	if err := g.PushFeatures(hypergraph.LayerTag(layer), vertexID, features); err != nil {
		return nil, contractErrorf("UpdateFeatures", err)
	}

	return SerializeGraph(g), nil
}

// UpdateFeaturesIncremental mutates the cached graph for farmID directly,
// in place, skipping the serialize/deserialize round trip entirely.
func UpdateFeaturesIncremental(ps *ProcessState, farmID, layer, vertexID string, features []float32) error {
	g, err := ps.GetCachedGraph(farmID)
	if err != nil {
		return err
	}

	if err := g.PushFeatures(hypergraph.LayerTag(layer), vertexID, features); err != nil {
		return contractErrorf("UpdateFeaturesIncremental", err)
	}

	return nil
}

// TrainYieldResidual is the train_yield_residual entry point: on
// success it installs the fitted coefficients into ps so every
// subsequent YieldForecast call picks them up.
func TrainYieldResidual(ps *ProcessState, state *SerializedGraph, outcomes map[string]float64) (map[string]any, error) {
	g, err := DeserializeGraph(state)
	if err != nil {
		return nil, err
	}

	obs := make(map[string]float32, len(outcomes))
	for vid, y := range outcomes {
		obs[vid] = float32(y)
	}

	residual, result, err := models.TrainYieldResidual(g, obs)
	if err != nil {
		// A hard failure here is the ridge solve going singular; surface it
		// under the boundary's own numeric category.
		return nil, contractErrorf("TrainYieldResidual", fmt.Errorf("%s: %w", err.Error(), ErrNumericError))
	}

	if residual != nil && ps != nil {
		ps.SetResidual(residual)
	}

	return map[string]any{
		"status":         result.Status,
		"n_observations": result.NObservations,
		"n_coefficients": result.NCoefficients,
	}, nil
}

// GenerateSynthetic is the generate_synthetic entry point, flattening
// synth.Dataset into its plain-data cross-boundary shape.
func GenerateSynthetic(farmType string, days int, seed int64) (map[string]any, error) {
	ds, err := synth.Generate(synth.FarmType(farmType), days, seed)
	if err != nil {
		return nil, contractErrorf("GenerateSynthetic", err)
	}

	zones := make([]map[string]any, len(ds.Topology.Zones))
	for i, zid := range ds.Topology.Zones {
		zones[i] = map[string]any{
			"id":            zid,
			"zone_type":     synth.ZoneTypeFor(ds.FarmType, i),
			"active_layers": synth.ActiveLayersForZone(ds.FarmType, i),
		}
	}

	return map[string]any{
		"farm_type":       string(ds.FarmType),
		"days":            ds.Days,
		"seed":            ds.Seed,
		"cadence_minutes": ds.CadenceMinutes,
		"n_steps":         ds.NSteps,
		"time_hours":      ds.TimeHours,
		"missingness": map[string]any{
			"encoding":     ds.Missingness.Encoding,
			"dropout_rate": ds.Missingness.DropoutRate,
		},
		"reproducibility": map[string]any{
			"host":        ds.Reproducibility.Host,
			"accelerator": ds.Reproducibility.Accelerator,
		},
		"topology": map[string]any{
			"n_zones": ds.Topology.NZones,
			"zones":   zones,
			"soil_sensors": map[string]any{
				"sensor_id": ds.Topology.SoilSensorIDs,
				"zone_id":   ds.Topology.SoilSensorZone,
			},
			"weather_stations": map[string]any{
				"station_id": ds.Topology.WeatherStationIDs,
			},
		},
		"layers": map[string]any{
			"soil":       channelMatrixToMap(ds.Layers.Soil),
			"weather":    channelMatrixToMap(ds.Layers.Weather),
			"irrigation": channelMatrixToMap(ds.Layers.Irrigation),
			"npk":        channelMatrixToMap(ds.Layers.NPK),
			"lighting":   channelMatrixToMap(ds.Layers.Lighting),
			"vision":     channelMatrixToMap(ds.Layers.Vision),
		},
		"status": ds.Status,
	}, nil
}

// channelMatrixToMap flattens a possibly-nil ChannelMatrix into the
// plain-data shape; nil (layer not applicable to this farm type, e.g.
// lighting/vision on open_field) becomes nil rather than an empty
// struct, so callers can tell "not emitted" from "emitted, zero
// channels".
func channelMatrixToMap(m *synth.ChannelMatrix) any {
	if m == nil {
		return nil
	}

	return map[string]any{
		"n_steps":    m.NSteps,
		"n_channels": m.NChannels,
		"data":       m.Data,
		"mask":       m.Mask,
	}
}

func float32SliceField(m map[string]any, key string) []float32 {
	raw, ok := m[key]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []float32:
		return v
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]float32, 0, len(v))
		for _, e := range v {
			switch f := e.(type) {
			case float64:
				out = append(out, float32(f))
			case float32:
				out = append(out, f)
			}
		}
		return out
	default:
		return nil
	}
}
