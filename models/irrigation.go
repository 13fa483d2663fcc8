package models

import (
	"math"

	"github.com/agrisense/hypercore/hypergraph"
)

// effectiveDepthMM is D, the effective root-zone depth used to convert an
// ET-plus-precipitation deficit into a moisture-fraction delta.
const effectiveDepthMM = 1000.0

const (
	wiltingPoint  = 0.15 // theta_wp
	fieldCapacity = 0.35 // theta_fc
	volumeCapFrac = 0.10 // V_cap
)

// IrrigationForecast supplies optional externally-sourced per-day
// forecasts; a nil or short slice falls back to the on-graph proxy for
// the days it doesn't cover.
type IrrigationForecast struct {
	Precip []float32 // mm/day, index 0 is day 1
	ET0    []float32 // mm/day, index 0 is day 1
}

// IrrigationRecord is one zone-or-vertex-day recommendation.
type IrrigationRecord struct {
	ZoneID                 string
	Day                    int
	Irrigate               bool
	VolumeLiters           float32
	ProjectedMoisture      float32
	Priority               float32
	TriggerReason          string
	CumulativeVolumeLiters float32 // running total across the horizon so far, per zone/vertex
}

const (
	reasonAdequate = "moisture_adequate"
	reasonWilting  = "below_wilting_point"
	reasonDeficit  = "projected_deficit"
)

// Schedule runs the water-balance irrigation scheduler over horizonDays,
// returning one record per day per zone (if an irrigation layer is
// present) or per vertex otherwise. Returns an empty slice, not an error,
// if the graph lacks the soil or weather layers it requires.
func Schedule(g *hypergraph.LayeredHyperGraph, horizonDays int, forecast IrrigationForecast) ([]IrrigationRecord, error) {
	if horizonDays < 1 {
		horizonDays = 1
	}

	snap := g.Snapshot()
	if _, ok := snap[hypergraph.LayerSoil]; !ok {
		return nil, nil
	}
	if _, ok := snap[hypergraph.LayerWeather]; !ok {
		return nil, nil
	}

	vertices := g.SortedVertexIDs()
	moisture := make(map[string]float32, len(vertices))
	for _, vid := range vertices {
		soilFeats, err := g.QueryLayer(hypergraph.LayerSoil, vid)
		if err != nil {
			continue
		}
		moisture[vid] = soilFeats[0]
	}

	precipFallback := meanPrecipitation(g, vertices)
	cumulative := make(map[string]float32)

	var out []IrrigationRecord
	for day := 1; day <= horizonDays; day++ {
		dayPrecip, havePrecipForecast := dayValue(forecast.Precip, day)
		if !havePrecipForecast {
			dayPrecip = precipFallback
		}

		perVertex := make(map[string]IrrigationRecord, len(vertices))
		for _, vid := range vertices {
			m, ok := moisture[vid]
			if !ok {
				continue
			}

			weatherFeats, err := g.QueryLayer(hypergraph.LayerWeather, vid)
			if err != nil {
				continue
			}
			T := weatherFeats[0]
			Rs := weatherFeats[4]

			et0, haveET0Forecast := dayValue(forecast.ET0, day)
			if !haveET0Forecast {
				et0 = hargreavesET0(T, Rs)
			}

			kc := float32(1.0)
			if _, ok := snap[hypergraph.LayerCropRequirements]; ok {
				if cropFeats, err := g.QueryLayer(hypergraph.LayerCropRequirements, vid); err == nil {
					kc = 0.3 + 0.9*clamp01(cropFeats[1])
				}
			}

			mPrime := m - (et0*kc+dayPrecip)/effectiveDepthMM
			if mPrime < 0 {
				mPrime = 0
			}

			var recommended float32
			var reason string
			switch {
			case mPrime < wiltingPoint:
				recommended = min32(fieldCapacity-mPrime, volumeCapFrac)
				reason = reasonWilting
			case mPrime < fieldCapacity:
				recommended = 0
				reason = reasonDeficit
			default:
				recommended = 0
				reason = reasonAdequate
			}

			priority := clamp01((wiltingPoint - mPrime) / (fieldCapacity - wiltingPoint))

			moisture[vid] = mPrime + recommended

			perVertex[vid] = IrrigationRecord{
				ZoneID:            vid,
				Day:               day,
				Irrigate:          recommended > 0,
				VolumeLiters:      recommended * 1000,
				ProjectedMoisture: mPrime,
				Priority:          priority,
				TriggerReason:     reason,
			}
		}

		dayRecords := aggregateIrrigationDay(g, snap, perVertex, day)
		for i := range dayRecords {
			cumulative[dayRecords[i].ZoneID] += dayRecords[i].VolumeLiters
			dayRecords[i].CumulativeVolumeLiters = cumulative[dayRecords[i].ZoneID]
		}
		out = append(out, dayRecords...)
	}

	return out, nil
}

// aggregateIrrigationDay folds per-vertex records into per-zone records
// using the irrigation layer's edges when present, mean-averaging
// projected moisture and recommended volume over member vertices.
func aggregateIrrigationDay(g *hypergraph.LayeredHyperGraph, snap map[hypergraph.LayerTag][3]int, perVertex map[string]IrrigationRecord, day int) []IrrigationRecord {
	if _, ok := snap[hypergraph.LayerIrrigation]; !ok {
		out := make([]IrrigationRecord, 0, len(perVertex))
		for _, vid := range sortedKeys(perVertex) {
			out = append(out, perVertex[vid])
		}

		return out
	}

	edgeIDs, members := layerEdgeMembership(g, hypergraph.LayerIrrigation)
	var out []IrrigationRecord
	for i, zoneID := range edgeIDs {
		var moistureSum, volumeSum, prioritySum float32
		var irrigate bool
		reason := reasonAdequate
		count := 0
		for _, vid := range members[i] {
			rec, ok := perVertex[vid]
			if !ok {
				continue
			}
			moistureSum += rec.ProjectedMoisture
			volumeSum += rec.VolumeLiters
			prioritySum += rec.Priority
			if rec.Irrigate {
				irrigate = true
				reason = rec.TriggerReason
			} else if count == 0 {
				reason = rec.TriggerReason
			}
			count++
		}
		if count == 0 {
			continue
		}
		out = append(out, IrrigationRecord{
			ZoneID:            zoneID,
			Day:               day,
			Irrigate:          irrigate,
			VolumeLiters:      volumeSum / float32(count),
			ProjectedMoisture: moistureSum / float32(count),
			Priority:          prioritySum / float32(count),
			TriggerReason:     reason,
		})
	}

	return out
}

func hargreavesET0(T, Rs float32) float32 {
	absT := T
	if absT < 0 {
		absT = -absT
	}
	inner := 0.3 * absT
	if inner < 2 {
		inner = 2
	}

	return 0.0023 * (T + 17.8) * sqrt32(inner) * Rs
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func dayValue(series []float32, day int) (float32, bool) {
	idx := day - 1
	if idx < 0 || idx >= len(series) {
		return 0, false
	}

	return series[idx], true
}

func meanPrecipitation(g *hypergraph.LayeredHyperGraph, vertices []string) float32 {
	var sum float32
	var count int
	for _, vid := range vertices {
		feats, err := g.QueryLayer(hypergraph.LayerWeather, vid)
		if err != nil {
			continue
		}
		sum += feats[2]
		count++
	}
	if count == 0 {
		return 0
	}

	return sum / float32(count)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}

	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}

	return b
}

func sortedKeys(m map[string]IrrigationRecord) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortStrings(out)

	return out
}
