package models

import (
	"time"

	"github.com/agrisense/hypercore/hypergraph"
)

const (
	cadence          = 15 * time.Minute
	minHistoryLength = 8
	sigmaFloor       = 1e-8
)

const (
	ruleR1 = "3sigma"
	ruleR2 = "2sigma_2of3"
	ruleR3 = "1sigma_4of5"
	ruleR4 = "8_same_side"
)

const (
	severityNone    = "none"
	severityWarning = "warning"
	severityAlarm   = "alarm"
)

var anomalyTypeByLayer = map[hypergraph.LayerTag]string{
	hypergraph.LayerSoil:       "environmental",
	hypergraph.LayerWeather:    "environmental",
	hypergraph.LayerNPK:        "nutrient_imbalance",
	hypergraph.LayerVision:     "visual_anomaly",
	hypergraph.LayerLighting:   "light_anomaly",
	hypergraph.LayerIrrigation: "irrigation_fault",
}

func anomalyTypeFor(tag hypergraph.LayerTag) string {
	if t, ok := anomalyTypeByLayer[tag]; ok {
		return t
	}

	return "unknown"
}

// AnomalyRecord is one statistical-process-control alert.
type AnomalyRecord struct {
	VertexID            string
	Layer               hypergraph.LayerTag
	Feature             string
	AnomalyType         string
	Severity            string
	CurrentValue        float32
	RollingMean         float32
	RollingStd          float32
	SigmaDeviation      float32
	AnomalyRules        []string
	CrossLayerConfirmed bool
	TimestampStart      time.Time
	TimestampEnd        time.Time
}

// DetectAnomalies runs Western Electric SPC rules R1-R4 over every
// materialized layer's current values against their rolling history,
// escalating warnings to alarms when the same vertex is independently
// flagged by both the soil and vision layers.
func DetectAnomalies(g *hypergraph.LayeredHyperGraph, now time.Time) ([]AnomalyRecord, error) {
	snap := g.Snapshot()
	vertices := g.SortedVertexIDs()

	var records []AnomalyRecord
	soilAnomalous := make(map[string]bool)
	visionAnomalous := make(map[string]bool)

	for tag := range snap {
		for _, vid := range vertices {
			hist, length, err := g.GetHistory(tag, vid)
			if err != nil || length < minHistoryLength {
				continue
			}
			cur, err := g.QueryLayer(tag, vid)
			if err != nil {
				continue
			}
			// The layer's live width, not the nominal table width: a wide
			// feature push may have grown the layer past its default Dim.
			dim := len(cur)

			if tag == hypergraph.LayerVision && dim > visionAnomalyScoreCol && cur[visionAnomalyScoreCol] > 0.7 {
				visionAnomalous[vid] = true
			}

			for f := 0; f < dim; f++ {
				rec, fired := evaluateFeature(tag, vid, f, cur[f], hist, dim, length, now)
				if !fired {
					continue
				}
				records = append(records, rec)
				if tag == hypergraph.LayerSoil {
					soilAnomalous[vid] = true
				}
				if tag == hypergraph.LayerVision {
					visionAnomalous[vid] = true
				}
			}
		}
	}

	for i := range records {
		vid := records[i].VertexID
		if soilAnomalous[vid] && visionAnomalous[vid] {
			records[i].CrossLayerConfirmed = true
			if records[i].Severity == severityWarning {
				records[i].Severity = severityAlarm
			}
		}
	}

	return records, nil
}

// evaluateFeature applies R1-R4 to one (vertex, feature) pair and returns
// the resulting record plus whether an alert (warning or alarm) fired.
func evaluateFeature(tag hypergraph.LayerTag, vid string, f int, x float32, hist []float32, dim, length int, now time.Time) (AnomalyRecord, bool) {
	mean, std := rollingMeanStd(hist, dim, length, f)
	if std < sigmaFloor {
		return AnomalyRecord{}, false
	}

	points := recentPoints(x, hist, dim, length, f, 8)

	var rules []string
	r1 := abs32(x-mean) > 3*std
	if r1 {
		rules = append(rules, ruleR1)
	}
	r2 := countBeyond(points, mean, std, 2, 3) >= 2
	if r2 {
		rules = append(rules, ruleR2)
	}
	r3 := countBeyond(points, mean, std, 1, 5) >= 4
	if r3 {
		rules = append(rules, ruleR3)
	}
	r4 := sameSide(points, mean, 8)
	if r4 {
		rules = append(rules, ruleR4)
	}

	if !r1 && !r2 && !r4 {
		return AnomalyRecord{}, false
	}

	severity := severityWarning
	if r1 {
		severity = severityAlarm
	}

	return AnomalyRecord{
		VertexID:       vid,
		Layer:          tag,
		Feature:        hypergraph.FeatureName(tag, f),
		AnomalyType:    anomalyTypeFor(tag),
		Severity:       severity,
		CurrentValue:   x,
		RollingMean:    mean,
		RollingStd:     std,
		SigmaDeviation: (x - mean) / std,
		AnomalyRules:   rules,
		TimestampStart: now.Add(-cadence * time.Duration(length)),
		TimestampEnd:   now,
	}, true
}

func rollingMeanStd(hist []float32, dim, length, f int) (mean, std float32) {
	// Accumulated in float64: a float32 running sum drifts by an ulp, which
	// would give a constant history a nonzero std above sigmaFloor.
	var sum float64
	for i := 0; i < length; i++ {
		sum += float64(hist[i*dim+f])
	}
	m := sum / float64(length)

	var sqSum float64
	for i := 0; i < length; i++ {
		d := float64(hist[i*dim+f]) - m
		sqSum += d * d
	}

	return float32(m), sqrt32(float32(sqSum / float64(length)))
}

// recentPoints returns up to k values: the current value first, then the
// most recent history entries walking backward from the newest (history
// is stored oldest-first by GetHistory). hist's own most recent slot
// duplicates current (PushFeatures writes both in the same call), so the
// walk starts one slot before it to avoid counting the current point twice.
func recentPoints(current float32, hist []float32, dim, length, f, k int) []float32 {
	points := make([]float32, 0, k)
	points = append(points, current)
	for i := 0; i < k-1 && i+1 < length; i++ {
		idx := length - 2 - i
		points = append(points, hist[idx*dim+f])
	}

	return points
}

func countBeyond(points []float32, mean, std float32, sigmaMultiple float32, window int) int {
	n := window
	if n > len(points) {
		n = len(points)
	}
	count := 0
	for i := 0; i < n; i++ {
		if abs32(points[i]-mean) > sigmaMultiple*std {
			count++
		}
	}

	return count
}

func sameSide(points []float32, mean float32, window int) bool {
	n := window
	if n > len(points) {
		return false // not enough points to evaluate R4
	}
	above := points[0] > mean
	for i := 1; i < n; i++ {
		if (points[i] > mean) != above {
			return false
		}
	}

	return true
}
