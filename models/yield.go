package models

import (
	"github.com/agrisense/hypercore/hypergraph"
	"github.com/agrisense/hypercore/matrix"
)

const ridgeLambda = 1.0

const (
	modelLayerFAOOnly         = "fao_only"
	modelLayerFAOPlusResidual = "fao_plus_residual"
)

// StressFactors is the four clipped-to-[0,1] coefficients behind the FAO
// base yield estimate.
type StressFactors struct {
	Ks, Kn, Kl, Kw float32
}

// YieldRecord is one crop-bed yield forecast.
type YieldRecord struct {
	CropBedID         string
	YieldEstimateKgM2 float32
	YieldLower        float32
	YieldUpper        float32
	Confidence        float32
	Stress            StressFactors
	ModelLayer        string
}

// TrainedResidual carries the ridge-regression coefficient vector fit by
// TrainYieldResidual. Forecast only applies a residual whose width matches
// the graph's currently-assembled feature matrix.
type TrainedResidual struct {
	Beta []float32
}

// TrainResult is the plain-data report returned by TrainYieldResidual,
// mirroring the contract surface's train_yield_residual response shape.
type TrainResult struct {
	Status         string
	NObservations  int
	NCoefficients  int
}

const (
	trainStatusTrained          = "trained"
	trainStatusInsufficientData = "insufficient_data"
)

// perVertexYield is one vertex's FAO-base stress decomposition, keyed by
// vertex id — the granularity observed outcomes arrive at (residual
// training takes a vertex_id -> observed_yield mapping), distinct from
// the zone/bed-aggregated YieldRecord that Forecast reports.
type perVertexYield struct {
	yFAO   float32
	stress StressFactors
}

// perVertexFAOYield computes the FAO-base estimate and stress factors for
// every vertex carrying crop_requirements, without any zone aggregation.
func perVertexFAOYield(g *hypergraph.LayeredHyperGraph, snap map[hypergraph.LayerTag][3]int, vertices []string) map[string]perVertexYield {
	byVertex := make(map[string]perVertexYield, len(vertices))

	for _, vid := range vertices {
		req, err := g.QueryLayer(hypergraph.LayerCropRequirements, vid)
		if err != nil {
			continue
		}

		ks := float32(1)
		if _, ok := snap[hypergraph.LayerSoil]; ok {
			if soil, err := g.QueryLayer(hypergraph.LayerSoil, vid); err == nil {
				ks = clamp01((soil[0] - wiltingPoint) / (fieldCapacity - wiltingPoint))
			}
		}

		kn := float32(1)
		var nSum, nCount float32
		for i, reqIdx := range []int{2, 3, 4} {
			reqVal := req[reqIdx]
			if reqVal <= 0 {
				continue
			}
			var cur float32
			if npk, err := g.QueryLayer(hypergraph.LayerNPK, vid); err == nil {
				cur = npk[i]
			}
			d := max32(reqVal-cur, 0)
			nSum += d / reqVal
			nCount++
		}
		if nCount > 0 {
			kn = 1 - nSum/nCount
		}

		kl := float32(1)
		if _, ok := snap[hypergraph.LayerLighting]; ok {
			if light, err := g.QueryLayer(hypergraph.LayerLighting, vid); err == nil {
				kl = clamp01(light[1] / 20)
			}
		}

		kw := float32(1)
		if _, ok := snap[hypergraph.LayerWeather]; ok {
			if weather, err := g.QueryLayer(hypergraph.LayerWeather, vid); err == nil {
				kw = weatherStressCoefficient(weather[0])
			}
		}

		yPotential := req[0]
		yFAO := yPotential * ks * kn * kl * kw

		byVertex[vid] = perVertexYield{yFAO: yFAO, stress: StressFactors{Ks: ks, Kn: kn, Kl: kl, Kw: kw}}
	}

	return byVertex
}

// Forecast computes per-vertex FAO-base yield, aggregated over
// crop_requirements edges, optionally refined by a trained residual.
// Returns an empty slice when the graph lacks the crop_requirements layer.
func Forecast(g *hypergraph.LayeredHyperGraph, residual *TrainedResidual) ([]YieldRecord, error) {
	snap := g.Snapshot()
	if _, ok := snap[hypergraph.LayerCropRequirements]; !ok {
		return nil, nil
	}

	vertices := g.SortedVertexIDs()
	byVertex := perVertexFAOYield(g, snap, vertices)

	var featureWidth int
	var featureRows map[string][]float32
	if residual != nil && len(residual.Beta) > 0 {
		featureRows = make(map[string][]float32, len(vertices))
		for vid := range byVertex {
			row, err := assembleFeatureRow(g, snap, vid)
			if err == nil {
				featureRows[vid] = row
				featureWidth = len(row)
			}
		}
	}

	useResidual := residual != nil && len(residual.Beta) > 0 && featureWidth == len(residual.Beta)

	buildRecord := func(bedID string, yFAO float32, stress StressFactors, residualTerm float32) YieldRecord {
		yEstimate := yFAO
		modelLayer := modelLayerFAOOnly
		halfWidth := float32(0.20)
		if useResidual {
			yEstimate = yFAO + residualTerm
			modelLayer = modelLayerFAOPlusResidual
			halfWidth = 0.10
		}

		return YieldRecord{
			CropBedID:         bedID,
			YieldEstimateKgM2: yEstimate,
			YieldLower:        yEstimate * (1 - halfWidth),
			YieldUpper:        yEstimate * (1 + halfWidth),
			Confidence:        1 - halfWidth,
			Stress:            stress,
			ModelLayer:        modelLayer,
		}
	}

	residualOf := func(vid string) float32 {
		if !useResidual {
			return 0
		}
		row, ok := featureRows[vid]
		if !ok {
			return 0
		}

		return dot(row, residual.Beta)
	}

	edgeIDs, members := layerEdgeMembership(g, hypergraph.LayerCropRequirements)
	out := make([]YieldRecord, 0, len(edgeIDs))
	for i, bedID := range edgeIDs {
		var yFAOSum, ksSum, knSum, klSum, kwSum, residualSum float32
		count := 0
		for _, vid := range members[i] {
			pv, ok := byVertex[vid]
			if !ok {
				continue
			}
			yFAOSum += pv.yFAO
			ksSum += pv.stress.Ks
			knSum += pv.stress.Kn
			klSum += pv.stress.Kl
			kwSum += pv.stress.Kw
			residualSum += residualOf(vid)
			count++
		}
		if count == 0 {
			continue
		}
		n := float32(count)
		stress := StressFactors{Ks: ksSum / n, Kn: knSum / n, Kl: klSum / n, Kw: kwSum / n}
		out = append(out, buildRecord(bedID, yFAOSum/n, stress, residualSum/n))
	}

	return out, nil
}

func weatherStressCoefficient(t float32) float32 {
	switch {
	case t < 5:
		return 0
	case t < 15:
		return (t - 5) / 10
	case t <= 30:
		return 1
	case t < 40:
		return (40 - t) / 10
	default:
		return 0
	}
}

// assembleFeatureRow concatenates per-vertex features over the available
// layers in {soil, lighting, crop_requirements, vision}, then appends two
// derived features: cumulative DLI (sum over valid lighting history
// slots) and a composite soil health score in [0,1].
func assembleFeatureRow(g *hypergraph.LayeredHyperGraph, snap map[hypergraph.LayerTag][3]int, vid string) ([]float32, error) {
	var row []float32
	for _, tag := range []hypergraph.LayerTag{
		hypergraph.LayerSoil, hypergraph.LayerLighting,
		hypergraph.LayerCropRequirements, hypergraph.LayerVision,
	} {
		if _, ok := snap[tag]; !ok {
			continue
		}
		feats, err := g.QueryLayer(tag, vid)
		if err != nil {
			continue
		}
		row = append(row, feats...)
	}

	var cumulativeDLI float32
	if _, ok := snap[hypergraph.LayerLighting]; ok {
		if hist, length, err := g.GetHistory(hypergraph.LayerLighting, vid); err == nil && length > 0 {
			dim := len(hist) / length
			if dim > 1 {
				for i := 0; i < length; i++ {
					cumulativeDLI += hist[i*dim+1]
				}
			}
		}
	}

	var soilHealth float32
	if _, ok := snap[hypergraph.LayerSoil]; ok {
		if soil, err := g.QueryLayer(hypergraph.LayerSoil, vid); err == nil {
			soilHealth = soilHealthScore(soil[0], soil[1], soil[2], soil[3])
		}
	}

	row = append(row, cumulativeDLI, soilHealth)

	return row, nil
}

// soilHealthScore blends moisture/temperature/pH/conductivity ramps around
// their agronomic optima into a single [0,1] composite.
func soilHealthScore(moisture, temperature, conductivity, pH float32) float32 {
	mScore := 1 - clamp01(abs32(moisture-0.275)/0.275)
	tScore := clamp01(1 - max32((abs32(temperature-22.5)-2.5)/15, 0))
	pHScore := clamp01(1 - max32((abs32(pH-6.5)-0.5)/2, 0))
	cScore := clamp01(1 - max32((abs32(conductivity-1.2)-0.3)/2, 0))

	return 0.3*mScore + 0.25*tScore + 0.25*pHScore + 0.2*cScore
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}

func dot(a, b []float32) float32 {
	var sum float32
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}

	return sum
}

// TrainYieldResidual fits a ridge-regression residual over observed
// yields. Requires at least p+1 observations, where p
// is the assembled feature width; otherwise returns status
// "insufficient_data" and a nil residual, leaving any existing trained
// coefficients untouched by contract.
func TrainYieldResidual(g *hypergraph.LayeredHyperGraph, outcomes map[string]float32) (*TrainedResidual, TrainResult, error) {
	snap := g.Snapshot()
	if _, ok := snap[hypergraph.LayerCropRequirements]; !ok {
		return nil, TrainResult{Status: trainStatusInsufficientData}, nil
	}

	byVertex := perVertexFAOYield(g, snap, g.SortedVertexIDs())

	var rows [][]float32
	var targets []float32
	for vid, observed := range outcomes {
		pv, ok := byVertex[vid]
		if !ok {
			continue
		}
		row, err := assembleFeatureRow(g, snap, vid)
		if err != nil || len(row) == 0 {
			continue
		}
		rows = append(rows, row)
		targets = append(targets, observed-pv.yFAO)
	}

	if len(rows) == 0 {
		return nil, TrainResult{Status: trainStatusInsufficientData}, nil
	}
	p := len(rows[0])
	if len(rows) < p+1 {
		return nil, TrainResult{Status: trainStatusInsufficientData, NObservations: len(rows), NCoefficients: p}, nil
	}

	beta, err := ridgeFit(rows, targets, p, ridgeLambda)
	if err != nil {
		return nil, TrainResult{}, modelsErrorf("TrainYieldResidual", err)
	}

	return &TrainedResidual{Beta: beta}, TrainResult{
		Status:        trainStatusTrained,
		NObservations: len(rows),
		NCoefficients: p,
	}, nil
}

// ridgeFit solves beta = (XtX + lambda*I)^-1 Xt r in float32.
func ridgeFit(rows [][]float32, targets []float32, p int, lambda float32) ([]float32, error) {
	n := len(rows)
	x, err := matrix.NewDense(n, p)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		for j := 0; j < p; j++ {
			_ = x.Set(i, j, row[j])
		}
	}

	xt := matrix.Transpose(x)
	xtx, err := matrix.Mul(xt, x)
	if err != nil {
		return nil, err
	}
	ridge, _ := matrix.Identity(p)
	ridge = matrix.Scale(ridge, lambda)
	xtxReg, err := matrix.Add(xtx, ridge)
	if err != nil {
		return nil, err
	}

	xtr := make([]float32, p)
	for j := 0; j < p; j++ {
		var sum float32
		for i := 0; i < n; i++ {
			sum += rows[i][j] * targets[i]
		}
		xtr[j] = sum
	}

	return matrix.Solve(xtxReg, xtr)
}
