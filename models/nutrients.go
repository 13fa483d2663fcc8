package models

import "github.com/agrisense/hypercore/hypergraph"

// NutrientWeights is (w_N, w_P, w_K), defaulting to (0.50, 0.25, 0.25).
type NutrientWeights struct {
	N, P, K float32
}

// DefaultNutrientWeights returns the documented default weighting.
func DefaultNutrientWeights() NutrientWeights {
	return NutrientWeights{N: 0.50, P: 0.25, K: 0.25}
}

// NutrientRecord is one zone-or-vertex nutrient deficit report.
type NutrientRecord struct {
	ZoneID              string
	NitrogenDeficit     float32
	PhosphorusDeficit   float32
	PotassiumDeficit    float32
	SeverityScore       float32
	Urgency             string
	SuggestedAmendment  string
	VisualConfirmed     bool
}

const (
	urgencyLow      = "low"
	urgencyMedium   = "medium"
	urgencyHigh     = "high"
	urgencyCritical = "critical"
)

// NutrientReport scores N/P/K deficits against crop requirements, applying
// a growth-stage weight and an optional vision-confirmed severity boost.
// Returns an empty slice when the graph lacks the npk or
// crop_requirements layers.
func NutrientReport(g *hypergraph.LayeredHyperGraph, weights NutrientWeights) ([]NutrientRecord, error) {
	snap := g.Snapshot()
	if _, ok := snap[hypergraph.LayerNPK]; !ok {
		return nil, nil
	}
	if _, ok := snap[hypergraph.LayerCropRequirements]; !ok {
		return nil, nil
	}
	_, visionPresent := snap[hypergraph.LayerVision]

	reqMax := hostMaxRequirement(g)

	type perVertex struct {
		dN, dP, dK, severity float32
		confirmed            bool
	}
	byVertex := make(map[string]perVertex)

	for _, vid := range g.SortedVertexIDs() {
		npk, err := g.QueryLayer(hypergraph.LayerNPK, vid)
		if err != nil {
			continue
		}
		req, err := g.QueryLayer(hypergraph.LayerCropRequirements, vid)
		if err != nil {
			continue
		}

		dN := max32(req[2]-npk[0], 0)
		dP := max32(req[3]-npk[1], 0)
		dK := max32(req[4]-npk[2], 0)

		growthStage := 1.5 - 0.5*clamp01(req[1])
		denom := max32(reqMax, 1) * 1.5
		severity := clamp01((weights.N*dN + weights.P*dP + weights.K*dK) * growthStage / denom)

		confirmed := false
		if visionPresent {
			if vis, err := g.QueryLayer(hypergraph.LayerVision, vid); err == nil && vis[visionAnomalyScoreCol] > 0.5 {
				severity = clamp01(severity * 2)
				confirmed = true
			}
		}

		byVertex[vid] = perVertex{dN: dN, dP: dP, dK: dK, severity: severity, confirmed: confirmed}
	}

	buildRecord := func(zoneID string, dN, dP, dK, severity float32, confirmed bool) NutrientRecord {
		return NutrientRecord{
			ZoneID:             zoneID,
			NitrogenDeficit:    dN,
			PhosphorusDeficit:  dP,
			PotassiumDeficit:   dK,
			SeverityScore:      severity,
			Urgency:            urgencyTier(severity),
			SuggestedAmendment: amendmentFor(dN, dP, dK),
			VisualConfirmed:    confirmed,
		}
	}

	if _, ok := snap[hypergraph.LayerNPK]; ok {
		if edgeIDs, members := layerEdgeMembership(g, hypergraph.LayerNPK); len(edgeIDs) > 0 {
			out := make([]NutrientRecord, 0, len(edgeIDs))
			for i, zoneID := range edgeIDs {
				var sN, sP, sK, sSev float32
				var confirmed bool
				count := 0
				for _, vid := range members[i] {
					pv, ok := byVertex[vid]
					if !ok {
						continue
					}
					sN += pv.dN
					sP += pv.dP
					sK += pv.dK
					sSev += pv.severity
					confirmed = confirmed || pv.confirmed
					count++
				}
				if count == 0 {
					continue
				}
				n := float32(count)
				out = append(out, buildRecord(zoneID, sN/n, sP/n, sK/n, sSev/n, confirmed))
			}

			return out, nil
		}
	}

	out := make([]NutrientRecord, 0, len(byVertex))
	for _, vid := range g.SortedVertexIDs() {
		pv, ok := byVertex[vid]
		if !ok {
			continue
		}
		out = append(out, buildRecord(vid, pv.dN, pv.dP, pv.dK, pv.severity, pv.confirmed))
	}

	return out, nil
}

func urgencyTier(severity float32) string {
	switch {
	case severity < 0.25:
		return urgencyLow
	case severity < 0.5:
		return urgencyMedium
	case severity < 0.75:
		return urgencyHigh
	default:
		return urgencyCritical
	}
}

func amendmentFor(dN, dP, dK float32) string {
	var parts []string
	if dN > 0 {
		parts = append(parts, "nitrogen")
	}
	if dP > 0 {
		parts = append(parts, "phosphorus")
	}
	if dK > 0 {
		parts = append(parts, "potassium")
	}
	if len(parts) == 0 {
		return "none"
	}

	s := "apply "
	for i, p := range parts {
		if i > 0 {
			s += "/"
		}
		s += p
	}

	return s + " fertilizer"
}

// hostMaxRequirement is the host-side maximum of all N/P/K required values
// across every vertex; it normalizes the severity denominator.
func hostMaxRequirement(g *hypergraph.LayeredHyperGraph) float32 {
	var maxReq float32
	for _, vid := range g.SortedVertexIDs() {
		req, err := g.QueryLayer(hypergraph.LayerCropRequirements, vid)
		if err != nil {
			continue
		}
		for _, v := range req[2:5] {
			if v > maxReq {
				maxReq = v
			}
		}
	}

	return maxReq
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}

	return b
}
