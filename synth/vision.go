package synth

import "math"

// Vision channel order: ndvi, canopy_coverage, anomaly_code, confidence.
const visionChannels = 4

const (
	anomalyMissing = -1.0
	anomalyNone    = 0.0
	anomalyPest    = 1.0
	anomalyDisease = 2.0
)

// generateVision produces the vision layer, emitted only for greenhouse
// zones, with a line-adjacency clustering kernel on pest/disease events:
// a bed's event probability is amplified by how many of
// its linear neighbors were flagged on the previous step.
func generateVision(seed int64, nBeds, nSteps int, dropoutRate float32) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetVision)
	m := newChannelMatrix(nSteps, visionChannels*nBeds)

	flaggedPrev := make([]bool, nBeds)
	progress := make([]float32, nBeds)
	for b := range progress {
		progress[b] = float32(rng.Float64() * 0.2)
	}

	corr := identityCorrelation(visionChannels, 0.1)
	noiseByBed := make([][][]float32, nBeds)
	for b := 0; b < nBeds; b++ {
		noiseByBed[b], _ = correlatedNormals(newRNG(seed, seedOffsetVision+int64(b)), nSteps, corr)
	}

	for t := 0; t < nSteps; t++ {
		flaggedNow := make([]bool, nBeds)
		for b := 0; b < nBeds; b++ {
			neighborsFlagged := 0
			if b > 0 && flaggedPrev[b-1] {
				neighborsFlagged++
			}
			if b < nBeds-1 && flaggedPrev[b+1] {
				neighborsFlagged++
			}

			baseProb := 0.01
			eventProb := baseProb + 0.12*float64(neighborsFlagged)
			anomalyCode := float32(anomalyNone)
			confidence := float32(0.9 + 0.05*rng.Float64())

			if rng.Float64() < eventProb {
				flaggedNow[b] = true
				if rng.Float64() < 0.5 {
					anomalyCode = anomalyPest
				} else {
					anomalyCode = anomalyDisease
				}
				confidence = clampf(confidence+0.08, 0, 1)
			}

			progress[b] = clampf(progress[b]+0.0002, 0, 1)
			canopy := 20 + 75*(1-float32(math.Exp(-3*float64(progress[b])))) + noiseByBed[b][t][1]*2
			ndvi := clampf(0.2+0.6*progress[b]+noiseByBed[b][t][0]*0.02, 0, 1)

			base := b * visionChannels
			m.set(t, base+0, ndvi)
			m.set(t, base+1, canopy)
			m.set(t, base+2, anomalyCode)
			m.set(t, base+3, confidence)
		}
		flaggedPrev = flaggedNow
	}

	applyMissingness(rng, m, dropoutRate)
	// Missing samples use anomaly code -1 per the closed encoding, not NaN,
	// since anomaly_code is a discrete signal consumers branch on directly.
	for c := 2; c < visionChannels*nBeds; c += visionChannels {
		for t := 0; t < nSteps; t++ {
			if m.Mask[c*nSteps+t] {
				m.set(t, c, anomalyMissing)
			}
		}
	}

	return m
}
