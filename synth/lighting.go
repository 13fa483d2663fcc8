package synth

import "math"

// Lighting channel order: PAR, DLI (cumulative), duty_cycle, spectrum_index.
const lightingChannels = 4

// generateLighting produces the lighting layer, emitted only for
// greenhouse zones.
func generateLighting(seed int64, nGreenhouseZones, nSteps int, dropoutRate float32) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetLighting)
	m := newChannelMatrix(nSteps, lightingChannels*nGreenhouseZones)

	corr := identityCorrelation(lightingChannels, 0.1)

	for z := 0; z < nGreenhouseZones; z++ {
		noise, _ := correlatedNormals(newRNG(seed, seedOffsetLighting+int64(z)), nSteps, corr)
		peak := float32(400 + rng.Float64()*100)
		var cumulativeDLI float32

		for t := 0; t < nSteps; t++ {
			hour := float64(t*cadenceMinutes) / 60.0
			parRaw := math.Max(0, math.Sin(2*math.Pi*hour/24-1.1))
			par := clampf(peak*float32(parRaw)+noise[t][0]*10, 0, peak*1.2)

			// mol/m^2 over this sample interval: PAR (umol/m^2/s) * seconds / 1e6.
			cumulativeDLI += par * float32(cadenceMinutes*60) / 1e6

			dutyCycle := clampf(par/peak, 0, 1)
			spectrumIndex := clampf(0.5+0.1*float32(math.Sin(2*math.Pi*hour/24))+noise[t][3]*0.02, 0, 1)

			base := z * lightingChannels
			m.set(t, base+0, par)
			m.set(t, base+1, cumulativeDLI)
			m.set(t, base+2, dutyCycle)
			m.set(t, base+3, spectrumIndex)
		}
	}

	applyMissingness(rng, m, dropoutRate)

	return m
}
