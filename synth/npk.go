package synth

import "math"

// NPK channel order: N, P, K, organic_matter.
const npkChannels = 4

const npkStepMinutes = 7 * 24 * 60 // weekly cadence

// generateNPK produces the npk layer at weekly cadence, resampled onto the
// shared 15-minute grid (each value held constant across the week it
// belongs to), with linear drift and periodic fertilization step-ups.
func generateNPK(seed int64, nZones, nSteps int, dropoutRate float32) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetNPK)
	m := newChannelMatrix(nSteps, npkChannels*nZones)

	stepsPerWeek := npkStepMinutes / cadenceMinutes

	corr := identityCorrelation(npkChannels, 0.1)

	for z := 0; z < nZones; z++ {
		noise, _ := correlatedNormals(newRNG(seed, seedOffsetNPK+int64(z)), nSteps, corr)

		baseN := float32(80 + rng.Float64()*20)
		baseP := float32(35 + rng.Float64()*10)
		baseK := float32(55 + rng.Float64()*15)
		organic := float32(3 + rng.Float64()*2)

		week := 0
		for t := 0; t < nSteps; t++ {
			if t > 0 && t%stepsPerWeek == 0 {
				week++
				baseN -= 1.2
				baseP -= 0.6
				baseK -= 0.9
				if week%4 == 0 {
					baseN += 15
					baseP += 8
					baseK += 10
				}
			}

			// Noise and the seasonal term are taken at the week's first
			// step, so every step of a week carries the same sample.
			ws := t - t%stepsPerWeek
			day := float64(ws*cadenceMinutes) / (60 * 24)
			organicSeasonal := organic + float32(0.5*math.Sin(2*math.Pi*day/180))

			base := z * npkChannels
			m.set(t, base+0, clampf(baseN+noise[ws][0]*2, 0, 250))
			m.set(t, base+1, clampf(baseP+noise[ws][1]*1.5, 0, 150))
			m.set(t, base+2, clampf(baseK+noise[ws][2]*1.5, 0, 200))
			m.set(t, base+3, clampf(organicSeasonal+noise[ws][3]*0.3, 0, 10))
		}
	}

	applySharedMissingnessGrouped(rng, m, dropoutRate, npkChannels)

	return m
}
