package synth

import "math"

// Soil channel order: moisture, temperature, conductivity, pH.
const soilChannels = 4

// generateSoil produces the soil layer's channel matrix across all sensors
// concatenated as additional channel groups of soilChannels width each,
// driven by shared rainfall/irrigation impulse forcing.
func generateSoil(seed int64, nSensors, nSteps int, precip []float32, dropoutRate float32) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetSoil)
	m := newChannelMatrix(nSteps, soilChannels*nSensors)

	corr := identityCorrelation(soilChannels, 0.15)

	for s := 0; s < nSensors; s++ {
		noise, _ := correlatedNormals(newRNG(seed, seedOffsetSoil+int64(s)), nSteps, corr)

		moisture := float32(0.25 + rng.Float64()*0.1)
		for t := 0; t < nSteps; t++ {
			hour := float64(t*cadenceMinutes) / 60.0

			// Exponential decay plus shared rainfall impulse.
			moisture -= 0.0008
			if t < len(precip) && precip[t] > 0 {
				moisture += precip[t] * 0.01
			}
			moisture = clampf(moisture+noise[t][0]*0.01, 0.03, 0.95)

			diurnal := 4 * math.Sin(2*math.Pi*hour/24-1.0)
			temperature := clampf(18+float32(diurnal)+noise[t][1]*0.8-float32((moisture-0.3)*5), -5, 45)

			conductivity := clampf(1.5-moisture*0.8+noise[t][2]*0.1, 0.1, 4)
			pH := clampf(6.5+noise[t][3]*0.3, 4.5, 8.5)

			base := s * soilChannels
			m.set(t, base+0, moisture)
			m.set(t, base+1, temperature)
			m.set(t, base+2, conductivity)
			m.set(t, base+3, pH)
		}
	}

	applySharedMissingnessGrouped(rng, m, dropoutRate, soilChannels)

	return m
}
