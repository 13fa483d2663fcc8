package synth

// Irrigation channel order: one channel per valve, applied_mm.
const irrigationChannelsPerValve = 1

// sharedImpulses derives the per-step irrigation impulse series (mm
// applied, same series soil's forcing uses) from a seeded Bernoulli
// trigger, independent of per-valve topology. Soil moisture forcing and
// per-valve applied-mm series both consume this one series.
func sharedImpulses(seed int64, nSteps int) []float32 {
	rng := newRNG(seed, seedOffsetIrrigation)
	out := make([]float32, nSteps)
	for t := 0; t < nSteps; t++ {
		if rng.Float64() < 0.05 {
			out[t] = float32(2 + rng.Float64()*6)
		}
	}

	return out
}

// generateIrrigation tiles the shared impulse series across nValves.
func generateIrrigation(impulses []float32, nValves, nSteps int, dropoutRate float32, seed int64) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetIrrigation+100)
	m := newChannelMatrix(nSteps, nValves)
	for v := 0; v < nValves; v++ {
		for t := 0; t < nSteps; t++ {
			m.set(t, v, impulses[t])
		}
	}
	applyMissingness(rng, m, dropoutRate)

	return m
}
