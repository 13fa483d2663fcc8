package synth

import "math"

// Weather channel order per station: temperature, humidity, precipitation,
// wind_speed, solar_radiation — matching hypergraph.LayerWeather's feature
// layout. Stations are concatenated as additional channel groups.
const weatherChannels = 5

const (
	weatherTempAmplitude = 8.0
	weatherTempBaseline  = 19.0
	weatherTempPhase     = -1.0
)

// generateWeather produces the weather layer's channel matrix for n_steps
// at 15-minute cadence: a diurnal temperature sinusoid with per-station
// baseline offsets, humidity anti-correlated with temperature, seasonal
// Bernoulli rain events, and derived wind/solar channels.
func generateWeather(seed int64, nStations int, nSteps int, dropoutRate float32) *ChannelMatrix {
	rng := newRNG(seed, seedOffsetWeather)
	m := newChannelMatrix(nSteps, weatherChannels*nStations)

	stationOffsets := make([]float32, nStations)
	for i := range stationOffsets {
		stationOffsets[i] = float32(rng.NormFloat64()) * 1.5
	}

	corr := identityCorrelation(weatherChannels, 0.2)

	for s := 0; s < nStations; s++ {
		noise, _ := correlatedNormals(newRNG(seed, seedOffsetWeather+int64(s)), nSteps, corr)
		stationRNG := newRNG(seed, seedOffsetWeather+1000+int64(s))

		for t := 0; t < nSteps; t++ {
			hour := float64(t*cadenceMinutes) / 60.0
			diurnal := weatherTempAmplitude * math.Sin(2*math.Pi*hour/24+weatherTempPhase)
			temp := float32(weatherTempBaseline) + stationOffsets[s] + float32(diurnal) + noise[t][0]*0.5

			humidity := clampf(60-0.9*(temp-weatherTempBaseline)+noise[t][1]*5, 10, 100)

			// Rain probability oscillates over a 30-day season cycle.
			day := float64(t*cadenceMinutes) / (60 * 24)
			rainProb := 0.16 + 0.14*math.Sin(2*math.Pi*day/30)
			var precip float32
			if stationRNG.Float64() < rainProb {
				precip = float32(stationRNG.Float64() * 4)
			}

			windSpeed := clampf(2+float32(stationRNG.NormFloat64())*1.2+noise[t][3]*0.5, 0, 25)
			solarRad := clampf(solarRadiationCurve(hour)+noise[t][4]*40, 0, 1000)

			base := s * weatherChannels
			m.set(t, base+0, temp)
			m.set(t, base+1, humidity)
			m.set(t, base+2, precip)
			m.set(t, base+3, windSpeed)
			m.set(t, base+4, solarRad)
		}
	}

	applyMissingness(rng, m, dropoutRate)

	return m
}

// solarRadiationCurve is a simple daylight bell curve peaking at noon.
func solarRadiationCurve(hour float64) float32 {
	h := math.Mod(hour, 24)
	if h < 6 || h > 19 {
		return 0
	}

	return float32(900 * math.Sin(math.Pi*(h-6)/13))
}
