package synth

import "fmt"

// Generate produces a complete synthetic dataset for a farm of the given
// type, over the given number of days, driven by seed. Hybrid farms
// split zones 2 greenhouse / 4 open_field and open_field zones omit the
// vision layer.
func Generate(farmType FarmType, days int, seed int64) (*Dataset, error) {
	if days < 1 {
		return nil, fmt.Errorf("synth.Generate: days must be >= 1")
	}

	nSteps := days * 24 * 60 / cadenceMinutes
	topo := buildTopology(farmType)

	timeHours := make([]float32, nSteps)
	for t := range timeHours {
		timeHours[t] = float32(t*cadenceMinutes) / 60.0
	}

	greenhouseZones := 0
	for i := range topo.Zones {
		if zoneIsGreenhouse(farmType, i) {
			greenhouseZones++
		}
	}

	weather := generateWeather(seed, len(topo.WeatherStationIDs), nSteps, DefaultDropoutRate)
	impulses := sharedImpulses(seed, nSteps)
	precipPerStep := extractChannel(weather, 2)

	combinedForcing := make([]float32, nSteps)
	for t := 0; t < nSteps; t++ {
		combinedForcing[t] = precipPerStep[t] + impulses[t]
	}

	soil := generateSoil(seed, len(topo.SoilSensorIDs), nSteps, combinedForcing, DefaultDropoutRate)
	npk := generateNPK(seed, topo.NZones, nSteps, DefaultDropoutRate)
	irrigation := generateIrrigation(impulses, len(topo.SoilSensorIDs), nSteps, DefaultDropoutRate, seed)

	var lighting, vision *ChannelMatrix
	if greenhouseZones > 0 {
		lighting = generateLighting(seed, greenhouseZones, nSteps, DefaultDropoutRate)
		vision = generateVision(seed, greenhouseZones, nSteps, DefaultDropoutRate)
	}

	return &Dataset{
		FarmType:       farmType,
		Days:           days,
		Seed:           seed,
		CadenceMinutes: cadenceMinutes,
		NSteps:         nSteps,
		TimeHours:      timeHours,
		Missingness: MissingnessInfo{
			Encoding:    "nan_plus_bitmask",
			DropoutRate: DefaultDropoutRate,
		},
		Reproducibility: ReproducibilityInfo{
			Host:        "bitwise_deterministic",
			Accelerator: "statistically_deterministic",
		},
		Topology: topo,
		Layers: Layers{
			Soil:       soil,
			Weather:    weather,
			Irrigation: irrigation,
			NPK:        npk,
			Lighting:   lighting,
			Vision:     vision,
		},
		Status: "ok",
	}, nil
}

// ActiveLayersForZone reports the layer tags a zone declares, honoring
// the hybrid split: open_field zones omit vision and lighting even on a
// hybrid farm.
func ActiveLayersForZone(farmType FarmType, zoneIndex int) []string {
	layers := []string{"soil", "weather", "irrigation", "npk"}
	if zoneIsGreenhouse(farmType, zoneIndex) {
		layers = append(layers, "lighting", "vision")
	}

	return layers
}

func extractChannel(m *ChannelMatrix, c int) []float32 {
	out := make([]float32, m.NSteps)
	for t := 0; t < m.NSteps; t++ {
		out[t] = m.get(t, c)
	}

	return out
}
