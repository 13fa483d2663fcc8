package synth

import "fmt"

// zonesFor builds the zone layout for a farm type. Hybrid farms declare
// 6 zones total: the first 2 greenhouse, the next 4 open_field.
func zonesFor(farmType FarmType) []string {
	n := zoneCountFor(farmType)
	zones := make([]string, n)
	for i := range zones {
		zones[i] = fmt.Sprintf("zone-%02d", i+1)
	}

	return zones
}

func zoneCountFor(farmType FarmType) int {
	switch farmType {
	case FarmHybrid:
		return 6
	default:
		return 3
	}
}

// zoneIsGreenhouse reports whether zone index i (0-based) is a greenhouse
// zone for the given farm type.
func zoneIsGreenhouse(farmType FarmType, i int) bool {
	switch farmType {
	case FarmGreenhouse:
		return true
	case FarmHybrid:
		return i < 2
	default:
		return false
	}
}

// ZoneTypeFor reports "greenhouse" or "open_field" for zone index i.
func ZoneTypeFor(farmType FarmType, i int) string {
	if zoneIsGreenhouse(farmType, i) {
		return "greenhouse"
	}

	return "open_field"
}

const sensorsPerZone = 2

func buildTopology(farmType FarmType) Topology {
	zones := zonesFor(farmType)

	var sensorIDs, sensorZones []string
	for zi, zone := range zones {
		for s := 0; s < sensorsPerZone; s++ {
			sensorIDs = append(sensorIDs, fmt.Sprintf("soil-%02d-%d", zi+1, s+1))
			sensorZones = append(sensorZones, zone)
		}
	}

	stationCount := len(zones)
	if stationCount > 3 {
		stationCount = 3 // one weather station roughly covers several zones
	}
	stations := make([]string, stationCount)
	for i := range stations {
		stations[i] = fmt.Sprintf("station-%02d", i+1)
	}

	return Topology{
		NZones:            len(zones),
		Zones:             zones,
		SoilSensorIDs:     sensorIDs,
		SoilSensorZone:    sensorZones,
		WeatherStationIDs: stations,
	}
}
