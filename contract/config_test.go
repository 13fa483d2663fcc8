package contract

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
farm_id: farm-yaml
farm_type: hybrid
active_layers: [soil, weather, npk]
zones:
  - id: zone-a
    name: North Field
    zone_type: open_field
    area_m2: 250
    soil_type: loam
models:
  anomaly_detection: false
vertices:
  - id: s1
    type: sensor
  - id: s2
    type: sensor
edges:
  - id: zone-a
    layer: soil
    vertex_ids: [s1, s2]
    metadata:
      depth_cm: "30"
`

func TestLoadFarmConfigYAML(t *testing.T) {
	cfg, err := LoadFarmConfigYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "farm-yaml", cfg.FarmID)
	assert.Equal(t, "hybrid", cfg.FarmType)
	assert.Equal(t, []string{"soil", "weather", "npk"}, cfg.ActiveLayers)
	require.Len(t, cfg.Zones, 1)
	assert.Equal(t, "loam", cfg.Zones[0].SoilType)
	require.Len(t, cfg.Edges, 1)
	assert.Equal(t, "30", cfg.Edges[0].Metadata["depth_cm"])

	// Omitted toggles default to true; the one explicit false survives.
	toggles := cfg.Models.Resolve()
	assert.True(t, toggles.Irrigation)
	assert.False(t, toggles.AnomalyDetection)
}

func TestLoadFarmConfigYAML_MalformedIsConfigError(t *testing.T) {
	_, err := LoadFarmConfigYAML(strings.NewReader("farm_id: [unterminated"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigError))
}

func TestDumpFarmConfigYAML_RoundTrips(t *testing.T) {
	cfg, err := LoadFarmConfigYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DumpFarmConfigYAML(&buf, cfg))

	back, err := LoadFarmConfigYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestToProfile_EmptyFarmIDRejected(t *testing.T) {
	_, err := FarmConfig{}.toProfile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigError))
}
