package contract

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/agrisense/hypercore/hypergraph"
)

// ZoneConfig is one entry of a farm configuration's zone list.
type ZoneConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	ZoneType string  `yaml:"zone_type"`
	AreaM2   float32 `yaml:"area_m2"`
	SoilType string  `yaml:"soil_type,omitempty"`
}

// VertexConfig is one entry of a farm configuration's vertex list.
type VertexConfig struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`
}

// EdgeConfig is one entry of a farm configuration's edge list.
type EdgeConfig struct {
	ID        string            `yaml:"id"`
	Layer     string            `yaml:"layer"`
	VertexIDs []string          `yaml:"vertex_ids"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
}

// ModelToggles mirrors the farm configuration's `models` map. Each
// field is a pointer so YAML/map omission is distinguishable from an
// explicit false; Resolve applies the documented "defaults to true".
type ModelToggles struct {
	Irrigation       *bool `yaml:"irrigation,omitempty"`
	Nutrients        *bool `yaml:"nutrients,omitempty"`
	YieldForecast    *bool `yaml:"yield_forecast,omitempty"`
	AnomalyDetection *bool `yaml:"anomaly_detection,omitempty"`
}

// Resolve converts m to the hypergraph engine's dense toggle struct,
// defaulting every omitted field to true.
func (m ModelToggles) Resolve() hypergraph.ModelToggles {
	return hypergraph.ModelToggles{
		Irrigation:       boolOr(m.Irrigation, true),
		Nutrients:        boolOr(m.Nutrients, true),
		YieldForecast:    boolOr(m.YieldForecast, true),
		AnomalyDetection: boolOr(m.AnomalyDetection, true),
	}
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}

	return *p
}

// FarmConfig is the typed, in-process form of the farm configuration.
// It is the boundary of loose-map conversion: every component past
// contract sees this shape or hypergraph.Profile, never a raw map.
type FarmConfig struct {
	FarmID       string         `yaml:"farm_id"`
	FarmType     string         `yaml:"farm_type"`
	ActiveLayers []string       `yaml:"active_layers"`
	Zones        []ZoneConfig   `yaml:"zones"`
	Models       ModelToggles   `yaml:"models"`
	Vertices     []VertexConfig `yaml:"vertices"`
	Edges        []EdgeConfig   `yaml:"edges"`
	HistorySize  int            `yaml:"history_size,omitempty"`
}

// LoadFarmConfigYAML decodes a farm configuration document, the common
// path for ops tooling seeding a demo farm.
func LoadFarmConfigYAML(r io.Reader) (FarmConfig, error) {
	var cfg FarmConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return FarmConfig{}, contractErrorf("LoadFarmConfigYAML", fmt.Errorf("%s: %w", err.Error(), ErrConfigError))
	}

	return cfg, nil
}

// DumpFarmConfigYAML encodes cfg as a YAML document.
func DumpFarmConfigYAML(w io.Writer, cfg FarmConfig) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(cfg); err != nil {
		return contractErrorf("DumpFarmConfigYAML", err)
	}

	return nil
}

// farmConfigFromMap converts the loose, cross-boundary farm_config map
// into a typed FarmConfig. This is the one place a bare map[string]any
// is inspected; everything downstream is typed.
func farmConfigFromMap(m map[string]any) (FarmConfig, error) {
	cfg := FarmConfig{}

	var ok bool
	if cfg.FarmID, ok = m["farm_id"].(string); !ok {
		return FarmConfig{}, contractErrorf("farmConfigFromMap", ErrConfigError)
	}
	if cfg.FarmType, ok = m["farm_type"].(string); !ok {
		return FarmConfig{}, contractErrorf("farmConfigFromMap", ErrConfigError)
	}

	if raw, ok := m["active_layers"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				cfg.ActiveLayers = append(cfg.ActiveLayers, s)
			}
		}
	}

	if raw, ok := m["zones"].([]any); ok {
		for _, v := range raw {
			zm, ok := v.(map[string]any)
			if !ok {
				continue
			}
			z := ZoneConfig{
				ID:       stringField(zm, "id"),
				Name:     stringField(zm, "name"),
				ZoneType: stringField(zm, "zone_type"),
				SoilType: stringField(zm, "soil_type"),
			}
			if a, ok := zm["area_m2"].(float64); ok {
				z.AreaM2 = float32(a)
			}
			cfg.Zones = append(cfg.Zones, z)
		}
	}

	if raw, ok := m["vertices"].([]any); ok {
		for _, v := range raw {
			vm, ok := v.(map[string]any)
			if !ok {
				continue
			}
			cfg.Vertices = append(cfg.Vertices, VertexConfig{
				ID:   stringField(vm, "id"),
				Type: stringField(vm, "type"),
			})
		}
	}

	if raw, ok := m["edges"].([]any); ok {
		for _, v := range raw {
			em, ok := v.(map[string]any)
			if !ok {
				continue
			}
			e := EdgeConfig{
				ID:    stringField(em, "id"),
				Layer: stringField(em, "layer"),
			}
			if vids, ok := em["vertex_ids"].([]any); ok {
				for _, vid := range vids {
					if s, ok := vid.(string); ok {
						e.VertexIDs = append(e.VertexIDs, s)
					}
				}
			}
			if meta, ok := em["metadata"].(map[string]any); ok {
				e.Metadata = make(map[string]string, len(meta))
				for k, v := range meta {
					if s, ok := v.(string); ok {
						e.Metadata[k] = s
					}
				}
			}
			cfg.Edges = append(cfg.Edges, e)
		}
	}

	if models, ok := m["models"].(map[string]any); ok {
		cfg.Models = ModelToggles{
			Irrigation:       boolPtrField(models, "irrigation"),
			Nutrients:        boolPtrField(models, "nutrients"),
			YieldForecast:    boolPtrField(models, "yield_forecast"),
			AnomalyDetection: boolPtrField(models, "anomaly_detection"),
		}
	}

	return cfg, nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}

	return ""
}

func boolPtrField(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}

	return nil
}

// historySizeEnv overrides the default ring-buffer depth for graphs
// whose configuration does not set one explicitly.
const historySizeEnv = "HISTORY_SIZE"

// envHistorySize reads the HISTORY_SIZE knob; 0 (meaning "use the
// engine's built-in default") on absence or a non-positive/garbage value.
func envHistorySize() int {
	raw, ok := os.LookupEnv(historySizeEnv)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}

	return n
}

// toProfile converts cfg into hypergraph.Profile, validating that every
// edge's layer is one of the closed set — a ConfigError, not a silent
// drop, since an edge naming an unknown layer is a malformed
// configuration rather than a stale vertex reference.
func (cfg FarmConfig) toProfile() (hypergraph.Profile, error) {
	if cfg.FarmID == "" {
		return hypergraph.Profile{}, contractErrorf("toProfile", ErrConfigError)
	}

	activeLayers := make([]hypergraph.LayerTag, 0, len(cfg.ActiveLayers))
	for _, s := range cfg.ActiveLayers {
		activeLayers = append(activeLayers, hypergraph.LayerTag(s))
	}

	vertices := make([]hypergraph.VertexDef, 0, len(cfg.Vertices))
	for _, v := range cfg.Vertices {
		vertices = append(vertices, hypergraph.VertexDef{ID: v.ID, Type: v.Type})
	}

	edges := make([]hypergraph.EdgeDef, 0, len(cfg.Edges))
	for _, e := range cfg.Edges {
		tag := hypergraph.LayerTag(e.Layer)
		if !hypergraph.IsKnownLayer(tag) {
			return hypergraph.Profile{}, contractErrorf("toProfile", ErrConfigError)
		}
		edges = append(edges, hypergraph.EdgeDef{
			ID:       e.ID,
			Layer:    tag,
			Vertices: e.VertexIDs,
			Metadata: e.Metadata,
		})
	}

	historySize := cfg.HistorySize
	if historySize <= 0 {
		historySize = envHistorySize()
	}

	return hypergraph.Profile{
		FarmID:       cfg.FarmID,
		FarmType:     cfg.FarmType,
		ActiveLayers: activeLayers,
		Models:       cfg.Models.Resolve(),
		Vertices:     vertices,
		Edges:        edges,
		HistorySize:  historySize,
	}, nil
}
