package synth

// FarmType selects the topology and which layers get emitted.
type FarmType string

const (
	FarmOpenField  FarmType = "open_field"
	FarmGreenhouse FarmType = "greenhouse"
	FarmHybrid     FarmType = "hybrid"
)

const cadenceMinutes = 15

// DefaultDropoutRate is the per-channel missingness probability that
// Generate applies to every layer; Generate takes no dropout argument.
const DefaultDropoutRate = 0.03

// ChannelMatrix is a column-major n_steps x n_channels float32 series with
// a parallel missingness bitmask: mask[t][c] true marks a dropped sample,
// whose numeric value is NaN.
type ChannelMatrix struct {
	NSteps    int
	NChannels int
	Data      []float32 // column-major: Data[c*NSteps+t]
	Mask      []bool    // same layout as Data
}

func newChannelMatrix(nSteps, nChannels int) *ChannelMatrix {
	return &ChannelMatrix{
		NSteps:    nSteps,
		NChannels: nChannels,
		Data:      make([]float32, nSteps*nChannels),
		Mask:      make([]bool, nSteps*nChannels),
	}
}

func (m *ChannelMatrix) set(t, c int, v float32) {
	m.Data[c*m.NSteps+t] = v
}

func (m *ChannelMatrix) get(t, c int) float32 {
	return m.Data[c*m.NSteps+t]
}

// Topology describes the generated farm's zones, soil sensors, and
// weather stations.
type Topology struct {
	NZones            int
	Zones             []string
	SoilSensorIDs     []string
	SoilSensorZone    []string
	WeatherStationIDs []string
}

// MissingnessInfo mirrors the output's "missingness" block.
type MissingnessInfo struct {
	Encoding    string
	DropoutRate float32
}

// ReproducibilityInfo mirrors the output's "reproducibility" block.
type ReproducibilityInfo struct {
	Host        string
	Accelerator string
}

// Layers bundles every emitted layer's channel matrix, nil when the layer
// is not applicable to this farm type (lighting/vision on open_field).
type Layers struct {
	Soil       *ChannelMatrix
	Weather    *ChannelMatrix
	Irrigation *ChannelMatrix
	NPK        *ChannelMatrix
	Lighting   *ChannelMatrix
	Vision     *ChannelMatrix
}

// Dataset is the complete cross-boundary-safe synthetic generator
// output.
type Dataset struct {
	FarmType        FarmType
	Days            int
	Seed            int64
	CadenceMinutes  int
	NSteps          int
	TimeHours       []float32
	Missingness     MissingnessInfo
	Reproducibility ReproducibilityInfo
	Topology        Topology
	Layers          Layers
	Status          string
}
