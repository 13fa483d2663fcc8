package synth

import (
	"math"
	"math/rand"

	"github.com/agrisense/hypercore/matrix"
)

// layerSeed derives a per-layer stream from the farm seed by adding a
// small fixed offset, so a single layer can be reproduced independently
// of how many other layers were generated before it.
func layerSeed(base int64, offset int64) int64 {
	return base + offset
}

const (
	seedOffsetWeather    = 1
	seedOffsetSoil       = 2
	seedOffsetNPK        = 3
	seedOffsetLighting   = 4
	seedOffsetVision     = 5
	seedOffsetIrrigation = 6
	seedOffsetTopology   = 0
)

func newRNG(base int64, offset int64) *rand.Rand {
	return rand.New(rand.NewSource(layerSeed(base, offset)))
}

// correlatedNormals draws nSteps independent standard-normal vectors of
// width len(corr) and multiplies each by the Cholesky factor of corr,
// injecting the target cross-channel correlation. On a
// non-positive-definite corr, CholeskyJittered escalates a diagonal
// perturbation rather than failing the run.
func correlatedNormals(rng *rand.Rand, nSteps int, corr *matrix.Dense) ([][]float32, error) {
	l, _, err := matrix.CholeskyJittered(corr)
	if err != nil {
		return nil, err
	}

	n := corr.Rows()
	out := make([][]float32, nSteps)
	for t := 0; t < nSteps; t++ {
		z := make([]float32, n)
		for i := 0; i < n; i++ {
			z[i] = float32(rng.NormFloat64())
		}
		row := make([]float32, n)
		for i := 0; i < n; i++ {
			var sum float32
			for j := 0; j <= i; j++ {
				v, _ := l.At(i, j)
				sum += v * z[j]
			}
			row[i] = sum
		}
		out[t] = row
	}

	return out, nil
}

// identityCorrelation returns an n x n correlation matrix with the given
// off-diagonal value everywhere (a simple uniform-correlation target
// matrix sufficient for the noise injection this generator needs).
func identityCorrelation(n int, offDiag float32) *matrix.Dense {
	m, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				_ = m.Set(i, j, 1)
			} else {
				_ = m.Set(i, j, offDiag)
			}
		}
	}

	return m
}

// applyMissingness marks each entry of m as missing independently with
// probability dropoutRate, setting its value to NaN.
func applyMissingness(rng *rand.Rand, m *ChannelMatrix, dropoutRate float32) {
	for c := 0; c < m.NChannels; c++ {
		for t := 0; t < m.NSteps; t++ {
			if rng.Float32() < dropoutRate {
				m.Mask[c*m.NSteps+t] = true
				m.set(t, c, float32(math.NaN()))
			}
		}
	}
}

// applySharedMissingnessGrouped drops every channel within a groupSize-wide
// channel group together whenever that group's shared Bernoulli draw at
// step t fires — used by layers whose channels are emitted per-sensor
// (soil, npk: "if a sensor drops out, all its readings drop out").
func applySharedMissingnessGrouped(rng *rand.Rand, m *ChannelMatrix, dropoutRate float32, groupSize int) {
	nGroups := m.NChannels / groupSize
	for g := 0; g < nGroups; g++ {
		for t := 0; t < m.NSteps; t++ {
			if rng.Float32() >= dropoutRate {
				continue
			}
			for c := g * groupSize; c < (g+1)*groupSize; c++ {
				m.Mask[c*m.NSteps+t] = true
				m.set(t, c, float32(math.NaN()))
			}
		}
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
