package backend

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_DefaultsHostWithoutAccelerator(t *testing.T) {
	// No accelerator exists in this tree, so Detect must always return Host
	// regardless of the environment override.
	t.Setenv("FORCE_HOST_BACKEND", "")
	assert.Equal(t, Host, Detect())
}

func TestDetect_ForceHostEnv(t *testing.T) {
	t.Setenv("FORCE_HOST_BACKEND", "true")
	assert.Equal(t, Host, Detect())
}

func TestIsAccelerator(t *testing.T) {
	assert.False(t, IsAccelerator(ResidentHost))
	assert.True(t, IsAccelerator(ResidentParallel))
}

func TestEnsureHost(t *testing.T) {
	assert.Equal(t, ResidentHost, EnsureHost(ResidentHost))
	assert.Equal(t, ResidentHost, EnsureHost(ResidentParallel))
}

func TestLaunch_CallsEveryIndexExactlyOnce(t *testing.T) {
	const n = 1000
	var hits [n]int32

	err := Launch(Host, n, 64, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	require.NoError(t, err)

	for i, h := range hits {
		require.Equalf(t, int32(1), h, "index %d called %d times", i, h)
	}
}

func TestLaunch_ZeroAndNegativeRankNoop(t *testing.T) {
	called := false
	require.NoError(t, Launch(Host, 0, 0, func(int) { called = true }))
	require.NoError(t, Launch(Host, -5, 0, func(int) { called = true }))
	assert.False(t, called)
}

func TestLaunch_DefaultWorkgroup(t *testing.T) {
	var count int32
	require.NoError(t, Launch(Parallel, 10, 0, func(int) {
		atomic.AddInt32(&count, 1)
	}))
	assert.EqualValues(t, 10, count)
}

func TestLaunch_InvalidKind(t *testing.T) {
	err := Launch(Kind(99), 10, 0, func(int) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))
}
