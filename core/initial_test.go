package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialPositionData_AllZero(t *testing.T) {
	for _, n := range []int{1, 2, 7, 128} {
		pos, err := InitialPositionData(n)
		require.NoError(t, err)
		require.Equal(t, n*n, pos.Len())

		zeros := 0
		for i := 0; i < pos.Len(); i++ {
			if v := pos.AtIndex(i); v[0] == 0 && v[1] == 0 && v[2] == 0 {
				zeros++
			}
		}
		assert.Equal(t, n*n, zeros, "n=%d", n)
	}
}

func TestInitialVelocityData_XOnly(t *testing.T) {
	for _, n := range []int{1, 3, 64, 128} {
		vel, err := InitialVelocityData(n, NewRand(42), VelocityInitX)
		require.NoError(t, err)
		require.Equal(t, n*n, vel.Len())

		for i := 0; i < vel.Len(); i++ {
			v := vel.AtIndex(i)
			assert.Equal(t, float32(0), v[1])
			assert.Equal(t, float32(0), v[2])
			assert.GreaterOrEqual(t, v[0], float32(0))
			assert.Less(t, v[0], VelocityRangeX)
		}
	}
}

func TestInitialVelocityData_XIsSpreadOverRange(t *testing.T) {
	vel, err := InitialVelocityData(128, NewRand(7), VelocityInitX)
	require.NoError(t, err)

	var below, above int
	var sum float64
	for i := 0; i < vel.Len(); i++ {
		x := vel.AtIndex(i)[0]
		sum += float64(x)
		if x < 1 {
			below++
		} else {
			above++
		}
	}
	mean := sum / float64(vel.Len())
	assert.InDelta(t, 1.0, mean, 0.05)
	assert.InDelta(t, vel.Len()/2, below, float64(vel.Len())*0.05)
	assert.InDelta(t, vel.Len()/2, above, float64(vel.Len())*0.05)
}

func TestInitialVelocityData_Deterministic(t *testing.T) {
	a, err := InitialVelocityData(16, NewRand(99), VelocityInitX)
	require.NoError(t, err)
	b, err := InitialVelocityData(16, NewRand(99), VelocityInitX)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)

	c, err := InitialVelocityData(16, NewRand(100), VelocityInitX)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data, c.Data)
}

func TestInitialVelocityData_Spread(t *testing.T) {
	vel, err := InitialVelocityData(32, NewRand(3), VelocityInitSpread)
	require.NoError(t, err)

	nonZeroYZ := 0
	for i := 0; i < vel.Len(); i++ {
		v := vel.AtIndex(i)
		for c := 0; c < 3; c++ {
			assert.GreaterOrEqual(t, v[c], float32(-2))
			assert.Less(t, v[c], float32(2))
		}
		if v[1] != 0 || v[2] != 0 {
			nonZeroYZ++
		}
	}
	assert.Greater(t, nonZeroYZ, 0)
}

func TestInitialData_InvalidGrid(t *testing.T) {
	_, err := InitialVelocityData(0, NewRand(1), VelocityInitX)
	assert.ErrorIs(t, err, ErrInvalidGrid)
	_, err = InitialPositionData(-1)
	assert.ErrorIs(t, err, ErrInvalidGrid)
}

func TestParseVelocityInit(t *testing.T) {
	m, err := ParseVelocityInit("")
	require.NoError(t, err)
	assert.Equal(t, VelocityInitX, m)

	m, err = ParseVelocityInit("spread")
	require.NoError(t, err)
	assert.Equal(t, VelocityInitSpread, m)

	_, err = ParseVelocityInit("sphere")
	assert.Error(t, err)
}
