package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange(t *testing.T) {
	out := Change([]float64{100, 110, 99})

	require.Len(t, out, 3)
	assert.Zero(t, out[0])
	assert.InDelta(t, 0.10, out[1], 1e-9)
	assert.InDelta(t, -0.10, out[2], 1e-9)
}

func TestChange_SkipsZeroBase(t *testing.T) {
	out := Change([]float64{0, 5, 10})

	assert.Zero(t, out[0])
	assert.Zero(t, out[1]) // undefined change from zero
	assert.InDelta(t, 1.0, out[2], 1e-9)
}

func TestVolatility_ZeroBeforeWindow(t *testing.T) {
	input := []float64{100, 101, 102, 103, 104, 105}
	out := Volatility(input, 3)

	require.Len(t, out, 6)
	for i := 0; i < 3; i++ {
		assert.Zero(t, out[i])
	}
	assert.NotZero(t, out[4])
}

func TestVolatility_FlatSeriesIsZero(t *testing.T) {
	input := []float64{100, 100, 100, 100, 100, 100}
	out := Volatility(input, 3)

	for _, v := range out {
		assert.Zero(t, v)
	}
}

func TestVolatility_ScalesWithSwings(t *testing.T) {
	calm := []float64{100, 100.1, 100.2, 100.1, 100.2, 100.3, 100.2}
	wild := []float64{100, 105, 95, 108, 92, 110, 90}

	calmOut := Volatility(calm, 3)
	wildOut := Volatility(wild, 3)

	assert.Greater(t, wildOut[len(wildOut)-1], calmOut[len(calmOut)-1])
}
