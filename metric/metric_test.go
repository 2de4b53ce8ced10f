package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, Mean(nil))
}

func TestPayoff(t *testing.T) {
	// avg win 2.0 over avg loss 1.0
	payoff := Payoff([]float64{2, 2, -1, -1})
	assert.InDelta(t, 2.0, payoff, 1e-9)
}

func TestPayoff_NoLosses(t *testing.T) {
	assert.Equal(t, 10.0, Payoff([]float64{1, 2}))
}

func TestProfitFactor(t *testing.T) {
	// gross profit 6 over gross loss 2
	factor := ProfitFactor([]float64{3, 3, -1, -1})
	assert.InDelta(t, 3.0, factor, 1e-9)
}

func TestBootstrap(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, -1, -2, 2, 3, 1}

	interval := Bootstrap(values, Mean, 1000, 0.95)

	require.LessOrEqual(t, interval.Lower, interval.Upper)
	assert.GreaterOrEqual(t, Mean(values), interval.Lower)
	assert.LessOrEqual(t, Mean(values), interval.Upper)
}
