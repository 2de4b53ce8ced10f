package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_Last(t *testing.T) {
	series := Series[float64]{1, 2, 3}

	assert.Equal(t, 3.0, series.Last(0))
	assert.Equal(t, 2.0, series.Last(1))
	assert.Equal(t, 1.0, series.Last(2))
}

func TestSeries_LastValues(t *testing.T) {
	series := Series[float64]{1, 2, 3, 4}

	assert.Equal(t, Series[float64]{3, 4}, series.LastValues(2))
	assert.Equal(t, series, series.LastValues(10))
}

func TestSeries_Crossover(t *testing.T) {
	fast := Series[float64]{1, 3}
	slow := Series[float64]{2, 2}

	assert.True(t, fast.Crossover(slow))
	assert.False(t, slow.Crossover(fast))
}

func TestSeries_Crossunder(t *testing.T) {
	fast := Series[float64]{3, 1}
	slow := Series[float64]{2, 2}

	assert.True(t, fast.Crossunder(slow))
	assert.False(t, slow.Crossunder(fast))
}

func TestSeries_NoCrossWhenParallel(t *testing.T) {
	fast := Series[float64]{3, 4}
	slow := Series[float64]{1, 2}

	assert.False(t, fast.Cross(slow))
}
