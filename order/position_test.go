package order

import (
	"testing"
	"time"

	"github.com/raykavin/coinwatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_UpdateSameSide(t *testing.T) {
	position := &Position{
		Side:     core.SideTypeBuy,
		AvgPrice: 10,
		Quantity: 1,
	}

	result, finished := position.Update(&core.Order{
		Side:     core.SideTypeBuy,
		Price:    20,
		Quantity: 1,
	})

	require.Nil(t, result)
	require.False(t, finished)
	assert.Equal(t, 15.0, position.AvgPrice)
	assert.Equal(t, 2.0, position.Quantity)
}

func TestPosition_UpdateFullClose(t *testing.T) {
	createdAt := time.Now().Add(-time.Hour)
	position := &Position{
		Side:      core.SideTypeBuy,
		AvgPrice:  10,
		Quantity:  2,
		CreatedAt: createdAt,
	}

	order := &core.Order{
		Side:      core.SideTypeSell,
		Price:     12,
		Quantity:  2,
		CreatedAt: time.Now(),
	}

	result, finished := position.Update(order)

	require.NotNil(t, result)
	require.True(t, finished)
	assert.InDelta(t, 0.2, result.ProfitPercent, 1e-9)
	assert.InDelta(t, 4.0, result.ProfitValue, 1e-9)
	assert.Equal(t, core.SideTypeBuy, result.Side)
	assert.InDelta(t, 0.2, order.Profit, 1e-9)
}

func TestPosition_UpdatePartialClose(t *testing.T) {
	position := &Position{
		Side:     core.SideTypeBuy,
		AvgPrice: 10,
		Quantity: 2,
	}

	result, finished := position.Update(&core.Order{
		Side:     core.SideTypeSell,
		Price:    15,
		Quantity: 1,
	})

	require.NotNil(t, result)
	require.False(t, finished)
	assert.Equal(t, 1.0, position.Quantity)
	assert.InDelta(t, 5.0, result.ProfitValue, 1e-9)
}
