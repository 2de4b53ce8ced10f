package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus()

	var got string
	require.NoError(t, bus.Subscribe(TopicPriceAlert, func(msg string) {
		got = msg
	}))

	bus.Publish(TopicPriceAlert, "price moved")
	assert.Equal(t, "price moved", got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	handler := func(string) { calls++ }

	require.NoError(t, bus.Subscribe(TopicSignal, handler))
	bus.Publish(TopicSignal, "first")
	require.NoError(t, bus.Unsubscribe(TopicSignal, handler))
	bus.Publish(TopicSignal, "second")

	assert.Equal(t, 1, calls)
}

func TestBus_SubscribeAsync(t *testing.T) {
	bus := NewBus()

	var count atomic.Int32
	require.NoError(t, bus.SubscribeAsync(TopicNews, func(string) {
		count.Add(1)
	}))

	bus.Publish(TopicNews, "a")
	bus.Publish(TopicNews, "b")
	bus.WaitAsync()

	assert.Equal(t, int32(2), count.Load())
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()

	calls := 0
	require.NoError(t, bus.Subscribe(TopicTrade, func(string) { calls++ }))

	bus.Publish(TopicSignal, "other topic")
	assert.Zero(t, calls)
}
