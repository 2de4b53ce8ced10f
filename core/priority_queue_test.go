package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_ChronologicalPop(t *testing.T) {
	queue := NewPriorityQueue(nil)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	queue.Push(Candle{Pair: "SHELLUSDT", Time: base.Add(30 * time.Minute)})
	queue.Push(Candle{Pair: "SHELLUSDT", Time: base})
	queue.Push(Candle{Pair: "SHELLUSDT", Time: base.Add(15 * time.Minute)})

	require.Equal(t, 3, queue.Len())

	first := queue.Pop().(Candle)
	second := queue.Pop().(Candle)
	third := queue.Pop().(Candle)

	assert.Equal(t, base, first.Time)
	assert.Equal(t, base.Add(15*time.Minute), second.Time)
	assert.Equal(t, base.Add(30*time.Minute), third.Time)
	assert.Equal(t, 0, queue.Len())
}

func TestPriorityQueue_PopEmpty(t *testing.T) {
	queue := NewPriorityQueue(nil)
	assert.Nil(t, queue.Pop())
}

func TestPriorityQueue_PopLock(t *testing.T) {
	queue := NewPriorityQueue(nil)
	ch := queue.PopLock()

	queue.Push(Candle{Pair: "SHELLUSDT", Time: time.Now()})

	select {
	case item := <-ch:
		require.NotNil(t, item)
	case <-time.After(time.Second):
		t.Fatal("expected item from PopLock channel")
	}
}
