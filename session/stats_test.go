package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_EmptySnapshot(t *testing.T) {
	tracker := NewTracker("SHELLUSDT")
	snapshot := tracker.Snapshot()

	assert.Equal(t, "SHELLUSDT", snapshot.Pair)
	assert.Equal(t, 0, snapshot.Samples)
	assert.Zero(t, snapshot.Current)
}

func TestTracker_Record(t *testing.T) {
	tracker := NewTracker("SHELLUSDT")

	tracker.Record(1.0)
	tracker.Record(1.5)
	tracker.Record(0.5)
	tracker.Record(1.2)

	snapshot := tracker.Snapshot()

	require.Equal(t, 4, snapshot.Samples)
	assert.Equal(t, 1.0, snapshot.Open)
	assert.Equal(t, 1.2, snapshot.Current)
	assert.Equal(t, 1.5, snapshot.High)
	assert.Equal(t, 0.5, snapshot.Low)
	assert.InDelta(t, 20.0, snapshot.ChangePct, 1e-9)
	assert.InDelta(t, 1.05, snapshot.Mean, 1e-9)
	assert.InDelta(t, 1.1, snapshot.Median, 1e-9)
	assert.Greater(t, snapshot.StdDev, 0.0)
}
