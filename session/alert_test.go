package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertWatcher_FirstSampleSetsBaseline(t *testing.T) {
	watcher := NewAlertWatcher("SHELLUSDT", 1.0)

	_, ok := watcher.Check(1.0, time.Now())
	assert.False(t, ok)
}

func TestAlertWatcher_TriggersAboveThreshold(t *testing.T) {
	watcher := NewAlertWatcher("SHELLUSDT", 1.0)
	now := time.Now()

	_, ok := watcher.Check(1.0, now)
	require.False(t, ok)

	alert, ok := watcher.Check(1.02, now)
	require.True(t, ok)
	assert.True(t, alert.Rising)
	assert.Equal(t, 1.0, alert.From)
	assert.Equal(t, 1.02, alert.To)
	assert.InDelta(t, 2.0, alert.ChangePct, 1e-9)
}

func TestAlertWatcher_BaselineResetsAfterAlert(t *testing.T) {
	watcher := NewAlertWatcher("SHELLUSDT", 1.0)
	now := time.Now()

	watcher.Check(1.0, now)
	_, ok := watcher.Check(1.02, now)
	require.True(t, ok)

	// small move from the new baseline does not trigger
	_, ok = watcher.Check(1.025, now)
	assert.False(t, ok)

	// a drop beyond the threshold triggers a falling alert
	alert, ok := watcher.Check(1.0, now)
	require.True(t, ok)
	assert.False(t, alert.Rising)
}

func TestAlertWatcher_DisabledThreshold(t *testing.T) {
	watcher := NewAlertWatcher("SHELLUSDT", 0)

	_, ok := watcher.Check(1.0, time.Now())
	require.False(t, ok)
	_, ok = watcher.Check(100.0, time.Now())
	assert.False(t, ok)
}
