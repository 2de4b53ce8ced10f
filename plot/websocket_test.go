package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadPair(t *testing.T) {
	assert.Equal(t, "SHELLUSDT", payloadPair(map[string]any{"pair": "SHELLUSDT"}))
	assert.Empty(t, payloadPair(map[string]any{"candle": "data"}))
}

func TestPayloadPair_NonMapPayload(t *testing.T) {
	// broadcast payloads are not always maps; the filter must not panic
	assert.NotPanics(t, func() {
		assert.Empty(t, payloadPair("plain string"))
		assert.Empty(t, payloadPair(nil))
		assert.Empty(t, payloadPair(42))
		assert.Empty(t, payloadPair(map[string]any{"pair": 7}))
	})
}
