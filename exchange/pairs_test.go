package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAssetQuote(t *testing.T) {
	tests := []struct {
		pair  string
		asset string
		quote string
	}{
		{"SHELLUSDT", "SHELL", "USDT"},
		{"BTCUSDT", "BTC", "USDT"},
		{"ETHBTC", "ETH", "BTC"},
		{"BNBBUSD", "BNB", "BUSD"},
		{"SOLEUR", "SOL", "EUR"},
		{"DOGEUSD", "DOGE", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			asset, quote := SplitAssetQuote(tt.pair)
			assert.Equal(t, tt.asset, asset)
			assert.Equal(t, tt.quote, quote)
		})
	}
}

func TestSplitAssetQuote_UnknownFallsBackToThreeLetters(t *testing.T) {
	asset, quote := SplitAssetQuote("FOOBAR")
	assert.Equal(t, "FOO", asset)
	assert.Equal(t, "BAR", quote)
}
