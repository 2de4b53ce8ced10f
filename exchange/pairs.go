// Package exchange provides implementations for market data acquisition,
// candle feed fan-out and the simulated wallet used for paper trading.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/adshao/go-binance/v2"
)

// ---------------------
// Types
// ---------------------

// AssetQuote represents a trading pair (base asset and quote currency)
type AssetQuote struct {
	Quote string `json:"quote"`
	Asset string `json:"asset"`
}

// PairService manages information about trading pairs
type PairService struct {
	pairMap map[string]AssetQuote
	mu      sync.RWMutex
}

// knownQuotes lists the quote currencies used to split a pair symbol when
// the pair map has no entry for it. Longer suffixes first so BUSD wins
// over USD.
var knownQuotes = []string{
	"USDT", "BUSD", "USDC", "EUR", "TRY", "AUD", "BRL", "GBP", "NGN",
	"BTC", "ETH", "BNB", "USD",
}

// defaultPairService is the default instance of the pair service
var defaultPairService = &PairService{pairMap: make(map[string]AssetQuote)}

// ---------------------
// Pair Lookup Methods
// ---------------------

// SplitAssetQuote splits a pair into its asset and quote components.
// Pairs fetched via UpdatePairs resolve exactly; unknown pairs fall back
// to matching a known quote currency suffix.
func SplitAssetQuote(pair string) (asset string, quote string) {
	defaultPairService.mu.RLock()
	data, exists := defaultPairService.pairMap[pair]
	defaultPairService.mu.RUnlock()

	if exists {
		return data.Asset, data.Quote
	}

	for _, quote = range knownQuotes {
		if len(pair) > len(quote) && strings.HasSuffix(pair, quote) {
			return pair[:len(pair)-len(quote)], quote
		}
	}

	// Last resort: assume a three letter quote
	if len(pair) > 3 {
		return pair[:len(pair)-3], pair[len(pair)-3:]
	}

	return pair, ""
}

// GetPair returns the AssetQuote information for a pair
func GetPair(pair string) (AssetQuote, bool) {
	defaultPairService.mu.RLock()
	defer defaultPairService.mu.RUnlock()

	data, exists := defaultPairService.pairMap[pair]
	return data, exists
}

// ---------------------
// Pair Update Methods
// ---------------------

// UpdatePairs refreshes the pair map from the Binance spot exchange info
func UpdatePairs(ctx context.Context) error {
	spotClient := binance.NewClient("", "")
	spotInfo, err := spotClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spot exchange info: %w", err)
	}

	newPairMap := make(map[string]AssetQuote, len(spotInfo.Symbols))
	for _, info := range spotInfo.Symbols {
		newPairMap[info.Symbol] = AssetQuote{
			Quote: info.QuoteAsset,
			Asset: info.BaseAsset,
		}
	}

	defaultPairService.mu.Lock()
	defaultPairService.pairMap = newPairMap
	defaultPairService.mu.Unlock()

	return nil
}

// SavePairsToFile saves the pair map to a file
func SavePairsToFile(filename string) error {
	defaultPairService.mu.RLock()
	defer defaultPairService.mu.RUnlock()

	content, err := json.MarshalIndent(defaultPairService.pairMap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pairs: %w", err)
	}

	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

// UpdateAndSavePairs updates and saves the pair map to a file
func UpdateAndSavePairs(ctx context.Context, filename string) error {
	if err := UpdatePairs(ctx); err != nil {
		return err
	}
	return SavePairsToFile(filename)
}
