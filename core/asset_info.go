package core

// AssetInfo contains market information about a trading pair
type AssetInfo struct {
	BaseAsset  string
	QuoteAsset string

	MinPrice    float64
	MaxPrice    float64
	MinQuantity float64
	MaxQuantity float64
	StepSize    float64
	TickSize    float64

	QuotePrecision     int
	BaseAssetPrecision int
}

// Validate ensures that the AssetInfo has valid base and quote assets
func (a AssetInfo) Validate() error {
	if len(a.BaseAsset) == 0 {
		return ErrBaseAssetEmpty
	}

	if len(a.QuoteAsset) == 0 {
		return ErrQuoteAssetEmpty
	}

	return nil
}
