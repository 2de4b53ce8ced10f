package core

import "errors"

var (
	ErrBaseAssetEmpty    = errors.New("empty base asset")
	ErrQuoteAssetEmpty   = errors.New("empty quote asset")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientFunds = errors.New("insufficient funds or locked")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrInvalidTimeframe  = errors.New("invalid timeframe")
)
