package indicator

import "github.com/markcheno/go-talib"

// MaType represents moving average type
type MaType = talib.MaType

// Moving average type constants
const (
	TypeSMA  = talib.SMA  // Simple Moving Average
	TypeEMA  = talib.EMA  // Exponential Moving Average
	TypeWMA  = talib.WMA  // Weighted Moving Average
	TypeDEMA = talib.DEMA // Double Exponential Moving Average
	TypeTEMA = talib.TEMA // Triple Exponential Moving Average
)

// ------------------------------------------
// Overlap Studies (Moving Averages, Bands)
// ------------------------------------------

// BB calculates Bollinger Bands
// Returns upper, middle, and lower bands
func BB(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	return talib.BBands(input, period, deviation, deviation, maType)
}

// EMA calculates Exponential Moving Average
func EMA(input []float64, period int) []float64 {
	return talib.Ema(input, period)
}

// MA calculates Moving Average with specified type
func MA(input []float64, period int, maType MaType) []float64 {
	return talib.Ma(input, period, maType)
}

// SMA calculates Simple Moving Average
func SMA(input []float64, period int) []float64 {
	return talib.Sma(input, period)
}

// WMA calculates Weighted Moving Average
func WMA(input []float64, period int) []float64 {
	return talib.Wma(input, period)
}

// Max calculates the rolling highest value over the period
func Max(input []float64, period int) []float64 {
	return talib.Max(input, period)
}

// Min calculates the rolling lowest value over the period
func Min(input []float64, period int) []float64 {
	return talib.Min(input, period)
}

// ---------------------------------------
// Momentum Indicators
// ---------------------------------------

// ADX calculates Average Directional Movement Index
func ADX(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.Adx(high, low, close, period)
}

// MACD calculates Moving Average Convergence/Divergence
// Returns MACD line, signal line, and histogram
func MACD(input []float64, fastPeriod, slowPeriod, signalPeriod int) ([]float64, []float64, []float64) {
	return talib.Macd(input, fastPeriod, slowPeriod, signalPeriod)
}

// ROC calculates Rate of Change: ((price/prevPrice)-1)*100
func ROC(input []float64, period int) []float64 {
	return talib.Roc(input, period)
}

// RSI calculates Relative Strength Index
func RSI(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// Stoch calculates Stochastic oscillator
// Returns slowK and slowD
func Stoch(high []float64, low []float64, close []float64, fastKPeriod int, slowKPeriod int,
	slowKMAType MaType, slowDPeriod int, slowDMAType MaType) ([]float64, []float64) {
	return talib.Stoch(high, low, close, fastKPeriod, slowKPeriod, slowKMAType, slowDPeriod, slowDMAType)
}

// ---------------------------------------
// Volatility Indicators
// ---------------------------------------

// ATR calculates Average True Range
func ATR(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}

// ---------------------------------------
// Volume Indicators
// ---------------------------------------

// OBV calculates On Balance Volume
func OBV(input []float64, volume []float64) []float64 {
	return talib.Obv(input, volume)
}
