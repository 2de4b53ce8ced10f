package core

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// CandleSubscriber receives candle updates from a data feed
type CandleSubscriber interface {
	OnCandle(Candle)
}

// Candle represents a trading candle with OHLCV data
type Candle struct {
	Pair      string
	Time      time.Time
	UpdatedAt time.Time
	Open      float64
	Close     float64
	Low       float64
	High      float64
	Volume    float64
	Complete  bool

	// Additional columns from CSV inputs
	Metadata map[string]float64
}

// IsEmpty checks if the candle contains no significant data
func (c Candle) IsEmpty() bool {
	return c.Pair == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0
}

// ToSlice converts a candle to a string slice for serialization
// with the specified decimal precision
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}

// Less implements the Item interface for ordering in the priority queue
func (c Candle) Less(j Item) bool {
	other := j.(Candle)

	// Primary sort by time
	diff := other.Time.Sub(c.Time)
	if diff != 0 {
		return diff > 0
	}

	// Secondary sort by update time
	diff = other.UpdatedAt.Sub(c.UpdatedAt)
	if diff != 0 {
		return diff > 0
	}

	// Tertiary sort by pair name
	return c.Pair < other.Pair
}

// ToHeikinAshi transforms a regular candle into a Heikin-Ashi candle
func (c Candle) ToHeikinAshi(ha *HeikinAshi) Candle {
	haCandle := ha.CalculateHeikinAshi(c)

	return Candle{
		Pair:      c.Pair,
		Open:      haCandle.Open,
		High:      haCandle.High,
		Low:       haCandle.Low,
		Close:     haCandle.Close,
		Volume:    c.Volume,
		Complete:  c.Complete,
		Time:      c.Time,
		UpdatedAt: c.UpdatedAt,
	}
}

// HeikinAshi handles the calculation of Heikin-Ashi candles, a charting
// technique that filters out market noise
type HeikinAshi struct {
	PreviousHACandle Candle
}

// NewHeikinAshi creates a new HeikinAshi calculator
func NewHeikinAshi() *HeikinAshi {
	return &HeikinAshi{}
}

// CalculateHeikinAshi transforms a standard candle into a Heikin-Ashi candle
// Formula:
// - HA_Close = (Open + High + Low + Close) / 4
// - HA_Open = (Previous HA_Open + Previous HA_Close) / 2
// - HA_High = Max(High, HA_Open, HA_Close)
// - HA_Low = Min(Low, HA_Open, HA_Close)
func (ha *HeikinAshi) CalculateHeikinAshi(c Candle) Candle {
	var hkCandle Candle

	openValue := ha.PreviousHACandle.Open
	closeValue := ha.PreviousHACandle.Close

	// First HA candle is calculated using current candle
	if ha.PreviousHACandle.IsEmpty() {
		openValue = c.Open
		closeValue = c.Close
	}

	hkCandle.Open = (openValue + closeValue) / 2
	hkCandle.Close = (c.Open + c.High + c.Low + c.Close) / 4
	hkCandle.High = math.Max(c.High, math.Max(hkCandle.Open, hkCandle.Close))
	hkCandle.Low = math.Min(c.Low, math.Min(hkCandle.Open, hkCandle.Close))

	// Save as previous for next calculation
	ha.PreviousHACandle = hkCandle

	return hkCandle
}
