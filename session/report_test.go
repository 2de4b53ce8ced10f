package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTechSummary_Advice(t *testing.T) {
	tests := []struct {
		name   string
		tech   TechSummary
		advice string
	}{
		{
			name:   "no data",
			tech:   TechSummary{},
			advice: "insufficient data for a recommendation",
		},
		{
			name:   "overbought wins over trend",
			tech:   TechSummary{RSI: 75, MA5: 2, MA25: 1, MACDHistogram: 1, Valid: true},
			advice: "RSI overbought, pullback possible, stay cautious",
		},
		{
			name:   "oversold",
			tech:   TechSummary{RSI: 25, Valid: true},
			advice: "RSI oversold, rebound possible, consider buying",
		},
		{
			name:   "bullish agreement",
			tech:   TechSummary{RSI: 50, MA5: 2, MA25: 1, MACDHistogram: 0.5, Valid: true},
			advice: "indicators bullish, consider buying",
		},
		{
			name:   "bearish agreement",
			tech:   TechSummary{RSI: 50, MA5: 1, MA25: 2, MACDHistogram: -0.5, Valid: true},
			advice: "indicators bearish, consider selling",
		},
		{
			name:   "mixed signals",
			tech:   TechSummary{RSI: 50, MA5: 2, MA25: 1, MACDHistogram: -0.5, Valid: true},
			advice: "signals unclear, better to wait",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.advice, tt.tech.Advice())
		})
	}
}

func TestTechSummary_Trends(t *testing.T) {
	tech := TechSummary{MA5: 2, MA25: 1, MACDHistogram: 1, Valid: true}
	assert.Equal(t, "bullish alignment", tech.MATrend())
	assert.Equal(t, "bullish", tech.MACDTrend())

	tech = TechSummary{MA5: 1, MA25: 2, MACDHistogram: -1, Valid: true}
	assert.Equal(t, "bearish alignment", tech.MATrend())
	assert.Equal(t, "bearish", tech.MACDTrend())

	assert.Equal(t, "n/a", TechSummary{}.MATrend())
}

func TestReport_String(t *testing.T) {
	report := Report{
		Snapshot: Snapshot{
			Pair:      "SHELLUSDT",
			Current:   1.2345,
			ChangePct: 2.5,
			High:      1.30,
			Low:       1.10,
			Samples:   10,
		},
		Tech: TechSummary{
			RSI:           55,
			MA5:           1.25,
			MA25:          1.20,
			MACDHistogram: 0.01,
			VolatilityPct: 0.8,
			Valid:         true,
		},
		Position:  PositionSummary{Open: true, EntryPrice: 1.2, Quantity: 100, ProfitPct: 2.9},
		Sentiment: "bullish",
		Score:     0.4,
		HasScore:  true,
		Equity:    10100,
	}

	text := report.String()

	assert.Contains(t, text, "Status report - SHELLUSDT")
	assert.Contains(t, text, "1.2345")
	assert.Contains(t, text, "bullish alignment")
	assert.Contains(t, text, "Sentiment: bullish (0.40)")
	assert.Contains(t, text, "Advice: indicators bullish, consider buying")
	assert.True(t, strings.Contains(text, "long"))
}

func TestReport_StringWithoutPosition(t *testing.T) {
	report := Report{Snapshot: Snapshot{Pair: "SHELLUSDT"}}
	text := report.String()

	assert.Contains(t, text, "no open position")
	assert.Contains(t, text, "insufficient data for a recommendation")
}
