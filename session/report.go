package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RSI bands used for the report advice
const (
	rsiOverbought = 70
	rsiOversold   = 30
)

// TechSummary holds the latest indicator values for the report
type TechSummary struct {
	RSI           float64
	MA5           float64
	MA25          float64
	MACDHistogram float64
	VolatilityPct float64
	Valid         bool
}

// PositionSummary describes the open simulated position, if any
type PositionSummary struct {
	Open       bool
	EntryPrice float64
	Quantity   float64
	ProfitPct  float64
}

// Report aggregates everything shown in the periodic status report
type Report struct {
	Snapshot  Snapshot
	Tech      TechSummary
	Position  PositionSummary
	Sentiment string
	Score     float64
	HasScore  bool
	Equity    float64
}

// MATrend describes the moving average alignment
func (t TechSummary) MATrend() string {
	if !t.Valid {
		return "n/a"
	}
	switch {
	case t.MA5 > t.MA25:
		return "bullish alignment"
	case t.MA5 < t.MA25:
		return "bearish alignment"
	default:
		return "crossing"
	}
}

// MACDTrend describes the histogram direction
func (t TechSummary) MACDTrend() string {
	if !t.Valid {
		return "n/a"
	}
	if t.MACDHistogram > 0 {
		return "bullish"
	}
	return "bearish"
}

// Advice produces the one-line recommendation shown at the bottom of the
// report. RSI extremes take precedence over trend agreement.
func (t TechSummary) Advice() string {
	if !t.Valid {
		return "insufficient data for a recommendation"
	}

	switch {
	case t.RSI > rsiOverbought:
		return "RSI overbought, pullback possible, stay cautious"
	case t.RSI < rsiOversold:
		return "RSI oversold, rebound possible, consider buying"
	case t.MA5 > t.MA25 && t.MACDHistogram > 0:
		return "indicators bullish, consider buying"
	case t.MA5 < t.MA25 && t.MACDHistogram < 0:
		return "indicators bearish, consider selling"
	default:
		return "signals unclear, better to wait"
	}
}

// String renders the report as text suitable for terminal and Telegram
func (r Report) String() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Status report - %s\n", r.Snapshot.Pair))
	builder.WriteString(fmt.Sprintf("Watching for %s (%d samples)\n\n",
		r.Snapshot.Elapsed.Round(time.Second), r.Snapshot.Samples))

	position := "no open position"
	if r.Position.Open {
		position = fmt.Sprintf("long %.8f @ %.4f (%+.2f%%)",
			r.Position.Quantity, r.Position.EntryPrice, r.Position.ProfitPct)
	}

	table := tablewriter.NewWriter(&builder)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.AppendBulk([][]string{
		{"Price", fmt.Sprintf("%.4f", r.Snapshot.Current)},
		{"Change", fmt.Sprintf("%+.2f%%", r.Snapshot.ChangePct)},
		{"Session High", fmt.Sprintf("%.4f", r.Snapshot.High)},
		{"Session Low", fmt.Sprintf("%.4f", r.Snapshot.Low)},
		{"Position", position},
		{"Equity", fmt.Sprintf("%.4f", r.Equity)},
	})
	if r.Tech.Valid {
		table.AppendBulk([][]string{
			{"RSI", fmt.Sprintf("%.2f", r.Tech.RSI)},
			{"MA Trend", r.Tech.MATrend()},
			{"MACD", r.Tech.MACDTrend()},
			{"Volatility", fmt.Sprintf("%.2f%%", r.Tech.VolatilityPct)},
		})
	}
	table.Render()

	if r.HasScore {
		builder.WriteString(fmt.Sprintf("\nSentiment: %s (%.2f)", r.Sentiment, r.Score))
	}
	builder.WriteString("\nAdvice: " + r.Tech.Advice())

	return builder.String()
}
