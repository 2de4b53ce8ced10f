package indicator

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/raykavin/coinwatch/core"
	"github.com/raykavin/coinwatch/plot"
)

// MACD creates a new Moving Average Convergence/Divergence indicator
func MACD(fast, slow, signal int, macdColor, macdSignalColor, histogramColor string) plot.Indicator {
	return &macd{
		Fast:            fast,
		Slow:            slow,
		Signal:          signal,
		MacdColor:       macdColor,
		MacdSignalColor: macdSignalColor,
		HistogramColor:  histogramColor,
	}
}

type macd struct {
	Fast             int
	Slow             int
	Signal           int
	MacdColor        string
	MacdSignalColor  string
	HistogramColor   string
	ValuesMacd       core.Series[float64]
	ValuesMacdSignal core.Series[float64]
	ValuesHistogram  core.Series[float64]
	Time             []time.Time
}

func (m macd) Warmup() int {
	return m.Slow + m.Signal
}

func (m macd) Name() string {
	return fmt.Sprintf("MACD(%d, %d, %d)", m.Fast, m.Slow, m.Signal)
}

func (m macd) Overlay() bool {
	return false
}

func (m *macd) Load(dataframe *core.Dataframe) {
	warmup := m.Warmup()
	if len(dataframe.Time) < warmup {
		return
	}

	macdLine, signalLine, histogram := talib.Macd(dataframe.Close, m.Fast, m.Slow, m.Signal)
	m.ValuesMacd, m.ValuesMacdSignal, m.ValuesHistogram =
		macdLine[warmup:], signalLine[warmup:], histogram[warmup:]

	m.Time = dataframe.Time[warmup:]
}

func (m macd) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		{
			Style:  "line",
			Color:  m.MacdColor,
			Values: m.ValuesMacd,
			Time:   m.Time,
		},
		{
			Style:  "line",
			Color:  m.MacdSignalColor,
			Values: m.ValuesMacdSignal,
			Time:   m.Time,
		},
		{
			Style:  "bar",
			Color:  m.HistogramColor,
			Values: m.ValuesHistogram,
			Time:   m.Time,
		},
	}
}
