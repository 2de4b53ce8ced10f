package core

import (
	"time"
)

type MetricStyle string

const (
	StyleBar       = "bar"
	StyleScatter   = "scatter"
	StyleLine      = "line"
	StyleHistogram = "histogram"
	StyleWaterfall = "waterfall"
)

// IndicatorMetric is a single named series rendered on a chart
type IndicatorMetric struct {
	Name   string
	Color  string
	Style  MetricStyle // default: line
	Values Series[float64]
}

// ChartIndicator groups related metrics sharing a time axis
type ChartIndicator struct {
	Time      []time.Time
	Metrics   []IndicatorMetric
	Overlay   bool
	GroupName string
	Warmup    int
}
