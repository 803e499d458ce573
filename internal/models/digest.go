package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metric names a bar field compared across periods.
type Metric string

const (
	MetricClose  Metric = "CLOSE"
	MetricVolume Metric = "VOLUME"
)

// Metrics is the fixed output order.
var Metrics = []Metric{MetricClose, MetricVolume}

// Value extracts the metric from a bar.
func (m Metric) Value(b Bar) decimal.Decimal {
	if m == MetricVolume {
		return decimal.NewFromInt(b.Volume)
	}
	return b.Close
}

// Period is a named lookback horizon measured back from the resolved anchor.
type Period struct {
	Label  string
	Years  int
	Months int
	Days   int
}

var (
	Period1D = Period{Label: "1d", Days: 1}
	Period1M = Period{Label: "1m", Months: 1}
	Period3M = Period{Label: "3m", Months: 3}
	Period6M = Period{Label: "6m", Months: 6}
	Period1Y = Period{Label: "1y", Years: 1}
	Period3Y = Period{Label: "3y", Years: 3}
)

// Periods is the fixed output order.
var Periods = []Period{Period1D, Period1M, Period3M, Period6M, Period1Y, Period3Y}

// DigestRequest asks for a digest of Symbol as of AnchorDate.
type DigestRequest struct {
	Symbol     string
	AnchorDate time.Time
}

// PeriodChange compares the anchor value with the value resolved for one period.
// HasPercent is false when the period value is zero.
type PeriodChange struct {
	Period      string          `json:"period"`
	Target      time.Time       `json:"target"` // nominal calendar date before resolution
	Date        time.Time       `json:"date"`   // persisted trading date used
	AnchorValue decimal.Decimal `json:"anchor_value"`
	PeriodValue decimal.Decimal `json:"period_value"`
	Percent     decimal.Decimal `json:"percent"`
	HasPercent  bool            `json:"has_percent"`
}

// MetricDigest holds one metric's changes in period order. Periods without
// history are absent.
type MetricDigest struct {
	Metric      Metric          `json:"metric"`
	AnchorValue decimal.Decimal `json:"anchor_value"`
	Changes     []PeriodChange  `json:"changes"`
}

// DigestResult is the computed digest for one symbol.
type DigestResult struct {
	Symbol        string         `json:"symbol"`
	RequestedDate time.Time      `json:"requested_date"`
	ResolvedDate  time.Time      `json:"resolved_date"`
	Substituted   bool           `json:"substituted"`
	Metrics       []MetricDigest `json:"metrics"`
}

// Change looks up one cell; ok is false when the period was omitted.
func (r *DigestResult) Change(metric Metric, period string) (PeriodChange, bool) {
	for _, m := range r.Metrics {
		if m.Metric != metric {
			continue
		}
		for _, c := range m.Changes {
			if c.Period == period {
				return c, true
			}
		}
	}
	return PeriodChange{}, false
}
