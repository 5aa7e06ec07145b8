// Package metrics implements the financial formulas of the journal: the
// risk-based position-sizing model for live trades, the R-multiple
// calculation for backtest trades, and the expected-value calculation for
// strategies. Everything here is pure arithmetic over validated inputs;
// callers own persistence and validation.
package metrics

import "math"

// Direction of a trade: Long profits when price rises, Short when it falls.
type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// DirectionOf derives the direction from the relative position of entry and
// stop loss. Equality defaults to Long; journal trades keep that boundary
// policy, backtest trades reject it before calling here.
func DirectionOf(avgEntry, stopLoss float64) Direction {
	if avgEntry < stopLoss {
		return Short
	}
	return Long
}

// Fees holds the commission rates applied on entry and exit notionals.
type Fees struct {
	EntryRate float64
	ExitRate  float64
}

// DefaultFees matches the exchange's limit-order schedule: 2 bps on entry,
// 5 bps on exit.
var DefaultFees = Fees{EntryRate: 0.0002, ExitRate: 0.0005}

// round4 rounds to 4 decimal places, the precision persisted for R-multiples
// and expectancy figures.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
