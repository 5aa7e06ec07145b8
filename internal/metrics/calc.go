package metrics

import (
	"math"
	"time"
)

// TradeInput carries the lifecycle fields of a single trade. AvgExit and
// ExitDate are nil while the trade is open; when both are set the exit
// figures (commission, P&L, duration) are computed as well.
type TradeInput struct {
	AvgEntry           float64
	StopLoss           float64
	StopLossPercentage float64 // percent of Amount risked if the stop is hit
	Amount             float64 // capital allocated
	AvgExit            *float64
	TradeDate          time.Time
	ExitDate           *time.Time
}

// TradeMetrics is the derived view of a trade. The pointer fields are nil
// for open trades and set together when an exit price is supplied.
type TradeMetrics struct {
	Direction    Direction
	ExpectedLoss float64 // capital lost if the stop is hit
	RiskPerUnit  float64 // positive distance from entry to stop
	TradeValue   float64 // notional implied by risking ExpectedLoss over the stop distance
	PositionSize float64 // units of the underlying
	Leverage     float64 // TradeValue / Amount

	Commission           *float64
	GrossProfitLoss      *float64
	ProfitLoss           *float64
	ProfitLossPercentage *float64
	Duration             *int // whole days between trade date and exit date, rounded up
}

// ComputeTradeMetrics converts raw trade inputs into the derived risk,
// position-sizing, commission and P&L figures of the spreadsheet model.
//
// Division guards are deliberate: a zero risk-per-unit, entry price or
// amount yields 0 for the dependent figures, never Inf or NaN.
func ComputeTradeMetrics(in TradeInput, fees Fees) TradeMetrics {
	direction := DirectionOf(in.AvgEntry, in.StopLoss)

	expectedLoss := in.Amount * (in.StopLossPercentage / 100)

	var riskPerUnit float64
	if direction == Short {
		riskPerUnit = in.StopLoss - in.AvgEntry
	} else {
		riskPerUnit = in.AvgEntry - in.StopLoss
	}

	var tradeValue float64
	if riskPerUnit != 0 {
		tradeValue = (expectedLoss / riskPerUnit) * in.AvgEntry
	}

	var positionSize float64
	if in.AvgEntry != 0 {
		positionSize = tradeValue / in.AvgEntry
	}

	var leverage float64
	if in.Amount != 0 {
		leverage = tradeValue / in.Amount
	}

	m := TradeMetrics{
		Direction:    direction,
		ExpectedLoss: expectedLoss,
		RiskPerUnit:  riskPerUnit,
		TradeValue:   tradeValue,
		PositionSize: positionSize,
		Leverage:     leverage,
	}

	if in.AvgExit == nil {
		return m
	}
	avgExit := *in.AvgExit

	entryCommission := fees.EntryRate * tradeValue
	exitCommission := fees.ExitRate * avgExit * positionSize
	commission := entryCommission + exitCommission

	var gross float64
	if direction == Short {
		gross = (in.AvgEntry - avgExit) * positionSize
	} else {
		gross = (avgExit - in.AvgEntry) * positionSize
	}

	profitLoss := gross - commission

	var plPct float64
	if in.Amount != 0 {
		plPct = (profitLoss / in.Amount) * 100
	}

	m.Commission = &commission
	m.GrossProfitLoss = &gross
	m.ProfitLoss = &profitLoss
	m.ProfitLossPercentage = &plPct

	if in.ExitDate != nil {
		duration := DurationDays(in.TradeDate, *in.ExitDate)
		m.Duration = &duration
	}

	return m
}

// DurationDays returns the number of whole days between the trade date and
// the exit date, rounded up. A same-day exit yields 0.
func DurationDays(tradeDate, exitDate time.Time) int {
	return int(math.Ceil(exitDate.Sub(tradeDate).Hours() / 24))
}
