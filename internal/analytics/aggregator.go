// Package analytics summarizes sets of journal trades into performance
// statistics. Inputs are expected to be pre-scoped to one organization and
// pre-filtered by date/coin/strategy; the aggregator itself is pure.
package analytics

import (
	"math"

	"trade-journal-go/internal/models"
)

// Summary holds the headline statistics over one trade set. Counters cover
// all statuses; the P&L figures cover closed trades only.
type Summary struct {
	TotalTrades             int     `json:"totalTrades"`
	OpenTrades              int     `json:"openTrades"`
	ClosedTrades            int     `json:"closedTrades"`
	ProfitableTrades        int     `json:"profitableTrades"`
	LosingTrades            int     `json:"losingTrades"`
	WinRate                 float64 `json:"winRate"` // percent, 2 decimals
	TotalProfitLoss         float64 `json:"totalProfitLoss"`
	AvgProfitLoss           float64 `json:"avgProfitLoss"`
	AvgProfitLossPercentage float64 `json:"avgProfitLossPercentage"`
}

// GroupStat is one row of a per-coin or per-strategy breakdown.
type GroupStat struct {
	ID                      uint    `json:"id"`
	Name                    string  `json:"name"`
	Symbol                  string  `json:"symbol,omitempty"` // coins only
	TotalTrades             int     `json:"totalTrades"`
	TotalProfitLoss         float64 `json:"totalProfitLoss"`
	AvgProfitLossPercentage float64 `json:"avgProfitLossPercentage"`
}

// Report is the full analytics result for one filtered trade set.
type Report struct {
	Summary    Summary       `json:"summary"`
	BestTrade  *models.Trade `json:"bestTrade"`
	WorstTrade *models.Trade `json:"worstTrade"`
	ByCoin     []GroupStat   `json:"byCoin"`
	ByStrategy []GroupStat   `json:"byStrategy"`
}

// Aggregate summarizes the given trades. Trades must carry their Coin and
// Strategy associations for the breakdown annotations. Best and worst refer
// to closed trades only and are nil when there are none; ties keep the
// first trade in input order, which callers keep stable by ordering on id.
func Aggregate(trades []models.Trade) Report {
	var r Report

	type bucket struct {
		stat   GroupStat
		pctSum float64
	}
	coinBuckets := make(map[uint]*bucket)
	strategyBuckets := make(map[uint]*bucket)
	var coinOrder, strategyOrder []uint

	var plSum, pctSum float64
	var best, worst *models.Trade
	var bestPL, worstPL float64

	for i := range trades {
		t := &trades[i]
		r.Summary.TotalTrades++
		if !t.IsClosed() {
			r.Summary.OpenTrades++
			continue
		}
		r.Summary.ClosedTrades++

		pl := 0.0
		if t.ProfitLoss != nil {
			pl = *t.ProfitLoss
		}
		pct := 0.0
		if t.ProfitLossPercentage != nil {
			pct = *t.ProfitLossPercentage
		}

		if pl > 0 {
			r.Summary.ProfitableTrades++
		}
		plSum += pl
		pctSum += pct

		if best == nil || pl > bestPL {
			best, bestPL = t, pl
		}
		if worst == nil || pl < worstPL {
			worst, worstPL = t, pl
		}

		cb, ok := coinBuckets[t.CoinID]
		if !ok {
			cb = &bucket{stat: GroupStat{ID: t.CoinID, Name: t.Coin.Name, Symbol: t.Coin.Symbol}}
			coinBuckets[t.CoinID] = cb
			coinOrder = append(coinOrder, t.CoinID)
		}
		cb.stat.TotalTrades++
		cb.stat.TotalProfitLoss += pl
		cb.pctSum += pct

		sb, ok := strategyBuckets[t.StrategyID]
		if !ok {
			sb = &bucket{stat: GroupStat{ID: t.StrategyID, Name: t.Strategy.Name}}
			strategyBuckets[t.StrategyID] = sb
			strategyOrder = append(strategyOrder, t.StrategyID)
		}
		sb.stat.TotalTrades++
		sb.stat.TotalProfitLoss += pl
		sb.pctSum += pct
	}

	closed := r.Summary.ClosedTrades
	r.Summary.LosingTrades = closed - r.Summary.ProfitableTrades
	r.Summary.TotalProfitLoss = plSum
	if closed > 0 {
		r.Summary.WinRate = round2(float64(r.Summary.ProfitableTrades) / float64(closed) * 100)
		r.Summary.AvgProfitLoss = plSum / float64(closed)
		r.Summary.AvgProfitLossPercentage = pctSum / float64(closed)
	}

	r.BestTrade = best
	r.WorstTrade = worst

	for _, id := range coinOrder {
		b := coinBuckets[id]
		b.stat.AvgProfitLossPercentage = b.pctSum / float64(b.stat.TotalTrades)
		r.ByCoin = append(r.ByCoin, b.stat)
	}
	for _, id := range strategyOrder {
		b := strategyBuckets[id]
		b.stat.AvgProfitLossPercentage = b.pctSum / float64(b.stat.TotalTrades)
		r.ByStrategy = append(r.ByStrategy, b.stat)
	}

	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
