package metrics

import "math"

// Expectancy summarizes the distribution of R-multiples for one strategy.
// All figures are rounded to 4 decimal places.
type Expectancy struct {
	TotalTrades    int     `json:"totalTrades"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	AvgWinningR    float64 `json:"avgWinningR"`
	AvgLossR       float64 `json:"avgLossR"` // absolute value, always non-negative
	WinPercentage  float64 `json:"winPercentage"`
	LossPercentage float64 `json:"lossPercentage"`
	EV             float64 `json:"ev"`
}

// ExpectedValue computes the probability-weighted average outcome of a
// strategy in R-multiples. Break-even trades (rValue == 0) count toward the
// total but toward neither average. An empty input yields an all-zero result.
func ExpectedValue(rValues []float64) Expectancy {
	if len(rValues) == 0 {
		return Expectancy{}
	}

	var winSum, lossSum float64
	var wins, losses int
	for _, r := range rValues {
		switch {
		case r > 0:
			wins++
			winSum += r
		case r < 0:
			losses++
			lossSum += r
		}
	}

	var avgWinningR, avgLossR float64
	if wins > 0 {
		avgWinningR = winSum / float64(wins)
	}
	if losses > 0 {
		avgLossR = math.Abs(lossSum / float64(losses))
	}

	total := len(rValues)
	winPct := float64(wins) / float64(total)
	lossPct := float64(losses) / float64(total)

	ev := winPct*avgWinningR - lossPct*avgLossR

	return Expectancy{
		TotalTrades:    total,
		Wins:           wins,
		Losses:         losses,
		AvgWinningR:    round4(avgWinningR),
		AvgLossR:       round4(avgLossR),
		WinPercentage:  round4(winPct),
		LossPercentage: round4(lossPct),
		EV:             round4(ev),
	}
}
