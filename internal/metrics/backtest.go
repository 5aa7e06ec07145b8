package metrics

import "errors"

// ErrInvalidLevels is returned when entry equals stop loss, leaving no
// direction to derive.
var ErrInvalidLevels = errors.New("entry and stop loss must differ")

// BacktestMetrics is the derived view of a fully specified hypothetical trade.
type BacktestMetrics struct {
	Direction Direction
	RValue    float64 // reward per unit / risk per unit, 4 decimals
}

// ComputeBacktestMetrics derives direction and the R-multiple for a trade
// whose entry, stop and exit are all known upfront.
func ComputeBacktestMetrics(entry, stopLoss, exit float64) (BacktestMetrics, error) {
	if entry == stopLoss {
		return BacktestMetrics{}, ErrInvalidLevels
	}

	var direction Direction
	var riskPerUnit, rewardPerUnit float64
	if entry > stopLoss {
		direction = Long
		riskPerUnit = entry - stopLoss
		rewardPerUnit = exit - entry
	} else {
		direction = Short
		riskPerUnit = stopLoss - entry
		rewardPerUnit = entry - exit
	}

	var rValue float64
	if riskPerUnit != 0 {
		rValue = rewardPerUnit / riskPerUnit
	}

	return BacktestMetrics{Direction: direction, RValue: round4(rValue)}, nil
}
