package journal

import (
	"context"
	"testing"

	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBacktestInput(coinID, strategyID uint, entry, stop, exit float64) CreateBacktestInput {
	return CreateBacktestInput{
		TradeDate:  day(1),
		TradeTime:  "09:30:00",
		Entry:      entry,
		StopLoss:   stop,
		Exit:       exit,
		CoinID:     coinID,
		StrategyID: strategyID,
	}
}

func TestBacktestService_Create(t *testing.T) {
	db, org, user, coin, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())
	ctx := context.Background()

	trade, err := svc.Create(ctx, org.ID, user.ID, newBacktestInput(coin.ID, strategy.ID, 100, 90, 120))
	require.NoError(t, err)

	assert.Equal(t, "Long", trade.Direction)
	assert.InDelta(t, 2.0, trade.RValue, 1e-9)
	assert.Equal(t, "BTC", trade.Coin.Symbol)
}

func TestBacktestService_Create_EntryEqualsStop(t *testing.T) {
	db, org, user, coin, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), org.ID, user.ID,
		newBacktestInput(coin.ID, strategy.ID, 100, 100, 120))
	assert.ErrorIs(t, err, metrics.ErrInvalidLevels)
}

func TestBacktestService_Update_RecalculatesOnLevelChange(t *testing.T) {
	db, org, user, coin, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())
	ctx := context.Background()

	trade, err := svc.Create(ctx, org.ID, user.ID, newBacktestInput(coin.ID, strategy.ID, 100, 90, 120))
	require.NoError(t, err)

	// Move only the exit: R doubles.
	exit := 140.0
	updated, err := svc.Update(ctx, org.ID, user.ID, trade.ID, UpdateBacktestInput{Exit: &exit})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, updated.RValue, 1e-9)
	assert.Equal(t, "Long", updated.Direction)

	// Notes-only update leaves the metrics alone.
	notes := "retested level"
	updated, err = svc.Update(ctx, org.ID, user.ID, trade.ID, UpdateBacktestInput{Notes: &notes})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, updated.RValue, 1e-9)

	// Collapsing entry onto the stop is rejected.
	entry := 90.0
	_, err = svc.Update(ctx, org.ID, user.ID, trade.ID, UpdateBacktestInput{Entry: &entry})
	assert.ErrorIs(t, err, metrics.ErrInvalidLevels)
}

func TestBacktestService_Expectancy(t *testing.T) {
	db, org, user, coin, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())
	ctx := context.Background()

	// Two 2R winners and one 1R loser.
	for _, exit := range []float64{120, 120} {
		_, err := svc.Create(ctx, org.ID, user.ID, newBacktestInput(coin.ID, strategy.ID, 100, 90, exit))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, org.ID, user.ID, newBacktestInput(coin.ID, strategy.ID, 100, 90, 90))
	require.NoError(t, err)

	e, err := svc.Expectancy(ctx, org.ID, strategy.ID)
	require.NoError(t, err)

	assert.Equal(t, strategy.ID, e.StrategyID)
	assert.Equal(t, 3, e.TotalTrades)
	assert.Equal(t, 2, e.Wins)
	assert.Equal(t, 1, e.Losses)
	assert.InDelta(t, 2.0, e.AvgWinningR, 1e-9)
	assert.InDelta(t, 1.0, e.AvgLossR, 1e-9)
	assert.InDelta(t, 0.6667, e.WinPercentage, 1e-9)
	assert.InDelta(t, 0.3333, e.LossPercentage, 1e-9)
	// EV = 2/3*2 - 1/3*1
	assert.InDelta(t, 1.0, e.EV, 1e-9)
}

func TestBacktestService_Expectancy_NoTrades(t *testing.T) {
	db, org, _, _, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())

	e, err := svc.Expectancy(context.Background(), org.ID, strategy.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, e.TotalTrades)
	assert.Zero(t, e.EV)
	assert.Zero(t, e.AvgWinningR)
	assert.Zero(t, e.AvgLossR)
}

func TestBacktestService_Expectancy_UnknownStrategy(t *testing.T) {
	db, org, _, _, _ := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())

	_, err := svc.Expectancy(context.Background(), org.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBacktestService_Delete(t *testing.T) {
	db, org, user, coin, strategy := setupTest(t)
	svc := NewBacktestService(db, zap.NewNop())
	ctx := context.Background()

	trade, err := svc.Create(ctx, org.ID, user.ID, newBacktestInput(coin.ID, strategy.ID, 100, 90, 120))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, org.ID, trade.ID))
	assert.ErrorIs(t, svc.Delete(ctx, org.ID, trade.ID), ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.BacktestTrade{}).Count(&count).Error)
	assert.Zero(t, count)
}
