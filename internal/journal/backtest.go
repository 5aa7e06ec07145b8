package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BacktestService manages hypothetical trades recorded against a strategy.
// There is no open/closed lifecycle; direction and the R-multiple are
// derived at create time and recomputed whenever a price level changes.
type BacktestService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewBacktestService creates a new BacktestService.
func NewBacktestService(db *gorm.DB, log *zap.Logger) *BacktestService {
	return &BacktestService{db: db, log: log}
}

// CreateBacktestInput carries the fields of a new backtest trade.
type CreateBacktestInput struct {
	TradeDate  time.Time
	TradeTime  string
	Entry      float64
	StopLoss   float64
	Exit       float64
	Notes      string
	CoinID     uint
	StrategyID uint
}

// Create records a backtest trade. Entry equal to stop loss is rejected
// with metrics.ErrInvalidLevels: no direction can be derived.
func (s *BacktestService) Create(ctx context.Context, orgID, userID uint, in CreateBacktestInput) (*models.BacktestTrade, error) {
	if err := coinInOrg(ctx, s.db, orgID, in.CoinID); err != nil {
		return nil, err
	}
	if err := strategyInOrg(ctx, s.db, orgID, in.StrategyID); err != nil {
		return nil, err
	}

	m, err := metrics.ComputeBacktestMetrics(in.Entry, in.StopLoss, in.Exit)
	if err != nil {
		return nil, err
	}

	trade := models.BacktestTrade{
		TradeDate:      in.TradeDate,
		TradeTime:      in.TradeTime,
		Entry:          in.Entry,
		StopLoss:       in.StopLoss,
		Exit:           in.Exit,
		Direction:      string(m.Direction),
		RValue:         m.RValue,
		Notes:          in.Notes,
		CoinID:         in.CoinID,
		StrategyID:     in.StrategyID,
		OrganizationID: orgID,
		CreatedByID:    userID,
		UpdatedByID:    userID,
	}

	if err := s.db.WithContext(ctx).Create(&trade).Error; err != nil {
		return nil, fmt.Errorf("failed to create backtest trade: %w", err)
	}

	s.log.Info("Backtest trade created",
		zap.Uint("backtest_trade_id", trade.ID),
		zap.Uint("org_id", orgID),
		zap.Float64("r_value", trade.RValue))

	return s.load(ctx, orgID, trade.ID)
}

// ListBacktestInput holds the filters and pagination of a list query.
type ListBacktestInput struct {
	CoinID     uint
	StrategyID uint
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

var backtestSortColumns = map[string]bool{
	"trade_date": true,
	"created_at": true,
	"r_value":    true,
	"id":         true,
}

// List returns one page of backtest trades matching the filters.
func (s *BacktestService) List(ctx context.Context, orgID uint, in ListBacktestInput) ([]models.BacktestTrade, Pagination, error) {
	q := s.db.WithContext(ctx).Model(&models.BacktestTrade{}).Where("organization_id = ?", orgID)

	if in.CoinID != 0 {
		q = q.Where("coin_id = ?", in.CoinID)
	}
	if in.StrategyID != 0 {
		q = q.Where("strategy_id = ?", in.StrategyID)
	}
	if in.DateFrom != nil {
		q = q.Where("trade_date >= ?", *in.DateFrom)
	}
	if in.DateTo != nil {
		q = q.Where("trade_date <= ?", *in.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count backtest trades: %w", err)
	}

	page := paginate(in.Page, in.Limit, total)

	sortBy := in.SortBy
	if !backtestSortColumns[sortBy] {
		sortBy = "trade_date"
	}
	order := "desc"
	if in.SortOrder == "asc" {
		order = "asc"
	}

	var trades []models.BacktestTrade
	err := q.Preload("Coin").Preload("Strategy").
		Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset((page.Page - 1) * page.Limit).
		Limit(page.Limit).
		Find(&trades).Error
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list backtest trades: %w", err)
	}

	return trades, page, nil
}

// Get returns one backtest trade.
func (s *BacktestService) Get(ctx context.Context, orgID, id uint) (*models.BacktestTrade, error) {
	return s.load(ctx, orgID, id)
}

// UpdateBacktestInput holds the fields that may be amended. Nil pointers
// leave the stored value untouched.
type UpdateBacktestInput struct {
	TradeDate  *time.Time
	TradeTime  *string
	Entry      *float64
	StopLoss   *float64
	Exit       *float64
	Notes      *string
	CoinID     *uint
	StrategyID *uint
}

// Update amends a backtest trade, recomputing direction and R-multiple when
// any of the three price levels changes.
func (s *BacktestService) Update(ctx context.Context, orgID, userID, id uint, in UpdateBacktestInput) (*models.BacktestTrade, error) {
	trade, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if in.CoinID != nil {
		if err := coinInOrg(ctx, s.db, orgID, *in.CoinID); err != nil {
			return nil, err
		}
	}
	if in.StrategyID != nil {
		if err := strategyInOrg(ctx, s.db, orgID, *in.StrategyID); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{"updated_by_id": userID}
	if in.TradeDate != nil {
		updates["trade_date"] = *in.TradeDate
	}
	if in.TradeTime != nil {
		updates["trade_time"] = *in.TradeTime
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.CoinID != nil {
		updates["coin_id"] = *in.CoinID
	}
	if in.StrategyID != nil {
		updates["strategy_id"] = *in.StrategyID
	}

	entry, stop, exit := trade.Entry, trade.StopLoss, trade.Exit
	if in.Entry != nil {
		entry = *in.Entry
		updates["entry"] = entry
	}
	if in.StopLoss != nil {
		stop = *in.StopLoss
		updates["stop_loss"] = stop
	}
	if in.Exit != nil {
		exit = *in.Exit
		updates["exit"] = exit
	}
	if in.Entry != nil || in.StopLoss != nil || in.Exit != nil {
		m, err := metrics.ComputeBacktestMetrics(entry, stop, exit)
		if err != nil {
			return nil, err
		}
		updates["direction"] = string(m.Direction)
		updates["r_value"] = m.RValue
	}

	err = s.db.WithContext(ctx).Model(&models.BacktestTrade{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update backtest trade: %w", err)
	}

	return s.load(ctx, orgID, id)
}

// Delete removes a backtest trade.
func (s *BacktestService) Delete(ctx context.Context, orgID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&models.BacktestTrade{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete backtest trade: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("backtest trade %d: %w", id, ErrNotFound)
	}
	return nil
}

// StrategyExpectancy is the expected-value result for one strategy.
type StrategyExpectancy struct {
	StrategyID uint `json:"strategyId"`
	metrics.Expectancy
}

// Expectancy computes the expected value of a strategy over all of its
// recorded backtest trades. A strategy with no trades yields an all-zero
// result rather than an error.
func (s *BacktestService) Expectancy(ctx context.Context, orgID, strategyID uint) (*StrategyExpectancy, error) {
	if err := strategyInOrg(ctx, s.db, orgID, strategyID); err != nil {
		return nil, err
	}

	var rValues []float64
	err := s.db.WithContext(ctx).Model(&models.BacktestTrade{}).
		Where("organization_id = ? AND strategy_id = ?", orgID, strategyID).
		Pluck("r_value", &rValues).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load r values: %w", err)
	}

	return &StrategyExpectancy{
		StrategyID: strategyID,
		Expectancy: metrics.ExpectedValue(rValues),
	}, nil
}

// load fetches one backtest trade with its associations.
func (s *BacktestService) load(ctx context.Context, orgID, id uint) (*models.BacktestTrade, error) {
	var trade models.BacktestTrade
	err := s.db.WithContext(ctx).
		Preload("Coin").Preload("Strategy").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("backtest trade %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}
